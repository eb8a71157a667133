package db

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"time"

	"gorm.io/gorm"
)

// MigrationLocker serializes schema migrations across server replicas so two
// processes never run Migrate or AutoMigrate concurrently.
type MigrationLocker interface {
	// WithLock runs fn while holding the migration lock. It blocks until the
	// lock is acquired and releases it after fn returns.
	WithLock(ctx context.Context, fn func() error) error
}

// NewMigrationLocker picks the locking strategy for the dialect. Postgres
// uses an advisory lock; everything else falls back to a lock table.
func NewMigrationLocker(gdb *gorm.DB) MigrationLocker {
	if gdb == nil {
		return &noopMigrationLock{}
	}
	if gdb.Dialector.Name() == "postgres" {
		return &pgAdvisoryLock{
			db:     gdb,
			lockID: int64(crc32.ChecksumIEEE([]byte("erp-core-migration"))),
		}
	}
	lock := &tableMigrationLock{db: gdb}
	// Create the lock table up front so concurrent first callers never race
	// on "no such table".
	_ = gdb.AutoMigrate(&migrationLockRecord{})
	return lock
}

type noopMigrationLock struct{}

func (n *noopMigrationLock) WithLock(_ context.Context, fn func() error) error {
	return fn()
}

type pgAdvisoryLock struct {
	db     *gorm.DB
	lockID int64
}

func (l *pgAdvisoryLock) WithLock(ctx context.Context, fn func() error) error {
	if err := l.db.WithContext(ctx).Exec("SELECT pg_advisory_lock(?)", l.lockID).Error; err != nil {
		return fmt.Errorf("acquire migration advisory lock: %w", err)
	}
	defer func() {
		_ = l.db.Exec("SELECT pg_advisory_unlock(?)", l.lockID).Error
	}()
	return fn()
}

type migrationLockRecord struct {
	ID       string    `gorm:"primaryKey;column:id"`
	LockedAt time.Time `gorm:"column:locked_at"`
	LockedBy string    `gorm:"column:locked_by"`
}

func (migrationLockRecord) TableName() string { return "migration_lock" }

// tableMigrationLock uses INSERT-or-fail semantics on a single row. Stale
// rows older than five minutes are treated as crash leftovers and cleared.
type tableMigrationLock struct {
	db *gorm.DB
}

func (l *tableMigrationLock) WithLock(ctx context.Context, fn func() error) error {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "unknown"
	}
	lockRow := migrationLockRecord{ID: "migration", LockedBy: hostname}

	const maxRetries = 30
	const retryInterval = time.Second
	const staleLockAge = 5 * time.Minute

	acquired := false
	for i := 0; i < maxRetries; i++ {
		l.db.WithContext(ctx).
			Where("id = ? AND locked_at < ?", "migration", time.Now().Add(-staleLockAge)).
			Delete(&migrationLockRecord{})

		lockRow.LockedAt = time.Now()
		result := l.db.WithContext(ctx).Create(&lockRow)
		if result.Error == nil {
			acquired = true
			break
		}
		if i == maxRetries-1 {
			return fmt.Errorf("acquire migration lock after %d retries: %w", maxRetries, result.Error)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(retryInterval):
		}
	}
	if !acquired {
		return fmt.Errorf("acquire migration lock")
	}

	defer func() {
		l.db.Where("id = ?", "migration").Delete(&migrationLockRecord{})
	}()
	return fn()
}
