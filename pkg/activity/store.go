package activity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// LogAction is the audited mutation verb.
type LogAction string

const (
	LogCreate     LogAction = "CREATE"
	LogUpdate     LogAction = "UPDATE"
	LogToggle     LogAction = "TOGGLE"
	LogDelete     LogAction = "DELETE"
	LogHardDelete LogAction = "HARD_DELETE"
	LogApprove    LogAction = "APPROVE"
	LogReject     LogAction = "REJECT"
	LogCancel     LogAction = "CANCEL"
)

// ContextJSON is a custom GORM type for the sanitized context record.
type ContextJSON map[string]any

// Scan implements the sql.Scanner interface for ContextJSON.
func (m *ContextJSON) Scan(value any) error {
	if value == nil {
		*m = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case string:
		bytes = []byte(v)
	case []byte:
		bytes = v
	default:
		return fmt.Errorf("unsupported type for ContextJSON: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface for ContextJSON.
func (m ContextJSON) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// LogRecord is an append-only activity-log entry.
type LogRecord struct {
	ID         int64       `gorm:"primaryKey;autoIncrement"`
	BranchID   int64       `gorm:"column:branch_id;index"`
	UserID     int64       `gorm:"column:user_id;index:idx_activity_user_time,priority:1;not null"`
	EntityType string      `gorm:"column:entity_type;index:idx_activity_entity,priority:1;not null"`
	EntityID   string      `gorm:"column:entity_id;index:idx_activity_entity,priority:2"`
	Action     LogAction   `gorm:"column:action;not null"`
	Context    ContextJSON `gorm:"column:context_json;type:text"`
	CreatedAt  time.Time   `gorm:"column:created_at;index:idx_activity_user_time,priority:2;autoCreateTime"`
}

// TableName returns the GORM table name.
func (LogRecord) TableName() string { return "activity_log" }

// Store is the append-only activity log.
type Store struct {
	db *gorm.DB
}

// NewStore creates an activity-log store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the activity_log table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&LogRecord{}); err != nil {
		return fmt.Errorf("auto-migrate activity log: %w", err)
	}
	return nil
}

// Append writes an entry outside any caller transaction.
func (s *Store) Append(rec *LogRecord) error {
	return s.AppendTx(s.db, rec)
}

// AppendTx writes an entry inside the caller's transaction so the log row
// commits or rolls back together with the underlying mutation.
func (s *Store) AppendTx(tx *gorm.DB, rec *LogRecord) error {
	if err := tx.Create(rec).Error; err != nil {
		return fmt.Errorf("append activity log: %w", err)
	}
	return nil
}

// ListByEntity returns entries for an entity, newest first. pageToken is the
// id of the last seen row.
func (s *Store) ListByEntity(entityType, entityID string, pageSize int, pageToken int64) ([]LogRecord, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := s.db.Where("entity_type = ? AND entity_id = ?", entityType, entityID)
	if pageToken > 0 {
		query = query.Where("id < ?", pageToken)
	}

	var records []LogRecord
	err := query.Order("created_at DESC, id DESC").Limit(pageSize + 1).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list activity log: %w", err)
	}

	var nextToken int64
	if len(records) > pageSize {
		records = records[:pageSize]
		nextToken = records[pageSize-1].ID
	}
	return records, nextToken, nil
}

// DeleteOlderThan removes entries created before cutoff and returns the count.
func (s *Store) DeleteOlderThan(cutoff time.Time) (int64, error) {
	result := s.db.Where("created_at < ?", cutoff).Delete(&LogRecord{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete old activity log entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
