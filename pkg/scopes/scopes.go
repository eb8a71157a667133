package scopes

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ScopeType distinguishes module-level scopes from screen-level scopes.
type ScopeType string

const (
	ScopeTypeModule ScopeType = "MODULE"
	ScopeTypeScreen ScopeType = "SCREEN"
)

// ScopeRecord is a registry entry for a permission scope. Scopes are seeded
// from the navigation config and immutable at runtime.
type ScopeRecord struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	ScopeType   ScopeType `gorm:"column:scope_type;uniqueIndex:idx_scope_type_key,priority:1;not null"`
	ScopeKey    string    `gorm:"column:scope_key;uniqueIndex:idx_scope_type_key,priority:2;not null"`
	ModuleGroup string    `gorm:"column:module_group"`
	Description string    `gorm:"column:description"`
}

// TableName returns the GORM table name.
func (ScopeRecord) TableName() string { return "scopes" }

// Store provides read access and seeding for the scope registry.
type Store struct {
	db *gorm.DB
}

// NewStore creates a scope registry store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the scopes table.
func (s *Store) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ScopeRecord{}); err != nil {
		return fmt.Errorf("auto-migrate scopes: %w", err)
	}
	return nil
}

// Seed inserts every module and screen from the navigation tree, skipping
// rows that already exist. Descriptions are refreshed on conflict.
func (s *Store) Seed(nav *NavigationTree) error {
	records := make([]ScopeRecord, 0, len(nav.Modules)*8)
	for _, m := range nav.Modules {
		records = append(records, ScopeRecord{
			ScopeType:   ScopeTypeModule,
			ScopeKey:    m.Key,
			ModuleGroup: m.Key,
			Description: m.Title,
		})
		for _, sc := range m.Screens {
			records = append(records, ScopeRecord{
				ScopeType:   ScopeTypeScreen,
				ScopeKey:    sc.Key,
				ModuleGroup: m.Key,
				Description: sc.Title,
			})
		}
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "scope_type"}, {Name: "scope_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"module_group", "description"}),
	}).Create(&records).Error
	if err != nil {
		return fmt.Errorf("seed scopes: %w", err)
	}
	return nil
}

// Get retrieves a scope by type and key. Returns nil, nil if not found.
func (s *Store) Get(scopeType ScopeType, scopeKey string) (*ScopeRecord, error) {
	var rec ScopeRecord
	err := s.db.Where("scope_type = ? AND scope_key = ?", scopeType, scopeKey).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get scope: %w", err)
	}
	return &rec, nil
}

// List returns all registered scopes ordered by module group then key.
func (s *Store) List() ([]ScopeRecord, error) {
	var records []ScopeRecord
	if err := s.db.Order("module_group, scope_type, scope_key").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list scopes: %w", err)
	}
	return records, nil
}
