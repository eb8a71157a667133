package approval

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApprovalPolicyRecord forces the approval path for one
// (entity_type, entity_key, action) triple.
type ApprovalPolicyRecord struct {
	ID               int64        `gorm:"primaryKey;autoIncrement"`
	EntityType       string       `gorm:"column:entity_type;uniqueIndex:idx_policy_triple,priority:1;not null"`
	EntityKey        string       `gorm:"column:entity_key;uniqueIndex:idx_policy_triple,priority:2;not null"`
	Action           PolicyAction `gorm:"column:action;uniqueIndex:idx_policy_triple,priority:3;not null"`
	RequiresApproval bool         `gorm:"column:requires_approval;default:false;not null"`
}

// TableName returns the GORM table name.
func (ApprovalPolicyRecord) TableName() string { return "approval_policies" }

// PolicyStore is the persistent approval-policy lookup.
type PolicyStore struct {
	db *gorm.DB
}

// NewPolicyStore creates a policy store.
func NewPolicyStore(db *gorm.DB) *PolicyStore {
	return &PolicyStore{db: db}
}

// AutoMigrate creates or updates the approval_policies table.
func (s *PolicyStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ApprovalPolicyRecord{}); err != nil {
		return fmt.Errorf("auto-migrate approval policies: %w", err)
	}
	return nil
}

// RequiresApproval looks up the policy row for the triple. A missing row means
// no approval is required. Lookup failures propagate so the gateway never
// defaults to direct apply when the store is unreachable.
func (s *PolicyStore) RequiresApproval(entityType, entityKey string, action PolicyAction) (bool, error) {
	var rec ApprovalPolicyRecord
	err := s.db.Where("entity_type = ? AND entity_key = ? AND action = ?",
		entityType, entityKey, action).First(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return false, nil
		}
		return false, fmt.Errorf("lookup approval policy: %w", err)
	}
	return rec.RequiresApproval, nil
}

// Set upserts a policy row for the triple.
func (s *PolicyStore) Set(entityType, entityKey string, action PolicyAction, requiresApproval bool) error {
	rec := ApprovalPolicyRecord{
		EntityType:       entityType,
		EntityKey:        entityKey,
		Action:           action,
		RequiresApproval: requiresApproval,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "entity_type"}, {Name: "entity_key"}, {Name: "action"}},
		DoUpdates: clause.AssignmentColumns([]string{"requires_approval"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("set approval policy: %w", err)
	}
	return nil
}

// List returns all policy rows ordered by entity key then action.
func (s *PolicyStore) List() ([]ApprovalPolicyRecord, error) {
	var records []ApprovalPolicyRecord
	if err := s.db.Order("entity_key, action").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("list approval policies: %w", err)
	}
	return records, nil
}

// Delete removes a policy row for the triple.
func (s *PolicyStore) Delete(entityType, entityKey string, action PolicyAction) error {
	err := s.db.Where("entity_type = ? AND entity_key = ? AND action = ?",
		entityType, entityKey, action).Delete(&ApprovalPolicyRecord{}).Error
	if err != nil {
		return fmt.Errorf("delete approval policy: %w", err)
	}
	return nil
}
