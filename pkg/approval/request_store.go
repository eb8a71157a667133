package approval

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ErrNotPending is returned when a terminal request is edited or decided again.
var ErrNotPending = errors.New("approval request is not pending")

// RequestStore is the durable queue of approval requests. It never interprets
// the "_action" tag or entity semantics; snapshots are opaque JSON.
type RequestStore struct {
	db *gorm.DB
}

// NewRequestStore creates a request store.
func NewRequestStore(db *gorm.DB) *RequestStore {
	return &RequestStore{db: db}
}

// AutoMigrate creates or updates the approval_requests table.
func (s *RequestStore) AutoMigrate() error {
	if err := s.db.AutoMigrate(&ApprovalRequestRecord{}); err != nil {
		return fmt.Errorf("auto-migrate approval requests: %w", err)
	}
	return nil
}

// Create persists a new PENDING request. The schema version is stamped into
// the payload if the caller has not done so.
func (s *RequestStore) Create(req *ApprovalRequestRecord) error {
	req.Status = StatusPending
	if req.NewValue != nil {
		if _, ok := req.NewValue["_schema_version"]; !ok {
			req.NewValue["_schema_version"] = SchemaVersion
		}
	}
	if err := s.db.Create(req).Error; err != nil {
		return fmt.Errorf("create approval request: %w", err)
	}
	return nil
}

// Get retrieves a request by id. Returns nil, nil if not found.
func (s *RequestStore) Get(id int64) (*ApprovalRequestRecord, error) {
	return s.get(s.db, id)
}

// GetTx is Get running on tx, for reads that must see the transaction's view.
func (s *RequestStore) GetTx(tx *gorm.DB, id int64) (*ApprovalRequestRecord, error) {
	return s.get(tx, id)
}

func (s *RequestStore) get(db *gorm.DB, id int64) (*ApprovalRequestRecord, error) {
	var rec ApprovalRequestRecord
	if err := db.First(&rec, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get approval request: %w", err)
	}
	return &rec, nil
}

// ListFilter narrows List results.
type ListFilter struct {
	Status      RequestStatus
	BranchID    int64
	EntityType  EntityType
	RequestedBy int64
}

// List returns requests matching the filter with stable ordering by
// (requested_at desc, id desc). pageToken is the id of the last seen row;
// rows with a smaller id are returned.
func (s *RequestStore) List(filter ListFilter, pageSize int, pageToken int64) ([]ApprovalRequestRecord, int64, error) {
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	query := s.db.Model(&ApprovalRequestRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.BranchID != 0 {
		query = query.Where("branch_id = ?", filter.BranchID)
	}
	if filter.EntityType != "" {
		query = query.Where("entity_type = ?", filter.EntityType)
	}
	if filter.RequestedBy != 0 {
		query = query.Where("requested_by = ?", filter.RequestedBy)
	}
	if pageToken > 0 {
		query = query.Where("id < ?", pageToken)
	}

	var records []ApprovalRequestRecord
	err := query.Order("requested_at DESC, id DESC").Limit(pageSize + 1).Find(&records).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list approval requests: %w", err)
	}

	var nextToken int64
	if len(records) > pageSize {
		records = records[:pageSize]
		nextToken = records[pageSize-1].ID
	}
	return records, nextToken, nil
}

// MarkDecided transitions a PENDING request to APPROVED or REJECTED. The
// transition is atomic and one-way: deciding a non-pending request returns
// ErrNotPending. Runs inside tx when one is supplied.
func (s *RequestStore) MarkDecided(tx *gorm.DB, id int64, status RequestStatus, decidedBy int64, note string) error {
	if status != StatusApproved && status != StatusRejected {
		return fmt.Errorf("invalid decision status %q", status)
	}
	db := s.db
	if tx != nil {
		db = tx
	}
	now := time.Now()
	result := db.Model(&ApprovalRequestRecord{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Updates(map[string]any{
			"status":        status,
			"decided_by":    decidedBy,
			"decided_at":    now,
			"decision_note": note,
		})
	if result.Error != nil {
		return fmt.Errorf("decide approval request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// Cancel withdraws a PENDING request. Only the requester may cancel.
func (s *RequestStore) Cancel(id, requesterID int64) error {
	now := time.Now()
	result := s.db.Model(&ApprovalRequestRecord{}).
		Where("id = ? AND status = ? AND requested_by = ?", id, StatusPending, requesterID).
		Updates(map[string]any{
			"status":     StatusCancelled,
			"decided_by": requesterID,
			"decided_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("cancel approval request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// UpdateNewValue replaces the new_value snapshot of a PENDING request after a
// moderator edit was sanitized.
func (s *RequestStore) UpdateNewValue(id int64, newValue JSONAny) error {
	if newValue != nil {
		if _, ok := newValue["_schema_version"]; !ok {
			newValue["_schema_version"] = SchemaVersion
		}
	}
	result := s.db.Model(&ApprovalRequestRecord{}).
		Where("id = ? AND status = ?", id, StatusPending).
		Update("new_value", newValue)
	if result.Error != nil {
		return fmt.Errorf("update approval request payload: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
