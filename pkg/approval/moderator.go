package approval

import (
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/activity"
)

// ErrRequestNotFound is returned when a moderation call names a request id
// that does not exist.
var ErrRequestNotFound = errors.New("approval request not found")

// DecisionEvent is pushed to the requester's notification stream once a
// moderator decides their request.
type DecisionEvent struct {
	RequestID  int64         `json:"request_id"`
	Status     RequestStatus `json:"status"`
	EntityType EntityType    `json:"entity_type"`
	EntityID   string        `json:"entity_id"`
	Summary    string        `json:"summary"`
	Note       string        `json:"note,omitempty"`
	DecidedAt  time.Time     `json:"decided_at"`
}

// Notifier delivers decision events to the requester. Implemented by
// pkg/notify.
type Notifier interface {
	Notify(userID int64, event DecisionEvent)
}

// Moderator decides pending requests. An approval marks the request decided
// and replays its payload in the same transaction, so a failed apply leaves
// the request PENDING. The guarded status update doubles as the row lock:
// a concurrent decision on the same request loses with ErrNotPending.
type Moderator struct {
	db       *gorm.DB
	requests *RequestStore
	applier  Applier
	log      *activity.Store
	notifier Notifier
}

// NewModerator creates a moderation service. notifier may be nil.
func NewModerator(db *gorm.DB, requests *RequestStore, applier Applier, log *activity.Store, notifier Notifier) *Moderator {
	return &Moderator{db: db, requests: requests, applier: applier, log: log, notifier: notifier}
}

// Approve decides a pending request and replays its payload. Returns the
// apply result on success; domain errors from the applier roll everything
// back and surface verbatim.
func (m *Moderator) Approve(requestID, moderatorID int64, note string) (ApplyResult, error) {
	known, err := m.requests.Get(requestID)
	if err != nil {
		return ApplyResult{}, err
	}
	if known == nil {
		return ApplyResult{}, ErrRequestNotFound
	}

	var req *ApprovalRequestRecord
	var result ApplyResult
	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.requests.MarkDecided(tx, requestID, StatusApproved, moderatorID, note); err != nil {
			return err
		}
		// Re-read under the guarded update: an edit committed after the
		// lookup above is the payload that must replay, not the snapshot.
		req, err = m.requests.GetTx(tx, requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrRequestNotFound
		}
		result, err = m.applier.Apply(tx, req, moderatorID)
		if err != nil {
			return err
		}
		entry := &activity.LogRecord{
			BranchID:   req.BranchID,
			UserID:     moderatorID,
			EntityType: string(req.EntityType),
			EntityID:   strconv.FormatInt(result.EntityID, 10),
			Action:     logActionFor(req.InferredAction()),
			Context: activity.ContextJSON{
				"action":  string(req.InferredAction()),
				"summary": req.Summary,
			}.WithApprovalRequestID(requestID),
		}
		return m.log.AppendTx(tx, entry)
	})
	if err != nil {
		return ApplyResult{}, err
	}

	m.notifyDecision(req, StatusApproved, note)
	return result, nil
}

// Reject decides a pending request without applying anything.
func (m *Moderator) Reject(requestID, moderatorID int64, note string) error {
	req, err := m.requests.Get(requestID)
	if err != nil {
		return err
	}
	if req == nil {
		return ErrRequestNotFound
	}

	err = m.db.Transaction(func(tx *gorm.DB) error {
		if err := m.requests.MarkDecided(tx, requestID, StatusRejected, moderatorID, note); err != nil {
			return err
		}
		entry := &activity.LogRecord{
			BranchID:   req.BranchID,
			UserID:     moderatorID,
			EntityType: string(req.EntityType),
			EntityID:   req.EntityID,
			Action:     activity.LogReject,
			Context: activity.ContextJSON{
				"summary": req.Summary,
				"note":    note,
			}.WithApprovalRequestID(requestID),
		}
		return m.log.AppendTx(tx, entry)
	})
	if err != nil {
		return err
	}

	m.notifyDecision(req, StatusRejected, note)
	return nil
}

// Edit amends a pending request's new_value through the sanitizer and records
// the field diff.
func (m *Moderator) Edit(requestID, moderatorID int64, edits map[string]any) ([]activity.FieldChange, error) {
	req, err := m.requests.Get(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrRequestNotFound
	}
	if req.Status != StatusPending {
		return nil, ErrNotPending
	}

	merged, changed, err := SanitizeEditedValues(req, edits)
	if err != nil {
		return nil, err
	}
	if len(changed) == 0 {
		return nil, nil
	}
	if err := m.requests.UpdateNewValue(requestID, merged); err != nil {
		return nil, err
	}

	entry := &activity.LogRecord{
		BranchID:   req.BranchID,
		UserID:     moderatorID,
		EntityType: string(req.EntityType),
		EntityID:   req.EntityID,
		Action:     activity.LogUpdate,
		Context: activity.ContextJSON{
			"summary": req.Summary,
		}.WithChangedFields(changed).WithApprovalRequestID(requestID),
	}
	if err := m.log.Append(entry); err != nil {
		return nil, err
	}
	return changed, nil
}

func (m *Moderator) notifyDecision(req *ApprovalRequestRecord, status RequestStatus, note string) {
	if m.notifier == nil {
		return
	}
	m.notifier.Notify(req.RequestedBy, DecisionEvent{
		RequestID:  req.ID,
		Status:     status,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		Summary:    req.Summary,
		Note:       note,
		DecidedAt:  time.Now(),
	})
}

func logActionFor(action Action) activity.LogAction {
	switch action {
	case ActionCreate:
		return activity.LogCreate
	case ActionToggle:
		return activity.LogToggle
	case ActionDelete:
		return activity.LogDelete
	case ActionApproveDraft, ActionCreateVersionFrom, ActionUpdate:
		return activity.LogUpdate
	default:
		return activity.LogUpdate
	}
}
