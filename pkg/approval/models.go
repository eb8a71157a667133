package approval

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SchemaVersion is stamped into every persisted payload under the
// "_schema_version" key so the JSON-at-rest format can evolve.
const SchemaVersion = 1

// EntityIDNew marks a request that creates a new row.
const EntityIDNew = "NEW"

// RequestStatus is the lifecycle state of an approval request.
// APPROVED and REJECTED are terminal; only PENDING requests may be edited.
type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusApproved  RequestStatus = "APPROVED"
	StatusRejected  RequestStatus = "REJECTED"
	StatusCancelled RequestStatus = "CANCELLED"
)

// EntityType routes an approval request to its applier branch.
type EntityType string

const (
	EntityAccount         EntityType = "ACCOUNT"
	EntityParty           EntityType = "PARTY"
	EntityItem            EntityType = "ITEM"
	EntitySku             EntityType = "SKU"
	EntityBom             EntityType = "BOM"
	EntityUom             EntityType = "UOM"
	EntityUomConversion   EntityType = "UOM_CONVERSION"
	EntitySize            EntityType = "SIZE"
	EntityColor           EntityType = "COLOR"
	EntityGrade           EntityType = "GRADE"
	EntityPackingType     EntityType = "PACKING_TYPE"
	EntityCity            EntityType = "CITY"
	EntityProductGroup    EntityType = "PRODUCT_GROUP"
	EntityProductSubgroup EntityType = "PRODUCT_SUBGROUP"
	EntityProductType     EntityType = "PRODUCT_TYPE"
	EntityPartyGroup      EntityType = "PARTY_GROUP"
	EntityAccountGroup    EntityType = "ACCOUNT_GROUP"
	EntityDepartment      EntityType = "DEPARTMENT"
)

// Action is the payload-level action tag carried in new_value under "_action".
type Action string

const (
	ActionCreate            Action = "create"
	ActionUpdate            Action = "update"
	ActionToggle            Action = "toggle"
	ActionDelete            Action = "delete"
	ActionApproveDraft      Action = "approve_draft"
	ActionCreateVersionFrom Action = "create_version_from"
)

// PolicyAction is the mutation verb a policy row gates.
type PolicyAction string

const (
	PolicyCreate     PolicyAction = "create"
	PolicyEdit       PolicyAction = "edit"
	PolicyDelete     PolicyAction = "delete"
	PolicyHardDelete PolicyAction = "hard_delete"
)

// JSONAny is a custom GORM type for map[string]any stored as JSON text.
type JSONAny map[string]any

// Scan implements the sql.Scanner interface for JSONAny.
func (m *JSONAny) Scan(value any) error {
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
		return fmt.Errorf("unsupported type for JSONAny: %T", value)
	}
	return json.Unmarshal(bytes, m)
}

// Value implements the driver.Valuer interface for JSONAny.
func (m JSONAny) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// ApprovalRequestRecord is a durable approval request with before/after
// snapshots. The store treats the snapshots as opaque; entity semantics live
// in the applier.
type ApprovalRequestRecord struct {
	ID          int64         `gorm:"primaryKey;autoIncrement"`
	BranchID    int64         `gorm:"column:branch_id;index;not null"`
	RequestType string        `gorm:"column:request_type;default:screen_change;not null"`
	EntityType  EntityType    `gorm:"column:entity_type;index;not null"`
	EntityKey   string        `gorm:"column:entity_key"`
	EntityID    string        `gorm:"column:entity_id;not null"`
	Summary     string        `gorm:"column:summary"`
	OldValue    JSONAny       `gorm:"column:old_value;type:text"`
	NewValue    JSONAny       `gorm:"column:new_value;type:text"`
	Status      RequestStatus `gorm:"column:status;index;default:PENDING;not null"`
	RequestedBy int64         `gorm:"column:requested_by;index;not null"`
	RequestedAt time.Time     `gorm:"column:requested_at;autoCreateTime"`
	DecidedBy   *int64        `gorm:"column:decided_by"`
	DecidedAt   *time.Time    `gorm:"column:decided_at"`
	DecisionNote string       `gorm:"column:decision_note"`
}

// TableName returns the GORM table name.
func (ApprovalRequestRecord) TableName() string { return "approval_requests" }

// InferredAction returns the payload action: the "_action" tag when present,
// otherwise create for EntityID "NEW" and update for everything else.
func (r *ApprovalRequestRecord) InferredAction() Action {
	if r.NewValue != nil {
		if tag, ok := r.NewValue["_action"].(string); ok && tag != "" {
			return Action(tag)
		}
	}
	if r.EntityID == EntityIDNew {
		return ActionCreate
	}
	return ActionUpdate
}

// ApplyResult is the outcome of replaying an approved request.
type ApplyResult struct {
	Applied  bool
	EntityID int64
}

// Applier replays an approved request's payload against the database within
// the supplied transaction. Implemented by pkg/apply.
type Applier interface {
	Apply(tx *gorm.DB, req *ApprovalRequestRecord, actorUserID int64) (ApplyResult, error)
}
