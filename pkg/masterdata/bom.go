package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// BomLevel is the production level a BOM describes.
type BomLevel string

const (
	BomLevelFinished     BomLevel = "FINISHED"
	BomLevelSemiFinished BomLevel = "SEMI_FINISHED"
)

// BomStatus is the lifecycle state of a BOM header.
type BomStatus string

const (
	BomStatusDraft    BomStatus = "DRAFT"
	BomStatusApproved BomStatus = "APPROVED"
	BomStatusArchived BomStatus = "ARCHIVED"
)

// BomHeader is a bill-of-materials version for an item at a level.
// At most one DRAFT may exist per (item_id, level) at any time; the partial
// unique index draft_flag enforces it (draft_flag is 1 for drafts, NULL
// otherwise, so approved versions never collide).
type BomHeader struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	ItemID      int64           `gorm:"column:item_id;uniqueIndex:idx_bom_one_draft,priority:1;not null"`
	Level       BomLevel        `gorm:"column:level;uniqueIndex:idx_bom_one_draft,priority:2;not null"`
	DraftFlag   *int16          `gorm:"column:draft_flag;uniqueIndex:idx_bom_one_draft,priority:3"`
	Status      BomStatus       `gorm:"column:status;default:DRAFT;not null"`
	VersionNo   int             `gorm:"column:version_no;default:1;not null"`
	OutputQty   decimal.Decimal `gorm:"column:output_qty;type:numeric(14,3);not null"`
	OutputUomID int64           `gorm:"column:output_uom_id;not null"`
	Remarks     string          `gorm:"column:remarks"`
	ApprovedBy  *int64          `gorm:"column:approved_by"`
	ApprovedAt  *time.Time      `gorm:"column:approved_at"`
	CreatedBy   int64           `gorm:"column:created_by"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (BomHeader) TableName() string { return "bom_headers" }

// BomRmLine is a raw-material consumption line.
type BomRmLine struct {
	ID       int64           `gorm:"primaryKey;autoIncrement"`
	BomID    int64           `gorm:"column:bom_id;index;not null"`
	RmItemID int64           `gorm:"column:rm_item_id;not null"`
	DeptID   *int64          `gorm:"column:dept_id"`
	ColorID  *int64          `gorm:"column:color_id"`
	SizeID   *int64          `gorm:"column:size_id"`
	Qty      decimal.Decimal `gorm:"column:qty;type:numeric(14,4);not null"`
	UomID    *int64          `gorm:"column:uom_id"`
	Wastage  decimal.Decimal `gorm:"column:wastage;type:numeric(7,4);default:0;not null"`
}

// TableName returns the GORM table name.
func (BomRmLine) TableName() string { return "bom_rm_lines" }

// BomSfgLine consumes a semi-finished SKU per finished-good size.
type BomSfgLine struct {
	ID       int64           `gorm:"primaryKey;autoIncrement"`
	BomID    int64           `gorm:"column:bom_id;index;not null"`
	FgSizeID *int64          `gorm:"column:fg_size_id"`
	SfgSkuID int64           `gorm:"column:sfg_sku_id;not null"`
	Qty      decimal.Decimal `gorm:"column:qty;type:numeric(14,4);not null"`
}

// TableName returns the GORM table name.
func (BomSfgLine) TableName() string { return "bom_sfg_lines" }

// BomLabourLine is a labour cost line, optionally size-scoped.
type BomLabourLine struct {
	ID        int64           `gorm:"primaryKey;autoIncrement"`
	BomID     int64           `gorm:"column:bom_id;index;not null"`
	DeptID    int64           `gorm:"column:dept_id;not null"`
	LabourID  int64           `gorm:"column:labour_id;not null"`
	SizeScope string          `gorm:"column:size_scope;default:ALL;not null"` // ALL or SPECIFIC
	SizeID    *int64          `gorm:"column:size_id"`
	RateType  string          `gorm:"column:rate_type;not null"` // PER_UNIT, PER_DOZEN
	Rate      decimal.Decimal `gorm:"column:rate;type:numeric(14,4);not null"`
}

// TableName returns the GORM table name.
func (BomLabourLine) TableName() string { return "bom_labour_lines" }

// BomVariantRule adjusts material usage for particular size/packing/color
// combinations.
type BomVariantRule struct {
	ID                  int64            `gorm:"primaryKey;autoIncrement"`
	BomID               int64            `gorm:"column:bom_id;index;not null"`
	SizeScope           string           `gorm:"column:size_scope;default:ALL;not null"`
	SizeID              *int64           `gorm:"column:size_id"`
	PackingScope        string           `gorm:"column:packing_scope;default:ALL;not null"`
	PackingTypeID       *int64           `gorm:"column:packing_type_id"`
	ColorScope          string           `gorm:"column:color_scope;default:ALL;not null"`
	ColorID             *int64           `gorm:"column:color_id"`
	ActionType          string           `gorm:"column:action_type;not null"` // ADD, REMOVE, REPLACE, SCALE
	MaterialScope       string           `gorm:"column:material_scope;default:ALL;not null"`
	TargetRmItemID      *int64           `gorm:"column:target_rm_item_id"`
	QtyFactor           *decimal.Decimal `gorm:"column:qty_factor;type:numeric(10,4)"`
	ReplacementRmItemID *int64           `gorm:"column:replacement_rm_item_id"`
}

// TableName returns the GORM table name.
func (BomVariantRule) TableName() string { return "bom_variant_rules" }

// BomChangeLog records per-section row changes between writes of a draft, and
// header-level events (creation, approval, version clones).
type BomChangeLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	BomID      int64     `gorm:"column:bom_id;index;not null"`
	Section    string    `gorm:"column:section;not null"`     // header, rm, sfg, labour, rule
	ChangeType string    `gorm:"column:change_type;not null"` // ADDED, REMOVED, UPDATED
	RowKey     string    `gorm:"column:row_key"`
	Detail     string    `gorm:"column:detail;type:text"`
	ChangedBy  int64     `gorm:"column:changed_by;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the GORM table name.
func (BomChangeLog) TableName() string { return "bom_change_logs" }
