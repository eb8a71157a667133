package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// ItemType classifies inventory items.
type ItemType string

const (
	ItemTypeRM  ItemType = "RM"
	ItemTypeSFG ItemType = "SFG"
	ItemTypeFG  ItemType = "FG"
)

// SfgPartType is the shadow-SFG part kind for finished goods that declare
// uses_sfg.
type SfgPartType string

const (
	SfgPartUpper SfgPartType = "UPPER"
	SfgPartStep  SfgPartType = "STEP"
)

// Item is an inventory item: raw material, semi-finished or finished good.
// An FG with UsesSfg is paired to at least one shadow SFG through item_usage.
type Item struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemType      ItemType        `json:"item_type" gorm:"column:item_type;not null"`
	Code          string          `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Name          string          `json:"name" gorm:"column:name;not null"`
	NameUr        string          `json:"name_ur" gorm:"column:name_ur"`
	GroupID       *int64          `json:"group_id" gorm:"column:group_id"`
	SubgroupID    *int64          `json:"subgroup_id" gorm:"column:subgroup_id"`
	ProductTypeID *int64          `json:"product_type_id" gorm:"column:product_type_id"`
	BaseUomID     *int64          `json:"base_uom_id" gorm:"column:base_uom_id"`
	UsesSfg       bool            `json:"uses_sfg" gorm:"column:uses_sfg;default:false;not null"`
	SfgPartType   *SfgPartType    `json:"sfg_part_type" gorm:"column:sfg_part_type"`
	MinStockLevel decimal.Decimal `json:"min_stock_level" gorm:"column:min_stock_level;type:numeric(14,3);default:0;not null"`
	IsActive      bool            `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Item) TableName() string { return "items" }

// RmPurchaseRate is an active purchase rate for a raw material, optionally
// color-specific. BOM approval requires a rate for every RM line.
type RmPurchaseRate struct {
	ID        int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	RmItemID  int64           `json:"rm_item_id" gorm:"column:rm_item_id;index;not null"`
	ColorID   *int64          `json:"color_id" gorm:"column:color_id"`
	Rate      decimal.Decimal `json:"rate" gorm:"column:rate;type:numeric(14,4);not null"`
	IsActive  bool            `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (RmPurchaseRate) TableName() string { return "rm_purchase_rates" }

// ItemUsage links a finished good to the semi-finished items it consumes.
type ItemUsage struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	FgItemID  int64 `json:"fg_item_id" gorm:"column:fg_item_id;uniqueIndex:idx_item_usage,priority:1;not null"`
	SfgItemID int64 `json:"sfg_item_id" gorm:"column:sfg_item_id;uniqueIndex:idx_item_usage,priority:2;not null"`
}

// TableName returns the GORM table name.
func (ItemUsage) TableName() string { return "item_usage" }
