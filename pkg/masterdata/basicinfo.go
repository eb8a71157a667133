package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Basic-info catalogs. Every table carries (name, is_active) plus a few
// type-specific columns; SIZE, PRODUCT_GROUP and PRODUCT_SUBGROUP own an
// item-type child table that is fully replaced on write. JSON tags mirror
// the column names so captured approval payloads decode straight into the
// models.

// Uom is a unit of measure.
type Uom struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	Symbol    string    `json:"symbol" gorm:"column:symbol"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Uom) TableName() string { return "uoms" }

// UomConversion converts between two units with a fixed factor.
type UomConversion struct {
	ID        int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	FromUomID int64           `json:"from_uom_id" gorm:"column:from_uom_id;uniqueIndex:idx_uom_conv,priority:1;not null"`
	ToUomID   int64           `json:"to_uom_id" gorm:"column:to_uom_id;uniqueIndex:idx_uom_conv,priority:2;not null"`
	Factor    decimal.Decimal `json:"factor" gorm:"column:factor;type:numeric(18,6);not null"`
	IsActive  bool            `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (UomConversion) TableName() string { return "uom_conversions" }

// Size is a size catalog entry. Duplicate names are rejected case-sensitively.
type Size struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	SortOrder int       `json:"sort_order" gorm:"column:sort_order"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Size) TableName() string { return "sizes" }

// SizeItemType restricts a size to specific item types (RM/SFG/FG).
type SizeItemType struct {
	ID       int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	SizeID   int64    `json:"size_id" gorm:"column:size_id;uniqueIndex:idx_size_item_type,priority:1;not null"`
	ItemType ItemType `json:"item_type" gorm:"column:item_type;uniqueIndex:idx_size_item_type,priority:2;not null"`
}

// TableName returns the GORM table name.
func (SizeItemType) TableName() string { return "size_item_types" }

// Color is a color catalog entry. Duplicate names are rejected
// case-insensitively.
type Color struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	HexCode   string    `json:"hex_code" gorm:"column:hex_code"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Color) TableName() string { return "colors" }

// Grade is a quality grade.
type Grade struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Grade) TableName() string { return "grades" }

// PackingType is a packing style for finished goods.
type PackingType struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;uniqueIndex;not null"`
	UnitsPer  int       `json:"units_per" gorm:"column:units_per"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (PackingType) TableName() string { return "packing_types" }

// City is a city catalog entry.
type City struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Province  string    `json:"province" gorm:"column:province"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (City) TableName() string { return "cities" }

// ProductGroup is the top level of the product hierarchy.
type ProductGroup struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (ProductGroup) TableName() string { return "product_groups" }

// ProductGroupItemType restricts a product group to specific item types.
type ProductGroupItemType struct {
	ID             int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductGroupID int64    `json:"product_group_id" gorm:"column:product_group_id;uniqueIndex:idx_pg_item_type,priority:1;not null"`
	ItemType       ItemType `json:"item_type" gorm:"column:item_type;uniqueIndex:idx_pg_item_type,priority:2;not null"`
}

// TableName returns the GORM table name.
func (ProductGroupItemType) TableName() string { return "product_group_item_types" }

// ProductSubgroup is the second level of the product hierarchy.
type ProductSubgroup struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductGroupID int64     `json:"product_group_id" gorm:"column:product_group_id;not null"`
	Name           string    `json:"name" gorm:"column:name;not null"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (ProductSubgroup) TableName() string { return "product_subgroups" }

// ProductSubgroupItemType restricts a product subgroup to specific item types.
type ProductSubgroupItemType struct {
	ID                int64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProductSubgroupID int64    `json:"product_subgroup_id" gorm:"column:product_subgroup_id;uniqueIndex:idx_psg_item_type,priority:1;not null"`
	ItemType          ItemType `json:"item_type" gorm:"column:item_type;uniqueIndex:idx_psg_item_type,priority:2;not null"`
}

// TableName returns the GORM table name.
func (ProductSubgroupItemType) TableName() string { return "product_subgroup_item_types" }

// ProductType classifies items within a subgroup.
type ProductType struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (ProductType) TableName() string { return "product_types" }

// PartyGroup groups parties for reporting.
type PartyGroup struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (PartyGroup) TableName() string { return "party_groups" }

// AccountGroup groups chart-of-account entries.
type AccountGroup struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	Nature    string    `json:"nature" gorm:"column:nature"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (AccountGroup) TableName() string { return "account_groups" }

// Department is an HR/production department.
type Department struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Department) TableName() string { return "departments" }
