package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Variant is a sellable combination of item, size, packing, grade and color.
type Variant struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	ItemID        int64           `json:"item_id" gorm:"column:item_id;index;not null"`
	SizeID        *int64          `json:"size_id" gorm:"column:size_id"`
	PackingTypeID *int64          `json:"packing_type_id" gorm:"column:packing_type_id"`
	GradeID       *int64          `json:"grade_id" gorm:"column:grade_id"`
	ColorID       *int64          `json:"color_id" gorm:"column:color_id"`
	SaleRate      decimal.Decimal `json:"sale_rate" gorm:"column:sale_rate;type:numeric(14,2);default:0;not null"`
	IsActive      bool            `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Variant) TableName() string { return "variants" }

// Sku carries the deterministically derived, globally unique SKU code for a
// variant.
type Sku struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	VariantID int64     `json:"variant_id" gorm:"column:variant_id;uniqueIndex;not null"`
	SkuCode   string    `json:"sku_code" gorm:"column:sku_code;uniqueIndex;not null"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Sku) TableName() string { return "skus" }
