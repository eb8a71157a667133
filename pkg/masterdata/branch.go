package masterdata

import "time"

// Branch is an operating branch. All master-data scoping and approval
// requests carry a branch id.
type Branch struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Code      string    `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"column:name;not null"`
	City      string    `json:"city" gorm:"column:city"`
	IsActive  bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Branch) TableName() string { return "branches" }
