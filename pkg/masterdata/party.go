package masterdata

import (
	"time"

	"github.com/shopspring/decimal"
)

// Party is a customer or supplier. CreditLimit is forced to zero whenever
// CreditAllowed is false; the appliers enforce this on every write path.
type Party struct {
	ID            int64           `json:"id" gorm:"primaryKey;autoIncrement"`
	Name          string          `json:"name" gorm:"column:name;not null"`
	PartyType     string          `json:"party_type" gorm:"column:party_type;not null"` // CUSTOMER, SUPPLIER
	PartyGroupID  *int64          `json:"party_group_id" gorm:"column:party_group_id"`
	CityID        *int64          `json:"city_id" gorm:"column:city_id"`
	Address       string          `json:"address" gorm:"column:address"`
	Phone1        string          `json:"phone1" gorm:"column:phone1"`
	Phone2        string          `json:"phone2" gorm:"column:phone2"`
	CreditAllowed bool            `json:"credit_allowed" gorm:"column:credit_allowed;default:false;not null"`
	CreditLimit   decimal.Decimal `json:"credit_limit" gorm:"column:credit_limit;type:numeric(14,2);default:0;not null"`
	IsActive      bool            `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt     time.Time       `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Party) TableName() string { return "parties" }

// PartyBranch maps a party to a branch. Fully replaced on write from the
// payload's branch_ids.
type PartyBranch struct {
	ID       int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	PartyID  int64 `json:"party_id" gorm:"column:party_id;uniqueIndex:idx_party_branch,priority:1;not null"`
	BranchID int64 `json:"branch_id" gorm:"column:branch_id;uniqueIndex:idx_party_branch,priority:2;not null"`
}

// TableName returns the GORM table name.
func (PartyBranch) TableName() string { return "party_branches" }
