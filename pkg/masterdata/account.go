package masterdata

import "time"

// Account is a chart-of-accounts entry scoped to one or more branches via
// the account_branches map.
type Account struct {
	ID             int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Code           string    `json:"code" gorm:"column:code;uniqueIndex;not null"`
	Name           string    `json:"name" gorm:"column:name;not null"`
	AccountGroupID int64     `json:"account_group_id" gorm:"column:account_group_id;not null"`
	AccountType    string    `json:"account_type" gorm:"column:account_type"`
	IsActive       bool      `json:"is_active" gorm:"column:is_active;default:true;not null"`
	CreatedAt      time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Account) TableName() string { return "accounts" }

// AccountBranch maps an account to a branch. Fully replaced on write from the
// payload's branch_ids.
type AccountBranch struct {
	ID        int64 `json:"id" gorm:"primaryKey;autoIncrement"`
	AccountID int64 `json:"account_id" gorm:"column:account_id;uniqueIndex:idx_account_branch,priority:1;not null"`
	BranchID  int64 `json:"branch_id" gorm:"column:branch_id;uniqueIndex:idx_account_branch,priority:2;not null"`
}

// TableName returns the GORM table name.
func (AccountBranch) TableName() string { return "account_branches" }
