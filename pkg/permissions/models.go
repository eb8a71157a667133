package permissions

import (
	"time"
)

// UserStatus is the account status of a user.
type UserStatus string

const (
	StatusActive   UserStatus = "Active"
	StatusInactive UserStatus = "Inactive"
)

// User is an ERP user account. PrimaryRoleID points at the role template the
// permission bag starts from; per-user overrides are applied on top.
type User struct {
	ID            int64      `gorm:"primaryKey;autoIncrement"`
	Username      string     `gorm:"column:username;uniqueIndex;not null"`
	Email         string     `gorm:"column:email"`
	PasswordHash  string     `gorm:"column:password_hash;not null"`
	FullName      string     `gorm:"column:full_name"`
	PrimaryRoleID int64      `gorm:"column:primary_role_id;not null"`
	Status        UserStatus `gorm:"column:status;default:Active;not null"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (User) TableName() string { return "users" }

// Role is a reusable permission template. IsAdmin marks god-mode roles whose
// members bypass all permission and approval checks.
type Role struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsAdmin     bool      `gorm:"column:is_admin;default:false;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the GORM table name.
func (Role) TableName() string { return "roles" }

// RolePermission grants action flags on one scope to one role.
// Raw grants are orthogonal; the dependency lattice between actions is
// enforced by the resolver at read time, never in storage.
type RolePermission struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	RoleID        int64 `gorm:"column:role_id;uniqueIndex:idx_role_scope,priority:1;not null"`
	ScopeID       int64 `gorm:"column:scope_id;uniqueIndex:idx_role_scope,priority:2;not null"`
	CanNavigate   bool  `gorm:"column:can_navigate;default:false;not null"`
	CanView       bool  `gorm:"column:can_view;default:false;not null"`
	CanCreate     bool  `gorm:"column:can_create;default:false;not null"`
	CanEdit       bool  `gorm:"column:can_edit;default:false;not null"`
	CanDelete     bool  `gorm:"column:can_delete;default:false;not null"`
	CanHardDelete bool  `gorm:"column:can_hard_delete;default:false;not null"`
	CanPrint      bool  `gorm:"column:can_print;default:false;not null"`
	CanApprove    bool  `gorm:"column:can_approve;default:false;not null"`
}

// TableName returns the GORM table name.
func (RolePermission) TableName() string { return "role_permissions" }

// UserPermissionOverride is a per-user delta on top of the role grant.
// NULL inherits from the role, TRUE forces allow, FALSE forces deny.
type UserPermissionOverride struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	UserID        int64 `gorm:"column:user_id;uniqueIndex:idx_user_scope,priority:1;not null"`
	ScopeID       int64 `gorm:"column:scope_id;uniqueIndex:idx_user_scope,priority:2;not null"`
	CanNavigate   *bool `gorm:"column:can_navigate"`
	CanView       *bool `gorm:"column:can_view"`
	CanCreate     *bool `gorm:"column:can_create"`
	CanEdit       *bool `gorm:"column:can_edit"`
	CanDelete     *bool `gorm:"column:can_delete"`
	CanHardDelete *bool `gorm:"column:can_hard_delete"`
	CanPrint      *bool `gorm:"column:can_print"`
	CanApprove    *bool `gorm:"column:can_approve"`
}

// TableName returns the GORM table name.
func (UserPermissionOverride) TableName() string { return "user_permissions_override" }

// UserBranch is the many-to-many membership between users and branches.
// The session carries the active branch id from this set.
type UserBranch struct {
	ID       int64 `gorm:"primaryKey;autoIncrement"`
	UserID   int64 `gorm:"column:user_id;uniqueIndex:idx_user_branch,priority:1;not null"`
	BranchID int64 `gorm:"column:branch_id;uniqueIndex:idx_user_branch,priority:2;not null"`
}

// TableName returns the GORM table name.
func (UserBranch) TableName() string { return "user_branches" }

// FlagSet is the resolved action flags for one scope after merging role
// grants with user overrides.
type FlagSet struct {
	Navigate   bool
	View       bool
	Create     bool
	Edit       bool
	Delete     bool
	HardDelete bool
	Print      bool
	Approve    bool
}

// OverrideSet carries the raw per-user overrides for one scope so the
// resolver can distinguish an explicit FALSE from an inherited absence.
type OverrideSet struct {
	Navigate   *bool
	View       *bool
	Create     *bool
	Edit       *bool
	Delete     *bool
	HardDelete *bool
	Print      *bool
	Approve    *bool
}

// Entry is one permission-bag slot: merged flags plus the raw overrides.
type Entry struct {
	Flags     FlagSet
	Overrides OverrideSet
}

// AuthUser is the request-scoped identity the resolver operates on.
// Permissions is a flat bag keyed "SCREEN:<key>" / "MODULE:<key>".
type AuthUser struct {
	ID          int64
	Username    string
	IsAdmin     bool
	BranchIDs   []int64
	Permissions map[string]Entry
}

// MemberOf reports whether the user belongs to the given branch.
func (u *AuthUser) MemberOf(branchID int64) bool {
	for _, id := range u.BranchIDs {
		if id == branchID {
			return true
		}
	}
	return false
}
