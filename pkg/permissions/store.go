package permissions

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/scopes"
)

// Store loads users and assembles their permission bags.
type Store struct {
	db *gorm.DB
}

// NewStore creates a permissions store.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates or updates the permission tables.
func (s *Store) AutoMigrate() error {
	for _, model := range []any{&User{}, &Role{}, &RolePermission{}, &UserPermissionOverride{}, &UserBranch{}} {
		if err := s.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("auto-migrate permissions: %w", err)
		}
	}
	return nil
}

// GetUser retrieves a user row by id. Returns nil, nil if not found.
func (s *Store) GetUser(id int64) (*User, error) {
	var u User
	if err := s.db.First(&u, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// GetUserByUsername retrieves a user row by username. Returns nil, nil if not found.
func (s *Store) GetUserByUsername(username string) (*User, error) {
	var u User
	if err := s.db.Where("username = ?", username).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &u, nil
}

// rolePermissionRow is the join of role_permissions with scopes.
type rolePermissionRow struct {
	RolePermission
	ScopeType scopes.ScopeType
	ScopeKey  string
}

// overrideRow is the join of user_permissions_override with scopes.
type overrideRow struct {
	UserPermissionOverride
	ScopeType scopes.ScopeType
	ScopeKey  string
}

// LoadAuthUser builds the pre-joined permission bag for a user: role grants
// merged with user overrides (a non-NULL override wins, NULL inherits).
// Returns nil, nil for unknown users.
func (s *Store) LoadAuthUser(userID int64) (*AuthUser, error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	var role Role
	if err := s.db.First(&role, user.PrimaryRoleID).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("get role: %w", err)
		}
	}

	var grants []rolePermissionRow
	err = s.db.Model(&RolePermission{}).
		Select("role_permissions.*, scopes.scope_type, scopes.scope_key").
		Joins("JOIN scopes ON scopes.id = role_permissions.scope_id").
		Where("role_permissions.role_id = ?", user.PrimaryRoleID).
		Scan(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("load role grants: %w", err)
	}

	var overrides []overrideRow
	err = s.db.Model(&UserPermissionOverride{}).
		Select("user_permissions_override.*, scopes.scope_type, scopes.scope_key").
		Joins("JOIN scopes ON scopes.id = user_permissions_override.scope_id").
		Where("user_permissions_override.user_id = ?", userID).
		Scan(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("load user overrides: %w", err)
	}

	bag := make(map[string]Entry, len(grants)+len(overrides))
	for _, g := range grants {
		bag[bagKey(g.ScopeType, g.ScopeKey)] = Entry{Flags: FlagSet{
			Navigate:   g.CanNavigate,
			View:       g.CanView,
			Create:     g.CanCreate,
			Edit:       g.CanEdit,
			Delete:     g.CanDelete,
			HardDelete: g.CanHardDelete,
			Print:      g.CanPrint,
			Approve:    g.CanApprove,
		}}
	}
	for _, o := range overrides {
		key := bagKey(o.ScopeType, o.ScopeKey)
		entry := bag[key]
		entry.Overrides = OverrideSet{
			Navigate:   o.CanNavigate,
			View:       o.CanView,
			Create:     o.CanCreate,
			Edit:       o.CanEdit,
			Delete:     o.CanDelete,
			HardDelete: o.CanHardDelete,
			Print:      o.CanPrint,
			Approve:    o.CanApprove,
		}
		applyOverride(&entry.Flags.Navigate, o.CanNavigate)
		applyOverride(&entry.Flags.View, o.CanView)
		applyOverride(&entry.Flags.Create, o.CanCreate)
		applyOverride(&entry.Flags.Edit, o.CanEdit)
		applyOverride(&entry.Flags.Delete, o.CanDelete)
		applyOverride(&entry.Flags.HardDelete, o.CanHardDelete)
		applyOverride(&entry.Flags.Print, o.CanPrint)
		applyOverride(&entry.Flags.Approve, o.CanApprove)
		bag[key] = entry
	}

	var branchIDs []int64
	err = s.db.Model(&UserBranch{}).Where("user_id = ?", userID).
		Order("branch_id").Pluck("branch_id", &branchIDs).Error
	if err != nil {
		return nil, fmt.Errorf("load user branches: %w", err)
	}

	return &AuthUser{
		ID:          user.ID,
		Username:    user.Username,
		IsAdmin:     role.IsAdmin,
		BranchIDs:   branchIDs,
		Permissions: bag,
	}, nil
}

func bagKey(scopeType scopes.ScopeType, scopeKey string) string {
	return string(scopeType) + ":" + scopeKey
}

func applyOverride(dst *bool, override *bool) {
	if override != nil {
		*dst = *override
	}
}
