package permissions

import (
	"github.com/strideworks/erp-core/pkg/scopes"
)

// Action is a permission verb on a scope.
type Action string

const (
	ActionView       Action = "view"
	ActionNavigate   Action = "navigate"
	ActionCreate     Action = "create"
	ActionEdit       Action = "edit"
	ActionDelete     Action = "delete"
	ActionHardDelete Action = "hard_delete"
	ActionPrint      Action = "print"
	ActionApprove    Action = "approve"
)

// Resolver answers permission checks against a user's pre-joined bag.
// Resolution order: direct screen entry, legacy alias, enclosing module.
// An explicit user override of FALSE at the screen level is terminal and is
// never rescued by a module-level grant.
type Resolver struct {
	nav *scopes.NavigationTree
}

// NewResolver creates a resolver over a static navigation tree.
func NewResolver(nav *scopes.NavigationTree) *Resolver {
	return &Resolver{nav: nav}
}

// HasPermission reports whether the user may perform action on the screen
// scope. Admins always pass. The check is total and deterministic.
func (r *Resolver) HasPermission(user *AuthUser, scopeKey string, action Action) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin {
		return true
	}

	flags := requiredFlags(action)

	// Direct screen entry. An explicit override deny short-circuits.
	if entry, ok := user.Permissions["SCREEN:"+scopeKey]; ok {
		if explicitlyDenied(entry.Overrides, flags) {
			return false
		}
		if hasAll(entry.Flags, flags) {
			return true
		}
	}

	// Legacy alias fallback, in both directions: grants stored under the old
	// key and checks issued with the old key both resolve.
	canonical := scopes.CanonicalKey(scopeKey)
	if legacy, ok := scopes.LegacyKey(canonical); ok && legacy != scopeKey {
		if entry, ok := user.Permissions["SCREEN:"+legacy]; ok && hasAll(entry.Flags, flags) {
			return true
		}
	}
	if canonical != scopeKey {
		if entry, ok := user.Permissions["SCREEN:"+canonical]; ok && hasAll(entry.Flags, flags) {
			return true
		}
	}

	// Module inheritance: module grants apply to every child screen.
	if moduleKey, ok := r.nav.ModuleOf(canonical); ok {
		if entry, ok := user.Permissions["MODULE:"+moduleKey]; ok && hasAll(entry.Flags, flags) {
			return true
		}
	}

	return false
}

// flagMask marks which of the eight flags an action requires.
type flagMask struct {
	navigate, view, create, edit, del, hardDelete, print, approve bool
}

// requiredFlags applies the dependency lattice: can_navigate additionally
// requires can_view; edit, delete, hard_delete, print and approve additionally
// require can_navigate (and transitively can_view).
func requiredFlags(action Action) flagMask {
	switch action {
	case ActionView:
		return flagMask{view: true}
	case ActionNavigate:
		return flagMask{navigate: true, view: true}
	case ActionCreate:
		return flagMask{create: true}
	case ActionEdit:
		return flagMask{edit: true, navigate: true, view: true}
	case ActionDelete:
		return flagMask{del: true, navigate: true, view: true}
	case ActionHardDelete:
		return flagMask{hardDelete: true, navigate: true, view: true}
	case ActionPrint:
		return flagMask{print: true, navigate: true, view: true}
	case ActionApprove:
		return flagMask{approve: true, navigate: true, view: true}
	default:
		// Unknown verbs never resolve.
		return flagMask{navigate: true, view: true, create: true, edit: true,
			del: true, hardDelete: true, print: true, approve: true}
	}
}

func hasAll(f FlagSet, m flagMask) bool {
	if m.navigate && !f.Navigate {
		return false
	}
	if m.view && !f.View {
		return false
	}
	if m.create && !f.Create {
		return false
	}
	if m.edit && !f.Edit {
		return false
	}
	if m.del && !f.Delete {
		return false
	}
	if m.hardDelete && !f.HardDelete {
		return false
	}
	if m.print && !f.Print {
		return false
	}
	if m.approve && !f.Approve {
		return false
	}
	return true
}

// explicitlyDenied reports whether any flag the action requires carries an
// explicit FALSE override.
func explicitlyDenied(o OverrideSet, m flagMask) bool {
	deny := func(p *bool) bool { return p != nil && !*p }
	if m.navigate && deny(o.Navigate) {
		return true
	}
	if m.view && deny(o.View) {
		return true
	}
	if m.create && deny(o.Create) {
		return true
	}
	if m.edit && deny(o.Edit) {
		return true
	}
	if m.del && deny(o.Delete) {
		return true
	}
	if m.hardDelete && deny(o.HardDelete) {
		return true
	}
	if m.print && deny(o.Print) {
		return true
	}
	if m.approve && deny(o.Approve) {
		return true
	}
	return false
}
