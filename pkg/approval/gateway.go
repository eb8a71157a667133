package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/strideworks/erp-core/pkg/permissions"
)

// ErrPermissionDenied is returned when a mutation is neither directly allowed
// nor eligible for the approval queue.
var ErrPermissionDenied = errors.New("permission denied")

// PermissionResolver is the slice of the permission resolver the gateway
// needs. Satisfied by *permissions.Resolver.
type PermissionResolver interface {
	HasPermission(user *permissions.AuthUser, scopeKey string, action permissions.Action) bool
}

// GatewayInput describes one intended screen mutation.
type GatewayInput struct {
	User       *permissions.AuthUser
	BranchID   int64
	ScopeKey   string
	Action     permissions.Action
	EntityType EntityType
	EntityID   string // numeric id, or EntityIDNew
	Summary    string
	OldValue   map[string]any
	NewValue   map[string]any
}

// GatewayResult reports whether the mutation was queued. Queued=false means
// the caller must apply the change directly.
type GatewayResult struct {
	Queued    bool
	RequestID int64
}

// Gateway is the per-mutation decision point: admin bypass, direct permission,
// approval queue, or deny.
type Gateway struct {
	resolver PermissionResolver
	policies *PolicyStore
	requests *RequestStore
	notices  *NoticeStore
}

// NewGateway creates an approval gateway. notices may be nil, in which case no
// UI notice is deposited on enqueue.
func NewGateway(resolver PermissionResolver, policies *PolicyStore, requests *RequestStore, notices *NoticeStore) *Gateway {
	return &Gateway{resolver: resolver, policies: policies, requests: requests, notices: notices}
}

// Resolver exposes the permission resolver for read-side checks.
func (g *Gateway) Resolver() PermissionResolver {
	return g.resolver
}

// HandleScreenApproval decides one mutation:
//
//	admin                        -> apply directly
//	direct permission, no policy -> apply directly
//	direct permission, policy    -> enqueue
//	no permission, policy        -> enqueue
//	no permission, no policy     -> ErrPermissionDenied
//
// Policy lookup failures propagate; the gateway never falls back to a direct
// apply when the policy store is unreachable.
func (g *Gateway) HandleScreenApproval(ctx context.Context, in GatewayInput) (GatewayResult, error) {
	if in.User == nil {
		return GatewayResult{}, ErrPermissionDenied
	}
	if in.User.IsAdmin {
		return GatewayResult{Queued: false}, nil
	}

	allowed := g.resolver.HasPermission(in.User, in.ScopeKey, in.Action)

	requires, err := g.policies.RequiresApproval("SCREEN", in.ScopeKey, policyActionFor(in.Action))
	if err != nil {
		return GatewayResult{}, err
	}

	if allowed && !requires {
		return GatewayResult{Queued: false}, nil
	}
	if !allowed && !requires {
		return GatewayResult{}, ErrPermissionDenied
	}

	req := &ApprovalRequestRecord{
		BranchID:    in.BranchID,
		RequestType: "screen_change",
		EntityType:  in.EntityType,
		EntityKey:   in.ScopeKey,
		EntityID:    in.EntityID,
		Summary:     in.Summary,
		OldValue:    JSONAny(in.OldValue),
		NewValue:    JSONAny(in.NewValue),
		RequestedBy: in.User.ID,
	}
	if err := g.requests.Create(req); err != nil {
		return GatewayResult{}, err
	}

	// The notice is advisory; its failure never unwinds the enqueue.
	if g.notices != nil {
		err := g.notices.Push(ctx, in.User.ID, Notice{
			Kind:      "queued",
			Message:   fmt.Sprintf("Change to %s sent for approval", in.Summary),
			RequestID: req.ID,
		})
		if err != nil {
			slog.Warn("approval notice not delivered",
				"userID", in.User.ID, "requestID", req.ID, "error", err)
		}
	}

	return GatewayResult{Queued: true, RequestID: req.ID}, nil
}

// policyActionFor maps a permission verb onto the policy action column.
func policyActionFor(action permissions.Action) PolicyAction {
	switch action {
	case permissions.ActionCreate:
		return PolicyCreate
	case permissions.ActionDelete:
		return PolicyDelete
	case permissions.ActionHardDelete:
		return PolicyHardDelete
	default:
		return PolicyEdit
	}
}
