package approval

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideworks/erp-core/pkg/permissions"
)

func newGateway(t *testing.T, allowed bool, withNotices bool) (*Gateway, *PolicyStore, *RequestStore, *miniredis.Miniredis) {
	t.Helper()
	db := newTestDB(t)
	policies := NewPolicyStore(db)
	requests := NewRequestStore(db)

	var notices *NoticeStore
	var mr *miniredis.Miniredis
	if withNotices {
		mr = miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		notices = NewNoticeStore(rdb, time.Minute)
	}
	return NewGateway(stubResolver{allowed: allowed}, policies, requests, notices), policies, requests, mr
}

func gatewayInput(user *permissions.AuthUser) GatewayInput {
	return GatewayInput{
		User:       user,
		BranchID:   1,
		ScopeKey:   "master_data.colors",
		Action:     permissions.ActionCreate,
		EntityType: EntityColor,
		EntityID:   EntityIDNew,
		Summary:    `color "Navy"`,
		NewValue:   map[string]any{"_action": "create", "name": "Navy"},
	}
}

func TestGateway_AdminBypassesEverything(t *testing.T) {
	g, policies, _, _ := newGateway(t, false, false)
	require.NoError(t, policies.Set("SCREEN", "master_data.colors", PolicyCreate, true))

	res, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 1, IsAdmin: true}))
	require.NoError(t, err)
	assert.False(t, res.Queued, "admin applies directly even under a policy")
}

func TestGateway_AllowedNoPolicy_AppliesDirectly(t *testing.T) {
	g, _, _, _ := newGateway(t, true, false)

	res, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 2}))
	require.NoError(t, err)
	assert.False(t, res.Queued)
}

func TestGateway_AllowedWithPolicy_Queues(t *testing.T) {
	g, policies, requests, mr := newGateway(t, true, true)
	require.NoError(t, policies.Set("SCREEN", "master_data.colors", PolicyCreate, true))

	res, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 2}))
	require.NoError(t, err)
	assert.True(t, res.Queued)
	require.NotZero(t, res.RequestID)

	req, err := requests.Get(res.RequestID)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, StatusPending, req.Status)
	assert.EqualValues(t, 2, req.RequestedBy)
	assert.Equal(t, "create", req.NewValue["_action"])
	assert.EqualValues(t, SchemaVersion, req.NewValue["_schema_version"])

	// A queued notice lands in the requester's list.
	assert.True(t, mr.Exists("erp:notices:2"))
}

func TestGateway_NoticeFailureStillQueues(t *testing.T) {
	g, policies, requests, mr := newGateway(t, true, true)
	require.NoError(t, policies.Set("SCREEN", "master_data.colors", PolicyCreate, true))
	mr.Close()

	res, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 2}))
	require.NoError(t, err, "an unreachable notice store never blocks the enqueue")
	assert.True(t, res.Queued)

	req, err := requests.Get(res.RequestID)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, StatusPending, req.Status)
}

func TestGateway_DeniedWithPolicy_Queues(t *testing.T) {
	g, policies, _, _ := newGateway(t, false, false)
	require.NoError(t, policies.Set("SCREEN", "master_data.colors", PolicyCreate, true))

	res, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 3}))
	require.NoError(t, err)
	assert.True(t, res.Queued)
}

func TestGateway_DeniedNoPolicy_Rejected(t *testing.T) {
	g, _, _, _ := newGateway(t, false, false)

	_, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 3}))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGateway_NilUser_Rejected(t *testing.T) {
	g, _, _, _ := newGateway(t, true, false)

	_, err := g.HandleScreenApproval(context.Background(), gatewayInput(nil))
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestGateway_PolicyScopedToAction(t *testing.T) {
	g, policies, _, _ := newGateway(t, true, false)
	require.NoError(t, policies.Set("SCREEN", "master_data.colors", PolicyDelete, true))

	// Create is not gated by a delete policy.
	res, err := g.HandleScreenApproval(context.Background(), gatewayInput(&permissions.AuthUser{ID: 2}))
	require.NoError(t, err)
	assert.False(t, res.Queued)

	in := gatewayInput(&permissions.AuthUser{ID: 2})
	in.Action = permissions.ActionDelete
	res, err = g.HandleScreenApproval(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, res.Queued)
}
