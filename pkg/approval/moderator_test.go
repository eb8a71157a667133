package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/activity"
)

func newModeratorFixture(t *testing.T, applier Applier) (*Moderator, *RequestStore, *activity.Store, *fakeNotifier) {
	t.Helper()
	db := newTestDB(t)
	requests := NewRequestStore(db)
	log := activity.NewStore(db)
	notifier := &fakeNotifier{}
	return NewModerator(db, requests, applier, log, notifier), requests, log, notifier
}

func TestModerator_Approve_AppliesAndLogs(t *testing.T) {
	applier := &fakeApplier{result: ApplyResult{Applied: true, EntityID: 42}}
	m, requests, log, notifier := newModeratorFixture(t, applier)
	req := pendingRequest(t, requests.db, nil)

	result, err := m.Approve(req.ID, 9, "looks right")
	require.NoError(t, err)
	assert.EqualValues(t, 42, result.EntityID)
	assert.Equal(t, 1, applier.calls)

	got, err := requests.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)

	entries, _, err := log.ListByEntity(string(EntityColor), "42", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.LogCreate, entries[0].Action)
	assert.EqualValues(t, req.ID, entries[0].Context["approval_request_id"])

	require.Len(t, notifier.events, 1)
	assert.EqualValues(t, req.RequestedBy, notifier.userIDs[0])
	assert.Equal(t, StatusApproved, notifier.events[0].Status)
	assert.Equal(t, "looks right", notifier.events[0].Note)
}

func TestModerator_Approve_ApplyFailureLeavesPending(t *testing.T) {
	applier := &fakeApplier{err: assert.AnError}
	m, requests, log, notifier := newModeratorFixture(t, applier)
	req := pendingRequest(t, requests.db, nil)

	_, err := m.Approve(req.ID, 9, "")
	require.Error(t, err)

	got, err := requests.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, got.Status, "failed apply rolls the decision back")

	entries, _, err := log.ListByEntity(string(EntityColor), "0", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Empty(t, notifier.events)
}

func TestModerator_Approve_AppliesPayloadCurrentAtDecision(t *testing.T) {
	applier := &fakeApplier{result: ApplyResult{Applied: true, EntityID: 1}}
	m, requests, _, _ := newModeratorFixture(t, applier)
	req := pendingRequest(t, requests.db, nil)

	// An edit lands right after Approve's existence lookup and before the
	// decision transaction. The replayed payload must be the edited one.
	edited := false
	err := requests.db.Callback().Query().After("gorm:query").Register("edit_between_read_and_decide", func(d *gorm.DB) {
		if edited || d.Statement.Table != "approval_requests" {
			return
		}
		edited = true
		require.NoError(t, requests.UpdateNewValue(req.ID, JSONAny{"_action": "create", "name": "Midnight"}))
	})
	require.NoError(t, err)

	_, err = m.Approve(req.ID, 9, "")
	require.NoError(t, err)
	require.True(t, edited)
	require.NotNil(t, applier.lastReq)
	assert.Equal(t, "Midnight", applier.lastReq.NewValue["name"])
}

func TestModerator_Approve_AlreadyDecided(t *testing.T) {
	applier := &fakeApplier{result: ApplyResult{Applied: true, EntityID: 1}}
	m, requests, _, _ := newModeratorFixture(t, applier)
	req := pendingRequest(t, requests.db, nil)

	_, err := m.Approve(req.ID, 9, "")
	require.NoError(t, err)

	_, err = m.Approve(req.ID, 10, "")
	assert.ErrorIs(t, err, ErrNotPending)
	assert.Equal(t, 1, applier.calls, "payload is never replayed twice")
}

func TestModerator_Approve_UnknownRequest(t *testing.T) {
	m, _, _, _ := newModeratorFixture(t, &fakeApplier{})

	_, err := m.Approve(12345, 9, "")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}

func TestModerator_Reject(t *testing.T) {
	applier := &fakeApplier{}
	m, requests, log, notifier := newModeratorFixture(t, applier)
	req := pendingRequest(t, requests.db, nil)

	require.NoError(t, m.Reject(req.ID, 9, "wrong branch"))
	assert.Zero(t, applier.calls, "reject never touches the applier")

	got, err := requests.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, got.Status)
	assert.Equal(t, "wrong branch", got.DecisionNote)

	entries, _, err := log.ListByEntity(string(EntityColor), req.EntityID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, activity.LogReject, entries[0].Action)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, StatusRejected, notifier.events[0].Status)
}

func TestModerator_Edit(t *testing.T) {
	m, requests, _, _ := newModeratorFixture(t, &fakeApplier{})
	req := pendingRequest(t, requests.db, nil)

	changed, err := m.Edit(req.ID, 9, map[string]any{"name": "Midnight"})
	require.NoError(t, err)
	require.Len(t, changed, 1)

	got, err := requests.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, "Midnight", got.NewValue["name"])
	assert.Equal(t, StatusPending, got.Status)

	// No effective change returns nil without writing anything.
	changed, err = m.Edit(req.ID, 9, map[string]any{"name": "Midnight"})
	require.NoError(t, err)
	assert.Nil(t, changed)
}

func TestModerator_Edit_DecidedRequest(t *testing.T) {
	m, requests, _, _ := newModeratorFixture(t, &fakeApplier{result: ApplyResult{Applied: true}})
	req := pendingRequest(t, requests.db, nil)
	_, err := m.Approve(req.ID, 9, "")
	require.NoError(t, err)

	_, err = m.Edit(req.ID, 9, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotPending)
}
