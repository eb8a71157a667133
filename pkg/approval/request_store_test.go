package approval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestStore_CreateStampsSchemaVersion(t *testing.T) {
	db := newTestDB(t)
	store := NewRequestStore(db)

	req := pendingRequest(t, db, nil)
	assert.Equal(t, StatusPending, req.Status)

	got, err := store.Get(req.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.EqualValues(t, SchemaVersion, got.NewValue["_schema_version"])
}

func TestRequestStore_GetUnknown(t *testing.T) {
	store := NewRequestStore(newTestDB(t))

	got, err := store.Get(999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMarkDecided_OneWayTransition(t *testing.T) {
	db := newTestDB(t)
	store := NewRequestStore(db)
	req := pendingRequest(t, db, nil)

	require.NoError(t, store.MarkDecided(nil, req.ID, StatusApproved, 9, "ok"))

	got, err := store.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.DecidedBy)
	assert.EqualValues(t, 9, *got.DecidedBy)
	assert.NotNil(t, got.DecidedAt)
	assert.Equal(t, "ok", got.DecisionNote)

	// Second decision on the same request loses.
	err = store.MarkDecided(nil, req.ID, StatusRejected, 10, "")
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestMarkDecided_RejectsInvalidStatus(t *testing.T) {
	db := newTestDB(t)
	store := NewRequestStore(db)
	req := pendingRequest(t, db, nil)

	assert.Error(t, store.MarkDecided(nil, req.ID, StatusCancelled, 9, ""))
}

func TestCancel_OnlyRequesterAndOnlyPending(t *testing.T) {
	db := newTestDB(t)
	store := NewRequestStore(db)
	req := pendingRequest(t, db, nil)

	// Someone else cannot cancel.
	assert.ErrorIs(t, store.Cancel(req.ID, 999), ErrNotPending)

	require.NoError(t, store.Cancel(req.ID, req.RequestedBy))
	got, err := store.Get(req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)

	// Cancelling twice fails.
	assert.ErrorIs(t, store.Cancel(req.ID, req.RequestedBy), ErrNotPending)
}

func TestList_FiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	store := NewRequestStore(db)

	for i := 0; i < 3; i++ {
		pendingRequest(t, db, nil)
	}
	pendingRequest(t, db, func(r *ApprovalRequestRecord) {
		r.EntityType = EntityItem
		r.BranchID = 2
	})
	decided := pendingRequest(t, db, nil)
	require.NoError(t, store.MarkDecided(nil, decided.ID, StatusRejected, 9, ""))

	rows, _, err := store.List(ListFilter{Status: StatusPending}, 20, 0)
	require.NoError(t, err)
	assert.Len(t, rows, 4)

	rows, _, err = store.List(ListFilter{EntityType: EntityItem}, 20, 0)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 2, rows[0].BranchID)

	page1, next, err := store.List(ListFilter{Status: StatusPending}, 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.NotZero(t, next)
	page2, _, err := store.List(ListFilter{Status: StatusPending}, 2, next)
	require.NoError(t, err)
	require.Len(t, page2, 2)
	assert.Less(t, page2[0].ID, page1[1].ID)
}

func TestInferredAction(t *testing.T) {
	r := &ApprovalRequestRecord{EntityID: EntityIDNew}
	assert.Equal(t, ActionCreate, r.InferredAction())

	r = &ApprovalRequestRecord{EntityID: "7"}
	assert.Equal(t, ActionUpdate, r.InferredAction())

	r = &ApprovalRequestRecord{EntityID: "7", NewValue: JSONAny{"_action": "toggle"}}
	assert.Equal(t, ActionToggle, r.InferredAction())
}
