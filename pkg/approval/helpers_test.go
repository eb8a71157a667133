package approval

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strideworks/erp-core/pkg/activity"
	"github.com/strideworks/erp-core/pkg/permissions"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, NewRequestStore(db).AutoMigrate())
	require.NoError(t, NewPolicyStore(db).AutoMigrate())
	require.NoError(t, activity.NewStore(db).AutoMigrate())
	return db
}

// stubResolver answers every permission check with a fixed verdict.
type stubResolver struct {
	allowed bool
}

func (s stubResolver) HasPermission(*permissions.AuthUser, string, permissions.Action) bool {
	return s.allowed
}

// fakeApplier records apply calls and optionally fails.
type fakeApplier struct {
	result  ApplyResult
	err     error
	calls   int
	lastReq *ApprovalRequestRecord
}

func (f *fakeApplier) Apply(tx *gorm.DB, req *ApprovalRequestRecord, actorUserID int64) (ApplyResult, error) {
	f.calls++
	f.lastReq = req
	if f.err != nil {
		return ApplyResult{}, f.err
	}
	return f.result, nil
}

// fakeNotifier captures decision events.
type fakeNotifier struct {
	userIDs []int64
	events  []DecisionEvent
}

func (f *fakeNotifier) Notify(userID int64, event DecisionEvent) {
	f.userIDs = append(f.userIDs, userID)
	f.events = append(f.events, event)
}

func pendingRequest(t *testing.T, db *gorm.DB, mutate func(*ApprovalRequestRecord)) *ApprovalRequestRecord {
	t.Helper()
	req := &ApprovalRequestRecord{
		BranchID:    1,
		EntityType:  EntityColor,
		EntityKey:   "master_data.colors",
		EntityID:    EntityIDNew,
		Summary:     `color "Navy"`,
		NewValue:    JSONAny{"_action": "create", "name": "Navy"},
		RequestedBy: 5,
	}
	if mutate != nil {
		mutate(req)
	}
	require.NoError(t, NewRequestStore(db).Create(req))
	return req
}
