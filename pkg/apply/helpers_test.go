package apply

import (
	"errors"
	"strconv"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, masterdata.AutoMigrate(db))
	return db
}

func createReq(entityType approval.EntityType, payload map[string]any) *approval.ApprovalRequestRecord {
	return &approval.ApprovalRequestRecord{
		EntityType: entityType,
		EntityID:   approval.EntityIDNew,
		NewValue:   approval.JSONAny(payload),
	}
}

func updateReq(entityType approval.EntityType, id int64, payload map[string]any) *approval.ApprovalRequestRecord {
	return &approval.ApprovalRequestRecord{
		EntityType: entityType,
		EntityID:   strconv.FormatInt(id, 10),
		NewValue:   approval.JSONAny(payload),
	}
}

func actionReq(entityType approval.EntityType, id int64, action approval.Action) *approval.ApprovalRequestRecord {
	return &approval.ApprovalRequestRecord{
		EntityType: entityType,
		EntityID:   strconv.FormatInt(id, 10),
		NewValue:   approval.JSONAny{"_action": string(action)},
	}
}

// validationCode unwraps a ValidationError and returns its code, failing the
// test when the error is of any other kind.
func validationCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected a validation error, got %v", err)
	return verr.Code
}
