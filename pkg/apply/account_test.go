package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func seedBranches(t *testing.T, db *gorm.DB, codes ...string) []int64 {
	t.Helper()
	ids := make([]int64, 0, len(codes))
	for _, code := range codes {
		b := masterdata.Branch{Code: code, Name: code, IsActive: true}
		require.NoError(t, db.Create(&b).Error)
		ids = append(ids, b.ID)
	}
	return ids
}

func accountBranchIDs(t *testing.T, db *gorm.DB, accountID int64) []int64 {
	t.Helper()
	var rows []masterdata.AccountBranch
	require.NoError(t, db.Where("account_id = ?", accountID).Order("branch_id").Find(&rows).Error)
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.BranchID)
	}
	return ids
}

func TestApplyAccount_CreateWithBranches(t *testing.T) {
	db := newTestDB(t)
	branches := seedBranches(t, db, "LHR", "KHI")

	created, err := NewApplier().Apply(db, createReq(approval.EntityAccount, map[string]any{
		"code":             "CASH-01",
		"name":             "Cash in Hand",
		"account_group_id": float64(1),
		"account_type":     "ASSET",
		"branch_ids":       []any{float64(branches[0]), float64(branches[1])},
	}), 1)
	require.NoError(t, err)

	var account masterdata.Account
	require.NoError(t, db.First(&account, created.EntityID).Error)
	assert.Equal(t, "CASH-01", account.Code)
	assert.True(t, account.IsActive)
	assert.ElementsMatch(t, branches, accountBranchIDs(t, db, account.ID))
}

func TestApplyAccount_DuplicateCode(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	payload := map[string]any{"code": "CASH-01", "name": "Cash", "account_group_id": float64(1)}
	_, err := applier.Apply(db, createReq(approval.EntityAccount, payload), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, createReq(approval.EntityAccount, payload), 1)
	assert.Equal(t, "DUPLICATE_CODE", validationCode(t, err))
	assert.EqualError(t, err, `Code "CASH-01" is already in use`)
}

func TestApplyAccount_UpdateReplacesBranchesOnlyWhenPresent(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()
	branches := seedBranches(t, db, "LHR", "KHI", "ISB")

	created, err := applier.Apply(db, createReq(approval.EntityAccount, map[string]any{
		"code":             "BANK-01",
		"name":             "Bank",
		"account_group_id": float64(1),
		"branch_ids":       []any{float64(branches[0])},
	}), 1)
	require.NoError(t, err)

	// Renaming without branch_ids leaves the branch map alone.
	_, err = applier.Apply(db, updateReq(approval.EntityAccount, created.EntityID, map[string]any{
		"name": "Bank Main",
	}), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{branches[0]}, accountBranchIDs(t, db, created.EntityID))

	_, err = applier.Apply(db, updateReq(approval.EntityAccount, created.EntityID, map[string]any{
		"branch_ids": []any{float64(branches[1]), float64(branches[2])},
	}), 1)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{branches[1], branches[2]}, accountBranchIDs(t, db, created.EntityID))

	var account masterdata.Account
	require.NoError(t, db.First(&account, created.EntityID).Error)
	assert.Equal(t, "Bank Main", account.Name)
}

func TestApplyAccount_DeleteRemovesBranchMap(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()
	branches := seedBranches(t, db, "LHR")

	created, err := applier.Apply(db, createReq(approval.EntityAccount, map[string]any{
		"code":             "EXP-01",
		"name":             "Expenses",
		"account_group_id": float64(1),
		"branch_ids":       []any{float64(branches[0])},
	}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, actionReq(approval.EntityAccount, created.EntityID, approval.ActionDelete), 1)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&masterdata.Account{}).Where("id = ?", created.EntityID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, accountBranchIDs(t, db, created.EntityID))
}
