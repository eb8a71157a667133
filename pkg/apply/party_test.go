package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func partyBranchIDs(t *testing.T, db *gorm.DB, partyID int64) []int64 {
	t.Helper()
	var rows []masterdata.PartyBranch
	require.NoError(t, db.Where("party_id = ?", partyID).Order("branch_id").Find(&rows).Error)
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.BranchID)
	}
	return ids
}

func TestApplyParty_CreateWithoutCreditZeroesLimit(t *testing.T) {
	db := newTestDB(t)

	created, err := NewApplier().Apply(db, createReq(approval.EntityParty, map[string]any{
		"name":           "Khan Traders",
		"party_type":     "CUSTOMER",
		"credit_allowed": false,
		"credit_limit":   float64(50000),
	}), 1)
	require.NoError(t, err)

	var party masterdata.Party
	require.NoError(t, db.First(&party, created.EntityID).Error)
	assert.False(t, party.CreditAllowed)
	assert.True(t, party.CreditLimit.IsZero(), "a limit without the flag is meaningless and is dropped")
}

func TestApplyParty_CreateWithCreditKeepsLimit(t *testing.T) {
	db := newTestDB(t)

	created, err := NewApplier().Apply(db, createReq(approval.EntityParty, map[string]any{
		"name":           "Zafar & Sons",
		"party_type":     "SUPPLIER",
		"credit_allowed": true,
		"credit_limit":   float64(75000),
	}), 1)
	require.NoError(t, err)

	var party masterdata.Party
	require.NoError(t, db.First(&party, created.EntityID).Error)
	assert.True(t, party.CreditAllowed)
	assert.Equal(t, "75000", party.CreditLimit.String())
}

func TestApplyParty_UpdateRevokingCreditZeroesLimit(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityParty, map[string]any{
		"name":           "Zafar & Sons",
		"party_type":     "SUPPLIER",
		"credit_allowed": true,
		"credit_limit":   float64(75000),
	}), 1)
	require.NoError(t, err)

	// Turning the flag off forces the limit to zero even though the payload
	// never mentions credit_limit.
	_, err = applier.Apply(db, updateReq(approval.EntityParty, created.EntityID, map[string]any{
		"credit_allowed": false,
	}), 1)
	require.NoError(t, err)

	var party masterdata.Party
	require.NoError(t, db.First(&party, created.EntityID).Error)
	assert.False(t, party.CreditAllowed)
	assert.True(t, party.CreditLimit.IsZero())
}

func TestApplyParty_UpdateUnrelatedFieldKeepsCredit(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityParty, map[string]any{
		"name":           "Zafar & Sons",
		"party_type":     "SUPPLIER",
		"credit_allowed": true,
		"credit_limit":   float64(75000),
	}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, updateReq(approval.EntityParty, created.EntityID, map[string]any{
		"address": "14-B Industrial Estate",
	}), 1)
	require.NoError(t, err)

	var party masterdata.Party
	require.NoError(t, db.First(&party, created.EntityID).Error)
	assert.Equal(t, "14-B Industrial Estate", party.Address)
	assert.True(t, party.CreditAllowed)
	assert.Equal(t, "75000", party.CreditLimit.String())
}

func TestApplyParty_BranchesReplaced(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()
	branches := seedBranches(t, db, "LHR", "KHI")

	created, err := applier.Apply(db, createReq(approval.EntityParty, map[string]any{
		"name":       "Khan Traders",
		"party_type": "CUSTOMER",
		"branch_ids": []any{float64(branches[0])},
	}), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{branches[0]}, partyBranchIDs(t, db, created.EntityID))

	_, err = applier.Apply(db, updateReq(approval.EntityParty, created.EntityID, map[string]any{
		"branch_ids": []any{float64(branches[1])},
	}), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{branches[1]}, partyBranchIDs(t, db, created.EntityID))
}

func TestApplyParty_ToggleAndDelete(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()
	branches := seedBranches(t, db, "LHR")

	created, err := applier.Apply(db, createReq(approval.EntityParty, map[string]any{
		"name":       "Khan Traders",
		"party_type": "CUSTOMER",
		"branch_ids": []any{float64(branches[0])},
	}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, actionReq(approval.EntityParty, created.EntityID, approval.ActionToggle), 1)
	require.NoError(t, err)
	var party masterdata.Party
	require.NoError(t, db.First(&party, created.EntityID).Error)
	assert.False(t, party.IsActive)

	_, err = applier.Apply(db, actionReq(approval.EntityParty, created.EntityID, approval.ActionDelete), 1)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&masterdata.Party{}).Where("id = ?", created.EntityID).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, partyBranchIDs(t, db, created.EntityID))

	_, err = applier.Apply(db, actionReq(approval.EntityParty, created.EntityID, approval.ActionDelete), 1)
	assert.Equal(t, "NOT_FOUND", validationCode(t, err))
}
