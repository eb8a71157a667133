package apply

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/bom"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func TestApplyBom_DraftLifecycle(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	rm := masterdata.Item{ItemType: masterdata.ItemTypeRM, Code: "rm-leather", Name: "Leather", IsActive: true}
	sfg := masterdata.Item{ItemType: masterdata.ItemTypeSFG, Code: "sfg-upper", Name: "Runner - Upper", IsActive: true}
	require.NoError(t, db.Create(&rm).Error)
	require.NoError(t, db.Create(&sfg).Error)

	payload := map[string]any{
		"header": map[string]any{
			"item_id":       float64(sfg.ID),
			"level":         string(masterdata.BomLevelSemiFinished),
			"output_qty":    float64(12),
			"output_uom_id": float64(1),
		},
		"rm_lines": []any{
			map[string]any{"rm_item_id": float64(rm.ID), "qty": float64(2.5)},
		},
	}
	created, err := applier.Apply(db, createReq(approval.EntityBom, payload), 7)
	require.NoError(t, err)

	var header masterdata.BomHeader
	require.NoError(t, db.First(&header, created.EntityID).Error)
	assert.Equal(t, masterdata.BomStatusDraft, header.Status)
	assert.EqualValues(t, 7, header.CreatedBy)

	// Approval is blocked until the raw material has an active purchase rate.
	_, err = applier.Apply(db, actionReq(approval.EntityBom, header.ID, approval.ActionApproveDraft), 9)
	var verr *bom.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Missing required material rates", verr.Message)

	rate := masterdata.RmPurchaseRate{RmItemID: rm.ID, Rate: decimal.NewFromInt(240), IsActive: true}
	require.NoError(t, db.Create(&rate).Error)

	_, err = applier.Apply(db, actionReq(approval.EntityBom, header.ID, approval.ActionApproveDraft), 9)
	require.NoError(t, err)
	require.NoError(t, db.First(&header, header.ID).Error)
	assert.Equal(t, masterdata.BomStatusApproved, header.Status)

	// A new version clones the approved BOM as the next draft.
	cloned, err := applier.Apply(db, actionReq(approval.EntityBom, header.ID, approval.ActionCreateVersionFrom), 7)
	require.NoError(t, err)
	var clone masterdata.BomHeader
	require.NoError(t, db.First(&clone, cloned.EntityID).Error)
	assert.Equal(t, masterdata.BomStatusDraft, clone.Status)
	assert.Equal(t, header.VersionNo+1, clone.VersionNo)
}
