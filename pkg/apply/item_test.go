package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func createFG(t *testing.T, db *gorm.DB, code, name, partType string) int64 {
	t.Helper()
	created, err := NewApplier().Apply(db, createReq(approval.EntityItem, map[string]any{
		"item_type":     "FG",
		"code":          code,
		"name":          name,
		"uses_sfg":      true,
		"sfg_part_type": partType,
	}), 1)
	require.NoError(t, err)
	return created.EntityID
}

func linkedShadow(t *testing.T, db *gorm.DB, fgID int64) masterdata.Item {
	t.Helper()
	var shadows []masterdata.Item
	err := db.Joins("JOIN item_usage ON item_usage.sfg_item_id = items.id").
		Where("item_usage.fg_item_id = ?", fgID).
		Find(&shadows).Error
	require.NoError(t, err)
	require.Len(t, shadows, 1, "an FG that uses an SFG has exactly one shadow")
	return shadows[0]
}

func TestApplyItem_CreateRMWithRates(t *testing.T) {
	db := newTestDB(t)

	created, err := NewApplier().Apply(db, createReq(approval.EntityItem, map[string]any{
		"item_type": "RM",
		"code":      "rm-leather",
		"name":      "Leather",
		"rates": []any{
			map[string]any{"rate": float64(240)},
			map[string]any{"rate": float64(260), "color_id": float64(3)},
		},
	}), 1)
	require.NoError(t, err)

	var rates []masterdata.RmPurchaseRate
	require.NoError(t, db.Where("rm_item_id = ?", created.EntityID).Order("id").Find(&rates).Error)
	require.Len(t, rates, 2)
	assert.Nil(t, rates[0].ColorID)
	assert.True(t, rates[0].IsActive, "rates default to active when the entry omits the flag")
	require.NotNil(t, rates[1].ColorID)
	assert.EqualValues(t, 3, *rates[1].ColorID)
}

func TestApplyItem_UpdateRMRatesReplaced(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityItem, map[string]any{
		"item_type": "RM",
		"code":      "rm-leather",
		"name":      "Leather",
		"rates":     []any{map[string]any{"rate": float64(240)}},
	}), 1)
	require.NoError(t, err)

	// Absent key: the rate table stays as is.
	_, err = applier.Apply(db, updateReq(approval.EntityItem, created.EntityID, map[string]any{
		"name": "Cow Leather",
	}), 1)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&masterdata.RmPurchaseRate{}).Where("rm_item_id = ?", created.EntityID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// Present key: full replacement.
	_, err = applier.Apply(db, updateReq(approval.EntityItem, created.EntityID, map[string]any{
		"rates": []any{
			map[string]any{"rate": float64(250)},
			map[string]any{"rate": float64(255)},
		},
	}), 1)
	require.NoError(t, err)
	var rates []masterdata.RmPurchaseRate
	require.NoError(t, db.Where("rm_item_id = ?", created.EntityID).Find(&rates).Error)
	require.Len(t, rates, 2)
	assert.Equal(t, "250", rates[0].Rate.String())
}

func TestApplyItem_DuplicateCode(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	payload := map[string]any{"item_type": "RM", "code": "rm-leather", "name": "Leather"}
	_, err := applier.Apply(db, createReq(approval.EntityItem, payload), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, createReq(approval.EntityItem, payload), 1)
	assert.Equal(t, "DUPLICATE_CODE", validationCode(t, err))
}

func TestApplyItem_CreateFGBuildsShadow(t *testing.T) {
	db := newTestDB(t)

	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")

	shadow := linkedShadow(t, db, fgID)
	assert.Equal(t, masterdata.ItemTypeSFG, shadow.ItemType)
	assert.Equal(t, "fg-01_upper", shadow.Code)
	assert.Equal(t, "Runner - UPPER", shadow.Name)
	assert.True(t, shadow.IsActive)
}

func TestApplyItem_CreateFGStepPart(t *testing.T) {
	db := newTestDB(t)

	fgID := createFG(t, db, "fg7", "Walker", "STEP")

	shadow := linkedShadow(t, db, fgID)
	assert.Equal(t, "fg7_step", shadow.Code)
	assert.Equal(t, "Walker - STEP", shadow.Name)
}

func TestApplyItem_FGRenamePropagatesToShadow(t *testing.T) {
	db := newTestDB(t)
	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")

	_, err := NewApplier().Apply(db, updateReq(approval.EntityItem, fgID, map[string]any{
		"name": "Racer",
	}), 1)
	require.NoError(t, err)

	shadow := linkedShadow(t, db, fgID)
	assert.Equal(t, "Racer - UPPER", shadow.Name)
	assert.Equal(t, "fg-01_upper", shadow.Code, "the code follows the FG code, not the name")

	// No duplicate shadow was created by the rewrite.
	var count int64
	require.NoError(t, db.Model(&masterdata.Item{}).Where("item_type = ?", masterdata.ItemTypeSFG).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestApplyItem_FGMetadataPropagatesToShadow(t *testing.T) {
	db := newTestDB(t)
	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")

	_, err := NewApplier().Apply(db, updateReq(approval.EntityItem, fgID, map[string]any{
		"group_id":    float64(4),
		"base_uom_id": float64(2),
	}), 1)
	require.NoError(t, err)

	shadow := linkedShadow(t, db, fgID)
	require.NotNil(t, shadow.GroupID)
	assert.EqualValues(t, 4, *shadow.GroupID)
	require.NotNil(t, shadow.BaseUomID)
	assert.EqualValues(t, 2, *shadow.BaseUomID)
}

func TestApplyItem_UsesSfgOffDeactivatesOrphanShadow(t *testing.T) {
	db := newTestDB(t)
	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")
	shadow := linkedShadow(t, db, fgID)

	_, err := NewApplier().Apply(db, updateReq(approval.EntityItem, fgID, map[string]any{
		"uses_sfg": false,
	}), 1)
	require.NoError(t, err)

	var links int64
	require.NoError(t, db.Model(&masterdata.ItemUsage{}).Where("fg_item_id = ?", fgID).Count(&links).Error)
	assert.Zero(t, links)

	var got masterdata.Item
	require.NoError(t, db.First(&got, shadow.ID).Error)
	assert.False(t, got.IsActive, "an unreferenced shadow is deactivated, not deleted")
}

func TestApplyItem_ToggleFGCascadesToShadow(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()
	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")
	shadow := linkedShadow(t, db, fgID)

	_, err := applier.Apply(db, actionReq(approval.EntityItem, fgID, approval.ActionToggle), 1)
	require.NoError(t, err)

	var fg, got masterdata.Item
	require.NoError(t, db.First(&fg, fgID).Error)
	require.NoError(t, db.First(&got, shadow.ID).Error)
	assert.False(t, fg.IsActive)
	assert.False(t, got.IsActive)

	_, err = applier.Apply(db, actionReq(approval.EntityItem, fgID, approval.ActionToggle), 1)
	require.NoError(t, err)
	require.NoError(t, db.First(&got, shadow.ID).Error)
	assert.True(t, got.IsActive)
}

func TestApplyItem_DeleteFGRemovesOrphanShadow(t *testing.T) {
	db := newTestDB(t)
	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")
	shadow := linkedShadow(t, db, fgID)

	_, err := NewApplier().Apply(db, actionReq(approval.EntityItem, fgID, approval.ActionDelete), 1)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&masterdata.Item{}).Where("id IN ?", []int64{fgID, shadow.ID}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&masterdata.ItemUsage{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyItem_DeleteFGKeepsSharedShadow(t *testing.T) {
	db := newTestDB(t)
	fgID := createFG(t, db, "FG-01", "Runner", "UPPER")
	shadow := linkedShadow(t, db, fgID)

	// A second FG consumes the same SFG through a manual usage link.
	other := masterdata.Item{ItemType: masterdata.ItemTypeFG, Code: "FG-09", Name: "Other", IsActive: true}
	require.NoError(t, db.Create(&other).Error)
	require.NoError(t, db.Create(&masterdata.ItemUsage{FgItemID: other.ID, SfgItemID: shadow.ID}).Error)

	_, err := NewApplier().Apply(db, actionReq(approval.EntityItem, fgID, approval.ActionDelete), 1)
	require.NoError(t, err)

	var got masterdata.Item
	require.NoError(t, db.First(&got, shadow.ID).Error, "a shadow still referenced elsewhere survives")
}

func TestApplyItem_DeleteRMRemovesRates(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityItem, map[string]any{
		"item_type": "RM",
		"code":      "rm-leather",
		"name":      "Leather",
		"rates":     []any{map[string]any{"rate": float64(240)}},
	}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, actionReq(approval.EntityItem, created.EntityID, approval.ActionDelete), 1)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&masterdata.RmPurchaseRate{}).Where("rm_item_id = ?", created.EntityID).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyItem_SFGUsageReplaced(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	fg1 := masterdata.Item{ItemType: masterdata.ItemTypeFG, Code: "FG-01", Name: "Runner", IsActive: true}
	fg2 := masterdata.Item{ItemType: masterdata.ItemTypeFG, Code: "FG-02", Name: "Walker", IsActive: true}
	require.NoError(t, db.Create(&fg1).Error)
	require.NoError(t, db.Create(&fg2).Error)

	created, err := applier.Apply(db, createReq(approval.EntityItem, map[string]any{
		"item_type": "SFG",
		"code":      "sfg-sole",
		"name":      "Sole",
		"usage_ids": []any{float64(fg1.ID)},
	}), 1)
	require.NoError(t, err)

	var links []masterdata.ItemUsage
	require.NoError(t, db.Where("sfg_item_id = ?", created.EntityID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, fg1.ID, links[0].FgItemID)

	_, err = applier.Apply(db, updateReq(approval.EntityItem, created.EntityID, map[string]any{
		"usage_ids": []any{float64(fg2.ID)},
	}), 1)
	require.NoError(t, err)
	require.NoError(t, db.Where("sfg_item_id = ?", created.EntityID).Find(&links).Error)
	require.Len(t, links, 1)
	assert.Equal(t, fg2.ID, links[0].FgItemID)
}
