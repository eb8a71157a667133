package apply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func TestApplyColor_Create(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	req := createReq(approval.EntityColor, map[string]any{
		"id":       float64(99), // captured ids never survive into the row
		"_action":  "create",
		"name":     "Navy",
		"hex_code": "#001f3f",
	})
	result, err := applier.Apply(db, req, 1)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	var color masterdata.Color
	require.NoError(t, db.First(&color, result.EntityID).Error)
	assert.NotEqualValues(t, 99, color.ID)
	assert.Equal(t, "Navy", color.Name)
	assert.Equal(t, "#001f3f", color.HexCode)
	assert.True(t, color.IsActive, "is_active defaults to true when absent")
}

func TestApplyColor_DuplicateNameCaseInsensitive(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	_, err := applier.Apply(db, createReq(approval.EntityColor, map[string]any{"name": "Navy"}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, createReq(approval.EntityColor, map[string]any{"name": "navy"}), 1)
	assert.Equal(t, "DUPLICATE_NAME", validationCode(t, err))
	assert.EqualError(t, err, `An entry named "navy" already exists`)
}

func TestApplySize_DuplicateNameExactOnly(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	_, err := applier.Apply(db, createReq(approval.EntitySize, map[string]any{"name": "Small"}), 1)
	require.NoError(t, err)

	// Sizes collide byte-for-byte, so a different casing is a new size.
	_, err = applier.Apply(db, createReq(approval.EntitySize, map[string]any{"name": "small"}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, createReq(approval.EntitySize, map[string]any{"name": "Small"}), 1)
	assert.Equal(t, "DUPLICATE_NAME", validationCode(t, err))
}

func TestApplyColor_PartialUpdate(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityColor, map[string]any{
		"name":     "Navy",
		"hex_code": "#001f3f",
	}), 1)
	require.NoError(t, err)

	// Only the name is in the payload; the hex code keeps its stored value.
	_, err = applier.Apply(db, updateReq(approval.EntityColor, created.EntityID, map[string]any{
		"name": "Midnight",
	}), 1)
	require.NoError(t, err)

	var color masterdata.Color
	require.NoError(t, db.First(&color, created.EntityID).Error)
	assert.Equal(t, "Midnight", color.Name)
	assert.Equal(t, "#001f3f", color.HexCode)
}

func TestApplyColor_UpdateKeepingOwnNameIsNotADuplicate(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityColor, map[string]any{"name": "Navy"}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, updateReq(approval.EntityColor, created.EntityID, map[string]any{
		"name":     "Navy",
		"hex_code": "#000080",
	}), 1)
	require.NoError(t, err)
}

func TestApplyCatalog_Toggle(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityGrade, map[string]any{"name": "A"}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, actionReq(approval.EntityGrade, created.EntityID, approval.ActionToggle), 1)
	require.NoError(t, err)
	var grade masterdata.Grade
	require.NoError(t, db.First(&grade, created.EntityID).Error)
	assert.False(t, grade.IsActive)

	_, err = applier.Apply(db, actionReq(approval.EntityGrade, created.EntityID, approval.ActionToggle), 1)
	require.NoError(t, err)
	require.NoError(t, db.First(&grade, created.EntityID).Error)
	assert.True(t, grade.IsActive)
}

func TestApplyCatalog_ToggleUnknownID(t *testing.T) {
	db := newTestDB(t)

	_, err := NewApplier().Apply(db, actionReq(approval.EntityGrade, 12345, approval.ActionToggle), 1)
	assert.Equal(t, "NOT_FOUND", validationCode(t, err))
}

func TestApplyCatalog_UpdateUnknownID(t *testing.T) {
	db := newTestDB(t)

	_, err := NewApplier().Apply(db, updateReq(approval.EntityCity, 12345, map[string]any{"name": "Lahore"}), 1)
	assert.Equal(t, "NOT_FOUND", validationCode(t, err))
}

func TestApplySize_ItemTypesReplaced(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntitySize, map[string]any{
		"name":       "38",
		"item_types": []any{"RM", "FG"},
	}), 1)
	require.NoError(t, err)

	types := sizeItemTypes(t, db, created.EntityID)
	assert.ElementsMatch(t, []masterdata.ItemType{masterdata.ItemTypeRM, masterdata.ItemTypeFG}, types)

	// A present key replaces the whole set.
	_, err = applier.Apply(db, updateReq(approval.EntitySize, created.EntityID, map[string]any{
		"item_types": []any{"SFG"},
	}), 1)
	require.NoError(t, err)
	types = sizeItemTypes(t, db, created.EntityID)
	assert.Equal(t, []masterdata.ItemType{masterdata.ItemTypeSFG}, types)

	// An absent key leaves the set untouched.
	_, err = applier.Apply(db, updateReq(approval.EntitySize, created.EntityID, map[string]any{
		"sort_order": float64(5),
	}), 1)
	require.NoError(t, err)
	types = sizeItemTypes(t, db, created.EntityID)
	assert.Equal(t, []masterdata.ItemType{masterdata.ItemTypeSFG}, types)

	_, err = applier.Apply(db, actionReq(approval.EntitySize, created.EntityID, approval.ActionDelete), 1)
	require.NoError(t, err)
	var count int64
	require.NoError(t, db.Model(&masterdata.SizeItemType{}).Where("size_id = ?", created.EntityID).Count(&count).Error)
	assert.Zero(t, count)
}

func sizeItemTypes(t *testing.T, db *gorm.DB, sizeID int64) []masterdata.ItemType {
	t.Helper()
	var rows []masterdata.SizeItemType
	require.NoError(t, db.Where("size_id = ?", sizeID).Order("id").Find(&rows).Error)
	types := make([]masterdata.ItemType, 0, len(rows))
	for _, row := range rows {
		types = append(types, row.ItemType)
	}
	return types
}

func TestApply_UnknownEntityType(t *testing.T) {
	db := newTestDB(t)

	_, err := NewApplier().Apply(db, createReq(approval.EntityType("GADGET"), map[string]any{"name": "x"}), 1)
	assert.Equal(t, "BAD_PAYLOAD", validationCode(t, err))
}

func TestApply_UnsupportedAction(t *testing.T) {
	db := newTestDB(t)
	applier := NewApplier()

	created, err := applier.Apply(db, createReq(approval.EntityColor, map[string]any{"name": "Navy"}), 1)
	require.NoError(t, err)

	_, err = applier.Apply(db, actionReq(approval.EntityColor, created.EntityID, approval.Action("promote")), 1)
	assert.Equal(t, "UNSUPPORTED_ACTION", validationCode(t, err))
}
