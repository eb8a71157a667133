package apply

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

var itemColumns = []string{
	"item_type", "code", "name", "name_ur", "group_id", "subgroup_id",
	"product_type_id", "base_uom_id", "uses_sfg", "sfg_part_type",
	"min_stock_level", "is_active",
}

func applyItem(tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action) (approval.ApplyResult, error) {
	payload := map[string]any(req.NewValue)

	switch action {
	case approval.ActionCreate:
		m, err := decodeModel[masterdata.Item](createInput(payload))
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return approval.ApplyResult{}, errDuplicateCode(m.Code)
			}
			return approval.ApplyResult{}, fmt.Errorf("create item: %w", err)
		}
		if err := applyItemSideTables(tx, m, payload); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: m.ID}, nil

	case approval.ActionUpdate:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		var existing masterdata.Item
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return approval.ApplyResult{}, errEntityNotFound()
			}
			return approval.ApplyResult{}, fmt.Errorf("load item: %w", err)
		}

		usedSfg := existing.UsesSfg
		updates := updatesFromPayload(payload, itemColumns)
		if len(updates) > 0 {
			if err := tx.Model(&masterdata.Item{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					code, _ := stringValue(payload, "code")
					return approval.ApplyResult{}, errDuplicateCode(code)
				}
				return approval.ApplyResult{}, fmt.Errorf("update item: %w", err)
			}
		}

		var current masterdata.Item
		if err := tx.First(&current, id).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("reload item: %w", err)
		}
		if err := applyItemSideTables(tx, &current, payload); err != nil {
			return approval.ApplyResult{}, err
		}
		if usedSfg && !current.UsesSfg && current.ItemType == masterdata.ItemTypeFG {
			if err := unlinkSfgShadows(tx, current.ID); err != nil {
				return approval.ApplyResult{}, err
			}
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionToggle:
		return toggleItem(tx, req)

	case approval.ActionDelete:
		return deleteItem(tx, req)

	default:
		return approval.ApplyResult{}, errUnsupportedAction(string(action))
	}
}

// applyItemSideTables replays the per-type children: purchase rates for raw
// materials, usage links for semi-finished items, shadow SFGs for finished
// goods that consume one.
func applyItemSideTables(tx *gorm.DB, item *masterdata.Item, payload map[string]any) error {
	switch item.ItemType {
	case masterdata.ItemTypeRM:
		return replaceRmRates(tx, item.ID, payload)
	case masterdata.ItemTypeSFG:
		return replaceSfgUsage(tx, item.ID, payload)
	case masterdata.ItemTypeFG:
		if item.UsesSfg {
			return ensureSfgShadow(tx, item)
		}
	}
	return nil
}

func replaceRmRates(tx *gorm.DB, itemID int64, payload map[string]any) error {
	v, ok := payload["rates"]
	if !ok {
		return nil
	}
	raw, ok := v.([]any)
	if !ok {
		return errBadPayload("rates must be a list")
	}
	if err := tx.Where("rm_item_id = ?", itemID).Delete(&masterdata.RmPurchaseRate{}).Error; err != nil {
		return fmt.Errorf("clear purchase rates: %w", err)
	}
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			return errBadPayload("rates entries must be objects")
		}
		rate, err := decodeModel[masterdata.RmPurchaseRate](m)
		if err != nil {
			return err
		}
		rate.ID = 0
		rate.RmItemID = itemID
		if _, present := m["is_active"]; !present {
			rate.IsActive = true
		}
		if err := tx.Create(rate).Error; err != nil {
			return fmt.Errorf("insert purchase rate: %w", err)
		}
	}
	return nil
}

// replaceSfgUsage rewrites the FG links pointing at this SFG from
// payload.usage_ids.
func replaceSfgUsage(tx *gorm.DB, sfgItemID int64, payload map[string]any) error {
	v, ok := payload["usage_ids"]
	if !ok {
		return nil
	}
	if err := tx.Where("sfg_item_id = ?", sfgItemID).Delete(&masterdata.ItemUsage{}).Error; err != nil {
		return fmt.Errorf("clear item usage: %w", err)
	}
	for _, fgID := range int64Slice(v) {
		rec := masterdata.ItemUsage{FgItemID: fgID, SfgItemID: sfgItemID}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert item usage: %w", err)
		}
	}
	return nil
}

// slug keeps underscores so the shadow code stays <fg_code>_<part>.
var slugNonWord = regexp.MustCompile(`[^a-z0-9_]+`)

func slug(s string) string {
	s = strings.ToLower(s)
	s = slugNonWord.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

func sfgPartSuffix(partType *masterdata.SfgPartType) string {
	if partType != nil && *partType == masterdata.SfgPartStep {
		return "STEP"
	}
	return "UPPER"
}

// ensureSfgShadow keeps exactly one shadow SFG linked to an FG that declares
// uses_sfg. The shadow's code is derived from the FG code plus the part kind,
// its name from the FG name, and descriptive metadata is propagated from the
// FG on every write.
func ensureSfgShadow(tx *gorm.DB, fg *masterdata.Item) error {
	suffix := sfgPartSuffix(fg.SfgPartType)
	sfgCode := slug(fg.Code + "_" + suffix)
	sfgName := fg.Name + " - " + suffix

	var linked []masterdata.Item
	err := tx.Joins("JOIN item_usage ON item_usage.sfg_item_id = items.id").
		Where("item_usage.fg_item_id = ? AND items.item_type = ?", fg.ID, masterdata.ItemTypeSFG).
		Order("item_usage.id").
		Find(&linked).Error
	if err != nil {
		return fmt.Errorf("load linked sfg shadows: %w", err)
	}

	var primary *masterdata.Item
	var byCode masterdata.Item
	err = tx.Where("code = ? AND item_type = ?", sfgCode, masterdata.ItemTypeSFG).First(&byCode).Error
	switch {
	case err == nil:
		primary = &byCode
	case errors.Is(err, gorm.ErrRecordNotFound):
		if len(linked) > 0 {
			primary = &linked[0]
		}
	default:
		return fmt.Errorf("find sfg shadow by code: %w", err)
	}

	if primary == nil {
		shadow := masterdata.Item{
			ItemType:      masterdata.ItemTypeSFG,
			Code:          sfgCode,
			Name:          sfgName,
			NameUr:        fg.NameUr,
			GroupID:       fg.GroupID,
			SubgroupID:    fg.SubgroupID,
			ProductTypeID: fg.ProductTypeID,
			BaseUomID:     fg.BaseUomID,
			IsActive:      true,
		}
		if err := tx.Create(&shadow).Error; err != nil {
			return fmt.Errorf("create sfg shadow: %w", err)
		}
		primary = &shadow
	} else {
		updates := map[string]any{
			"code":            sfgCode,
			"name":            sfgName,
			"name_ur":         fg.NameUr,
			"group_id":        fg.GroupID,
			"subgroup_id":     fg.SubgroupID,
			"product_type_id": fg.ProductTypeID,
			"base_uom_id":     fg.BaseUomID,
		}
		if err := tx.Model(&masterdata.Item{}).Where("id = ?", primary.ID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update sfg shadow: %w", err)
		}
	}

	// Relink: the FG keeps exactly one usage row pointing at the primary.
	if err := tx.Where("fg_item_id = ? AND sfg_item_id <> ?", fg.ID, primary.ID).Delete(&masterdata.ItemUsage{}).Error; err != nil {
		return fmt.Errorf("prune usage links: %w", err)
	}
	var linkCount int64
	err = tx.Model(&masterdata.ItemUsage{}).
		Where("fg_item_id = ? AND sfg_item_id = ?", fg.ID, primary.ID).
		Count(&linkCount).Error
	if err != nil {
		return fmt.Errorf("check usage link: %w", err)
	}
	if linkCount == 0 {
		link := masterdata.ItemUsage{FgItemID: fg.ID, SfgItemID: primary.ID}
		if err := tx.Create(&link).Error; err != nil {
			return fmt.Errorf("insert usage link: %w", err)
		}
	}

	// Extras that no other FG references are deleted outright.
	for i := range linked {
		extra := &linked[i]
		if extra.ID == primary.ID {
			continue
		}
		var refs int64
		if err := tx.Model(&masterdata.ItemUsage{}).Where("sfg_item_id = ?", extra.ID).Count(&refs).Error; err != nil {
			return fmt.Errorf("count shadow references: %w", err)
		}
		if refs == 0 {
			if err := tx.Delete(&masterdata.Item{}, extra.ID).Error; err != nil {
				return fmt.Errorf("delete orphan shadow: %w", err)
			}
		}
	}
	return nil
}

// unlinkSfgShadows removes an FG's usage links and deactivates shadows left
// with no other FG reference.
func unlinkSfgShadows(tx *gorm.DB, fgItemID int64) error {
	var sfgIDs []int64
	err := tx.Model(&masterdata.ItemUsage{}).
		Where("fg_item_id = ?", fgItemID).
		Pluck("sfg_item_id", &sfgIDs).Error
	if err != nil {
		return fmt.Errorf("load usage links: %w", err)
	}
	if err := tx.Where("fg_item_id = ?", fgItemID).Delete(&masterdata.ItemUsage{}).Error; err != nil {
		return fmt.Errorf("delete usage links: %w", err)
	}
	for _, sfgID := range sfgIDs {
		var refs int64
		if err := tx.Model(&masterdata.ItemUsage{}).Where("sfg_item_id = ?", sfgID).Count(&refs).Error; err != nil {
			return fmt.Errorf("count shadow references: %w", err)
		}
		if refs == 0 {
			if err := tx.Model(&masterdata.Item{}).Where("id = ?", sfgID).Update("is_active", false).Error; err != nil {
				return fmt.Errorf("deactivate orphan shadow: %w", err)
			}
		}
	}
	return nil
}

func toggleItem(tx *gorm.DB, req *approval.ApprovalRequestRecord) (approval.ApplyResult, error) {
	id, err := parseEntityID(req.EntityID)
	if err != nil {
		return approval.ApplyResult{}, err
	}
	var item masterdata.Item
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approval.ApplyResult{}, errEntityNotFound()
		}
		return approval.ApplyResult{}, fmt.Errorf("load item: %w", err)
	}
	next := !item.IsActive
	if err := tx.Model(&masterdata.Item{}).Where("id = ?", id).Update("is_active", next).Error; err != nil {
		return approval.ApplyResult{}, fmt.Errorf("toggle item: %w", err)
	}
	if item.ItemType == masterdata.ItemTypeFG {
		err := tx.Model(&masterdata.Item{}).
			Where("id IN (?)", tx.Model(&masterdata.ItemUsage{}).Select("sfg_item_id").Where("fg_item_id = ?", id)).
			Update("is_active", next).Error
		if err != nil {
			return approval.ApplyResult{}, fmt.Errorf("cascade toggle to shadows: %w", err)
		}
	}
	return approval.ApplyResult{Applied: true, EntityID: id}, nil
}

func deleteItem(tx *gorm.DB, req *approval.ApprovalRequestRecord) (approval.ApplyResult, error) {
	id, err := parseEntityID(req.EntityID)
	if err != nil {
		return approval.ApplyResult{}, err
	}
	var item masterdata.Item
	if err := tx.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approval.ApplyResult{}, errEntityNotFound()
		}
		return approval.ApplyResult{}, fmt.Errorf("load item: %w", err)
	}

	var linkedSfgIDs []int64
	if item.ItemType == masterdata.ItemTypeFG {
		err := tx.Model(&masterdata.ItemUsage{}).
			Where("fg_item_id = ?", id).
			Pluck("sfg_item_id", &linkedSfgIDs).Error
		if err != nil {
			return approval.ApplyResult{}, fmt.Errorf("load usage links: %w", err)
		}
	}

	if err := tx.Where("fg_item_id = ? OR sfg_item_id = ?", id, id).Delete(&masterdata.ItemUsage{}).Error; err != nil {
		return approval.ApplyResult{}, fmt.Errorf("delete usage links: %w", err)
	}
	if item.ItemType == masterdata.ItemTypeRM {
		if err := tx.Where("rm_item_id = ?", id).Delete(&masterdata.RmPurchaseRate{}).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete purchase rates: %w", err)
		}
	}
	if err := tx.Delete(&masterdata.Item{}, id).Error; err != nil {
		return approval.ApplyResult{}, fmt.Errorf("delete item: %w", err)
	}

	for _, sfgID := range linkedSfgIDs {
		var refs int64
		if err := tx.Model(&masterdata.ItemUsage{}).Where("sfg_item_id = ?", sfgID).Count(&refs).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("count shadow references: %w", err)
		}
		if refs == 0 {
			if err := tx.Delete(&masterdata.Item{}, sfgID).Error; err != nil {
				return approval.ApplyResult{}, fmt.Errorf("delete orphan shadow: %w", err)
			}
		}
	}
	return approval.ApplyResult{Applied: true, EntityID: id}, nil
}
