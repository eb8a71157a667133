package apply

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

func applySku(tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action) (approval.ApplyResult, error) {
	payload := map[string]any(req.NewValue)

	switch action {
	case approval.ActionCreate:
		variant, err := decodeModel[masterdata.Variant](createInput(payload))
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := tx.Create(variant).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("create variant: %w", err)
		}
		code, err := deriveSkuCode(tx, variant)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		sku := masterdata.Sku{VariantID: variant.ID, SkuCode: code, IsActive: true}
		if err := tx.Create(&sku).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("create sku: %w", err)
		}
		return approval.ApplyResult{Applied: true, EntityID: sku.ID}, nil

	case approval.ActionUpdate:
		// Only the sale rate is mutable; the identity dimensions and the
		// derived code are frozen at creation.
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		sku, err := loadSku(tx, id)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		rate, ok := payload["sale_rate"]
		if !ok {
			return approval.ApplyResult{Applied: true, EntityID: id}, nil
		}
		err = tx.Model(&masterdata.Variant{}).Where("id = ?", sku.VariantID).Update("sale_rate", rate).Error
		if err != nil {
			return approval.ApplyResult{}, fmt.Errorf("update sale rate: %w", err)
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionToggle:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		sku, err := loadSku(tx, id)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		next := !sku.IsActive
		if err := tx.Model(&masterdata.Sku{}).Where("id = ?", id).Update("is_active", next).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("toggle sku: %w", err)
		}
		if err := tx.Model(&masterdata.Variant{}).Where("id = ?", sku.VariantID).Update("is_active", next).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("toggle variant: %w", err)
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionDelete:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		sku, err := loadSku(tx, id)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := tx.Delete(&masterdata.Sku{}, id).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete sku: %w", err)
		}
		if err := tx.Delete(&masterdata.Variant{}, sku.VariantID).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete variant: %w", err)
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	default:
		return approval.ApplyResult{}, errUnsupportedAction(string(action))
	}
}

func loadSku(tx *gorm.DB, id int64) (*masterdata.Sku, error) {
	var sku masterdata.Sku
	if err := tx.First(&sku, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errEntityNotFound()
		}
		return nil, fmt.Errorf("load sku: %w", err)
	}
	return &sku, nil
}

// deriveSkuCode builds the base code from the variant's dimension names and
// appends a numeric suffix until the code is unique. Finished goods join
// [item, size, packing, grade, color]; semi-finished goods split their name
// on " - " into base and part suffix and join [base, size, color, suffix].
func deriveSkuCode(tx *gorm.DB, variant *masterdata.Variant) (string, error) {
	var item masterdata.Item
	if err := tx.First(&item, variant.ItemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", errEntityNotFound()
		}
		return "", fmt.Errorf("load item: %w", err)
	}

	sizeName, err := lookupName(tx, "sizes", variant.SizeID)
	if err != nil {
		return "", err
	}
	packingName, err := lookupName(tx, "packing_types", variant.PackingTypeID)
	if err != nil {
		return "", err
	}
	gradeName, err := lookupName(tx, "grades", variant.GradeID)
	if err != nil {
		return "", err
	}
	colorName, err := lookupName(tx, "colors", variant.ColorID)
	if err != nil {
		return "", err
	}

	var parts []string
	if item.ItemType == masterdata.ItemTypeSFG {
		base, suffix := splitSfgName(item.Name)
		parts = []string{base, sizeName, colorName, suffix}
	} else {
		parts = []string{item.Name, sizeName, packingName, gradeName, colorName}
	}

	joined := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		joined = append(joined, strings.ToUpper(p))
	}
	base := strings.Join(joined, " ")

	code := base
	for n := 2; ; n++ {
		var count int64
		if err := tx.Model(&masterdata.Sku{}).Where("sku_code = ?", code).Count(&count).Error; err != nil {
			return "", fmt.Errorf("check sku code: %w", err)
		}
		if count == 0 {
			return code, nil
		}
		code = fmt.Sprintf("%s %d", base, n)
	}
}

func lookupName(tx *gorm.DB, table string, id *int64) (string, error) {
	if id == nil {
		return "", nil
	}
	var names []string
	err := tx.Table(table).Where("id = ?", *id).Limit(1).Pluck("name", &names).Error
	if err != nil {
		return "", fmt.Errorf("lookup %s name: %w", table, err)
	}
	if len(names) == 0 {
		return "", nil
	}
	return names[0], nil
}

// splitSfgName separates a shadow SFG name of the form "FG Name - Part" into
// its base and part suffix. Names without the separator keep the whole string
// as the base.
func splitSfgName(name string) (string, string) {
	idx := strings.LastIndex(name, " - ")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx+3:]
}
