package apply

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

// catalogOptions customizes the shared catalog write path: an optional
// duplicate check ahead of the write, the writable column set for partial
// updates, and hooks for the item-type child tables.
type catalogOptions struct {
	columns         []string
	dupCheck        func(tx *gorm.DB, payload map[string]any, excludeID int64) error
	replaceChildren func(tx *gorm.DB, id int64, payload map[string]any) error
	deleteChildren  func(tx *gorm.DB, id int64) error
}

// applyCatalog implements create/update/toggle/delete for the basic-info
// catalogs. Absent payload fields keep their stored values on update.
func applyCatalog[T any](tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action, opts catalogOptions) (approval.ApplyResult, error) {
	payload := map[string]any(req.NewValue)

	switch action {
	case approval.ActionCreate:
		if opts.dupCheck != nil {
			if err := opts.dupCheck(tx, payload, 0); err != nil {
				return approval.ApplyResult{}, err
			}
		}
		m, err := decodeModel[T](createInput(payload))
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				name, _ := stringValue(payload, "name")
				return approval.ApplyResult{}, errDuplicateName(name)
			}
			return approval.ApplyResult{}, fmt.Errorf("create %s: %w", req.EntityType, err)
		}
		id := modelID(m)
		if opts.replaceChildren != nil {
			if err := opts.replaceChildren(tx, id, payload); err != nil {
				return approval.ApplyResult{}, err
			}
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionUpdate:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		var existing T
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return approval.ApplyResult{}, errEntityNotFound()
			}
			return approval.ApplyResult{}, fmt.Errorf("load %s: %w", req.EntityType, err)
		}
		if opts.dupCheck != nil {
			if err := opts.dupCheck(tx, payload, id); err != nil {
				return approval.ApplyResult{}, err
			}
		}
		updates := updatesFromPayload(payload, opts.columns)
		if len(updates) > 0 {
			if err := tx.Model(new(T)).Where("id = ?", id).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					name, _ := stringValue(payload, "name")
					return approval.ApplyResult{}, errDuplicateName(name)
				}
				return approval.ApplyResult{}, fmt.Errorf("update %s: %w", req.EntityType, err)
			}
		}
		if opts.replaceChildren != nil {
			if err := opts.replaceChildren(tx, id, payload); err != nil {
				return approval.ApplyResult{}, err
			}
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionToggle:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		result := tx.Model(new(T)).Where("id = ?", id).Update("is_active", gorm.Expr("NOT is_active"))
		if result.Error != nil {
			return approval.ApplyResult{}, fmt.Errorf("toggle %s: %w", req.EntityType, result.Error)
		}
		if result.RowsAffected == 0 {
			return approval.ApplyResult{}, errEntityNotFound()
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionDelete:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if opts.deleteChildren != nil {
			if err := opts.deleteChildren(tx, id); err != nil {
				return approval.ApplyResult{}, err
			}
		}
		result := tx.Delete(new(T), id)
		if result.Error != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete %s: %w", req.EntityType, result.Error)
		}
		if result.RowsAffected == 0 {
			return approval.ApplyResult{}, errEntityNotFound()
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	default:
		return approval.ApplyResult{}, errUnsupportedAction(string(action))
	}
}

// dupNameCaseInsensitive rejects a payload whose name collides with another
// row ignoring case. COLOR uses this per the catalog rules.
func dupNameCaseInsensitive(table string) func(tx *gorm.DB, payload map[string]any, excludeID int64) error {
	return func(tx *gorm.DB, payload map[string]any, excludeID int64) error {
		name, ok := stringValue(payload, "name")
		if !ok || name == "" {
			return nil
		}
		query := tx.Table(table).Where("LOWER(name) = LOWER(?)", name)
		if excludeID > 0 {
			query = query.Where("id <> ?", excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("check duplicate name: %w", err)
		}
		if count > 0 {
			return errDuplicateName(name)
		}
		return nil
	}
}

// dupNameExact rejects a payload whose name collides byte-for-byte. SIZE uses
// this per the catalog rules.
func dupNameExact(table string) func(tx *gorm.DB, payload map[string]any, excludeID int64) error {
	return func(tx *gorm.DB, payload map[string]any, excludeID int64) error {
		name, ok := stringValue(payload, "name")
		if !ok || name == "" {
			return nil
		}
		query := tx.Table(table).Where("name = ?", name)
		if excludeID > 0 {
			query = query.Where("id <> ?", excludeID)
		}
		var count int64
		if err := query.Count(&count).Error; err != nil {
			return fmt.Errorf("check duplicate name: %w", err)
		}
		if count > 0 {
			return errDuplicateName(name)
		}
		return nil
	}
}

// Item-type children for SIZE, PRODUCT_GROUP and PRODUCT_SUBGROUP are fully
// replaced from payload.item_types whenever the key is present.

func replaceSizeItemTypes(tx *gorm.DB, sizeID int64, payload map[string]any) error {
	v, ok := payload["item_types"]
	if !ok {
		return nil
	}
	if err := tx.Where("size_id = ?", sizeID).Delete(&masterdata.SizeItemType{}).Error; err != nil {
		return fmt.Errorf("clear size item types: %w", err)
	}
	for _, t := range stringSlice(v) {
		rec := masterdata.SizeItemType{SizeID: sizeID, ItemType: masterdata.ItemType(t)}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert size item type: %w", err)
		}
	}
	return nil
}

func replaceProductGroupItemTypes(tx *gorm.DB, groupID int64, payload map[string]any) error {
	v, ok := payload["item_types"]
	if !ok {
		return nil
	}
	if err := tx.Where("product_group_id = ?", groupID).Delete(&masterdata.ProductGroupItemType{}).Error; err != nil {
		return fmt.Errorf("clear product group item types: %w", err)
	}
	for _, t := range stringSlice(v) {
		rec := masterdata.ProductGroupItemType{ProductGroupID: groupID, ItemType: masterdata.ItemType(t)}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert product group item type: %w", err)
		}
	}
	return nil
}

func replaceProductSubgroupItemTypes(tx *gorm.DB, subgroupID int64, payload map[string]any) error {
	v, ok := payload["item_types"]
	if !ok {
		return nil
	}
	if err := tx.Where("product_subgroup_id = ?", subgroupID).Delete(&masterdata.ProductSubgroupItemType{}).Error; err != nil {
		return fmt.Errorf("clear product subgroup item types: %w", err)
	}
	for _, t := range stringSlice(v) {
		rec := masterdata.ProductSubgroupItemType{ProductSubgroupID: subgroupID, ItemType: masterdata.ItemType(t)}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert product subgroup item type: %w", err)
		}
	}
	return nil
}

func applyBasicInfo(tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action) (approval.ApplyResult, error) {
	switch req.EntityType {
	case approval.EntityUom:
		return applyCatalog[masterdata.Uom](tx, req, action, catalogOptions{
			columns: []string{"name", "symbol", "is_active"},
		})
	case approval.EntityUomConversion:
		return applyCatalog[masterdata.UomConversion](tx, req, action, catalogOptions{
			columns: []string{"from_uom_id", "to_uom_id", "factor", "is_active"},
		})
	case approval.EntitySize:
		return applyCatalog[masterdata.Size](tx, req, action, catalogOptions{
			columns:  []string{"name", "sort_order", "is_active"},
			dupCheck: dupNameExact("sizes"),
			replaceChildren: replaceSizeItemTypes,
			deleteChildren: func(tx *gorm.DB, id int64) error {
				return tx.Where("size_id = ?", id).Delete(&masterdata.SizeItemType{}).Error
			},
		})
	case approval.EntityColor:
		return applyCatalog[masterdata.Color](tx, req, action, catalogOptions{
			columns:  []string{"name", "hex_code", "is_active"},
			dupCheck: dupNameCaseInsensitive("colors"),
		})
	case approval.EntityGrade:
		return applyCatalog[masterdata.Grade](tx, req, action, catalogOptions{
			columns: []string{"name", "is_active"},
		})
	case approval.EntityPackingType:
		return applyCatalog[masterdata.PackingType](tx, req, action, catalogOptions{
			columns: []string{"name", "units_per", "is_active"},
		})
	case approval.EntityCity:
		return applyCatalog[masterdata.City](tx, req, action, catalogOptions{
			columns: []string{"name", "province", "is_active"},
		})
	case approval.EntityProductGroup:
		return applyCatalog[masterdata.ProductGroup](tx, req, action, catalogOptions{
			columns:         []string{"name", "is_active"},
			replaceChildren: replaceProductGroupItemTypes,
			deleteChildren: func(tx *gorm.DB, id int64) error {
				return tx.Where("product_group_id = ?", id).Delete(&masterdata.ProductGroupItemType{}).Error
			},
		})
	case approval.EntityProductSubgroup:
		return applyCatalog[masterdata.ProductSubgroup](tx, req, action, catalogOptions{
			columns:         []string{"product_group_id", "name", "is_active"},
			replaceChildren: replaceProductSubgroupItemTypes,
			deleteChildren: func(tx *gorm.DB, id int64) error {
				return tx.Where("product_subgroup_id = ?", id).Delete(&masterdata.ProductSubgroupItemType{}).Error
			},
		})
	case approval.EntityProductType:
		return applyCatalog[masterdata.ProductType](tx, req, action, catalogOptions{
			columns: []string{"name", "is_active"},
		})
	case approval.EntityPartyGroup:
		return applyCatalog[masterdata.PartyGroup](tx, req, action, catalogOptions{
			columns: []string{"name", "is_active"},
		})
	case approval.EntityAccountGroup:
		return applyCatalog[masterdata.AccountGroup](tx, req, action, catalogOptions{
			columns: []string{"name", "nature", "is_active"},
		})
	case approval.EntityDepartment:
		return applyCatalog[masterdata.Department](tx, req, action, catalogOptions{
			columns: []string{"name", "is_active"},
		})
	default:
		return approval.ApplyResult{}, errBadPayload(fmt.Sprintf("unknown entity type %q", req.EntityType))
	}
}
