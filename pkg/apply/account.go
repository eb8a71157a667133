package apply

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

var accountColumns = []string{"code", "name", "account_group_id", "account_type", "is_active"}

func applyAccount(tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action) (approval.ApplyResult, error) {
	payload := map[string]any(req.NewValue)

	switch action {
	case approval.ActionCreate:
		m, err := decodeModel[masterdata.Account](createInput(payload))
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := tx.Create(m).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return approval.ApplyResult{}, errDuplicateCode(m.Code)
			}
			return approval.ApplyResult{}, fmt.Errorf("create account: %w", err)
		}
		if err := replaceAccountBranches(tx, m.ID, payload); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: m.ID}, nil

	case approval.ActionUpdate:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		var existing masterdata.Account
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return approval.ApplyResult{}, errEntityNotFound()
			}
			return approval.ApplyResult{}, fmt.Errorf("load account: %w", err)
		}
		updates := updatesFromPayload(payload, accountColumns)
		if len(updates) > 0 {
			if err := tx.Model(&masterdata.Account{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					code, _ := stringValue(payload, "code")
					return approval.ApplyResult{}, errDuplicateCode(code)
				}
				return approval.ApplyResult{}, fmt.Errorf("update account: %w", err)
			}
		}
		if err := replaceAccountBranches(tx, id, payload); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionToggle:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		result := tx.Model(&masterdata.Account{}).Where("id = ?", id).Update("is_active", gorm.Expr("NOT is_active"))
		if result.Error != nil {
			return approval.ApplyResult{}, fmt.Errorf("toggle account: %w", result.Error)
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
		if err := tx.Where("account_id = ?", id).Delete(&masterdata.AccountBranch{}).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete account branches: %w", err)
		}
		result := tx.Delete(&masterdata.Account{}, id)
		if result.Error != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete account: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return approval.ApplyResult{}, errEntityNotFound()
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	default:
		return approval.ApplyResult{}, errUnsupportedAction(string(action))
	}
}

// replaceAccountBranches rewrites the branch map from payload.branch_ids when
// the key is present; an absent key leaves the map untouched.
func replaceAccountBranches(tx *gorm.DB, accountID int64, payload map[string]any) error {
	v, ok := payload["branch_ids"]
	if !ok {
		return nil
	}
	if err := tx.Where("account_id = ?", accountID).Delete(&masterdata.AccountBranch{}).Error; err != nil {
		return fmt.Errorf("clear account branches: %w", err)
	}
	for _, branchID := range int64Slice(v) {
		rec := masterdata.AccountBranch{AccountID: accountID, BranchID: branchID}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert account branch: %w", err)
		}
	}
	return nil
}
