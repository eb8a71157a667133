package apply

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
)

var partyColumns = []string{
	"name", "party_type", "party_group_id", "city_id", "address",
	"phone1", "phone2", "credit_allowed", "credit_limit", "is_active",
}

func applyParty(tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action) (approval.ApplyResult, error) {
	payload := map[string]any(req.NewValue)

	switch action {
	case approval.ActionCreate:
		m, err := decodeModel[masterdata.Party](createInput(payload))
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if !m.CreditAllowed {
			m.CreditLimit = decimal.Zero
		}
		if err := tx.Create(m).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("create party: %w", err)
		}
		if err := replacePartyBranches(tx, m.ID, payload); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: m.ID}, nil

	case approval.ActionUpdate:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		var existing masterdata.Party
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return approval.ApplyResult{}, errEntityNotFound()
			}
			return approval.ApplyResult{}, fmt.Errorf("load party: %w", err)
		}

		updates := updatesFromPayload(payload, partyColumns)

		// credit_limit is forced to zero whenever the effective
		// credit_allowed is false, whether the payload changes the flag
		// or the stored row already has it off.
		creditAllowed := existing.CreditAllowed
		if v, ok := boolValue(payload, "credit_allowed"); ok {
			creditAllowed = v
		}
		if !creditAllowed {
			updates["credit_limit"] = decimal.Zero
		}

		if len(updates) > 0 {
			if err := tx.Model(&masterdata.Party{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return approval.ApplyResult{}, fmt.Errorf("update party: %w", err)
			}
		}
		if err := replacePartyBranches(tx, id, payload); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionToggle:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		result := tx.Model(&masterdata.Party{}).Where("id = ?", id).Update("is_active", gorm.Expr("NOT is_active"))
		if result.Error != nil {
			return approval.ApplyResult{}, fmt.Errorf("toggle party: %w", result.Error)
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
		if err := tx.Where("party_id = ?", id).Delete(&masterdata.PartyBranch{}).Error; err != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete party branches: %w", err)
		}
		result := tx.Delete(&masterdata.Party{}, id)
		if result.Error != nil {
			return approval.ApplyResult{}, fmt.Errorf("delete party: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return approval.ApplyResult{}, errEntityNotFound()
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	default:
		return approval.ApplyResult{}, errUnsupportedAction(string(action))
	}
}

func replacePartyBranches(tx *gorm.DB, partyID int64, payload map[string]any) error {
	v, ok := payload["branch_ids"]
	if !ok {
		return nil
	}
	if err := tx.Where("party_id = ?", partyID).Delete(&masterdata.PartyBranch{}).Error; err != nil {
		return fmt.Errorf("clear party branches: %w", err)
	}
	for _, branchID := range int64Slice(v) {
		rec := masterdata.PartyBranch{PartyID: partyID, BranchID: branchID}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert party branch: %w", err)
		}
	}
	return nil
}
