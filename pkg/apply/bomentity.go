package apply

import (
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/bom"
)

// applyBom routes BOM requests to the dedicated write path. BOMs carry two
// extra actions beyond the usual verbs: approve_draft and
// create_version_from.
func applyBom(tx *gorm.DB, req *approval.ApprovalRequestRecord, action approval.Action, actorUserID int64) (approval.ApplyResult, error) {
	switch action {
	case approval.ActionCreate:
		payload, err := bom.DecodePayload(req.NewValue)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		header, err := bom.CreateDraft(tx, payload, actorUserID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: header.ID}, nil

	case approval.ActionUpdate:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		payload, err := bom.DecodePayload(req.NewValue)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := bom.UpdateDraft(tx, id, payload, actorUserID); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionApproveDraft:
		id, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		if err := bom.ApproveDraft(tx, id, actorUserID); err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: id}, nil

	case approval.ActionCreateVersionFrom:
		sourceID, err := parseEntityID(req.EntityID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		clone, err := bom.CreateVersionFrom(tx, sourceID, actorUserID)
		if err != nil {
			return approval.ApplyResult{}, err
		}
		return approval.ApplyResult{Applied: true, EntityID: clone.ID}, nil

	default:
		return approval.ApplyResult{}, errUnsupportedAction(string(action))
	}
}
