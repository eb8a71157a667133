package apply

import (
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/approval"
)

// Applier replays an approved request's captured payload within the caller's
// transaction. It is the single write authority for governed master data:
// the moderation path and the direct (not-gated) screen path both run
// through it, so side-table handling can never diverge between the two.
type Applier struct{}

// NewApplier creates the shared applier.
func NewApplier() *Applier {
	return &Applier{}
}

var _ approval.Applier = (*Applier)(nil)

// Apply dispatches by entity type. Any error rolls back the caller's
// transaction; partial application is impossible.
func (a *Applier) Apply(tx *gorm.DB, req *approval.ApprovalRequestRecord, actorUserID int64) (approval.ApplyResult, error) {
	action := req.InferredAction()

	switch req.EntityType {
	case approval.EntityAccount:
		return applyAccount(tx, req, action)
	case approval.EntityParty:
		return applyParty(tx, req, action)
	case approval.EntityItem:
		return applyItem(tx, req, action)
	case approval.EntitySku:
		return applySku(tx, req, action)
	case approval.EntityBom:
		return applyBom(tx, req, action, actorUserID)
	default:
		return applyBasicInfo(tx, req, action)
	}
}
