package approval

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/strideworks/erp-core/pkg/activity"
)

// ErrEditDeleteNotAllowed rejects moderator edits to delete requests.
var ErrEditDeleteNotAllowed = errors.New("approval_edit_delete_not_allowed")

// systemFields are never editable by a moderator.
var systemFields = map[string]struct{}{
	"created_at": {},
	"created_by": {},
	"updated_at": {},
	"updated_by": {},
}

// SanitizeEditedValues validates a moderator's edits against a pending
// request and returns the merged payload plus the audit diff.
//
// Delete requests are immutable. The editable keys are the top-level
// non-underscore keys of the original new_value minus system fields. Submitted
// keys whose JSON serialization differs from the original replace it and are
// recorded as changed fields; keys absent from the edit keep the original
// value, nested maps included. Omission preserves, it never clears.
func SanitizeEditedValues(req *ApprovalRequestRecord, edits map[string]any) (JSONAny, []activity.FieldChange, error) {
	if req.InferredAction() == ActionDelete {
		return nil, nil, ErrEditDeleteNotAllowed
	}

	merged := make(JSONAny, len(req.NewValue))
	for k, v := range req.NewValue {
		merged[k] = v
	}

	var changed []activity.FieldChange
	for key, edited := range edits {
		if strings.HasPrefix(key, "_") {
			continue
		}
		if _, system := systemFields[key]; system {
			continue
		}
		original, editable := req.NewValue[key]
		if !editable {
			continue
		}
		if jsonEqual(original, edited) {
			continue
		}
		merged[key] = edited
		changed = append(changed, activity.FieldChange{
			Field:    key,
			OldValue: original,
			NewValue: edited,
		})
	}

	return merged, changed, nil
}

// jsonEqual compares two values by their JSON serialization.
func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
