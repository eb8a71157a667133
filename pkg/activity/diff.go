package activity

import "encoding/json"

// FieldChange is one audited field delta.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// ChangedFields diffs the after-image against the before-image restricted to
// the entity's declared field list. Values are compared by JSON serialization
// so numeric and nested-shape differences are caught uniformly.
func ChangedFields(oldValue, newValue map[string]any, fields []string) []FieldChange {
	if newValue == nil {
		return nil
	}
	var changes []FieldChange
	for _, field := range fields {
		before, hadBefore := oldValue[field]
		after, hasAfter := newValue[field]
		if !hadBefore && !hasAfter {
			continue
		}
		if jsonEqual(before, after) {
			continue
		}
		changes = append(changes, FieldChange{
			Field:    field,
			OldValue: before,
			NewValue: after,
		})
	}
	return changes
}

func jsonEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}
