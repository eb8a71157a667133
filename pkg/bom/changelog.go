package bom

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/masterdata"
)

// Composite row keys per section. Nullable dimensions fall back to the
// literal 0, so a line whose nullable dimension flips between set and unset
// is logged as ADDED+REMOVED rather than UPDATED. Audit consumers depend on
// these keys staying stable.

func orZero(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func (in RmLineInput) rowKey() string {
	return fmt.Sprintf("%d:%d:%d:%d", in.RmItemID, orZero(in.DeptID), orZero(in.ColorID), orZero(in.SizeID))
}

func (in SfgLineInput) rowKey() string {
	return fmt.Sprintf("%d:%d", orZero(in.FgSizeID), in.SfgSkuID)
}

func (in LabourLineInput) rowKey() string {
	return fmt.Sprintf("%d:%d:%s:%d:%s", in.DeptID, in.LabourID, in.SizeScope, orZero(in.SizeID), in.RateType)
}

func (in RuleInput) rowKey() string {
	return fmt.Sprintf("%s:%d:%s:%d:%s:%d:%s:%s:%d",
		in.SizeScope, orZero(in.SizeID),
		in.PackingScope, orZero(in.PackingTypeID),
		in.ColorScope, orZero(in.ColorID),
		in.ActionType, in.MaterialScope, orZero(in.TargetRmItemID))
}

type keyedRow interface {
	rowKey() string
}

// sectionEntry pairs a row with its key for diffing.
type sectionEntry struct {
	key string
	row any
}

func entriesOf[T keyedRow](rows []T) []sectionEntry {
	out := make([]sectionEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, sectionEntry{key: r.rowKey(), row: r})
	}
	return out
}

// diffSection classifies new rows against old rows by composite key and
// appends ADDED/REMOVED/UPDATED change-log records. Rows with equal keys and
// equal serialized content produce no entry.
func diffSection(tx *gorm.DB, bomID int64, section string, oldRows, newRows []sectionEntry, changedBy int64) error {
	oldByKey := make(map[string]sectionEntry, len(oldRows))
	for _, e := range oldRows {
		oldByKey[e.key] = e
	}
	seen := make(map[string]struct{}, len(newRows))

	for _, e := range newRows {
		seen[e.key] = struct{}{}
		prev, existed := oldByKey[e.key]
		if !existed {
			if err := appendChange(tx, bomID, section, "ADDED", e.key, rowDetail(e.row), changedBy); err != nil {
				return err
			}
			continue
		}
		if rowsEqual(prev.row, e.row) {
			continue
		}
		detail := updateDetail(prev.row, e.row)
		if err := appendChange(tx, bomID, section, "UPDATED", e.key, detail, changedBy); err != nil {
			return err
		}
	}

	for _, e := range oldRows {
		if _, still := seen[e.key]; still {
			continue
		}
		if err := appendChange(tx, bomID, section, "REMOVED", e.key, rowDetail(e.row), changedBy); err != nil {
			return err
		}
	}
	return nil
}

// logSectionAdded records every row of a fresh section as ADDED, used on
// create and version cloning.
func logSectionAdded(tx *gorm.DB, bomID int64, section string, rows []sectionEntry, changedBy int64) error {
	for _, e := range rows {
		if err := appendChange(tx, bomID, section, "ADDED", e.key, rowDetail(e.row), changedBy); err != nil {
			return err
		}
	}
	return nil
}

func appendChange(tx *gorm.DB, bomID int64, section, changeType, rowKey, detail string, changedBy int64) error {
	rec := masterdata.BomChangeLog{
		BomID:      bomID,
		Section:    section,
		ChangeType: changeType,
		RowKey:     rowKey,
		Detail:     detail,
		ChangedBy:  changedBy,
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("append bom change log: %w", err)
	}
	return nil
}

func rowsEqual(a, b any) bool {
	ab, errA := json.Marshal(a)
	bb, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(ab) == string(bb)
}

func rowDetail(row any) string {
	b, err := json.Marshal(row)
	if err != nil {
		return ""
	}
	return string(b)
}

func updateDetail(oldRow, newRow any) string {
	b, err := json.Marshal(map[string]any{"old": oldRow, "new": newRow})
	if err != nil {
		return ""
	}
	return string(b)
}
