package bom

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/masterdata"
)

// The write path runs entirely inside the caller's transaction. Every
// function either completes all of its side effects or returns an error so
// the caller rolls the whole request back.

func draftFlag() *int16 {
	one := int16(1)
	return &one
}

func loadHeader(tx *gorm.DB, bomID int64) (*masterdata.BomHeader, error) {
	var header masterdata.BomHeader
	err := tx.First(&header, bomID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errNotFound()
	}
	if err != nil {
		return nil, fmt.Errorf("load bom header: %w", err)
	}
	return &header, nil
}

func headerInputOf(h *masterdata.BomHeader) HeaderInput {
	return HeaderInput{
		ItemID:      h.ItemID,
		Level:       h.Level,
		OutputQty:   h.OutputQty,
		OutputUomID: h.OutputUomID,
		Remarks:     h.Remarks,
	}
}

// CreateDraft inserts a new DRAFT header at version 1 with all child rows and
// logs every row as ADDED. The one-draft-per-(item, level) rule is checked up
// front and also backed by the partial unique index, so a concurrent loser
// surfaces the same validation error instead of a bare constraint violation.
func CreateDraft(tx *gorm.DB, p *Payload, actorID int64) (*masterdata.BomHeader, error) {
	var count int64
	err := tx.Model(&masterdata.BomHeader{}).
		Where("item_id = ? AND level = ? AND status = ?", p.Header.ItemID, p.Header.Level, masterdata.BomStatusDraft).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("check existing draft: %w", err)
	}
	if count > 0 {
		return nil, errDraftExists()
	}

	header := masterdata.BomHeader{
		ItemID:      p.Header.ItemID,
		Level:       p.Header.Level,
		DraftFlag:   draftFlag(),
		Status:      masterdata.BomStatusDraft,
		VersionNo:   1,
		OutputQty:   p.Header.OutputQty,
		OutputUomID: p.Header.OutputUomID,
		Remarks:     p.Header.Remarks,
		CreatedBy:   actorID,
	}
	if err := tx.Create(&header).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDraftExists()
		}
		return nil, fmt.Errorf("create bom header: %w", err)
	}

	if err := insertChildren(tx, header.ID, p); err != nil {
		return nil, err
	}
	if err := appendChange(tx, header.ID, "header", "ADDED", "header", rowDetail(headerInputOf(&header)), actorID); err != nil {
		return nil, err
	}
	if err := logChildrenAdded(tx, header.ID, p, actorID); err != nil {
		return nil, err
	}
	return &header, nil
}

// UpdateDraft replaces a draft's child rows and header fields wholesale,
// logging per-row differences against the previous contents. Non-draft
// headers are immutable.
func UpdateDraft(tx *gorm.DB, bomID int64, p *Payload, actorID int64) error {
	header, err := loadHeader(tx, bomID)
	if err != nil {
		return err
	}
	if header.Status != masterdata.BomStatusDraft {
		return errNotDraft()
	}

	oldRm, oldSfg, oldLabour, oldRules, err := loadChildren(tx, bomID)
	if err != nil {
		return err
	}

	if err := diffSection(tx, bomID, "rm", entriesOf(oldRm), entriesOf(p.RmLines), actorID); err != nil {
		return err
	}
	if err := diffSection(tx, bomID, "sfg", entriesOf(oldSfg), entriesOf(p.SfgLines), actorID); err != nil {
		return err
	}
	if err := diffSection(tx, bomID, "labour", entriesOf(oldLabour), entriesOf(p.LabourLines), actorID); err != nil {
		return err
	}
	if err := diffSection(tx, bomID, "rule", entriesOf(oldRules), entriesOf(p.Rules), actorID); err != nil {
		return err
	}

	oldHeader := headerInputOf(header)
	newHeader := oldHeader
	newHeader.OutputQty = p.Header.OutputQty
	newHeader.OutputUomID = p.Header.OutputUomID
	newHeader.Remarks = p.Header.Remarks
	if !rowsEqual(oldHeader, newHeader) {
		if err := appendChange(tx, bomID, "header", "UPDATED", "header", updateDetail(oldHeader, newHeader), actorID); err != nil {
			return err
		}
		updates := map[string]any{
			"output_qty":    p.Header.OutputQty,
			"output_uom_id": p.Header.OutputUomID,
			"remarks":       p.Header.Remarks,
		}
		if err := tx.Model(&masterdata.BomHeader{}).Where("id = ?", bomID).Updates(updates).Error; err != nil {
			return fmt.Errorf("update bom header: %w", err)
		}
	}

	if err := deleteChildren(tx, bomID); err != nil {
		return err
	}
	return insertChildren(tx, bomID, p)
}

// ApproveDraft moves a draft to APPROVED after verifying every RM line has an
// active purchase rate and every referenced SFG SKU belongs to an item with an
// approved SEMI_FINISHED BOM.
func ApproveDraft(tx *gorm.DB, bomID int64, actorID int64) error {
	header, err := loadHeader(tx, bomID)
	if err != nil {
		return err
	}
	if header.Status != masterdata.BomStatusDraft {
		return errNotDraft()
	}

	rmLines, sfgLines, _, _, err := loadChildren(tx, bomID)
	if err != nil {
		return err
	}
	if err := checkRmRates(tx, rmLines); err != nil {
		return err
	}
	if err := checkSfgBoms(tx, sfgLines); err != nil {
		return err
	}

	var otherDrafts int64
	err = tx.Model(&masterdata.BomHeader{}).
		Where("item_id = ? AND level = ? AND status = ? AND id <> ?", header.ItemID, header.Level, masterdata.BomStatusDraft, bomID).
		Count(&otherDrafts).Error
	if err != nil {
		return fmt.Errorf("check competing drafts: %w", err)
	}
	if otherDrafts > 0 {
		return errDraftExists()
	}

	now := time.Now()
	updates := map[string]any{
		"status":      masterdata.BomStatusApproved,
		"draft_flag":  nil,
		"approved_by": actorID,
		"approved_at": now,
	}
	if err := tx.Model(&masterdata.BomHeader{}).Where("id = ?", bomID).Updates(updates).Error; err != nil {
		return fmt.Errorf("approve bom: %w", err)
	}
	detail := fmt.Sprintf(`{"status":{"old":"%s","new":"%s"}}`, masterdata.BomStatusDraft, masterdata.BomStatusApproved)
	return appendChange(tx, bomID, "header", "UPDATED", "header", detail, actorID)
}

// CreateVersionFrom clones an APPROVED header into a new DRAFT at
// version_no+1, deep-copying all child rows. Cloning a draft is refused.
func CreateVersionFrom(tx *gorm.DB, sourceBomID int64, actorID int64) (*masterdata.BomHeader, error) {
	source, err := loadHeader(tx, sourceBomID)
	if err != nil {
		return nil, err
	}
	if source.Status != masterdata.BomStatusApproved {
		return nil, errNotApproved()
	}

	var drafts int64
	err = tx.Model(&masterdata.BomHeader{}).
		Where("item_id = ? AND level = ? AND status = ?", source.ItemID, source.Level, masterdata.BomStatusDraft).
		Count(&drafts).Error
	if err != nil {
		return nil, fmt.Errorf("check existing draft: %w", err)
	}
	if drafts > 0 {
		return nil, errDraftExists()
	}

	clone := masterdata.BomHeader{
		ItemID:      source.ItemID,
		Level:       source.Level,
		DraftFlag:   draftFlag(),
		Status:      masterdata.BomStatusDraft,
		VersionNo:   source.VersionNo + 1,
		OutputQty:   source.OutputQty,
		OutputUomID: source.OutputUomID,
		Remarks:     source.Remarks,
		CreatedBy:   actorID,
	}
	if err := tx.Create(&clone).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDraftExists()
		}
		return nil, fmt.Errorf("create bom version: %w", err)
	}

	rm, sfg, labour, rules, err := loadChildren(tx, sourceBomID)
	if err != nil {
		return nil, err
	}
	payload := &Payload{
		RmLines:     rm,
		SfgLines:    sfg,
		LabourLines: labour,
		Rules:       rules,
	}
	if err := insertChildren(tx, clone.ID, payload); err != nil {
		return nil, err
	}

	detail := fmt.Sprintf(`{"cloned_from":%d,"source_version":%d}`, sourceBomID, source.VersionNo)
	if err := appendChange(tx, clone.ID, "header", "ADDED", "header", detail, actorID); err != nil {
		return nil, err
	}
	if err := logChildrenAdded(tx, clone.ID, payload, actorID); err != nil {
		return nil, err
	}
	return &clone, nil
}

func insertChildren(tx *gorm.DB, bomID int64, p *Payload) error {
	for _, in := range p.RmLines {
		rec := in.toRecord(bomID)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert bom rm line: %w", err)
		}
	}
	for _, in := range p.SfgLines {
		rec := in.toRecord(bomID)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert bom sfg line: %w", err)
		}
	}
	for _, in := range p.LabourLines {
		rec := in.toRecord(bomID)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert bom labour line: %w", err)
		}
	}
	for _, in := range p.Rules {
		rec := in.toRecord(bomID)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert bom variant rule: %w", err)
		}
	}
	return nil
}

func deleteChildren(tx *gorm.DB, bomID int64) error {
	for _, model := range []any{
		&masterdata.BomRmLine{},
		&masterdata.BomSfgLine{},
		&masterdata.BomLabourLine{},
		&masterdata.BomVariantRule{},
	} {
		if err := tx.Where("bom_id = ?", bomID).Delete(model).Error; err != nil {
			return fmt.Errorf("delete bom child rows: %w", err)
		}
	}
	return nil
}

func loadChildren(tx *gorm.DB, bomID int64) ([]RmLineInput, []SfgLineInput, []LabourLineInput, []RuleInput, error) {
	var rmRows []masterdata.BomRmLine
	if err := tx.Where("bom_id = ?", bomID).Order("id").Find(&rmRows).Error; err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load bom rm lines: %w", err)
	}
	var sfgRows []masterdata.BomSfgLine
	if err := tx.Where("bom_id = ?", bomID).Order("id").Find(&sfgRows).Error; err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load bom sfg lines: %w", err)
	}
	var labourRows []masterdata.BomLabourLine
	if err := tx.Where("bom_id = ?", bomID).Order("id").Find(&labourRows).Error; err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load bom labour lines: %w", err)
	}
	var ruleRows []masterdata.BomVariantRule
	if err := tx.Where("bom_id = ?", bomID).Order("id").Find(&ruleRows).Error; err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load bom variant rules: %w", err)
	}

	rm := make([]RmLineInput, 0, len(rmRows))
	for _, r := range rmRows {
		rm = append(rm, rmInputOf(r))
	}
	sfg := make([]SfgLineInput, 0, len(sfgRows))
	for _, r := range sfgRows {
		sfg = append(sfg, sfgInputOf(r))
	}
	labour := make([]LabourLineInput, 0, len(labourRows))
	for _, r := range labourRows {
		labour = append(labour, labourInputOf(r))
	}
	rules := make([]RuleInput, 0, len(ruleRows))
	for _, r := range ruleRows {
		rules = append(rules, ruleInputOf(r))
	}
	return rm, sfg, labour, rules, nil
}

func logChildrenAdded(tx *gorm.DB, bomID int64, p *Payload, actorID int64) error {
	if err := logSectionAdded(tx, bomID, "rm", entriesOf(p.RmLines), actorID); err != nil {
		return err
	}
	if err := logSectionAdded(tx, bomID, "sfg", entriesOf(p.SfgLines), actorID); err != nil {
		return err
	}
	if err := logSectionAdded(tx, bomID, "labour", entriesOf(p.LabourLines), actorID); err != nil {
		return err
	}
	return logSectionAdded(tx, bomID, "rule", entriesOf(p.Rules), actorID)
}

// checkRmRates verifies every RM line has an active purchase rate. A line
// with a color requires a rate for that color or a generic rate with no
// color; a line without a color accepts any active rate.
func checkRmRates(tx *gorm.DB, lines []RmLineInput) error {
	if len(lines) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(lines))
	for _, l := range lines {
		ids = append(ids, l.RmItemID)
	}
	var rates []masterdata.RmPurchaseRate
	err := tx.Where("rm_item_id IN ? AND is_active = ?", ids, true).Find(&rates).Error
	if err != nil {
		return fmt.Errorf("load purchase rates: %w", err)
	}

	type rateKey struct {
		rmItemID int64
		colorID  int64 // 0 means no color
	}
	have := make(map[rateKey]struct{}, len(rates))
	for _, r := range rates {
		have[rateKey{rmItemID: r.RmItemID, colorID: orZero(r.ColorID)}] = struct{}{}
	}
	anyRate := make(map[int64]struct{}, len(rates))
	for _, r := range rates {
		anyRate[r.RmItemID] = struct{}{}
	}

	for _, l := range lines {
		if l.ColorID == nil {
			if _, ok := anyRate[l.RmItemID]; !ok {
				return errMissingRates()
			}
			continue
		}
		_, colorMatch := have[rateKey{rmItemID: l.RmItemID, colorID: *l.ColorID}]
		_, generic := have[rateKey{rmItemID: l.RmItemID}]
		if !colorMatch && !generic {
			return errMissingRates()
		}
	}
	return nil
}

// checkSfgBoms verifies each referenced SFG SKU resolves to an SFG item with
// an APPROVED SEMI_FINISHED BOM.
func checkSfgBoms(tx *gorm.DB, lines []SfgLineInput) error {
	if len(lines) == 0 {
		return nil
	}
	skuIDs := make([]int64, 0, len(lines))
	seen := make(map[int64]struct{}, len(lines))
	for _, l := range lines {
		if _, dup := seen[l.SfgSkuID]; dup {
			continue
		}
		seen[l.SfgSkuID] = struct{}{}
		skuIDs = append(skuIDs, l.SfgSkuID)
	}

	type skuItem struct {
		SkuID    int64               `gorm:"column:sku_id"`
		ItemID   int64               `gorm:"column:item_id"`
		ItemType masterdata.ItemType `gorm:"column:item_type"`
	}
	var rows []skuItem
	err := tx.Table("skus").
		Select("skus.id AS sku_id, items.id AS item_id, items.item_type AS item_type").
		Joins("JOIN variants ON variants.id = skus.variant_id").
		Joins("JOIN items ON items.id = variants.item_id").
		Where("skus.id IN ?", skuIDs).
		Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("resolve sfg skus: %w", err)
	}
	if len(rows) != len(skuIDs) {
		return errNoApprovedSfgBom()
	}

	itemIDs := make([]int64, 0, len(rows))
	for _, r := range rows {
		if r.ItemType != masterdata.ItemTypeSFG {
			return errNoApprovedSfgBom()
		}
		itemIDs = append(itemIDs, r.ItemID)
	}

	var approved []int64
	err = tx.Model(&masterdata.BomHeader{}).
		Where("item_id IN ? AND level = ? AND status = ?", itemIDs, masterdata.BomLevelSemiFinished, masterdata.BomStatusApproved).
		Distinct().
		Pluck("item_id", &approved).Error
	if err != nil {
		return fmt.Errorf("check approved sfg boms: %w", err)
	}
	approvedSet := make(map[int64]struct{}, len(approved))
	for _, id := range approved {
		approvedSet[id] = struct{}{}
	}
	for _, id := range itemIDs {
		if _, ok := approvedSet[id]; !ok {
			return errNoApprovedSfgBom()
		}
	}
	return nil
}
