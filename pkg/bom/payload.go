package bom

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/strideworks/erp-core/pkg/masterdata"
)

// Payload is the decoded shape of a BOM approval request's new_value.
type Payload struct {
	Header      HeaderInput       `json:"header"`
	RmLines     []RmLineInput     `json:"rm_lines"`
	SfgLines    []SfgLineInput    `json:"sfg_lines"`
	LabourLines []LabourLineInput `json:"labour_lines"`
	Rules       []RuleInput       `json:"variant_rules"`
}

// HeaderInput carries the header fields a requester may set. Status and
// version numbering are owned by the write path, never by the payload.
type HeaderInput struct {
	ItemID      int64               `json:"item_id"`
	Level       masterdata.BomLevel `json:"level"`
	OutputQty   decimal.Decimal     `json:"output_qty"`
	OutputUomID int64               `json:"output_uom_id"`
	Remarks     string              `json:"remarks"`
}

type RmLineInput struct {
	RmItemID int64           `json:"rm_item_id"`
	DeptID   *int64          `json:"dept_id"`
	ColorID  *int64          `json:"color_id"`
	SizeID   *int64          `json:"size_id"`
	Qty      decimal.Decimal `json:"qty"`
	UomID    *int64          `json:"uom_id"`
	Wastage  decimal.Decimal `json:"wastage"`
}

type SfgLineInput struct {
	FgSizeID *int64          `json:"fg_size_id"`
	SfgSkuID int64           `json:"sfg_sku_id"`
	Qty      decimal.Decimal `json:"qty"`
}

type LabourLineInput struct {
	DeptID    int64           `json:"dept_id"`
	LabourID  int64           `json:"labour_id"`
	SizeScope string          `json:"size_scope"`
	SizeID    *int64          `json:"size_id"`
	RateType  string          `json:"rate_type"`
	Rate      decimal.Decimal `json:"rate"`
}

type RuleInput struct {
	SizeScope           string           `json:"size_scope"`
	SizeID              *int64           `json:"size_id"`
	PackingScope        string           `json:"packing_scope"`
	PackingTypeID       *int64           `json:"packing_type_id"`
	ColorScope          string           `json:"color_scope"`
	ColorID             *int64           `json:"color_id"`
	ActionType          string           `json:"action_type"`
	MaterialScope       string           `json:"material_scope"`
	TargetRmItemID      *int64           `json:"target_rm_item_id"`
	QtyFactor           *decimal.Decimal `json:"qty_factor"`
	ReplacementRmItemID *int64           `json:"replacement_rm_item_id"`
}

// DecodePayload converts a stored new_value map into a typed payload. The
// round trip through JSON keeps the store oblivious to BOM shape while the
// write path works with concrete types.
func DecodePayload(value map[string]any) (*Payload, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode bom payload: %w", err)
	}
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode bom payload: %w", err)
	}
	p.normalize()
	return &p, nil
}

func (p *Payload) normalize() {
	for i := range p.LabourLines {
		if p.LabourLines[i].SizeScope == "" {
			p.LabourLines[i].SizeScope = "ALL"
		}
	}
	for i := range p.Rules {
		if p.Rules[i].SizeScope == "" {
			p.Rules[i].SizeScope = "ALL"
		}
		if p.Rules[i].PackingScope == "" {
			p.Rules[i].PackingScope = "ALL"
		}
		if p.Rules[i].ColorScope == "" {
			p.Rules[i].ColorScope = "ALL"
		}
		if p.Rules[i].MaterialScope == "" {
			p.Rules[i].MaterialScope = "ALL"
		}
	}
}

func (in RmLineInput) toRecord(bomID int64) masterdata.BomRmLine {
	return masterdata.BomRmLine{
		BomID:    bomID,
		RmItemID: in.RmItemID,
		DeptID:   in.DeptID,
		ColorID:  in.ColorID,
		SizeID:   in.SizeID,
		Qty:      in.Qty,
		UomID:    in.UomID,
		Wastage:  in.Wastage,
	}
}

func rmInputOf(r masterdata.BomRmLine) RmLineInput {
	return RmLineInput{
		RmItemID: r.RmItemID,
		DeptID:   r.DeptID,
		ColorID:  r.ColorID,
		SizeID:   r.SizeID,
		Qty:      r.Qty,
		UomID:    r.UomID,
		Wastage:  r.Wastage,
	}
}

func (in SfgLineInput) toRecord(bomID int64) masterdata.BomSfgLine {
	return masterdata.BomSfgLine{
		BomID:    bomID,
		FgSizeID: in.FgSizeID,
		SfgSkuID: in.SfgSkuID,
		Qty:      in.Qty,
	}
}

func sfgInputOf(r masterdata.BomSfgLine) SfgLineInput {
	return SfgLineInput{FgSizeID: r.FgSizeID, SfgSkuID: r.SfgSkuID, Qty: r.Qty}
}

func (in LabourLineInput) toRecord(bomID int64) masterdata.BomLabourLine {
	return masterdata.BomLabourLine{
		BomID:     bomID,
		DeptID:    in.DeptID,
		LabourID:  in.LabourID,
		SizeScope: in.SizeScope,
		SizeID:    in.SizeID,
		RateType:  in.RateType,
		Rate:      in.Rate,
	}
}

func labourInputOf(r masterdata.BomLabourLine) LabourLineInput {
	return LabourLineInput{
		DeptID:    r.DeptID,
		LabourID:  r.LabourID,
		SizeScope: r.SizeScope,
		SizeID:    r.SizeID,
		RateType:  r.RateType,
		Rate:      r.Rate,
	}
}

func (in RuleInput) toRecord(bomID int64) masterdata.BomVariantRule {
	return masterdata.BomVariantRule{
		BomID:               bomID,
		SizeScope:           in.SizeScope,
		SizeID:              in.SizeID,
		PackingScope:        in.PackingScope,
		PackingTypeID:       in.PackingTypeID,
		ColorScope:          in.ColorScope,
		ColorID:             in.ColorID,
		ActionType:          in.ActionType,
		MaterialScope:       in.MaterialScope,
		TargetRmItemID:      in.TargetRmItemID,
		QtyFactor:           in.QtyFactor,
		ReplacementRmItemID: in.ReplacementRmItemID,
	}
}

func ruleInputOf(r masterdata.BomVariantRule) RuleInput {
	return RuleInput{
		SizeScope:           r.SizeScope,
		SizeID:              r.SizeID,
		PackingScope:        r.PackingScope,
		PackingTypeID:       r.PackingTypeID,
		ColorScope:          r.ColorScope,
		ColorID:             r.ColorID,
		ActionType:          r.ActionType,
		MaterialScope:       r.MaterialScope,
		TargetRmItemID:      r.TargetRmItemID,
		QtyFactor:           r.QtyFactor,
		ReplacementRmItemID: r.ReplacementRmItemID,
	}
}
