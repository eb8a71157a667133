package screens

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/masterdata"
	"github.com/strideworks/erp-core/pkg/permissions"
)

// bomConfig is the pseudo entity config for the BOM screen; the payload shape
// is nested, so the uniform field parser does not apply.
var bomConfig = EntityConfig{
	Slug:       "boms",
	ScopeKey:   "production.boms",
	EntityType: approval.EntityBom,
	Table:      "bom_headers",
}

// MountBoms attaches the BOM screen. BOM bodies are JSON because of the
// nested section lists.
func (a *Adapter) MountBoms(r chi.Router, csrf *CSRF) {
	r.Route("/boms", func(sub chi.Router) {
		sub.Get("/", a.listBoms)
		sub.Get("/{id}", a.getBom)
		sub.Group(func(mut chi.Router) {
			mut.Use(csrf.Require)
			mut.Post("/", a.createBom)
			mut.Post("/{id}", a.updateBom)
			mut.Post("/{id}/approve", a.approveBomDraft)
			mut.Post("/{id}/new-version", a.newBomVersion)
		})
	})
}

func (a *Adapter) listBoms(w http.ResponseWriter, r *http.Request) {
	user := permissions.UserFromContext(r.Context())
	if !a.gatewayView(user, bomConfig) {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to view this screen")
		return
	}
	query := a.db.Model(&masterdata.BomHeader{})
	if itemID := r.URL.Query().Get("item_id"); itemID != "" {
		query = query.Where("item_id = ?", itemID)
	}
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	var headers []masterdata.BomHeader
	if err := query.Order("item_id, level, version_no DESC").Find(&headers).Error; err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": headers})
}

func (a *Adapter) getBom(w http.ResponseWriter, r *http.Request) {
	user := permissions.UserFromContext(r.Context())
	if !a.gatewayView(user, bomConfig) {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to view this screen")
		return
	}
	id := chi.URLParam(r, "id")
	var header masterdata.BomHeader
	if err := a.db.First(&header, "id = ?", id).Error; err != nil {
		writeError(w, http.StatusNotFound, "not_found", "BOM not found")
		return
	}

	var rm []masterdata.BomRmLine
	var sfg []masterdata.BomSfgLine
	var labour []masterdata.BomLabourLine
	var rules []masterdata.BomVariantRule
	var changes []masterdata.BomChangeLog
	for _, q := range []struct {
		dst any
	}{
		{&rm}, {&sfg}, {&labour}, {&rules}, {&changes},
	} {
		if err := a.db.Where("bom_id = ?", header.ID).Order("id").Find(q.dst).Error; err != nil {
			writeDomainError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"header":        header,
		"rm_lines":      rm,
		"sfg_lines":     sfg,
		"labour_lines":  labour,
		"variant_rules": rules,
		"change_log":    changes,
	})
}

func (a *Adapter) createBom(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeBomBody(r)
	if err != nil {
		writeFormError(w, err)
		return
	}
	payload["_action"] = string(approval.ActionCreate)
	a.submit(w, r, bomConfig, permissions.ActionCreate, approval.EntityIDNew, nil, payload)
}

func (a *Adapter) updateBom(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	oldValue, err := a.loadRow(bomConfig, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if oldValue == nil {
		writeError(w, http.StatusNotFound, "not_found", "BOM not found")
		return
	}
	payload, err := decodeBomBody(r)
	if err != nil {
		writeFormError(w, err)
		return
	}
	payload["_action"] = string(approval.ActionUpdate)
	a.submit(w, r, bomConfig, permissions.ActionEdit, id, oldValue, payload)
}

func (a *Adapter) approveBomDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	oldValue, err := a.loadRow(bomConfig, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if oldValue == nil {
		writeError(w, http.StatusNotFound, "not_found", "BOM not found")
		return
	}
	payload := map[string]any{"_action": string(approval.ActionApproveDraft)}
	a.submit(w, r, bomConfig, permissions.ActionApprove, id, oldValue, payload)
}

func (a *Adapter) newBomVersion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	oldValue, err := a.loadRow(bomConfig, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if oldValue == nil {
		writeError(w, http.StatusNotFound, "not_found", "BOM not found")
		return
	}
	payload := map[string]any{"_action": string(approval.ActionCreateVersionFrom)}
	a.submit(w, r, bomConfig, permissions.ActionCreate, id, oldValue, payload)
}

func decodeBomBody(r *http.Request) (map[string]any, error) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		return nil, &FormError{Fields: map[string]string{"_body": "malformed JSON body"}}
	}
	if _, ok := payload["header"]; !ok {
		return nil, &FormError{Fields: map[string]string{"header": "required"}}
	}
	return payload, nil
}

// bomSummary names the header for queue listings.
func bomSummary(header map[string]any) string {
	return fmt.Sprintf("bom item %v %v", header["item_id"], header["level"])
}
