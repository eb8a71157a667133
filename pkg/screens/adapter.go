package screens

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/activity"
	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/permissions"
)

// Adapter serves the uniform list/create/update/toggle/hard-delete contract
// for every governed master-data screen. Mutations flow through the approval
// gateway; when the gateway does not queue, the change is applied directly
// through the same applier the moderation path uses, so the two paths cannot
// drift apart.
type Adapter struct {
	db      *gorm.DB
	gateway *approval.Gateway
	applier approval.Applier
	log     *activity.Store
}

// NewAdapter creates a screen adapter.
func NewAdapter(db *gorm.DB, gateway *approval.Gateway, applier approval.Applier, log *activity.Store) *Adapter {
	return &Adapter{db: db, gateway: gateway, applier: applier, log: log}
}

// Mount attaches every entity screen to the router under its slug.
func (a *Adapter) Mount(r chi.Router, csrf *CSRF) {
	for _, cfg := range entityConfigs {
		cfg := cfg
		r.Route("/"+cfg.Slug, func(sub chi.Router) {
			sub.Get("/", a.list(cfg))
			sub.Group(func(mut chi.Router) {
				mut.Use(csrf.Require)
				mut.Post("/", a.create(cfg))
				mut.Post("/{id}", a.update(cfg))
				mut.Post("/{id}/toggle", a.toggle(cfg))
				mut.Post("/{id}/hard-delete", a.hardDelete(cfg))
			})
		})
	}
}

func (a *Adapter) list(cfg EntityConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := permissions.UserFromContext(r.Context())
		if !a.gatewayView(user, cfg) {
			writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to view this screen")
			return
		}

		query := a.db.Table(cfg.Table)
		if active := r.URL.Query().Get("active"); active != "" {
			query = query.Where("is_active = ?", active == "true")
		}
		var rows []map[string]any
		if err := query.Order("id").Find(&rows).Error; err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"items": rows})
	}
}

// gatewayView answers the read-side permission check; admins always pass.
func (a *Adapter) gatewayView(user *permissions.AuthUser, cfg EntityConfig) bool {
	if user == nil {
		return false
	}
	if user.IsAdmin {
		return true
	}
	return a.gateway.Resolver().HasPermission(user, cfg.ScopeKey, permissions.ActionView)
}

func (a *Adapter) create(cfg EntityConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := a.parseBody(r, cfg)
		if err != nil {
			writeFormError(w, err)
			return
		}
		if err := a.checkReferences(payload, cfg); err != nil {
			writeFormError(w, err)
			return
		}
		payload["_action"] = string(approval.ActionCreate)
		a.submit(w, r, cfg, permissions.ActionCreate, approval.EntityIDNew, nil, payload)
	}
}

func (a *Adapter) update(cfg EntityConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		oldValue, err := a.loadRow(cfg, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if oldValue == nil {
			writeError(w, http.StatusNotFound, "not_found", "Record not found")
			return
		}
		payload, err := a.parseBody(r, cfg)
		if err != nil {
			writeFormError(w, err)
			return
		}
		if err := a.checkReferences(payload, cfg); err != nil {
			writeFormError(w, err)
			return
		}
		payload["_action"] = string(approval.ActionUpdate)
		a.submit(w, r, cfg, permissions.ActionEdit, id, oldValue, payload)
	}
}

func (a *Adapter) toggle(cfg EntityConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		oldValue, err := a.loadRow(cfg, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if oldValue == nil {
			writeError(w, http.StatusNotFound, "not_found", "Record not found")
			return
		}
		payload := map[string]any{"_action": string(approval.ActionToggle)}
		a.submit(w, r, cfg, permissions.ActionDelete, id, oldValue, payload)
	}
}

func (a *Adapter) hardDelete(cfg EntityConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		oldValue, err := a.loadRow(cfg, id)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		if oldValue == nil {
			writeError(w, http.StatusNotFound, "not_found", "Record not found")
			return
		}
		payload := map[string]any{"_action": string(approval.ActionDelete)}
		a.submit(w, r, cfg, permissions.ActionHardDelete, id, oldValue, payload)
	}
}

// submit runs the gateway decision and, when the change is not queued,
// applies it directly in one transaction together with its activity-log
// entry.
func (a *Adapter) submit(w http.ResponseWriter, r *http.Request, cfg EntityConfig, action permissions.Action, entityID string, oldValue, newValue map[string]any) {
	user := permissions.UserFromContext(r.Context())
	branchID := permissions.BranchFromContext(r.Context())

	result, err := a.gateway.HandleScreenApproval(r.Context(), approval.GatewayInput{
		User:       user,
		BranchID:   branchID,
		ScopeKey:   cfg.ScopeKey,
		Action:     action,
		EntityType: cfg.EntityType,
		EntityID:   entityID,
		Summary:    a.summarize(cfg, oldValue, newValue),
		OldValue:   oldValue,
		NewValue:   newValue,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if result.Queued {
		seeOther(w, r, "/screens/"+cfg.Slug)
		return
	}

	req := &approval.ApprovalRequestRecord{
		BranchID:   branchID,
		EntityType: cfg.EntityType,
		EntityKey:  cfg.ScopeKey,
		EntityID:   entityID,
		OldValue:   approval.JSONAny(oldValue),
		NewValue:   approval.JSONAny(newValue),
	}
	err = a.db.Transaction(func(tx *gorm.DB) error {
		applied, err := a.applier.Apply(tx, req, user.ID)
		if err != nil {
			return err
		}
		ctx := activity.BuildContext(r.Method, r.URL.Path, r.URL.Query(), newValue)
		if oldValue != nil {
			fields := make([]string, 0, len(cfg.Fields))
			for _, f := range cfg.Fields {
				fields = append(fields, f.Name)
			}
			ctx = ctx.WithChangedFields(activity.ChangedFields(oldValue, newValue, fields))
		}
		entry := &activity.LogRecord{
			BranchID:   branchID,
			UserID:     user.ID,
			EntityType: string(cfg.EntityType),
			EntityID:   strconv.FormatInt(applied.EntityID, 10),
			Action:     directLogAction(action),
			Context:    ctx,
		}
		return a.log.AppendTx(tx, entry)
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	seeOther(w, r, "/screens/"+cfg.Slug)
}

func directLogAction(action permissions.Action) activity.LogAction {
	switch action {
	case permissions.ActionCreate:
		return activity.LogCreate
	case permissions.ActionDelete:
		return activity.LogToggle
	case permissions.ActionHardDelete:
		return activity.LogHardDelete
	default:
		return activity.LogUpdate
	}
}

// parseBody accepts either a form-encoded or a JSON body. JSON bodies are
// filtered to the declared field set so the payload shape stays uniform.
func (a *Adapter) parseBody(r *http.Request, cfg EntityConfig) (map[string]any, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, &FormError{Fields: map[string]string{"_body": "malformed JSON body"}}
		}
		payload := make(map[string]any, len(cfg.Fields))
		var formErr FormError
		for _, f := range cfg.Fields {
			v, present := raw[f.Name]
			if !present {
				if f.Required {
					formErr.add(f.Name, "required")
				}
				continue
			}
			payload[f.Name] = v
		}
		if len(formErr.Fields) > 0 {
			return nil, &formErr
		}
		return payload, nil
	}
	return parseForm(r, cfg.Fields)
}

// checkReferences verifies that id fields point at existing rows in their
// lookup tables.
func (a *Adapter) checkReferences(payload map[string]any, cfg EntityConfig) error {
	var formErr FormError
	for _, f := range cfg.Fields {
		if f.RefTable == "" {
			continue
		}
		v, present := payload[f.Name]
		if !present || v == nil {
			continue
		}
		id, ok := v.(float64)
		if !ok {
			continue
		}
		var count int64
		if err := a.db.Table(f.RefTable).Where("id = ?", int64(id)).Count(&count).Error; err != nil {
			return fmt.Errorf("check reference %s: %w", f.Name, err)
		}
		if count == 0 {
			formErr.add(f.Name, "unknown reference")
		}
	}
	if len(formErr.Fields) > 0 {
		return &formErr
	}
	return nil
}

func (a *Adapter) loadRow(cfg EntityConfig, id string) (map[string]any, error) {
	rowID, err := strconv.ParseInt(id, 10, 64)
	if err != nil || rowID <= 0 {
		return nil, nil
	}
	var rows []map[string]any
	if err := a.db.Table(cfg.Table).Where("id = ?", rowID).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load %s row: %w", cfg.Table, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (a *Adapter) summarize(cfg EntityConfig, oldValue, newValue map[string]any) string {
	if cfg.EntityType == approval.EntityBom {
		if header, ok := newValue["header"].(map[string]any); ok {
			return bomSummary(header)
		}
		if oldValue != nil {
			return fmt.Sprintf("bom item %v %v", oldValue["item_id"], oldValue["level"])
		}
		return cfg.Slug
	}
	name := ""
	if v, ok := newValue[cfg.NameField].(string); ok && v != "" {
		name = v
	} else if oldValue != nil {
		if v, ok := oldValue[cfg.NameField].(string); ok {
			name = v
		}
	}
	if name == "" {
		return cfg.Slug
	}
	return fmt.Sprintf("%s %q", strings.TrimSuffix(cfg.Slug, "s"), name)
}

func writeFormError(w http.ResponseWriter, err error) {
	var formErr *FormError
	if errors.As(err, &formErr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"code":   "invalid_form",
			"fields": formErr.Fields,
		})
		return
	}
	writeDomainError(w, err)
}
