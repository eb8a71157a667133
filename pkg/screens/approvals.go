package screens

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/strideworks/erp-core/pkg/activity"
	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/permissions"
)

const approvalsScope = "administration.approvals"

// Moderation serves the approval queue screen: list, preview, edit, decide,
// and the requester-facing cancel and notice endpoints.
type Moderation struct {
	db        *gorm.DB
	requests  *approval.RequestStore
	moderator *approval.Moderator
	resolver  approval.PermissionResolver
	notices   *approval.NoticeStore
	log       *activity.Store
}

// NewModeration creates the moderation handler set.
func NewModeration(db *gorm.DB, requests *approval.RequestStore, moderator *approval.Moderator, resolver approval.PermissionResolver, notices *approval.NoticeStore, log *activity.Store) *Moderation {
	return &Moderation{db: db, requests: requests, moderator: moderator, resolver: resolver, notices: notices, log: log}
}

// Mount attaches the moderation routes.
func (m *Moderation) Mount(r chi.Router, csrf *CSRF) {
	r.Route("/approvals", func(sub chi.Router) {
		sub.Get("/", m.list)
		sub.Get("/{id}/preview", m.preview)
		sub.Group(func(mut chi.Router) {
			mut.Use(csrf.Require)
			mut.Post("/{id}/edit", m.edit)
			mut.Post("/{id}/approve", m.approve)
			mut.Post("/{id}/reject", m.reject)
			mut.Post("/{id}/cancel", m.cancel)
		})
	})
	r.Get("/notices", m.drainNotices)
	r.Get("/activity", m.listActivity)
}

func (m *Moderation) allowed(r *http.Request, action permissions.Action) *permissions.AuthUser {
	user := permissions.UserFromContext(r.Context())
	if user == nil {
		return nil
	}
	if user.IsAdmin || m.resolver.HasPermission(user, approvalsScope, action) {
		return user
	}
	return nil
}

func (m *Moderation) list(w http.ResponseWriter, r *http.Request) {
	user := m.allowed(r, permissions.ActionView)
	if user == nil {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to view the approval queue")
		return
	}

	q := r.URL.Query()
	filter := approval.ListFilter{
		Status:     approval.RequestStatus(q.Get("status")),
		EntityType: approval.EntityType(q.Get("entity_type")),
	}
	if v := q.Get("branch_id"); v != "" {
		filter.BranchID, _ = strconv.ParseInt(v, 10, 64)
	}
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	pageToken, _ := strconv.ParseInt(q.Get("page_token"), 10, 64)

	records, nextToken, err := m.requests.List(filter, pageSize, pageToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":           records,
		"next_page_token": nextToken,
	})
}

// preview returns the stored new_value augmented with display names for the
// reference ids it carries.
func (m *Moderation) preview(w http.ResponseWriter, r *http.Request) {
	user := m.allowed(r, permissions.ActionView)
	if user == nil {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to view the approval queue")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request id")
		return
	}
	req, err := m.requests.Get(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if req == nil {
		writeError(w, http.StatusNotFound, "not_found", "Approval request not found")
		return
	}

	preview := make(map[string]any, len(req.NewValue))
	for k, v := range req.NewValue {
		preview[k] = v
	}
	m.augmentReferences(preview)

	writeJSON(w, http.StatusOK, map[string]any{
		"request":   req,
		"new_value": preview,
		"old_value": req.OldValue,
	})
}

// augmentReferences resolves known id fields to their display names so the
// moderator sees "account_group_id_label": "Assets" next to the raw id.
func (m *Moderation) augmentReferences(payload map[string]any) {
	for field, table := range refLookupTables {
		v, ok := payload[field]
		if !ok || v == nil {
			continue
		}
		id, ok := v.(float64)
		if !ok {
			continue
		}
		var names []string
		if err := m.db.Table(table).Where("id = ?", int64(id)).Limit(1).Pluck("name", &names).Error; err != nil {
			continue
		}
		if len(names) > 0 {
			payload[field+"_label"] = names[0]
		}
	}
}

func (m *Moderation) edit(w http.ResponseWriter, r *http.Request) {
	user := m.allowed(r, permissions.ActionEdit)
	if user == nil {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to edit approval requests")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request id")
		return
	}
	var edits map[string]any
	if err := json.NewDecoder(r.Body).Decode(&edits); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Malformed JSON body")
		return
	}
	changed, err := m.moderator.Edit(id, user.ID, edits)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"changed_fields": changed})
}

func (m *Moderation) approve(w http.ResponseWriter, r *http.Request) {
	user := m.allowed(r, permissions.ActionApprove)
	if user == nil {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to decide approval requests")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request id")
		return
	}
	note := r.PostFormValue("note")
	result, err := m.moderator.Approve(id, user.ID, note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"applied":   result.Applied,
		"entity_id": result.EntityID,
	})
}

func (m *Moderation) reject(w http.ResponseWriter, r *http.Request) {
	user := m.allowed(r, permissions.ActionApprove)
	if user == nil {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to decide approval requests")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request id")
		return
	}
	note := r.PostFormValue("note")
	if err := m.moderator.Reject(id, user.ID, note); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": approval.StatusRejected})
}

// cancel lets the requester withdraw their own pending request.
func (m *Moderation) cancel(w http.ResponseWriter, r *http.Request) {
	user := permissions.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request id")
		return
	}
	if err := m.requests.Cancel(id, user.ID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": approval.StatusCancelled})
}

// drainNotices returns and clears the caller's pending UI notices.
func (m *Moderation) drainNotices(w http.ResponseWriter, r *http.Request) {
	user := permissions.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}
	if m.notices == nil {
		writeJSON(w, http.StatusOK, map[string]any{"notices": []approval.Notice{}})
		return
	}
	notices, err := m.notices.Drain(r.Context(), user.ID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if notices == nil {
		notices = []approval.Notice{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"notices": notices})
}

// listActivity pages through the activity log for one entity.
func (m *Moderation) listActivity(w http.ResponseWriter, r *http.Request) {
	user := m.allowed(r, permissions.ActionView)
	if user == nil {
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to view the activity log")
		return
	}
	q := r.URL.Query()
	pageSize, _ := strconv.Atoi(q.Get("page_size"))
	pageToken, _ := strconv.ParseInt(q.Get("page_token"), 10, 64)
	records, nextToken, err := m.log.ListByEntity(q.Get("entity_type"), q.Get("entity_id"), pageSize, pageToken)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items":           records,
		"next_page_token": nextToken,
	})
}
