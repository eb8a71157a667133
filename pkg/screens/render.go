package screens

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/strideworks/erp-core/internal/db"
	"github.com/strideworks/erp-core/pkg/apply"
	"github.com/strideworks/erp-core/pkg/approval"
	"github.com/strideworks/erp-core/pkg/bom"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("encode response", "error", err)
	}
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}

// writeDomainError maps an error from the gateway or the write path onto an
// HTTP status. Domain validation failures surface verbatim; anything
// unrecognized is a 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var applyErr *apply.ValidationError
	if errors.As(err, &applyErr) {
		writeError(w, http.StatusUnprocessableEntity, applyErr.Code, applyErr.Message)
		return
	}
	var bomErr *bom.ValidationError
	if errors.As(err, &bomErr) {
		writeError(w, http.StatusUnprocessableEntity, bomErr.Code, bomErr.Message)
		return
	}
	switch {
	case db.IsForeignKeyViolation(err):
		writeError(w, http.StatusUnprocessableEntity, "reference_violation", "A referenced record does not exist or is still in use")
	case db.IsNotNullViolation(err):
		writeError(w, http.StatusUnprocessableEntity, "missing_field", "A required field is missing")
	case db.IsInvalidInput(err):
		writeError(w, http.StatusBadRequest, "invalid_value", "A submitted value has the wrong format")
	case errors.Is(err, approval.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission_denied", "You do not have permission to perform this action")
	case errors.Is(err, approval.ErrNotPending):
		writeError(w, http.StatusConflict, "not_pending", "The approval request has already been decided")
	case errors.Is(err, approval.ErrRequestNotFound):
		writeError(w, http.StatusNotFound, "not_found", "Approval request not found")
	case errors.Is(err, approval.ErrEditDeleteNotAllowed):
		writeError(w, http.StatusBadRequest, "approval_edit_delete_not_allowed", "Delete requests cannot be edited")
	default:
		slog.Error("screen mutation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal", "Internal server error")
	}
}

// seeOther issues the post-mutation redirect back to the list view.
func seeOther(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
