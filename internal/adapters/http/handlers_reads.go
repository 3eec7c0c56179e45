package http

import (
	"errors"
	"net/http"

	"github.com/viralforge/mesh/services/core-platform/M98-account-service/internal/domain"
)

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			logHTTPOperationError(r.Context(), "readyz", http.StatusServiceUnavailable, "NOT_READY", "dependency unavailable", err)
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "dependency unavailable")
			return
		}
	}
	writeMessage(w, http.StatusOK, "ready")
}

// currentUser answers with null data for anonymous callers.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Sessions().CurrentUser(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "current_user", err)
		return
	}
	if user == nil {
		writeSuccess(w, http.StatusOK, nil)
		return
	}
	writeSuccess(w, http.StatusOK, user.Public())
}

func (h *Handler) team(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.TeamForUser(r.Context(), userFromContext(r.Context()))
	if errors.Is(err, domain.ErrNotInTeam) {
		writeSuccess(w, http.StatusOK, nil)
		return
	}
	if err != nil {
		writeMappedError(r.Context(), w, "get_team", err)
		return
	}
	writeSuccess(w, http.StatusOK, view)
}

func (h *Handler) activity(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.ListActivity(r.Context(), userFromContext(r.Context()))
	if err != nil {
		writeMappedError(r.Context(), w, "list_activity", err)
		return
	}
	writeSuccess(w, http.StatusOK, logs)
}

func (h *Handler) listKeys(kind domain.CredentialKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		keys, err := h.service.ListKeys(r.Context(), userFromContext(r.Context()), kind)
		if err != nil {
			writeMappedError(r.Context(), w, "list_keys", err)
			return
		}
		writeSuccess(w, http.StatusOK, keys)
	}
}
