package handler

import (
	"net/http"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// UI state
// ============================================================

type toastResponse struct {
	ui.Toast
	Role string `json:"role"`
	Live string `json:"ariaLive"`
}

func listToastsHandler(t *ui.Toaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		toasts := t.List()
		out := make([]toastResponse, len(toasts))
		for i, toast := range toasts {
			out[i] = toastResponse{Toast: toast, Role: toast.Role(), Live: toast.Live()}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func dismissToastHandler(t *ui.Toaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !t.Dismiss(chi.URLParam(r, "id")) {
			writeError(w, http.StatusNotFound, "toast not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type confirmState struct {
	Open    bool               `json:"open"`
	Dialog  *ui.ConfirmOptions `json:"dialog,omitempty"`
	Pending int                `json:"pending"`
}

// confirmStateHandler returns the dialog on screen, if any.
func confirmStateHandler(c *ui.Confirm) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, open := c.Current()
		state := confirmState{Open: open, Pending: c.Pending()}
		if open {
			state.Dialog = &opts
		}
		writeJSON(w, http.StatusOK, state)
	}
}

// resolveConfirmHandler answers the dialog on screen. Actions: confirm,
// cancel, escape, backdrop.
func resolveConfirmHandler(c *ui.Confirm, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Action string `json:"action"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var resolved bool
		switch req.Action {
		case "confirm":
			resolved = c.Confirm()
		case "cancel":
			resolved = c.Cancel()
		case "escape":
			resolved = c.Escape()
		case "backdrop":
			resolved = c.Backdrop()
		default:
			handleServiceError(w, &domain.ErrValidation{Field: "action", Message: "ação inválida"}, logger)
			return
		}
		if !resolved {
			writeError(w, http.StatusConflict, "no confirm dialog open")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
