package handler

import (
	"net/http"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Autenticação
// ============================================================

type sessionResponse struct {
	Usuario   *domain.Usuario `json:"usuario"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
}

func loginHandler(auth *service.AuthPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/login")
		defer span.End()

		var req domain.Credentials
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		user, err := auth.Login(ctx, req.Email, req.Senha)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, sessionResponse{Usuario: user, ExpiresAt: auth.ExpiresAt()})
	}
}

func logoutHandler(auth *service.AuthPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/auth/logout")
		defer span.End()

		if err := auth.Logout(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// meHandler probes the stored token against the backend.
func meHandler(auth *service.AuthPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/auth/me")
		defer span.End()

		user, err := auth.Probe(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if user == nil {
			writeError(w, http.StatusUnauthorized, "Não autenticado")
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{Usuario: user, ExpiresAt: auth.ExpiresAt()})
	}
}
