package handler

import (
	"context"
	"net/http"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"

	"go.uber.org/zap"
)

type contextKey string

const usuarioKey contextKey = "usuario"

// RequireSession rejects console requests while no operator is logged in
// and injects the session user into the context.
func RequireSession(sess *session.Session, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !sess.Authenticated() {
				logger.Warn("console: no session",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Sessão expirada, faça login novamente")
				return
			}

			ctx := r.Context()
			if u := sess.User(); u != nil {
				ctx = context.WithValue(ctx, usuarioKey, u)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UsuarioFromContext returns the logged-in operator, nil when unknown.
func UsuarioFromContext(ctx context.Context) *domain.Usuario {
	u, _ := ctx.Value(usuarioKey).(*domain.Usuario)
	return u
}

// operatorField names the operator behind a write in the log.
func operatorField(ctx context.Context) zap.Field {
	if u := UsuarioFromContext(ctx); u != nil {
		return zap.String("operator", u.Email)
	}
	return zap.Skip()
}
