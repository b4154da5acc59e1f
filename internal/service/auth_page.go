package service

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"

	"go.uber.org/zap"
)

const pageLogin = "login"

// MsgCredenciaisInvalidas is the inline error of a rejected login.
const MsgCredenciaisInvalidas = "Email ou senha inválidos"

// AuthPage runs the login form and the session probe.
type AuthPage struct {
	auth    port.Authenticator
	session *session.Session
	metrics *observability.Metrics
	logger  *zap.Logger
}

func NewAuthPage(auth port.Authenticator, sess *session.Session, metrics *observability.Metrics, logger *zap.Logger) *AuthPage {
	return &AuthPage{auth: auth, session: sess, metrics: metrics, logger: logger}
}

// Login checks the form and logs in. Rejected credentials come back as
// *domain.ErrUnauthorized with MsgCredenciaisInvalidas.
func (p *AuthPage) Login(ctx context.Context, email, senha string) (*domain.Usuario, error) {
	ctx, span := tracer.Start(ctx, "AuthPage.Login")
	defer span.End()

	email = strings.TrimSpace(email)
	if err := required("email", email, "Email é obrigatório"); err != nil {
		return nil, err
	}
	if err := required("senha", senha, "Senha é obrigatória"); err != nil {
		return nil, err
	}

	user, err := p.auth.Login(ctx, email, senha)
	if err != nil {
		p.metrics.IncrPageLoad(pageLogin, outcomeError)
		var unauthorized *domain.ErrUnauthorized
		var apiErr *domain.ErrAPI
		if errors.As(err, &unauthorized) || (errors.As(err, &apiErr) && apiErr.Status == http.StatusUnprocessableEntity) {
			return nil, &domain.ErrUnauthorized{Message: MsgCredenciaisInvalidas}
		}
		return nil, err
	}

	p.metrics.IncrPageLoad(pageLogin, outcomeOK)
	p.logger.Info("operator logged in", zap.String("email", user.Email))
	return user, nil
}

// Probe checks the stored token on startup. It returns nil, nil when no
// session is held; any failure clears the session.
func (p *AuthPage) Probe(ctx context.Context) (*domain.Usuario, error) {
	if !p.session.Authenticated() {
		return nil, nil
	}

	user, err := p.auth.Me(ctx)
	if err != nil {
		p.logger.Info("stored session rejected", zap.Error(err))
		_ = p.auth.Logout(ctx)
		return nil, err
	}
	// A persistence failure is logged by the session.
	_ = p.session.SetUser(ctx, user)
	return user, nil
}

// Current returns the logged-in user, nil when logged out.
func (p *AuthPage) Current() *domain.Usuario {
	return p.session.User()
}

// ExpiresAt returns when the session token expires, nil when unknown.
func (p *AuthPage) ExpiresAt() *time.Time {
	exp, ok := p.session.ExpiresAt()
	if !ok {
		return nil
	}
	return &exp
}

func (p *AuthPage) Logout(ctx context.Context) error {
	return p.auth.Logout(ctx)
}
