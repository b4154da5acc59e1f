package service_test

import (
	"context"
	"testing"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"

	"go.uber.org/zap"
)

func TestAuthPage_ProbeWithoutSession(t *testing.T) {
	sess := session.New(nil, zap.NewNop())
	auth := &mockAuth{meErr: &domain.ErrUnauthorized{}}
	page := service.NewAuthPage(auth, sess, observability.NewMetrics(), zap.NewNop())

	user, err := page.Probe(context.Background())
	if user != nil || err != nil {
		t.Fatalf("Probe = %v, %v; want nil, nil", user, err)
	}
	if auth.logoutCall != 0 {
		t.Error("logout called without a session")
	}
}

func TestAuthPage_ProbeFailureClearsSession(t *testing.T) {
	ctx := context.Background()
	sess := session.New(nil, zap.NewNop())
	if err := sess.Set(ctx, "stale-token", &domain.Usuario{Email: "ops@example.com"}); err != nil {
		t.Fatalf("Set: %v", err)
	}

	for _, meErr := range []error{
		&domain.ErrUnauthorized{},
		&domain.ErrNetwork{Attempts: 3},
	} {
		if !sess.Authenticated() {
			_ = sess.Set(ctx, "stale-token", nil)
		}
		auth := &mockAuth{meErr: meErr, sess: sess}
		page := service.NewAuthPage(auth, sess, observability.NewMetrics(), zap.NewNop())

		if _, err := page.Probe(ctx); err == nil {
			t.Fatalf("Probe with %T: expected error", meErr)
		}
		if sess.Authenticated() || sess.User() != nil {
			t.Errorf("session kept after %T", meErr)
		}
	}
}

func TestAuthPage_ProbeRefreshesUser(t *testing.T) {
	ctx := context.Background()
	sess := session.New(nil, zap.NewNop())
	_ = sess.Set(ctx, "token", &domain.Usuario{Nome: "antigo"})

	auth := &mockAuth{user: &domain.Usuario{ID: "u1", Nome: "Operadora"}}
	page := service.NewAuthPage(auth, sess, observability.NewMetrics(), zap.NewNop())

	user, err := page.Probe(ctx)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if user.Nome != "Operadora" || page.Current().Nome != "Operadora" {
		t.Errorf("user not refreshed: %+v", page.Current())
	}
	if sess.Token() != "token" {
		t.Errorf("token changed: %q", sess.Token())
	}
}
