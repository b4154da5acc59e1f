package apiclient

import (
	"context"
	"net/http"
	"strings"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

type usuarioWire struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Nome        string   `json:"nome"`
	Role        string   `json:"role"`
	Ativo       bool     `json:"ativo"`
	DataCriacao wireTime `json:"data_criacao"`
}

type loginPayload struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

type tokenWire struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	Usuario     usuarioWire `json:"usuario"`
}

func (w usuarioWire) toDomain() *domain.Usuario {
	return &domain.Usuario{
		ID:        w.ID,
		Email:     w.Email,
		Nome:      w.Nome,
		Role:      w.Role,
		Ativo:     w.Ativo,
		CreatedAt: w.DataCriacao.Time,
	}
}

// Auth logs the operator in and out.
type Auth struct {
	c *Client
}

// NewAuth creates the auth adapter.
func NewAuth(c *Client) *Auth {
	return &Auth{c: c}
}

// Login exchanges credentials for a token and stores token and user in
// the session. Bad credentials come back as *domain.ErrUnauthorized
// without a forced logout.
func (a *Auth) Login(ctx context.Context, email, senha string) (*domain.Usuario, error) {
	req := Request{
		Method:           http.MethodPost,
		Path:             "/auth/login",
		Body:             loginPayload{Email: strings.TrimSpace(email), Senha: senha},
		SkipAuthRedirect: true,
	}
	var w tokenWire
	req.Out = &w
	if err := a.c.Do(ctx, req); err != nil {
		return nil, err
	}
	if w.AccessToken == "" {
		return nil, &domain.ErrUnauthorized{Message: "Resposta de login sem token"}
	}

	user := w.Usuario.toDomain()
	// A persistence failure is logged by the session; the login still
	// holds for this run.
	_ = a.c.session.Set(ctx, w.AccessToken, user)
	return user, nil
}

// Me fetches the user behind the stored token.
func (a *Auth) Me(ctx context.Context) (*domain.Usuario, error) {
	var w usuarioWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/auth/me", Out: &w}); err != nil {
		return nil, err
	}
	return w.toDomain(), nil
}

// Logout drops the local session; there is no backend logout route.
func (a *Auth) Logout(ctx context.Context) error {
	return a.c.session.Clear(ctx)
}
