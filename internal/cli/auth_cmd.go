package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"

	"github.com/spf13/pflag"
)

func loginCommand(r *Runner) *Command {
	var email string
	return &Command{
		Name:    "login",
		Summary: "Entra com email e senha",
		Usage:   "helpdesk login [--email EMAIL]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("login", pflag.ContinueOnError)
			fs.StringVar(&email, "email", "", "email do operador (pergunta se vazio)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			app, err := r.App(ctx)
			if err != nil {
				return err
			}

			if strings.TrimSpace(email) == "" {
				fmt.Fprint(r.errOut, "Email: ")
				if email, err = r.in.readLine(); err != nil {
					return fmt.Errorf("read email: %w", err)
				}
			}
			senha, err := readSecret(r.in, r.errOut, "Senha: ")
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}

			user, err := app.Auth.Login(ctx, email, senha)
			if err != nil {
				return err
			}
			fmt.Fprint(r.out, "Logado como ")
			renderUsuario(r.out, user, app.Auth.ExpiresAt())
			return nil
		},
	}
}

func logoutCommand(r *Runner) *Command {
	return &Command{
		Name:    "logout",
		Summary: "Encerra a sessão local",
		Run: func(ctx context.Context, args []string) error {
			app, err := r.App(ctx)
			if err != nil {
				return err
			}
			if err := app.Auth.Logout(ctx); err != nil {
				return err
			}
			fmt.Fprintln(r.out, "Sessão encerrada")
			return nil
		},
	}
}

var errNotLoggedIn = &domain.ErrUnauthorized{Message: "Não autenticado. Use: helpdesk login"}

func meCommand(r *Runner) *Command {
	return &Command{
		Name:    "me",
		Summary: "Mostra o operador da sessão atual",
		Run: func(ctx context.Context, args []string) error {
			app, err := r.App(ctx)
			if err != nil {
				return err
			}
			user, err := app.Auth.Probe(ctx)
			if err != nil {
				return err
			}
			if user == nil {
				return errNotLoggedIn
			}
			renderUsuario(r.out, user, app.Auth.ExpiresAt())
			return nil
		},
	}
}

// requireSession fails early when no token is held, before any backend
// call would be rejected.
func requireSession(app *App) error {
	if !app.Session.Authenticated() {
		return errNotLoggedIn
	}
	return nil
}

// authed returns the App for a command that needs a logged-in operator.
func (r *Runner) authed(ctx context.Context) (*App, error) {
	app, err := r.interactive(ctx)
	if err != nil {
		return nil, err
	}
	if err := requireSession(app); err != nil {
		return nil, err
	}
	return app, nil
}
