package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/handler"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func serveCommand(r *Runner) *Command {
	var port int
	return &Command{
		Name:    "serve",
		Summary: "Expõe as páginas do console como API HTTP local",
		Usage:   "helpdesk serve [--port N]",
		Flags: func() *pflag.FlagSet {
			fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
			fs.IntVar(&port, "port", 0, "porta HTTP (padrão: port da configuração)")
			return fs
		},
		Run: func(ctx context.Context, args []string) error {
			// No terminal prompter: dialogs are answered over /v1/ui/confirm.
			app, err := r.App(ctx)
			if err != nil {
				return err
			}
			if port == 0 {
				port = app.Config.Port
			}
			return serve(ctx, app, port)
		},
	}
}

func serve(ctx context.Context, app *App, port int) error {
	logger := app.Logger
	router := handler.NewRouter(&handler.Pages{
		Session:    app.Session,
		Auth:       app.Auth,
		Dashboard:  app.Dashboard,
		Tickets:    app.Tickets,
		Empresas:   app.Empresas,
		Contatos:   app.Contatos,
		Categorias: app.Categorias,
		Financeiro: app.Financeiro,
		Confirm:    app.Confirm,
		Toaster:    app.Toaster,
	}, app.Client, app.Metrics, logger)

	srv := &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// Deletes hold the response until the dialog is answered.
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("server shutting down...")
	// Unblock handlers waiting on the dialog.
	app.Confirm.Cancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
