package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/config"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/apiclient"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/resilience"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.uber.org/zap"
)

// App is the wired console: session, backend client and page
// controllers sharing one confirm dialog and one toaster.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Metrics *observability.Metrics
	Session *session.Session
	Client  *apiclient.Client
	Confirm *ui.Confirm
	Toaster *ui.Toaster

	Auth       *service.AuthPage
	Dashboard  *service.DashboardPage
	Tickets    *service.TicketsPage
	Empresas   *service.EmpresasPage
	Contatos   *service.ContatosPage
	Categorias *service.CategoriasPage
	Financeiro *service.FinanceiroPage

	closers []func() error
}

// NewApp wires the console from cfg. errOut receives the forced-logout
// notice.
func NewApp(ctx context.Context, cfg *config.Config, logger *zap.Logger, errOut io.Writer) (*App, error) {
	a := &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewMetrics(),
		Confirm: ui.NewConfirm(),
		Toaster: ui.NewToaster(cfg.ToastTTL),
	}
	a.closers = append(a.closers, func() error { a.Toaster.Close(); return nil })

	store, err := a.sessionStore(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Session = session.New(store, logger)
	if err := a.Session.Restore(ctx); err != nil {
		logger.Warn("could not restore session", zap.Error(err))
	}

	nav := apiclient.NavigatorFunc(func(path string) {
		fmt.Fprintln(errOut, toastStyles[ui.ToastWarning].Render("Sessão expirada, faça login novamente (helpdesk login)"))
	})
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	a.Client = apiclient.NewClient(httpClient, cfg.BaseURL(), a.Session, nav, resilience.Config{
		MaxRetries:     cfg.MaxNetworkRetries,
		RetryDelay:     cfg.RetryDelay,
		MaxConcurrency: cfg.MaxConcurrency,
	}, a.Metrics, logger)

	a.wirePages(time.Now())
	return a, nil
}

func (a *App) sessionStore(ctx context.Context) (session.Store, error) {
	cfg := a.Config
	if cfg.SessionStore == "redis" {
		rs, err := session.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.Profile, cfg.SessionTTL)
		if err != nil {
			return nil, fmt.Errorf("connect session redis: %w", err)
		}
		a.closers = append(a.closers, rs.Close)
		a.Logger.Debug("session store: redis", zap.String("addr", cfg.RedisAddr), zap.String("profile", cfg.Profile))
		return rs, nil
	}

	fs, err := session.NewFileStore(cfg.SessionFile)
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("session store: file", zap.String("path", fs.Path()))
	return fs, nil
}

func (a *App) wirePages(now time.Time) {
	var (
		c           = a.Client
		auth        = apiclient.NewAuth(c)
		tickets     = apiclient.NewTickets(c)
		empresas    = apiclient.NewEmpresas(c)
		contatos    = apiclient.NewContatos(c)
		categorias  = apiclient.NewCategorias(c)
		faturamento = apiclient.NewFaturamento(c)
		dashboard   = apiclient.NewDashboard(c)
	)

	a.Auth = service.NewAuthPage(auth, a.Session, a.Metrics, a.Logger)
	a.Dashboard = service.NewDashboardPage(dashboard, tickets, empresas, a.Confirm, a.Toaster, a.Metrics, a.Logger, a.Config.DashboardRecent)
	a.Tickets = service.NewTicketsPage(tickets, empresas, categorias, contatos, a.Confirm, a.Toaster, a.Metrics, a.Logger, a.Config.PageSize)
	a.Empresas = service.NewEmpresasPage(empresas, a.Confirm, a.Toaster, a.Metrics, a.Logger)
	a.Contatos = service.NewContatosPage(contatos, empresas, a.Confirm, a.Toaster, a.Metrics, a.Logger)
	a.Categorias = service.NewCategoriasPage(categorias, a.Confirm, a.Toaster, a.Metrics, a.Logger)
	a.Financeiro = service.NewFinanceiroPage(faturamento, empresas, tickets, a.Confirm, a.Toaster, a.Metrics, a.Logger, now)

	a.closers = append(a.closers, func() error {
		a.Dashboard.Close()
		a.Tickets.Close()
		a.Empresas.Close()
		a.Contatos.Close()
		a.Categorias.Close()
		a.Financeiro.Close()
		return nil
	})
}

// Close releases the pages, the toaster and the session store.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", zap.Error(err))
		}
	}
	a.closers = nil
}

// ============================================================
// Toast printer
// ============================================================

// toastPrinter writes each toast once, when it first appears.
type toastPrinter struct {
	mu     sync.Mutex
	out    io.Writer
	seen   map[string]bool
	errors int
}

func newToastPrinter(out io.Writer) *toastPrinter {
	return &toastPrinter{out: out, seen: map[string]bool{}}
}

func (p *toastPrinter) print(toasts []ui.Toast) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range toasts {
		if p.seen[t.ID] {
			continue
		}
		p.seen[t.ID] = true
		if t.Type == ui.ToastError {
			p.errors++
		}
		renderToast(p.out, t)
	}
}

// printedError reports whether an error toast was shown.
func (p *toastPrinter) printedError() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.errors > 0
}
