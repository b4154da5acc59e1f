package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Pages bundles the controllers the console server exposes. Nil pages
// are not mounted.
type Pages struct {
	Session    *session.Session
	Auth       *service.AuthPage
	Dashboard  *service.DashboardPage
	Tickets    *service.TicketsPage
	Empresas   *service.EmpresasPage
	Contatos   *service.ContatosPage
	Categorias *service.CategoriasPage
	Financeiro *service.FinanceiroPage
	Confirm    *ui.Confirm
	Toaster    *ui.Toaster
}

// Pinger checks that the backend is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter creates the console HTTP router with all routes and middleware.
// Page routes return the JSON view models a thin renderer draws.
func NewRouter(pages *Pages, backend Pinger, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if pages == nil {
		pages = &Pages{}
	}
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(backend, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/metrics/client", clientMetricsHandler(metrics))

		// =============================================
		// Autenticação
		// =============================================
		r.Route("/auth", func(r chi.Router) {
			if pages.Auth == nil || pages.Session == nil {
				r.Handle("/*", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					writeError(w, http.StatusServiceUnavailable, "auth not configured")
				}))
				return
			}
			r.Post("/login", loginHandler(pages.Auth, logger))
			r.Post("/logout", logoutHandler(pages.Auth, logger))
			r.Get("/me", meHandler(pages.Auth, logger))
		})

		// =============================================
		// UI state (toasts, confirm dialog)
		// =============================================
		if pages.Toaster != nil {
			r.Get("/ui/toasts", listToastsHandler(pages.Toaster))
			r.Delete("/ui/toasts/{id}", dismissToastHandler(pages.Toaster))
		}
		if pages.Confirm != nil {
			r.Get("/ui/confirm", confirmStateHandler(pages.Confirm))
			r.Post("/ui/confirm", resolveConfirmHandler(pages.Confirm, logger))
		}

		if pages.Session == nil {
			return
		}

		// Everything below needs a logged-in operator.
		r.Group(func(r chi.Router) {
			r.Use(RequireSession(pages.Session, logger))

			// =============================================
			// Dashboard
			// =============================================
			if p := pages.Dashboard; p != nil {
				r.Get("/dashboard", dashboardHandler(p, logger))
				r.Delete("/dashboard/tickets/{id}", dashboardDeleteTicketHandler(p, logger))
			}

			// =============================================
			// Tickets
			// =============================================
			if p := pages.Tickets; p != nil {
				r.Get("/tickets", listTicketsHandler(p, logger))
				r.Post("/tickets", createTicketHandler(p, logger))
				r.Get("/tickets/search", searchTicketsHandler(p, logger))
				r.Get("/tickets/{id}", ticketDetailHandler(p, logger))
				r.Patch("/tickets/{id}", updateTicketHandler(p, logger))
				r.Post("/tickets/{id}/close", closeTicketHandler(p, logger))
				r.Post("/tickets/{id}/status", moveTicketHandler(p, logger))
				r.Delete("/tickets/{id}", deleteTicketHandler(p, logger))
				r.Get("/empresas/{id}/contatos", contatosDaEmpresaHandler(p, logger))
			}

			// =============================================
			// Cadastros
			// =============================================
			if p := pages.Empresas; p != nil {
				r.Get("/empresas", listEmpresasHandler(p, logger))
				r.Post("/empresas", createEmpresaHandler(p, logger))
				r.Patch("/empresas/{id}", updateEmpresaHandler(p, logger))
				r.Delete("/empresas/{id}", deleteEmpresaHandler(p, logger))
			}
			if p := pages.Contatos; p != nil {
				r.Get("/contatos", listContatosHandler(p, logger))
				r.Post("/contatos", createContatoHandler(p, logger))
				r.Patch("/contatos/{id}", updateContatoHandler(p, logger))
				r.Delete("/contatos/{id}", deleteContatoHandler(p, logger))
			}
			if p := pages.Categorias; p != nil {
				r.Get("/categorias", listCategoriasHandler(p, logger))
				r.Post("/categorias", createCategoriaHandler(p, logger))
				r.Patch("/categorias/{id}", updateCategoriaHandler(p, logger))
				r.Delete("/categorias/{id}", deleteCategoriaHandler(p, logger))
			}

			// =============================================
			// Financeiro
			// =============================================
			if p := pages.Financeiro; p != nil {
				r.Get("/financeiro", financeiroHandler(p, logger))
				r.Post("/financeiro", createLancamentoHandler(p, logger))
				r.Patch("/financeiro/{id}", updateLancamentoHandler(p, logger))
				r.Post("/financeiro/{id}/toggle", toggleFaturadoHandler(p, logger))
				r.Delete("/financeiro/{id}", deleteLancamentoHandler(p, logger))
				r.Get("/financeiro/export/{format}", exportHandler(p, logger))
			}
		})
	})

	return r
}

// ============================================================
// Métricas & Health
// ============================================================

func healthzHandler(backend Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "helpdesk-console", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		if backend != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()

			start := time.Now()
			err := backend.Ping(ctx)
			latency := time.Since(start).Milliseconds()
			status := "healthy"
			if err != nil {
				logger.Warn("healthz: backend ping failed", zap.Error(err))
				status = "degraded"
			}
			services = append(services, domain.ServiceHealth{
				Name: "helpdesk-api", Status: status, LatencyMs: latency, LastChecked: now,
			})
		}

		overallStatus := "healthy"
		for _, s := range services {
			if s.Status == "unhealthy" {
				overallStatus = "unhealthy"
				break
			}
			if s.Status == "degraded" {
				overallStatus = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status:   overallStatus,
			Services: services,
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func clientMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.Snapshot())
	}
}
