package handler

import (
	"net/http"
	"strings"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/pipeline"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Dashboard
// ============================================================

func dashboardHandler(p *service.DashboardPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/dashboard")
		defer span.End()

		view, err := p.Load(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if tab := r.URL.Query().Get("tab"); tab != "" {
			status, err := domain.ParseTicketStatus(tab)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			if view, err = p.SetTab(status); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}
		writeJSON(w, http.StatusOK, view)
	}
}

func dashboardDeleteTicketHandler(p *service.DashboardPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/dashboard/tickets/{id}")
		defer span.End()

		deleted, err := p.DeleteTicket(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}

// ============================================================
// Tickets
// ============================================================

// listTicketsHandler loads the tickets and applies tab, filters, page
// size and page from the query, in pipeline order.
func listTicketsHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/tickets")
		defer span.End()

		if _, err := p.Load(ctx); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		q := r.URL.Query()
		if tab := q.Get("tab"); tab != "" {
			status, err := domain.ParseTicketStatus(tab)
			if err != nil {
				handleServiceError(w, err, logger)
				return
			}
			if _, err := p.SetTab(status); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		filters := pipeline.Filters{
			EmpresaID:   strings.TrimSpace(q.Get("empresaId")),
			Descricao:   q.Get("descricao"),
			CategoriaID: strings.TrimSpace(q.Get("categoriaId")),
			DataInicio:  strings.TrimSpace(q.Get("dataInicio")),
			DataFim:     strings.TrimSpace(q.Get("dataFim")),
		}
		if _, err := p.SetFilters(filters); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		if size := queryInt(r, "pageSize"); size != 0 {
			if _, err := p.SetPageSize(size); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		view := p.View()
		if page := queryInt(r, "page"); page != 0 {
			view = p.SetPage(page)
		}
		span.SetAttributes(attribute.Int("tickets.total", view.Page.TotalItems))
		writeJSON(w, http.StatusOK, view)
	}
}

func createTicketHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/tickets")
		defer span.End()

		var req domain.TicketCreateInput
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ticket, err := p.Create(ctx, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, ticket)
	}
}

// updateTicketHandler edits the ticket in a modal of its own. Only fields
// that differ from the loaded ticket reach the backend.
func updateTicketHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/tickets/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		var req domain.TicketUpdate
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ticket, err := p.EditTicket(ctx, id, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		logger.Info("ticket updated", zap.String("ticket_id", id), operatorField(ctx))
		writeJSON(w, http.StatusOK, ticket)
	}
}

func ticketDetailHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/tickets/{id}")
		defer span.End()

		detail, err := p.Detail(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, detail)
	}
}

// searchTicketsHandler queries the backend by company and status,
// skipping the page pipeline.
func searchTicketsHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/tickets/search")
		defer span.End()

		q := r.URL.Query()
		var status domain.TicketStatus
		if raw := q.Get("status"); raw != "" {
			var err error
			if status, err = domain.ParseTicketStatus(raw); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		tickets, err := p.Search(ctx, q.Get("empresaId"), status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if tickets == nil {
			tickets = []domain.Ticket{}
		}
		span.SetAttributes(attribute.Int("tickets.total", len(tickets)))
		writeJSON(w, http.StatusOK, tickets)
	}
}

type closeTicketRequest struct {
	SolucaoDescricao string  `json:"solucaoDescricao"`
	TempoGastoHoras  float64 `json:"tempoGastoHoras"`
}

func closeTicketHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/tickets/{id}/close")
		defer span.End()

		var req closeTicketRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ticket, err := p.CloseTicket(ctx, chi.URLParam(r, "id"), req.SolucaoDescricao, req.TempoGastoHoras)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	}
}

func moveTicketHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/tickets/{id}/status")
		defer span.End()

		var req struct {
			Status string `json:"status"`
		}
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		status, err := domain.ParseTicketStatus(req.Status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		ticket, err := p.MoveTicket(ctx, chi.URLParam(r, "id"), status)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, ticket)
	}
}

// deleteTicketHandler blocks until the operator answers the confirm
// dialog (GET/POST /v1/ui/confirm) or the request goes away.
func deleteTicketHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/tickets/{id}")
		defer span.End()

		id := chi.URLParam(r, "id")
		deleted, err := p.DeleteTicket(ctx, id)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if deleted {
			logger.Info("ticket deleted", zap.String("ticket_id", id), operatorField(ctx))
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}

func contatosDaEmpresaHandler(p *service.TicketsPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/empresas/{id}/contatos")
		defer span.End()

		contatos, err := p.ContatosDaEmpresa(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if contatos == nil {
			contatos = []domain.Contato{}
		}
		writeJSON(w, http.StatusOK, contatos)
	}
}
