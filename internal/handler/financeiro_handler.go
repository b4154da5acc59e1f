package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Financeiro
// ============================================================

// financeiroHandler applies mes, empresaId and status from the query and
// loads. Absent parameters keep the active query.
func financeiroHandler(p *service.FinanceiroPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/financeiro")
		defer span.End()

		q := p.Query()
		params := r.URL.Query()
		if v := params.Get("mes"); v != "" {
			q.MesReferencia = v
		}
		if params.Has("empresaId") {
			q.EmpresaID = params.Get("empresaId")
		}
		if params.Has("status") {
			q.Status = service.StatusFilter(params.Get("status"))
		}

		view, err := p.SetQuery(ctx, q)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		view.Items = nonNil(view.Items)
		writeJSON(w, http.StatusOK, view)
	}
}

type createLancamentoRequest struct {
	TicketID  string  `json:"ticketId"`
	Valor     float64 `json:"valor"`
	Descricao string  `json:"descricao"`
}

func createLancamentoHandler(p *service.FinanceiroPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/financeiro")
		defer span.End()

		var req createLancamentoRequest
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		// The available tickets come from the last load.
		if len(p.View().Disponiveis) == 0 {
			if _, err := p.Load(ctx); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		item, err := p.Create(ctx, req.TicketID, req.Valor, req.Descricao)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, item)
	}
}

func updateLancamentoHandler(p *service.FinanceiroPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PATCH /v1/financeiro/{id}")
		defer span.End()

		var req domain.FaturamentoUpdate
		if err := decodeJSON(r, &req); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		item, err := p.Update(ctx, chi.URLParam(r, "id"), req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func toggleFaturadoHandler(p *service.FinanceiroPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/financeiro/{id}/toggle")
		defer span.End()

		var req struct {
			NumeroNotaFiscal string `json:"numeroNotaFiscal"`
		}
		if r.ContentLength != 0 {
			if err := decodeJSON(r, &req); err != nil {
				handleServiceError(w, err, logger)
				return
			}
		}

		id := chi.URLParam(r, "id")
		item, err := p.ToggleFaturado(ctx, id, req.NumeroNotaFiscal)
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			// The line may belong to a query not loaded yet.
			if _, loadErr := p.Load(ctx); loadErr != nil {
				handleServiceError(w, loadErr, logger)
				return
			}
			item, err = p.ToggleFaturado(ctx, id, req.NumeroNotaFiscal)
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, item)
	}
}

func deleteLancamentoHandler(p *service.FinanceiroPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/financeiro/{id}")
		defer span.End()

		deleted, err := p.Delete(ctx, chi.URLParam(r, "id"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
	}
}

// exportHandler serves the active query as a download, format csv or json.
func exportHandler(p *service.FinanceiroPage, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/financeiro/export/{format}")
		defer span.End()

		var (
			exp *service.Export
			err error
		)
		switch format := chi.URLParam(r, "format"); format {
		case "csv":
			exp, err = p.ExportCSV(ctx)
		case "json":
			exp, err = p.ExportJSON(ctx)
		default:
			err = &domain.ErrValidation{Field: "format", Message: fmt.Sprintf("formato não suportado: %q", format)}
		}
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		w.Header().Set("Content-Type", exp.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
		w.WriteHeader(http.StatusOK)
		w.Write(exp.Data)
	}
}
