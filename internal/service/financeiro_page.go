package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pageFinanceiro = "financeiro"

// StatusFilter narrows billing lines by the invoiced flag.
type StatusFilter string

const (
	StatusTodos    StatusFilter = "todos"
	StatusFaturado StatusFilter = "faturado"
	StatusPendente StatusFilter = "pendente"
)

// ParseStatusFilter accepts todos, faturado and pendente; empty is todos.
func ParseStatusFilter(s string) (StatusFilter, error) {
	switch StatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusTodos:
		return StatusTodos, nil
	case StatusFaturado:
		return StatusFaturado, nil
	case StatusPendente:
		return StatusPendente, nil
	}
	return "", &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("filtro inválido: %q", s)}
}

func (s StatusFilter) faturado() *bool {
	switch s {
	case StatusFaturado:
		v := true
		return &v
	case StatusPendente:
		v := false
		return &v
	}
	return nil
}

// FinanceiroQuery selects what the billing page shows.
type FinanceiroQuery struct {
	MesReferencia string       `json:"mesReferencia"`
	EmpresaID     string       `json:"empresaId,omitempty"`
	Status        StatusFilter `json:"status"`
}

func (q FinanceiroQuery) filter(withStatus bool) domain.FaturamentoFilter {
	f := domain.FaturamentoFilter{MesReferencia: q.MesReferencia, EmpresaID: q.EmpresaID}
	if withStatus {
		f.Faturado = q.Status.faturado()
	}
	return f
}

// FinanceiroView is what the billing page renders.
type FinanceiroView struct {
	Query        FinanceiroQuery          `json:"query"`
	Items        []domain.FaturamentoItem `json:"items"`
	Resumo       domain.FaturamentoResumo `json:"resumo"`
	Empresas     []domain.Empresa         `json:"empresas"`
	Disponiveis  []domain.Ticket          `json:"disponiveis"`
	EmpresaNomes map[string]string        `json:"empresaNomes"`
}

// FinanceiroPage manages the billing lines of one reference month.
type FinanceiroPage struct {
	faturamento port.FaturamentoStore
	empresas    port.EmpresaStore
	tickets     port.TicketStore
	confirm     Confirmer
	toaster     Notifier
	metrics     *observability.Metrics
	logger      *zap.Logger

	guard loadGuard
	mu    sync.RWMutex
	query FinanceiroQuery
	view  FinanceiroView
}

// NewFinanceiroPage starts on the month of now.
func NewFinanceiroPage(
	faturamento port.FaturamentoStore,
	empresas port.EmpresaStore,
	tickets port.TicketStore,
	confirm Confirmer,
	toaster Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	now time.Time,
) *FinanceiroPage {
	q := FinanceiroQuery{MesReferencia: domain.MesDe(now), Status: StatusTodos}
	return &FinanceiroPage{
		faturamento: faturamento,
		empresas:    empresas,
		tickets:     tickets,
		confirm:     confirm,
		toaster:     toaster,
		metrics:     metrics,
		logger:      logger,
		query:       q,
		view:        FinanceiroView{Query: q, EmpresaNomes: map[string]string{}},
	}
}

// Query returns the active query.
func (p *FinanceiroPage) Query() FinanceiroQuery {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.query
}

// SetQuery validates q and loads it. An empty month keeps the current one.
func (p *FinanceiroPage) SetQuery(ctx context.Context, q FinanceiroQuery) (*FinanceiroView, error) {
	if q.MesReferencia == "" {
		q.MesReferencia = p.Query().MesReferencia
	}
	if !domain.ValidMesReferencia(q.MesReferencia) {
		return nil, &domain.ErrValidation{Field: "mesReferencia", Message: "Mês de referência deve estar no formato AAAA-MM"}
	}
	status, err := ParseStatusFilter(string(q.Status))
	if err != nil {
		return nil, err
	}
	q.Status = status
	q.EmpresaID = strings.TrimSpace(q.EmpresaID)

	p.mu.Lock()
	p.query = q
	p.mu.Unlock()
	return p.Load(ctx)
}

// Load fetches companies, tickets, billing lines and the period totals
// together. Totals and available tickets ignore the status filter.
func (p *FinanceiroPage) Load(ctx context.Context) (*FinanceiroView, error) {
	ctx, span := tracer.Start(ctx, "FinanceiroPage.Load")
	defer span.End()

	q := p.Query()
	span.SetAttributes(attribute.String("faturamento.mes", q.MesReferencia))
	ctx, gen := p.guard.begin(ctx)

	var (
		empresas []domain.Empresa
		tickets  []domain.Ticket
		items    []domain.FaturamentoItem
		billed   []domain.FaturamentoItem
		resumo   *domain.FaturamentoResumo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		empresas, err = p.empresas.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = p.tickets.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		items, err = p.faturamento.List(gctx, q.filter(true))
		return err
	})
	if q.Status != StatusTodos {
		// A pending or invoiced line both make the ticket unavailable.
		g.Go(func() error {
			var err error
			billed, err = p.faturamento.List(gctx, q.filter(false))
			return err
		})
	}
	g.Go(func() error {
		var err error
		resumo, err = p.faturamento.Resumo(gctx, q.filter(false))
		return err
	})
	err := g.Wait()
	if q.Status == StatusTodos {
		billed = items
	}

	err = finishLoad(&p.guard, gen, pageFinanceiro, err, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.view = FinanceiroView{
			Query:        q,
			Items:        items,
			Resumo:       *resumo,
			Empresas:     empresas,
			Disponiveis:  TicketsDisponiveis(tickets, billed),
			EmpresaNomes: nameMap(empresas, func(e domain.Empresa) (string, string) { return e.ID, e.Nome }),
		}
	}, p.metrics, p.logger)
	if err != nil {
		return nil, err
	}
	return p.View(), nil
}

// View returns the last successful load.
func (p *FinanceiroPage) View() *FinanceiroView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v := p.view
	return &v
}

// TicketsDisponiveis returns the closed tickets that have no billing line
// among items, in their original order.
func TicketsDisponiveis(tickets []domain.Ticket, items []domain.FaturamentoItem) []domain.Ticket {
	billed := make(map[string]struct{}, len(items))
	for _, it := range items {
		billed[it.TicketID] = struct{}{}
	}
	out := make([]domain.Ticket, 0)
	for _, t := range tickets {
		if t.Status != domain.StatusFechado {
			continue
		}
		if _, ok := billed[t.ID]; ok {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Create bills an available ticket for the active month.
func (p *FinanceiroPage) Create(ctx context.Context, ticketID string, valor float64, descricao string) (*domain.FaturamentoItem, error) {
	if valor <= 0 {
		return nil, &domain.ErrValidation{Field: "valor", Message: "Valor deve ser maior que zero"}
	}

	p.mu.RLock()
	var ticket *domain.Ticket
	for _, t := range p.view.Disponiveis {
		if t.ID == ticketID {
			t := t
			ticket = &t
			break
		}
	}
	mes := p.view.Query.MesReferencia
	p.mu.RUnlock()

	if ticket == nil {
		return nil, &domain.ErrValidation{Field: "ticketId", Message: "Ticket não disponível para faturamento"}
	}

	created, err := p.faturamento.Create(ctx, domain.FaturamentoCreateInput{
		TicketID:      ticket.ID,
		EmpresaID:     ticket.EmpresaID,
		Valor:         valor,
		Descricao:     strings.TrimSpace(descricao),
		MesReferencia: mes,
	})
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao criar lançamento financeiro")
	}
	toast(p.toaster, "Lançamento criado")
	p.reload(ctx)
	return created, nil
}

// Update edits value, description or invoice number of a line.
func (p *FinanceiroPage) Update(ctx context.Context, id string, u domain.FaturamentoUpdate) (*domain.FaturamentoItem, error) {
	if u.Valor != nil && *u.Valor <= 0 {
		return nil, &domain.ErrValidation{Field: "valor", Message: "Valor deve ser maior que zero"}
	}
	updated, err := p.faturamento.Update(ctx, id, u)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao atualizar lançamento")
	}
	toast(p.toaster, "Lançamento atualizado")
	p.reload(ctx)
	return updated, nil
}

// ToggleFaturado flips the invoiced flag of a loaded line. An empty
// numeroNF keeps the line's current invoice number.
func (p *FinanceiroPage) ToggleFaturado(ctx context.Context, id, numeroNF string) (*domain.FaturamentoItem, error) {
	item, err := p.item(id)
	if err != nil {
		return nil, err
	}
	nf := strings.TrimSpace(numeroNF)
	if nf == "" {
		nf = item.NumeroNotaFiscal
	}

	updated, err := p.faturamento.UpdateStatus(ctx, id, !item.Faturado, nf)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao atualizar status de faturamento")
	}
	if updated.Faturado {
		toast(p.toaster, "Marcado como faturado")
	} else {
		toast(p.toaster, "Marcado como pendente")
	}
	p.reload(ctx)
	return updated, nil
}

// Delete asks for confirmation and deletes a line.
func (p *FinanceiroPage) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := p.confirm.Show(ctx, ui.ConfirmOptions{
		Title:       "Deletar Lançamento",
		Message:     "Tem certeza que deseja deletar este lançamento financeiro?",
		ConfirmText: "Deletar",
		Dangerous:   true,
	})
	if err != nil || !ok {
		return false, err
	}
	if err := p.faturamento.Delete(ctx, id); err != nil {
		return false, reportWrite(p.toaster, err, "Erro ao deletar lançamento")
	}
	toast(p.toaster, "Lançamento deletado")
	p.reload(ctx)
	return true, nil
}

// Export carries an export file.
type Export struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportCSV exports the active query as CSV.
func (p *FinanceiroPage) ExportCSV(ctx context.Context) (*Export, error) {
	q := p.Query()
	data, _, err := p.faturamento.ExportCSV(ctx, q.filter(true))
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao exportar CSV")
	}
	return &Export{
		Filename:    domain.ExportFilename(q.MesReferencia, "csv"),
		ContentType: "text/csv",
		Data:        data,
	}, nil
}

// ExportJSON exports the active query as indented JSON.
func (p *FinanceiroPage) ExportJSON(ctx context.Context) (*Export, error) {
	q := p.Query()
	exp, err := p.faturamento.ExportJSON(ctx, q.filter(true))
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao exportar JSON")
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return &Export{
		Filename:    domain.ExportFilename(q.MesReferencia, "json"),
		ContentType: "application/json",
		Data:        data,
	}, nil
}

func (p *FinanceiroPage) item(id string) (domain.FaturamentoItem, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, it := range p.view.Items {
		if it.ID == id {
			return it, nil
		}
	}
	return domain.FaturamentoItem{}, &domain.ErrNotFound{Resource: "faturamento", ID: id}
}

func (p *FinanceiroPage) reload(ctx context.Context) {
	if _, err := p.Load(ctx); reloadFailed(err) {
		p.logger.Warn("financeiro reload after write failed", zap.Error(err))
	}
}

func (p *FinanceiroPage) Close() {
	p.guard.stop()
}
