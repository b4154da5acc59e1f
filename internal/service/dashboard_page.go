package service

import (
	"context"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/pipeline"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pageDashboard = "dashboard"

// DefaultDashboardRecent is how many tickets a dashboard tab shows.
const DefaultDashboardRecent = 5

// DashboardView is what the dashboard renders.
type DashboardView struct {
	Stats        domain.DashboardStats `json:"stats"`
	Counts       pipeline.Counts       `json:"counts"`
	Tab          domain.TicketStatus   `json:"tab"`
	Recent       []domain.Ticket       `json:"recent"`
	EmpresaNomes map[string]string     `json:"empresaNomes"`
}

// DashboardPage shows the summary cards and the most recent tickets of
// one status tab.
type DashboardPage struct {
	dashboard port.DashboardReader
	tickets   port.TicketStore
	empresas  port.EmpresaStore
	confirm   Confirmer
	toaster   Notifier
	metrics   *observability.Metrics
	logger    *zap.Logger
	recent    int

	// Modal edits the ticket picked from the recent list.
	Modal *ui.TicketModal

	guard        loadGuard
	mu           sync.RWMutex
	stats        domain.DashboardStats
	all          []domain.Ticket
	empresaNomes map[string]string
	tab          domain.TicketStatus
}

// NewDashboardPage creates the dashboard controller. A non-positive
// recent uses DefaultDashboardRecent.
func NewDashboardPage(
	dashboard port.DashboardReader,
	tickets port.TicketStore,
	empresas port.EmpresaStore,
	confirm Confirmer,
	toaster Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	recent int,
) *DashboardPage {
	if recent <= 0 {
		recent = DefaultDashboardRecent
	}
	return &DashboardPage{
		dashboard:    dashboard,
		tickets:      tickets,
		empresas:     empresas,
		confirm:      confirm,
		toaster:      toaster,
		metrics:      metrics,
		logger:       logger,
		recent:       recent,
		Modal:        ui.NewTicketModal(tickets),
		empresaNomes: map[string]string{},
		tab:          domain.StatusAberto,
	}
}

// Load fetches stats, tickets and companies together.
func (p *DashboardPage) Load(ctx context.Context) (*DashboardView, error) {
	ctx, span := tracer.Start(ctx, "DashboardPage.Load")
	defer span.End()

	ctx, gen := p.guard.begin(ctx)

	var (
		stats    *domain.DashboardStats
		tickets  []domain.Ticket
		empresas []domain.Empresa
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = p.dashboard.Resumo(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tickets, err = p.tickets.List(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		empresas, err = p.empresas.List(gctx)
		return err
	})
	err := g.Wait()

	err = finishLoad(&p.guard, gen, pageDashboard, err, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.stats = *stats
		p.all = tickets
		p.empresaNomes = nameMap(empresas, func(e domain.Empresa) (string, string) { return e.ID, e.Nome })
	}, p.metrics, p.logger)
	if err != nil {
		return nil, err
	}
	return p.View(), nil
}

// View derives the current view from the last successful load.
func (p *DashboardPage) View() *DashboardView {
	p.mu.RLock()
	defer p.mu.RUnlock()

	recent := pipeline.ByTab(p.all, p.tab)
	if len(recent) > p.recent {
		recent = recent[:p.recent]
	}
	return &DashboardView{
		Stats: p.stats,
		Counts: pipeline.Counts{
			Abertos:     p.stats.TicketsAbertos,
			EmAndamento: p.stats.TicketsEmAndamento,
			Fechados:    p.stats.TicketsFechados,
		},
		Tab:          p.tab,
		Recent:       recent,
		EmpresaNomes: p.empresaNomes,
	}
}

// SetTab switches the recent-tickets tab.
func (p *DashboardPage) SetTab(tab domain.TicketStatus) (*DashboardView, error) {
	if !tab.Valid() {
		return nil, &domain.ErrValidation{Field: "tab", Message: "aba inválida"}
	}
	p.mu.Lock()
	p.tab = tab
	p.mu.Unlock()
	return p.View(), nil
}

// OpenTicket opens the modal on a ticket of the visible list.
func (p *DashboardPage) OpenTicket(id string) error {
	for _, t := range p.View().Recent {
		if t.ID == id {
			p.Modal.Open(t)
			return nil
		}
	}
	return &domain.ErrNotFound{Resource: "ticket", ID: id}
}

// SaveTicket saves the modal draft and reloads on success.
func (p *DashboardPage) SaveTicket(ctx context.Context) (*domain.Ticket, error) {
	return saveTicket(ctx, p.Modal, p.toaster, p.reload)
}

// DeleteTicket asks for confirmation and deletes. It reports whether the
// ticket was deleted.
func (p *DashboardPage) DeleteTicket(ctx context.Context, id string) (bool, error) {
	return deleteTicket(ctx, p.tickets, p.confirm, p.toaster, id, p.reload)
}

func (p *DashboardPage) reload(ctx context.Context) {
	if _, err := p.Load(ctx); reloadFailed(err) {
		p.logger.Warn("dashboard reload after write failed", zap.Error(err))
	}
}

// Close cancels a load in flight.
func (p *DashboardPage) Close() {
	p.guard.stop()
}

// saveTicket saves the draft of m. A draft without changes closes the
// modal with no request, no toast and no reload.
func saveTicket(ctx context.Context, m *ui.TicketModal, n Notifier, reload func(context.Context)) (*domain.Ticket, error) {
	if m.IsOpen() && m.Changes().IsEmpty() {
		return m.Save(ctx)
	}
	updated, err := m.Save(ctx)
	if err != nil {
		return nil, reportWrite(n, err, "Erro ao salvar ticket")
	}
	toast(n, "Ticket atualizado")
	reload(ctx)
	return updated, nil
}

// deleteTicket is shared by the pages that list tickets.
func deleteTicket(ctx context.Context, tickets port.TicketStore, confirm Confirmer, n Notifier, id string, reload func(context.Context)) (bool, error) {
	ok, err := confirm.Show(ctx, ui.ConfirmOptions{
		Title:       "Deletar Ticket",
		Message:     "Tem certeza que deseja deletar este ticket? Esta ação não pode ser desfeita.",
		ConfirmText: "Deletar",
		CancelText:  "Cancelar",
		Dangerous:   true,
	})
	if err != nil || !ok {
		return false, err
	}

	if err := tickets.Delete(ctx, id); err != nil {
		return false, reportWrite(n, err, "Erro ao deletar ticket")
	}
	toast(n, "Ticket deletado")
	reload(ctx)
	return true, nil
}
