package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/pipeline"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pageTickets = "tickets"

// TicketsView is what the tickets page renders.
type TicketsView struct {
	pipeline.Result
	Empresas     []domain.Empresa   `json:"empresas"`
	Categorias   []domain.Categoria `json:"categorias"`
	EmpresaNomes map[string]string  `json:"empresaNomes"`
}

// TicketDetail is one ticket with the records it points to. A link that
// no longer resolves is nil.
type TicketDetail struct {
	domain.Ticket
	Empresa   *domain.Empresa   `json:"empresa,omitempty"`
	Contato   *domain.Contato   `json:"contato,omitempty"`
	Categoria *domain.Categoria `json:"categoria,omitempty"`
}

// TicketsPage lists tickets through the tab/filter/page pipeline and
// runs the ticket writes.
type TicketsPage struct {
	tickets    port.TicketStore
	empresas   port.EmpresaStore
	categorias port.CategoriaStore
	contatos   port.ContatoStore
	confirm    Confirmer
	toaster    Notifier
	metrics    *observability.Metrics
	logger     *zap.Logger

	Modal *ui.TicketModal

	guard         loadGuard
	mu            sync.Mutex
	all           []domain.Ticket
	empresaList   []domain.Empresa
	categoriaList []domain.Categoria
	empresaNomes  map[string]string
	view          *pipeline.View
}

func NewTicketsPage(
	tickets port.TicketStore,
	empresas port.EmpresaStore,
	categorias port.CategoriaStore,
	contatos port.ContatoStore,
	confirm Confirmer,
	toaster Notifier,
	metrics *observability.Metrics,
	logger *zap.Logger,
	pageSize int,
) *TicketsPage {
	return &TicketsPage{
		tickets:      tickets,
		empresas:     empresas,
		categorias:   categorias,
		contatos:     contatos,
		confirm:      confirm,
		toaster:      toaster,
		metrics:      metrics,
		logger:       logger,
		Modal:        ui.NewTicketModal(tickets),
		empresaNomes: map[string]string{},
		view:         pipeline.NewView(pageSize),
	}
}

// Load fetches tickets, companies and categories together.
func (p *TicketsPage) Load(ctx context.Context) (*TicketsView, error) {
	ctx, span := tracer.Start(ctx, "TicketsPage.Load")
	defer span.End()

	ctx, gen := p.guard.begin(ctx)

	var (
		tickets    []domain.Ticket
		empresas   []domain.Empresa
		categorias []domain.Categoria
	)
	g, gctx := errgroup.WithContext(ctx)
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
	g.Go(func() error {
		var err error
		categorias, err = p.categorias.List(gctx)
		return err
	})
	err := g.Wait()

	err = finishLoad(&p.guard, gen, pageTickets, err, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.all = tickets
		p.empresaList = empresas
		p.categoriaList = categorias
		p.empresaNomes = nameMap(empresas, func(e domain.Empresa) (string, string) { return e.ID, e.Nome })
	}, p.metrics, p.logger)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("tickets.count", len(tickets)))
	return p.View(), nil
}

// View runs the pipeline over the loaded tickets.
func (p *TicketsPage) View() *TicketsView {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewLocked()
}

func (p *TicketsPage) viewLocked() *TicketsView {
	return &TicketsView{
		Result:       p.view.Apply(p.all),
		Empresas:     p.empresaList,
		Categorias:   p.categoriaList,
		EmpresaNomes: p.empresaNomes,
	}
}

// SetTab switches the status tab and goes back to page 1.
func (p *TicketsPage) SetTab(tab domain.TicketStatus) (*TicketsView, error) {
	return p.change(func(v *pipeline.View) error { return v.SetTab(tab) })
}

// SetFilters replaces the field filters and goes back to page 1.
func (p *TicketsPage) SetFilters(f pipeline.Filters) (*TicketsView, error) {
	return p.change(func(v *pipeline.View) error { return v.SetFilters(f) })
}

// SetPageSize picks a page size and goes back to page 1.
func (p *TicketsPage) SetPageSize(n int) (*TicketsView, error) {
	return p.change(func(v *pipeline.View) error { return v.SetPageSize(n) })
}

// SetPage moves to page n.
func (p *TicketsPage) SetPage(n int) *TicketsView {
	view, _ := p.change(func(v *pipeline.View) error {
		v.SetPage(n)
		return nil
	})
	return view
}

func (p *TicketsPage) change(fn func(*pipeline.View) error) (*TicketsView, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := fn(p.view); err != nil {
		return nil, err
	}
	return p.viewLocked(), nil
}

// ContatosDaEmpresa lists the contacts the ticket form may offer for a
// company.
func (p *TicketsPage) ContatosDaEmpresa(ctx context.Context, empresaID string) ([]domain.Contato, error) {
	if strings.TrimSpace(empresaID) == "" {
		return nil, nil
	}
	return p.contatos.ListByEmpresa(ctx, empresaID)
}

// Create validates the form, checks the contact belongs to the company
// and creates the ticket.
func (p *TicketsPage) Create(ctx context.Context, in domain.TicketCreateInput) (*domain.Ticket, error) {
	ctx, span := tracer.Start(ctx, "TicketsPage.Create")
	defer span.End()

	in.Titulo = strings.TrimSpace(in.Titulo)
	in.Descricao = strings.TrimSpace(in.Descricao)
	if err := validateTicket(in); err != nil {
		return nil, err
	}

	contatos, err := p.contatos.ListByEmpresa(ctx, in.EmpresaID)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao carregar contatos")
	}
	belongs := false
	for _, c := range contatos {
		if c.ID == in.ContatoID {
			belongs = true
			break
		}
	}
	if !belongs {
		return nil, &domain.ErrValidation{Field: "contatoId", Message: "Contato não pertence à empresa selecionada"}
	}

	created, err := p.tickets.Create(ctx, in)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar ticket")
	}
	toast(p.toaster, "Ticket criado")
	p.reload(ctx)
	return created, nil
}

// Detail fetches one ticket with its company, contact and category.
func (p *TicketsPage) Detail(ctx context.Context, id string) (*TicketDetail, error) {
	ctx, span := tracer.Start(ctx, "TicketsPage.Detail")
	defer span.End()

	t, err := p.tickets.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &TicketDetail{Ticket: *t}

	g, gctx := errgroup.WithContext(ctx)
	if t.EmpresaID != "" {
		g.Go(func() error {
			e, err := p.empresas.Get(gctx, t.EmpresaID)
			d.Empresa = e
			return ignoreNotFound(err)
		})
	}
	if t.ContatoID != "" {
		g.Go(func() error {
			c, err := p.contatos.Get(gctx, t.ContatoID)
			d.Contato = c
			return ignoreNotFound(err)
		})
	}
	if t.CategoriaID != "" {
		g.Go(func() error {
			c, err := p.categorias.Get(gctx, t.CategoriaID)
			d.Categoria = c
			return ignoreNotFound(err)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return d, nil
}

func ignoreNotFound(err error) error {
	var nf *domain.ErrNotFound
	if errors.As(err, &nf) {
		return nil
	}
	return err
}

// Search asks the backend for the tickets of a company, of a status or
// both, newest first. It leaves the page list untouched.
func (p *TicketsPage) Search(ctx context.Context, empresaID string, status domain.TicketStatus) ([]domain.Ticket, error) {
	ctx, span := tracer.Start(ctx, "TicketsPage.Search")
	defer span.End()

	empresaID = strings.TrimSpace(empresaID)
	if status != "" && !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "status inválido"}
	}

	switch {
	case empresaID == "" && status == "":
		return p.tickets.List(ctx)
	case empresaID == "":
		return p.tickets.ListByStatus(ctx, status)
	}

	tickets, err := p.tickets.ListByEmpresa(ctx, empresaID)
	if err != nil || status == "" {
		return tickets, err
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (p *TicketsPage) loaded(id string) (domain.Ticket, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.all {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Ticket{}, false
}

// OpenTicket opens the modal on a loaded ticket.
func (p *TicketsPage) OpenTicket(id string) error {
	t, ok := p.loaded(id)
	if !ok {
		return &domain.ErrNotFound{Resource: "ticket", ID: id}
	}
	p.Modal.Open(t)
	return nil
}

// SaveTicket saves the modal draft and reloads on success.
func (p *TicketsPage) SaveTicket(ctx context.Context) (*domain.Ticket, error) {
	return saveTicket(ctx, p.Modal, p.toaster, p.reload)
}

// EditTicket applies u to ticket id in a modal of its own and saves what
// changed. Each call starts from the loaded ticket, so edits never share
// a draft and a failed save leaves nothing behind.
func (p *TicketsPage) EditTicket(ctx context.Context, id string, u domain.TicketUpdate) (*domain.Ticket, error) {
	ctx, span := tracer.Start(ctx, "TicketsPage.EditTicket")
	defer span.End()

	t, ok := p.loaded(id)
	if !ok {
		// Not loaded yet: load once and look again.
		if _, err := p.Load(ctx); err != nil {
			return nil, err
		}
		if t, ok = p.loaded(id); !ok {
			return nil, &domain.ErrNotFound{Resource: "ticket", ID: id}
		}
	}

	m := ui.NewTicketModal(p.tickets)
	m.Open(t)
	defer m.Cancel()

	if u.Titulo != nil {
		m.SetTitulo(*u.Titulo)
	}
	if u.Descricao != nil {
		m.SetDescricao(*u.Descricao)
	}
	if u.CategoriaID != nil {
		m.SetCategoria(*u.CategoriaID)
	}
	if u.ContatoID != nil {
		m.SetContato(*u.ContatoID)
	}
	if u.Status != nil {
		if err := m.SetStatus(*u.Status); err != nil {
			return nil, err
		}
	}
	return saveTicket(ctx, m, p.toaster, p.reload)
}

// CloseTicket closes a ticket with its solution and the hours spent.
func (p *TicketsPage) CloseTicket(ctx context.Context, id, solucao string, horas float64) (*domain.Ticket, error) {
	if err := validateSolucao(solucao); err != nil {
		return nil, err
	}
	if horas < 0 {
		return nil, &domain.ErrValidation{Field: "tempoGastoHoras", Message: "Tempo gasto não pode ser negativo"}
	}

	closed, err := p.tickets.Close(ctx, id, strings.TrimSpace(solucao), horas)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao fechar ticket")
	}
	toast(p.toaster, "Ticket fechado")
	p.reload(ctx)
	return closed, nil
}

// MoveTicket changes only the status of a ticket.
func (p *TicketsPage) MoveTicket(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: "status inválido"}
	}
	moved, err := p.tickets.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao atualizar status")
	}
	toast(p.toaster, "Status atualizado")
	p.reload(ctx)
	return moved, nil
}

// DeleteTicket asks for confirmation and deletes.
func (p *TicketsPage) DeleteTicket(ctx context.Context, id string) (bool, error) {
	return deleteTicket(ctx, p.tickets, p.confirm, p.toaster, id, p.reload)
}

func (p *TicketsPage) reload(ctx context.Context) {
	if _, err := p.Load(ctx); reloadFailed(err) {
		p.logger.Warn("tickets reload after write failed", zap.Error(err))
	}
}

// Close cancels a load in flight.
func (p *TicketsPage) Close() {
	p.guard.stop()
}
