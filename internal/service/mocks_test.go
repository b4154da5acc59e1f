package service_test

import (
	"context"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/session"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"
)

// --- Mocks ---

type mockTickets struct {
	mu        sync.Mutex
	list      []domain.Ticket
	listErr   error
	listFn    func(ctx context.Context, call int) ([]domain.Ticket, error)
	listCalls int

	created   []domain.TicketCreateInput
	createErr error
	updates   []domain.TicketUpdate
	updateErr error
	closed    []string
	closeErr  error
	statuses  []domain.TicketStatus
	deleted   []string
	deleteErr error
}

func (m *mockTickets) List(ctx context.Context) ([]domain.Ticket, error) {
	m.mu.Lock()
	m.listCalls++
	call := m.listCalls
	fn := m.listFn
	list, err := m.list, m.listErr
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, call)
	}
	return list, err
}

func (m *mockTickets) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	all, err := m.List(ctx)
	var out []domain.Ticket
	for _, t := range all {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, err
}

func (m *mockTickets) ListByEmpresa(ctx context.Context, empresaID string) ([]domain.Ticket, error) {
	all, err := m.List(ctx)
	var out []domain.Ticket
	for _, t := range all {
		if t.EmpresaID == empresaID {
			out = append(out, t)
		}
	}
	return out, err
}

func (m *mockTickets) Get(_ context.Context, id string) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.list {
		if t.ID == id {
			t := t
			return &t, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "ticket", ID: id}
}

func (m *mockTickets) Create(_ context.Context, in domain.TicketCreateInput) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return nil, m.createErr
	}
	m.created = append(m.created, in)
	return &domain.Ticket{ID: "new", Titulo: in.Titulo, Descricao: in.Descricao, Status: domain.StatusAberto}, nil
}

func (m *mockTickets) Update(_ context.Context, id string, u domain.TicketUpdate) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	m.updates = append(m.updates, u)
	return &domain.Ticket{ID: id}, nil
}

func (m *mockTickets) Close(_ context.Context, id, _ string, _ float64) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closeErr != nil {
		return nil, m.closeErr
	}
	m.closed = append(m.closed, id)
	return &domain.Ticket{ID: id, Status: domain.StatusFechado}, nil
}

func (m *mockTickets) UpdateStatus(_ context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, status)
	return &domain.Ticket{ID: id, Status: status}, nil
}

func (m *mockTickets) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockTickets) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

type mockEmpresas struct {
	mu      sync.Mutex
	list    []domain.Empresa
	err     error
	created []domain.EmpresaInput
	deleted []string
}

func (m *mockEmpresas) List(_ context.Context) ([]domain.Empresa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list, m.err
}

func (m *mockEmpresas) Get(_ context.Context, id string) (*domain.Empresa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.list {
		if e.ID == id {
			e := e
			return &e, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "empresa", ID: id}
}

func (m *mockEmpresas) Create(_ context.Context, in domain.EmpresaInput) (*domain.Empresa, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, in)
	return &domain.Empresa{ID: "e-new", Nome: *in.Nome}, nil
}

func (m *mockEmpresas) Update(_ context.Context, id string, _ domain.EmpresaInput) (*domain.Empresa, error) {
	return &domain.Empresa{ID: id}, nil
}

func (m *mockEmpresas) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, id)
	return nil
}

type mockContatos struct {
	all       []domain.Contato
	byEmpresa map[string][]domain.Contato
	created   []domain.ContatoInput
}

func (m *mockContatos) List(_ context.Context) ([]domain.Contato, error) { return m.all, nil }

func (m *mockContatos) ListByEmpresa(_ context.Context, empresaID string) ([]domain.Contato, error) {
	return m.byEmpresa[empresaID], nil
}

func (m *mockContatos) Get(_ context.Context, id string) (*domain.Contato, error) {
	for _, list := range m.byEmpresa {
		for _, c := range list {
			if c.ID == id {
				c := c
				return &c, nil
			}
		}
	}
	return nil, &domain.ErrNotFound{Resource: "contato", ID: id}
}

func (m *mockContatos) Create(_ context.Context, in domain.ContatoInput) (*domain.Contato, error) {
	m.created = append(m.created, in)
	return &domain.Contato{ID: "c-new", EmpresaID: *in.EmpresaID, Nome: *in.Nome}, nil
}

func (m *mockContatos) Update(_ context.Context, id string, _ domain.ContatoInput) (*domain.Contato, error) {
	return &domain.Contato{ID: id}, nil
}

func (m *mockContatos) Delete(_ context.Context, _ string) error { return nil }

type mockCategorias struct {
	list    []domain.Categoria
	created []domain.CategoriaInput
}

func (m *mockCategorias) List(_ context.Context) ([]domain.Categoria, error) { return m.list, nil }

func (m *mockCategorias) Get(_ context.Context, id string) (*domain.Categoria, error) {
	for _, c := range m.list {
		if c.ID == id {
			c := c
			return &c, nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "categoria", ID: id}
}

func (m *mockCategorias) Create(_ context.Context, in domain.CategoriaInput) (*domain.Categoria, error) {
	m.created = append(m.created, in)
	return &domain.Categoria{ID: "cat-new", Nome: *in.Nome}, nil
}

func (m *mockCategorias) Update(_ context.Context, id string, _ domain.CategoriaInput) (*domain.Categoria, error) {
	return &domain.Categoria{ID: id}, nil
}

func (m *mockCategorias) Delete(_ context.Context, _ string) error { return nil }

type statusCall struct {
	id       string
	faturado bool
	nf       string
}

type mockFaturamento struct {
	mu          sync.Mutex
	items       []domain.FaturamentoItem
	resumo      domain.FaturamentoResumo
	filters     []domain.FaturamentoFilter
	resumoCalls []domain.FaturamentoFilter
	created     []domain.FaturamentoCreateInput
	statusCalls []statusCall
	csv         []byte
	export      *domain.FaturamentoExport
}

func (m *mockFaturamento) List(_ context.Context, f domain.FaturamentoFilter) ([]domain.FaturamentoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters = append(m.filters, f)
	if f.Faturado == nil {
		return m.items, nil
	}
	var out []domain.FaturamentoItem
	for _, it := range m.items {
		if it.Faturado == *f.Faturado {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m *mockFaturamento) Resumo(_ context.Context, f domain.FaturamentoFilter) (*domain.FaturamentoResumo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumoCalls = append(m.resumoCalls, f)
	r := m.resumo
	return &r, nil
}

func (m *mockFaturamento) Create(_ context.Context, in domain.FaturamentoCreateInput) (*domain.FaturamentoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, in)
	return &domain.FaturamentoItem{ID: "f-new", TicketID: in.TicketID, Valor: in.Valor}, nil
}

func (m *mockFaturamento) Update(_ context.Context, id string, _ domain.FaturamentoUpdate) (*domain.FaturamentoItem, error) {
	return &domain.FaturamentoItem{ID: id}, nil
}

func (m *mockFaturamento) UpdateStatus(_ context.Context, id string, faturado bool, nf string) (*domain.FaturamentoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls = append(m.statusCalls, statusCall{id, faturado, nf})
	return &domain.FaturamentoItem{ID: id, Faturado: faturado, NumeroNotaFiscal: nf}, nil
}

func (m *mockFaturamento) Delete(_ context.Context, _ string) error { return nil }

func (m *mockFaturamento) ExportCSV(_ context.Context, _ domain.FaturamentoFilter) ([]byte, string, error) {
	return m.csv, "ignored.csv", nil
}

func (m *mockFaturamento) ExportJSON(_ context.Context, _ domain.FaturamentoFilter) (*domain.FaturamentoExport, error) {
	return m.export, nil
}

type mockDashboard struct {
	stats *domain.DashboardStats
	err   error
}

func (m *mockDashboard) Resumo(_ context.Context) (*domain.DashboardStats, error) {
	return m.stats, m.err
}

type mockAuth struct {
	user       *domain.Usuario
	loginErr   error
	meErr      error
	sess       *session.Session
	logoutCall int
}

func (m *mockAuth) Login(_ context.Context, _, _ string) (*domain.Usuario, error) {
	return m.user, m.loginErr
}

func (m *mockAuth) Me(_ context.Context) (*domain.Usuario, error) {
	if m.meErr != nil {
		return nil, m.meErr
	}
	return m.user, nil
}

func (m *mockAuth) Logout(ctx context.Context) error {
	m.logoutCall++
	if m.sess != nil {
		return m.sess.Clear(ctx)
	}
	return nil
}

type mockConfirm struct {
	answer bool
	err    error
	shown  []ui.ConfirmOptions
}

func (m *mockConfirm) Show(_ context.Context, opts ui.ConfirmOptions) (bool, error) {
	m.shown = append(m.shown, opts)
	return m.answer, m.err
}
