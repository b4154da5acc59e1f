// Package port defines the interfaces (ports) the page controllers depend on.
// The apiclient adapters implement them against the helpdesk backend; tests
// implement them with in-memory mocks.
package port

import (
	"context"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

// EmpresaStore manages client companies.
type EmpresaStore interface {
	List(ctx context.Context) ([]domain.Empresa, error)
	Get(ctx context.Context, id string) (*domain.Empresa, error)
	Create(ctx context.Context, in domain.EmpresaInput) (*domain.Empresa, error)
	Update(ctx context.Context, id string, patch domain.EmpresaInput) (*domain.Empresa, error)
	Delete(ctx context.Context, id string) error
}

// ContatoStore manages the contacts of a company.
type ContatoStore interface {
	List(ctx context.Context) ([]domain.Contato, error)
	ListByEmpresa(ctx context.Context, empresaID string) ([]domain.Contato, error)
	Get(ctx context.Context, id string) (*domain.Contato, error)
	Create(ctx context.Context, in domain.ContatoInput) (*domain.Contato, error)
	Update(ctx context.Context, id string, patch domain.ContatoInput) (*domain.Contato, error)
	Delete(ctx context.Context, id string) error
}

// TicketStore manages support tickets.
type TicketStore interface {
	List(ctx context.Context) ([]domain.Ticket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	ListByEmpresa(ctx context.Context, empresaID string) ([]domain.Ticket, error)
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	Create(ctx context.Context, in domain.TicketCreateInput) (*domain.Ticket, error)
	Update(ctx context.Context, id string, u domain.TicketUpdate) (*domain.Ticket, error)
	Close(ctx context.Context, id, solucao string, horas float64) (*domain.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

// TicketUpdater is the slice of TicketStore the edit modal needs.
type TicketUpdater interface {
	Update(ctx context.Context, id string, u domain.TicketUpdate) (*domain.Ticket, error)
}

// CategoriaStore manages service categories.
type CategoriaStore interface {
	List(ctx context.Context) ([]domain.Categoria, error)
	Get(ctx context.Context, id string) (*domain.Categoria, error)
	Create(ctx context.Context, in domain.CategoriaInput) (*domain.Categoria, error)
	Update(ctx context.Context, id string, patch domain.CategoriaInput) (*domain.Categoria, error)
	Delete(ctx context.Context, id string) error
}

// FaturamentoStore manages billing lines.
type FaturamentoStore interface {
	List(ctx context.Context, f domain.FaturamentoFilter) ([]domain.FaturamentoItem, error)
	Resumo(ctx context.Context, f domain.FaturamentoFilter) (*domain.FaturamentoResumo, error)
	Create(ctx context.Context, in domain.FaturamentoCreateInput) (*domain.FaturamentoItem, error)
	Update(ctx context.Context, id string, u domain.FaturamentoUpdate) (*domain.FaturamentoItem, error)
	UpdateStatus(ctx context.Context, id string, faturado bool, numeroNF string) (*domain.FaturamentoItem, error)
	Delete(ctx context.Context, id string) error
	ExportCSV(ctx context.Context, f domain.FaturamentoFilter) ([]byte, string, error)
	ExportJSON(ctx context.Context, f domain.FaturamentoFilter) (*domain.FaturamentoExport, error)
}

// DashboardReader fetches the dashboard summary.
type DashboardReader interface {
	Resumo(ctx context.Context) (*domain.DashboardStats, error)
}

// Authenticator logs the operator in and out.
type Authenticator interface {
	Login(ctx context.Context, email, senha string) (*domain.Usuario, error)
	Me(ctx context.Context) (*domain.Usuario, error)
	Logout(ctx context.Context) error
}
