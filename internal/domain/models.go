// Package domain defines the view models of the helpdesk admin console.
// These are the shapes the pages and the CLI work with; the backend wire
// format (snake_case, four-way ticket status) never leaves the apiclient
// adapters.
package domain

import "time"

// ============================================================
// Empresas
// ============================================================

// Empresa is a client company.
type Empresa struct {
	ID                 string    `json:"id"`
	Nome               string    `json:"nome"`
	CNPJ               string    `json:"cnpj,omitempty"`
	Email              string    `json:"email,omitempty"`
	Telefone           string    `json:"telefone,omitempty"`
	Endereco           string    `json:"endereco,omitempty"`
	ContatoPrincipalID string    `json:"contatoPrincipalId,omitempty"`
	Status             string    `json:"status"` // ativo, inativo
	CreatedAt          time.Time `json:"createdAt"`
}

// EmpresaInput carries the editable fields of a company.
// Nil pointers are left untouched on update and omitted on create.
type EmpresaInput struct {
	Nome               *string `json:"nome,omitempty"`
	CNPJ               *string `json:"cnpj,omitempty"`
	Email              *string `json:"email,omitempty"`
	Telefone           *string `json:"telefone,omitempty"`
	Endereco           *string `json:"endereco,omitempty"`
	ContatoPrincipalID *string `json:"contatoPrincipalId,omitempty"`
}

// ============================================================
// Contatos
// ============================================================

// Contato is a person who belongs to an Empresa.
type Contato struct {
	ID           string    `json:"id"`
	EmpresaID    string    `json:"empresaId"`
	Nome         string    `json:"nome"`
	Email        string    `json:"email,omitempty"`
	Telefone     string    `json:"telefone,omitempty"`
	Cargo        string    `json:"cargo,omitempty"`
	Departamento string    `json:"departamento,omitempty"`
	Principal    bool      `json:"principal"`
	Status       string    `json:"status"` // ativo, inativo
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// ContatoInput carries the editable fields of a contact.
// EmpresaID is only honoured on create.
type ContatoInput struct {
	EmpresaID    *string `json:"empresaId,omitempty"`
	Nome         *string `json:"nome,omitempty"`
	Email        *string `json:"email,omitempty"`
	Telefone     *string `json:"telefone,omitempty"`
	Cargo        *string `json:"cargo,omitempty"`
	Departamento *string `json:"departamento,omitempty"`
	Principal    *bool   `json:"principal,omitempty"`
}

// ============================================================
// Categorias
// ============================================================

// Categoria is a service category used for labelling and filters.
type Categoria struct {
	ID        string `json:"id"`
	Nome      string `json:"nome"`
	Descricao string `json:"descricao,omitempty"`
	Cor       string `json:"cor,omitempty"`
	Icone     string `json:"icone,omitempty"`
	Ordem     int    `json:"ordem"`
	Status    string `json:"status"`
}

// CategoriaInput carries the editable fields of a category.
type CategoriaInput struct {
	Nome      *string `json:"nome,omitempty"`
	Descricao *string `json:"descricao,omitempty"`
	Cor       *string `json:"cor,omitempty"`
	Icone     *string `json:"icone,omitempty"`
	Ordem     *int    `json:"ordem,omitempty"`
}

// ============================================================
// Tickets
// ============================================================

// Ticket is a support request as the console sees it.
type Ticket struct {
	ID               string       `json:"id"`
	Numero           string       `json:"numero"`
	Titulo           string       `json:"titulo"`
	Descricao        string       `json:"descricao"`
	Status           TicketStatus `json:"status"`
	EmpresaID        string       `json:"empresaId"`
	ContatoID        string       `json:"contatoId"`
	CategoriaID      string       `json:"categoriaId,omitempty"`
	ValorFaturado    float64      `json:"valorFaturado,omitempty"`
	SolucaoDescricao string       `json:"solucaoDescricao,omitempty"`
	TempoGastoHoras  float64      `json:"tempoGastoHoras,omitempty"`
	DataAbertura     time.Time    `json:"dataAbertura"`
	DataFechamento   *time.Time   `json:"dataFechamento,omitempty"`
	UpdatedAt        time.Time    `json:"updatedAt,omitempty"`
}

// TicketCreateInput is what the ticket form submits.
type TicketCreateInput struct {
	EmpresaID   string `json:"empresaId"`
	ContatoID   string `json:"contatoId"`
	CategoriaID string `json:"categoriaId"`
	Titulo      string `json:"titulo"`
	Descricao   string `json:"descricao"`
}

// TicketUpdate holds the editable ticket fields. Nil means "not changed".
type TicketUpdate struct {
	Titulo      *string       `json:"titulo,omitempty"`
	Descricao   *string       `json:"descricao,omitempty"`
	CategoriaID *string       `json:"categoriaId,omitempty"`
	ContatoID   *string       `json:"contatoId,omitempty"`
	Status      *TicketStatus `json:"status,omitempty"`
}

// IsEmpty reports whether the update carries no change at all.
func (u TicketUpdate) IsEmpty() bool {
	return u.Titulo == nil && u.Descricao == nil && u.CategoriaID == nil &&
		u.ContatoID == nil && u.Status == nil
}

// ============================================================
// Faturamento
// ============================================================

// FaturamentoItem is a billing line generated from a closed ticket.
type FaturamentoItem struct {
	ID               string     `json:"id"`
	TicketID         string     `json:"ticketId"`
	EmpresaID        string     `json:"empresaId"`
	TicketNumero     string     `json:"ticketNumero"`
	TicketTitulo     string     `json:"ticketTitulo"`
	TicketDescricao  string     `json:"ticketDescricao"`
	CategoriaNome    string     `json:"categoriaNome,omitempty"`
	EmpresaNome      string     `json:"empresaNome,omitempty"`
	DataTicket       time.Time  `json:"dataTicket"`
	Valor            float64    `json:"valor"`
	Descricao        string     `json:"descricao,omitempty"`
	MesReferencia    string     `json:"mesReferencia"`
	Faturado         bool       `json:"faturado"`
	DataFaturacao    *time.Time `json:"dataFaturacao,omitempty"`
	NumeroNotaFiscal string     `json:"numeroNotaFiscal,omitempty"`
}

// FaturamentoResumo holds the period totals of the billing page.
type FaturamentoResumo struct {
	MesReferencia    string  `json:"mesReferencia"`
	TotalRegistros   int     `json:"totalRegistros"`
	SubtotalPendente float64 `json:"subtotalPendente"`
	SubtotalFaturado float64 `json:"subtotalFaturado"`
	TotalGeral       float64 `json:"totalGeral"`
}

// FaturamentoFilter narrows billing queries. Faturado nil means "todos".
type FaturamentoFilter struct {
	MesReferencia string `json:"mesReferencia,omitempty"`
	EmpresaID     string `json:"empresaId,omitempty"`
	Faturado      *bool  `json:"faturado,omitempty"`
}

// FaturamentoCreateInput creates a billing line.
type FaturamentoCreateInput struct {
	TicketID         string  `json:"ticketId"`
	EmpresaID        string  `json:"empresaId"`
	Valor            float64 `json:"valor"`
	Descricao        string  `json:"descricao,omitempty"`
	MesReferencia    string  `json:"mesReferencia"`
	Faturado         *bool   `json:"faturado,omitempty"`
	NumeroNotaFiscal string  `json:"numeroNotaFiscal,omitempty"`
}

// FaturamentoUpdate holds the editable fields of a billing line.
type FaturamentoUpdate struct {
	Valor            *float64 `json:"valor,omitempty"`
	Descricao        *string  `json:"descricao,omitempty"`
	MesReferencia    *string  `json:"mesReferencia,omitempty"`
	Faturado         *bool    `json:"faturado,omitempty"`
	NumeroNotaFiscal *string  `json:"numeroNotaFiscal,omitempty"`
}

// ============================================================
// Dashboard
// ============================================================

// DashboardStats feeds the summary cards and tab counters.
type DashboardStats struct {
	TicketsAbertos     int     `json:"ticketsAbertos"`
	TicketsEmAndamento int     `json:"ticketsEmAndamento"`
	TicketsFechados    int     `json:"ticketsFechados"`
	TicketsHoje        int     `json:"ticketsHoje"`
	FaturadoMes        float64 `json:"faturadoMes"`
	FaturadoYTD        float64 `json:"faturadoYTD"`
}

// ============================================================
// Auth
// ============================================================

// Usuario is the logged-in operator.
type Usuario struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Nome      string    `json:"nome"`
	Role      string    `json:"role"` // admin, tecnico
	Ativo     bool      `json:"ativo"`
	CreatedAt time.Time `json:"createdAt"`
}

// Credentials is the login form.
type Credentials struct {
	Email string `json:"email"`
	Senha string `json:"senha"`
}

// FaturamentoExport is the JSON export of a billing period.
type FaturamentoExport struct {
	MesReferencia string            `json:"mesReferencia"`
	Total         int               `json:"total"`
	Items         []FaturamentoItem `json:"items"`
}
