package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

const ticketsPageLimit = 100

// Backend ticket statuses. resolvido has no console counterpart.
const (
	wireAberto      = "aberto"
	wireEmAndamento = "em_andamento"
	wireResolvido   = "resolvido"
	wireFechado     = "fechado"
)

type ticketWire struct {
	ID               string    `json:"id"`
	Numero           string    `json:"numero"`
	EmpresaID        string    `json:"empresa_id"`
	ContatoID        string    `json:"contato_id"`
	CategoriaID      *string   `json:"categoria_id"`
	Titulo           string    `json:"titulo"`
	Descricao        string    `json:"descricao"`
	Status           string    `json:"status"`
	SolucaoDescricao *string   `json:"solucao_descricao"`
	TempoGastoHoras  *float64  `json:"tempo_gasto_horas"`
	DataCriacao      wireTime  `json:"data_criacao"`
	DataAtualizacao  wireTime  `json:"data_atualizacao"`
	DataFechamento   *wireTime `json:"data_fechamento"`
}

type ticketCreatePayload struct {
	EmpresaID   string `json:"empresa_id"`
	ContatoID   string `json:"contato_id"`
	CategoriaID string `json:"categoria_id"`
	Titulo      string `json:"titulo"`
	Descricao   string `json:"descricao"`
}

type ticketUpdatePayload struct {
	Titulo      *string `json:"titulo,omitempty"`
	Descricao   *string `json:"descricao,omitempty"`
	CategoriaID *string `json:"categoria_id,omitempty"`
	ContatoID   *string `json:"contato_id,omitempty"`
	Status      *string `json:"status,omitempty"`
}

type ticketClosePayload struct {
	SolucaoDescricao string   `json:"solucao_descricao"`
	TempoGastoHoras  *float64 `json:"tempo_gasto_horas,omitempty"`
}

// foldStatus maps the four backend statuses onto the three console ones.
func foldStatus(wire string) domain.TicketStatus {
	switch wire {
	case wireEmAndamento:
		return domain.StatusEmAndamento
	case wireResolvido, wireFechado:
		return domain.StatusFechado
	}
	return domain.StatusAberto
}

func (w ticketWire) toDomain() domain.Ticket {
	t := domain.Ticket{
		ID:               w.ID,
		Numero:           w.Numero,
		Titulo:           w.Titulo,
		Descricao:        w.Descricao,
		Status:           foldStatus(w.Status),
		EmpresaID:        w.EmpresaID,
		ContatoID:        w.ContatoID,
		CategoriaID:      str(w.CategoriaID),
		SolucaoDescricao: str(w.SolucaoDescricao),
		DataAbertura:     w.DataCriacao.Time,
		DataFechamento:   w.DataFechamento.ptr(),
		UpdatedAt:        w.DataAtualizacao.Time,
	}
	if w.TempoGastoHoras != nil {
		t.TempoGastoHoras = *w.TempoGastoHoras
	}
	return t
}

func ticketUpdatePayloadFrom(u domain.TicketUpdate) ticketUpdatePayload {
	p := ticketUpdatePayload{
		Titulo:      u.Titulo,
		Descricao:   u.Descricao,
		CategoriaID: u.CategoriaID,
		ContatoID:   u.ContatoID,
	}
	if u.Status != nil {
		s := string(*u.Status)
		p.Status = &s
	}
	return p
}

// Tickets is the ticket adapter.
type Tickets struct {
	c *Client
}

// NewTickets creates the ticket adapter.
func NewTickets(c *Client) *Tickets {
	return &Tickets{c: c}
}

// List returns every active ticket, newest first.
func (a *Tickets) List(ctx context.Context) ([]domain.Ticket, error) {
	return a.list(ctx, nil)
}

// ListByStatus filters on the backend. StatusFechado also returns the
// backend's resolvido tickets.
func (a *Tickets) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	if !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %q", status)}
	}
	if status != domain.StatusFechado {
		return a.list(ctx, url.Values{"status": {string(status)}})
	}

	fechados, err := a.list(ctx, url.Values{"status": {wireFechado}})
	if err != nil {
		return nil, err
	}
	resolvidos, err := a.list(ctx, url.Values{"status": {wireResolvido}})
	if err != nil {
		return nil, err
	}
	return mergeNewestFirst(fechados, resolvidos), nil
}

// ListByEmpresa returns the tickets of one company.
func (a *Tickets) ListByEmpresa(ctx context.Context, empresaID string) ([]domain.Ticket, error) {
	if err := validateID("empresa", empresaID); err != nil {
		return nil, err
	}
	return a.list(ctx, url.Values{"empresa_id": {empresaID}})
}

func (a *Tickets) list(ctx context.Context, query url.Values) ([]domain.Ticket, error) {
	rows, err := listAll[ticketWire](ctx, a.c, "/tickets", query, ticketsPageLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Ticket, 0, len(rows))
	for _, w := range rows {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (a *Tickets) Get(ctx context.Context, id string) (*domain.Ticket, error) {
	if err := validateID("ticket", id); err != nil {
		return nil, err
	}
	var w ticketWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/tickets/" + id, Out: &w}); err != nil {
		return nil, asNotFound(err, "ticket", id)
	}
	t := w.toDomain()
	return &t, nil
}

func (a *Tickets) Create(ctx context.Context, in domain.TicketCreateInput) (*domain.Ticket, error) {
	ids := [][2]string{{"empresa", in.EmpresaID}, {"contato", in.ContatoID}, {"categoria", in.CategoriaID}}
	for _, pair := range ids {
		if err := validateID(pair[0], pair[1]); err != nil {
			return nil, err
		}
	}

	payload := ticketCreatePayload{
		EmpresaID:   in.EmpresaID,
		ContatoID:   in.ContatoID,
		CategoriaID: in.CategoriaID,
		Titulo:      in.Titulo,
		Descricao:   in.Descricao,
	}
	var w ticketWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/tickets", Body: payload, Out: &w}); err != nil {
		return nil, err
	}
	t := w.toDomain()
	return &t, nil
}

// Update sends only the fields set in u.
func (a *Tickets) Update(ctx context.Context, id string, u domain.TicketUpdate) (*domain.Ticket, error) {
	if err := validateID("ticket", id); err != nil {
		return nil, err
	}
	if u.Status != nil && !u.Status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %q", *u.Status)}
	}

	var w ticketWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: "/tickets/" + id, Body: ticketUpdatePayloadFrom(u), Out: &w}); err != nil {
		return nil, asNotFound(err, "ticket", id)
	}
	t := w.toDomain()
	return &t, nil
}

// Close records the solution and moves the ticket to fechado.
// horas <= 0 leaves the time spent unset.
func (a *Tickets) Close(ctx context.Context, id, solucao string, horas float64) (*domain.Ticket, error) {
	if err := validateID("ticket", id); err != nil {
		return nil, err
	}
	payload := ticketClosePayload{SolucaoDescricao: solucao}
	if horas > 0 {
		payload.TempoGastoHoras = &horas
	}

	var w ticketWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/tickets/" + id + "/fechar", Body: payload, Out: &w}); err != nil {
		return nil, asNotFound(err, "ticket", id)
	}
	t := w.toDomain()
	return &t, nil
}

func (a *Tickets) UpdateStatus(ctx context.Context, id string, status domain.TicketStatus) (*domain.Ticket, error) {
	if err := validateID("ticket", id); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %q", status)}
	}

	var w ticketWire
	req := Request{
		Method: http.MethodPatch,
		Path:   "/tickets/" + id + "/status",
		Query:  url.Values{"status": {string(status)}},
		Out:    &w,
	}
	if err := a.c.Do(ctx, req); err != nil {
		return nil, asNotFound(err, "ticket", id)
	}
	t := w.toDomain()
	return &t, nil
}

func (a *Tickets) Delete(ctx context.Context, id string) error {
	if err := validateID("ticket", id); err != nil {
		return err
	}
	if err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: "/tickets/" + id}); err != nil {
		return asNotFound(err, "ticket", id)
	}
	return nil
}

// mergeNewestFirst merges two lists already sorted by DataAbertura
// descending, keeping a's element first on ties.
func mergeNewestFirst(a, b []domain.Ticket) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].DataAbertura.After(a[i].DataAbertura) {
			out = append(out, b[j])
			j++
		} else {
			out = append(out, a[i])
			i++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
