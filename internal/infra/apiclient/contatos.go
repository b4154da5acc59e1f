package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

const contatosPageLimit = 100

type contatoWire struct {
	ID              string   `json:"id"`
	EmpresaID       string   `json:"empresa_id"`
	Nome            string   `json:"nome"`
	Email           *string  `json:"email"`
	Telefone        *string  `json:"telefone"`
	Cargo           *string  `json:"cargo"`
	Departamento    *string  `json:"departamento"`
	Principal       bool     `json:"principal"`
	Ativo           bool     `json:"ativo"`
	DataCriacao     wireTime `json:"data_criacao"`
	DataAtualizacao wireTime `json:"data_atualizacao"`
}

type contatoPayload struct {
	EmpresaID    *string `json:"empresa_id,omitempty"`
	Nome         *string `json:"nome,omitempty"`
	Email        *string `json:"email,omitempty"`
	Telefone     *string `json:"telefone,omitempty"`
	Cargo        *string `json:"cargo,omitempty"`
	Departamento *string `json:"departamento,omitempty"`
	Principal    *bool   `json:"principal,omitempty"`
}

func (w contatoWire) toDomain() domain.Contato {
	return domain.Contato{
		ID:           w.ID,
		EmpresaID:    w.EmpresaID,
		Nome:         w.Nome,
		Email:        str(w.Email),
		Telefone:     str(w.Telefone),
		Cargo:        str(w.Cargo),
		Departamento: str(w.Departamento),
		Principal:    w.Principal,
		Status:       statusFromAtivo(w.Ativo),
		CreatedAt:    w.DataCriacao.Time,
		UpdatedAt:    w.DataAtualizacao.Time,
	}
}

func contatoPayloadFrom(in domain.ContatoInput) contatoPayload {
	return contatoPayload{
		EmpresaID:    in.EmpresaID,
		Nome:         in.Nome,
		Email:        in.Email,
		Telefone:     in.Telefone,
		Cargo:        in.Cargo,
		Departamento: in.Departamento,
		Principal:    in.Principal,
	}
}

// Contatos is the contact adapter.
type Contatos struct {
	c *Client
}

// NewContatos creates the contact adapter.
func NewContatos(c *Client) *Contatos {
	return &Contatos{c: c}
}

// List returns every active contact.
func (a *Contatos) List(ctx context.Context) ([]domain.Contato, error) {
	return a.list(ctx, nil)
}

// ListByEmpresa returns the contacts of one company.
func (a *Contatos) ListByEmpresa(ctx context.Context, empresaID string) ([]domain.Contato, error) {
	if err := validateID("empresa", empresaID); err != nil {
		return nil, err
	}
	return a.list(ctx, url.Values{"empresa_id": {empresaID}})
}

func (a *Contatos) list(ctx context.Context, query url.Values) ([]domain.Contato, error) {
	rows, err := listAll[contatoWire](ctx, a.c, "/contatos", query, contatosPageLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Contato, 0, len(rows))
	for _, w := range rows {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (a *Contatos) Get(ctx context.Context, id string) (*domain.Contato, error) {
	if err := validateID("contato", id); err != nil {
		return nil, err
	}
	var w contatoWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/contatos/" + id, Out: &w}); err != nil {
		return nil, asNotFound(err, "contato", id)
	}
	ct := w.toDomain()
	return &ct, nil
}

func (a *Contatos) Create(ctx context.Context, in domain.ContatoInput) (*domain.Contato, error) {
	if in.EmpresaID == nil {
		return nil, &domain.ErrValidation{Field: "empresa_id", Message: "Empresa é obrigatória"}
	}
	if err := validateID("empresa", *in.EmpresaID); err != nil {
		return nil, err
	}

	var w contatoWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/contatos", Body: contatoPayloadFrom(in), Out: &w}); err != nil {
		return nil, err
	}
	ct := w.toDomain()
	return &ct, nil
}

// Update never moves a contact to another company.
func (a *Contatos) Update(ctx context.Context, id string, patch domain.ContatoInput) (*domain.Contato, error) {
	if err := validateID("contato", id); err != nil {
		return nil, err
	}
	payload := contatoPayloadFrom(patch)
	payload.EmpresaID = nil

	var w contatoWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: "/contatos/" + id, Body: payload, Out: &w}); err != nil {
		return nil, asNotFound(err, "contato", id)
	}
	ct := w.toDomain()
	return &ct, nil
}

func (a *Contatos) Delete(ctx context.Context, id string) error {
	if err := validateID("contato", id); err != nil {
		return err
	}
	if err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: "/contatos/" + id}); err != nil {
		return asNotFound(err, "contato", id)
	}
	return nil
}
