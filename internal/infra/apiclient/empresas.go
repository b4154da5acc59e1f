package apiclient

import (
	"context"
	"net/http"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

const empresasPageLimit = 500

type empresaWire struct {
	ID                 string   `json:"id"`
	Nome               string   `json:"nome"`
	CNPJ               *string  `json:"cnpj"`
	Telefone           *string  `json:"telefone"`
	Email              *string  `json:"email"`
	Endereco           *string  `json:"endereco"`
	ContatoPrincipalID *string  `json:"contato_principal_id"`
	Ativo              bool     `json:"ativo"`
	DataCriacao        wireTime `json:"data_criacao"`
}

type empresaPayload struct {
	Nome               *string `json:"nome,omitempty"`
	CNPJ               *string `json:"cnpj,omitempty"`
	Telefone           *string `json:"telefone,omitempty"`
	Email              *string `json:"email,omitempty"`
	Endereco           *string `json:"endereco,omitempty"`
	ContatoPrincipalID *string `json:"contato_principal_id,omitempty"`
}

func (w empresaWire) toDomain() domain.Empresa {
	return domain.Empresa{
		ID:                 w.ID,
		Nome:               w.Nome,
		CNPJ:               str(w.CNPJ),
		Email:              str(w.Email),
		Telefone:           str(w.Telefone),
		Endereco:           str(w.Endereco),
		ContatoPrincipalID: str(w.ContatoPrincipalID),
		Status:             statusFromAtivo(w.Ativo),
		CreatedAt:          w.DataCriacao.Time,
	}
}

func empresaPayloadFrom(in domain.EmpresaInput) empresaPayload {
	return empresaPayload{
		Nome:               in.Nome,
		CNPJ:               in.CNPJ,
		Telefone:           in.Telefone,
		Email:              in.Email,
		Endereco:           in.Endereco,
		ContatoPrincipalID: in.ContatoPrincipalID,
	}
}

// Empresas is the company adapter.
type Empresas struct {
	c *Client
}

// NewEmpresas creates the company adapter.
func NewEmpresas(c *Client) *Empresas {
	return &Empresas{c: c}
}

// List returns every active company.
func (a *Empresas) List(ctx context.Context) ([]domain.Empresa, error) {
	rows, err := listAll[empresaWire](ctx, a.c, "/empresas", nil, empresasPageLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Empresa, 0, len(rows))
	for _, w := range rows {
		out = append(out, w.toDomain())
	}
	return out, nil
}

func (a *Empresas) Get(ctx context.Context, id string) (*domain.Empresa, error) {
	if err := validateID("empresa", id); err != nil {
		return nil, err
	}
	var w empresaWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/empresas/" + id, Out: &w}); err != nil {
		return nil, asNotFound(err, "empresa", id)
	}
	e := w.toDomain()
	return &e, nil
}

// Create ignores ContatoPrincipalID: a new company has no contacts yet.
func (a *Empresas) Create(ctx context.Context, in domain.EmpresaInput) (*domain.Empresa, error) {
	payload := empresaPayloadFrom(in)
	payload.ContatoPrincipalID = nil

	var w empresaWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/empresas", Body: payload, Out: &w}); err != nil {
		return nil, err
	}
	e := w.toDomain()
	return &e, nil
}

func (a *Empresas) Update(ctx context.Context, id string, patch domain.EmpresaInput) (*domain.Empresa, error) {
	if err := validateID("empresa", id); err != nil {
		return nil, err
	}
	if patch.ContatoPrincipalID != nil && *patch.ContatoPrincipalID != "" {
		if err := validateID("contato_principal", *patch.ContatoPrincipalID); err != nil {
			return nil, err
		}
	}

	var w empresaWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: "/empresas/" + id, Body: empresaPayloadFrom(patch), Out: &w}); err != nil {
		return nil, asNotFound(err, "empresa", id)
	}
	e := w.toDomain()
	return &e, nil
}

func (a *Empresas) Delete(ctx context.Context, id string) error {
	if err := validateID("empresa", id); err != nil {
		return err
	}
	if err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: "/empresas/" + id}); err != nil {
		return asNotFound(err, "empresa", id)
	}
	return nil
}
