package apiclient

import (
	"context"
	"net/http"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

// DefaultCor is the tag color the backend assigns when none is given.
const DefaultCor = "#3B82F6"

type categoriaWire struct {
	ID        string  `json:"id"`
	Nome      string  `json:"nome"`
	Descricao *string `json:"descricao"`
	CorTag    string  `json:"cor_tag"`
	Icone     *string `json:"icone"`
	Ordem     int     `json:"ordem"`
	Ativo     bool    `json:"ativo"`
}

type categoriaPayload struct {
	Nome      *string `json:"nome,omitempty"`
	Descricao *string `json:"descricao,omitempty"`
	CorTag    *string `json:"cor_tag,omitempty"`
	Icone     *string `json:"icone,omitempty"`
	Ordem     *int    `json:"ordem,omitempty"`
}

func (w categoriaWire) toDomain() domain.Categoria {
	cor := w.CorTag
	if cor == "" {
		cor = DefaultCor
	}
	return domain.Categoria{
		ID:        w.ID,
		Nome:      w.Nome,
		Descricao: str(w.Descricao),
		Cor:       cor,
		Icone:     str(w.Icone),
		Ordem:     w.Ordem,
		Status:    statusFromAtivo(w.Ativo),
	}
}

func categoriaPayloadFrom(in domain.CategoriaInput) categoriaPayload {
	return categoriaPayload{
		Nome:      in.Nome,
		Descricao: in.Descricao,
		CorTag:    in.Cor,
		Icone:     in.Icone,
		Ordem:     in.Ordem,
	}
}

// Categorias is the service category adapter.
type Categorias struct {
	c *Client
}

// NewCategorias creates the category adapter.
func NewCategorias(c *Client) *Categorias {
	return &Categorias{c: c}
}

// List returns active categories ordered by their ordem field.
func (a *Categorias) List(ctx context.Context) ([]domain.Categoria, error) {
	var rows []categoriaWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/categorias", Out: &rows}); err != nil {
		return nil, err
	}
	out := make([]domain.Categoria, 0, len(rows))
	for _, w := range rows {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// Get looks the category up in the list; the backend has no item route.
func (a *Categorias) Get(ctx context.Context, id string) (*domain.Categoria, error) {
	if err := validateID("categoria", id); err != nil {
		return nil, err
	}
	all, err := a.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, &domain.ErrNotFound{Resource: "categoria", ID: id}
}

func (a *Categorias) Create(ctx context.Context, in domain.CategoriaInput) (*domain.Categoria, error) {
	var w categoriaWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/categorias", Body: categoriaPayloadFrom(in), Out: &w}); err != nil {
		return nil, err
	}
	cat := w.toDomain()
	return &cat, nil
}

func (a *Categorias) Update(ctx context.Context, id string, patch domain.CategoriaInput) (*domain.Categoria, error) {
	if err := validateID("categoria", id); err != nil {
		return nil, err
	}
	var w categoriaWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: "/categorias/" + id, Body: categoriaPayloadFrom(patch), Out: &w}); err != nil {
		return nil, asNotFound(err, "categoria", id)
	}
	cat := w.toDomain()
	return &cat, nil
}

func (a *Categorias) Delete(ctx context.Context, id string) error {
	if err := validateID("categoria", id); err != nil {
		return err
	}
	if err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: "/categorias/" + id}); err != nil {
		return asNotFound(err, "categoria", id)
	}
	return nil
}
