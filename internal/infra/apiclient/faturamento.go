package apiclient

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

const faturamentoPageLimit = 1000

type faturamentoItemWire struct {
	ID               string    `json:"id"`
	TicketID         string    `json:"ticket_id"`
	EmpresaID        string    `json:"empresa_id"`
	TicketNumero     string    `json:"ticket_numero"`
	TicketTitulo     string    `json:"ticket_titulo"`
	TicketDescricao  string    `json:"ticket_descricao"`
	CategoriaNome    *string   `json:"categoria_nome"`
	EmpresaNome      *string   `json:"empresa_nome"`
	DataTicket       wireTime  `json:"data_ticket"`
	Valor            money     `json:"valor"`
	Descricao        *string   `json:"descricao"`
	MesReferencia    string    `json:"mes_referencia"`
	Faturado         bool      `json:"faturado"`
	DataFaturacao    *wireTime `json:"data_faturacao"`
	NumeroNotaFiscal *string   `json:"numero_nota_fiscal"`
}

type faturamentoResumoWire struct {
	MesReferencia    string `json:"mes_referencia"`
	TotalRegistros   int    `json:"total_registros"`
	SubtotalPendente money  `json:"subtotal_pendente"`
	SubtotalFaturado money  `json:"subtotal_faturado"`
	TotalGeral       money  `json:"total_geral"`
}

type faturamentoExportWire struct {
	MesReferencia string                `json:"mes_referencia"`
	Total         int                   `json:"total"`
	Items         []faturamentoItemWire `json:"items"`
}

type faturamentoCreatePayload struct {
	TicketID         string  `json:"ticket_id"`
	EmpresaID        string  `json:"empresa_id"`
	Valor            float64 `json:"valor"`
	Descricao        string  `json:"descricao,omitempty"`
	MesReferencia    string  `json:"mes_referencia"`
	Faturado         *bool   `json:"faturado,omitempty"`
	NumeroNotaFiscal string  `json:"numero_nota_fiscal,omitempty"`
}

type faturamentoUpdatePayload struct {
	Valor            *float64 `json:"valor,omitempty"`
	Descricao        *string  `json:"descricao,omitempty"`
	MesReferencia    *string  `json:"mes_referencia,omitempty"`
	Faturado         *bool    `json:"faturado,omitempty"`
	NumeroNotaFiscal *string  `json:"numero_nota_fiscal,omitempty"`
}

func (w faturamentoItemWire) toDomain() domain.FaturamentoItem {
	return domain.FaturamentoItem{
		ID:               w.ID,
		TicketID:         w.TicketID,
		EmpresaID:        w.EmpresaID,
		TicketNumero:     w.TicketNumero,
		TicketTitulo:     w.TicketTitulo,
		TicketDescricao:  w.TicketDescricao,
		CategoriaNome:    str(w.CategoriaNome),
		EmpresaNome:      str(w.EmpresaNome),
		DataTicket:       w.DataTicket.Time,
		Valor:            float64(w.Valor),
		Descricao:        str(w.Descricao),
		MesReferencia:    w.MesReferencia,
		Faturado:         w.Faturado,
		DataFaturacao:    w.DataFaturacao.ptr(),
		NumeroNotaFiscal: str(w.NumeroNotaFiscal),
	}
}

func (w faturamentoResumoWire) toDomain() domain.FaturamentoResumo {
	return domain.FaturamentoResumo{
		MesReferencia:    w.MesReferencia,
		TotalRegistros:   w.TotalRegistros,
		SubtotalPendente: float64(w.SubtotalPendente),
		SubtotalFaturado: float64(w.SubtotalFaturado),
		TotalGeral:       float64(w.TotalGeral),
	}
}

// Faturamento is the billing adapter.
type Faturamento struct {
	c *Client
}

// NewFaturamento creates the billing adapter.
func NewFaturamento(c *Client) *Faturamento {
	return &Faturamento{c: c}
}

func filterQuery(f domain.FaturamentoFilter, withFaturado bool) (url.Values, error) {
	q := url.Values{}
	if f.MesReferencia != "" {
		if !domain.ValidMesReferencia(f.MesReferencia) {
			return nil, &domain.ErrValidation{Field: "mesReferencia", Message: "Mês de referência deve estar no formato AAAA-MM"}
		}
		q.Set("mes_referencia", f.MesReferencia)
	}
	if f.EmpresaID != "" {
		if err := validateID("empresa", f.EmpresaID); err != nil {
			return nil, err
		}
		q.Set("empresa_id", f.EmpresaID)
	}
	if withFaturado && f.Faturado != nil {
		q.Set("faturado", strconv.FormatBool(*f.Faturado))
	}
	return q, nil
}

// List returns the billing lines of a period. An empty month means the
// backend's current month.
func (a *Faturamento) List(ctx context.Context, f domain.FaturamentoFilter) ([]domain.FaturamentoItem, error) {
	q, err := filterQuery(f, true)
	if err != nil {
		return nil, err
	}
	rows, err := listAll[faturamentoItemWire](ctx, a.c, "/faturamento", q, faturamentoPageLimit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.FaturamentoItem, 0, len(rows))
	for _, w := range rows {
		out = append(out, w.toDomain())
	}
	return out, nil
}

// Resumo returns the period totals. The invoiced filter does not apply.
func (a *Faturamento) Resumo(ctx context.Context, f domain.FaturamentoFilter) (*domain.FaturamentoResumo, error) {
	q, err := filterQuery(f, false)
	if err != nil {
		return nil, err
	}
	var w faturamentoResumoWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/faturamento/resumo", Query: q, Out: &w}); err != nil {
		return nil, err
	}
	r := w.toDomain()
	return &r, nil
}

func (a *Faturamento) Create(ctx context.Context, in domain.FaturamentoCreateInput) (*domain.FaturamentoItem, error) {
	if err := validateID("ticket", in.TicketID); err != nil {
		return nil, err
	}
	if err := validateID("empresa", in.EmpresaID); err != nil {
		return nil, err
	}
	if in.Valor <= 0 {
		return nil, &domain.ErrValidation{Field: "valor", Message: "Valor deve ser maior que zero"}
	}
	if !domain.ValidMesReferencia(in.MesReferencia) {
		return nil, &domain.ErrValidation{Field: "mesReferencia", Message: "Mês de referência deve estar no formato AAAA-MM"}
	}

	payload := faturamentoCreatePayload{
		TicketID:         in.TicketID,
		EmpresaID:        in.EmpresaID,
		Valor:            in.Valor,
		Descricao:        in.Descricao,
		MesReferencia:    in.MesReferencia,
		Faturado:         in.Faturado,
		NumeroNotaFiscal: in.NumeroNotaFiscal,
	}
	var w faturamentoItemWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPost, Path: "/faturamento", Body: payload, Out: &w}); err != nil {
		return nil, err
	}
	item := w.toDomain()
	return &item, nil
}

func (a *Faturamento) Update(ctx context.Context, id string, u domain.FaturamentoUpdate) (*domain.FaturamentoItem, error) {
	if err := validateID("faturamento", id); err != nil {
		return nil, err
	}
	if u.Valor != nil && *u.Valor <= 0 {
		return nil, &domain.ErrValidation{Field: "valor", Message: "Valor deve ser maior que zero"}
	}
	if u.MesReferencia != nil && !domain.ValidMesReferencia(*u.MesReferencia) {
		return nil, &domain.ErrValidation{Field: "mesReferencia", Message: "Mês de referência deve estar no formato AAAA-MM"}
	}

	payload := faturamentoUpdatePayload{
		Valor:            u.Valor,
		Descricao:        u.Descricao,
		MesReferencia:    u.MesReferencia,
		Faturado:         u.Faturado,
		NumeroNotaFiscal: u.NumeroNotaFiscal,
	}
	var w faturamentoItemWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPut, Path: "/faturamento/" + id, Body: payload, Out: &w}); err != nil {
		return nil, asNotFound(err, "faturamento", id)
	}
	item := w.toDomain()
	return &item, nil
}

// UpdateStatus toggles the invoiced flag. The backend replaces the
// invoice number with numeroNF, so an empty value clears it.
func (a *Faturamento) UpdateStatus(ctx context.Context, id string, faturado bool, numeroNF string) (*domain.FaturamentoItem, error) {
	if err := validateID("faturamento", id); err != nil {
		return nil, err
	}
	q := url.Values{"faturado": {strconv.FormatBool(faturado)}}
	if numeroNF != "" {
		q.Set("numero_nota_fiscal", numeroNF)
	}

	var w faturamentoItemWire
	if err := a.c.Do(ctx, Request{Method: http.MethodPatch, Path: "/faturamento/" + id + "/status", Query: q, Out: &w}); err != nil {
		return nil, asNotFound(err, "faturamento", id)
	}
	item := w.toDomain()
	return &item, nil
}

func (a *Faturamento) Delete(ctx context.Context, id string) error {
	if err := validateID("faturamento", id); err != nil {
		return err
	}
	if err := a.c.Do(ctx, Request{Method: http.MethodDelete, Path: "/faturamento/" + id}); err != nil {
		return asNotFound(err, "faturamento", id)
	}
	return nil
}

// ExportCSV returns the CSV export and its file name.
func (a *Faturamento) ExportCSV(ctx context.Context, f domain.FaturamentoFilter) ([]byte, string, error) {
	q, err := filterQuery(f, true)
	if err != nil {
		return nil, "", err
	}
	data, filename, err := a.c.Download(ctx, "/faturamento/export/csv", q)
	if err != nil {
		return nil, "", err
	}
	if filename == "" {
		filename = domain.ExportFilename(f.MesReferencia, "csv")
	}
	return data, filename, nil
}

// ExportJSON returns the JSON export of the period.
func (a *Faturamento) ExportJSON(ctx context.Context, f domain.FaturamentoFilter) (*domain.FaturamentoExport, error) {
	q, err := filterQuery(f, true)
	if err != nil {
		return nil, err
	}
	var w faturamentoExportWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/faturamento/export/json", Query: q, Out: &w}); err != nil {
		return nil, err
	}

	out := &domain.FaturamentoExport{
		MesReferencia: w.MesReferencia,
		Total:         w.Total,
		Items:         make([]domain.FaturamentoItem, 0, len(w.Items)),
	}
	for _, item := range w.Items {
		out.Items = append(out.Items, item.toDomain())
	}
	return out, nil
}
