package apiclient

import (
	"context"
	"net/http"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

// fechados already includes the backend's resolvido tickets.
type dashboardResumoWire struct {
	Abertos     int   `json:"abertos"`
	EmAndamento int   `json:"em_andamento"`
	Fechados    int   `json:"fechados"`
	TicketsHoje int   `json:"tickets_hoje"`
	FaturadoMes money `json:"faturado_mes"`
	FaturadoYTD money `json:"faturado_ytd"`
}

// Dashboard is the dashboard summary adapter.
type Dashboard struct {
	c *Client
}

// NewDashboard creates the dashboard adapter.
func NewDashboard(c *Client) *Dashboard {
	return &Dashboard{c: c}
}

func (a *Dashboard) Resumo(ctx context.Context) (*domain.DashboardStats, error) {
	var w dashboardResumoWire
	if err := a.c.Do(ctx, Request{Method: http.MethodGet, Path: "/dashboard/resumo", Out: &w}); err != nil {
		return nil, err
	}
	return &domain.DashboardStats{
		TicketsAbertos:     w.Abertos,
		TicketsEmAndamento: w.EmAndamento,
		TicketsFechados:    w.Fechados,
		TicketsHoje:        w.TicketsHoje,
		FaturadoMes:        float64(w.FaturadoMes),
		FaturadoYTD:        float64(w.FaturadoYTD),
	}, nil
}
