// Package pipeline derives the visible ticket list from the in-memory
// list a page loaded: status tab first, then the field filters, then
// pagination. Every step preserves the backend order.
package pipeline

import (
	"fmt"
	"strings"
	"time"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
)

// DateLayout is the day format of the date-range filter.
const DateLayout = "2006-01-02"

// DefaultPageSize is used until the operator picks another size.
const DefaultPageSize = 20

// PageSizes lists the selectable page sizes.
var PageSizes = []int{10, 20, 50, 100}

// ValidPageSize reports whether n is one of PageSizes.
func ValidPageSize(n int) bool {
	for _, size := range PageSizes {
		if size == n {
			return true
		}
	}
	return false
}

// ============================================================
// Field filters
// ============================================================

// Filters are combined with AND. Empty fields match everything.
type Filters struct {
	EmpresaID   string `json:"empresaId,omitempty"`
	Descricao   string `json:"descricao,omitempty"`
	CategoriaID string `json:"categoriaId,omitempty"`
	DataInicio  string `json:"dataInicio,omitempty"` // YYYY-MM-DD, inclusive
	DataFim     string `json:"dataFim,omitempty"`    // YYYY-MM-DD, inclusive
}

// IsZero reports whether no filter is active.
func (f Filters) IsZero() bool {
	return f == Filters{}
}

// Validate checks the date bounds.
func (f Filters) Validate() error {
	bounds := [][2]string{{"dataInicio", f.DataInicio}, {"dataFim", f.DataFim}}
	for _, b := range bounds {
		if b[1] == "" {
			continue
		}
		if _, err := time.Parse(DateLayout, b[1]); err != nil {
			return &domain.ErrValidation{Field: b[0], Message: fmt.Sprintf("data inválida: %q (use AAAA-MM-DD)", b[1])}
		}
	}
	return nil
}

// Matches reports whether t passes every active filter.
func (f Filters) Matches(t domain.Ticket) bool {
	if f.EmpresaID != "" && t.EmpresaID != f.EmpresaID {
		return false
	}
	if f.CategoriaID != "" && t.CategoriaID != f.CategoriaID {
		return false
	}
	if f.Descricao != "" && !strings.Contains(strings.ToLower(t.Descricao), strings.ToLower(f.Descricao)) {
		return false
	}
	if f.DataInicio != "" || f.DataFim != "" {
		// Same-layout day strings compare chronologically.
		day := t.DataAbertura.Format(DateLayout)
		if f.DataInicio != "" && day < f.DataInicio {
			return false
		}
		if f.DataFim != "" && day > f.DataFim {
			return false
		}
	}
	return true
}

// ByTab keeps the tickets whose status equals tab.
func ByTab(tickets []domain.Ticket, tab domain.TicketStatus) []domain.Ticket {
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if t.Status == tab {
			out = append(out, t)
		}
	}
	return out
}

// Filter keeps the tickets that match f.
func Filter(tickets []domain.Ticket, f Filters) []domain.Ticket {
	if f.IsZero() {
		return tickets
	}
	out := make([]domain.Ticket, 0, len(tickets))
	for _, t := range tickets {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// Counts holds the per-status totals shown on the tabs.
type Counts struct {
	Abertos     int `json:"abertos"`
	EmAndamento int `json:"emAndamento"`
	Fechados    int `json:"fechados"`
}

// Of returns the count for one status.
func (c Counts) Of(s domain.TicketStatus) int {
	switch s {
	case domain.StatusAberto:
		return c.Abertos
	case domain.StatusEmAndamento:
		return c.EmAndamento
	case domain.StatusFechado:
		return c.Fechados
	}
	return 0
}

// CountByStatus counts tickets per status.
func CountByStatus(tickets []domain.Ticket) Counts {
	var c Counts
	for _, t := range tickets {
		switch t.Status {
		case domain.StatusAberto:
			c.Abertos++
		case domain.StatusEmAndamento:
			c.EmAndamento++
		case domain.StatusFechado:
			c.Fechados++
		}
	}
	return c
}

// ============================================================
// Pagination
// ============================================================

// Page is one slice of a filtered list.
type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p Page[T]) HasNext() bool { return p.Page < p.TotalPages }

// Paginate slices items into the requested page. Out-of-range pages are
// clamped; an empty list has zero pages and reports page 1.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(items)
	pages := (total + size - 1) / size

	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	if pages == 0 {
		page = 1
	}

	start := (page - 1) * size
	end := start + size
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page[T]{
		Items:      items[start:end],
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// ============================================================
// View state
// ============================================================

// Result is what a page renders.
type Result struct {
	Tab     domain.TicketStatus `json:"tab"`
	Filters Filters             `json:"filters"`
	Counts  Counts              `json:"counts"`
	Page    Page[domain.Ticket] `json:"page"`
}

// View holds the tab, filters and page of a ticket list. Any change
// upstream of pagination resets the page to 1. Not safe for concurrent
// use; page controllers guard it.
type View struct {
	tab      domain.TicketStatus
	filters  Filters
	page     int
	pageSize int
}

// NewView starts on the aberto tab, page 1. An unsupported pageSize falls
// back to DefaultPageSize.
func NewView(pageSize int) *View {
	if !ValidPageSize(pageSize) {
		pageSize = DefaultPageSize
	}
	return &View{tab: domain.StatusAberto, page: 1, pageSize: pageSize}
}

func (v *View) Tab() domain.TicketStatus { return v.tab }
func (v *View) Filters() Filters         { return v.filters }
func (v *View) Page() int                { return v.page }
func (v *View) PageSize() int            { return v.pageSize }

// SetTab switches the active status tab.
func (v *View) SetTab(tab domain.TicketStatus) error {
	if !tab.Valid() {
		return &domain.ErrValidation{Field: "tab", Message: fmt.Sprintf("aba inválida: %q", tab)}
	}
	v.tab = tab
	v.page = 1
	return nil
}

// SetFilters replaces the field filters.
func (v *View) SetFilters(f Filters) error {
	if err := f.Validate(); err != nil {
		return err
	}
	v.filters = f
	v.page = 1
	return nil
}

// SetPageSize picks one of PageSizes.
func (v *View) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return &domain.ErrValidation{Field: "pageSize", Message: fmt.Sprintf("tamanho de página inválido: %d", n)}
	}
	v.pageSize = n
	v.page = 1
	return nil
}

// SetPage moves to page n; Apply clamps it to the available range.
func (v *View) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	v.page = n
}

// Apply runs the pipeline over tickets. Counts cover the unfiltered list.
// The stored page is clamped to what the result actually has.
func (v *View) Apply(tickets []domain.Ticket) Result {
	visible := Filter(ByTab(tickets, v.tab), v.filters)
	page := Paginate(visible, v.page, v.pageSize)
	v.page = page.Page

	return Result{
		Tab:     v.tab,
		Filters: v.filters,
		Counts:  CountByStatus(tickets),
		Page:    page,
	}
}
