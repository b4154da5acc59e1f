package domain

import "fmt"

// TicketStatus is the three-way status the console works with.
// The backend "resolvido" status is folded into StatusFechado by the
// ticket adapter.
type TicketStatus string

const (
	StatusAberto      TicketStatus = "aberto"
	StatusEmAndamento TicketStatus = "em_andamento"
	StatusFechado     TicketStatus = "fechado"
)

// TicketStatuses lists the statuses in tab order.
var TicketStatuses = []TicketStatus{StatusAberto, StatusEmAndamento, StatusFechado}

// ParseTicketStatus accepts the three console statuses. Tab aliases used
// by the CLI ("abertos", "fechados") are accepted too.
func ParseTicketStatus(s string) (TicketStatus, error) {
	switch s {
	case "aberto", "abertos":
		return StatusAberto, nil
	case "em_andamento", "andamento":
		return StatusEmAndamento, nil
	case "fechado", "fechados":
		return StatusFechado, nil
	}
	return "", &ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %q", s)}
}

// Valid reports whether s is one of the three console statuses.
func (s TicketStatus) Valid() bool {
	switch s {
	case StatusAberto, StatusEmAndamento, StatusFechado:
		return true
	}
	return false
}

// Label returns the human-readable label.
func (s TicketStatus) Label() string {
	switch s {
	case StatusAberto:
		return "Aberto"
	case StatusEmAndamento:
		return "Em Andamento"
	case StatusFechado:
		return "Fechado"
	}
	return string(s)
}

// Color returns the terminal color used for the status badge.
func (s TicketStatus) Color() string {
	switch s {
	case StatusAberto:
		return "#F87171" // red
	case StatusEmAndamento:
		return "#FACC15" // yellow
	case StatusFechado:
		return "#4ADE80" // green
	}
	return "#9CA3AF"
}
