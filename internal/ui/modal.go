package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
)

// ModalTab is a tab of the ticket modal. Only details has content.
type ModalTab string

const (
	TabDetails ModalTab = "details"
	TabHistory ModalTab = "history"
	TabNotes   ModalTab = "notes"
)

// ErrModalClosed is returned by Save when no ticket is open.
var ErrModalClosed = errors.New("ticket modal is not open")

// TicketDraft is the editable copy of a ticket.
type TicketDraft struct {
	Titulo      string              `json:"titulo"`
	Descricao   string              `json:"descricao"`
	CategoriaID string              `json:"categoriaId"`
	ContatoID   string              `json:"contatoId"`
	Status      domain.TicketStatus `json:"status"`
}

func draftOf(t domain.Ticket) TicketDraft {
	return TicketDraft{
		Titulo:      t.Titulo,
		Descricao:   t.Descricao,
		CategoriaID: t.CategoriaID,
		ContatoID:   t.ContatoID,
		Status:      t.Status,
	}
}

// TicketModal edits one ticket through a local draft. The source ticket
// is never mutated; only Save talks to the backend.
type TicketModal struct {
	mu      sync.Mutex
	updater port.TicketUpdater
	source  *domain.Ticket
	draft   TicketDraft
	tab     ModalTab
	err     error
}

func NewTicketModal(updater port.TicketUpdater) *TicketModal {
	return &TicketModal{updater: updater, tab: TabDetails}
}

// Open shows t. The draft is taken from t unless the same ticket is
// already open.
func (m *TicketModal) Open(t domain.Ticket) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.source != nil && m.source.ID == t.ID {
		return
	}
	src := t
	m.source = &src
	m.draft = draftOf(t)
	m.tab = TabDetails
	m.err = nil
}

func (m *TicketModal) IsOpen() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.source != nil
}

// Ticket returns the ticket being edited as it was when opened.
func (m *TicketModal) Ticket() (domain.Ticket, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil {
		return domain.Ticket{}, false
	}
	return *m.source, true
}

func (m *TicketModal) Draft() TicketDraft {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.draft
}

func (m *TicketModal) Tab() ModalTab {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tab
}

// Err is the error of the last failed Save.
func (m *TicketModal) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

func (m *TicketModal) SetTab(tab ModalTab) error {
	switch tab {
	case TabDetails, TabHistory, TabNotes:
	default:
		return &domain.ErrValidation{Field: "tab", Message: fmt.Sprintf("aba inválida: %q", tab)}
	}
	m.mu.Lock()
	m.tab = tab
	m.mu.Unlock()
	return nil
}

func (m *TicketModal) SetTitulo(s string) { m.edit(func(d *TicketDraft) { d.Titulo = s }) }

func (m *TicketModal) SetDescricao(s string) { m.edit(func(d *TicketDraft) { d.Descricao = s }) }

func (m *TicketModal) SetCategoria(id string) { m.edit(func(d *TicketDraft) { d.CategoriaID = id }) }

func (m *TicketModal) SetContato(id string) { m.edit(func(d *TicketDraft) { d.ContatoID = id }) }

func (m *TicketModal) SetStatus(s domain.TicketStatus) error {
	if !s.Valid() {
		return &domain.ErrValidation{Field: "status", Message: fmt.Sprintf("status inválido: %q", s)}
	}
	m.edit(func(d *TicketDraft) { d.Status = s })
	return nil
}

// Changes returns the draft fields that differ from the source ticket.
func (m *TicketModal) Changes() domain.TicketUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.changesLocked()
}

func (m *TicketModal) changesLocked() domain.TicketUpdate {
	var u domain.TicketUpdate
	if m.source == nil {
		return u
	}
	orig := draftOf(*m.source)
	d := m.draft

	if d.Titulo != orig.Titulo {
		v := strings.TrimSpace(d.Titulo)
		u.Titulo = &v
	}
	if d.Descricao != orig.Descricao {
		v := d.Descricao
		u.Descricao = &v
	}
	if d.CategoriaID != orig.CategoriaID {
		v := d.CategoriaID
		u.CategoriaID = &v
	}
	if d.ContatoID != orig.ContatoID {
		v := d.ContatoID
		u.ContatoID = &v
	}
	if d.Status != orig.Status {
		v := d.Status
		u.Status = &v
	}
	return u
}

// Save sends the changed fields. On success the modal closes and the
// updated ticket is returned; with nothing changed it closes without a
// request. On failure the modal stays open holding the error.
func (m *TicketModal) Save(ctx context.Context) (*domain.Ticket, error) {
	m.mu.Lock()
	if m.source == nil {
		m.mu.Unlock()
		return nil, ErrModalClosed
	}
	id := m.source.ID
	u := m.changesLocked()
	if u.IsEmpty() {
		src := *m.source
		m.closeLocked()
		m.mu.Unlock()
		return &src, nil
	}
	if u.Titulo != nil && *u.Titulo == "" {
		err := &domain.ErrValidation{Field: "titulo", Message: "Título é obrigatório"}
		m.err = err
		m.mu.Unlock()
		return nil, err
	}
	m.err = nil
	m.mu.Unlock()

	updated, err := m.updater.Update(ctx, id, u)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil || m.source.ID != id {
		// Closed or switched while saving; the result belongs to nobody.
		return updated, err
	}
	if err != nil {
		m.err = err
		return nil, err
	}
	m.closeLocked()
	return updated, nil
}

// Cancel discards the draft and closes.
func (m *TicketModal) Cancel() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

// Escape closes like Cancel.
func (m *TicketModal) Escape() { m.Cancel() }

// Backdrop closes like Cancel.
func (m *TicketModal) Backdrop() { m.Cancel() }

func (m *TicketModal) edit(fn func(*TicketDraft)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.source == nil {
		return
	}
	fn(&m.draft)
}

func (m *TicketModal) closeLocked() {
	m.source = nil
	m.draft = TicketDraft{}
	m.tab = TabDetails
	m.err = nil
}
