package service

import (
	"context"
	"strings"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const pageContatos = "contatos"

// ContatosView is what the contacts page renders.
type ContatosView struct {
	EmpresaID    string            `json:"empresaId,omitempty"`
	Contatos     []domain.Contato  `json:"contatos"`
	EmpresaNomes map[string]string `json:"empresaNomes"`
}

// ContatosPage lists contacts, optionally of one company, and edits them.
type ContatosPage struct {
	contatos port.ContatoStore
	empresas port.EmpresaStore
	confirm  Confirmer
	toaster  Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	guard     loadGuard
	mu        sync.RWMutex
	empresaID string
	view      ContatosView
}

func NewContatosPage(contatos port.ContatoStore, empresas port.EmpresaStore, confirm Confirmer, toaster Notifier, metrics *observability.Metrics, logger *zap.Logger) *ContatosPage {
	return &ContatosPage{
		contatos: contatos,
		empresas: empresas,
		confirm:  confirm,
		toaster:  toaster,
		metrics:  metrics,
		logger:   logger,
		view:     ContatosView{EmpresaNomes: map[string]string{}},
	}
}

// Load fetches the contacts (of empresaID when set) and the companies
// used to name them.
func (p *ContatosPage) Load(ctx context.Context, empresaID string) (*ContatosView, error) {
	ctx, span := tracer.Start(ctx, "ContatosPage.Load")
	defer span.End()

	empresaID = strings.TrimSpace(empresaID)
	ctx, gen := p.guard.begin(ctx)

	var (
		contatos []domain.Contato
		empresas []domain.Empresa
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if empresaID != "" {
			contatos, err = p.contatos.ListByEmpresa(gctx, empresaID)
		} else {
			contatos, err = p.contatos.List(gctx)
		}
		return err
	})
	g.Go(func() error {
		var err error
		empresas, err = p.empresas.List(gctx)
		return err
	})
	err := g.Wait()

	err = finishLoad(&p.guard, gen, pageContatos, err, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.empresaID = empresaID
		p.view = ContatosView{
			EmpresaID:    empresaID,
			Contatos:     contatos,
			EmpresaNomes: nameMap(empresas, func(e domain.Empresa) (string, string) { return e.ID, e.Nome }),
		}
	}, p.metrics, p.logger)
	if err != nil {
		return nil, err
	}
	return p.View(), nil
}

func (p *ContatosPage) View() *ContatosView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v := p.view
	return &v
}

func (p *ContatosPage) Create(ctx context.Context, in domain.ContatoInput) (*domain.Contato, error) {
	if err := validateContato(in, true); err != nil {
		return nil, err
	}
	created, err := p.contatos.Create(ctx, in)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar contato")
	}
	toast(p.toaster, "Contato criado")
	p.reload(ctx)
	return created, nil
}

func (p *ContatosPage) Update(ctx context.Context, id string, patch domain.ContatoInput) (*domain.Contato, error) {
	if err := validateContato(patch, false); err != nil {
		return nil, err
	}
	updated, err := p.contatos.Update(ctx, id, patch)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar contato")
	}
	toast(p.toaster, "Contato atualizado")
	p.reload(ctx)
	return updated, nil
}

// Delete asks for confirmation and deletes the contact.
func (p *ContatosPage) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := p.confirm.Show(ctx, ui.ConfirmOptions{
		Title:       "Deletar Contato",
		Message:     "Tem certeza que deseja deletar este contato?",
		ConfirmText: "Deletar",
		Dangerous:   true,
	})
	if err != nil || !ok {
		return false, err
	}
	if err := p.contatos.Delete(ctx, id); err != nil {
		return false, reportWrite(p.toaster, err, "Erro ao deletar contato")
	}
	toast(p.toaster, "Contato deletado")
	p.reload(ctx)
	return true, nil
}

func (p *ContatosPage) reload(ctx context.Context) {
	p.mu.RLock()
	empresaID := p.empresaID
	p.mu.RUnlock()

	if _, err := p.Load(ctx, empresaID); reloadFailed(err) {
		p.logger.Warn("contatos reload after write failed", zap.Error(err))
	}
}

func (p *ContatosPage) Close() {
	p.guard.stop()
}
