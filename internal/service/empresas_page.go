package service

import (
	"context"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/port"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.uber.org/zap"
)

const pageEmpresas = "empresas"

// EmpresasPage lists and edits client companies.
type EmpresasPage struct {
	empresas port.EmpresaStore
	confirm  Confirmer
	toaster  Notifier
	metrics  *observability.Metrics
	logger   *zap.Logger

	guard loadGuard
	mu    sync.RWMutex
	items []domain.Empresa
}

func NewEmpresasPage(empresas port.EmpresaStore, confirm Confirmer, toaster Notifier, metrics *observability.Metrics, logger *zap.Logger) *EmpresasPage {
	return &EmpresasPage{
		empresas: empresas,
		confirm:  confirm,
		toaster:  toaster,
		metrics:  metrics,
		logger:   logger,
	}
}

func (p *EmpresasPage) Load(ctx context.Context) ([]domain.Empresa, error) {
	ctx, span := tracer.Start(ctx, "EmpresasPage.Load")
	defer span.End()

	ctx, gen := p.guard.begin(ctx)
	items, err := p.empresas.List(ctx)

	err = finishLoad(&p.guard, gen, pageEmpresas, err, func() {
		p.mu.Lock()
		p.items = items
		p.mu.Unlock()
	}, p.metrics, p.logger)
	if err != nil {
		return nil, err
	}
	return p.Items(), nil
}

// Items returns the companies of the last successful load.
func (p *EmpresasPage) Items() []domain.Empresa {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.items
}

func (p *EmpresasPage) Create(ctx context.Context, in domain.EmpresaInput) (*domain.Empresa, error) {
	if err := validateEmpresa(in, true); err != nil {
		return nil, err
	}
	created, err := p.empresas.Create(ctx, in)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar empresa")
	}
	toast(p.toaster, "Empresa criada")
	p.reload(ctx)
	return created, nil
}

func (p *EmpresasPage) Update(ctx context.Context, id string, patch domain.EmpresaInput) (*domain.Empresa, error) {
	if err := validateEmpresa(patch, false); err != nil {
		return nil, err
	}
	updated, err := p.empresas.Update(ctx, id, patch)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar empresa")
	}
	toast(p.toaster, "Empresa atualizada")
	p.reload(ctx)
	return updated, nil
}

// Delete asks for confirmation and deletes the company.
func (p *EmpresasPage) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := p.confirm.Show(ctx, ui.ConfirmOptions{
		Title:       "Deletar Empresa",
		Message:     "Tem certeza que deseja deletar esta empresa? Esta ação não pode ser desfeita.",
		ConfirmText: "Deletar",
		Dangerous:   true,
	})
	if err != nil || !ok {
		return false, err
	}
	if err := p.empresas.Delete(ctx, id); err != nil {
		return false, reportWrite(p.toaster, err, "Erro ao deletar empresa")
	}
	toast(p.toaster, "Empresa deletada")
	p.reload(ctx)
	return true, nil
}

func (p *EmpresasPage) reload(ctx context.Context) {
	if _, err := p.Load(ctx); reloadFailed(err) {
		p.logger.Warn("empresas reload after write failed", zap.Error(err))
	}
}

func (p *EmpresasPage) Close() {
	p.guard.stop()
}
