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

const pageCategorias = "categorias"

// CategoriasPage lists and edits service categories.
type CategoriasPage struct {
	categorias port.CategoriaStore
	confirm    Confirmer
	toaster    Notifier
	metrics    *observability.Metrics
	logger     *zap.Logger

	guard loadGuard
	mu    sync.RWMutex
	items []domain.Categoria
}

func NewCategoriasPage(categorias port.CategoriaStore, confirm Confirmer, toaster Notifier, metrics *observability.Metrics, logger *zap.Logger) *CategoriasPage {
	return &CategoriasPage{
		categorias: categorias,
		confirm:    confirm,
		toaster:    toaster,
		metrics:    metrics,
		logger:     logger,
	}
}

func (p *CategoriasPage) Load(ctx context.Context) ([]domain.Categoria, error) {
	ctx, span := tracer.Start(ctx, "CategoriasPage.Load")
	defer span.End()

	ctx, gen := p.guard.begin(ctx)
	items, err := p.categorias.List(ctx)

	err = finishLoad(&p.guard, gen, pageCategorias, err, func() {
		p.mu.Lock()
		p.items = items
		p.mu.Unlock()
	}, p.metrics, p.logger)
	if err != nil {
		return nil, err
	}
	return p.Items(), nil
}

func (p *CategoriasPage) Items() []domain.Categoria {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.items
}

func (p *CategoriasPage) Create(ctx context.Context, in domain.CategoriaInput) (*domain.Categoria, error) {
	if err := validateCategoria(in, true); err != nil {
		return nil, err
	}
	created, err := p.categorias.Create(ctx, in)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar categoria")
	}
	toast(p.toaster, "Categoria criada")
	p.reload(ctx)
	return created, nil
}

func (p *CategoriasPage) Update(ctx context.Context, id string, patch domain.CategoriaInput) (*domain.Categoria, error) {
	if err := validateCategoria(patch, false); err != nil {
		return nil, err
	}
	updated, err := p.categorias.Update(ctx, id, patch)
	if err != nil {
		return nil, reportWrite(p.toaster, err, "Erro ao salvar categoria")
	}
	toast(p.toaster, "Categoria atualizada")
	p.reload(ctx)
	return updated, nil
}

// Delete asks for confirmation and deletes the category.
func (p *CategoriasPage) Delete(ctx context.Context, id string) (bool, error) {
	ok, err := p.confirm.Show(ctx, ui.ConfirmOptions{
		Title:       "Deletar Categoria",
		Message:     "Tem certeza que deseja deletar esta categoria?",
		ConfirmText: "Deletar",
		Dangerous:   true,
	})
	if err != nil || !ok {
		return false, err
	}
	if err := p.categorias.Delete(ctx, id); err != nil {
		return false, reportWrite(p.toaster, err, "Erro ao deletar categoria")
	}
	toast(p.toaster, "Categoria deletada")
	p.reload(ctx)
	return true, nil
}

func (p *CategoriasPage) reload(ctx context.Context) {
	if _, err := p.Load(ctx); reloadFailed(err) {
		p.logger.Warn("categorias reload after write failed", zap.Error(err))
	}
}

func (p *CategoriasPage) Close() {
	p.guard.stop()
}
