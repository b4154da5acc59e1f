// Package service holds the page controllers of the console. Each page
// owns the lists it loaded, fans its fetches out and waits for all of
// them before deriving anything, and never applies a write locally
// before the backend confirmed it.
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/boddenberg/helpdesk-admin-go/internal/domain"
	"github.com/boddenberg/helpdesk-admin-go/internal/infra/observability"
	"github.com/boddenberg/helpdesk-admin-go/internal/ui"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/pages")

// ErrSuperseded is returned by a load that a newer load of the same page
// replaced. Its results were discarded.
var ErrSuperseded = errors.New("page load superseded by a newer one")

// Page load outcomes recorded in metrics.
const (
	outcomeOK         = "ok"
	outcomeError      = "error"
	outcomeSuperseded = "superseded"
)

// Confirmer asks the operator to confirm a destructive action.
type Confirmer interface {
	Show(ctx context.Context, opts ui.ConfirmOptions) (bool, error)
}

// Notifier shows toasts.
type Notifier interface {
	Success(message string) ui.Toast
	Error(message string) ui.Toast
}

// loadGuard lets only the newest load of a page publish. Starting a load
// cancels the one in flight.
type loadGuard struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

func (g *loadGuard) begin(ctx context.Context) (context.Context, uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.cancel != nil {
		g.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	g.gen++
	g.cancel = cancel
	return ctx, g.gen
}

// commit runs publish if gen is still the newest load and releases its
// context. It reports whether gen was current.
func (g *loadGuard) commit(gen uint64, publish func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if gen != g.gen {
		return false
	}
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	if publish != nil {
		publish()
	}
	return true
}

// stop cancels the load in flight, if any, and discards its result.
func (g *loadGuard) stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancel != nil {
		g.cancel()
		g.cancel = nil
	}
	g.gen++
}

// finishLoad settles a load: it records the outcome and maps a stale
// load to ErrSuperseded.
func finishLoad(g *loadGuard, gen uint64, page string, err error, publish func(), m *observability.Metrics, logger *zap.Logger) error {
	if err != nil {
		if !g.commit(gen, nil) {
			m.IncrPageLoad(page, outcomeSuperseded)
			return ErrSuperseded
		}
		m.IncrPageLoad(page, outcomeError)
		logger.Warn("page load failed", zap.String("page", page), zap.Error(err))
		return err
	}
	if !g.commit(gen, publish) {
		m.IncrPageLoad(page, outcomeSuperseded)
		return ErrSuperseded
	}
	m.IncrPageLoad(page, outcomeOK)
	return nil
}

// reloadFailed reports whether a reload after a write really failed.
func reloadFailed(err error) bool {
	return err != nil && !errors.Is(err, ErrSuperseded)
}

// reportWrite toasts a failed write with the backend detail first.
func reportWrite(n Notifier, err error, fallback string) error {
	if err != nil && n != nil {
		n.Error(domain.UserMessage(err, fallback))
	}
	return err
}

func toast(n Notifier, message string) {
	if n != nil {
		n.Success(message)
	}
}

func nameMap[T any](items []T, key func(T) (string, string)) map[string]string {
	out := make(map[string]string, len(items))
	for _, it := range items {
		id, name := key(it)
		out[id] = name
	}
	return out
}
