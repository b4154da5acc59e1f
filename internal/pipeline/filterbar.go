package pipeline

import (
	"strings"
	"sync"
	"time"
)

// FilterBar holds the filter inputs and reports them to the page after
// the debounce window. Only the last edit within the window is reported.
type FilterBar struct {
	mu        sync.Mutex
	filters   Filters
	debouncer *Debouncer
	onChange  func(Filters)
}

// NewFilterBar creates a filter bar that calls onChange with the
// debounced filter values.
func NewFilterBar(delay time.Duration, onChange func(Filters)) *FilterBar {
	return &FilterBar{
		debouncer: NewDebouncer(delay),
		onChange:  onChange,
	}
}

func (b *FilterBar) SetEmpresa(id string) {
	b.update(func(f *Filters) { f.EmpresaID = strings.TrimSpace(id) })
}

func (b *FilterBar) SetDescricao(text string) {
	b.update(func(f *Filters) { f.Descricao = text })
}

func (b *FilterBar) SetCategoria(id string) {
	b.update(func(f *Filters) { f.CategoriaID = strings.TrimSpace(id) })
}

func (b *FilterBar) SetDataInicio(day string) {
	b.update(func(f *Filters) { f.DataInicio = strings.TrimSpace(day) })
}

func (b *FilterBar) SetDataFim(day string) {
	b.update(func(f *Filters) { f.DataFim = strings.TrimSpace(day) })
}

// Clear resets every filter.
func (b *FilterBar) Clear() {
	b.update(func(f *Filters) { *f = Filters{} })
}

// Filters returns the current, possibly not yet reported, values.
func (b *FilterBar) Filters() Filters {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.filters
}

// HasActive reports whether any filter is set.
func (b *FilterBar) HasActive() bool {
	return !b.Filters().IsZero()
}

// Close drops a pending report.
func (b *FilterBar) Close() {
	b.debouncer.Stop()
}

func (b *FilterBar) update(mutate func(*Filters)) {
	b.mu.Lock()
	mutate(&b.filters)
	snapshot := b.filters
	b.mu.Unlock()

	b.debouncer.Schedule(func() {
		if b.onChange != nil {
			b.onChange(snapshot)
		}
	})
}
