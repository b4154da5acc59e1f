package ui

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ToastType is the severity of a toast.
type ToastType string

const (
	ToastSuccess ToastType = "success"
	ToastError   ToastType = "error"
	ToastWarning ToastType = "warning"
	ToastInfo    ToastType = "info"
)

// DefaultToastTTL is how long a toast stays visible unless told otherwise.
const DefaultToastTTL = 4 * time.Second

func normalizeToastType(t ToastType) ToastType {
	switch t {
	case ToastSuccess, ToastError, ToastWarning, ToastInfo:
		return t
	}
	return ToastInfo
}

// Toast is one notification.
type Toast struct {
	ID        string    `json:"id"`
	Type      ToastType `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// Role is the accessible role the toast is announced with.
func (t Toast) Role() string {
	if t.Type == ToastError || t.Type == ToastWarning {
		return "alert"
	}
	return "status"
}

// Live is the aria-live politeness of the toast.
func (t Toast) Live() string {
	if t.Type == ToastError || t.Type == ToastWarning {
		return "assertive"
	}
	return "polite"
}

// Toaster keeps the visible toasts in insertion order.
type Toaster struct {
	mu         sync.Mutex
	toasts     []Toast
	timers     map[string]*time.Timer
	defaultTTL time.Duration
	listeners  map[int]func([]Toast)
	nextID     int
}

// NewToaster creates a toaster. Success/Error/Warning/Info use
// defaultTTL; a non-positive value uses DefaultToastTTL.
func NewToaster(defaultTTL time.Duration) *Toaster {
	if defaultTTL <= 0 {
		defaultTTL = DefaultToastTTL
	}
	return &Toaster{
		timers:     make(map[string]*time.Timer),
		defaultTTL: defaultTTL,
		listeners:  make(map[int]func([]Toast)),
	}
}

// Push appends a toast. A positive ttl removes it after that long; zero
// keeps it until Dismiss.
func (t *Toaster) Push(typ ToastType, message string, ttl time.Duration) Toast {
	toast := Toast{
		ID:        uuid.NewString(),
		Type:      normalizeToastType(typ),
		Message:   message,
		CreatedAt: time.Now(),
	}

	t.mu.Lock()
	t.toasts = append(t.toasts, toast)
	if ttl > 0 {
		id := toast.ID
		t.timers[id] = time.AfterFunc(ttl, func() { t.Dismiss(id) })
	}
	t.mu.Unlock()

	t.notify()
	return toast
}

func (t *Toaster) Success(message string) Toast { return t.Push(ToastSuccess, message, t.defaultTTL) }
func (t *Toaster) Error(message string) Toast   { return t.Push(ToastError, message, t.defaultTTL) }
func (t *Toaster) Warning(message string) Toast { return t.Push(ToastWarning, message, t.defaultTTL) }
func (t *Toaster) Info(message string) Toast    { return t.Push(ToastInfo, message, t.defaultTTL) }

// Dismiss removes a toast. It reports whether the toast was visible.
func (t *Toaster) Dismiss(id string) bool {
	t.mu.Lock()
	idx := -1
	for i, toast := range t.toasts {
		if toast.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.mu.Unlock()
		return false
	}
	t.toasts = append(t.toasts[:idx:idx], t.toasts[idx+1:]...)
	if timer, ok := t.timers[id]; ok {
		timer.Stop()
		delete(t.timers, id)
	}
	t.mu.Unlock()

	t.notify()
	return true
}

// List returns a copy of the visible toasts, oldest first.
func (t *Toaster) List() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Toast, len(t.toasts))
	copy(out, t.toasts)
	return out
}

// Subscribe registers fn, called with the visible toasts after every change.
func (t *Toaster) Subscribe(fn func([]Toast)) (unsubscribe func()) {
	t.mu.Lock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = fn
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		delete(t.listeners, id)
		t.mu.Unlock()
	}
}

// Close stops every pending removal timer.
func (t *Toaster) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, timer := range t.timers {
		timer.Stop()
		delete(t.timers, id)
	}
}

func (t *Toaster) notify() {
	snapshot := t.List()

	t.mu.Lock()
	fns := make([]func([]Toast), 0, len(t.listeners))
	for _, fn := range t.listeners {
		fns = append(fns, fn)
	}
	t.mu.Unlock()

	for _, fn := range fns {
		fn(snapshot)
	}
}
