// Package ui holds the interaction state the pages share: the
// confirmation dialog, the toast queue and the ticket edit modal. It owns
// no rendering; the CLI and the console server draw from these states.
package ui

import (
	"context"
	"sync"
)

const (
	DefaultConfirmText = "Confirmar"
	DefaultCancelText  = "Cancelar"
)

// ConfirmOptions describes one confirmation request.
type ConfirmOptions struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ConfirmText string `json:"confirmText"`
	CancelText  string `json:"cancelText"`
	Dangerous   bool   `json:"dangerous"`
}

func (o ConfirmOptions) withDefaults() ConfirmOptions {
	if o.ConfirmText == "" {
		o.ConfirmText = DefaultConfirmText
	}
	if o.CancelText == "" {
		o.CancelText = DefaultCancelText
	}
	return o
}

type confirmRequest struct {
	opts   ConfirmOptions
	result chan bool
}

// Confirm is the confirmation dialog. Requests queue FIFO; the head of
// the queue is the open dialog and the rest wait their turn.
type Confirm struct {
	mu        sync.Mutex
	queue     []*confirmRequest
	listeners map[int]func(open *ConfirmOptions)
	nextID    int
}

func NewConfirm() *Confirm {
	return &Confirm{listeners: make(map[int]func(*ConfirmOptions))}
}

// Show opens (or queues) a dialog and blocks until it is resolved. It
// returns true only for Confirm. If ctx ends first the request is
// withdrawn and ctx.Err() is returned.
func (c *Confirm) Show(ctx context.Context, opts ConfirmOptions) (bool, error) {
	req := &confirmRequest{opts: opts.withDefaults(), result: make(chan bool, 1)}

	c.mu.Lock()
	c.queue = append(c.queue, req)
	opened := len(c.queue) == 1
	c.mu.Unlock()

	if opened {
		c.notify()
	}

	select {
	case ok := <-req.result:
		return ok, nil
	case <-ctx.Done():
	}

	c.mu.Lock()
	idx := -1
	for i, r := range c.queue {
		if r == req {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Resolved concurrently with the cancellation.
		c.mu.Unlock()
		return <-req.result, nil
	}
	c.queue = append(c.queue[:idx], c.queue[idx+1:]...)
	headChanged := idx == 0
	c.mu.Unlock()

	if headChanged {
		c.notify()
	}
	return false, ctx.Err()
}

// Current returns the open dialog, if any.
func (c *Confirm) Current() (ConfirmOptions, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return ConfirmOptions{}, false
	}
	return c.queue[0].opts, true
}

// Pending returns how many requests are open or queued.
func (c *Confirm) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Confirm resolves the open dialog with true. It reports whether a
// dialog was open.
func (c *Confirm) Confirm() bool { return c.resolve(true) }

// Cancel resolves the open dialog with false.
func (c *Confirm) Cancel() bool { return c.resolve(false) }

// Escape is the Escape key; it cancels.
func (c *Confirm) Escape() bool { return c.resolve(false) }

// Backdrop is a click outside the dialog body; it cancels.
func (c *Confirm) Backdrop() bool { return c.resolve(false) }

// ContentClick is a click on the dialog body. It does not resolve.
func (c *Confirm) ContentClick() {}

// Subscribe registers fn, called whenever the open dialog changes. fn
// receives nil when the dialog closes with nothing queued.
func (c *Confirm) Subscribe(fn func(open *ConfirmOptions)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Confirm) resolve(ok bool) bool {
	c.mu.Lock()
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return false
	}
	head := c.queue[0]
	c.queue = c.queue[1:]
	c.mu.Unlock()

	head.result <- ok
	c.notify()
	return true
}

func (c *Confirm) notify() {
	c.mu.Lock()
	var open *ConfirmOptions
	if len(c.queue) > 0 {
		opts := c.queue[0].opts
		open = &opts
	}
	fns := make([]func(*ConfirmOptions), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(open)
	}
}
