package shutdown

import (
	"context"
	"errors"
	"os/signal"
	"sync"
	"syscall"
)

func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// Hooks runs registered cleanup functions in reverse registration order.
type Hooks struct {
	mu  sync.Mutex
	fns []func(context.Context) error
}

func (h *Hooks) Add(fn func(context.Context) error) {
	if fn == nil {
		return
	}
	h.mu.Lock()
	h.fns = append(h.fns, fn)
	h.mu.Unlock()
}

// Run calls every hook once, even if earlier ones fail, and joins their errors.
func (h *Hooks) Run(ctx context.Context) error {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()

	var errs []error
	for i := len(fns) - 1; i >= 0; i-- {
		if err := fns[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
