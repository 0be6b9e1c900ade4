package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Hook is a side effect that runs after a transition has committed.
type Hook func(ctx context.Context) error

// Dispatcher runs post-commit hooks. A failing or panicking hook is logged
// and the remaining hooks still run.
type Dispatcher struct {
	async   bool
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(async bool, timeout time.Duration) *Dispatcher {
	return &Dispatcher{async: async, timeout: timeout}
}

// Run executes hooks in order. In async mode it returns immediately and the
// hooks run detached from ctx's cancellation, bounded by the dispatcher timeout.
func (d *Dispatcher) Run(ctx context.Context, op string, hooks ...Hook) {
	if len(hooks) == 0 {
		return
	}

	hookCtx := context.WithoutCancel(ctx)
	if !d.async {
		d.runAll(hookCtx, op, hooks)
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.runAll(hookCtx, op, hooks)
	}()
}

// Wait blocks until every in-flight async batch has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) runAll(ctx context.Context, op string, hooks []Hook) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	for i, hook := range hooks {
		if err := d.runOne(ctx, hook); err != nil {
			slog.Error("Post-commit hook failed",
				slog.String("type", "notify"),
				slog.String("op", op),
				slog.Int("hook", i),
				slog.Any("error", err),
			)
		}
	}
}

func (d *Dispatcher) runOne(ctx context.Context, hook Hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hook(ctx)
}
