package intercept

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Interceptor hooks into statement execution. Before runs ahead of the
// driver in ascending Order, After runs behind it in descending Order,
// and OnError runs when the driver fails.
type Interceptor interface {
	// Name identifies the interceptor; skip lists and per-table ignore
	// lists match on it.
	Name() string
	// Type classifies the interceptor's concern.
	Type() Type
	// Order positions the interceptor in the chain; lower runs earlier
	// in Before and later in After.
	Order() int
	// SupportsOperation filters the operations the interceptor sees.
	SupportsOperation(Operation) bool
	// Before may inspect and rewrite the statement.
	Before(ctx context.Context, ec *ExecContext) error
	// After sees the statement outcome.
	After(ctx context.Context, ec *ExecContext) error
	// OnError is notified of driver failures.
	OnError(ctx context.Context, ec *ExecContext, err error)
}

// Base provides no-op defaults; embed it and override what is needed.
type Base struct{}

// SupportsOperation accepts every operation.
func (Base) SupportsOperation(Operation) bool { return true }

// Before does nothing.
func (Base) Before(context.Context, *ExecContext) error { return nil }

// After does nothing.
func (Base) After(context.Context, *ExecContext) error { return nil }

// OnError does nothing.
func (Base) OnError(context.Context, *ExecContext, error) {}

// InterceptorError wraps a failure inside an interceptor hook.
type InterceptorError struct {
	Name  string
	Phase string
	Err   error
}

// Error returns the error string.
func (e *InterceptorError) Error() string {
	return fmt.Sprintf("mappa: interceptor %q failed in %s: %v", e.Name, e.Phase, e.Err)
}

// Unwrap returns the underlying error.
func (e *InterceptorError) Unwrap() error { return e.Err }

// IsInterceptorError returns true if the error is an InterceptorError.
func IsInterceptorError(err error) bool {
	if err == nil {
		return false
	}
	var e *InterceptorError
	return errors.As(err, &e)
}

// Chain is an immutable, order-sorted snapshot of interceptors. Adding
// an interceptor produces a new chain, so executions in flight keep the
// snapshot they started with.
type Chain struct {
	items []Interceptor
}

// NewChain returns a chain over the given interceptors, stably sorted
// by Order.
func NewChain(items ...Interceptor) *Chain {
	sorted := append([]Interceptor(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order() < sorted[j].Order() })
	return &Chain{items: sorted}
}

// With returns a new chain with the additional interceptors.
func (c *Chain) With(items ...Interceptor) *Chain {
	return NewChain(append(append([]Interceptor(nil), c.items...), items...)...)
}

// Len returns the number of interceptors.
func (c *Chain) Len() int { return len(c.items) }

// Interceptors returns the snapshot in chain order.
func (c *Chain) Interceptors() []Interceptor { return c.items }

// applies reports whether the interceptor runs for this statement.
func applies(it Interceptor, ec *ExecContext) bool {
	if !it.SupportsOperation(ec.Op) {
		return false
	}
	if ec.Table.Ignores(it.Name()) {
		return false
	}
	if ec.Skips(it.Name()) {
		return false
	}
	return true
}

// Before runs the Before hooks in ascending order, recording each
// executed interceptor. Stops early on StopPropagation or error.
func (c *Chain) Before(ctx context.Context, ec *ExecContext) error {
	for _, it := range c.items {
		if ec.Stopped() {
			return nil
		}
		if !applies(it, ec) {
			continue
		}
		ec.recordExecuted(it.Name())
		if err := it.Before(ctx, ec); err != nil {
			return &InterceptorError{Name: it.Name(), Phase: "before", Err: err}
		}
	}
	return nil
}

// After runs the After hooks in descending order. Only interceptors
// whose Before ran see it: a StopPropagation cuts off the rest of the
// chain in both phases.
func (c *Chain) After(ctx context.Context, ec *ExecContext) error {
	for i := len(c.items) - 1; i >= 0; i-- {
		it := c.items[i]
		if !applies(it, ec) || !ec.ranBefore(it.Name()) {
			continue
		}
		if err := it.After(ctx, ec); err != nil {
			return &InterceptorError{Name: it.Name(), Phase: "after", Err: err}
		}
	}
	return nil
}

// OnError notifies every applicable interceptor of a driver failure, in
// descending order.
func (c *Chain) OnError(ctx context.Context, ec *ExecContext, err error) {
	for i := len(c.items) - 1; i >= 0; i-- {
		it := c.items[i]
		if !applies(it, ec) {
			continue
		}
		it.OnError(ctx, ec, err)
	}
}
