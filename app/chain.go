package app

import (
	"reflect"

	"github.com/iov-one/weave-market"
)

// Decorators is an ordered stack of decorators waiting for the handler
// they will wrap. The first decorator is the outermost one.
type Decorators struct {
	stack []weave.Decorator
}

// ChainDecorators starts a stack. Nil decorators, including typed nil
// pointers, are skipped so optional decorators can be passed inline:
//
//	ChainDecorators(
//		utils.NewLogging(),
//		utils.NewRecovery(),
//		utils.NewSavepoint().OnDeliver(),
//	).WithHandler(router)
func ChainDecorators(ds ...weave.Decorator) Decorators {
	return Decorators{}.Chain(ds...)
}

// Chain returns a new stack with ds placed below the current decorators.
// The receiver is not modified.
func (d Decorators) Chain(ds ...weave.Decorator) Decorators {
	stack := make([]weave.Decorator, len(d.stack), len(d.stack)+len(ds))
	copy(stack, d.stack)
	for _, dc := range ds {
		if !isNilDecorator(dc) {
			stack = append(stack, dc)
		}
	}
	return Decorators{stack: stack}
}

func isNilDecorator(d weave.Decorator) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// WithHandler closes the stack over h.
func (d Decorators) WithHandler(h weave.Handler) weave.Handler {
	for i := len(d.stack) - 1; i >= 0; i-- {
		h = decorated{decorator: d.stack[i], next: h}
	}
	return h
}

type decorated struct {
	decorator weave.Decorator
	next      weave.Handler
}

var _ weave.Handler = decorated{}

func (w decorated) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	return w.decorator.Check(ctx, db, tx, w.next)
}

func (w decorated) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	return w.decorator.Deliver(ctx, db, tx, w.next)
}
