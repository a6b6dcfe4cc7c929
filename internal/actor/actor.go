// Package actor serializes a parallel operation through a single background
// goroutine, in the style of the actor model. The ledger uses one of these
// per store so that state-changing calls commit one at a time.
package actor

import (
	"context"
	"errors"
)

// ErrDied is returned when the actor has stopped and can no longer serve
// calls.
var ErrDied = errors.New("actor: actor has stopped")

// Handler is the logic the actor runs for each message.
type Handler[In, Out any] func(ctx context.Context, in In) (Out, error)

// Actor owns a goroutine that applies its Handler to one message at a time.
// Call blocks until the actor has replied. Cancel the construction context
// to stop the actor; calls made after that return ErrDied.
type Actor[In, Out any] struct {
	handler Handler[In, Out]
	inbox   chan *envelope[In, Out]
	done    chan struct{}
}

type envelope[In, Out any] struct {
	ctx   context.Context
	in    In
	reply chan result[Out]
}

type result[Out any] struct {
	out Out
	err error
}

func New[In, Out any](ctx context.Context, handler Handler[In, Out]) *Actor[In, Out] {
	a := &Actor[In, Out]{
		handler: handler,
		inbox:   make(chan *envelope[In, Out], 32),
		done:    make(chan struct{}),
	}

	go a.run(ctx)

	return a
}

func (a *Actor[In, Out]) run(ctx context.Context) {
	defer close(a.done)

	for {
		select {
		case <-ctx.Done():
			return
		case env := <-a.inbox:
			if ctx.Err() != nil {
				env.reply <- result[Out]{err: ErrDied}
				continue
			}

			out, err := a.handler(env.ctx, env.in)

			// reply is buffered, so this never blocks on a caller that
			// already gave up.
			env.reply <- result[Out]{out: out, err: err}
		}
	}
}

func (a *Actor[In, Out]) Call(ctx context.Context, in In) (Out, error) {
	var zero Out

	env := &envelope[In, Out]{
		ctx:   ctx,
		in:    in,
		reply: make(chan result[Out], 1),
	}

	select {
	case a.inbox <- env:
	case <-a.done:
		return zero, ErrDied
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case res := <-env.reply:
		return res.out, res.err
	case <-a.done:
		// The actor may have replied in the same instant it stopped.
		select {
		case res := <-env.reply:
			return res.out, res.err
		default:
			return zero, ErrDied
		}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
