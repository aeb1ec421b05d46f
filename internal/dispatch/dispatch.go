// Package dispatch fans inbound responses out to concurrent handlers.
//
// Each event is handled on its own goroutine, bounded by a worker limit.
// Ordering between participants is not preserved; the store serializes
// their transactions.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/tandem/internal/engine"
	"github.com/roach88/tandem/internal/model"
)

// DefaultWorkers bounds concurrent handlers when no limit is configured.
const DefaultWorkers = 8

// Handler runs one response through the update cycle. Implemented by
// *engine.Engine.
type Handler interface {
	Handle(ctx context.Context, id model.UserID, r model.Response, renderer engine.Renderer) (engine.Outcome, error)
}

// Notifier is implemented by renderers that can send a plain notice outside
// the prompt flow.
type Notifier interface {
	Notify(ctx context.Context, recipient model.UserID, text string) error
}

// Dispatcher queues inbound events and handles them concurrently.
//
// Thread-safety model:
//   - Enqueue(), Close(): safe from any goroutine
//   - Run(): must be called from exactly one goroutine
type Dispatcher struct {
	handler  Handler
	renderer engine.Renderer
	queue    *eventQueue
	tokens   TokenGenerator
	workers  int
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWorkers bounds the number of events handled at once.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithTokenGenerator replaces the UUIDv7 token generator.
func WithTokenGenerator(g TokenGenerator) Option {
	return func(d *Dispatcher) {
		d.tokens = g
	}
}

// New creates a Dispatcher that handles events with h and delivers prompts
// through r.
func New(h Handler, r engine.Renderer, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		handler:  h,
		renderer: r,
		queue:    newEventQueue(),
		tokens:   UUIDv7Generator{},
		workers:  DefaultWorkers,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Enqueue submits a response for handling and returns its correlation
// token. ok is false after Close.
func (d *Dispatcher) Enqueue(id model.UserID, r model.Response) (token string, ok bool) {
	token = d.tokens.Generate()
	ok = d.queue.Enqueue(Event{Token: token, User: id, Response: r})
	return token, ok
}

// Close stops accepting events. Run returns once the queued events have
// been handled.
func (d *Dispatcher) Close() {
	d.queue.Close()
}

// Run handles events until the queue is closed and drained, or ctx is
// cancelled. It waits for in-flight handlers before returning.
func (d *Dispatcher) Run(ctx context.Context) error {
	var g errgroup.Group
	g.SetLimit(d.workers)

	err := d.loop(ctx, &g)
	g.Wait()
	return err
}

func (d *Dispatcher) loop(ctx context.Context, g *errgroup.Group) error {
	for {
		if ev, ok := d.queue.TryDequeue(); ok {
			g.Go(func() error {
				d.handle(ctx, ev)
				return nil
			})
			continue
		}

		if d.queue.Drained() {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-d.queue.Wait():
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev Event) {
	log := slog.With("event", ev.Token, "user", ev.User)

	out, err := d.handler.Handle(ctx, ev.User, ev.Response, d.renderer)
	if err != nil {
		log.Error("handle response failed", "error", err)
		d.notifyError(ctx, ev, err)
		return
	}

	if out.Reply == nil {
		log.Debug("response ignored")
		return
	}
	log.Debug("response handled", "action", out.Action, "prompt", out.Reply.Prompt)
}

func (d *Dispatcher) notifyError(ctx context.Context, ev Event, cause error) {
	n, ok := d.renderer.(Notifier)
	if !ok {
		return
	}
	if err := n.Notify(ctx, ev.User, InternalErrorText(cause)); err != nil {
		slog.Error("send error notice failed", "event", ev.Token, "user", ev.User, "error", err)
	}
}

// InternalErrorText is the notice sent to a participant whose response
// could not be handled.
func InternalErrorText(err error) string {
	return fmt.Sprintf("Internal error: %v\n\nThis is a bug in Tandem.", err)
}
