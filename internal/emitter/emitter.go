// Package emitter implements the named-event bus used for host scheduling
// and navigation events.
package emitter

import "sync"

// Handler receives the arguments passed to Emit.
type Handler func(args ...string)

// Subscription identifies one registered handler. It is released with Off.
type Subscription struct {
	event string
	fn    Handler
}

// Subscriber is the subscribe/unsubscribe half of an emitter.
type Subscriber interface {
	On(event string, fn Handler) *Subscription
	Off(sub *Subscription)
}

// Emitter dispatches events synchronously to handlers in registration order.
// A handler runs to completion before the next one is called, and an Emit
// call returns only after every handler has run.
type Emitter struct {
	mu       sync.Mutex
	handlers map[string][]*Subscription
}

// New creates an empty emitter.
func New() *Emitter {
	return &Emitter{handlers: make(map[string][]*Subscription)}
}

// On registers fn for event.
func (e *Emitter) On(event string, fn Handler) *Subscription {
	sub := &Subscription{event: event, fn: fn}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[event] = append(e.handlers[event], sub)
	return sub
}

// Off removes a subscription. Removing an unknown or already removed
// subscription is a no-op.
func (e *Emitter) Off(sub *Subscription) {
	if sub == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	subs := e.handlers[sub.event]
	for i, s := range subs {
		if s == sub {
			e.handlers[sub.event] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(e.handlers[sub.event]) == 0 {
		delete(e.handlers, sub.event)
	}
}

// Emit calls every handler registered for event with args.
func (e *Emitter) Emit(event string, args ...string) {
	e.mu.Lock()
	subs := append([]*Subscription(nil), e.handlers[event]...)
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(args...)
	}
}

// Count returns the number of handlers registered for event.
func (e *Emitter) Count(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.handlers[event])
}

// Immediate is a scheduler whose events have already fired: On invokes the
// handler synchronously and registers nothing.
type Immediate struct{}

func (Immediate) On(event string, fn Handler) *Subscription {
	fn()
	return &Subscription{event: event, fn: fn}
}

func (Immediate) Off(*Subscription) {}

// Arg returns args[i], or "" when absent.
func Arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
