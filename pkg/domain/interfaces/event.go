package interfaces

import "context"

// EventEmitter delivers a named event to the UI layer.
// A returned error means the event was not delivered.
type EventEmitter interface {
	Emit(ctx context.Context, event string, payload any) error
}

// EventEmitterFunc adapts a function to EventEmitter
type EventEmitterFunc func(ctx context.Context, event string, payload any) error

// Emit calls f
func (f EventEmitterFunc) Emit(ctx context.Context, event string, payload any) error {
	return f(ctx, event, payload)
}

// EventRouter resolves the emitter for a UI window label. An empty label
// means every connected window.
type EventRouter interface {
	Emitter(window string) EventEmitter
}
