package event

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/domain/model"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Conn is the subset of *websocket.Conn used by Hub
type Conn interface {
	WriteJSON(v any) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	Close() error
}

type window struct {
	label string
	conn  Conn
	mu    sync.Mutex // serializes writes; websocket allows one concurrent writer
}

func (w *window) write(ev *model.Event, timeout time.Duration) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return w.conn.WriteJSON(ev)
}

// Hub keeps the event channel of every connected UI window
type Hub struct {
	mu           sync.RWMutex
	windows      map[string]*window
	writeTimeout time.Duration
}

// HubOption is a functional option for Hub
type HubOption func(*Hub)

// WithWriteTimeout bounds a single event write
func WithWriteTimeout(d time.Duration) HubOption {
	return func(h *Hub) {
		h.writeTimeout = d
	}
}

// NewHub creates an empty Hub
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		windows:      make(map[string]*window),
		writeTimeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Attach registers conn under label, then sends the ready frame so the label
// is routable once the peer sees it. An empty label gets a generated one. A
// window already registered under the same label is closed and replaced.
func (h *Hub) Attach(ctx context.Context, label string, conn Conn) (string, error) {
	if label == "" {
		label = uuid.NewString()
	}
	w := &window{label: label, conn: conn}

	h.mu.Lock()
	prev := h.windows[label]
	h.windows[label] = w
	h.mu.Unlock()

	if prev != nil {
		ctxlog.From(ctx).Info("Replacing window connection", "window", label)
		_ = prev.conn.Close()
	}

	ready := &model.Event{
		Event:   types.EventReady,
		Payload: &model.ReadyPayload{Window: label},
	}
	if err := w.write(ready, h.writeTimeout); err != nil {
		h.detach(ctx, label, conn)
		return "", goerr.Wrap(err, "failed to send ready event", goerr.V("window", label))
	}

	ctxlog.From(ctx).Info("Window connected", "window", label)
	return label, nil
}

// Listen reads from conn until it fails, then detaches the window. Incoming
// messages are discarded; reading is required to observe the peer closing.
func (h *Hub) Listen(ctx context.Context, label string, conn Conn) error {
	defer h.detach(ctx, label, conn)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			ctxlog.From(ctx).Debug("Window read loop ended", "window", label, "error", err)
			return nil
		}
	}
}

// Windows returns the labels of connected windows
func (h *Hub) Windows() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	labels := make([]string, 0, len(h.windows))
	for label := range h.windows {
		labels = append(labels, label)
	}
	return labels
}

// Emitter returns an EventEmitter for label. An empty label broadcasts.
func (h *Hub) Emitter(label string) interfaces.EventEmitter {
	if label == "" {
		return interfaces.EventEmitterFunc(h.Broadcast)
	}
	return interfaces.EventEmitterFunc(func(ctx context.Context, event string, payload any) error {
		return h.EmitTo(ctx, label, event, payload)
	})
}

// EmitTo sends an event to one window. It fails if the window is not
// connected or the write fails; a failed window is detached.
func (h *Hub) EmitTo(ctx context.Context, label, event string, payload any) error {
	h.mu.RLock()
	w, ok := h.windows[label]
	h.mu.RUnlock()

	if !ok {
		return goerr.New("window is not connected",
			goerr.T(types.ErrTagEmission),
			goerr.V("window", label),
			goerr.V("event", event),
		)
	}

	if err := w.write(&model.Event{Event: event, Payload: payload}, h.writeTimeout); err != nil {
		h.detach(ctx, label, w.conn)
		return goerr.Wrap(err, "failed to write event",
			goerr.T(types.ErrTagEmission),
			goerr.V("window", label),
			goerr.V("event", event),
		)
	}
	return nil
}

// Broadcast sends an event to every connected window. Windows that fail are
// detached and logged; broadcast itself never fails.
func (h *Hub) Broadcast(ctx context.Context, event string, payload any) error {
	h.mu.RLock()
	targets := make([]*window, 0, len(h.windows))
	for _, w := range h.windows {
		targets = append(targets, w)
	}
	h.mu.RUnlock()

	ev := &model.Event{Event: event, Payload: payload}
	for _, w := range targets {
		if err := w.write(ev, h.writeTimeout); err != nil {
			ctxlog.From(ctx).Warn("Dropping window after failed broadcast",
				"window", w.label,
				"event", event,
				"error", err,
			)
			h.detach(ctx, w.label, w.conn)
		}
	}
	return nil
}

// Close closes every window connection
func (h *Hub) Close() {
	h.mu.Lock()
	windows := h.windows
	h.windows = make(map[string]*window)
	h.mu.Unlock()

	for _, w := range windows {
		_ = w.conn.Close()
	}
}

func (h *Hub) detach(ctx context.Context, label string, conn Conn) {
	h.mu.Lock()
	w, ok := h.windows[label]
	removed := ok && w.conn == conn
	if removed {
		delete(h.windows, label)
	}
	h.mu.Unlock()

	if removed {
		_ = conn.Close()
		ctxlog.From(ctx).Info("Window disconnected", "window", label)
	}
}
