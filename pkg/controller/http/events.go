package http

import (
	"context"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"
	"github.com/m-mizutani/bookhost/pkg/infra/event"
	"github.com/m-mizutani/bookhost/pkg/utils/async"
	"github.com/m-mizutani/ctxlog"
)

// EventsHandler upgrades GET /events to a websocket and registers it as a UI window
type EventsHandler struct {
	hub      *event.Hub
	upgrader websocket.Upgrader
}

// NewEventsHandler creates a new EventsHandler. Empty origins keeps the
// same-origin check; "*" accepts any origin.
func NewEventsHandler(hub *event.Hub, origins []string) *EventsHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
	}
	if len(origins) > 0 {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || slices.Contains(origins, "*") || slices.Contains(origins, origin)
		}
	}

	return &EventsHandler{
		hub:      hub,
		upgrader: upgrader,
	}
}

// Handle upgrades the connection and keeps it registered until the peer leaves
func (h *EventsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client
		logger.Warn("Failed to upgrade event channel", "error", err)
		return
	}

	label, err := h.hub.Attach(ctx, r.URL.Query().Get("window"), conn)
	if err != nil {
		logger.Error("Failed to attach window", "error", err)
		_ = conn.Close()
		return
	}

	async.Dispatch(ctx, func(ctx context.Context) error {
		return h.hub.Listen(ctx, label, conn)
	})
}
