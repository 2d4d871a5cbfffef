package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/infra/event"
)

// config holds internal HTTP server configuration
type config struct {
	addr           string
	authToken      string
	allowedOrigins []string
}

// Option is a functional option for Server configuration
type Option func(*config)

// WithAddr sets the server address
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithAuthToken requires a bearer token on /invoke and /events
func WithAuthToken(token string) Option {
	return func(c *config) {
		c.authToken = token
	}
}

// WithAllowedOrigins sets the origins accepted by the event channel
func WithAllowedOrigins(origins []string) Option {
	return func(c *config) {
		c.allowedOrigins = origins
	}
}

// Server represents the HTTP server
type Server struct {
	*http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	ctx context.Context,
	directoryUC interfaces.DirectoryUseCase,
	bookImportUC interfaces.BookImportUseCase,
	hub *event.Hub,
	opts ...Option,
) (*Server, error) {
	cfg := &config{
		addr: "localhost:8080",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	invokeHandler := NewInvokeHandler(directoryUC, bookImportUC, hub)
	eventsHandler := NewEventsHandler(hub, cfg.allowedOrigins)

	router.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.authToken))
		r.Post("/invoke/{command}", invokeHandler.Handle)
		r.Get("/events", eventsHandler.Handle)
	})

	server := &Server{
		Server: &http.Server{
			Addr:              cfg.addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
	}

	return server, nil
}
