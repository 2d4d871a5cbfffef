package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/domain/model"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// WindowHeader names the UI window that should receive progress events
const WindowHeader = "X-Bookhost-Window"

// maxInvokeBody bounds the JSON arguments of a single invoke call
const maxInvokeBody = 8 << 20

// command runs one invokable operation with its raw JSON arguments
type command func(ctx context.Context, r *http.Request, args []byte) (any, error)

// InvokeHandler dispatches POST /invoke/{command} to registered commands
type InvokeHandler struct {
	commands map[string]command
}

// NewInvokeHandler creates the dispatch table for the book host commands
func NewInvokeHandler(
	directoryUC interfaces.DirectoryUseCase,
	bookImportUC interfaces.BookImportUseCase,
	router interfaces.EventRouter,
) *InvokeHandler {
	return &InvokeHandler{
		commands: map[string]command{
			"read_dir":            readDirCommand(directoryUC),
			"find_book_files":     findBookFilesCommand(bookImportUC),
			"validate_book_files": validateBookFilesCommand(bookImportUC, router),
		},
	}
}

// Commands returns the registered command names
func (h *InvokeHandler) Commands() []string {
	names := make([]string, 0, len(h.commands))
	for name := range h.commands {
		names = append(names, name)
	}
	return names
}

// Handle processes invoke requests
func (h *InvokeHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := ctxlog.From(ctx)
	name := chi.URLParam(r, "command")

	cmd, ok := h.commands[name]
	if !ok {
		err := goerr.New("unknown command", goerr.T(types.ErrTagUnknownCommand), goerr.V("command", name))
		logger.Warn("Unknown command invoked", "command", name)
		writeError(ctx, w, err, statusOf(err))
		return
	}

	defer r.Body.Close()
	args, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxInvokeBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			logger.Warn("Command arguments too large", "command", name, "limit", tooLarge.Limit)
			writeError(ctx, w, goerr.Wrap(err, "request body too large", goerr.V("limit", tooLarge.Limit)), http.StatusRequestEntityTooLarge)
			return
		}
		writeError(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	result, err := cmd(ctx, r, args)
	if err != nil {
		status := statusOf(err)
		if status >= http.StatusInternalServerError {
			logger.Error("Command failed", "command", name, "error", err)
			sentry.CaptureException(err)
		} else {
			logger.Warn("Command rejected", "command", name, "error", err)
		}
		writeError(ctx, w, err, status)
		return
	}

	writeJSON(ctx, w, result, http.StatusOK)
}

func readDirCommand(uc interfaces.DirectoryUseCase) command {
	return func(ctx context.Context, _ *http.Request, raw []byte) (any, error) {
		var args model.ReadDirArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return uc.ReadDir(ctx, args.Path, args.Recursive, args.Extensions)
	}
}

func findBookFilesCommand(uc interfaces.BookImportUseCase) command {
	return func(ctx context.Context, _ *http.Request, raw []byte) (any, error) {
		var args model.FindBookFilesArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}
		return uc.FindBookFiles(ctx, args.Path)
	}
}

func validateBookFilesCommand(uc interfaces.BookImportUseCase, router interfaces.EventRouter) command {
	return func(ctx context.Context, r *http.Request, raw []byte) (any, error) {
		var args model.ValidateBookFilesArgs
		if err := decodeArgs(raw, &args); err != nil {
			return nil, err
		}

		window := args.Window
		if window == "" {
			window = r.Header.Get(WindowHeader)
		}

		return uc.ValidateBookFiles(ctx, args.Paths, args.ChunkSize, router.Emitter(window))
	}
}

func decodeArgs(raw []byte, v any) error {
	if len(raw) == 0 {
		return goerr.New("missing command arguments", goerr.T(types.ErrTagInvalidArgument))
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return goerr.Wrap(err, "invalid command arguments", goerr.T(types.ErrTagInvalidArgument))
	}
	return nil
}

// statusOf maps an error tag to the HTTP status returned to the caller
func statusOf(err error) int {
	switch {
	case goerr.HasTag(err, types.ErrTagPermissionDenied):
		return http.StatusForbidden
	case goerr.HasTag(err, types.ErrTagInvalidArgument):
		return http.StatusBadRequest
	case goerr.HasTag(err, types.ErrTagUnknownCommand):
		return http.StatusNotFound
	case goerr.HasTag(err, types.ErrTagCanceled), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
