package cli

import (
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/bookhost/pkg/domain/model"
	"github.com/m-mizutani/goerr/v2"
)

// consoleEmitter prints import progress lines for the one-shot CLI
type consoleEmitter struct {
	w       io.Writer
	counter *color.Color
	name    *color.Color
}

func newConsoleEmitter(w io.Writer) *consoleEmitter {
	return &consoleEmitter{
		w:       w,
		counter: color.New(color.FgCyan, color.Bold),
		name:    color.New(color.FgWhite),
	}
}

func (e *consoleEmitter) Emit(_ context.Context, event string, payload any) error {
	p, ok := payload.(*model.ImportProgress)
	if !ok {
		return nil
	}

	if _, err := e.counter.Fprintf(e.w, "[%d/%d] ", p.ProcessedFiles, p.TotalFiles); err != nil {
		return goerr.Wrap(err, "failed to write progress", goerr.V("event", event))
	}
	if _, err := e.name.Fprintln(e.w, p.CurrentFile); err != nil {
		return goerr.Wrap(err, "failed to write progress", goerr.V("event", event))
	}
	return nil
}
