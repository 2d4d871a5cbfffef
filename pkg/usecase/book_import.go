package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/go-git/go-billy/v5"
	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/domain/model"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Validation failure reasons reported in ImportValidation.Error
const (
	ReasonNotExist = "File does not exist"
	ReasonEmpty    = "File is empty"
)

var discardEmitter = interfaces.EventEmitterFunc(func(context.Context, string, any) error {
	return nil
})

type bookImportUseCase struct {
	fs billy.Filesystem
}

// NewBookImport creates a new BookImportUseCase
func NewBookImport(opts ...Option) interfaces.BookImportUseCase {
	o := newOptions(opts)
	return &bookImportUseCase{
		fs: o.fs,
	}
}

// FindBookFiles returns every regular file under path with a recognized book
// extension, in traversal order. Unreadable entries are skipped.
func (uc *bookImportUseCase) FindBookFiles(ctx context.Context, path string) ([]string, error) {
	root, err := absPath(path)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0)
	err = walk(ctx, uc.fs, root, slog.LevelDebug, func(p string) error {
		if ext, ok := fileExt(p); ok && types.IsBookExtension(ext) {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctxlog.From(ctx).Info("Book files discovered",
		"path", path,
		"count", len(files),
	)

	return files, nil
}

// ValidateBookFiles validates paths in order and emits import progress for the
// first item, every chunkSize-th item, and the last item. A failed emission
// aborts the whole call.
func (uc *bookImportUseCase) ValidateBookFiles(ctx context.Context, paths []string, chunkSize int, emitter interfaces.EventEmitter) ([]*model.ImportValidation, error) {
	logger := ctxlog.From(ctx)

	if chunkSize < 1 {
		return nil, goerr.New("chunk_size must be at least 1",
			goerr.T(types.ErrTagInvalidArgument),
			goerr.V("chunk_size", chunkSize),
		)
	}

	if emitter == nil {
		emitter = discardEmitter
	}

	total := len(paths)
	results := make([]*model.ImportValidation, 0, total)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "validation canceled",
				goerr.T(types.ErrTagCanceled),
				goerr.V("index", i),
			)
		}

		if i%chunkSize == 0 || i == total-1 {
			progress := &model.ImportProgress{
				TotalFiles:     total,
				ProcessedFiles: i + 1,
				CurrentFile:    baseName(path),
			}
			if err := emitter.Emit(ctx, types.EventImportProgress, progress); err != nil {
				logger.Error("Failed to emit import progress", "error", err, "index", i)
				return nil, goerr.Wrap(err, "failed to emit import progress",
					goerr.T(types.ErrTagEmission),
					goerr.V("index", i),
					goerr.V("total", total),
				)
			}
		}

		results = append(results, uc.validate(path))
	}

	logger.Info("Book files validated",
		"total", total,
		"chunk_size", chunkSize,
	)

	return results, nil
}

func (uc *bookImportUseCase) validate(path string) *model.ImportValidation {
	result := &model.ImportValidation{Path: path}

	reason := uc.check(path)
	if reason == "" {
		result.Success = true
	} else {
		result.Error = &reason
	}
	return result
}

// check returns the failure reason for path, or "" if it is a usable file
func (uc *bookImportUseCase) check(path string) string {
	if path == "" {
		return ReasonNotExist
	}

	abs, err := absPath(path)
	if err != nil {
		return fmt.Sprintf("Failed to read file metadata: %v", err)
	}

	info, err := uc.fs.Stat(abs)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return ReasonNotExist
	case err != nil:
		return fmt.Sprintf("Failed to read file metadata: %v", err)
	case info.Size() == 0:
		return ReasonEmpty
	}
	return ""
}
