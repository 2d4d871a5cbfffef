package usecase

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/domain/model"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ErrMsgPermissionDenied is returned when a scan root is outside the filesystem scope
const ErrMsgPermissionDenied = "Permission denied: Path not in filesystem scope"

type directoryUseCase struct {
	scope interfaces.ScopeGuard
	fs    billy.Filesystem
}

// NewDirectory creates a new DirectoryUseCase gated by scope
func NewDirectory(scope interfaces.ScopeGuard, opts ...Option) interfaces.DirectoryUseCase {
	o := newOptions(opts)
	return &directoryUseCase{
		scope: scope,
		fs:    o.fs,
	}
}

// ReadDir lists regular files under path whose extension is in extensions.
// An empty list or "*" matches every file.
func (uc *directoryUseCase) ReadDir(ctx context.Context, path string, recursive bool, extensions []string) ([]*model.ScannedFile, error) {
	logger := ctxlog.From(ctx)

	if !uc.scope.IsAllowed(path) {
		logger.Warn("Scan root outside filesystem scope", "path", path)
		return nil, goerr.New(ErrMsgPermissionDenied,
			goerr.T(types.ErrTagPermissionDenied),
			goerr.V("path", path),
		)
	}

	root, err := absPath(path)
	if err != nil {
		return nil, goerr.Wrap(err, "Failed to read directory", goerr.T(types.ErrTagIO))
	}

	filter := newExtensionFilter(extensions)
	files := make([]*model.ScannedFile, 0)
	collect := func(p string) {
		if filter.match(p) {
			files = append(files, &model.ScannedFile{
				Path: p,
				Size: uc.sizeOf(p),
			})
		}
	}

	if recursive {
		err := walk(ctx, uc.fs, root, slog.LevelWarn, func(p string) error {
			collect(p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else {
		if err := uc.readLevel(ctx, root, collect); err != nil {
			return nil, err
		}
	}

	logger.Debug("Directory scanned",
		"path", path,
		"recursive", recursive,
		"extensions", extensions,
		"file_count", len(files),
	)

	return files, nil
}

// readLevel reads the direct children of path. Symlinks are resolved so a link
// to a regular file counts as a file. Entries whose metadata cannot be read
// are skipped.
func (uc *directoryUseCase) readLevel(ctx context.Context, path string, collect func(string)) error {
	entries, err := listDir(ctx, uc.fs, path, slog.LevelWarn)
	if err != nil {
		return goerr.Wrap(err, "Failed to read directory",
			goerr.T(types.ErrTagIO),
			goerr.V("path", path),
		)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "read directory canceled", goerr.T(types.ErrTagCanceled), goerr.V("path", path))
		}

		p := uc.fs.Join(path, entry.Name())
		info, err := entry.Info()
		if err != nil {
			logSkip(ctx, slog.LevelWarn, p, err)
			continue
		}
		if info.Mode()&os.ModeSymlink != 0 {
			resolved, err := uc.fs.Stat(p)
			if err != nil {
				logSkip(ctx, slog.LevelWarn, p, err)
				continue
			}
			info = resolved
		}

		if info.Mode().IsRegular() {
			collect(p)
		}
	}
	return nil
}

// sizeOf is best effort: unreadable metadata reports 0
func (uc *directoryUseCase) sizeOf(path string) uint64 {
	info, err := uc.fs.Stat(path)
	if err != nil || info.Size() < 0 {
		return 0
	}
	return uint64(info.Size())
}

type extensionFilter struct {
	all  bool
	exts map[string]struct{}
}

func newExtensionFilter(extensions []string) extensionFilter {
	f := extensionFilter{
		all:  len(extensions) == 0,
		exts: make(map[string]struct{}, len(extensions)),
	}
	for _, ext := range extensions {
		if ext == types.WildcardExtension {
			f.all = true
		}
		f.exts[strings.ToLower(strings.TrimPrefix(ext, "."))] = struct{}{}
	}
	return f
}

func (f extensionFilter) match(path string) bool {
	if f.all {
		return true
	}
	ext, ok := fileExt(path)
	if !ok {
		return false
	}
	_, found := f.exts[ext]
	return found
}
