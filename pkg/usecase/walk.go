package usecase

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// walkFunc is called for every regular file found by walk
type walkFunc func(path string) error

// dirLister is implemented by directory handles that can enumerate entries
// without stat'ing each one, such as osfs files backed by *os.File
type dirLister interface {
	ReadDir(n int) ([]fs.DirEntry, error)
}

// absPath resolves path against the working directory. An empty path stays
// empty so it never resolves to the filesystem root.
func absPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve path", goerr.V("path", path))
	}
	return abs, nil
}

// walk traverses root depth-first. Directories are read in the order the
// filesystem returns them. Below root, symlinks are neither yielded nor
// followed. Entries that fail to read are logged at skipLevel and skipped.
func walk(ctx context.Context, bfs billy.Filesystem, root string, skipLevel slog.Level, fn walkFunc) error {
	if root == "" {
		logSkip(ctx, skipLevel, root, os.ErrNotExist)
		return nil
	}
	info, err := bfs.Stat(root)
	if err != nil {
		logSkip(ctx, skipLevel, root, err)
		return nil
	}
	return walkEntry(ctx, bfs, root, info.Mode().Type(), skipLevel, fn)
}

func walkEntry(ctx context.Context, bfs billy.Filesystem, path string, mode fs.FileMode, skipLevel slog.Level, fn walkFunc) error {
	if err := ctx.Err(); err != nil {
		return goerr.Wrap(err, "walk canceled", goerr.T(types.ErrTagCanceled), goerr.V("path", path))
	}

	if mode.IsRegular() {
		return fn(path)
	}
	if !mode.IsDir() {
		return nil
	}

	entries, err := listDir(ctx, bfs, path, skipLevel)
	if err != nil {
		logSkip(ctx, skipLevel, path, err)
		return nil
	}

	for _, entry := range entries {
		if err := walkEntry(ctx, bfs, bfs.Join(path, entry.Name()), entry.Type(), skipLevel, fn); err != nil {
			return err
		}
	}
	return nil
}

// listDir lists path. billy's ReadDir stats every entry and fails the whole
// listing if one of them cannot be stat'ed; in that case entries are listed
// again from the open directory handle, which reports each entry's type
// without stat'ing it.
func listDir(ctx context.Context, bfs billy.Filesystem, path string, skipLevel slog.Level) ([]fs.DirEntry, error) {
	infos, err := bfs.ReadDir(path)
	if err == nil {
		entries := make([]fs.DirEntry, 0, len(infos))
		for _, info := range infos {
			entries = append(entries, fs.FileInfoToDirEntry(info))
		}
		return entries, nil
	}

	f, openErr := bfs.Open(path)
	if openErr != nil {
		return nil, err
	}
	defer f.Close()

	lister, ok := f.(dirLister)
	if !ok {
		return nil, err
	}
	entries, listErr := lister.ReadDir(-1)
	if listErr != nil {
		return nil, err
	}

	ctxlog.From(ctx).Log(ctx, skipLevel, "Listed directory by name after stat failure",
		"path", path,
		"error", err,
		"entries", len(entries),
	)
	return entries, nil
}

func logSkip(ctx context.Context, level slog.Level, path string, err error) {
	ctxlog.From(ctx).Log(ctx, level, "Skipping entry due to error",
		"path", path,
		"error", err,
	)
}

// fileExt returns the lower-cased final extension of path without the dot.
// Dotfiles such as ".profile" have no extension.
func fileExt(path string) (string, bool) {
	base := filepath.Base(path)
	idx := strings.LastIndex(base, ".")
	if idx <= 0 {
		return "", false
	}
	return strings.ToLower(base[idx+1:]), true
}

// baseName returns the last path element, or "" for a root or empty path
func baseName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return ""
	}
	return filepath.Base(trimmed)
}
