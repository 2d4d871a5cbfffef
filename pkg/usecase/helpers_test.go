package usecase_test

import (
	"context"
	"io/fs"
	"os"
	"sort"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/domain/model"
	"github.com/m-mizutani/gt"
)

// newBooksFS builds the /books fixture:
//
//	/books/a.epub      10 bytes
//	/books/b.txt        0 bytes
//	/books/c.jpg        5 bytes
//	/books/sub/d.pdf   20 bytes
func newBooksFS(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	writeFile(t, fs, "/books/a.epub", 10)
	writeFile(t, fs, "/books/b.txt", 0)
	writeFile(t, fs, "/books/c.jpg", 5)
	writeFile(t, fs, "/books/sub/d.pdf", 20)
	return fs
}

func writeFile(t *testing.T, fs billy.Filesystem, path string, size int) {
	t.Helper()
	gt.NoError(t, fs.MkdirAll(fs.Join(path, ".."), 0755))
	gt.NoError(t, util.WriteFile(fs, path, make([]byte, size), 0644))
}

var allowAll = interfaces.ScopeGuardFunc(func(string) bool { return true })

// MockEmitter records emitted events and fails from the failAt-th call (1-based) when failAt > 0
type MockEmitter struct {
	failAt int
	err    error
	events []string
	calls  []*model.ImportProgress
}

func (m *MockEmitter) Emit(ctx context.Context, event string, payload any) error {
	m.events = append(m.events, event)
	if m.failAt > 0 && len(m.events) >= m.failAt {
		return m.err
	}
	if p, ok := payload.(*model.ImportProgress); ok {
		m.calls = append(m.calls, p)
	}
	return nil
}

func scannedPaths(files []*model.ScannedFile) []string {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	sort.Strings(paths)
	return paths
}

// faultyFS fails metadata lookups for statErr paths and directory reads for
// readDirErr paths. Like osfs, ReadDir fails as a whole when one child cannot
// be stat'ed, while Open on a directory still lists its children by type.
type faultyFS struct {
	billy.Filesystem
	statErr    map[string]error
	readDirErr map[string]error
}

func (f *faultyFS) Stat(path string) (os.FileInfo, error) {
	if err, ok := f.statErr[path]; ok {
		return nil, err
	}
	return f.Filesystem.Stat(path)
}

func (f *faultyFS) Lstat(path string) (os.FileInfo, error) {
	if err, ok := f.statErr[path]; ok {
		return nil, err
	}
	return f.Filesystem.Lstat(path)
}

func (f *faultyFS) ReadDir(path string) ([]os.FileInfo, error) {
	if err, ok := f.readDirErr[path]; ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	infos, err := f.Filesystem.ReadDir(path)
	if err != nil {
		return nil, err
	}
	for _, info := range infos {
		child := f.Join(path, info.Name())
		if err, ok := f.statErr[child]; ok {
			return nil, &os.PathError{Op: "lstat", Path: child, Err: err}
		}
	}
	return infos, nil
}

func (f *faultyFS) Open(path string) (billy.File, error) {
	if err, ok := f.readDirErr[path]; ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	info, err := f.Filesystem.Stat(path)
	if err != nil || !info.IsDir() {
		return f.Filesystem.Open(path)
	}

	infos, err := f.Filesystem.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, 0, len(infos))
	for _, info := range infos {
		if err, ok := f.statErr[f.Join(path, info.Name())]; ok {
			entries = append(entries, &unstatableEntry{name: info.Name(), typ: info.Mode().Type(), err: err})
			continue
		}
		entries = append(entries, fs.FileInfoToDirEntry(info))
	}
	return &dirHandle{entries: entries}, nil
}

type dirHandle struct {
	billy.File
	entries []fs.DirEntry
}

func (d *dirHandle) ReadDir(int) ([]fs.DirEntry, error) { return d.entries, nil }
func (d *dirHandle) Close() error                       { return nil }

type unstatableEntry struct {
	name string
	typ  fs.FileMode
	err  error
}

func (e *unstatableEntry) Name() string               { return e.name }
func (e *unstatableEntry) IsDir() bool                { return e.typ.IsDir() }
func (e *unstatableEntry) Type() fs.FileMode          { return e.typ }
func (e *unstatableEntry) Info() (fs.FileInfo, error) { return nil, e.err }

// newFaultyBooksFS extends the /books fixture with:
//
//	/books/locked/a.epub    entry whose metadata cannot be read
//	/books/locked/b.epub    readable sibling
//	/books/sub/             directory that cannot be listed
//	/books/z.epub           sibling visited after sub
//	/books/folder.epub/     directory named like a book
func newFaultyBooksFS(t *testing.T) *faultyFS {
	t.Helper()
	base := newBooksFS(t)
	writeFile(t, base, "/books/locked/a.epub", 4)
	writeFile(t, base, "/books/locked/b.epub", 4)
	writeFile(t, base, "/books/z.epub", 4)
	writeFile(t, base, "/books/folder.epub/cover.jpg", 4)
	return &faultyFS{
		Filesystem: base,
		statErr: map[string]error{
			"/books/locked/a.epub": os.ErrPermission,
		},
		readDirErr: map[string]error{
			"/books/sub": os.ErrPermission,
		},
	}
}
