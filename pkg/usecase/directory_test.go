package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/m-mizutani/bookhost/pkg/domain/interfaces"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/bookhost/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestDirectory_ReadDir_MatchAll(t *testing.T) {
	tests := []struct {
		name       string
		extensions []string
	}{
		{name: "Empty extension set", extensions: nil},
		{name: "Wildcard only", extensions: []string{"*"}},
		{name: "Wildcard mixed with extension", extensions: []string{"pdf", "*"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(newBooksFS(t)))

			files, err := uc.ReadDir(context.Background(), "/books", true, tt.extensions)
			gt.NoError(t, err)
			gt.Value(t, scannedPaths(files)).Equal([]string{
				"/books/a.epub",
				"/books/b.txt",
				"/books/c.jpg",
				"/books/sub/d.pdf",
			})
		})
	}
}

func TestDirectory_ReadDir_ExtensionFilter(t *testing.T) {
	fs := newBooksFS(t)
	writeFile(t, fs, "/books/UPPER.EPUB", 3)
	writeFile(t, fs, "/books/archive.tar.gz", 3)
	writeFile(t, fs, "/books/.epub", 3)
	writeFile(t, fs, "/books/noext", 3)

	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(fs))

	t.Run("Case-insensitive match", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), "/books", false, []string{"EPUB"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{
			"/books/UPPER.EPUB",
			"/books/a.epub",
		})
	})

	t.Run("Only the final extension counts", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), "/books", false, []string{"gz"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{"/books/archive.tar.gz"})

		files, err = uc.ReadDir(context.Background(), "/books", false, []string{"tar.gz"})
		gt.NoError(t, err)
		gt.Array(t, files).Length(0)
	})

	t.Run("Leading dot in filter is ignored", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), "/books", true, []string{".pdf"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{"/books/sub/d.pdf"})
	})
}

func TestDirectory_ReadDir_NonRecursive(t *testing.T) {
	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(newBooksFS(t)))

	files, err := uc.ReadDir(context.Background(), "/books", false, []string{"pdf", "epub"})
	gt.NoError(t, err)
	gt.Value(t, scannedPaths(files)).Equal([]string{"/books/a.epub"})
}

func TestDirectory_ReadDir_Sizes(t *testing.T) {
	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(newBooksFS(t)))

	files, err := uc.ReadDir(context.Background(), "/books", true, nil)
	gt.NoError(t, err)

	sizes := make(map[string]uint64)
	for _, f := range files {
		sizes[f.Path] = f.Size
	}
	gt.Value(t, sizes).Equal(map[string]uint64{
		"/books/a.epub":    10,
		"/books/b.txt":     0,
		"/books/c.jpg":     5,
		"/books/sub/d.pdf": 20,
	})
}

func TestDirectory_ReadDir_PermissionDenied(t *testing.T) {
	var checked []string
	scope := interfaces.ScopeGuardFunc(func(path string) bool {
		checked = append(checked, path)
		return false
	})
	uc := usecase.NewDirectory(scope, usecase.WithFilesystem(newBooksFS(t)))

	files, err := uc.ReadDir(context.Background(), "/etc", false, nil)
	gt.Error(t, err)
	gt.Array(t, files).Length(0)
	gt.True(t, goerr.HasTag(err, types.ErrTagPermissionDenied))
	gt.String(t, err.Error()).Contains("Permission denied")
	gt.Value(t, checked).Equal([]string{"/etc"})
}

func TestDirectory_ReadDir_MissingRoot(t *testing.T) {
	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(newBooksFS(t)))

	t.Run("Non-recursive fails with IO error", func(t *testing.T) {
		_, err := uc.ReadDir(context.Background(), "/missing", false, nil)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagIO))
		gt.String(t, err.Error()).Contains("Failed to read directory")
	})

	t.Run("Recursive yields nothing", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), "/missing", true, nil)
		gt.NoError(t, err)
		gt.Array(t, files).Length(0)
	})
}

func TestDirectory_ReadDir_Canceled(t *testing.T) {
	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(newBooksFS(t)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.ReadDir(ctx, "/books", true, nil)
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagCanceled))
}

func TestDirectory_ReadDir_Symlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}

	root := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(root, "real.epub"), []byte("book"), 0644))
	gt.NoError(t, os.Mkdir(filepath.Join(root, "dir"), 0755))
	gt.NoError(t, os.WriteFile(filepath.Join(root, "dir", "inner.epub"), []byte("book"), 0644))
	gt.NoError(t, os.Symlink(filepath.Join(root, "real.epub"), filepath.Join(root, "link.epub")))
	gt.NoError(t, os.Symlink(filepath.Join(root, "dir"), filepath.Join(root, "linkdir")))
	gt.NoError(t, os.Symlink(filepath.Join(root, "gone.epub"), filepath.Join(root, "broken.epub")))

	uc := usecase.NewDirectory(allowAll)

	t.Run("Non-recursive follows links to files", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), root, false, []string{"epub"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{
			filepath.Join(root, "link.epub"),
			filepath.Join(root, "real.epub"),
		})
	})

	t.Run("Recursive does not follow links", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), root, true, []string{"epub"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{
			filepath.Join(root, "dir", "inner.epub"),
			filepath.Join(root, "real.epub"),
		})
	})
}

func TestDirectory_ReadDir_UnreadableEntries(t *testing.T) {
	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(newFaultyBooksFS(t)))

	t.Run("Non-recursive skips only the entry whose metadata fails", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), "/books/locked", false, nil)
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{"/books/locked/b.epub"})
	})

	t.Run("Recursive keeps siblings and continues past unreadable directory", func(t *testing.T) {
		files, err := uc.ReadDir(context.Background(), "/books", true, []string{"epub", "pdf"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{
			"/books/a.epub",
			"/books/locked/a.epub",
			"/books/locked/b.epub",
			"/books/z.epub",
		})

		for _, f := range files {
			if f.Path == "/books/locked/a.epub" {
				gt.Value(t, f.Size).Equal(uint64(0))
			}
		}
	})

	t.Run("Non-recursive fails when the directory itself cannot be read", func(t *testing.T) {
		_, err := uc.ReadDir(context.Background(), "/books/sub", false, nil)
		gt.Error(t, err)
		gt.True(t, goerr.HasTag(err, types.ErrTagIO))
		gt.String(t, err.Error()).Contains("Failed to read directory")
	})
}

func TestDirectory_ReadDir_DirectoryNamedLikeBook(t *testing.T) {
	fs := newBooksFS(t)
	writeFile(t, fs, "/books/folder.epub/cover.jpg", 4)
	uc := usecase.NewDirectory(allowAll, usecase.WithFilesystem(fs))

	for _, recursive := range []bool{false, true} {
		files, err := uc.ReadDir(context.Background(), "/books", recursive, []string{"epub"})
		gt.NoError(t, err)
		gt.Value(t, scannedPaths(files)).Equal([]string{"/books/a.epub"})
	}
}
