package http_test

import (
	"context"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	controller "github.com/m-mizutani/bookhost/pkg/controller/http"
	"github.com/m-mizutani/bookhost/pkg/infra/event"
	"github.com/m-mizutani/bookhost/pkg/infra/scope"
	"github.com/m-mizutani/bookhost/pkg/usecase"
	"github.com/m-mizutani/gt"
)

// newTestServer serves the /books fixture from memory with /books in scope
func newTestServer(t *testing.T, token string) *controller.Server {
	t.Helper()
	server, _ := newTestServerWithHub(t, token)
	return server
}

func newTestServerWithHub(t *testing.T, token string) (*controller.Server, *event.Hub) {
	t.Helper()

	fs := memfs.New()
	for path, size := range map[string]int{
		"/books/a.epub":    10,
		"/books/b.txt":     0,
		"/books/c.jpg":     5,
		"/books/sub/d.pdf": 20,
		"/etc/passwd":      7,
	} {
		gt.NoError(t, fs.MkdirAll(fs.Join(path, ".."), 0755))
		gt.NoError(t, util.WriteFile(fs, path, make([]byte, size), 0644))
	}

	s, err := scope.New([]string{"/books/**"}, nil)
	gt.NoError(t, err)

	hub := event.NewHub()
	t.Cleanup(hub.Close)

	server, err := controller.NewServer(
		context.Background(),
		usecase.NewDirectory(s, usecase.WithFilesystem(fs)),
		usecase.NewBookImport(usecase.WithFilesystem(fs)),
		hub,
		controller.WithAddr("localhost:0"),
		controller.WithAuthToken(token),
	)
	gt.NoError(t, err)
	return server, hub
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
