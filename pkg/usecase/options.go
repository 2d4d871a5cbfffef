package usecase

import (
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
)

type options struct {
	fs billy.Filesystem
}

// Option is a functional option for use case construction
type Option func(*options)

// WithFilesystem replaces the OS filesystem, mainly for tests with memfs
func WithFilesystem(fs billy.Filesystem) Option {
	return func(o *options) {
		o.fs = fs
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		fs: osfs.New("/", osfs.WithBoundOS()),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}
