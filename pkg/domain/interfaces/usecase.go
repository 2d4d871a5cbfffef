package interfaces

import (
	"context"

	"github.com/m-mizutani/bookhost/pkg/domain/model"
)

// DirectoryUseCase enumerates files under a scoped directory
type DirectoryUseCase interface {
	// ReadDir lists regular files under path filtered by extension
	ReadDir(ctx context.Context, path string, recursive bool, extensions []string) ([]*model.ScannedFile, error)
}

// BookImportUseCase discovers and validates book files before import
type BookImportUseCase interface {
	// FindBookFiles walks path and returns every file with a recognized book extension
	FindBookFiles(ctx context.Context, path string) ([]string, error)

	// ValidateBookFiles checks each path and reports progress through emitter every chunkSize items
	ValidateBookFiles(ctx context.Context, paths []string, chunkSize int, emitter EventEmitter) ([]*model.ImportValidation, error)
}
