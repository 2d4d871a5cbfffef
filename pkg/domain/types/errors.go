package types

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrTagPermissionDenied marks a root path outside the filesystem scope
	ErrTagPermissionDenied = goerr.NewTag("permission_denied")
	// ErrTagIO marks a filesystem failure that aborts the whole operation
	ErrTagIO = goerr.NewTag("io")
	// ErrTagEmission marks a progress event that could not be delivered
	ErrTagEmission = goerr.NewTag("emission")
	// ErrTagInvalidArgument marks malformed or out-of-range command arguments
	ErrTagInvalidArgument = goerr.NewTag("invalid_argument")
	// ErrTagUnknownCommand marks an invoke request for a command that is not registered
	ErrTagUnknownCommand = goerr.NewTag("unknown_command")
	// ErrTagCanceled marks an operation aborted by its context
	ErrTagCanceled = goerr.NewTag("canceled")
)
