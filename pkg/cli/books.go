package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/m-mizutani/bookhost/pkg/cli/config"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/bookhost/pkg/usecase"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdReadDir() *cli.Command {
	var (
		scopeCfg   config.Scope
		recursive  bool
		extensions []string
	)

	flags := append(scopeCfg.Flags(),
		&cli.BoolFlag{
			Name:        "recursive",
			Aliases:     []string{"r"},
			Usage:       "Descend into subdirectories",
			Destination: &recursive,
		},
		&cli.StringSliceFlag{
			Name:        "ext",
			Aliases:     []string{"e"},
			Usage:       "Extension to include (repeatable, '*' or none for all files)",
			Destination: &extensions,
		},
	)

	return &cli.Command{
		Name:      "read-dir",
		Usage:     "List files under a scoped directory as JSON",
		ArgsUsage: "PATH",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := singleArg(c)
			if err != nil {
				return err
			}

			scope, err := scopeCfg.Build()
			if err != nil {
				return err
			}

			files, err := usecase.NewDirectory(scope).ReadDir(ctx, path, recursive, extensions)
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, files)
		},
	}
}

func cmdFindBooks() *cli.Command {
	return &cli.Command{
		Name:      "find-books",
		Usage:     "Recursively find epub/pdf/mobi/azw3/txt files as JSON",
		ArgsUsage: "PATH",
		Action: func(ctx context.Context, c *cli.Command) error {
			path, err := singleArg(c)
			if err != nil {
				return err
			}

			files, err := usecase.NewBookImport().FindBookFiles(ctx, path)
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, files)
		},
	}
}

func cmdValidateBooks() *cli.Command {
	var chunkSize int

	return &cli.Command{
		Name:      "validate-books",
		Usage:     "Validate book files before import, printing progress to stderr",
		ArgsUsage: "PATH...",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:        "chunk-size",
				Usage:       "Report progress every N files",
				Value:       10,
				Destination: &chunkSize,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return goerr.New("at least one PATH is required", goerr.T(types.ErrTagInvalidArgument))
			}

			results, err := usecase.NewBookImport().ValidateBookFiles(ctx, paths, chunkSize, newConsoleEmitter(c.Root().ErrWriter))
			if err != nil {
				return err
			}
			return printJSON(c.Root().Writer, results)
		},
	}
}

func singleArg(c *cli.Command) (string, error) {
	if c.Args().Len() != 1 {
		return "", goerr.New("exactly one PATH is required",
			goerr.T(types.ErrTagInvalidArgument),
			goerr.V("args", c.Args().Slice()),
		)
	}
	return c.Args().First(), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write JSON output")
	}
	return nil
}
