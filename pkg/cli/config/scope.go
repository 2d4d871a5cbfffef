package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/bookhost/pkg/infra/scope"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"
)

// Scope holds the filesystem access scope
type Scope struct {
	Allow []string
	Deny  []string
	File  string
}

// scopeFile is the on-disk scope format, TOML or YAML
type scopeFile struct {
	Allow []string `toml:"allow" yaml:"allow"`
	Deny  []string `toml:"deny" yaml:"deny"`
}

// Flags returns CLI flags for scope configuration
func (c *Scope) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "scope-allow",
			Usage:       "Glob of paths that may be read, e.g. '$HOME/Books/**'",
			Destination: &c.Allow,
			Sources:     cli.EnvVars("BOOKHOST_SCOPE_ALLOW"),
		},
		&cli.StringSliceFlag{
			Name:        "scope-deny",
			Usage:       "Glob of paths that may never be read, takes precedence over allow",
			Destination: &c.Deny,
			Sources:     cli.EnvVars("BOOKHOST_SCOPE_DENY"),
		},
		&cli.StringFlag{
			Name:        "scope-file",
			Usage:       "TOML or YAML file with allow/deny lists, merged with the flags",
			Destination: &c.File,
			Sources:     cli.EnvVars("BOOKHOST_SCOPE_FILE"),
		},
	}
}

// Build merges the scope file with flag values into a Scope
func (c *Scope) Build() (*scope.Scope, error) {
	allow := append([]string(nil), c.Allow...)
	deny := append([]string(nil), c.Deny...)

	if c.File != "" {
		f, err := loadScopeFile(c.File)
		if err != nil {
			return nil, err
		}
		allow = append(allow, f.Allow...)
		deny = append(deny, f.Deny...)
	}

	s, err := scope.New(allow, deny)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build filesystem scope")
	}
	return s, nil
}

func loadScopeFile(path string) (*scopeFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read scope file", goerr.V("path", path))
	}

	var f scopeFile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(raw, &f)
	case ".yaml", ".yml":
		err = yaml.UnmarshalStrict(raw, &f)
	default:
		return nil, goerr.New("unsupported scope file format", goerr.V("path", path), goerr.V("ext", ext))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse scope file", goerr.V("path", path))
	}

	return &f, nil
}
