package scope

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/m-mizutani/bookhost/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// Scope is a filesystem allow-list. A path is allowed when it matches at
// least one allow pattern and no deny pattern. Patterns are doublestar globs
// over slash-separated absolute paths; "$HOME" expands to the user's home.
type Scope struct {
	allow []string
	deny  []string
}

// New validates and normalizes patterns into a Scope
func New(allow, deny []string) (*Scope, error) {
	s := &Scope{}

	for _, p := range allow {
		pattern, err := normalizePattern(p)
		if err != nil {
			return nil, err
		}
		s.allow = append(s.allow, pattern)
	}
	for _, p := range deny {
		pattern, err := normalizePattern(p)
		if err != nil {
			return nil, err
		}
		s.deny = append(s.deny, pattern)
	}

	return s, nil
}

// IsAllowed reports whether path is inside the scope. Relative paths are
// resolved against the working directory and ".." elements are cleaned
// before matching.
func (s *Scope) IsAllowed(path string) bool {
	if path == "" {
		return false
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	target := filepath.ToSlash(abs)

	for _, pattern := range s.deny {
		if match(pattern, target) {
			return false
		}
	}
	for _, pattern := range s.allow {
		if match(pattern, target) {
			return true
		}
	}
	return false
}

// Allow returns the normalized allow patterns
func (s *Scope) Allow() []string {
	return append([]string(nil), s.allow...)
}

// Deny returns the normalized deny patterns
func (s *Scope) Deny() []string {
	return append([]string(nil), s.deny...)
}

func match(pattern, target string) bool {
	if ok, _ := doublestar.Match(pattern, target); ok {
		return true
	}
	// "dir/**" also grants "dir" itself
	if base, ok := strings.CutSuffix(pattern, "/**"); ok {
		return base == target
	}
	return false
}

func normalizePattern(raw string) (string, error) {
	pattern := strings.TrimSpace(raw)
	if pattern == "" {
		return "", goerr.New("empty scope pattern", goerr.T(types.ErrTagInvalidArgument))
	}

	if strings.HasPrefix(pattern, "$HOME") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", goerr.Wrap(err, "failed to resolve $HOME in scope pattern", goerr.V("pattern", raw))
		}
		pattern = home + strings.TrimPrefix(pattern, "$HOME")
	}

	pattern = filepath.ToSlash(pattern)
	if !strings.HasPrefix(pattern, "/") && filepath.VolumeName(filepath.FromSlash(pattern)) == "" {
		return "", goerr.New("scope pattern must be absolute",
			goerr.T(types.ErrTagInvalidArgument),
			goerr.V("pattern", raw),
		)
	}

	if !doublestar.ValidatePattern(pattern) {
		return "", goerr.New("invalid scope pattern",
			goerr.T(types.ErrTagInvalidArgument),
			goerr.V("pattern", raw),
		)
	}

	if len(pattern) > 1 {
		pattern = strings.TrimSuffix(pattern, "/")
	}
	return pattern, nil
}
