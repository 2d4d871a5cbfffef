package interfaces

// ScopeGuard decides whether a filesystem path may be read
type ScopeGuard interface {
	IsAllowed(path string) bool
}

// ScopeGuardFunc adapts a function to ScopeGuard
type ScopeGuardFunc func(path string) bool

// IsAllowed calls f(path)
func (f ScopeGuardFunc) IsAllowed(path string) bool {
	return f(path)
}
