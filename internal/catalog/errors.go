package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrMissingIdentity = errors.New("manifest missing id and name")
	ErrModuleNotFound  = errors.New("module not found in catalog")
	ErrClassNotFound   = errors.New("no executable unit satisfies the module contract")
)

// ParseError wraps any manifest parse failure. The affected module is
// excluded from the catalog; other modules are unaffected.
type ParseError struct {
	Path  string
	Cause error
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse manifest %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("parse manifest: %v", e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// LoadError reports a per-module load failure. The module stays visible in
// the descriptor set but is excluded from the loadable set.
type LoadError struct {
	ModuleID string
	Cause    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load module %s: %v", e.ModuleID, e.Cause)
}

func (e *LoadError) Unwrap() error { return e.Cause }
