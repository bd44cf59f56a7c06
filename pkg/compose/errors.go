package compose

import (
	"errors"
	"fmt"
)

// Composition errors. Each is fatal: composition stops at the first one.
var (
	ErrInvalidPath    = errors.New("invalid path")
	ErrDuplicateRoute = errors.New("duplicate route")
	ErrDuplicateMount = errors.New("duplicate mount")
	ErrModuleCycle    = errors.New("module reference cycle")
	ErrNilModule      = errors.New("nil module reference")
	ErrNilHandler     = errors.New("nil handler")
)

// ConfigError reports a composition failure together with the offending
// method and path.
type ConfigError struct {
	Op     string
	Method string
	Path   string
	Err    error
}

func (e *ConfigError) Error() string {
	switch {
	case e.Method != "":
		return fmt.Sprintf("%s %s %q: %v", e.Op, e.Method, e.Path, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
