// Package feature resolves feature flags and filters declaration trees so
// that conditional services are included or removed once, before
// composition begins.
package feature

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// ErrUnknownFeature is returned by a strict resolver for a feature that was
// never declared enabled or disabled.
var ErrUnknownFeature = errors.New("unknown feature")

// Resolver reports whether a named feature is enabled.
type Resolver interface {
	Enabled(feature string) (bool, error)
}

// Set is a Resolver backed by a fixed map of feature states.
// In strict mode features missing from the map are an error; otherwise
// they resolve to disabled.
type Set struct {
	flags  map[string]bool
	strict bool
}

// NewSet creates a resolver from flags. The map is copied.
func NewSet(flags map[string]bool, strict bool) *Set {
	return &Set{
		flags:  maps.Clone(flags),
		strict: strict,
	}
}

// Enabled resolves feature against the set.
func (s *Set) Enabled(feature string) (bool, error) {
	if enabled, ok := s.flags[feature]; ok {
		return enabled, nil
	}
	if s.strict {
		return false, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}
	return false, nil
}

// EnabledFeatures lists the features that resolve to true, sorted.
func (s *Set) EnabledFeatures() []string {
	var out []string
	for name, on := range s.flags {
		if on {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// Strict reports whether unknown features are an error.
func (s *Set) Strict() bool {
	return s.strict
}
