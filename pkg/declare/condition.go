package declare

import (
	"fmt"
	"strings"
)

// Condition gates a node on a feature flag. The zero value is
// unconditional. Conditions are resolved once, at composition time.
type Condition struct {
	Feature string
	Not     bool
}

// Unconditional reports whether the condition always holds.
func (c Condition) Unconditional() bool {
	return c.Feature == ""
}

// Holds reports whether the condition is satisfied given the resolved
// state of its feature.
func (c Condition) Holds(enabled bool) bool {
	if c.Unconditional() {
		return true
	}
	return enabled != c.Not
}

func (c Condition) String() string {
	switch {
	case c.Unconditional():
		return ""
	case c.Not:
		return "!" + c.Feature
	default:
		return c.Feature
	}
}

// ParseCondition parses "feature" or "!feature". An empty string yields the
// unconditional zero value.
func ParseCondition(s string) (Condition, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Condition{}, nil
	}

	c := Condition{Feature: s}
	if rest, ok := strings.CutPrefix(s, "!"); ok {
		c = Condition{Feature: strings.TrimSpace(rest), Not: true}
	}

	if c.Feature == "" || strings.ContainsAny(c.Feature, " \t!") {
		return Condition{}, fmt.Errorf("invalid condition: %q", s)
	}
	return c, nil
}
