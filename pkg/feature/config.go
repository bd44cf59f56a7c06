package feature

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
)

// Env maps environment variable names for feature configuration.
type Env struct {
	Enabled  string
	Disabled string
	Strict   string
}

// Config holds feature flag settings.
type Config struct {
	Enabled  []string `toml:"enabled"`
	Disabled []string `toml:"disabled"`
	Strict   bool     `toml:"strict"`
}

// Finalize loads environment overrides and validates the configuration.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge applies values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.Enabled != nil {
		c.Enabled = overlay.Enabled
	}
	if overlay.Disabled != nil {
		c.Disabled = overlay.Disabled
	}
	if overlay.Strict {
		c.Strict = true
	}
}

// Resolver builds the Set described by the configuration.
func (c *Config) Resolver() *Set {
	flags := make(map[string]bool, len(c.Enabled)+len(c.Disabled))
	for _, name := range c.Disabled {
		flags[name] = false
	}
	for _, name := range c.Enabled {
		flags[name] = true
	}
	return NewSet(flags, c.Strict)
}

func (c *Config) loadEnv(env *Env) {
	if env.Enabled != "" {
		if v := os.Getenv(env.Enabled); v != "" {
			c.Enabled = splitNames(v)
		}
	}
	if env.Disabled != "" {
		if v := os.Getenv(env.Disabled); v != "" {
			c.Disabled = splitNames(v)
		}
	}
	if env.Strict != "" {
		if v := os.Getenv(env.Strict); v != "" {
			if strict, err := strconv.ParseBool(v); err == nil {
				c.Strict = strict
			}
		}
	}
}

func (c *Config) validate() error {
	for _, name := range c.Enabled {
		if name == "" {
			return fmt.Errorf("empty feature name in enabled")
		}
		if slices.Contains(c.Disabled, name) {
			return fmt.Errorf("feature %q is both enabled and disabled", name)
		}
	}
	for _, name := range c.Disabled {
		if name == "" {
			return fmt.Errorf("empty feature name in disabled")
		}
	}
	return nil
}

func splitNames(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
