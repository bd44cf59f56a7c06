package config

import (
	"fmt"
	"os"

	"github.com/docker/go-units"
)

const (
	EnvRouterBackend     = "ROUTER_BACKEND"
	EnvRouterManifest    = "ROUTER_MANIFEST"
	EnvRouterMaxBodySize = "ROUTER_MAX_BODY_SIZE"
)

// Router backends.
const (
	BackendMux = "mux"
	BackendChi = "chi"
)

// RouterConfig selects the dispatch backend and the declaration source.
type RouterConfig struct {
	// Backend is the dispatch implementation: "mux" or "chi".
	Backend string `toml:"backend"`
	// Manifest is an optional TOML declaration file. When empty the built-in
	// application declaration is used.
	Manifest       string `toml:"manifest"`
	MaxBodySize    string `toml:"max_body_size"`
	maxBodySizeVal int64
}

// MaxBodySizeBytes returns the parsed request body limit.
func (c *RouterConfig) MaxBodySizeBytes() int64 {
	return c.maxBodySizeVal
}

// Finalize applies defaults, loads environment overrides, and validates the router configuration.
func (c *RouterConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Override applies command-line values on top of a finalized configuration
// and revalidates it. Empty values are ignored. Environment variables are not
// reloaded, so flags take precedence over both files and env.
func (c *RouterConfig) Override(backend, manifest string) error {
	if backend != "" {
		c.Backend = backend
	}
	if manifest != "" {
		c.Manifest = manifest
	}
	return c.validate()
}

// Merge applies values from overlay configuration that differ from zero values.
func (c *RouterConfig) Merge(overlay *RouterConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Manifest != "" {
		c.Manifest = overlay.Manifest
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
}

func (c *RouterConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMux
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
}

func (c *RouterConfig) loadEnv() {
	if v := os.Getenv(EnvRouterBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvRouterManifest); v != "" {
		c.Manifest = v
	}
	if v := os.Getenv(EnvRouterMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *RouterConfig) validate() error {
	switch c.Backend {
	case BackendMux, BackendChi:
	default:
		return fmt.Errorf("invalid backend: %s (must be mux or chi)", c.Backend)
	}

	size, err := units.FromHumanSize(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_body_size must be positive")
	}
	c.maxBodySizeVal = size

	return nil
}
