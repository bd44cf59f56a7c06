package routes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/middleware"
)

type chiSystem struct {
	table
	router chi.Router
	logger *slog.Logger
}

// NewChi creates a route system backed by a chi router.
// Mounted services receive every request under their prefix with the
// prefix stripped, matching the ServeMux backend.
func NewChi(logger *slog.Logger) System {
	return &chiSystem{
		router: chi.NewRouter(),
		logger: logger,
	}
}

func (c *chiSystem) RegisterRoute(method declare.Method, path string, handler http.Handler, chain middleware.Chain) error {
	wrapped := chain.Apply(handler)

	err := guard(func() {
		if method == declare.MethodAny {
			c.router.Handle(path, wrapped)
			return
		}
		c.router.Method(string(method), path, wrapped)
	})
	if err != nil {
		return err
	}

	c.recordRoute(method, path, chain)
	return nil
}

func (c *chiSystem) Mount(prefix string, handler http.Handler) error {
	if err := guard(func() { c.router.Mount(prefix, stripPrefix(prefix, handler)) }); err != nil {
		return err
	}

	c.recordMount(prefix)
	return nil
}

// Build returns the chi router holding every registration.
func (c *chiSystem) Build() http.Handler {
	c.logger.Debug("route system built", "backend", "chi", "registrations", len(c.routes))
	return c.router
}
