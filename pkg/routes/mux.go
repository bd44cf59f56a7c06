package routes

import (
	"log/slog"
	"net/http"

	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/middleware"
)

type mux struct {
	table
	mux    *http.ServeMux
	logger *slog.Logger
}

// New creates a route system backed by http.ServeMux.
//
// ANY routes register method-less patterns. A route at "/" matches only the
// root path. Mounted services receive every request under their prefix with
// the prefix stripped.
func New(logger *slog.Logger) System {
	return &mux{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (m *mux) RegisterRoute(method declare.Method, path string, handler http.Handler, chain middleware.Chain) error {
	pattern := path
	if pattern == "/" {
		pattern = "/{$}"
	}
	if method != declare.MethodAny {
		pattern = string(method) + " " + pattern
	}

	if err := guard(func() { m.mux.Handle(pattern, chain.Apply(handler)) }); err != nil {
		return err
	}

	m.recordRoute(method, path, chain)
	return nil
}

func (m *mux) Mount(prefix string, handler http.Handler) error {
	pattern := prefix
	if pattern != "/" {
		pattern += "/"
	}

	if err := guard(func() { m.mux.Handle(pattern, stripPrefix(prefix, handler)) }); err != nil {
		return err
	}

	m.recordMount(prefix)
	return nil
}

// Build returns the ServeMux holding every registration.
func (m *mux) Build() http.Handler {
	m.logger.Debug("route system built", "backend", "mux", "registrations", len(m.routes))
	return m.mux
}
