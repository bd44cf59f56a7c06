package manifest

import (
	"fmt"
	"net/http"

	"github.com/JaimeStill/route-lab/pkg/middleware"
)

// Registry maps the names used in a manifest to concrete handlers,
// middleware and mountable services.
type Registry struct {
	handlers   map[string]http.Handler
	middleware map[string]middleware.Middleware
	services   map[string]http.Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		handlers:   make(map[string]http.Handler),
		middleware: make(map[string]middleware.Middleware),
		services:   make(map[string]http.Handler),
	}
}

// Handler registers a route handler under name.
func (r *Registry) Handler(name string, h http.Handler) *Registry {
	r.handlers[name] = h
	return r
}

// HandlerFunc registers a route handler function under name.
func (r *Registry) HandlerFunc(name string, fn http.HandlerFunc) *Registry {
	return r.Handler(name, fn)
}

// Middleware registers each middleware under its own name.
func (r *Registry) Middleware(mw ...middleware.Middleware) *Registry {
	for _, m := range mw {
		r.middleware[m.Name] = m
	}
	return r
}

// Service registers a mountable service under name.
func (r *Registry) Service(name string, h http.Handler) *Registry {
	r.services[name] = h
	return r
}

func (r *Registry) lookupHandler(name string) (http.Handler, error) {
	h, ok := r.handlers[name]
	if !ok {
		return nil, fmt.Errorf("%w: handler %q", ErrUnknownName, name)
	}
	return h, nil
}

func (r *Registry) lookupService(name string) (http.Handler, error) {
	h, ok := r.services[name]
	if !ok {
		return nil, fmt.Errorf("%w: service %q", ErrUnknownName, name)
	}
	return h, nil
}

func (r *Registry) lookupMiddleware(names []string) ([]middleware.Middleware, error) {
	if len(names) == 0 {
		return nil, nil
	}
	out := make([]middleware.Middleware, 0, len(names))
	for _, name := range names {
		mw, ok := r.middleware[name]
		if !ok {
			return nil, fmt.Errorf("%w: middleware %q", ErrUnknownName, name)
		}
		out = append(out, mw)
	}
	return out, nil
}
