// Package routes provides dispatch backends for composed routing trees.
// A backend records every registration in order and builds an http.Handler
// that serves them.
package routes

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/middleware"
)

// ErrConflict is returned when the underlying router rejects a pattern,
// typically because it overlaps an existing registration.
var ErrConflict = errors.New("route conflict")

// System defines the interface for route registration and HTTP handler building.
type System interface {
	RegisterRoute(method declare.Method, path string, handler http.Handler, chain middleware.Chain) error
	Mount(prefix string, handler http.Handler) error
	Routes() []Route
	Build() http.Handler
}

// Kind distinguishes route registrations from mounted services.
type Kind string

const (
	KindRoute Kind = "route"
	KindMount Kind = "mount"
)

// Route is one recorded registration. Mounts have no method or middleware.
type Route struct {
	Kind       Kind
	Method     declare.Method
	Pattern    string
	Middleware []string
}

func (r Route) String() string {
	if r.Kind == KindMount {
		return fmt.Sprintf("MOUNT %s", r.Pattern)
	}
	return fmt.Sprintf("%s %s [%s]", r.Method, r.Pattern, strings.Join(r.Middleware, ", "))
}

// table is the ordered registration record shared by every backend.
type table struct {
	routes []Route
}

func (t *table) recordRoute(method declare.Method, path string, chain middleware.Chain) {
	t.routes = append(t.routes, Route{
		Kind:       KindRoute,
		Method:     method,
		Pattern:    path,
		Middleware: chain.Names(),
	})
}

func (t *table) recordMount(prefix string) {
	t.routes = append(t.routes, Route{Kind: KindMount, Pattern: prefix})
}

// Routes returns a copy of the registrations in the order they were made.
func (t *table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		r.Middleware = slices.Clone(r.Middleware)
		out[i] = r
	}
	return out
}

// stripPrefix removes prefix from mounted service requests so the service
// sees paths relative to its mount point. Root mounts are passed through.
func stripPrefix(prefix string, handler http.Handler) http.Handler {
	if prefix == "/" {
		return handler
	}
	return http.StripPrefix(prefix, handler)
}

// guard converts a router registration panic into an ErrConflict error.
func guard(register func()) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: %v", ErrConflict, rec)
		}
	}()
	register()
	return nil
}
