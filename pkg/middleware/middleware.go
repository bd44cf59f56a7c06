// Package middleware provides named, composable HTTP middleware and the
// chain builder that orders them around a handler.
//
// A Chain is applied outermost-first: the first middleware in the chain sees
// the request first and the response last.
package middleware

import "net/http"

// Func wraps the next handler in the chain and returns a new handler.
type Func func(http.Handler) http.Handler

// Middleware is a named request-wrapping unit. The name only labels the
// middleware in logs and route tables; ordering is the sole semantic.
type Middleware struct {
	Name string
	Wrap Func
}

// New creates a named middleware from fn.
func New(name string, fn Func) Middleware {
	return Middleware{Name: name, Wrap: fn}
}

// Chain is an ordered sequence of middleware, outermost first.
type Chain []Middleware

// Extend returns a new chain holding c followed by mw.
// The receiver's backing array is never shared with the result, so sibling
// scopes extending the same parent chain cannot overwrite each other.
func (c Chain) Extend(mw ...Middleware) Chain {
	out := make(Chain, 0, len(c)+len(mw))
	out = append(out, c...)
	return append(out, mw...)
}

// Apply wraps handler with every middleware in the chain.
// An empty chain returns handler unchanged.
func (c Chain) Apply(handler http.Handler) http.Handler {
	for i := len(c) - 1; i >= 0; i-- {
		if c[i].Wrap == nil {
			continue
		}
		handler = c[i].Wrap(handler)
	}
	return handler
}

// Names returns the middleware names in chain order.
func (c Chain) Names() []string {
	names := make([]string, len(c))
	for i, mw := range c {
		names[i] = mw.Name
	}
	return names
}

// Build combines the accumulated ancestor chain with a route's own
// middleware. Ancestor middleware wraps the route middleware.
func Build(ancestors Chain, route []Middleware) Chain {
	return ancestors.Extend(route...)
}
