// Package declare defines the declaration data model for a routing tree:
// routes, mounted services and module references composed into ordered
// service lists.
//
// Declarations are plain data. They are built once at startup, either with
// the constructors in this package or by the manifest loader, and are never
// mutated by composition.
package declare

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/JaimeStill/route-lab/pkg/middleware"
)

// Method is the HTTP method a route answers to.
type Method string

// Supported route methods. MethodAny matches every request method.
const (
	MethodGet  Method = "GET"
	MethodPost Method = "POST"
	MethodAny  Method = "ANY"
)

// ParseMethod converts s into a Method. Matching is case-insensitive and
// "ALL" is accepted as an alias of ANY.
func ParseMethod(s string) (Method, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GET":
		return MethodGet, nil
	case "POST":
		return MethodPost, nil
	case "ANY", "ALL":
		return MethodAny, nil
	default:
		return "", fmt.Errorf("invalid method: %q (must be GET, POST, or ANY)", s)
	}
}

// Kind identifies the variant of a Node.
type Kind int

const (
	KindRoute Kind = iota
	KindMount
	KindModule
)

func (k Kind) String() string {
	switch k {
	case KindRoute:
		return "route"
	case KindMount:
		return "mount"
	case KindModule:
		return "module"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one entry of a service list: a Route, a Mount or a ModuleRef.
// The set of implementations is closed.
type Node interface {
	Kind() Kind
	Condition() Condition
	node()
}

// Route binds a handler to a method and path, wrapped by route-level middleware.
type Route struct {
	Name       string
	Method     Method
	Path       string
	Handler    http.Handler
	Middleware []middleware.Middleware
	Cond       Condition
}

func (Route) Kind() Kind             { return KindRoute }
func (r Route) Condition() Condition { return r.Cond }
func (Route) node()                  {}

// If returns a copy of r included only when feature is enabled.
func (r Route) If(feature string) Route {
	r.Cond = Condition{Feature: feature}
	return r
}

// Unless returns a copy of r included only when feature is disabled.
func (r Route) Unless(feature string) Route {
	r.Cond = Condition{Feature: feature, Not: true}
	return r
}

// Named returns a copy of r carrying name.
func (r Route) Named(name string) Route {
	r.Name = name
	return r
}

// Mount attaches a self-dispatching service, such as a static file server,
// under Prefix. Mounted services carry their own dispatch and are not
// wrapped by scope middleware.
type Mount struct {
	Name    string
	Prefix  string
	Handler http.Handler
	Cond    Condition
}

func (Mount) Kind() Kind             { return KindMount }
func (m Mount) Condition() Condition { return m.Cond }
func (Mount) node()                  {}

// If returns a copy of m included only when feature is enabled.
func (m Mount) If(feature string) Mount {
	m.Cond = Condition{Feature: feature}
	return m
}

// Unless returns a copy of m included only when feature is disabled.
func (m Mount) Unless(feature string) Mount {
	m.Cond = Condition{Feature: feature, Not: true}
	return m
}

// ModuleRef places a Module declaration into a service list.
type ModuleRef struct {
	Module *Module
	Cond   Condition
}

func (ModuleRef) Kind() Kind             { return KindModule }
func (m ModuleRef) Condition() Condition { return m.Cond }
func (ModuleRef) node()                  {}

// If returns a copy of m included only when feature is enabled.
func (m ModuleRef) If(feature string) ModuleRef {
	m.Cond = Condition{Feature: feature}
	return m
}

// Unless returns a copy of m included only when feature is disabled.
func (m ModuleRef) Unless(feature string) ModuleRef {
	m.Cond = Condition{Feature: feature, Not: true}
	return m
}

// Module is a prefixed scope with its own middleware.
//
// Inner services are registered under Prefix and wrapped by Middleware.
// Outer services are registered on the enclosing scope, unaffected by
// either. An empty Prefix groups inner services under the enclosing
// scope's prefix.
type Module struct {
	Name       string
	Prefix     string
	Middleware []middleware.Middleware
	Outer      []Node
	Inner      []Node
}

// Application is the top-level declaration. It has no prefix and a single
// service list; its middleware wraps every route in the tree.
type Application struct {
	Name       string
	Middleware []middleware.Middleware
	Services   []Node
}

// Get declares a GET route.
func Get(path string, handler http.Handler, mw ...middleware.Middleware) Route {
	return Route{Method: MethodGet, Path: path, Handler: handler, Middleware: mw}
}

// Post declares a POST route.
func Post(path string, handler http.Handler, mw ...middleware.Middleware) Route {
	return Route{Method: MethodPost, Path: path, Handler: handler, Middleware: mw}
}

// Any declares a route matching every method.
func Any(path string, handler http.Handler, mw ...middleware.Middleware) Route {
	return Route{Method: MethodAny, Path: path, Handler: handler, Middleware: mw}
}

// Service declares a mounted service under prefix.
func Service(prefix string, handler http.Handler) Mount {
	return Mount{Prefix: prefix, Handler: handler}
}

// Include references module from a service list.
func Include(module *Module) ModuleRef {
	return ModuleRef{Module: module}
}
