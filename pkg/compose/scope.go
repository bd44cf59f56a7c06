package compose

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/middleware"
)

// Server is the dispatch backend the composer registers against.
// Calls arrive in composition-walk order with fully resolved paths and
// middleware chains.
type Server interface {
	RegisterRoute(method declare.Method, path string, handler http.Handler, chain middleware.Chain) error
	Mount(prefix string, handler http.Handler) error
}

// Scope is a registration target: either the application root or a
// prefixed sub-scope created for a module's inner services.
type Scope interface {
	AddRoute(route declare.Route) error
	AddService(mount declare.Mount) error

	prefix() string
	chain() middleware.Chain
}

// registrar owns the state shared by every scope of one composition run.
type registrar struct {
	server Server
	logger *slog.Logger
	routes map[string]struct{}
	mounts map[string]struct{}
	count  Summary
}

func newRegistrar(server Server, logger *slog.Logger) *registrar {
	return &registrar{
		server: server,
		logger: logger,
		routes: make(map[string]struct{}),
		mounts: make(map[string]struct{}),
	}
}

func (r *registrar) route(path string, chain middleware.Chain, route declare.Route) error {
	fail := func(err error) error {
		return &ConfigError{Op: "register route", Method: string(route.Method), Path: path, Err: err}
	}

	method, err := declare.ParseMethod(string(route.Method))
	if err != nil {
		return fail(err)
	}
	route.Method = method

	if route.Handler == nil {
		return fail(ErrNilHandler)
	}

	key := string(route.Method) + " " + path
	if _, exists := r.routes[key]; exists {
		return fail(ErrDuplicateRoute)
	}

	full := middleware.Build(chain, route.Middleware)
	if err := r.server.RegisterRoute(route.Method, path, route.Handler, full); err != nil {
		return fail(err)
	}

	r.routes[key] = struct{}{}
	r.count.Routes++
	r.logger.Debug(
		"route registered",
		"method", route.Method,
		"path", path,
		"name", route.Name,
		"middleware", full.Names(),
	)
	return nil
}

func (r *registrar) mount(prefix string, mount declare.Mount) error {
	fail := func(err error) error {
		return &ConfigError{Op: "mount service", Path: prefix, Err: err}
	}

	if mount.Handler == nil {
		return fail(ErrNilHandler)
	}
	if _, exists := r.mounts[prefix]; exists {
		return fail(ErrDuplicateMount)
	}
	if err := r.server.Mount(prefix, mount.Handler); err != nil {
		return fail(err)
	}

	r.mounts[prefix] = struct{}{}
	r.count.Mounts++
	r.logger.Debug("service mounted", "prefix", prefix, "name", mount.Name)
	return nil
}

// app is the application root scope: no prefix, application middleware.
type app struct {
	reg        *registrar
	middleware middleware.Chain
}

func newApp(reg *registrar, mw []middleware.Middleware) *app {
	return &app{reg: reg, middleware: middleware.Chain(nil).Extend(mw...)}
}

func (a *app) AddRoute(route declare.Route) error {
	path, err := NormalizePath(route.Path)
	if err != nil {
		return &ConfigError{Op: "register route", Method: string(route.Method), Path: route.Path, Err: err}
	}
	return a.reg.route(path, a.middleware, route)
}

func (a *app) AddService(mount declare.Mount) error {
	prefix, err := NormalizePath(mount.Prefix)
	if err != nil {
		return &ConfigError{Op: "mount service", Path: mount.Prefix, Err: err}
	}
	return a.reg.mount(prefix, mount)
}

func (a *app) prefix() string          { return "/" }
func (a *app) chain() middleware.Chain { return a.middleware }

// scope is a module's inner scope, rooted at the concatenated prefix.
type scope struct {
	reg        *registrar
	root       string
	middleware middleware.Chain
}

func (s *scope) AddRoute(route declare.Route) error {
	path, err := JoinPath(s.root, route.Path)
	if err != nil {
		return &ConfigError{Op: "register route", Method: string(route.Method), Path: s.root + route.Path, Err: err}
	}
	return s.reg.route(path, s.middleware, route)
}

func (s *scope) AddService(mount declare.Mount) error {
	prefix, err := JoinPath(s.root, mount.Prefix)
	if err != nil {
		return &ConfigError{Op: "mount service", Path: s.root + mount.Prefix, Err: err}
	}
	return s.reg.mount(prefix, mount)
}

func (s *scope) prefix() string          { return s.root }
func (s *scope) chain() middleware.Chain { return s.middleware }

// createSubScope roots a new scope at parent's prefix joined with prefix.
// An empty prefix roots it at parent's prefix. Its chain is parent's chain
// followed by mw.
func createSubScope(reg *registrar, parent Scope, prefix string, mw []middleware.Middleware) (Scope, error) {
	if prefix == "" {
		prefix = "/"
	}
	root, err := JoinPath(parent.prefix(), prefix)
	if err != nil {
		return nil, &ConfigError{
			Op:   "create scope",
			Path: fmt.Sprintf("%s + %s", parent.prefix(), prefix),
			Err:  err,
		}
	}
	return &scope{
		reg:        reg,
		root:       root,
		middleware: parent.chain().Extend(mw...),
	}, nil
}
