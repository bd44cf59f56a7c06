// Package manifest loads application declarations from TOML files.
//
// A manifest names its handlers, middleware and mounted services; the names
// are resolved against a Registry supplied by the program. Modules are
// declared once under [modules.<name>] and referenced by name from any
// service list.
//
// Names are validated at load time for every entry, including entries and
// modules gated by a `when` condition. Feature flags are resolved later,
// during composition, so a manifest that loads is valid under every
// feature combination; a disabled module is still never visited by the
// composer.
//
//	name = "app"
//	middleware = ["trim_slash", "logger"]
//
//	[[services]]
//	kind = "route"
//	method = "POST"
//	path = "/test/abc"
//	handler = "abc"
//
//	[[services]]
//	kind = "module"
//	module = "collection"
//
//	[modules.collection]
//	prefix = "/collection"
//	middleware = ["recover"]
//
//	[[modules.collection.inner]]
//	kind = "route"
//	method = "ALL"
//	path = "/inner"
//	handler = "abc"
package manifest

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/route-lab/pkg/declare"
)

// Manifest errors.
var (
	ErrUnknownName  = errors.New("unknown name")
	ErrUnknownKind  = errors.New("unknown service kind")
	ErrModuleCycle  = errors.New("module reference cycle")
	ErrMissingField = errors.New("missing field")
)

// File is the TOML shape of a manifest.
type File struct {
	Name       string            `toml:"name"`
	Middleware []string          `toml:"middleware"`
	Services   []Service         `toml:"services"`
	Modules    map[string]Module `toml:"modules"`
}

// Module is the TOML shape of a module declaration.
type Module struct {
	Prefix     string    `toml:"prefix"`
	Middleware []string  `toml:"middleware"`
	Outer      []Service `toml:"outer"`
	Inner      []Service `toml:"inner"`
}

// Service is the TOML shape of one service list entry. Kind selects which
// of the remaining fields apply.
type Service struct {
	Kind       string   `toml:"kind"`
	Name       string   `toml:"name"`
	Method     string   `toml:"method"`
	Path       string   `toml:"path"`
	Handler    string   `toml:"handler"`
	Middleware []string `toml:"middleware"`
	Prefix     string   `toml:"prefix"`
	Service    string   `toml:"service"`
	Module     string   `toml:"module"`
	When       string   `toml:"when"`
}

// Load reads the manifest at path and resolves it against reg.
func Load(path string, reg *Registry) (*declare.Application, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	app, err := Parse(data, reg)
	if err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}
	return app, nil
}

// Parse decodes a TOML manifest and resolves it against reg.
func Parse(data []byte, reg *Registry) (*declare.Application, error) {
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}
	return f.Resolve(reg)
}

// Resolve converts the manifest into a declaration tree.
// Each named module is built once; every reference to it shares the same
// *declare.Module.
func (f *File) Resolve(reg *Registry) (*declare.Application, error) {
	r := &resolver{
		file:     f,
		reg:      reg,
		built:    make(map[string]*declare.Module),
		visiting: make(map[string]bool),
	}

	mw, err := reg.lookupMiddleware(f.Middleware)
	if err != nil {
		return nil, fmt.Errorf("application middleware: %w", err)
	}

	services, err := r.services(f.Services)
	if err != nil {
		return nil, fmt.Errorf("services: %w", err)
	}

	return &declare.Application{
		Name:       f.Name,
		Middleware: mw,
		Services:   services,
	}, nil
}

type resolver struct {
	file     *File
	reg      *Registry
	built    map[string]*declare.Module
	visiting map[string]bool
}

func (r *resolver) services(list []Service) ([]declare.Node, error) {
	nodes := make([]declare.Node, 0, len(list))
	for i, s := range list {
		n, err := r.service(s)
		if err != nil {
			return nil, fmt.Errorf("[%d] %s: %w", i, s.Kind, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func (r *resolver) service(s Service) (declare.Node, error) {
	cond, err := declare.ParseCondition(s.When)
	if err != nil {
		return nil, err
	}

	switch s.Kind {
	case "route":
		return r.route(s, cond)
	case "mount":
		return r.mount(s, cond)
	case "module":
		if s.Module == "" {
			return nil, fmt.Errorf("%w: module", ErrMissingField)
		}
		m, err := r.module(s.Module)
		if err != nil {
			return nil, err
		}
		return declare.ModuleRef{Module: m, Cond: cond}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

func (r *resolver) route(s Service, cond declare.Condition) (declare.Node, error) {
	method, err := declare.ParseMethod(s.Method)
	if err != nil {
		return nil, err
	}
	if s.Handler == "" {
		return nil, fmt.Errorf("%w: handler", ErrMissingField)
	}
	h, err := r.reg.lookupHandler(s.Handler)
	if err != nil {
		return nil, err
	}
	mw, err := r.reg.lookupMiddleware(s.Middleware)
	if err != nil {
		return nil, err
	}

	name := s.Name
	if name == "" {
		name = s.Handler
	}

	return declare.Route{
		Name:       name,
		Method:     method,
		Path:       s.Path,
		Handler:    h,
		Middleware: mw,
		Cond:       cond,
	}, nil
}

func (r *resolver) mount(s Service, cond declare.Condition) (declare.Node, error) {
	if s.Service == "" {
		return nil, fmt.Errorf("%w: service", ErrMissingField)
	}
	h, err := r.reg.lookupService(s.Service)
	if err != nil {
		return nil, err
	}

	name := s.Name
	if name == "" {
		name = s.Service
	}

	return declare.Mount{
		Name:    name,
		Prefix:  s.Prefix,
		Handler: h,
		Cond:    cond,
	}, nil
}

func (r *resolver) module(name string) (*declare.Module, error) {
	if m, ok := r.built[name]; ok {
		return m, nil
	}
	if r.visiting[name] {
		return nil, fmt.Errorf("%w: %s", ErrModuleCycle, name)
	}

	def, ok := r.file.Modules[name]
	if !ok {
		return nil, fmt.Errorf("%w: module %q", ErrUnknownName, name)
	}

	r.visiting[name] = true
	defer delete(r.visiting, name)

	mw, err := r.reg.lookupMiddleware(def.Middleware)
	if err != nil {
		return nil, fmt.Errorf("module %s: %w", name, err)
	}
	outer, err := r.services(def.Outer)
	if err != nil {
		return nil, fmt.Errorf("module %s outer: %w", name, err)
	}
	inner, err := r.services(def.Inner)
	if err != nil {
		return nil, fmt.Errorf("module %s inner: %w", name, err)
	}

	m := &declare.Module{
		Name:       name,
		Prefix:     def.Prefix,
		Middleware: mw,
		Outer:      outer,
		Inner:      inner,
	}
	r.built[name] = m
	return m, nil
}
