// Package compose turns an application declaration into an ordered sequence
// of route registrations and service mounts against a dispatch backend.
//
// Composition walks the declaration depth-first. Application middleware
// forms the root chain. For each module, outer services are registered on
// the enclosing scope with that scope's chain; a sub-scope is then created
// at the joined prefix, with the module's middleware appended, and the inner
// services are registered against it. The walk order is the registration
// order, so two runs over the same declaration and feature set produce an
// identical call sequence.
package compose

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/feature"
)

// Summary describes one completed composition run.
type Summary struct {
	ID      uuid.UUID
	Routes  int
	Mounts  int
	Modules int
}

// Option configures a Composer.
type Option func(*Composer)

// WithResolver sets the feature resolver used to filter conditional
// services. Without one, every conditional feature resolves to disabled.
func WithResolver(r feature.Resolver) Option {
	return func(c *Composer) {
		c.resolver = r
	}
}

// WithLogger sets the logger for composition events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Composer) {
		c.logger = logger
	}
}

// Composer registers declarations against a Server.
type Composer struct {
	server   Server
	resolver feature.Resolver
	logger   *slog.Logger
}

// New creates a Composer targeting server.
func New(server Server, opts ...Option) *Composer {
	c := &Composer{
		server:   server,
		resolver: feature.NewSet(nil, false),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compose filters app against the configured features and registers every
// surviving service. The first error aborts composition; registrations
// already handed to the server are not rolled back, so callers must discard
// the server on error.
func (c *Composer) Compose(app *declare.Application) (Summary, error) {
	id := uuid.New()
	logger := c.logger.With("composition_id", id, "application", app.Name)
	start := time.Now()

	filtered, err := feature.FilterApplication(app, c.resolver)
	if err != nil {
		return Summary{}, fmt.Errorf("filter services: %w", err)
	}

	w := &walker{
		reg:      newRegistrar(c.server, logger),
		visiting: make(map[*declare.Module]bool),
	}
	root := newApp(w.reg, filtered.Middleware)

	if err := w.services(root, filtered.Services); err != nil {
		logger.Error("composition failed", "error", err)
		return Summary{}, err
	}

	summary := w.reg.count
	summary.ID = id

	logger.Info(
		"composition complete",
		"routes", summary.Routes,
		"mounts", summary.Mounts,
		"modules", summary.Modules,
		"duration", time.Since(start),
	)
	return summary, nil
}

type walker struct {
	reg      *registrar
	visiting map[*declare.Module]bool
}

func (w *walker) services(s Scope, nodes []declare.Node) error {
	for _, n := range nodes {
		var err error
		switch n := n.(type) {
		case declare.Route:
			err = s.AddRoute(n)
		case declare.Mount:
			err = s.AddService(n)
		case declare.ModuleRef:
			err = w.module(s, n.Module)
		default:
			err = &ConfigError{Op: "register", Err: fmt.Errorf("unsupported node kind %s", n.Kind())}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *walker) module(parent Scope, m *declare.Module) error {
	if m == nil {
		return &ConfigError{Op: "module", Path: parent.prefix(), Err: ErrNilModule}
	}
	if w.visiting[m] {
		return &ConfigError{Op: "module " + m.Name, Path: m.Prefix, Err: ErrModuleCycle}
	}
	w.visiting[m] = true
	defer delete(w.visiting, m)

	if err := w.services(parent, m.Outer); err != nil {
		return err
	}

	sub, err := createSubScope(w.reg, parent, m.Prefix, m.Middleware)
	if err != nil {
		return err
	}
	w.reg.logger.Debug(
		"scope created",
		"module", m.Name,
		"prefix", sub.prefix(),
		"middleware", sub.chain().Names(),
	)

	if err := w.services(sub, m.Inner); err != nil {
		return err
	}

	w.reg.count.Modules++
	return nil
}
