package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/route-lab/internal/config"
	"github.com/JaimeStill/route-lab/internal/server"
	"github.com/JaimeStill/route-lab/pkg/compose"
	"github.com/JaimeStill/route-lab/pkg/logging"
	"github.com/JaimeStill/route-lab/pkg/middleware"
	"github.com/JaimeStill/route-lab/pkg/routes"
)

// Server coordinates the lifecycle of all subsystems.
type Server struct {
	runtime *Runtime
	http    server.System
}

// NewServer composes the routing tree and prepares the HTTP server.
func NewServer(cfg *config.Config) (*Server, error) {
	runtime := NewRuntime(cfg)

	rs, summary, err := composeRoutes(cfg, runtime, runtime.Logger)
	if err != nil {
		return nil, err
	}

	runtime.Logger.Info(
		"server initialized",
		"addr", cfg.Server.Addr(),
		"backend", cfg.Router.Backend,
		"composition_id", summary.ID,
	)

	return &Server{
		runtime: runtime,
		http:    server.New(&cfg.Server, buildHandler(rs), runtime.Logger),
	}, nil
}

// Start begins all subsystems and returns when they are ready.
func (s *Server) Start() error {
	s.runtime.Logger.Info("starting service")

	if err := s.http.Start(s.runtime.Lifecycle); err != nil {
		return err
	}

	go func() {
		s.runtime.Lifecycle.WaitForStartup()
		s.runtime.Logger.Info("all subsystems ready")
	}()

	return nil
}

// Shutdown gracefully stops all subsystems within the timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.runtime.Logger.Info("initiating shutdown")
	return s.runtime.Lifecycle.Shutdown(timeout)
}

func newRouteSystem(cfg *config.RouterConfig, logger *slog.Logger) routes.System {
	if cfg.Backend == config.BackendChi {
		return routes.NewChi(logger)
	}
	return routes.New(logger)
}

// buildHandler wraps the composed routing tree with TrimSlash so that
// trailing-slash requests redirect before route matching.
func buildHandler(rs routes.System) http.Handler {
	return middleware.TrimSlash().Wrap(rs.Build())
}

// composeRoutes declares the application and composes it onto the
// configured backend.
func composeRoutes(cfg *config.Config, runtime *Runtime, logger *slog.Logger) (routes.System, compose.Summary, error) {
	h := buildHandlers(runtime)
	mw := buildMiddleware(runtime, cfg)

	app, err := loadApplication(cfg, h, mw)
	if err != nil {
		return nil, compose.Summary{}, err
	}

	rs := newRouteSystem(&cfg.Router, logging.Component(logger, "routes"))
	composer := compose.New(
		rs,
		compose.WithResolver(cfg.Features.Resolver()),
		compose.WithLogger(logging.Component(logger, "compose")),
	)

	summary, err := composer.Compose(app)
	if err != nil {
		return nil, compose.Summary{}, fmt.Errorf("compose routes: %w", err)
	}
	return rs, summary, nil
}
