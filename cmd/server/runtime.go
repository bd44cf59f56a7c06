package main

import (
	"log/slog"
	"os"

	"github.com/JaimeStill/route-lab/internal/config"
	"github.com/JaimeStill/route-lab/pkg/lifecycle"
	"github.com/JaimeStill/route-lab/pkg/logging"
)

// Runtime holds the process-wide systems handlers and middleware share.
type Runtime struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
}

func NewRuntime(cfg *config.Config) *Runtime {
	return &Runtime{
		Lifecycle: lifecycle.New(),
		Logger:    logging.New(&cfg.Logging, os.Stdout),
	}
}
