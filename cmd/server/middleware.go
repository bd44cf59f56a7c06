package main

import (
	"github.com/JaimeStill/route-lab/internal/config"
	"github.com/JaimeStill/route-lab/pkg/logging"
	"github.com/JaimeStill/route-lab/pkg/middleware"
)

// Middleware holds the named middleware available to declarations.
type Middleware struct {
	TrimSlash middleware.Middleware
	AddSlash  middleware.Middleware
	RequestID middleware.Middleware
	Logger    middleware.Middleware
	Recover   middleware.Middleware
	CORS      middleware.Middleware
	BodyLimit middleware.Middleware
}

func buildMiddleware(runtime *Runtime, cfg *config.Config) *Middleware {
	return &Middleware{
		TrimSlash: middleware.TrimSlash(),
		AddSlash:  middleware.AddSlash(),
		RequestID: middleware.RequestID(),
		Logger:    middleware.Logger(logging.Component(runtime.Logger, "http")),
		Recover:   middleware.Recover(logging.Component(runtime.Logger, "recover")),
		CORS:      middleware.CORS(&cfg.CORS),
		BodyLimit: middleware.BodyLimit(cfg.Router.MaxBodySizeBytes()),
	}
}

func (m *Middleware) all() []middleware.Middleware {
	return []middleware.Middleware{
		m.TrimSlash,
		m.AddSlash,
		m.RequestID,
		m.Logger,
		m.Recover,
		m.CORS,
		m.BodyLimit,
	}
}
