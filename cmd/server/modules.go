package main

import (
	"fmt"

	"github.com/JaimeStill/route-lab/internal/config"
	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/manifest"
	"github.com/JaimeStill/route-lab/pkg/middleware"
)

// FeatureStaticFiles gates the static file service.
const FeatureStaticFiles = "static-files"

func newCollectionModule(h *Handlers, mw *Middleware) *declare.Module {
	return &declare.Module{
		Name:       "collection",
		Prefix:     "/collection",
		Middleware: []middleware.Middleware{mw.Recover},
		Inner: []declare.Node{
			declare.Any("/inner", h.Abc).Named("inner"),
		},
		Outer: []declare.Node{
			declare.Any("/outer", h.Abc).Named("outer"),
		},
	}
}

// newApplication declares the built-in routing tree.
func newApplication(h *Handlers, mw *Middleware) *declare.Application {
	return &declare.Application{
		Name: "route-lab",
		Middleware: []middleware.Middleware{
			mw.RequestID,
			mw.Logger,
			mw.CORS,
			mw.BodyLimit,
		},
		Services: []declare.Node{
			declare.Service("/static", h.Static).If(FeatureStaticFiles),
			declare.Get("/healthz", h.Healthz).Named("healthz"),
			declare.Get("/readyz", h.Readyz).Named("readyz"),
			declare.Post("/test/abc", h.Abc).Named("abc"),
			declare.Get("/foo", h.Foobar, mw.Recover).Named("foobar"),
			declare.Any("/whatever", h.Whatever).Named("whatever"),
			declare.Include(newCollectionModule(h, mw)),
		},
	}
}

func newRegistry(h *Handlers, mw *Middleware) *manifest.Registry {
	return manifest.NewRegistry().
		HandlerFunc("abc", h.Abc).
		HandlerFunc("foobar", h.Foobar).
		HandlerFunc("whatever", h.Whatever).
		HandlerFunc("healthz", h.Healthz).
		HandlerFunc("readyz", h.Readyz).
		Service("static", h.Static).
		Middleware(mw.all()...)
}

// loadApplication returns the manifest declaration when one is configured,
// otherwise the built-in declaration.
func loadApplication(cfg *config.Config, h *Handlers, mw *Middleware) (*declare.Application, error) {
	if cfg.Router.Manifest == "" {
		return newApplication(h, mw), nil
	}

	app, err := manifest.Load(cfg.Router.Manifest, newRegistry(h, mw))
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	return app, nil
}
