package main

import (
	"net/http"

	"github.com/JaimeStill/route-lab/pkg/handlers"
	"github.com/JaimeStill/route-lab/pkg/lifecycle"
)

// Handlers holds the route handlers available to declarations.
type Handlers struct {
	Abc      http.HandlerFunc
	Foobar   http.HandlerFunc
	Whatever http.HandlerFunc
	Healthz  http.HandlerFunc
	Readyz   http.HandlerFunc
	Static   http.Handler
}

func buildHandlers(runtime *Runtime) *Handlers {
	return &Handlers{
		Abc:      handleAbc,
		Foobar:   handleFoobar,
		Whatever: handleWhatever,
		Healthz:  handleHealthCheck,
		Readyz: func(w http.ResponseWriter, r *http.Request) {
			handleReadinessCheck(w, runtime.Lifecycle)
		},
		Static: http.FileServer(http.Dir("public")),
	}
}

func handleAbc(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"handler": "abc",
		"method":  r.Method,
		"path":    r.URL.Path,
	})
}

func handleFoobar(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"handler": "foobar",
		"path":    r.URL.Path,
	})
}

func handleWhatever(w http.ResponseWriter, r *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, map[string]string{
		"handler": "whatever",
		"method":  r.Method,
	})
}

// handleHealthCheck responds with OK status for health monitoring.
func handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	handlers.RespondText(w, http.StatusOK, "OK")
}

func handleReadinessCheck(w http.ResponseWriter, ready lifecycle.ReadinessChecker) {
	if !ready.Ready() {
		handlers.RespondText(w, http.StatusServiceUnavailable, "NOT READY")
		return
	}
	handlers.RespondText(w, http.StatusOK, "READY")
}
