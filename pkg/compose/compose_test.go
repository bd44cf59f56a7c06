package compose_test

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/JaimeStill/route-lab/pkg/compose"
	"github.com/JaimeStill/route-lab/pkg/declare"
	"github.com/JaimeStill/route-lab/pkg/feature"
	"github.com/JaimeStill/route-lab/pkg/middleware"
	"github.com/JaimeStill/route-lab/pkg/routes"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func noop() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

func named(name string) middleware.Middleware {
	return middleware.New(name, func(next http.Handler) http.Handler { return next })
}

// tracing returns middleware that appends "<name>-before" and "<name>-after"
// around the next handler.
func tracing(name string, trace *[]string) middleware.Middleware {
	return middleware.New(name, func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trace = append(*trace, name+"-before")
			next.ServeHTTP(w, r)
			*trace = append(*trace, name+"-after")
		})
	})
}

func composeRoutes(t *testing.T, app *declare.Application, opts ...compose.Option) (routes.System, compose.Summary) {
	t.Helper()
	rs := routes.New(testLogger())
	summary, err := compose.New(rs, opts...).Compose(app)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	return rs, summary
}

func route(method declare.Method, pattern string, mw ...string) routes.Route {
	if mw == nil {
		mw = []string{}
	}
	return routes.Route{Kind: routes.KindRoute, Method: method, Pattern: pattern, Middleware: mw}
}

func mount(prefix string) routes.Route {
	return routes.Route{Kind: routes.KindMount, Pattern: prefix}
}

func assertRoutes(t *testing.T, got, want []routes.Route) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("registrations = %v, want %v", got, want)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("registration[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func endToEndApp() *declare.Application {
	return &declare.Application{
		Name:       "test",
		Middleware: []middleware.Middleware{named("Log")},
		Services: []declare.Node{
			declare.Post("/test/abc", noop()),
			declare.Include(&declare.Module{
				Name:       "collection",
				Prefix:     "/collection",
				Middleware: []middleware.Middleware{named("Err")},
				Inner:      []declare.Node{declare.Any("/inner", noop())},
				Outer:      []declare.Node{declare.Any("/outer", noop())},
			}),
		},
	}
}

func TestCompose_EndToEnd(t *testing.T) {
	rs, summary := composeRoutes(t, endToEndApp())

	assertRoutes(t, rs.Routes(), []routes.Route{
		route(declare.MethodPost, "/test/abc", "Log"),
		route(declare.MethodAny, "/outer", "Log"),
		route(declare.MethodAny, "/collection/inner", "Log", "Err"),
	})

	if summary.Routes != 3 || summary.Mounts != 0 || summary.Modules != 1 {
		t.Errorf("summary = %+v, want 3 routes, 0 mounts, 1 module", summary)
	}
}

func TestCompose_Deterministic(t *testing.T) {
	app := endToEndApp()
	resolver := feature.NewSet(map[string]bool{"extra": true}, false)
	app.Services = append(app.Services,
		declare.Get("/extra", noop()).If("extra"),
		declare.Service("/static", noop()),
	)

	first, s1 := composeRoutes(t, app, compose.WithResolver(resolver))
	second, s2 := composeRoutes(t, app, compose.WithResolver(resolver))

	if !reflect.DeepEqual(first.Routes(), second.Routes()) {
		t.Errorf("runs differ:\nfirst  = %v\nsecond = %v", first.Routes(), second.Routes())
	}
	if s1.ID == s2.ID {
		t.Error("composition runs share an ID")
	}
}

func TestCompose_PrefixConcatenation(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		path   string
	}{
		{"clean", "/collection", "/inner"},
		{"prefix trailing slash", "/collection/", "/inner"},
		{"path trailing slash", "/collection", "/inner/"},
		{"no leading slashes", "collection", "inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &declare.Application{
				Services: []declare.Node{
					declare.Include(&declare.Module{
						Prefix: tt.prefix,
						Inner:  []declare.Node{declare.Get(tt.path, noop())},
					}),
				},
			}

			rs, _ := composeRoutes(t, app)

			assertRoutes(t, rs.Routes(), []routes.Route{
				route(declare.MethodGet, "/collection/inner"),
			})
		})
	}
}

func TestCompose_OuterBypassesModule(t *testing.T) {
	child := &declare.Module{
		Name:       "child",
		Prefix:     "/child",
		Middleware: []middleware.Middleware{named("C")},
		Inner:      []declare.Node{declare.Get("/in", noop())},
		Outer:      []declare.Node{declare.Get("/out", noop())},
	}
	parent := &declare.Module{
		Name:       "parent",
		Prefix:     "/parent",
		Middleware: []middleware.Middleware{named("P")},
		Inner:      []declare.Node{declare.Include(child)},
	}
	app := &declare.Application{
		Middleware: []middleware.Middleware{named("App")},
		Services:   []declare.Node{declare.Include(parent)},
	}

	rs, summary := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{
		route(declare.MethodGet, "/parent/out", "App", "P"),
		route(declare.MethodGet, "/parent/child/in", "App", "P", "C"),
	})

	if summary.Modules != 2 {
		t.Errorf("Modules = %d, want 2", summary.Modules)
	}
}

func TestCompose_ModuleWithoutPrefix(t *testing.T) {
	app := &declare.Application{
		Middleware: []middleware.Middleware{named("App")},
		Services: []declare.Node{
			declare.Include(&declare.Module{
				Prefix: "/api",
				Inner: []declare.Node{
					declare.Include(&declare.Module{
						Middleware: []middleware.Middleware{named("Auth")},
						Inner:      []declare.Node{declare.Get("/me", noop())},
					}),
				},
			}),
		},
	}

	rs, _ := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{
		route(declare.MethodGet, "/api/me", "App", "Auth"),
	})
}

func TestCompose_RouteMiddlewareAfterAncestors(t *testing.T) {
	app := &declare.Application{
		Middleware: []middleware.Middleware{named("A"), named("B")},
		Services: []declare.Node{
			declare.Get("/r", noop(), named("C")),
		},
	}

	rs, _ := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{
		route(declare.MethodGet, "/r", "A", "B", "C"),
	})
}

func TestCompose_MiddlewareOnionOrder(t *testing.T) {
	var trace []string

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		trace = append(trace, "handler")
	})

	app := &declare.Application{
		Middleware: []middleware.Middleware{tracing("A", &trace)},
		Services: []declare.Node{
			declare.Include(&declare.Module{
				Prefix:     "/m",
				Middleware: []middleware.Middleware{tracing("B", &trace)},
				Inner: []declare.Node{
					declare.Get("/r", handler, tracing("C", &trace)),
				},
			}),
		},
	}

	rs, _ := composeRoutes(t, app)

	req := httptest.NewRequest(http.MethodGet, "/m/r", nil)
	w := httptest.NewRecorder()
	rs.Build().ServeHTTP(w, req)

	expected := []string{
		"A-before", "B-before", "C-before",
		"handler",
		"C-after", "B-after", "A-after",
	}
	if !reflect.DeepEqual(trace, expected) {
		t.Errorf("trace = %v, want %v", trace, expected)
	}
}

func TestCompose_NoMiddlewareRunsHandlerDirectly(t *testing.T) {
	app := &declare.Application{
		Services: []declare.Node{
			declare.Get("/plain", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("plain"))
			})),
		},
	}

	rs, _ := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{route(declare.MethodGet, "/plain")})

	req := httptest.NewRequest(http.MethodGet, "/plain", nil)
	w := httptest.NewRecorder()
	rs.Build().ServeHTTP(w, req)

	body, _ := io.ReadAll(w.Result().Body)
	if string(body) != "plain" {
		t.Errorf("body = %q, want %q", string(body), "plain")
	}
}

func TestCompose_SiblingScopesKeepSeparateChains(t *testing.T) {
	app := &declare.Application{
		Middleware: []middleware.Middleware{named("App")},
		Services: []declare.Node{
			declare.Include(&declare.Module{
				Prefix:     "/p",
				Middleware: []middleware.Middleware{named("P")},
				Inner: []declare.Node{
					declare.Include(&declare.Module{
						Prefix:     "/x",
						Middleware: []middleware.Middleware{named("X")},
						Inner:      []declare.Node{declare.Get("/r", noop())},
					}),
					declare.Include(&declare.Module{
						Prefix:     "/y",
						Middleware: []middleware.Middleware{named("Y")},
						Inner:      []declare.Node{declare.Get("/r", noop())},
					}),
					declare.Get("/r", noop()),
				},
			}),
		},
	}

	rs, _ := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{
		route(declare.MethodGet, "/p/x/r", "App", "P", "X"),
		route(declare.MethodGet, "/p/y/r", "App", "P", "Y"),
		route(declare.MethodGet, "/p/r", "App", "P"),
	})
}

func TestCompose_MountsArePrefixedAndUnwrapped(t *testing.T) {
	files := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.URL.Path))
	})
	stamp := middleware.New("stamp", func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Stamp", "1")
			next.ServeHTTP(w, r)
		})
	})

	app := &declare.Application{
		Middleware: []middleware.Middleware{stamp},
		Services: []declare.Node{
			declare.Include(&declare.Module{
				Prefix: "/collection",
				Inner:  []declare.Node{declare.Service("/files", files)},
			}),
		},
	}

	rs, summary := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{mount("/collection/files")})
	if summary.Mounts != 1 {
		t.Errorf("Mounts = %d, want 1", summary.Mounts)
	}

	req := httptest.NewRequest(http.MethodGet, "/collection/files/app.js", nil)
	w := httptest.NewRecorder()
	rs.Build().ServeHTTP(w, req)

	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "/app.js" {
		t.Errorf("mounted path = %q, want %q", string(body), "/app.js")
	}
	if resp.Header.Get("X-Stamp") != "" {
		t.Error("mounted service was wrapped by scope middleware")
	}
}

func TestCompose_ConditionalRemovalPreservesOrder(t *testing.T) {
	app := &declare.Application{
		Services: []declare.Node{
			declare.Get("/x", noop()),
			declare.Get("/y", noop()).If("off"),
			declare.Get("/z", noop()),
			declare.Get("/w", noop()).Unless("off"),
		},
	}

	rs, _ := composeRoutes(t, app, compose.WithResolver(feature.NewSet(map[string]bool{"off": false}, true)))

	assertRoutes(t, rs.Routes(), []routes.Route{
		route(declare.MethodGet, "/x"),
		route(declare.MethodGet, "/z"),
		route(declare.MethodGet, "/w"),
	})
}

func TestCompose_ExcludedModuleIsNeverVisited(t *testing.T) {
	broken := &declare.Module{
		Prefix: "",
		Inner:  []declare.Node{declare.Get("", nil)},
	}
	app := &declare.Application{
		Services: []declare.Node{
			declare.Get("/kept", noop()),
			declare.Include(broken).If("broken"),
		},
	}

	rs, summary := composeRoutes(t, app)

	assertRoutes(t, rs.Routes(), []routes.Route{route(declare.MethodGet, "/kept")})
	if summary.Modules != 0 {
		t.Errorf("Modules = %d, want 0", summary.Modules)
	}
}

func TestCompose_DoesNotMutateDeclaration(t *testing.T) {
	module := &declare.Module{
		Prefix: "/m",
		Inner: []declare.Node{
			declare.Get("/a", noop()),
			declare.Get("/b", noop()).If("off"),
		},
	}
	app := &declare.Application{
		Services: []declare.Node{
			declare.Include(module),
			declare.Get("/c", noop()).If("off"),
		},
	}

	composeRoutes(t, app)

	if len(app.Services) != 2 {
		t.Errorf("application services = %d, want 2", len(app.Services))
	}
	if len(module.Inner) != 2 {
		t.Errorf("module inner services = %d, want 2", len(module.Inner))
	}
}

func TestCompose_Errors(t *testing.T) {
	cycle := &declare.Module{Name: "loop", Prefix: "/loop"}
	cycle.Inner = []declare.Node{declare.Include(cycle)}

	tests := []struct {
		name     string
		app      *declare.Application
		resolver feature.Resolver
		want     error
		wantPath string
	}{
		{
			name:     "empty route path",
			app:      &declare.Application{Services: []declare.Node{declare.Get("", noop())}},
			want:     compose.ErrInvalidPath,
			wantPath: "",
		},
		{
			name: "dot segment in module route",
			app: &declare.Application{Services: []declare.Node{
				declare.Include(&declare.Module{
					Prefix: "/m",
					Inner:  []declare.Node{declare.Get("/a/../b", noop())},
				}),
			}},
			want: compose.ErrInvalidPath,
		},
		{
			name: "invalid module prefix",
			app: &declare.Application{Services: []declare.Node{
				declare.Include(&declare.Module{Prefix: "/a b", Inner: []declare.Node{declare.Get("/a", noop())}}),
			}},
			want: compose.ErrInvalidPath,
		},
		{
			name: "duplicate route",
			app: &declare.Application{Services: []declare.Node{
				declare.Get("/dup", noop()),
				declare.Get("/dup/", noop()),
			}},
			want:     compose.ErrDuplicateRoute,
			wantPath: "/dup",
		},
		{
			name: "duplicate across outer and root",
			app: &declare.Application{Services: []declare.Node{
				declare.Any("/outer", noop()),
				declare.Include(&declare.Module{
					Prefix: "/m",
					Outer:  []declare.Node{declare.Any("/outer", noop())},
				}),
			}},
			want:     compose.ErrDuplicateRoute,
			wantPath: "/outer",
		},
		{
			name: "duplicate mount",
			app: &declare.Application{Services: []declare.Node{
				declare.Service("/static", noop()),
				declare.Service("/static", noop()),
			}},
			want:     compose.ErrDuplicateMount,
			wantPath: "/static",
		},
		{
			name:     "nil handler",
			app:      &declare.Application{Services: []declare.Node{declare.Get("/a", nil)}},
			want:     compose.ErrNilHandler,
			wantPath: "/a",
		},
		{
			name:     "nil module",
			app:      &declare.Application{Services: []declare.Node{declare.Include(nil)}},
			want:     compose.ErrNilModule,
			wantPath: "/",
		},
		{
			name:     "module cycle",
			app:      &declare.Application{Services: []declare.Node{declare.Include(cycle)}},
			want:     compose.ErrModuleCycle,
			wantPath: "/loop",
		},
		{
			name:     "unknown strict feature",
			app:      &declare.Application{Services: []declare.Node{declare.Get("/a", noop()).If("missing")}},
			resolver: feature.NewSet(nil, true),
			want:     feature.ErrUnknownFeature,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []compose.Option
			if tt.resolver != nil {
				opts = append(opts, compose.WithResolver(tt.resolver))
			}

			_, err := compose.New(routes.New(testLogger()), opts...).Compose(tt.app)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Compose() error = %v, want %v", err, tt.want)
			}

			if tt.wantPath == "" {
				return
			}
			var cfgErr *compose.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %v is not a *ConfigError", err)
			}
			if cfgErr.Path != tt.wantPath {
				t.Errorf("ConfigError.Path = %q, want %q", cfgErr.Path, tt.wantPath)
			}
		})
	}
}

func TestCompose_BackendConflictIsReported(t *testing.T) {
	app := &declare.Application{
		Services: []declare.Node{
			declare.Get("/users/{id}", noop()),
			declare.Get("/users/{name}", noop()),
		},
	}

	_, err := compose.New(routes.New(testLogger())).Compose(app)
	if !errors.Is(err, routes.ErrConflict) {
		t.Fatalf("Compose() error = %v, want routes.ErrConflict", err)
	}
}

func TestCompose_MethodAliasNormalized(t *testing.T) {
	backends := []struct {
		name string
		new  func(*slog.Logger) routes.System
	}{
		{"mux", routes.New},
		{"chi", routes.NewChi},
	}

	for _, b := range backends {
		t.Run(b.name, func(t *testing.T) {
			app := &declare.Application{
				Services: []declare.Node{
					declare.Route{Method: "ALL", Path: "/outer", Handler: noop()},
					declare.Route{Method: "get", Path: "/lower", Handler: noop()},
				},
			}

			rs := b.new(testLogger())
			if _, err := compose.New(rs).Compose(app); err != nil {
				t.Fatalf("Compose() error = %v", err)
			}

			assertRoutes(t, rs.Routes(), []routes.Route{
				route(declare.MethodAny, "/outer"),
				route(declare.MethodGet, "/lower"),
			})

			h := rs.Build()
			for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodDelete} {
				w := httptest.NewRecorder()
				h.ServeHTTP(w, httptest.NewRequest(method, "/outer", nil))
				if w.Code != http.StatusOK {
					t.Errorf("%s /outer status = %d, want %d", method, w.Code, http.StatusOK)
				}
			}
		})
	}
}

func TestCompose_MethodAliasDuplicate(t *testing.T) {
	app := &declare.Application{
		Services: []declare.Node{
			declare.Any("/x", noop()),
			declare.Route{Method: "ALL", Path: "/x", Handler: noop()},
		},
	}

	_, err := compose.New(routes.New(testLogger())).Compose(app)
	if !errors.Is(err, compose.ErrDuplicateRoute) {
		t.Fatalf("Compose() error = %v, want ErrDuplicateRoute", err)
	}

	var cfgErr *compose.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("error %v is not a *ConfigError", err)
	}
	if cfgErr.Method != string(declare.MethodAny) || cfgErr.Path != "/x" {
		t.Errorf("ConfigError = %s %s, want ANY /x", cfgErr.Method, cfgErr.Path)
	}
}
