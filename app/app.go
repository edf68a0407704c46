// Copyright 2025 The Gerkon Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/metrics"
	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware/accesslog"
	"gerkon.dev/gerkon/router/middleware/cookies"
	"gerkon.dev/gerkon/router/middleware/requestid"
	"gerkon.dev/gerkon/tracing"
)

// App is a router bundled with its logger, observability and server
// lifecycle. Each App owns its state; nothing is shared between Apps.
type App struct {
	cfg     *config
	router  *router.Router
	logging *logging.Logger
	metrics *metrics.Recorder
	tracing *tracing.Tracer
	hooks   *Hooks

	mu      sync.Mutex
	running *runningServer
}

// New creates an App. All option errors are reported together.
//
// Example:
//
//	a, err := app.New(
//	    app.WithServiceName("shop"),
//	    app.WithMetrics(),
//	)
func New(opts ...Option) (*App, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, hooks: &Hooks{}}

	if err := a.initLogging(); err != nil {
		return nil, err
	}
	if err := a.initObservability(); err != nil {
		return nil, err
	}

	routerOpts := []router.Option{
		router.WithLogger(a.logging.Logger()),
		router.WithObservabilityRecorder(a.newObservabilityRecorder()),
		router.WithServerTimeouts(
			cfg.server.readHeaderTimeout,
			cfg.server.readTimeout,
			cfg.server.writeTimeout,
			cfg.server.idleTimeout,
		),
	}
	if cfg.formatter != nil {
		routerOpts = append(routerOpts, router.WithErrorFormatter(cfg.formatter))
	}

	r, err := router.New(routerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create router: %w", err)
	}
	a.router = r

	if err := a.installDefaults(); err != nil {
		return nil, err
	}

	return a, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *App {
	a, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("app: %v", err))
	}

	return a
}

func (a *App) initLogging() error {
	if a.cfg.logger != nil {
		a.logging = a.cfg.logger
		return nil
	}

	opts := []logging.Option{
		logging.WithConsoleHandler(),
		logging.WithServiceName(a.cfg.serviceName),
		logging.WithServiceVersion(a.cfg.serviceVersion),
		logging.WithEnvironment(a.cfg.environment),
	}
	l, err := logging.New(append(opts, a.cfg.loggingOpts...)...)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logging = l

	return nil
}

func (a *App) initObservability() error {
	if a.cfg.metricsEnabled {
		opts := []metrics.Option{
			metrics.WithServiceName(a.cfg.serviceName),
			metrics.WithServiceVersion(a.cfg.serviceVersion),
			metrics.WithLogger(a.logging.Logger()),
		}
		m, err := metrics.New(append(opts, a.cfg.metricsOpts...)...)
		if err != nil {
			return fmt.Errorf("failed to create metrics recorder: %w", err)
		}
		a.metrics = m
	}

	if a.cfg.tracingEnabled {
		opts := []tracing.Option{
			tracing.WithServiceName(a.cfg.serviceName),
			tracing.WithServiceVersion(a.cfg.serviceVersion),
			tracing.WithLogger(a.logging.Logger()),
		}
		t, err := tracing.New(append(opts, a.cfg.tracingOpts...)...)
		if err != nil {
			return errors.Join(fmt.Errorf("failed to create tracer: %w", err), a.shutdownMetrics())
		}
		a.tracing = t
	}

	return nil
}

// installDefaults registers the static directory, the default mediators
// and the metrics endpoint.
func (a *App) installDefaults() error {
	if a.cfg.static != "" {
		if err := a.router.Static(a.cfg.static); err != nil {
			return err
		}
	}

	if a.cfg.defaultMediators {
		handlers := []router.Handler{requestid.New(a.cfg.requestIDOpts...)}
		if a.cfg.accessLog {
			opts := []accesslog.Option{accesslog.WithExcludePaths(a.cfg.metricsPath)}
			handlers = append(handlers, accesslog.New(append(opts, a.cfg.accessLogOpts...)...))
		}
		handlers = append(handlers, cookies.New())
		if err := a.router.Use(handlers...); err != nil {
			return err
		}
	}

	return a.mountMetrics()
}

func (a *App) mountMetrics() error {
	if a.metrics == nil {
		return nil
	}
	h, err := a.metrics.Handler()
	if errors.Is(err, metrics.ErrNoHandler) {
		return nil
	}
	if err != nil {
		return err
	}

	return a.router.GET(a.cfg.metricsPath, serveHTTP(h))
}

func serveHTTP(h http.Handler) router.HandlerFunc {
	return func(c *router.Context) error {
		h.ServeHTTP(c.Response, c.Request)
		return nil
	}
}

// Router returns the underlying router.
func (a *App) Router() *router.Router {
	return a.router
}

// Logger returns the application logger.
func (a *App) Logger() *slog.Logger {
	return a.logging.Logger()
}

// Metrics returns the metrics recorder, or nil when metrics are disabled.
func (a *App) Metrics() *metrics.Recorder {
	return a.metrics
}

// Tracing returns the tracer, or nil when tracing is disabled.
func (a *App) Tracing() *tracing.Tracer {
	return a.tracing
}

// ServiceName returns the configured service name.
func (a *App) ServiceName() string {
	return a.cfg.serviceName
}

// ServiceVersion returns the configured service version.
func (a *App) ServiceVersion() string {
	return a.cfg.serviceVersion
}

// Reset removes all routes, mediators and settings, then installs the
// defaults again. The server, hooks and observability are kept.
func (a *App) Reset() {
	a.router.Reset()
	if err := a.installDefaults(); err != nil {
		a.logging.Error("failed to reinstall defaults", "error", err)
	}
}

// Use appends global mediators.
func (a *App) Use(handlers ...router.Handler) error {
	return a.router.Use(handlers...)
}

// GET registers controllers for GET requests matching rule.
func (a *App) GET(rule string, handlers ...router.HandlerFunc) error {
	return a.router.GET(rule, handlers...)
}

// POST registers controllers for POST requests matching rule.
func (a *App) POST(rule string, handlers ...router.HandlerFunc) error {
	return a.router.POST(rule, handlers...)
}

// PUT registers controllers for PUT requests matching rule.
func (a *App) PUT(rule string, handlers ...router.HandlerFunc) error {
	return a.router.PUT(rule, handlers...)
}

// DELETE registers controllers for DELETE requests matching rule.
func (a *App) DELETE(rule string, handlers ...router.HandlerFunc) error {
	return a.router.DELETE(rule, handlers...)
}

// PATCH registers controllers for PATCH requests matching rule.
func (a *App) PATCH(rule string, handlers ...router.HandlerFunc) error {
	return a.router.PATCH(rule, handlers...)
}

// HEAD registers controllers for HEAD requests matching rule.
func (a *App) HEAD(rule string, handlers ...router.HandlerFunc) error {
	return a.router.HEAD(rule, handlers...)
}

// OPTIONS registers controllers for OPTIONS requests matching rule.
func (a *App) OPTIONS(rule string, handlers ...router.HandlerFunc) error {
	return a.router.OPTIONS(rule, handlers...)
}

// Route registers handlers for several methods at once.
func (a *App) Route(methods []string, rule string, handlers ...router.Handler) error {
	return a.router.Route(methods, rule, handlers...)
}

// Any registers handlers for every supported method.
func (a *App) Any(rule string, handlers ...router.Handler) error {
	return a.router.Any(rule, handlers...)
}

// NotFound registers the catch-all chain answering unmatched requests.
func (a *App) NotFound(handlers ...router.Handler) error {
	return a.router.NotFound(handlers...)
}

// Static sets the static-file fallback directory.
func (a *App) Static(dir string) error {
	return a.router.Static(dir)
}

// Set stores an application setting.
func (a *App) Set(key string, value any) {
	a.router.Set(key, value)
}

// Setting returns an application setting.
func (a *App) Setting(key string) (any, bool) {
	return a.router.Setting(key)
}

// Routes returns the registered rules for method in match order.
func (a *App) Routes(method string) []string {
	return a.router.Routes(method)
}

// ServeHTTP makes the App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	a.router.ServeHTTP(w, req)
}
