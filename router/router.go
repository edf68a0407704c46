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

package router

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"

	gerrors "gerkon.dev/gerkon/errors"
	"gerkon.dev/gerkon/router/compiler"
)

// SettingStatic is the setting key holding the static-file base directory.
const SettingStatic = "static"

// Methods lists the recognized request methods, in the order used when a
// route is registered without an explicit method set.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodHead,
	http.MethodPatch,
	http.MethodOptions,
}

// Route is a registered rule with its controller chain. One Route is shared
// by every method it was registered for.
type Route struct {
	rule    *compiler.Rule
	methods []string
	steps   []step
}

// Rule returns the rule source.
func (rt *Route) Rule() string {
	return rt.rule.Source
}

// Methods returns the methods the route was registered for.
func (rt *Route) Methods() []string {
	return slices.Clone(rt.methods)
}

// Router matches requests against registered rules and runs the mediator
// and controller chains.
//
// Rules are scanned in registration order and the first match wins. The
// reserved rule "*" never matches during the scan; it answers requests that
// nothing else served.
//
// The Router is safe for concurrent use. Routes may be registered while
// requests are being served.
//
// Example:
//
//	r := router.MustNew()
//	r.GET("/users/<id>", func(c *router.Context) error {
//	    return c.Send("user " + c.Param("id"))
//	})
//	http.ListenAndServe(":8080", r)
type Router struct {
	mu         sync.RWMutex
	routes     map[string][]*Route
	index      map[string]map[string]*Route
	catchAll   map[string]*Route
	middleware []step
	settings   map[string]any

	logger        *slog.Logger
	formatter     gerrors.Formatter
	observability ObservabilityRecorder
	timeouts      serverTimeouts

	serverMu sync.Mutex
	server   *http.Server
}

// New creates a router with the given options.
//
// Example:
//
//	r, err := router.New(
//	    router.WithLogger(logger),
//	    router.WithStatic("./public"),
//	)
func New(opts ...Option) (*Router, error) {
	r := &Router{
		logger:    noopLogger,
		formatter: gerrors.NewText(),
		timeouts:  defaultServerTimeouts(),
	}
	r.clear()

	for _, opt := range opts {
		opt(r)
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Router {
	r, err := New(opts...)
	if err != nil {
		panic(fmt.Sprintf("router: %v", err))
	}

	return r
}

func (r *Router) validate() error {
	if r.logger == nil {
		r.logger = noopLogger
	}
	if r.formatter == nil {
		r.formatter = gerrors.NewText()
	}

	t := r.timeouts
	if t.readHeader <= 0 || t.read <= 0 || t.write <= 0 || t.idle <= 0 {
		return ErrServerTimeoutInvalid
	}

	return nil
}

// clear resets registration state. Callers hold r.mu or own r exclusively.
func (r *Router) clear() {
	r.routes = make(map[string][]*Route)
	r.index = make(map[string]map[string]*Route)
	r.catchAll = make(map[string]*Route)
	r.middleware = nil
	r.settings = make(map[string]any)
}

// Route registers handlers for rule under every method in methods. A nil or
// empty methods slice registers the rule for all recognized methods.
//
// Registration is all-or-nothing: if any method is invalid or already has
// the rule, nothing is registered and a *RegistrationError is returned.
//
// Example:
//
//	err := r.Route([]string{"GET", "POST"}, "/items{/<id>}", router.HandlerFunc(items))
func (r *Router) Route(methods []string, rule string, handlers ...Handler) error {
	if rule == "" {
		return &RegistrationError{Rule: rule, Err: ErrInvalidRule}
	}

	steps, err := compileHandlers(handlers)
	if err != nil {
		return &RegistrationError{Rule: rule, Err: err}
	}

	normalized, err := normalizeMethods(methods)
	if err != nil {
		return &RegistrationError{Rule: rule, Err: err}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range normalized {
		if _, exists := r.index[m][rule]; exists {
			return &RegistrationError{Method: m, Rule: rule, Err: ErrDuplicateRoute}
		}
	}

	route := &Route{
		rule:    compiler.Compile(rule),
		methods: normalized,
		steps:   steps,
	}

	for _, m := range normalized {
		r.routes[m] = append(r.routes[m], route)
		if r.index[m] == nil {
			r.index[m] = make(map[string]*Route)
		}
		r.index[m][rule] = route
		if route.rule.CatchAll {
			r.catchAll[m] = route
		}
	}

	r.logger.Debug("route registered", "methods", normalized, "rule", rule)

	return nil
}

// MustRoute is like Route but panics on error.
func (r *Router) MustRoute(methods []string, rule string, handlers ...Handler) {
	if err := r.Route(methods, rule, handlers...); err != nil {
		panic(err)
	}
}

// Handle registers handlers for a single method.
func (r *Router) Handle(method, rule string, handlers ...Handler) error {
	return r.Route([]string{method}, rule, handlers...)
}

// Any registers handlers for all recognized methods.
func (r *Router) Any(rule string, handlers ...Handler) error {
	return r.Route(nil, rule, handlers...)
}

// NotFound registers the catch-all chain that answers requests no rule
// and no static file served. The response status defaults to 404.
//
// Example:
//
//	r.NotFound(router.HandlerFunc(func(c *router.Context) error {
//	    return c.Send("nothing here")
//	}))
func (r *Router) NotFound(handlers ...Handler) error {
	return r.Route(nil, compiler.CatchAll, handlers...)
}

// GET registers direct handlers for GET requests.
func (r *Router) GET(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodGet, rule, asHandlers(handlers)...)
}

// POST registers direct handlers for POST requests.
func (r *Router) POST(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodPost, rule, asHandlers(handlers)...)
}

// PUT registers direct handlers for PUT requests.
func (r *Router) PUT(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodPut, rule, asHandlers(handlers)...)
}

// DELETE registers direct handlers for DELETE requests.
func (r *Router) DELETE(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodDelete, rule, asHandlers(handlers)...)
}

// PATCH registers direct handlers for PATCH requests.
func (r *Router) PATCH(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodPatch, rule, asHandlers(handlers)...)
}

// HEAD registers direct handlers for HEAD requests.
func (r *Router) HEAD(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodHead, rule, asHandlers(handlers)...)
}

// OPTIONS registers direct handlers for OPTIONS requests.
func (r *Router) OPTIONS(rule string, handlers ...HandlerFunc) error {
	return r.Handle(http.MethodOptions, rule, asHandlers(handlers)...)
}

// Use appends global mediators. They run for every request, in
// registration order, before route matching.
//
// Example:
//
//	r.Use(requestid.New(), accesslog.New())
func (r *Router) Use(handlers ...Handler) error {
	steps, err := compileHandlers(handlers)
	if err != nil {
		return fmt.Errorf("use: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.middleware = append(r.middleware, steps...)

	return nil
}

// Routes returns the rules registered for method in registration order.
// An unrecognized method yields an empty slice.
func (r *Router) Routes(method string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.routes[strings.ToUpper(method)]
	rules := make([]string, 0, len(list))
	for _, rt := range list {
		rules = append(rules, rt.rule.Source)
	}

	return rules
}

// Lookup returns the first route registered for method whose rule matches
// path, along with the extracted parameters. The catch-all rule is skipped.
func (r *Router) Lookup(method, path string) (*Route, []Param, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rt := range r.routes[method] {
		if rt.rule.CatchAll {
			continue
		}
		if params, ok := rt.rule.Extract(path); ok {
			return rt, params, true
		}
	}

	return nil, nil, false
}

// Set stores a router setting.
func (r *Router) Set(key string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.settings[key] = value
}

// Setting returns a router setting.
func (r *Router) Setting(key string) (any, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.settings[key]

	return v, ok
}

// Static sets the directory served when no rule matches a request.
func (r *Router) Static(dir string) error {
	if dir == "" {
		return ErrInvalidStaticPath
	}
	r.Set(SettingStatic, dir)

	return nil
}

// Reset removes every route, mediator and setting, including the static
// directory. Logger, formatter and observability options are kept.
func (r *Router) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clear()
}

// Match reports whether path satisfies rule.
func Match(rule, path string) bool {
	return compiler.Match(rule, path)
}

func normalizeMethods(methods []string) ([]string, error) {
	if len(methods) == 0 {
		return slices.Clone(Methods), nil
	}

	normalized := make([]string, 0, len(methods))
	for _, m := range methods {
		upper := strings.ToUpper(strings.TrimSpace(m))
		if !slices.Contains(Methods, upper) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidMethod, m)
		}
		if !slices.Contains(normalized, upper) {
			normalized = append(normalized, upper)
		}
	}

	return normalized, nil
}

func asHandlers(fns []HandlerFunc) []Handler {
	handlers := make([]Handler, len(fns))
	for i, fn := range fns {
		handlers[i] = fn
	}

	return handlers
}
