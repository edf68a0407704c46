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
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
	"path/filepath"

	gerrors "gerkon.dev/gerkon/errors"
)

// ServeHTTP dispatches a request:
//  1. global mediators run in registration order
//  2. the first matching route runs its controller chain
//  3. otherwise the static directory is tried, if configured
//  4. otherwise the catch-all chain answers with a default 404 status,
//     or a default 404 body is written
//
// A failing or panicking step turns into a 502 response. Every request
// ends with exactly one response.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	var obsState any

	if r.observability != nil {
		var enrichedCtx context.Context
		enrichedCtx, obsState = r.observability.OnRequestStart(ctx, req)
		if enrichedCtx != ctx {
			ctx = enrichedCtx
			req = req.WithContext(ctx)
		}
	}

	rw := &responseWriter{ResponseWriter: w}
	c := newContext(r, rw, req)

	routePattern := r.dispatch(c)
	c.finish()

	if obsState != nil {
		r.observability.OnRequestEnd(ctx, obsState, rw, routePattern)
	}
}

// dispatch runs the request through its states and returns the route
// pattern that served it.
func (r *Router) dispatch(c *Context) string {
	r.mu.RLock()
	middleware := r.middleware
	r.mu.RUnlock()

	if err := c.run(middleware); err != nil {
		r.fail(c, err)
		return RouteUnmatched
	}
	if c.Ended() {
		return RouteUnmatched
	}

	route, params, ok := r.Lookup(c.Request.Method, c.Request.URL.Path)
	if ok {
		c.params = params
		c.routePattern = route.rule.Source
		c.logger = r.requestLogger(c, c.routePattern)
		if err := c.run(route.steps); err != nil {
			r.fail(c, err)
		}

		return c.routePattern
	}

	if r.serveStatic(c) {
		return RouteStatic
	}

	r.notFound(c)

	return RouteNotFound
}

// serveStatic streams the file under the static directory that corresponds
// to the request path. It reports false when no file was sent.
func (r *Router) serveStatic(c *Context) bool {
	dir, _ := r.Setting(SettingStatic)
	base, ok := dir.(string)
	if !ok || base == "" {
		return false
	}

	name := filepath.Join(base, filepath.FromSlash(path.Clean("/"+c.Request.URL.Path)))
	if err := c.File(name); err != nil {
		c.Logger().Debug("static file not served", "path", c.Request.URL.Path, "error", err)
		return false
	}

	return true
}

// notFound runs the catch-all chain for the request method, or writes the
// default 404 body.
func (r *Router) notFound(c *Context) {
	r.mu.RLock()
	route := r.catchAll[c.Request.Method]
	r.mu.RUnlock()

	c.logger = r.requestLogger(c, RouteNotFound)

	if route == nil {
		_ = c.respond(func() error {
			r.writeError(c, http.StatusNotFound)
			return nil
		})
		return
	}

	c.writer.defaultStatus = http.StatusNotFound
	c.routePattern = route.rule.Source
	if err := c.run(route.steps); err != nil {
		r.fail(c, err)
		return
	}

	// A handler that sent nothing still answers with its status, 404 by
	// default.
	_ = c.respond(func() error {
		if c.writer.Written() {
			return nil
		}
		code := c.status
		if code == 0 {
			code = c.writer.StatusCode()
		}
		c.Response.WriteHeader(code)

		return nil
	})
}

// fail logs err and, unless a response has already been started, writes
// the default 502 body.
func (r *Router) fail(c *Context, err error) {
	attrs := []any{
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"error", err,
	}
	var panicErr *PanicError
	if errors.As(err, &panicErr) {
		attrs = append(attrs, "stack", string(panicErr.Stack))
	}
	r.logger.ErrorContext(c.Request.Context(), "request failed", attrs...)

	if c.writer.Written() {
		return
	}
	_ = c.respond(func() error {
		r.writeError(c, http.StatusBadGateway)
		return nil
	})
}

// writeError renders the default body for status through the configured
// formatter. The internal cause is never exposed to the client.
func (r *Router) writeError(c *Context, status int) {
	resp := r.formatter.Format(c.Request, gerrors.WithStatus(nil, status))

	h := c.Response.Header()
	for k, v := range resp.Headers {
		for _, val := range v {
			h.Add(k, val)
		}
	}
	if resp.ContentType != "" {
		h.Set("Content-Type", resp.ContentType)
	}
	c.Response.WriteHeader(resp.Status)

	var err error
	switch body := resp.Body.(type) {
	case nil:
	case string:
		_, err = io.WriteString(c.Response, body)
	case []byte:
		_, err = c.Response.Write(body)
	default:
		err = json.NewEncoder(c.Response).Encode(body)
	}
	if err != nil {
		r.logger.Warn("failed to write error response", "status", status, "error", err)
	}
}

func (r *Router) requestLogger(c *Context, routePattern string) *slog.Logger {
	if r.observability == nil {
		return r.logger
	}
	if logger := r.observability.BuildRequestLogger(c.Request.Context(), c.Request, routePattern); logger != nil {
		return logger
	}

	return r.logger
}

// Serve starts an HTTP server on addr and blocks until it stops.
// Use Shutdown from another goroutine to stop it gracefully.
//
// Example:
//
//	r := router.MustNew()
//	if err := r.Serve(":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
//	    log.Fatal(err)
//	}
func (r *Router) Serve(addr string) error {
	srv := r.NewServer(addr)

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	return srv.ListenAndServe()
}

// NewServer returns an http.Server for r with the configured timeouts.
func (r *Router) NewServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: r.timeouts.readHeader,
		ReadTimeout:       r.timeouts.read,
		WriteTimeout:      r.timeouts.write,
		IdleTimeout:       r.timeouts.idle,
		ErrorLog:          slog.NewLogLogger(r.logger.Handler(), slog.LevelWarn),
	}
}

// Shutdown gracefully stops a server started with Serve. It returns nil if
// no server is running.
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMu.Lock()
	srv := r.server
	r.server = nil
	r.serverMu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}
