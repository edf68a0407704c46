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
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"gerkon.dev/gerkon/router/compiler"
)

// Param is a single path parameter extracted from a matched rule.
type Param = compiler.Param

// Context carries a single request through the middleware and controller
// chains. A Context is created per request and never reused.
//
// Steps run one at a time, so handlers may read and write the Context
// without locking. An AsyncHandlerFunc that keeps running after calling
// next must wait for the channel next returns before touching it again.
type Context struct {
	// Request is the incoming request. Mediators may replace it, for
	// example to attach values to its context.
	Request *http.Request

	// Response is the writer used by the response helpers. Mediators may
	// wrap it, for example to compress the body.
	Response http.ResponseWriter

	router       *Router
	writer       *responseWriter
	params       []Param
	routePattern string
	logger       *slog.Logger
	status       int

	keysMu sync.RWMutex
	keys   map[string]any

	ended    atomic.Bool
	endOnce  sync.Once
	endedCh  chan struct{}
	finished chan struct{}
	unwind   []unwindFrame
}

// unwindFrame tracks one running continuation step. resume is closed when
// the step may continue after next; exited is closed when it returns.
type unwindFrame struct {
	resume chan struct{}
	exited chan struct{}
}

func newContext(r *Router, w *responseWriter, req *http.Request) *Context {
	return &Context{
		Request:  req,
		Response: w,
		router:   r,
		writer:   w,
		logger:   r.logger,
		endedCh:  make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Param returns the value of the named path parameter, or "" when the
// parameter is absent.
//
// Example:
//
//	r.GET("/users/<id>", func(c *router.Context) error {
//	    return c.Send("user " + c.Param("id"))
//	})
func (c *Context) Param(key string) string {
	for _, p := range c.params {
		if p.Key == key {
			return p.Value
		}
	}

	return ""
}

// Params returns all path parameters in declaration order.
func (c *Context) Params() []Param {
	return c.params
}

// ParamMap returns the path parameters as a map.
func (c *Context) ParamMap() map[string]string {
	m := make(map[string]string, len(c.params))
	for _, p := range c.params {
		m[p.Key] = p.Value
	}

	return m
}

// RoutePattern returns the rule of the matched route, or "" before
// matching and for unmatched requests.
func (c *Context) RoutePattern() string {
	return c.routePattern
}

// Set stores a value for the lifetime of the request.
func (c *Context) Set(key string, value any) {
	c.keysMu.Lock()
	defer c.keysMu.Unlock()

	if c.keys == nil {
		c.keys = make(map[string]any)
	}
	c.keys[key] = value
}

// Get returns a value stored with Set.
func (c *Context) Get(key string) (any, bool) {
	c.keysMu.RLock()
	defer c.keysMu.RUnlock()

	v, ok := c.keys[key]

	return v, ok
}

// Logger returns the request-scoped logger.
func (c *Context) Logger() *slog.Logger {
	if c.logger == nil {
		return noopLogger
	}

	return c.logger
}

// Context returns the request context.
func (c *Context) Context() context.Context {
	return c.Request.Context()
}

// Router returns the router serving the request.
func (c *Context) Router() *Router {
	return c.router
}

// Ended reports whether the response has been finalized, either by a
// response helper or by a direct write to the underlying writer.
func (c *Context) Ended() bool {
	return c.ended.Load() || c.writer.Written()
}

// Finished returns a channel that is closed once the dispatcher has
// finalized the response.
func (c *Context) Finished() <-chan struct{} {
	return c.finished
}

// StatusCode returns the status written so far, or the status the response
// would default to.
func (c *Context) StatusCode() int {
	return c.writer.StatusCode()
}

// ResponseSize returns the number of body bytes written to the client.
func (c *Context) ResponseSize() int64 {
	return c.writer.Size()
}

// respond ends the response and runs write. It returns ErrResponseEnded
// without calling write if the response was already ended. Waiting steps
// are released only after write returns.
func (c *Context) respond(write func() error) error {
	if !c.ended.CompareAndSwap(false, true) {
		return ErrResponseEnded
	}
	defer c.releaseEnded()

	return write()
}

func (c *Context) releaseEnded() {
	c.endOnce.Do(func() { close(c.endedCh) })
}

// pushUnwind registers a continuation step. It is only called from the
// dispatching goroutine.
func (c *Context) pushUnwind() unwindFrame {
	u := unwindFrame{resume: make(chan struct{}), exited: make(chan struct{})}
	c.unwind = append(c.unwind, u)

	return u
}

// finish marks the request as finalized and resumes continuation steps
// latest first, waiting for each to return.
func (c *Context) finish() {
	c.ended.Store(true)
	c.releaseEnded()
	close(c.finished)

	for i := len(c.unwind) - 1; i >= 0; i-- {
		u := c.unwind[i]
		close(u.resume)
		<-u.exited
	}
}
