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
	"runtime/debug"
	"sync"
)

// Handler is a single step of a middleware or controller chain.
// It is implemented by HandlerFunc and AsyncHandlerFunc only.
type Handler interface {
	compile() step
}

// HandlerFunc is a direct handler step. The step completes when the function
// returns; a non-nil error fails the chain.
//
// Example:
//
//	r.GET("/ping", func(c *router.Context) error {
//	    return c.Send("pong")
//	})
type HandlerFunc func(c *Context) error

// AsyncHandlerFunc is a continuation-style handler step. The step stays
// pending until next is called or the response is ended. It runs on its own
// goroutine, so it may block on the channel returned by next. A step that
// writes to c.Response directly instead of using a response helper ends the
// chain when it returns.
//
// Example:
//
//	r.Use(router.AsyncHandlerFunc(func(c *router.Context, next router.Next) {
//	    time.AfterFunc(50*time.Millisecond, func() {
//	        c.Set("ready", true)
//	        next(nil)
//	    })
//	}))
type AsyncHandlerFunc func(c *Context, next Next)

// Next resumes the chain. A non-nil err fails the chain instead. Only the
// first call has an effect. The returned channel is closed once the response
// has been finalized and every continuation step that started after this one
// has returned, so code after it unwinds in reverse registration order. The
// caller must not touch the Context before that.
type Next func(err error) <-chan struct{}

// step runs one handler and reports its completion through done. Continuation
// steps return a channel closed when their goroutine returns.
type step func(c *Context, done func(error)) <-chan struct{}

func (h HandlerFunc) compile() step {
	return func(c *Context, done func(error)) <-chan struct{} {
		defer recoverStep(done)
		done(h(c))

		return nil
	}
}

func (h AsyncHandlerFunc) compile() step {
	return func(c *Context, done func(error)) <-chan struct{} {
		u := c.pushUnwind()
		go func() {
			defer close(u.exited)
			defer recoverStep(done)
			h(c, func(err error) <-chan struct{} {
				done(err)
				return u.resume
			})
		}()

		return u.exited
	}
}

// recoverStep turns a panic inside a step into a *PanicError.
func recoverStep(done func(error)) {
	if v := recover(); v != nil {
		done(&PanicError{Value: v, Stack: debug.Stack()})
	}
}

// compileHandlers validates and normalizes handlers into steps.
func compileHandlers(handlers []Handler) ([]step, error) {
	if len(handlers) == 0 {
		return nil, ErrInvalidHandler
	}

	steps := make([]step, 0, len(handlers))
	for _, h := range handlers {
		if isNilHandler(h) {
			return nil, ErrInvalidHandler
		}
		steps = append(steps, h.compile())
	}

	return steps, nil
}

func isNilHandler(h Handler) bool {
	switch fn := h.(type) {
	case nil:
		return true
	case HandlerFunc:
		return fn == nil
	case AsyncHandlerFunc:
		return fn == nil
	}

	return false
}

// completion returns the done callback handed to a step. The first call
// delivers its error to result; later errors are only logged.
func (c *Context) completion(result chan<- error) func(error) {
	var once sync.Once
	logger := c.Logger()
	method, path := c.Request.Method, c.Request.URL.Path

	return func(err error) {
		delivered := false
		once.Do(func() {
			result <- err
			delivered = true
		})
		if !delivered && err != nil {
			logger.Warn("handler reported an error after completing",
				"method", method,
				"path", path,
				"error", err,
			)
		}
	}
}
