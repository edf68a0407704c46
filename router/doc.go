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

// Package router is a rule-based HTTP router.
//
// Routes are registered with rules such as "/users/<id>{/posts}*" (see
// package compiler for the grammar). For every request the router:
//
//  1. runs global mediators registered with Use, in order
//  2. runs the controller chain of the first route whose rule matches
//  3. falls back to the static directory, when one is configured
//  4. falls back to the catch-all "*" chain, or a default 404
//
// A step that returns an error or panics ends the request with 502; the
// router keeps serving other requests.
//
// # Handler Steps
//
// There are two kinds of steps. A HandlerFunc completes when it returns.
// An AsyncHandlerFunc completes when it calls next, which lets a mediator
// suspend the chain, for example until some I/O finishes:
//
//	r.Use(router.AsyncHandlerFunc(func(c *router.Context, next router.Next) {
//	    go func() {
//	        c.Set("user", loadUser(c.Request))
//	        next(nil)
//	    }()
//	}))
//
// The channel returned by next is closed once the response is finalized,
// which makes post-response work straightforward:
//
//	r.Use(router.AsyncHandlerFunc(func(c *router.Context, next router.Next) {
//	    start := time.Now()
//	    <-next(nil)
//	    log.Printf("%s %d %s", c.Request.URL.Path, c.StatusCode(), time.Since(start))
//	}))
//
// A chain also stops once a step has ended the response, so a mediator
// can answer a request on its own:
//
//	r.Use(router.HandlerFunc(func(c *router.Context) error {
//	    if c.Request.Header.Get("Authorization") == "" {
//	        return c.SendCode(http.StatusUnauthorized)
//	    }
//	    return nil
//	}))
//
// # Responses
//
// Send, SendCode, SendBytes, JSON, Redirect, SendFile and File each end the
// response. A second call returns ErrResponseEnded and writes nothing.
package router
