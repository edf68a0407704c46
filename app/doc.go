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

// Package app assembles a gerkon router with logging, metrics, tracing and
// the default mediators into a runnable application.
//
// # Quick Start
//
//	a := app.MustNew(
//	    app.WithServiceName("shop"),
//	    app.WithStatic("./public"),
//	)
//	_ = a.GET("/users/<id>", func(c *router.Context) error {
//	    return c.Send("user " + c.Param("id"))
//	})
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//	if err := a.Start(ctx, ":8080"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Default Mediators
//
// Unless WithoutDefaultMediators is given, every App installs, in order:
//
//   - requestid: assigns X-Request-ID
//   - accesslog: logs status, method, path and duration after the response
//   - cookies: parses the Cookie header into cookies.Get(c)
//
// Reset removes every route, mediator and setting and installs these
// defaults again, together with the static directory and metrics endpoint.
//
// # Lifecycle
//
// Listen starts serving in the background and returns; Stop shuts the
// server down gracefully and may be followed by another Listen. Start
// serves until its context is canceled, then stops the server and flushes
// metrics, traces and logs. Hooks run around these transitions:
//
//   - OnStart: before listening, in order; the first error aborts startup
//   - OnReady: after listening, each in its own goroutine
//   - OnShutdown: during graceful shutdown, last registered first
//   - OnStop: after the server stopped, panics are logged
//
// # Observability
//
// WithMetrics and WithTracing enable request metrics and spans. Metrics
// are exposed on GET /metrics when the Prometheus exporter is used.
// Request loggers carry the method, path, matched rule, request id and
// trace ids.
package app
