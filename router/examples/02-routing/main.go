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

// Package main demonstrates rule syntax: named parameters, optional
// segments, wildcards, per-method tables and the catch-all rule.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"

	"github.com/charmbracelet/log"

	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/router"
)

func main() {
	// charmbracelet/log implements slog.Handler.
	charm := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "routing"})
	logger := logging.MustNew(logging.WithCustomLogger(slog.New(charm)))
	r := router.MustNew(
		router.WithLogger(logger.Logger()),
		router.WithStatic("./public"),
	)

	must := func(err error) {
		if err != nil {
			logger.Error("route registration failed", "error", err)
			os.Exit(1)
		}
	}

	// Named parameters are extracted in declaration order.
	must(r.GET("/users/<id>/posts/<post>", func(c *router.Context) error {
		return c.JSON(http.StatusOK, c.ParamMap())
	}))

	// "{/page}" is optional: both /docs and /docs/page match.
	must(r.GET("/docs{/page}", func(c *router.Context) error {
		return c.Send("docs")
	}))

	// "*" matches any remainder.
	must(r.GET("/files*", func(c *router.Context) error {
		return c.Send("file listing for " + c.Request.URL.Path)
	}))

	// Routes are matched in registration order, so this never wins for
	// /users/<id>/posts/<post>.
	must(r.GET("/users/<id>/<rest>", func(c *router.Context) error {
		return c.Send("fallback for user " + c.Param("id"))
	}))

	must(r.Route([]string{http.MethodPut, http.MethodPatch}, "/users/<id>",
		router.HandlerFunc(func(c *router.Context) error {
			return c.SendCode(http.StatusNoContent)
		}),
	))

	must(r.GET("/old-home", func(c *router.Context) error {
		return c.Redirect("/")
	}))

	// The catch-all answers anything else with a 404 status by default.
	must(r.NotFound(router.HandlerFunc(func(c *router.Context) error {
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "nothing at " + c.Request.URL.Path,
		})
	})))

	logger.Info("server starting", "address", "http://localhost:8080")
	logger.Info("routes", "GET", r.Routes(http.MethodGet), "PUT", r.Routes(http.MethodPut))
	logger.Info("rule check", "rule", "/docs{/page}", "path", "/docs", "match", router.Match("/docs{/page}", "/docs"))

	if err := r.Serve(":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
