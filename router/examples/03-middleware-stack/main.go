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

// Package main demonstrates a mediator stack: direct mediators, a
// continuation mediator that acts after the response, route-level
// mediators and the bundled middleware packages.
package main

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware/accesslog"
	"gerkon.dev/gerkon/router/middleware/basicauth"
	"gerkon.dev/gerkon/router/middleware/compression"
	"gerkon.dev/gerkon/router/middleware/cookies"
	"gerkon.dev/gerkon/router/middleware/cors"
	"gerkon.dev/gerkon/router/middleware/requestid"
	"gerkon.dev/gerkon/router/middleware/security"
)

func main() {
	charm := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
		Prefix:          "mediators",
	})
	logger := logging.MustNew(logging.WithCustomLogger(slog.New(charm)))
	r := router.MustNew(router.WithLogger(logger.Logger()))

	must := func(err error) {
		if err != nil {
			logger.Error("registration failed", "error", err)
			os.Exit(1)
		}
	}

	// Global mediators run in registration order before every controller.
	must(r.Use(
		requestid.New(requestid.WithULID()),
		accesslog.New(accesslog.WithSlowThreshold(200*time.Millisecond)),
		compression.New(compression.WithMinSize(256)),
		security.New(security.DevelopmentPreset()),
		cors.New(cors.WithAllowedOrigins("http://localhost:3000")),
		cookies.New(),
	))

	// A direct mediator: returning nil passes control on.
	must(r.Use(router.HandlerFunc(func(c *router.Context) error {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.Header("X-API-Version", "v1")
		}
		return nil
	})))

	// A continuation mediator: code after <-next(nil) runs once the
	// response has been sent.
	must(r.Use(router.AsyncHandlerFunc(func(c *router.Context, next router.Next) {
		start := time.Now()
		<-next(nil)
		c.Logger().Debug("response finished", "took", time.Since(start))
	})))

	must(r.GET("/api/data", func(c *router.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message":    "data",
			"request_id": requestid.Get(c),
			"theme":      cookies.Value(c, "theme"),
		})
	}))

	// Route-level mediators run before the controller of that route only.
	auth := basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"}))
	must(r.GET("/admin/stats", auth, func(c *router.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"user": basicauth.GetUsername(c),
		})
	}))

	// A mediator that rejects stops the chain; the client gets a 502.
	must(r.GET("/broken", func(c *router.Context) error {
		return errors.New("upstream unavailable")
	}))

	logger.Info("server starting", "address", "http://localhost:8080")
	logger.Info("try: curl -u admin:secret http://localhost:8080/admin/stats")

	if err := r.Serve(":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
