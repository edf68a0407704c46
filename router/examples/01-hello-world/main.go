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

// Package main demonstrates the smallest gerkon router setup.
package main

import (
	"errors"
	"net/http"
	"os"

	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/router"
)

func main() {
	logger := logging.MustNew(logging.WithConsoleHandler())
	r := router.MustNew(router.WithLogger(logger.Logger()))

	if err := r.GET("/", func(c *router.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"message": "Hello, Gerkon!",
		})
	}); err != nil {
		logger.Error("route registration failed", "error", err)
		os.Exit(1)
	}

	logger.Info("server starting", "address", "http://localhost:8080")
	logger.Info("try: curl http://localhost:8080/")

	if err := r.Serve(":8080"); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}
