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

// Package cors provides a mediator for Cross-Origin Resource Sharing.
//
// Requests from allowed origins get the Access-Control-* headers. Preflight
// requests (OPTIONS with Access-Control-Request-Method) are answered with
// 204 No Content and end the chain. The default configuration allows no
// origins.
//
//	app.Use(cors.New(cors.WithAllowedOrigins("https://app.example.com")))
package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"gerkon.dev/gerkon/router"
)

// New returns the CORS mediator.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allowMethods := strings.Join(cfg.allowedMethods, ", ")
	allowHeaders := strings.Join(cfg.allowedHeaders, ", ")
	exposeHeaders := strings.Join(cfg.exposedHeaders, ", ")
	maxAge := strconv.Itoa(cfg.maxAge)

	return func(c *router.Context) error {
		h := c.Response.Header()
		h.Add("Vary", "Origin")

		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			return nil
		}

		allowed := cfg.allowOrigin(origin)
		if allowed == "" {
			return nil
		}

		h.Set("Access-Control-Allow-Origin", allowed)
		if cfg.allowCredentials {
			h.Set("Access-Control-Allow-Credentials", "true")
		}
		if exposeHeaders != "" {
			h.Set("Access-Control-Expose-Headers", exposeHeaders)
		}

		if c.Request.Method != http.MethodOptions || c.Request.Header.Get("Access-Control-Request-Method") == "" {
			return nil
		}

		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Max-Age", maxAge)

		return c.SendCode(http.StatusNoContent)
	}
}

// allowOrigin returns the Access-Control-Allow-Origin value for origin,
// or "" when it is not allowed. Credentials never go with a wildcard.
func (cfg *config) allowOrigin(origin string) string {
	switch {
	case cfg.allowAllOrigins:
		if cfg.allowCredentials {
			return origin
		}
		return "*"
	case cfg.allowOriginFunc != nil:
		if cfg.allowOriginFunc(origin) {
			return origin
		}
	case slices.Contains(cfg.allowedOrigins, origin):
		return origin
	}

	return ""
}
