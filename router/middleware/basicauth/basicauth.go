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

// Package basicauth provides a mediator for HTTP Basic Authentication
// (RFC 7617).
//
// Rejected requests get 401 with a WWW-Authenticate challenge and the chain
// ends there. Accepted requests carry the username in the request context.
// It can guard the whole application or a single route:
//
//	guard := basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"}))
//	app.GET("/admin", guard, adminHandler)
//
// Credentials travel base64-encoded, so serve it over TLS only.
package basicauth

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strconv"

	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware"
)

func defaultUnauthorized(c *router.Context) error {
	return c.SendCode(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
}

// New returns the basic auth mediator.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	challenge := "Basic realm=" + strconv.Quote(cfg.realm) + `, charset="UTF-8"`

	return func(c *router.Context) error {
		if cfg.skipPaths[c.Request.URL.Path] {
			return nil
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok || !cfg.authenticate(username, password) {
			c.Response.Header().Set("WWW-Authenticate", challenge)
			return cfg.unauthorized(c)
		}

		ctx := context.WithValue(c.Request.Context(), middleware.AuthUsernameKey, username)
		c.Request = c.Request.WithContext(ctx)

		return nil
	}
}

func (cfg *config) authenticate(username, password string) bool {
	if cfg.validator != nil {
		return cfg.validator(username, password)
	}

	expected, exists := cfg.users[username]
	match := subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1

	return exists && match
}

// GetUsername returns the authenticated username, or "".
func GetUsername(c *router.Context) string {
	if username, ok := c.Request.Context().Value(middleware.AuthUsernameKey).(string); ok {
		return username
	}

	return ""
}
