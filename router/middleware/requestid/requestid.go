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

package requestid

import (
	"context"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware"
)

// maxClientIDLength bounds ids accepted from clients.
const maxClientIDLength = 128

// generateUUIDv7 returns a time-ordered UUID. uuid.NewV7 only fails when
// the random source fails, in which case a v4 is used.
func generateUUIDv7() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func generateULID() string {
	return ulid.Make().String()
}

// New returns a mediator that assigns a request id and passes control on.
//
// Example:
//
//	app.Use(requestid.New(requestid.WithHeader("X-Correlation-ID")))
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) error {
		var id string
		if cfg.allowClientID {
			id = c.Request.Header.Get(cfg.headerName)
			if len(id) > maxClientIDLength {
				id = ""
			}
		}
		if id == "" {
			id = cfg.generator()
		}

		c.Response.Header().Set(cfg.headerName, id)
		ctx := context.WithValue(c.Request.Context(), middleware.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		return nil
	}
}

// Get returns the request id, or "" if the mediator did not run.
func Get(c *router.Context) string {
	return FromContext(c.Request.Context())
}

// FromContext returns the request id stored in ctx, or "".
func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(middleware.RequestIDKey).(string); ok {
		return id
	}

	return ""
}
