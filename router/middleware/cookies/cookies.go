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

// Package cookies provides a mediator that parses the Cookie request
// header into a name to value map, available to every later step.
//
// Parsing is lenient: pairs are split on ";", a pair without "=" yields an
// empty value, and for repeated names the last one wins. Surrounding double
// quotes are removed from values.
//
//	app.Use(cookies.New())
//
//	app.GET("/", func(c *router.Context) error {
//	    return c.Send("session " + cookies.Value(c, "session"))
//	})
package cookies

import (
	"context"
	"net/url"
	"strings"

	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware"
)

// Option configures the cookies mediator.
type Option func(*config)

type config struct {
	decode bool
}

// WithURLDecoding unescapes percent-encoded values. Values that fail to
// decode are kept as sent.
func WithURLDecoding() Option {
	return func(cfg *config) {
		cfg.decode = true
	}
}

// New returns the cookies mediator.
func New(opts ...Option) router.HandlerFunc {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context) error {
		parsed := Parse(strings.Join(c.Request.Header.Values("Cookie"), "; "))
		if cfg.decode {
			for name, value := range parsed {
				if v, err := url.QueryUnescape(value); err == nil {
					parsed[name] = v
				}
			}
		}

		ctx := context.WithValue(c.Request.Context(), middleware.CookiesKey, parsed)
		c.Request = c.Request.WithContext(ctx)

		return nil
	}
}

// Parse parses a Cookie header value. It never fails; malformed pairs are
// kept as best as possible and empty names are skipped.
func Parse(header string) map[string]string {
	out := make(map[string]string)
	for pair := range strings.SplitSeq(header, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(pair), "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && value[0] == '"' && value[len(value)-1] == '"' {
			value = value[1 : len(value)-1]
		}
		out[name] = value
	}

	return out
}

// Get returns the parsed cookies. It returns an empty map when the
// mediator did not run.
func Get(c *router.Context) map[string]string {
	if m, ok := c.Request.Context().Value(middleware.CookiesKey).(map[string]string); ok {
		return m
	}

	return map[string]string{}
}

// Value returns a single cookie value, or "".
func Value(c *router.Context, name string) string {
	return Get(c)[name]
}
