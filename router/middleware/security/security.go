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

// Package security provides a mediator that sets defensive response
// headers.
//
// Defaults:
//
//	X-Frame-Options: DENY
//	X-Content-Type-Options: nosniff
//	Strict-Transport-Security: max-age=31536000; includeSubDomains (TLS only)
//	Content-Security-Policy: default-src 'self'
//	Referrer-Policy: strict-origin-when-cross-origin
//	Cross-Origin-Opener-Policy: same-origin
//
// Usage:
//
//	app.Use(security.New(security.WithFrameOptions("SAMEORIGIN")))
package security

import (
	"strconv"

	"gerkon.dev/gerkon/router"
)

// New returns the security headers mediator.
func New(opts ...Option) router.HandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	headers := cfg.headers()
	hsts := cfg.hsts()

	return func(c *router.Context) error {
		h := c.Response.Header()
		for _, kv := range headers {
			h.Set(kv[0], kv[1])
		}
		if hsts != "" && c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hsts)
		}

		return nil
	}
}

// headers returns the fixed headers in the order they are set.
func (cfg *config) headers() [][2]string {
	var out [][2]string
	add := func(name, value string) {
		if value != "" {
			out = append(out, [2]string{name, value})
		}
	}

	add("X-Frame-Options", cfg.frameOptions)
	if cfg.contentTypeNosniff {
		add("X-Content-Type-Options", "nosniff")
	}
	add("Content-Security-Policy", cfg.contentSecurityPolicy)
	add("Referrer-Policy", cfg.referrerPolicy)
	add("Permissions-Policy", cfg.permissionsPolicy)
	add("Cross-Origin-Opener-Policy", cfg.crossOriginOpener)

	return append(out, cfg.customHeaders...)
}

func (cfg *config) hsts() string {
	if cfg.hstsMaxAge <= 0 {
		return ""
	}

	v := "max-age=" + strconv.Itoa(cfg.hstsMaxAge)
	if cfg.hstsIncludeSubdomains {
		v += "; includeSubDomains"
	}
	if cfg.hstsPreload {
		v += "; preload"
	}

	return v
}
