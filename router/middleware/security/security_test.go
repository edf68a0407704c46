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

//go:build !integration

package security

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerkon.dev/gerkon/router"
)

func serve(t *testing.T, req *http.Request, opts ...Option) http.Header {
	t.Helper()

	r := router.MustNew()
	require.NoError(t, r.Use(New(opts...)))
	require.NoError(t, r.GET("/", func(c *router.Context) error {
		return c.Send("ok")
	}))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, "ok", w.Body.String())

	return w.Header()
}

func TestSecurity_Defaults(t *testing.T) {
	t.Parallel()

	h := serve(t, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "DENY", h.Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'self'", h.Get("Content-Security-Policy"))
	assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
	assert.Equal(t, "same-origin", h.Get("Cross-Origin-Opener-Policy"))
	assert.Empty(t, h.Get("Permissions-Policy"))
	assert.Empty(t, h.Get("Strict-Transport-Security"), "HSTS is only sent over TLS")
}

func TestSecurity_HSTSOverTLS(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []Option
		want string
	}{
		{name: "default", want: "max-age=31536000; includeSubDomains"},
		{name: "preload", opts: []Option{WithHSTS(600, false, true)}, want: "max-age=600; preload"},
		{name: "disabled", opts: []Option{WithHSTS(0, false, false)}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.TLS = &tls.ConnectionState{}
			h := serve(t, req, tt.opts...)

			assert.Equal(t, tt.want, h.Get("Strict-Transport-Security"))
		})
	}
}

func TestSecurity_Options(t *testing.T) {
	t.Parallel()

	h := serve(t, httptest.NewRequest(http.MethodGet, "/", nil),
		WithFrameOptions(""),
		WithContentTypeNosniff(false),
		WithPermissionsPolicy("geolocation=()"),
		WithCustomHeader("X-Powered-By", "gerkon"),
	)

	assert.Empty(t, h.Get("X-Frame-Options"))
	assert.Empty(t, h.Get("X-Content-Type-Options"))
	assert.Equal(t, "geolocation=()", h.Get("Permissions-Policy"))
	assert.Equal(t, "gerkon", h.Get("X-Powered-By"))
}

func TestSecurity_DevelopmentPreset(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.TLS = &tls.ConnectionState{}
	h := serve(t, req, DevelopmentPreset())

	assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))
	assert.Contains(t, h.Get("Content-Security-Policy"), "'unsafe-inline'")
	assert.Empty(t, h.Get("Strict-Transport-Security"))
	assert.Empty(t, h.Get("Cross-Origin-Opener-Policy"))
}
