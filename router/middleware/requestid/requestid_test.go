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

package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerkon.dev/gerkon/router"
)

func serve(t *testing.T, mw router.HandlerFunc, req *http.Request) (*httptest.ResponseRecorder, string) {
	t.Helper()

	var seen string
	r := router.MustNew()
	require.NoError(t, r.Use(mw))
	r.GET("/test", func(c *router.Context) error {
		seen = Get(c)
		return c.Send("ok")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w, seen
}

func TestRequestID_GeneratesUUIDv7(t *testing.T) {
	t.Parallel()

	w, seen := serve(t, New(), httptest.NewRequest(http.MethodGet, "/test", nil))

	id := w.Header().Get("X-Request-ID")
	require.NotEmpty(t, id)
	assert.Equal(t, id, seen, "handler should see the same id as the response header")

	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestRequestID_ULID(t *testing.T) {
	t.Parallel()

	w, _ := serve(t, New(WithULID()), httptest.NewRequest(http.MethodGet, "/test", nil))

	id := w.Header().Get("X-Request-ID")
	assert.Len(t, id, 26)
	_, err := ulid.ParseStrict(id)
	assert.NoError(t, err)
}

func TestRequestID_ClientIDHandling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		allowClient  bool
		clientID     string
		expectClient bool
	}{
		{name: "allow client ID", allowClient: true, clientID: "client-provided-id-123", expectClient: true},
		{name: "disallow client ID", allowClient: false, clientID: "client-provided-id-123", expectClient: false},
		{name: "oversized client ID", allowClient: true, clientID: strings.Repeat("x", maxClientIDLength+1), expectClient: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			req.Header.Set("X-Request-ID", tt.clientID)
			w, _ := serve(t, New(WithAllowClientID(tt.allowClient)), req)

			id := w.Header().Get("X-Request-ID")
			require.NotEmpty(t, id)
			if tt.expectClient {
				assert.Equal(t, tt.clientID, id)
			} else {
				assert.NotEqual(t, tt.clientID, id)
			}
		})
	}
}

func TestRequestID_CustomHeaderAndGenerator(t *testing.T) {
	t.Parallel()

	var n atomic.Int64
	mw := New(
		WithHeader("X-Correlation-ID"),
		WithGenerator(func() string {
			return "req-" + string(rune('0'+n.Add(1)))
		}),
	)

	w, seen := serve(t, mw, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, "req-1", w.Header().Get("X-Correlation-ID"))
	assert.Empty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "req-1", seen)
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	require.NoError(t, r.Use(New()))
	r.GET("/test", func(c *router.Context) error { return c.Send("ok") })

	ids := make(map[string]struct{})
	for range 50 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		ids[w.Header().Get("X-Request-ID")] = struct{}{}
	}
	assert.Len(t, ids, 50)
}

func TestGet_WithoutMediator(t *testing.T) {
	t.Parallel()

	var seen string
	r := router.MustNew()
	r.GET("/test", func(c *router.Context) error {
		seen = Get(c)
		return c.Send("ok")
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Empty(t, seen)
}
