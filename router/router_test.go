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

package router

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(c *Context) error { return c.Send("ok") }

func TestRoute_Registration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		methods  []string
		rule     string
		handlers []Handler
		wantErr  error
	}{
		{name: "valid", methods: []string{"GET"}, rule: "/", handlers: []Handler{HandlerFunc(ok)}},
		{name: "lowercase method", methods: []string{"get"}, rule: "/", handlers: []Handler{HandlerFunc(ok)}},
		{name: "empty rule", methods: []string{"GET"}, rule: "", handlers: []Handler{HandlerFunc(ok)}, wantErr: ErrInvalidRule},
		{name: "no handlers", methods: []string{"GET"}, rule: "/", wantErr: ErrInvalidHandler},
		{name: "nil handler", methods: []string{"GET"}, rule: "/", handlers: []Handler{nil}, wantErr: ErrInvalidHandler},
		{name: "nil func handler", methods: []string{"GET"}, rule: "/", handlers: []Handler{HandlerFunc(nil)}, wantErr: ErrInvalidHandler},
		{name: "nil async handler", methods: []string{"GET"}, rule: "/", handlers: []Handler{AsyncHandlerFunc(nil)}, wantErr: ErrInvalidHandler},
		{name: "unknown method", methods: []string{"FOO"}, rule: "/", handlers: []Handler{HandlerFunc(ok)}, wantErr: ErrInvalidMethod},
		{name: "empty method", methods: []string{""}, rule: "/", handlers: []Handler{HandlerFunc(ok)}, wantErr: ErrInvalidMethod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := MustNew()
			err := r.Route(tt.methods, tt.rule, tt.handlers...)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}

			require.ErrorIs(t, err, tt.wantErr)
			var regErr *RegistrationError
			require.ErrorAs(t, err, &regErr)
			assert.Equal(t, tt.rule, regErr.Rule)
		})
	}
}

func TestRoute_Duplicate(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/", ok))

	err := r.GET("/", ok)
	require.ErrorIs(t, err, ErrDuplicateRoute)
	assert.Contains(t, err.Error(), "GET")

	require.NoError(t, r.POST("/", ok), "same rule under another method is independent")
	assert.Equal(t, []string{"/"}, r.Routes("GET"))
	assert.Equal(t, []string{"/"}, r.Routes("POST"))
}

func TestRoute_AtomicAcrossMethods(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.PUT("/items", ok))

	err := r.Route([]string{"GET", "POST", "PUT"}, "/items", HandlerFunc(ok))
	require.ErrorIs(t, err, ErrDuplicateRoute)

	assert.Empty(t, r.Routes("GET"), "nothing is registered when one method conflicts")
	assert.Empty(t, r.Routes("POST"))

	err = r.Route([]string{"GET", "NOPE"}, "/other", HandlerFunc(ok))
	require.ErrorIs(t, err, ErrInvalidMethod)
	assert.Empty(t, r.Routes("GET"))
}

func TestRoute_DefaultMethods(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Route(nil, "/all", HandlerFunc(ok)))

	for _, m := range Methods {
		assert.Equal(t, []string{"/all"}, r.Routes(m), m)
	}

	require.NoError(t, r.Any("/any", HandlerFunc(ok)))
	assert.Equal(t, []string{"/all", "/any"}, r.Routes("PATCH"))
}

func TestRoute_SharedAcrossMethods(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Route([]string{"get", "POST", "GET"}, "/x", HandlerFunc(ok)))

	getRoute, _, found := r.Lookup("GET", "/x")
	require.True(t, found)
	postRoute, _, found := r.Lookup("POST", "/x")
	require.True(t, found)

	assert.Same(t, getRoute, postRoute)
	assert.Equal(t, []string{"GET", "POST"}, getRoute.Methods())
	assert.Equal(t, "/x", getRoute.Rule())
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/", ok))
	require.NoError(t, r.GET("/b", ok))
	require.NoError(t, r.GET("/a", ok))

	assert.Equal(t, []string{"/", "/b", "/a"}, r.Routes("GET"))
	assert.Equal(t, []string{"/", "/b", "/a"}, r.Routes("get"))
	assert.Empty(t, r.Routes("POST"))

	unknown := r.Routes("FOO")
	assert.NotNil(t, unknown)
	assert.Empty(t, unknown)
}

func TestLookup(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/users/<id>", ok))
	require.NoError(t, r.GET("/users/me", ok))
	require.NoError(t, r.GET("/files/*", ok))
	require.NoError(t, r.NotFound(HandlerFunc(ok)))

	t.Run("first match wins", func(t *testing.T) {
		t.Parallel()

		route, params, found := r.Lookup("GET", "/users/me")
		require.True(t, found)
		assert.Equal(t, "/users/<id>", route.Rule())
		assert.Equal(t, []Param{{Key: "id", Value: "me"}}, params)
	})

	t.Run("method mismatch", func(t *testing.T) {
		t.Parallel()

		_, _, found := r.Lookup("POST", "/users/1")
		assert.False(t, found)
	})

	t.Run("catch-all excluded", func(t *testing.T) {
		t.Parallel()

		_, _, found := r.Lookup("GET", "/nothing/here")
		assert.False(t, found)
	})

	t.Run("wildcard", func(t *testing.T) {
		t.Parallel()

		route, params, found := r.Lookup("GET", "/files/a/b.txt")
		require.True(t, found)
		assert.Equal(t, "/files/*", route.Rule())
		assert.Empty(t, params)
	})
}

func TestUse_Validation(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.ErrorIs(t, r.Use(), ErrInvalidHandler)
	require.ErrorIs(t, r.Use(HandlerFunc(nil)), ErrInvalidHandler)
	require.NoError(t, r.Use(HandlerFunc(func(*Context) error { return nil })))
}

func TestSettingsAndStatic(t *testing.T) {
	t.Parallel()

	r := MustNew(WithStatic("/srv/www"))

	v, found := r.Setting(SettingStatic)
	require.True(t, found)
	assert.Equal(t, "/srv/www", v)

	r.Set("name", "gerkon")
	v, found = r.Setting("name")
	require.True(t, found)
	assert.Equal(t, "gerkon", v)

	require.ErrorIs(t, r.Static(""), ErrInvalidStaticPath)
	require.NoError(t, r.Static("/tmp"))
	v, _ = r.Setting(SettingStatic)
	assert.Equal(t, "/tmp", v)
}

func TestReset(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/", ok))
	require.NoError(t, r.NotFound(HandlerFunc(ok)))
	require.NoError(t, r.Use(HandlerFunc(func(*Context) error { return nil })))
	require.NoError(t, r.Static("/tmp"))

	r.Reset()

	assert.Empty(t, r.Routes("GET"))
	_, found := r.Setting(SettingStatic)
	assert.False(t, found)

	require.NoError(t, r.GET("/", ok), "rule can be registered again after reset")
}

func TestNew_Options(t *testing.T) {
	t.Parallel()

	_, err := New(WithServerTimeouts(0, time.Second, time.Second, time.Second))
	require.ErrorIs(t, err, ErrServerTimeoutInvalid)

	assert.Panics(t, func() {
		MustNew(WithServerTimeouts(time.Second, -1, time.Second, time.Second))
	})

	r, err := New(WithLogger(nil), WithErrorFormatter(nil))
	require.NoError(t, err)
	assert.NotNil(t, r.logger)
	assert.NotNil(t, r.formatter)

	srv := MustNew(WithServerTimeouts(time.Second, 2*time.Second, 3*time.Second, 4*time.Second)).NewServer(":0")
	assert.Equal(t, time.Second, srv.ReadHeaderTimeout)
	assert.Equal(t, 2*time.Second, srv.ReadTimeout)
	assert.Equal(t, 3*time.Second, srv.WriteTimeout)
	assert.Equal(t, 4*time.Second, srv.IdleTimeout)
}

func TestMustRoute(t *testing.T) {
	t.Parallel()

	r := MustNew()
	assert.NotPanics(t, func() { r.MustRoute([]string{http.MethodGet}, "/", HandlerFunc(ok)) })
	assert.Panics(t, func() { r.MustRoute([]string{http.MethodGet}, "/", HandlerFunc(ok)) })
}

func TestMatch(t *testing.T) {
	t.Parallel()

	assert.True(t, Match("/simple{/route}", "/simple"))
	assert.False(t, Match("/simple{/route}", "/simple/"))
}
