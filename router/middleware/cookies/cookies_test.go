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

package cookies

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerkon.dev/gerkon/router"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   map[string]string
	}{
		{name: "empty", header: "", want: map[string]string{}},
		{name: "single", header: "session=abc", want: map[string]string{"session": "abc"}},
		{name: "several with spaces", header: "a=1;  b=2; c=3", want: map[string]string{"a": "1", "b": "2", "c": "3"}},
		{name: "missing value", header: "flag; a=1", want: map[string]string{"flag": "", "a": "1"}},
		{name: "last wins", header: "a=1; a=2", want: map[string]string{"a": "2"}},
		{name: "quoted", header: `q="hello world"`, want: map[string]string{"q": "hello world"}},
		{name: "value with equals", header: "token=a=b", want: map[string]string{"token": "a=b"}},
		{name: "empty pairs skipped", header: ";; =x; a=1;", want: map[string]string{"a": "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Parse(tt.header))
		})
	}
}

func TestCookies_Mediator(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	require.NoError(t, r.Use(New()))
	var got map[string]string
	require.NoError(t, r.GET("/", func(c *router.Context) error {
		got = Get(c)
		return c.Send("hello " + Value(c, "user"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Add("Cookie", "user=ana; theme=dark")
	req.Header.Add("Cookie", "lang=en")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "hello ana", w.Body.String())
	assert.Equal(t, map[string]string{"user": "ana", "theme": "dark", "lang": "en"}, got)
}

func TestCookies_URLDecoding(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	require.NoError(t, r.Use(New(WithURLDecoding())))
	require.NoError(t, r.GET("/", func(c *router.Context) error {
		return c.Send(Value(c, "name") + "|" + Value(c, "bad"))
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Cookie", "name=J%C3%BCrgen%20K; bad=%zz")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "Jürgen K|%zz", w.Body.String())
}

func TestCookies_WithoutMediator(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	var got map[string]string
	require.NoError(t, r.GET("/", func(c *router.Context) error {
		got = Get(c)
		return c.Send("ok")
	}))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotNil(t, got)
	assert.Empty(t, got)
}
