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

package compression

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gerkon.dev/gerkon/router"
)

var payload = strings.Repeat("gerkon compresses this line. ", 64)

func newRouter(t *testing.T, opts ...Option) *router.Router {
	t.Helper()

	r := router.MustNew()
	require.NoError(t, r.Use(New(opts...)))
	require.NoError(t, r.GET("/text", func(c *router.Context) error {
		return c.Send(payload)
	}))
	require.NoError(t, r.GET("/small", func(c *router.Context) error {
		return c.Send("tiny")
	}))
	require.NoError(t, r.GET("/empty", func(c *router.Context) error {
		return c.SendCode(http.StatusNoContent)
	}))
	require.NoError(t, r.GET("/stream", func(c *router.Context) error {
		return c.SendBytes(http.StatusOK, "text/event-stream", []byte("data: 1\n\n"))
	}))

	return r
}

func get(r http.Handler, path, acceptEncoding string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	return w
}

func gunzip(t *testing.T, body io.Reader) string {
	t.Helper()

	gr, err := gzip.NewReader(body)
	require.NoError(t, err)
	defer gr.Close()

	out, err := io.ReadAll(gr)
	require.NoError(t, err)

	return string(out)
}

func TestCompression_Gzip(t *testing.T) {
	t.Parallel()

	w := get(newRouter(t), "/text", "gzip")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Header().Values("Vary"), "Accept-Encoding")
	assert.Contains(t, w.Header().Get("Content-Type"), "text/plain", "content type is sniffed before compressing")
	assert.Equal(t, payload, gunzip(t, w.Body))
}

func TestCompression_BrotliPreferred(t *testing.T) {
	t.Parallel()

	w := get(newRouter(t), "/text", "gzip, br")

	require.Equal(t, "br", w.Header().Get("Content-Encoding"))
	out, err := io.ReadAll(brotli.NewReader(w.Body))
	require.NoError(t, err)
	assert.Equal(t, payload, string(out))
}

func TestCompression_NoSupport(t *testing.T) {
	t.Parallel()

	w := get(newRouter(t), "/text", "")

	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, w.Body.String())
}

func TestCompression_MinSize(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithMinSize(256))

	small := get(r, "/small", "gzip")
	assert.Empty(t, small.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", small.Body.String())

	large := get(r, "/text", "gzip")
	assert.Equal(t, "gzip", large.Header().Get("Content-Encoding"))
	assert.Equal(t, payload, gunzip(t, large.Body))
}

func TestCompression_SkippedResponses(t *testing.T) {
	t.Parallel()

	r := newRouter(t, WithExcludePaths("/small"))

	noContent := get(r, "/empty", "gzip")
	assert.Equal(t, http.StatusNoContent, noContent.Code)
	assert.Empty(t, noContent.Header().Get("Content-Encoding"))

	stream := get(r, "/stream", "gzip")
	assert.Empty(t, stream.Header().Get("Content-Encoding"))
	assert.Equal(t, "data: 1\n\n", stream.Body.String())

	excluded := get(r, "/small", "gzip")
	assert.Empty(t, excluded.Header().Get("Content-Encoding"))
	assert.Equal(t, "tiny", excluded.Body.String())
}

func TestCompression_DefaultNotFoundStatusKept(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	require.NoError(t, r.Use(New()))
	require.NoError(t, r.NotFound(router.HandlerFunc(func(c *router.Context) error {
		return c.Send(payload)
	})))

	w := get(r, "/missing", "gzip")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, payload, gunzip(t, w.Body))
}

func TestCompression_ControllerFailure(t *testing.T) {
	t.Parallel()

	r := router.MustNew()
	require.NoError(t, r.Use(New()))
	require.NoError(t, r.GET("/boom", func(*router.Context) error {
		return assert.AnError
	}))

	w := get(r, "/boom", "gzip")

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, http.StatusText(http.StatusBadGateway), gunzip(t, w.Body))
}

func TestCompression_StaticFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "page.html"), []byte(payload), 0o600))

	r := router.MustNew(router.WithStatic(dir))
	require.NoError(t, r.Use(New()))

	w := get(r, "/page.html", "gzip")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Length"))
	assert.Equal(t, payload, gunzip(t, w.Body))
}

func TestChooseEncoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		header string
		br     bool
		gzip   bool
		want   string
	}{
		{header: "gzip", br: true, gzip: true, want: "gzip"},
		{header: "br;q=0.5, gzip;q=0.8", br: true, gzip: true, want: "gzip"},
		{header: "br, gzip", br: true, gzip: true, want: "br"},
		{header: "br, gzip", br: false, gzip: true, want: "gzip"},
		{header: "gzip;q=0", br: true, gzip: true, want: ""},
		{header: "*", br: true, gzip: true, want: "br"},
		{header: "identity", br: true, gzip: true, want: ""},
		{header: "", br: true, gzip: true, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, chooseEncoding(tt.header, tt.br, tt.gzip))
		})
	}
}
