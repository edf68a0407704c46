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
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "gerkon.dev/gerkon/errors"
)

func serve(r http.Handler, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, path, nil))

	return w
}

func TestServeHTTP_Params(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/<a>/<b>", func(c *Context) error {
		return c.Send(c.Param("a") + "," + c.Param("b"))
	}))

	w := serve(r, http.MethodGet, "/1/2")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1,2", w.Body.String())

	w = serve(r, http.MethodGet, "/foo/bar")
	assert.Equal(t, "foo,bar", w.Body.String())

	w = serve(r, http.MethodGet, "/foo/_/bar")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServeHTTP_ParamOrderAndMap(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var got []Param
	var asMap map[string]string
	require.NoError(t, r.GET("/<z>/x/<a>{/<opt>}", func(c *Context) error {
		got = c.Params()
		asMap = c.ParamMap()
		return c.Send(c.RoutePattern())
	}))

	w := serve(r, http.MethodGet, "/1/x/2")
	assert.Equal(t, "/<z>/x/<a>{/<opt>}", w.Body.String())
	assert.Equal(t, []Param{{Key: "z", Value: "1"}, {Key: "a", Value: "2"}}, got)
	assert.Equal(t, map[string]string{"z": "1", "a": "2"}, asMap)
	assert.NotContains(t, asMap, "opt")
}

func TestServeHTTP_FirstMatchWins(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/test*", func(c *Context) error { return c.Send("wildcard") }))
	require.NoError(t, r.GET("/test/exact", func(c *Context) error { return c.Send("exact") }))

	assert.Equal(t, "wildcard", serve(r, http.MethodGet, "/test/exact").Body.String())
}

func TestServeHTTP_NotFound(t *testing.T) {
	t.Parallel()

	t.Run("default body", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.GET("/", ok))

		w := serve(r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Not Found", w.Body.String())
		assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
	})

	t.Run("method without routes", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.GET("/", ok))

		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodPost, "/").Code)
	})

	t.Run("catch-all defaults to 404", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.NotFound(HandlerFunc(func(c *Context) error {
			return c.Send("custom")
		})))

		w := serve(r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "custom", w.Body.String())
	})

	t.Run("catch-all chooses status", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.NotFound(HandlerFunc(func(c *Context) error {
			return c.Redirect("/home")
		})))

		w := serve(r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/home", w.Header().Get("Location"))
	})

	t.Run("catch-all per method", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.Handle(http.MethodGet, "*", HandlerFunc(func(c *Context) error {
			return c.Send("get fallback")
		})))

		assert.Equal(t, "get fallback", serve(r, http.MethodGet, "/x").Body.String())
		assert.Equal(t, "Not Found", serve(r, http.MethodPost, "/x").Body.String())
	})

	t.Run("catch-all sends nothing", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.NotFound(HandlerFunc(func(c *Context) error {
			c.Set("seen", true)
			return nil
		})))

		w := serve(r, http.MethodGet, "/nope")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("catch-all status without body", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.NotFound(HandlerFunc(func(c *Context) error {
			c.Status(http.StatusGone)
			return nil
		})))

		assert.Equal(t, http.StatusGone, serve(r, http.MethodGet, "/nope").Code)
	})

	t.Run("catch-all failure", func(t *testing.T) {
		t.Parallel()

		r := MustNew()
		require.NoError(t, r.NotFound(HandlerFunc(func(*Context) error {
			return errors.New("broken")
		})))

		assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodGet, "/x").Code)
	})

	t.Run("formatter", func(t *testing.T) {
		t.Parallel()

		r := MustNew(WithErrorFormatter(gerrors.NewSimple()))
		w := serve(r, http.MethodGet, "/missing")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"Not Found"}`, w.Body.String())
	})
}

func TestServeHTTP_ControllerFailure(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))

	r := MustNew(WithLogger(logger))
	require.NoError(t, r.GET("/fail", func(*Context) error { return errors.New("database down") }))
	require.NoError(t, r.GET("/panic", func(*Context) error { panic("boom") }))
	require.NoError(t, r.GET("/ok", ok))

	w := serve(r, http.MethodGet, "/fail")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Bad Gateway", w.Body.String())
	assert.NotContains(t, w.Body.String(), "database down")
	assert.Contains(t, logs.String(), "database down")

	w = serve(r, http.MethodGet, "/panic")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, logs.String(), "panic: boom")
	assert.Contains(t, logs.String(), `"stack"`)

	w = serve(r, http.MethodGet, "/ok")
	assert.Equal(t, http.StatusOK, w.Code, "router keeps serving after failures")
	assert.Equal(t, "ok", w.Body.String())
}

func TestServeHTTP_FailureAfterWrite(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.GET("/", func(c *Context) error {
		if err := c.Send("partial"); err != nil {
			return err
		}
		return errors.New("late failure")
	}))

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial", w.Body.String(), "nothing is written twice")
}

func TestServeHTTP_MiddlewareFailure(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var controllerRan atomic.Bool
	require.NoError(t, r.Use(HandlerFunc(func(*Context) error { return errors.New("denied") })))
	require.NoError(t, r.GET("/", func(c *Context) error {
		controllerRan.Store(true)
		return c.Send("ok")
	}))

	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodGet, "/").Code)
	assert.False(t, controllerRan.Load())
}

func TestServeHTTP_AsyncFailure(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Use(AsyncHandlerFunc(func(_ *Context, next Next) {
		go next(errors.New("rejected"))
	})))
	require.NoError(t, r.Route([]string{"GET"}, "/panic", AsyncHandlerFunc(func(*Context, Next) {
		panic("async boom")
	})))

	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodGet, "/").Code)

	r.Reset()
	require.NoError(t, r.Route([]string{"GET"}, "/panic", AsyncHandlerFunc(func(*Context, Next) {
		panic("async boom")
	})))
	assert.Equal(t, http.StatusBadGateway, serve(r, http.MethodGet, "/panic").Code)
}

func TestServeHTTP_MiddlewareOrder(t *testing.T) {
	t.Parallel()

	r := MustNew()
	for _, marker := range []string{"M1", "M2", "M3"} {
		require.NoError(t, r.Use(HandlerFunc(func(c *Context) error {
			v, _ := c.Get("markers")
			markers, _ := v.([]string)
			c.Set("markers", append(markers, marker))
			return nil
		})))
	}
	require.NoError(t, r.GET("/", func(c *Context) error {
		v, _ := c.Get("markers")
		markers, _ := v.([]string)
		return c.Send(strings.Join(markers, ","))
	}))

	assert.Equal(t, "M1,M2,M3", serve(r, http.MethodGet, "/").Body.String())
	assert.Equal(t, "M1,M2,M3", serve(r, http.MethodGet, "/").Body.String(), "state is per request")
}

func TestServeHTTP_ControllerChainOrder(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var order []string
	step := func(name string) HandlerFunc {
		return func(*Context) error {
			order = append(order, name)
			return nil
		}
	}
	require.NoError(t, r.Use(step("mw")))
	require.NoError(t, r.GET("/", step("c1"), step("c2"), func(c *Context) error {
		order = append(order, "c3")
		return c.Send("done")
	}))

	serve(r, http.MethodGet, "/")
	assert.Equal(t, []string{"mw", "c1", "c2", "c3"}, order)
}

func TestServeHTTP_AsyncSuspension(t *testing.T) {
	t.Parallel()

	const delay = 50 * time.Millisecond

	r := MustNew()
	require.NoError(t, r.Use(AsyncHandlerFunc(func(c *Context, next Next) {
		time.AfterFunc(delay, func() {
			c.Set("state", "mutated after delay")
			next(nil)
		})
	})))
	require.NoError(t, r.GET("/", func(c *Context) error {
		v, _ := c.Get("state")
		s, _ := v.(string)
		return c.Send(s)
	}))

	start := time.Now()
	w := serve(r, http.MethodGet, "/")
	assert.GreaterOrEqual(t, time.Since(start), delay)
	assert.Equal(t, "mutated after delay", w.Body.String())
}

func TestServeHTTP_AsyncController(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Route([]string{"GET"}, "/", AsyncHandlerFunc(func(c *Context, _ Next) {
		time.AfterFunc(10*time.Millisecond, func() {
			_ = c.Send("sent without next")
		})
	}), HandlerFunc(func(c *Context) error {
		return c.Send("never")
	})))

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, "sent without next", w.Body.String())
}

func TestServeHTTP_NextReturnsFinished(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var observed atomic.Int64
	require.NoError(t, r.Use(AsyncHandlerFunc(func(c *Context, next Next) {
		<-next(nil)
		observed.Store(int64(c.StatusCode()))
	})))
	require.NoError(t, r.GET("/", func(c *Context) error {
		return c.SendCode(http.StatusAccepted, "queued")
	}))

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, int64(http.StatusAccepted), observed.Load(), "post-response work finishes before ServeHTTP returns")
}

func TestServeHTTP_UnwindsInReverseOrder(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var mu sync.Mutex
	var order []string
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}
	for _, name := range []string{"outer", "middle", "inner"} {
		require.NoError(t, r.Use(AsyncHandlerFunc(func(_ *Context, next Next) {
			<-next(nil)
			record(name)
		})))
	}
	require.NoError(t, r.GET("/", func(c *Context) error {
		record("controller")
		return c.Send("ok")
	}))

	serve(r, http.MethodGet, "/")
	assert.Equal(t, []string{"controller", "inner", "middle", "outer"}, order)
}

func TestServeHTTP_NextIsIdempotent(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := MustNew(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, r.Use(AsyncHandlerFunc(func(_ *Context, next Next) {
		next(nil)
		next(errors.New("too late"))
	})))
	require.NoError(t, r.GET("/", ok))

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Eventually(t, func() bool {
		return strings.Contains(logs.String(), "too late")
	}, time.Second, 5*time.Millisecond)
}

func TestServeHTTP_MediatorEndsResponse(t *testing.T) {
	t.Parallel()

	r := MustNew()
	var controllerRan atomic.Bool
	require.NoError(t, r.Use(HandlerFunc(func(c *Context) error {
		if c.Request.Header.Get("Authorization") == "" {
			return c.SendCode(http.StatusUnauthorized, "login first")
		}
		return nil
	})))
	require.NoError(t, r.GET("/", func(c *Context) error {
		controllerRan.Store(true)
		return c.Send("secret")
	}))

	w := serve(r, http.MethodGet, "/")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "login first", w.Body.String())
	assert.False(t, controllerRan.Load())
}

func TestServeHTTP_CanceledRequestRunsToCompletion(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	r := MustNew(WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	require.NoError(t, r.Use(AsyncHandlerFunc(func(_ *Context, next Next) {
		time.AfterFunc(50*time.Millisecond, func() { next(nil) })
	})))
	var controllerRan atomic.Bool
	require.NoError(t, r.GET("/", func(c *Context) error {
		controllerRan.Store(true)
		return c.Send("ok")
	}))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeHTTP did not return")
	}
	assert.True(t, controllerRan.Load())
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assert.NotContains(t, logs.String(), "request failed")
}

func TestServeHTTP_AsyncDirectWrite(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Use(AsyncHandlerFunc(func(c *Context, _ Next) {
		c.Response.WriteHeader(http.StatusTeapot)
		_, _ = c.Response.Write([]byte("short and stout"))
	})))
	var controllerRan atomic.Bool
	require.NoError(t, r.GET("/", func(c *Context) error {
		controllerRan.Store(true)
		return c.Send("ok")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		r.ServeHTTP(w, req)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("ServeHTTP did not return after a direct write")
	}
	assert.False(t, controllerRan.Load())
	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, "short and stout", w.Body.String())
}

func TestServeHTTP_Concurrent(t *testing.T) {
	t.Parallel()

	r := MustNew()
	require.NoError(t, r.Use(AsyncHandlerFunc(func(c *Context, next Next) {
		c.Set("id", c.Param("id"))
		next(nil)
	})))
	require.NoError(t, r.GET("/items/<id>", func(c *Context) error {
		return c.Send(c.Param("id"))
	}))

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := strings.Repeat("x", i+1)
			w := serve(r, http.MethodGet, "/items/"+id)
			assert.Equal(t, id, w.Body.String())
		}()
	}
	wg.Wait()
}

func TestServeHTTP_Static(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	public := filepath.Join(root, "public")
	require.NoError(t, os.MkdirAll(filepath.Join(public, "css"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(public, "index.html"), []byte("<h1>home</h1>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(public, "css", "site.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("secret"), 0o644))

	r := MustNew(WithStatic(public))
	require.NoError(t, r.GET("/index.html", func(c *Context) error { return c.Send("route wins") }))

	t.Run("route before static", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "route wins", serve(r, http.MethodGet, "/index.html").Body.String())
	})

	t.Run("file served", func(t *testing.T) {
		t.Parallel()

		w := serve(r, http.MethodGet, "/css/site.css")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "body{}", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Type"), "text/css")
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/nope.js").Code)
	})

	t.Run("directory", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/css").Code)
	})

	t.Run("traversal", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.URL.Path = "/../secret.txt"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.NotContains(t, w.Body.String(), "secret")
	})
}

type recordingObserver struct {
	mu       sync.Mutex
	started  int
	patterns []string
	statuses []int
	excluded string
}

type obsKey struct{}

func (o *recordingObserver) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.started++
	ctx = context.WithValue(ctx, obsKey{}, "enriched")
	if req.URL.Path == o.excluded {
		return ctx, nil
	}

	return ctx, struct{}{}
}

func (o *recordingObserver) BuildRequestLogger(context.Context, *http.Request, string) *slog.Logger {
	return nil
}

func (o *recordingObserver) OnRequestEnd(_ context.Context, _ any, info ResponseInfo, routePattern string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.patterns = append(o.patterns, routePattern)
	o.statuses = append(o.statuses, info.StatusCode())
}

func TestServeHTTP_Observability(t *testing.T) {
	t.Parallel()

	obs := &recordingObserver{excluded: "/health"}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))

	r := MustNew(WithObservabilityRecorder(obs), WithStatic(dir))
	require.NoError(t, r.GET("/users/<id>", func(c *Context) error {
		v, _ := c.Context().Value(obsKey{}).(string)
		return c.Send(v)
	}))
	require.NoError(t, r.GET("/health", ok))
	require.NoError(t, r.GET("/fail", func(*Context) error { return errors.New("x") }))

	assert.Equal(t, "enriched", serve(r, http.MethodGet, "/users/1").Body.String())
	serve(r, http.MethodGet, "/a.txt")
	serve(r, http.MethodGet, "/missing")
	serve(r, http.MethodGet, "/fail")
	serve(r, http.MethodGet, "/health")

	obs.mu.Lock()
	defer obs.mu.Unlock()

	assert.Equal(t, 5, obs.started)
	assert.Equal(t, []string{"/users/<id>", RouteStatic, RouteNotFound, "/fail"}, obs.patterns)
	assert.Equal(t, []int{200, 200, 404, 502}, obs.statuses)
}
