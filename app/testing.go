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

package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gerkon.dev/gerkon/logging"
)

// TestOption configures Test.
type TestOption func(*testConfig)

type testConfig struct {
	timeout time.Duration
	ctx     context.Context //nolint:containedctx // request context for Test
}

// WithTimeout bounds a Test request. Use -1 for no timeout.
func WithTimeout(d time.Duration) TestOption {
	return func(cfg *testConfig) { cfg.timeout = d }
}

// WithContext sets the parent context of a Test request.
func WithContext(ctx context.Context) TestOption {
	return func(cfg *testConfig) { cfg.ctx = ctx }
}

// Test dispatches req through the App without a server and returns the
// recorded response. It fails if the request does not finish within the
// timeout, one second by default; the handler may keep running afterwards.
//
// Example:
//
//	resp, err := a.Test(httptest.NewRequest(http.MethodGet, "/users/42", nil))
//	require.NoError(t, err)
//	assert.Equal(t, http.StatusOK, resp.StatusCode)
func (a *App) Test(req *http.Request, opts ...TestOption) (*http.Response, error) {
	cfg := &testConfig{
		timeout: time.Second,
		ctx:     context.Background(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := cfg.ctx
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}
	req = req.WithContext(ctx)

	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		defer close(done)
		a.router.ServeHTTP(rec, req)
	}()

	select {
	case <-done:
		return rec.Result(), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("request timeout: %w", ctx.Err())
	}
}

// TestingApp returns an App with logging disabled that is shut down when
// the test ends.
func TestingApp(t testing.TB, opts ...Option) *App {
	t.Helper()

	base := []Option{
		WithEnvironment("test"),
		WithLogger(logging.MustNew(logging.WithDisabled())),
	}
	a, err := New(append(base, opts...)...)
	require.NoError(t, err)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.Shutdown(ctx)
	})

	return a
}
