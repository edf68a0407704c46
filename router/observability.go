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

package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
)

// Route pattern sentinels reported to ObservabilityRecorder.OnRequestEnd
// when no registered rule served the request.
const (
	RouteNotFound  = "_not_found"
	RouteStatic    = "_static"
	RouteUnmatched = "_unmatched"
)

// noopLogger is a singleton no-op logger used when no logger is configured.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// NoopLogger returns the singleton no-op logger.
func NoopLogger() *slog.Logger {
	return noopLogger
}

// ObservabilityRecorder receives request lifecycle hooks. Implementations
// typically combine metrics, tracing and request-scoped logging.
//
// Lifecycle:
//  1. OnRequestStart(ctx, req) returns an enriched context and an opaque
//     state. The enriched context is always attached to the request.
//  2. BuildRequestLogger is called once the route pattern is known.
//  3. OnRequestEnd is called after the response is finalized, only when
//     state is non-nil.
//
// All methods must be safe for concurrent use.
type ObservabilityRecorder interface {
	OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any)
	BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger
	OnRequestEnd(ctx context.Context, state any, info ResponseInfo, routePattern string)
}

// ResponseInfo exposes the final status and size of a response.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
}
