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
	"log/slog"
	"net"
	"net/http"

	"go.opentelemetry.io/otel/trace"

	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/metrics"
	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware/requestid"
	"gerkon.dev/gerkon/tracing"
)

// observabilityRecorder feeds request metrics and spans and builds request
// loggers. It implements router.ObservabilityRecorder.
type observabilityRecorder struct {
	metrics *metrics.Recorder
	tracing *tracing.Tracer
	logger  *slog.Logger
	filter  *pathFilter
}

// requestState is carried from OnRequestStart to OnRequestEnd.
type requestState struct {
	method  string
	span    trace.Span
	metrics *metrics.RequestMetrics
}

func (a *App) newObservabilityRecorder() router.ObservabilityRecorder {
	filter := newPathFilter()
	filter.addPaths(a.cfg.excludePaths...)
	filter.addPrefixes(a.cfg.excludePrefixes...)
	if a.cfg.metricsEnabled {
		filter.addPaths(a.cfg.metricsPath)
	}

	return &observabilityRecorder{
		metrics: a.metrics,
		tracing: a.tracing,
		logger:  a.logging.Logger(),
		filter:  filter,
	}
}

func (o *observabilityRecorder) OnRequestStart(ctx context.Context, req *http.Request) (context.Context, any) {
	if o.metrics == nil && o.tracing == nil {
		return ctx, nil
	}
	if o.filter.shouldExclude(req.URL.Path) {
		return ctx, nil
	}

	st := &requestState{method: req.Method}
	if o.tracing != nil && !o.tracing.ShouldExcludePath(req.URL.Path) {
		ctx, st.span = o.tracing.StartRequestSpan(ctx, req)
	}
	if o.metrics != nil {
		st.metrics = o.metrics.Start(ctx, req.Method)
	}

	return ctx, st
}

func (o *observabilityRecorder) BuildRequestLogger(ctx context.Context, req *http.Request, routePattern string) *slog.Logger {
	attrs := []any{
		fieldHTTPMethod, req.Method,
		fieldURLPath, req.URL.Path,
		fieldHTTPRoute, routePattern,
	}
	if id := requestid.FromContext(ctx); id != "" {
		attrs = append(attrs, fieldRequestID, id)
	}
	if ip := clientIP(req); ip != "" {
		attrs = append(attrs, fieldNetworkClientIP, ip)
	}

	return logging.NewContextLogger(ctx, o.logger.With(attrs...))
}

func (o *observabilityRecorder) OnRequestEnd(ctx context.Context, state any, info router.ResponseInfo, routePattern string) {
	st, ok := state.(*requestState)
	if !ok {
		return
	}

	if st.span != nil {
		o.tracing.FinishRequestSpan(st.span, st.method, info.StatusCode(), routePattern)
	}
	if o.metrics != nil {
		o.metrics.Finish(ctx, st.metrics, info.StatusCode(), info.Size(), routePattern)
	}
}

func clientIP(req *http.Request) string {
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}

	return host
}
