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

package tracing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultServiceName is used when WithServiceName is not given.
	DefaultServiceName = "gerkon"

	// DefaultServiceVersion is used when WithServiceVersion is not given.
	DefaultServiceVersion = "dev"

	tracerName = "gerkon.dev/gerkon/tracing"

	attrPrefixHeader = "http.request.header."
)

// ErrNilTracerProvider is returned when WithTracerProvider is given nil.
var ErrNilTracerProvider = errors.New("tracing: tracer provider is nil")

// Tracer creates request spans. It is immutable after New and safe for
// concurrent use.
type Tracer struct {
	provider       Provider
	otlpEndpoint   string
	serviceName    string
	serviceVersion string
	sampleRate     float64
	batchTimeout   time.Duration
	registerGlobal bool
	logger         *slog.Logger

	excludePaths    map[string]bool
	excludePrefixes []string
	recordHeaders   []string

	tracerProvider *sdktrace.TracerProvider
	customProvider bool
	tracer         trace.Tracer
	propagator     propagation.TextMapPropagator

	shutdownOnce sync.Once
	shutdownErr  error
}

// New builds a Tracer and its exporter.
func New(opts ...Option) (*Tracer, error) {
	t := &Tracer{
		provider:       NoopProvider,
		serviceName:    DefaultServiceName,
		serviceVersion: DefaultServiceVersion,
		sampleRate:     1.0,
		batchTimeout:   5 * time.Second,
		logger:         slog.New(slog.DiscardHandler),
		excludePaths:   make(map[string]bool),
		propagator:     propagation.TraceContext{},
	}
	for _, opt := range opts {
		opt(t)
	}

	if t.serviceName == "" {
		return nil, errors.New("tracing: service name cannot be empty")
	}
	if err := t.initializeProvider(); err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}

	return t, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Tracer {
	t, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return t
}

// Provider returns the configured exporter.
func (t *Tracer) Provider() Provider {
	return t.provider
}

// TracerProvider returns the underlying provider.
func (t *Tracer) TracerProvider() *sdktrace.TracerProvider {
	return t.tracerProvider
}

// Propagator returns the propagator used for incoming headers.
func (t *Tracer) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

// ShouldExcludePath reports whether requests for path are not traced.
func (t *Tracer) ShouldExcludePath(path string) bool {
	if t.excludePaths[path] {
		return true
	}
	for _, prefix := range t.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// StartSpan starts an internal span below the one in ctx.
//
// Example:
//
//	ctx, span := tr.StartSpan(ctx, "load-user")
//	defer span.End()
func (t *Tracer) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name, opts...)
}

// StartRequestSpan extracts the caller's trace context from req and starts
// a server span. The span is named after the method and path until
// FinishRequestSpan renames it after the matched rule.
func (t *Tracer) StartRequestSpan(ctx context.Context, req *http.Request) (context.Context, trace.Span) {
	ctx = t.propagator.Extract(ctx, propagation.HeaderCarrier(req.Header))

	scheme := "http"
	if req.TLS != nil {
		scheme = "https"
	}
	attrs := make([]attribute.KeyValue, 0, 6+len(t.recordHeaders))
	attrs = append(attrs,
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.URL.Path),
		attribute.String("url.scheme", scheme),
		attribute.String("server.address", req.Host),
		attribute.String("network.protocol.version", fmt.Sprintf("%d.%d", req.ProtoMajor, req.ProtoMinor)),
	)
	if ua := req.UserAgent(); ua != "" {
		attrs = append(attrs, attribute.String("user_agent.original", ua))
	}
	for _, h := range t.recordHeaders {
		if v := req.Header.Get(h); v != "" {
			attrs = append(attrs, attribute.String(attrPrefixHeader+strings.ToLower(h), v))
		}
	}

	return t.tracer.Start(ctx, req.Method+" "+req.URL.Path,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(attrs...),
	)
}

// FinishRequestSpan records the response status and route, then ends the
// span. Server errors mark the span as failed.
func (t *Tracer) FinishRequestSpan(span trace.Span, method string, statusCode int, route string) {
	if span == nil || !span.IsRecording() {
		return
	}

	span.SetName(method + " " + route)
	span.SetAttributes(
		attribute.Int("http.response.status_code", statusCode),
		attribute.String("http.route", route),
	)
	if statusCode >= 500 {
		span.SetStatus(codes.Error, http.StatusText(statusCode))
	}
	span.End()
}

// Shutdown flushes and stops a provider built by New. It is safe to call
// more than once.
func (t *Tracer) Shutdown(ctx context.Context) error {
	t.shutdownOnce.Do(func() {
		if t.customProvider || t.tracerProvider == nil {
			return
		}
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			t.logger.Error("tracer provider shutdown failed", "error", err)
			t.shutdownErr = fmt.Errorf("tracer provider shutdown: %w", err)
		}
	})

	return t.shutdownErr
}

// TraceID returns the trace ID of the span in ctx, or "".
func TraceID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		return sc.TraceID().String()
	}

	return ""
}

// SpanID returns the span ID of the span in ctx, or "".
func SpanID(ctx context.Context) string {
	if sc := trace.SpanContextFromContext(ctx); sc.HasSpanID() {
		return sc.SpanID().String()
	}

	return ""
}
