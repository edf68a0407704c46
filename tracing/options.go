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
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Provider names a span exporter.
type Provider string

// Available providers.
const (
	NoopProvider   Provider = "noop"
	StdoutProvider Provider = "stdout"
	OTLPProvider   Provider = "otlp"
)

// Option configures a Tracer.
type Option func(*Tracer)

// WithProvider selects the exporter by name.
func WithProvider(p Provider) Option {
	return func(t *Tracer) {
		t.provider = p
	}
}

// WithNoop selects the no-op exporter.
func WithNoop() Option {
	return WithProvider(NoopProvider)
}

// WithStdout selects the stdout exporter.
func WithStdout() Option {
	return WithProvider(StdoutProvider)
}

// WithOTLP selects the OTLP/HTTP exporter. An empty endpoint falls back to
// the OTEL_EXPORTER_OTLP_* environment. A scheme of http disables TLS.
//
// Example:
//
//	tracing.WithOTLP("http://collector:4318")
func WithOTLP(endpoint string) Option {
	return func(t *Tracer) {
		t.provider = OTLPProvider
		t.otlpEndpoint = endpoint
	}
}

// WithServiceName sets the service.name resource attribute.
func WithServiceName(name string) Option {
	return func(t *Tracer) {
		t.serviceName = name
	}
}

// WithServiceVersion sets the service.version resource attribute.
func WithServiceVersion(version string) Option {
	return func(t *Tracer) {
		t.serviceVersion = version
	}
}

// WithSampleRate sets the fraction of requests that are traced. Values are
// clamped to [0, 1].
func WithSampleRate(rate float64) Option {
	return func(t *Tracer) {
		t.sampleRate = min(max(rate, 0), 1)
	}
}

// WithExcludePaths skips tracing for exact request paths.
func WithExcludePaths(paths ...string) Option {
	return func(t *Tracer) {
		for _, p := range paths {
			t.excludePaths[p] = true
		}
	}
}

// WithExcludePrefixes skips tracing for paths with any of the prefixes.
func WithExcludePrefixes(prefixes ...string) Option {
	return func(t *Tracer) {
		t.excludePrefixes = append(t.excludePrefixes, prefixes...)
	}
}

// sensitiveHeaders are never recorded.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,
}

// WithHeaders records the named request headers as
// http.request.header.<name> attributes. Credentials headers are ignored.
func WithHeaders(headers ...string) Option {
	return func(t *Tracer) {
		for _, h := range headers {
			if !sensitiveHeaders[strings.ToLower(h)] {
				t.recordHeaders = append(t.recordHeaders, h)
			}
		}
	}
}

// WithTracerProvider uses an existing provider. Its lifecycle stays with
// the caller and the exporter options are ignored.
func WithTracerProvider(provider *sdktrace.TracerProvider) Option {
	return func(t *Tracer) {
		t.tracerProvider = provider
		t.customProvider = true
	}
}

// WithPropagator replaces the W3C Trace Context propagator.
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *Tracer) {
		t.propagator = p
	}
}

// WithGlobalTracerProvider registers the provider with otel.SetTracerProvider.
func WithGlobalTracerProvider() Option {
	return func(t *Tracer) {
		t.registerGlobal = true
	}
}

// WithBatchTimeout sets how long spans are batched before export.
func WithBatchTimeout(d time.Duration) Option {
	return func(t *Tracer) {
		t.batchTimeout = d
	}
}

// WithLogger sets the logger for internal events.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tracer) {
		if logger != nil {
			t.logger = logger
		}
	}
}
