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

package metrics

import (
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Provider selects the exporter.
type Provider string

const (
	PrometheusProvider Provider = "prometheus"
	StdoutProvider     Provider = "stdout"
	OTLPProvider       Provider = "otlp"
)

// Option configures a Recorder.
type Option func(*Recorder)

// WithProvider selects the exporter. Default: PrometheusProvider
func WithProvider(p Provider) Option {
	return func(r *Recorder) { r.provider = p }
}

// WithPrometheus uses the Prometheus exporter.
func WithPrometheus() Option {
	return WithProvider(PrometheusProvider)
}

// WithStdout uses the stdout exporter.
func WithStdout() Option {
	return WithProvider(StdoutProvider)
}

// WithOTLP pushes to the collector at endpoint, for example
// "http://localhost:4318". A plain http scheme disables TLS.
func WithOTLP(endpoint string) Option {
	return func(r *Recorder) {
		r.provider = OTLPProvider
		r.otlpEndpoint = endpoint
	}
}

// WithExportInterval sets the push interval of the stdout and OTLP
// exporters. Default: 30s
func WithExportInterval(d time.Duration) Option {
	return func(r *Recorder) {
		if d > 0 {
			r.exportInterval = d
		}
	}
}

// WithServiceName sets the service.name attribute.
func WithServiceName(name string) Option {
	return func(r *Recorder) { r.serviceName = name }
}

// WithServiceVersion sets the service.version attribute.
func WithServiceVersion(v string) Option {
	return func(r *Recorder) { r.serviceVersion = v }
}

// WithMeterProvider records into provider instead of building one. The
// caller owns its shutdown.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(r *Recorder) {
		r.meterProvider = provider
		r.customMeterProvider = true
	}
}

// WithGlobalMeterProvider registers the built provider with
// otel.SetMeterProvider.
func WithGlobalMeterProvider() Option {
	return func(r *Recorder) { r.registerGlobal = true }
}

// WithLogger sets the logger for exporter lifecycle events.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Recorder) { r.logger = logger }
}

// WithMaxCustomMetrics bounds the number of custom instruments.
// Default: 1000
func WithMaxCustomMetrics(n int) Option {
	return func(r *Recorder) {
		if n > 0 {
			r.maxCustomMetrics = n
		}
	}
}
