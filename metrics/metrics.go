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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "gerkon.dev/gerkon/metrics"

// Recorder owns a meter provider and the HTTP server instruments. It is
// safe for concurrent use.
type Recorder struct {
	provider       Provider
	otlpEndpoint   string
	exportInterval time.Duration
	serviceName    string
	serviceVersion string
	registerGlobal bool
	logger         *slog.Logger

	meterProvider       metric.MeterProvider
	sdkProvider         *sdkmetric.MeterProvider
	customMeterProvider bool
	meter               metric.Meter

	prometheusRegistry *promclient.Registry
	prometheusHandler  http.Handler

	serviceAttrs []attribute.KeyValue

	requestDuration metric.Float64Histogram
	requestCount    metric.Int64Counter
	activeRequests  metric.Int64UpDownCounter
	responseSize    metric.Int64Histogram
	errorCount      metric.Int64Counter

	customMu         sync.Mutex
	customCounters   map[string]metric.Int64Counter
	customHistograms map[string]metric.Float64Histogram
	maxCustomMetrics int

	shutdownOnce sync.Once
}

// New builds a Recorder and its exporter.
//
// Example:
//
//	rec, err := metrics.New(metrics.WithServiceName("shop"))
//	if err != nil {
//	    return err
//	}
//	defer rec.Shutdown(context.Background())
func New(opts ...Option) (*Recorder, error) {
	r := &Recorder{
		provider:         PrometheusProvider,
		exportInterval:   30 * time.Second,
		serviceName:      "gerkon",
		logger:           slog.New(slog.DiscardHandler),
		customCounters:   make(map[string]metric.Int64Counter),
		customHistograms: make(map[string]metric.Float64Histogram),
		maxCustomMetrics: 1000,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.initializeProvider(); err != nil {
		return nil, err
	}

	r.serviceAttrs = []attribute.KeyValue{
		attribute.String("service.name", r.serviceName),
	}
	if r.serviceVersion != "" {
		r.serviceAttrs = append(r.serviceAttrs, attribute.String("service.version", r.serviceVersion))
	}

	r.meter = r.meterProvider.Meter(meterName)
	if err := r.initializeInstruments(); err != nil {
		return nil, err
	}

	return r, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Recorder {
	r, err := New(opts...)
	if err != nil {
		panic("metrics initialization failed: " + err.Error())
	}

	return r
}

// Handler returns the Prometheus scrape handler.
func (r *Recorder) Handler() (http.Handler, error) {
	if r.prometheusHandler == nil {
		return nil, ErrNoHandler
	}

	return r.prometheusHandler, nil
}

// Provider returns the configured exporter.
func (r *Recorder) Provider() Provider {
	return r.provider
}

// MeterProvider returns the provider used for recording.
func (r *Recorder) MeterProvider() metric.MeterProvider {
	return r.meterProvider
}

// ForceFlush pushes pending data for push exporters.
func (r *Recorder) ForceFlush(ctx context.Context) error {
	if r.sdkProvider == nil {
		return nil
	}

	return r.sdkProvider.ForceFlush(ctx)
}

// Shutdown flushes and stops a provider built by New. Custom providers
// are left alone. It is safe to call more than once.
func (r *Recorder) Shutdown(ctx context.Context) error {
	var err error
	r.shutdownOnce.Do(func() {
		if r.sdkProvider == nil {
			return
		}
		if shutdownErr := r.sdkProvider.Shutdown(ctx); shutdownErr != nil && !errors.Is(shutdownErr, sdkmetric.ErrReaderShutdown) {
			err = fmt.Errorf("metrics shutdown: %w", shutdownErr)
		}
	})

	return err
}

func (r *Recorder) initializeInstruments() error {
	var err error

	if r.requestDuration, err = r.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	); err != nil {
		return fmt.Errorf("create request duration histogram: %w", err)
	}
	if r.requestCount, err = r.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return fmt.Errorf("create request counter: %w", err)
	}
	if r.activeRequests, err = r.meter.Int64UpDownCounter(
		"http_requests_active",
		metric.WithDescription("Number of in-flight HTTP requests"),
	); err != nil {
		return fmt.Errorf("create active requests counter: %w", err)
	}
	if r.responseSize, err = r.meter.Int64Histogram(
		"http_response_size_bytes",
		metric.WithDescription("Size of HTTP response bodies in bytes"),
		metric.WithUnit("By"),
	); err != nil {
		return fmt.Errorf("create response size histogram: %w", err)
	}
	if r.errorCount, err = r.meter.Int64Counter(
		"http_errors_total",
		metric.WithDescription("Total number of HTTP responses with status >= 400"),
	); err != nil {
		return fmt.Errorf("create error counter: %w", err)
	}

	return nil
}
