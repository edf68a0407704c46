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
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var metricNameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_.-]*$`)

const maxMetricNameLength = 255

// reservedPrefixes belong to the built-in instruments and Prometheus.
var reservedPrefixes = []string{"__", "http_"}

// RequestMetrics carries per-request state between Start and Finish.
type RequestMetrics struct {
	StartTime  time.Time
	Method     string
	Attributes []attribute.KeyValue
}

// Start begins timing a request and counts it as active.
func (r *Recorder) Start(ctx context.Context, method string) *RequestMetrics {
	m := &RequestMetrics{
		StartTime:  time.Now(),
		Method:     method,
		Attributes: append(make([]attribute.KeyValue, 0, len(r.serviceAttrs)+4), r.serviceAttrs...),
	}
	r.activeRequests.Add(ctx, 1, metric.WithAttributes(m.Attributes...))

	return m
}

// Finish records a completed request. route is the matched rule or a
// router sentinel. A nil m is ignored.
func (r *Recorder) Finish(ctx context.Context, m *RequestMetrics, statusCode int, responseSize int64, route string) {
	if m == nil {
		return
	}

	r.activeRequests.Add(ctx, -1, metric.WithAttributes(m.Attributes...))

	attrs := metric.WithAttributes(append(m.Attributes,
		attribute.String("http.request.method", m.Method),
		attribute.Int("http.response.status_code", statusCode),
		attribute.String("http.status_class", statusClass(statusCode)),
		attribute.String("http.route", route),
	)...)

	r.requestDuration.Record(ctx, time.Since(m.StartTime).Seconds(), attrs)
	r.requestCount.Add(ctx, 1, attrs)
	if statusCode >= 400 {
		r.errorCount.Add(ctx, 1, attrs)
	}
	if responseSize > 0 {
		r.responseSize.Record(ctx, responseSize, attrs)
	}
}

// AddAttributes adds attributes recorded with the request.
func (m *RequestMetrics) AddAttributes(attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	m.Attributes = append(m.Attributes, attrs...)
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}

	return strconv.Itoa(code/100) + "xx"
}

// IncrementCounter adds one to a custom counter, creating it on first use.
//
// Example:
//
//	_ = rec.IncrementCounter(ctx, "orders_placed_total", attribute.String("plan", "pro"))
func (r *Recorder) IncrementCounter(ctx context.Context, name string, attrs ...attribute.KeyValue) error {
	r.customMu.Lock()
	counter, ok := r.customCounters[name]
	if !ok {
		if err := r.admitCustom(name); err != nil {
			r.customMu.Unlock()
			return err
		}
		var err error
		counter, err = r.meter.Int64Counter(name)
		if err != nil {
			r.customMu.Unlock()
			return fmt.Errorf("create counter %q: %w", name, err)
		}
		r.customCounters[name] = counter
	}
	r.customMu.Unlock()

	counter.Add(ctx, 1, metric.WithAttributes(attrs...))

	return nil
}

// RecordHistogram records value in a custom histogram, creating it on
// first use.
func (r *Recorder) RecordHistogram(ctx context.Context, name string, value float64, attrs ...attribute.KeyValue) error {
	r.customMu.Lock()
	histogram, ok := r.customHistograms[name]
	if !ok {
		if err := r.admitCustom(name); err != nil {
			r.customMu.Unlock()
			return err
		}
		var err error
		histogram, err = r.meter.Float64Histogram(name)
		if err != nil {
			r.customMu.Unlock()
			return fmt.Errorf("create histogram %q: %w", name, err)
		}
		r.customHistograms[name] = histogram
	}
	r.customMu.Unlock()

	histogram.Record(ctx, value, metric.WithAttributes(attrs...))

	return nil
}

// admitCustom validates a new custom metric name. Callers hold customMu.
func (r *Recorder) admitCustom(name string) error {
	if err := validateMetricName(name); err != nil {
		return err
	}
	if n := len(r.customCounters) + len(r.customHistograms); n >= r.maxCustomMetrics {
		return fmt.Errorf("custom metrics limit reached: cannot create %q (limit %d)", name, r.maxCustomMetrics)
	}

	return nil
}

func validateMetricName(name string) error {
	if name == "" || len(name) > maxMetricNameLength || !metricNameRegex.MatchString(name) {
		return fmt.Errorf("%w: %q", ErrInvalidMetricName, name)
	}
	for _, prefix := range reservedPrefixes {
		if strings.HasPrefix(name, prefix) {
			return fmt.Errorf("%w: %q uses reserved prefix %q", ErrInvalidMetricName, name, prefix)
		}
	}

	return nil
}
