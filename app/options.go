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
	"time"

	gerrors "gerkon.dev/gerkon/errors"
	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/metrics"
	"gerkon.dev/gerkon/router/middleware/accesslog"
	"gerkon.dev/gerkon/router/middleware/requestid"
	"gerkon.dev/gerkon/tracing"
)

const (
	// DefaultServiceName is used when WithServiceName is not given.
	DefaultServiceName = "gerkon-app"

	// DefaultServiceVersion is used when WithServiceVersion is not given.
	DefaultServiceVersion = "1.0.0"

	// DefaultEnvironment is used when WithEnvironment is not given.
	DefaultEnvironment = "development"

	// DefaultMetricsPath is where the Prometheus handler is mounted.
	DefaultMetricsPath = "/metrics"
)

// Option configures an App.
type Option func(*config)

type serverConfig struct {
	readHeaderTimeout time.Duration
	readTimeout       time.Duration
	writeTimeout      time.Duration
	idleTimeout       time.Duration
	shutdownTimeout   time.Duration
}

type config struct {
	serviceName    string
	serviceVersion string
	environment    string

	server    serverConfig
	static    string
	formatter gerrors.Formatter

	logger      *logging.Logger
	loggingOpts []logging.Option

	metricsEnabled bool
	metricsOpts    []metrics.Option
	metricsPath    string

	tracingEnabled bool
	tracingOpts    []tracing.Option

	defaultMediators bool
	accessLog        bool
	accessLogOpts    []accesslog.Option
	requestIDOpts    []requestid.Option

	excludePaths    []string
	excludePrefixes []string
}

func defaultConfig() *config {
	return &config{
		serviceName:    DefaultServiceName,
		serviceVersion: DefaultServiceVersion,
		environment:    DefaultEnvironment,
		server: serverConfig{
			readHeaderTimeout: 5 * time.Second,
			readTimeout:       15 * time.Second,
			writeTimeout:      30 * time.Second,
			idleTimeout:       60 * time.Second,
			shutdownTimeout:   30 * time.Second,
		},
		metricsPath:      DefaultMetricsPath,
		defaultMediators: true,
		accessLog:        true,
	}
}

func (c *config) validate() error {
	ve := &ValidationError{}

	if c.serviceName == "" {
		ve.Add(&ConfigError{Field: "serviceName", Message: "must not be empty"})
	}
	if c.serviceVersion == "" {
		ve.Add(&ConfigError{Field: "serviceVersion", Message: "must not be empty"})
	}
	if c.environment != "development" && c.environment != "production" && c.environment != "test" {
		ve.Add(&ConfigError{
			Field:      "environment",
			Value:      c.environment,
			Message:    "unknown environment",
			Constraint: "development, production or test",
		})
	}

	timeouts := []struct {
		field string
		value time.Duration
	}{
		{"server.readHeaderTimeout", c.server.readHeaderTimeout},
		{"server.readTimeout", c.server.readTimeout},
		{"server.writeTimeout", c.server.writeTimeout},
		{"server.idleTimeout", c.server.idleTimeout},
		{"server.shutdownTimeout", c.server.shutdownTimeout},
	}
	for _, t := range timeouts {
		if t.value <= 0 {
			ve.Add(&ConfigError{Field: t.field, Value: t.value, Message: "must be positive"})
		}
	}
	if c.server.readHeaderTimeout > c.server.readTimeout && c.server.readTimeout > 0 {
		ve.Add(&ConfigError{
			Field:      "server.readHeaderTimeout",
			Value:      c.server.readHeaderTimeout,
			Message:    "must not exceed the read timeout",
			Constraint: "readHeaderTimeout <= readTimeout",
		})
	}

	if c.metricsEnabled && (c.metricsPath == "" || c.metricsPath[0] != '/') {
		ve.Add(&ConfigError{Field: "metrics.path", Value: c.metricsPath, Message: "must start with /"})
	}

	return ve.ToError()
}

// WithServiceName sets the service name used by logs, metrics and traces.
func WithServiceName(name string) Option {
	return func(c *config) { c.serviceName = name }
}

// WithServiceVersion sets the service version.
func WithServiceVersion(version string) Option {
	return func(c *config) { c.serviceVersion = version }
}

// WithEnvironment sets the deployment environment: "development",
// "production" or "test".
func WithEnvironment(env string) Option {
	return func(c *config) { c.environment = env }
}

// WithLogging configures the application logger. Without it the App logs
// in console form to stdout.
//
// Example:
//
//	app.WithLogging(logging.WithJSONHandler(), logging.WithLevel(logging.LevelWarn))
func WithLogging(opts ...logging.Option) Option {
	return func(c *config) { c.loggingOpts = append(c.loggingOpts, opts...) }
}

// WithLogger uses an existing logger. It takes precedence over WithLogging.
func WithLogger(logger *logging.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithMetrics enables request metrics. The service name and version are
// passed on unless opts override them.
//
// Example:
//
//	app.WithMetrics(metrics.WithPrometheus())
func WithMetrics(opts ...metrics.Option) Option {
	return func(c *config) {
		c.metricsEnabled = true
		c.metricsOpts = append(c.metricsOpts, opts...)
	}
}

// WithMetricsPath changes where the Prometheus handler is mounted.
func WithMetricsPath(path string) Option {
	return func(c *config) { c.metricsPath = path }
}

// WithTracing enables request tracing.
//
// Example:
//
//	app.WithTracing(tracing.WithOTLP("collector:4318"), tracing.WithSampleRate(0.1))
func WithTracing(opts ...tracing.Option) Option {
	return func(c *config) {
		c.tracingEnabled = true
		c.tracingOpts = append(c.tracingOpts, opts...)
	}
}

// WithStatic sets the static-file fallback directory.
func WithStatic(dir string) Option {
	return func(c *config) { c.static = dir }
}

// WithErrorFormatter sets the formatter for the default 404 and 502 bodies.
func WithErrorFormatter(f gerrors.Formatter) Option {
	return func(c *config) { c.formatter = f }
}

// WithServerTimeouts sets the http.Server timeouts.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(c *config) {
		c.server.readHeaderTimeout = readHeader
		c.server.readTimeout = read
		c.server.writeTimeout = write
		c.server.idleTimeout = idle
	}
}

// WithShutdownTimeout bounds graceful shutdown, including OnShutdown hooks.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.server.shutdownTimeout = d }
}

// WithAccessLog configures the access log mediator.
func WithAccessLog(opts ...accesslog.Option) Option {
	return func(c *config) {
		c.accessLog = true
		c.accessLogOpts = append(c.accessLogOpts, opts...)
	}
}

// WithoutAccessLog disables the access log mediator.
func WithoutAccessLog() Option {
	return func(c *config) { c.accessLog = false }
}

// WithRequestID configures the request id mediator.
func WithRequestID(opts ...requestid.Option) Option {
	return func(c *config) { c.requestIDOpts = append(c.requestIDOpts, opts...) }
}

// WithoutDefaultMediators installs no mediators. Routes, the static
// directory and the metrics endpoint are unaffected.
func WithoutDefaultMediators() Option {
	return func(c *config) { c.defaultMediators = false }
}

// WithObservabilityExclusions skips metrics and tracing for the given paths
// and prefixes. The metrics path is always excluded.
func WithObservabilityExclusions(paths []string, prefixes []string) Option {
	return func(c *config) {
		c.excludePaths = append(c.excludePaths, paths...)
		c.excludePrefixes = append(c.excludePrefixes, prefixes...)
	}
}
