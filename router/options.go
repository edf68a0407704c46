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
	"log/slog"
	"time"

	gerrors "gerkon.dev/gerkon/errors"
)

// Option defines functional options for router configuration.
type Option func(*Router)

// serverTimeouts holds the http.Server timeouts used by Serve.
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultServerTimeouts() serverTimeouts {
	return serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// WithLogger sets the logger used for dispatcher errors and as the
// default request logger.
//
// Example:
//
//	r := router.MustNew(router.WithLogger(slog.Default()))
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		r.logger = logger
	}
}

// WithErrorFormatter sets the formatter that renders the default 404 and
// 502 bodies. Default: plain text status message.
//
// Example:
//
//	r := router.MustNew(router.WithErrorFormatter(errors.NewRFC9457("")))
func WithErrorFormatter(f gerrors.Formatter) Option {
	return func(r *Router) {
		r.formatter = f
	}
}

// WithObservabilityRecorder installs request lifecycle hooks.
func WithObservabilityRecorder(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.observability = recorder
	}
}

// WithStatic sets the directory used as static-file fallback.
func WithStatic(dir string) Option {
	return func(r *Router) {
		r.settings[SettingStatic] = dir
	}
}

// WithServerTimeouts configures the http.Server timeouts used by Serve.
// All values must be positive.
//
// Example:
//
//	router.WithServerTimeouts(2*time.Second, 10*time.Second, 10*time.Second, 30*time.Second)
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.timeouts = serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}
