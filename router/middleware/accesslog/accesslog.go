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

// Package accesslog provides a mediator that writes one structured log
// record per request once the response has been finalized.
//
// It is a continuation step: it records the start time, resumes the chain
// and waits for the channel returned by next before logging, so the record
// carries the final status, size and route.
//
//	app.Use(requestid.New())
//	app.Use(accesslog.New(accesslog.WithExcludePaths("/health")))
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"time"

	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware"
)

// New returns the access log mediator.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	app.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithSlowThreshold(500*time.Millisecond),
//	))
func New(opts ...Option) router.AsyncHandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) {
		if cfg.excluded(c.Request.URL.Path) {
			next(nil)
			return
		}

		start := time.Now()
		<-next(nil)
		duration := time.Since(start)

		status := c.StatusCode()
		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold

		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				return
			}
			if cfg.sampleRate < 1.0 {
				id, _ := c.Request.Context().Value(middleware.RequestIDKey).(string)
				if !sampleByHash(id, cfg.sampleRate) {
					return
				}
			}
		}

		logger := cfg.logger
		if logger == nil {
			logger = c.Logger()
		}

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", duration.Milliseconds(),
			"bytes_sent", c.ResponseSize(),
			"user_agent", c.Request.UserAgent(),
			"remote_addr", c.Request.RemoteAddr,
			"host", c.Request.Host,
			"proto", c.Request.Proto,
		}
		if route := c.RoutePattern(); route != "" {
			fields = append(fields, "route", route)
		}
		if id, ok := c.Request.Context().Value(middleware.RequestIDKey).(string); ok {
			fields = append(fields, "request_id", id)
		}
		if isSlow {
			fields = append(fields, "slow", true)
		}

		switch {
		case status >= 500:
			logger.Error("access", fields...)
		case isError, isSlow:
			logger.Warn("access", fields...)
		default:
			logger.Info("access", fields...)
		}
	}
}

func (cfg *config) excluded(path string) bool {
	if cfg.excludePaths[path] {
		return true
	}
	for _, prefix := range cfg.excludePrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// sampleByHash makes the same decision for the same request id on every
// replica. Requests without an id are always logged.
func sampleByHash(id string, rate float64) bool {
	if id == "" {
		return true
	}

	h := sha256.Sum256([]byte(id))
	hashValue := binary.BigEndian.Uint64(h[:8])
	threshold := uint64(rate * float64(^uint64(0)))

	return hashValue <= threshold
}
