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

// Package logging builds the structured logger used by gerkon applications.
//
// It wraps log/slog with four output modes:
//
//   - JSONHandler: one JSON object per line, for log aggregation (default)
//   - TextHandler: key=value lines
//   - ConsoleHandler: compact colored lines for development; colors are
//     only emitted when the output is a terminal
//   - disabled: everything is discarded
//
// Basic usage:
//
//	logger := logging.MustNew(
//	    logging.WithConsoleHandler(),
//	    logging.WithServiceName("shop"),
//	)
//	r := router.MustNew(router.WithLogger(logger.Logger()))
//
// Sensitive attributes (password, token, secret, api_key, authorization)
// are redacted by every built-in handler.
//
// For trace correlation inside request handlers use [NewContextLogger],
// which adds trace_id and span_id from the active OpenTelemetry span.
package logging
