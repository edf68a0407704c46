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

import "errors"

var (
	// ErrNilMeterProvider is returned when WithMeterProvider is given nil.
	ErrNilMeterProvider = errors.New("custom meter provider is nil")

	// ErrUnsupportedProvider is returned for an unknown Provider.
	ErrUnsupportedProvider = errors.New("unsupported metrics provider")

	// ErrNoHandler is returned by Handler for exporters that do not serve
	// a scrape endpoint.
	ErrNoHandler = errors.New("metrics handler is only available with the prometheus provider")

	// ErrInvalidMetricName is returned for custom metric names that are
	// malformed or use a reserved prefix.
	ErrInvalidMetricName = errors.New("invalid metric name")
)
