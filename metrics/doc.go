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

// Package metrics records HTTP server metrics with OpenTelemetry.
//
// Three exporters are built in:
//
//   - PrometheusProvider (default): a private Prometheus registry served by
//     [Recorder.Handler], mounted by the app at /metrics
//   - StdoutProvider: periodic JSON dumps, for local debugging
//   - OTLPProvider: periodic OTLP/HTTP push to a collector
//
// A Recorder is driven per request by the app's observability recorder:
//
//	m := recorder.Start(ctx)
//	// ... serve the request ...
//	recorder.Finish(ctx, m, status, size, route)
//
// Instruments:
//
//	http_request_duration_seconds  histogram  method, status code, route
//	http_requests_total            counter    method, status code, route
//	http_requests_active           up-down    in-flight requests
//	http_response_size_bytes       histogram  body bytes sent
//	http_errors_total              counter    responses with status >= 400
//
// Routes are recorded by rule ("/users/<id>") or by one of the router
// sentinels, never by raw path, so cardinality stays bounded.
package metrics
