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

// Package tracing provides OpenTelemetry request tracing for gerkon
// servers.
//
// A Tracer owns a tracer provider built from one of three exporters:
//
//   - NoopProvider (default): spans are created but never exported
//   - StdoutProvider: spans are printed as JSON, for development
//   - OTLPProvider: spans are pushed to an OTLP/HTTP collector
//
// W3C Trace Context headers are extracted from incoming requests, so a
// request span joins the caller's trace.
//
//	tr, err := tracing.New(
//	    tracing.WithServiceName("shop"),
//	    tracing.WithStdout(),
//	    tracing.WithSampleRate(0.25),
//	)
//	if err != nil {
//	    return err
//	}
//	defer tr.Shutdown(context.Background())
//
// Request spans are started with StartRequestSpan and completed with
// FinishRequestSpan once the matched rule is known. The span name
// becomes "METHOD rule", or "METHOD _not_found" for unmatched requests.
//
// The package never sets the global tracer provider unless
// WithGlobalTracerProvider is given.
package tracing
