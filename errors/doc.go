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

// Package errors renders errors as HTTP response bodies.
//
// The router uses a Formatter for the bodies it writes itself: the default
// 404 when nothing answered a request, and the default 502 when a mediator
// or controller failed. Three formatters are provided:
//   - Text: the status message as text/plain (default)
//   - Simple: {"error": "...", "code": "..."} as application/json
//   - RFC9457: problem details as application/problem+json
//
// Errors may implement ErrorType, ErrorCode or ErrorDetails to control the
// status and enrich the body. WithStatus attaches a status to any error.
//
// Example:
//
//	f := errors.NewRFC9457("https://example.com/problems")
//	resp := f.Format(req, errors.WithStatus(nil, http.StatusNotFound))
//	w.Header().Set("Content-Type", resp.ContentType)
//	w.WriteHeader(resp.Status)
//	json.NewEncoder(w).Encode(resp.Body)
package errors
