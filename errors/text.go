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

package errors

import "net/http"

// Text writes the status message as plain text, e.g. "Not Found".
// The error message itself is not exposed unless Verbose is set.
type Text struct {
	// Verbose writes err.Error() instead of the status text.
	Verbose bool

	// StatusResolver overrides status resolution.
	StatusResolver func(err error) int
}

// NewText creates a Text formatter.
func NewText() *Text {
	return &Text{}
}

// Format implements Formatter.
func (f *Text) Format(_ *http.Request, err error) Response {
	status := statusOf(err, f.StatusResolver)

	msg := http.StatusText(status)
	if f.Verbose || msg == "" {
		msg = err.Error()
	}

	return Response{
		Status:      status,
		ContentType: "text/plain; charset=utf-8",
		Body:        msg,
	}
}
