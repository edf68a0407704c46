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

import (
	"errors"
	"net/http"
)

// Formatter converts an error into the parts of an HTTP response.
type Formatter interface {
	Format(req *http.Request, err error) Response
}

// Response is a formatted error response.
type Response struct {
	// Status is the HTTP status code.
	Status int

	// ContentType is the Content-Type header value.
	ContentType string

	// Body is written as-is when it is a string or []byte, and JSON
	// encoded otherwise.
	Body any

	// Headers are additional response headers.
	Headers http.Header
}

// ErrorType is implemented by errors that choose their own status code.
type ErrorType interface {
	error
	HTTPStatus() int
}

// ErrorDetails is implemented by errors that carry structured details.
type ErrorDetails interface {
	error
	Details() any
}

// ErrorCode is implemented by errors that carry a machine-readable code.
type ErrorCode interface {
	error
	Code() string
}

// WithStatus attaches an HTTP status to err. A nil err is allowed; the
// status text is then used as message.
//
// Example:
//
//	return errors.WithStatus(nil, http.StatusNotFound)
func WithStatus(err error, status int) error {
	return &statusError{err: err, status: status}
}

type statusError struct {
	err    error
	status int
}

func (e *statusError) Error() string {
	if e.err == nil {
		return http.StatusText(e.status)
	}

	return e.err.Error()
}

func (e *statusError) Unwrap() error {
	return e.err
}

func (e *statusError) HTTPStatus() int {
	return e.status
}

// statusOf resolves the status for err: resolver first, then ErrorType,
// then 500.
func statusOf(err error, resolver func(error) int) int {
	if resolver != nil {
		return resolver(err)
	}

	var typed ErrorType
	if errors.As(err, &typed) {
		return typed.HTTPStatus()
	}

	return http.StatusInternalServerError
}
