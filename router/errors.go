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
	"errors"
	"fmt"
)

var (
	// ErrInvalidMethod indicates that a method is not one of the recognized HTTP methods.
	ErrInvalidMethod = errors.New("invalid request method")

	// ErrInvalidRule indicates that a route rule is empty.
	ErrInvalidRule = errors.New("invalid route rule")

	// ErrInvalidHandler indicates that no handler, or a nil handler, was supplied.
	ErrInvalidHandler = errors.New("invalid route handler")

	// ErrDuplicateRoute indicates that the (method, rule) pair is already registered.
	ErrDuplicateRoute = errors.New("route already exists")

	// ErrResponseEnded indicates that the response was already finalized.
	ErrResponseEnded = errors.New("response already ended")

	// ErrInvalidStatusCode indicates that a status code is outside 100-999.
	ErrInvalidStatusCode = errors.New("invalid status code")

	// ErrInvalidRedirectURL indicates that a redirect target is empty.
	ErrInvalidRedirectURL = errors.New("invalid redirect url")

	// ErrInvalidStaticPath indicates that the static base directory is empty.
	ErrInvalidStaticPath = errors.New("invalid static path")

	// ErrIsDirectory indicates that a file operation was given a directory.
	ErrIsDirectory = errors.New("path is a directory")

	// ErrServerTimeoutInvalid indicates that the server timeout value must be positive.
	ErrServerTimeoutInvalid = errors.New("server timeout must be positive")
)

// RegistrationError describes a rejected route registration.
type RegistrationError struct {
	Method string
	Rule   string
	Err    error
}

// Error implements the error interface.
func (e *RegistrationError) Error() string {
	if e.Method == "" {
		return fmt.Sprintf("route %q: %v", e.Rule, e.Err)
	}

	return fmt.Sprintf("route %s %q: %v", e.Method, e.Rule, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// PanicError is returned by the chain runner when a handler panics.
type PanicError struct {
	Value any
	Stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap returns the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}

	return nil
}
