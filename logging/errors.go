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

package logging

import "errors"

var (
	// ErrNilLogger is returned when WithCustomLogger is given nil.
	ErrNilLogger = errors.New("custom logger is nil")

	// ErrNilOutput is returned when WithOutput is given nil.
	ErrNilOutput = errors.New("output writer is nil")

	// ErrInvalidHandler is returned for an unknown handler type.
	ErrInvalidHandler = errors.New("invalid handler type")

	// ErrInvalidLevel is returned by ParseLevel for an unknown level name.
	ErrInvalidLevel = errors.New("invalid log level")

	// ErrCannotChangeLevel is returned by SetLevel on custom loggers.
	ErrCannotChangeLevel = errors.New("cannot change level on custom logger")
)
