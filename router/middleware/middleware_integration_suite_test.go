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

//go:build integration

// Integration tests for mediator stacks. They run real requests through
// several mediators at once and check ordering and interaction:
//
//  1. Basic stack: requestid + accesslog + cookies
//  2. Security stack: cors + security + basicauth
//  3. Compression with accesslog unwinding
//
// Run with:
//
//	go test -tags integration ./router/middleware/...
package middleware_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

//nolint:paralleltest // Integration test suite
func TestMiddlewareIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Middleware Integration Suite")
}
