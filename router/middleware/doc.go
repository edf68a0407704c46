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

/*
Package middleware holds the types shared by the gerkon mediators. Each
mediator lives in its own sub-package:

  - accesslog: one log line per request, written after the response
  - basicauth: HTTP Basic Authentication
  - compression: gzip and Brotli response compression
  - cookies: request cookie parsing
  - cors: Cross-Origin Resource Sharing
  - requestid: request id generation and propagation
  - security: security response headers

Mediators are registered with Router.Use and run in registration order
before route matching:

	r := router.MustNew()
	_ = r.Use(
	    requestid.New(),
	    accesslog.New(accesslog.WithLogger(logger)),
	    cookies.New(),
	)
*/
package middleware
