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

// Package requestid provides a mediator that assigns every request an id
// for log correlation.
//
// The id is taken from the X-Request-ID header when the client sends one
// and client ids are allowed, otherwise a UUID v7 is generated. It is echoed
// in the response header and attached to the request context, where the
// accesslog mediator and handlers can read it:
//
//	app.Use(requestid.New())
//
//	app.GET("/orders/<id>", func(c *router.Context) error {
//	    c.Logger().Info("loading order", "request_id", requestid.Get(c))
//	    return c.Send("ok")
//	})
package requestid
