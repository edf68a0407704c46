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

package middleware_test

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/router/middleware"
	"gerkon.dev/gerkon/router/middleware/accesslog"
	"gerkon.dev/gerkon/router/middleware/basicauth"
	"gerkon.dev/gerkon/router/middleware/compression"
	"gerkon.dev/gerkon/router/middleware/cookies"
	"gerkon.dev/gerkon/router/middleware/cors"
	"gerkon.dev/gerkon/router/middleware/requestid"
	"gerkon.dev/gerkon/router/middleware/security"
)

// accessRecords decodes the "access" lines of a JSON log buffer.
func accessRecords(buf *bytes.Buffer) []map[string]any {
	var out []map[string]any
	for line := range strings.SplitSeq(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		Expect(json.Unmarshal([]byte(line), &rec)).To(Succeed())
		if rec["msg"] == "access" {
			out = append(out, rec)
		}
	}

	return out
}

var _ = Describe("Mediator stacks", Label("integration", "middleware"), func() {
	Describe("requestid, accesslog and cookies", func() {
		var (
			r    *router.Router
			logs *bytes.Buffer
		)

		BeforeEach(func() {
			logs = &bytes.Buffer{}
			r = router.MustNew()
			Expect(r.Use(
				requestid.New(),
				accesslog.New(accesslog.WithLogger(middleware.NewCaptureLogger(logs))),
				cookies.New(),
			)).To(Succeed())
			Expect(r.GET("/me", func(c *router.Context) error {
				return c.JSON(http.StatusOK, map[string]string{
					"user":       cookies.Value(c, "user"),
					"request_id": requestid.Get(c),
				})
			})).To(Succeed())
		})

		It("shares the request id between handler, header and access log", func() {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Cookie", "user=ana")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			var body map[string]string
			Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
			Expect(body["user"]).To(Equal("ana"))
			Expect(body["request_id"]).To(Equal(w.Header().Get("X-Request-ID")))

			records := accessRecords(logs)
			Expect(records).To(HaveLen(1))
			Expect(records[0]["request_id"]).To(Equal(body["request_id"]))
			Expect(records[0]["route"]).To(Equal("/me"))
		})

		It("logs unmatched requests as not found", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))

			Expect(w.Code).To(Equal(http.StatusNotFound))
			records := accessRecords(logs)
			Expect(records).To(HaveLen(1))
			Expect(records[0]["level"]).To(Equal("WARN"))
			Expect(records[0]["status"]).To(BeNumerically("==", http.StatusNotFound))
		})
	})

	Describe("cors, security and basicauth", func() {
		var r *router.Router

		BeforeEach(func() {
			r = router.MustNew()
			Expect(r.Use(
				security.New(),
				cors.New(cors.WithAllowedOrigins("https://app.example.com")),
				basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"})),
			)).To(Succeed())
			Expect(r.Route([]string{http.MethodGet, http.MethodOptions}, "/admin", router.HandlerFunc(func(c *router.Context) error {
				return c.Send("hello " + basicauth.GetUsername(c))
			}))).To(Succeed())
		})

		It("answers preflight before authentication", func() {
			req := httptest.NewRequest(http.MethodOptions, "/admin", nil)
			req.Header.Set("Origin", "https://app.example.com")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNoContent))
			Expect(w.Header().Get("Access-Control-Allow-Origin")).To(Equal("https://app.example.com"))
			Expect(w.Header().Get("X-Frame-Options")).To(Equal("DENY"))
		})

		It("keeps security headers on rejected requests", func() {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Header().Get("WWW-Authenticate")).NotTo(BeEmpty())
			Expect(w.Header().Get("X-Content-Type-Options")).To(Equal("nosniff"))
		})

		It("lets authenticated requests through", func() {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			req.SetBasicAuth("admin", "secret")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("hello admin"))
		})
	})

	Describe("compression inside accesslog", func() {
		It("logs the compressed size after the stream is finished", func() {
			logs := &bytes.Buffer{}
			r := router.MustNew()
			Expect(r.Use(
				accesslog.New(accesslog.WithLogger(middleware.NewCaptureLogger(logs))),
				compression.New(),
			)).To(Succeed())
			payload := strings.Repeat("abcdefgh", 512)
			Expect(r.GET("/data", func(c *router.Context) error {
				return c.Send(payload)
			})).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/data", nil)
			req.Header.Set("Accept-Encoding", "gzip")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			sent := w.Body.Len()

			gr, err := gzip.NewReader(w.Body)
			Expect(err).NotTo(HaveOccurred())
			plain, err := io.ReadAll(gr)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(plain)).To(Equal(payload))

			records := accessRecords(logs)
			Expect(records).To(HaveLen(1))
			Expect(records[0]["bytes_sent"]).To(BeNumerically("==", sent))
		})
	})
})
