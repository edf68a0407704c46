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

package app_test

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"gerkon.dev/gerkon/app"
	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/metrics"
	"gerkon.dev/gerkon/router"
)

func fetch(url string) (int, string, http.Header) {
	resp, err := http.Get(url) //nolint:noctx // test helper
	Expect(err).NotTo(HaveOccurred())
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	Expect(err).NotTo(HaveOccurred())

	return resp.StatusCode, string(body), resp.Header
}

var _ = Describe("App Integration", func() {
	var (
		a       *app.App
		buf     *logging.Buffer
		baseURL string
	)

	BeforeEach(func() {
		var logger *logging.Logger
		logger, buf = logging.NewTestLogger()

		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, "robots.txt"), []byte("User-agent: *"), 0o600)).To(Succeed())

		a = app.MustNew(
			app.WithServiceName("integration"),
			app.WithEnvironment("test"),
			app.WithLogger(logger),
			app.WithStatic(dir),
			app.WithMetrics(metrics.WithPrometheus()),
			app.WithShutdownTimeout(2*time.Second),
		)
		Expect(a.ListenAddr("127.0.0.1:0")).To(Succeed())
		baseURL = "http://" + a.Addr()

		DeferCleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			Expect(a.Shutdown(ctx)).To(Succeed())
		})
	})

	Describe("Dispatch", func() {
		It("serves routes, static files and 404s over HTTP", func() {
			Expect(a.GET("/hello/<name>", func(c *router.Context) error {
				return c.Send("hello " + c.Param("name"))
			})).To(Succeed())

			status, body, header := fetch(baseURL + "/hello/world")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("hello world"))
			Expect(header.Get("X-Request-ID")).NotTo(BeEmpty())

			status, body, _ = fetch(baseURL + "/robots.txt")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("User-agent: *"))

			status, _, _ = fetch(baseURL + "/missing")
			Expect(status).To(Equal(http.StatusNotFound))
		})

		It("keeps serving after a controller panics", func() {
			Expect(a.GET("/panic", func(c *router.Context) error {
				panic("kaboom")
			})).To(Succeed())
			Expect(a.GET("/ok", func(c *router.Context) error {
				return c.Send("ok")
			})).To(Succeed())

			status, _, _ := fetch(baseURL + "/panic")
			Expect(status).To(Equal(http.StatusBadGateway))

			status, body, _ := fetch(baseURL + "/ok")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("ok"))
		})

		It("lets a continuation mediator act before and after the controller", func() {
			Expect(a.Use(router.AsyncHandlerFunc(func(c *router.Context, next router.Next) {
				go func() {
					time.Sleep(10 * time.Millisecond)
					c.Set("delayed", "yes")
					<-next(nil)
					c.Logger().Info("after response")
				}()
			}))).To(Succeed())
			Expect(a.GET("/delayed", func(c *router.Context) error {
				v, _ := c.Get("delayed")
				return c.Send(v.(string))
			})).To(Succeed())

			status, body, _ := fetch(baseURL + "/delayed")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("yes"))
			Eventually(buf.String).Should(ContainSubstring("after response"))
		})
	})

	Describe("Observability", func() {
		It("exposes request metrics and access logs", func() {
			Expect(a.GET("/items/<id>", func(c *router.Context) error {
				return c.Send("item")
			})).To(Succeed())

			fetch(baseURL + "/items/1")
			fetch(baseURL + "/items/2")

			status, body, _ := fetch(baseURL + app.DefaultMetricsPath)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`http_route="/items/<id>"`))

			Eventually(func() int {
				return strings.Count(buf.String(), `"msg":"access"`)
			}).Should(BeNumerically(">=", 2))
		})
	})

	Describe("Lifecycle", func() {
		It("restarts after Reset and Stop", func() {
			Expect(a.GET("/v1", func(c *router.Context) error { return c.Send("v1") })).To(Succeed())
			Expect(a.Stop()).To(Succeed())

			a.Reset()
			Expect(a.GET("/v2", func(c *router.Context) error { return c.Send("v2") })).To(Succeed())
			Expect(a.ListenAddr("127.0.0.1:0")).To(Succeed())
			url := "http://" + a.Addr()

			status, _, _ := fetch(url + "/v1")
			Expect(status).To(Equal(http.StatusNotFound))
			status, body, _ := fetch(url + "/v2")
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(Equal("v2"))
		})
	})
})
