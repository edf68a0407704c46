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

package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"gerkon.dev/gerkon/app"
	"gerkon.dev/gerkon/logging"
	"gerkon.dev/gerkon/metrics"
	"gerkon.dev/gerkon/router"
	"gerkon.dev/gerkon/tracing"
)

type loadFunc func(cmd *cobra.Command) (*Settings, error)

func serveCmd(load loadFunc) *cobra.Command {
	var (
		host      string
		port      int
		staticDir string
		logLevel  string
		logFormat string
		withStats bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the static directory and configured redirects",
		Long: `Start the HTTP server and block until SIGINT or SIGTERM.

Examples:
  gerkon serve --static ./public
  gerkon serve --port 9000 --log-format json
  GERKON_METRICS_ENABLED=true gerkon serve -c gerkon.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("host") {
				s.Server.Host = host
			}
			if flags.Changed("port") {
				s.Server.Port = port
			}
			if flags.Changed("static") {
				s.Static.Dir = staticDir
			}
			if flags.Changed("log-level") {
				s.Log.Level = logLevel
			}
			if flags.Changed("log-format") {
				s.Log.Format = logFormat
			}
			if flags.Changed("metrics") {
				s.Metrics.Enabled = withStats
			}
			if err = s.Validate(); err != nil {
				return err
			}

			a, err := buildApp(s, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.Start(ctx, net.JoinHostPort(s.Server.Host, strconv.Itoa(s.Server.Port)))
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "host to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (default from settings: 8080)")
	cmd.Flags().StringVarP(&staticDir, "static", "s", "", "static directory served for unmatched requests")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	cmd.Flags().StringVar(&logFormat, "log-format", "", "console, json, text or off")
	cmd.Flags().BoolVar(&withStats, "metrics", false, "expose Prometheus metrics")

	return cmd
}

// buildApp creates the application described by s. Logs go to logOut.
func buildApp(s *Settings, logOut io.Writer) (*app.App, error) {
	opts, err := appOptions(s, logOut)
	if err != nil {
		return nil, err
	}

	a, err := app.New(opts...)
	if err != nil {
		return nil, err
	}

	if err = registerRoutes(a, s); err != nil {
		_ = a.Shutdown(context.Background())
		return nil, err
	}

	return a, nil
}

func appOptions(s *Settings, logOut io.Writer) ([]app.Option, error) {
	level, err := logging.ParseLevel(s.Log.Level)
	if err != nil {
		return nil, err
	}
	handler, disabled, err := logging.ParseHandlerType(s.Log.Format)
	if err != nil {
		return nil, err
	}

	logOpts := []logging.Option{logging.WithOutput(logOut), logging.WithLevel(level)}
	if disabled {
		logOpts = append(logOpts, logging.WithDisabled())
	} else {
		logOpts = append(logOpts, logging.WithHandlerType(handler))
	}

	read := s.Server.Timeout.Read
	opts := []app.Option{
		app.WithServiceName(s.Service.Name),
		app.WithServiceVersion(s.Service.Version),
		app.WithEnvironment(s.Service.Environment),
		app.WithLogging(logOpts...),
		app.WithServerTimeouts(min(5*time.Second, read), read, s.Server.Timeout.Write, 60*time.Second),
		app.WithShutdownTimeout(s.Server.Timeout.Shutdown),
	}
	if s.Static.Dir != "" {
		opts = append(opts, app.WithStatic(s.Static.Dir))
	}

	if s.Metrics.Enabled {
		var provider metrics.Option
		switch s.Metrics.Provider {
		case "stdout":
			provider = metrics.WithStdout()
		case "otlp":
			provider = metrics.WithOTLP(s.Metrics.Endpoint)
		default:
			provider = metrics.WithPrometheus()
		}
		opts = append(opts, app.WithMetrics(provider), app.WithMetricsPath(s.Metrics.Path))
	}

	switch s.Tracing.Provider {
	case "stdout":
		opts = append(opts, app.WithTracing(tracing.WithStdout(), tracing.WithSampleRate(s.Tracing.Sample)))
	case "otlp":
		opts = append(opts, app.WithTracing(tracing.WithOTLP(s.Tracing.Endpoint), tracing.WithSampleRate(s.Tracing.Sample)))
	}

	return opts, nil
}

// registerRoutes adds the health check and the configured redirects.
func registerRoutes(a *app.App, s *Settings) error {
	if err := a.GET("/_health", func(c *router.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": s.Service.Name,
			"version": s.Service.Version,
		})
	}); err != nil {
		return err
	}

	for _, r := range s.Redirects {
		status := r.Status
		if status == 0 {
			status = http.StatusFound
		}
		target := r.To
		if err := a.GET(r.From, func(c *router.Context) error {
			return c.Redirect(target, status)
		}); err != nil {
			return fmt.Errorf("redirect %s: %w", r.From, err)
		}
	}

	return nil
}
