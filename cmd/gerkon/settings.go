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
	"errors"
	"fmt"
	"time"

	"gerkon.dev/gerkon/config"
	"gerkon.dev/gerkon/config/source"
	"gerkon.dev/gerkon/logging"
)

// Settings is the bound configuration of the CLI.
type Settings struct {
	Service   ServiceSettings   `config:"service"`
	Server    ServerSettings    `config:"server"`
	Static    StaticSettings    `config:"static"`
	Log       LogSettings       `config:"log"`
	Metrics   MetricsSettings   `config:"metrics"`
	Tracing   TracingSettings   `config:"tracing"`
	Redirects []Redirect        `config:"redirects"`
}

// Redirect sends GET requests matching the rule From to To.
type Redirect struct {
	From   string `config:"from"`
	To     string `config:"to"`
	Status int    `config:"status"`
}

type ServiceSettings struct {
	Name        string `config:"name"`
	Version     string `config:"version"`
	Environment string `config:"environment"`
}

type ServerSettings struct {
	Host    string          `config:"host"`
	Port    int             `config:"port"`
	Timeout TimeoutSettings `config:"timeout"`
}

type TimeoutSettings struct {
	Read     time.Duration `config:"read"`
	Write    time.Duration `config:"write"`
	Shutdown time.Duration `config:"shutdown"`
}

type StaticSettings struct {
	Dir string `config:"dir"`
}

type LogSettings struct {
	Level  string `config:"level"`
	Format string `config:"format"`
}

type MetricsSettings struct {
	Enabled  bool   `config:"enabled"`
	Provider string `config:"provider"`
	Path     string `config:"path"`
	Endpoint string `config:"endpoint"`
}

type TracingSettings struct {
	Provider string  `config:"provider"`
	Endpoint string  `config:"endpoint"`
	Sample   float64 `config:"sample"`
}

func defaultValues() map[string]any {
	return map[string]any{
		"service": map[string]any{
			"name":        "gerkon",
			"version":     version,
			"environment": "production",
		},
		"server": map[string]any{
			"host": "",
			"port": 8080,
			"timeout": map[string]any{
				"read":     "15s",
				"write":    "30s",
				"shutdown": "30s",
			},
		},
		"static": map[string]any{"dir": ""},
		"log": map[string]any{
			"level":  "info",
			"format": "console",
		},
		"metrics": map[string]any{
			"enabled":  false,
			"provider": "prometheus",
			"path":     "/metrics",
			"endpoint": "",
		},
		"tracing": map[string]any{
			"provider": "noop",
			"endpoint": "",
			"sample":   1.0,
		},
	}
}

// Validate implements config.Validator.
func (s *Settings) Validate() error {
	var errs []error

	if s.Server.Port < 1 || s.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port: %d is outside 1-65535", s.Server.Port))
	}
	if s.Server.Timeout.Read <= 0 || s.Server.Timeout.Write <= 0 || s.Server.Timeout.Shutdown <= 0 {
		errs = append(errs, errors.New("server.timeout: read, write and shutdown must be positive"))
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, _, err := logging.ParseHandlerType(s.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}

	switch s.Metrics.Provider {
	case "prometheus", "stdout":
	case "otlp":
		if s.Metrics.Enabled && s.Metrics.Endpoint == "" {
			errs = append(errs, errors.New("metrics.endpoint: required for the otlp provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("metrics.provider: unknown provider %q", s.Metrics.Provider))
	}

	switch s.Tracing.Provider {
	case "noop", "stdout":
	case "otlp":
		if s.Tracing.Endpoint == "" {
			errs = append(errs, errors.New("tracing.endpoint: required for the otlp provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("tracing.provider: unknown provider %q", s.Tracing.Provider))
	}
	for i, r := range s.Redirects {
		if r.From == "" || r.To == "" {
			errs = append(errs, fmt.Errorf("redirects[%d]: from and to are required", i))
		}
		if r.Status != 0 && (r.Status < 300 || r.Status > 399) {
			errs = append(errs, fmt.Errorf("redirects[%d]: status %d is not a redirect", i, r.Status))
		}
	}
	if s.Tracing.Sample < 0 || s.Tracing.Sample > 1 {
		errs = append(errs, fmt.Errorf("tracing.sample: %v is outside 0-1", s.Tracing.Sample))
	}

	return errors.Join(errs...)
}

// newConfig layers defaults, the optional file and the environment.
func newConfig(path string, environ []string, binding *Settings) (*config.Config, error) {
	opts := []config.Option{config.WithDefaults(defaultValues())}
	if path != "" {
		opts = append(opts, config.WithFile(path))
	}
	opts = append(opts, config.WithSource(source.NewEnvFrom(envPrefix, environ)))
	if binding != nil {
		opts = append(opts, config.WithBinding(binding))
	}

	return config.New(opts...)
}

func loadSettings(ctx context.Context, path string, environ []string) (*Settings, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	s := &Settings{}
	cfg, err := newConfig(path, environ, s)
	if err != nil {
		return nil, err
	}
	if err = cfg.Load(ctx); err != nil {
		return nil, err
	}

	return s, nil
}
