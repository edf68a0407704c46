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

package compression

import (
	"compress/gzip"
	"log/slog"
)

// Option configures the compression mediator.
type Option func(*config)

type config struct {
	logger *slog.Logger

	gzipLevel   int
	brotliLevel int

	// minSize is the smallest body worth compressing; 0 compresses all
	minSize int

	enableGzip   bool
	enableBrotli bool

	excludePaths        map[string]bool
	excludeExtensions   []string
	excludeContentTypes []string
}

func defaultConfig() *config {
	return &config{
		gzipLevel:    gzip.DefaultCompression,
		brotliLevel:  4,
		enableGzip:   true,
		enableBrotli: true,
		excludePaths: make(map[string]bool),
	}
}

// WithLogger sets the logger for finalization errors. By default the
// request logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithGzipLevel sets the gzip level, from gzip.HuffmanOnly to
// gzip.BestCompression. Invalid levels keep the default.
func WithGzipLevel(level int) Option {
	return func(cfg *config) {
		if level >= gzip.HuffmanOnly && level <= gzip.BestCompression {
			cfg.gzipLevel = level
		}
	}
}

// WithBrotliLevel sets the Brotli level, 0 to 11. Levels above 5 are
// expensive for dynamic content.
// Default: 4
func WithBrotliLevel(level int) Option {
	return func(cfg *config) {
		cfg.brotliLevel = max(0, min(level, 11))
	}
}

// WithMinSize buffers up to size bytes and sends smaller bodies
// uncompressed.
//
// Example:
//
//	compression.New(compression.WithMinSize(1024))
func WithMinSize(size int) Option {
	return func(cfg *config) {
		cfg.minSize = max(0, size)
	}
}

// WithGzipDisabled offers Brotli only.
func WithGzipDisabled() Option {
	return func(cfg *config) {
		cfg.enableGzip = false
	}
}

// WithBrotliDisabled offers gzip only.
func WithBrotliDisabled() Option {
	return func(cfg *config) {
		cfg.enableBrotli = false
	}
}

// WithExcludePaths never compresses the given exact paths.
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludeExtensions never compresses paths ending in the given
// extensions, such as already compressed ".png" or ".zip" files.
func WithExcludeExtensions(exts ...string) Option {
	return func(cfg *config) {
		cfg.excludeExtensions = append(cfg.excludeExtensions, exts...)
	}
}

// WithExcludeContentTypes never compresses responses whose Content-Type
// contains one of the given values.
func WithExcludeContentTypes(types ...string) Option {
	return func(cfg *config) {
		cfg.excludeContentTypes = append(cfg.excludeContentTypes, types...)
	}
}
