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

// Package compression provides a mediator that compresses response bodies
// with Brotli or gzip, negotiated from the Accept-Encoding header.
//
// It is a continuation step: it wraps c.Response, resumes the chain and
// finishes the compressed stream once the response has been finalized.
// Register it before mediators that write responses so their bodies are
// compressed too.
//
//	app.Use(compression.New(compression.WithMinSize(512)))
package compression

import (
	"strconv"
	"strings"

	"gerkon.dev/gerkon/router"
)

// New returns the compression mediator.
//
// Example:
//
//	app.Use(compression.New(
//	    compression.WithBrotliDisabled(),
//	    compression.WithExcludeExtensions(".png", ".zip"),
//	))
func New(opts ...Option) router.AsyncHandlerFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) {
		encoding := cfg.negotiate(c)
		if encoding == "" {
			next(nil)
			return
		}

		level := cfg.gzipLevel
		if encoding == encodingBrotli {
			level = cfg.brotliLevel
		}
		cw := &compressWriter{
			ResponseWriter:      c.Response,
			pool:                encoderPool(encoding, level),
			encoding:            encoding,
			excludeContentTypes: cfg.excludeContentTypes,
			threshold:           cfg.minSize,
		}
		original := c.Response
		c.Response = cw

		<-next(nil)

		if err := cw.Close(); err != nil {
			logger := cfg.logger
			if logger == nil {
				logger = c.Logger()
			}
			logger.Error("compression finalization failed", "path", c.Request.URL.Path, "error", err)
		}
		c.Response = original
	}
}

// negotiate returns the encoding to use for the request, or "".
func (cfg *config) negotiate(c *router.Context) string {
	path := c.Request.URL.Path
	if cfg.excludePaths[path] {
		return ""
	}
	for _, ext := range cfg.excludeExtensions {
		if strings.HasSuffix(path, ext) {
			return ""
		}
	}
	if c.Response.Header().Get("Content-Encoding") != "" {
		return ""
	}

	return chooseEncoding(c.Request.Header.Get("Accept-Encoding"), cfg.enableBrotli, cfg.enableGzip)
}

// chooseEncoding picks the best enabled encoding by q-value, preferring
// Brotli on ties. A wildcard stands in for encodings not listed.
func chooseEncoding(acceptEncoding string, brotliOK, gzipOK bool) string {
	if acceptEncoding == "" {
		return ""
	}

	q := parseAcceptEncoding(acceptEncoding)
	qualityOf := func(enc string) float64 {
		if v, ok := q[enc]; ok {
			return v
		}
		if v, ok := q["*"]; ok {
			return v
		}

		return 0
	}

	brQ, gzQ := 0.0, 0.0
	if brotliOK {
		brQ = qualityOf(encodingBrotli)
	}
	if gzipOK {
		gzQ = qualityOf(encodingGzip)
	}

	switch {
	case brQ > 0 && brQ >= gzQ:
		return encodingBrotli
	case gzQ > 0:
		return encodingGzip
	default:
		return ""
	}
}

// parseAcceptEncoding maps each listed coding to its quality. Codings
// without a valid q parameter get 1.
func parseAcceptEncoding(header string) map[string]float64 {
	out := make(map[string]float64)
	for part := range strings.SplitSeq(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}

		quality := 1.0
		for param := range strings.SplitSeq(params, ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || strings.TrimSpace(key) != "q" {
				continue
			}
			if v, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
				quality = max(0, min(v, 1))
			}
		}
		out[name] = quality
	}

	return out
}
