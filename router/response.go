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

package router

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// responseWriter wraps http.ResponseWriter to capture status code and size.
// It also prevents "superfluous response.WriteHeader call" errors.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	defaultStatus int
	size          int64
	written       bool
}

// WriteHeader captures the status code and ignores duplicate calls.
func (rw *responseWriter) WriteHeader(code int) {
	if rw.written {
		return
	}
	rw.statusCode = code
	rw.written = true
	rw.ResponseWriter.WriteHeader(code)
}

// Write writes the default status first when no status was chosen.
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(rw.StatusCode())
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)

	return n, err
}

// StatusCode returns the HTTP status code.
func (rw *responseWriter) StatusCode() int {
	if rw.statusCode != 0 {
		return rw.statusCode
	}
	if rw.defaultStatus != 0 {
		return rw.defaultStatus
	}

	return http.StatusOK
}

// Size returns the response size in bytes.
func (rw *responseWriter) Size() int64 {
	return rw.size
}

// Written returns true if headers have been written.
func (rw *responseWriter) Written() bool {
	return rw.written
}

var _ ResponseInfo = (*responseWriter)(nil)

// Hijack implements http.Hijacker.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}

	return nil, nil, fmt.Errorf("%T does not implement http.Hijacker", rw.ResponseWriter)
}

// Flush implements http.Flusher.
func (rw *responseWriter) Flush() {
	if !rw.written {
		rw.WriteHeader(rw.StatusCode())
	}
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Status sets the status code used by the next terminating helper that
// does not take one itself (Send, SendFile).
func (c *Context) Status(code int) *Context {
	c.status = code
	return c
}

// Header sets a response header.
func (c *Context) Header(key, value string) *Context {
	c.Response.Header().Set(key, value)
	return c
}

// writeHeader flushes a status chosen with Status, if any.
func (c *Context) writeHeader() {
	if c.status != 0 {
		c.Response.WriteHeader(c.status)
	}
}

// Send writes body and ends the response.
func (c *Context) Send(body string) error {
	return c.respond(func() error {
		c.writeHeader()
		_, err := io.WriteString(c.Response, body)

		return err
	})
}

// SendBytes writes body with an explicit status and content type and ends
// the response.
func (c *Context) SendBytes(code int, contentType string, body []byte) error {
	if !validStatus(code) {
		return fmt.Errorf("%w: %d", ErrInvalidStatusCode, code)
	}

	return c.respond(func() error {
		if contentType != "" {
			c.Response.Header().Set("Content-Type", contentType)
		}
		c.Response.WriteHeader(code)
		_, err := c.Response.Write(body)

		return err
	})
}

// SendCode ends the response with the given status code and an optional
// message as body.
//
// Example:
//
//	return c.SendCode(http.StatusTeapot, "I'm a teapot")
func (c *Context) SendCode(code int, message ...string) error {
	if !validStatus(code) {
		return fmt.Errorf("%w: %d", ErrInvalidStatusCode, code)
	}

	return c.respond(func() error {
		c.Response.WriteHeader(code)
		if len(message) == 0 {
			return nil
		}
		_, err := io.WriteString(c.Response, strings.Join(message, ""))

		return err
	})
}

// Redirect ends the response with a redirect to url. The code defaults to
// 302 Found; codes outside the 3xx range fall back to 302.
func (c *Context) Redirect(url string, code ...int) error {
	if url == "" {
		return ErrInvalidRedirectURL
	}
	status := http.StatusFound
	if len(code) > 0 && code[0] >= 300 && code[0] < 400 {
		status = code[0]
	}

	return c.respond(func() error {
		http.Redirect(c.Response, c.Request, url, status)
		return nil
	})
}

// SendFile reads the whole file at path and sends it. The content type is
// taken from contentType, then from the file extension, then defaults to
// text/plain. The response is left untouched if the file cannot be read.
func (c *Context) SendFile(path string, contentType ...string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	ct := ""
	if len(contentType) > 0 {
		ct = contentType[0]
	}
	if ct == "" {
		ct = mime.TypeByExtension(filepath.Ext(path))
	}
	if ct == "" {
		ct = "text/plain; charset=utf-8"
	}

	return c.respond(func() error {
		c.Response.Header().Set("Content-Type", ct)
		c.writeHeader()
		_, err := c.Response.Write(data)

		return err
	})
}

// File streams the file at path. Range and conditional requests are
// honored. The response is left untouched if the file cannot be opened or
// is a directory.
func (c *Context) File(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s", ErrIsDirectory, path)
	}

	return c.respond(func() error {
		http.ServeContent(c.Response, c.Request, info.Name(), info.ModTime(), f)
		return nil
	})
}

// JSON encodes v and sends it with the given status.
func (c *Context) JSON(code int, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return c.SendBytes(code, "application/json; charset=utf-8", data)
}

func validStatus(code int) bool {
	return code >= 100 && code <= 999
}

