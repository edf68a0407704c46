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
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

// encoder is implemented by *gzip.Writer and *brotli.Writer.
type encoder interface {
	io.WriteCloser
	Reset(w io.Writer)
	Flush() error
}

var encoderPools sync.Map // poolKey -> *sync.Pool

type poolKey struct {
	encoding string
	level    int
}

func encoderPool(encoding string, level int) *sync.Pool {
	key := poolKey{encoding: encoding, level: level}
	if p, ok := encoderPools.Load(key); ok {
		return p.(*sync.Pool)
	}

	p := &sync.Pool{New: func() any {
		if encoding == encodingBrotli {
			return brotli.NewWriterLevel(io.Discard, level)
		}
		w, _ := gzip.NewWriterLevel(io.Discard, level)

		return w
	}}
	actual, _ := encoderPools.LoadOrStore(key, p)

	return actual.(*sync.Pool)
}

// compressWriter compresses the body it receives. Up to threshold bytes are
// buffered before deciding; smaller bodies pass through unchanged. Status
// 0 means no status was chosen and the underlying writer's default applies.
type compressWriter struct {
	http.ResponseWriter
	pool                *sync.Pool
	enc                 encoder
	encoding            string
	excludeContentTypes []string
	threshold           int

	buffer      []byte
	statusCode  int
	headersSent bool
	decided     bool
	compress    bool
}

func (cw *compressWriter) WriteHeader(code int) {
	if cw.headersSent || cw.statusCode != 0 {
		return
	}
	cw.statusCode = code

	if skipStatus(code) || skipContentType(cw.Header().Get("Content-Type"), cw.excludeContentTypes) {
		cw.decided = true
		cw.sendHeader()
	}
}

func (cw *compressWriter) Write(data []byte) (int, error) {
	if cw.decided {
		if cw.compress {
			return cw.enc.Write(data)
		}

		return cw.ResponseWriter.Write(data)
	}

	if !cw.headersSent && skipContentType(cw.Header().Get("Content-Type"), cw.excludeContentTypes) {
		cw.decided = true
		cw.sendHeader()

		return cw.ResponseWriter.Write(data)
	}

	if len(cw.buffer)+len(data) < cw.threshold {
		cw.buffer = append(cw.buffer, data...)
		return len(data), nil
	}

	cw.decided = true
	cw.compress = true
	cw.start(append(cw.buffer, data...))
	if len(cw.buffer) > 0 {
		if _, err := cw.enc.Write(cw.buffer); err != nil {
			return 0, err
		}
		cw.buffer = nil
	}

	return cw.enc.Write(data)
}

// Flush pushes compressed data to the client.
func (cw *compressWriter) Flush() {
	if !cw.decided {
		cw.decided = true
		cw.compress = true
		cw.start(cw.buffer)
		if len(cw.buffer) > 0 {
			_, _ = cw.enc.Write(cw.buffer)
			cw.buffer = nil
		}
	}
	if cw.compress {
		_ = cw.enc.Flush()
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (cw *compressWriter) Unwrap() http.ResponseWriter {
	return cw.ResponseWriter
}

func (cw *compressWriter) sendHeader() {
	if cw.headersSent {
		return
	}
	cw.headersSent = true
	if cw.statusCode != 0 {
		cw.ResponseWriter.WriteHeader(cw.statusCode)
	}
}

// start switches to compressed output. The content type is sniffed from
// the uncompressed head of the body, as net/http would otherwise sniff the
// compressed bytes.
func (cw *compressWriter) start(head []byte) {
	h := cw.Header()
	if h.Get("Content-Type") == "" && len(head) > 0 {
		h.Set("Content-Type", http.DetectContentType(head))
	}
	h.Del("Content-Length")
	h.Set("Content-Encoding", cw.encoding)
	h.Add("Vary", "Accept-Encoding")
	cw.sendHeader()

	cw.enc = cw.pool.Get().(encoder)
	cw.enc.Reset(cw.ResponseWriter)
}

// Close finishes the compressed stream, or sends a short buffered body
// as is.
func (cw *compressWriter) Close() error {
	if !cw.decided {
		cw.decided = true
		cw.sendHeader()
		if len(cw.buffer) > 0 {
			_, err := cw.ResponseWriter.Write(cw.buffer)
			cw.buffer = nil

			return err
		}

		return nil
	}
	if !cw.compress || cw.enc == nil {
		return nil
	}

	err := cw.enc.Close()
	cw.enc.Reset(io.Discard)
	cw.pool.Put(cw.enc)
	cw.enc = nil

	return err
}

func skipStatus(code int) bool {
	return code == http.StatusNoContent ||
		code == http.StatusNotModified ||
		code == http.StatusPartialContent ||
		(code >= 100 && code < 200)
}

func skipContentType(ct string, excludes []string) bool {
	if ct == "" {
		return false
	}

	ct = strings.ToLower(ct)
	for _, always := range []string{"text/event-stream", "application/grpc", "application/octet-stream"} {
		if strings.Contains(ct, always) {
			return true
		}
	}
	for _, excluded := range excludes {
		if strings.Contains(ct, strings.ToLower(excluded)) {
			return true
		}
	}

	return false
}
