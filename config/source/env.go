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

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gerkon.dev/gerkon/config/codec"
)

// Env loads environment variables that start with a prefix. The prefix is
// stripped, so with prefix "GERKON_" the variable GERKON_SERVER_PORT
// becomes server.port.
type Env struct {
	prefix  string
	environ func() []string
}

// NewEnv returns a source over the process environment.
func NewEnv(prefix string) *Env {
	return &Env{prefix: prefix, environ: os.Environ}
}

// NewEnvFrom returns a source over a fixed KEY=value list.
func NewEnvFrom(prefix string, environ []string) *Env {
	return &Env{prefix: prefix, environ: func() []string { return environ }}
}

// Load implements config.Source.
func (e *Env) Load(context.Context) (map[string]any, error) {
	var b strings.Builder
	for _, kv := range e.environ() {
		if rest, ok := strings.CutPrefix(kv, e.prefix); ok {
			b.WriteString(rest)
			b.WriteByte('\n')
		}
	}

	var conf map[string]any
	if err := (codec.EnvVarCodec{}).Decode([]byte(b.String()), &conf); err != nil {
		return nil, fmt.Errorf("decode environment: %w", err)
	}

	return conf, nil
}
