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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestingConfig returns a loaded Config over values and opts.
func TestingConfig(t testing.TB, values map[string]any, opts ...Option) *Config {
	t.Helper()

	c, err := New(append([]Option{WithDefaults(values)}, opts...)...)
	if err != nil {
		t.Fatalf("TestingConfig: %v", err)
	}
	if err = c.Load(context.Background()); err != nil {
		t.Fatalf("TestingConfig: load: %v", err)
	}

	return c
}

// TestingFile writes content to name inside a temporary directory and
// returns its path.
func TestingFile(t testing.TB, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("TestingFile: %v", err)
	}

	return path
}
