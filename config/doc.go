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

// Package config loads layered configuration from files, the environment
// and in-code defaults.
//
// Sources are merged in the order they are given, later sources
// overriding earlier ones. Keys are case-insensitive and nested keys are
// addressed with dots.
//
//	var settings Settings
//	cfg := config.MustNew(
//	    config.WithDefaults(map[string]any{"server": map[string]any{"port": 8080}}),
//	    config.WithFile("gerkon.yaml"),
//	    config.WithEnv("GERKON_"),
//	    config.WithBinding(&settings),
//	)
//	if err := cfg.Load(ctx); err != nil {
//	    return err
//	}
//	port := cfg.Int("server.port")
//
// Files are decoded by extension: .yaml and .yml, .toml and .json.
//
// Binding uses the "config" struct tag. Strings are converted to
// durations, slices and times, and fields tagged `default:"..."` are
// filled when no source sets them. A bound struct implementing Validator
// is validated before the new values are published.
package config
