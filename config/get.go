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
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Get returns the value at a dotted key, or nil.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	var current any = c.values
	for segment := range strings.SplitSeq(strings.ToLower(key), ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[segment]; !ok {
			return nil
		}
	}

	return current
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	return c.Get(key) != nil
}

// String returns key as a string.
func (c *Config) String(key string) string {
	return cast.ToString(c.Get(key))
}

// Int returns key as an int.
func (c *Config) Int(key string) int {
	return cast.ToInt(c.Get(key))
}

// Int64 returns key as an int64.
func (c *Config) Int64(key string) int64 {
	return cast.ToInt64(c.Get(key))
}

// Float64 returns key as a float64.
func (c *Config) Float64(key string) float64 {
	return cast.ToFloat64(c.Get(key))
}

// Bool returns key as a bool.
func (c *Config) Bool(key string) bool {
	return cast.ToBool(c.Get(key))
}

// Duration returns key as a duration. Strings use time.ParseDuration
// syntax.
func (c *Config) Duration(key string) time.Duration {
	return cast.ToDuration(c.Get(key))
}

// StringSlice returns key as a slice of strings.
func (c *Config) StringSlice(key string) []string {
	return cast.ToStringSlice(c.Get(key))
}

// StringMap returns key as a map.
func (c *Config) StringMap(key string) map[string]any {
	return cast.ToStringMap(c.Get(key))
}

// StringOr returns key as a string, or def when unset.
func (c *Config) StringOr(key, def string) string {
	return GetOr(c, key, def)
}

// IntOr returns key as an int, or def when unset or invalid.
func (c *Config) IntOr(key string, def int) int {
	return GetOr(c, key, def)
}

// BoolOr returns key as a bool, or def when unset or invalid.
func (c *Config) BoolOr(key string, def bool) bool {
	return GetOr(c, key, def)
}

// DurationOr returns key as a duration, or def when unset or invalid.
func (c *Config) DurationOr(key string, def time.Duration) time.Duration {
	return GetOr(c, key, def)
}

// GetE returns key converted to T.
//
// Example:
//
//	port, err := config.GetE[int](cfg, "server.port")
func GetE[T any](c *Config, key string) (T, error) {
	var zero T

	val := c.Get(key)
	if val == nil {
		return zero, fmt.Errorf("key %q not found", key)
	}
	if v, ok := val.(T); ok {
		return v, nil
	}

	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(val)
	case int:
		out, err = cast.ToIntE(val)
	case int64:
		out, err = cast.ToInt64E(val)
	case float64:
		out, err = cast.ToFloat64E(val)
	case bool:
		out, err = cast.ToBoolE(val)
	case time.Duration:
		out, err = cast.ToDurationE(val)
	case []string:
		out, err = cast.ToStringSliceE(val)
	case map[string]any:
		out, err = cast.ToStringMapE(val)
	default:
		return zero, fmt.Errorf("unsupported target type %T for key %q", zero, key)
	}
	if err != nil {
		return zero, fmt.Errorf("key %q: %w", key, err)
	}

	return out.(T), nil
}

// GetOr returns key converted to T, or def.
func GetOr[T any](c *Config, key string, def T) T {
	v, err := GetE[T](c, key)
	if err != nil {
		return def
	}

	return v
}
