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
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"

	"gerkon.dev/gerkon/config/codec"
	"gerkon.dev/gerkon/config/source"
)

// Option configures a Config.
type Option func(c *Config) error

// Validator is implemented by bound structs that check themselves.
type Validator interface {
	Validate() error
}

// Config holds merged configuration values. It is safe for concurrent use.
type Config struct {
	mu         sync.RWMutex
	values     map[string]any
	sources    []Source
	binding    any
	tagName    string
	validators []func(map[string]any) error
}

// WithSource adds a source.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)

		return nil
	}
}

// WithDefaults adds a source holding fixed values. Give it first so that
// files and the environment override it.
func WithDefaults(values map[string]any) Option {
	return WithSource(SourceFunc(func(context.Context) (map[string]any, error) {
		return values, nil
	}))
}

// WithFile adds a file source whose format follows the extension. The
// path may reference environment variables as $VAR or ${VAR}.
func WithFile(path string) Option {
	return func(c *Config) error {
		path = os.ExpandEnv(path)
		format, err := DetectFormat(path)
		if err != nil {
			return NewError("file", "detect-format", err)
		}

		return WithFileAs(path, format)(c)
	}
}

// WithFileAs adds a file source decoded with an explicit codec.
func WithFileAs(path string, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.GetDecoder(format)
		if err != nil {
			return NewError("file", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFile(os.ExpandEnv(path), decoder))

		return nil
	}
}

// WithContent adds a source over an in-memory document.
func WithContent(data []byte, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.GetDecoder(format)
		if err != nil {
			return NewError("content", "get-decoder", err)
		}
		c.sources = append(c.sources, source.NewFileContent(data, decoder))

		return nil
	}
}

// WithEnv adds the environment variables starting with prefix.
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.sources = append(c.sources, source.NewEnv(prefix))
		return nil
	}
}

// WithBinding decodes values into v on every Load. v must be a non-nil
// pointer to a struct.
func WithBinding(v any) Option {
	return func(c *Config) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return NewError("binding", "configure", fmt.Errorf("binding must be a non-nil pointer to a struct, got %T", v))
		}
		c.binding = v

		return nil
	}
}

// WithTag changes the struct tag used for binding. The default is "config".
func WithTag(tag string) Option {
	return func(c *Config) error {
		c.tagName = tag
		return nil
	}
}

// WithValidator adds a check run on the merged values before they are
// published.
func WithValidator(fn func(map[string]any) error) Option {
	return func(c *Config) error {
		if fn == nil {
			return errors.New("validator cannot be nil")
		}
		c.validators = append(c.validators, fn)

		return nil
	}
}

// New applies opts. Nothing is loaded until Load.
func New(opts ...Option) (*Config, error) {
	c := &Config{tagName: "config"}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// MustNew is New that panics on error.
func MustNew(opts ...Option) *Config {
	c, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return c
}

// Load reads every source, merges them, runs validators and binding, and
// publishes the result. On error the previous values are kept.
func (c *Config) Load(ctx context.Context) error {
	values, err := c.loadSources(ctx)
	if err != nil {
		return err
	}

	for i, fn := range c.validators {
		if err = fn(values); err != nil {
			return NewError(fmt.Sprintf("validator[%d]", i), "validate", err)
		}
	}

	if c.binding != nil {
		// Decode into a scratch value first so a failed Load leaves the
		// caller's struct untouched.
		scratch := reflect.New(reflect.TypeOf(c.binding).Elem()).Interface()
		if err = c.decode(values, scratch); err != nil {
			return NewError("binding", "bind", err)
		}
		if v, ok := scratch.(Validator); ok {
			if err = v.Validate(); err != nil {
				return NewError("binding", "validate", err)
			}
		}
		c.mu.Lock()
		reflect.ValueOf(c.binding).Elem().Set(reflect.ValueOf(scratch).Elem())
		c.values = values
		c.mu.Unlock()

		return nil
	}

	c.mu.Lock()
	c.values = values
	c.mu.Unlock()

	return nil
}

// MustLoad is Load that panics on error.
func (c *Config) MustLoad(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		panic(err)
	}
}

func (c *Config) loadSources(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	for i, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if err = mergo.Map(&merged, normalizeKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}

	return merged, nil
}

func (c *Config) decode(values map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          c.tagName,
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("create decoder: %w", err)
	}
	if err = decoder.Decode(values); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	return applyDefaults(target)
}

// normalizeKeys lowercases keys at every depth.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeKeys(nested)
		}
		out[strings.ToLower(k)] = v
	}

	return out
}

// Values returns a copy of the top level of the merged values.
func (c *Config) Values() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return maps.Clone(c.values)
}

// Dump writes the merged values to w in the given format.
//
// Example:
//
//	_ = cfg.Dump(os.Stdout, codec.TypeYAML)
func (c *Config) Dump(w io.Writer, format codec.Type) error {
	encoder, err := codec.GetEncoder(format)
	if err != nil {
		return NewError("dump", "get-encoder", err)
	}

	values := c.Values()
	if values == nil {
		values = map[string]any{}
	}
	data, err := encoder.Encode(values)
	if err != nil {
		return NewError("dump", "encode", err)
	}
	if _, err = w.Write(data); err != nil {
		return NewError("dump", "write", err)
	}

	return nil
}
