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

package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-yaml"
)

// Structured document formats.
const (
	TypeYAML Type = "yaml"
	TypeTOML Type = "toml"
	TypeJSON Type = "json"
)

// Document codecs, also registered under their Type.
var (
	YAML = Document{format: TypeYAML, marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
	TOML = Document{format: TypeTOML, marshal: toml.Marshal, unmarshal: toml.Unmarshal}
	JSON = Document{format: TypeJSON, marshal: marshalJSON, unmarshal: json.Unmarshal}
)

func init() {
	for _, d := range []Document{YAML, TOML, JSON} {
		RegisterEncoder(d.format, d)
		RegisterDecoder(d.format, d)
	}
}

// Document reads and writes one structured format. An empty or
// whitespace-only document decodes to an empty map in every format.
type Document struct {
	format    Type
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

// Type returns the format handled by d.
func (d Document) Type() Type {
	return d.format
}

// Encode implements Encoder.
func (d Document) Encode(v any) ([]byte, error) {
	data, err := d.marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", d.format, err)
	}

	return data, nil
}

// Decode implements Decoder. Errors name the format.
func (d Document) Decode(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		if m, ok := v.(*map[string]any); ok {
			*m = map[string]any{}
			return nil
		}
	}
	if err := d.unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", d.format, err)
	}

	return nil
}

// marshalJSON indents output and ends it with a newline, like the other
// formats.
func marshalJSON(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
