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

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gerkon.dev/gerkon/config/codec"
)

func configCmd(configPath *string, environ []string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the merged settings",
		Long: `Print the settings after defaults, the --config file and GERKON_*
variables were merged.

Examples:
  gerkon config
  gerkon config -c gerkon.toml --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var t codec.Type
			switch format {
			case "yaml", "yml":
				t = codec.TypeYAML
			case "toml":
				t = codec.TypeTOML
			case "json":
				t = codec.TypeJSON
			default:
				return fmt.Errorf("unsupported format %q", format)
			}

			cfg, err := newConfig(*configPath, environ, &Settings{})
			if err != nil {
				return err
			}
			if err = cfg.Load(cmd.Context()); err != nil {
				return err
			}

			return cfg.Dump(cmd.OutOrStdout(), t)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, toml or json")

	return cmd
}
