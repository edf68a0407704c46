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

// Command gerkon serves a static directory with the gerkon router.
//
// Usage:
//
//	gerkon serve --static ./public --port 8080
//	gerkon routes --config gerkon.yaml
//	gerkon config --format toml
//	gerkon version
//
// Settings are read from defaults, then the --config file, then GERKON_*
// environment variables, then command flags.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// envPrefix selects the environment variables read as settings.
const envPrefix = "GERKON_"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr, os.Environ()).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer, environ []string) *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "gerkon",
		Short: "Rule-based HTTP router and static file server",
		Long: `gerkon serves a static directory behind the gerkon router.

Unmatched requests fall back to the static directory and then to a 404
response. Redirect rules from the configuration file are registered as
GET routes, so rules such as "/docs/<page>" or "/old*" work as usual.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file (.yaml, .toml or .json)")

	load := func(cmd *cobra.Command) (*Settings, error) {
		return loadSettings(cmd.Context(), configPath, environ)
	}

	root.AddCommand(
		serveCmd(load),
		routesCmd(load),
		configCmd(&configPath, environ),
		versionCmd(),
	)

	return root
}
