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
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gerkon.dev/gerkon/app"
)

var listedMethods = []string{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

func routesCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the routes serve would register, in match order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := load(cmd)
			if err != nil {
				return err
			}
			s.Log.Format = "off"

			a, err := buildApp(s, io.Discard)
			if err != nil {
				return err
			}
			defer func() { _ = a.Shutdown(context.Background()) }()

			return printRoutes(cmd.OutOrStdout(), a, s)
		},
	}
}

func printRoutes(w io.Writer, a *app.App, s *Settings) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tRULE")
	for _, m := range listedMethods {
		for _, rule := range a.Routes(m) {
			fmt.Fprintf(tw, "%s\t%s\n", m, rule)
		}
	}
	if s.Static.Dir != "" {
		fmt.Fprintf(tw, "*\t(static %s)\n", s.Static.Dir)
	}

	return tw.Flush()
}
