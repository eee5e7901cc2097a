// Copyright 2025 Zintix Labs
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

	"github.com/zintix-labs/tdtrack/stats"
)

func (c *cli) statsCmd() *cobra.Command {
	var (
		format string
		title  string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print compliance dashboard statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			render := stats.RenderFor(format)
			if render == nil {
				return fmt.Errorf("unknown format %q (json|yaml|table)", format)
			}
			env, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			rep, err := env.Tracker.Report(cmd.Context(), title)
			if err != nil {
				return err
			}
			return rep.WriteWith(c.out, render)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table|json|yaml")
	cmd.Flags().StringVar(&title, "title", "TDT Compliance", "report title")
	return cmd
}
