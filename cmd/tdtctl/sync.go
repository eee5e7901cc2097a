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
	"context"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/zintix-labs/tdtrack/boot"
	"github.com/zintix-labs/tdtrack/demodata"
	"github.com/zintix-labs/tdtrack/model"
)

func (c *cli) syncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Synthesize demo properties from Google Places lodging results",
		Long: `Search every configured area for lodging places, resolve their details and
write synthetic properties, payments and dealer assignments.

Requires places.api_key (or GOOGLE_API_KEY).`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSync(cmd.Context(), "SYNC", func(env *boot.Env) int {
				return len(env.Tracker.Catalog().Areas)
			}, (*demodata.Syncer).Run)
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Synthesize demo properties from the built-in fallback addresses",
		Long:  `Seed demo data without a places key, using the catalog's fixed fallback addresses.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.runSync(cmd.Context(), "SEED", func(env *boot.Env) int {
				return len(env.Tracker.Catalog().Fallback)
			}, (*demodata.Syncer).SeedFallback)
		},
	}
}

type syncFunc func(*demodata.Syncer, context.Context) (*model.SyncResult, error)

func (c *cli) runSync(ctx context.Context, name string, total func(*boot.Env) int, run syncFunc) error {
	env, err := c.open(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	c.header("[%s] [DSN:%s]", name, c.conf.Database.DSN)
	if interactive() {
		bar := pb.New(total(env))
		bar.SetWriter(os.Stderr)
		bar.Start()
		defer bar.Finish()
		env.Syncer.OnProgress(func() { bar.Increment() })
	}

	res, err := run(env.Syncer, ctx)
	if err != nil {
		return err
	}
	c.printSync(res)
	return nil
}

func (c *cli) printSync(res *model.SyncResult) {
	c.p.Fprintf(c.out, "%s\n", res.Message)
	c.p.Fprintf(c.out, "run %s: %d properties, %d payments, %d errors\n",
		res.RunID, res.PropertiesCreated, res.PaymentsCreated, len(res.Errors))
	for _, e := range res.Errors {
		c.p.Fprintf(c.out, "    ! %s\n", e)
	}
}
