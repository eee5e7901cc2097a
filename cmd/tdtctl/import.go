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
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zintix-labs/tdtrack/boot"
	"github.com/zintix-labs/tdtrack/importer"
	"github.com/zintix-labs/tdtrack/sdk/perf"
	"github.com/zintix-labs/tdtrack/store"
)

func (c *cli) importCmd() *cobra.Command {
	var (
		tables []string
		all    bool
		dryRun bool
		dir    string
		prof   string
	)
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import county property appraiser flat files",
		Long: `Import the appraiser's CSV exports into the parcel tables.

Available tables: ` + strings.Join(importer.Names, ", ") + `

Files are decoded as utf-8, falling back to windows-1252 and latin-1.
Use --dry-run to parse every file without touching the database.`,
		Example: "  tdtctl import --all --dir ./data\n  tdtctl import --table sales --table values --dry-run",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			names := tables
			if all || len(names) == 0 {
				names = []string{"all"}
			}

			var st *store.Store
			if !dryRun {
				s, err := boot.OpenStore(ctx, c.conf.Database, c.log)
				if err != nil {
					return err
				}
				defer s.Close()
				st = s
			}

			im, err := importer.New(importer.Options{
				Store:        st,
				Dir:          dir,
				DryRun:       dryRun,
				ShowProgress: interactive(),
				Log:          c.log,
			})
			if err != nil {
				return err
			}

			c.header("[IMPORT] [DIR:%s] [TABLES:%s] [DRY-RUN:%v]", dir, strings.Join(names, ","), dryRun)
			var rep *importer.Report
			err = perf.Run(prof, "", func() error {
				var runErr error
				rep, runErr = im.Run(ctx, names...)
				return runErr
			})
			if rep != nil {
				c.printImport(rep)
			}
			return err
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&tables, "table", nil, "table to import (repeatable)")
	f.BoolVar(&all, "all", false, "import every table")
	f.BoolVar(&dryRun, "dry-run", false, "parse files without writing")
	f.StringVar(&dir, "dir", "data", "directory holding the exported files")
	f.StringVar(&prof, "pprof", "", "write a profile to "+perf.DefaultDir+": cpu|heap|allocs")
	return cmd
}

func (c *cli) printImport(rep *importer.Report) {
	for _, t := range rep.Tables {
		if t.Missing {
			c.p.Fprintf(c.out, "%-12s %s (missing)\n", t.Table, t.File)
			continue
		}
		c.p.Fprintf(c.out, "%-12s %-28s %-12s read %d  prepared %d  inserted %d  skipped %d  failed %d\n",
			t.Table, t.File, t.Encoding, t.Read, t.Prepared, t.Inserted, t.Skipped, t.Failed)
		for _, e := range t.Errors {
			c.p.Fprintf(c.out, "    ! %s\n", e)
		}
	}
	c.p.Fprintf(c.out, "run %s finished in %v\n", rep.RunID, rep.Duration.Round(time.Millisecond))
}
