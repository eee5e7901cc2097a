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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/zintix-labs/tdtrack"
)

func (c *cli) hashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for an office account password",
		Long: `Print a bcrypt hash suitable for office_accounts.password_hash.

Without an argument the password is read from the terminal (no echo),
or from the first line of stdin when stdin is not a terminal.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			pw := ""
			if len(args) == 1 {
				pw = args[0]
			} else {
				var err error
				if pw, err = c.readPassword("Password: "); err != nil {
					return err
				}
			}
			hash, err := tdtrack.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.out, hash)
			return nil
		},
	}
}

const officeAddExample = `  tdtctl office add --state FL --entity-type tax-collector --county 68 \
    --name "Sarasota County Tax Collector" --username sarasota_tc`

func (c *cli) officeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "office",
		Short: "Manage office login accounts",
	}

	var (
		q    tdtrack.OfficeQuery
		name string
		user string
	)
	add := &cobra.Command{
		Use:     "add",
		Short:   "Create or replace an office account (password read from the terminal or stdin)",
		Example: officeAddExample,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := c.readPassword("Password: ")
			if err != nil {
				return err
			}
			env, err := c.open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			a, err := env.Tracker.PutOffice(cmd.Context(), tdtrack.OfficeInput{
				OfficeQuery: q,
				OfficeName:  name,
				Username:    user,
				Password:    pw,
			})
			if err != nil {
				return err
			}
			c.header("[OFFICE] %s (%s)", a.OfficeName, a.Username)
			return nil
		},
	}
	f := add.Flags()
	f.StringVar(&q.State, "state", "", "state code, e.g. FL")
	f.StringVar(&q.EntityType, "entity-type", "", "entity type, e.g. tax-collector")
	f.StringVar(&q.County, "county", "", "county code for county-level offices")
	f.StringVar(&q.Municipality, "municipality", "", "municipality name for city-level offices")
	f.StringVar(&name, "name", "", "office display name")
	f.StringVar(&user, "username", "", "login username")
	cmd.AddCommand(add)
	return cmd
}

// readPassword 終端機上不回顯讀取；否則讀取 stdin 第一行。
func (c *cli) readPassword(prompt string) (string, error) {
	if f, ok := c.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(c.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
