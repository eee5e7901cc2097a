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

// tdtctl 營運用 CLI：匯入郡財產估價資料、執行示範資料同步、列印統計、產生密碼雜湊。
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/zintix-labs/tdtrack/boot"
	"github.com/zintix-labs/tdtrack/server/logger"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
)

const (
	green = "\033[1;32m"
	reset = "\033[0m"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// cli 子命令共用的狀態，由 root 的 PersistentPreRunE 填入。
type cli struct {
	configPath string
	logMode    string
	dsn        string
	envFile    string

	in   io.Reader
	out  io.Writer
	conf *svrcfg.Config
	log  *slog.Logger
	p    *message.Printer
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, p: message.NewPrinter(language.English)}
	root := &cobra.Command{
		Use:           "tdtctl",
		Short:         "Tourist development tax tracker operations",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup()
		},
	}
	root.SetIn(in)
	root.SetOut(out)

	f := root.PersistentFlags()
	f.StringVar(&c.configPath, "config", "", "yaml config path (default $TDT_CONFIG)")
	f.StringVar(&c.logMode, "log-mode", "silence", "log mode: dev|prod|silence")
	f.StringVar(&c.dsn, "dsn", "", "database dsn (overrides config)")
	f.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before config when present")

	root.AddCommand(
		c.importCmd(),
		c.syncCmd(),
		c.seedCmd(),
		c.statsCmd(),
		c.hashPasswordCmd(),
		c.officeCmd(),
	)
	return root
}

func (c *cli) setup() error {
	if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", c.envFile, err)
	}
	conf, err := svrcfg.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.dsn != "" {
		conf.Database.DSN = c.dsn
	}
	mode, ok := logger.ParseMode(c.logMode)
	if !ok {
		return fmt.Errorf("unknown log mode %q", c.logMode)
	}
	conf.Log.Mode = mode.String()
	c.conf = conf
	c.log = logger.NewDefaultLogger(mode)
	return nil
}

// open 開啟完整環境；呼叫端負責 Close。
func (c *cli) open(ctx context.Context) (*boot.Env, error) {
	return boot.Open(ctx, c.conf, c.log)
}

// header 以綠色粗體列印區段標題。
func (c *cli) header(format string, a ...any) {
	c.p.Fprintf(c.out, "%s"+format+"%s\n", append(append([]any{green}, a...), reset)...)
}

// interactive 只有 stderr 是終端機時才顯示進度條。
func interactive() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}
