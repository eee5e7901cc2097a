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
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"

	"github.com/zintix-labs/tdtrack/boot"
	"github.com/zintix-labs/tdtrack/server"
	"github.com/zintix-labs/tdtrack/server/logger"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
)

// TDT 追蹤服務入口：載入設定、開啟資料庫、啟動 HTTP 服務直到收到 SIGINT/SIGTERM。
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type config struct {
	ConfigPath string
	LogMode    string
	Addr       string
	EnvFile    string
}

func run() error {
	cfg := new(config)
	flag.StringVar(&cfg.ConfigPath, "config", "", "yaml config path (default $TDT_CONFIG)")
	flag.StringVar(&cfg.LogMode, "log-mode", "", "log mode: dev|prod|silence (overrides config)")
	flag.StringVar(&cfg.Addr, "addr", "", "listen address, e.g. :5000 (overrides config)")
	flag.StringVar(&cfg.EnvFile, "env-file", ".env", "dotenv file loaded before config when present")
	flag.Parse()

	// .env 不存在不是錯誤；已存在的環境變數不會被覆蓋。
	if err := godotenv.Load(cfg.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", cfg.EnvFile, err)
	}

	conf, err := svrcfg.Load(cfg.ConfigPath)
	if err != nil {
		return err
	}
	if cfg.LogMode != "" {
		conf.Log.Mode = cfg.LogMode
	}
	if cfg.Addr != "" {
		conf.Server.Addr = cfg.Addr
	}
	mode, ok := logger.ParseMode(conf.Log.Mode)
	if !ok {
		return fmt.Errorf("unknown log mode %q", conf.Log.Mode)
	}
	conf.Log.Mode = mode.String()

	log, h := logger.NewAsync(conf.Log.Buffer, mode)
	defer h.Close()

	env, err := boot.Open(context.Background(), conf, log)
	if err != nil {
		log.Error("startup failed", "err", err)
		return err
	}
	defer env.Close()

	return server.Run(env.ServerConfig())
}
