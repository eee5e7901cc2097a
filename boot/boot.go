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

// Package boot 依設定組裝服務與 CLI 共用的協作者：資料庫、Tracker、places 客戶端、分區索引、同步作業。
package boot

import (
	"context"
	"log/slog"

	"github.com/zintix-labs/tdtrack"
	"github.com/zintix-labs/tdtrack/catalog"
	"github.com/zintix-labs/tdtrack/demodata"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/ident"
	"github.com/zintix-labs/tdtrack/places"
	"github.com/zintix-labs/tdtrack/sdk/core"
	"github.com/zintix-labs/tdtrack/server/logger"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
	"github.com/zintix-labs/tdtrack/store"
	"github.com/zintix-labs/tdtrack/zoning"
)

// Env 組裝完成的執行環境。Close 負責釋放資料庫連線。
type Env struct {
	Config  *svrcfg.Config
	Log     *slog.Logger
	Store   *store.Store
	Tracker *tdtrack.Tracker
	Syncer  *demodata.Syncer
	Places  *places.Client // 未設定 API key 時為 nil
	Zoning  *zoning.Index  // 未設定 shapefile 時為 nil
}

// OpenStore 開啟資料庫；依設定執行 migrate。
func OpenStore(ctx context.Context, db svrcfg.DatabaseConfig, log *slog.Logger) (*store.Store, error) {
	st, err := store.Open(ctx, store.Options{Driver: db.Driver, DSN: db.DSN, Log: log})
	if err != nil {
		return nil, err
	}
	if db.Migrate {
		if err := st.Migrate(ctx); err != nil {
			st.Close()
			return nil, err
		}
	}
	return st, nil
}

// Open 依 cfg 建立完整環境。cfg 為 nil 時使用 Defaults()。
func Open(ctx context.Context, cfg *svrcfg.Config, log *slog.Logger) (*Env, error) {
	if cfg == nil {
		cfg = svrcfg.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logger.Discard()
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, errs.Wrap(err, "load catalog")
	}

	st, err := OpenStore(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	env := &Env{Config: cfg, Log: log, Store: st}

	// 識別碼與示範資料共用同一個可並行的亂數來源；seed 為 0 時隨機。
	var rng core.RAND
	if cfg.Sync.Seed != 0 {
		rng = core.NewLocked(core.Default().New(cfg.Sync.Seed))
	} else {
		rng = core.NewLocked(nil)
	}
	ids := ident.NewGenerator(rng, nil)

	env.Tracker, err = tdtrack.New(tdtrack.Options{Store: st, Catalog: cat, IDs: ids, Log: log})
	if err != nil {
		env.Close()
		return nil, err
	}
	if cfg.Database.SeedRegions {
		if _, err := env.Tracker.SeedRegions(ctx); err != nil {
			env.Close()
			return nil, err
		}
	}

	if cfg.Places.APIKey != "" {
		env.Places, err = places.New(places.Config{
			APIKey:          cfg.Places.APIKey,
			BaseURL:         cfg.Places.BaseURL,
			Radius:          cfg.Places.Radius,
			RPS:             cfg.Places.RPS,
			Timeout:         cfg.Places.Timeout,
			BreakerFailures: uint32(cfg.Places.BreakerFailures),
			BreakerTimeout:  cfg.Places.BreakerTimeout,
			Log:             log,
		})
		if err != nil {
			env.Close()
			return nil, err
		}
	} else {
		log.Warn("places api key not set: /api/sync disabled")
	}

	if cfg.Zoning.Shapefile != "" {
		env.Zoning, err = zoning.Load(cfg.Zoning.Shapefile, cfg.Zoning.Attribute)
		if err != nil {
			env.Close()
			return nil, err
		}
		log.Info("zoning loaded", "path", cfg.Zoning.Shapefile, "features", env.Zoning.Len())
	}

	opt := demodata.Options{
		Store:   st,
		Catalog: cat,
		Zoning:  env.Zoning,
		Gen:     demodata.NewGenerator(rng, ids),
		PerArea: cfg.Places.PerArea,
		Log:     log,
	}
	// 介面欄位只在客戶端存在時賦值，避免 typed nil 讓 Configured() 誤判。
	if env.Places != nil {
		opt.Places = env.Places
	}
	env.Syncer, err = demodata.NewSyncer(opt)
	if err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

// ServerConfig 轉成 HTTP 服務的組裝設定。
func (e *Env) ServerConfig() *svrcfg.SvrCfg {
	return &svrcfg.SvrCfg{
		Log:     e.Log,
		Config:  e.Config,
		Tracker: e.Tracker,
		Syncer:  e.Syncer,
	}
}

func (e *Env) Close() error {
	if e == nil || e.Store == nil {
		return nil
	}
	return e.Store.Close()
}
