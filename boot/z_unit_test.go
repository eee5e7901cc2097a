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

package boot

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
)

func testConfig(t *testing.T) *svrcfg.Config {
	t.Helper()
	cfg := svrcfg.Defaults()
	cfg.Database.DSN = filepath.Join(t.TempDir(), "boot.db")
	cfg.Sync.Seed = 42
	return cfg
}

func TestOpenWithoutPlaces(t *testing.T) {
	ctx := context.Background()
	env, err := Open(ctx, testConfig(t), nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer env.Close()

	if env.Places != nil || env.Zoning != nil {
		t.Fatalf("expected no places client and no zoning index")
	}
	if env.Syncer.Configured() {
		t.Fatalf("syncer should not be configured without api key")
	}
	states, err := env.Tracker.ListStates(ctx)
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) == 0 {
		t.Fatalf("expected seeded states")
	}

	sc := env.ServerConfig()
	if err := sc.Vaild(); err != nil {
		t.Fatalf("server config invalid: %v", err)
	}
}

func TestOpenWithPlacesKey(t *testing.T) {
	cfg := testConfig(t)
	cfg.Places.APIKey = "k"
	env, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer env.Close()
	if env.Places == nil || !env.Syncer.Configured() {
		t.Fatalf("expected configured places client")
	}
}

func TestOpenRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Driver = "mysql"
	if _, err := Open(context.Background(), cfg, nil); !errs.Is(err, errs.Warn) {
		t.Fatalf("expected warn, got %v", err)
	}
}

func TestOpenMissingShapefile(t *testing.T) {
	cfg := testConfig(t)
	cfg.Zoning.Shapefile = filepath.Join(t.TempDir(), "missing.shp")
	if _, err := Open(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing shapefile")
	}
}

func TestCloseNil(t *testing.T) {
	var e *Env
	if err := e.Close(); err != nil {
		t.Fatalf("nil close: %v", err)
	}
}
