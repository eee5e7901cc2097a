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

// Package svrcfg 載入服務設定並檢查組裝所需的協作者。
//
// 設定分三層，後者覆蓋前者：
//  1. Defaults() 內建預設值
//  2. yaml 設定檔（--config 旗標或 TDT_CONFIG）
//  3. 環境變數：TDT_<SECTION>_<KEY>，例如 TDT_SERVER_ADDR → server.addr；
//     另外接受 PORT、GOOGLE_API_KEY、DATABASE_URL、DATABASE_DRIVER 等舊名稱。
package svrcfg

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/zintix-labs/tdtrack/dto"
	"github.com/zintix-labs/tdtrack/errs"
)

// EnvPrefix 環境變數前綴。
const EnvPrefix = "TDT_"

// ConfigPathEnv 指定設定檔路徑的環境變數。
const ConfigPathEnv = "TDT_CONFIG"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	Database DatabaseConfig `koanf:"database"`
	Places   PlacesConfig   `koanf:"places"`
	Sync     SyncConfig     `koanf:"sync"`
	Zoning   ZoningConfig   `koanf:"zoning"`
}

type ServerConfig struct {
	Addr           string        `koanf:"addr" validate:"required"`
	ReadTimeout    time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `koanf:"write_timeout" validate:"gt=0"`
	IdleTimeout    time.Duration `koanf:"idle_timeout" validate:"gt=0"`
	RequestTimeout time.Duration `koanf:"request_timeout" validate:"gt=0"`
	CORSOrigins    []string      `koanf:"cors_origins"`
	RateLimit      int           `koanf:"rate_limit" validate:"gte=0"`       // 每 IP 每分鐘，0 表示不限
	LoginRateLimit int           `koanf:"login_rate_limit" validate:"gte=0"` // 登入與同步另計
}

type LogConfig struct {
	Mode   string `koanf:"mode" validate:"oneof=dev prod silence"`
	Buffer int    `koanf:"buffer" validate:"gte=1"`
}

type DatabaseConfig struct {
	Driver      string `koanf:"driver" validate:"oneof=sqlite oracle"`
	DSN         string `koanf:"dsn" validate:"required"`
	Migrate     bool   `koanf:"migrate"`
	SeedRegions bool   `koanf:"seed_regions"`
}

type PlacesConfig struct {
	APIKey          string        `koanf:"api_key"`
	BaseURL         string        `koanf:"base_url" validate:"omitempty,url"`
	Radius          int           `koanf:"radius" validate:"gt=0"`
	PerArea         int           `koanf:"per_area" validate:"gt=0"`
	RPS             float64       `koanf:"rps" validate:"gte=0"`
	Timeout         time.Duration `koanf:"timeout" validate:"gt=0"`
	BreakerFailures int           `koanf:"breaker_failures" validate:"gte=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout" validate:"gt=0"`
}

type SyncConfig struct {
	Interval time.Duration `koanf:"interval" validate:"gte=0"` // 0 表示不排程
	Seed     int64         `koanf:"seed"`                      // 0 表示隨機
}

type ZoningConfig struct {
	Shapefile string `koanf:"shapefile"`
	Attribute string `koanf:"attribute" validate:"required_with=Shapefile"`
}

// Defaults 內建預設值。
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:           ":5000",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   90 * time.Second,
			IdleTimeout:    120 * time.Second,
			RequestTimeout: 60 * time.Second,
			CORSOrigins:    []string{"*"},
			RateLimit:      600,
			LoginRateLimit: 10,
		},
		Log: LogConfig{Mode: "dev", Buffer: 4096},
		Database: DatabaseConfig{
			Driver:      "sqlite",
			DSN:         "tdtrack.db",
			Migrate:     true,
			SeedRegions: true,
		},
		Places: PlacesConfig{
			Radius:          2000,
			PerArea:         5,
			RPS:             5,
			Timeout:         10 * time.Second,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Zoning: ZoningConfig{Attribute: "ZONING"},
	}
}

// legacy 舊部署使用的環境變數。
var legacy = map[string]string{
	"PORT":            "server.addr",
	"GOOGLE_API_KEY":  "places.api_key",
	"DATABASE_URL":    "database.dsn",
	"DATABASE_DRIVER": "database.driver",
	"LOG_MODE":        "log.mode",
}

// envKey 把環境變數名稱轉成設定路徑；不認得的名稱回傳空字串（忽略）。
func envKey(name string) string {
	if k, ok := legacy[name]; ok {
		return k
	}
	if !strings.HasPrefix(name, EnvPrefix) || name == ConfigPathEnv {
		return ""
	}
	section, key, ok := strings.Cut(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_")
	if !ok || key == "" {
		return ""
	}
	return section + "." + key
}

func envValue(name, value string) (string, any) {
	key := envKey(name)
	if key == "" || strings.TrimSpace(value) == "" {
		return "", nil
	}
	switch key {
	case "server.addr":
		// PORT=8080 與 TDT_SERVER_ADDR=8080 都視為只給埠號
		if !strings.Contains(value, ":") {
			value = ":" + value
		}
	case "server.cors_origins":
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return key, out
	}
	return key, value
}

// Load 依序套用預設值、設定檔與環境變數，並驗證結果。
// path 為空時改看 TDT_CONFIG；兩者皆空則略過設定檔。
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		return nil, errs.Wrap(err, "load defaults")
	}
	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errs.NewWarn("load config file " + path + ": " + err.Error())
		}
	}
	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, errs.Wrap(err, "load environment")
	}
	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errs.NewWarn("invalid config: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 檢查欄位範圍；失敗時回傳 Warn。
func (c *Config) Validate() error {
	if err := dto.Validate(c); err != nil {
		return errs.NewWarn("invalid config: " + errs.Public(err))
	}
	return nil
}
