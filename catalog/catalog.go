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

// Package catalog 提供內建的參考資料：同步搜尋區域、預設 dealer、州/郡/市鎮、
// 備援示範地址與登入身分。
//
// 資料以 yaml 內嵌於執行檔，部署時可用外部目錄覆寫同名檔案。
package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sync"

	"github.com/zintix-labs/tdtrack/errs"
	"gopkg.in/yaml.v3"
)

//go:embed data/*.yaml
var builtin embed.FS

const (
	fileAreas    = "areas.yaml"
	fileDealers  = "dealers.yaml"
	fileRegions  = "regions.yaml"
	fileFallback = "fallback.yaml"
	fileRoles    = "roles.yaml"
)

// DefaultRedirect 未知身分登入後導向的頁面。
const DefaultRedirect = "/tax-collector.html"

// Scope 身分對應的區域層級。
type Scope string

const (
	ScopeCounty       Scope = "county"
	ScopeMunicipality Scope = "municipality"
	ScopeState        Scope = "state"
)

type Area struct {
	Name string  `yaml:"name" json:"name"`
	Lat  float64 `yaml:"lat" json:"lat"`
	Lng  float64 `yaml:"lng" json:"lng"`
}

type DealerSeed struct {
	Name         string `yaml:"name"`
	DealerType   string `yaml:"dealer_type"`
	ContactEmail string `yaml:"contact_email"`
	Primary      bool   `yaml:"primary"`
}

type County struct {
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`
}

type State struct {
	Code           string   `yaml:"code"`
	Name           string   `yaml:"name"`
	Counties       []County `yaml:"counties"`
	Municipalities []string `yaml:"municipalities"`
}

type Address struct {
	Address string  `yaml:"address"`
	City    string  `yaml:"city"`
	Zip     string  `yaml:"zip"`
	Lat     float64 `yaml:"lat"`
	Lng     float64 `yaml:"lng"`
}

type Role struct {
	EntityType string `yaml:"entity_type" json:"entity_type"`
	Label      string `yaml:"label" json:"label"`
	Scope      Scope  `yaml:"scope" json:"scope"`
	Redirect   string `yaml:"redirect" json:"redirect"`
}

// Catalog 參考資料集合；載入後唯讀。
type Catalog struct {
	Areas    []Area
	Dealers  []DealerSeed
	States   []State
	Fallback []Address
	Roles    []Role
}

var (
	defOnce sync.Once
	defCat  *Catalog
	defErr  error
)

// Default 回傳只含內建資料的 Catalog。
func Default() (*Catalog, error) {
	defOnce.Do(func() {
		defCat, defErr = Load()
	})
	return defCat, defErr
}

// MustDefault 與 Default 相同，內建資料損毀時 panic。
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

// Load 讀取內建資料，overrides 依序覆寫同名檔案（後者優先）。
func Load(overrides ...fs.FS) (*Catalog, error) {
	base, err := fs.Sub(builtin, "data")
	if err != nil {
		return nil, errs.Wrap(err, "catalog: builtin data missing")
	}
	layers := append([]fs.FS{base}, overrides...)

	c := &Catalog{}
	var doc struct {
		Areas     []Area       `yaml:"areas"`
		Dealers   []DealerSeed `yaml:"dealers"`
		States    []State      `yaml:"states"`
		Addresses []Address    `yaml:"addresses"`
		Roles     []Role       `yaml:"roles"`
	}
	for _, name := range []string{fileAreas, fileDealers, fileRegions, fileFallback, fileRoles} {
		raw, err := readTop(layers, name)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, errs.Wrap(err, "catalog: parse "+name)
		}
	}
	c.Areas = doc.Areas
	c.Dealers = doc.Dealers
	c.States = doc.States
	c.Fallback = doc.Addresses
	c.Roles = doc.Roles
	if err := c.check(); err != nil {
		return nil, err
	}
	return c, nil
}

// readTop 由最上層開始找檔案。
func readTop(layers []fs.FS, name string) ([]byte, error) {
	for i := len(layers) - 1; i >= 0; i-- {
		if layers[i] == nil {
			continue
		}
		raw, err := fs.ReadFile(layers[i], name)
		if err == nil {
			return raw, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, errs.Wrap(err, "catalog: read "+name)
		}
	}
	return nil, errs.NewFatal(fmt.Sprintf("catalog: %s not found", name))
}

func (c *Catalog) check() error {
	if len(c.Areas) == 0 {
		return errs.NewFatal("catalog: no search areas")
	}
	seen := map[string]struct{}{}
	for _, r := range c.Roles {
		if _, dup := seen[r.EntityType]; dup {
			return errs.NewFatal("catalog: duplicate role " + r.EntityType)
		}
		seen[r.EntityType] = struct{}{}
		switch r.Scope {
		case ScopeCounty, ScopeMunicipality, ScopeState:
		default:
			return errs.NewFatal(fmt.Sprintf("catalog: role %s has unknown scope %q", r.EntityType, r.Scope))
		}
	}
	return nil
}

// Role 依 entity type 查詢身分。
func (c *Catalog) Role(entityType string) (Role, bool) {
	for _, r := range c.Roles {
		if r.EntityType == entityType {
			return r, true
		}
	}
	return Role{}, false
}

// RedirectFor 回傳登入後的導向頁面。
func (c *Catalog) RedirectFor(entityType string) string {
	if r, ok := c.Role(entityType); ok && r.Redirect != "" {
		return r.Redirect
	}
	return DefaultRedirect
}

// State 依州代碼查詢。
func (c *Catalog) State(code string) (State, bool) {
	for _, s := range c.States {
		if s.Code == code {
			return s, true
		}
	}
	return State{}, false
}

// CountyName 依州與郡代碼回傳郡名，查無時回傳代碼本身。
func (c *Catalog) CountyName(stateCode, countyCode string) string {
	s, ok := c.State(stateCode)
	if !ok {
		return countyCode
	}
	for _, ct := range s.Counties {
		if ct.Code == countyCode {
			return ct.Name
		}
	}
	return countyCode
}

// PrimaryDealers 回傳標記為 primary 的 dealer 名稱（依檔案順序）。
func (c *Catalog) PrimaryDealers() []string {
	out := make([]string, 0, 2)
	for _, d := range c.Dealers {
		if d.Primary {
			out = append(out, d.Name)
		}
	}
	return out
}
