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

// Package tdtrack 是觀光發展稅（Tourist Development Tax, TDT）登記與合規追蹤服務的組裝入口。
//
// Tracker 把三個地基組在一起，對外提供業務操作（物件、繳款、業者、區域、統計、登入）：
//  1. store.Store：持久層（sqlite 或 oracle），負責參數化查詢與資料表定義。
//  2. catalog.Catalog：內建參考資料（搜尋區域、預設業者、州郡市鎮、登入身分）。
//  3. ident.Generator：識別碼產生器（交易編號、TDT 編號、地號）與時鐘。
//
// HTTP handler、CLI 與同步作業都只透過 Tracker 操作資料；Tracker 本身不保存跨請求的可變狀態。
//
// 錯誤一律使用 errs.E：
//   - errs.Warn     → 請求/參數問題（400）
//   - errs.NotFound → 查無資料（404）
//   - errs.Denied   → 帳號或密碼錯誤（401）
//   - 其他          → 系統錯誤（500），訊息附上底層原因
//
// 合規情境（compliance_scenario）只在示範資料產生時計算一次，Tracker 不會依繳款狀態重算。
package tdtrack

import (
	"log/slog"

	"github.com/zintix-labs/tdtrack/catalog"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/ident"
	"github.com/zintix-labs/tdtrack/store"
)

// 對外固定的錯誤訊息。
const (
	MsgPropertyNotFound = "Property not found"
	MsgPaymentNotFound  = "Payment not found"
	MsgStateNotFound    = "State not found"
	MsgMissingLookup    = "Missing search parameter (pid, tdt, or address)"
)

// 新增物件時的預設值。
const (
	DefaultCity       = "Sarasota"
	DefaultCounty     = "Sarasota"
	DefaultZoningType = "residential"
)

// 列表與儀表板的筆數上限。
const (
	PaymentListLimit = 100
	RecentLimit      = 10
)

// Options 建立 Tracker 所需的協作者。Store 必填，其餘為 nil 時使用預設值。
type Options struct {
	Store   *store.Store
	Catalog *catalog.Catalog
	IDs     *ident.Generator
	Log     *slog.Logger
}

// Tracker 業務操作入口，可安全地被多個 goroutine 共用。
type Tracker struct {
	st  *store.Store
	cat *catalog.Catalog
	ids *ident.Generator
	log *slog.Logger
}

// New 建立 Tracker。
func New(opt Options) (*Tracker, error) {
	if opt.Store == nil {
		return nil, errs.NewFatal("store required")
	}
	if opt.Catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		opt.Catalog = c
	}
	if opt.IDs == nil {
		opt.IDs = ident.NewGenerator(nil, nil)
	}
	if opt.Log == nil {
		opt.Log = slog.Default()
	}
	return &Tracker{st: opt.Store, cat: opt.Catalog, ids: opt.IDs, log: opt.Log}, nil
}

func (t *Tracker) Store() *store.Store       { return t.st }
func (t *Tracker) Catalog() *catalog.Catalog { return t.cat }
func (t *Tracker) IDs() *ident.Generator     { return t.ids }
func (t *Tracker) Logger() *slog.Logger      { return t.log }

// mapNotFound 把 store 的通用查無錯誤換成對外訊息；其他錯誤原樣回傳。
func mapNotFound(err error, msg string) error {
	if errs.Is(err, errs.NotFound) {
		return errs.NewNotFound(msg)
	}
	return err
}
