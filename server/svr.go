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

// Package server 是 HTTP 服務的組裝器（assembler）與啟動入口。
//
// 所有依賴（Tracker、Syncer、logger、設定）都透過 svrcfg.SvrCfg 明確注入；
// 本包不讀檔案也不讀環境變數，那是 cmd/svr 的工作。
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/zintix-labs/tdtrack/demodata"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/server/api"
	"github.com/zintix-labs/tdtrack/server/app"
	"github.com/zintix-labs/tdtrack/server/netsvr"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
)

// NewServer 驗證設定、建立 chi 服務並註冊路由，但不啟動。
func NewServer(sCfg *svrcfg.SvrCfg) (*netsvr.ChiAdapter, error) {
	if err := sCfg.Vaild(); err != nil {
		return nil, err
	}
	sc := sCfg.Config.Server
	svr := netsvr.NewChiServer(sc.Addr, netsvr.Timeouts{
		Read:  sc.ReadTimeout,
		Write: sc.WriteTimeout,
		Idle:  sc.IdleTimeout,
	})
	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		return nil, err
	}
	return svr, nil
}

// NewHandler 回傳完整路由，供 httptest 或嵌入既有服務使用。
func NewHandler(sCfg *svrcfg.SvrCfg) (http.Handler, error) {
	svr, err := NewServer(sCfg)
	if err != nil {
		return nil, err
	}
	return svr.Handler(), nil
}

// Run 組裝並啟動服務，阻塞直到收到終止信號或服務異常結束。
//
// 設定了 sync.interval 且有 Syncer 時，同步排程會與 HTTP 服務一起註冊到 app，
// 關閉時先停排程再停服務。
func Run(sCfg *svrcfg.SvrCfg) error {
	svr, err := NewServer(sCfg)
	if err != nil {
		// logger 可能不可用，額外輸出到 stderr
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return RunWithSvr(sCfg, svr)
}

// RunWithSvr 以呼叫端提供、且已註冊好路由的 NetSvr 啟動。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) error {
	if svr == nil {
		return errs.NewFatal("svr is required")
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		return errs.NewFatal("server is not ready")
	}
	a := app.NewWith(svr).WithLogger(sCfg.Log)
	if iv := sCfg.Config.Sync.Interval; iv > 0 && sCfg.Syncer != nil && sCfg.Syncer.Configured() {
		a.Register(demodata.NewScheduler(sCfg.Syncer, iv, sCfg.Log))
		sCfg.Log.Info("[tdtrack] sync scheduled", slog.Duration("interval", iv))
	}
	sCfg.Log.Info("[tdtrack] listening on http://localhost" + sCfg.Config.Server.Addr)
	if err := a.Run(); err != nil {
		sCfg.Log.Error("app stopped", slog.Any("err", err))
		return err
	}
	return nil
}
