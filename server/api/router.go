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

package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	v1 "github.com/zintix-labs/tdtrack/server/api/v1"
	"github.com/zintix-labs/tdtrack/server/netsvr"
	"github.com/zintix-labs/tdtrack/server/netsvr/middleware"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
	"github.com/zintix-labs/tdtrack/server/web"
)

// RegisterRoutes 註冊全部路由。sCfg 須已通過 Vaild。
func RegisterRoutes(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) error {
	h, err := v1.NewHandler(sCfg)
	if err != nil {
		return err
	}
	registerMiddleware(svr, sCfg) // 1. 全域 middleware
	registerOps(svr, h)           // 2. 健康檢查與指標
	registerV1API(svr, sCfg, h)   // 3. /api
	registerWeb(svr, sCfg)        // 4. 靜態頁面
	return nil
}

// 全域 middleware；NotFound/MethodNotAllowed 必須在掛子路由前設定才會被繼承。
func registerMiddleware(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(sCfg.Log))
	svr.Use(middleware.Recover(sCfg.Log))
	svr.NotFound(v1.NotFound)
	svr.MethodNotAllowed(v1.MethodNotAllowed)
}

func registerOps(svr netsvr.NetRouter, h *v1.Handler) {
	svr.Get("/healthz", h.Health)
	svr.Handle("/metrics", promhttp.Handler())
}

func registerV1API(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg, h *v1.Handler) {
	sc := sCfg.Config.Server
	strict := middleware.RateLimit(sc.LoginRateLimit, time.Minute)

	svr.Group("/api", func(api netsvr.NetRouter) {
		api.Use(middleware.CORS(sc.CORSOrigins))
		api.Use(middleware.RateLimit(sc.RateLimit, time.Minute))
		api.Use(middleware.Timeout(sc.RequestTimeout))
		api.Use(middleware.Compression)

		api.Get("/properties", h.ListProperties)
		api.Post("/properties", h.CreateProperty)
		api.Get("/properties/lookup", h.LookupProperty)
		api.Get("/properties/export", h.ExportProperties)
		api.Get("/properties/{id}", h.PropertyDetail)
		api.Put("/properties/{id}", h.UpdateProperty)
		api.Post("/properties/{id}/register", h.RegisterProperty)

		api.Get("/payments", h.ListPayments)
		api.Post("/payments", h.CreatePayment)
		api.Get("/payments/{id}", h.GetPayment)

		api.Get("/dealers", h.ListDealers)
		api.Get("/states", h.ListStates)
		api.Get("/states/{code}/counties", h.ListCounties)
		api.Get("/states/{code}/municipalities", h.ListMunicipalities)
		api.Get("/offices/lookup", h.LookupOffice)
		api.Get("/stats", h.Stats)

		limited := api.With(strict)
		limited.Post("/login", h.Login)
		limited.Post("/sync", h.Sync)
	})
}

// 靜態頁面：其餘 GET 路徑交給 web.Handler 處理單頁回退。
func registerWeb(svr netsvr.NetRouter, sCfg *svrcfg.SvrCfg) {
	static := middleware.Compression(web.Handler(sCfg.Web))
	svr.Get("/", static.ServeHTTP)
	svr.Get("/*", static.ServeHTTP)
}
