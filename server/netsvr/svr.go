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

package netsvr

import (
	"net/http"

	"github.com/zintix-labs/tdtrack/server/app"
)

// NetSvr 封裝「路由行為 + 服務啟停」。
//   - 只交給最外層組裝者使用，其餘層只面向 NetRouter。
//   - 同時實作 app.Component，可直接交給 app.App 管理生命週期。
type NetSvr interface {
	NetRouter
	app.Component
}

// NetRouter 純路由行為；Group/With 回呼只拿得到 NetRouter，無法控制服務啟停。
type NetRouter interface {
	// middleware
	Use(middleware func(http.Handler) http.Handler)
	// With 回傳套用額外 middleware 的路由器，只影響之後在其上註冊的路由。
	With(middlewares ...func(http.Handler) http.Handler) NetRouter

	// 註冊路由
	Get(path string, h http.HandlerFunc)
	Post(path string, h http.HandlerFunc)
	Put(path string, h http.HandlerFunc)
	Delete(path string, h http.HandlerFunc)
	Handle(pattern string, h http.Handler)

	// 找不到路由與方法不允許時的回應；需在 Group 之前設定，子路由才會繼承。
	NotFound(h http.HandlerFunc)
	MethodNotAllowed(h http.HandlerFunc)

	// 群組路由
	Group(path string, fn func(NetRouter))
}
