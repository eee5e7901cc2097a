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

// Package v1 實作 /api 底下的 HTTP handler。
//
// handler 只做三件事：以 dto 解碼請求、呼叫 tdtrack.Tracker、以 JSON 寫回結果。
// 錯誤一律交給 httperr，依 errs 等級決定狀態碼。
package v1

import (
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/zintix-labs/tdtrack"
	"github.com/zintix-labs/tdtrack/demodata"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/server/httperr"
	"github.com/zintix-labs/tdtrack/server/svrcfg"
)

// Handler 持有所有 /api handler 共用的協作者。
type Handler struct {
	t    *tdtrack.Tracker
	sync *demodata.Syncer
	log  *slog.Logger
}

func NewHandler(sCfg *svrcfg.SvrCfg) (*Handler, error) {
	if sCfg == nil || sCfg.Tracker == nil {
		return nil, errs.NewFatal("build api handler: tracker is required")
	}
	return &Handler{t: sCfg.Tracker, sync: sCfg.Syncer, log: sCfg.Log}, nil
}

// writeJSON 先完整編碼再寫出，編碼失敗時仍能回傳正確的錯誤狀態碼。
func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, "encode response"))
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}

// fail 記錄需要關注的錯誤並寫回 JSON 錯誤。
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	httperr.Log(h.log, r.Method+" "+r.URL.Path, err)
	httperr.Errs(w, err)
}

// NotFound 未知的 /api 路徑。
func NotFound(w http.ResponseWriter, r *http.Request) {
	httperr.Write(w, http.StatusNotFound, "API endpoint not found")
}

// MethodNotAllowed 路徑存在但方法不支援。
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httperr.Write(w, http.StatusMethodNotAllowed, "Method not allowed")
}
