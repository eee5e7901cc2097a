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

package v1

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/zintix-labs/tdtrack/demodata"
	"github.com/zintix-labs/tdtrack/dto"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/places"
	"github.com/zintix-labs/tdtrack/server/httperr"
	"github.com/zintix-labs/tdtrack/stats"
)

// ReportTitle yaml/表格報表標題。
const ReportTitle = "TDT Compliance"

// Stats GET /api/stats
//
// 預設回傳 JSON 統計；?format=yaml 或 ?format=table 輸出含信賴區間的完整報表。
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		s, err := h.t.Stats(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, s)
		return
	}
	render := stats.RenderFor(format)
	if render == nil {
		h.fail(w, r, errs.Warnf("unknown format %q (json, yaml, table)", format))
		return
	}
	rep, err := h.t.Report(r.Context(), ReportTitle)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	ct := "text/plain; charset=utf-8"
	if format == "yaml" || format == "yml" {
		ct = "application/yaml; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	if err := rep.WriteWith(w, render); err != nil {
		h.log.Error("render stats", "err", err)
	}
}

// Sync POST /api/sync
//
// 產生示範資料。未設定 places 金鑰時回 500；上一輪尚未結束時回 409。
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	if h.sync == nil {
		h.fail(w, r, places.ErrNoAPIKey)
		return
	}
	res, err := h.sync.Run(r.Context())
	if errors.Is(err, demodata.ErrRunning) {
		httperr.Write(w, http.StatusConflict, errs.Public(err))
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Health GET /healthz
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	out := dto.Health{Status: "ok", Database: "ok", Places: h.sync != nil && h.sync.Configured()}
	status := http.StatusOK
	if err := h.t.Store().Ping(ctx); err != nil {
		out.Status, out.Database = "degraded", err.Error()
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, out)
}
