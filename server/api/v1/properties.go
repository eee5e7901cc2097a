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
	"bytes"
	"net/http"

	"github.com/zintix-labs/tdtrack"
	"github.com/zintix-labs/tdtrack/dto"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/server/netsvr"
)

func (h *Handler) pathID(r *http.Request) (int64, error) {
	return dto.ParseID(netsvr.URLParam(r, "id"))
}

// ListProperties GET /api/properties
func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	q, err := dto.DecodePropertyQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	list, err := h.t.ListProperties(r.Context(), q)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// LookupProperty GET /api/properties/lookup
// 查無資料時回 404，body 為 {"property": null, "message": ...}。
func (h *Handler) LookupProperty(w http.ResponseWriter, r *http.Request) {
	p, err := h.t.LookupProperty(r.Context(), dto.DecodeLookup(r))
	switch {
	case errs.Is(err, errs.NotFound):
		writeJSON(w, http.StatusNotFound, dto.LookupResponse{Message: tdtrack.MsgPropertyNotFound})
	case err != nil:
		h.fail(w, r, err)
	default:
		writeJSON(w, http.StatusOK, dto.LookupResponse{Property: p})
	}
}

// PropertyDetail GET /api/properties/{id}
func (h *Handler) PropertyDetail(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	d, err := h.t.GetPropertyDetail(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// CreateProperty POST /api/properties
func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	in, err := dto.DecodePropertyInput(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.t.CreateProperty(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// UpdateProperty PUT /api/properties/{id}
func (h *Handler) UpdateProperty(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	patch, err := dto.DecodePropertyPatch(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.t.UpdateProperty(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// RegisterProperty POST /api/properties/{id}/register
func (h *Handler) RegisterProperty(w http.ResponseWriter, r *http.Request) {
	id, err := h.pathID(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.t.RegisterProperty(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ExportProperties GET /api/properties/export
// 先寫入緩衝區，查詢失敗時才能改回 JSON 錯誤。
func (h *Handler) ExportProperties(w http.ResponseWriter, r *http.Request) {
	q, err := dto.DecodePropertyQuery(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if _, err := h.t.ExportProperties(r.Context(), q, &buf); err != nil {
		h.fail(w, r, err)
		return
	}
	name := "tdt-dor-export-" + h.t.IDs().Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
