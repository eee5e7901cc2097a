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
	"net/http"

	"github.com/zintix-labs/tdtrack/dto"
	"github.com/zintix-labs/tdtrack/server/netsvr"
)

// ListDealers GET /api/dealers（只含啟用中的業者）
func (h *Handler) ListDealers(w http.ResponseWriter, r *http.Request) {
	list, err := h.t.ListDealers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListStates GET /api/states
func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	list, err := h.t.ListStates(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListCounties GET /api/states/{code}/counties
func (h *Handler) ListCounties(w http.ResponseWriter, r *http.Request) {
	list, err := h.t.ListCounties(r.Context(), netsvr.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// ListMunicipalities GET /api/states/{code}/municipalities
func (h *Handler) ListMunicipalities(w http.ResponseWriter, r *http.Request) {
	list, err := h.t.ListMunicipalities(r.Context(), netsvr.URLParam(r, "code"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// LookupOffice GET /api/offices/lookup
func (h *Handler) LookupOffice(w http.ResponseWriter, r *http.Request) {
	ref, err := h.t.LookupOffice(r.Context(), dto.DecodeOfficeQuery(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// Login POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	in, err := dto.DecodeLogin(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.t.Login(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
