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

// ListPayments GET /api/payments
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	list, err := h.t.ListPayments(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GetPayment GET /api/payments/{id}
func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := dto.ParseID(netsvr.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.t.GetPayment(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePayment POST /api/payments
func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	in, err := dto.DecodePaymentInput(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	p, err := h.t.CreatePayment(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
