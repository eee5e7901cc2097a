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

package dto

import (
	"github.com/zintix-labs/tdtrack/model"
)

// LookupResponse /api/properties/lookup 的回應；找不到時 Property 為 null 並附上訊息。
type LookupResponse struct {
	Property *model.Property `json:"property"`
	Message  string          `json:"message,omitempty"`
}

// Health /healthz 的回應。
type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Places   bool   `json:"places"`
}
