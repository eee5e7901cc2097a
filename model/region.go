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

package model

import "time"

type State struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type County struct {
	ID      int64  `json:"id"`
	StateID int64  `json:"state_id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
}

type Municipality struct {
	ID      int64  `json:"id"`
	StateID int64  `json:"state_id"`
	Name    string `json:"name"`
}

// OfficeAccount 辦公室登入帳號。CountyCode 與 MunicipalityName 依身分層級擇一或皆空。
type OfficeAccount struct {
	ID               int64     `json:"id"`
	StateCode        string    `json:"state_code"`
	EntityType       string    `json:"entity_type"`
	CountyCode       *string   `json:"county_code"`
	MunicipalityName *string   `json:"municipality_name"`
	OfficeName       string    `json:"office_name"`
	Username         string    `json:"username"`
	PasswordHash     string    `json:"-"`
	IsActive         bool      `json:"is_active"`
	CreatedAt        time.Time `json:"created_at"`
}

// OfficeRef 不含憑證的帳號摘要，提供登入頁顯示。
type OfficeRef struct {
	EntityType string `json:"entity_type"`
	OfficeName string `json:"office_name"`
	Region     string `json:"region"`
}

// Session 登入成功後交給瀏覽器保存的狀態。伺服器不保存、也不信任它。
type Session struct {
	Username     string `json:"username"`
	State        string `json:"state"`
	EntityType   string `json:"entityType"`
	OfficeName   string `json:"officeName"`
	County       string `json:"county,omitempty"`
	CountyName   string `json:"countyName,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Redirect     string `json:"redirect"`
}
