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

// Package model 定義持久化實體與 API 回應型別。
//
// JSON 欄位名稱與資料表欄位一致（snake_case），可為 NULL 的欄位使用指標。
package model

import "time"

// Property 短期出租物件（地籍資料 + TDT 登記狀態）。
type Property struct {
	ID       int64  `json:"id"`
	ParcelID string `json:"parcel_id"`

	// 所有權人
	UserAccount     *string `json:"user_account"`
	OwnerName       *string `json:"owner_name"`
	OwnerName2      *string `json:"owner_name2"`
	OwnerName3      *string `json:"owner_name3"`
	OwnerStreet1    *string `json:"owner_street1"`
	OwnerStreet2    *string `json:"owner_street2"`
	OwnerCity       *string `json:"owner_city"`
	OwnerState      *string `json:"owner_state"`
	OwnerPostal     *string `json:"owner_postal"`
	OwnerCountyCode *string `json:"owner_county_code"`

	// 坐落位置
	Address        string   `json:"address"`
	StreetNumber   *string  `json:"street_number"`
	LocDescription *string  `json:"loc_description"`
	LocUnit        *string  `json:"loc_unit"`
	LocDirPrefix   *string  `json:"loc_dir_prefix"`
	LocDirSuffix   *string  `json:"loc_dir_suffix"`
	City           string   `json:"city"`
	LocState       *string  `json:"loc_state"`
	ZipCode        string   `json:"zip_code"`
	CountyName     *string  `json:"county_name"`
	Lat            *float64 `json:"lat"`
	Lng            *float64 `json:"lng"`
	GooglePlaceID  *string  `json:"google_place_id"`

	// 地政代碼
	LandUseCode       *string  `json:"land_use_code"`
	NeighborhoodCode  *string  `json:"neighborhood_code"`
	LocationState     *string  `json:"location_state"`
	PriorID1          *string  `json:"prior_id1"`
	PriorID2          *string  `json:"prior_id2"`
	PriorID3          *string  `json:"prior_id3"`
	Census            *string  `json:"census"`
	Utilities1        *string  `json:"utilities1"`
	Utilities2        *string  `json:"utilities2"`
	GulfBay           *string  `json:"gulf_bay"`
	Description       *string  `json:"description"`
	LegalDescription1 *string  `json:"legal_description1"`
	LegalDescription2 *string  `json:"legal_description2"`
	LegalDescription3 *string  `json:"legal_description3"`
	LegalDescription4 *string  `json:"legal_description4"`
	TotalLand         *float64 `json:"total_land"`
	LandUnitType      *string  `json:"land_unit_type"`
	Zoning1           *string  `json:"zoning1"`
	Zoning2           *string  `json:"zoning2"`
	Zoning3           *string  `json:"zoning3"`
	ZoningType        *string  `json:"zoning_type"`
	PropertyStatus    *string  `json:"property_status"`

	// TDT 登記
	TDTNumber          *string    `json:"tdt_number"`
	HomesteadStatus    bool       `json:"homestead_status"`
	IsRegistered       bool       `json:"is_registered"`
	RegistrationDate   *time.Time `json:"registration_date"`
	IsActive           bool       `json:"is_active"`
	ActiveDate         *time.Time `json:"active_date"`
	InactiveDate       *time.Time `json:"inactive_date"`
	ComplianceScenario *int       `json:"compliance_scenario"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment TDT 繳款紀錄。Property / Dealer 為查詢時帶出的關聯摘要。
type Payment struct {
	ID             int64      `json:"id"`
	TransactionID  string     `json:"transaction_id"`
	PropertyID     int64      `json:"property_id"`
	DealerID       *int64     `json:"dealer_id"`
	Amount         float64    `json:"amount"`
	PeriodStart    string     `json:"period_start"` // YYYY-MM-DD
	PeriodEnd      string     `json:"period_end"`   // YYYY-MM-DD
	PaymentDate    *time.Time `json:"payment_date"`
	ExpectedAmount *float64   `json:"expected_amount"`
	Verified       bool       `json:"verified"`
	Notes          *string    `json:"notes"`
	CreatedAt      time.Time  `json:"created_at"`

	Property *PaymentProperty `json:"properties,omitempty"`
	Dealer   *PaymentDealer   `json:"dealers,omitempty"`
}

type PaymentProperty struct {
	Address   string  `json:"address"`
	City      string  `json:"city"`
	TDTNumber *string `json:"tdt_number,omitempty"`
}

type PaymentDealer struct {
	Name string `json:"name"`
}

// 付款期間的日期格式。
const DateLayout = "2006-01-02"

// Dealer 代收代付的平台或個人業者。
type Dealer struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DealerType   string    `json:"dealer_type"` // platform | mom_and_pop
	ContactEmail *string   `json:"contact_email"`
	ContactPhone *string   `json:"contact_phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

const (
	DealerPlatform  = "platform"
	DealerMomAndPop = "mom_and_pop"
)

// Record 地籍子資料（sales/buildings/land/property_values/exemptions）的一列，欄位名稱 → 值。
type Record map[string]any

// PropertyDetail 物件明細：物件本身加上依地號帶出的子資料。清單一律非 nil。
type PropertyDetail struct {
	*Property
	Payments   []Payment `json:"payments"`
	Sales      []Record  `json:"sales"`
	Buildings  []Record  `json:"buildings"`
	Land       []Record  `json:"land"`
	Values     []Record  `json:"values"`
	Exemptions []Record  `json:"exemptions"`
}
