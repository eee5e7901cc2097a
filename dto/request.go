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

// Package dto 負責 HTTP 請求的解碼與驗證，以及回應的資料形狀。
//
// 這裡只做解碼與基本型別轉換；業務規則（必填欄位、物件是否存在）由 tdtrack.Tracker 決定。
// 解碼失敗一律回傳 errs.Warn，由 httperr 對應為 400。
package dto

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/zintix-labs/tdtrack"
	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/store"
)

// MaxBody JSON body 上限（1MiB）。
const MaxBody = 1 << 20

// decodeJSON 讀取 body 並解碼到 v。
func decodeJSON(r *http.Request, v any) error {
	if r == nil || r.Body == nil {
		return errs.NewWarn("empty request body")
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxBody+1))
	if err != nil {
		return errs.NewWarn("read body: " + err.Error())
	}
	if len(data) > MaxBody {
		return errs.NewWarn("request body too large")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return errs.NewWarn("empty request body")
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errs.NewWarn("invalid json: " + err.Error())
	}
	return nil
}

// ParseID 解析路徑中的數字 id。
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.NewWarn(fmt.Sprintf("invalid id %q", s))
	}
	return id, nil
}

func queryBool(q map[string][]string, key string) (*bool, error) {
	vs := q[key]
	if len(vs) == 0 || vs[0] == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(vs[0])
	if err != nil {
		return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", key, err))
	}
	return &v, nil
}

func queryInt(q map[string][]string, key string) (int, error) {
	vs := q[key]
	if len(vs) == 0 || vs[0] == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(vs[0])
	if err != nil || v < 0 {
		return 0, errs.NewWarn(fmt.Sprintf("invalid %s: %q", key, vs[0]))
	}
	return v, nil
}

// DecodePropertyQuery 解析 GET /api/properties 與 /api/properties/export 的查詢參數。
//
// scenario 為 1..4 時精確比對；"none" 或 "0" 只列出合規（無情境）物件；缺省不過濾。
func DecodePropertyQuery(r *http.Request) (tdtrack.PropertyQuery, error) {
	q := r.URL.Query()
	out := tdtrack.PropertyQuery{
		Search:           strings.TrimSpace(q.Get("search")),
		LandUseCode:      q.Get("land_use_code"),
		NeighborhoodCode: q.Get("neighborhood_code"),
		ZipCode:          q.Get("zip_code"),
		Zoning:           q.Get("zoning"),
		City:             q.Get("city"),
	}
	if s := q.Get("scenario"); s != "" {
		sc, err := compliance.Parse(s)
		if err != nil {
			return out, errs.NewWarn(err.Error())
		}
		out.Scenario = &sc
	}
	var err error
	if out.Registered, err = queryBool(q, "registered"); err != nil {
		return out, err
	}
	if out.Active, err = queryBool(q, "active"); err != nil {
		return out, err
	}
	if out.Limit, err = queryInt(q, "limit"); err != nil {
		return out, err
	}
	if out.Offset, err = queryInt(q, "offset"); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeLookup 解析單筆查詢參數：pid / parcel_id、tdt / tdt_number、address。
func DecodeLookup(r *http.Request) tdtrack.LookupQuery {
	q := r.URL.Query()
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := strings.TrimSpace(q.Get(k)); v != "" {
				return v
			}
		}
		return ""
	}
	return tdtrack.LookupQuery{
		ParcelID:  first("pid", "parcel_id"),
		TDTNumber: first("tdt", "tdt_number"),
		Address:   first("address"),
	}
}

// PropertyBody POST /api/properties 的 body。
type PropertyBody struct {
	OwnerName          *string  `json:"owner_name"`
	Address            string   `json:"address"`
	City               string   `json:"city"`
	CountyName         string   `json:"county_name"`
	ZipCode            string   `json:"zip_code" validate:"omitempty,max=10"`
	ParcelID           string   `json:"parcel_id" validate:"omitempty,max=32"`
	Lat                *float64 `json:"lat" validate:"omitempty,latitude"`
	Lng                *float64 `json:"lng" validate:"omitempty,longitude"`
	HomesteadStatus    bool     `json:"homestead_status"`
	ZoningType         string   `json:"zoning_type"`
	IsRegistered       bool     `json:"is_registered"`
	IsActive           *bool    `json:"is_active"`
	ActiveDate         string   `json:"active_date"`
	InactiveDate       string   `json:"inactive_date"`
	ComplianceScenario *int     `json:"compliance_scenario" validate:"omitempty,min=1,max=4"`
}

// DecodePropertyInput 解碼並驗證新增物件的 body。
func DecodePropertyInput(r *http.Request) (tdtrack.PropertyInput, error) {
	var b PropertyBody
	if err := decodeJSON(r, &b); err != nil {
		return tdtrack.PropertyInput{}, err
	}
	if err := Validate(&b); err != nil {
		return tdtrack.PropertyInput{}, err
	}
	in := tdtrack.PropertyInput{
		OwnerName:          b.OwnerName,
		Address:            b.Address,
		City:               b.City,
		CountyName:         b.CountyName,
		ZipCode:            b.ZipCode,
		ParcelID:           b.ParcelID,
		Lat:                b.Lat,
		Lng:                b.Lng,
		HomesteadStatus:    b.HomesteadStatus,
		ZoningType:         b.ZoningType,
		IsRegistered:       b.IsRegistered,
		IsActive:           b.IsActive,
		ComplianceScenario: b.ComplianceScenario,
	}
	var err error
	if in.ActiveDate, err = optTime("active_date", b.ActiveDate); err != nil {
		return in, err
	}
	if in.InactiveDate, err = optTime("inactive_date", b.InactiveDate); err != nil {
		return in, err
	}
	return in, nil
}

func optTime(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := store.ParseTime(s)
	if err != nil {
		return nil, errs.NewWarn(fmt.Sprintf("invalid %s: %v", field, err))
	}
	return &t, nil
}

// DecodePropertyPatch 解碼 PUT /api/properties/{id} 的部分更新。
// 欄位名稱與值由 store.Patch.Normalize 依資料表定義檢查並轉型。
func DecodePropertyPatch(r *http.Request) (store.Patch, error) {
	patch := store.Patch{}
	if err := decodeJSON(r, &patch); err != nil {
		return nil, err
	}
	return patch, nil
}

// PaymentBody POST /api/payments 的 body。
type PaymentBody struct {
	PropertyID     *int64   `json:"property_id" validate:"omitempty,gt=0"`
	DealerID       *int64   `json:"dealer_id" validate:"omitempty,gt=0"`
	Amount         *float64 `json:"amount"`
	ExpectedAmount *float64 `json:"expected_amount" validate:"omitempty,gte=0"`
	PeriodStart    string   `json:"period_start"`
	PeriodEnd      string   `json:"period_end"`
	Notes          *string  `json:"notes" validate:"omitempty,max=2000"`
}

func DecodePaymentInput(r *http.Request) (tdtrack.PaymentInput, error) {
	var b PaymentBody
	if err := decodeJSON(r, &b); err != nil {
		return tdtrack.PaymentInput{}, err
	}
	if err := Validate(&b); err != nil {
		return tdtrack.PaymentInput{}, err
	}
	return tdtrack.PaymentInput{
		PropertyID:     b.PropertyID,
		DealerID:       b.DealerID,
		Amount:         b.Amount,
		ExpectedAmount: b.ExpectedAmount,
		PeriodStart:    b.PeriodStart,
		PeriodEnd:      b.PeriodEnd,
		Notes:          b.Notes,
	}, nil
}

// LoginBody POST /api/login 的 body。
type LoginBody struct {
	State        string `json:"state" validate:"omitempty,len=2"`
	EntityType   string `json:"entityType"`
	County       string `json:"county"`
	Municipality string `json:"municipality"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

// DecodeLogin 解碼登入 body。帳密是否為空交給 Tracker.Login 回報。
func DecodeLogin(r *http.Request) (tdtrack.LoginInput, error) {
	var b LoginBody
	if err := decodeJSON(r, &b); err != nil {
		return tdtrack.LoginInput{}, err
	}
	if err := Validate(&b); err != nil {
		return tdtrack.LoginInput{}, err
	}
	return tdtrack.LoginInput{
		OfficeQuery: tdtrack.OfficeQuery{
			State:        b.State,
			EntityType:   b.EntityType,
			County:       b.County,
			Municipality: b.Municipality,
		},
		Username: strings.TrimSpace(b.Username),
		Password: b.Password,
	}, nil
}

// DecodeOfficeQuery 解析 GET /api/offices/lookup 的查詢參數（entityType 與 entity_type 皆可）。
func DecodeOfficeQuery(r *http.Request) tdtrack.OfficeQuery {
	q := r.URL.Query()
	et := q.Get("entityType")
	if et == "" {
		et = q.Get("entity_type")
	}
	return tdtrack.OfficeQuery{
		State:        q.Get("state"),
		EntityType:   et,
		County:       q.Get("county"),
		Municipality: q.Get("municipality"),
	}
}
