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

package tdtrack

import (
	"context"
	"strings"
	"time"

	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/store"
)

// PropertyQuery 物件列表可用的過濾條件。零值欄位代表不過濾。
type PropertyQuery struct {
	Scenario         *compliance.Scenario // None 代表只列合規（NULL）
	Search           string               // address / parcel_id / tdt_number / owner_name 子字串
	LandUseCode      string
	NeighborhoodCode string
	ZipCode          string
	Zoning           string // zoning1..3 子字串
	City             string // 子字串
	Registered       *bool
	Active           *bool
	Limit            int
	Offset           int
}

// Filter 將查詢條件轉為參數化的 store.Filter。
func (q PropertyQuery) Filter() store.Filter {
	var f store.Filter
	if q.Scenario != nil {
		if p := q.Scenario.Ptr(); p != nil {
			f = f.And(store.Eq("compliance_scenario", *p))
		} else {
			f = f.And(store.IsNull("compliance_scenario"))
		}
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		f = f.And(store.AnyContains(s, "address", "parcel_id", "tdt_number", "owner_name"))
	}
	if q.LandUseCode != "" {
		f = f.And(store.Eq("land_use_code", q.LandUseCode))
	}
	if q.NeighborhoodCode != "" {
		f = f.And(store.Eq("neighborhood_code", q.NeighborhoodCode))
	}
	if q.ZipCode != "" {
		f = f.And(store.Eq("zip_code", q.ZipCode))
	}
	if z := strings.TrimSpace(q.Zoning); z != "" {
		f = f.And(store.AnyContains(z, "zoning1", "zoning2", "zoning3"))
	}
	if c := strings.TrimSpace(q.City); c != "" {
		f = f.And(store.Contains("city", c))
	}
	if q.Registered != nil {
		f = f.And(boolPred("is_registered", *q.Registered))
	}
	if q.Active != nil {
		f = f.And(boolPred("is_active", *q.Active))
	}
	return f
}

func boolPred(col string, v bool) store.Pred {
	if v {
		return store.IsTrue(col)
	}
	return store.IsFalse(col)
}

// ListProperties 依條件列出物件，最新建立者在前。
func (t *Tracker) ListProperties(ctx context.Context, q PropertyQuery) ([]model.Property, error) {
	return t.st.ListProperties(ctx, q.Filter(), q.Limit, q.Offset)
}

// LookupQuery 單筆物件查詢：依序比對地號、TDT 編號、地址（子字串）。
type LookupQuery struct {
	ParcelID  string
	TDTNumber string
	Address   string
}

// LookupProperty 回傳第一筆符合的物件；沒有任何條件時回傳 Warn。
func (t *Tracker) LookupProperty(ctx context.Context, q LookupQuery) (*model.Property, error) {
	var f store.Filter
	switch {
	case q.ParcelID != "":
		f = store.Filter{store.Eq("parcel_id", q.ParcelID)}
	case q.TDTNumber != "":
		f = store.Filter{store.Eq("tdt_number", q.TDTNumber)}
	case q.Address != "":
		f = store.Filter{store.Contains("address", q.Address)}
	default:
		return nil, errs.NewWarn(MsgMissingLookup)
	}
	p, err := t.st.FindProperty(ctx, f)
	if err != nil {
		return nil, mapNotFound(err, MsgPropertyNotFound)
	}
	return p, nil
}

// GetProperty 依 id 取得物件。
func (t *Tracker) GetProperty(ctx context.Context, id int64) (*model.Property, error) {
	p, err := t.st.GetProperty(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, MsgPropertyNotFound)
	}
	return p, nil
}

// GetPropertyDetail 物件明細：繳款紀錄與依地號帶出的地籍子資料。
// 子資料讀取失敗只記錄並回傳空清單，不視為錯誤。
func (t *Tracker) GetPropertyDetail(ctx context.Context, id int64) (*model.PropertyDetail, error) {
	p, err := t.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	pays, err := t.st.PaymentsForProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	d := &model.PropertyDetail{Property: p, Payments: pays}
	for _, sub := range []struct {
		table string
		dst   *[]model.Record
	}{
		{store.Sales.Name, &d.Sales},
		{store.Buildings.Name, &d.Buildings},
		{store.Land.Name, &d.Land},
		{store.PropertyValues.Name, &d.Values},
		{store.Exemptions.Name, &d.Exemptions},
	} {
		recs, err := t.st.ParcelRecords(ctx, sub.table, p.ParcelID)
		if err != nil {
			t.log.Warn("parcel records unavailable", "table", sub.table, "parcel_id", p.ParcelID, "err", err)
			recs = []model.Record{}
		}
		*sub.dst = recs
	}
	return d, nil
}

// PropertyInput 新增物件的輸入。指標欄位為 nil 時套用預設值。
type PropertyInput struct {
	OwnerName          *string
	Address            string
	City               string
	CountyName         string
	ZipCode            string
	ParcelID           string
	Lat                *float64
	Lng                *float64
	HomesteadStatus    bool
	ZoningType         string
	IsRegistered       bool
	IsActive           *bool
	ActiveDate         *time.Time
	InactiveDate       *time.Time
	ComplianceScenario *int
}

// CreateProperty 新增物件。
//
// 預設值：city / county_name 為 Sarasota，地號缺省時自動產生，zoning_type 為 residential，is_active 為 true。
// 已登記時同時發給 TDT 編號並記錄登記日；active_date 未提供時也以登記日補上。
func (t *Tracker) CreateProperty(ctx context.Context, in PropertyInput) (*model.Property, error) {
	var missing []string
	if strings.TrimSpace(in.Address) == "" {
		missing = append(missing, "address")
	}
	if strings.TrimSpace(in.ZipCode) == "" {
		missing = append(missing, "zip_code")
	}
	if len(missing) > 0 {
		return nil, errs.NewWarn("Missing required fields: " + strings.Join(missing, ", "))
	}
	if in.ComplianceScenario != nil && (*in.ComplianceScenario < 1 || *in.ComplianceScenario > 4) {
		return nil, errs.Warnf("invalid compliance_scenario %d", *in.ComplianceScenario)
	}

	now := t.ids.Now().UTC()
	p := &model.Property{
		OwnerName:          in.OwnerName,
		Address:            strings.TrimSpace(in.Address),
		City:               orDefault(in.City, DefaultCity),
		CountyName:         ptr(orDefault(in.CountyName, DefaultCounty)),
		ZipCode:            strings.TrimSpace(in.ZipCode),
		ParcelID:           in.ParcelID,
		Lat:                in.Lat,
		Lng:                in.Lng,
		HomesteadStatus:    in.HomesteadStatus,
		ZoningType:         ptr(orDefault(in.ZoningType, DefaultZoningType)),
		IsRegistered:       in.IsRegistered,
		IsActive:           true,
		ActiveDate:         in.ActiveDate,
		InactiveDate:       in.InactiveDate,
		ComplianceScenario: in.ComplianceScenario,
	}
	if p.ParcelID == "" {
		p.ParcelID = t.ids.ParcelID()
	}
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.IsRegistered {
		p.TDTNumber = ptr(t.ids.TDTNumber())
		p.RegistrationDate = &now
		if p.ActiveDate == nil {
			p.ActiveDate = &now
		}
	}
	if err := t.st.InsertProperty(ctx, p); err != nil {
		return nil, err
	}
	return t.GetProperty(ctx, p.ID)
}

// UpdateProperty 套用部分更新。
//
// 當 patch 設定 is_registered=true、沒有帶 tdt_number，且目前資料列尚未有 TDT 編號時，
// 會產生一組新的 TDT 編號並記錄登記日。已有編號的物件重送相同更新不會換號。
func (t *Tracker) UpdateProperty(ctx context.Context, id int64, patch store.Patch) (*model.Property, error) {
	if len(patch) == 0 {
		return nil, errs.NewWarn("No fields to update")
	}
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}
	cur, err := t.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if reg, ok := patch["is_registered"].(bool); ok && reg {
		if _, has := patch["tdt_number"]; !has && cur.TDTNumber == nil {
			patch["tdt_number"] = t.ids.TDTNumber()
			if _, has := patch["registration_date"]; !has {
				patch["registration_date"] = t.ids.Now().UTC()
			}
		}
	}
	p, err := t.st.UpdateProperty(ctx, id, patch)
	if err != nil {
		return nil, mapNotFound(err, MsgPropertyNotFound)
	}
	return p, nil
}

// RegisterProperty 登記物件：標記為已登記且啟用。
// 已發過的 TDT 編號與登記日保留不變；尚未發號時產生新編號。
func (t *Tracker) RegisterProperty(ctx context.Context, id int64) (*model.Property, error) {
	cur, err := t.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	now := t.ids.Now().UTC()
	patch := store.Patch{"is_registered": true, "is_active": true}
	if cur.TDTNumber == nil {
		patch["tdt_number"] = t.ids.TDTNumber()
	}
	if cur.RegistrationDate == nil {
		patch["registration_date"] = now
	}
	if cur.ActiveDate == nil {
		patch["active_date"] = now
	}
	p, err := t.st.UpdateProperty(ctx, id, patch)
	if err != nil {
		return nil, mapNotFound(err, MsgPropertyNotFound)
	}
	t.log.Info("property registered", "id", id, "tdt_number", deref(p.TDTNumber))
	return p, nil
}

func ptr[T any](v T) *T { return &v }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
