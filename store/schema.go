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

package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

// ColType 欄位的邏輯型別；各 dialect 自行對應實際 SQL 型別。
type ColType uint8

const (
	Text ColType = iota
	LongText
	Real
	Integer
	Bool
	Timestamp
	Date // 以 YYYY-MM-DD 字串保存
)

// ColumnDef 欄位定義。
type ColumnDef struct {
	Name    string
	Type    ColType
	NotNull bool
	Unique  bool
}

// TableDef 資料表定義（不含 id 主鍵，id 一律由 dialect 產生）。
type TableDef struct {
	Name    string
	Columns []ColumnDef
	Indexes []string // 單欄索引
	OrderBy string   // 子資料預設排序
	byName  map[string]int
}

func newTable(name string, cols ...ColumnDef) *TableDef {
	t := &TableDef{Name: name, Columns: cols, byName: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.byName[c.Name] = i
	}
	return t
}

func (t *TableDef) withIndexes(cols ...string) *TableDef {
	t.Indexes = append(t.Indexes, cols...)
	return t
}

func (t *TableDef) orderBy(expr string) *TableDef {
	t.OrderBy = expr
	return t
}

// Has 回報欄位是否存在；"id" 視為存在。
func (t *TableDef) Has(col string) bool {
	if col == "id" {
		return true
	}
	_, ok := t.byName[col]
	return ok
}

// Col 依名稱取得欄位定義。
func (t *TableDef) Col(name string) (ColumnDef, bool) {
	i, ok := t.byName[name]
	if !ok {
		return ColumnDef{}, false
	}
	return t.Columns[i], true
}

// Names 依定義順序回傳欄位名稱（不含 id）。
func (t *TableDef) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

func col(name string, typ ColType) ColumnDef { return ColumnDef{Name: name, Type: typ} }
func req(name string, typ ColType) ColumnDef { return ColumnDef{Name: name, Type: typ, NotNull: true} }
func uniq(name string, typ ColType, notNull bool) ColumnDef {
	return ColumnDef{Name: name, Type: typ, NotNull: notNull, Unique: true}
}

// -----------------------------------------------------------------------------
//  資料表
// -----------------------------------------------------------------------------

var (
	Properties = newTable("properties",
		uniq("parcel_id", Text, true),
		col("user_account", Text),
		col("owner_name", Text),
		col("owner_name2", Text),
		col("owner_name3", Text),
		col("owner_street1", Text),
		col("owner_street2", Text),
		col("owner_city", Text),
		col("owner_state", Text),
		col("owner_postal", Text),
		col("owner_county_code", Text),
		req("address", Text),
		col("street_number", Text),
		col("loc_description", Text),
		col("loc_unit", Text),
		col("loc_dir_prefix", Text),
		col("loc_dir_suffix", Text),
		req("city", Text),
		col("loc_state", Text),
		req("zip_code", Text),
		col("county_name", Text),
		col("lat", Real),
		col("lng", Real),
		col("google_place_id", Text),
		col("land_use_code", Text),
		col("neighborhood_code", Text),
		col("location_state", Text),
		col("prior_id1", Text),
		col("prior_id2", Text),
		col("prior_id3", Text),
		col("census", Text),
		col("utilities1", Text),
		col("utilities2", Text),
		col("gulf_bay", Text),
		col("description", LongText),
		col("legal_description1", LongText),
		col("legal_description2", LongText),
		col("legal_description3", LongText),
		col("legal_description4", LongText),
		col("total_land", Real),
		col("land_unit_type", Text),
		col("zoning1", Text),
		col("zoning2", Text),
		col("zoning3", Text),
		col("zoning_type", Text),
		col("property_status", Text),
		uniq("tdt_number", Text, false),
		req("homestead_status", Bool),
		req("is_registered", Bool),
		col("registration_date", Timestamp),
		req("is_active", Bool),
		col("active_date", Timestamp),
		col("inactive_date", Timestamp),
		col("compliance_scenario", Integer),
		req("created_at", Timestamp),
		req("updated_at", Timestamp),
	).withIndexes("google_place_id", "compliance_scenario", "created_at")

	Dealers = newTable("dealers",
		req("name", Text),
		req("dealer_type", Text),
		col("contact_email", Text),
		col("contact_phone", Text),
		req("is_active", Bool),
		req("created_at", Timestamp),
	)

	Payments = newTable("payments",
		uniq("transaction_id", Text, true),
		req("property_id", Integer),
		col("dealer_id", Integer),
		req("amount", Real),
		req("period_start", Date),
		req("period_end", Date),
		col("payment_date", Timestamp),
		col("expected_amount", Real),
		req("verified", Bool),
		col("notes", LongText),
		req("created_at", Timestamp),
	).withIndexes("property_id", "created_at")

	Sales = newTable("sales",
		req("parcel_id", Text),
		col("sale_date", Timestamp),
		col("sequence", Integer),
		col("sale_price", Real),
		col("legal_reference", Text),
		col("book", Text),
		col("page", Text),
		col("nal_code", Text),
		col("deed_type", Text),
		col("recording_date", Timestamp),
		col("doc_stamps", Real),
		req("created_at", Timestamp),
	).withIndexes("parcel_id").orderBy("sale_date DESC")

	Buildings = newTable("buildings",
		req("parcel_id", Text),
		col("card_number", Text),
		col("avg_height_floor", Real),
		col("prime_int_wall", Text),
		col("sec_int_wall", Text),
		col("sec_int_wall_percent", Real),
		col("primary_floors", Text),
		col("sec_floors", Text),
		col("sec_floors_percent", Real),
		col("insulation", Text),
		col("heat_type", Text),
		col("percent_air_conditioned", Real),
		col("ext_type", Text),
		col("story_height", Real),
		col("foundation", Text),
		col("units", Real),
		col("frame", Text),
		col("prime_wall", Text),
		col("sec_wall", Text),
		col("sec_wall_percent", Real),
		col("roof_struct", Text),
		col("roof_cover", Text),
		col("view_type", Text),
		col("grade", Text),
		col("year_built", Integer),
		col("eff_year_built", Integer),
		col("condo_floor", Text),
		col("condo_complex_name", Text),
		col("full_bath", Real),
		col("full_bath_rating", Text),
		col("half_bath", Real),
		col("half_bath_rating", Text),
		col("other_fixtures", Real),
		col("other_fixtures_rating", Text),
		col("fireplaces", Text),
		col("fireplace_rating", Text),
		col("parking_spaces", Text),
		col("percent_sprinkled", Text),
		req("created_at", Timestamp),
	).withIndexes("parcel_id")

	Land = newTable("land",
		req("parcel_id", Text),
		col("seq_number", Text),
		col("line_type", Text),
		col("num_of_units", Real),
		col("unit_type", Text),
		col("land_type", Text),
		col("neigh_mod", Text),
		req("created_at", Timestamp),
	).withIndexes("parcel_id")

	PropertyValues = newTable("property_values",
		req("parcel_id", Text),
		col("total_value", Real),
		col("land_value", Real),
		col("building_value", Real),
		col("sfyi_value", Real),
		col("assessed_value", Real),
		col("taxable_value", Real),
		col("deletions", Real),
		col("new_const", Real),
		col("new_land", Real),
		col("ag_credit", Real),
		req("created_at", Timestamp),
	).withIndexes("parcel_id")

	Exemptions = newTable("exemptions",
		req("parcel_id", Text),
		col("exemption_code", Text),
		col("amount_off_total_assessment", Real),
		col("app_code", Text),
		req("created_at", Timestamp),
	).withIndexes("parcel_id")

	LookupLandUse      = lookupTable("lookup_land_use_codes")
	LookupDeedTypes    = lookupTable("lookup_deed_types")
	LookupNeighborhood = lookupTable("lookup_neighborhood_codes")
	LookupExemptions   = lookupTable("lookup_exemption_codes")

	States = newTable("states",
		uniq("code", Text, true),
		req("name", Text),
	)

	Counties = newTable("counties",
		req("state_id", Integer),
		req("code", Text),
		req("name", Text),
	).withIndexes("state_id")

	Municipalities = newTable("municipalities",
		req("state_id", Integer),
		req("name", Text),
	).withIndexes("state_id")

	OfficeAccounts = newTable("office_accounts",
		req("state_code", Text),
		req("entity_type", Text),
		col("county_code", Text),
		col("municipality_name", Text),
		req("office_name", Text),
		uniq("username", Text, true),
		req("password_hash", Text),
		req("is_active", Bool),
		req("created_at", Timestamp),
	)
)

func lookupTable(name string) *TableDef {
	return newTable(name, uniq("code", Text, true), col("description", Text))
}

// AllTables 建表順序。
var AllTables = []*TableDef{
	Properties, Dealers, Payments,
	Sales, Buildings, Land, PropertyValues, Exemptions,
	LookupLandUse, LookupDeedTypes, LookupNeighborhood, LookupExemptions,
	States, Counties, Municipalities, OfficeAccounts,
}

// ParcelTables 物件明細依地號帶出的子資料表。
var ParcelTables = map[string]*TableDef{
	Sales.Name:          Sales,
	Buildings.Name:      Buildings,
	Land.Name:           Land,
	PropertyValues.Name: PropertyValues,
	Exemptions.Name:     Exemptions,
}

// Table 依名稱取得資料表定義。
func Table(name string) (*TableDef, bool) {
	for _, t := range AllTables {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// -----------------------------------------------------------------------------
//  型別轉換
// -----------------------------------------------------------------------------

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"1/2/2006 3:04:05 PM",
	"01/02/2006",
	"1/2/2006",
}

// ParseTime 以常見格式解析時間字串。
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// Coerce 將外部輸入（JSON 解出的值或 CSV 字串）轉為欄位型別。
// nil 與空字串一律視為 NULL；NOT NULL 欄位收到 NULL 時回傳 Warn。
func (t *TableDef) Coerce(name string, v any) (any, error) {
	c, ok := t.Col(name)
	if !ok {
		return nil, errs.NewWarn(fmt.Sprintf("unknown column %s.%s", t.Name, name))
	}
	out, err := coerce(c.Type, v)
	if err != nil {
		return nil, errs.NewWarn(fmt.Sprintf("invalid value for %s: %v", name, err))
	}
	if out == nil && c.NotNull {
		return nil, errs.NewWarn(fmt.Sprintf("%s must not be null", name))
	}
	return out, nil
}

func coerce(typ ColType, v any) (any, error) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `"`))
		if s == "" {
			return nil, nil
		}
		v = s
	}
	if v == nil {
		return nil, nil
	}
	switch typ {
	case Text, LongText:
		switch x := v.(type) {
		case string:
			return x, nil
		case float64:
			return strconv.FormatFloat(x, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(x), nil
		case fmt.Stringer:
			return x.String(), nil
		}
	case Real:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			return strconv.ParseFloat(strings.ReplaceAll(x, ",", ""), 64)
		}
	case Integer:
		switch x := v.(type) {
		case float64:
			if x != math.Trunc(x) {
				return nil, fmt.Errorf("%v is not an integer", x)
			}
			return int64(x), nil
		case int:
			return int64(x), nil
		case int64:
			return x, nil
		case string:
			if n, err := strconv.ParseInt(x, 10, 64); err == nil {
				return n, nil
			}
			f, err := strconv.ParseFloat(x, 64)
			if err != nil || f != math.Trunc(f) {
				return nil, fmt.Errorf("%q is not an integer", x)
			}
			return int64(f), nil
		}
	case Bool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case float64:
			return x != 0, nil
		case string:
			return strconv.ParseBool(x)
		}
	case Timestamp:
		switch x := v.(type) {
		case time.Time:
			return x.UTC(), nil
		case string:
			return ParseTime(x)
		}
	case Date:
		switch x := v.(type) {
		case time.Time:
			return x.Format(model.DateLayout), nil
		case string:
			t, err := ParseTime(x)
			if err != nil {
				return nil, err
			}
			return t.Format(model.DateLayout), nil
		}
	}
	return nil, fmt.Errorf("unsupported value %v (%T)", v, v)
}
