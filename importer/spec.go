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

package importer

import (
	"strings"

	"github.com/zintix-labs/tdtrack/store"
)

// Spec 一個來源檔對應一張資料表。Columns 為「來源欄名 → 資料表欄名」，來源欄名比對不分大小寫。
type Spec struct {
	Name      string // --table 使用的名稱
	File      string
	Table     *store.TableDef
	Key       string // 為空的列略過
	Columns   [][2]string
	Defaults  map[string]any // 值為 NULL 時的預設值
	Derive    func(src map[string]string, row map[string]any)
	BatchSize int
}

const (
	DefaultBatch = 1000
	LookupBatch  = 100
)

func (s *Spec) batch() int {
	if s.BatchSize > 0 {
		return s.BatchSize
	}
	return DefaultBatch
}

// targets 寫入的欄位順序：對應欄位加上預設值與衍生欄位。
func (s *Spec) targets() []string {
	out := make([]string, 0, len(s.Columns)+len(s.Defaults)+1)
	seen := map[string]bool{}
	add := func(c string) {
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	for _, c := range s.Columns {
		add(c[1])
	}
	if s.Table == store.Properties {
		add("address")
	}
	for _, c := range s.Table.Names() {
		if _, ok := s.Defaults[c]; ok {
			add(c)
		}
	}
	return out
}

// propertyAddress 門牌（缺省為 0）加上路名。
func propertyAddress(src map[string]string, row map[string]any) {
	num := src["streetnumber"]
	if num == "" {
		num = "0"
	}
	row["address"] = strings.TrimSpace(num + " " + src["locdescription"])
}

var properties = &Spec{
	Name: "properties", File: "PropertyOwnerLegal.txt", Table: store.Properties, Key: "parcel_id",
	Columns: [][2]string{
		{"ParcelID", "parcel_id"}, {"UserAccount", "user_account"},
		{"name1", "owner_name"}, {"name2", "owner_name2"}, {"name3", "owner_name3"},
		{"CuOStreet1", "owner_street1"}, {"CuOStreet2", "owner_street2"}, {"CuOCity", "owner_city"},
		{"CuOState", "owner_state"}, {"CuOPostal", "owner_postal"}, {"CuOCountyCode", "owner_county_code"},
		{"StreetNumber", "street_number"}, {"LOCDescription", "loc_description"}, {"LocUnit", "loc_unit"},
		{"locdirprefix", "loc_dir_prefix"}, {"locdirsuffix", "loc_dir_suffix"},
		{"LocCity", "city"}, {"LocState", "loc_state"}, {"LocZip", "zip_code"},
		{"LUC", "land_use_code"}, {"NBC", "neighborhood_code"}, {"LocationState", "location_state"},
		{"PriorID1a", "prior_id1"}, {"PriorID2a", "prior_id2"}, {"PriorID3a", "prior_id3"},
		{"Census", "census"}, {"Utilities1", "utilities1"}, {"Utilities2", "utilities2"},
		{"GulfBay", "gulf_bay"}, {"Description", "description"},
		{"LegalDescription1", "legal_description1"}, {"LegalDescription2", "legal_description2"},
		{"LegalDescription3", "legal_description3"}, {"LegalDescription4", "legal_description4"},
		{"TotalLand", "total_land"}, {"LandUnitType", "land_unit_type"},
		{"Zoning1", "zoning1"}, {"Zoning2", "zoning2"}, {"Zoning3", "zoning3"},
		{"status", "property_status"},
	},
	Defaults: map[string]any{
		"city":             "Sarasota",
		"zip_code":         "00000",
		"homestead_status": false,
		"is_registered":    false,
		"is_active":        true,
	},
	Derive: propertyAddress,
}

var sales = &Spec{
	Name: "sales", File: "Sales.txt", Table: store.Sales, Key: "parcel_id",
	Columns: [][2]string{
		{"parcelid", "parcel_id"}, {"saledate", "sale_date"}, {"sequence", "sequence"},
		{"saleprice", "sale_price"}, {"legalreference", "legal_reference"}, {"book", "book"},
		{"page", "page"}, {"nalcode", "nal_code"}, {"deedtype", "deed_type"},
		{"recordingdate", "recording_date"}, {"docstamps", "doc_stamps"},
	},
}

var buildings = &Spec{
	Name: "buildings", File: "Building.txt", Table: store.Buildings, Key: "parcel_id",
	Columns: [][2]string{
		{"parcelid", "parcel_id"}, {"cardnumber", "card_number"}, {"avghtfl", "avg_height_floor"},
		{"primeintwall", "prime_int_wall"}, {"secintwall", "sec_int_wall"},
		{"secintwallpercent", "sec_int_wall_percent"}, {"primaryfloors", "primary_floors"},
		{"secfloors", "sec_floors"}, {"secfloorspercent", "sec_floors_percent"},
		{"insulation", "insulation"}, {"heattype", "heat_type"},
		{"percentairconditioned", "percent_air_conditioned"}, {"exttype", "ext_type"},
		{"storyhgt", "story_height"}, {"foundation", "foundation"}, {"units", "units"},
		{"frame", "frame"}, {"primewall", "prime_wall"}, {"secwall", "sec_wall"},
		{"secwallpercent", "sec_wall_percent"}, {"roofstruct", "roof_struct"},
		{"roofcover", "roof_cover"}, {"view_", "view_type"}, {"grade", "grade"},
		{"yearblt", "year_built"}, {"effyearblt", "eff_year_built"}, {"condofloor", "condo_floor"},
		{"condocomplexname", "condo_complex_name"}, {"fullbath", "full_bath"},
		{"fullbathrating", "full_bath_rating"}, {"halfbath", "half_bath"},
		{"halfbathrating", "half_bath_rating"}, {"otherfixtures", "other_fixtures"},
		{"otherfixturesrating", "other_fixtures_rating"}, {"fireplaces", "fireplaces"},
		{"fireplacerating", "fireplace_rating"}, {"parkingspaces", "parking_spaces"},
		{"percentsprinkled", "percent_sprinkled"},
	},
}

var land = &Spec{
	Name: "land", File: "Land.txt", Table: store.Land, Key: "parcel_id",
	Columns: [][2]string{
		{"parcelid", "parcel_id"}, {"seeqnumber", "seq_number"}, {"linetype", "line_type"},
		{"numofunits", "num_of_units"}, {"unittype", "unit_type"}, {"landtype", "land_type"},
		{"neighmod", "neigh_mod"},
	},
}

var propertyValues = &Spec{
	Name: "values", File: "Values.txt", Table: store.PropertyValues, Key: "parcel_id",
	Columns: [][2]string{
		{"ParcelID", "parcel_id"}, {"TotalValue", "total_value"}, {"Land", "land_value"},
		{"Building", "building_value"}, {"SFYI", "sfyi_value"}, {"AssessedValue", "assessed_value"},
		{"TaxableValue", "taxable_value"}, {"Deletions", "deletions"}, {"NewConst", "new_const"},
		{"NewLand", "new_land"}, {"AgCredit", "ag_credit"},
	},
}

var exemptions = &Spec{
	Name: "exemptions", File: "Exemptions.txt", Table: store.Exemptions, Key: "parcel_id",
	Columns: [][2]string{
		{"parcelid", "parcel_id"}, {"exemptioncode", "exemption_code"},
		{"amountofftotalassessment", "amount_off_total_assessment"}, {"appcode", "app_code"},
	},
}

func lookup(file string, t *store.TableDef) *Spec {
	return &Spec{
		Name: "lookups", File: file, Table: t, Key: "code",
		Columns:   [][2]string{{"Code", "code"}, {"Description", "description"}},
		BatchSize: LookupBatch,
	}
}

// Specs 完整匯入順序：代碼表先行，再來是物件與各子資料表。
var Specs = []*Spec{
	lookup("LookupLandUseCodes.txt", store.LookupLandUse),
	lookup("LookupDeedType.txt", store.LookupDeedTypes),
	lookup("LookupNeighborhoodCode.txt", store.LookupNeighborhood),
	lookup("LookupExemptionCode.txt", store.LookupExemptions),
	properties, sales, buildings, land, propertyValues, exemptions,
}

// Names --table 可用的名稱。
var Names = []string{"properties", "sales", "buildings", "land", "values", "exemptions", "lookups"}

// Select 依名稱挑出 Spec；"all" 代表全部。未知名稱回傳 false。
func Select(names ...string) ([]*Spec, bool) {
	var out []*Spec
	for _, s := range Specs {
		for _, n := range names {
			if n == "all" || n == s.Name {
				out = append(out, s)
				break
			}
		}
	}
	for _, n := range names {
		if n == "all" {
			continue
		}
		known := false
		for _, k := range Names {
			known = known || k == n
		}
		if !known {
			return nil, false
		}
	}
	return out, len(out) > 0
}
