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
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/tdtrack/catalog"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s, err := Open(ctx, Options{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "tdt.db"),
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return s
}

func strp(s string) *string { return &s }

func sampleProperty(parcel, addr string) *model.Property {
	return &model.Property{
		ParcelID:   parcel,
		Address:    addr,
		City:       "Sarasota",
		ZipCode:    "34236",
		CountyName: strp("Sarasota"),
		IsActive:   true,
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestPropertyRoundTripAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	a := sampleProperty("1000-10-1000", "100 Main St")
	a.OwnerName = strp("Jane 50% Doe")
	a.CreatedAt = base
	sc := 3
	a.ComplianceScenario = &sc
	a.IsRegistered = true
	a.TDTNumber = strp("TDT-2025-123456")

	b := sampleProperty("2000-20-2000", "200 Ocean Blvd")
	b.CreatedAt = base.Add(time.Hour)
	b.Zoning2 = strp("RSF-2")

	for _, p := range []*model.Property{a, b} {
		if err := s.InsertProperty(ctx, p); err != nil {
			t.Fatalf("insert: %v", err)
		}
		if p.ID == 0 {
			t.Fatalf("expected id to be assigned")
		}
	}

	got, err := s.GetProperty(ctx, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ParcelID != a.ParcelID || got.OwnerName == nil || *got.OwnerName != "Jane 50% Doe" {
		t.Fatalf("unexpected property: %+v", got)
	}
	if got.ComplianceScenario == nil || *got.ComplianceScenario != 3 || !got.IsRegistered || !got.IsActive {
		t.Fatalf("flags not persisted: %+v", got)
	}
	if got.Lat != nil || got.Zoning1 != nil {
		t.Fatalf("expected NULL columns to scan as nil")
	}

	all, err := s.ListProperties(ctx, nil, 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 || all[0].ID != b.ID {
		t.Fatalf("expected newest first, got %d rows", len(all))
	}

	cases := []struct {
		name string
		f    Filter
		want int
	}{
		{"scenario", Filter{Eq("compliance_scenario", 3)}, 1},
		{"search ci", Filter{AnyContains("MAIN", "address", "parcel_id", "tdt_number", "owner_name")}, 1},
		{"percent escaped", Filter{Contains("owner_name", "50%")}, 1},
		{"percent literal only", Filter{Contains("address", "%")}, 0},
		{"zoning any", Filter{AnyContains("rsf", "zoning1", "zoning2", "zoning3")}, 1},
		{"registered", Filter{IsTrue("is_registered")}, 1},
		{"unregistered", Filter{IsFalse("is_registered")}, 1},
		{"city and zip", Filter{Contains("city", "sara"), Eq("zip_code", "34236")}, 2},
	}
	for _, tc := range cases {
		list, err := s.ListProperties(ctx, tc.f, 0, 0)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if len(list) != tc.want {
			t.Fatalf("%s: want %d got %d", tc.name, tc.want, len(list))
		}
	}

	page, err := s.ListProperties(ctx, nil, 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != a.ID {
		t.Fatalf("pagination failed: %v %v", page, err)
	}

	if _, err := s.ListProperties(ctx, Filter{Eq("nope", 1)}, 0, 0); !errs.Is(err, errs.Warn) {
		t.Fatalf("expected warn for unknown column, got %v", err)
	}

	if n, err := s.CountProperties(ctx, Filter{IsTrue("is_registered")}); err != nil || n != 1 {
		t.Fatalf("count: %d %v", n, err)
	}
	counts, err := s.ScenarioCounts(ctx)
	if err != nil || counts[3] != 1 || len(counts) != 1 {
		t.Fatalf("scenario counts: %v %v", counts, err)
	}
}

func TestUpdateProperty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := sampleProperty("3000-30-3000", "300 Bay St")
	if err := s.InsertProperty(ctx, p); err != nil {
		t.Fatal(err)
	}
	later := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return later })

	up, err := s.UpdateProperty(ctx, p.ID, Patch{"is_registered": true, "tdt_number": "TDT-2030-100000", "lat": nil})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !up.IsRegistered || up.TDTNumber == nil || *up.TDTNumber != "TDT-2030-100000" {
		t.Fatalf("patch not applied: %+v", up)
	}
	if !up.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at not refreshed: %v", up.UpdatedAt)
	}

	if _, err := s.UpdateProperty(ctx, p.ID, Patch{"bogus": 1}); !errs.Is(err, errs.Warn) {
		t.Fatalf("expected warn, got %v", err)
	}
	if _, err := s.UpdateProperty(ctx, 9999, Patch{"city": "Venice"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := s.GetProperty(ctx, 9999); !errs.Is(err, errs.NotFound) {
		t.Fatalf("expected not found level, got %v", err)
	}
}

func TestUpdatePropertyCoercesValues(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := sampleProperty("3100-31-3100", "310 Bay St")
	lat := 27.3
	p.Lat = &lat
	if err := s.InsertProperty(ctx, p); err != nil {
		t.Fatal(err)
	}

	bad := map[string]Patch{
		"string for float":    {"lat": "abc"},
		"scenario too large":  {"compliance_scenario": float64(9)},
		"scenario zero":       {"compliance_scenario": "0"},
		"fractional scenario": {"compliance_scenario": 2.5},
		"null into not null":  {"address": nil},
		"bad bool":            {"is_registered": "maybe"},
		"nested object":       {"city": map[string]any{"x": 1}},
	}
	for name, patch := range bad {
		if _, err := s.UpdateProperty(ctx, p.ID, patch); !errs.Is(err, errs.Warn) {
			t.Errorf("%s: expected warn, got %v", name, err)
		}
	}

	// 被拒絕的更新不得寫入，列表仍可正常讀取。
	list, err := s.ListProperties(ctx, nil, 0, 0)
	if err != nil || len(list) != 1 {
		t.Fatalf("list after rejected patches: %d %v", len(list), err)
	}
	if list[0].Lat == nil || *list[0].Lat != lat || list[0].ComplianceScenario != nil || list[0].IsRegistered {
		t.Fatalf("row modified by rejected patch: %+v", list[0])
	}

	up, err := s.UpdateProperty(ctx, p.ID, Patch{"lat": "27.5", "compliance_scenario": "2", "is_registered": "true"})
	if err != nil {
		t.Fatalf("coercible patch: %v", err)
	}
	if up.Lat == nil || *up.Lat != 27.5 || up.ComplianceScenario == nil || *up.ComplianceScenario != 2 || !up.IsRegistered {
		t.Fatalf("coerced values not applied: %+v", up)
	}
	if up, err = s.UpdateProperty(ctx, p.ID, Patch{"compliance_scenario": nil}); err != nil || up.ComplianceScenario != nil {
		t.Fatalf("clear scenario: %+v %v", up, err)
	}
}

func TestPaymentsJoinDealerAndProperty(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := sampleProperty("4000-40-4000", "400 Gulf Dr")
	p.TDTNumber = strp("TDT-2025-555555")
	if err := s.InsertProperty(ctx, p); err != nil {
		t.Fatal(err)
	}
	d := &model.Dealer{Name: "Airbnb", DealerType: model.DealerPlatform, IsActive: true}
	if err := s.InsertDealers(ctx, []*model.Dealer{d}); err != nil {
		t.Fatal(err)
	}

	exp := 120.0
	withDealer := &model.Payment{
		TransactionID: "AAAA-BBBB-CCCC-DDDD", PropertyID: p.ID, DealerID: &d.ID,
		Amount: 100.5, ExpectedAmount: &exp, PeriodStart: "2025-01-01", PeriodEnd: "2025-02-01",
	}
	independent := &model.Payment{
		TransactionID: "EEEE-FFFF-GGGG-HHHH", PropertyID: p.ID,
		Amount: 20, PeriodStart: "2025-02-01", PeriodEnd: "2025-03-01", Verified: true,
	}
	for _, pay := range []*model.Payment{withDealer, independent} {
		if err := s.InsertPayment(ctx, pay); err != nil {
			t.Fatalf("insert payment: %v", err)
		}
	}

	list, err := s.ListPayments(ctx, 100)
	if err != nil || len(list) != 2 {
		t.Fatalf("list payments: %v %v", list, err)
	}
	for _, pay := range list {
		if pay.Property == nil || pay.Property.Address != "400 Gulf Dr" || pay.Property.TDTNumber != nil {
			t.Fatalf("list should embed address only: %+v", pay.Property)
		}
	}

	got, err := s.GetPayment(ctx, withDealer.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Dealer == nil || got.Dealer.Name != "Airbnb" {
		t.Fatalf("dealer not embedded: %+v", got)
	}
	if got.Property.TDTNumber == nil || *got.Property.TDTNumber != "TDT-2025-555555" {
		t.Fatalf("detail should embed tdt number")
	}
	if got.ExpectedAmount == nil || *got.ExpectedAmount != 120 || got.Verified {
		t.Fatalf("unexpected payment: %+v", got)
	}
	if _, err := s.GetPayment(ctx, 12345); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	forProp, err := s.PaymentsForProperty(ctx, p.ID)
	if err != nil || len(forProp) != 2 || forProp[0].PeriodStart != "2025-02-01" {
		t.Fatalf("payments for property: %+v %v", forProp, err)
	}
	if forProp[0].Dealer != nil {
		t.Fatalf("independent payment should have no dealer")
	}

	amts, err := s.PaymentAmounts(ctx)
	if err != nil || len(amts) != 2 {
		t.Fatalf("amounts: %v %v", amts, err)
	}
}

func TestInsertBundleSkipsFailedPayments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := sampleProperty("5000-50-5000", "500 Palm Ave")
	dup := "SAME-SAME-SAME-SAME"
	n, fails, err := s.InsertBundle(ctx, PaymentBundle{
		Property: p,
		Payments: []*model.Payment{
			{TransactionID: dup, Amount: 1, PeriodStart: "2025-01-01", PeriodEnd: "2025-02-01"},
			{TransactionID: dup, Amount: 2, PeriodStart: "2025-02-01", PeriodEnd: "2025-03-01"},
		},
	})
	if err != nil {
		t.Fatalf("bundle: %v", err)
	}
	if n != 1 || len(fails) != 1 {
		t.Fatalf("want 1 ok and 1 failure, got %d %d", n, len(fails))
	}
}

func TestDealersActiveOnly(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	ds := []*model.Dealer{
		{Name: "VRBO", DealerType: model.DealerPlatform, IsActive: true},
		{Name: "Airbnb", DealerType: model.DealerPlatform, IsActive: true},
		{Name: "Gone", DealerType: model.DealerMomAndPop},
	}
	if err := s.InsertDealers(ctx, ds); err != nil {
		t.Fatal(err)
	}
	active, err := s.ListDealers(ctx, true)
	if err != nil || len(active) != 2 || active[0].Name != "Airbnb" {
		t.Fatalf("active dealers: %+v %v", active, err)
	}
	if n, _ := s.CountDealers(ctx, false); n != 3 {
		t.Fatalf("count all = %d", n)
	}
}

func TestParcelRecordsAndBulkInsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	recs, err := s.ParcelRecords(ctx, "sales", "0000-00-0000")
	if err != nil {
		t.Fatal(err)
	}
	if recs == nil || len(recs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", recs)
	}

	d1 := time.Date(2020, 5, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	n, err := s.BulkInsert(ctx, Sales, []string{"parcel_id", "sale_date", "sale_price", "deed_type"}, [][]any{
		{"1111-11-1111", d1, 250000.0, "WD"},
		{"1111-11-1111", d2, 410000.0, nil},
	})
	if err != nil || n != 2 {
		t.Fatalf("bulk insert: %d %v", n, err)
	}
	recs, err = s.ParcelRecords(ctx, "sales", "1111-11-1111")
	if err != nil || len(recs) != 2 {
		t.Fatalf("records: %v %v", recs, err)
	}
	if recs[0]["sale_price"] != 410000.0 || recs[1]["deed_type"] != "WD" || recs[0]["deed_type"] != nil {
		t.Fatalf("unexpected order or values: %v", recs)
	}

	if _, err := s.BulkInsert(ctx, Sales, []string{"nope"}, [][]any{{1}}); !errs.Is(err, errs.Warn) {
		t.Fatalf("expected warn for unknown column, got %v", err)
	}
	if _, err := s.ParcelRecords(ctx, "properties", "x"); !errs.Is(err, errs.Warn) {
		t.Fatalf("expected warn for non-parcel table, got %v", err)
	}
}

func TestRegionsSeed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	states := []catalog.State{
		{Code: "fl", Name: "Florida", Counties: []catalog.County{{Code: "68", Name: "Sarasota"}, {Code: "11", Name: "Alachua"}}, Municipalities: []string{"Venice", "North Port"}},
		{Code: "AL", Name: "Alabama"},
	}
	n, err := s.SeedRegions(ctx, states)
	if err != nil || n != 2 {
		t.Fatalf("seed: %d %v", n, err)
	}
	if n, err := s.SeedRegions(ctx, states); err != nil || n != 0 {
		t.Fatalf("reseed should be a no-op: %d %v", n, err)
	}
	list, _ := s.ListStates(ctx)
	if len(list) != 2 || list[0].Code != "AL" {
		t.Fatalf("states ordered by name: %+v", list)
	}
	fl, err := s.GetState(ctx, "fl")
	if err != nil || fl.Code != "FL" {
		t.Fatalf("get state: %+v %v", fl, err)
	}
	cs, _ := s.ListCounties(ctx, fl.ID)
	if len(cs) != 2 || cs[0].Name != "Alachua" {
		t.Fatalf("counties: %+v", cs)
	}
	ms, _ := s.ListMunicipalities(ctx, fl.ID)
	if len(ms) != 2 || ms[0].Name != "North Port" {
		t.Fatalf("municipalities: %+v", ms)
	}
	if _, err := s.GetState(ctx, "ZZ"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOfficeAccounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	county := &model.OfficeAccount{
		StateCode: "FL", EntityType: "tax-collector", CountyCode: strp("68"),
		OfficeName: "Sarasota Tax Collector", Username: "sarasota-tc", PasswordHash: "h1", IsActive: true,
	}
	dor := &model.OfficeAccount{
		StateCode: "FL", EntityType: "dor", OfficeName: "Florida DOR", Username: "fl-dor", PasswordHash: "h2", IsActive: true,
	}
	for _, a := range []*model.OfficeAccount{county, dor} {
		if err := s.UpsertOfficeAccount(ctx, a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.FindOfficeAccount(ctx, OfficeKey{StateCode: "fl", EntityType: "tax-collector", County: "68"})
	if err != nil || got.Username != "sarasota-tc" {
		t.Fatalf("find county office: %+v %v", got, err)
	}
	if _, err := s.FindOfficeAccount(ctx, OfficeKey{StateCode: "FL", EntityType: "tax-collector", County: "11"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for other county, got %v", err)
	}
	got, err = s.FindOfficeAccount(ctx, OfficeKey{StateCode: "FL", EntityType: "dor"})
	if err != nil || got.Username != "fl-dor" {
		t.Fatalf("find state office: %+v %v", got, err)
	}

	county.PasswordHash = "h3"
	county.ID = 0
	if err := s.UpsertOfficeAccount(ctx, county); err != nil {
		t.Fatal(err)
	}
	again, _ := s.GetOfficeAccountByUsername(ctx, "sarasota-tc")
	if again.PasswordHash != "h3" || again.ID != county.ID {
		t.Fatalf("upsert should overwrite in place: %+v", again)
	}
}

func TestFilterRenderOracle(t *testing.T) {
	d, err := DialectFor("oracle")
	if err != nil {
		t.Fatal(err)
	}
	f := Filter{Eq("zip_code", "34236"), AnyContains("a_b", "address", "owner_name"), IsNull("tdt_number")}
	where, args, err := f.Render(d, Properties, "p", 2)
	if err != nil {
		t.Fatal(err)
	}
	want := ` WHERE p.zip_code = :3 AND (LOWER(p.address) LIKE :4 ESCAPE '\' OR LOWER(p.owner_name) LIKE :5 ESCAPE '\') AND p.tdt_number IS NULL`
	if where != want {
		t.Fatalf("where mismatch:\n got %s\nwant %s", where, want)
	}
	if len(args) != 3 || args[1] != `%a\_b%` {
		t.Fatalf("args: %#v", args)
	}
	if got := d.Limit(10, 20); got != " OFFSET 20 ROWS FETCH NEXT 10 ROWS ONLY" {
		t.Fatalf("oracle limit: %q", got)
	}
	if got := (sqliteDialect{}).Limit(0, 5); got != " LIMIT -1 OFFSET 5" {
		t.Fatalf("sqlite limit: %q", got)
	}
	if _, err := DialectFor("mysql"); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if !strings.Contains(oracleDialect{}.CreateTable(Payments), "BINARY_DOUBLE NOT NULL") {
		t.Fatalf("oracle ddl should map REAL columns")
	}
}

func TestCoerce(t *testing.T) {
	v, err := Properties.Coerce("lat", "27.33")
	if err != nil || v != 27.33 {
		t.Fatalf("lat: %v %v", v, err)
	}
	if v, _ := Properties.Coerce("compliance_scenario", float64(2)); v != int64(2) {
		t.Fatalf("scenario: %#v", v)
	}
	if v, _ := Properties.Coerce("owner_name", `  ""  `); v != nil {
		t.Fatalf("blank should be NULL, got %#v", v)
	}
	if _, err := Properties.Coerce("address", ""); !errs.Is(err, errs.Warn) {
		t.Fatalf("NOT NULL column should reject blank")
	}
	v, err = Properties.Coerce("registration_date", "2024-06-15T10:00:00Z")
	if err != nil || !v.(time.Time).Equal(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp: %v %v", v, err)
	}
	if v, _ := Payments.Coerce("period_start", "06/15/2024"); v != "2024-06-15" {
		t.Fatalf("date: %v", v)
	}
	if _, err := Properties.Coerce("is_registered", "maybe"); err == nil {
		t.Fatalf("expected bool parse error")
	}
}
