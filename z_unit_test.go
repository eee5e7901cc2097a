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
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/ident"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/sdk/core"
	"github.com/zintix-labs/tdtrack/store"
)

var fixedNow = time.Date(2025, 7, 4, 9, 30, 0, 0, time.UTC)

func newTestTracker(t *testing.T) *Tracker {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.Open(ctx, store.Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "tdt.db"), Log: log})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	tr, err := New(Options{
		Store: st,
		IDs:   ident.NewGenerator(core.Default().New(11), func() time.Time { return fixedNow }),
		Log:   log,
	})
	if err != nil {
		t.Fatalf("new tracker: %v", err)
	}
	return tr
}

func mustCreate(t *testing.T, tr *Tracker, in PropertyInput) *model.Property {
	t.Helper()
	p, err := tr.CreateProperty(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return p
}

func TestNewRequiresStore(t *testing.T) {
	if _, err := New(Options{}); !errs.Is(err, errs.Fatal) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}

func TestCreatePropertyDefaults(t *testing.T) {
	tr := newTestTracker(t)
	p := mustCreate(t, tr, PropertyInput{Address: "1 Main St", ZipCode: "34236"})
	if p.City != DefaultCity || p.CountyName == nil || *p.CountyName != DefaultCounty {
		t.Fatalf("city/county defaults: %+v", p)
	}
	if !ident.ValidParcelID(p.ParcelID) {
		t.Fatalf("generated parcel id %q", p.ParcelID)
	}
	if p.ZoningType == nil || *p.ZoningType != DefaultZoningType || !p.IsActive {
		t.Fatalf("zoning/active defaults: %+v", p)
	}
	if p.IsRegistered || p.TDTNumber != nil || p.RegistrationDate != nil || p.ActiveDate != nil {
		t.Fatalf("unregistered property should have no registration data: %+v", p)
	}

	reg := mustCreate(t, tr, PropertyInput{Address: "2 Main St", ZipCode: "34236", IsRegistered: true, ParcelID: "1234-56-7890"})
	if reg.ParcelID != "1234-56-7890" {
		t.Fatalf("explicit parcel id not kept")
	}
	if reg.TDTNumber == nil || !ident.ValidTDTNumber(*reg.TDTNumber) || (*reg.TDTNumber)[4:8] != "2025" {
		t.Fatalf("tdt number: %v", reg.TDTNumber)
	}
	if reg.RegistrationDate == nil || !reg.RegistrationDate.Equal(fixedNow) || reg.ActiveDate == nil {
		t.Fatalf("registration dates: %+v", reg)
	}

	_, err := tr.CreateProperty(context.Background(), PropertyInput{City: "Venice"})
	if !errs.Is(err, errs.Warn) || errs.Public(err) != "Missing required fields: address, zip_code" {
		t.Fatalf("missing fields: %v", err)
	}
}

func TestUpdateGeneratesTDTNumberOnce(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	p := mustCreate(t, tr, PropertyInput{Address: "3 Bay Rd", ZipCode: "34231"})

	// 已登記但缺 TDT 編號的資料列
	if _, err := tr.Store().UpdateProperty(ctx, p.ID, store.Patch{"is_registered": true}); err != nil {
		t.Fatal(err)
	}

	first, err := tr.UpdateProperty(ctx, p.ID, store.Patch{"is_registered": true})
	if err != nil {
		t.Fatal(err)
	}
	if first.TDTNumber == nil || first.RegistrationDate == nil {
		t.Fatalf("tdt number should be issued: %+v", first)
	}

	second, err := tr.UpdateProperty(ctx, p.ID, store.Patch{"is_registered": true})
	if err != nil {
		t.Fatal(err)
	}
	if *second.TDTNumber != *first.TDTNumber {
		t.Fatalf("tdt number regenerated: %s -> %s", *first.TDTNumber, *second.TDTNumber)
	}

	explicit, err := tr.UpdateProperty(ctx, p.ID, store.Patch{"tdt_number": "TDT-2025-222222", "city": "Osprey"})
	if err != nil || *explicit.TDTNumber != "TDT-2025-222222" || explicit.City != "Osprey" {
		t.Fatalf("explicit patch: %+v %v", explicit, err)
	}

	if _, err := tr.UpdateProperty(ctx, 999, store.Patch{"city": "x"}); !errs.Is(err, errs.NotFound) || errs.Public(err) != MsgPropertyNotFound {
		t.Fatalf("missing property: %v", err)
	}
	if _, err := tr.UpdateProperty(ctx, p.ID, store.Patch{}); !errs.Is(err, errs.Warn) {
		t.Fatalf("empty patch should be rejected: %v", err)
	}
}

func TestUpdateIssuesTDTNumberForCoercedBool(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	p := mustCreate(t, tr, PropertyInput{Address: "5 Gulf Dr", ZipCode: "34228"})

	up, err := tr.UpdateProperty(ctx, p.ID, store.Patch{"is_registered": "true"})
	if err != nil {
		t.Fatal(err)
	}
	if !up.IsRegistered || up.TDTNumber == nil || !ident.ValidTDTNumber(*up.TDTNumber) || up.RegistrationDate == nil {
		t.Fatalf("string bool should register with a tdt number: %+v", up)
	}

	if _, err := tr.UpdateProperty(ctx, p.ID, store.Patch{"compliance_scenario": float64(5)}); !errs.Is(err, errs.Warn) {
		t.Fatalf("out of range scenario: %v", err)
	}
}

func TestRegisterKeepsExistingNumber(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	p := mustCreate(t, tr, PropertyInput{Address: "4 Palm Way", ZipCode: "34242", IsActive: ptr(false)})

	r1, err := tr.RegisterProperty(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !r1.IsRegistered || !r1.IsActive || r1.TDTNumber == nil || r1.ActiveDate == nil {
		t.Fatalf("register: %+v", r1)
	}
	r2, err := tr.RegisterProperty(ctx, p.ID)
	if err != nil || *r2.TDTNumber != *r1.TDTNumber {
		t.Fatalf("register should keep number: %v %v", r2.TDTNumber, err)
	}
	if _, err := tr.RegisterProperty(ctx, 404); !errs.Is(err, errs.NotFound) {
		t.Fatalf("expected not found: %v", err)
	}
}

func TestCreatePaymentValidation(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	p := mustCreate(t, tr, PropertyInput{Address: "5 Gulf Dr", ZipCode: "34228"})

	_, err := tr.CreatePayment(ctx, PaymentInput{PropertyID: &p.ID, PeriodStart: "2025-01-01", PeriodEnd: "2025-02-01"})
	if !errs.Is(err, errs.Warn) || errs.Public(err) != "Missing required fields: amount" {
		t.Fatalf("missing amount: %v", err)
	}
	_, err = tr.CreatePayment(ctx, PaymentInput{})
	if errs.Public(err) != "Missing required fields: property_id, amount, period_start, period_end" {
		t.Fatalf("all missing: %v", err)
	}

	amt := 150.25
	missingID := int64(777)
	_, err = tr.CreatePayment(ctx, PaymentInput{PropertyID: &missingID, Amount: &amt, PeriodStart: "2025-01-01", PeriodEnd: "2025-02-01"})
	if !errs.Is(err, errs.NotFound) {
		t.Fatalf("unknown property: %v", err)
	}
	_, err = tr.CreatePayment(ctx, PaymentInput{PropertyID: &p.ID, Amount: &amt, PeriodStart: "2025-03-01", PeriodEnd: "2025-02-01"})
	if !errs.Is(err, errs.Warn) {
		t.Fatalf("reversed period: %v", err)
	}

	pay, err := tr.CreatePayment(ctx, PaymentInput{PropertyID: &p.ID, Amount: &amt, PeriodStart: "01/01/2025", PeriodEnd: "2025-02-01"})
	if err != nil {
		t.Fatal(err)
	}
	if !ident.ValidTransactionID(pay.TransactionID) || pay.Verified || pay.PeriodStart != "2025-01-01" {
		t.Fatalf("payment: %+v", pay)
	}
	if pay.PaymentDate == nil || !pay.PaymentDate.Equal(fixedNow) {
		t.Fatalf("payment date: %v", pay.PaymentDate)
	}

	got, err := tr.GetPayment(ctx, pay.ID)
	if err != nil || got.Property == nil || got.Property.Address != "5 Gulf Dr" {
		t.Fatalf("get payment: %+v %v", got, err)
	}
	if _, err := tr.GetPayment(ctx, 9999); errs.Public(err) != MsgPaymentNotFound {
		t.Fatalf("payment not found: %v", err)
	}
}

func TestPropertyDetailEmptyLists(t *testing.T) {
	tr := newTestTracker(t)
	p := mustCreate(t, tr, PropertyInput{Address: "6 Island Cir", ZipCode: "34242"})
	d, err := tr.GetPropertyDetail(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	lists := map[string]int{
		"payments": len(d.Payments), "sales": len(d.Sales), "buildings": len(d.Buildings),
		"land": len(d.Land), "values": len(d.Values), "exemptions": len(d.Exemptions),
	}
	for name, n := range lists {
		if n != 0 {
			t.Fatalf("%s should be empty", name)
		}
	}
	if d.Payments == nil || d.Sales == nil || d.Buildings == nil || d.Land == nil || d.Values == nil || d.Exemptions == nil {
		t.Fatalf("lists must be non-nil: %+v", d)
	}
	if _, err := tr.GetPropertyDetail(context.Background(), 321); !errs.Is(err, errs.NotFound) {
		t.Fatalf("expected not found: %v", err)
	}
}

func TestLookupAndList(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	a := mustCreate(t, tr, PropertyInput{Address: "7 Siesta Key Cir", ZipCode: "34242", IsRegistered: true})
	sc := 2
	mustCreate(t, tr, PropertyInput{Address: "8 Venice Ave", ZipCode: "34285", City: "Venice", ComplianceScenario: &sc})

	if _, err := tr.LookupProperty(ctx, LookupQuery{}); errs.Public(err) != MsgMissingLookup {
		t.Fatalf("empty lookup: %v", err)
	}
	got, err := tr.LookupProperty(ctx, LookupQuery{TDTNumber: *a.TDTNumber})
	if err != nil || got.ID != a.ID {
		t.Fatalf("lookup by tdt: %v %v", got, err)
	}
	got, err = tr.LookupProperty(ctx, LookupQuery{Address: "siesta"})
	if err != nil || got.ID != a.ID {
		t.Fatalf("lookup by address: %v %v", got, err)
	}
	if _, err := tr.LookupProperty(ctx, LookupQuery{ParcelID: "0000-00-0000"}); !errs.Is(err, errs.NotFound) {
		t.Fatalf("lookup miss: %v", err)
	}

	s2 := compliance.UnregisteredPaid
	none := compliance.None
	yes := true
	cases := []struct {
		name string
		q    PropertyQuery
		want int
	}{
		{"all", PropertyQuery{}, 2},
		{"scenario", PropertyQuery{Scenario: &s2}, 1},
		{"compliant", PropertyQuery{Scenario: &none}, 1},
		{"city", PropertyQuery{City: "ven"}, 1},
		{"registered", PropertyQuery{Registered: &yes}, 1},
		{"search", PropertyQuery{Search: "avenue"}, 0},
		{"limit", PropertyQuery{Limit: 1}, 1},
	}
	for _, tc := range cases {
		list, err := tr.ListProperties(ctx, tc.q)
		if err != nil || len(list) != tc.want {
			t.Fatalf("%s: want %d got %d (%v)", tc.name, tc.want, len(list), err)
		}
	}
}

func TestStatsAndExport(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	sc := 4
	p := mustCreate(t, tr, PropertyInput{Address: "9 Lido Blvd", ZipCode: "34236", IsRegistered: true, ComplianceScenario: &sc})
	mustCreate(t, tr, PropertyInput{Address: "10 Lido Blvd", ZipCode: "34236"})
	if err := tr.Store().InsertDealers(ctx, []*model.Dealer{{Name: "Airbnb", DealerType: model.DealerPlatform, IsActive: true}}); err != nil {
		t.Fatal(err)
	}
	for _, amt := range []float64{100, 300} {
		a, exp := amt, 300.0
		if _, err := tr.CreatePayment(ctx, PaymentInput{PropertyID: &p.ID, Amount: &a, ExpectedAmount: &exp, PeriodStart: "2025-01-01", PeriodEnd: "2025-02-01"}); err != nil {
			t.Fatal(err)
		}
	}

	s, err := tr.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.TotalProperties != 2 || s.RegisteredCount != 1 || s.DealerCount != 1 || s.TotalCollected != 400 {
		t.Fatalf("stats: %+v", s)
	}
	if len(s.ScenarioCounts) != 4 || s.ScenarioCounts["4"] != 1 || s.ScenarioCounts["1"] != 0 {
		t.Fatalf("scenario counts: %v", s.ScenarioCounts)
	}
	if len(s.RecentTransactions) != 2 || s.Collection.Shortfall != 200 || s.Collection.Mean != 200 {
		t.Fatalf("recent/collection: %+v", s)
	}

	rep, err := tr.Report(ctx, "TDT")
	if err != nil || rep.Registration.Hat != 0.5 {
		t.Fatalf("report: %+v %v", rep, err)
	}

	var buf bytes.Buffer
	n, err := tr.ExportProperties(ctx, PropertyQuery{Registered: ptr(true)}, &buf)
	if err != nil || n != 1 {
		t.Fatalf("export: %d %v", n, err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil || len(rows) != 2 {
		t.Fatalf("csv: %v %v", rows, err)
	}
	if rows[0][1] != "PID" || rows[1][3] != "9 Lido Blvd" || rows[1][6] != "Active" || rows[1][7] != "7/4/2025" {
		t.Fatalf("csv row: %v", rows[1])
	}
}

func TestOfficeLogin(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	county := OfficeQuery{State: "fl", EntityType: "tax-collector", County: "68"}
	if _, err := tr.PutOffice(ctx, OfficeInput{OfficeQuery: county, OfficeName: "Sarasota County Tax Collector", Username: "sctc", Password: "s3cret"}); err != nil {
		t.Fatal(err)
	}

	ref, err := tr.LookupOffice(ctx, county)
	if err != nil || ref.OfficeName != "Sarasota County Tax Collector" || ref.Region != "Sarasota County - Tax Collector" {
		t.Fatalf("lookup office: %+v %v", ref, err)
	}
	_, err = tr.LookupOffice(ctx, OfficeQuery{State: "FL", EntityType: "tax-collector", County: "11"})
	if !errs.Is(err, errs.NotFound) || errs.Public(err) != "No account exists under Alachua County - Tax Collector." {
		t.Fatalf("missing office: %v", err)
	}
	if _, err := tr.LookupOffice(ctx, OfficeQuery{State: "FL", EntityType: "tax-collector"}); errs.Public(err) != "Please select your county" {
		t.Fatalf("county required: %v", err)
	}

	if _, err := tr.Login(ctx, LoginInput{OfficeQuery: county, Username: "nope", Password: "s3cret"}); errs.Public(err) != "Invalid username" || !errs.Is(err, errs.Denied) {
		t.Fatalf("bad username: %v", err)
	}
	if _, err := tr.Login(ctx, LoginInput{OfficeQuery: county, Username: "sctc", Password: "wrong"}); errs.Public(err) != "Invalid password" {
		t.Fatalf("bad password: %v", err)
	}
	s, err := tr.Login(ctx, LoginInput{OfficeQuery: county, Username: "sctc", Password: "s3cret"})
	if err != nil {
		t.Fatal(err)
	}
	if s.Redirect != "/tax-collector.html" || s.CountyName != "Sarasota" || s.State != "FL" || s.Municipality != "" {
		t.Fatalf("session: %+v", s)
	}

	acct, _ := tr.Store().GetOfficeAccountByUsername(ctx, "sctc")
	if acct.PasswordHash == "s3cret" {
		t.Fatalf("password must be stored hashed")
	}
}

func TestRegions(t *testing.T) {
	tr := newTestTracker(t)
	ctx := context.Background()
	if _, err := tr.SeedRegions(ctx); err != nil {
		t.Fatal(err)
	}
	cs, err := tr.ListCounties(ctx, "fl")
	if err != nil || len(cs) != 67 {
		t.Fatalf("florida counties: %d %v", len(cs), err)
	}
	if _, err := tr.ListMunicipalities(ctx, "zz"); errs.Public(err) != MsgStateNotFound {
		t.Fatalf("unknown state: %v", err)
	}
}
