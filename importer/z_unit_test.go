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
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/store"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want string
		enc  string
	}{
		{"utf8", []byte("Caf\xc3\xa9"), "Café", "utf-8"},
		{"bom", []byte("\xef\xbb\xbfCode"), "Code", "utf-8"},
		{"cp1252", []byte("Caf\xe9 \x93Q\x94"), "Café “Q”", "windows-1252"},
	}
	for _, tc := range cases {
		got, enc := Decode(tc.in)
		if got != tc.want || enc != tc.enc {
			t.Fatalf("%s: got %q (%s), want %q (%s)", tc.name, got, enc, tc.want, tc.enc)
		}
	}
}

func TestSelect(t *testing.T) {
	all, ok := Select("all")
	if !ok || len(all) != len(Specs) {
		t.Fatalf("all: %d %v", len(all), ok)
	}
	lk, ok := Select("lookups")
	if !ok || len(lk) != 4 || lk[0].batch() != LookupBatch {
		t.Fatalf("lookups: %d %v", len(lk), ok)
	}
	if _, ok := Select("bogus"); ok {
		t.Fatalf("unknown table should fail")
	}
	if _, ok := Select("sales", "bogus"); ok {
		t.Fatalf("mixed unknown table should fail")
	}
}

func writeFile(t *testing.T, dir, name string, body []byte) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), body, 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Options{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "imp.db"), Log: discard()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.Migrate(ctx); err != nil {
		t.Fatal(err)
	}
	return st
}

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func fixtures(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, dir, "LookupLandUseCodes.txt", []byte("Code,Description\n0100,Single Family\n0400,Condominium\n,orphan\n"))
	// windows-1252：é = 0xE9
	writeFile(t, dir, "PropertyOwnerLegal.txt", []byte(
		"ParcelID,name1,StreetNumber,LOCDescription,LocCity,LocZip,LUC,TotalLand,Zoning1\n"+
			"0001020304,\"Ren\xe9 Dupont\",123,MIDNIGHT PASS RD,SIESTA KEY,34242,0100,\"1,250.5\",RSF-2\n"+
			"0001020305,Ann Lee,,BEACH RD,,,0400,,\n"+
			",Nobody,9,NOWHERE,,,,,\n"))
	writeFile(t, dir, "Sales.txt", []byte(
		"parcelid,saledate,saleprice,deedtype\n"+
			"0001020304,2021-06-30,450000,WD\n"+
			"0001020304,not-a-date,1,QC\n"+
			"0001020305,01/15/2019,,\n"))
	return dir
}

func TestImportRun(t *testing.T) {
	st := newTestStore(t)
	dir := fixtures(t)
	im, err := New(Options{Store: st, Dir: dir, Log: discard()})
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	rep, err := im.Run(ctx, "lookups", "properties", "sales")
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]TableResult{}
	for _, r := range rep.Tables {
		byName[r.Table] = r
	}
	if r := byName["lookup_land_use_codes"]; r.Inserted != 2 || r.Skipped != 1 {
		t.Fatalf("land use lookup: %+v", r)
	}
	if r := byName["lookup_deed_types"]; !r.Missing {
		t.Fatalf("missing file should be reported: %+v", r)
	}
	props := byName["properties"]
	if props.Inserted != 2 || props.Skipped != 1 || props.Encoding != "windows-1252" {
		t.Fatalf("properties: %+v", props)
	}
	sales := byName["sales"]
	if sales.Inserted != 2 || sales.Failed != 1 || len(sales.Errors) != 1 {
		t.Fatalf("sales: %+v", sales)
	}

	p, err := st.FindProperty(ctx, store.Filter{store.Eq("parcel_id", "0001020304")})
	if err != nil {
		t.Fatal(err)
	}
	if p.Address != "123 MIDNIGHT PASS RD" || p.City != "SIESTA KEY" || *p.OwnerName != "René Dupont" {
		t.Fatalf("property: %+v", p)
	}
	if p.TotalLand == nil || *p.TotalLand != 1250.5 || *p.Zoning1 != "RSF-2" || p.IsRegistered || !p.IsActive {
		t.Fatalf("property fields: %+v", p)
	}
	q, _ := st.FindProperty(ctx, store.Filter{store.Eq("parcel_id", "0001020305")})
	if q.Address != "0 BEACH RD" || q.City != "Sarasota" || q.ZipCode != "00000" {
		t.Fatalf("defaults: %+v", q)
	}

	recs, err := st.ParcelRecords(ctx, "sales", "0001020304")
	if err != nil || len(recs) != 1 || recs[0]["deed_type"] != "WD" {
		t.Fatalf("sales records: %v %v", recs, err)
	}

	// 重複匯入：地號唯一，整批失敗但不中斷
	again, err := im.Run(ctx, "properties")
	if err != nil {
		t.Fatal(err)
	}
	if r := again.Tables[0]; r.Inserted != 0 || r.Failed != 2 {
		t.Fatalf("re-import: %+v", r)
	}
}

func TestImportDryRun(t *testing.T) {
	dir := fixtures(t)
	im, err := New(Options{Dir: dir, DryRun: true, Log: discard()})
	if err != nil {
		t.Fatal(err)
	}
	rep, err := im.Run(context.Background(), "properties")
	if err != nil {
		t.Fatal(err)
	}
	r := rep.Tables[0]
	if r.Prepared != 2 || r.Inserted != 0 || r.Sample["parcel_id"] != "0001020304" || !rep.DryRun {
		t.Fatalf("dry run: %+v", r)
	}

	if _, err := im.Run(context.Background(), "nope"); !errs.Is(err, errs.Warn) {
		t.Fatalf("unknown table: %v", err)
	}
	if _, err := New(Options{Dir: dir}); err == nil {
		t.Fatalf("store required outside dry run")
	}
}
