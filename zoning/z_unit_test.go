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

package zoning

import (
	"os"
	"path/filepath"
	"testing"

	shp "github.com/jonas-p/go-shp"
)

func square(lat0, lng0, size float64) [][2]float64 {
	return [][2]float64{
		{lat0, lng0}, {lat0, lng0 + size}, {lat0 + size, lng0 + size}, {lat0 + size, lng0}, {lat0, lng0},
	}
}

func TestPointInRing(t *testing.T) {
	ring := square(0, 0, 10)
	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{5, 5, true},
		{0.1, 9.9, true},
		{-1, 5, false},
		{5, 11, false},
		{15, 15, false},
	}
	for _, tc := range cases {
		if got := pointInRing(tc.lat, tc.lng, ring); got != tc.want {
			t.Fatalf("(%v,%v): want %v got %v", tc.lat, tc.lng, tc.want, got)
		}
	}
}

func TestIndexLookup(t *testing.T) {
	a := Feature{Rings: [][][2]float64{square(27, -83, 1)}, Attrs: map[string]string{"ZONE": "RSF-2"},
		MinLat: 27, MaxLat: 28, MinLng: -83, MaxLng: -82}
	idx := New("zone", a)
	if z, ok := idx.Lookup(27.5, -82.5); !ok || z != "RSF-2" {
		t.Fatalf("lookup: %q %v", z, ok)
	}
	if _, ok := idx.Lookup(30, -82.5); ok {
		t.Fatalf("point outside should not match")
	}

	var nilIdx *Index
	if _, ok := nilIdx.Lookup(1, 1); ok || nilIdx.Len() != 0 {
		t.Fatalf("nil index should never match")
	}
}

// writeFixture 寫出兩個相鄰矩形的 shapefile，回傳 .shp 路徑。
func writeFixture(t *testing.T) string {
	t.Helper()
	base := filepath.Join(t.TempDir(), "zoning")
	w, err := shp.Create(base+".shp", shp.POLYGON)
	if err != nil {
		t.Fatal(err)
	}
	if err := w.SetFields([]shp.Field{shp.StringField("ZONE", 10)}); err != nil {
		t.Fatal(err)
	}
	polys := []struct {
		zone   string
		points []shp.Point
	}{
		{"CG", []shp.Point{{X: -82.6, Y: 27.3}, {X: -82.5, Y: 27.3}, {X: -82.5, Y: 27.4}, {X: -82.6, Y: 27.4}, {X: -82.6, Y: 27.3}}},
		{"RMF-3", []shp.Point{{X: -82.5, Y: 27.3}, {X: -82.4, Y: 27.3}, {X: -82.4, Y: 27.4}, {X: -82.5, Y: 27.4}, {X: -82.5, Y: 27.3}}},
	}
	for i, p := range polys {
		poly := shp.Polygon(*shp.NewPolyLine([][]shp.Point{p.points}))
		w.Write(&poly)
		if err := w.WriteAttribute(i, 0, p.zone); err != nil {
			t.Fatal(err)
		}
	}
	w.Close()

	// go-shp v0.1.1 的 Writer 把 DBF 寫成 "<base>dbf"（少了點），Reader 則讀 "<base>.dbf"。
	if err := os.Rename(base+"dbf", base+".dbf"); err != nil {
		t.Fatalf("move dbf into place: %v", err)
	}
	return base + ".shp"
}

func TestLoadShapefile(t *testing.T) {
	path := writeFixture(t)
	r, err := shp.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	fields := r.Fields()
	r.Close()
	if len(fields) != 1 || fields[0].String() != "ZONE" {
		t.Fatalf("fixture fields: %v", fields)
	}

	idx, err := Load(path, "zone")
	if err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 features, got %d", idx.Len())
	}
	if z, ok := idx.Lookup(27.35, -82.55); !ok || z != "CG" {
		t.Fatalf("west polygon: %q %v", z, ok)
	}
	if z, ok := idx.Lookup(27.35, -82.45); !ok || z != "RMF-3" {
		t.Fatalf("east polygon: %q %v", z, ok)
	}

	if _, err := Load(path, "missing"); err == nil {
		t.Fatalf("unknown attribute should fail")
	}
}
