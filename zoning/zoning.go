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

// Package zoning 從分區 shapefile 載入多邊形，提供座標 → 分區代碼查詢。
package zoning

import (
	"math"
	"strings"

	shp "github.com/jonas-p/go-shp"

	"github.com/zintix-labs/tdtrack/errs"
)

// Feature 一個分區多邊形（可能多個 ring）及其 DBF 屬性。
type Feature struct {
	Rings  [][][2]float64 // [lat, lng]
	Attrs  map[string]string
	MinLat float64
	MinLng float64
	MaxLat float64
	MaxLng float64
}

// Index 記憶體中的分區圖層。零值可用，查詢永遠找不到。
type Index struct {
	attr     string
	features []Feature
}

// Load 讀取 shapefile；attr 為回傳分區代碼所用的 DBF 欄位名（不分大小寫）。
func Load(path, attr string) (*Index, error) {
	r, err := shp.Open(path)
	if err != nil {
		return nil, errs.Wrap(err, "open zoning shapefile "+path)
	}
	defer r.Close()

	fields := r.Fields()
	names := make([]string, len(fields))
	found := false
	for i, f := range fields {
		names[i] = f.String()
		if strings.EqualFold(names[i], attr) {
			found = true
		}
	}
	if !found {
		return nil, errs.Warnf("zoning attribute %q not in %s", attr, path)
	}

	idx := &Index{attr: attr}
	for r.Next() {
		n, shape := r.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			continue
		}
		attrs := make(map[string]string, len(names))
		for i, name := range names {
			attrs[name] = strings.TrimSpace(r.ReadAttribute(n, i))
		}
		idx.features = append(idx.features, newFeature(poly, attrs))
	}
	if err := r.Err(); err != nil {
		return nil, errs.Wrap(err, "read zoning shapefile")
	}
	return idx, nil
}

// New 以現成的 Feature 建立索引。
func New(attr string, features ...Feature) *Index {
	return &Index{attr: attr, features: features}
}

func newFeature(poly *shp.Polygon, attrs map[string]string) Feature {
	f := Feature{
		Attrs:  attrs,
		MinLat: math.MaxFloat64, MinLng: math.MaxFloat64,
		MaxLat: -math.MaxFloat64, MaxLng: -math.MaxFloat64,
	}
	for p := range poly.Parts {
		start := poly.Parts[p]
		end := int32(len(poly.Points))
		if p+1 < len(poly.Parts) {
			end = poly.Parts[p+1]
		}
		ring := make([][2]float64, 0, end-start)
		for _, pt := range poly.Points[start:end] {
			ring = append(ring, [2]float64{pt.Y, pt.X})
			f.MinLat = min(f.MinLat, pt.Y)
			f.MaxLat = max(f.MaxLat, pt.Y)
			f.MinLng = min(f.MinLng, pt.X)
			f.MaxLng = max(f.MaxLng, pt.X)
		}
		f.Rings = append(f.Rings, ring)
	}
	return f
}

// Len 多邊形數量。
func (x *Index) Len() int {
	if x == nil {
		return 0
	}
	return len(x.features)
}

// Lookup 回傳第一個包含座標之多邊形的分區代碼。
func (x *Index) Lookup(lat, lng float64) (string, bool) {
	f, ok := x.Feature(lat, lng)
	if !ok {
		return "", false
	}
	for k, v := range f.Attrs {
		if strings.EqualFold(k, x.attr) {
			return v, v != ""
		}
	}
	return "", false
}

// Feature 回傳包含座標的多邊形。
func (x *Index) Feature(lat, lng float64) (*Feature, bool) {
	if x == nil {
		return nil, false
	}
	for i := range x.features {
		f := &x.features[i]
		if lat < f.MinLat || lat > f.MaxLat || lng < f.MinLng || lng > f.MaxLng {
			continue
		}
		for _, ring := range f.Rings {
			if pointInRing(lat, lng, ring) {
				return f, true
			}
		}
	}
	return nil, false
}

// pointInRing ray casting；ring 首尾是否重複都可以。
func pointInRing(lat, lng float64, ring [][2]float64) bool {
	inside := false
	j := len(ring) - 1
	for i := range ring {
		yi, xi := ring[i][0], ring[i][1]
		yj, xj := ring[j][0], ring[j][1]
		if (yi > lat) != (yj > lat) && lng < (xj-xi)*(lat-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
