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
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

// Patch 欄位名稱 → 值（nil 代表寫入 NULL）。寫入前一律經過 Normalize。
type Patch map[string]any

// 不允許透過 Patch 修改的欄位。
var immutable = []string{"id", "created_at", "updated_at"}

// Normalize 依 Properties 欄位定義轉型每個值，回傳新的 Patch。
// 不可修改的欄位略過；未知欄位、型別不符、NOT NULL 欄位收到 NULL，
// 或 compliance_scenario 不在 1..4 時回傳 Warn。
func (p Patch) Normalize() (Patch, error) {
	out := make(Patch, len(p))
	for c, v := range p {
		if slices.Contains(immutable, c) {
			continue
		}
		if !Properties.Has(c) {
			return nil, errs.Warnf("unknown property field %q", c)
		}
		cv, err := Properties.Coerce(c, v)
		if err != nil {
			return nil, err
		}
		if n, ok := cv.(int64); ok && c == "compliance_scenario" && !compliance.Valid(n) {
			return nil, errs.Warnf("compliance_scenario must be between 1 and 4, got %d", n)
		}
		out[c] = cv
	}
	return out, nil
}

// propertyFields 依 Properties 欄位順序回傳 p 各欄位的指標。
func propertyFields(p *model.Property) []any {
	return []any{
		&p.ParcelID,
		&p.UserAccount, &p.OwnerName, &p.OwnerName2, &p.OwnerName3,
		&p.OwnerStreet1, &p.OwnerStreet2, &p.OwnerCity, &p.OwnerState, &p.OwnerPostal, &p.OwnerCountyCode,
		&p.Address, &p.StreetNumber, &p.LocDescription, &p.LocUnit, &p.LocDirPrefix, &p.LocDirSuffix,
		&p.City, &p.LocState, &p.ZipCode, &p.CountyName, &p.Lat, &p.Lng, &p.GooglePlaceID,
		&p.LandUseCode, &p.NeighborhoodCode, &p.LocationState,
		&p.PriorID1, &p.PriorID2, &p.PriorID3,
		&p.Census, &p.Utilities1, &p.Utilities2, &p.GulfBay,
		&p.Description, &p.LegalDescription1, &p.LegalDescription2, &p.LegalDescription3, &p.LegalDescription4,
		&p.TotalLand, &p.LandUnitType, &p.Zoning1, &p.Zoning2, &p.Zoning3, &p.ZoningType, &p.PropertyStatus,
		&p.TDTNumber, &p.HomesteadStatus, &p.IsRegistered, &p.RegistrationDate,
		&p.IsActive, &p.ActiveDate, &p.InactiveDate, &p.ComplianceScenario,
		&p.CreatedAt, &p.UpdatedAt,
	}
}

// derefAll 將欄位指標轉為綁定參數。
func derefAll(ptrs []any) []any {
	out := make([]any, len(ptrs))
	for i, ptr := range ptrs {
		switch x := ptr.(type) {
		case *string:
			out[i] = *x
		case **string:
			out[i] = bindArg(*x)
		case **float64:
			out[i] = bindArg(*x)
		case **int:
			out[i] = bindArg(*x)
		case **int64:
			out[i] = bindArg(*x)
		case *bool:
			out[i] = bindArg(*x)
		case *float64:
			out[i] = *x
		case *int64:
			out[i] = *x
		case **time.Time:
			out[i] = bindArg(*x)
		case *time.Time:
			out[i] = bindArg(*x)
		default:
			out[i] = ptr
		}
	}
	return out
}

var propertySelect = "id, " + strings.Join(Properties.Names(), ", ")

func scanProperty(sc interface{ Scan(...any) error }) (*model.Property, error) {
	p := &model.Property{}
	dest := append([]any{&p.ID}, propertyFields(p)...)
	if err := sc.Scan(dest...); err != nil {
		return nil, err
	}
	return p, nil
}

// ListProperties 依條件列出物件，最新建立者在前。limit <= 0 表示不限。
func (s *Store) ListProperties(ctx context.Context, f Filter, limit, offset int) ([]model.Property, error) {
	where, args, err := f.Render(s.d, Properties, "", 0)
	if err != nil {
		return nil, errs.NewWarn(err.Error())
	}
	q := "SELECT " + propertySelect + " FROM properties" + where +
		" ORDER BY created_at DESC, id DESC" + s.d.Limit(limit, offset)
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errs.Wrap(err, "list properties")
	}
	defer rows.Close()

	out := make([]model.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, errs.Wrap(err, "scan property")
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(err, "list properties")
	}
	return out, nil
}

// GetProperty 依 id 取得物件；不存在時回傳 ErrNotFound。
func (s *Store) GetProperty(ctx context.Context, id int64) (*model.Property, error) {
	q := "SELECT " + propertySelect + " FROM properties WHERE id = " + s.d.Placeholder(1)
	p, err := scanProperty(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// FindProperty 回傳第一筆符合條件的物件；不存在時回傳 ErrNotFound。
func (s *Store) FindProperty(ctx context.Context, f Filter) (*model.Property, error) {
	list, err := s.ListProperties(ctx, f, 1, 0)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// InsertProperty 新增物件並回填 ID；CreatedAt/UpdatedAt 為零值時以目前時間補上。
func (s *Store) InsertProperty(ctx context.Context, p *model.Property) error {
	now := s.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}
	args := derefAll(propertyFields(p))
	id, err := s.d.InsertID(ctx, s.db, s.insertSQL(Properties, Properties.Names()), args)
	if err != nil {
		return errs.Wrap(err, "insert property")
	}
	p.ID = id
	return nil
}

// UpdateProperty 轉型並套用 patch，回傳更新後的物件；updated_at 一律改為目前時間。
func (s *Store) UpdateProperty(ctx context.Context, id int64, patch Patch) (*model.Property, error) {
	patch, err := patch.Normalize()
	if err != nil {
		return nil, err
	}
	cols := slices.Sorted(maps.Keys(patch))

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for i, c := range cols {
		sets = append(sets, c+" = "+s.d.Placeholder(i+1))
		args = append(args, bindArg(patch[c]))
	}
	sets = append(sets, "updated_at = "+s.d.Placeholder(len(args)+1))
	args = append(args, s.now())
	args = append(args, id)

	q := "UPDATE properties SET " + strings.Join(sets, ", ") + " WHERE id = " + s.d.Placeholder(len(args))
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return nil, errs.Wrap(err, "update property")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}
	return s.GetProperty(ctx, id)
}

// PropertyExistsByPlaceID 是否已有相同 Google place id 的物件。
func (s *Store) PropertyExistsByPlaceID(ctx context.Context, placeID string) (bool, error) {
	var n int64
	q := "SELECT COUNT(*) FROM properties WHERE google_place_id = " + s.d.Placeholder(1)
	if err := s.db.QueryRowContext(ctx, q, placeID).Scan(&n); err != nil {
		return false, errs.Wrap(err, "check place id")
	}
	return n > 0, nil
}

// CountProperties 符合條件的物件數。
func (s *Store) CountProperties(ctx context.Context, f Filter) (int64, error) {
	where, args, err := f.Render(s.d, Properties, "", 0)
	if err != nil {
		return 0, errs.NewWarn(err.Error())
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM properties"+where, args...).Scan(&n); err != nil {
		return 0, errs.Wrap(err, "count properties")
	}
	return n, nil
}

// ScenarioCounts 依 compliance_scenario 分組計數（不含 NULL）。
func (s *Store) ScenarioCounts(ctx context.Context) (map[int]int64, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT compliance_scenario, COUNT(*) FROM properties WHERE compliance_scenario IS NOT NULL GROUP BY compliance_scenario")
	if err != nil {
		return nil, errs.Wrap(err, "scenario counts")
	}
	defer rows.Close()
	out := make(map[int]int64)
	for rows.Next() {
		var (
			sc int
			n  int64
		)
		if err := rows.Scan(&sc, &n); err != nil {
			return nil, errs.Wrap(err, "scan scenario count")
		}
		out[sc] = n
	}
	return out, rows.Err()
}
