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
	"slices"
	"strings"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

// ParcelRecords 依地號取出子資料表的所有列。欄位以資料表定義為準，值已轉為 JSON 友善型別。
func (s *Store) ParcelRecords(ctx context.Context, table, parcelID string) ([]model.Record, error) {
	t, ok := ParcelTables[table]
	if !ok {
		return nil, errs.Warnf("unknown parcel table %q", table)
	}
	cols := append([]string{"id"}, t.Names()...)
	order := "id"
	if t.OrderBy != "" {
		order = t.OrderBy + ", id"
	}
	q := "SELECT " + strings.Join(cols, ", ") + " FROM " + t.Name +
		" WHERE parcel_id = " + s.d.Placeholder(1) + " ORDER BY " + order
	rows, err := s.db.QueryContext(ctx, q, parcelID)
	if err != nil {
		return nil, errs.Wrap(err, "query "+t.Name)
	}
	defer rows.Close()

	out := make([]model.Record, 0)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errs.Wrap(err, "scan "+t.Name)
		}
		rec := make(model.Record, len(cols))
		for i, c := range cols {
			v := normalize(vals[i])
			if def, ok := t.Col(c); ok && def.Type == Bool {
				v = asBool(v)
			}
			rec[c] = v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func asBool(v any) any {
	switch x := v.(type) {
	case int64:
		return x != 0
	case float64:
		return x != 0
	}
	return v
}

// BulkInsert 在單一交易內以預備語句批次寫入。
// cols 未包含 created_at / updated_at 時自動以目前時間補上。任何一列失敗整批回滾。
func (s *Store) BulkInsert(ctx context.Context, t *TableDef, cols []string, rows [][]any) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for _, c := range cols {
		if !t.Has(c) || c == "id" {
			return 0, errs.Warnf("unknown column %s.%s", t.Name, c)
		}
	}
	all := slices.Clone(cols)
	var stamps int
	for _, c := range []string{"created_at", "updated_at"} {
		if t.Has(c) && !slices.Contains(cols, c) {
			all = append(all, c)
			stamps++
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errs.Wrap(err, "begin "+t.Name)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, s.insertSQL(t, all))
	if err != nil {
		return 0, errs.Wrap(err, "prepare "+t.Name)
	}
	defer stmt.Close()

	now := s.now()
	for i, r := range rows {
		if len(r) != len(cols) {
			return 0, errs.Warnf("%s row %d: want %d values, got %d", t.Name, i, len(cols), len(r))
		}
		args := bindArgs(r)
		for j := 0; j < stamps; j++ {
			args = append(args, now)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, errs.Wrap(err, "insert "+t.Name)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errs.Wrap(err, "commit "+t.Name)
	}
	return len(rows), nil
}
