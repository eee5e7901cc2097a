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

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

func dealerFields(d *model.Dealer) []any {
	return []any{&d.Name, &d.DealerType, &d.ContactEmail, &d.ContactPhone, &d.IsActive, &d.CreatedAt}
}

// ListDealers 依名稱排序列出業者；activeOnly 時只列啟用中的。
func (s *Store) ListDealers(ctx context.Context, activeOnly bool) ([]model.Dealer, error) {
	var f Filter
	if activeOnly {
		f = f.And(IsTrue("is_active"))
	}
	where, args, err := f.Render(s.d, Dealers, "", 0)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, "+qualified("", Dealers.Names())+" FROM dealers"+where+" ORDER BY name, id", args...)
	if err != nil {
		return nil, errs.Wrap(err, "list dealers")
	}
	defer rows.Close()

	out := make([]model.Dealer, 0)
	for rows.Next() {
		var d model.Dealer
		if err := rows.Scan(append([]any{&d.ID}, dealerFields(&d)...)...); err != nil {
			return nil, errs.Wrap(err, "scan dealer")
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// InsertDealers 新增多筆業者並回填 ID。
func (s *Store) InsertDealers(ctx context.Context, ds []*model.Dealer) error {
	for _, d := range ds {
		if d.CreatedAt.IsZero() {
			d.CreatedAt = s.now()
		}
		id, err := s.d.InsertID(ctx, s.db, s.insertSQL(Dealers, Dealers.Names()), derefAll(dealerFields(d)))
		if err != nil {
			return errs.Wrap(err, "insert dealer "+d.Name)
		}
		d.ID = id
	}
	return nil
}

// CountDealers 業者數；activeOnly 時只計啟用中的。
func (s *Store) CountDealers(ctx context.Context, activeOnly bool) (int64, error) {
	q := "SELECT COUNT(*) FROM dealers"
	if activeOnly {
		q += " WHERE is_active = 1"
	}
	var n int64
	if err := s.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, errs.Wrap(err, "count dealers")
	}
	return n, nil
}
