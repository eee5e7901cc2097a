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
	"strings"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

// OfficeKey 以身分與區域定位辦公室帳號。County 與 Municipality 為空字串時比對 NULL。
type OfficeKey struct {
	StateCode    string
	EntityType   string
	County       string
	Municipality string
}

func officeFields(a *model.OfficeAccount) []any {
	return []any{
		&a.StateCode, &a.EntityType, &a.CountyCode, &a.MunicipalityName,
		&a.OfficeName, &a.Username, &a.PasswordHash, &a.IsActive, &a.CreatedAt,
	}
}

var officeSelect = "SELECT id, " + strings.Join(OfficeAccounts.Names(), ", ") + " FROM office_accounts"

func (s *Store) findOffice(ctx context.Context, f Filter) (*model.OfficeAccount, error) {
	where, args, err := f.Render(s.d, OfficeAccounts, "", 0)
	if err != nil {
		return nil, err
	}
	var a model.OfficeAccount
	err = s.db.QueryRowContext(ctx, officeSelect+where+" ORDER BY id"+s.d.Limit(1, 0), args...).
		Scan(append([]any{&a.ID}, officeFields(&a)...)...)
	if err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

// FindOfficeAccount 依區域找啟用中的帳號；不存在時回傳 ErrNotFound。
func (s *Store) FindOfficeAccount(ctx context.Context, k OfficeKey) (*model.OfficeAccount, error) {
	f := Filter{
		Eq("state_code", strings.ToUpper(k.StateCode)),
		Eq("entity_type", k.EntityType),
		IsTrue("is_active"),
	}
	if k.County != "" {
		f = f.And(Eq("county_code", k.County))
	} else {
		f = f.And(IsNull("county_code"))
	}
	if k.Municipality != "" {
		f = f.And(Eq("municipality_name", k.Municipality))
	} else {
		f = f.And(IsNull("municipality_name"))
	}
	return s.findOffice(ctx, f)
}

// GetOfficeAccountByUsername 依帳號名稱取得；不存在時回傳 ErrNotFound。
func (s *Store) GetOfficeAccountByUsername(ctx context.Context, username string) (*model.OfficeAccount, error) {
	return s.findOffice(ctx, Filter{Eq("username", username)})
}

// UpsertOfficeAccount 依 username 新增或覆寫帳號，回填 ID。
func (s *Store) UpsertOfficeAccount(ctx context.Context, a *model.OfficeAccount) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	cur, err := s.GetOfficeAccountByUsername(ctx, a.Username)
	switch {
	case err == nil:
		a.ID = cur.ID
		a.CreatedAt = cur.CreatedAt
		cols := OfficeAccounts.Names()
		sets := make([]string, len(cols))
		for i, c := range cols {
			sets[i] = c + " = " + s.d.Placeholder(i+1)
		}
		args := append(derefAll(officeFields(a)), a.ID)
		q := "UPDATE office_accounts SET " + strings.Join(sets, ", ") + " WHERE id = " + s.d.Placeholder(len(args))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return errs.Wrap(err, "update office account")
		}
		return nil
	case errors.Is(err, ErrNotFound):
		id, err := s.d.InsertID(ctx, s.db, s.insertSQL(OfficeAccounts, OfficeAccounts.Names()), derefAll(officeFields(a)))
		if err != nil {
			return errs.Wrap(err, "insert office account")
		}
		a.ID = id
		return nil
	}
	return errs.Wrap(err, "lookup office account")
}

