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

	"github.com/zintix-labs/tdtrack/catalog"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

// ListStates 依名稱排序列出所有州。
func (s *Store) ListStates(ctx context.Context) ([]model.State, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, code, name FROM states ORDER BY name, id")
	if err != nil {
		return nil, errs.Wrap(err, "list states")
	}
	defer rows.Close()
	out := make([]model.State, 0)
	for rows.Next() {
		var st model.State
		if err := rows.Scan(&st.ID, &st.Code, &st.Name); err != nil {
			return nil, errs.Wrap(err, "scan state")
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetState 依州代碼（不分大小寫）取得；不存在時回傳 ErrNotFound。
func (s *Store) GetState(ctx context.Context, code string) (*model.State, error) {
	var st model.State
	err := s.db.QueryRowContext(ctx, "SELECT id, code, name FROM states WHERE code = "+s.d.Placeholder(1),
		strings.ToUpper(strings.TrimSpace(code))).Scan(&st.ID, &st.Code, &st.Name)
	if err != nil {
		return nil, notFound(err)
	}
	return &st, nil
}

// ListCounties 某州的郡，依名稱排序。
func (s *Store) ListCounties(ctx context.Context, stateID int64) ([]model.County, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, state_id, code, name FROM counties WHERE state_id = "+s.d.Placeholder(1)+" ORDER BY name, id", stateID)
	if err != nil {
		return nil, errs.Wrap(err, "list counties")
	}
	defer rows.Close()
	out := make([]model.County, 0)
	for rows.Next() {
		var c model.County
		if err := rows.Scan(&c.ID, &c.StateID, &c.Code, &c.Name); err != nil {
			return nil, errs.Wrap(err, "scan county")
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ListMunicipalities 某州的市鎮，依名稱排序。
func (s *Store) ListMunicipalities(ctx context.Context, stateID int64) ([]model.Municipality, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, state_id, name FROM municipalities WHERE state_id = "+s.d.Placeholder(1)+" ORDER BY name, id", stateID)
	if err != nil {
		return nil, errs.Wrap(err, "list municipalities")
	}
	defer rows.Close()
	out := make([]model.Municipality, 0)
	for rows.Next() {
		var m model.Municipality
		if err := rows.Scan(&m.ID, &m.StateID, &m.Name); err != nil {
			return nil, errs.Wrap(err, "scan municipality")
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// SeedRegions 寫入 catalog 的州、郡與市鎮；已存在的州整個略過。回傳新增的州數。
func (s *Store) SeedRegions(ctx context.Context, states []catalog.State) (int, error) {
	added := 0
	for _, st := range states {
		if _, err := s.GetState(ctx, st.Code); err == nil {
			continue
		} else if !errors.Is(err, ErrNotFound) {
			return added, errs.Wrap(err, "seed regions")
		}
		if err := s.seedState(ctx, st); err != nil {
			return added, errs.Wrap(err, "seed state "+st.Code)
		}
		added++
	}
	return added, nil
}

func (s *Store) seedState(ctx context.Context, st catalog.State) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stateID, err := s.d.InsertID(ctx, tx, s.insertSQL(States, States.Names()),
		[]any{strings.ToUpper(st.Code), st.Name})
	if err != nil {
		return err
	}
	countySQL := s.insertSQL(Counties, Counties.Names())
	for _, c := range st.Counties {
		if _, err := tx.ExecContext(ctx, countySQL, stateID, c.Code, c.Name); err != nil {
			return err
		}
	}
	muniSQL := s.insertSQL(Municipalities, Municipalities.Names())
	for _, m := range st.Municipalities {
		if _, err := tx.ExecContext(ctx, muniSQL, stateID, m); err != nil {
			return err
		}
	}
	return tx.Commit()
}
