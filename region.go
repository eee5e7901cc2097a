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
	"context"

	"github.com/zintix-labs/tdtrack/model"
)

// ListDealers 啟用中的業者，依名稱排序。
func (t *Tracker) ListDealers(ctx context.Context) ([]model.Dealer, error) {
	return t.st.ListDealers(ctx, true)
}

// ListStates 所有州，依名稱排序。
func (t *Tracker) ListStates(ctx context.Context) ([]model.State, error) {
	return t.st.ListStates(ctx)
}

func (t *Tracker) state(ctx context.Context, code string) (*model.State, error) {
	st, err := t.st.GetState(ctx, code)
	if err != nil {
		return nil, mapNotFound(err, MsgStateNotFound)
	}
	return st, nil
}

// ListCounties 州代碼（不分大小寫）底下的郡。
func (t *Tracker) ListCounties(ctx context.Context, stateCode string) ([]model.County, error) {
	st, err := t.state(ctx, stateCode)
	if err != nil {
		return nil, err
	}
	return t.st.ListCounties(ctx, st.ID)
}

// ListMunicipalities 州代碼（不分大小寫）底下的市鎮。
func (t *Tracker) ListMunicipalities(ctx context.Context, stateCode string) ([]model.Municipality, error) {
	st, err := t.state(ctx, stateCode)
	if err != nil {
		return nil, err
	}
	return t.st.ListMunicipalities(ctx, st.ID)
}

// SeedRegions 把 catalog 的州郡市鎮寫入資料庫；已存在的州略過。
func (t *Tracker) SeedRegions(ctx context.Context) (int, error) {
	n, err := t.st.SeedRegions(ctx, t.cat.States)
	if err == nil && n > 0 {
		t.log.Info("regions seeded", "states", n)
	}
	return n, err
}
