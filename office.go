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
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/zintix-labs/tdtrack/catalog"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/store"
)

// OfficeQuery 登入頁選擇的身分與區域。
type OfficeQuery struct {
	State        string
	EntityType   string
	County       string // 郡代碼，county 層級身分使用
	Municipality string // 市鎮名稱，municipality 層級身分使用
}

// LoginInput 登入輸入。
type LoginInput struct {
	OfficeQuery
	Username string
	Password string
}

// resolve 依身分層級檢查必要欄位，並只保留該層級用得到的區域欄位。
func (t *Tracker) resolve(q OfficeQuery) (catalog.Role, store.OfficeKey, error) {
	state := strings.ToUpper(strings.TrimSpace(q.State))
	if state == "" || q.EntityType == "" {
		return catalog.Role{}, store.OfficeKey{}, errs.NewWarn("Please select state and entity type")
	}
	role, ok := t.cat.Role(q.EntityType)
	if !ok {
		return catalog.Role{}, store.OfficeKey{}, errs.Warnf("Unknown entity type %q", q.EntityType)
	}
	k := store.OfficeKey{StateCode: state, EntityType: role.EntityType}
	switch role.Scope {
	case catalog.ScopeCounty:
		if q.County == "" {
			return role, k, errs.NewWarn("Please select your county")
		}
		k.County = q.County
	case catalog.ScopeMunicipality:
		if q.Municipality == "" {
			return role, k, errs.NewWarn("Please select your municipality")
		}
		k.Municipality = q.Municipality
	}
	return role, k, nil
}

// regionLabel 例如 "Sarasota County - Tax Collector"。
func (t *Tracker) regionLabel(role catalog.Role, k store.OfficeKey) string {
	region := k.StateCode
	if st, ok := t.cat.State(k.StateCode); ok {
		region = st.Name
	}
	switch {
	case k.County != "":
		region = t.cat.CountyName(k.StateCode, k.County) + " County"
	case k.Municipality != "":
		region = k.Municipality
	}
	label := role.Label
	if label == "" {
		label = role.EntityType
	}
	return region + " - " + label
}

func (t *Tracker) findOffice(ctx context.Context, q OfficeQuery) (catalog.Role, store.OfficeKey, *model.OfficeAccount, error) {
	role, k, err := t.resolve(q)
	if err != nil {
		return role, k, nil, err
	}
	acct, err := t.st.FindOfficeAccount(ctx, k)
	if err != nil {
		return role, k, nil, mapNotFound(err, "No account exists under "+t.regionLabel(role, k)+".")
	}
	return role, k, acct, nil
}

// LookupOffice 確認所選區域是否有辦公室帳號；不回傳任何憑證資訊。
func (t *Tracker) LookupOffice(ctx context.Context, q OfficeQuery) (*model.OfficeRef, error) {
	role, k, acct, err := t.findOffice(ctx, q)
	if err != nil {
		return nil, err
	}
	return &model.OfficeRef{
		EntityType: acct.EntityType,
		OfficeName: acct.OfficeName,
		Region:     t.regionLabel(role, k),
	}, nil
}

// Login 驗證帳號與 bcrypt 密碼雜湊，成功時回傳交給瀏覽器保存的 Session。
// 伺服器不保存 Session，之後的請求也不信任它。
func (t *Tracker) Login(ctx context.Context, in LoginInput) (*model.Session, error) {
	if in.Username == "" || in.Password == "" {
		return nil, errs.NewWarn("Please enter username and password")
	}
	role, k, acct, err := t.findOffice(ctx, in.OfficeQuery)
	if err != nil {
		return nil, err
	}
	if in.Username != acct.Username {
		return nil, errs.NewDenied("Invalid username")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(in.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, errs.NewDenied("Invalid password")
		}
		return nil, errs.Wrap(err, "verify password")
	}

	s := &model.Session{
		Username:   acct.Username,
		State:      k.StateCode,
		EntityType: role.EntityType,
		OfficeName: acct.OfficeName,
		Redirect:   t.cat.RedirectFor(role.EntityType),
	}
	if k.County != "" {
		s.County = k.County
		s.CountyName = t.cat.CountyName(k.StateCode, k.County)
	}
	if k.Municipality != "" {
		s.Municipality = k.Municipality
	}
	t.log.Info("office login", "username", acct.Username, "entity_type", role.EntityType)
	return s, nil
}

// HashPassword 以 bcrypt 預設成本產生密碼雜湊。
func HashPassword(pw string) (string, error) {
	if pw == "" {
		return "", errs.NewWarn("password must not be empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", errs.Wrap(err, "hash password")
	}
	return string(h), nil
}

// OfficeInput 建立或覆寫辦公室帳號（營運 CLI 使用）。
type OfficeInput struct {
	OfficeQuery
	OfficeName string
	Username   string
	Password   string
}

// PutOffice 依 username 新增或覆寫帳號，密碼以 bcrypt 保存。
func (t *Tracker) PutOffice(ctx context.Context, in OfficeInput) (*model.OfficeAccount, error) {
	_, k, err := t.resolve(in.OfficeQuery)
	if err != nil {
		return nil, err
	}
	if in.Username == "" || in.OfficeName == "" {
		return nil, errs.NewWarn("username and office name are required")
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	a := &model.OfficeAccount{
		StateCode:    k.StateCode,
		EntityType:   k.EntityType,
		OfficeName:   in.OfficeName,
		Username:     in.Username,
		PasswordHash: hash,
		IsActive:     true,
	}
	if k.County != "" {
		a.CountyCode = ptr(k.County)
	}
	if k.Municipality != "" {
		a.MunicipalityName = ptr(k.Municipality)
	}
	if err := t.st.UpsertOfficeAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}
