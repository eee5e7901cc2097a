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
	"database/sql"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

func paymentFields(p *model.Payment) []any {
	return []any{
		&p.TransactionID, &p.PropertyID, &p.DealerID, &p.Amount,
		&p.PeriodStart, &p.PeriodEnd, &p.PaymentDate, &p.ExpectedAmount,
		&p.Verified, &p.Notes, &p.CreatedAt,
	}
}

var paymentCols = "pay.id, " + qualified("pay", Payments.Names())

// 繳款查詢一律帶出物件摘要與業者名稱。
const paymentJoins = " FROM payments pay" +
	" LEFT JOIN properties pr ON pr.id = pay.property_id" +
	" LEFT JOIN dealers d ON d.id = pay.dealer_id"

type paymentScanOpt struct {
	withProperty bool
	withTDT      bool
}

func (s *Store) queryPayments(ctx context.Context, opt paymentScanOpt, tail string, args ...any) ([]model.Payment, error) {
	q := "SELECT " + paymentCols + ", pr.address, pr.city, pr.tdt_number, d.name" + paymentJoins + tail
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, errs.Wrap(err, "query payments")
	}
	defer rows.Close()

	out := make([]model.Payment, 0)
	for rows.Next() {
		var (
			p                    model.Payment
			addr, city, tdt, dnm sql.NullString
		)
		dest := append([]any{&p.ID}, paymentFields(&p)...)
		dest = append(dest, &addr, &city, &tdt, &dnm)
		if err := rows.Scan(dest...); err != nil {
			return nil, errs.Wrap(err, "scan payment")
		}
		if opt.withProperty && (addr.Valid || city.Valid) {
			p.Property = &model.PaymentProperty{Address: addr.String, City: city.String}
			if opt.withTDT && tdt.Valid {
				v := tdt.String
				p.Property.TDTNumber = &v
			}
		}
		if dnm.Valid {
			p.Dealer = &model.PaymentDealer{Name: dnm.String}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPayments 最新的 limit 筆繳款（含物件地址與業者名稱）。
func (s *Store) ListPayments(ctx context.Context, limit int) ([]model.Payment, error) {
	return s.queryPayments(ctx, paymentScanOpt{withProperty: true},
		" ORDER BY pay.created_at DESC, pay.id DESC"+s.d.Limit(limit, 0))
}

// RecentPayments 等同 ListPayments，提供儀表板使用。
func (s *Store) RecentPayments(ctx context.Context, n int) ([]model.Payment, error) {
	return s.ListPayments(ctx, n)
}

// GetPayment 單筆繳款（另帶出 TDT 編號）；不存在時回傳 ErrNotFound。
func (s *Store) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	list, err := s.queryPayments(ctx, paymentScanOpt{withProperty: true, withTDT: true},
		" WHERE pay.id = "+s.d.Placeholder(1), id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return &list[0], nil
}

// PaymentsForProperty 某物件的所有繳款，新建立者在前。
func (s *Store) PaymentsForProperty(ctx context.Context, propertyID int64) ([]model.Payment, error) {
	return s.queryPayments(ctx, paymentScanOpt{},
		" WHERE pay.property_id = "+s.d.Placeholder(1)+" ORDER BY pay.created_at DESC, pay.id DESC", propertyID)
}

// InsertPayment 新增繳款並回填 ID。
func (s *Store) InsertPayment(ctx context.Context, p *model.Payment) error {
	return s.insertPayment(ctx, s.db, p)
}

func (s *Store) insertPayment(ctx context.Context, q querier, p *model.Payment) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	id, err := s.d.InsertID(ctx, q, s.insertSQL(Payments, Payments.Names()), derefAll(paymentFields(p)))
	if err != nil {
		return errs.Wrap(err, "insert payment")
	}
	p.ID = id
	return nil
}

// PaymentAmount 實收與應收金額。
type PaymentAmount struct {
	Amount   float64
	Expected *float64
}

// PaymentAmounts 所有繳款的金額，供統計使用。
func (s *Store) PaymentAmounts(ctx context.Context) ([]PaymentAmount, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT amount, expected_amount FROM payments")
	if err != nil {
		return nil, errs.Wrap(err, "payment amounts")
	}
	defer rows.Close()
	out := make([]PaymentAmount, 0)
	for rows.Next() {
		var a PaymentAmount
		if err := rows.Scan(&a.Amount, &a.Expected); err != nil {
			return nil, errs.Wrap(err, "scan payment amount")
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// PaymentBundle 同步作業一次寫入的物件與繳款。
type PaymentBundle struct {
	Property *model.Property
	Payments []*model.Payment
}

// InsertBundle 先寫入物件，再逐筆寫入繳款（PropertyID 自動回填）。
// 物件寫入失敗時回傳錯誤；個別繳款失敗不影響其他筆，回傳成功筆數與失敗清單。
func (s *Store) InsertBundle(ctx context.Context, b PaymentBundle) (int, []error, error) {
	if err := s.InsertProperty(ctx, b.Property); err != nil {
		return 0, nil, err
	}
	var (
		n    int
		fail []error
	)
	for _, p := range b.Payments {
		p.PropertyID = b.Property.ID
		if err := s.insertPayment(ctx, s.db, p); err != nil {
			fail = append(fail, err)
			continue
		}
		n++
	}
	return n, fail, nil
}
