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
	"strings"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/store"
)

// PaymentInput 新增繳款的輸入。Amount 為 nil 或 0 視為缺漏。
type PaymentInput struct {
	PropertyID     *int64
	DealerID       *int64
	Amount         *float64
	ExpectedAmount *float64
	PeriodStart    string
	PeriodEnd      string
	Notes          *string
}

// ListPayments 最新的繳款紀錄（含物件地址與業者名稱）。
func (t *Tracker) ListPayments(ctx context.Context) ([]model.Payment, error) {
	return t.st.ListPayments(ctx, PaymentListLimit)
}

// GetPayment 單筆繳款（含物件 TDT 編號）。
func (t *Tracker) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	p, err := t.st.GetPayment(ctx, id)
	if err != nil {
		return nil, mapNotFound(err, MsgPaymentNotFound)
	}
	return p, nil
}

// CreatePayment 新增繳款：產生交易編號，付款日為現在，verified 一律為 false。
// 缺少必要欄位時回傳 Warn，訊息只列出實際缺少的欄位。
func (t *Tracker) CreatePayment(ctx context.Context, in PaymentInput) (*model.Payment, error) {
	var missing []string
	if in.PropertyID == nil || *in.PropertyID == 0 {
		missing = append(missing, "property_id")
	}
	if in.Amount == nil || *in.Amount == 0 {
		missing = append(missing, "amount")
	}
	if strings.TrimSpace(in.PeriodStart) == "" {
		missing = append(missing, "period_start")
	}
	if strings.TrimSpace(in.PeriodEnd) == "" {
		missing = append(missing, "period_end")
	}
	if len(missing) > 0 {
		return nil, errs.NewWarn("Missing required fields: " + strings.Join(missing, ", "))
	}
	if *in.Amount < 0 {
		return nil, errs.NewWarn("amount must not be negative")
	}
	start, err := store.Payments.Coerce("period_start", in.PeriodStart)
	if err != nil {
		return nil, err
	}
	end, err := store.Payments.Coerce("period_end", in.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if end.(string) < start.(string) {
		return nil, errs.NewWarn("period_end must not be before period_start")
	}
	if _, err := t.GetProperty(ctx, *in.PropertyID); err != nil {
		return nil, err
	}

	now := t.ids.Now().UTC()
	p := &model.Payment{
		TransactionID:  t.ids.TransactionID(),
		PropertyID:     *in.PropertyID,
		DealerID:       in.DealerID,
		Amount:         *in.Amount,
		ExpectedAmount: in.ExpectedAmount,
		PeriodStart:    start.(string),
		PeriodEnd:      end.(string),
		PaymentDate:    &now,
		Verified:       false,
		Notes:          in.Notes,
	}
	if err := t.st.InsertPayment(ctx, p); err != nil {
		return nil, err
	}
	t.log.Info("payment recorded", "transaction_id", p.TransactionID, "property_id", p.PropertyID, "amount", p.Amount)
	return p, nil
}
