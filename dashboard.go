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
	"strconv"

	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/stats"
	"github.com/zintix-labs/tdtrack/store"
)

// Stats 儀表板統計。scenarioCounts 一律包含 "1".."4"，沒有資料時為 0。
func (t *Tracker) Stats(ctx context.Context) (*model.Stats, error) {
	s, _, err := t.collect(ctx)
	return s, err
}

// Report 儀表板統計加上登記率信賴區間與金額分佈，提供 yaml 與 CLI 輸出。
func (t *Tracker) Report(ctx context.Context, title string) (*stats.Report, error) {
	s, actual, err := t.collect(ctx)
	if err != nil {
		return nil, err
	}
	return stats.NewReport(title, s, actual, t.ids.Now()), nil
}

func (t *Tracker) collect(ctx context.Context) (*model.Stats, []float64, error) {
	total, err := t.st.CountProperties(ctx, nil)
	if err != nil {
		return nil, nil, err
	}
	registered, err := t.st.CountProperties(ctx, store.Filter{store.IsTrue("is_registered")})
	if err != nil {
		return nil, nil, err
	}
	groups, err := t.st.ScenarioCounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	counts := make(map[string]int64, len(compliance.All))
	for _, sc := range compliance.All {
		counts[strconv.Itoa(int(sc))] = groups[int(sc)]
	}
	amounts, err := t.st.PaymentAmounts(ctx)
	if err != nil {
		return nil, nil, err
	}
	dealers, err := t.st.CountDealers(ctx, true)
	if err != nil {
		return nil, nil, err
	}
	recent, err := t.st.RecentPayments(ctx, RecentLimit)
	if err != nil {
		return nil, nil, err
	}

	actual := make([]float64, len(amounts))
	expected := make([]*float64, len(amounts))
	var sum float64
	for i, a := range amounts {
		actual[i] = a.Amount
		expected[i] = a.Expected
		sum += a.Amount
	}
	s := &model.Stats{
		TotalProperties:    total,
		RegisteredCount:    registered,
		ScenarioCounts:     counts,
		TotalCollected:     sum,
		DealerCount:        dealers,
		RecentTransactions: recent,
		Collection:         stats.Summarize(actual, expected),
	}
	return s, actual, nil
}
