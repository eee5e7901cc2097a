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

package model

// Stats 儀表板統計。
type Stats struct {
	TotalProperties    int64             `json:"totalProperties" yaml:"total_properties"`
	RegisteredCount    int64             `json:"registeredCount" yaml:"registered_count"`
	ScenarioCounts     map[string]int64  `json:"scenarioCounts" yaml:"scenario_counts"`
	TotalCollected     float64           `json:"totalCollected" yaml:"total_collected"`
	DealerCount        int64             `json:"dealerCount" yaml:"dealer_count"`
	RecentTransactions []Payment         `json:"recentTransactions" yaml:"-"`
	Collection         CollectionSummary `json:"collection" yaml:"collection"`
}

// CollectionSummary 實收金額的分佈摘要。
type CollectionSummary struct {
	Count     int     `json:"count" yaml:"count"`
	Mean      float64 `json:"mean" yaml:"mean"`
	StdDev    float64 `json:"stddev" yaml:"stddev"`
	Expected  float64 `json:"expected" yaml:"expected"`
	Shortfall float64 `json:"shortfall" yaml:"shortfall"`
}

// SyncResult 同步作業結果。
type SyncResult struct {
	RunID             string   `json:"runId"`
	Success           bool     `json:"success"`
	Message           string   `json:"message"`
	PropertiesCreated int      `json:"propertiesCreated"`
	PaymentsCreated   int      `json:"paymentsCreated"`
	Errors            []string `json:"errors"`
}
