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

// Package metrics 集中宣告 tdtrack 的 Prometheus 指標。
//
// 指標以 promauto 註冊在預設 registry，/metrics 端點直接輸出；
// 其他套件只透過 Record* 函式寫入，不直接碰 collector。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdt_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tdt_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Sync job
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdt_sync_runs_total",
			Help: "Total number of sync runs by outcome",
		},
		[]string{"outcome"}, // success | failed
	)

	SyncCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdt_sync_created_total",
			Help: "Rows created by the sync job",
		},
		[]string{"kind"}, // property | payment
	)

	SyncDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tdt_sync_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	// Places API
	PlacesRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdt_places_requests_total",
			Help: "Outbound Google Places requests",
		},
		[]string{"endpoint", "result"}, // result: ok | zero | error | rejected
	)

	PlacesBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tdt_places_breaker_state",
			Help: "Places circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Import
	ImportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tdt_import_rows_total",
			Help: "Rows processed by the county importer",
		},
		[]string{"table", "result"}, // inserted | skipped | failed
	)
)

// RecordAPIRequest 記錄一次 API 請求。route 應為路由樣板而非實際路徑。
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordSync 記錄一次同步作業的結果。
func RecordSync(d time.Duration, properties, payments int, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failed"
	}
	SyncRunsTotal.WithLabelValues(outcome).Inc()
	SyncDuration.Observe(d.Seconds())
	SyncCreatedTotal.WithLabelValues("property").Add(float64(properties))
	SyncCreatedTotal.WithLabelValues("payment").Add(float64(payments))
}

func RecordPlacesRequest(endpoint, result string) {
	PlacesRequestsTotal.WithLabelValues(endpoint, result).Inc()
}

// SetBreakerState 0=closed, 1=half-open, 2=open，與 gobreaker.State 的數值一致。
func SetBreakerState(state int) {
	PlacesBreakerState.Set(float64(state))
}

func RecordImportRows(table, result string, n int) {
	if n <= 0 {
		return
	}
	ImportRowsTotal.WithLabelValues(table, result).Add(float64(n))
}
