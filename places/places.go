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

// Package places 是 Google Places（Nearby Search / Place Details）的最小客戶端，只供示範資料同步使用。
//
// 所有對外請求都先經過 x/time/rate 限流，再交給 gobreaker 斷路器執行；
// 連續失敗達門檻後斷路器開啟，期間的呼叫直接回傳錯誤而不打到外部服務。
//
// NearbyLodging 失敗時回傳空結果（只記錄日誌），呼叫端不需要區分「沒有資料」與「查詢失敗」。
package places

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/metrics"
)

const (
	DefaultBaseURL = "https://maps.googleapis.com/maps/api/place"
	DefaultRadius  = 2000
	PlaceType      = "lodging"

	detailFields = "formatted_address,address_components,geometry"
)

// ErrNoAPIKey 未設定 API key。訊息直接回給 /api/sync 呼叫端。
var ErrNoAPIKey = errs.NewFatal("Google API key not configured. Set GOOGLE_API_KEY environment variable.")

type Config struct {
	APIKey          string
	BaseURL         string
	Radius          int
	RPS             float64 // <= 0 代表不限流
	Timeout         time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	HTTPClient      *http.Client
	Log             *slog.Logger
}

type Client struct {
	key    string
	base   string
	radius int
	http   *http.Client
	lim    *rate.Limiter
	cb     *gobreaker.CircuitBreaker[[]byte]
	log    *slog.Logger
}

// New 建立客戶端；APIKey 為空時回傳 ErrNoAPIKey。
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Radius <= 0 {
		cfg.Radius = DefaultRadius
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	lim := rate.NewLimiter(rate.Inf, 1)
	if cfg.RPS > 0 {
		lim = rate.NewLimiter(rate.Limit(cfg.RPS), 1)
	}

	c := &Client{
		key:    cfg.APIKey,
		base:   cfg.BaseURL,
		radius: cfg.Radius,
		http:   cfg.HTTPClient,
		lim:    lim,
		log:    cfg.Log,
	}
	threshold := cfg.BreakerFailures
	c.cb = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "google-places",
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(int(to))
			c.log.Warn("places breaker state change", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c, nil
}

// State 斷路器目前狀態（closed / half-open / open）。
func (c *Client) State() string { return c.cb.State().String() }

// Place Nearby Search 的單筆結果。
type Place struct {
	PlaceID  string `json:"place_id"`
	Name     string `json:"name"`
	Vicinity string `json:"vicinity"`
}

type AddressComponent struct {
	LongName  string   `json:"long_name"`
	ShortName string   `json:"short_name"`
	Types     []string `json:"types"`
}

type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Details Place Details 回傳的地址與座標。
type Details struct {
	FormattedAddress  string             `json:"formatted_address"`
	AddressComponents []AddressComponent `json:"address_components"`
	Geometry          struct {
		Location *LatLng `json:"location"`
	} `json:"geometry"`
}

// Location 座標；沒有 geometry 時回傳 nil。
func (d *Details) Location() *LatLng {
	if d == nil {
		return nil
	}
	return d.Geometry.Location
}

type envelope struct {
	Status       string          `json:"status"`
	ErrorMessage string          `json:"error_message"`
	Results      []Place         `json:"results"`
	Result       json.RawMessage `json:"result"`
}

// NearbyLodging 查詢座標附近的住宿。任何失敗都只記錄並回傳空清單。
func (c *Client) NearbyLodging(ctx context.Context, lat, lng float64) []Place {
	q := url.Values{}
	q.Set("location", strconv.FormatFloat(lat, 'f', -1, 64)+","+strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("radius", strconv.Itoa(c.radius))
	q.Set("type", PlaceType)

	env, err := c.call(ctx, "nearbysearch", q)
	if err != nil {
		c.log.Error("places nearby search failed", "lat", lat, "lng", lng, "err", err)
		return []Place{}
	}
	switch env.Status {
	case "OK":
		metrics.RecordPlacesRequest("nearbysearch", "ok")
	case "ZERO_RESULTS":
		metrics.RecordPlacesRequest("nearbysearch", "zero")
		return []Place{}
	default:
		metrics.RecordPlacesRequest("nearbysearch", "error")
		c.log.Error("places api error", "status", env.Status, "message", env.ErrorMessage)
		return []Place{}
	}
	if env.Results == nil {
		return []Place{}
	}
	return env.Results
}

// Details 取得地點明細。API 回應非 OK 時回傳 (nil, nil)，呼叫端略過該地點；
// 傳輸或斷路器錯誤則回傳 error。
func (c *Client) Details(ctx context.Context, placeID string) (*Details, error) {
	q := url.Values{}
	q.Set("place_id", placeID)
	q.Set("fields", detailFields)

	env, err := c.call(ctx, "details", q)
	if err != nil {
		return nil, err
	}
	if env.Status != "OK" {
		metrics.RecordPlacesRequest("details", "error")
		c.log.Debug("place details unavailable", "place_id", placeID, "status", env.Status)
		return nil, nil
	}
	metrics.RecordPlacesRequest("details", "ok")
	d := &Details{}
	if err := json.Unmarshal(env.Result, d); err != nil {
		return nil, errs.Wrap(err, "decode place details")
	}
	return d, nil
}

func (c *Client) call(ctx context.Context, endpoint string, q url.Values) (*envelope, error) {
	if err := c.lim.Wait(ctx); err != nil {
		return nil, err
	}
	q.Set("key", c.key)
	u := c.base + "/" + endpoint + "/json?" + q.Encode()

	body, err := c.cb.Execute(func() ([]byte, error) {
		return c.get(ctx, u)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.RecordPlacesRequest(endpoint, "rejected")
		} else {
			metrics.RecordPlacesRequest(endpoint, "error")
		}
		return nil, err
	}
	env := &envelope{}
	if err := json.Unmarshal(body, env); err != nil {
		return nil, errs.Wrap(err, "decode places response")
	}
	return env, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("places: upstream status %d", resp.StatusCode)
	}
	return body, nil
}
