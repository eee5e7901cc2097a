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

package demodata

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zintix-labs/tdtrack/catalog"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/metrics"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/places"
	"github.com/zintix-labs/tdtrack/store"
	"github.com/zintix-labs/tdtrack/zoning"
)

const (
	DefaultPerArea = 5

	fallbackStreet = "Unknown Address"
	fallbackCity   = "Sarasota"
	fallbackZip    = "34236"
)

// ErrRunning 上一輪同步尚未結束。
var ErrRunning = errs.NewWarn("sync already running")

// Places 同步作業需要的 places 能力；*places.Client 即為實作。
type Places interface {
	NearbyLodging(ctx context.Context, lat, lng float64) []places.Place
	Details(ctx context.Context, placeID string) (*places.Details, error)
}

type Options struct {
	Store   *store.Store
	Catalog *catalog.Catalog
	Places  Places        // nil 時 Run 回傳 places.ErrNoAPIKey
	Zoning  *zoning.Index // 可為 nil
	Gen     *Generator
	PerArea int
	Log     *slog.Logger
}

// Syncer 示範資料同步作業。同一時間只允許一輪執行。
type Syncer struct {
	st      *store.Store
	cat     *catalog.Catalog
	places  Places
	zoning  *zoning.Index
	gen     *Generator
	perArea int
	log     *slog.Logger
	running sync.Mutex

	progress func()
}

func NewSyncer(opt Options) (*Syncer, error) {
	if opt.Store == nil {
		return nil, errs.NewFatal("demodata: store required")
	}
	if opt.Catalog == nil {
		c, err := catalog.Default()
		if err != nil {
			return nil, err
		}
		opt.Catalog = c
	}
	if opt.Gen == nil {
		opt.Gen = NewGenerator(nil, nil)
	}
	if opt.PerArea <= 0 {
		opt.PerArea = DefaultPerArea
	}
	if opt.Log == nil {
		opt.Log = slog.Default()
	}
	return &Syncer{
		st:      opt.Store,
		cat:     opt.Catalog,
		places:  opt.Places,
		zoning:  opt.Zoning,
		gen:     opt.Gen,
		perArea: opt.PerArea,
		log:     opt.Log,
	}, nil
}

// Configured 是否有可用的 places 客戶端。
func (s *Syncer) Configured() bool { return s.places != nil }

// EnsureDealers 代理商表為空時寫入預設平台，回傳目前啟用中的代理商。
func (s *Syncer) EnsureDealers(ctx context.Context) ([]model.Dealer, error) {
	n, err := s.st.CountDealers(ctx, false)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		seeds := make([]*model.Dealer, 0, len(s.cat.Dealers))
		for _, d := range s.cat.Dealers {
			md := &model.Dealer{Name: d.Name, DealerType: d.DealerType, IsActive: true}
			if d.ContactEmail != "" {
				email := d.ContactEmail
				md.ContactEmail = &email
			}
			seeds = append(seeds, md)
		}
		if err := s.st.InsertDealers(ctx, seeds); err != nil {
			return nil, err
		}
		s.log.Info("default dealers seeded", "count", len(seeds))
	}
	return s.st.ListDealers(ctx, true)
}

// Run 走訪所有搜尋區域，把尚未收錄的住宿轉成示範物件與繳款。
// 單一地點的失敗記入 Errors 後繼續；只有前置步驟（代理商）失敗才回傳 error。
func (s *Syncer) Run(ctx context.Context) (*model.SyncResult, error) {
	if s.places == nil {
		return nil, places.ErrNoAPIKey
	}
	return s.run(ctx, "places", func(ctx context.Context, b *batch) {
		for _, area := range s.cat.Areas {
			if ctx.Err() != nil {
				b.res.Errors = append(b.res.Errors, "Sync cancelled: "+ctx.Err().Error())
				return
			}
			found := s.places.NearbyLodging(ctx, area.Lat, area.Lng)
			s.log.Info("sync area", "run_id", b.res.RunID, "area", area.Name, "places", len(found))
			if len(found) > s.perArea {
				found = found[:s.perArea]
			}
			for _, pl := range found {
				s.syncPlace(ctx, b, area, pl)
			}
		}
	})
}

// SeedFallback 不經 places API，直接以內建的備援地址產生示範物件。已存在相同地址者略過。
func (s *Syncer) SeedFallback(ctx context.Context) (*model.SyncResult, error) {
	return s.run(ctx, "fallback", func(ctx context.Context, b *batch) {
		for _, a := range s.cat.Fallback {
			if ctx.Err() != nil {
				return
			}
			s.seedAddress(ctx, b, a)
			b.tick()
		}
	})
}

func (s *Syncer) seedAddress(ctx context.Context, b *batch, a catalog.Address) {
	exists, err := s.st.CountProperties(ctx, store.Filter{store.Eq("address", a.Address)})
	if err != nil {
		b.fail("Property %s: %s", a.Address, errs.Public(err))
		return
	}
	if exists > 0 {
		return
	}
	lat, lng := a.Lat, a.Lng
	s.create(ctx, b, Site{Address: a.Address, City: a.City, ZipCode: a.Zip, Lat: &lat, Lng: &lng})
}

type batch struct {
	res     *model.SyncResult
	dealers *DealerPicker
	tick    func()
}

func (b *batch) fail(format string, a ...any) {
	b.res.Errors = append(b.res.Errors, fmt.Sprintf(format, a...))
}

// OnProgress 每處理完一個備援地址呼叫一次 fn，供 CLI 進度條使用。
func (s *Syncer) OnProgress(fn func()) { s.progress = fn }

func (s *Syncer) run(ctx context.Context, source string, body func(context.Context, *batch)) (*model.SyncResult, error) {
	if !s.running.TryLock() {
		return nil, ErrRunning
	}
	defer s.running.Unlock()

	start := time.Now()
	res := &model.SyncResult{RunID: uuid.NewString(), Errors: []string{}}
	dealers, err := s.EnsureDealers(ctx)
	if err != nil {
		metrics.RecordSync(time.Since(start), 0, 0, err)
		return nil, err
	}
	b := &batch{
		res:     res,
		dealers: NewDealerPicker(s.gen.RAND(), dealers, s.cat.PrimaryDealers()),
		tick:    s.progress,
	}
	if b.tick == nil {
		b.tick = func() {}
	}
	body(ctx, b)

	res.Success = true
	res.Message = fmt.Sprintf("Sync complete! Created %d properties and %d payments.", res.PropertiesCreated, res.PaymentsCreated)
	metrics.RecordSync(time.Since(start), res.PropertiesCreated, res.PaymentsCreated, nil)
	s.log.Info("sync finished", "run_id", res.RunID, "source", source,
		"properties", res.PropertiesCreated, "payments", res.PaymentsCreated, "errors", len(res.Errors))
	return res, nil
}

func (s *Syncer) syncPlace(ctx context.Context, b *batch, area catalog.Area, pl places.Place) {
	d, err := s.places.Details(ctx, pl.PlaceID)
	if err != nil {
		s.log.Warn("place details failed", "run_id", b.res.RunID, "place", pl.Name, "err", err)
		b.fail("Place %s: %s", pl.Name, err.Error())
		return
	}
	if d == nil {
		return
	}
	exists, err := s.st.PropertyExistsByPlaceID(ctx, pl.PlaceID)
	if err != nil {
		b.fail("Place %s: %s", pl.Name, errs.Public(err))
		return
	}
	if exists {
		return
	}

	addr := places.ParseAddress(d.AddressComponents)
	site := Site{
		Address: firstNonEmpty(addr.Street(), pl.Name, fallbackStreet),
		City:    firstNonEmpty(addr.City, strings.Replace(area.Name, "Downtown ", "", 1), fallbackCity),
		ZipCode: firstNonEmpty(addr.ZipCode, fallbackZip),
		PlaceID: pl.PlaceID,
	}
	if loc := d.Location(); loc != nil {
		lat, lng := loc.Lat, loc.Lng
		site.Lat, site.Lng = &lat, &lng
	}
	s.create(ctx, b, site)
}

func (s *Syncer) create(ctx context.Context, b *batch, site Site) {
	if site.Lat != nil && site.Lng != nil {
		if z, ok := s.zoning.Lookup(*site.Lat, *site.Lng); ok {
			site.Zoning = z
		}
	}
	f := s.gen.Flags()
	bundle := store.PaymentBundle{
		Property: s.gen.Property(site, f),
		Payments: s.gen.Payments(f, b.dealers),
	}
	n, fails, err := s.st.InsertBundle(ctx, bundle)
	if err != nil {
		s.log.Warn("demo property insert failed", "run_id", b.res.RunID, "address", site.Address, "err", err)
		b.fail("Property %s: %s", site.Address, errs.Public(err))
		return
	}
	b.res.PropertiesCreated++
	b.res.PaymentsCreated += n
	for _, e := range fails {
		s.log.Debug("demo payment insert failed", "run_id", b.res.RunID, "address", site.Address, "err", e)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
