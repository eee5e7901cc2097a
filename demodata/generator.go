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

// Package demodata 產生「示範用」的合成資料，並提供把 Google Places 住宿轉成示範物件的同步作業。
//
// 這裡產出的登記狀態、繳款金額與代理商分配全部是隨機捏造的，
// 只用於展示儀表板，不可視為任何真實的稅務資料或業務邏輯。
//
// 機率設定：
//
//	已登記         p = 0.7
//	有繳款         p = 0.75
//	金額正確       p = 0.8
//	自住豁免       p = 0.3
//	分區類型       residential / commercial / mixed 均勻
//	繳款筆數       1..6，第 i 筆期間為 i+1 個月前起算一個月
//	應繳金額       U[50, 500)；不正確時實繳 = 應繳 × U[0.5, 1)
//	已核對         p = 0.6
package demodata

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/ident"
	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/sdk/core"
)

const (
	pRegistered  = 0.7
	pHasPayments = 0.75
	pCorrect     = 0.8
	pHomestead   = 0.3
	pVerified    = 0.6

	maxPayments = 6
)

// ZoningTypes 示範物件可能的分區類型。
var ZoningTypes = []string{"residential", "commercial", "mixed"}

// Flags 一個示範物件的隨機屬性。
type Flags struct {
	Registered  bool
	HasPayments bool
	Correct     bool
	Homestead   bool
	ZoningType  string
}

// Scenario 依屬性推得的合規情境。
func (f Flags) Scenario() compliance.Scenario {
	return compliance.Classify(f.Registered, f.HasPayments, f.Correct)
}

// Site 示範物件的地址來源（places 明細或內建的備援地址）。
type Site struct {
	Address string
	City    string
	ZipCode string
	Lat     *float64
	Lng     *float64
	PlaceID string
	Zoning  string
}

// Generator 合成資料產生器。同一個 seed 與時鐘會得到相同輸出。
type Generator struct {
	rng      *core.Core
	ids      *ident.Generator
	expected distuv.Uniform
	short    distuv.Uniform
}

// NewGenerator rng 為 nil 時使用隨機 seed；ids 為 nil 時以 rng 建立。
func NewGenerator(rng core.RAND, ids *ident.Generator) *Generator {
	if rng == nil {
		rng = core.NewLocked(nil)
	}
	if ids == nil {
		ids = ident.NewGenerator(rng, nil)
	}
	return &Generator{
		rng:      core.New(rng),
		ids:      ids,
		expected: distuv.Uniform{Min: 50, Max: 500, Src: rng},
		short:    distuv.Uniform{Min: 0.5, Max: 1, Src: rng},
	}
}

// RAND 產生器使用的亂數來源，供代理商抽樣共用。
func (g *Generator) RAND() core.RAND { return g.rng.RAND }

// Flags 抽一組物件屬性。
func (g *Generator) Flags() Flags {
	return Flags{
		Registered:  g.rng.Float64() < pRegistered,
		HasPayments: g.rng.Float64() < pHasPayments,
		Correct:     g.rng.Float64() < pCorrect,
		Homestead:   g.rng.Float64() < pHomestead,
		ZoningType:  ZoningTypes[g.rng.IntN(len(ZoningTypes))],
	}
}

// Property 依地址與屬性組出示範物件（尚未寫入）。
func (g *Generator) Property(s Site, f Flags) *model.Property {
	p := &model.Property{
		ParcelID:           g.ids.ParcelID(),
		Address:            s.Address,
		City:               s.City,
		ZipCode:            s.ZipCode,
		Lat:                s.Lat,
		Lng:                s.Lng,
		HomesteadStatus:    f.Homestead,
		ZoningType:         &f.ZoningType,
		IsRegistered:       f.Registered,
		IsActive:           true,
		ComplianceScenario: f.Scenario().Ptr(),
	}
	if s.PlaceID != "" {
		p.GooglePlaceID = &s.PlaceID
	}
	if s.Zoning != "" {
		p.Zoning1 = &s.Zoning
	}
	if f.Registered {
		tdt := g.ids.TDTNumber()
		now := g.ids.Now().UTC()
		p.TDTNumber = &tdt
		p.RegistrationDate = &now
	}
	return p
}

// Payments 產生 1..6 筆示範繳款；沒有繳款的物件回傳 nil。
// dealers 為 nil 時全部視為獨立屋主（dealer_id 為空）。
func (g *Generator) Payments(f Flags, dealers *DealerPicker) []*model.Payment {
	if !f.HasPayments {
		return nil
	}
	now := g.ids.Now().UTC()
	n := g.rng.IntRange(1, maxPayments)
	out := make([]*model.Payment, 0, n)
	for i := 0; i < n; i++ {
		start := now.AddDate(0, -(i + 1), 0)
		end := start.AddDate(0, 1, 0)
		expected := g.expected.Rand()
		actual := expected
		if !f.Correct {
			actual = expected * g.short.Rand()
		}
		exp := cents(expected)
		paid := now
		out = append(out, &model.Payment{
			TransactionID:  g.ids.TransactionID(),
			DealerID:       dealers.Pick(),
			Amount:         cents(actual),
			ExpectedAmount: &exp,
			PeriodStart:    start.Format(model.DateLayout),
			PeriodEnd:      end.Format(model.DateLayout),
			PaymentDate:    &paid,
			Verified:       g.rng.Float64() < pVerified,
		})
	}
	return out
}

func cents(v float64) float64 { return math.Round(v*100) / 100 }

// Now 產生器的時鐘。
func (g *Generator) Now() time.Time { return g.ids.Now() }
