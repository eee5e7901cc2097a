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
	"slices"

	"github.com/zintix-labs/tdtrack/model"
	"github.com/zintix-labs/tdtrack/sdk/core"
	"github.com/zintix-labs/tdtrack/sdk/sampler"
)

type dealerSlot int

const (
	slotFirst dealerSlot = iota
	slotSecond
	slotOther
	slotIndependent
)

// DealerPicker 以 45 / 45 / 5 / 5 的權重分配繳款來源：
// 第一主要平台、第二主要平台、其他代理商隨機一家、獨立屋主（無代理商）。
type DealerPicker struct {
	rng     core.RAND
	primary [2]*int64
	others  []int64
	slots   *sampler.Weighted[dealerSlot]
}

// NewDealerPicker primary 依序指定兩家主要平台的名稱；找不到的平台抽到時回傳 nil。
func NewDealerPicker(rng core.RAND, dealers []model.Dealer, primary []string) *DealerPicker {
	p := &DealerPicker{
		rng: rng,
		slots: sampler.NewWeighted(
			[]dealerSlot{slotFirst, slotSecond, slotOther, slotIndependent},
			[]uint8{45, 45, 5, 5}, // 百分比
		),
	}
	for _, d := range dealers {
		i := slices.Index(primary, d.Name)
		switch {
		case i == 0 || i == 1:
			id := d.ID
			p.primary[i] = &id
		default:
			p.others = append(p.others, d.ID)
		}
	}
	return p
}

// Pick 抽一家代理商 id；nil 代表獨立屋主。nil receiver 永遠回傳 nil。
func (p *DealerPicker) Pick() *int64 {
	if p == nil {
		return nil
	}
	slot, ok := p.slots.Pick(p.rng)
	if !ok {
		return nil
	}
	switch slot {
	case slotFirst, slotSecond:
		return p.primary[slot]
	case slotOther:
		if len(p.others) == 0 {
			return nil
		}
		id := p.others[p.rng.IntN(len(p.others))]
		return &id
	}
	return nil
}
