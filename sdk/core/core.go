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

package core

import "sync"

// PRNG 定義 Core 所需的亂數來源，需同時支援取樣與狀態保存/還原。
type PRNG interface {
	RAND
	Restorable
}

// Restorable 定義可快照與還原的狀態介面。
type Restorable interface {
	// Snapshot 回傳可用於還原的序列化狀態。
	Snapshot() ([]byte, error)
	// Restore 依序列化狀態還原 PRNG 內部狀態。
	Restore([]byte) error
}

// RAND 定義核心亂數取樣能力。
//
// 識別碼（交易編號、TDT 編號、地號）與示範資料產生器都只依賴這個介面，
// 測試時可注入固定 seed 的 PRNG 取得可重現的輸出。
//
// RAND 同時滿足 math/rand/v2 的 Source（Uint64），因此可以直接交給
// gonum distuv 當作 Src 使用。
type RAND interface {
	// Uint64 回傳非負 uint64 亂數。
	Uint64() uint64
	// Float64 回傳 [0,1) 的浮點亂數。
	Float64() float64
	// UintN 回傳 [0,max) 的 uint 亂數，若 max == 0 回傳 0。
	UintN(uint) uint
	// IntN 回傳 [0,max) 的 int 亂數，若 max <= 0 回傳 -1。
	IntN(int) int
}

type PRNGFactory interface {
	// New 以指定 seed 建立新的 PRNG。
	// 相同的 seed 必須產生相同的輸出序列。
	New(int64) PRNG
}

// DefaultPRNG 實作預設的 PRNGFactory (PCG64)
type DefaultPRNG struct{}

// New 滿足合約
func (d *DefaultPRNG) New(seed int64) PRNG {
	return newPCG64WithSeed(seed)
}

func Default() *DefaultPRNG {
	return &DefaultPRNG{}
}

// Core 封裝 RAND，並提供常用取樣與工具方法。
type Core struct {
	RAND
}

// New 允許使用外部自實現的 RAND 建立 Core。
func New(rng RAND) *Core {
	return &Core{rng}
}

// NewSeeded 以 seed 建立預設 PCG64 Core；seed == 0 時改用加密隨機 seed。
func NewSeeded(seed int64) *Core {
	if seed == 0 {
		seed = Seed()
	}
	return New(Default().New(seed))
}

// Over 以 Float64() > th 判定，回傳 true 的機率為 1-th。
func (c *Core) Over(th float64) bool {
	return c.Float64() > th
}

// Between 回傳 [lo,hi) 的均勻亂數。
func (c *Core) Between(lo, hi float64) float64 {
	return lo + c.Float64()*(hi-lo)
}

// IntRange 回傳 [lo,hi] 的整數亂數（含兩端）。
func (c *Core) IntRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + c.IntN(hi-lo+1)
}

// Pick 從列表中隨機選取一個元素，若列表為空回傳 -1
func (c *Core) Pick(src []int) int {
	if len(src) == 0 {
		return -1
	}
	idx := c.IntN(len(src))
	return src[idx]
}

// PickString 從字串列表中隨機選取一個元素，列表為空回傳空字串。
func (c *Core) PickString(src []string) string {
	if len(src) == 0 {
		return ""
	}
	return src[c.IntN(len(src))]
}

// ShuffleInts 使用 Fisher-Yates 對 []int 進行就地重排。
func (c *Core) ShuffleInts(src []int) {
	if len(src) <= 1 {
		return
	}

	for i := len(src) - 1; i > 0; i-- {
		j := c.IntN(i + 1)
		src[i], src[j] = src[j], src[i]
	}
}

// Locked 以互斥鎖保護單一 RAND，讓 HTTP handler 之間可以共用。
type Locked struct {
	mu  sync.Mutex
	rng RAND
}

// NewLocked 包裝 rng；rng 為 nil 時使用隨機 seed 的 PCG64。
func NewLocked(rng RAND) *Locked {
	if rng == nil {
		rng = Default().New(Seed())
	}
	return &Locked{rng: rng}
}

func (l *Locked) Uint64() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Uint64()
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.Float64()
}

func (l *Locked) UintN(n uint) uint {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.UintN(n)
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.rng.IntN(n)
}
