// Package core 提供識別碼與示範資料共用的亂數來源。
//
// 預設實作為 PCG（Melissa O'Neill 設計），狀態與取樣由 math/rand/v2 提供。
package core

import (
	"crypto/rand"
	"math"
	"math/big"
	r2 "math/rand/v2"
)

// PCG64 以 math/rand/v2 的 PCG 保存狀態，取樣方法交給 rand.Rand（IntN/UintN 無偏）。
// rand.Rand 本身不持有狀態，所以 Snapshot/Restore 只需要處理 PCG。
type PCG64 struct {
	src *r2.PCG
	r   *r2.Rand
}

// Seed 使用加密隨機來源產生 seed；讀取失敗時退回 1。
func Seed() int64 {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 1
	}
	return seed.Int64()
}

// newPCG64WithSeed 把 int64 seed 展開成 PCG 的兩個 64-bit 狀態。
func newPCG64WithSeed(seed int64) *PCG64 {
	x := uint64(seed) ^ 0x9e3779b97f4a7c15
	src := r2.NewPCG(splitmix64(x), splitmix64(x^0xda942042e4dd58b5))
	return &PCG64{src: src, r: r2.New(src)}
}

func (p *PCG64) Uint64() uint64   { return p.src.Uint64() }
func (p *PCG64) Float64() float64 { return p.r.Float64() }

func (p *PCG64) UintN(n uint) uint {
	if n == 0 {
		return 0
	}
	return p.r.UintN(n)
}

func (p *PCG64) IntN(n int) int {
	if n <= 0 {
		return -1
	}
	return p.r.IntN(n)
}

func (p *PCG64) Snapshot() ([]byte, error) { return p.src.MarshalBinary() }
func (p *PCG64) Restore(b []byte) error    { return p.src.UnmarshalBinary(b) }

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
