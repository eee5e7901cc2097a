// Package sampler 加權抽樣。
//
// AliasTable 是整數版的 Vose alias method：建表 O(N)，每次抽樣固定兩次 IntN。
// 全程整數比較，權重不需正規化，也不會有浮點誤差。
// 示範資料用它決定物件掛在哪一家代理商（兩大平台各 45%、其他平台 5%、獨立屋主 5%）。
package sampler

import (
	"math"
	"math/bits"

	"github.com/zintix-labs/tdtrack/sdk/core"
)

// AliasTable 每個槽位只放「自己」與一個別名。
// Prob[i] 為 weight*Size 的整數縮放值，與 Total 比較決定取自己或 Aliases[i]。
type AliasTable struct {
	Prob    []int
	Aliases []int
	Size    int
	Total   int
}

// BuildAliasTable 以非負整數權重建表。
// 負權重、全為零、或 Total*Size 超出 int 範圍時 panic；空輸入回傳空表。
func BuildAliasTable(weights []int) *AliasTable {
	n := len(weights)
	if n == 0 {
		return &AliasTable{Prob: []int{}, Aliases: []int{}}
	}

	var total uint64
	for _, w := range weights {
		if w < 0 {
			panic("AliasTable: negative weight encountered")
		}
		if total > uint64(math.MaxInt)-uint64(w) {
			panic("AliasTable: total weight overflow int range")
		}
		total += uint64(w)
	}
	if total == 0 {
		panic("AliasTable: all weights are zero")
	}
	if hi, lo := bits.Mul64(total, uint64(n)); hi != 0 || lo > math.MaxInt64 {
		panic("AliasTable: weights are too large, causing overflow")
	}
	t := int(total)

	prob := make([]int, n)
	aliases := make([]int, n)
	var small, large []int
	for i, w := range weights {
		prob[i] = w * n
		if prob[i] < t {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}
	for len(small) > 0 && len(large) > 0 {
		s, l := small[len(small)-1], large[len(large)-1]
		small, large = small[:len(small)-1], large[:len(large)-1]

		// l 補足 s 不夠的部分；sum(prob) = Total*Size 維持不變
		aliases[s] = l
		prob[l] += prob[s] - t
		if prob[l] < t {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	return &AliasTable{Prob: prob, Aliases: aliases, Size: n, Total: t}
}

// Pick 回傳抽中的索引；空表回傳 -1。
func (at *AliasTable) Pick(r core.RAND) int {
	if at.Size == 0 {
		return -1
	}
	idx := r.IntN(at.Size)
	if r.IntN(at.Total) < at.Prob[idx] {
		return idx
	}
	return at.Aliases[idx]
}

// Weighted 將 AliasTable 與實際的選項綁在一起，抽樣直接回傳選項本身。
type Weighted[T any] struct {
	items []T
	table *AliasTable
}

// NewWeighted 依 weights 建立加權選項表；items 與 weights 長度必須一致。
// 權重可以是任何整數型別（例如百分比用 uint8）。
func NewWeighted[T any, W Integers](items []T, weights []W) *Weighted[T] {
	if len(items) != len(weights) {
		panic("Weighted: items and weights length mismatch")
	}
	ws := make([]int, len(weights))
	for i, w := range weights {
		ws[i] = int(w)
	}
	return &Weighted[T]{items: items, table: BuildAliasTable(ws)}
}

// Pick 抽出一個選項；空表回傳零值與 false。
func (w *Weighted[T]) Pick(r core.RAND) (T, bool) {
	idx := w.table.Pick(r)
	if idx < 0 {
		var zero T
		return zero, false
	}
	return w.items[idx], true
}
