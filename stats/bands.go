package stats

import (
	"fmt"
	"sort"
)

// Bands 金額區間：[b0,b1), [b1,b2), ..., [bn,+inf)
//
// 請勿修改預設值
//   - 區間: [0,50), [50,100), [100,200), [200,300), [300,500), [500,+inf)
type Bands struct {
	edges  []float64
	labels []string
}

type BandCount struct {
	Label string `json:"label" yaml:"label"`
	Count int    `json:"count" yaml:"count"`
}

// AmountBands 實收金額的預設區間
var AmountBands = NewBands(0, 50, 100, 200, 300, 500)

// NewBands 以遞增的下界建立區間；最後一個區間沒有上界。
func NewBands(edges ...float64) *Bands {
	if !sort.Float64sAreSorted(edges) {
		panic("stats: band edges must be ascending")
	}
	labels := make([]string, len(edges))
	for i, lo := range edges {
		if i == len(edges)-1 {
			labels[i] = fmt.Sprintf("[%g,+inf)", lo)
			continue
		}
		labels[i] = fmt.Sprintf("[%g,%g)", lo, edges[i+1])
	}
	return &Bands{edges: edges, labels: labels}
}

func (b *Bands) Labels() []string {
	return b.labels
}

// Index 回傳 v 所在區間；小於第一個下界時回傳 -1。
func (b *Bands) Index(v float64) int {
	i := sort.SearchFloat64s(b.edges, v)
	if i < len(b.edges) && b.edges[i] == v {
		return i
	}
	return i - 1
}

// Count 依區間計數，每個區間都會出現（數量可為 0）。
func (b *Bands) Count(vs []float64) []BandCount {
	out := make([]BandCount, len(b.edges))
	for i, l := range b.labels {
		out[i].Label = l
	}
	for _, v := range vs {
		if i := b.Index(v); i >= 0 {
			out[i].Count++
		}
	}
	return out
}
