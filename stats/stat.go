// Package stats 將儀表板統計整理成報告，並提供終端表格、JSON 與 YAML 輸出。
package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/zintix-labs/tdtrack/compliance"
	"github.com/zintix-labs/tdtrack/model"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// Rate 比例的點估計與 95% 信賴區間
type Rate struct {
	Hat float64 `json:"hat" yaml:"hat"`
	CI  CI      `json:"ci" yaml:"ci"`
}

// Report 儀表板統計報告
type Report struct {
	Title        string       `json:"title" yaml:"title"`
	GeneratedAt  time.Time    `json:"generatedAt" yaml:"generated_at"`
	Stats        *model.Stats `json:"stats" yaml:"stats"`
	Registration Rate         `json:"registrationRate" yaml:"registration_rate"`
	Bands        []BandCount  `json:"amountBands" yaml:"amount_bands"`
}

// Summarize 計算實收金額的分佈摘要。
//
// expected 與 actual 一一對應，nil 代表該筆沒有應收金額；Shortfall 只累計有應收金額且實收不足的差額。
func Summarize(actual []float64, expected []*float64) model.CollectionSummary {
	out := model.CollectionSummary{Count: len(actual)}
	if len(actual) == 0 {
		return out
	}
	mean, std := stat.MeanStdDev(actual, nil)
	if len(actual) < 2 || math.IsNaN(std) {
		std = 0
	}
	out.Mean = cents(mean)
	out.StdDev = cents(std)

	var exp, short float64
	for i, e := range expected {
		if e == nil || i >= len(actual) {
			continue
		}
		exp += *e
		if d := *e - actual[i]; d > 0 {
			short += d
		}
	}
	out.Expected = cents(exp)
	out.Shortfall = cents(short)
	return out
}

// NewReport 由統計結果與實收金額建立報告。
func NewReport(title string, s *model.Stats, actual []float64, now time.Time) *Report {
	r := &Report{
		Title:       title,
		GeneratedAt: now.UTC(),
		Stats:       s,
		Bands:       AmountBands.Count(actual),
	}
	if s != nil {
		hat, ci := proportionCICP(int(s.RegisteredCount), int(s.TotalProperties), 0.95)
		r.Registration = Rate{Hat: hat, CI: ci}
	}
	return r
}

func (r *Report) WriteWith(w io.Writer, rep Render) error {
	return rep.Write(w, r)
}

// StdOut 輸出終端表格。
func (r *Report) StdOut(w io.Writer) error {
	k, m := r.fmtBasic()
	_, err := io.WriteString(w, fmtTable(r.Title, k, m))
	if err != nil {
		return err
	}
	bk, bm := r.fmtBands()
	_, err = io.WriteString(w, fmtTable("Payment Amounts", bk, bm))
	return err
}

// ============================================================
// ** 內部方法 **
// ============================================================

func cents(v float64) float64 {
	return math.Round(v*100) / 100
}

func (r *Report) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Stats
	if s == nil {
		s = &model.Stats{}
	}
	basic := map[string]string{
		"Total Properties": p.Sprintf("%d", s.TotalProperties),
		"Registered":       p.Sprintf("%d", s.RegisteredCount),
		"Registration 95%": p.Sprintf("%.2f%% [%.2f%%,%.2f%%]", 100*r.Registration.Hat, 100*r.Registration.CI.Lo, 100*r.Registration.CI.Hi),
		"Total Collected":  p.Sprintf("$%.2f", s.TotalCollected),
		"Active Dealers":   p.Sprintf("%d", s.DealerCount),
		"Payments":         p.Sprintf("%d", s.Collection.Count),
		"Mean Payment":     p.Sprintf("$%.2f", s.Collection.Mean),
		"Payment STD":      p.Sprintf("$%.2f", s.Collection.StdDev),
		"Expected":         p.Sprintf("$%.2f", s.Collection.Expected),
		"Shortfall":        p.Sprintf("$%.2f", s.Collection.Shortfall),
	}
	keys := []string{"Total Properties", "Registered", "Registration 95%"}
	for _, sc := range compliance.All {
		k := sc.Label()
		basic[k] = p.Sprintf("%d", s.ScenarioCounts[strconv.Itoa(int(sc))])
		keys = append(keys, k)
	}
	keys = append(keys, "Total Collected", "Active Dealers", "Payments", "Mean Payment", "Payment STD", "Expected", "Shortfall")
	return keys, basic
}

func (r *Report) fmtBands() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	keys := make([]string, 0, len(r.Bands))
	msg := make(map[string]string, len(r.Bands))
	for _, b := range r.Bands {
		keys = append(keys, b.Label)
		msg[b.Label] = p.Sprintf("%d", b.Count)
	}
	return keys, msg
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += fmt.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
