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

// Package ident 產生系統中使用的顯示用識別碼：交易編號、TDT 編號與地號。
//
// 這些識別碼只用於顯示與查詢，不是安全憑證，因此使用一般 PRNG（core.RAND）即可。
// 產生時不檢查重複；唯一性交由資料庫的約束處理。
package ident

import (
	"fmt"
	"regexp"
	"time"

	"github.com/zintix-labs/tdtrack/sdk/core"
)

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	transactionRe = regexp.MustCompile(`^[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}-[A-Z0-9]{4}$`)
	tdtRe         = regexp.MustCompile(`^TDT-(\d{4})-(\d{6})$`)
	parcelRe      = regexp.MustCompile(`^\d{4}-\d{2}-\d{4}$`)
)

// TransactionID 回傳 16 個大寫英數字元，以 4-4-4-4 分組，例如 "A1B2-C3D4-E5F6-G7H8"。
func TransactionID(r core.RAND) string {
	var b [19]byte
	j := 0
	for i := 0; i < 16; i++ {
		if i > 0 && i%4 == 0 {
			b[j] = '-'
			j++
		}
		b[j] = alphabet[r.IntN(len(alphabet))]
		j++
	}
	return string(b[:])
}

// TDTNumber 回傳 "TDT-<西元年>-<100000..999999>"。
func TDTNumber(r core.RAND, now time.Time) string {
	return fmt.Sprintf("TDT-%04d-%06d", now.Year(), 100000+r.IntN(900000))
}

// ParcelID 回傳 "####-##-####" 格式的地號。
func ParcelID(r core.RAND) string {
	return fmt.Sprintf("%04d-%02d-%04d", 1000+r.IntN(9000), 10+r.IntN(90), 1000+r.IntN(9000))
}

func ValidTransactionID(s string) bool { return transactionRe.MatchString(s) }

// ValidTDTNumber 檢查格式與數字區間 [100000, 999999]。
func ValidTDTNumber(s string) bool {
	m := tdtRe.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	return m[2][0] != '0'
}

func ValidParcelID(s string) bool { return parcelRe.MatchString(s) }

// Generator 綁定亂數來源與時鐘，供服務層注入。
type Generator struct {
	rng   core.RAND
	clock func() time.Time
}

// NewGenerator 建立 Generator；rng 為 nil 時使用可並行的隨機 seed PCG64，clock 為 nil 時使用 time.Now。
func NewGenerator(rng core.RAND, clock func() time.Time) *Generator {
	if rng == nil {
		rng = core.NewLocked(nil)
	}
	if clock == nil {
		clock = time.Now
	}
	return &Generator{rng: rng, clock: clock}
}

func (g *Generator) TransactionID() string { return TransactionID(g.rng) }
func (g *Generator) TDTNumber() string     { return TDTNumber(g.rng, g.clock()) }
func (g *Generator) ParcelID() string      { return ParcelID(g.rng) }

// Now 回傳 Generator 使用的時間來源，讓登記日期與 TDT 年份一致。
func (g *Generator) Now() time.Time { return g.clock() }
