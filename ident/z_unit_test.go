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

package ident

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/zintix-labs/tdtrack/sdk/core"
)

func TestTransactionIDFormat(t *testing.T) {
	c := core.NewSeeded(42)
	for i := 0; i < 5000; i++ {
		id := TransactionID(c)
		if !ValidTransactionID(id) {
			t.Fatalf("bad transaction id %q", id)
		}
	}
}

func TestTDTNumberFormatAndRange(t *testing.T) {
	c := core.NewSeeded(7)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5000; i++ {
		s := TDTNumber(c, now)
		if !ValidTDTNumber(s) {
			t.Fatalf("bad tdt number %q", s)
		}
		if !strings.HasPrefix(s, "TDT-2026-") {
			t.Fatalf("tdt number %q does not carry the current year", s)
		}
		n, err := strconv.Atoi(s[len("TDT-2026-"):])
		if err != nil || n < 100000 || n > 999999 {
			t.Fatalf("numeric part out of range in %q", s)
		}
	}
}

func TestParcelIDFormat(t *testing.T) {
	c := core.NewSeeded(11)
	for i := 0; i < 5000; i++ {
		p := ParcelID(c)
		if !ValidParcelID(p) {
			t.Fatalf("bad parcel id %q", p)
		}
		parts := strings.Split(p, "-")
		if parts[0][0] == '0' || parts[1][0] == '0' || parts[2][0] == '0' {
			t.Fatalf("parcel group has a leading zero: %q", p)
		}
	}
}

func TestValidators(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"txn ok", ValidTransactionID, "AB12-CD34-EF56-GH78", true},
		{"txn lower", ValidTransactionID, "ab12-CD34-EF56-GH78", false},
		{"txn short", ValidTransactionID, "AB12-CD34-EF56", false},
		{"tdt ok", ValidTDTNumber, "TDT-2025-123456", true},
		{"tdt low", ValidTDTNumber, "TDT-2025-012345", false},
		{"tdt digits", ValidTDTNumber, "TDT-25-123456", false},
		{"parcel ok", ValidParcelID, "1234-56-7890", true},
		{"parcel bad", ValidParcelID, "123-456-7890", false},
	}
	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Errorf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestGeneratorUsesClock(t *testing.T) {
	fixed := time.Date(2031, 1, 2, 3, 4, 5, 0, time.UTC)
	g := NewGenerator(core.NewSeeded(1), func() time.Time { return fixed })
	if got := g.TDTNumber(); !strings.HasPrefix(got, "TDT-2031-") {
		t.Fatalf("unexpected tdt %q", got)
	}
	if !g.Now().Equal(fixed) {
		t.Fatalf("Now should return the injected clock")
	}
	if !ValidTransactionID(g.TransactionID()) || !ValidParcelID(g.ParcelID()) {
		t.Fatalf("generator produced invalid ids")
	}
}
