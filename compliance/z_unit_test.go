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

package compliance

import "testing"

func TestClassifyTable(t *testing.T) {
	cases := []struct {
		reg, paid, correct bool
		want               Scenario
	}{
		{false, false, false, UnregisteredUnpaid},
		{false, false, true, UnregisteredUnpaid},
		{false, true, false, UnregisteredPaid},
		{false, true, true, UnregisteredPaid},
		{true, false, false, RegisteredUnpaid},
		{true, false, true, RegisteredUnpaid},
		{true, true, false, RegisteredUnderpaid},
		{true, true, true, None},
	}
	for _, tc := range cases {
		if got := Classify(tc.reg, tc.paid, tc.correct); got != tc.want {
			t.Errorf("Classify(%v,%v,%v) = %v, want %v", tc.reg, tc.paid, tc.correct, got, tc.want)
		}
	}
}

func TestScenarioPtrRoundTrip(t *testing.T) {
	if None.Ptr() != nil {
		t.Fatalf("compliant scenario must map to NULL")
	}
	for _, s := range All {
		p := s.Ptr()
		if p == nil || *p != int(s) {
			t.Fatalf("unexpected ptr for %v", s)
		}
		if FromPtr(p) != s {
			t.Fatalf("FromPtr mismatch for %v", s)
		}
	}
}

func TestParse(t *testing.T) {
	if s, err := Parse("3"); err != nil || s != RegisteredUnpaid {
		t.Fatalf("Parse(3) = %v, %v", s, err)
	}
	if s, err := Parse("none"); err != nil || s != None {
		t.Fatalf("Parse(none) = %v, %v", s, err)
	}
	for _, bad := range []string{"5", "x", "-1"} {
		if _, err := Parse(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
	if RegisteredUnderpaid.Label() == "" || Scenario(9).Label() != "Unknown" {
		t.Fatalf("unexpected labels")
	}
}
