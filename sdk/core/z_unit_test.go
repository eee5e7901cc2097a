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

import (
	"slices"
	"sync"
	"testing"
)

func TestCoreDeterminism(t *testing.T) {
	c1 := New(Default().New(7))
	c2 := New(Default().New(7))
	for i := 0; i < 5; i++ {
		if c1.Uint64() != c2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if c1.IntN(10) != c2.IntN(10) {
		t.Fatalf("IntN mismatch")
	}
	if c1.UintN(10) != c2.UintN(10) {
		t.Fatalf("UintN mismatch")
	}
}

func TestCorePickAndShuffle(t *testing.T) {
	c := New(Default().New(9))
	if got := c.Pick(nil); got != -1 {
		t.Fatalf("expected -1 for empty pick, got %d", got)
	}
	if got := c.PickString(nil); got != "" {
		t.Fatalf("expected empty pick, got %q", got)
	}

	src := []int{1, 2, 3, 4}
	c.ShuffleInts(src)
	want := []int{1, 2, 3, 4}
	got := slices.Clone(src)
	slices.Sort(got)
	if !slices.Equal(want, got) {
		t.Fatalf("shuffle changed elements: %v", src)
	}
}

func TestCoreRanges(t *testing.T) {
	c := NewSeeded(3)
	for i := 0; i < 2000; i++ {
		if v := c.IntRange(1, 6); v < 1 || v > 6 {
			t.Fatalf("IntRange out of range: %d", v)
		}
		if v := c.Between(50, 500); v < 50 || v >= 500 {
			t.Fatalf("Between out of range: %v", v)
		}
	}
	if got := c.IntRange(5, 5); got != 5 {
		t.Fatalf("degenerate range should return lo, got %d", got)
	}
}

func TestLockedConcurrentUse(t *testing.T) {
	l := NewLocked(Default().New(1))
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				if v := l.IntN(10); v < 0 || v >= 10 {
					t.Errorf("IntN out of range: %d", v)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestSnapshotRestore(t *testing.T) {
	p := Default().New(21)
	p.Uint64()
	snap, err := p.Snapshot()
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	want := []uint64{p.Uint64(), p.Uint64(), p.Uint64()}
	if err := p.Restore(snap); err != nil {
		t.Fatalf("restore: %v", err)
	}
	for i, w := range want {
		if got := p.Uint64(); got != w {
			t.Fatalf("value %d after restore: got %d want %d", i, got, w)
		}
	}
}

func TestDegenerateBounds(t *testing.T) {
	p := Default().New(2)
	if p.IntN(0) != -1 || p.IntN(-3) != -1 {
		t.Fatalf("IntN with non-positive bound should return -1")
	}
	if p.UintN(0) != 0 {
		t.Fatalf("UintN(0) should return 0")
	}
	if f := p.Float64(); f < 0 || f >= 1 {
		t.Fatalf("Float64 out of range: %v", f)
	}
}
