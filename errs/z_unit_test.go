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

package errs

import (
	"errors"
	"fmt"
	"io"
	"testing"
)

func TestWrapKeepsLevel(t *testing.T) {
	inner := NewNotFound("record not found")
	w := Wrap(inner, "load property")
	if w.ErrLv != NotFound {
		t.Fatalf("expected not_found, got %s", ErrLv(w.ErrLv))
	}
	if !errors.Is(w, inner) {
		t.Fatalf("wrapped error should unwrap to inner")
	}

	foreign := Wrap(io.ErrUnexpectedEOF, "read body")
	if foreign.ErrLv != Fatal || !errors.Is(foreign, io.ErrUnexpectedEOF) {
		t.Fatalf("foreign cause should be fatal and unwrap: %v", foreign)
	}
}

func TestPublic(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{NewWarn("Missing required fields: amount"), "Missing required fields: amount"},
		{Wrap(NewDenied("Invalid password"), "login"), "login"},
		{Wrap(errors.New("disk full"), "insert payment"), "insert payment: disk full"},
		{NewFatal("store required"), "store required"},
		{errors.New("plain"), "plain"},
	}
	for _, c := range cases {
		if got := Public(c.err); got != c.want {
			t.Errorf("Public(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestIsThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewWarn("invalid id"))
	if !Is(err, Warn) || Is(err, Fatal) {
		t.Fatalf("level match failed for %v", err)
	}
	if Is(errors.New("x"), Warn) {
		t.Fatalf("plain error must not match")
	}
}

func TestErrorString(t *testing.T) {
	e := Wrap(errors.New("boom"), "sync").WithExtra("run=1")
	want := "errlv=fatal sync | extra: run=1 (cause: boom)"
	if e.Error() != want {
		t.Fatalf("got %q want %q", e.Error(), want)
	}
}
