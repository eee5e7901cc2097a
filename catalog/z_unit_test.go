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

package catalog

import (
	"testing"
	"testing/fstest"
)

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("load builtin catalog: %v", err)
	}
	if len(c.Areas) != 8 {
		t.Fatalf("expected 8 search areas, got %d", len(c.Areas))
	}
	if len(c.Dealers) != 5 {
		t.Fatalf("expected 5 default dealers, got %d", len(c.Dealers))
	}
	if got := c.PrimaryDealers(); len(got) != 2 || got[0] != "Airbnb" || got[1] != "VRBO" {
		t.Fatalf("unexpected primary dealers: %v", got)
	}
	fl, ok := c.State("FL")
	if !ok || len(fl.Counties) != 67 {
		t.Fatalf("expected Florida with 67 counties")
	}
	if got := c.CountyName("FL", "68"); got != "Sarasota" {
		t.Fatalf("county 68 = %q", got)
	}
	if len(c.Fallback) == 0 {
		t.Fatalf("expected fallback addresses")
	}
}

func TestDefaultMunicipalities(t *testing.T) {
	fl, ok := MustDefault().State("FL")
	if !ok {
		t.Fatalf("Florida missing")
	}
	ms := fl.Municipalities
	if len(ms) != 370 {
		t.Fatalf("expected 370 municipalities, got %d", len(ms))
	}
	if ms[0] != "Alachua" || ms[len(ms)-1] != "Zolfo Springs" {
		t.Fatalf("unexpected bounds: %q .. %q", ms[0], ms[len(ms)-1])
	}
	seen := make(map[string]bool, len(ms))
	for _, m := range ms {
		if m == "" || seen[m] {
			t.Fatalf("empty or duplicate municipality %q", m)
		}
		seen[m] = true
	}
	for _, want := range []string{"Sewall's Point", "Venice", "Sarasota", "St. Petersburg"} {
		if !seen[want] {
			t.Errorf("missing municipality %q", want)
		}
	}
}

func TestRolesAndRedirects(t *testing.T) {
	c := MustDefault()
	cases := map[string]string{
		"property-appraiser": "/property-appraiser.html",
		"owner":              "/register.html",
		"dor":                "/dor.html",
		"city-gov":           "/city-gov.html",
		"unknown":            DefaultRedirect,
	}
	for entity, want := range cases {
		if got := c.RedirectFor(entity); got != want {
			t.Errorf("RedirectFor(%s) = %s, want %s", entity, got, want)
		}
	}
	if r, ok := c.Role("city-gov"); !ok || r.Scope != ScopeMunicipality {
		t.Fatalf("city-gov should be municipality scoped: %+v", r)
	}
	if r, ok := c.Role("dor"); !ok || r.Scope != ScopeState {
		t.Fatalf("dor should be state scoped: %+v", r)
	}
}

func TestLoadOverride(t *testing.T) {
	over := fstest.MapFS{
		"areas.yaml": {Data: []byte("areas:\n  - {name: \"Test Area\", lat: 1, lng: 2}\n")},
	}
	c, err := Load(over)
	if err != nil {
		t.Fatalf("load with override: %v", err)
	}
	if len(c.Areas) != 1 || c.Areas[0].Name != "Test Area" {
		t.Fatalf("override not applied: %+v", c.Areas)
	}
	if len(c.Dealers) != 5 {
		t.Fatalf("non-overridden files should come from builtin")
	}
}

func TestLoadRejectsBadScope(t *testing.T) {
	over := fstest.MapFS{
		"roles.yaml": {Data: []byte("roles:\n  - {entity_type: x, label: X, scope: galaxy, redirect: /x.html}\n")},
	}
	if _, err := Load(over); err == nil {
		t.Fatalf("expected error for unknown scope")
	}
}
