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

package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
)

func TestHandlerFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"index.html":         {Data: []byte("<html>login</html>")},
		"tax-collector.html": {Data: []byte("<html>tc</html>")},
		"js/api.js":          {Data: []byte("const API_BASE='/api';")},
	}
	h := Handler(fsys)
	cases := []struct {
		path   string
		status int
		body   string
	}{
		{"/", 200, "login"},
		{"/index.html", 200, "login"},
		{"/tax-collector.html", 200, "tc"},
		{"/js/api.js", 200, "API_BASE"},
		{"/properties/42", 200, "login"},
		{"/missing.js", 404, ""},
		{"/img/logo.png", 404, ""},
	}
	for _, c := range cases {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, c.path, nil))
		if rec.Code != c.status {
			t.Fatalf("%s: status %d want %d", c.path, rec.Code, c.status)
		}
		if c.body != "" && !strings.Contains(rec.Body.String(), c.body) {
			t.Fatalf("%s: unexpected body %q", c.path, rec.Body.String())
		}
	}
}

func TestEmbeddedPagesPresent(t *testing.T) {
	h := Handler(nil)
	for _, p := range []string{"/", "/tax-collector.html", "/dor.html", "/register.html", "/js/api.js", "/css/app.css"} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, p, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d", p, rec.Code)
		}
	}
}
