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

package middleware

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func jsonHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func TestCompressionGzip(t *testing.T) {
	body := strings.Repeat(`{"address":"1 Main St"}`, 50)
	h := Compression(jsonHandler(http.StatusOK, body))
	r := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
	r.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip, got %q", rec.Header().Get("Content-Encoding"))
	}
	gr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	got, _ := io.ReadAll(gr)
	if string(got) != body {
		t.Fatalf("round trip mismatch")
	}
}

func TestCompressionZstdPreferred(t *testing.T) {
	h := Compression(jsonHandler(http.StatusCreated, `{"id":1}`))
	r := httptest.NewRequest(http.MethodPost, "/api/payments", nil)
	r.Header.Set("Accept-Encoding", "gzip, zstd")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusCreated || rec.Header().Get("Content-Encoding") != "zstd" {
		t.Fatalf("unexpected response %d %q", rec.Code, rec.Header().Get("Content-Encoding"))
	}
	zr, err := zstd.NewReader(rec.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	got, _ := io.ReadAll(zr)
	if string(got) != `{"id":1}` {
		t.Fatalf("unexpected body %q", got)
	}
}

func TestCompressionSkips(t *testing.T) {
	noContent := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	png := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})
	for name, h := range map[string]http.Handler{"204": noContent, "png": png} {
		r := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		rec := httptest.NewRecorder()
		Compression(h).ServeHTTP(rec, r)
		if rec.Header().Get("Content-Encoding") != "" {
			t.Fatalf("%s: should not be compressed", name)
		}
	}
	rec := httptest.NewRecorder()
	Compression(png).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte{0x89}) {
		t.Fatalf("body altered without accept-encoding")
	}
}

func TestRecoverWritesJSON(t *testing.T) {
	boom := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { panic("boom") })
	rec := httptest.NewRecorder()
	Recover(slog.New(slog.NewTextHandler(io.Discard, nil)))(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError || !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestRateLimit(t *testing.T) {
	h := RateLimit(2, time.Minute)(jsonHandler(http.StatusOK, `{}`))
	codes := make([]int, 3)
	for i := range codes {
		r := httptest.NewRequest(http.MethodPost, "/api/login", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, r)
		codes[i] = rec.Code
	}
	if codes[0] != 200 || codes[1] != 200 || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
	if RateLimit(0, time.Minute)(jsonHandler(200, "")) == nil {
		t.Fatalf("disabled limiter must pass through")
	}
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var ok bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, ok = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil).WithContext(context.Background()))
	if !ok {
		t.Fatalf("expected deadline on request context")
	}
}

func TestAccessLogLevels(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))
	h := RequestID(AccessLog(log)(jsonHandler(http.StatusNotFound, `{}`)))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	out := buf.String()
	if !strings.Contains(out, `"level":"WARN"`) || !strings.Contains(out, `"status":404`) {
		t.Fatalf("unexpected access log %s", out)
	}
	if !strings.Contains(out, `"request_id":"`) {
		t.Fatalf("request id missing: %s", out)
	}
}
