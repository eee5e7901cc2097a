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

// Package importer 把郡估價官（county property appraiser）匯出的平面檔匯入資料庫。
//
// 每個檔案以表頭對應欄位，空值轉為 NULL，缺少主鍵（地號或代碼）的列略過。
// 寫入以批次為單位（物件與子資料表 1000 列，代碼表 100 列），
// 單一批次失敗只記錄錯誤，其餘批次照常進行。
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/google/uuid"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/metrics"
	"github.com/zintix-labs/tdtrack/store"
)

const maxErrors = 20

type Options struct {
	Store        *store.Store // DryRun 時可為 nil
	Dir          string
	DryRun       bool
	ShowProgress bool
	Log          *slog.Logger
}

type Importer struct {
	st   *store.Store
	dir  string
	dry  bool
	show bool
	log  *slog.Logger
}

func New(opt Options) (*Importer, error) {
	if opt.Store == nil && !opt.DryRun {
		return nil, errs.NewFatal("importer: store required")
	}
	if opt.Dir == "" {
		return nil, errs.NewWarn("importer: data directory required")
	}
	if opt.Log == nil {
		opt.Log = slog.Default()
	}
	return &Importer{st: opt.Store, dir: opt.Dir, dry: opt.DryRun, show: opt.ShowProgress, log: opt.Log}, nil
}

// TableResult 單一檔案的匯入結果。
type TableResult struct {
	Table    string         `json:"table"`
	File     string         `json:"file"`
	Encoding string         `json:"encoding,omitempty"`
	Missing  bool           `json:"missing,omitempty"`
	Read     int            `json:"read"`
	Prepared int            `json:"prepared"`
	Inserted int            `json:"inserted"`
	Skipped  int            `json:"skipped"`
	Failed   int            `json:"failed"`
	Errors   []string       `json:"errors,omitempty"`
	Sample   map[string]any `json:"sample,omitempty"`
}

func (r *TableResult) fail(format string, a ...any) {
	if len(r.Errors) < maxErrors {
		r.Errors = append(r.Errors, fmt.Sprintf(format, a...))
	}
}

type Report struct {
	RunID    string        `json:"runId"`
	DryRun   bool          `json:"dryRun"`
	Tables   []TableResult `json:"tables"`
	Duration time.Duration `json:"duration"`
}

// Run 匯入指定的資料表（Names 中的名稱或 "all"）。
func (im *Importer) Run(ctx context.Context, names ...string) (*Report, error) {
	specs, ok := Select(names...)
	if !ok {
		return nil, errs.Warnf("Unknown table: %s (available: %s)", strings.Join(names, ","), strings.Join(Names, ", "))
	}
	start := time.Now()
	rep := &Report{RunID: uuid.NewString(), DryRun: im.dry}
	for _, s := range specs {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		res := im.importFile(ctx, s)
		rep.Tables = append(rep.Tables, res)
	}
	rep.Duration = time.Since(start)
	im.log.Info("import finished", "run_id", rep.RunID, "tables", len(rep.Tables), "dry_run", im.dry, "took", rep.Duration.String())
	return rep, nil
}

func (im *Importer) importFile(ctx context.Context, s *Spec) TableResult {
	res := TableResult{Table: s.Table.Name, File: s.File}
	path := filepath.Join(im.dir, s.File)
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Missing = true
			im.log.Warn("import file not found", "file", path)
			return res
		}
		res.fail("read %s: %v", s.File, err)
		return res
	}
	text, enc := Decode(raw)
	res.Encoding = enc

	records, err := readCSV(text)
	if err != nil {
		res.fail("parse %s: %v", s.File, err)
		return res
	}
	if len(records) == 0 {
		return res
	}
	header := make([]string, len(records[0]))
	for i, h := range records[0] {
		header[i] = strings.ToLower(clean(h))
	}
	body := records[1:]
	res.Read = len(body)
	im.log.Info("import file", "file", s.File, "table", s.Table.Name, "encoding", enc, "rows", res.Read)

	bar := pb.New(len(body))
	if !im.show {
		bar.SetWriter(io.Discard)
	}
	bar.Start()
	defer bar.Finish()

	cols := s.targets()
	pending := make([][]any, 0, s.batch())
	flush := func() {
		if len(pending) == 0 || im.dry {
			pending = pending[:0]
			return
		}
		n, err := im.st.BulkInsert(ctx, s.Table, cols, pending)
		if err != nil {
			res.Failed += len(pending)
			res.fail("batch ending row %d: %s", res.Prepared, err.Error())
			im.log.Warn("import batch failed", "table", s.Table.Name, "rows", len(pending), "err", err)
			metrics.RecordImportRows(s.Table.Name, "failed", len(pending))
		} else {
			res.Inserted += n
			metrics.RecordImportRows(s.Table.Name, "inserted", n)
		}
		pending = pending[:0]
	}

	for i, rec := range body {
		bar.Increment()
		row, err := s.row(header, rec)
		switch {
		case err != nil:
			res.Failed++
			res.fail("row %d: %s", i+2, errs.Public(err))
			continue
		case row == nil:
			res.Skipped++
			continue
		}
		if res.Sample == nil {
			res.Sample = sample(cols, row)
		}
		res.Prepared++
		pending = append(pending, row)
		if len(pending) >= s.batch() {
			flush()
		}
	}
	flush()
	metrics.RecordImportRows(s.Table.Name, "skipped", res.Skipped)
	return res
}

// row 將一筆來源資料轉為依 targets 排列的值；缺主鍵時回傳 nil, nil。
func (s *Spec) row(header, rec []string) ([]any, error) {
	src := make(map[string]string, len(header))
	for i, h := range header {
		if i < len(rec) {
			src[h] = clean(rec[i])
		}
	}
	vals := make(map[string]any, len(s.Columns)+4)
	for _, c := range s.Columns {
		if v := src[strings.ToLower(c[0])]; v != "" {
			vals[c[1]] = v
		}
	}
	if vals[s.Key] == nil {
		return nil, nil
	}
	if s.Derive != nil {
		s.Derive(src, vals)
	}
	for k, d := range s.Defaults {
		if vals[k] == nil {
			vals[k] = d
		}
	}
	cols := s.targets()
	out := make([]any, len(cols))
	for i, c := range cols {
		v, err := s.Table.Coerce(c, vals[c])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readCSV(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	return r.ReadAll()
}

func sample(cols []string, row []any) map[string]any {
	m := make(map[string]any, len(cols))
	for i, c := range cols {
		if row[i] != nil {
			m[c] = row[i]
		}
	}
	return m
}
