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

package tdtrack

import (
	"context"
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/model"
)

// ExportHeader DOR 報表欄位。
var ExportHeader = []string{
	"Owner Name", "PID", "TDT Number", "Address", "City", "County",
	"Status", "Active Date", "Inactive Date", "Latitude", "Longitude",
}

const exportDateLayout = "1/2/2006"

// ExportProperties 以 CSV 輸出符合條件的物件（DOR 報表格式），回傳資料列數。
func (t *Tracker) ExportProperties(ctx context.Context, q PropertyQuery, w io.Writer) (int, error) {
	q.Limit, q.Offset = 0, 0
	list, err := t.ListProperties(ctx, q)
	if err != nil {
		return 0, err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportHeader); err != nil {
		return 0, errs.Wrap(err, "write csv header")
	}
	for i := range list {
		if err := cw.Write(exportRow(&list[i])); err != nil {
			return i, errs.Wrap(err, "write csv row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, errs.Wrap(err, "flush csv")
	}
	return len(list), nil
}

func exportRow(p *model.Property) []string {
	status := "Inactive"
	if p.IsActive {
		status = "Active"
	}
	county := DefaultCounty
	if p.CountyName != nil && *p.CountyName != "" {
		county = *p.CountyName
	}
	return []string{
		deref(p.OwnerName),
		p.ParcelID,
		deref(p.TDTNumber),
		p.Address,
		p.City,
		county,
		status,
		fmtDate(p.ActiveDate),
		fmtDate(p.InactiveDate),
		fmtCoord(p.Lat),
		fmtCoord(p.Lng),
	}
}

func fmtDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportDateLayout)
}

func fmtCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
