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

package store

import (
	"fmt"
	"strings"
)

// Pred 單一條件；只能透過本檔的建構函數產生，欄位名稱在 Render 時比對 TableDef。
type Pred struct {
	op   predOp
	cols []string
	val  any
}

type predOp uint8

const (
	opEq predOp = iota + 1
	opContains
	opAnyContains
	opIsNull
	opIsTrue
	opIsFalse
)

// Eq 欄位完全相等。
func Eq(col string, v any) Pred { return Pred{op: opEq, cols: []string{col}, val: v} }

// Contains 不分大小寫的子字串比對。
func Contains(col, sub string) Pred {
	return Pred{op: opContains, cols: []string{col}, val: sub}
}

// AnyContains 任一欄位包含子字串即成立（OR 群組）。
func AnyContains(sub string, cols ...string) Pred {
	return Pred{op: opAnyContains, cols: cols, val: sub}
}

func IsNull(col string) Pred  { return Pred{op: opIsNull, cols: []string{col}} }
func IsTrue(col string) Pred  { return Pred{op: opIsTrue, cols: []string{col}} }
func IsFalse(col string) Pred { return Pred{op: opIsFalse, cols: []string{col}} }

// Filter 以 AND 串接的條件集合。零值代表不過濾。
type Filter []Pred

// And 回傳附加條件後的新 Filter。
func (f Filter) And(p ...Pred) Filter {
	out := make(Filter, 0, len(f)+len(p))
	return append(append(out, f...), p...)
}

// Render 產生 WHERE 子句（含前導空白）與參數。argBase 為已使用的參數數量。
// 值一律以佔位符傳遞，不會拼接進 SQL。
func (f Filter) Render(d Dialect, t *TableDef, alias string, argBase int) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	var (
		parts []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return d.Placeholder(argBase + len(args))
	}
	for _, p := range f {
		for _, c := range p.cols {
			if !t.Has(c) {
				return "", nil, fmt.Errorf("filter: unknown column %s.%s", t.Name, c)
			}
		}
		switch p.op {
		case opEq:
			parts = append(parts, prefix+p.cols[0]+" = "+next(bindArg(p.val)))
		case opContains:
			parts = append(parts, likeExpr(prefix+p.cols[0], next(likePattern(p.val))))
		case opAnyContains:
			if len(p.cols) == 0 {
				continue
			}
			pat := likePattern(p.val)
			ors := make([]string, len(p.cols))
			for i, c := range p.cols {
				ors[i] = likeExpr(prefix+c, next(pat))
			}
			parts = append(parts, "("+strings.Join(ors, " OR ")+")")
		case opIsNull:
			parts = append(parts, prefix+p.cols[0]+" IS NULL")
		case opIsTrue:
			parts = append(parts, prefix+p.cols[0]+" = 1")
		case opIsFalse:
			parts = append(parts, prefix+p.cols[0]+" = 0")
		default:
			return "", nil, fmt.Errorf("filter: unknown operator %d", p.op)
		}
	}
	if len(parts) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func likeExpr(col, ph string) string {
	return "LOWER(" + col + ") LIKE " + ph + ` ESCAPE '\'`
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(v any) string {
	s, _ := v.(string)
	return "%" + likeEscaper.Replace(strings.ToLower(s)) + "%"
}
