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
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect 隔離不同資料庫的 SQL 差異：佔位符、分頁、DDL 型別、回傳自增 id。
type Dialect interface {
	// Name 回傳 database/sql 驅動名稱。
	Name() string
	// Placeholder 回傳第 n 個（從 1 起算）參數的佔位符。
	Placeholder(n int) string
	// Limit 回傳分頁子句；limit <= 0 表示不限筆數。
	Limit(limit, offset int) string
	// ColumnType 欄位型別的 DDL 片段。
	ColumnType(ColType) string
	// IDColumn 主鍵欄位 DDL。
	IDColumn() string
	// InsertID 執行 INSERT 並取得新列 id。
	InsertID(ctx context.Context, q querier, query string, args []any) (int64, error)
	// IsExists 判斷建表/建索引錯誤是否為「物件已存在」。
	IsExists(error) bool
	// CreateTable 建表語句；支援 IF NOT EXISTS 的方言會直接帶上。
	CreateTable(t *TableDef) string
	// CreateIndex 建索引語句。
	CreateIndex(table, col string) string
}

// querier *sql.DB 與 *sql.Tx 的共同子集。
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DialectFor 依驅動名稱取得方言。
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "", "sqlite", "sqlite3":
		return sqliteDialect{}, nil
	case "oracle", "go-ora":
		return oracleDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// -----------------------------------------------------------------------------
//  sqlite (modernc.org/sqlite)
// -----------------------------------------------------------------------------

type sqliteDialect struct{}

func (sqliteDialect) Name() string           { return "sqlite" }
func (sqliteDialect) Placeholder(int) string { return "?" }

func (sqliteDialect) Limit(limit, offset int) string {
	if limit <= 0 {
		if offset <= 0 {
			return ""
		}
		limit = -1
	}
	if offset < 0 {
		offset = 0
	}
	return " LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(offset)
}

func (sqliteDialect) ColumnType(t ColType) string {
	switch t {
	case Real:
		return "REAL"
	case Integer, Bool:
		return "INTEGER"
	case Timestamp:
		return "DATETIME"
	}
	return "TEXT"
}

func (sqliteDialect) IDColumn() string { return "id INTEGER PRIMARY KEY AUTOINCREMENT" }

func (sqliteDialect) InsertID(ctx context.Context, q querier, query string, args []any) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, query+" RETURNING id", args...).Scan(&id)
	return id, err
}

func (sqliteDialect) IsExists(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already exists")
}

func (d sqliteDialect) CreateTable(t *TableDef) string {
	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (" + columnsDDL(d, t) + ")"
}

func (sqliteDialect) CreateIndex(table, col string) string {
	return fmt.Sprintf("CREATE INDEX IF NOT EXISTS idx_%s_%s ON %s (%s)", table, col, table, col)
}

// -----------------------------------------------------------------------------
//  oracle (github.com/sijms/go-ora/v2)
// -----------------------------------------------------------------------------

type oracleDialect struct{}

func (oracleDialect) Name() string             { return "oracle" }
func (oracleDialect) Placeholder(n int) string { return ":" + strconv.Itoa(n) }

func (oracleDialect) Limit(limit, offset int) string {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		if offset == 0 {
			return ""
		}
		return " OFFSET " + strconv.Itoa(offset) + " ROWS"
	}
	return " OFFSET " + strconv.Itoa(offset) + " ROWS FETCH NEXT " + strconv.Itoa(limit) + " ROWS ONLY"
}

func (oracleDialect) ColumnType(t ColType) string {
	switch t {
	case LongText:
		return "CLOB"
	case Real:
		return "BINARY_DOUBLE"
	case Integer:
		return "NUMBER(19)"
	case Bool:
		return "NUMBER(1)"
	case Timestamp:
		return "TIMESTAMP"
	case Date:
		return "VARCHAR2(10)"
	}
	return "VARCHAR2(400)"
}

func (oracleDialect) IDColumn() string {
	return "id NUMBER(19) GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
}

func (d oracleDialect) InsertID(ctx context.Context, q querier, query string, args []any) (int64, error) {
	var id int64
	query += " RETURNING id INTO " + d.Placeholder(len(args)+1)
	all := append(append([]any{}, args...), sql.Out{Dest: &id})
	_, err := q.ExecContext(ctx, query, all...)
	return id, err
}

func (oracleDialect) IsExists(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "ORA-00955") || strings.Contains(msg, "ORA-01408")
}

func (d oracleDialect) CreateTable(t *TableDef) string {
	return "CREATE TABLE " + t.Name + " (" + columnsDDL(d, t) + ")"
}

func (oracleDialect) CreateIndex(table, col string) string {
	return fmt.Sprintf("CREATE INDEX ix_%s_%s ON %s (%s)", abbrev(table), abbrev(col), table, col)
}

// abbrev 縮短識別字，避免超過 Oracle 舊版 30 字元的限制。
func abbrev(s string) string {
	if len(s) > 12 {
		return s[:12]
	}
	return s
}

func columnsDDL(d Dialect, t *TableDef) string {
	var b strings.Builder
	b.WriteString(d.IDColumn())
	for _, c := range t.Columns {
		b.WriteString(", ")
		b.WriteString(c.Name)
		b.WriteByte(' ')
		b.WriteString(d.ColumnType(c.Type))
		if c.NotNull {
			b.WriteString(" NOT NULL")
		}
		if c.Unique {
			b.WriteString(" UNIQUE")
		}
	}
	return b.String()
}
