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

// Package errs 統一的錯誤型別。等級決定 HTTP 邊界如何回應：
//   - Warn     → 400，請求或參數問題，訊息可直接給使用者看
//   - NotFound → 404
//   - Denied   → 401，帳號或密碼錯誤
//   - Fatal    → 500，附上底層原因
package errs

import (
	"errors"
	"fmt"
)

// ErrLevel 錯誤分級，讓最上層理解問題嚴重程度。
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
	NotFound
	Denied
)

var errLvMap = map[ErrLevel]string{
	None:     "",
	Fatal:    "fatal",
	Warn:     "warn",
	Log:      "log",
	NotFound: "not_found",
	Denied:   "denied",
}

func ErrLv(errlv ErrLevel) string {
	return errLvMap[errlv]
}

// E 統一的錯誤型別；Cause 串接下層錯誤。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
}

func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

func (e *E) Unwrap() error { return e.Cause }

func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E    { return New(Fatal, msg) }
func NewWarn(msg string) *E     { return New(Warn, msg) }
func NewNotFound(msg string) *E { return New(NotFound, msg) }
func NewDenied(msg string) *E   { return New(Denied, msg) }

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// Wrap 以 msg 包裝 cause。
// cause 已經是 *E 時沿用其等級；其他錯誤（標準庫、資料庫驅動、HTTP 客戶端）一律視為 Fatal。
// 可預期的情境請直接 New 一個適當等級的錯誤，不要 Wrap。
func Wrap(cause error, msg string) *E {
	lv := Fatal
	if e, ok := AsErr(cause); ok {
		lv = e.ErrLv
	}
	r := New(lv, msg)
	r.Cause = cause
	return r
}

// WithExtra 附加不影響主訊息的上下文（例如 run id），回傳 e 本身。
func (e *E) WithExtra(extra string) *E {
	e.Extra = extra
	return e
}

// Public 回傳可以直接交給呼叫端的訊息。
// Warn/NotFound/Denied 只回主訊息；其餘附上底層原因。
func Public(err error) string {
	if err == nil {
		return ""
	}
	e, ok := AsErr(err)
	if !ok {
		return err.Error()
	}
	switch e.ErrLv {
	case Warn, NotFound, Denied:
		return e.Message
	}
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Is 判斷 err 鏈上第一個 *E 是否為指定等級。
func Is(err error, lv ErrLevel) bool {
	e, ok := AsErr(err)
	return ok && e.ErrLv == lv
}

func AsErr(err error) (*E, bool) {
	var e *E
	ok := errors.As(err, &e)
	return e, ok
}
