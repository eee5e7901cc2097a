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

package importer

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode 依序嘗試 utf-8 → windows-1252 → latin-1，回傳文字與實際使用的編碼名稱。
// windows-1252 解碼結果出現替代字元時改用 latin-1。
func Decode(b []byte) (string, string) {
	if utf8.Valid(b) {
		return string(bytes.TrimPrefix(b, utf8BOM)), "utf-8"
	}
	if s, err := charmap.Windows1252.NewDecoder().Bytes(b); err == nil && !bytes.ContainsRune(s, utf8.RuneError) {
		return string(s), "windows-1252"
	}
	s, _ := charmap.ISO8859_1.NewDecoder().Bytes(b)
	return string(s), "latin-1"
}

// clean 去除空白與外層引號；空字串回傳 ""。
func clean(v string) string {
	v = strings.TrimSpace(v)
	v = strings.Trim(v, `"`)
	return strings.TrimSpace(v)
}
