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

// Package compliance 定義合規情境代碼（scenario）與其判定規則。
//
// 情境代碼是衍生、非權威的標記：只在產生資料時計算一次，之後不會依付款狀態重新計算。
package compliance

import (
	"fmt"
	"strconv"
)

// Scenario 合規情境代碼；None 代表合規。
type Scenario uint8

const (
	None                Scenario = iota
	UnregisteredUnpaid           // 1 未登記、未繳納
	UnregisteredPaid             // 2 未登記、有繳納
	RegisteredUnpaid             // 3 已登記、未繳納
	RegisteredUnderpaid          // 4 已登記、金額不正確
)

var labels = map[Scenario]string{
	None:                "Compliant",
	UnregisteredUnpaid:  "Unregistered & Unpaid",
	UnregisteredPaid:    "Unregistered & Paid",
	RegisteredUnpaid:    "Registered & Unpaid",
	RegisteredUnderpaid: "Registered & Wrong Amount",
}

// All 依代碼順序列出非合規情境。
var All = []Scenario{UnregisteredUnpaid, UnregisteredPaid, RegisteredUnpaid, RegisteredUnderpaid}

// Classify 依序判斷：先看是否登記，再看是否有付款，最後看金額是否正確。
func Classify(isRegistered, hasPayments, paymentCorrect bool) Scenario {
	switch {
	case !isRegistered && hasPayments:
		return UnregisteredPaid
	case !isRegistered:
		return UnregisteredUnpaid
	case !hasPayments:
		return RegisteredUnpaid
	case !paymentCorrect:
		return RegisteredUnderpaid
	default:
		return None
	}
}

func (s Scenario) Label() string {
	if l, ok := labels[s]; ok {
		return l
	}
	return "Unknown"
}

func (s Scenario) String() string {
	if s == None {
		return "none"
	}
	return strconv.Itoa(int(s))
}

// Ptr 回傳資料庫欄位值；合規時為 nil（compliance_scenario 為 NULL）。
func (s Scenario) Ptr() *int {
	if s == None {
		return nil
	}
	v := int(s)
	return &v
}

// FromPtr 由資料庫欄位值還原 Scenario。
func FromPtr(v *int) Scenario {
	if v == nil {
		return None
	}
	return Scenario(*v)
}

// Parse 解析 "1".."4"；"none" 或空字串視為 None。
func Parse(s string) (Scenario, error) {
	switch s {
	case "", "none", "0":
		return None, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || !Valid(int64(n)) {
		return None, fmt.Errorf("invalid scenario %q", s)
	}
	return Scenario(n), nil
}

// Valid 是否為 1..4 的非合規情境代碼。
func Valid(n int64) bool {
	return n >= int64(UnregisteredUnpaid) && n <= int64(RegisteredUnderpaid)
}
