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

// Package perf 包裝 runtime/pprof，讓批次作業（例如大量匯入）可以順手留下 profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"slices"

	"github.com/zintix-labs/tdtrack/errs"
)

// DefaultDir profile 預設寫入路徑。
const DefaultDir = "build/profiling"

// Modes 可用的 profile 種類。
var Modes = []string{"cpu", "heap", "allocs"}

// Run 依 mode 包住 exe 執行並寫出 profile；mode 為空時只執行 exe。
// dir 為空時使用 DefaultDir，回傳值為 exe 的錯誤或寫檔錯誤。
//
// Usage like:
//
//	tdtctl import --all --pprof cpu
//	go tool pprof build/profiling/cpu.pprof
func Run(mode, dir string, exe func() error) error {
	if mode == "" {
		return exe()
	}
	if dir == "" {
		dir = DefaultDir
	}
	if !slices.Contains(Modes, mode) {
		return errs.Warnf("unknown pprof mode %q (cpu|heap|allocs)", mode)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(err, "create profiling directory")
	}
	path := filepath.Join(dir, mode+".pprof")

	switch mode {
	case "cpu":
		return cpu(path, exe)
	case "heap":
		return snapshot(path, exe, func(f *os.File) error {
			// 快照前先 GC，讓 in-use 視圖貼近最新狀態
			runtime.GC()
			return pprof.WriteHeapProfile(f)
		})
	default:
		return snapshot(path, exe, func(f *os.File) error {
			return pprof.Lookup("allocs").WriteTo(f, 0)
		})
	}
}

func cpu(path string, exe func() error) error {
	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+path)
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 先執行 exe，再寫出一次性的 profile；exe 失敗時仍會寫檔。
func snapshot(path string, exe func() error, write func(*os.File) error) error {
	runErr := exe()

	f, err := os.Create(path)
	if err != nil {
		return errs.Wrap(err, "create "+path)
	}
	defer f.Close()
	if err := write(f); err != nil {
		return errs.Wrap(err, "write "+path)
	}
	return runErr
}
