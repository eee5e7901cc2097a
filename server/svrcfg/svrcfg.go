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

package svrcfg

import (
	"io/fs"
	"log/slog"

	"github.com/zintix-labs/tdtrack"
	"github.com/zintix-labs/tdtrack/demodata"
	"github.com/zintix-labs/tdtrack/errs"
	"github.com/zintix-labs/tdtrack/server/logger"
)

// SvrCfg 組裝 HTTP 服務所需的一切，全部由呼叫端明確注入。
type SvrCfg struct {
	Log     *slog.Logger
	Config  *Config
	Tracker *tdtrack.Tracker
	Syncer  *demodata.Syncer // 可為 nil：/api/sync 回報未設定金鑰
	Web     fs.FS            // 可為 nil：使用內建頁面
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log = logger.Discard()
	}
	if sc.Config == nil {
		sc.Config = Defaults()
	}
	if err := sc.Config.Validate(); err != nil {
		return err
	}
	if sc.Tracker == nil {
		return errs.NewFatal("tracker is required")
	}
	return nil
}
