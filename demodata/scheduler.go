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

package demodata

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Scheduler 以固定間隔執行同步作業，滿足 app.Component（Run 阻塞、Shutdown 結束）。
type Scheduler struct {
	syncer   *Syncer
	interval time.Duration
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler interval 必須大於 0。
func NewScheduler(s *Syncer, interval time.Duration, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{syncer: s, interval: interval, log: log, ctx: ctx, cancel: cancel, done: make(chan struct{})}
}

func (sc *Scheduler) Run() error {
	defer close(sc.done)
	if sc.interval <= 0 {
		return errors.New("demodata: scheduler interval must be positive")
	}
	t := time.NewTicker(sc.interval)
	defer t.Stop()
	sc.log.Info("sync scheduler started", "interval", sc.interval.String())
	for {
		select {
		case <-sc.ctx.Done():
			return nil
		case <-t.C:
			sc.tick()
		}
	}
}

func (sc *Scheduler) tick() {
	res, err := sc.syncer.Run(sc.ctx)
	switch {
	case errors.Is(err, ErrRunning):
		sc.log.Debug("scheduled sync skipped: previous run still active")
	case err != nil:
		sc.log.Error("scheduled sync failed", "err", err)
	default:
		sc.log.Info("scheduled sync", "run_id", res.RunID, "message", res.Message)
	}
}

func (sc *Scheduler) Shutdown(ctx context.Context) error {
	sc.cancel()
	select {
	case <-sc.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
