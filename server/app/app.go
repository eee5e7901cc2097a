// Package app 管理長期運行元件（HTTP 服務、同步排程）的啟動與優雅關閉。
package app

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// DefaultShutdownTimeout 關閉所有元件的總期限。
const DefaultShutdownTimeout = 10 * time.Second

// App 並行啟動所有註冊的 Component；收到 SIGINT/SIGTERM 或任一 Component 結束時，
// 以註冊的相反順序呼叫 Shutdown。
type App struct {
	comps   []Component
	log     *slog.Logger
	timeout time.Duration
	signals []os.Signal
}

// New 建立空的 App。
func New() *App {
	return &App{
		log:     slog.Default(),
		timeout: DefaultShutdownTimeout,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
	}
}

// NewWith 建立 App 並依序註冊 comps。
func NewWith(comps ...Component) *App {
	a := New()
	for _, c := range comps {
		a.Register(c)
	}
	return a
}

// Register 註冊 Component；nil 會被忽略，方便選配元件（例如未啟用的排程）。
func (a *App) Register(c Component) {
	if c == nil {
		return
	}
	a.comps = append(a.comps, c)
}

// WithLogger 關閉錯誤寫到 log。
func (a *App) WithLogger(log *slog.Logger) *App {
	if log != nil {
		a.log = log
	}
	return a
}

// WithShutdownTimeout 調整關閉期限；d <= 0 時忽略。
func (a *App) WithShutdownTimeout(d time.Duration) *App {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// Run 阻塞直到收到終止信號或任一 Component.Run 返回。
//   - 收到信號：優雅關閉後回傳 nil。
//   - Component 返回：優雅關閉後回傳該 Component 的結果（可能為 nil）。
func (a *App) Run() error {
	return a.RunContext(context.Background())
}

// RunContext 與 Run 相同，另外在 ctx 結束時觸發關閉。
func (a *App) RunContext(ctx context.Context) error {
	errCh := make(chan error, len(a.comps))
	for _, c := range a.comps {
		go func(c Component) {
			errCh <- c.Run()
		}(c)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, a.signals...)
	defer signal.Stop(quit)

	var err error
	select {
	case <-quit:
	case <-ctx.Done():
	case err = <-errCh:
	}
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	for i := len(a.comps) - 1; i >= 0; i-- {
		if err := a.comps[i].Shutdown(ctx); err != nil {
			a.log.Error("shutdown failed", slog.Any("err", err))
		}
	}
}
