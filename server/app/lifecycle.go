package app

import "context"

// Component 可由 App 啟動與關閉的元件。
//   - Run 阻塞到元件停止；被要求關閉而結束時回傳 nil。
//   - Shutdown 要求元件停止並等待 Run 返回，逾時以 ctx 為準。
//
// 目前的實作：netsvr.ChiAdapter、demodata.Scheduler。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
