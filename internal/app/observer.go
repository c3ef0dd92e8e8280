package app

import (
	"time"

	"github.com/John-Robertt/avmeta/internal/domain"
)

// Observer 把批量扫描的进度事件从执行流程中解耦出来。
//
// 约束：
// - app 包只发事件，不做任何输出（stdout 只留给最终报告）
// - 实现必须并发安全：OnItemDone 可能来自多个 worker
type Observer interface {
	OnStart(opts BatchOptions)
	// OnPhaseDone 在 scan/group/search 阶段结束或就绪时调用。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	OnItemDone(idx, total int, item domain.ScanItem, dur time.Duration)
}
