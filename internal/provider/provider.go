package provider

import (
	"context"
	"fmt"

	"github.com/John-Robertt/avmeta/internal/domain"
)

// Provider 是一个 catalog family 的能力集合；站点差异被限制在各自的子包内部。
//
// 约束：
// - Search 对空白查询返回空结果，不发起任何请求
// - 抓取失败原样向外传播，不被当成 "没有结果"
// - ctx 取消时返回 ctx.Err()，不返回部分结果
// - id 是 locator 编码后的详情页 URL
type Provider interface {
	Family() string
	Search(ctx context.Context, q domain.Query) ([]domain.SearchCandidate, error)
	Resolve(ctx context.Context, id string) (domain.MetadataRecord, error)
	Images(ctx context.Context, id string) ([]domain.ImageRecord, error)
}

// Attempt 记录对一个站点 variant 的一次尝试（用于解释为什么落到了下一个 variant）。
type Attempt struct {
	Variant string // variant name
	Stage   string // "list" / "fallback"：产出候选；"empty"：没有候选；"fetch"：抓取失败
	URL     string
	Err     error // 仅 Stage=="fetch" 时非 nil
}

// Error 是 family 阶段的可追溯错误。
// 上层可以据此把失败归类为 fetch_failed / blocked，并写入 report。
type Error struct {
	Family string
	Stage  string // "search" / "resolve" / "images"
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("family=%s stage=%s: %v", e.Family, e.Stage, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
