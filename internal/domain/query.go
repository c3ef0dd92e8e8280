package domain

import "time"

// Query 是一次搜索调用的输入（每次调用临时构造，不跨请求复用）。
type Query struct {
	Text     string
	HintDate *time.Time
}

// Token 是从查询文本中启发式提取的 "前缀 + 数字" 编号。
//
// 不变量：一次搜索内只派生一次，所有 variant 共用同一个 Token。
type Token struct {
	Prefix string
	Number string
}

// String 返回规范形式 PREFIX-NUMBER（保留原始大小写）。
func (t Token) String() string {
	return t.Prefix + "-" + t.Number
}

// QueryText 返回 "PREFIX NUMBER" 形式的查询文本，code.ParseQuery 从它派生出的 Token 与 t 相同。
func (t Token) QueryText() string {
	return t.Prefix + " " + t.Number
}

// SearchCandidate 是搜索得到的一条候选。
//
// 约束：
// - ID 必须由 locator.Encode 从完整 URL 生成（不允许相对路径）
// - Score 仅在存在 Token 时设置；它只是排序提示，调用方自行决定是否排序
type SearchCandidate struct {
	Label     string `json:"label"`
	PosterURL string `json:"poster_url,omitempty"`
	ID        string `json:"id"`
	Score     *int   `json:"score,omitempty"`
}
