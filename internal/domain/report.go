package domain

import (
	"sort"
	"time"
)

const (
	StatusMatched   = "matched"
	StatusNoResults = "no_results"
	StatusFailed    = "failed"
	StatusUnmatched = "unmatched"
)

const (
	ErrCodeUnmatchedCode = "unmatched_code"
	ErrCodeFetchFailed   = "fetch_failed"
	ErrCodeBlocked       = "blocked"
	ErrCodeNoResults     = "no_results"
	ErrCodeCancelled     = "cancelled"
)

// ScanReport 是 `avmeta scan` 的对外稳定输出（stdout JSON）。
// 只描述搜索结果，不落盘。
type ScanReport struct {
	RunID  string `json:"run_id"`
	Path   string `json:"path"`
	Family string `json:"family"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Summary ScanSummary `json:"summary"`
	Items   []ScanItem  `json:"items"`
}

type ScanSummary struct {
	Matched   int `json:"matched"`
	NoResults int `json:"no_results"`
	Failed    int `json:"failed"`
	Unmatched int `json:"unmatched"`
}

// ScanItem 是一个 CODE（或一个 unmatched 文件）的搜索结果。
type ScanItem struct {
	Code  string   `json:"code"`
	Files []string `json:"files"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	// Best 是 Score 最高的候选（没有 Score 时取发现顺序第一个）。
	Best       *SearchCandidate  `json:"best,omitempty"`
	Candidates []SearchCandidate `json:"candidates"`
	Ambiguous  []string          `json:"ambiguous,omitempty"`
}

// Finalize 统一收尾：
// 1) 时间统一为 UTC
// 2) items 稳定排序：按 code 字典序；code=="" 的条目排在最后
// 3) summary 由 items 计算得出
func (r *ScanReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Items, func(i, j int) bool {
		a, b := r.Items[i].Code, r.Items[j].Code
		if a == "" || b == "" {
			return a != "" && b == ""
		}
		return a < b
	})

	var s ScanSummary
	for _, it := range r.Items {
		switch it.Status {
		case StatusMatched:
			s.Matched++
		case StatusNoResults:
			s.NoResults++
		case StatusFailed:
			s.Failed++
		case StatusUnmatched:
			s.Unmatched++
		}
	}
	r.Summary = s
}

// BestCandidate 返回 Score 最高的候选；并列时保持发现顺序。
func BestCandidate(cands []SearchCandidate) *SearchCandidate {
	if len(cands) == 0 {
		return nil
	}
	best := 0
	for i := 1; i < len(cands); i++ {
		if cands[i].Score == nil {
			continue
		}
		if cands[best].Score == nil || *cands[i].Score > *cands[best].Score {
			best = i
		}
	}
	c := cands[best]
	return &c
}
