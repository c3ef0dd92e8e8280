package domain

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"
)

func TestScanReport_Finalize_SortAndSummaryAndUTC(t *testing.T) {
	r := ScanReport{
		Path:       "/abs/path",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Items: []ScanItem{
			{Code: "B-02", Status: StatusNoResults},
			{Code: "", Status: StatusUnmatched},
			{Code: "A-01", Status: StatusMatched},
			{Code: "", Status: StatusFailed},
		},
	}

	r.Finalize()

	// code=="" 必须排在最后，且内部顺序保持稳定。
	got := []string{r.Items[0].Code, r.Items[1].Code, r.Items[2].Code, r.Items[3].Code}
	if got[0] != "A-01" || got[1] != "B-02" || got[2] != "" || got[3] != "" {
		t.Fatalf("items 排序不符合契约：%v", got)
	}
	if r.Items[2].Status != StatusUnmatched {
		t.Fatalf("code 为空的条目应保持原有相对顺序：%+v", r.Items[2:])
	}
	if r.Summary.Matched != 1 || r.Summary.NoResults != 1 || r.Summary.Failed != 1 || r.Summary.Unmatched != 1 {
		t.Fatalf("summary 统计不正确：%+v", r.Summary)
	}

	b, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("json.Marshal 失败：%v", err)
	}
	if !bytes.Contains(b, []byte(`"started_at":"2026-02-09T02:00:00Z"`)) {
		t.Fatalf("started_at 不是 UTC RFC3339：%s", string(b))
	}
}

func TestBestCandidate(t *testing.T) {
	s := func(n int) *int { return &n }

	if BestCandidate(nil) != nil {
		t.Fatalf("空列表应返回 nil")
	}

	got := BestCandidate([]SearchCandidate{
		{ID: "a", Score: s(90)},
		{ID: "b", Score: s(100)},
		{ID: "c", Score: s(100)},
	})
	if got.ID != "b" {
		t.Fatalf("期望并列时保留先发现的 b，实际 %q", got.ID)
	}

	got = BestCandidate([]SearchCandidate{{ID: "x"}, {ID: "y"}})
	if got.ID != "x" {
		t.Fatalf("无 Score 时应取第一个，实际 %q", got.ID)
	}
}
