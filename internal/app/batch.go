package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/fetch"
	"github.com/John-Robertt/avmeta/internal/scan"
)

// Searcher 是批量扫描对搜索能力的最小依赖（provider.Service 满足它）。
type Searcher interface {
	Search(ctx context.Context, family, text string, hintDate *time.Time) ([]domain.SearchCandidate, error)
}

type BatchOptions struct {
	Root        string
	Family      string
	Concurrency int
	ExcludeDirs []string
}

// Scan 扫描目录、按 CODE 分组，并对每个 CODE 搜索一次，返回对外稳定的 ScanReport。
//
// 单个 CODE 的失败只降级为该条目失败；只有目录本身无法扫描时才返回 error。
func Scan(ctx context.Context, opts BatchOptions, s Searcher, obs Observer) (domain.ScanReport, error) {
	rr := domain.ScanReport{
		RunID:     uuid.NewString(),
		Path:      opts.Root,
		Family:    opts.Family,
		StartedAt: time.Now().UTC(),
		Items:     make([]domain.ScanItem, 0, 128),
	}
	if obs != nil {
		obs.OnStart(opts)
	}

	scanStarted := time.Now()
	files, err := scan.Videos(ctx, opts.Root, opts.ExcludeDirs)
	if err != nil {
		return rr, fmt.Errorf("扫描失败：%w", err)
	}
	items, unmatched, err := GroupByCode(files)
	if err != nil {
		return rr, fmt.Errorf("分组失败：%w", err)
	}
	if obs != nil {
		obs.OnPhaseDone("scan", map[string]any{
			"files":     len(files),
			"codes":     len(items),
			"unmatched": len(unmatched),
		}, time.Since(scanStarted))
	}

	// unmatched：每个输入文件单独形成一条 item，便于用户逐个修复。
	for _, u := range unmatched {
		rr.Items = append(rr.Items, unmatchedItem(u))
	}

	workers := opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	if obs != nil {
		obs.OnPhaseDone("search", map[string]any{
			"workers": workers,
			"total":   len(items),
		}, 0)
	}

	type result struct {
		item domain.ScanItem
		dur  time.Duration
	}
	jobs := make(chan domain.WorkItem)
	results := make(chan result, len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range jobs {
				started := time.Now()
				r := searchOne(ctx, s, opts.Family, it, files)
				results <- result{item: r, dur: time.Since(started)}
			}
		}()
	}

	go func() {
		for _, it := range items {
			jobs <- it
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	done := 0
	for r := range results {
		done++
		rr.Items = append(rr.Items, r.item)
		if obs != nil {
			obs.OnItemDone(done, len(items), r.item, r.dur)
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr, nil
}

func searchOne(ctx context.Context, s Searcher, family string, it domain.WorkItem, files []domain.VideoFile) domain.ScanItem {
	item := domain.ScanItem{
		Code:       it.Token.String(),
		Files:      make([]string, 0, len(it.FileIdx)),
		Candidates: []domain.SearchCandidate{},
	}
	for _, idx := range it.FileIdx {
		item.Files = append(item.Files, files[idx].RelPath)
	}

	cands, err := s.Search(ctx, family, it.Token.QueryText(), nil)
	if err != nil {
		item.Status = domain.StatusFailed
		item.ErrorCode = errorCode(err)
		item.ErrorMsg = err.Error()
		return item
	}
	if len(cands) == 0 {
		item.Status = domain.StatusNoResults
		item.ErrorCode = domain.ErrCodeNoResults
		item.ErrorMsg = fmt.Sprintf("%s 上没有找到 %s", family, it.Token)
		return item
	}
	item.Status = domain.StatusMatched
	item.Candidates = cands
	item.Best = domain.BestCandidate(cands)
	return item
}

func errorCode(err error) string {
	var be *fetch.BlockedError
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domain.ErrCodeCancelled
	case errors.As(err, &be):
		return domain.ErrCodeBlocked
	default:
		return domain.ErrCodeFetchFailed
	}
}

func unmatchedItem(u domain.Unmatched) domain.ScanItem {
	item := domain.ScanItem{
		Status:     domain.StatusUnmatched,
		ErrorCode:  domain.ErrCodeUnmatchedCode,
		Files:      []string{u.File.RelPath},
		Candidates: []domain.SearchCandidate{},
	}
	switch u.Kind {
	case "ambiguous":
		for _, c := range u.Candidates {
			item.Ambiguous = append(item.Ambiguous, c.String())
		}
		item.ErrorMsg = fmt.Sprintf("解析到多个不同 CODE（ambiguous）：%s；请重命名文件/目录使其只包含一个 CODE", strings.Join(item.Ambiguous, ", "))
	default:
		item.ErrorMsg = "无法从文件名或父目录解析出 CODE；请确保文件名包含类似 CAWD-895 的片段"
	}
	return item
}
