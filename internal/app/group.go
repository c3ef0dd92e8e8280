package app

import (
	"errors"
	"sort"

	"github.com/John-Robertt/avmeta/internal/code"
	"github.com/John-Robertt/avmeta/internal/domain"
)

// GroupByCode 把视频文件按编号分组：同一 CODE 的多个文件（分段、不同清晰度）只触发一次搜索。
//
// 输出是确定的：items 按编号排序，item 内文件按 RelPath 排序，
// unmatched 保持 files 的顺序。
func GroupByCode(files []domain.VideoFile) ([]domain.WorkItem, []domain.Unmatched, error) {
	byToken := make(map[domain.Token][]int, len(files))
	var unmatched []domain.Unmatched

	for i, f := range files {
		tok, err := code.FromFile(f)
		if err == nil {
			byToken[tok] = append(byToken[tok], i)
			continue
		}
		var ue *code.UnmatchedError
		if !errors.As(err, &ue) {
			return nil, nil, err
		}
		unmatched = append(unmatched, domain.Unmatched{
			File:       f,
			Kind:       ue.Kind,
			Candidates: append([]domain.Token(nil), ue.Candidates...),
		})
	}

	items := make([]domain.WorkItem, 0, len(byToken))
	for tok, idx := range byToken {
		sort.Slice(idx, func(a, b int) bool { return files[idx[a]].RelPath < files[idx[b]].RelPath })
		items = append(items, domain.WorkItem{Token: tok, FileIdx: idx})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Token.String() < items[j].Token.String() })
	return items, unmatched, nil
}
