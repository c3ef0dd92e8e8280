package code

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/John-Robertt/avmeta/internal/domain"
)

// 文件名里的编号：字母段 + 至少一个分隔符 + 2~5 位数字，数字后不能紧跟数字。
// 分隔符是必需的，避免把 "SAMPLE123" 这类噪音当成编号。
var fileTokenRE = regexp.MustCompile(`(?i)([a-z]{2,6})[\s._-]+([0-9]{2,5})(?:[^0-9]|$)`)

// UnmatchedError 表示无法从文件提取唯一编号（批量扫描时该文件不会触发搜索）。
type UnmatchedError struct {
	Kind       string // "no_match" 或 "ambiguous"
	Candidates []domain.Token
}

func (e *UnmatchedError) Error() string {
	if e.Kind != "ambiguous" {
		return "无法从文件名或父目录解析出编号"
	}
	parts := make([]string, 0, len(e.Candidates))
	for _, c := range e.Candidates {
		parts = append(parts, c.String())
	}
	return "解析到多个不同编号（ambiguous）：" + strings.Join(parts, ", ")
}

// FromFile 从文件名与父目录名中提取唯一编号，直接得到搜索用的 Token（前缀大写）。
// 失败时返回 *UnmatchedError（no_match / ambiguous）。
func FromFile(v domain.VideoFile) (domain.Token, error) {
	seen := map[domain.Token]struct{}{}
	collect(seen, v.Base)
	collect(seen, filepath.Base(filepath.Dir(v.AbsPath)))

	if len(seen) == 0 {
		return domain.Token{}, &UnmatchedError{Kind: "no_match"}
	}
	toks := make([]domain.Token, 0, len(seen))
	for tok := range seen {
		toks = append(toks, tok)
	}
	if len(toks) == 1 {
		return toks[0], nil
	}
	sort.Slice(toks, func(i, j int) bool { return toks[i].String() < toks[j].String() })
	return domain.Token{}, &UnmatchedError{Kind: "ambiguous", Candidates: toks}
}

func collect(dst map[domain.Token]struct{}, s string) {
	s = width.Fold.String(strings.TrimSpace(s))
	for _, m := range fileTokenRE.FindAllStringSubmatch(s, -1) {
		dst[domain.Token{Prefix: strings.ToUpper(m[1]), Number: m[2]}] = struct{}{}
	}
}
