package provider

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text 返回选区第一个节点的文本（空白折叠为单个空格）。
func Text(s *goquery.Selection) string { return NormSpace(s.First().Text()) }

// NormSpace 折叠连续空白并去掉首尾空白。
func NormSpace(s string) string { return strings.Join(strings.Fields(s), " ") }

// ResolveURL 把页面里的 href/src 解析为绝对 URL。
//
// - 协议相对地址（//host/x）沿用 base 的 scheme，base 不可用时用 https
// - 已是绝对地址的原样返回
// - 解析失败时原样返回 href
func ResolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	bu, err := url.Parse(strings.TrimSpace(base))
	if err != nil || bu.Scheme == "" {
		if strings.HasPrefix(href, "//") {
			return "https:" + href
		}
		return href
	}
	ru, err := url.Parse(href)
	if err != nil {
		return href
	}
	return bu.ResolveReference(ru).String()
}

// StripCode 去掉 title 中第一次出现的 code（大小写不敏感）并去掉首尾空白。
// 所有 family 的 Title 都经过它，OriginalTitle 保留编号。
func StripCode(title, code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return strings.TrimSpace(title)
	}
	for i := 0; i+len(code) <= len(title); i++ {
		if strings.EqualFold(title[i:i+len(code)], code) {
			title = title[:i] + title[i+len(code):]
			break
		}
	}
	return NormSpace(title)
}

// NormList 去空、去重并保持首次出现的顺序。
func NormList(in []string) []string {
	m := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := m[s]; ok {
			continue
		}
		m[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// FirstInt 返回 s 中第一段连续数字；没有数字时返回 0。
func FirstInt(s string) int {
	start := strings.IndexFunc(s, isDigit)
	if start < 0 {
		return 0
	}
	end := strings.IndexFunc(s[start:], func(r rune) bool { return !isDigit(r) })
	if end < 0 {
		end = len(s) - start
	}
	n, _ := strconv.Atoi(s[start : start+end])
	return n
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }
