package domain

import (
	"fmt"
	"strings"
)

// NamingStyle 决定演员名的词序。
type NamingStyle int

const (
	// NamingSource 保持站点原样（日文顺序：姓 名）。
	NamingSource NamingStyle = iota
	// NamingWestern 反转词序（名 姓）。
	NamingWestern
)

func (s NamingStyle) String() string {
	switch s {
	case NamingWestern:
		return "western"
	default:
		return "source"
	}
}

// ParseNamingStyle 解析配置值；空串视为 source。
func ParseNamingStyle(s string) (NamingStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "source", "japanese":
		return NamingSource, nil
	case "western":
		return NamingWestern, nil
	default:
		return NamingSource, fmt.Errorf("naming_style 只能是 source 或 western，实际是 %q", s)
	}
}

// Apply 按策略调整一个名字的词序。
func (s NamingStyle) Apply(name string) string {
	if s != NamingWestern {
		return name
	}
	words := strings.Fields(name)
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	return strings.Join(words, " ")
}
