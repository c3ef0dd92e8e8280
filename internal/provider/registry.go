package provider

import (
	"fmt"
	"sort"
	"strings"
)

// Registry 是 family 能力的只读注册表（按 family 名索引，大小写不敏感）。
type Registry struct {
	byFamily map[string]Provider
}

func NewRegistry(providers ...Provider) (Registry, error) {
	byFamily := make(map[string]Provider, len(providers))
	for _, p := range providers {
		if p == nil {
			return Registry{}, fmt.Errorf("provider 不能为空")
		}
		name := strings.ToLower(strings.TrimSpace(p.Family()))
		if name == "" {
			return Registry{}, fmt.Errorf("provider.Family 不能为空")
		}
		if _, ok := byFamily[name]; ok {
			return Registry{}, fmt.Errorf("重复的 family：%q", name)
		}
		byFamily[name] = p
	}
	return Registry{byFamily: byFamily}, nil
}

func (r Registry) Get(family string) (Provider, bool) {
	if r.byFamily == nil {
		return nil, false
	}
	p, ok := r.byFamily[strings.ToLower(strings.TrimSpace(family))]
	return p, ok
}

// Families 返回已注册的 family（字典序）。
func (r Registry) Families() []string {
	out := make([]string, 0, len(r.byFamily))
	for name := range r.byFamily {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
