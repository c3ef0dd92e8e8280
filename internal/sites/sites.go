// Package sites 是 catalog family 的只读注册表：family -> 有序的 SiteVariant 列表。
package sites

import (
	_ "embed"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/John-Robertt/avmeta/internal/domain"
)

//go:embed sites.yaml
var builtin []byte

// Registry 在进程生命周期内视为静态；构造后不再修改。
type Registry struct {
	families map[string][]domain.SiteVariant
}

type file struct {
	Families map[string][]domain.SiteVariant `yaml:"families"`
}

// Default 返回内置注册表。
func Default() Registry {
	r, err := Parse(builtin)
	if err != nil {
		panic(fmt.Sprintf("sites: 内置注册表无效：%v", err))
	}
	return r
}

// Parse 从 YAML 解析注册表并校验每个 variant。
func Parse(b []byte) (Registry, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Registry{}, err
	}
	return New(f.Families)
}

// New 用给定的 family 表构造注册表（family 名统一小写）。
func New(families map[string][]domain.SiteVariant) (Registry, error) {
	out := make(map[string][]domain.SiteVariant, len(families))
	for name, vs := range families {
		key := normFamily(name)
		if key == "" {
			return Registry{}, fmt.Errorf("family 名不能为空")
		}
		if _, ok := out[key]; ok {
			return Registry{}, fmt.Errorf("重复的 family：%q", key)
		}
		if len(vs) == 0 {
			return Registry{}, fmt.Errorf("family %q 至少需要一个 variant", key)
		}
		cp := make([]domain.SiteVariant, len(vs))
		for i, v := range vs {
			if err := validate(v); err != nil {
				return Registry{}, fmt.Errorf("family %q variant[%d]：%w", key, i, err)
			}
			v.BaseURL = strings.TrimRight(strings.TrimSpace(v.BaseURL), "/")
			cp[i] = v
		}
		out[key] = cp
	}
	return Registry{families: out}, nil
}

// Override 返回一个新注册表：overrides 中出现的 family 整体替换，其余保持不变。
func (r Registry) Override(overrides map[string][]domain.SiteVariant) (Registry, error) {
	merged := make(map[string][]domain.SiteVariant, len(r.families)+len(overrides))
	for k, v := range r.families {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[normFamily(k)] = v
	}
	return New(merged)
}

// Variants 返回 family 的 variant 列表（副本，调用方可随意修改）。
func (r Registry) Variants(family string) ([]domain.SiteVariant, error) {
	vs, ok := r.families[normFamily(family)]
	if !ok {
		return nil, fmt.Errorf("未知 family：%q", family)
	}
	return append([]domain.SiteVariant(nil), vs...), nil
}

// Families 返回所有 family 名（排序，保证稳定）。
func (r Registry) Families() []string {
	out := make([]string, 0, len(r.families))
	for k := range r.families {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// FamilyForURL 按 host 反查 URL 所属的 family（用于只有 opaque ID 的图片请求）。
func (r Registry) FamilyForURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Host)
	for _, name := range r.Families() {
		for _, v := range r.families[name] {
			bu, err := url.Parse(v.BaseURL)
			if err == nil && strings.ToLower(bu.Host) == host {
				return name, true
			}
		}
	}
	return "", false
}

func validate(v domain.SiteVariant) error {
	for _, f := range []struct{ name, val string }{
		{"base_url", v.BaseURL},
		{"search_url", v.SearchURL},
	} {
		u, err := url.Parse(strings.TrimSpace(f.val))
		if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("%s 必须是 http/https 绝对地址：%q", f.name, f.val)
		}
	}
	return nil
}

func normFamily(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
