package domain

// SiteVariant 是某个 catalog family 下的一个子站点配置（只读，由 sites 注册表提供）。
//
// - SearchURL：列表搜索 URL 前缀，直接拼接转义后的查询文本
// - ItemPath：详情页路径前缀，拼接列表项的原始 id（例如 "/en/?v="）
type SiteVariant struct {
	Name      string `yaml:"name" json:"name" mapstructure:"name"`
	BaseURL   string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`
	SearchURL string `yaml:"search_url" json:"search_url" mapstructure:"search_url"`
	ItemPath  string `yaml:"item_path" json:"item_path" mapstructure:"item_path"`
}
