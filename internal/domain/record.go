package domain

import (
	"strings"
	"time"
)

// MetadataRecord 是 Resolve 得到的结构化元数据。
//
// 约束：
// - ExternalID 是解码后的详情页 URL（不是 opaque ID）
// - Genres 是有序集合：保持首次出现的顺序，不允许重复
// - 字段缺失允许为空（零值），不视为整体失败
type MetadataRecord struct {
	ExternalID    string     `json:"external_id"`
	OriginalTitle string     `json:"original_title"`
	Title         string     `json:"title"`
	Studio        string     `json:"studio,omitempty"`
	PremiereDate  *time.Time `json:"premiere_date,omitempty"`
	Genres        []string   `json:"genres"`
	Cast          []Person   `json:"cast"`

	Label          string `json:"label,omitempty"`
	Director       string `json:"director,omitempty"`
	RuntimeMinutes int    `json:"runtime_minutes,omitempty"`
}

type Person struct {
	Name string `json:"name"`
}

// AddGenre 追加一个 genre；空白或重复的直接忽略。
func (r *MetadataRecord) AddGenre(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, g := range r.Genres {
		if g == name {
			return
		}
	}
	r.Genres = append(r.Genres, name)
}
