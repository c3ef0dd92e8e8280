package domain

import (
	"fmt"
	"strings"
)

// ImageKind 是图片用途的位集合。
// 默认模式下每条 ImageRecord 只带一个 kind；strict 模式下样品图用 Primary|Backdrop 合并成一条。
type ImageKind uint8

const (
	ImagePrimary ImageKind = 1 << iota
	ImageBackdrop
)

func (k ImageKind) Has(x ImageKind) bool { return k&x == x && x != 0 }

func (k ImageKind) String() string {
	parts := make([]string, 0, 2)
	if k.Has(ImagePrimary) {
		parts = append(parts, "primary")
	}
	if k.Has(ImageBackdrop) {
		parts = append(parts, "backdrop")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ",")
}

func (k ImageKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *ImageKind) UnmarshalText(b []byte) error {
	var out ImageKind
	for _, p := range strings.Split(string(b), ",") {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "primary":
			out |= ImagePrimary
		case "backdrop":
			out |= ImageBackdrop
		case "", "none":
		default:
			return fmt.Errorf("未知 image kind：%q", p)
		}
	}
	*k = out
	return nil
}

// ImageRecord 是一张远端图片。
// 同一 URL 只允许因为 "样品图双标签" 规则出现两次（一次 Primary，一次 Backdrop）。
type ImageRecord struct {
	URL  string    `json:"url"`
	Kind ImageKind `json:"kind"`
}
