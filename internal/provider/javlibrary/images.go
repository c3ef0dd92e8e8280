package javlibrary

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/provider"
)

// CollectImages 收集详情页的封面与预览图。
//
// - 封面 #video_jacket_img：一条 Primary
// - 每张预览图：小图标记 "-" 换成大图标记 "jp-"，同一 URL 输出 Primary 与 Backdrop 两条
// - opts.StrictImageKinds：预览图改为一条 Primary|Backdrop
func CollectImages(doc *goquery.Document, pageURL string, opts Options) []domain.ImageRecord {
	var out []domain.ImageRecord

	if src, ok := doc.Find("img#video_jacket_img").First().Attr("src"); ok {
		if u := provider.ResolveURL(pageURL, src); u != "" {
			out = append(out, domain.ImageRecord{URL: u, Kind: domain.ImagePrimary})
		}
	}

	doc.Find("div.previewthumbs > img").Each(func(_ int, s *goquery.Selection) {
		src, _ := s.Attr("src")
		u := provider.ResolveURL(pageURL, largeThumb(src))
		if u == "" {
			return
		}
		if opts.StrictImageKinds {
			out = append(out, domain.ImageRecord{URL: u, Kind: domain.ImagePrimary | domain.ImageBackdrop})
			return
		}
		out = append(out,
			domain.ImageRecord{URL: u, Kind: domain.ImagePrimary},
			domain.ImageRecord{URL: u, Kind: domain.ImageBackdrop},
		)
	})

	return out
}

// largeThumb 只改写文件名部分：abc00123-1.jpg -> abc00123jp-1.jpg。
func largeThumb(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	cut := strings.LastIndex(src, "/") + 1
	// 查询串里的 "-" 不属于文件名。
	name, query := src[cut:], ""
	if q := strings.IndexByte(name, '?'); q >= 0 {
		name, query = name[:q], name[q:]
	}
	return src[:cut] + strings.ReplaceAll(name, "-", "jp-") + query
}

// posterURL 把列表缩略图（ps.）换成大图（pl.），大小写不敏感。
func posterURL(base, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(src); {
		if i+3 <= len(src) && strings.EqualFold(src[i:i+3], "ps.") {
			b.WriteString("pl.")
			i += 3
			continue
		}
		b.WriteByte(src[i])
		i++
	}
	return provider.ResolveURL(base, b.String())
}

// itemURL 拼出列表项对应的详情页 URL。
func itemURL(v domain.SiteVariant, rawID string) string {
	return strings.TrimRight(v.BaseURL, "/") + v.ItemPath + url.QueryEscape(strings.TrimSpace(rawID))
}
