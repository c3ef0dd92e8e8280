package javlibrary

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/provider"
)

const (
	dateLayout  = "2006-01-02"
	placeholder = "----"
)

// Extract 把详情页解析为 MetadataRecord。
//
// 单个字段缺失或格式不对只会让该字段为空，不会让整条记录失败。
func Extract(doc *goquery.Document, pageURL string, opts Options) domain.MetadataRecord {
	rec := domain.MetadataRecord{ExternalID: pageURL}

	code := provider.Text(doc.Find("#video_id td.text"))
	rec.OriginalTitle = strings.ToUpper(code)
	rec.Title = provider.StripCode(provider.Text(doc.Find("#video_title h3")), code)
	rec.Studio = provider.Text(doc.Find("#video_maker td.text"))
	rec.Label = provider.Text(doc.Find("#video_label td.text"))

	if d := provider.Text(doc.Find("#video_director td.text")); d != placeholder {
		rec.Director = d
	}
	if t, err := time.Parse(dateLayout, provider.Text(doc.Find("#video_date td.text"))); err == nil {
		rec.PremiereDate = &t
	}
	rec.RuntimeMinutes = provider.FirstInt(doc.Find("#video_length span.text").First().Text())

	doc.Find("#video_genres td.text a").Each(func(_ int, s *goquery.Selection) {
		rec.AddGenre(s.Text())
	})

	doc.Find("#video_cast td.text span.cast a").Each(func(_ int, s *goquery.Selection) {
		name := provider.NormSpace(s.Text())
		if name == "" || name == placeholder {
			return
		}
		rec.Cast = append(rec.Cast, domain.Person{Name: opts.NamingStyle.Apply(name)})
	})

	return rec
}
