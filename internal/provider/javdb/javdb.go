// Package javdb 实现 JavDB 这一 catalog family。
//
// 与 javlibrary 不同，JavDB 的搜索总是返回列表页，没有 "直接落到作品页" 的回退路径。
package javdb

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avmeta/internal/code"
	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/fetch"
	"github.com/John-Robertt/avmeta/internal/locator"
	"github.com/John-Robertt/avmeta/internal/provider"
	"github.com/John-Robertt/avmeta/internal/rank"
)

const Family = "javdb"

type Options struct {
	NamingStyle      domain.NamingStyle
	StrictImageKinds bool
}

// Provider 实现 JavDB 的搜索、详情页解析与图片收集。
//
// 约束：
// - 详情页 URL 只能从搜索列表获得（不能直接按编号拼）
// - 抓取的重试/限速由 fetcher 负责
type Provider struct {
	fetcher  fetch.Fetcher
	variants []domain.SiteVariant
	opts     Options
	log      *slog.Logger
}

func New(f fetch.Fetcher, variants []domain.SiteVariant, opts Options, log *slog.Logger) (*Provider, error) {
	if f == nil {
		return nil, errors.New("fetcher 不能为空")
	}
	if len(variants) == 0 {
		return nil, errors.New("至少需要一个 site variant")
	}
	if log == nil {
		log = slog.Default()
	}
	return &Provider{
		fetcher:  f,
		variants: append([]domain.SiteVariant(nil), variants...),
		opts:     opts,
		log:      log.With("family", Family),
	}, nil
}

func (p *Provider) Family() string { return Family }

// Search 形如 https://javdb.com/search?f=all&q=<CODE>。
func (p *Provider) Search(ctx context.Context, q domain.Query) ([]domain.SearchCandidate, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil
	}
	effective, tok, hasTok := code.ParseQuery(q.Text)

	var lastErr error
	for _, v := range p.variants {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		searchURL := v.SearchURL + url.QueryEscape(effective)
		doc, err := p.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			p.log.Debug("variant fetch failed", "variant", v.Name, "url", searchURL, "error", err)
			continue
		}
		if cands := parseList(doc, v, tok, hasTok); len(cands) > 0 {
			return cands, nil
		}
	}
	return nil, lastErr
}

func parseList(doc *goquery.Document, v domain.SiteVariant, tok domain.Token, hasTok bool) []domain.SearchCandidate {
	var out []domain.SearchCandidate
	doc.Find("div.movie-list div.item a.box").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		pageURL := provider.ResolveURL(v.BaseURL+"/", href)
		if pageURL == "" {
			return
		}
		javID := provider.Text(s.Find("div.video-title strong"))
		label := provider.Text(s.Find("div.video-title"))
		if label == "" {
			label = provider.NormSpace(s.AttrOr("title", ""))
		}
		src, _ := s.Find("div.cover img").First().Attr("src")

		c := domain.SearchCandidate{
			Label:     label,
			PosterURL: provider.ResolveURL(v.BaseURL+"/", src),
			ID:        locator.Encode(pageURL),
		}
		if hasTok {
			score := rank.Score(tok.String(), javID)
			c.Score = &score
		}
		out = append(out, c)
	})
	return out
}

func (p *Provider) Resolve(ctx context.Context, id string) (domain.MetadataRecord, error) {
	pageURL, err := locator.Decode(id)
	if err != nil {
		return domain.MetadataRecord{}, err
	}
	doc, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return domain.MetadataRecord{}, err
	}
	return Extract(doc, pageURL, p.opts), nil
}

func (p *Provider) Images(ctx context.Context, id string) ([]domain.ImageRecord, error) {
	pageURL, err := locator.Decode(id)
	if err != nil {
		return nil, err
	}
	doc, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return CollectImages(doc, pageURL, p.opts), nil
}

// Extract 把 JavDB 详情页解析为 MetadataRecord。
func Extract(doc *goquery.Document, pageURL string, opts Options) domain.MetadataRecord {
	rec := domain.MetadataRecord{ExternalID: pageURL}

	// JavDB 的标题有时会显示中文翻译（current-title），同时提供隐藏的 origin-title。
	// 优先使用原标题，不存在时回退 current-title。
	//
	// goquery 不执行 CSS，因此即使 origin-title 是 display:none 也能读到文本。
	title := provider.Text(doc.Find("h2.title span.origin-title"))
	if title == "" {
		title = provider.Text(doc.Find("h2.title strong.current-title"))
	}

	var javID string
	doc.Find("nav.movie-panel-info .panel-block").Each(func(_ int, s *goquery.Selection) {
		value := s.Find("span.value")
		switch normHeader(s.Find("strong").First().Text()) {
		case "番號", "番号", "ID":
			javID = provider.Text(value)
		case "日期", "Date", "Released Date":
			if t, err := time.Parse("2006-01-02", provider.Text(value)); err == nil {
				rec.PremiereDate = &t
			}
		case "時長", "时长", "Length", "Duration":
			rec.RuntimeMinutes = provider.FirstInt(value.First().Text())
		case "片商", "Maker", "Studio":
			rec.Studio = provider.Text(value.Find("a"))
		case "發行", "发行", "Publisher":
			rec.Label = provider.Text(value.Find("a"))
		case "導演", "导演", "Director":
			rec.Director = provider.Text(value.Find("a"))
		case "演員", "演员", "Actor(s)", "Actors", "Actress", "Cast":
			var names []string
			value.Find("a").Each(func(_ int, a *goquery.Selection) {
				names = append(names, provider.NormSpace(a.Text()))
			})
			for _, n := range provider.NormList(names) {
				rec.Cast = append(rec.Cast, domain.Person{Name: opts.NamingStyle.Apply(n)})
			}
		case "類別", "类别", "Tags", "Tag", "Genre", "Genres":
			value.Find("a").Each(func(_ int, a *goquery.Selection) {
				rec.AddGenre(a.Text())
			})
		}
	})

	// 没有番号面板时，取标题前的 <strong>（形如 "ABP-123 "）。
	if javID == "" {
		javID = provider.Text(doc.Find("h2.title strong").Not(".current-title"))
	}
	rec.OriginalTitle = strings.ToUpper(javID)
	rec.Title = provider.StripCode(title, javID)
	return rec
}

// CollectImages 收集封面与样品图；样品图的 Primary/Backdrop 规则与 javlibrary 一致。
func CollectImages(doc *goquery.Document, pageURL string, opts Options) []domain.ImageRecord {
	var out []domain.ImageRecord

	cover := ""
	if href, ok := doc.Find(".column-video-cover a[data-fancybox='gallery']").First().Attr("href"); ok {
		cover = href
	}
	if strings.TrimSpace(cover) == "" {
		cover, _ = doc.Find(".column-video-cover img.video-cover").First().Attr("src")
	}
	if u := provider.ResolveURL(pageURL, cover); u != "" {
		out = append(out, domain.ImageRecord{URL: u, Kind: domain.ImagePrimary})
	}

	doc.Find(".preview-images a.tile-item").Each(func(_ int, s *goquery.Selection) {
		u := provider.ResolveURL(pageURL, s.AttrOr("href", ""))
		// 预告片链接也在同一列表里。
		if u == "" || strings.HasPrefix(s.AttrOr("href", ""), "#") {
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

func normHeader(s string) string {
	s = provider.NormSpace(s)
	s = strings.TrimSuffix(s, ":")
	s = strings.TrimSuffix(s, "：")
	return strings.TrimSpace(s)
}
