package javlibrary

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avmeta/internal/code"
	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/locator"
	"github.com/John-Robertt/avmeta/internal/provider"
	"github.com/John-Robertt/avmeta/internal/rank"
)

// Search 按 variant 声明顺序搜索，第一个产出候选的 variant 生效，其余不再请求。
func (p *Provider) Search(ctx context.Context, q domain.Query) ([]domain.SearchCandidate, error) {
	cands, _, err := p.SearchTrace(ctx, q)
	return cands, err
}

// SearchTrace 与 Search 相同，但额外返回每个 variant 的尝试记录。
//
// 规则：
// - 空白查询：返回空结果，不发起请求
// - variant 抓取失败：记录并尝试下一个；全部没有候选时返回最后一次抓取错误
// - ctx 取消：立即返回 ctx.Err()，不返回部分结果
func (p *Provider) SearchTrace(ctx context.Context, q domain.Query) ([]domain.SearchCandidate, []provider.Attempt, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, nil, nil
	}

	// token 只推导一次，所有 variant 共用。
	effective, tok, hasTok := code.ParseQuery(q.Text)

	var (
		attempts []provider.Attempt
		lastErr  error
	)
	for _, v := range p.variants {
		if err := ctx.Err(); err != nil {
			return nil, attempts, err
		}

		searchURL := v.SearchURL + url.QueryEscape(effective)
		doc, err := p.fetcher.Fetch(ctx, searchURL)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, attempts, ctxErr
			}
			lastErr = err
			attempts = append(attempts, provider.Attempt{Variant: v.Name, Stage: "fetch", URL: searchURL, Err: err})
			p.log.Debug("variant fetch failed", "variant", v.Name, "url", searchURL, "error", err)
			continue
		}

		var (
			cands []domain.SearchCandidate
			stage string
		)
		if items := doc.Find("div.videos div.video"); items.Length() > 0 {
			stage = "list"
			cands = listCandidates(items, v, tok, hasTok)
		} else {
			stage = "fallback"
			var pageURL string
			cands, pageURL, err = p.fallback(ctx, doc, v)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return nil, attempts, ctxErr
				}
				lastErr = err
				attempts = append(attempts, provider.Attempt{Variant: v.Name, Stage: "fetch", URL: pageURL, Err: err})
				p.log.Debug("fallback fetch failed", "variant", v.Name, "url", pageURL, "error", err)
				continue
			}
		}

		if len(cands) > 0 {
			attempts = append(attempts, provider.Attempt{Variant: v.Name, Stage: stage, URL: searchURL})
			p.log.Debug("variant matched", "variant", v.Name, "stage", stage, "candidates", len(cands))
			return cands, attempts, nil
		}
		attempts = append(attempts, provider.Attempt{Variant: v.Name, Stage: "empty", URL: searchURL})
	}

	if lastErr != nil {
		return nil, attempts, lastErr
	}
	return nil, attempts, nil
}

func listCandidates(items *goquery.Selection, v domain.SiteVariant, tok domain.Token, hasTok bool) []domain.SearchCandidate {
	out := make([]domain.SearchCandidate, 0, items.Length())
	items.Each(func(_ int, s *goquery.Selection) {
		javID := provider.Text(s.Find("div.id"))
		title := provider.Text(s.Find("div.title"))
		rawID, _ := s.Find("a").First().Attr("id")
		src, _ := s.Find("img").First().Attr("src")

		c := domain.SearchCandidate{
			Label:     strings.TrimSpace(javID + " " + title),
			PosterURL: posterURL(v.BaseURL+"/", src),
			ID:        locator.Encode(itemURL(v, rawID)),
		}
		if hasTok {
			score := rank.Score(tok.String(), javID)
			c.Score = &score
		}
		out = append(out, c)
	})
	return out
}

// fallback 处理 "搜索直接落到单个作品页" 的情况：
// 取 #video_title 的链接作为详情页，抓取后构造唯一一个候选（不打分）。
func (p *Provider) fallback(ctx context.Context, doc *goquery.Document, v domain.SiteVariant) ([]domain.SearchCandidate, string, error) {
	href, ok := doc.Find("#video_title a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return nil, "", nil
	}

	base := v.BaseURL + "/"
	if doc.Url != nil {
		base = doc.Url.String()
	}
	pageURL := provider.ResolveURL(base, href)
	if _, err := locator.Decode(locator.Encode(pageURL)); err != nil {
		return nil, "", nil
	}

	item, err := p.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, pageURL, err
	}

	rec := Extract(item, pageURL, p.opts)
	c := domain.SearchCandidate{
		Label: strings.TrimSpace(rec.OriginalTitle + " " + rec.Title),
		ID:    locator.Encode(pageURL),
	}
	for _, img := range CollectImages(item, pageURL, p.opts) {
		if img.Kind.Has(domain.ImagePrimary) {
			c.PosterURL = img.URL
			break
		}
	}
	return []domain.SearchCandidate{c}, pageURL, nil
}
