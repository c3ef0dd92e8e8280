// Package javlibrary 实现 JAVLibrary 这一 catalog family：
// 按 variant 顺序搜索、解析详情页、收集图片。
package javlibrary

import (
	"context"
	"errors"
	"log/slog"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/fetch"
	"github.com/John-Robertt/avmeta/internal/locator"
)

// Family 是注册表中的 family 名。
const Family = "javlibrary"

// Options 是注入的策略开关（来自配置，不在包内读取任何全局状态）。
type Options struct {
	NamingStyle domain.NamingStyle
	// StrictImageKinds 为 true 时，每张预览图只输出一条 Primary|Backdrop 记录。
	StrictImageKinds bool
}

// Provider 是无状态的：除注入的 fetcher 外不持有可变数据，可被并发调用。
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

// Resolve 解码 id，抓取详情页并抽取元数据。
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

// Images 解码 id，抓取详情页并收集图片。
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
