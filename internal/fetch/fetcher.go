// Package fetch 是 "给定 URL，返回可查询文档树" 的抓取层。
//
// 约束：
// - 支持 ctx 取消：取消时立即返回 ctx.Err()，不包装成 *Error
// - 网络/状态码/拦截页失败统一返回 *Error（可用 errors.As 取出具体原因）
// - 重试、限速、UA、代理都在这一层完成，上层只管定位页面与解析
package fetch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/John-Robertt/avmeta/internal/metrics"
)

const maxBodyBytes = 8 << 20

// Fetcher 抓取并解析一个页面。
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Options 描述 HTTPFetcher 的网络策略。
type Options struct {
	ProxyURL      string
	Timeout       time.Duration
	RetryMax      int
	RatePerSecond float64 // <=0 表示不限速
	Burst         int
}

// HTTPFetcher 是基于 net/http 的 Fetcher 实现，可被多个请求并发使用。
type HTTPFetcher struct {
	client   *http.Client
	limiters *hostLimiters
	metrics  *metrics.Metrics
	log      *slog.Logger
}

// New 按 Options 构造 HTTPFetcher。m 与 log 可为 nil。
func New(opts Options, m *metrics.Metrics, log *slog.Logger) (*HTTPFetcher, error) {
	c, err := NewClient(opts.ProxyURL, opts.Timeout, opts.RetryMax)
	if err != nil {
		return nil, err
	}
	return NewWithClient(c, opts, m, log), nil
}

// NewWithClient 使用外部提供的 client（测试里通常是 httptest 的 client）。
func NewWithClient(c *http.Client, opts Options, m *metrics.Metrics, log *slog.Logger) *HTTPFetcher {
	if log == nil {
		log = slog.Default()
	}
	return &HTTPFetcher{
		client:   c,
		limiters: newHostLimiters(opts.RatePerSecond, opts.Burst),
		metrics:  m,
		log:      log,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, &Error{URL: rawURL, Err: errors.New("invalid url")}
	}
	if err := f.limiters.wait(ctx, u.Host); err != nil {
		return nil, err
	}

	started := time.Now()
	doc, err := f.do(ctx, u)
	outcome := "ok"
	switch {
	case ctx.Err() != nil:
		outcome = "cancelled"
		err = ctx.Err()
		doc = nil
	case err != nil:
		outcome = "error"
		var be *BlockedError
		if errors.As(err, &be) {
			outcome = "blocked"
		}
		f.log.Warn("fetch failed", "url", rawURL, "error", err)
	}
	f.metrics.ObserveFetch(u.Host, outcome, time.Since(started))
	return doc, err
}

func (f *HTTPFetcher) do(ctx context.Context, u *url.URL) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}

	// 先识别拦截页：Cloudflare 的挑战页常以 403/503 返回，但含义与普通状态码不同。
	if reason := blockedReason(b); reason != "" {
		return nil, &Error{URL: u.String(), Err: &BlockedError{URL: u.String(), Reason: reason}}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{URL: u.String(), Err: &HTTPStatusError{
			URL:        u.String(),
			StatusCode: resp.StatusCode,
			Location:   resp.Header.Get("Location"),
		}}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, &Error{URL: u.String(), Err: err}
	}
	// 记录最终地址（可能经过重定向），解析相对链接时以它为准。
	doc.Url = resp.Request.URL
	return doc, nil
}

func blockedReason(body []byte) string {
	switch {
	case bytes.Contains(body, []byte("challenge-platform")),
		bytes.Contains(body, []byte("<title>Just a moment...</title>")):
		return "cloudflare-challenge"
	case bytes.Contains(body, []byte(`id="ageVerify"`)):
		return "age-verify"
	default:
		return ""
	}
}
