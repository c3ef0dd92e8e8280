package javlibrary

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/fetch"
)

// fakeFetcher 按 URL 返回预置页面，并记录请求顺序。
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string]error
	calls []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{pages: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	f.mu.Lock()
	f.calls = append(f.calls, rawURL)
	body, ok := f.pages[rawURL]
	err := f.errs[rawURL]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &fetch.Error{URL: rawURL, Err: &fetch.HTTPStatusError{URL: rawURL, StatusCode: 404}}
	}
	doc, perr := goquery.NewDocumentFromReader(strings.NewReader(body))
	if perr != nil {
		return nil, perr
	}
	doc.Url, _ = url.Parse(rawURL)
	return doc, nil
}

func (f *fakeFetcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// blockingFetcher 让第一次请求阻塞到 ctx 取消；之后的请求交给 then（为 nil 时继续阻塞）。
type blockingFetcher struct {
	started chan struct{}
	then    fetch.Fetcher

	mu      sync.Mutex
	blocked bool
}

func (b *blockingFetcher) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	b.mu.Lock()
	first := !b.blocked
	b.blocked = true
	b.mu.Unlock()

	if !first && b.then != nil {
		return b.then.Fetch(ctx, rawURL)
	}
	if first {
		close(b.started)
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

// blockOn 只让 target 这个 URL 阻塞到 ctx 取消，其余交给 fakeFetcher。
type blockOn struct {
	*fakeFetcher
	target  string
	started chan struct{}
}

func (b *blockOn) Fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if rawURL != b.target {
		return b.fakeFetcher.Fetch(ctx, rawURL)
	}
	close(b.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

var errBoom = errors.New("connection reset")

const (
	enSearch = "https://www.javlibrary.com/en/vl_searchbyid.php?keyword="
	jaSearch = "https://www.javlibrary.com/ja/vl_searchbyid.php?keyword="
	itemEN   = "https://www.javlibrary.com/en/?v=javli7ab"
)

func testVariants() []domain.SiteVariant {
	return []domain.SiteVariant{
		{Name: "en", BaseURL: "https://www.javlibrary.com", SearchURL: enSearch, ItemPath: "/en/?v="},
		{Name: "ja", BaseURL: "https://www.javlibrary.com", SearchURL: jaSearch, ItemPath: "/ja/?v="},
	}
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(b)
}

func fixtureDoc(t *testing.T, name, pageURL string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fixture(t, name)))
	require.NoError(t, err)
	doc.Url, _ = url.Parse(pageURL)
	return doc
}

func newTestProvider(t *testing.T, f fetch.Fetcher, opts Options) *Provider {
	t.Helper()
	p, err := New(f, testVariants(), opts, nil)
	require.NoError(t, err)
	return p
}
