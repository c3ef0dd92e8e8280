package provider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/fetch"
	"github.com/John-Robertt/avmeta/internal/locator"
	"github.com/John-Robertt/avmeta/internal/metrics"
	"github.com/John-Robertt/avmeta/internal/sites"
)

// ErrUnknownFamily 表示请求的 family 没有注册（或 URL 不属于任何已知站点）。
var ErrUnknownFamily = errors.New("unknown catalog family")

// ErrFamilyMismatch 表示 id 指向的站点属于另一个 family。
var ErrFamilyMismatch = errors.New("id belongs to another catalog family")

// Service 是宿主（CLI/HTTP/批量扫描）唯一依赖的入口：按 family 选择能力并统一记录指标与日志。
type Service struct {
	reg     Registry
	sites   sites.Registry
	metrics *metrics.Metrics
	log     *slog.Logger
}

func NewService(reg Registry, s sites.Registry, m *metrics.Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{reg: reg, sites: s, metrics: m, log: log}
}

// Families 返回可用的 family 列表。
func (s *Service) Families() []string { return s.reg.Families() }

// Search 在 family 的各个 variant 上搜索 text，返回按发现顺序排列的候选。
// 空白 text 直接返回空结果。
func (s *Service) Search(ctx context.Context, family, text string, hintDate *time.Time) ([]domain.SearchCandidate, error) {
	p, err := s.lookup(family)
	if err != nil {
		return nil, err
	}
	family = p.Family()

	started := time.Now()
	cands, err := p.Search(ctx, domain.Query{Text: text, HintDate: hintDate})
	out := Outcome(err)
	if err == nil && len(cands) == 0 {
		out = "empty"
	}
	s.metrics.ObserveSearch(family, out, len(cands))
	s.log.Debug("search done", "family", family, "query", text, "candidates", len(cands), "outcome", out, "elapsed", time.Since(started))

	if err != nil {
		return nil, wrap(family, "search", err)
	}
	return cands, nil
}

// Resolve 抓取 id 对应的详情页并抽取元数据。
func (s *Service) Resolve(ctx context.Context, family, id string) (domain.MetadataRecord, error) {
	p, err := s.lookup(family)
	if err != nil {
		return domain.MetadataRecord{}, err
	}
	// host 不属于任何已知站点时交给 provider 自己处理（例如配置里临时加的镜像）。
	if owner, err := s.FamilyForID(id); err == nil && owner != p.Family() {
		return domain.MetadataRecord{}, fmt.Errorf("%w: %s id passed to %s", ErrFamilyMismatch, owner, p.Family())
	}
	rec, err := p.Resolve(ctx, id)
	s.metrics.ObserveResolve(p.Family(), "resolve", Outcome(err))
	if err != nil {
		return domain.MetadataRecord{}, wrap(p.Family(), "resolve", err)
	}
	return rec, nil
}

// Images 收集 id 对应详情页的图片；family 由解码后 URL 的 host 决定。
func (s *Service) Images(ctx context.Context, id string) ([]domain.ImageRecord, error) {
	family, err := s.FamilyForID(id)
	if err != nil {
		return nil, err
	}
	p, err := s.lookup(family)
	if err != nil {
		return nil, err
	}
	imgs, err := p.Images(ctx, id)
	s.metrics.ObserveResolve(p.Family(), "images", Outcome(err))
	if err != nil {
		return nil, wrap(p.Family(), "images", err)
	}
	return imgs, nil
}

// FamilyForID 按 id 解码后 URL 的 host 找到所属 family。
func (s *Service) FamilyForID(id string) (string, error) {
	pageURL, err := locator.Decode(id)
	if err != nil {
		return "", err
	}
	family, ok := s.sites.FamilyForURL(pageURL)
	if !ok {
		return "", fmt.Errorf("%w: no family serves %s", ErrUnknownFamily, pageURL)
	}
	return family, nil
}

func (s *Service) lookup(family string) (Provider, error) {
	p, ok := s.reg.Get(family)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, strings.TrimSpace(family))
	}
	return p, nil
}

// wrap 给错误加上 family/stage；ctx 取消与输入错误原样返回。
func wrap(family, stage string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	if errors.Is(err, locator.ErrInvalid) {
		return err
	}
	return &Error{Family: family, Stage: stage, Err: err}
}

// Outcome 把错误归类为指标/报告使用的短标签。
func Outcome(err error) string {
	var be *fetch.BlockedError
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	case errors.As(err, &be):
		return "blocked"
	case errors.Is(err, locator.ErrInvalid):
		return "invalid"
	default:
		return "error"
	}
}
