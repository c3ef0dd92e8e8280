package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/John-Robertt/avmeta/internal/app"
	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/infra/fsx"
	"github.com/John-Robertt/avmeta/internal/server"
)

type SearchCmd struct {
	Query []string `arg:"" help:"查询文本，例如 ABP 123（第二段是数字时会按编号打分）"`
	Date  string   `help:"发行日期提示（YYYY-MM-DD）"`
}

func (c *SearchCmd) Run(g *Globals, e *env) error {
	var hint *time.Time
	if c.Date != "" {
		t, err := time.Parse("2006-01-02", c.Date)
		if err != nil {
			return fmt.Errorf("--date 必须是 YYYY-MM-DD：%q", c.Date)
		}
		hint = &t
	}

	rt, err := setup(g.cliArgs())
	if err != nil {
		return err
	}
	cands, err := rt.svc.Search(e.ctx, rt.eff.Family, strings.Join(c.Query, " "), hint)
	if err != nil {
		return err
	}
	return renderCandidates(e.stdout, e.tty, cands)
}

type ResolveCmd struct {
	ID string `arg:"" help:"search 返回的候选 ID（未指定 -f 时按 ID 的站点选择 family）"`
}

func (c *ResolveCmd) Run(g *Globals, e *env) error {
	rt, err := setup(g.cliArgs())
	if err != nil {
		return err
	}
	rec, err := rt.svc.Resolve(e.ctx, resolveFamily(g, rt, c.ID), c.ID)
	if err != nil {
		return err
	}
	return renderRecord(e.stdout, e.tty, rec)
}

// resolveFamily 在没有 -f 时按 id 的 host 选择 family；host 未登记时用配置里的 family。
func resolveFamily(g *Globals, rt *runtime, id string) string {
	if g.Family != "" {
		return rt.eff.Family
	}
	if fam, err := rt.svc.FamilyForID(id); err == nil {
		return fam
	}
	return rt.eff.Family
}

type ImagesCmd struct {
	ID string `arg:"" help:"search 返回的候选 ID"`
}

func (c *ImagesCmd) Run(g *Globals, e *env) error {
	rt, err := setup(g.cliArgs())
	if err != nil {
		return err
	}
	imgs, err := rt.svc.Images(e.ctx, c.ID)
	if err != nil {
		return err
	}
	return renderImages(e.stdout, e.tty, imgs)
}

type ScanCmd struct {
	Path        string   `arg:"" optional:"" default:"." help:"媒体目录"`
	Concurrency int      `short:"j" help:"并发搜索数（1-32，默认读配置）"`
	Exclude     []string `help:"额外排除的目录（相对扫描目录）"`
	Report      string   `help:"同时把 JSON 报告原子写入该文件"`
}

func (c *ScanCmd) Run(g *Globals, e *env) error {
	args := g.cliArgs()
	if c.Concurrency > 0 {
		args.Concurrency, args.ConcurrencySet = c.Concurrency, true
	}
	rt, err := setup(args)
	if err != nil {
		return err
	}

	root, err := filepath.Abs(c.Path)
	if err != nil {
		return err
	}
	opts := app.BatchOptions{
		Root:        root,
		Family:      rt.eff.Family,
		Concurrency: rt.eff.Concurrency,
		ExcludeDirs: append(append([]string(nil), rt.eff.ExcludeDirs...), c.Exclude...),
	}

	var obs app.Observer
	if e.tty {
		obs = newProgressUI(e.stderr)
	}

	rr, err := app.Scan(e.ctx, opts, rt.svc, obs)
	if err != nil {
		return err
	}
	if c.Report != "" {
		if err := fsx.WriteJSON(c.Report, rr); err != nil {
			return err
		}
		rt.log.Info("scan report written", "path", c.Report)
	}
	if err := renderScanReport(e.stdout, e.tty, rr); err != nil {
		return err
	}
	if rr.Summary.Failed > 0 || rr.Summary.Unmatched > 0 {
		return errPartial
	}
	return nil
}

type ServeCmd struct {
	Listen string `short:"l" help:"监听地址（默认读配置，最终默认 127.0.0.1:8089）"`
}

func (c *ServeCmd) Run(g *Globals, e *env) error {
	args := g.cliArgs()
	if c.Listen != "" {
		args.Listen, args.ListenSet = c.Listen, true
	}
	rt, err := setup(args)
	if err != nil {
		return err
	}
	h := server.NewRouter(rt.svc, server.Options{
		DefaultFamily: rt.eff.Family,
		Gatherer:      rt.promReg,
		Logger:        rt.log,
	})
	return server.Serve(e.ctx, rt.eff.Listen, h, rt.log)
}

// hasScore 用于决定表格里是否显示 Score 列。
func hasScore(cands []domain.SearchCandidate) bool {
	for _, c := range cands {
		if c.Score != nil {
			return true
		}
	}
	return false
}
