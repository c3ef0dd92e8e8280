package main

import (
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/John-Robertt/avmeta/internal/app"
	"github.com/John-Robertt/avmeta/internal/domain"
)

var _ app.Observer = (*progressUI)(nil)

// progressUI 是交互终端下 scan 的进度输出，只写 stderr，stdout 留给最终表格/JSON。
// 长时间没有条目完成时定期打印一行 keepalive。
type progressUI struct {
	w io.Writer

	mu          sync.Mutex
	startedAt   time.Time
	lastPrinted time.Time

	workers   int
	total     int
	done      int
	matched   int
	noResults int
	failed    int

	keepaliveThreshold time.Duration
	tickerInterval     time.Duration

	stopCh        chan struct{}
	tickerStarted bool
}

func newProgressUI(w io.Writer) *progressUI {
	return &progressUI{
		w:                  w,
		keepaliveThreshold: 6 * time.Second,
		tickerInterval:     2 * time.Second,
	}
}

func (p *progressUI) OnStart(opts app.BatchOptions) {
	now := time.Now()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.startedAt.IsZero() {
		p.startedAt = now
	}

	fmt.Fprintf(p.w, "[%s] avmeta scan\n", now.Format("15:04:05"))
	fmt.Fprintf(p.w, "  path: %s\n", opts.Root)
	fmt.Fprintf(p.w, "  family: %s\n", opts.Family)
	fmt.Fprintf(p.w, "  concurrency: %d\n", opts.Concurrency)
	if len(opts.ExcludeDirs) > 0 {
		fmt.Fprintf(p.w, "  exclude_dirs: %s\n", strings.Join(opts.ExcludeDirs, ", "))
	}
	fmt.Fprintln(p.w)
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch name {
	case "scan":
		fmt.Fprintf(p.w, "扫描: files=%d codes=%d unmatched=%d (%s)\n",
			intField(fields, "files"), intField(fields, "codes"), intField(fields, "unmatched"), formatShortDuration(dur),
		)
	case "search":
		p.workers = intField(fields, "workers")
		p.total = intField(fields, "total")
		fmt.Fprintf(p.w, "搜索: workers=%d total=%d\n\n", p.workers, p.total)
		if p.total > 0 && !p.tickerStarted {
			p.startTickerLocked()
		}
	default:
		fmt.Fprintf(p.w, "%s (%s)\n", name, formatShortDuration(dur))
	}
	p.lastPrinted = time.Now()
}

func (p *progressUI) OnItemDone(idx, total int, item domain.ScanItem, dur time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = idx
	p.total = total

	switch item.Status {
	case domain.StatusMatched:
		p.matched++
		best := ""
		if item.Best != nil {
			best = truncate(item.Best.Label, 80)
		}
		fmt.Fprintf(p.w, "[%d/%d] %s OK candidates=%d best=%q (%s)\n",
			idx, total, item.Code, len(item.Candidates), best, formatShortDuration(dur),
		)
	case domain.StatusNoResults:
		p.noResults++
		fmt.Fprintf(p.w, "[%d/%d] %s NONE (%s)\n", idx, total, item.Code, formatShortDuration(dur))
	default:
		p.failed++
		fmt.Fprintf(p.w, "[%d/%d] %s FAIL %s: %s (%s)\n",
			idx, total, item.Code, item.ErrorCode, truncate(redactURL(item.ErrorMsg), 160), formatShortDuration(dur),
		)
	}
	p.lastPrinted = time.Now()

	// 最后一条完成后停掉 ticker，避免结束后又冒出 keepalive。
	if p.tickerStarted && p.done >= p.total {
		close(p.stopCh)
		p.tickerStarted = false
	}
}

func (p *progressUI) startTickerLocked() {
	p.stopCh = make(chan struct{})
	p.tickerStarted = true
	stop := p.stopCh

	interval := p.tickerInterval
	if interval <= 0 {
		interval = 2 * time.Second
	}
	threshold := p.keepaliveThreshold
	if threshold <= 0 {
		threshold = 6 * time.Second
	}

	go func() {
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				p.mu.Lock()
				if p.total > 0 && p.done >= p.total {
					p.mu.Unlock()
					return
				}
				if p.total > 0 && time.Since(p.lastPrinted) > threshold {
					fmt.Fprintln(p.w, p.keepaliveLineLocked())
					p.lastPrinted = time.Now()
				}
				p.mu.Unlock()
			case <-stop:
				return
			}
		}
	}()
}

func (p *progressUI) keepaliveLineLocked() string {
	active := p.workers
	if remain := p.total - p.done; remain < active {
		active = remain
	}
	return fmt.Sprintf("进度: done=%d/%d ok=%d none=%d fail=%d active=%d elapsed=%s",
		p.done, p.total, p.matched, p.noResults, p.failed, active, formatElapsed(time.Since(p.startedAt)),
	)
}

// redactURL 去掉错误信息里 URL 的 userinfo（代理地址可能带账号）。
func redactURL(msg string) string {
	fields := strings.Fields(msg)
	changed := false
	for i, f := range fields {
		if !strings.Contains(f, "://") {
			continue
		}
		u, err := url.Parse(strings.Trim(f, `"'`))
		if err != nil || u.User == nil {
			continue
		}
		u.User = nil
		fields[i] = u.String()
		changed = true
	}
	if !changed {
		return msg
	}
	return strings.Join(fields, " ")
}

func formatShortDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func formatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	sec := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
}

func intField(fields map[string]any, key string) int {
	switch x := fields[key].(type) {
	case int:
		return x
	case int64:
		return int(x)
	case uint:
		return int(x)
	default:
		return 0
	}
}
