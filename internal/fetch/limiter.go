package fetch

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/time/rate"
)

// hostLimiters 按 host 限速；同一站点的所有 variant 共用一个桶。
type hostLimiters struct {
	mu    sync.Mutex
	rps   float64
	burst int
	byKey map[string]*rate.Limiter
}

func newHostLimiters(rps float64, burst int) *hostLimiters {
	if burst < 1 {
		burst = 1
	}
	return &hostLimiters{rps: rps, burst: burst, byKey: map[string]*rate.Limiter{}}
}

func (h *hostLimiters) get(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()
	l, ok := h.byKey[host]
	if !ok {
		lim := rate.Inf
		if h.rps > 0 {
			lim = rate.Limit(h.rps)
		}
		l = rate.NewLimiter(lim, h.burst)
		h.byKey[host] = l
	}
	return l
}

// wait 阻塞到该 host 允许下一个请求；ctx 取消时返回 ctx 的错误。
func (h *hostLimiters) wait(ctx context.Context, host string) error {
	if err := h.get(host).Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("rate limit wait for %s: %w", host, err)
	}
	return nil
}
