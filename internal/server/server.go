// Package server 把 provider.Service 暴露为只读的 JSON HTTP 接口。
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/John-Robertt/avmeta/internal/domain"
	"github.com/John-Robertt/avmeta/internal/fetch"
	"github.com/John-Robertt/avmeta/internal/locator"
	"github.com/John-Robertt/avmeta/internal/provider"
)

// Service 是 HTTP 层依赖的能力（provider.Service 满足它）。
type Service interface {
	Families() []string
	Search(ctx context.Context, family, text string, hintDate *time.Time) ([]domain.SearchCandidate, error)
	Resolve(ctx context.Context, family, id string) (domain.MetadataRecord, error)
	Images(ctx context.Context, id string) ([]domain.ImageRecord, error)
}

type Options struct {
	// DefaultFamily 在 /search 未带 family 参数时使用。
	DefaultFamily string
	Gatherer      prometheus.Gatherer
	Logger        *slog.Logger
}

// NewRouter 构造路由：
//
//	GET /health
//	GET /metrics
//	GET /families
//	GET /search?family=&q=&date=
//	GET /resolve/{family}/{id}
//	GET /images/{id}
func NewRouter(svc Service, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	h := &handlers{svc: svc, defaultFamily: opts.DefaultFamily, log: log}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, requestLogger(log), middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/families", h.families)
	r.Get("/search", h.search)
	r.Get("/resolve/{family}/{id}", h.resolve)
	r.Get("/images/{id}", h.images)
	return r
}

type handlers struct {
	svc           Service
	defaultFamily string
	log           *slog.Logger
}

func (h *handlers) families(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Families())
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	family := strings.TrimSpace(q.Get("family"))
	if family == "" {
		family = h.defaultFamily
	}

	var hint *time.Time
	if raw := strings.TrimSpace(q.Get("date")); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			errorJSON(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		hint = &t
	}

	cands, err := h.svc.Search(r.Context(), family, q.Get("q"), hint)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if cands == nil {
		cands = []domain.SearchCandidate{}
	}
	writeJSON(w, http.StatusOK, cands)
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Resolve(r.Context(), chi.URLParam(r, "family"), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *handlers) images(w http.ResponseWriter, r *http.Request) {
	imgs, err := h.svc.Images(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if imgs == nil {
		imgs = []domain.ImageRecord{}
	}
	writeJSON(w, http.StatusOK, imgs)
}

// fail 把领域错误映射为 HTTP 状态码。
func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		be *fetch.BlockedError
		se *fetch.HTTPStatusError
	)
	status := http.StatusBadGateway
	switch {
	case errors.Is(err, locator.ErrInvalid), errors.Is(err, provider.ErrFamilyMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, provider.ErrUnknownFamily):
		status = http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	case errors.As(err, &be):
		status = http.StatusBadGateway
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		status = http.StatusNotFound
	}
	if status >= 500 {
		h.log.Warn("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "error", err)
	}
	errorJSON(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func errorJSON(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			started := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(started),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// Serve 监听 addr 直到 ctx 取消，然后优雅关闭。
func Serve(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		log.Info("http server stopped")
		return nil
	}
}
