// Package api 提供推荐服务的 HTTP 接口。
//
//	GET /users/{userID}/recommendations[?fallback=popular][&max_price=25]
//	GET /healthz
//	GET /metrics
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/recall"
	"github.com/weron33/GOG-task/service"
)

// Recommender 是 HTTP 层依赖的推荐能力，由 *service.Recommender 实现。
type Recommender interface {
	GetRecommendations(ctx context.Context, userID any, opts ...service.RequestOption) ([]core.NeighborResult, error)
	Popular(ctx context.Context, k int) ([]recall.PopularItem, error)
	Status() service.Status
}

var _ Recommender = (*service.Recommender)(nil)

// NewRouter 组装路由。metrics 为 nil 时不暴露 /metrics。
func NewRouter(rec Recommender, metrics http.Handler, log zerolog.Logger) http.Handler {
	h := &Handler{rec: rec, log: log}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestLogger(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Get("/users/{userID}/recommendations", h.Recommendations)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Debug().
				Str("request_id", chimiddleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("http request")
		})
	}
}
