package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/recall"
	"github.com/weron33/GOG-task/service"
)

// FallbackPopular 是 fallback 查询参数的取值：无画像用户返回热门列表。
const FallbackPopular = "popular"

// Handler 处理推荐相关请求。
type Handler struct {
	rec Recommender
	log zerolog.Logger
}

// RecommendationsResponse 是推荐接口的响应体。
type RecommendationsResponse struct {
	UserID   int64                 `json:"user_id"`
	Items    []core.NeighborResult `json:"items"`
	Fallback string                `json:"fallback,omitempty"`
	Popular  []recall.PopularItem  `json:"popular,omitempty"`
}

// ErrorResponse 是错误响应体。
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recommendations 处理 GET /users/{userID}/recommendations。
// 路径参数不是整数时原样交给服务层，由服务层返回类型错误。
// fallback 与 k 以外的查询参数作为 rctx.params 传给规则过滤。
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "userID")
	var userID any = raw
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		userID = id
	}

	var opts []service.RequestOption
	if params := requestParams(r.URL.Query()); len(params) > 0 {
		opts = append(opts, service.WithParams(params))
	}
	items, err := h.rec.GetRecommendations(r.Context(), userID, opts...)
	if err != nil {
		if core.IsNoProfile(err) && r.URL.Query().Get("fallback") == FallbackPopular {
			h.popular(w, r, userID.(int64))
			return
		}
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RecommendationsResponse{
		UserID: userID.(int64),
		Items:  items,
	})
}

// requestParams 取每个查询参数的第一个值；能解析为数字的转成 float64。
func requestParams(q url.Values) map[string]any {
	params := make(map[string]any, len(q))
	for key, vals := range q {
		if key == "fallback" || key == "k" || len(vals) == 0 {
			continue
		}
		if f, err := strconv.ParseFloat(vals[0], 64); err == nil {
			params[key] = f
			continue
		}
		params[key] = vals[0]
	}
	return params
}

func (h *Handler) popular(w http.ResponseWriter, r *http.Request, userID int64) {
	k := 0
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.respondError(w, core.NewDomainError(core.ModuleService, core.ErrorCodeInvalidInput, "k must be a positive integer"))
			return
		}
		k = n
	}
	top, err := h.rec.Popular(r.Context(), k)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, RecommendationsResponse{
		UserID:   userID,
		Items:    []core.NeighborResult{},
		Fallback: FallbackPopular,
		Popular:  top,
	})
}

// Health 处理 GET /healthz：未 Fit 时返回 503。
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	st := h.rec.Status()
	status := http.StatusOK
	if !st.Fitted {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, st)
}

// statusOf 把领域错误映射为 HTTP 状态码。
func statusOf(err error) int {
	switch {
	case core.IsTypeInputError(err), core.IsInvalidInput(err):
		return http.StatusBadRequest
	case core.IsNoProfile(err), core.IsNotFound(err):
		return http.StatusNotFound
	case core.IsUnavailable(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	code := core.ErrorCodeInternalError
	if de := core.GetDomainError(err); de != nil {
		code = de.Code
	}
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Str("code", code).Msg("request failed")
	}
	respondJSON(w, status, ErrorResponse{Code: code, Message: err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
