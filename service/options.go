package service

import (
	"github.com/rs/zerolog"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pipeline"
	"github.com/weron33/GOG-task/recall"
)

// Option 配置 Recommender。
type Option func(*Recommender)

// WithMetric 设置距离度量（euclidean / cosine / manhattan），默认 cosine。
func WithMetric(name string) Option {
	return func(r *Recommender) { r.metricName = name }
}

// WithTopK 设置返回的近邻数，默认 10。
func WithTopK(k int) Option {
	return func(r *Recommender) { r.topK = k }
}

// WithExcludeConsumed 为 true 时从结果中排除用户交互过的物品。
func WithExcludeConsumed(on bool) Option {
	return func(r *Recommender) { r.excludeConsumed = on }
}

// WithStore 设置交互历史存储，默认内存存储。
func WithStore(s core.InteractionStore) Option {
	return func(r *Recommender) { r.store = s }
}

// WithPipeline 使用配置驱动的 Pipeline；为空时使用 recall.knn → rerank.topn。
func WithPipeline(cfg *pipeline.Config) Option {
	return func(r *Recommender) { r.pipelineCfg = cfg }
}

// WithNodeFactory 替换 Node 工厂（默认 config.DefaultFactory）。
func WithNodeFactory(f *pipeline.NodeFactory) Option {
	return func(r *Recommender) { r.factory = f }
}

// WithLogger 设置 logger。
func WithLogger(log zerolog.Logger) Option {
	return func(r *Recommender) { r.log = log }
}

// WithMetrics 设置 Prometheus 指标，nil 表示不采集。
func WithMetrics(m *Metrics) Option {
	return func(r *Recommender) { r.metrics = m }
}

// FitOption 配置一次 Fit。
type FitOption func(*fitOptions)

type fitOptions struct {
	excluded     []int64
	interactions []core.InteractionRecord
}

// WithExcludedItems 从可推荐集合中剔除指定物品（例如下架商品），其特征仍参与用户画像。
func WithExcludedItems(ids ...int64) FitOption {
	return func(o *fitOptions) { o.excluded = append(o.excluded, ids...) }
}

// WithPopularity 用全量交互计算热门降级列表。
func WithPopularity(interactions []core.InteractionRecord) FitOption {
	return func(o *fitOptions) { o.interactions = interactions }
}

func (o *fitOptions) catalogOptions() []recall.CatalogOption {
	if len(o.excluded) == 0 {
		return nil
	}
	return []recall.CatalogOption{recall.WithExcludedItems(o.excluded...)}
}

// RequestOption 配置单次推荐请求。
type RequestOption func(*requestOptions)

type requestOptions struct {
	params map[string]any
}

// WithParams 设置请求级参数，规则过滤中以 rctx.params 访问。
func WithParams(params map[string]any) RequestOption {
	return func(o *requestOptions) { o.params = params }
}
