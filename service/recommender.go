// Package service 把目录索引、交互存储与 Pipeline 组合成推荐服务。
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/weron33/GOG-task/config"
	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/filter"
	"github.com/weron33/GOG-task/pipeline"
	"github.com/weron33/GOG-task/pkg/conv"
	"github.com/weron33/GOG-task/pkg/logging"
	"github.com/weron33/GOG-task/recall"
	"github.com/weron33/GOG-task/rerank"
	"github.com/weron33/GOG-task/store"
)

// snapshot 是一次 Fit 的产物，构建后只读。
type snapshot struct {
	catalog *recall.CatalogIndex
	pipe    *pipeline.Pipeline
	popular []recall.PopularItem
	fitted  time.Time
}

// Recommender 是基于内容的推荐服务。
//
// 并发模型：
//   - Fit 在锁外构建新的索引与 Pipeline，只在替换句柄时持有写锁
//   - Recommend 只在读取句柄时持有读锁，之后的计算不持锁
//   - 用户画像每次请求实时计算，不缓存
type Recommender struct {
	metricName      string
	topK            int
	excludeConsumed bool
	pipelineCfg     *pipeline.Config
	factory         *pipeline.NodeFactory
	store           core.InteractionStore
	log             zerolog.Logger
	metrics         *Metrics

	engine *recall.Engine

	fitMu sync.Mutex // 串行化 Fit（factory 注册与快照构建）
	mu    sync.RWMutex
	snap  *snapshot
}

// New 创建 Recommender。度量未知、K <= 0 或 Pipeline 配置非法时返回配置错误。
// 返回的 Recommender 需要 Fit 之后才能推荐。
func New(opts ...Option) (*Recommender, error) {
	var defaults core.RecallConfig = &core.DefaultRecallConfig{}
	r := &Recommender{
		metricName: defaults.DefaultMetric(),
		topK:       defaults.DefaultTopK(),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.store == nil {
		r.store = store.NewMemoryInteractionStore()
	}
	if r.factory == nil {
		r.factory = config.DefaultFactory()
	}

	engine, err := recall.NewEngine(r.metricName, r.topK)
	if err != nil {
		return nil, err
	}
	r.engine = engine

	if r.pipelineCfg != nil {
		if err := config.ValidatePipelineConfig(r.pipelineCfg, knnNodeType); err != nil {
			return nil, core.NewConfigurationError(core.ModuleService, err.Error())
		}
		// 用空目录试构建一次，尽早暴露 Node 参数错误
		if _, err := r.buildPipeline(nil); err != nil {
			return nil, err
		}
	}
	return r, nil
}

const knnNodeType = "recall.knn"

func (r *Recommender) buildPipeline(catalog *recall.CatalogIndex) (*pipeline.Pipeline, error) {
	provider := recall.StaticCatalog{Index: catalog}
	if r.pipelineCfg == nil || len(r.pipelineCfg.Nodes) == 0 {
		return &pipeline.Pipeline{
			Name:  "default",
			Nodes: []pipeline.Node{&recall.KNN{Engine: r.engine, Catalog: provider}},
		}, nil
	}

	cfg := r.pipelineCfg
	if !cfg.HasKind(pipeline.KindRecall) {
		return nil, core.NewConfigurationError(core.ModuleService, "pipeline: no recall node configured")
	}
	// 有过滤节点时 KNN 返回全量排序，由末尾的 TopN 截断
	full := cfg.HasKind(pipeline.KindFilter)
	r.factory.Register(knnNodeType, func(c map[string]any) (pipeline.Node, error) {
		return &recall.KNN{
			Engine:  r.engine,
			Catalog: provider,
			Full:    conv.ConfigGet(c, "full", full),
		}, nil
	})
	p, err := cfg.BuildPipeline(r.factory)
	if err != nil {
		return nil, core.NewConfigurationError(core.ModuleService, err.Error())
	}
	filterLog := logging.Component(r.log, "filter")
	for _, n := range p.Nodes {
		if fn, ok := n.(*filter.FilterNode); ok {
			fn.Log = filterLog
		}
	}
	// 无论配置中是否已有 rerank.topn，结果长度都以 K 为上限
	p.Nodes = append(p.Nodes, &rerank.TopNNode{N: r.topK})
	return p, nil
}

// Fit 用物品记录整体重建目录索引并原子替换。records 为空时返回配置错误，旧索引保持不变。
func (r *Recommender) Fit(ctx context.Context, records []core.ItemRecord, opts ...FitOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := &fitOptions{}
	for _, opt := range opts {
		opt(o)
	}

	r.fitMu.Lock()
	defer r.fitMu.Unlock()

	start := time.Now()
	catalog, err := recall.BuildCatalogIndex(records, o.catalogOptions()...)
	if err != nil {
		return err
	}
	pipe, err := r.buildPipeline(catalog)
	if err != nil {
		return err
	}
	next := &snapshot{
		catalog: catalog,
		pipe:    pipe,
		popular: recall.RankPopular(o.interactions, catalog),
		fitted:  time.Now(),
	}

	r.mu.Lock()
	r.snap = next
	r.mu.Unlock()

	r.metrics.fitted(catalog.Len())
	r.log.Info().
		Int("records", len(records)).
		Int("items", catalog.Len()).
		Int("excluded", len(o.excluded)).
		Int("popular", len(next.popular)).
		Dur("took", time.Since(start)).
		Msg("catalog index rebuilt")
	return nil
}

func (r *Recommender) current() (*snapshot, error) {
	r.mu.RLock()
	snap := r.snap
	r.mu.RUnlock()
	if snap == nil {
		return nil, core.NewDomainError(core.ModuleService, core.ErrorCodeUnavailable, "recommender: not fitted")
	}
	return snap, nil
}

// Catalog 返回当前目录索引，未 Fit 时为 nil。
func (r *Recommender) Catalog() *recall.CatalogIndex {
	snap, err := r.current()
	if err != nil {
		return nil
	}
	return snap.catalog
}

// Status 是服务状态摘要，用于健康检查。
type Status struct {
	Fitted   bool      `json:"fitted"`
	Items    int       `json:"items"`
	FittedAt time.Time `json:"fitted_at"`
	Metric   string    `json:"metric"`
	TopK     int       `json:"top_k"`
	Store    string    `json:"store"`
}

// Status 返回当前状态。
func (r *Recommender) Status() Status {
	st := Status{Metric: r.Metric(), TopK: r.TopK(), Store: r.store.Name()}
	if snap, err := r.current(); err == nil {
		st.Fitted = true
		st.Items = snap.catalog.Len()
		st.FittedAt = snap.fitted
	}
	return st
}

// Metric 返回生效的度量名称。
func (r *Recommender) Metric() string { return r.engine.Metric().Name() }

// TopK 返回生效的 K。
func (r *Recommender) TopK() int { return r.engine.K() }

// Store 返回交互存储。
func (r *Recommender) Store() core.InteractionStore { return r.store }

// Ingest 把交互写入存储，后续请求立即可见。
func (r *Recommender) Ingest(ctx context.Context, rows []core.InteractionRecord) error {
	if err := r.store.PutInteractions(ctx, rows); err != nil {
		return fmt.Errorf("ingest interactions: %w", err)
	}
	return nil
}

// Profile 计算用户当前画像；用户没有可 join 的交互时返回 NO_PROFILE。
func (r *Recommender) Profile(ctx context.Context, userID int64) (core.ProfileVector, error) {
	snap, err := r.current()
	if err != nil {
		return core.ProfileVector{}, err
	}
	profile, _, err := r.profile(ctx, snap, userID)
	return profile, err
}

func (r *Recommender) profile(ctx context.Context, snap *snapshot, userID int64) (core.ProfileVector, []core.InteractionRecord, error) {
	rows, err := r.store.GetInteractions(ctx, userID)
	if err != nil {
		return core.ProfileVector{}, nil, fmt.Errorf("load interactions of user %d: %w", userID, err)
	}
	profile, err := recall.BuildUserProfile(userID, rows, snap.catalog)
	return profile, rows, err
}

// Recommend 返回与用户画像最接近的物品，按 (距离, 物品 ID) 升序。
func (r *Recommender) Recommend(ctx context.Context, userID int64, opts ...RequestOption) ([]core.NeighborResult, error) {
	start := time.Now()
	req := &requestOptions{}
	for _, opt := range opts {
		opt(req)
	}
	out, err := r.recommend(ctx, userID, req)
	r.metrics.observe(outcomeOf(err), time.Since(start).Seconds(), len(out))

	ev := r.log.Debug()
	if err != nil && !core.IsNoProfile(err) {
		ev = r.log.Warn().Err(err)
	}
	ev.Int64("user_id", userID).Int("results", len(out)).Dur("took", time.Since(start)).Msg("recommend")
	return out, err
}

func (r *Recommender) recommend(ctx context.Context, userID int64, req *requestOptions) ([]core.NeighborResult, error) {
	snap, err := r.current()
	if err != nil {
		return nil, err
	}
	profile, rows, err := r.profile(ctx, snap, userID)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{UserID: userID, Profile: &profile, Params: req.params}
	if r.excludeConsumed {
		for _, row := range rows {
			rctx.ExcludeIDs(row.ItemID)
		}
	}
	items, err := snap.pipe.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]core.NeighborResult, 0, len(items))
	for _, it := range items {
		out = append(out, it.Neighbor())
	}
	return out, nil
}

// GetRecommendations 是面向外部调用方的入口：userID 必须是整数类型，
// 否则在任何计算之前返回 INVALID_TYPE。
func (r *Recommender) GetRecommendations(ctx context.Context, userID any, opts ...RequestOption) ([]core.NeighborResult, error) {
	id, ok := conv.ToInt64(userID)
	if !ok {
		r.metrics.observe(OutcomeBadInput, 0, 0)
		return nil, core.NewTypeInputError(core.ModuleService,
			fmt.Sprintf("user id must be an integer, got %T", userID))
	}
	return r.Recommend(ctx, id, opts...)
}

// Popular 返回热门降级列表的前 k 项（k <= 0 时使用 TopK）。
// 是否对无画像用户降级由调用方决定。
func (r *Recommender) Popular(ctx context.Context, k int) ([]recall.PopularItem, error) {
	snap, err := r.current()
	if err != nil {
		return nil, err
	}
	if k <= 0 {
		k = r.topK
	}
	node := &recall.Popular{Items: snap.popular, TopK: k}
	items, err := node.Recall(ctx, nil)
	if err != nil {
		return nil, err
	}
	out := make([]recall.PopularItem, 0, len(items))
	for _, it := range items {
		out = append(out, recall.PopularItem{ItemID: it.ID, Users: int(it.Score)})
	}
	return out, nil
}

// Close 释放交互存储。
func (r *Recommender) Close() error {
	return r.store.Close()
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case core.IsNoProfile(err):
		return OutcomeNoProfile
	case core.IsTypeInputError(err), core.IsInvalidInput(err):
		return OutcomeBadInput
	default:
		return OutcomeError
	}
}
