package recall

import (
	"cmp"
	"slices"

	"github.com/weron33/GOG-task/core"
)

// DefaultTopK 是默认返回的近邻数。
const DefaultTopK = 10

// Engine 是暴力精确近邻检索引擎：对目录中每个向量计算距离，按距离升序返回前 K 个。
// 构建后只读，可被多个请求并发使用。
type Engine struct {
	metric Metric
	k      int
}

// NewEngine 按度量名称创建引擎。未知度量或 k <= 0 在构建时即返回配置错误，而不是每次查询时。
func NewEngine(metric string, k int) (*Engine, error) {
	m, err := ParseMetric(metric)
	if err != nil {
		return nil, err
	}
	return NewEngineWithMetric(m, k)
}

// NewEngineWithMetric 使用自定义度量创建引擎。
func NewEngineWithMetric(m Metric, k int) (*Engine, error) {
	if m == nil {
		return nil, core.NewConfigurationError(core.ModuleRecall, "metric is nil")
	}
	if k <= 0 {
		return nil, core.NewConfigurationError(core.ModuleRecall, "k must be positive")
	}
	return &Engine{metric: m, k: k}, nil
}

// Metric 返回引擎使用的度量。
func (e *Engine) Metric() Metric { return e.metric }

// K 返回引擎的结果数。
func (e *Engine) K() int { return e.k }

// Rank 对目录中所有未排除的物品排序：距离升序，距离相同时物品 ID 升序。
func (e *Engine) Rank(query core.ProfileVector, catalog *CatalogIndex, exclude map[int64]struct{}) []core.NeighborResult {
	q := query[:]
	out := make([]core.NeighborResult, 0, catalog.Len())
	// 目录按 ID 升序遍历，稳定排序即可保证并列时 ID 升序
	catalog.each(func(id int64, vec core.ProfileVector) {
		if _, skip := exclude[id]; skip {
			return
		}
		out = append(out, core.NeighborResult{ItemID: id, Distance: e.metric.Distance(q, vec[:])})
	})
	slices.SortStableFunc(out, func(a, b core.NeighborResult) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	return out
}

// Recommend 返回前 min(K, |目录 - 排除|) 个近邻；目录为空时返回空切片。
func (e *Engine) Recommend(query core.ProfileVector, catalog *CatalogIndex, exclude map[int64]struct{}) []core.NeighborResult {
	ranked := e.Rank(query, catalog, exclude)
	if len(ranked) > e.k {
		ranked = ranked[:e.k:e.k]
	}
	return ranked
}
