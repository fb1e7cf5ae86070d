package recall

import (
	"context"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pipeline"
	"github.com/weron33/GOG-task/pkg/utils"
)

// CatalogProvider 提供当前生效的目录索引句柄。
// 实现方负责重建与读取之间的互斥（例如读写锁）。
type CatalogProvider interface {
	Catalog() *CatalogIndex
}

// StaticCatalog 是固定索引的 CatalogProvider。
type StaticCatalog struct {
	Index *CatalogIndex
}

func (s StaticCatalog) Catalog() *CatalogIndex { return s.Index }

// KNN 是近邻召回源：以 rctx.Profile 为查询向量，在目录索引中做精确检索。
// 返回的 Item.Score 是距离（越小越相似）。
// KNN 同时实现了 Source 和 Node 接口，可以直接在 Pipeline 中使用。
type KNN struct {
	Engine  *Engine
	Catalog CatalogProvider

	// Full 为 true 时返回全部排序结果，由下游节点（过滤 + TopN）截断
	Full bool
}

func (r *KNN) Name() string        { return "recall.knn" }
func (r *KNN) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *KNN) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口
func (r *KNN) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Engine == nil || r.Catalog == nil {
		return nil, core.NewConfigurationError(core.ModuleRecall, "knn: engine and catalog are required")
	}
	if rctx == nil || rctx.Profile == nil {
		return nil, core.NewNoProfileError(core.ModuleRecall, "knn: request has no user profile")
	}

	catalog := r.Catalog.Catalog()
	var results []core.NeighborResult
	if r.Full {
		results = r.Engine.Rank(*rctx.Profile, catalog, rctx.Exclude)
	} else {
		results = r.Engine.Recommend(*rctx.Profile, catalog, rctx.Exclude)
	}

	metric := r.Engine.Metric().Name()
	out := make([]*core.Item, 0, len(results))
	for _, res := range results {
		it := core.NewItem(res.ItemID)
		it.Score = res.Distance
		if vec, ok := catalog.Vector(res.ItemID); ok {
			it.Features = vec.Features()
		}
		it.PutLabel("recall_source", utils.Label{Value: "knn", Source: "recall"})
		it.PutLabel("knn_metric", utils.Label{Value: metric, Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}

var (
	_ Source        = (*KNN)(nil)
	_ pipeline.Node = (*KNN)(nil)
)
