package recall

import (
	"cmp"
	"context"
	"slices"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pipeline"
	"github.com/weron33/GOG-task/pkg/utils"
)

// PopularItem 是热门榜中的一项：物品 ID 与交互过它的去重用户数。
type PopularItem struct {
	ItemID int64 `json:"item_id"`
	Users  int   `json:"users"`
}

// RankPopular 按去重用户数降序统计热门物品，数量相同时物品 ID 升序。
// 只统计 catalog 中存在的物品；catalog 为 nil 时不做限制。
func RankPopular(interactions []core.InteractionRecord, catalog *CatalogIndex) []PopularItem {
	seen := make(map[[2]int64]struct{}, len(interactions))
	counts := make(map[int64]int)
	for _, in := range interactions {
		if catalog != nil {
			if _, ok := catalog.Vector(in.ItemID); !ok {
				continue
			}
		}
		key := [2]int64{in.UserID, in.ItemID}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		counts[in.ItemID]++
	}

	out := make([]PopularItem, 0, len(counts))
	for id, n := range counts {
		out = append(out, PopularItem{ItemID: id, Users: n})
	}
	slices.SortFunc(out, func(a, b PopularItem) int {
		if c := cmp.Compare(b.Users, a.Users); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
	return out
}

// Popular 是热门召回源，用作没有画像的用户的降级列表。
// 是否降级由调用方决定，KNN 不会自动回退到这里。
type Popular struct {
	Items []PopularItem
	TopK  int
}

func (r *Popular) Name() string        { return "recall.popular" }
func (r *Popular) Kind() pipeline.Kind { return pipeline.KindRecall }

// Process 实现 Node 接口，直接调用 Recall
func (r *Popular) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return r.Recall(ctx, rctx)
}

// Recall 实现 Source 接口；Item.Score 为去重用户数。
func (r *Popular) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	topK := r.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}

	out := make([]*core.Item, 0, topK)
	for _, p := range r.Items {
		if len(out) >= topK {
			break
		}
		if rctx != nil {
			if _, skip := rctx.Exclude[p.ItemID]; skip {
				continue
			}
		}
		it := core.NewItem(p.ItemID)
		it.Score = float64(p.Users)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
