package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pipeline"
)

// FilterNode 是过滤 Node，可以组合多个过滤器进行过滤。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉；输入顺序保持不变。
// 过滤器出错时保留物品并记一条 warn 日志；Log 为零值时不输出。
type FilterNode struct {
	Filters []Filter
	Log     zerolog.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		shouldFilter := false
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				n.Log.Warn().Err(err).
					Str("filter", f.Name()).
					Int64("item_id", item.ID).
					Msg("filter failed, item kept")
				continue
			}
			if ok {
				shouldFilter = true
				break
			}
		}

		if !shouldFilter {
			out = append(out, item)
		}
	}

	return out, nil
}
