package filter

import (
	"context"

	"github.com/weron33/GOG-task/core"
)

// BlacklistFilter 是黑名单过滤器，过滤掉运营下架的物品。
type BlacklistFilter struct {
	ItemIDs map[int64]struct{}
}

// NewBlacklistFilter 创建一个黑名单过滤器。
func NewBlacklistFilter(itemIDs []int64) *BlacklistFilter {
	set := make(map[int64]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
	return &BlacklistFilter{ItemIDs: set}
}

func (f *BlacklistFilter) Name() string {
	return "filter.blacklist"
}

func (f *BlacklistFilter) ShouldFilter(
	_ context.Context,
	_ *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return true, nil
	}
	_, blocked := f.ItemIDs[item.ID]
	return blocked, nil
}
