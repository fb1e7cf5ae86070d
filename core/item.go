package core

import "github.com/weron33/GOG-task/pkg/utils"

// Item 是推荐链路中的统一承载结构：画像特征、距离、标签。
// 近邻召回中 Score 存放距离，越小越相似；Labels 用于解释与策略驱动。
type Item struct {
	ID       int64
	Score    float64
	Features map[string]float64
	Labels   map[string]utils.Label
}

func NewItem(id int64) *Item {
	return &Item{
		ID:       id,
		Score:    0,
		Features: make(map[string]float64),
		Labels:   make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}

// Neighbor 把 Item 转回检索结果。
func (it *Item) Neighbor() NeighborResult {
	return NeighborResult{ItemID: it.ID, Distance: it.Score}
}
