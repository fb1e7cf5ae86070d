package rerank

import (
	"context"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pipeline"
)

// TopNNode 是一个 Top-N 截断节点，在召回和过滤之后截取前 N 个物品。
//
// 示例：
//
//	p := &pipeline.Pipeline{
//	    Nodes: []pipeline.Node{
//	        &recall.KNN{Engine: engine, Catalog: catalog, Full: true},
//	        &filter.FilterNode{Filters: rules},
//	        &rerank.TopNNode{N: 10},
//	    },
//	}
type TopNNode struct {
	// N 要保留的物品数量；N <= 0 时不截断
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N <= 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
