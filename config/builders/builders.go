package builders

import (
	"fmt"

	"github.com/weron33/GOG-task/config"
	"github.com/weron33/GOG-task/filter"
	"github.com/weron33/GOG-task/pipeline"
	"github.com/weron33/GOG-task/pkg/conv"
	"github.com/weron33/GOG-task/rerank"
)

func init() {
	config.Register("filter.rule", BuildRuleFilterNode)
	config.Register("filter.blacklist", BuildBlacklistNode)
	config.Register("rerank.topn", BuildTopNNode)
}

// BuildRuleFilterNode 支持单条 expr 或多条 rules。
//
//	- type: filter.rule
//	  config:
//	    rules: ["item.distance < 3.0", "item.features.avg_price <= 40.0"]
func BuildRuleFilterNode(cfg map[string]any) (pipeline.Node, error) {
	exprs := conv.SliceAnyToString(cfg["rules"])
	if expr := conv.ConfigGet(cfg, "expr", ""); expr != "" {
		exprs = append(exprs, expr)
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("filter.rule: expr or rules is required")
	}

	filters := make([]filter.Filter, 0, len(exprs))
	for _, expr := range exprs {
		f, err := filter.NewRuleFilter(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func BuildBlacklistNode(cfg map[string]any) (pipeline.Node, error) {
	ids := conv.SliceAnyToInt64(cfg["item_ids"])
	return &filter.FilterNode{Filters: []filter.Filter{filter.NewBlacklistFilter(ids)}}, nil
}

func BuildTopNNode(cfg map[string]any) (pipeline.Node, error) {
	return &rerank.TopNNode{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}
