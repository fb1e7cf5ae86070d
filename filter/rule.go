package filter

import (
	"context"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pkg/dsl"
)

// RuleFilter 用 CEL 表达式描述"保留条件"，不满足条件的物品被过滤。
// 例如 "item.distance < 3.0" 或 "item.features.avg_price <= 20.0"。
type RuleFilter struct {
	rule *dsl.Rule
}

// NewRuleFilter 编译表达式；表达式错误在构建时返回。
func NewRuleFilter(expr string) (*RuleFilter, error) {
	rule, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.NewConfigurationError(core.ModuleRecall, "filter.rule: "+err.Error())
	}
	return &RuleFilter{rule: rule}, nil
}

func (f *RuleFilter) Name() string {
	return "filter.rule"
}

// Expr 返回规则表达式。
func (f *RuleFilter) Expr() string {
	return f.rule.Expr
}

func (f *RuleFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	keep, err := f.rule.Match(item, rctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
