package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/weron33/GOG-task/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("item", cel.DynType),
			cel.Variable("label", cel.DynType),
			cel.Variable("rctx", cel.DynType),
		)
	})
	return celEnv, celEnvErr
}

// Rule 是编译好的 CEL 规则，可被多个请求并发求值。
//
// 表达式语法（CEL 标准语法）：
//   - 距离：item.distance < 3.0
//   - 画像特征：item.features.avg_price <= 20.0
//   - 标签：label.recall_source == "knn"
//   - 请求参数：rctx.params.max_price != null && item.features.avg_price <= rctx.params.max_price
type Rule struct {
	Expr string
	prg  cel.Program
}

// Compile 编译表达式，表达式必须返回布尔值。
func Compile(expr string) (*Rule, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile %q: %w", expr, issues.Err())
	}
	switch out := ast.OutputType().String(); out {
	case "bool", "dyn":
	default:
		return nil, fmt.Errorf("compile %q: expression must return bool, got %s", expr, out)
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program %q: %w", expr, err)
	}
	return &Rule{Expr: expr, prg: prg}, nil
}

// Match 对一个物品求值。
func (r *Rule) Match(item *core.Item, rctx *core.RecommendContext) (bool, error) {
	out, _, err := r.prg.Eval(buildInput(item, rctx))
	if err != nil {
		// 访问不存在的 key 会报错，用户应先用 != null 判断
		return false, fmt.Errorf("eval %q: %w", r.Expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("eval %q: expression must return bool, got %T", r.Expr, out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(item *core.Item, rctx *core.RecommendContext) map[string]any {
	labels := make(map[string]any, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}
	features := make(map[string]any, len(item.Features))
	for k, v := range item.Features {
		features[k] = v
	}

	ctxInput := map[string]any{
		"user_id": int64(0),
		"params":  map[string]any{},
	}
	if rctx != nil {
		ctxInput["user_id"] = rctx.UserID
		if rctx.Params != nil {
			ctxInput["params"] = rctx.Params
		}
	}

	return map[string]any{
		"item": map[string]any{
			"id":       item.ID,
			"distance": item.Score,
			"features": features,
		},
		"label": labels,
		"rctx":  ctxInput,
	}
}
