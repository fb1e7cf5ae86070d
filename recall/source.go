package recall

import (
	"context"

	"github.com/weron33/GOG-task/core"
)

// Source 表示一个可复用的召回源（近邻 / 热门 / 外部模型 ...）。
// 外部的图嵌入模型只需实现该接口即可接入。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}
