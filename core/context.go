package core

// RecommendContext 承载一次推荐请求的用户信息，贯穿整个 Pipeline 透传。
type RecommendContext struct {
	UserID int64

	// Profile 是本次请求实时计算出的用户画像（不缓存、不持久化）
	Profile *ProfileVector

	// Exclude 是需要排除的物品 ID（例如用户已消费过的物品）
	Exclude map[int64]struct{}

	// Params 请求级参数，来自 HTTP 查询参数，规则过滤通过 rctx.params 访问
	Params map[string]any
}

// ExcludeIDs 以集合形式设置排除列表。
func (rctx *RecommendContext) ExcludeIDs(ids ...int64) {
	if rctx.Exclude == nil {
		rctx.Exclude = make(map[int64]struct{}, len(ids))
	}
	for _, id := range ids {
		rctx.Exclude[id] = struct{}{}
	}
}
