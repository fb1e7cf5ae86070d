package recall

import (
	"fmt"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/feature"
)

// UserProfileBuilder 把用户交互 join 到物品特征上，再用与物品相同的字段角色表聚合。
type UserProfileBuilder struct {
	Aggregator *feature.Aggregator
}

// NewUserProfileBuilder 创建构建器；agg 为 nil 时使用默认字段角色表。
func NewUserProfileBuilder(agg *feature.Aggregator) (*UserProfileBuilder, error) {
	if agg == nil {
		var err error
		if agg, err = feature.NewAggregator(); err != nil {
			return nil, err
		}
	}
	return &UserProfileBuilder{Aggregator: agg}, nil
}

// join 做 inner join：没有匹配物品的交互直接丢弃。
// 一个物品有多条子商品记录时，每条记录都贡献一行。
func join(interactions []core.InteractionRecord, index ItemFeatureIndex) map[int64][]feature.ItemFeatureTuple {
	rows := make(map[int64][]feature.ItemFeatureTuple)
	for _, in := range interactions {
		tuples := index.Features(in.ItemID)
		if len(tuples) == 0 {
			continue
		}
		rows[in.UserID] = append(rows[in.UserID], tuples...)
	}
	return rows
}

// BuildAll 为交互中出现的每个用户构建画像；join 后没有剩余行的用户不出现在结果中。
func (b *UserProfileBuilder) BuildAll(interactions []core.InteractionRecord, index ItemFeatureIndex) (map[int64]core.ProfileVector, error) {
	rows := join(interactions, index)
	out := make(map[int64]core.ProfileVector, len(rows))
	for userID, group := range rows {
		vec, err := b.Aggregator.Aggregate(group)
		if err != nil {
			return nil, fmt.Errorf("user profile %d: %w", userID, err)
		}
		out[userID] = vec
	}
	return out, nil
}

// Build 只为 userID 构建画像，其它用户的交互被忽略。
// 没有任何匹配交互时返回 NoProfile 错误，而不是零向量。
func (b *UserProfileBuilder) Build(userID int64, interactions []core.InteractionRecord, index ItemFeatureIndex) (core.ProfileVector, error) {
	own := make([]core.InteractionRecord, 0, len(interactions))
	for _, in := range interactions {
		if in.UserID == userID {
			own = append(own, in)
		}
	}
	group := join(own, index)[userID]
	if len(group) == 0 {
		return core.ProfileVector{}, core.NewNoProfileError(core.ModuleRecall,
			fmt.Sprintf("user %d has no interactions matching the catalog", userID))
	}
	return b.Aggregator.Aggregate(group)
}

// BuildUserProfiles 使用默认字段角色表构建全部用户画像。
func BuildUserProfiles(interactions []core.InteractionRecord, index ItemFeatureIndex) (map[int64]core.ProfileVector, error) {
	b, err := NewUserProfileBuilder(nil)
	if err != nil {
		return nil, err
	}
	return b.BuildAll(interactions, index)
}

// BuildUserProfile 使用默认字段角色表构建单个用户画像。
func BuildUserProfile(userID int64, interactions []core.InteractionRecord, index ItemFeatureIndex) (core.ProfileVector, error) {
	b, err := NewUserProfileBuilder(nil)
	if err != nil {
		return core.ProfileVector{}, err
	}
	return b.Build(userID, interactions, index)
}
