package recall

import (
	"fmt"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/feature"
)

// ItemFeatureIndex 按物品 ID 提供编码后的特征元组（每个子商品一条），
// 用户画像构建时以它做 inner join。
type ItemFeatureIndex interface {
	Features(itemID int64) []feature.ItemFeatureTuple
}

// FeatureIndex 是 ItemFeatureIndex 的 map 实现。
type FeatureIndex map[int64][]feature.ItemFeatureTuple

func (f FeatureIndex) Features(itemID int64) []feature.ItemFeatureTuple {
	return f[itemID]
}

// CatalogIndex 是全部物品画像向量的只读集合。
//
// 生命周期：
//   - 在 fit 阶段由 BuildCatalogIndex 一次性构建
//   - 构建后不可变，并发读安全，读者之间互不阻塞
//   - 物品数据变化时整体重建，没有增量更新
type CatalogIndex struct {
	ids      []int64 // 升序
	vectors  []core.ProfileVector
	position map[int64]int
	features FeatureIndex
	encoder  *feature.ItemEncoder
}

type catalogOptions struct {
	aggregator *feature.Aggregator
	excluded   map[int64]struct{}
}

// CatalogOption 配置 BuildCatalogIndex。
type CatalogOption func(*catalogOptions)

// WithAggregator 使用自定义聚合器（字段角色表）。
func WithAggregator(agg *feature.Aggregator) CatalogOption {
	return func(o *catalogOptions) { o.aggregator = agg }
}

// WithExcludedItems 从可检索集合中剔除指定物品；它们的特征仍保留用于用户画像 join。
func WithExcludedItems(ids ...int64) CatalogOption {
	return func(o *catalogOptions) {
		if o.excluded == nil {
			o.excluded = make(map[int64]struct{}, len(ids))
		}
		for _, id := range ids {
			o.excluded[id] = struct{}{}
		}
	}
}

// BuildCatalogIndex 编码并聚合全部物品记录，得到每个物品 ID 一个画像向量。
// records 为空时返回配置错误。
func BuildCatalogIndex(records []core.ItemRecord, opts ...CatalogOption) (*CatalogIndex, error) {
	if len(records) == 0 {
		return nil, core.NewConfigurationError(core.ModuleRecall, "catalog: no item records")
	}

	o := &catalogOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.aggregator == nil {
		agg, err := feature.NewAggregator()
		if err != nil {
			return nil, err
		}
		o.aggregator = agg
	}

	// 编码表必须在编码之前用完整快照构建
	encoder := feature.NewItemEncoder(records)
	tuples := encoder.EncodeAll(records)
	keys, groups := feature.GroupByKey(tuples, func(t feature.ItemFeatureTuple) int64 { return t.ID })

	idx := &CatalogIndex{
		ids:      make([]int64, 0, len(keys)),
		vectors:  make([]core.ProfileVector, 0, len(keys)),
		position: make(map[int64]int, len(keys)),
		features: FeatureIndex(groups),
		encoder:  encoder,
	}
	for _, id := range keys {
		if _, skip := o.excluded[id]; skip {
			continue
		}
		vec, err := o.aggregator.Aggregate(groups[id])
		if err != nil {
			return nil, fmt.Errorf("catalog: aggregate item %d: %w", id, err)
		}
		idx.position[id] = len(idx.ids)
		idx.ids = append(idx.ids, id)
		idx.vectors = append(idx.vectors, vec)
	}
	return idx, nil
}

// Len 返回可检索的物品数。
func (c *CatalogIndex) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// IDs 返回可检索物品 ID 的升序拷贝。
func (c *CatalogIndex) IDs() []int64 {
	if c == nil {
		return nil
	}
	return append([]int64(nil), c.ids...)
}

// Vector 返回物品画像。
func (c *CatalogIndex) Vector(itemID int64) (core.ProfileVector, bool) {
	if c == nil {
		return core.ProfileVector{}, false
	}
	pos, ok := c.position[itemID]
	if !ok {
		return core.ProfileVector{}, false
	}
	return c.vectors[pos], true
}

// Features 实现 ItemFeatureIndex，包含被 WithExcludedItems 剔除的物品。
func (c *CatalogIndex) Features(itemID int64) []feature.ItemFeatureTuple {
	if c == nil {
		return nil
	}
	return c.features[itemID]
}

// Encoder 返回构建索引时使用的编码器（只读）。
func (c *CatalogIndex) Encoder() *feature.ItemEncoder {
	if c == nil {
		return nil
	}
	return c.encoder
}

// each 按物品 ID 升序遍历。
func (c *CatalogIndex) each(fn func(id int64, vec core.ProfileVector)) {
	if c == nil {
		return
	}
	for i, id := range c.ids {
		fn(id, c.vectors[i])
	}
}

var _ ItemFeatureIndex = (*CatalogIndex)(nil)
