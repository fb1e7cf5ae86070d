package feature

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/weron33/GOG-task/core"
)

// FieldRole 决定一个字段在聚合时使用的归约方式。
type FieldRole int

const (
	// RoleMostFrequent 取众数，并列时取最小值
	RoleMostFrequent FieldRole = iota
	// RoleMean 取算术平均，跳过缺失值（NaN）
	RoleMean
)

func (r FieldRole) String() string {
	switch r {
	case RoleMostFrequent:
		return "most_frequent"
	case RoleMean:
		return "mean"
	default:
		return fmt.Sprintf("FieldRole(%d)", int(r))
	}
}

// FieldSpec 描述画像向量的一维：名称、归约方式、取值函数。
type FieldSpec struct {
	Name  string
	Role  FieldRole
	Value func(t ItemFeatureTuple) float64
}

// DefaultFields 是物品画像与用户画像共用的字段角色表，顺序与 core.Field* 一致。
var DefaultFields = []FieldSpec{
	{Name: core.ProfileFieldNames[core.FieldSeries], Role: RoleMostFrequent, Value: func(t ItemFeatureTuple) float64 { return float64(t.SeriesID) }},
	{Name: core.ProfileFieldNames[core.FieldGenre1], Role: RoleMostFrequent, Value: func(t ItemFeatureTuple) float64 { return float64(t.GenreIDs[0]) }},
	{Name: core.ProfileFieldNames[core.FieldGenre2], Role: RoleMostFrequent, Value: func(t ItemFeatureTuple) float64 { return float64(t.GenreIDs[1]) }},
	{Name: core.ProfileFieldNames[core.FieldGenre3], Role: RoleMostFrequent, Value: func(t ItemFeatureTuple) float64 { return float64(t.GenreIDs[2]) }},
	{Name: core.ProfileFieldNames[core.FieldDeveloper], Role: RoleMostFrequent, Value: func(t ItemFeatureTuple) float64 { return float64(t.DeveloperID) }},
	{Name: core.ProfileFieldNames[core.FieldPublisher], Role: RoleMostFrequent, Value: func(t ItemFeatureTuple) float64 { return float64(t.PublisherID) }},
	{Name: core.ProfileFieldNames[core.FieldPrice], Role: RoleMean, Value: func(t ItemFeatureTuple) float64 { return t.Price }},
	{Name: core.ProfileFieldNames[core.FieldSingleMode], Role: RoleMean, Value: func(t ItemFeatureTuple) float64 { return t.Modes.SinglePlayer }},
	{Name: core.ProfileFieldNames[core.FieldCoopMode], Role: RoleMean, Value: func(t ItemFeatureTuple) float64 { return t.Modes.Coop }},
	{Name: core.ProfileFieldNames[core.FieldMultiMode], Role: RoleMean, Value: func(t ItemFeatureTuple) float64 { return t.Modes.MultiPlayer }},
}

// Aggregator 把同一 key 下的一组特征元组归约为一个画像向量。
type Aggregator struct {
	Fields []FieldSpec
}

// NewAggregator 创建聚合器；fields 为空时使用 DefaultFields。
func NewAggregator(fields ...FieldSpec) (*Aggregator, error) {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	if len(fields) != core.ProfileDims {
		return nil, core.NewConfigurationError(core.ModuleFeature,
			fmt.Sprintf("aggregator needs %d fields, got %d", core.ProfileDims, len(fields)))
	}
	for _, f := range fields {
		if f.Value == nil {
			return nil, core.NewConfigurationError(core.ModuleFeature, "field "+f.Name+" has no value func")
		}
	}
	return &Aggregator{Fields: fields}, nil
}

// Aggregate 归约一组元组。空组由调用方过滤，这里返回配置错误。
func (a *Aggregator) Aggregate(group []ItemFeatureTuple) (core.ProfileVector, error) {
	var out core.ProfileVector
	if len(group) == 0 {
		return out, core.NewConfigurationError(core.ModuleFeature, "cannot aggregate an empty group")
	}

	values := make([]float64, len(group))
	for i, field := range a.Fields {
		for j, t := range group {
			values[j] = field.Value(t)
		}
		switch field.Role {
		case RoleMean:
			out[i] = Mean(values)
		default:
			out[i] = MostFrequent(values)
		}
	}
	return out, nil
}

// MostFrequent 返回出现次数最多的值；并列时取最小值，NaN 不计数。
// 全部缺失时返回 0。
func MostFrequent(values []float64) float64 {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		counts[v]++
	}

	best, bestCount := 0.0, 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}
	return best
}

// Mean 返回非缺失值的算术平均；全部缺失时返回 0。
func Mean(values []float64) float64 {
	var sum float64
	n := 0
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// GroupByKey 按 key 分组，组内保持输入顺序，返回升序排列的 key 列表。
func GroupByKey[K cmp.Ordered](tuples []ItemFeatureTuple, key func(ItemFeatureTuple) K) ([]K, map[K][]ItemFeatureTuple) {
	groups := make(map[K][]ItemFeatureTuple)
	for _, t := range tuples {
		k := key(t)
		groups[k] = append(groups[k], t)
	}
	keys := make([]K, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, groups
}
