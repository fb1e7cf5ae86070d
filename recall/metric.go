package recall

import (
	"math"
	"sort"
	"strings"

	"github.com/weron33/GOG-task/core"
)

// Metric 是距离度量能力接口：输入两个等长向量，返回非负距离，0 表示完全相同。
type Metric interface {
	Name() string
	Distance(a, b []float64) float64
}

// MetricType 距离度量类型（用于类型安全）
type MetricType string

const (
	MetricEuclidean MetricType = "euclidean"
	MetricCosine    MetricType = "cosine"
	MetricManhattan MetricType = "manhattan"
)

// 内置度量是固定的小集合，不做开放式注册。
var builtinMetrics = map[MetricType]Metric{
	MetricEuclidean: euclidean{},
	MetricCosine:    cosine{},
	MetricManhattan: manhattan{},
}

// ParseMetric 按名称查找内置度量（不区分大小写），未知名称返回配置错误。
func ParseMetric(name string) (Metric, error) {
	m, ok := builtinMetrics[MetricType(strings.ToLower(strings.TrimSpace(name)))]
	if !ok {
		return nil, core.NewConfigurationError(core.ModuleRecall,
			"unknown metric "+name+" (supported: "+strings.Join(SupportedMetrics(), ", ")+")")
	}
	return m, nil
}

// SupportedMetrics 返回内置度量名称（排序）。
func SupportedMetrics() []string {
	names := make([]string, 0, len(builtinMetrics))
	for name := range builtinMetrics {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

type euclidean struct{}

func (euclidean) Name() string { return string(MetricEuclidean) }

func (euclidean) Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		diff := a[i] - b[i]
		sum += diff * diff
	}
	return math.Sqrt(sum)
}

type manhattan struct{}

func (manhattan) Name() string { return string(MetricManhattan) }

func (manhattan) Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		sum += math.Abs(a[i] - b[i])
	}
	return sum
}

// cosine 距离 = 1 - 余弦相似度，结果落在 [0, 2]。
// 两个零向量视为相同（0），只有一个为零向量时视为无关（1）。
type cosine struct{}

func (cosine) Name() string { return string(MetricCosine) }

func (cosine) Distance(a, b []float64) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	switch {
	case normA == 0 && normB == 0:
		return 0
	case normA == 0 || normB == 0:
		return 1
	}
	d := 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	// 浮点误差可能产生极小的负数
	return math.Min(math.Max(d, 0), 2)
}
