package core

// RecallConfig 是召回相关的配置接口，用于提供默认值。
type RecallConfig interface {
	// DefaultTopK 返回默认的 TopK 物品数
	DefaultTopK() int

	// DefaultMetric 返回默认的距离度量名称
	DefaultMetric() string
}

// DefaultRecallConfig 是默认的召回配置实现。
type DefaultRecallConfig struct{}

func (c *DefaultRecallConfig) DefaultTopK() int {
	return 10
}

func (c *DefaultRecallConfig) DefaultMetric() string {
	return "cosine"
}
