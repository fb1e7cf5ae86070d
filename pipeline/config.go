package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Config 是 Pipeline 的配置结构（支持 YAML/JSON）。
type Config struct {
	Name  string       `yaml:"name" json:"name" koanf:"name"`
	Nodes []NodeConfig `yaml:"nodes" json:"nodes" koanf:"nodes"`
}

// NodeConfig 是单个 Node 的配置。
type NodeConfig struct {
	Type   string         `yaml:"type" json:"type" koanf:"type"`       // recall.knn / filter.rule / rerank.topn 等
	Config map[string]any `yaml:"config" json:"config" koanf:"config"` // Node 特定配置
}

type fileConfig struct {
	Pipeline Config `yaml:"pipeline" json:"pipeline"`
}

// LoadFromYAML 从 YAML 文件加载 Pipeline 配置（顶层 key 为 pipeline）。
func LoadFromYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	return &fc.Pipeline, nil
}

// LoadFromJSON 从 JSON 文件加载 Pipeline 配置（顶层 key 为 pipeline）。
func LoadFromJSON(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	return &fc.Pipeline, nil
}

// BuildPipeline 根据配置构建 Pipeline（需要 NodeFactory 注册 Node 构建器）。
func (c *Config) BuildPipeline(factory *NodeFactory) (*Pipeline, error) {
	nodes := make([]Node, 0, len(c.Nodes))

	for _, nc := range c.Nodes {
		node, err := factory.Build(nc.Type, nc.Config)
		if err != nil {
			return nil, fmt.Errorf("build node %s: %w", nc.Type, err)
		}
		nodes = append(nodes, node)
	}

	return &Pipeline{Name: c.Name, Nodes: nodes}, nil
}

// HasKind 报告配置中是否有给定前缀（阶段）的节点，例如 "filter."。
func (c *Config) HasKind(kind Kind) bool {
	prefix := string(kind) + "."
	for _, nc := range c.Nodes {
		if strings.HasPrefix(nc.Type, prefix) {
			return true
		}
	}
	return false
}

// NodeBuilder 根据 config 构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)

// NodeFactory 用于根据配置构建 Node 实例。
type NodeFactory struct {
	builders map[string]NodeBuilder
}

func NewNodeFactory() *NodeFactory {
	return &NodeFactory{
		builders: make(map[string]NodeBuilder),
	}
}

// Register 注册 Node 构建器，同名覆盖。
func (f *NodeFactory) Register(nodeType string, builder NodeBuilder) {
	f.builders[nodeType] = builder
}

// Build 根据类型和配置构建 Node。
func (f *NodeFactory) Build(nodeType string, config map[string]any) (Node, error) {
	builder, ok := f.builders[nodeType]
	if !ok {
		return nil, fmt.Errorf("unknown node type: %s", nodeType)
	}
	return builder(config)
}
