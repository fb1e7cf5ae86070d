package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/weron33/GOG-task/pipeline"
)

// EnvPrefix 是环境变量覆盖的前缀。
const EnvPrefix = "GAMEREC_"

// Config 是应用配置。加载顺序：默认值 → YAML 文件 → 环境变量 → 命令行参数。
type Config struct {
	Data     DataConfig      `koanf:"data"`
	Recall   RecallConfig    `koanf:"recall"`
	Store    StoreConfig     `koanf:"store"`
	Server   ServerConfig    `koanf:"server"`
	Log      LogConfig       `koanf:"log"`
	Pipeline pipeline.Config `koanf:"pipeline"`
}

// DataConfig 是物品表与交互表（TSV）的路径。
type DataConfig struct {
	ItemsPath        string `koanf:"items_path"`
	InteractionsPath string `koanf:"interactions_path"`
}

// RecallConfig 是近邻检索配置。
type RecallConfig struct {
	Metric          string `koanf:"metric"`           // euclidean / cosine / manhattan
	TopK            int    `koanf:"top_k"`            // 返回的近邻数
	ExcludeConsumed bool   `koanf:"exclude_consumed"` // 是否排除用户已交互过的物品
}

// StoreConfig 是交互历史存储配置。
type StoreConfig struct {
	Driver    string `koanf:"driver"` // memory / redis
	Addr      string `koanf:"addr"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`
}

// ServerConfig 是 HTTP 服务配置。
type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// LogConfig 是日志配置。
type LogConfig struct {
	Level  string `koanf:"level"`  // debug / info / warn / error
	Format string `koanf:"format"` // json / console
}

// Default 返回默认配置：与原始服务一致，cosine 度量、返回 10 个结果。
func Default() *Config {
	return &Config{
		Data: DataConfig{
			ItemsPath:        "data/product_details.tsv",
			InteractionsPath: "data/user_game_time.tsv",
		},
		Recall: RecallConfig{
			Metric: "cosine",
			TopK:   10,
		},
		Store: StoreConfig{
			Driver:    "memory",
			KeyPrefix: "gamerec:interactions",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info", Format: "json"},
	}
}

// envKeys 把去掉前缀后的环境变量名映射到配置路径，未列出的变量被忽略。
var envKeys = map[string]string{
	"items_path":        "data.items_path",
	"interactions_path": "data.interactions_path",
	"metric":            "recall.metric",
	"top_k":             "recall.top_k",
	"exclude_consumed":  "recall.exclude_consumed",
	"store_driver":      "store.driver",
	"redis_addr":        "store.addr",
	"redis_password":    "store.password",
	"redis_db":          "store.db",
	"redis_key_prefix":  "store.key_prefix",
	"server_addr":       "server.addr",
	"log_level":         "log.level",
	"log_format":        "log.format",
}

// flagKeys 把命令行参数名映射到配置路径。
var flagKeys = map[string]string{
	"metric":           "recall.metric",
	"top-k":            "recall.top_k",
	"items":            "data.items_path",
	"interactions":     "data.interactions_path",
	"exclude-consumed": "recall.exclude_consumed",
	"log-level":        "log.level",
}

// envKey 转换环境变量名：GAMEREC_TOP_K -> recall.top_k
func envKey(key string) string {
	return envKeys[strings.ToLower(strings.TrimPrefix(key, EnvPrefix))]
}

func flagKey(f *pflag.Flag) (string, any) {
	key, ok := flagKeys[f.Name]
	if !ok {
		return "", nil
	}
	return key, f.Value.String()
}

// Load 按默认值、YAML 文件、GAMEREC_* 环境变量、命令行参数的顺序叠加配置。
// path 为空时跳过文件；flags 为 nil 时跳过命令行参数，只有显式设置过的参数才会覆盖。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("load flags: %w", err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate 校验与度量无关的配置项；度量名称与 K 的合法性由检索引擎在构建时校验。
func (c *Config) Validate() error {
	var errs []error
	switch strings.ToLower(c.Store.Driver) {
	case "memory":
	case "redis":
		if c.Store.Addr == "" {
			errs = append(errs, errors.New("store.addr is required for redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store.driver %q", c.Store.Driver))
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		errs = append(errs, fmt.Errorf("unknown log.format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}
