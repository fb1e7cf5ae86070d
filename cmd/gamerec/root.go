package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/weron33/GOG-task/config"
	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/dataset"
	"github.com/weron33/GOG-task/pkg/logging"
	"github.com/weron33/GOG-task/service"
	"github.com/weron33/GOG-task/store"
)

// flags 是不进入配置文件的命令行参数；其余参数经 config.Load 叠加到配置上。
type flags struct {
	configPath string
	seed       bool
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:          "gamerec",
		Short:        "Content-based game recommender",
		SilenceUsage: true,
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to YAML config")
	pf.BoolVar(&f.seed, "seed", false, "write the interaction table into the redis store before serving")
	pf.String("metric", "", "distance metric (euclidean, cosine, manhattan)")
	pf.IntP("top-k", "k", 0, "number of recommendations")
	pf.String("items", "", "item table (TSV)")
	pf.String("interactions", "", "interaction table (TSV)")
	pf.Bool("exclude-consumed", false, "drop items the user already interacted with")
	pf.String("log-level", "", "log level")

	root.AddCommand(newRecommendCmd(f), newServeCmd(f))
	return root
}

func (f *flags) load(cmd *cobra.Command) (*config.Config, error) {
	return config.Load(f.configPath, cmd.Flags())
}

func openStore(ctx context.Context, cfg config.StoreConfig) (core.InteractionStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "redis":
		return store.NewRedisInteractionStore(ctx, store.RedisOptions{
			Addr:      cfg.Addr,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	case "memory", "":
		return store.NewMemoryInteractionStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// bootstrap 加载数据并完成一次 Fit。
// 内存存储总是灌入交互表；Redis 存储只在 --seed 时灌入。
func bootstrap(ctx context.Context, cfg *config.Config, seed bool, log zerolog.Logger, reg prometheus.Registerer) (*service.Recommender, error) {
	st, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithMetric(cfg.Recall.Metric),
		service.WithTopK(cfg.Recall.TopK),
		service.WithExcludeConsumed(cfg.Recall.ExcludeConsumed),
		service.WithStore(st),
		service.WithLogger(logging.Component(log, "service")),
	}
	if len(cfg.Pipeline.Nodes) > 0 {
		opts = append(opts, service.WithPipeline(&cfg.Pipeline))
	}
	if reg != nil {
		opts = append(opts, service.WithMetrics(service.NewMetrics(reg)))
	}
	rec, err := service.New(opts...)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	snap, err := dataset.LoadAll(ctx, cfg.Data.ItemsPath, cfg.Data.InteractionsPath)
	if err != nil {
		_ = rec.Close()
		return nil, err
	}
	log.Info().
		Int("items", len(snap.Items)).
		Int("interactions", len(snap.Interactions)).
		Str("store", st.Name()).
		Msg("dataset loaded")

	if st.Name() == "memory" || seed {
		if err := rec.Ingest(ctx, snap.Interactions); err != nil {
			_ = rec.Close()
			return nil, err
		}
	}
	if err := rec.Fit(ctx, snap.Items, service.WithPopularity(snap.Interactions)); err != nil {
		_ = rec.Close()
		return nil, err
	}
	return rec, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}
