package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/weron33/GOG-task/config/builders"
	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pipeline"
	"github.com/weron33/GOG-task/recall"
	"github.com/weron33/GOG-task/store"
)

// catalogRecords 构造 n 个物品，每个物品一条记录，特征随 ID 变化。
func catalogRecords(n int) []core.ItemRecord {
	modes := []string{"Single-player", "Co-op", "Multi-player", "Single-player, Co-op", ""}
	out := make([]core.ItemRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, core.ItemRecord{
			ID:          int64(i),
			Title:       fmt.Sprintf("Game %d", i),
			SeriesID:    int64(i % 4),
			Genre1ID:    int64(i % 3),
			Genre2ID:    int64(i % 5),
			Genre3ID:    int64(i % 2),
			DeveloperID: int64(100 + i%6),
			PublisherID: int64(200 + i%3),
			Price:       float64(5 * i),
			Modes:       modes[i%len(modes)],
		})
	}
	return out
}

var testInteractions = []core.InteractionRecord{
	{UserID: 1, ItemID: 2, Weight: 10},
	{UserID: 1, ItemID: 3, Weight: 4},
	{UserID: 2, ItemID: 3, Weight: 1},
	{UserID: 3, ItemID: 999, Weight: 1}, // 不在目录中
}

func newFitted(t *testing.T, opts ...Option) *Recommender {
	t.Helper()
	r, err := New(opts...)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, testInteractions))
	require.NoError(t, r.Fit(ctx, catalogRecords(15), WithPopularity(testInteractions)))
	return r
}

func isSorted(res []core.NeighborResult) bool {
	return slices.IsSortedFunc(res, func(a, b core.NeighborResult) int {
		if c := cmp.Compare(a.Distance, b.Distance); c != 0 {
			return c
		}
		return cmp.Compare(a.ItemID, b.ItemID)
	})
}

func TestNew_Configuration(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
	}{
		{"unknown metric", []Option{WithMetric("hamming")}},
		{"zero k", []Option{WithTopK(0)}},
		{"negative k", []Option{WithTopK(-3)}},
		{"unknown node", []Option{WithPipeline(&pipeline.Config{Nodes: []pipeline.NodeConfig{{Type: "recall.knn"}, {Type: "rerank.magic"}}})}},
		{"no recall node", []Option{WithPipeline(&pipeline.Config{Nodes: []pipeline.NodeConfig{{Type: "rerank.topn"}}})}},
		{"bad rule", []Option{WithPipeline(&pipeline.Config{Nodes: []pipeline.NodeConfig{
			{Type: "recall.knn"},
			{Type: "filter.rule", Config: map[string]any{"expr": "item.id +"}},
		}})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			require.Error(t, err)
			assert.True(t, core.IsConfigurationError(err), "got %v", err)
		})
	}
}

func TestRecommend_Defaults(t *testing.T) {
	r := newFitted(t)
	assert.Equal(t, "cosine", r.Metric())
	assert.Equal(t, 10, r.TopK())

	res, err := r.GetRecommendations(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, res, 10)
	assert.True(t, isSorted(res))

	// 与直接调用核心组件的结果一致
	profile, err := recall.BuildUserProfile(1, testInteractions, r.Catalog())
	require.NoError(t, err)
	engine, err := recall.NewEngine("cosine", 10)
	require.NoError(t, err)
	assert.Equal(t, engine.Recommend(profile, r.Catalog(), nil), res)
}

func TestRecommend_SmallCatalog(t *testing.T) {
	r, err := New(WithMetric("euclidean"))
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, testInteractions))
	require.NoError(t, r.Fit(ctx, catalogRecords(4)))

	res, err := r.Recommend(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, res, 4)
	assert.True(t, isSorted(res))
}

func TestGetRecommendations_TypeInput(t *testing.T) {
	r := newFitted(t)
	for _, id := range []any{"1", 1.0, nil, true, []int{1}} {
		t.Run(fmt.Sprintf("%T", id), func(t *testing.T) {
			_, err := r.GetRecommendations(context.Background(), id)
			require.Error(t, err)
			assert.True(t, core.IsTypeInputError(err))
		})
	}

	for _, id := range []any{int32(1), int64(1), uint8(1)} {
		res, err := r.GetRecommendations(context.Background(), id)
		require.NoError(t, err)
		assert.Len(t, res, 10)
	}
}

func TestRecommend_NoProfile(t *testing.T) {
	r := newFitted(t)
	for _, uid := range []int64{42, 3} {
		_, err := r.Recommend(context.Background(), uid)
		require.Error(t, err)
		assert.True(t, core.IsNoProfile(err), "user %d: %v", uid, err)
	}
}

func TestRecommend_NotFitted(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	_, err = r.Recommend(context.Background(), 1)
	assert.True(t, core.IsUnavailable(err))
	assert.Nil(t, r.Catalog())
	assert.False(t, r.Status().Fitted)
}

func TestRecommend_ExcludeConsumed(t *testing.T) {
	r := newFitted(t, WithExcludeConsumed(true))
	res, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, res, 10)
	for _, n := range res {
		assert.NotContains(t, []int64{2, 3}, n.ItemID)
	}
}

func TestFit_ExcludedItems(t *testing.T) {
	r, err := New()
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, r.Ingest(ctx, []core.InteractionRecord{{UserID: 9, ItemID: 2}}))
	require.NoError(t, r.Fit(ctx, catalogRecords(15), WithExcludedItems(2, 5)))
	assert.Equal(t, 13, r.Catalog().Len())

	// 只交互过被剔除物品的用户仍有画像
	res, err := r.Recommend(ctx, 9)
	require.NoError(t, err)
	for _, n := range res {
		assert.NotContains(t, []int64{2, 5}, n.ItemID)
	}
}

func TestFit_EmptyKeepsPrevious(t *testing.T) {
	r := newFitted(t)
	err := r.Fit(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
	assert.Equal(t, 15, r.Catalog().Len())
}

func TestRecommend_ConfiguredPipeline(t *testing.T) {
	cfg := &pipeline.Config{
		Name: "filtered",
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.knn"},
			{Type: "filter.rule", Config: map[string]any{"expr": "item.id % 2 == 0"}},
			{Type: "filter.blacklist", Config: map[string]any{"item_ids": []any{4}}},
		},
	}
	r := newFitted(t, WithPipeline(cfg), WithTopK(5))
	res, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, res, 5, "knn ranks the full catalog before filtering")
	assert.True(t, isSorted(res))
	for _, n := range res {
		assert.Zero(t, n.ItemID%2)
		assert.NotEqual(t, int64(4), n.ItemID)
	}
}

func TestRecommend_ConfiguredTopNCappedByK(t *testing.T) {
	cfg := &pipeline.Config{
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.knn"},
			{Type: "rerank.topn", Config: map[string]any{"n": 10}},
		},
	}
	r := newFitted(t, WithPipeline(cfg), WithTopK(3))
	res, err := r.Recommend(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Equal(t, 3, r.Status().TopK)
}

func TestRecommend_Params(t *testing.T) {
	cfg := &pipeline.Config{
		Nodes: []pipeline.NodeConfig{
			{Type: "recall.knn"},
			{Type: "filter.rule", Config: map[string]any{
				"expr": "!has(rctx.params.max_price) || item.features.avg_price <= rctx.params.max_price",
			}},
		},
	}
	r := newFitted(t, WithPipeline(cfg))
	ctx := context.Background()

	res, err := r.GetRecommendations(ctx, 1, WithParams(map[string]any{"max_price": 20.0}))
	require.NoError(t, err)
	require.Len(t, res, 4)
	for _, n := range res {
		assert.LessOrEqual(t, n.ItemID, int64(4))
	}

	res, err = r.Recommend(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, res, 10)
}

// duplicateRows 是同一 (user, item) 的重复交互，每一行都要参与聚合。
var duplicateRows = []core.InteractionRecord{
	{UserID: 1, ItemID: 7, Weight: 2},
	{UserID: 1, ItemID: 7, Weight: 2},
	{UserID: 1, ItemID: 7, Weight: 5},
}

func TestProfile_DuplicateInteractions(t *testing.T) {
	mr := miniredis.RunT(t)
	redisStore, err := store.NewRedisInteractionStore(context.Background(), store.RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)

	stores := map[string]core.InteractionStore{
		"memory": store.NewMemoryInteractionStore(),
		"redis":  redisStore,
	}
	for name, st := range stores {
		t.Run(name, func(t *testing.T) {
			r, err := New(WithStore(st))
			require.NoError(t, err)
			defer r.Close()
			ctx := context.Background()
			require.NoError(t, r.Ingest(ctx, duplicateRows))
			require.NoError(t, r.Fit(ctx, catalogRecords(15)))

			want, err := recall.BuildUserProfile(1, duplicateRows, r.Catalog())
			require.NoError(t, err)
			got, err := r.Profile(ctx, 1)
			require.NoError(t, err)
			assert.Equal(t, want, got)

			res, err := r.Recommend(ctx, 1)
			require.NoError(t, err)
			engine, err := recall.NewEngine("cosine", 10)
			require.NoError(t, err)
			assert.Equal(t, engine.Recommend(want, r.Catalog(), nil), res)
		})
	}
}

func TestPopular(t *testing.T) {
	r := newFitted(t)
	top, err := r.Popular(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []recall.PopularItem{{ItemID: 3, Users: 2}, {ItemID: 2, Users: 1}}, top)
}

func TestRecommend_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := newFitted(t, WithMetrics(m))
	ctx := context.Background()

	_, _ = r.Recommend(ctx, 1)
	_, _ = r.Recommend(ctx, 42)
	_, _ = r.GetRecommendations(ctx, "x")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeNoProfile)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues(OutcomeBadInput)))
	assert.Equal(t, 15.0, testutil.ToFloat64(m.CatalogItems))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Fits))
}

func TestRecommend_ConcurrentWithFit(t *testing.T) {
	r := newFitted(t)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				res, err := r.Recommend(ctx, 1)
				if assert.NoError(t, err) {
					assert.True(t, isSorted(res))
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 5; j++ {
			assert.NoError(t, r.Fit(ctx, catalogRecords(12+j)))
		}
	}()
	wg.Wait()
}
