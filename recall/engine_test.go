package recall

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weron33/GOG-task/core"
)

func TestNewEngine_ConfigurationErrors(t *testing.T) {
	tests := []struct {
		name   string
		metric string
		k      int
	}{
		{name: "unknown metric", metric: "hamming", k: 10},
		{name: "zero k", metric: "euclidean", k: 0},
		{name: "negative k", metric: "cosine", k: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine(tt.metric, tt.k)
			require.Error(t, err)
			assert.True(t, core.IsConfigurationError(err))
		})
	}

	_, err := NewEngineWithMetric(nil, 1)
	assert.True(t, core.IsConfigurationError(err))
}

// randomCatalog 生成 n 个物品，每个物品一条记录。
func randomCatalog(t *testing.T, rng *rand.Rand, n int) *CatalogIndex {
	t.Helper()
	modes := []string{"", "Single-player", "Co-op, Multi-player", "Single-player, Multi-player"}
	records := make([]core.ItemRecord, n)
	for i := range records {
		records[i] = core.ItemRecord{
			ID:          int64(i + 1),
			Title:       fmt.Sprintf("game-%d", i),
			SeriesID:    int64(rng.Intn(4)),
			Genre1ID:    int64(rng.Intn(5)),
			Genre2ID:    int64(rng.Intn(5)),
			Genre3ID:    int64(rng.Intn(5)),
			DeveloperID: int64(rng.Intn(6)),
			PublisherID: int64(rng.Intn(6)),
			Price:       float64(rng.Intn(60)),
			Modes:       modes[rng.Intn(len(modes))],
		}
	}
	idx, err := BuildCatalogIndex(records)
	require.NoError(t, err)
	return idx
}

func TestEngine_RecommendLengthAndOrder(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	catalog := randomCatalog(t, rng, 40)
	query, _ := catalog.Vector(3)

	for _, metric := range SupportedMetrics() {
		for _, k := range []int{1, 5, 10, 40, 100} {
			for _, nExclude := range []int{0, 3, 39, 40} {
				t.Run(fmt.Sprintf("%s/k=%d/exclude=%d", metric, k, nExclude), func(t *testing.T) {
					engine, err := NewEngine(metric, k)
					require.NoError(t, err)

					exclude := make(map[int64]struct{}, nExclude)
					for i := 0; i < nExclude; i++ {
						exclude[int64(i+1)] = struct{}{}
					}

					got := engine.Recommend(query, catalog, exclude)
					assert.Len(t, got, min(k, catalog.Len()-nExclude))
					for i := 1; i < len(got); i++ {
						prev, cur := got[i-1], got[i]
						assert.LessOrEqual(t, prev.Distance, cur.Distance)
						if prev.Distance == cur.Distance {
							assert.Less(t, prev.ItemID, cur.ItemID, "ties ordered by item id")
						}
					}
					for _, r := range got {
						assert.NotContains(t, exclude, r.ItemID)
						assert.GreaterOrEqual(t, r.Distance, 0.0)
					}
				})
			}
		}
	}
}

func TestEngine_SelfIdentity(t *testing.T) {
	catalog, err := BuildCatalogIndex(testItems())
	require.NoError(t, err)

	profile, err := BuildUserProfile(1, []core.InteractionRecord{{UserID: 1, ItemID: 7}}, catalog)
	require.NoError(t, err)

	engine, err := NewEngine("euclidean", 10)
	require.NoError(t, err)

	got := engine.Recommend(profile, catalog, nil)
	require.NotEmpty(t, got)
	assert.Equal(t, int64(7), got[0].ItemID)
	assert.Equal(t, 0.0, got[0].Distance)
}

func TestEngine_SmallCatalog(t *testing.T) {
	catalog, err := BuildCatalogIndex(testItems())
	require.NoError(t, err)

	engine, err := NewEngine("cosine", 10)
	require.NoError(t, err)

	got := engine.Recommend(core.ProfileVector{1, 3, 4, 0, 10, 20, 15, 1, 0.5, 0}, catalog, nil)
	assert.Len(t, got, 3)
}

func TestEngine_EmptyAfterExclusion(t *testing.T) {
	catalog, err := BuildCatalogIndex(testItems())
	require.NoError(t, err)

	engine, err := NewEngine("euclidean", 10)
	require.NoError(t, err)

	got := engine.Recommend(core.ProfileVector{}, catalog, map[int64]struct{}{5: {}, 7: {}, 9: {}})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestEngine_TieBreakByItemID(t *testing.T) {
	records := []core.ItemRecord{
		{ID: 30, Genre1ID: 1, Price: 5},
		{ID: 10, Genre1ID: 1, Price: 5},
		{ID: 20, Genre1ID: 1, Price: 5},
	}
	catalog, err := BuildCatalogIndex(records)
	require.NoError(t, err)

	engine, err := NewEngine("manhattan", 2)
	require.NoError(t, err)

	got := engine.Recommend(core.ProfileVector{0, 1, 0, 0, 0, 0, 5}, catalog, nil)
	assert.Equal(t, []core.NeighborResult{{ItemID: 10, Distance: 0}, {ItemID: 20, Distance: 0}}, got)
}
