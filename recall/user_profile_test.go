package recall

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weron33/GOG-task/core"
)

func TestBuildUserProfile(t *testing.T) {
	idx, err := BuildCatalogIndex(testItems())
	require.NoError(t, err)

	interactions := []core.InteractionRecord{
		{UserID: 1, ItemID: 5, Weight: 3.5},
		{UserID: 1, ItemID: 7, Weight: 1},
		{UserID: 1, ItemID: 404, Weight: 9}, // 不在目录中，丢弃
		{UserID: 2, ItemID: 7, Weight: 1},
		{UserID: 3, ItemID: 404, Weight: 1},
	}

	t.Run("joins every sub-listing row", func(t *testing.T) {
		vec, err := BuildUserProfile(1, interactions, idx)
		require.NoError(t, err)
		// 行：5(10), 5(20), 7(30)
		assert.Equal(t, 3.0, vec[core.FieldGenre1])
		assert.Equal(t, 20.0, vec[core.FieldPrice])
		assert.InDelta(t, 2.0/3.0, vec[core.FieldSingleMode], 1e-12)
		assert.InDelta(t, 1.0/3.0, vec[core.FieldMultiMode], 1e-12)
	})

	t.Run("single item equals item profile", func(t *testing.T) {
		vec, err := BuildUserProfile(2, interactions, idx)
		require.NoError(t, err)
		item, _ := idx.Vector(7)
		assert.Equal(t, item, vec)
	})

	t.Run("unmatched interactions yield no profile", func(t *testing.T) {
		_, err := BuildUserProfile(3, interactions, idx)
		require.Error(t, err)
		assert.True(t, core.IsNoProfile(err))
	})

	t.Run("unknown user yields no profile", func(t *testing.T) {
		_, err := BuildUserProfile(99, interactions, idx)
		assert.True(t, core.IsNoProfile(err))
	})
}

func TestBuildUserProfiles(t *testing.T) {
	idx, err := BuildCatalogIndex(testItems())
	require.NoError(t, err)

	profiles, err := BuildUserProfiles([]core.InteractionRecord{
		{UserID: 1, ItemID: 5},
		{UserID: 2, ItemID: 9},
		{UserID: 3, ItemID: 404},
	}, idx)
	require.NoError(t, err)

	assert.Len(t, profiles, 2)
	assert.Contains(t, profiles, int64(1))
	assert.Contains(t, profiles, int64(2))
	assert.NotContains(t, profiles, int64(3), "users without joined rows are absent")
}

func TestBuildUserProfile_FeatureIndexMap(t *testing.T) {
	idx, err := BuildCatalogIndex(testItems())
	require.NoError(t, err)

	fi := FeatureIndex{7: idx.Features(7)}
	vec, err := BuildUserProfile(1, []core.InteractionRecord{{UserID: 1, ItemID: 5}, {UserID: 1, ItemID: 7}}, fi)
	require.NoError(t, err)
	assert.Equal(t, 9.0, vec[core.FieldGenre1])
}
