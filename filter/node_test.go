package filter

import (
	"bytes"
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weron33/GOG-task/core"
)

func items(distances ...float64) []*core.Item {
	out := make([]*core.Item, len(distances))
	for i, d := range distances {
		it := core.NewItem(int64(i + 1))
		it.Score = d
		it.Features["avg_price"] = float64(10 * (i + 1))
		out[i] = it
	}
	return out
}

func ids(items []*core.Item) []int64 {
	out := make([]int64, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}

func TestFilterNode_Rule(t *testing.T) {
	rule, err := NewRuleFilter("item.distance < 2.0")
	require.NoError(t, err)
	assert.Equal(t, "item.distance < 2.0", rule.Expr())

	node := &FilterNode{Filters: []Filter{rule}}
	out, err := node.Process(context.Background(), &core.RecommendContext{}, items(0.5, 1.0, 2.5, 1.9))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4}, ids(out))
}

func TestFilterNode_Combined(t *testing.T) {
	rule, err := NewRuleFilter("item.features.avg_price <= 30.0")
	require.NoError(t, err)

	node := &FilterNode{Filters: []Filter{NewBlacklistFilter([]int64{2}), rule}}
	out, err := node.Process(context.Background(), nil, items(1, 2, 3, 4))
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 3}, ids(out))
}

func TestFilterNode_RuleErrorKeepsItem(t *testing.T) {
	rule, err := NewRuleFilter("item.features.missing > 1.0")
	require.NoError(t, err)

	var buf bytes.Buffer
	node := &FilterNode{Filters: []Filter{rule}, Log: zerolog.New(&buf)}
	out, err := node.Process(context.Background(), nil, items(1, 2))
	require.NoError(t, err)
	assert.Len(t, out, 2)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2, "one warning per kept item")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, rule.Name(), entry["filter"])
	assert.EqualValues(t, 1, entry["item_id"])
	assert.NotEmpty(t, entry["error"])
}

func TestFilterNode_RuleErrorNopLogger(t *testing.T) {
	rule, err := NewRuleFilter("item.features.missing > 1.0")
	require.NoError(t, err)

	node := &FilterNode{Filters: []Filter{rule}}
	out, err := node.Process(context.Background(), nil, items(1))
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestNewRuleFilter_Invalid(t *testing.T) {
	_, err := NewRuleFilter("item.distance <")
	require.Error(t, err)
	assert.True(t, core.IsConfigurationError(err))
}
