package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weron33/GOG-task/core"
	"github.com/weron33/GOG-task/pkg/utils"
)

func TestRule_Match(t *testing.T) {
	item := core.NewItem(7)
	item.Score = 1.5
	item.Features["avg_price"] = 19.99
	item.PutLabel("recall_source", utils.Label{Value: "knn", Source: "recall"})
	rctx := &core.RecommendContext{UserID: 9, Params: map[string]any{"max_price": 25.0}}

	tests := []struct {
		expr string
		want bool
	}{
		{expr: "item.distance < 2.0", want: true},
		{expr: "item.distance < 1.0", want: false},
		{expr: "item.id == 7", want: true},
		{expr: `label.recall_source == "knn"`, want: true},
		{expr: "item.features.avg_price <= rctx.params.max_price", want: true},
		{expr: "rctx.user_id == 9 && item.features.avg_price > 20.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			rule, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := rule.Match(item, rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile("item.distance <")
	assert.Error(t, err)

	_, err = Compile(`"not a bool"`)
	assert.Error(t, err)
}

func TestRule_MissingKey(t *testing.T) {
	rule, err := Compile("item.features.unknown > 1.0")
	require.NoError(t, err)

	_, err = rule.Match(core.NewItem(1), nil)
	assert.Error(t, err)
}
