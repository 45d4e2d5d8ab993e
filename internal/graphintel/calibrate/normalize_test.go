package calibrate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

func edgesWithWeights(ws ...float64) []model.CalibratedEdge {
	out := make([]model.CalibratedEdge, len(ws))
	for i, w := range ws {
		out[i].ID = string(rune('a' + i))
		out[i].Weight = w
	}
	return out
}

func TestNormalizeEdgesPreservesOrder(t *testing.T) {
	cfg := DefaultConfig()
	in := edgesWithWeights(0.9, 0.1, 0.5, 0.3, 0.7)
	out := NormalizeEdges(in, cfg)

	require.Len(t, out, len(in))
	for i := range in {
		for j := range in {
			if in[i].Weight > in[j].Weight {
				require.GreaterOrEqual(t, out[i].Weight, out[j].Weight,
					"raw %v > %v must not invert", in[i].Weight, in[j].Weight)
				require.Greater(t, out[i].Weight, out[j].Weight)
			}
		}
	}
	for _, e := range out {
		require.GreaterOrEqual(t, e.Weight, cfg.WeightRange.Min)
		require.LessOrEqual(t, e.Weight, cfg.WeightRange.Max)
	}
}

func TestNormalizeEdgesTiesShareRank(t *testing.T) {
	out := NormalizeEdges(edgesWithWeights(0.2, 0.5, 0.2, 0.8), DefaultConfig())
	require.Equal(t, out[0].Weight, out[2].Weight)
	require.Less(t, out[0].Weight, out[1].Weight)
	require.Less(t, out[1].Weight, out[3].Weight)
}

func TestNormalizeEdgesExtremesHitRangeBounds(t *testing.T) {
	cfg := DefaultConfig()
	out := NormalizeEdges(edgesWithWeights(0.4, 0.1, 0.9), cfg)
	require.Equal(t, cfg.WeightRange.Min, out[1].Weight)
	require.Equal(t, cfg.WeightRange.Max, out[2].Weight)
}

func TestNormalizeCollapsesWhenFewerThanTwoDistinct(t *testing.T) {
	cfg := DefaultConfig()

	for _, in := range [][]model.CalibratedEdge{
		edgesWithWeights(0.37),
		edgesWithWeights(0.37, 0.37, 0.37),
	} {
		out := NormalizeEdges(in, cfg)
		for _, e := range out {
			require.Equal(t, cfg.WeightRange.Mid(), e.Weight)
		}
	}
}

func TestNormalizeNodesIndependentOfEdges(t *testing.T) {
	cfg := DefaultConfig()
	nodes := []model.CalibratedNode{
		{GraphNode: model.GraphNode{ID: "n1"}, Weight: 10},
		{GraphNode: model.GraphNode{ID: "n2"}, Weight: 2},
		{GraphNode: model.GraphNode{ID: "n3"}, Weight: 5},
	}
	out := NormalizeNodes(nodes, cfg)
	require.Equal(t, cfg.WeightRange.Max, out[0].Weight)
	require.Equal(t, cfg.WeightRange.Min, out[1].Weight)
	require.Equal(t, cfg.WeightRange.Mid(), out[2].Weight)
}

func TestNormalizeEmptyInput(t *testing.T) {
	require.Nil(t, NormalizeEdges(nil, DefaultConfig()))
	require.Nil(t, NormalizeNodes(nil, DefaultConfig()))
}
