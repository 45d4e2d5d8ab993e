package calibrate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

func TestResolveNodesSumsIncidentWeights(t *testing.T) {
	nodes := []model.GraphNode{
		{ID: "w1", Type: model.NodeWallet},
		{ID: "cex", Type: model.NodeCEX},
		{ID: "lonely", Type: model.NodeWallet},
	}
	edges := []model.CalibratedEdge{
		{RawGraphEdge: model.RawGraphEdge{ID: "e1", From: "w1", To: "cex"}, Weight: 0.4},
		{RawGraphEdge: model.RawGraphEdge{ID: "e2", From: "cex", To: "w1"}, Weight: 0.2},
	}
	cfg := DefaultConfig()
	out := ResolveNodes(nodes, edges, cfg)

	require.Len(t, out, 3)
	require.InDelta(t, 0.6, out[0].Weight, 1e-9) // wallet multiplier 1.0
	require.InDelta(t, 0.6*1.3, out[1].Weight, 1e-9)
	require.Zero(t, out[2].Weight)
}

func TestResolveNodesUnknownTypeDefaultsToOne(t *testing.T) {
	nodes := []model.GraphNode{{ID: "n", Type: "SOMETHING_NEW"}}
	edges := []model.CalibratedEdge{
		{RawGraphEdge: model.RawGraphEdge{ID: "e", From: "n", To: "other"}, Weight: 0.5},
	}
	out := ResolveNodes(nodes, edges, DefaultConfig())
	require.InDelta(t, 0.5, out[0].Weight, 1e-9)
}
