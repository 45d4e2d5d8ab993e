package calibrate

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/web3-graphintel/internal/graphgen"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// Locked pipeline: stage order or formula changes require bumping the
// version constant. If this fails you changed semantics without a bump.
func TestCalibrationVersionPinned(t *testing.T) {
	require.Equal(t, "calibration-pipeline-v2", CalibrationVersion)
}

func TestGraphRejectsNilAndDuplicateIDs(t *testing.T) {
	_, err := Graph(context.Background(), nil, DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidRawGraph)
	require.Equal(t, CodeInvalidRawGraph, ErrCode(err))

	raw := &model.RawGraphSnapshot{
		Nodes: []model.GraphNode{{ID: "dup"}, {ID: "dup"}},
		Edges: []model.RawGraphEdge{},
	}
	_, err = Graph(context.Background(), raw, DefaultConfig())
	require.ErrorIs(t, err, ErrInvalidRawGraph)
}

func TestGraphEmptyEdges(t *testing.T) {
	raw := &model.RawGraphSnapshot{
		Nodes: []model.GraphNode{{ID: "a", Type: model.NodeWallet}, {ID: "b", Type: model.NodeCEX}},
		Edges: []model.RawGraphEdge{},
	}
	snap, err := Graph(context.Background(), raw, DefaultConfig())
	require.NoError(t, err)

	require.Empty(t, snap.Corridors)
	require.Equal(t, 0, snap.Meta.Stats.TotalEdges)
	require.Equal(t, 2, snap.Meta.Stats.TotalNodes)
	require.Zero(t, snap.Meta.Stats.AvgEdgeWeight)
	require.Zero(t, snap.Meta.Stats.AvgConfidence)
	require.Zero(t, snap.Meta.Stats.TopPercentileWeight)
}

func TestGraphDeterministic(t *testing.T) {
	raw := graphgen.New(7).Snapshot(80, 400)
	cfg := DefaultConfig()

	a, err := Graph(context.Background(), raw, cfg)
	require.NoError(t, err)
	b, err := Graph(context.Background(), raw, cfg)
	require.NoError(t, err)

	// identical except the timestamp
	a.Meta.Timestamp = b.Meta.Timestamp
	ja, _ := json.Marshal(a)
	jb, _ := json.Marshal(b)
	require.JSONEq(t, string(ja), string(jb))
}

func TestGraphWeightsWithinRange(t *testing.T) {
	raw := graphgen.New(11).Snapshot(60, 300)
	cfg := DefaultConfig()

	snap, err := Graph(context.Background(), raw, cfg)
	require.NoError(t, err)
	require.NotEmpty(t, snap.Edges)

	for _, e := range snap.Edges {
		require.GreaterOrEqual(t, e.Weight, cfg.WeightRange.Min)
		require.LessOrEqual(t, e.Weight, cfg.WeightRange.Max)
	}
	for _, n := range snap.Nodes {
		require.GreaterOrEqual(t, n.Weight, cfg.WeightRange.Min)
		require.LessOrEqual(t, n.Weight, cfg.WeightRange.Max)
	}
	require.LessOrEqual(t, len(snap.Corridors), len(snap.Edges))
	require.Equal(t, CalibrationVersion, snap.Meta.Version)
}

func TestGraphHighlightedPathNeverAggregated(t *testing.T) {
	raw := graphgen.New(3).Snapshot(40, 200)
	// preserve a handful of edges via the highlighted path metadata
	preserved := []model.EdgeRef{
		{ID: raw.Edges[0].ID}, {ID: raw.Edges[1].ID}, {ID: raw.Edges[2].ID},
	}
	raw.Meta = &model.RawGraphMeta{HighlightedPath: &model.HighlightedPath{Edges: preserved}}

	snap, err := Graph(context.Background(), raw, DefaultConfig())
	require.NoError(t, err)

	for _, c := range snap.Corridors {
		for _, ref := range preserved {
			require.NotContains(t, c.MemberEdgeIDs, ref.ID)
		}
	}
}

func TestTopPercentile(t *testing.T) {
	// 20 values: ceil(20*0.05)-1 = 0 -> the max
	ws := make([]float64, 20)
	for i := range ws {
		ws[i] = float64(i)
	}
	require.Equal(t, 19.0, topPercentile(ws, 0.05))

	// 100 values: index ceil(5)-1 = 4 -> 5th largest
	ws = make([]float64, 100)
	for i := range ws {
		ws[i] = float64(i)
	}
	require.Equal(t, 95.0, topPercentile(ws, 0.05))

	require.Zero(t, topPercentile(nil, 0.05))
}
