package calibrate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

func dustEdge(id, from, to string, weight, volume float64) model.CalibratedEdge {
	return model.CalibratedEdge{
		RawGraphEdge: model.RawGraphEdge{ID: id, From: from, To: to, VolumeUSD: volume},
		Weight:       weight,
	}
}

func TestAggregateDisabled(t *testing.T) {
	edges := []model.CalibratedEdge{dustEdge("e1", "a", "b", 0.001, 100)}
	require.Nil(t, AggregateCorridors(edges, AggregateOptions{Enabled: false, MinWeight: 0.01}))
}

func TestAggregateDustFoldsPreservedDoesNot(t *testing.T) {
	edges := []model.CalibratedEdge{
		dustEdge("dust-1", "a", "b", 0.005, 10),
		dustEdge("kept-1", "c", "d", 0.005, 10),
	}
	out := AggregateCorridors(edges, AggregateOptions{
		Enabled:         true,
		MinWeight:       0.01,
		PreserveEdgeIDs: map[string]struct{}{"kept-1": {}},
	})

	require.Len(t, out, 1)
	require.Equal(t, []string{"dust-1"}, out[0].MemberEdgeIDs)

	// the preserved edge has identical weight yet appears in no corridor
	for _, c := range out {
		require.NotContains(t, c.MemberEdgeIDs, "kept-1")
	}
}

func TestAggregateGroupsByEndpointPairFamily(t *testing.T) {
	edges := []model.CalibratedEdge{
		dustEdge("e1", "a", "b", 0.002, 100),
		dustEdge("e2", "b", "a", 0.003, 50), // reverse direction, same family
		dustEdge("e3", "a", "b", 0.5, 1000), // non-dust but shares the family
		dustEdge("e4", "x", "y", 0.9, 999),  // non-dust, own family: no corridor
	}
	out := AggregateCorridors(edges, AggregateOptions{Enabled: true, MinWeight: 0.01})

	require.Len(t, out, 1)
	c := out[0]
	require.ElementsMatch(t, []string{"e1", "e2", "e3"}, c.MemberEdgeIDs)
	// volume conservation: corridor volume equals the sum of its members
	require.InDelta(t, 1150.0, c.VolumeUSD, 1e-9)
	require.InDelta(t, 0.505, c.Weight, 1e-9)
	require.Equal(t, "a", c.From)
	require.Equal(t, "b", c.To)
}

func TestAggregateNeverExceedsEdgeCount(t *testing.T) {
	var edges []model.CalibratedEdge
	for i := 0; i < 50; i++ {
		from := string(rune('a' + i%7))
		to := string(rune('a' + (i+1)%7))
		edges = append(edges, dustEdge(string(rune('A'+i)), from, to, float64(i)/100, 1))
	}
	out := AggregateCorridors(edges, AggregateOptions{Enabled: true, MinWeight: 0.1})
	require.LessOrEqual(t, len(out), len(edges))
}

func TestAggregateDeterministicOrder(t *testing.T) {
	edges := []model.CalibratedEdge{
		dustEdge("e1", "z", "y", 0.001, 1),
		dustEdge("e2", "a", "b", 0.001, 1),
		dustEdge("e3", "m", "n", 0.001, 1),
	}
	opts := AggregateOptions{Enabled: true, MinWeight: 0.01}
	first := AggregateCorridors(edges, opts)
	for i := 0; i < 10; i++ {
		require.Equal(t, first, AggregateCorridors(edges, opts))
	}
}
