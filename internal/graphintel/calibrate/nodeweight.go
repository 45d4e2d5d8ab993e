package calibrate

import "github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"

// ResolveNodes aggregates calibrated edge weights per node and applies the
// node-type multiplier. One O(E) pass over the edges builds the incident-sum
// index; per-node work is O(1). Re-scanning the edge list per node is a
// design bug, not an optimization opportunity.
func ResolveNodes(nodes []model.GraphNode, edges []model.CalibratedEdge, cfg Config) []model.CalibratedNode {
	incident := make(map[string]float64, len(nodes))
	for _, e := range edges {
		incident[e.From] += e.Weight
		incident[e.To] += e.Weight
	}

	out := make([]model.CalibratedNode, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, model.CalibratedNode{
			GraphNode: n,
			Weight:    incident[n.ID] * cfg.multiplier(n.Type),
		})
	}
	return out
}
