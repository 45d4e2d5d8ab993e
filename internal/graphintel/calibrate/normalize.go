package calibrate

import (
	"sort"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// quantileRanks assigns each value its quantile rank in [0,1], ties sharing
// the midpoint rank of their run. Returns nil when fewer than 2 distinct
// values exist (caller collapses to the range midpoint).
//
// 排序 + 中点秩：保证严格单调——raw 更大的值 normalized 不会更小。
func quantileRanks(values []float64) []float64 {
	n := len(values)
	if n == 0 {
		return nil
	}

	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	distinct := 1
	for i := 1; i < n; i++ {
		if values[idx[i]] != values[idx[i-1]] {
			distinct++
		}
	}
	if distinct < 2 {
		return nil
	}

	ranks := make([]float64, n)
	denom := float64(n - 1)
	for i := 0; i < n; {
		j := i
		for j < n && values[idx[j]] == values[idx[i]] {
			j++
		}
		// tie run [i, j): midpoint rank
		mid := (float64(i) + float64(j-1)) / 2
		for k := i; k < j; k++ {
			ranks[idx[k]] = mid / denom
		}
		i = j
	}
	return ranks
}

func mapRank(r float64, wr WeightRange) float64 {
	return wr.Min + r*(wr.Max-wr.Min)
}

// NormalizeEdges maps the edge-weight distribution into cfg.WeightRange,
// preserving rank order. The input slice is not mutated.
func NormalizeEdges(edges []model.CalibratedEdge, cfg Config) []model.CalibratedEdge {
	if len(edges) == 0 {
		return nil
	}
	values := make([]float64, len(edges))
	for i, e := range edges {
		values[i] = e.Weight
	}
	ranks := quantileRanks(values)

	out := make([]model.CalibratedEdge, len(edges))
	copy(out, edges)
	for i := range out {
		if ranks == nil {
			out[i].Weight = cfg.WeightRange.Mid()
		} else {
			out[i].Weight = mapRank(ranks[i], cfg.WeightRange)
		}
	}
	return out
}

// NormalizeNodes is the same transform over the node-weight distribution,
// computed independently of the edge distribution.
func NormalizeNodes(nodes []model.CalibratedNode, cfg Config) []model.CalibratedNode {
	if len(nodes) == 0 {
		return nil
	}
	values := make([]float64, len(nodes))
	for i, n := range nodes {
		values[i] = n.Weight
	}
	ranks := quantileRanks(values)

	out := make([]model.CalibratedNode, len(nodes))
	copy(out, nodes)
	for i := range out {
		if ranks == nil {
			out[i].Weight = cfg.WeightRange.Mid()
		} else {
			out[i].Weight = mapRank(ranks[i], cfg.WeightRange)
		}
	}
	return out
}
