package calibrate

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// computeStats summarizes the calibrated graph. An empty edge set yields
// zeroed values, never NaN.
func computeStats(edges []model.CalibratedEdge, nodes []model.CalibratedNode, corridors []model.Corridor) model.CalibrationStats {
	s := model.CalibrationStats{
		TotalEdges:    len(edges),
		TotalNodes:    len(nodes),
		CorridorCount: len(corridors),
		HasCorridors:  len(corridors) > 0,
	}
	if len(edges) == 0 {
		return s
	}

	weights := make([]float64, len(edges))
	confs := make([]float64, len(edges))
	for i, e := range edges {
		weights[i] = e.Weight
		confs[i] = e.Confidence.Score()
	}
	s.AvgEdgeWeight = stat.Mean(weights, nil)
	s.AvgConfidence = stat.Mean(confs, nil)
	s.TopPercentileWeight = topPercentile(weights, 0.05)
	return s
}

// topPercentile: 降序排序后取 index=ceil(n*p)-1；index 为负时退化为最大值。
func topPercentile(weights []float64, p float64) float64 {
	if len(weights) == 0 {
		return 0
	}
	desc := make([]float64, len(weights))
	copy(desc, weights)
	sort.Sort(sort.Reverse(sort.Float64Slice(desc)))

	idx := int(math.Ceil(float64(len(desc))*p)) - 1
	if idx < 0 {
		idx = 0
	}
	return desc[idx]
}
