package calibrate

import (
	"math"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// Composite coefficients. direct interaction 不进加权和，只做分类提示。
const (
	coefFlow     = 0.40
	coefTemporal = 0.30
	coefToken    = 0.20
	coefCoverage = 0.10

	// absent temporal evidence counts as a neutral 0.5 sync score
	defaultTemporalScore = 0.5
)

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// log10 一律加 1，避免 0 值落入定义域外。
func logScore(v float64, div float64) float64 {
	if v < 0 {
		v = 0
	}
	return math.Min(1, math.Log10(v+1)/div)
}

// ResolveEdge converts one raw edge's evidence bundle into a calibrated edge.
// Pure and per-edge: safe to fan out across workers.
func ResolveEdge(edge model.RawGraphEdge, coverageFactor float64, cfg Config) model.CalibratedEdge {
	trustFactor := math.Min(edge.FromTrust.Factor(), edge.ToTrust.Factor())

	out := model.CalibratedEdge{
		RawGraphEdge: edge,
		TrustFactor:  trustFactor,
	}

	// 无任何证据：weight=0，低置信，落到行为相似兜底类。
	if edge.Evidence.Empty() {
		out.Type = model.EdgeBehavioralSimilarity
		out.Confidence = model.ConfidenceLow
		return out
	}

	coverage := clamp01(coverageFactor)

	var flow, token, temporal float64
	if ev := edge.Evidence.Flow; ev != nil {
		flow = logScore(ev.SharedVolumeUSD, 7) * clamp01(ev.OverlapRatio) * trustFactor
	}
	if ev := edge.Evidence.Token; ev != nil {
		token = clamp01(ev.JaccardIndex) * math.Min(1, math.Sqrt(float64(len(ev.SharedTokens)))/5)
	}
	temporal = defaultTemporalScore
	if ev := edge.Evidence.Temporal; ev != nil {
		temporal = clamp01(ev.SyncScore)
	}

	raw := coefFlow*flow + coefTemporal*temporal + coefToken*token + coefCoverage*coverage
	out.Weight = clamp01(raw * trustFactor)
	out.Type = classify(edge.Evidence, flow, temporal, token)
	out.Confidence = confidenceTier(edge, out.Weight, coverage, cfg)
	return out
}

// classify picks the evidence category with the largest weighted contribution.
// Direct interaction always wins when present: bridge/direct activity is the
// most diagnostic signal (kept as observed behavior from the source).
func classify(ev model.Evidence, flow, temporal, token float64) model.EdgeType {
	if ev.Direct != nil {
		return model.EdgeBridgeActivity
	}

	best := model.EdgeBehavioralSimilarity
	bestScore := 0.0
	for _, kind := range ev.Kinds() {
		var contrib float64
		var t model.EdgeType
		switch kind {
		case model.KindFlowCorrelation:
			contrib, t = coefFlow*flow, model.EdgeFlowCorrelation
		case model.KindTemporalSync:
			contrib, t = coefTemporal*temporal, model.EdgeTemporalSync
		case model.KindTokenOverlap:
			contrib, t = coefToken*token, model.EdgeTokenOverlap
		case model.KindDirectInteraction:
			continue // handled above
		}
		if contrib > bestScore {
			bestScore = contrib
			best = t
		}
	}
	return best
}

// directScore is the classification-hint score for direct interaction
// evidence. Not part of the composite sum.
func directScore(ev *model.DirectInteraction) float64 {
	if ev == nil {
		return 0
	}
	return (logScore(float64(ev.TxCount), 3) + logScore(ev.VolumeUSD, 7)) / 2
}

func confidenceTier(edge model.RawGraphEdge, weight, coverage float64, cfg Config) model.Confidence {
	bothVerified := edge.FromTrust == model.TrustVerified && edge.ToTrust == model.TrustVerified
	if bothVerified && weight >= cfg.HighConfidence && coverage >= 0.5 {
		return model.ConfidenceHigh
	}
	if weight >= cfg.MediumConfidence && !edge.FromTrust.Lowest() && !edge.ToTrust.Lowest() {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}
