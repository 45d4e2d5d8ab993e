package model

// EvidenceKind is a closed enum so resolver/explain switches stay exhaustive.
type EvidenceKind int

const (
	KindFlowCorrelation EvidenceKind = iota
	KindTokenOverlap
	KindTemporalSync
	KindDirectInteraction
)

func (k EvidenceKind) String() string {
	switch k {
	case KindFlowCorrelation:
		return "flow_correlation"
	case KindTokenOverlap:
		return "token_overlap"
	case KindTemporalSync:
		return "temporal_sync"
	case KindDirectInteraction:
		return "direct_interaction"
	default:
		return "unknown"
	}
}

// FlowCorrelation: 共享流量 + 重叠率。
type FlowCorrelation struct {
	SharedVolumeUSD float64 `json:"sharedVolumeUsd"`
	OverlapRatio    float64 `json:"overlapRatio"`
}

type TokenOverlap struct {
	SharedTokens []string `json:"sharedTokens"`
	JaccardIndex float64  `json:"jaccardIndex"`
}

type TemporalSync struct {
	SyncScore float64 `json:"syncScore"`
}

// DirectInteraction is classification-only evidence: it hints the edge type
// but never enters the composite weight sum.
type DirectInteraction struct {
	TxCount   int64   `json:"txCount"`
	VolumeUSD float64 `json:"volumeUsd"`
}

// Evidence is the per-edge bundle; each kind is optional.
type Evidence struct {
	Flow     *FlowCorrelation   `json:"flowCorrelation,omitempty"`
	Token    *TokenOverlap      `json:"tokenOverlap,omitempty"`
	Temporal *TemporalSync      `json:"temporalSync,omitempty"`
	Direct   *DirectInteraction `json:"directInteraction,omitempty"`
}

// Empty reports whether the bundle carries no evidence at all.
func (e Evidence) Empty() bool {
	return e.Flow == nil && e.Token == nil && e.Temporal == nil && e.Direct == nil
}

// Kinds returns the present evidence kinds in declaration order.
func (e Evidence) Kinds() []EvidenceKind {
	var out []EvidenceKind
	if e.Flow != nil {
		out = append(out, KindFlowCorrelation)
	}
	if e.Token != nil {
		out = append(out, KindTokenOverlap)
	}
	if e.Temporal != nil {
		out = append(out, KindTemporalSync)
	}
	if e.Direct != nil {
		out = append(out, KindDirectInteraction)
	}
	return out
}
