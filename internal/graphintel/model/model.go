package model

import "time"

// NodeType 是上游构图层给出的 actor 分类；calibration 内部只读。
type NodeType string

const (
	NodeWallet         NodeType = "WALLET"
	NodeToken          NodeType = "TOKEN"
	NodeBridge         NodeType = "BRIDGE"
	NodeDEX            NodeType = "DEX"
	NodeCEX            NodeType = "CEX"
	NodeContract       NodeType = "CONTRACT"
	NodeCrossChainExit NodeType = "CROSS_CHAIN_EXIT"
)

// TrustLevel reflects how the endpoint identity was established upstream.
type TrustLevel string

const (
	TrustUnverified TrustLevel = "unverified"
	TrustBehavioral TrustLevel = "behavioral"
	TrustVerified   TrustLevel = "verified"
)

// Factor maps a trust level to a multiplicative discount in (0,1].
// Unknown levels are treated as unverified.
func (t TrustLevel) Factor() float64 {
	switch t {
	case TrustVerified:
		return 1.0
	case TrustBehavioral:
		return 0.7
	default:
		return 0.4
	}
}

// Lowest reports whether the level is the bottom trust tier.
func (t TrustLevel) Lowest() bool {
	return t != TrustVerified && t != TrustBehavioral
}

// EdgeType is the primary classification of a calibrated edge.
// DEPOSIT/SWAP/BRIDGE are transfer-level labels assigned upstream and are
// only consumed by the explain rule table, never produced by the resolver.
type EdgeType string

const (
	EdgeFlowCorrelation      EdgeType = "FLOW_CORRELATION"
	EdgeTokenOverlap         EdgeType = "TOKEN_OVERLAP"
	EdgeTemporalSync         EdgeType = "TEMPORAL_SYNC"
	EdgeBridgeActivity       EdgeType = "BRIDGE_ACTIVITY"
	EdgeBehavioralSimilarity EdgeType = "BEHAVIORAL_SIMILARITY"

	EdgeDeposit EdgeType = "DEPOSIT"
	EdgeSwap    EdgeType = "SWAP"
	EdgeBridge  EdgeType = "BRIDGE"
)

// Confidence 粗分三档；数值阈值见 calibrate.Config。
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Score maps a tier to a scalar for averaging in snapshot stats.
func (c Confidence) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.66
	default:
		return 0.33
	}
}

// GraphNode is built upstream (id = type+chain+address) and is immutable here.
type GraphNode struct {
	ID        string   `json:"id"`
	Type      NodeType `json:"type"`
	Label     string   `json:"label,omitempty"`
	RiskLevel string   `json:"riskLevel,omitempty"`
}

type RawGraphEdge struct {
	ID        string     `json:"id"`
	From      string     `json:"from"`
	To        string     `json:"to"`
	Evidence  Evidence   `json:"evidence"`
	FromTrust TrustLevel `json:"fromTrust"`
	ToTrust   TrustLevel `json:"toTrust"`
	VolumeUSD float64    `json:"volumeUsd,omitempty"`
}

// CalibratedEdge is the raw edge plus the resolver outputs.
type CalibratedEdge struct {
	RawGraphEdge

	Weight      float64    `json:"weight"`
	Type        EdgeType   `json:"edgeType"`
	TrustFactor float64    `json:"trustFactor"`
	Confidence  Confidence `json:"confidence"`
}

type CalibratedNode struct {
	GraphNode

	Weight float64 `json:"weight"`
}

// Corridor groups low-significance edges sharing an endpoint-pair family
// into one unit. Preserved edge ids never appear in MemberEdgeIDs.
type Corridor struct {
	ID            string   `json:"id"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	Weight        float64  `json:"weight"`
	VolumeUSD     float64  `json:"volumeUsd"`
	MemberEdgeIDs []string `json:"memberEdgeIds"`
}

// HighlightedPath 由调用方在 raw metadata 里携带：这些边永远不会被聚合掉。
type HighlightedPath struct {
	Edges []EdgeRef `json:"edges"`
}

type EdgeRef struct {
	ID string `json:"id"`
}

type RawGraphMeta struct {
	HighlightedPath *HighlightedPath `json:"highlightedPath,omitempty"`
}

// RawGraphSnapshot is the immutable per-request input from the query layer.
type RawGraphSnapshot struct {
	Nodes []GraphNode    `json:"nodes"`
	Edges []RawGraphEdge `json:"edges"`
	Meta  *RawGraphMeta  `json:"metadata,omitempty"`
}

type CalibrationStats struct {
	TotalEdges          int     `json:"totalEdges"`
	TotalNodes          int     `json:"totalNodes"`
	AvgEdgeWeight       float64 `json:"avgEdgeWeight"`
	AvgConfidence       float64 `json:"avgConfidence"`
	TopPercentileWeight float64 `json:"topPercentileWeight"`
	CorridorCount       int     `json:"corridorCount"`
	HasCorridors        bool    `json:"hasCorridors"`
}

// CalibrationMeta.Version is a contract with downstream consumers: a bump
// means weight/ordering semantics changed and cached snapshots are stale.
type CalibrationMeta struct {
	Timestamp  time.Time        `json:"timestamp"`
	Version    string           `json:"version"`
	Parameters map[string]any   `json:"parameters"`
	Stats      CalibrationStats `json:"stats"`
}

// CalibratedGraphSnapshot is only ever produced by calibrate.Graph;
// it is immutable once returned.
type CalibratedGraphSnapshot struct {
	Nodes     []CalibratedNode `json:"nodes"`
	Edges     []CalibratedEdge `json:"edges"`
	Corridors []Corridor       `json:"corridors"`
	Meta      CalibrationMeta  `json:"calibrationMeta"`
}

// PreserveEdgeIDs collects the highlighted-path edge ids, if any.
func (s *RawGraphSnapshot) PreserveEdgeIDs() map[string]struct{} {
	if s == nil || s.Meta == nil || s.Meta.HighlightedPath == nil {
		return nil
	}
	out := make(map[string]struct{}, len(s.Meta.HighlightedPath.Edges))
	for _, ref := range s.Meta.HighlightedPath.Edges {
		if ref.ID != "" {
			out[ref.ID] = struct{}{}
		}
	}
	return out
}
