package calibrate

import "github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"

// WeightRange is the target range quantile normalization maps into.
type WeightRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

func (r WeightRange) Mid() float64 { return (r.Min + r.Max) / 2 }

// Config carries every knob of the pipeline. 源实现把 dust/confidence 阈值散落在
// 各调用点当常量；这里统一提升成配置项，数值保持原样。
type Config struct {
	NormalizationStrategy  string                     `json:"normalizationStrategy"`
	WeightRange            WeightRange                `json:"weightRange"`
	MinConfidenceThreshold float64                    `json:"minConfidenceThreshold"`
	NodeTypeMultipliers    map[model.NodeType]float64 `json:"nodeTypeMultipliers"`

	// CoverageFactor feeds the composite edge weight (0.10 coefficient).
	CoverageFactor float64 `json:"coverageFactor"`

	// HighConfidence / MediumConfidence gate the confidence tiers.
	HighConfidence   float64 `json:"highConfidence"`
	MediumConfidence float64 `json:"mediumConfidence"`

	// Corridor aggregation knobs.
	CorridorsEnabled  bool    `json:"corridorsEnabled"`
	MinCorridorWeight float64 `json:"minCorridorWeight"`
}

// DefaultConfig returns the policy the original service shipped with.
func DefaultConfig() Config {
	return Config{
		NormalizationStrategy:  "quantile",
		WeightRange:            WeightRange{Min: 0.05, Max: 1.0},
		MinConfidenceThreshold: 0.1,
		NodeTypeMultipliers: map[model.NodeType]float64{
			model.NodeCEX:            1.3,
			model.NodeBridge:         1.2,
			model.NodeCrossChainExit: 1.2,
			model.NodeDEX:            1.1,
			model.NodeWallet:         1.0,
			model.NodeContract:       0.9,
			model.NodeToken:          0.8,
		},
		CoverageFactor:    0.5,
		HighConfidence:    0.6,
		MediumConfidence:  0.4,
		CorridorsEnabled:  true,
		MinCorridorWeight: 0.01,
	}
}

// withDefaults fills zero-valued fields so a partially built Config behaves.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.NormalizationStrategy == "" {
		c.NormalizationStrategy = def.NormalizationStrategy
	}
	if c.WeightRange.Min == 0 && c.WeightRange.Max == 0 {
		c.WeightRange = def.WeightRange
	}
	if c.NodeTypeMultipliers == nil {
		c.NodeTypeMultipliers = def.NodeTypeMultipliers
	}
	if c.CoverageFactor == 0 {
		c.CoverageFactor = def.CoverageFactor
	}
	if c.HighConfidence == 0 {
		c.HighConfidence = def.HighConfidence
	}
	if c.MediumConfidence == 0 {
		c.MediumConfidence = def.MediumConfidence
	}
	if c.MinCorridorWeight == 0 {
		c.MinCorridorWeight = def.MinCorridorWeight
	}
	return c
}

// multiplier returns the node-type multiplier, 1.0 when the type is absent.
func (c Config) multiplier(t model.NodeType) float64 {
	if m, ok := c.NodeTypeMultipliers[t]; ok {
		return m
	}
	return 1.0
}

// parameters flattens the config for CalibrationMeta.Parameters.
func (c Config) parameters() map[string]any {
	return map[string]any{
		"normalizationStrategy":  c.NormalizationStrategy,
		"weightRange":            c.WeightRange,
		"minConfidenceThreshold": c.MinConfidenceThreshold,
		"coverageFactor":         c.CoverageFactor,
		"highConfidence":         c.HighConfidence,
		"mediumConfidence":       c.MediumConfidence,
		"corridorsEnabled":       c.CorridorsEnabled,
		"minCorridorWeight":      c.MinCorridorWeight,
	}
}
