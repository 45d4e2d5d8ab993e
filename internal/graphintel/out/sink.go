package out

import (
	"context"
	"encoding/json"
)

// Message types carried in the envelope.
const (
	TypeCalibratedSnapshot = "calibrated_snapshot"
	TypeRiskExplain        = "risk_explain"
	TypeRawGraph           = "raw_graph"
)

type Envelope struct {
	Type string          `json:"type"`
	TS   int64           `json:"ts"` // unix milli
	Data json.RawMessage `json:"data"`
}

// Sink delivers calibrated snapshots and explain alerts downstream.
type Sink interface {
	Emit(ctx context.Context, typ string, v any) error
	Close() error
}
