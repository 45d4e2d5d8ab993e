package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/cache"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/calibrate"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

func init() { gin.SetMode(gin.TestMode) }

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func smallSnapshot() *model.RawGraphSnapshot {
	return &model.RawGraphSnapshot{
		Nodes: []model.GraphNode{
			{ID: "w1", Type: model.NodeWallet},
			{ID: "cex1", Type: model.NodeCEX},
		},
		Edges: []model.RawGraphEdge{
			{
				ID: "e1", From: "w1", To: "cex1",
				FromTrust: model.TrustVerified, ToTrust: model.TrustVerified,
				VolumeUSD: 500,
				Evidence: model.Evidence{
					Flow: &model.FlowCorrelation{SharedVolumeUSD: 100_000, OverlapRatio: 0.7},
				},
			},
		},
	}
}

func TestHealth(t *testing.T) {
	s := NewServer(calibrate.DefaultConfig(), nil, 0)
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, true, body["ok"])
	require.Equal(t, calibrate.CalibrationVersion, body["version"])
}

func TestCalibrateEndpoint(t *testing.T) {
	s := NewServer(calibrate.DefaultConfig(), nil, 0)

	w := postJSON(t, s.Handler(), "/api/connections/calibrate", calibrateRequest{
		Route:    "w1->cex1",
		Snapshot: smallSnapshot(),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var res calibrateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.False(t, res.Cached)
	require.NotNil(t, res.Snapshot)
	require.Len(t, res.Snapshot.Edges, 1)
	require.Equal(t, calibrate.CalibrationVersion, res.Snapshot.Meta.Version)
	require.Nil(t, res.Explain)
}

func TestCalibrateEndpointInvalidGraph(t *testing.T) {
	s := NewServer(calibrate.DefaultConfig(), nil, 0)

	w := postJSON(t, s.Handler(), "/api/connections/calibrate", calibrateRequest{
		Route: "dup",
		Snapshot: &model.RawGraphSnapshot{
			Nodes: []model.GraphNode{{ID: "x"}, {ID: "x"}},
			Edges: []model.RawGraphEdge{},
		},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, calibrate.CodeInvalidRawGraph, body["code"])
}

func TestCalibrateEndpointCacheAside(t *testing.T) {
	mem := cache.NewMemory(8)
	defer mem.Close()
	s := NewServer(calibrate.DefaultConfig(), mem, 300)

	req := calibrateRequest{Route: "w1->cex1", Snapshot: smallSnapshot()}

	w := postJSON(t, s.Handler(), "/api/connections/calibrate", req)
	require.Equal(t, http.StatusOK, w.Code)
	var first calibrateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	require.False(t, first.Cached)

	w = postJSON(t, s.Handler(), "/api/connections/calibrate", req)
	require.Equal(t, http.StatusOK, w.Code)
	var second calibrateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	require.True(t, second.Cached)
	require.Equal(t, first.Snapshot.Meta.Timestamp, second.Snapshot.Meta.Timestamp)
}

func TestCalibrateEndpointCustomConfigSkipsCache(t *testing.T) {
	mem := cache.NewMemory(8)
	defer mem.Close()
	s := NewServer(calibrate.DefaultConfig(), mem, 300)

	cfg := calibrate.DefaultConfig()
	req := calibrateRequest{Route: "custom", Snapshot: smallSnapshot(), Config: &cfg}

	for i := 0; i < 2; i++ {
		w := postJSON(t, s.Handler(), "/api/connections/calibrate", req)
		require.Equal(t, http.StatusOK, w.Code)
		var res calibrateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.False(t, res.Cached)
	}
}

func TestExplainEndpointNeverFails(t *testing.T) {
	s := NewServer(calibrate.DefaultConfig(), nil, 0)

	// empty body fields: neutral defaults, empty block
	w := postJSON(t, s.Handler(), "/api/connections/explain", explainRequest{})
	require.Equal(t, http.StatusOK, w.Code)

	w = postJSON(t, s.Handler(), "/api/connections/explain", explainRequest{
		Summary:   &model.RiskSummary{DumpRiskScore: 90, ExitProbability: 0.8, MarketRegime: model.RegimeStressed},
		Truncated: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var block model.ExplainBlock
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &block))
	require.Len(t, block.Reasons, 4)
	require.Equal(t, "TRUNCATED_GRAPH", block.Reasons[3].Code)
}
