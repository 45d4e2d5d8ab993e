package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/cache"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/calibrate"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/explain"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
	"github.com/chenzhangda16/web3-graphintel/pkg/obs"
)

type calibrateRequest struct {
	Route       string                  `json:"route"`
	Snapshot    *model.RawGraphSnapshot `json:"snapshot"`
	RiskSummary *model.RiskSummary      `json:"riskSummary,omitempty"`
	Truncated   bool                    `json:"truncated"`
	Config      *calibrate.Config       `json:"config,omitempty"`
	NoCache     bool                    `json:"noCache,omitempty"`
}

type calibrateResponse struct {
	Route    string                         `json:"route"`
	Cached   bool                           `json:"cached"`
	Snapshot *model.CalibratedGraphSnapshot `json:"snapshot"`
	Explain  *model.ExplainBlock            `json:"explain,omitempty"`
}

func (s *Server) calibrate(c *gin.Context) {
	var req calibrateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "code": calibrate.CodeInvalidRawGraph, "error": err.Error()})
		return
	}

	cfg := s.calibration
	if req.Config != nil {
		// 自定义 config 不走缓存：key 只按 route/mode 区分
		cfg = *req.Config
		req.NoCache = true
	}

	mode := "full"
	if req.Truncated {
		mode = "truncated"
	}
	key := cache.SnapshotKey("connections", req.Route, mode, calibrate.CalibrationVersion)
	now := time.Now().Unix()

	if s.cache != nil && !req.NoCache && req.Route != "" {
		if payload, ok, err := s.cache.Get(key, now); err == nil && ok {
			var hit calibrateResponse
			if json.Unmarshal(payload, &hit) == nil {
				hit.Cached = true
				c.JSON(http.StatusOK, hit)
				return
			}
		}
	}

	snap, err := calibrate.Graph(c.Request.Context(), req.Snapshot, cfg)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, calibrate.ErrInvalidRawGraph) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"ok": false, "code": calibrate.ErrCode(err), "error": err.Error()})
		return
	}

	res := calibrateResponse{Route: req.Route, Snapshot: snap}
	if req.RiskSummary != nil {
		block := explain.Generate(req.RiskSummary, snap.Edges, req.Truncated)
		res.Explain = &block
	}

	if s.cache != nil && !req.NoCache && req.Route != "" {
		if payload, err := json.Marshal(res); err == nil {
			_ = s.cache.Evict(now)
			if err := s.cache.Put(key, payload, now, s.ttlSec); err != nil {
				obs.L("api").Warnw("cache put failed", "route", req.Route, "err", err)
			}
		}
	}

	c.JSON(http.StatusOK, res)
}

type explainRequest struct {
	Summary   *model.RiskSummary     `json:"summary"`
	Edges     []model.CalibratedEdge `json:"edges"`
	Truncated bool                   `json:"truncated"`
}

func (s *Server) explain(c *gin.Context) {
	var req explainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}
	// explain never fails: missing fields degrade to neutral values
	block := explain.Generate(req.Summary, req.Edges, req.Truncated)
	c.JSON(http.StatusOK, block)
}
