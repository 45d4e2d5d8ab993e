// Package api exposes the connections endpoints the frontend consumes.
// Thin layer: decode, cache-aside, delegate to calibrate/explain, encode.
package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/cache"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/calibrate"
)

type Server struct {
	engine *gin.Engine

	calibration calibrate.Config
	cache       cache.Cache // may be nil
	ttlSec      int64
}

func NewServer(calibration calibrate.Config, c cache.Cache, ttlSec int64) *Server {
	if ttlSec <= 0 {
		ttlSec = 300
	}
	s := &Server{
		engine:      gin.New(),
		calibration: calibration,
		cache:       c,
		ttlSec:      ttlSec,
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type"},
	}))

	s.engine.GET("/api/health", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	conn := s.engine.Group("/api/connections")
	conn.POST("/calibrate", s.calibrate)
	conn.POST("/explain", s.explain)

	return s
}

func (s *Server) Run(addr string) error { return s.engine.Run(addr) }

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.engine }

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"service": "graphintel",
		"version": calibrate.CalibrationVersion,
	})
}
