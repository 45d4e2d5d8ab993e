// Package ingest is the streaming entry point: it consumes raw graph
// snapshots from Kafka, runs the calibration pipeline and the explain
// engine, then fans results out to the cache, Postgres, and the downstream
// sink. Truncation happens upstream; the producer sets Truncated on the
// request and we pass it straight to the explain engine so its output stays
// consistent with what was actually computed.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/cache"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/calibrate"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/explain"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/out"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/retry"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/writer"
	"github.com/chenzhangda16/web3-graphintel/pkg/obs"
)

// Request is the unit consumed from the raw-graph topic.
type Request struct {
	Route       string                  `json:"route"` // e.g. "wallet:eth:0xabc..." or a saved query id
	Snapshot    *model.RawGraphSnapshot `json:"snapshot"`
	RiskSummary *model.RiskSummary      `json:"riskSummary,omitempty"`
	Truncated   bool                    `json:"truncated"`
	TTLSec      int64                   `json:"ttlSec,omitempty"`
}

// Result is what gets emitted downstream per request.
type Result struct {
	Route    string                         `json:"route"`
	Snapshot *model.CalibratedGraphSnapshot `json:"snapshot"`
	Explain  *model.ExplainBlock            `json:"explain,omitempty"`
}

type Config struct {
	Brokers string
	Group   string
	Topic   string

	Calibration calibrate.Config
	CacheTTLSec int64
}

type Service struct {
	cfg   Config
	group sarama.ConsumerGroup

	cache cache.Cache      // may be nil: caching is optional
	pg    *writer.PGWriter // may be nil
	sink  out.Sink
}

func New(cfg Config, c cache.Cache, pg *writer.PGWriter, sink out.Sink) (*Service, error) {
	if cfg.Brokers == "" || cfg.Group == "" || cfg.Topic == "" {
		return nil, errors.New("brokers/group/topic required")
	}
	if cfg.CacheTTLSec <= 0 {
		cfg.CacheTTLSec = 300
	}
	if sink == nil {
		return nil, errors.New("sink required")
	}

	scfg := sarama.NewConfig()
	scfg.Version = sarama.V2_1_0_0
	scfg.Consumer.Group.Rebalance.Strategy = sarama.BalanceStrategyRange
	scfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	scfg.Consumer.Return.Errors = true

	cg, err := sarama.NewConsumerGroup(splitCSV(cfg.Brokers), cfg.Group, scfg)
	if err != nil {
		return nil, err
	}
	return &Service{cfg: cfg, group: cg, cache: c, pg: pg, sink: sink}, nil
}

func (s *Service) Close() error { return s.group.Close() }

func (s *Service) Run(ctx context.Context) error {
	lg := obs.L("ingest")

	// consume loop (sarama requires re-run on rebalance)
	for {
		if err := s.group.Consume(ctx, []string{s.cfg.Topic}, s); err != nil {
			lg.Warnw("consume err", "err", err)
			time.Sleep(300 * time.Millisecond)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

var _ sarama.ConsumerGroupHandler = (*Service)(nil)

func (s *Service) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (s *Service) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (s *Service) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		s.handle(sess.Context(), msg)
		sess.MarkMessage(msg, "")
	}
	return nil
}

func (s *Service) handle(ctx context.Context, msg *sarama.ConsumerMessage) {
	lg := obs.L("ingest").With("run", uuid.NewString()[:8], "p", msg.Partition, "off", msg.Offset)

	var env out.Envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		decodeFailures.Inc()
		lg.Warnw("decode envelope failed", "err", err)
		return
	}
	if env.Type != out.TypeRawGraph {
		return
	}
	var req Request
	if err := json.Unmarshal(env.Data, &req); err != nil {
		decodeFailures.Inc()
		lg.Warnw("decode request failed", "err", err)
		return
	}

	res, err := s.Process(ctx, &req)
	if err != nil {
		calibrationFailures.WithLabelValues(calibrate.ErrCode(err)).Inc()
		lg.Errorw("calibration failed", "route", req.Route, "err", err)
		return
	}

	// downstream emission is retryable; calibration is not
	emit := func(ctx context.Context) error {
		return s.sink.Emit(ctx, out.TypeCalibratedSnapshot, res)
	}
	if err := retry.Do(ctx, retry.Policy{MaxAttempts: 5}, emit); err != nil {
		lg.Errorw("emit failed after retries", "route", req.Route, "err", err)
		return
	}

	lg.Infow("calibrated",
		"route", req.Route,
		"edges", res.Snapshot.Meta.Stats.TotalEdges,
		"nodes", res.Snapshot.Meta.Stats.TotalNodes,
		"corridors", res.Snapshot.Meta.Stats.CorridorCount,
	)
}

// Process runs one request through the pipeline and the side channels.
// Exposed so the HTTP layer can reuse the exact same path.
func (s *Service) Process(ctx context.Context, req *Request) (*Result, error) {
	start := time.Now()
	snap, err := calibrate.Graph(ctx, req.Snapshot, s.cfg.Calibration)
	if err != nil {
		return nil, err
	}
	calibrationSeconds.Observe(time.Since(start).Seconds())
	snapshotsCalibrated.Inc()

	res := &Result{Route: req.Route, Snapshot: snap}

	if req.RiskSummary != nil {
		block := explain.Generate(req.RiskSummary, snap.Edges, req.Truncated)
		res.Explain = &block
		mode := "full"
		if req.Truncated {
			mode = "summary_only"
		}
		explainsGenerated.WithLabelValues(mode).Inc()
	}

	if s.cache != nil {
		s.cachePut(req, res)
	}
	if s.pg != nil {
		if err := s.pg.InsertRun(ctx, req.Route, snap.Meta); err != nil {
			// stats row 丢了不影响正确性，记日志继续
			obs.L("ingest").Warnw("pg insert run failed", "route", req.Route, "err", err)
		}
	}
	return res, nil
}

func (s *Service) cachePut(req *Request, res *Result) {
	mode := "full"
	if req.Truncated {
		mode = "truncated"
	}
	key := cache.SnapshotKey("connections", req.Route, mode, calibrate.CalibrationVersion)

	payload, err := json.Marshal(res)
	if err != nil {
		return
	}
	ttl := req.TTLSec
	if ttl <= 0 {
		ttl = s.cfg.CacheTTLSec
	}
	now := time.Now().Unix()
	_ = s.cache.Evict(now)
	if err := s.cache.Put(key, payload, now, ttl); err != nil {
		obs.L("ingest").Warnw("cache put failed", "route", req.Route, "err", err)
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, x := range parts {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
