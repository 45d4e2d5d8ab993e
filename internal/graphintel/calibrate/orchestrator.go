package calibrate

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// CalibrationVersion pins the locked pipeline sequence
// (edge weights -> node weights -> normalize -> corridors -> stats).
// Reordering stages or changing formulas requires bumping this constant;
// a golden test asserts the current value so accidental changes are caught.
const CalibrationVersion = "calibration-pipeline-v2"

// edgeBatchSize: step 1 fan-out granularity. Small graphs stay single-shot.
const edgeBatchSize = 256

// Graph runs the full calibration pipeline over an immutable raw snapshot.
// It performs no I/O and is deterministic for identical (raw, cfg) inputs,
// timestamp aside. All call sites needing a calibrated graph go through here.
func Graph(ctx context.Context, raw *model.RawGraphSnapshot, cfg Config) (snap *model.CalibratedGraphSnapshot, err error) {
	if err := validate(raw); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	// 内部任何 panic 都包装成 CALIBRATION_FAILED，带上原始输入规模。
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = &PipelineError{
				Code:  CodeCalibrationFailed,
				Cause: fmt.Errorf("panic: %v", r),
				Nodes: len(raw.Nodes),
				Edges: len(raw.Edges),
			}
		}
	}()

	// 1) edge weights: order-independent, fan out with a join barrier.
	edges, err := resolveEdgesParallel(ctx, raw.Edges, cfg)
	if err != nil {
		return nil, &PipelineError{
			Code:  CodeCalibrationFailed,
			Cause: err,
			Nodes: len(raw.Nodes),
			Edges: len(raw.Edges),
		}
	}

	// 2) node weights need the complete calibrated edge set.
	nodes := ResolveNodes(raw.Nodes, edges, cfg)

	// 3) normalize edges then nodes, independent distributions.
	edges = NormalizeEdges(edges, cfg)
	nodes = NormalizeNodes(nodes, cfg)

	// 4) corridors over the normalized edges; highlighted path passes through.
	corridors := AggregateCorridors(edges, AggregateOptions{
		PreserveEdgeIDs: raw.PreserveEdgeIDs(),
		MinWeight:       cfg.MinCorridorWeight,
		Enabled:         cfg.CorridorsEnabled,
	})

	// 5) stats, 6) assemble.
	return &model.CalibratedGraphSnapshot{
		Nodes:     nodes,
		Edges:     edges,
		Corridors: corridors,
		Meta: model.CalibrationMeta{
			Timestamp:  time.Now().UTC(),
			Version:    CalibrationVersion,
			Parameters: cfg.parameters(),
			Stats:      computeStats(edges, nodes, corridors),
		},
	}, nil
}

func validate(raw *model.RawGraphSnapshot) error {
	fail := func(cause error, nodes, edges int) error {
		return &PipelineError{Code: CodeInvalidRawGraph, Cause: cause, Nodes: nodes, Edges: edges}
	}
	if raw == nil {
		return fail(fmt.Errorf("raw graph is nil"), 0, 0)
	}
	if raw.Nodes == nil || raw.Edges == nil {
		return fail(fmt.Errorf("nodes/edges must be present (may be empty)"), len(raw.Nodes), len(raw.Edges))
	}
	seen := make(map[string]struct{}, len(raw.Nodes))
	for _, n := range raw.Nodes {
		if _, dup := seen[n.ID]; dup {
			return fail(fmt.Errorf("duplicate node id %q", n.ID), len(raw.Nodes), len(raw.Edges))
		}
		seen[n.ID] = struct{}{}
	}
	return nil
}

// resolveEdgesParallel resolves every edge weight across workers and joins
// before returning: node resolution must observe the full edge set.
// Results land by index, so output order matches input order regardless of
// scheduling.
func resolveEdgesParallel(ctx context.Context, raw []model.RawGraphEdge, cfg Config) ([]model.CalibratedEdge, error) {
	out := make([]model.CalibratedEdge, len(raw))
	if len(raw) <= edgeBatchSize {
		for i, e := range raw {
			out[i] = ResolveEdge(e, cfg.CoverageFactor, cfg)
		}
		return out, nil
	}

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for start := 0; start < len(raw); start += edgeBatchSize {
		start := start
		end := min(start+edgeBatchSize, len(raw))
		g.Go(func() error {
			for i := start; i < end; i++ {
				out[i] = ResolveEdge(raw[i], cfg.CoverageFactor, cfg)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
