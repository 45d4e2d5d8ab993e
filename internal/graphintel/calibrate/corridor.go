package calibrate

import (
	"sort"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/ids"
	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// AggregateOptions drives corridor aggregation.
type AggregateOptions struct {
	PreserveEdgeIDs map[string]struct{}
	MinWeight       float64
	Enabled         bool
}

// AggregateCorridors merges dust edges (weight < MinWeight) into corridors
// keyed by endpoint-pair family. Non-dust edges sharing a family with dust
// edges fold in too: the goal is corridor-level legibility, not strict dust
// isolation. The single hard rule: a preserved edge id never appears inside
// any corridor's member list.
//
// 不变量：corridor 的 volume = 成员 volume 之和，不多不少。
func AggregateCorridors(edges []model.CalibratedEdge, opts AggregateOptions) []model.Corridor {
	if !opts.Enabled || len(edges) == 0 {
		return nil
	}

	in := ids.NewInterner(8, len(edges))

	type group struct {
		from, to string
		members  []int // indices into edges, input order
		hasDust  bool
	}
	groups := make(map[uint64]*group, len(edges))

	for i, e := range edges {
		if _, preserved := opts.PreserveEdgeIDs[e.ID]; preserved {
			continue // pass-through, never summarized
		}
		key := ids.PairKey(in.ID(e.From), in.ID(e.To))
		g := groups[key]
		if g == nil {
			from, to := e.From, e.To
			if to < from {
				from, to = to, from
			}
			g = &group{from: from, to: to}
			groups[key] = g
		}
		g.members = append(g.members, i)
		if e.Weight < opts.MinWeight {
			g.hasDust = true
		}
	}

	var out []model.Corridor
	for _, g := range groups {
		if !g.hasDust {
			continue
		}
		c := model.Corridor{
			ID:            "corridor:" + g.from + "--" + g.to,
			From:          g.from,
			To:            g.to,
			MemberEdgeIDs: make([]string, 0, len(g.members)),
		}
		for _, i := range g.members {
			c.Weight += edges[i].Weight
			c.VolumeUSD += edges[i].VolumeUSD
			c.MemberEdgeIDs = append(c.MemberEdgeIDs, edges[i].ID)
		}
		out = append(out, c)
	}

	// map 迭代无序；按 ID 排序保证确定性输出。
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
