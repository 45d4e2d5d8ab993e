// Package explain derives severity-ranked, rule-based narratives from a
// calibrated risk summary. Stateless per call and it never returns an error:
// when the caller truncated the graph upstream it degrades to summary-only
// reasoning instead of presenting misleadingly granular per-edge claims.
package explain

import (
	"fmt"
	"sort"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// Generate evaluates the rule table against (summary, edges).
// truncated=true switches to summary-only mode: per-edge rules are skipped
// entirely and exactly one TRUNCATED_GRAPH reason is appended.
func Generate(summary *model.RiskSummary, edges []model.CalibratedEdge, truncated bool) model.ExplainBlock {
	s := neutralize(summary)

	var reasons []model.ExplainReason
	if truncated {
		reasons = summaryOnlyReasons(s)
	} else {
		for _, r := range fullRules {
			if reason := r(s, edges); reason != nil {
				reasons = append(reasons, *reason)
			}
		}
	}

	// severity-first, stable within a tier (table order survives)
	sort.SliceStable(reasons, func(a, b int) bool {
		return reasons[a].Severity.Rank() < reasons[b].Severity.Rank()
	})

	return model.ExplainBlock{
		Reasons:     reasons,
		Amplifiers:  amplifiers(s),
		Suppressors: suppressors(s),
	}
}

// summaryOnlyReasons never inspects the edge list. Wording notes the graph
// was truncated so the reader knows granularity was lost upstream.
func summaryOnlyReasons(s model.RiskSummary) []model.ExplainReason {
	var out []model.ExplainReason
	if r := ruleHighDumpRisk(s, nil); r != nil {
		r.Message += " (graph truncated, summary-level signal)"
		out = append(out, *r)
	}
	if s.MarketRegime == model.RegimeStressed {
		out = append(out, model.ExplainReason{
			Code:     CodeMarketStressContext,
			Severity: model.SeverityHigh,
			Message:  "market regime is STRESSED (graph truncated, summary-level signal)",
		})
	}
	if s.ExitProbability > 0.7 {
		out = append(out, model.ExplainReason{
			Code:     CodeHighExitProbability,
			Severity: model.SeverityMedium,
			Message:  fmt.Sprintf("exit probability %.2f (graph truncated, summary-level signal)", s.ExitProbability),
		})
	}
	out = append(out, model.ExplainReason{
		Code:     CodeTruncatedGraph,
		Severity: model.SeverityLow,
		Message:  "graph was size-limited upstream; per-edge reasoning skipped",
	})
	return out
}

// neutralize defaults missing optional fields to safe neutral values so a
// sparse summary never fabricates amplifiers or suppressors.
func neutralize(summary *model.RiskSummary) model.RiskSummary {
	if summary == nil {
		return model.RiskSummary{
			MarketAmplifier:  1.0,
			ConfidenceImpact: 1.0,
			MarketRegime:     model.RegimeStable,
		}
	}
	s := *summary
	if s.MarketAmplifier == 0 {
		s.MarketAmplifier = 1.0
	}
	if s.ConfidenceImpact == 0 {
		s.ConfidenceImpact = 1.0
	}
	if s.MarketRegime == "" {
		s.MarketRegime = model.RegimeStable
	}
	return s
}

func amplifiers(s model.RiskSummary) []model.Modifier {
	var out []model.Modifier
	if s.MarketAmplifier > 1.1 {
		out = append(out, model.Modifier{
			Tag:        "market_amplifier",
			Multiplier: s.MarketAmplifier,
			Source:     "market_regime",
		})
	}
	for _, tag := range s.ContextTags {
		if mult, ok := amplifierTags[tag]; ok {
			out = append(out, model.Modifier{Tag: tag, Multiplier: mult, Source: "context_tag"})
		}
	}
	return out
}

func suppressors(s model.RiskSummary) []model.Modifier {
	var out []model.Modifier
	if s.ConfidenceImpact < 0.9 {
		out = append(out, model.Modifier{
			Tag:        "low_confidence",
			Multiplier: s.ConfidenceImpact,
			Source:     "confidence_impact",
		})
	}
	for _, tag := range s.ContextTags {
		if mult, ok := suppressorTags[tag]; ok {
			out = append(out, model.Modifier{Tag: tag, Multiplier: mult, Source: "context_tag"})
		}
	}
	return out
}
