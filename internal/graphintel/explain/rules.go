package explain

import (
	"fmt"

	"github.com/chenzhangda16/web3-graphintel/internal/graphintel/model"
)

// Reason codes.
const (
	CodeExitToCEX           = "EXIT_TO_CEX"
	CodeCrossChainExit      = "CROSS_CHAIN_EXIT"
	CodePreExitSwap         = "PRE_EXIT_SWAP"
	CodeHighDumpRisk        = "HIGH_DUMP_RISK"
	CodeLowPathEntropy      = "LOW_PATH_ENTROPY"
	CodeMarketStressContext = "MARKET_STRESS_CONTEXT"
	CodeAmplifiedByMarket   = "AMPLIFIED_BY_MARKET"
	CodeHighExitProbability = "HIGH_EXIT_PROBABILITY"
	CodeTruncatedGraph      = "TRUNCATED_GRAPH"
)

// rule evaluates (summary, edges) and returns at most one reason.
type rule func(s model.RiskSummary, edges []model.CalibratedEdge) *model.ExplainReason

// fullRules is the ordered rule table for full mode. Order matters: within a
// severity, output keeps table order.
var fullRules = []rule{
	ruleExitToCEX,
	ruleCrossChainExit,
	rulePreExitSwap,
	ruleHighDumpRisk,
	ruleLowPathEntropy,
	ruleMarketStress,
	ruleAmplifiedByMarket,
}

func hasEdgeType(edges []model.CalibratedEdge, types ...model.EdgeType) bool {
	for _, e := range edges {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
	}
	return false
}

func ruleExitToCEX(s model.RiskSummary, edges []model.CalibratedEdge) *model.ExplainReason {
	if !hasEdgeType(edges, model.EdgeDeposit) {
		return nil
	}
	sev := model.SeverityMedium
	if s.ExitProbability > 0.7 {
		sev = model.SeverityHigh
	}
	return &model.ExplainReason{
		Code:     CodeExitToCEX,
		Severity: sev,
		Message:  fmt.Sprintf("funds moved to a CEX deposit address (exit probability %.2f)", s.ExitProbability),
	}
}

func ruleCrossChainExit(s model.RiskSummary, edges []model.CalibratedEdge) *model.ExplainReason {
	if s.ExitProbability <= 0.5 {
		return nil
	}
	if !hasEdgeType(edges, model.EdgeBridge, model.EdgeBridgeActivity) {
		return nil
	}
	sev := model.SeverityMedium
	if s.ExitProbability > 0.8 {
		sev = model.SeverityHigh
	}
	return &model.ExplainReason{
		Code:     CodeCrossChainExit,
		Severity: sev,
		Message:  fmt.Sprintf("bridge activity with elevated exit probability %.2f", s.ExitProbability),
	}
}

func rulePreExitSwap(s model.RiskSummary, edges []model.CalibratedEdge) *model.ExplainReason {
	if !hasEdgeType(edges, model.EdgeSwap) || !hasEdgeType(edges, model.EdgeDeposit) {
		return nil
	}
	return &model.ExplainReason{
		Code:     CodePreExitSwap,
		Severity: dumpSeverity(s.DumpRiskScore),
		Message:  fmt.Sprintf("swap preceding a deposit, dump risk %.0f", s.DumpRiskScore),
	}
}

func ruleHighDumpRisk(s model.RiskSummary, _ []model.CalibratedEdge) *model.ExplainReason {
	if s.DumpRiskScore < 70 {
		return nil
	}
	sev := model.SeverityHigh
	if s.DumpRiskScore >= 85 {
		sev = model.SeverityCritical
	}
	return &model.ExplainReason{
		Code:     CodeHighDumpRisk,
		Severity: sev,
		Message:  fmt.Sprintf("dump risk score %.0f exceeds alert threshold", s.DumpRiskScore),
	}
}

func ruleLowPathEntropy(s model.RiskSummary, _ []model.CalibratedEdge) *model.ExplainReason {
	if s.PathEntropy >= 0.3 || s.ExitProbability <= 0.5 {
		return nil
	}
	return &model.ExplainReason{
		Code:     CodeLowPathEntropy,
		Severity: model.SeverityMedium,
		Message:  fmt.Sprintf("concentrated flow paths (entropy %.2f) with exit probability %.2f", s.PathEntropy, s.ExitProbability),
	}
}

func ruleMarketStress(s model.RiskSummary, _ []model.CalibratedEdge) *model.ExplainReason {
	if s.MarketRegime != model.RegimeStressed {
		return nil
	}
	return &model.ExplainReason{
		Code:     CodeMarketStressContext,
		Severity: model.SeverityHigh,
		Message:  "market regime is STRESSED, risk signals are amplified",
	}
}

func ruleAmplifiedByMarket(s model.RiskSummary, _ []model.CalibratedEdge) *model.ExplainReason {
	if s.MarketAmplifier <= 1.1 {
		return nil
	}
	return &model.ExplainReason{
		Code:     CodeAmplifiedByMarket,
		Severity: model.SeverityLow,
		Message:  fmt.Sprintf("market conditions amplify the base score by %.2fx", s.MarketAmplifier),
	}
}

// dumpSeverity: 85/70/40 档位与 high-dump-risk 规则保持一致。
func dumpSeverity(score float64) model.Severity {
	switch {
	case score >= 85:
		return model.SeverityCritical
	case score >= 70:
		return model.SeverityHigh
	case score >= 40:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

// Context-tag allow-lists for amplifiers/suppressors. Unknown tags are
// ignored, never guessed at.
var amplifierTags = map[string]float64{
	"COORDINATED_WALLETS":  1.25,
	"WHALE_ACCUMULATION":   1.20,
	"FRESH_WALLET_FUNDING": 1.15,
}

var suppressorTags = map[string]float64{
	"MARKET_MAKER":          0.70,
	"CEX_INTERNAL_TRANSFER": 0.80,
	"KNOWN_ENTITY":          0.85,
}
