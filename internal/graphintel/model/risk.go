package model

// MarketRegime comes from the upstream risk-scoring process.
type MarketRegime string

const (
	RegimeStable   MarketRegime = "STABLE"
	RegimeVolatile MarketRegime = "VOLATILE"
	RegimeStressed MarketRegime = "STRESSED"
)

// RiskSummary 是上游风险评分流程的产物；explain 引擎只消费不修改。
// 缺省字段按中性值处理（见 explain 包）。
type RiskSummary struct {
	ExitProbability     float64      `json:"exitProbability"`
	DumpRiskScore       float64      `json:"dumpRiskScore"`
	PathEntropy         float64      `json:"pathEntropy"`
	ContextualRiskScore float64      `json:"contextualRiskScore"`
	MarketAmplifier     float64      `json:"marketAmplifier"`
	ConfidenceImpact    float64      `json:"confidenceImpact"`
	ContextTags         []string     `json:"contextTags,omitempty"`
	MarketRegime        MarketRegime `json:"marketRegime"`
}

// HasTag reports membership in ContextTags.
func (r *RiskSummary) HasTag(tag string) bool {
	for _, t := range r.ContextTags {
		if t == tag {
			return true
		}
	}
	return false
}

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Rank: smaller sorts first (CRITICAL > HIGH > MEDIUM > LOW).
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	default:
		return 3
	}
}

type ExplainReason struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Modifier is an amplifier or suppressor applied on top of the reasons.
type Modifier struct {
	Tag        string  `json:"tag"`
	Multiplier float64 `json:"multiplier"`
	Source     string  `json:"source"`
}

type ExplainBlock struct {
	Reasons     []ExplainReason `json:"reasons"`
	Amplifiers  []Modifier      `json:"amplifiers"`
	Suppressors []Modifier      `json:"suppressors"`
}
