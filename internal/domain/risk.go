package domain

// RiskLevel is the closed set of caller risk appetites (spec §3). Each
// carries a minimum pattern-confidence threshold used by the signal
// aggregator to filter qualifying patterns (spec §4.5).
type RiskLevel int

const (
	RiskConservative RiskLevel = iota
	RiskModerate
	RiskAggressive
)

// Threshold returns the minimum pattern confidence this risk level admits.
func (r RiskLevel) Threshold() float64 {
	switch r {
	case RiskConservative:
		return 0.8
	case RiskModerate:
		return 0.6
	case RiskAggressive:
		return 0.4
	default:
		return 0.6
	}
}

func (r RiskLevel) String() string {
	switch r {
	case RiskConservative:
		return "conservative"
	case RiskModerate:
		return "moderate"
	case RiskAggressive:
		return "aggressive"
	default:
		return "moderate"
	}
}

// ParseRiskLevel maps the §6 enum-string aliases onto a RiskLevel,
// defaulting to moderate.
func ParseRiskLevel(s string) RiskLevel {
	switch s {
	case "conservative", "low":
		return RiskConservative
	case "moderate", "medium":
		return RiskModerate
	case "aggressive", "high":
		return RiskAggressive
	default:
		return RiskModerate
	}
}
