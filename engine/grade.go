package engine

import (
	"fmt"

	"github.com/ftahirops/lapaudit/model"
)

const (
	// GoodBatteryPct: battery health strictly above this qualifies a
	// modern machine for standard resale.
	GoodBatteryPct = 65
	// BadBatteryPct: battery health strictly below this is discounted.
	BadBatteryPct = 60
)

// Decision is a recommendation together with the rule that produced it.
type Decision struct {
	Recommendation model.Recommendation `json:"recommendation"`
	Rule           int                  `json:"rule"` // 1-based position in the rule table
	Reason         string               `json:"reason"`
}

type gradeRule struct {
	match  func(p model.HardwareProfile, gen int) (string, bool)
	result model.Recommendation
}

// gradeRules are evaluated in order; the first match wins. The last rule
// always matches.
var gradeRules = []gradeRule{
	{
		result: model.RecommendPartsRepair,
		match: func(p model.HardwareProfile, _ int) (string, bool) {
			switch {
			case p.SMARTStatus == model.SMARTFailed:
				return "SMART health check failed", true
			case p.ScreenGrade == model.GradeC:
				return "screen graded C", true
			case p.ChassisGrade == model.GradeC:
				return "chassis graded C", true
			}
			return "", false
		},
	},
	{
		result: model.RecommendHighValue,
		match: func(p model.HardwareProfile, _ int) (string, bool) {
			if IsDiscreteGPU(p.GPU) {
				return "discrete GPU: " + p.GPU, true
			}
			return "", false
		},
	},
	{
		result: model.RecommendStandard,
		match: func(p model.HardwareProfile, gen int) (string, bool) {
			if gen >= MinResaleGen && p.BatteryPct.Known() && p.BatteryPct > GoodBatteryPct {
				return fmt.Sprintf("generation %d CPU, battery %d%%", gen, p.BatteryPct), true
			}
			return "", false
		},
	},
	{
		result: model.RecommendBadBattery,
		match: func(p model.HardwareProfile, _ int) (string, bool) {
			if p.BatteryPct.Known() && p.BatteryPct < BadBatteryPct {
				return fmt.Sprintf("battery %d%% below %d%%", p.BatteryPct, BadBatteryPct), true
			}
			return "", false
		},
	},
	{
		result: model.RecommendStandard,
		match: func(model.HardwareProfile, int) (string, bool) {
			return "no other rule matched", true
		},
	},
}

// Evaluate applies the rule table to p. It is deterministic and does no
// I/O.
func Evaluate(p model.HardwareProfile) Decision {
	gen := CPUGeneration(p.CPU)
	for i, r := range gradeRules {
		if reason, ok := r.match(p, gen); ok {
			return Decision{Recommendation: r.result, Rule: i + 1, Reason: reason}
		}
	}
	// unreachable: the last rule always matches
	return Decision{Recommendation: model.RecommendStandard, Rule: len(gradeRules)}
}

// Grade returns the recommendation for p.
func Grade(p model.HardwareProfile) model.Recommendation {
	return Evaluate(p).Recommendation
}
