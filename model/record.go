package model

import "time"

// TimestampLayout is the ledger's timestamp format (local time).
const TimestampLayout = "2006-01-02 15:04:05"

// Recommendation is the resale disposition assigned to a machine.
type Recommendation string

const (
	RecommendPartsRepair Recommendation = "PARTS/REPAIR"
	RecommendHighValue   Recommendation = "HIGH VALUE (Gaming/Creator)"
	RecommendStandard    Recommendation = "Standard Resale"
	RecommendBadBattery  Recommendation = "Bad Battery (Discount)"
)

// Recommendations lists every value the grader can return.
var Recommendations = []Recommendation{
	RecommendPartsRepair,
	RecommendHighValue,
	RecommendStandard,
	RecommendBadBattery,
}

// AuditRecord is one immutable ledger row.
type AuditRecord struct {
	Timestamp      time.Time       `json:"timestamp"`
	Profile        HardwareProfile `json:"profile"`
	Recommendation Recommendation  `json:"recommendation"`
}
