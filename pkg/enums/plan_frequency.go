package enums

import "fmt"

// PlanFrequency is the shipment cadence of a club plan.
type PlanFrequency string

const (
	PlanFrequencyMonthly   PlanFrequency = "monthly"
	PlanFrequencyQuarterly PlanFrequency = "quarterly"
	PlanFrequencyBiannual  PlanFrequency = "biannual"
)

var validPlanFrequencies = []PlanFrequency{
	PlanFrequencyMonthly,
	PlanFrequencyQuarterly,
	PlanFrequencyBiannual,
}

// String implements fmt.Stringer.
func (p PlanFrequency) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PlanFrequency.
func (p PlanFrequency) IsValid() bool {
	for _, candidate := range validPlanFrequencies {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanFrequency converts raw input into a PlanFrequency.
func ParsePlanFrequency(value string) (PlanFrequency, error) {
	for _, candidate := range validPlanFrequencies {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan frequency %q", value)
}
