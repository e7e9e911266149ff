package enums

import "fmt"

// OrderStage is the fulfillment pipeline position of a club order. Promotion is
// one-way: orders -> picked -> approved -> shipped.
type OrderStage string

const (
	OrderStageOrders   OrderStage = "orders"
	OrderStagePicked   OrderStage = "picked"
	OrderStageApproved OrderStage = "approved"
	OrderStageShipped  OrderStage = "shipped"
)

var validOrderStages = []OrderStage{
	OrderStageOrders,
	OrderStagePicked,
	OrderStageApproved,
	OrderStageShipped,
}

// String implements fmt.Stringer.
func (s OrderStage) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStage.
func (s OrderStage) IsValid() bool {
	for _, candidate := range validOrderStages {
		if candidate == s {
			return true
		}
	}
	return false
}

// Next returns the stage a promotion moves into, or "" from the terminal stage.
func (s OrderStage) Next() OrderStage {
	switch s {
	case OrderStageOrders:
		return OrderStagePicked
	case OrderStagePicked:
		return OrderStageApproved
	case OrderStageApproved:
		return OrderStageShipped
	default:
		return ""
	}
}

// ParseOrderStage converts raw input into an OrderStage.
func ParseOrderStage(value string) (OrderStage, error) {
	for _, candidate := range validOrderStages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order stage %q", value)
}
