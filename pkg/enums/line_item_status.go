package enums

import "fmt"

// LineItemStatus tracks the picking state of one wine on a club order.
// picked and out_of_stock are mutually reachable so an operator can correct a
// mis-pick; removed is absorbing.
type LineItemStatus string

const (
	LineItemStatusPending    LineItemStatus = "pending"
	LineItemStatusPicked     LineItemStatus = "picked"
	LineItemStatusOutOfStock LineItemStatus = "out_of_stock"
	LineItemStatusRemoved    LineItemStatus = "removed"
)

var validLineItemStatuses = []LineItemStatus{
	LineItemStatusPending,
	LineItemStatusPicked,
	LineItemStatusOutOfStock,
	LineItemStatusRemoved,
}

// String implements fmt.Stringer.
func (l LineItemStatus) String() string {
	return string(l)
}

// IsValid reports whether the value is a known LineItemStatus.
func (l LineItemStatus) IsValid() bool {
	for _, candidate := range validLineItemStatuses {
		if candidate == l {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status may move to target.
func (l LineItemStatus) CanTransitionTo(target LineItemStatus) bool {
	if !target.IsValid() || l == target {
		return false
	}
	switch l {
	case LineItemStatusPending:
		return true
	case LineItemStatusPicked:
		return target == LineItemStatusOutOfStock || target == LineItemStatusRemoved
	case LineItemStatusOutOfStock:
		return target == LineItemStatusPicked || target == LineItemStatusRemoved
	case LineItemStatusRemoved:
		return false
	default:
		return false
	}
}

// ParseLineItemStatus converts raw input into a LineItemStatus.
func ParseLineItemStatus(value string) (LineItemStatus, error) {
	for _, candidate := range validLineItemStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid line item status %q", value)
}
