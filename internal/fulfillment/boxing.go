package fulfillment

import (
	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// DefaultBoxCapacity is the number of bottles per shipping box.
const DefaultBoxCapacity = 12

// expandPickedUnits flattens each picked line item into one unit per bottle,
// in line-item order, and assigns box numbers with a running counter across
// the whole order: units 1..capacity go in box 1, the next capacity units in
// box 2, and so on. A single wine's units can span two boxes and a box can
// hold units from multiple wines.
func expandPickedUnits(orderID uuid.UUID, items []models.OrderLineItem, capacity int) []models.PickedUnit {
	if capacity <= 0 {
		capacity = DefaultBoxCapacity
	}
	units := []models.PickedUnit{}
	sequence := 0
	for _, item := range items {
		if item.Status != enums.LineItemStatusPicked {
			continue
		}
		for i := 0; i < item.Quantity; i++ {
			sequence++
			units = append(units, models.PickedUnit{
				OrderID:    orderID,
				LineItemID: item.ID,
				WineName:   item.WineName,
				Sequence:   sequence,
				BoxNumber:  (sequence-1)/capacity + 1,
			})
		}
	}
	return units
}

// isReadyToShip is recomputed on every read, never cached: an order is ready
// when at least one non-removed item exists and every non-removed item is
// picked.
func isReadyToShip(items []models.OrderLineItem) bool {
	nonRemoved := 0
	for _, item := range items {
		if item.Status == enums.LineItemStatusRemoved {
			continue
		}
		nonRemoved++
		if item.Status != enums.LineItemStatusPicked {
			return false
		}
	}
	return nonRemoved > 0
}
