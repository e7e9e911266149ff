package fulfillment

import (
	"time"

	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// OrderDTO is the club order payload returned to the dashboard. IsReadyToShip
// is derived from the line items on every read.
type OrderDTO struct {
	ID             uuid.UUID            `json:"id"`
	SquareOrderID  *string              `json:"square_order_id,omitempty"`
	MemberID       *uuid.UUID           `json:"member_id,omitempty"`
	MemberName     string               `json:"member_name"`
	Stage          enums.OrderStage     `json:"stage"`
	Version        int                  `json:"version"`
	TotalCents     int                  `json:"total_cents"`
	TrackingNumber string               `json:"tracking_number"`
	IsReadyToShip  bool                 `json:"is_ready_to_ship"`
	Items          []LineItemDTO        `json:"items"`
	Units          []PickedUnitDTO      `json:"units,omitempty"`
	PickedAt       *time.Time           `json:"picked_at,omitempty"`
	PickedBy       *string              `json:"picked_by,omitempty"`
	ApprovedAt     *time.Time           `json:"approved_at,omitempty"`
	ApprovedBy     *string              `json:"approved_by,omitempty"`
	ShippedAt      *time.Time           `json:"shipped_at,omitempty"`
	ShippedBy      *string              `json:"shipped_by,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

// LineItemDTO is one wine on a club order.
type LineItemDTO struct {
	ID          uuid.UUID            `json:"id"`
	WineID      string               `json:"wine_id"`
	WineName    string               `json:"wine_name"`
	VariationID string               `json:"variation_id,omitempty"`
	Quantity    int                  `json:"quantity"`
	PriceCents  int                  `json:"price_cents"`
	Status      enums.LineItemStatus `json:"status"`
	Notes       *string              `json:"notes,omitempty"`
	Position    int                  `json:"position"`
}

// PickedUnitDTO is one physical bottle with its assigned box.
type PickedUnitDTO struct {
	ID         uuid.UUID `json:"id"`
	LineItemID uuid.UUID `json:"line_item_id"`
	WineName   string    `json:"wine_name"`
	Sequence   int       `json:"sequence"`
	BoxNumber  int       `json:"box_number"`
}

// ImportOrderInput carries upstream commerce-order data into a new club order
// with all line items pending.
type ImportOrderInput struct {
	SquareOrderID *string
	MemberID      *uuid.UUID
	MemberName    string
	Items         []ImportLineItemInput
}

// ImportLineItemInput is one wine on an imported order.
type ImportLineItemInput struct {
	WineID      string
	WineName    string
	VariationID string
	Quantity    int
	PriceCents  int
}

// MarkReadyToShipInput promotes one order from orders to picked.
// ExpectedVersion guards against a concurrent session promoting the same
// order; zero skips the check.
type MarkReadyToShipInput struct {
	OrderID         uuid.UUID
	Actor           string
	ExpectedVersion int
}

func toOrderDTO(order *models.ClubOrder) *OrderDTO {
	dto := &OrderDTO{
		ID:             order.ID,
		SquareOrderID:  order.SquareOrderID,
		MemberID:       order.MemberID,
		MemberName:     order.MemberName,
		Stage:          order.Stage,
		Version:        order.Version,
		TotalCents:     order.TotalCents,
		TrackingNumber: order.TrackingNumber,
		IsReadyToShip:  order.Stage == enums.OrderStageOrders && isReadyToShip(order.Items),
		Items:          make([]LineItemDTO, 0, len(order.Items)),
		PickedAt:       order.PickedAt,
		PickedBy:       order.PickedBy,
		ApprovedAt:     order.ApprovedAt,
		ApprovedBy:     order.ApprovedBy,
		ShippedAt:      order.ShippedAt,
		ShippedBy:      order.ShippedBy,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for _, item := range order.Items {
		dto.Items = append(dto.Items, LineItemDTO{
			ID:          item.ID,
			WineID:      item.WineID,
			WineName:    item.WineName,
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
			Status:      item.Status,
			Notes:       item.Notes,
			Position:    item.Position,
		})
	}
	for _, unit := range order.Units {
		dto.Units = append(dto.Units, PickedUnitDTO{
			ID:         unit.ID,
			LineItemID: unit.LineItemID,
			WineName:   unit.WineName,
			Sequence:   unit.Sequence,
			BoxNumber:  unit.BoxNumber,
		})
	}
	return dto
}
