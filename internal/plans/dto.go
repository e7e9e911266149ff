package plans

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// PlanDTO is the club plan payload returned to clients. Price is the decimal
// dollar amount; storage stays in cents.
type PlanDTO struct {
	ID                 uuid.UUID           `json:"id"`
	Name               string              `json:"name"`
	Description        *string             `json:"description,omitempty"`
	BottlesPerShipment int                 `json:"bottles_per_shipment"`
	Frequency          enums.PlanFrequency `json:"frequency"`
	Price              decimal.Decimal     `json:"price"`
	PriceCents         int                 `json:"price_cents"`
	IsActive           bool                `json:"is_active"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// CreatePlanInput holds the validated payload to create a plan.
type CreatePlanInput struct {
	Name               string
	Description        *string
	BottlesPerShipment int
	Frequency          enums.PlanFrequency
	Price              decimal.Decimal
	IsActive           bool
}

// UpdatePlanInput holds optional mutation values for a plan.
type UpdatePlanInput struct {
	Name               *string
	Description        *string
	BottlesPerShipment *int
	Frequency          *enums.PlanFrequency
	Price              *decimal.Decimal
	IsActive           *bool
}

var centsFactor = decimal.NewFromInt(100)

// priceToCents converts a dollar amount to integer cents, rejecting amounts
// with sub-cent precision.
func priceToCents(price decimal.Decimal) (int, bool) {
	cents := price.Mul(centsFactor)
	if !cents.IsInteger() {
		return 0, false
	}
	return int(cents.IntPart()), true
}

func centsToPrice(cents int) decimal.Decimal {
	return decimal.NewFromInt(int64(cents)).Div(centsFactor)
}

func toPlanDTO(plan *models.ClubPlan) *PlanDTO {
	return &PlanDTO{
		ID:                 plan.ID,
		Name:               plan.Name,
		Description:        plan.Description,
		BottlesPerShipment: plan.BottlesPerShipment,
		Frequency:          plan.Frequency,
		Price:              centsToPrice(plan.PriceCents),
		PriceCents:         plan.PriceCents,
		IsActive:           plan.IsActive,
		CreatedAt:          plan.CreatedAt,
		UpdatedAt:          plan.UpdatedAt,
	}
}
