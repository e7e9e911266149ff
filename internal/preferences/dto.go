package preferences

import (
	"time"

	"github.com/google/uuid"
)

// windowLayout is the shipment window format, e.g. "2026-09".
const windowLayout = "2006-01"

// WineSelection is one chosen wine inside a shipment preference.
type WineSelection struct {
	VariationID string `json:"variation_id"`
	Name        string `json:"name"`
	Quantity    int    `json:"quantity"`
	PriceCents  int64  `json:"price_cents"`
}

// Preference is a member's saved wine selection and delivery date for one
// shipment window. Stored as JSON in the key-prefix store.
type Preference struct {
	MemberID     uuid.UUID       `json:"member_id"`
	Window       string          `json:"window"`
	Selections   []WineSelection `json:"selections"`
	DeliveryDate time.Time       `json:"delivery_date"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// TotalCents sums the selection line totals.
func (p Preference) TotalCents() int64 {
	var total int64
	for _, selection := range p.Selections {
		total += selection.PriceCents * int64(selection.Quantity)
	}
	return total
}

// SavePreferenceInput holds the validated payload to store a preference.
type SavePreferenceInput struct {
	MemberID     uuid.UUID
	Window       string
	Selections   []WineSelection
	DeliveryDate time.Time
}

// CheckoutInput identifies the saved preference to charge. SourceID is the
// Square payment source (card on file id or payment token).
type CheckoutInput struct {
	MemberID uuid.UUID
	Window   string
	SourceID string
}

// CheckoutResult reports the outcome of a preference charge.
type CheckoutResult struct {
	PaymentID   string `json:"payment_id"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
}
