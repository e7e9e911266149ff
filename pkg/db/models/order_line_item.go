package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// OrderLineItem is one wine (and quantity) on a club order.
type OrderLineItem struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID            `gorm:"column:order_id;type:uuid;not null;index"`
	WineID      string               `gorm:"column:wine_id;not null"`
	WineName    string               `gorm:"column:wine_name;not null"`
	VariationID string               `gorm:"column:variation_id"`
	Quantity    int                  `gorm:"column:quantity;not null;default:1"`
	PriceCents  int                  `gorm:"column:price_cents;not null;default:0"`
	Status      enums.LineItemStatus `gorm:"column:status;not null;default:pending"`
	Notes       *string              `gorm:"column:notes"`
	Position    int                  `gorm:"column:position;not null;default:0"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
