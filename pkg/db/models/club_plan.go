package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// ClubPlan is a configurable membership tier: how many bottles ship, how often,
// and at what price.
type ClubPlan struct {
	ID                 uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string              `gorm:"column:name;not null;uniqueIndex"`
	Description        *string             `gorm:"column:description"`
	BottlesPerShipment int                 `gorm:"column:bottles_per_shipment;not null;default:1"`
	Frequency          enums.PlanFrequency `gorm:"column:frequency;not null"`
	PriceCents         int                 `gorm:"column:price_cents;not null"`
	IsActive           bool                `gorm:"column:is_active;not null;default:true"`
	CreatedAt          time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
