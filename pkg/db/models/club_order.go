package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// ClubOrder is one member shipment moving through the fulfillment pipeline.
// Stage plus the Version counter replace the four in-memory collections: every
// promotion is a conditional update guarded by the expected stage, and
// MarkReadyToShip additionally checks the caller's expected version so two
// operator sessions cannot both win.
type ClubOrder struct {
	ID             uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SquareOrderID  *string          `gorm:"column:square_order_id;uniqueIndex"`
	MemberID       *uuid.UUID       `gorm:"column:member_id;type:uuid"`
	Member         *Member          `gorm:"foreignKey:MemberID"`
	MemberName     string           `gorm:"column:member_name;not null"`
	Stage          enums.OrderStage `gorm:"column:stage;not null;default:orders"`
	Version        int              `gorm:"column:version;not null;default:1"`
	TotalCents     int              `gorm:"column:total_cents;not null;default:0"`
	TrackingNumber string           `gorm:"column:tracking_number;not null;default:''"`
	PickedAt       *time.Time       `gorm:"column:picked_at"`
	PickedBy       *string          `gorm:"column:picked_by"`
	ApprovedAt     *time.Time       `gorm:"column:approved_at"`
	ApprovedBy     *string          `gorm:"column:approved_by"`
	ShippedAt      *time.Time       `gorm:"column:shipped_at"`
	ShippedBy      *string          `gorm:"column:shipped_by"`
	Items          []OrderLineItem  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Units          []PickedUnit     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt      time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
