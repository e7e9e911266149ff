package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// Member is a wine-club member managed from the admin dashboard.
type Member struct {
	ID                 uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FirstName          string             `gorm:"column:first_name;not null"`
	LastName           string             `gorm:"column:last_name;not null"`
	Email              string             `gorm:"column:email;not null;uniqueIndex"`
	Phone              *string            `gorm:"column:phone"`
	AddressLine1       string             `gorm:"column:address_line1"`
	AddressLine2       *string            `gorm:"column:address_line2"`
	City               string             `gorm:"column:city"`
	State              string             `gorm:"column:state"`
	PostalCode         string             `gorm:"column:postal_code"`
	PlanID             *uuid.UUID         `gorm:"column:plan_id;type:uuid"`
	Plan               *ClubPlan          `gorm:"foreignKey:PlanID"`
	Status             enums.MemberStatus `gorm:"column:status;not null;default:active"`
	SquareCustomerID   *string            `gorm:"column:square_customer_id"`
	PreferredVarietals pq.StringArray     `gorm:"column:preferred_varietals;type:text[]"`
	JoinedAt           time.Time          `gorm:"column:joined_at"`
	CreatedAt          time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
