package members

import (
	"time"

	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	"github.com/merlotworks/wineclub-backend/pkg/pagination"
)

// MemberDTO is the club member payload returned to the dashboard.
type MemberDTO struct {
	ID                 uuid.UUID          `json:"id"`
	FirstName          string             `json:"first_name"`
	LastName           string             `json:"last_name"`
	Email              string             `json:"email"`
	Phone              *string            `json:"phone,omitempty"`
	AddressLine1       string             `json:"address_line1"`
	AddressLine2       *string            `json:"address_line2,omitempty"`
	City               string             `json:"city"`
	State              string             `json:"state"`
	PostalCode         string             `json:"postal_code"`
	PlanID             *uuid.UUID         `json:"plan_id,omitempty"`
	PlanName           *string            `json:"plan_name,omitempty"`
	Status             enums.MemberStatus `json:"status"`
	SquareCustomerID   *string            `json:"square_customer_id,omitempty"`
	PreferredVarietals []string           `json:"preferred_varietals"`
	JoinedAt           time.Time          `json:"joined_at"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CreateMemberInput holds the validated payload to enroll a member.
type CreateMemberInput struct {
	FirstName          string
	LastName           string
	Email              string
	Phone              *string
	AddressLine1       string
	AddressLine2       *string
	City               string
	State              string
	PostalCode         string
	PlanID             *uuid.UUID
	PreferredVarietals []string
}

// UpdateMemberInput holds optional mutation values for a member.
type UpdateMemberInput struct {
	FirstName          *string
	LastName           *string
	Email              *string
	Phone              *string
	AddressLine1       *string
	AddressLine2       *string
	City               *string
	State              *string
	PostalCode         *string
	PlanID             *uuid.UUID
	Status             *enums.MemberStatus
	PreferredVarietals *[]string
}

// ListMembersFilters narrows member listings. Limit and Cursor are filled in
// by the service from the caller's pagination params.
type ListMembersFilters struct {
	Status enums.MemberStatus
	PlanID *uuid.UUID
	Search string
	Limit  int
	Cursor *pagination.Cursor
}

// MemberPage is one cursor page of a member listing.
type MemberPage struct {
	Members    []MemberDTO `json:"members"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func toMemberDTO(member *models.Member) *MemberDTO {
	dto := &MemberDTO{
		ID:                 member.ID,
		FirstName:          member.FirstName,
		LastName:           member.LastName,
		Email:              member.Email,
		Phone:              member.Phone,
		AddressLine1:       member.AddressLine1,
		AddressLine2:       member.AddressLine2,
		City:               member.City,
		State:              member.State,
		PostalCode:         member.PostalCode,
		PlanID:             member.PlanID,
		Status:             member.Status,
		SquareCustomerID:   member.SquareCustomerID,
		PreferredVarietals: append([]string{}, member.PreferredVarietals...),
		JoinedAt:           member.JoinedAt,
		CreatedAt:          member.CreatedAt,
		UpdatedAt:          member.UpdatedAt,
	}
	if member.Plan != nil {
		dto.PlanName = &member.Plan.Name
	}
	return dto
}
