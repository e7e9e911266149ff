package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db"
	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/pagination"
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

// customerRegistrar links a member to an upstream Square customer. An
// unconfigured client makes registration a no-op rather than an error.
type customerRegistrar interface {
	Configured() bool
	CreateCustomer(ctx context.Context, params square.CustomerCreateParams) (*sq.Customer, error)
}

type planLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClubPlan, error)
}

// Service exposes member enrollment and management.
type Service interface {
	CreateMember(ctx context.Context, input CreateMemberInput) (*MemberDTO, error)
	UpdateMember(ctx context.Context, memberID uuid.UUID, input UpdateMemberInput) (*MemberDTO, error)
	GetMember(ctx context.Context, memberID uuid.UUID) (*MemberDTO, error)
	ListMembers(ctx context.Context, filters ListMembersFilters, page pagination.Params) (*MemberPage, error)
}

type service struct {
	repo      Repository
	plans     planLoader
	customers customerRegistrar
	logg      *logger.Logger
}

// NewService constructs a member service instance. The customer registrar is
// optional; without it members are never linked to Square.
func NewService(repo Repository, plans planLoader, customers customerRegistrar, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if plans == nil {
		return nil, fmt.Errorf("plan repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{repo: repo, plans: plans, customers: customers, logg: logg}, nil
}

func (s *service) CreateMember(ctx context.Context, input CreateMemberInput) (*MemberDTO, error) {
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if firstName == "" || lastName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "first and last name required")
	}
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if input.PlanID != nil {
		if err := s.ensurePlanActive(ctx, *input.PlanID); err != nil {
			return nil, err
		}
	}

	member := &models.Member{
		FirstName:          firstName,
		LastName:           lastName,
		Email:              email,
		Phone:              input.Phone,
		AddressLine1:       strings.TrimSpace(input.AddressLine1),
		AddressLine2:       input.AddressLine2,
		City:               strings.TrimSpace(input.City),
		State:              strings.TrimSpace(input.State),
		PostalCode:         strings.TrimSpace(input.PostalCode),
		PlanID:             input.PlanID,
		Status:             enums.MemberStatusActive,
		PreferredVarietals: pq.StringArray(input.PreferredVarietals),
		JoinedAt:           time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, member)
	if err != nil {
		if db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a member with that email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create member")
	}

	s.linkSquareCustomer(ctx, created)
	return toMemberDTO(created), nil
}

// linkSquareCustomer best-effort registers the member upstream. Failure is
// logged, not surfaced: enrollment succeeds without Square.
func (s *service) linkSquareCustomer(ctx context.Context, member *models.Member) {
	if s.customers == nil || !s.customers.Configured() {
		return
	}
	phone := ""
	if member.Phone != nil {
		phone = *member.Phone
	}
	customer, err := s.customers.CreateCustomer(ctx, square.CustomerCreateParams{
		Email:       member.Email,
		PhoneNumber: phone,
		GivenName:   member.FirstName,
		FamilyName:  member.LastName,
		ReferenceID: member.ID.String(),
	})
	if err != nil {
		s.logg.Error(s.logg.WithMemberID(ctx, member.ID.String()), "link square customer", err)
		return
	}
	if customer == nil || customer.GetID() == nil {
		return
	}
	member.SquareCustomerID = customer.GetID()
	if err := s.repo.Update(ctx, member); err != nil {
		s.logg.Error(s.logg.WithMemberID(ctx, member.ID.String()), "store square customer id", err)
	}
}

func (s *service) UpdateMember(ctx context.Context, memberID uuid.UUID, input UpdateMemberInput) (*MemberDTO, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}

	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}

	if input.FirstName != nil {
		if strings.TrimSpace(*input.FirstName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "first name cannot be empty")
		}
		member.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		if strings.TrimSpace(*input.LastName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "last name cannot be empty")
		}
		member.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*input.Email))
		if email == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email cannot be empty")
		}
		member.Email = email
	}
	if input.Phone != nil {
		member.Phone = input.Phone
	}
	if input.AddressLine1 != nil {
		member.AddressLine1 = strings.TrimSpace(*input.AddressLine1)
	}
	if input.AddressLine2 != nil {
		member.AddressLine2 = input.AddressLine2
	}
	if input.City != nil {
		member.City = strings.TrimSpace(*input.City)
	}
	if input.State != nil {
		member.State = strings.TrimSpace(*input.State)
	}
	if input.PostalCode != nil {
		member.PostalCode = strings.TrimSpace(*input.PostalCode)
	}
	if input.PlanID != nil {
		if err := s.ensurePlanActive(ctx, *input.PlanID); err != nil {
			return nil, err
		}
		member.PlanID = input.PlanID
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member status")
		}
		member.Status = *input.Status
	}
	if input.PreferredVarietals != nil {
		member.PreferredVarietals = pq.StringArray(*input.PreferredVarietals)
	}

	if err := s.repo.Update(ctx, member); err != nil {
		if db.IsUniqueViolation(err, "email") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a member with that email already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update member")
	}
	return toMemberDTO(member), nil
}

func (s *service) GetMember(ctx context.Context, memberID uuid.UUID) (*MemberDTO, error) {
	if memberID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member id required")
	}
	member, err := s.loadMember(ctx, memberID)
	if err != nil {
		return nil, err
	}
	return toMemberDTO(member), nil
}

func (s *service) ListMembers(ctx context.Context, filters ListMembersFilters, page pagination.Params) (*MemberPage, error) {
	if filters.Status != "" && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid member status filter")
	}
	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pagination cursor")
	}

	limit := pagination.NormalizeLimit(page.Limit)
	filters.Cursor = cursor
	filters.Limit = pagination.LimitWithBuffer(page.Limit)

	members, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}

	hasMore := len(members) > limit
	if hasMore {
		members = members[:limit]
	}
	out := make([]MemberDTO, 0, len(members))
	for i := range members {
		out = append(out, *toMemberDTO(&members[i]))
	}
	result := &MemberPage{Members: out}
	if hasMore {
		last := members[len(members)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}

func (s *service) loadMember(ctx context.Context, memberID uuid.UUID) (*models.Member, error) {
	member, err := s.repo.FindByID(ctx, memberID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "member not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load member")
	}
	return member, nil
}

func (s *service) ensurePlanActive(ctx context.Context, planID uuid.UUID) error {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "plan does not exist")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	if !plan.IsActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "plan is not active")
	}
	return nil
}
