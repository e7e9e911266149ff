package members

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"
	sq "github.com/square/square-go-sdk"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/pagination"
	"github.com/merlotworks/wineclub-backend/pkg/square"
)

type stubMemberRepo struct {
	members map[uuid.UUID]*models.Member
}

func newStubMemberRepo() *stubMemberRepo {
	return &stubMemberRepo{members: map[uuid.UUID]*models.Member{}}
}

func (s *stubMemberRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMemberRepo) Create(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member.ID == uuid.Nil {
		member.ID = uuid.New()
	}
	s.members[member.ID] = member
	return member, nil
}

func (s *stubMemberRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Member, error) {
	member, ok := s.members[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *member
	return &copied, nil
}

func (s *stubMemberRepo) List(ctx context.Context, filters ListMembersFilters) ([]models.Member, error) {
	var out []models.Member
	for _, member := range s.members {
		if filters.Status != "" && member.Status != filters.Status {
			continue
		}
		if filters.Cursor != nil {
			if member.CreatedAt.Before(filters.Cursor.CreatedAt) {
				continue
			}
			if member.CreatedAt.Equal(filters.Cursor.CreatedAt) && member.ID.String() <= filters.Cursor.ID.String() {
				continue
			}
		}
		out = append(out, *member)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	if filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func (s *stubMemberRepo) Update(ctx context.Context, member *models.Member) error {
	s.members[member.ID] = member
	return nil
}

func (s *stubMemberRepo) CountByStatus(ctx context.Context) (map[enums.MemberStatus]int64, error) {
	counts := map[enums.MemberStatus]int64{}
	for _, member := range s.members {
		counts[member.Status]++
	}
	return counts, nil
}

type stubPlanLoader struct {
	plans map[uuid.UUID]*models.ClubPlan
}

func (s *stubPlanLoader) FindByID(ctx context.Context, id uuid.UUID) (*models.ClubPlan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return plan, nil
}

type stubRegistrar struct {
	configured bool
	customerID string
	calls      int
}

func (s *stubRegistrar) Configured() bool { return s.configured }

func (s *stubRegistrar) CreateCustomer(ctx context.Context, params square.CustomerCreateParams) (*sq.Customer, error) {
	s.calls++
	id := s.customerID
	return &sq.Customer{ID: &id}, nil
}

func newMemberService(t *testing.T, repo Repository, plans planLoader, customers customerRegistrar) Service {
	t.Helper()
	svc, err := NewService(repo, plans, customers, logger.New(logger.Options{ServiceName: "test"}))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateMemberLinksSquareCustomer(t *testing.T) {
	repo := newStubMemberRepo()
	registrar := &stubRegistrar{configured: true, customerID: "CUST-123"}
	svc := newMemberService(t, repo, &stubPlanLoader{}, registrar)

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{
		FirstName:          "Dana",
		LastName:           "Estes",
		Email:              " Dana@Example.com ",
		PreferredVarietals: []string{"Zinfandel", "Syrah"},
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	if member.Email != "dana@example.com" {
		t.Fatalf("expected normalized email, got %s", member.Email)
	}
	if member.Status != enums.MemberStatusActive {
		t.Fatalf("expected active status, got %s", member.Status)
	}
	if registrar.calls != 1 {
		t.Fatalf("expected one registration call, got %d", registrar.calls)
	}
	stored := repo.members[member.ID]
	if stored.SquareCustomerID == nil || *stored.SquareCustomerID != "CUST-123" {
		t.Fatalf("expected stored square customer id, got %v", stored.SquareCustomerID)
	}
	if len(member.PreferredVarietals) != 2 {
		t.Fatalf("expected 2 varietals, got %d", len(member.PreferredVarietals))
	}
}

func TestCreateMemberSkipsSquareWhenUnconfigured(t *testing.T) {
	repo := newStubMemberRepo()
	registrar := &stubRegistrar{configured: false}
	svc := newMemberService(t, repo, &stubPlanLoader{}, registrar)

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{
		FirstName: "Dana",
		LastName:  "Estes",
		Email:     "dana@example.com",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}
	if registrar.calls != 0 {
		t.Fatalf("expected no registration calls, got %d", registrar.calls)
	}
	if member.SquareCustomerID != nil {
		t.Fatal("expected no square customer id")
	}
}

func TestCreateMemberRejectsInactivePlan(t *testing.T) {
	planID := uuid.New()
	plans := &stubPlanLoader{plans: map[uuid.UUID]*models.ClubPlan{
		planID: {ID: planID, Name: "Retired", IsActive: false},
	}}
	svc := newMemberService(t, newStubMemberRepo(), plans, nil)

	_, err := svc.CreateMember(context.Background(), CreateMemberInput{
		FirstName: "Dana",
		LastName:  "Estes",
		Email:     "dana@example.com",
		PlanID:    &planID,
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inactive plan, got %v", err)
	}
}

func TestUpdateMemberStatus(t *testing.T) {
	repo := newStubMemberRepo()
	svc := newMemberService(t, repo, &stubPlanLoader{}, nil)

	member, err := svc.CreateMember(context.Background(), CreateMemberInput{
		FirstName: "Dana",
		LastName:  "Estes",
		Email:     "dana@example.com",
	})
	if err != nil {
		t.Fatalf("CreateMember: %v", err)
	}

	paused := enums.MemberStatusPaused
	updated, err := svc.UpdateMember(context.Background(), member.ID, UpdateMemberInput{Status: &paused})
	if err != nil {
		t.Fatalf("UpdateMember: %v", err)
	}
	if updated.Status != enums.MemberStatusPaused {
		t.Fatalf("expected paused, got %s", updated.Status)
	}

	invalid := enums.MemberStatus("frozen")
	_, err = svc.UpdateMember(context.Background(), member.ID, UpdateMemberInput{Status: &invalid})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetMemberNotFound(t *testing.T) {
	svc := newMemberService(t, newStubMemberRepo(), &stubPlanLoader{}, nil)

	_, err := svc.GetMember(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListMembersPaginates(t *testing.T) {
	repo := newStubMemberRepo()
	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := uuid.New()
		repo.members[id] = &models.Member{
			ID:        id,
			FirstName: "Member",
			LastName:  "Five",
			Email:     uuid.NewString() + "@example.com",
			Status:    enums.MemberStatusActive,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
	}
	svc := newMemberService(t, repo, &stubPlanLoader{}, nil)

	first, err := svc.ListMembers(context.Background(), ListMembersFilters{}, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("ListMembers: %v", err)
	}
	if len(first.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(first.Members))
	}
	if first.NextCursor == "" {
		t.Fatal("expected a next cursor on the first page")
	}

	second, err := svc.ListMembers(context.Background(), ListMembersFilters{}, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	if err != nil {
		t.Fatalf("ListMembers second page: %v", err)
	}
	if len(second.Members) != 2 {
		t.Fatalf("expected 2 members on second page, got %d", len(second.Members))
	}
	for _, m := range first.Members {
		for _, n := range second.Members {
			if m.ID == n.ID {
				t.Fatalf("member %s appeared on both pages", m.ID)
			}
		}
	}

	third, err := svc.ListMembers(context.Background(), ListMembersFilters{}, pagination.Params{Limit: 2, Cursor: second.NextCursor})
	if err != nil {
		t.Fatalf("ListMembers third page: %v", err)
	}
	if len(third.Members) != 1 || third.NextCursor != "" {
		t.Fatalf("expected a final page of 1 with no cursor, got %d members cursor %q", len(third.Members), third.NextCursor)
	}
}

func TestListMembersRejectsBadCursor(t *testing.T) {
	svc := newMemberService(t, newStubMemberRepo(), &stubPlanLoader{}, nil)

	_, err := svc.ListMembers(context.Background(), ListMembersFilters{}, pagination.Params{Cursor: "%%%not-base64%%%"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
