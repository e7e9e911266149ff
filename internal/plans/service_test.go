package plans

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
)

type stubPlanRepo struct {
	plans map[uuid.UUID]*models.ClubPlan
}

func newStubPlanRepo() *stubPlanRepo {
	return &stubPlanRepo{plans: map[uuid.UUID]*models.ClubPlan{}}
}

func (s *stubPlanRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubPlanRepo) Create(ctx context.Context, plan *models.ClubPlan) (*models.ClubPlan, error) {
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	s.plans[plan.ID] = plan
	return plan, nil
}

func (s *stubPlanRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.ClubPlan, error) {
	plan, ok := s.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *plan
	return &copied, nil
}

func (s *stubPlanRepo) List(ctx context.Context, activeOnly bool) ([]models.ClubPlan, error) {
	var out []models.ClubPlan
	for _, plan := range s.plans {
		if activeOnly && !plan.IsActive {
			continue
		}
		out = append(out, *plan)
	}
	return out, nil
}

func (s *stubPlanRepo) Update(ctx context.Context, plan *models.ClubPlan) error {
	s.plans[plan.ID] = plan
	return nil
}

func mustNewService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreatePlanMapsPriceToCents(t *testing.T) {
	svc := mustNewService(t, newStubPlanRepo())

	plan, err := svc.CreatePlan(context.Background(), CreatePlanInput{
		Name:               "Quarterly Reds",
		BottlesPerShipment: 6,
		Frequency:          enums.PlanFrequencyQuarterly,
		Price:              decimal.RequireFromString("89.99"),
		IsActive:           true,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	if plan.PriceCents != 8999 {
		t.Fatalf("expected 8999 cents, got %d", plan.PriceCents)
	}
	if !plan.Price.Equal(decimal.RequireFromString("89.99")) {
		t.Fatalf("expected price 89.99, got %s", plan.Price)
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc := mustNewService(t, newStubPlanRepo())

	tests := []struct {
		name  string
		input CreatePlanInput
	}{
		{"emptyName", CreatePlanInput{BottlesPerShipment: 6, Frequency: enums.PlanFrequencyMonthly, Price: decimal.NewFromInt(10)}},
		{"zeroBottles", CreatePlanInput{Name: "P", BottlesPerShipment: 0, Frequency: enums.PlanFrequencyMonthly, Price: decimal.NewFromInt(10)}},
		{"badFrequency", CreatePlanInput{Name: "P", BottlesPerShipment: 6, Frequency: "weekly", Price: decimal.NewFromInt(10)}},
		{"subCentPrice", CreatePlanInput{Name: "P", BottlesPerShipment: 6, Frequency: enums.PlanFrequencyMonthly, Price: decimal.RequireFromString("10.999")}},
		{"negativePrice", CreatePlanInput{Name: "P", BottlesPerShipment: 6, Frequency: enums.PlanFrequencyMonthly, Price: decimal.RequireFromString("-1")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreatePlan(context.Background(), tc.input)
			if err == nil {
				t.Fatal("expected validation error")
			}
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestUpdatePlanPartialMutation(t *testing.T) {
	repo := newStubPlanRepo()
	svc := mustNewService(t, repo)

	created, err := svc.CreatePlan(context.Background(), CreatePlanInput{
		Name:               "Monthly Mixed",
		BottlesPerShipment: 3,
		Frequency:          enums.PlanFrequencyMonthly,
		Price:              decimal.RequireFromString("45.00"),
		IsActive:           true,
	})
	if err != nil {
		t.Fatalf("CreatePlan: %v", err)
	}

	newPrice := decimal.RequireFromString("49.50")
	inactive := false
	updated, err := svc.UpdatePlan(context.Background(), created.ID, UpdatePlanInput{
		Price:    &newPrice,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdatePlan: %v", err)
	}

	if updated.PriceCents != 4950 {
		t.Fatalf("expected 4950 cents, got %d", updated.PriceCents)
	}
	if updated.IsActive {
		t.Fatal("expected plan deactivated")
	}
	if updated.Name != "Monthly Mixed" {
		t.Fatalf("expected untouched name, got %s", updated.Name)
	}
	if updated.BottlesPerShipment != 3 {
		t.Fatalf("expected untouched bottle count, got %d", updated.BottlesPerShipment)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	svc := mustNewService(t, newStubPlanRepo())

	_, err := svc.GetPlan(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestListPlansActiveOnly(t *testing.T) {
	repo := newStubPlanRepo()
	svc := mustNewService(t, repo)

	for _, active := range []bool{true, false} {
		if _, err := svc.CreatePlan(context.Background(), CreatePlanInput{
			Name:               uuid.NewString(),
			BottlesPerShipment: 6,
			Frequency:          enums.PlanFrequencyBiannual,
			Price:              decimal.NewFromInt(120),
			IsActive:           active,
		}); err != nil {
			t.Fatalf("CreatePlan: %v", err)
		}
	}

	active, err := svc.ListPlans(context.Background(), true)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active plan, got %d", len(active))
	}

	all, err := svc.ListPlans(context.Background(), false)
	if err != nil {
		t.Fatalf("ListPlans: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(all))
	}
}
