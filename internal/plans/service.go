package plans

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db"
	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
)

// Service exposes club plan configuration.
type Service interface {
	CreatePlan(ctx context.Context, input CreatePlanInput) (*PlanDTO, error)
	UpdatePlan(ctx context.Context, planID uuid.UUID, input UpdatePlanInput) (*PlanDTO, error)
	GetPlan(ctx context.Context, planID uuid.UUID) (*PlanDTO, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]PlanDTO, error)
}

type service struct {
	repo Repository
}

// NewService constructs a plan service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("plan repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreatePlan(ctx context.Context, input CreatePlanInput) (*PlanDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name required")
	}
	if input.BottlesPerShipment < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottles per shipment must be at least 1")
	}
	if !input.Frequency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan frequency")
	}
	cents, ok := priceToCents(input.Price)
	if !ok || cents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a non-negative amount with at most two decimal places")
	}

	plan := &models.ClubPlan{
		Name:               name,
		Description:        input.Description,
		BottlesPerShipment: input.BottlesPerShipment,
		Frequency:          input.Frequency,
		PriceCents:         cents,
		IsActive:           input.IsActive,
	}
	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create plan")
	}
	return toPlanDTO(created), nil
}

func (s *service) UpdatePlan(ctx context.Context, planID uuid.UUID, input UpdatePlanInput) (*PlanDTO, error) {
	if planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id required")
	}

	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan name cannot be empty")
		}
		plan.Name = name
	}
	if input.Description != nil {
		plan.Description = input.Description
	}
	if input.BottlesPerShipment != nil {
		if *input.BottlesPerShipment < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "bottles per shipment must be at least 1")
		}
		plan.BottlesPerShipment = *input.BottlesPerShipment
	}
	if input.Frequency != nil {
		if !input.Frequency.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan frequency")
		}
		plan.Frequency = *input.Frequency
	}
	if input.Price != nil {
		cents, ok := priceToCents(*input.Price)
		if !ok || cents < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be a non-negative amount with at most two decimal places")
		}
		plan.PriceCents = cents
	}
	if input.IsActive != nil {
		plan.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, plan); err != nil {
		if db.IsUniqueViolation(err, "name") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "a plan with that name already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update plan")
	}
	return toPlanDTO(plan), nil
}

func (s *service) GetPlan(ctx context.Context, planID uuid.UUID) (*PlanDTO, error) {
	if planID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plan id required")
	}
	plan, err := s.loadPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	return toPlanDTO(plan), nil
}

func (s *service) ListPlans(ctx context.Context, activeOnly bool) ([]PlanDTO, error) {
	plans, err := s.repo.List(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list plans")
	}
	out := make([]PlanDTO, 0, len(plans))
	for i := range plans {
		out = append(out, *toPlanDTO(&plans[i]))
	}
	return out, nil
}

func (s *service) loadPlan(ctx context.Context, planID uuid.UUID) (*models.ClubPlan, error) {
	plan, err := s.repo.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "plan not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load plan")
	}
	return plan, nil
}
