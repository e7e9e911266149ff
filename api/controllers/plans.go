package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/merlotworks/wineclub-backend/api/responses"
	"github.com/merlotworks/wineclub-backend/api/validators"
	planssvc "github.com/merlotworks/wineclub-backend/internal/plans"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

type createPlanRequest struct {
	Name               string  `json:"name" validate:"required"`
	Description        *string `json:"description,omitempty"`
	BottlesPerShipment int     `json:"bottles_per_shipment" validate:"required,min=1"`
	Frequency          string  `json:"frequency" validate:"required"`
	Price              string  `json:"price" validate:"required"`
	IsActive           *bool   `json:"is_active,omitempty"`
}

type updatePlanRequest struct {
	Name               *string `json:"name,omitempty"`
	Description        *string `json:"description,omitempty"`
	BottlesPerShipment *int    `json:"bottles_per_shipment,omitempty" validate:"omitempty,min=1"`
	Frequency          *string `json:"frequency,omitempty"`
	Price              *string `json:"price,omitempty"`
	IsActive           *bool   `json:"is_active,omitempty"`
}

func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "price must be a decimal amount")
	}
	return price, nil
}

func PlanCreate(svc planssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		var payload createPlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		frequency, err := enums.ParsePlanFrequency(payload.Frequency)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid frequency"))
			return
		}
		price, err := parsePrice(payload.Price)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := planssvc.CreatePlanInput{
			Name:               validators.SanitizeString(payload.Name, 200),
			Description:        payload.Description,
			BottlesPerShipment: payload.BottlesPerShipment,
			Frequency:          frequency,
			Price:              price,
			IsActive:           true,
		}
		if payload.IsActive != nil {
			input.IsActive = *payload.IsActive
		}

		plan, err := svc.CreatePlan(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, plan)
	}
}

func PlanUpdate(svc planssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		planID, err := uuid.Parse(chi.URLParam(r, "planID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan id"))
			return
		}

		var payload updatePlanRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := planssvc.UpdatePlanInput{
			Name:               payload.Name,
			Description:        payload.Description,
			BottlesPerShipment: payload.BottlesPerShipment,
			IsActive:           payload.IsActive,
		}
		if payload.Frequency != nil {
			frequency, err := enums.ParsePlanFrequency(*payload.Frequency)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid frequency"))
				return
			}
			input.Frequency = &frequency
		}
		if payload.Price != nil {
			price, err := parsePrice(*payload.Price)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			input.Price = &price
		}

		plan, err := svc.UpdatePlan(r.Context(), planID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

func PlanGet(svc planssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		planID, err := uuid.Parse(chi.URLParam(r, "planID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan id"))
			return
		}

		plan, err := svc.GetPlan(r.Context(), planID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plan)
	}
}

func PlanList(svc planssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "plan service unavailable"))
			return
		}

		activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")
		plans, err := svc.ListPlans(r.Context(), activeOnly)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, plans)
	}
}
