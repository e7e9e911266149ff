package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/api/responses"
	"github.com/merlotworks/wineclub-backend/api/validators"
	memberssvc "github.com/merlotworks/wineclub-backend/internal/members"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/pagination"
)

type createMemberRequest struct {
	FirstName          string   `json:"first_name" validate:"required"`
	LastName           string   `json:"last_name" validate:"required"`
	Email              string   `json:"email" validate:"required,email"`
	Phone              *string  `json:"phone,omitempty"`
	AddressLine1       string   `json:"address_line1"`
	AddressLine2       *string  `json:"address_line2,omitempty"`
	City               string   `json:"city"`
	State              string   `json:"state"`
	PostalCode         string   `json:"postal_code"`
	PlanID             *string  `json:"plan_id,omitempty"`
	PreferredVarietals []string `json:"preferred_varietals,omitempty"`
}

type updateMemberRequest struct {
	FirstName          *string   `json:"first_name,omitempty"`
	LastName           *string   `json:"last_name,omitempty"`
	Email              *string   `json:"email,omitempty" validate:"omitempty,email"`
	Phone              *string   `json:"phone,omitempty"`
	AddressLine1       *string   `json:"address_line1,omitempty"`
	AddressLine2       *string   `json:"address_line2,omitempty"`
	City               *string   `json:"city,omitempty"`
	State              *string   `json:"state,omitempty"`
	PostalCode         *string   `json:"postal_code,omitempty"`
	PlanID             *string   `json:"plan_id,omitempty"`
	Status             *string   `json:"status,omitempty"`
	PreferredVarietals *[]string `json:"preferred_varietals,omitempty"`
}

func parseOptionalUUID(raw *string, label string) (*uuid.UUID, error) {
	if raw == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+label)
	}
	return &id, nil
}

func memberIDParam(r *http.Request) (uuid.UUID, error) {
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid member id")
	}
	return memberID, nil
}

func MemberCreate(svc memberssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		var payload createMemberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		planID, err := parseOptionalUUID(payload.PlanID, "plan id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.CreateMember(r.Context(), memberssvc.CreateMemberInput{
			FirstName:          payload.FirstName,
			LastName:           payload.LastName,
			Email:              payload.Email,
			Phone:              payload.Phone,
			AddressLine1:       payload.AddressLine1,
			AddressLine2:       payload.AddressLine2,
			City:               payload.City,
			State:              payload.State,
			PostalCode:         payload.PostalCode,
			PlanID:             planID,
			PreferredVarietals: payload.PreferredVarietals,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

func MemberUpdate(svc memberssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateMemberRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		planID, err := parseOptionalUUID(payload.PlanID, "plan id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := memberssvc.UpdateMemberInput{
			FirstName:          payload.FirstName,
			LastName:           payload.LastName,
			Email:              payload.Email,
			Phone:              payload.Phone,
			AddressLine1:       payload.AddressLine1,
			AddressLine2:       payload.AddressLine2,
			City:               payload.City,
			State:              payload.State,
			PostalCode:         payload.PostalCode,
			PlanID:             planID,
			PreferredVarietals: payload.PreferredVarietals,
		}
		if payload.Status != nil {
			status, err := enums.ParseMemberStatus(*payload.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			input.Status = &status
		}

		member, err := svc.UpdateMember(r.Context(), memberID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

func MemberGet(svc memberssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		member, err := svc.GetMember(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, member)
	}
}

func MemberList(svc memberssvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "member service unavailable"))
			return
		}

		filters := memberssvc.ListMembersFilters{
			Status: enums.MemberStatus(validators.SanitizeString(r.URL.Query().Get("status"), 40)),
			Search: validators.SanitizeString(r.URL.Query().Get("search"), 200),
		}
		if raw := r.URL.Query().Get("plan_id"); raw != "" {
			planID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid plan id"))
				return
			}
			filters.PlanID = &planID
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.ListMembers(r.Context(), filters, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
