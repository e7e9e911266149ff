package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/merlotworks/wineclub-backend/api/responses"
	"github.com/merlotworks/wineclub-backend/api/validators"
	prefsvc "github.com/merlotworks/wineclub-backend/internal/preferences"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

type savePreferenceRequest struct {
	Selections []struct {
		VariationID string `json:"variation_id" validate:"required"`
		Name        string `json:"name"`
		Quantity    int    `json:"quantity" validate:"required,min=1"`
		PriceCents  int64  `json:"price_cents" validate:"min=0"`
	} `json:"selections" validate:"required,min=1,dive"`
	DeliveryDate string `json:"delivery_date" validate:"required"`
}

type checkoutRequest struct {
	SourceID string `json:"source_id" validate:"required"`
}

func windowParam(r *http.Request) string {
	return chi.URLParam(r, "window")
}

// PreferenceSave stores a member's wine selection for a shipment window.
func PreferenceSave(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload savePreferenceRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		deliveryDate, err := time.Parse("2006-01-02", payload.DeliveryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "delivery_date must look like 2026-09-15"))
			return
		}

		input := prefsvc.SavePreferenceInput{
			MemberID:     memberID,
			Window:       windowParam(r),
			DeliveryDate: deliveryDate,
		}
		for _, selection := range payload.Selections {
			input.Selections = append(input.Selections, prefsvc.WineSelection{
				VariationID: selection.VariationID,
				Name:        selection.Name,
				Quantity:    selection.Quantity,
				PriceCents:  selection.PriceCents,
			})
		}

		pref, err := svc.SavePreference(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pref)
	}
}

func PreferenceGet(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		pref, err := svc.GetPreference(r.Context(), memberID, windowParam(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, pref)
	}
}

func PreferenceList(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		prefs, err := svc.ListPreferences(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, prefs)
	}
}

func PreferenceDelete(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeletePreference(r.Context(), memberID, windowParam(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// PreferenceCheckout charges the saved selection for the window.
func PreferenceCheckout(svc prefsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "preference service unavailable"))
			return
		}

		memberID, err := memberIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Checkout(r.Context(), prefsvc.CheckoutInput{
			MemberID: memberID,
			Window:   windowParam(r),
			SourceID: payload.SourceID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
