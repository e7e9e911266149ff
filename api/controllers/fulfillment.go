package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/merlotworks/wineclub-backend/api/middleware"
	"github.com/merlotworks/wineclub-backend/api/responses"
	"github.com/merlotworks/wineclub-backend/api/validators"
	fulfillmentsvc "github.com/merlotworks/wineclub-backend/internal/fulfillment"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

type importOrderRequest struct {
	SquareOrderID *string `json:"square_order_id,omitempty"`
	MemberID      *string `json:"member_id,omitempty"`
	MemberName    string  `json:"member_name" validate:"required"`
	Items         []struct {
		WineID      string `json:"wine_id"`
		WineName    string `json:"wine_name" validate:"required"`
		VariationID string `json:"variation_id"`
		Quantity    int    `json:"quantity" validate:"required,min=1"`
		PriceCents  int    `json:"price_cents" validate:"min=0"`
	} `json:"items" validate:"required,min=1,dive"`
}

type itemStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type markReadyRequest struct {
	ExpectedVersion int `json:"expected_version,omitempty" validate:"omitempty,min=1"`
}

type promoteBatchRequest struct {
	OrderIDs []string `json:"order_ids" validate:"required,min=1,dive,required"`
}

type shipBatchRequest struct {
	OrderIDs []string          `json:"order_ids" validate:"required,min=1,dive,required"`
	Tracking map[string]string `json:"tracking,omitempty"`
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return orderID, nil
}

func parseOrderIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(value)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FulfillmentImport creates a club order with pending line items.
func FulfillmentImport(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var payload importOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		memberID, err := parseOptionalUUID(payload.MemberID, "member id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := fulfillmentsvc.ImportOrderInput{
			SquareOrderID: payload.SquareOrderID,
			MemberID:      memberID,
			MemberName:    validators.SanitizeString(payload.MemberName, 200),
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, fulfillmentsvc.ImportLineItemInput{
				WineID:      item.WineID,
				WineName:    item.WineName,
				VariationID: item.VariationID,
				Quantity:    item.Quantity,
				PriceCents:  item.PriceCents,
			})
		}

		order, err := svc.ImportOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// FulfillmentList returns orders in one stage of the pipeline.
func FulfillmentList(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		stage := enums.OrderStageOrders
		if raw := r.URL.Query().Get("stage"); raw != "" {
			parsed, err := enums.ParseOrderStage(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stage"))
				return
			}
			stage = parsed
		}

		orders, err := svc.ListOrders(r.Context(), stage)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orders)
	}
}

func FulfillmentDetail(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// FulfillmentItemStatus moves one line item between picking statuses.
func FulfillmentItemStatus(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item id"))
			return
		}

		var payload itemStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status, err := enums.ParseLineItemStatus(payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.SetLineItemStatus(r.Context(), orderID, itemID, status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// FulfillmentMarkReady promotes an order from orders to picked, expanding the
// picked line items into sequenced bottle units.
func FulfillmentMarkReady(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload markReadyRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.MarkReadyToShip(r.Context(), fulfillmentsvc.MarkReadyToShipInput{
			OrderID:         orderID,
			Actor:           middleware.AdminIDFromContext(r.Context()),
			ExpectedVersion: payload.ExpectedVersion,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func FulfillmentApprove(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var payload promoteBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderIDs, err := parseOrderIDs(payload.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Approve(r.Context(), orderIDs, middleware.AdminIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"approved": len(orderIDs)})
	}
}

func FulfillmentShip(svc fulfillmentsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment service unavailable"))
			return
		}

		var payload shipBatchRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderIDs, err := parseOrderIDs(payload.OrderIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		trackingByID := make(map[uuid.UUID]string, len(payload.Tracking))
		for raw, tracking := range payload.Tracking {
			id, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id in tracking map"))
				return
			}
			trackingByID[id] = tracking
		}

		if err := svc.Ship(r.Context(), orderIDs, trackingByID, middleware.AdminIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"shipped": len(orderIDs)})
	}
}
