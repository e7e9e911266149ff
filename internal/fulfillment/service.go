package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db"
	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
	"github.com/merlotworks/wineclub-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the fulfillment pipeline: order intake, per-item picking,
// and the stage promotions orders -> picked -> approved -> shipped.
type Service interface {
	ImportOrder(ctx context.Context, input ImportOrderInput) (*OrderDTO, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	ListOrders(ctx context.Context, stage enums.OrderStage) ([]OrderDTO, error)
	SetLineItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status enums.LineItemStatus) (*OrderDTO, error)
	MarkReadyToShip(ctx context.Context, input MarkReadyToShipInput) (*OrderDTO, error)
	Approve(ctx context.Context, orderIDs []uuid.UUID, actor string) error
	Ship(ctx context.Context, orderIDs []uuid.UUID, trackingByID map[uuid.UUID]string, actor string) error
}

type service struct {
	repo        Repository
	tx          txRunner
	logg        *logger.Logger
	metrics     *metrics.FulfillmentMetrics
	boxCapacity int
}

// NewService builds the fulfillment service. Metrics may be nil; boxCapacity
// falls back to DefaultBoxCapacity when non-positive.
func NewService(repo Repository, tx txRunner, logg *logger.Logger, fulfillmentMetrics *metrics.FulfillmentMetrics, boxCapacity int) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fulfillment repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if boxCapacity <= 0 {
		boxCapacity = DefaultBoxCapacity
	}
	return &service{
		repo:        repo,
		tx:          tx,
		logg:        logg,
		metrics:     fulfillmentMetrics,
		boxCapacity: boxCapacity,
	}, nil
}

func (s *service) ImportOrder(ctx context.Context, input ImportOrderInput) (*OrderDTO, error) {
	if strings.TrimSpace(input.MemberName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member name required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one line item required")
	}

	order := &models.ClubOrder{
		SquareOrderID: input.SquareOrderID,
		MemberID:      input.MemberID,
		MemberName:    strings.TrimSpace(input.MemberName),
		Stage:         enums.OrderStageOrders,
		Version:       1,
	}
	for i, item := range input.Items {
		if strings.TrimSpace(item.WineName) == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "wine name required on every line item")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be at least 1")
		}
		order.TotalCents += item.PriceCents * item.Quantity
		order.Items = append(order.Items, models.OrderLineItem{
			WineID:      item.WineID,
			WineName:    strings.TrimSpace(item.WineName),
			VariationID: item.VariationID,
			Quantity:    item.Quantity,
			PriceCents:  item.PriceCents,
			Status:      enums.LineItemStatusPending,
			Position:    i,
		})
	}

	var created *models.ClubOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var txErr error
		created, txErr = s.repo.WithTx(tx).CreateOrder(ctx, order)
		return txErr
	})
	if err != nil {
		if db.IsUniqueViolation(err, "square_order_id") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "order already imported for this square order id")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create club order")
	}

	s.logg.Info(s.logg.WithOrderID(ctx, created.ID.String()), "club order imported")
	return toOrderDTO(created), nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindOrderByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load club order")
	}
	return toOrderDTO(order), nil
}

func (s *service) ListOrders(ctx context.Context, stage enums.OrderStage) ([]OrderDTO, error) {
	if !stage.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order stage")
	}
	orders, err := s.repo.ListOrdersByStage(ctx, stage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list club orders")
	}
	out := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		out = append(out, *toOrderDTO(&orders[i]))
	}
	return out, nil
}

// SetLineItemStatus applies one line-item transition. Only orders still in the
// intake stage can be mutated; the enum's transition table rejects anything
// leaving removed.
func (s *service) SetLineItemStatus(ctx context.Context, orderID, itemID uuid.UUID, status enums.LineItemStatus) (*OrderDTO, error) {
	if orderID == uuid.Nil || itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id and line item id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid line item status")
	}

	var updated *models.ClubOrder
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load club order")
		}
		if order.Stage != enums.OrderStageOrders {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "line items can only change before the order is picked")
		}

		var item *models.OrderLineItem
		for i := range order.Items {
			if order.Items[i].ID == itemID {
				item = &order.Items[i]
				break
			}
		}
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "line item not found on order")
		}
		if item.Status == status {
			updated = order
			return nil
		}
		if !item.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("line item cannot move from %s to %s", item.Status, status))
		}

		if err := repo.UpdateLineItemStatus(ctx, itemID, status); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update line item status")
		}
		item.Status = status
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toOrderDTO(updated), nil
}

// MarkReadyToShip expands the picked line items into per-bottle units, groups
// them into boxes, and promotes the order into the picked stage. The
// precondition failure and the version race are both caller-visible
// rejections that leave the order untouched.
func (s *service) MarkReadyToShip(ctx context.Context, input MarkReadyToShipInput) (*OrderDTO, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if strings.TrimSpace(input.Actor) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindOrderByID(ctx, input.OrderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load club order")
		}
		if order.Stage != enums.OrderStageOrders {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order has already been picked")
		}
		if input.ExpectedVersion > 0 && order.Version != input.ExpectedVersion {
			s.metrics.IncVersionConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "order was updated by another session")
		}
		if !isReadyToShip(order.Items) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "every non-removed line item must be picked")
		}

		units := expandPickedUnits(order.ID, order.Items, s.boxCapacity)
		if err := repo.CreatePickedUnits(ctx, units); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create picked units")
		}

		now := time.Now().UTC()
		promoted, err := repo.PromoteOrder(ctx, order.ID, enums.OrderStageOrders, order.Version, map[string]any{
			"stage":     enums.OrderStagePicked,
			"picked_at": now,
			"picked_by": input.Actor,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote order to picked")
		}
		if !promoted {
			s.metrics.IncVersionConflict()
			return pkgerrors.New(pkgerrors.CodeConflict, "order was updated by another session")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPromotion(enums.OrderStagePicked.String())
	s.logg.Info(s.logg.WithOrderID(ctx, input.OrderID.String()), "order marked ready to ship")
	return s.GetOrder(ctx, input.OrderID)
}

// Approve bulk-promotes picked orders into the approved stage. The batch is
// all-or-nothing: any missing order or stage mismatch rolls back the whole
// transaction.
func (s *service) Approve(ctx context.Context, orderIDs []uuid.UUID, actor string) error {
	if err := s.promoteBatch(ctx, orderIDs, actor, enums.OrderStagePicked, enums.OrderStageApproved, func(now time.Time) map[string]any {
		return map[string]any{
			"stage":       enums.OrderStageApproved,
			"approved_at": now,
			"approved_by": actor,
		}
	}); err != nil {
		return err
	}
	s.logg.Info(ctx, fmt.Sprintf("approved %d orders", len(orderIDs)))
	return nil
}

// Ship bulk-promotes approved orders into the shipped stage. An order with no
// supplied tracking number ships with an empty tracking field.
func (s *service) Ship(ctx context.Context, orderIDs []uuid.UUID, trackingByID map[uuid.UUID]string, actor string) error {
	if err := s.promoteBatchWith(ctx, orderIDs, actor, enums.OrderStageApproved, enums.OrderStageShipped, func(id uuid.UUID, now time.Time) map[string]any {
		return map[string]any{
			"stage":           enums.OrderStageShipped,
			"shipped_at":      now,
			"shipped_by":      actor,
			"tracking_number": trackingByID[id],
		}
	}); err != nil {
		return err
	}
	s.logg.Info(ctx, fmt.Sprintf("shipped %d orders", len(orderIDs)))
	return nil
}

func (s *service) promoteBatch(ctx context.Context, orderIDs []uuid.UUID, actor string, from, to enums.OrderStage, updates func(time.Time) map[string]any) error {
	return s.promoteBatchWith(ctx, orderIDs, actor, from, to, func(_ uuid.UUID, now time.Time) map[string]any {
		return updates(now)
	})
}

func (s *service) promoteBatchWith(ctx context.Context, orderIDs []uuid.UUID, actor string, from, to enums.OrderStage, updates func(uuid.UUID, time.Time) map[string]any) error {
	if len(orderIDs) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "at least one order id required")
	}
	if strings.TrimSpace(actor) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "actor required")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exists, err := repo.OrdersExist(ctx, orderIDs)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check orders")
		}

		now := time.Now().UTC()
		for _, id := range orderIDs {
			if !exists[id] {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("order %s not found", id))
			}
			promoted, err := repo.PromoteOrder(ctx, id, from, 0, updates(id, now))
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote order")
			}
			if !promoted {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("order %s is not in the %s stage", id, from))
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	for range orderIDs {
		s.metrics.IncPromotion(to.String())
	}
	return nil
}
