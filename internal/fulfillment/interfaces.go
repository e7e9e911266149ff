package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

// Repository defines persistence operations for club orders moving through the
// fulfillment pipeline.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.ClubOrder) (*models.ClubOrder, error)
	FindOrderByID(ctx context.Context, id uuid.UUID) (*models.ClubOrder, error)
	ListOrdersByStage(ctx context.Context, stage enums.OrderStage) ([]models.ClubOrder, error)
	CountOrdersByStage(ctx context.Context) (map[enums.OrderStage]int64, error)
	OrdersExist(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error)
	UpdateLineItemStatus(ctx context.Context, itemID uuid.UUID, status enums.LineItemStatus) error
	CreatePickedUnits(ctx context.Context, units []models.PickedUnit) error
	PromoteOrder(ctx context.Context, orderID uuid.UUID, from enums.OrderStage, expectedVersion int, updates map[string]any) (bool, error)
}
