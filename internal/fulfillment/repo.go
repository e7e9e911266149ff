package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a fulfillment repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.ClubOrder) (*models.ClubOrder, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindOrderByID(ctx context.Context, id uuid.UUID) (*models.ClubOrder, error) {
	var order models.ClubOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListOrdersByStage(ctx context.Context, stage enums.OrderStage) ([]models.ClubOrder, error) {
	var orders []models.ClubOrder
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC, created_at ASC")
		}).
		Preload("Units", func(db *gorm.DB) *gorm.DB {
			return db.Order("sequence ASC")
		}).
		Where("stage = ?", stage).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) CountOrdersByStage(ctx context.Context) (map[enums.OrderStage]int64, error) {
	type row struct {
		Stage enums.OrderStage
		Total int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.ClubOrder{}).
		Select("stage, COUNT(*) AS total").
		Group("stage").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[enums.OrderStage]int64, len(rows))
	for _, r := range rows {
		counts[r.Stage] = r.Total
	}
	return counts, nil
}

func (r *repository) OrdersExist(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]bool, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]bool{}, nil
	}
	var found []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.ClubOrder{}).
		Where("id IN ?", ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	exists := make(map[uuid.UUID]bool, len(found))
	for _, id := range found {
		exists[id] = true
	}
	return exists, nil
}

func (r *repository) UpdateLineItemStatus(ctx context.Context, itemID uuid.UUID, status enums.LineItemStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.OrderLineItem{}).
		Where("id = ?", itemID).
		Update("status", status).Error
}

func (r *repository) CreatePickedUnits(ctx context.Context, units []models.PickedUnit) error {
	if len(units) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&units).Error
}

// PromoteOrder performs the stage transition as a conditional update: the row
// moves only if it is still in the expected stage (and, when expectedVersion
// is positive, still at the expected version). A false return means another
// session won the race or the order was never in that stage.
func (r *repository) PromoteOrder(ctx context.Context, orderID uuid.UUID, from enums.OrderStage, expectedVersion int, updates map[string]any) (bool, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ClubOrder{}).
		Where("id = ? AND stage = ?", orderID, from)
	if expectedVersion > 0 {
		query = query.Where("version = ?", expectedVersion)
	}
	updates["version"] = gorm.Expr("version + 1")
	result := query.Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
