package plans

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
)

// Repository defines persistence operations for club plans.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, plan *models.ClubPlan) (*models.ClubPlan, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ClubPlan, error)
	List(ctx context.Context, activeOnly bool) ([]models.ClubPlan, error)
	Update(ctx context.Context, plan *models.ClubPlan) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a plan repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, plan *models.ClubPlan) (*models.ClubPlan, error) {
	if err := r.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, err
	}
	return plan, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ClubPlan, error) {
	var plan models.ClubPlan
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]models.ClubPlan, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var plans []models.ClubPlan
	if err := query.Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) Update(ctx context.Context, plan *models.ClubPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}
