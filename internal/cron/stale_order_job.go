package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/merlotworks/wineclub-backend/pkg/db/models"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

const defaultStaleAfterDays = 14

type stagedOrderLister interface {
	ListOrdersByStage(ctx context.Context, stage enums.OrderStage) ([]models.ClubOrder, error)
}

// StaleOrderJobParams configure the stuck-order reporter.
type StaleOrderJobParams struct {
	Logger         *logger.Logger
	Orders         stagedOrderLister
	StaleAfterDays int
}

// NewStaleOrderJob builds the job that flags orders sitting in a pre-shipment
// stage past the staleness threshold. It only reports; operators decide
// whether to pick, approve, or chase the member.
func NewStaleOrderJob(params StaleOrderJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	days := params.StaleAfterDays
	if days <= 0 {
		days = defaultStaleAfterDays
	}
	return &staleOrderJob{
		logg: params.Logger,
		repo: params.Orders,
		days: days,
		now:  time.Now,
	}, nil
}

type staleOrderJob struct {
	logg *logger.Logger
	repo stagedOrderLister
	days int
	now  func() time.Time
}

func (j *staleOrderJob) Name() string { return "stale-orders" }

func (j *staleOrderJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.days) * 24 * time.Hour)

	var errs []error
	for _, stage := range []enums.OrderStage{
		enums.OrderStageOrders,
		enums.OrderStagePicked,
		enums.OrderStageApproved,
	} {
		if err := j.reportStage(ctx, stage, cutoff); err != nil {
			errs = append(errs, err)
		}
	}
	return multierr.Combine(errs...)
}

func (j *staleOrderJob) reportStage(ctx context.Context, stage enums.OrderStage, cutoff time.Time) error {
	orders, err := j.repo.ListOrdersByStage(ctx, stage)
	if err != nil {
		return fmt.Errorf("list %s orders: %w", stage, err)
	}

	var staleIDs []string
	for _, order := range orders {
		if order.UpdatedAt.Before(cutoff) {
			staleIDs = append(staleIDs, order.ID.String())
		}
	}
	if len(staleIDs) == 0 {
		return nil
	}

	j.logg.Warn(j.logg.WithFields(ctx, map[string]any{
		"stage":     string(stage),
		"stale":     len(staleIDs),
		"order_ids": staleIDs,
		"cutoff":    cutoff.Format(time.RFC3339),
	}), "orders stuck in pre-shipment stage")
	return nil
}
