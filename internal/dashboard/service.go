package dashboard

import (
	"context"
	"fmt"

	"github.com/merlotworks/wineclub-backend/internal/catalog"
	"github.com/merlotworks/wineclub-backend/pkg/enums"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

// memberCounter reports member totals grouped by status.
type memberCounter interface {
	CountByStatus(ctx context.Context) (map[enums.MemberStatus]int64, error)
}

// orderCounter reports fulfillment order totals grouped by stage.
type orderCounter interface {
	CountOrdersByStage(ctx context.Context) (map[enums.OrderStage]int64, error)
}

// inventoryQuerier exposes the catalog query used for bottle totals.
type inventoryQuerier interface {
	Query(ctx context.Context, input catalog.QueryInput) (*catalog.QueryResult, error)
}

// Stats is the admin dashboard summary.
type Stats struct {
	MembersByStatus map[enums.MemberStatus]int64 `json:"members_by_status"`
	OrdersByStage   map[enums.OrderStage]int64   `json:"orders_by_stage"`
	TotalBottles    int                          `json:"total_bottles"`
	WineCount       int                          `json:"wine_count"`
	DemoMode        bool                         `json:"is_demo_mode"`
}

// Service aggregates the numbers the admin landing page shows.
type Service interface {
	GetStats(ctx context.Context) (*Stats, error)
}

type service struct {
	members   memberCounter
	orders    orderCounter
	inventory inventoryQuerier
	logg      *logger.Logger
}

func NewService(members memberCounter, orders orderCounter, inventory inventoryQuerier, logg *logger.Logger) (Service, error) {
	if members == nil {
		return nil, fmt.Errorf("member repository required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{members: members, orders: orders, inventory: inventory, logg: logg}, nil
}

func (s *service) GetStats(ctx context.Context) (*Stats, error) {
	memberCounts, err := s.members.CountByStatus(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count members")
	}
	orderCounts, err := s.orders.CountOrdersByStage(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders")
	}
	inventory, err := s.inventory.Query(ctx, catalog.QueryInput{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		MembersByStatus: ensureStatusKeys(memberCounts),
		OrdersByStage:   ensureStageKeys(orderCounts),
		WineCount:       inventory.TotalItems,
		DemoMode:        inventory.DemoMode,
	}
	for _, wine := range inventory.Wines {
		stats.TotalBottles += wine.TotalInventory
	}
	return stats, nil
}

// ensureStatusKeys fills zero entries so the payload always carries every
// status, counted or not.
func ensureStatusKeys(counts map[enums.MemberStatus]int64) map[enums.MemberStatus]int64 {
	out := map[enums.MemberStatus]int64{
		enums.MemberStatusActive:    0,
		enums.MemberStatusPaused:    0,
		enums.MemberStatusCancelled: 0,
	}
	for status, count := range counts {
		out[status] = count
	}
	return out
}

func ensureStageKeys(counts map[enums.OrderStage]int64) map[enums.OrderStage]int64 {
	out := map[enums.OrderStage]int64{
		enums.OrderStageOrders:   0,
		enums.OrderStagePicked:   0,
		enums.OrderStageApproved: 0,
		enums.OrderStageShipped:  0,
	}
	for stage, count := range counts {
		out[stage] = count
	}
	return out
}
