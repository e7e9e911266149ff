package controllers

import (
	"net/http"

	"github.com/merlotworks/wineclub-backend/api/responses"
	dashboardsvc "github.com/merlotworks/wineclub-backend/internal/dashboard"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

// DashboardStats returns the aggregate counts the admin landing page shows.
func DashboardStats(svc dashboardsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "dashboard service unavailable"))
			return
		}

		stats, err := svc.GetStats(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
