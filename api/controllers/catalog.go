package controllers

import (
	"net/http"

	"github.com/merlotworks/wineclub-backend/api/responses"
	"github.com/merlotworks/wineclub-backend/api/validators"
	catalogsvc "github.com/merlotworks/wineclub-backend/internal/catalog"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

const maxCatalogLimit = 500

// CatalogQuery returns the normalized wine list, optionally filtered by
// category and truncated to a limit.
func CatalogQuery(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, maxCatalogLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Query(r.Context(), catalogsvc.QueryInput{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 100),
			Limit:    limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
