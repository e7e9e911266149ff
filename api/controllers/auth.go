package controllers

import (
	"net/http"

	"github.com/merlotworks/wineclub-backend/api/responses"
	"github.com/merlotworks/wineclub-backend/api/validators"
	authsvc "github.com/merlotworks/wineclub-backend/internal/auth"
	pkgerrors "github.com/merlotworks/wineclub-backend/pkg/errors"
	"github.com/merlotworks/wineclub-backend/pkg/logger"
)

// AuthLogin exchanges admin credentials for an access token.
func AuthLogin(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload authsvc.LoginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
