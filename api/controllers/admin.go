package controllers

import (
	"net/http"

	"github.com/boutique2v/commerce-backend/api/responses"
	adminsvc "github.com/boutique2v/commerce-backend/internal/admin"
	pkgerrors "github.com/boutique2v/commerce-backend/pkg/errors"
	"github.com/boutique2v/commerce-backend/pkg/logger"
)

// AdminDashboard aggregates the storefront's headline numbers.
func AdminDashboard(svc adminsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		stats, err := svc.Dashboard(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}
