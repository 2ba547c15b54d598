package controllers

import (
	"net/http"

	"github.com/stitchlink/stitchlink-backend/api/middleware"
	"github.com/stitchlink/stitchlink-backend/api/responses"
	"github.com/stitchlink/stitchlink-backend/api/validators"
	"github.com/stitchlink/stitchlink-backend/internal/admin"
	"github.com/stitchlink/stitchlink-backend/pkg/enums"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
)

type overrideRoleRequest struct {
	Role enums.UserRole `json:"role" validate:"required"`
}

// AdminStats returns the operator dashboard snapshot.
func AdminStats(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		stats, err := svc.Stats(r.Context(), middleware.ActorFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, stats)
	}
}

// AdminOverrideRole reassigns a user's marketplace role.
func AdminOverrideRole(svc admin.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "admin service unavailable"))
			return
		}

		userID, err := parseIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body overrideRoleRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.OverrideRole(r.Context(), middleware.ActorFromContext(r.Context()), userID, body.Role); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"role": body.Role.String()})
	}
}
