package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/api/middleware"
	"github.com/stitchlink/stitchlink-backend/api/responses"
	"github.com/stitchlink/stitchlink-backend/api/validators"
	"github.com/stitchlink/stitchlink-backend/internal/designs"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

type createDesignRequest struct {
	Title       string  `json:"title" validate:"required,max=140"`
	Description *string `json:"description,omitempty"`
	PriceCents  int     `json:"price_cents" validate:"required,min=1"`
	ImageURL    *string `json:"image_url,omitempty"`
}

type updateDesignRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,max=140"`
	Description *string `json:"description,omitempty"`
	PriceCents  *int    `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	ImageURL    *string `json:"image_url,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// CreateDesign publishes a new catalog design for the authenticated designer.
func CreateDesign(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "designs service unavailable"))
			return
		}

		var body createDesignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		design, err := svc.CreateDesign(r.Context(), middleware.UserIDFromContext(r.Context()), designs.CreateDesignInput{
			Title:       body.Title,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			ImageURL:    body.ImageURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, design)
	}
}

// UpdateDesign mutates a design owned by the authenticated designer.
func UpdateDesign(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "designs service unavailable"))
			return
		}

		designID, err := parseIDParam(r, "designID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateDesignRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		design, err := svc.UpdateDesign(r.Context(), middleware.UserIDFromContext(r.Context()), designID, designs.UpdateDesignInput{
			Title:       body.Title,
			Description: body.Description,
			PriceCents:  body.PriceCents,
			ImageURL:    body.ImageURL,
			IsActive:    body.IsActive,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, design)
	}
}

// GetDesign returns a single design by id.
func GetDesign(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "designs service unavailable"))
			return
		}

		designID, err := parseIDParam(r, "designID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		design, err := svc.GetDesign(r.Context(), designID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, design)
	}
}

// ListDesigns returns a page of the active catalog.
func ListDesigns(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "designs service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListDesigns(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// ListMyDesigns returns the authenticated designer's catalog including
// inactive designs.
func ListMyDesigns(svc designs.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "designs service unavailable"))
			return
		}

		result, err := svc.ListMyDesigns(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "missing id").WithDetails(map[string]any{"field": name})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid id").WithDetails(map[string]any{"field": name})
	}
	return id, nil
}

func parsePageParams(r *http.Request) (pagination.Params, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	return pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}, nil
}
