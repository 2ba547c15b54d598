package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/stitchlink/stitchlink-backend/api/middleware"
	"github.com/stitchlink/stitchlink-backend/api/responses"
	"github.com/stitchlink/stitchlink-backend/api/validators"
	"github.com/stitchlink/stitchlink-backend/internal/seamstresses"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/logger"
)

type profileRequest struct {
	BasePriceCents    int     `json:"base_price_cents" validate:"min=0"`
	TurnaroundDaysMin int     `json:"turnaround_days_min" validate:"required,min=1"`
	TurnaroundDaysMax int     `json:"turnaround_days_max" validate:"required,min=1"`
	Bio               *string `json:"bio,omitempty"`
}

type submitOfferRequest struct {
	DesignID     uuid.UUID `json:"design_id" validate:"required"`
	PriceCents   int       `json:"price_cents" validate:"required,min=1"`
	Difficulty   int       `json:"difficulty" validate:"required,min=1,max=5"`
	TimelineDays *int      `json:"timeline_days,omitempty" validate:"omitempty,min=1"`
	Notes        *string   `json:"notes,omitempty"`
}

type updateOfferRequest struct {
	PriceCents   *int    `json:"price_cents,omitempty" validate:"omitempty,min=1"`
	Difficulty   *int    `json:"difficulty,omitempty" validate:"omitempty,min=1,max=5"`
	TimelineDays *int    `json:"timeline_days,omitempty" validate:"omitempty,min=1"`
	Notes        *string `json:"notes,omitempty"`
}

// UpsertSeamstressProfile creates or replaces the caller's public profile.
func UpsertSeamstressProfile(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		var body profileRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.UpsertProfile(r.Context(), middleware.UserIDFromContext(r.Context()), seamstresses.ProfileInput{
			BasePriceCents:    body.BasePriceCents,
			TurnaroundDaysMin: body.TurnaroundDaysMin,
			TurnaroundDaysMax: body.TurnaroundDaysMax,
			Bio:               body.Bio,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// GetSeamstressProfile returns one seamstress's public profile.
func GetSeamstressProfile(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		userID, err := parseIDParam(r, "userID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		profile, err := svc.GetProfile(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ListSeamstresses returns all public profiles ordered by rating.
func ListSeamstresses(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		profiles, err := svc.ListProfiles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, profiles)
	}
}

// SubmitOffer records the caller's pricing offer on a design.
func SubmitOffer(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		var body submitOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.SubmitOffer(r.Context(), middleware.UserIDFromContext(r.Context()), seamstresses.OfferInput{
			DesignID:     body.DesignID,
			PriceCents:   body.PriceCents,
			Difficulty:   body.Difficulty,
			TimelineDays: body.TimelineDays,
			Notes:        body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// UpdateOffer mutates an offer owned by the caller.
func UpdateOffer(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		offerID, err := parseIDParam(r, "offerID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOfferRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.UpdateOffer(r.Context(), middleware.UserIDFromContext(r.Context()), offerID, seamstresses.UpdateOfferInput{
			PriceCents:   body.PriceCents,
			Difficulty:   body.Difficulty,
			TimelineDays: body.TimelineDays,
			Notes:        body.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// ListDesignOffers returns all offers on a design, cheapest first.
func ListDesignOffers(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		designID, err := parseIDParam(r, "designID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offers, err := svc.ListOffersForDesign(r.Context(), designID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers)
	}
}

// ListMyOffers returns all offers submitted by the caller.
func ListMyOffers(svc seamstresses.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "seamstresses service unavailable"))
			return
		}

		offers, err := svc.ListMyOffers(r.Context(), middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offers)
	}
}
