package seamstresses

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db"
	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
)

// Service exposes seamstress profile management and pricing offers.
type Service interface {
	UpsertProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*ProfileDTO, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error)
	ListProfiles(ctx context.Context) ([]ProfileDTO, error)
	SubmitOffer(ctx context.Context, seamstressID uuid.UUID, input OfferInput) (*OfferDTO, error)
	UpdateOffer(ctx context.Context, seamstressID, offerID uuid.UUID, input UpdateOfferInput) (*OfferDTO, error)
	ListOffersForDesign(ctx context.Context, designID uuid.UUID) ([]OfferDTO, error)
	ListMyOffers(ctx context.Context, seamstressID uuid.UUID) ([]OfferDTO, error)
}

// ProfileInput holds the payload for creating or replacing a profile.
type ProfileInput struct {
	BasePriceCents    int
	TurnaroundDaysMin int
	TurnaroundDaysMax int
	Bio               *string
}

// OfferInput is the payload for submitting a pricing offer on a design.
type OfferInput struct {
	DesignID     uuid.UUID
	PriceCents   int
	Difficulty   int
	TimelineDays *int
	Notes        *string
}

// UpdateOfferInput holds optional mutation values for an existing offer.
// Price changes never touch orders already created from the offer.
type UpdateOfferInput struct {
	PriceCents   *int
	Difficulty   *int
	TimelineDays *int
	Notes        *string
}

type offerRepository interface {
	UpsertProfile(ctx context.Context, profile *models.SeamstressProfile) (*models.SeamstressProfile, error)
	FindProfileByUserID(ctx context.Context, userID uuid.UUID) (*models.SeamstressProfile, error)
	ListProfiles(ctx context.Context) ([]models.SeamstressProfile, error)
	CreateOffer(ctx context.Context, offer *models.PricingOffer) (*models.PricingOffer, error)
	UpdateOffer(ctx context.Context, offer *models.PricingOffer) (*models.PricingOffer, error)
	FindOfferByID(ctx context.Context, id uuid.UUID) (*models.PricingOffer, error)
	ListOffersByDesign(ctx context.Context, designID uuid.UUID) ([]models.PricingOffer, error)
	ListOffersBySeamstress(ctx context.Context, seamstressID uuid.UUID) ([]models.PricingOffer, error)
}

type designLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error)
}

type service struct {
	repo    offerRepository
	designs designLoader
}

// NewService constructs a seamstress service instance.
func NewService(repo offerRepository, designs designLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seamstress repository required")
	}
	if designs == nil {
		return nil, fmt.Errorf("design loader required")
	}
	return &service{repo: repo, designs: designs}, nil
}

func (s *service) UpsertProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) (*ProfileDTO, error) {
	if input.BasePriceCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "base_price_cents cannot be negative")
	}
	if input.TurnaroundDaysMin <= 0 || input.TurnaroundDaysMax < input.TurnaroundDaysMin {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid turnaround window")
	}

	profile := &models.SeamstressProfile{
		UserID:            userID,
		BasePriceCents:    input.BasePriceCents,
		TurnaroundDaysMin: input.TurnaroundDaysMin,
		TurnaroundDaysMax: input.TurnaroundDaysMax,
		Bio:               input.Bio,
	}
	saved, err := s.repo.UpsertProfile(ctx, profile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: upsert profile")
	}
	return ProfileFromModel(saved), nil
}

func (s *service) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileDTO, error) {
	profile, err := s.repo.FindProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load profile")
	}
	return ProfileFromModel(profile), nil
}

func (s *service) ListProfiles(ctx context.Context) ([]ProfileDTO, error) {
	rows, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list profiles")
	}
	dtos := make([]ProfileDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *ProfileFromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) SubmitOffer(ctx context.Context, seamstressID uuid.UUID, input OfferInput) (*OfferDTO, error) {
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
	}
	if input.Difficulty < 1 || input.Difficulty > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "difficulty must be between 1 and 5")
	}

	design, err := s.designs.FindByID(ctx, input.DesignID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load design")
	}
	if !design.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "design is not accepting offers")
	}

	offer := &models.PricingOffer{
		DesignID:     input.DesignID,
		SeamstressID: seamstressID,
		PriceCents:   input.PriceCents,
		Difficulty:   input.Difficulty,
		TimelineDays: input.TimelineDays,
		Notes:        input.Notes,
	}
	created, err := s.repo.CreateOffer(ctx, offer)
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "offer already exists for this design")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert offer")
	}
	return OfferFromModel(created), nil
}

func (s *service) UpdateOffer(ctx context.Context, seamstressID, offerID uuid.UUID, input UpdateOfferInput) (*OfferDTO, error) {
	offer, err := s.repo.FindOfferByID(ctx, offerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "offer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load offer")
	}
	if offer.SeamstressID != seamstressID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "offer belongs to another seamstress")
	}

	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
		}
		offer.PriceCents = *input.PriceCents
	}
	if input.Difficulty != nil {
		if *input.Difficulty < 1 || *input.Difficulty > 5 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "difficulty must be between 1 and 5")
		}
		offer.Difficulty = *input.Difficulty
	}
	if input.TimelineDays != nil {
		offer.TimelineDays = input.TimelineDays
	}
	if input.Notes != nil {
		offer.Notes = input.Notes
	}

	updated, err := s.repo.UpdateOffer(ctx, offer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update offer")
	}
	return OfferFromModel(updated), nil
}

func (s *service) ListOffersForDesign(ctx context.Context, designID uuid.UUID) ([]OfferDTO, error) {
	rows, err := s.repo.ListOffersByDesign(ctx, designID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list design offers")
	}
	dtos := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *OfferFromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) ListMyOffers(ctx context.Context, seamstressID uuid.UUID) ([]OfferDTO, error) {
	rows, err := s.repo.ListOffersBySeamstress(ctx, seamstressID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list offers")
	}
	dtos := make([]OfferDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *OfferFromModel(&rows[i]))
	}
	return dtos, nil
}
