package designs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/stitchlink/stitchlink-backend/pkg/db/models"
	pkgerrors "github.com/stitchlink/stitchlink-backend/pkg/errors"
	"github.com/stitchlink/stitchlink-backend/pkg/pagination"
)

// Service exposes designer catalog management and public browsing.
type Service interface {
	CreateDesign(ctx context.Context, designerID uuid.UUID, input CreateDesignInput) (*DesignDTO, error)
	UpdateDesign(ctx context.Context, designerID, designID uuid.UUID, input UpdateDesignInput) (*DesignDTO, error)
	GetDesign(ctx context.Context, designID uuid.UUID) (*DesignDTO, error)
	ListDesigns(ctx context.Context, params pagination.Params) (*DesignListResult, error)
	ListMyDesigns(ctx context.Context, designerID uuid.UUID) ([]DesignDTO, error)
}

// CreateDesignInput holds the validated payload to list a design.
type CreateDesignInput struct {
	Title       string
	Description *string
	PriceCents  int
	ImageURL    *string
}

// UpdateDesignInput holds optional mutation values for a design. Price
// changes only affect future orders; existing orders keep frozen amounts.
type UpdateDesignInput struct {
	Title       *string
	Description *string
	PriceCents  *int
	ImageURL    *string
	IsActive    *bool
}

type designRepository interface {
	Create(ctx context.Context, design *models.Design) (*models.Design, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Design, error)
	Update(ctx context.Context, design *models.Design) (*models.Design, error)
	ListActive(ctx context.Context, params pagination.Params) ([]models.Design, error)
	ListByDesigner(ctx context.Context, designerID uuid.UUID) ([]models.Design, error)
}

type service struct {
	repo designRepository
}

// NewService constructs a design service instance.
func NewService(repo designRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("design repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateDesign(ctx context.Context, designerID uuid.UUID, input CreateDesignInput) (*DesignDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if input.PriceCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
	}

	design := &models.Design{
		DesignerID:  designerID,
		Title:       title,
		Description: input.Description,
		PriceCents:  input.PriceCents,
		ImageURL:    input.ImageURL,
		IsActive:    true,
	}
	created, err := s.repo.Create(ctx, design)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert design")
	}
	return FromModel(created), nil
}

func (s *service) UpdateDesign(ctx context.Context, designerID, designID uuid.UUID, input UpdateDesignInput) (*DesignDTO, error) {
	design, err := s.loadOwned(ctx, designerID, designID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		design.Title = title
	}
	if input.Description != nil {
		design.Description = input.Description
	}
	if input.PriceCents != nil {
		if *input.PriceCents <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_cents must be positive")
		}
		design.PriceCents = *input.PriceCents
	}
	if input.ImageURL != nil {
		design.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		design.IsActive = *input.IsActive
	}

	updated, err := s.repo.Update(ctx, design)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update design")
	}
	return FromModel(updated), nil
}

func (s *service) GetDesign(ctx context.Context, designID uuid.UUID) (*DesignDTO, error) {
	design, err := s.repo.FindByID(ctx, designID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load design")
	}
	return FromModel(design), nil
}

func (s *service) ListDesigns(ctx context.Context, params pagination.Params) (*DesignListResult, error) {
	rows, err := s.repo.ListActive(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list designs")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	result := &DesignListResult{Designs: make([]DesignDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			cursor := pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
			result.NextCursor = &cursor
			break
		}
		result.Designs = append(result.Designs, *FromModel(&rows[i]))
	}
	return result, nil
}

func (s *service) ListMyDesigns(ctx context.Context, designerID uuid.UUID) ([]DesignDTO, error) {
	rows, err := s.repo.ListByDesigner(ctx, designerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list designer designs")
	}
	dtos := make([]DesignDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) loadOwned(ctx context.Context, designerID, designID uuid.UUID) (*models.Design, error) {
	design, err := s.repo.FindByID(ctx, designID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "design not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load design")
	}
	if design.DesignerID != designerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "design belongs to another designer")
	}
	return design, nil
}
