package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Abhishek-927/production-online-shop/internal/apperrors"
	"github.com/Abhishek-927/production-online-shop/internal/logger"
	"github.com/Abhishek-927/production-online-shop/internal/models"
	"github.com/Abhishek-927/production-online-shop/internal/repository"
)

type CategoryInput struct {
	Name string `json:"name" validate:"required"`
}

type CategoryService struct {
	repo repository.CategoryRepo
}

func NewCategoryService(repo repository.CategoryRepo) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategory persists a new category. Names are unique.
func (s *CategoryService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByName(ctx, in.Name); err == nil {
		return nil, apperrors.NewConflict("Category already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternal("Error in category", err)
	}

	category := &models.Category{Name: in.Name, Slug: Slugify(in.Name)}
	if err := s.repo.Create(ctx, category); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("Category already exists")
		}
		return nil, apperrors.NewInternal("Error in category", err)
	}
	logger.Info(ctx, "category created", zap.String("slug", category.Slug))
	return category, nil
}

// UpdateCategory renames a category and recomputes its slug.
func (s *CategoryService) UpdateCategory(ctx context.Context, rawID string, in CategoryInput) (*models.Category, error) {
	id, err := parseID(rawID, "category")
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	if existing, err := s.repo.FindByName(ctx, in.Name); err == nil && existing.ID != id {
		return nil, apperrors.NewConflict("Category already exists")
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewInternal("Error while updating category", err)
	}

	category, err := s.repo.Update(ctx, id, in.Name, Slugify(in.Name))
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewNotFound("Category not found")
	case errors.Is(err, repository.ErrDuplicate):
		return nil, apperrors.NewConflict("Category already exists")
	case err != nil:
		return nil, apperrors.NewInternal("Error while updating category", err)
	}
	return category, nil
}

// DeleteCategory removes the category if present. Products keep their
// reference.
func (s *CategoryService) DeleteCategory(ctx context.Context, rawID string) error {
	id, err := parseID(rawID, "category")
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NewInternal("Error while deleting category", err)
	}
	return nil
}

func (s *CategoryService) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewInternal("Error while getting all categories", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	category, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Category not found")
		}
		return nil, apperrors.NewInternal("Error while getting single category", err)
	}
	return category, nil
}
