package services

import (
	"context"
	"errors"

	"github.com/K-sous4/scarf-store/cache"
	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/repositories"
)

// ErrDuplicateSlug is returned when creating a category whose slug is taken
var ErrDuplicateSlug = errors.New("slug already exists")

// ErrParameterNotFound is returned for operations on a missing parameter
var ErrParameterNotFound = errors.New("parameter not found")

// ParameterService manages the filter parameters: categories, colors, and
// materials. Reads go through the cache-aside layer; mutations invalidate
// the affected cache key.
type ParameterService struct {
	categories repositories.CategoryRepository
	colors     repositories.ColorRepository
	materials  repositories.MaterialRepository
	cache      *cache.Cache
}

// NewParameterService creates a ParameterService
func NewParameterService(
	categories repositories.CategoryRepository,
	colors repositories.ColorRepository,
	materials repositories.MaterialRepository,
	filterCache *cache.Cache,
) *ParameterService {
	return &ParameterService{
		categories: categories,
		colors:     colors,
		materials:  materials,
		cache:      filterCache,
	}
}

// ListCategories returns active categories, served from cache when possible
func (s *ParameterService) ListCategories(ctx context.Context) ([]models.Category, error) {
	var cached []models.Category
	if s.cache.Get(ctx, cache.KeyCategories, &cached) {
		return cached, nil
	}

	categories, err := s.categories.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.KeyCategories, categories)
	return categories, nil
}

// ListColors returns active colors, served from cache when possible
func (s *ParameterService) ListColors(ctx context.Context) ([]models.Color, error) {
	var cached []models.Color
	if s.cache.Get(ctx, cache.KeyColors, &cached) {
		return cached, nil
	}

	colors, err := s.colors.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.KeyColors, colors)
	return colors, nil
}

// ListMaterials returns active materials, served from cache when possible
func (s *ParameterService) ListMaterials(ctx context.Context) ([]models.Material, error) {
	var cached []models.Material
	if s.cache.Get(ctx, cache.KeyMaterials, &cached) {
		return cached, nil
	}

	materials, err := s.materials.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, cache.KeyMaterials, materials)
	return materials, nil
}

// CreateCategory adds a category; its slug must be unique
func (s *ParameterService) CreateCategory(ctx context.Context, category *models.Category) error {
	existing, err := s.categories.FindBySlug(ctx, category.Slug)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrDuplicateSlug
	}

	if err := s.categories.Create(ctx, category); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyCategories)
	return nil
}

// UpdateCategory modifies an existing category
func (s *ParameterService) UpdateCategory(ctx context.Context, category *models.Category) error {
	current, err := s.categories.FindByID(ctx, category.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrParameterNotFound
	}

	if category.Slug != current.Slug {
		existing, err := s.categories.FindBySlug(ctx, category.Slug)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrDuplicateSlug
		}
	}

	if err := s.categories.Update(ctx, category); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyCategories)
	return nil
}

// DeleteCategory removes a category
func (s *ParameterService) DeleteCategory(ctx context.Context, id int64) error {
	current, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrParameterNotFound
	}

	if err := s.categories.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyCategories)
	return nil
}

// CreateColor adds a color
func (s *ParameterService) CreateColor(ctx context.Context, color *models.Color) error {
	if err := s.colors.Create(ctx, color); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.KeyColors)
	return nil
}

// UpdateColor modifies an existing color
func (s *ParameterService) UpdateColor(ctx context.Context, color *models.Color) error {
	current, err := s.colors.FindByID(ctx, color.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrParameterNotFound
	}

	if err := s.colors.Update(ctx, color); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyColors)
	return nil
}

// DeleteColor removes a color
func (s *ParameterService) DeleteColor(ctx context.Context, id int64) error {
	current, err := s.colors.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrParameterNotFound
	}

	if err := s.colors.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyColors)
	return nil
}

// CreateMaterial adds a material
func (s *ParameterService) CreateMaterial(ctx context.Context, material *models.Material) error {
	if err := s.materials.Create(ctx, material); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, cache.KeyMaterials)
	return nil
}

// UpdateMaterial modifies an existing material
func (s *ParameterService) UpdateMaterial(ctx context.Context, material *models.Material) error {
	current, err := s.materials.FindByID(ctx, material.ID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrParameterNotFound
	}

	if err := s.materials.Update(ctx, material); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyMaterials)
	return nil
}

// DeleteMaterial removes a material
func (s *ParameterService) DeleteMaterial(ctx context.Context, id int64) error {
	current, err := s.materials.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrParameterNotFound
	}

	if err := s.materials.Delete(ctx, id); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, cache.KeyMaterials)
	return nil
}
