package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/K-sous4/scarf-store/models"
)

// CategoryRepository interface defines category database operations
type CategoryRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	ListActive(ctx context.Context) ([]models.Category, error)
	Create(ctx context.Context, category *models.Category) error
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id int64) error
}

// ColorRepository interface defines color database operations
type ColorRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Color, error)
	ListActive(ctx context.Context) ([]models.Color, error)
	Create(ctx context.Context, color *models.Color) error
	Update(ctx context.Context, color *models.Color) error
	Delete(ctx context.Context, id int64) error
}

// MaterialRepository interface defines material database operations
type MaterialRepository interface {
	FindByID(ctx context.Context, id int64) (*models.Material, error)
	ListActive(ctx context.Context) ([]models.Material, error)
	Create(ctx context.Context, material *models.Material) error
	Update(ctx context.Context, material *models.Material) error
	Delete(ctx context.Context, id int64) error
}

type categoryRepository struct {
	db *sql.DB
}

// NewCategoryRepository creates a new category repository
func NewCategoryRepository(db *sql.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, is_active, created_at FROM categories WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, slug, is_active, created_at FROM categories WHERE slug = ?", slug,
	).Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by slug: %w", err)
	}
	return &c, nil
}

func (r *categoryRepository) ListActive(ctx context.Context) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, slug, is_active, created_at FROM categories WHERE is_active = 1 ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO categories (name, slug, is_active, created_at) VALUES (?, ?, ?, ?)",
		category.Name, category.Slug, category.IsActive, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get category id: %w", err)
	}
	category.ID = id
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE categories SET name = ?, slug = ?, is_active = ? WHERE id = ?",
		category.Name, category.Slug, category.IsActive, category.ID)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category with ID %d not found", category.ID)
	}
	return nil
}

func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("category with ID %d not found", id)
	}
	return nil
}

type colorRepository struct {
	db *sql.DB
}

// NewColorRepository creates a new color repository
func NewColorRepository(db *sql.DB) ColorRepository {
	return &colorRepository{db: db}
}

func (r *colorRepository) FindByID(ctx context.Context, id int64) (*models.Color, error) {
	var c models.Color
	var hexCode sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, hex_code, is_active, created_at FROM colors WHERE id = ?", id,
	).Scan(&c.ID, &c.Name, &hexCode, &c.IsActive, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get color: %w", err)
	}
	c.HexCode = hexCode.String
	return &c, nil
}

func (r *colorRepository) ListActive(ctx context.Context) ([]models.Color, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, hex_code, is_active, created_at FROM colors WHERE is_active = 1 ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query colors: %w", err)
	}
	defer rows.Close()

	var colors []models.Color
	for rows.Next() {
		var c models.Color
		var hexCode sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &hexCode, &c.IsActive, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan color: %w", err)
		}
		c.HexCode = hexCode.String
		colors = append(colors, c)
	}

	return colors, rows.Err()
}

func (r *colorRepository) Create(ctx context.Context, color *models.Color) error {
	if color.CreatedAt.IsZero() {
		color.CreatedAt = time.Now().UTC()
	}

	var hexCode any
	if color.HexCode != "" {
		hexCode = color.HexCode
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO colors (name, hex_code, is_active, created_at) VALUES (?, ?, ?, ?)",
		color.Name, hexCode, color.IsActive, color.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create color: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get color id: %w", err)
	}
	color.ID = id
	return nil
}

func (r *colorRepository) Update(ctx context.Context, color *models.Color) error {
	var hexCode any
	if color.HexCode != "" {
		hexCode = color.HexCode
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE colors SET name = ?, hex_code = ?, is_active = ? WHERE id = ?",
		color.Name, hexCode, color.IsActive, color.ID)
	if err != nil {
		return fmt.Errorf("failed to update color: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("color with ID %d not found", color.ID)
	}
	return nil
}

func (r *colorRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM colors WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete color: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("color with ID %d not found", id)
	}
	return nil
}

type materialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *sql.DB) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) FindByID(ctx context.Context, id int64) (*models.Material, error) {
	var m models.Material
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, is_active, created_at FROM materials WHERE id = ?", id,
	).Scan(&m.ID, &m.Name, &m.IsActive, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return &m, nil
}

func (r *materialRepository) ListActive(ctx context.Context) ([]models.Material, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, is_active, created_at FROM materials WHERE is_active = 1 ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query materials: %w", err)
	}
	defer rows.Close()

	var materials []models.Material
	for rows.Next() {
		var m models.Material
		if err := rows.Scan(&m.ID, &m.Name, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		materials = append(materials, m)
	}

	return materials, rows.Err()
}

func (r *materialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.CreatedAt.IsZero() {
		material.CreatedAt = time.Now().UTC()
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO materials (name, is_active, created_at) VALUES (?, ?, ?)",
		material.Name, material.IsActive, material.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create material: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get material id: %w", err)
	}
	material.ID = id
	return nil
}

func (r *materialRepository) Update(ctx context.Context, material *models.Material) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE materials SET name = ?, is_active = ? WHERE id = ?",
		material.Name, material.IsActive, material.ID)
	if err != nil {
		return fmt.Errorf("failed to update material: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("material with ID %d not found", material.ID)
	}
	return nil
}

func (r *materialRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM materials WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete material: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("material with ID %d not found", id)
	}
	return nil
}
