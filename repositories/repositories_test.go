package repositories

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/K-sous4/scarf-store/database"
	"github.com/K-sous4/scarf-store/models"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := database.Initialize(dbPath)
	require.NoError(t, err, "failed to initialize test database")
	t.Cleanup(func() { db.Close() })

	return db
}

func TestUserRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	user := &models.User{
		Username:       "alice",
		Email:          "alice@example.com",
		HashedPassword: "digest",
		Role:           models.RoleUser,
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotZero(t, user.ID)

	retrieved, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "alice", retrieved.Username)
	assert.Equal(t, "alice@example.com", retrieved.Email)
	assert.Equal(t, "digest", retrieved.HashedPassword)
	assert.Nil(t, retrieved.UpdatedAt)

	byName, err := repo.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, byName)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	assert.Equal(t, user.ID, byEmail.ID)

	// Absent rows are (nil, nil), never an error
	missing, err := repo.FindByUsername(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, missing)

	user.Email = "new@example.com"
	user.Role = models.RoleAdmin
	require.NoError(t, repo.Update(ctx, user))
	assert.NotNil(t, user.UpdatedAt)

	retrieved, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", retrieved.Email)
	assert.Equal(t, models.RoleAdmin, retrieved.Role)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	users, err := repo.List(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepositoryUniqueUsername(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	first := &models.User{Username: "alice", HashedPassword: "x", Role: models.RoleUser}
	require.NoError(t, repo.Create(ctx, first))

	dup := &models.User{Username: "alice", HashedPassword: "y", Role: models.RoleUser}
	assert.Error(t, repo.Create(ctx, dup))
}

func TestUserRepositoryEmptyEmail(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	// Two accounts without email must not collide on the unique column
	require.NoError(t, repo.Create(ctx, &models.User{Username: "a", HashedPassword: "x", Role: models.RoleUser}))
	require.NoError(t, repo.Create(ctx, &models.User{Username: "b", HashedPassword: "y", Role: models.RoleUser}))
}

func TestProductRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	product := &models.Product{
		SKU:             "SCARF-001",
		Name:            "Wool Scarf",
		Category:        "scarves",
		Price:           49.99,
		DiscountPercent: 20,
		DiscountPrice:   39.99,
		Stock:           10,
		ReservedStock:   2,
		IsActive:        true,
	}
	require.NoError(t, repo.Create(ctx, product))
	require.NotZero(t, product.ID)
	assert.Equal(t, 8, product.AvailableStock)

	retrieved, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, "SCARF-001", retrieved.SKU)
	assert.Equal(t, 8, retrieved.AvailableStock)

	bySKU, err := repo.FindBySKU(ctx, "SCARF-001")
	require.NoError(t, err)
	require.NotNil(t, bySKU)

	product.Name = "Wool Scarf Deluxe"
	product.Stock = 20
	require.NoError(t, repo.Update(ctx, product))

	retrieved, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Wool Scarf Deluxe", retrieved.Name)
	assert.Equal(t, 18, retrieved.AvailableStock)

	require.NoError(t, repo.Delete(ctx, product.ID))
	retrieved, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, retrieved)

	assert.Error(t, repo.Delete(ctx, product.ID))
}

func TestProductRepositoryList(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seed := []*models.Product{
		{SKU: "S-1", Name: "A", Category: "scarves", Price: 10, IsActive: true},
		{SKU: "S-2", Name: "B", Category: "scarves", Price: 20, IsActive: false},
		{SKU: "H-1", Name: "C", Category: "shawls", Price: 30, IsActive: true},
	}
	for _, p := range seed {
		require.NoError(t, repo.Create(ctx, p))
	}

	all, total, err := repo.List(ctx, models.ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, all, 3)

	active, total, err := repo.List(ctx, models.ProductFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, active, 2)

	scarves, total, err := repo.List(ctx, models.ProductFilter{Category: "scarves", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, scarves, 1)
	assert.Equal(t, "S-1", scarves[0].SKU)

	paged, total, err := repo.List(ctx, models.ProductFilter{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 2)
}

func TestProductRepositoryListLowStock(t *testing.T) {
	db := setupTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()

	seed := []*models.Product{
		// Reservations count against availability
		{SKU: "S-1", Name: "A", Price: 10, Stock: 12, ReservedStock: 4, LowStockThreshold: 10, IsActive: true},
		{SKU: "S-2", Name: "B", Price: 10, Stock: 50, LowStockThreshold: 10, IsActive: true},
		// Inactive products are not restocked
		{SKU: "S-3", Name: "C", Price: 10, Stock: 1, LowStockThreshold: 10, IsActive: false},
	}
	for _, p := range seed {
		require.NoError(t, repo.Create(ctx, p))
	}

	low, err := repo.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "S-1", low[0].SKU)
	assert.Equal(t, 8, low[0].AvailableStock)
	assert.Equal(t, 10, low[0].LowStockThreshold)
}

func TestParameterRepositories(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	categories := NewCategoryRepository(db)
	category := &models.Category{Name: "Scarves", Slug: "scarves", IsActive: true}
	require.NoError(t, categories.Create(ctx, category))
	require.NotZero(t, category.ID)

	bySlug, err := categories.FindBySlug(ctx, "scarves")
	require.NoError(t, err)
	require.NotNil(t, bySlug)
	assert.Equal(t, category.ID, bySlug.ID)

	inactive := &models.Category{Name: "Hidden", Slug: "hidden", IsActive: false}
	require.NoError(t, categories.Create(ctx, inactive))

	activeList, err := categories.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, activeList, 1)
	assert.Equal(t, "scarves", activeList[0].Slug)

	category.Name = "Winter Scarves"
	require.NoError(t, categories.Update(ctx, category))
	updated, err := categories.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Winter Scarves", updated.Name)

	require.NoError(t, categories.Delete(ctx, category.ID))
	gone, err := categories.FindByID(ctx, category.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	colors := NewColorRepository(db)
	color := &models.Color{Name: "Crimson", HexCode: "#DC143C", IsActive: true}
	require.NoError(t, colors.Create(ctx, color))

	colorList, err := colors.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, colorList, 1)
	assert.Equal(t, "#DC143C", colorList[0].HexCode)

	color.Name = "Scarlet"
	color.IsActive = false
	require.NoError(t, colors.Update(ctx, color))
	updatedColor, err := colors.FindByID(ctx, color.ID)
	require.NoError(t, err)
	assert.Equal(t, "Scarlet", updatedColor.Name)
	assert.False(t, updatedColor.IsActive)
	assert.Error(t, colors.Update(ctx, &models.Color{ID: 999, Name: "Nope"}))

	require.NoError(t, colors.Delete(ctx, color.ID))

	materials := NewMaterialRepository(db)
	material := &models.Material{Name: "Wool", IsActive: true}
	require.NoError(t, materials.Create(ctx, material))

	materialList, err := materials.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, materialList, 1)
	assert.Equal(t, "Wool", materialList[0].Name)

	material.Name = "Merino Wool"
	require.NoError(t, materials.Update(ctx, material))
	updatedMaterial, err := materials.FindByID(ctx, material.ID)
	require.NoError(t, err)
	assert.Equal(t, "Merino Wool", updatedMaterial.Name)
	assert.Error(t, materials.Update(ctx, &models.Material{ID: 999, Name: "Nope"}))
}

func TestAuditRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	userID := int64(7)
	entry := &models.AuditLogEntry{
		Timestamp:      time.Now().UTC(),
		Method:         "POST",
		Endpoint:       "/api/v1/auth/login",
		StatusCode:     401,
		ResponseTimeMs: 12.5,
		IPAddress:      "203.0.113.7",
		UserAgent:      "test-agent",
		UserID:         &userID,
		Username:       "alice",
		ErrorMessage:   "Authentication failed",
		IsError:        true,
		IsAuthAttempt:  true,
		IsUnauthorized: true,
	}
	require.NoError(t, repo.Create(ctx, entry))
	require.NotZero(t, entry.ID)

	require.NoError(t, repo.Create(ctx, &models.AuditLogEntry{
		Timestamp:  time.Now().UTC(),
		Method:     "GET",
		Endpoint:   "/api/v1/products",
		StatusCode: 200,
	}))

	entries, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first
	assert.Equal(t, "/api/v1/products", entries[0].Endpoint)

	found := entries[1]
	assert.Equal(t, "POST", found.Method)
	assert.Equal(t, 401, found.StatusCode)
	require.NotNil(t, found.UserID)
	assert.Equal(t, int64(7), *found.UserID)
	assert.True(t, found.IsError)
	assert.True(t, found.IsAuthAttempt)
	assert.True(t, found.IsUnauthorized)
	assert.Equal(t, "Authentication failed", found.ErrorMessage)
}
