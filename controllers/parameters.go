package controllers

import (
	"errors"
	"net/http"

	"github.com/K-sous4/scarf-store/models"
	"github.com/K-sous4/scarf-store/services"
)

// ParameterController handles the filter parameter lists (categories, colors,
// materials) and their admin CRUD.
type ParameterController struct {
	parameters *services.ParameterService
}

func NewParameterController(parameters *services.ParameterService) *ParameterController {
	return &ParameterController{parameters: parameters}
}

type categoryRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Slug     string `json:"slug" validate:"required,max=100"`
	IsActive *bool  `json:"is_active"`
}

type colorRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	HexCode  string `json:"hex_code" validate:"omitempty,hexcolor"`
	IsActive *bool  `json:"is_active"`
}

type materialRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	IsActive *bool  `json:"is_active"`
}

// ListCategories returns the active categories, served from cache when warm.
func (c *ParameterController) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := c.parameters.ListCategories(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// ListColors returns the known colors.
func (c *ParameterController) ListColors(w http.ResponseWriter, r *http.Request) {
	colors, err := c.parameters.ListColors(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list colors")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"colors": colors})
}

// ListMaterials returns the known materials.
func (c *ParameterController) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := c.parameters.ListMaterials(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to list materials")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"materials": materials})
}

// CreateCategory adds a category. Admin only.
func (c *ParameterController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	category := &models.Category{Name: req.Name, Slug: req.Slug, IsActive: active}
	if err := c.parameters.CreateCategory(r.Context(), category); err != nil {
		if errors.Is(err, services.ErrDuplicateSlug) {
			respondError(w, http.StatusConflict, "Slug already exists")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to create category")
		return
	}

	respondJSON(w, http.StatusCreated, category)
}

// UpdateCategory renames or toggles a category. Admin only.
func (c *ParameterController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	var req categoryRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	category := &models.Category{ID: id, Name: req.Name, Slug: req.Slug, IsActive: active}
	if err := c.parameters.UpdateCategory(r.Context(), category); err != nil {
		switch {
		case errors.Is(err, services.ErrParameterNotFound):
			respondError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, services.ErrDuplicateSlug):
			respondError(w, http.StatusConflict, "Slug already exists")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to update category")
		}
		return
	}

	respondJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category. Admin only.
func (c *ParameterController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id")
		return
	}

	if err := c.parameters.DeleteCategory(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrParameterNotFound) {
			respondError(w, http.StatusNotFound, "Category not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete category")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// CreateColor adds a color. Admin only.
func (c *ParameterController) CreateColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	color := &models.Color{Name: req.Name, HexCode: req.HexCode, IsActive: active}
	if err := c.parameters.CreateColor(r.Context(), color); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create color")
		return
	}

	respondJSON(w, http.StatusCreated, color)
}

// UpdateColor renames or toggles a color. Admin only.
func (c *ParameterController) UpdateColor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid color id")
		return
	}

	var req colorRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	color := &models.Color{ID: id, Name: req.Name, HexCode: req.HexCode, IsActive: active}
	if err := c.parameters.UpdateColor(r.Context(), color); err != nil {
		if errors.Is(err, services.ErrParameterNotFound) {
			respondError(w, http.StatusNotFound, "Color not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update color")
		return
	}

	respondJSON(w, http.StatusOK, color)
}

// DeleteColor removes a color. Admin only.
func (c *ParameterController) DeleteColor(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid color id")
		return
	}

	if err := c.parameters.DeleteColor(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrParameterNotFound) {
			respondError(w, http.StatusNotFound, "Color not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete color")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Color deleted"})
}

// CreateMaterial adds a material. Admin only.
func (c *ParameterController) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	material := &models.Material{Name: req.Name, IsActive: active}
	if err := c.parameters.CreateMaterial(r.Context(), material); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create material")
		return
	}

	respondJSON(w, http.StatusCreated, material)
}

// UpdateMaterial renames or toggles a material. Admin only.
func (c *ParameterController) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid material id")
		return
	}

	var req materialRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	material := &models.Material{ID: id, Name: req.Name, IsActive: active}
	if err := c.parameters.UpdateMaterial(r.Context(), material); err != nil {
		if errors.Is(err, services.ErrParameterNotFound) {
			respondError(w, http.StatusNotFound, "Material not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to update material")
		return
	}

	respondJSON(w, http.StatusOK, material)
}

// DeleteMaterial removes a material. Admin only.
func (c *ParameterController) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid material id")
		return
	}

	if err := c.parameters.DeleteMaterial(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrParameterNotFound) {
			respondError(w, http.StatusNotFound, "Material not found")
			return
		}
		respondError(w, http.StatusInternalServerError, "Failed to delete material")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Material deleted"})
}
