package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// ModelsHandler handles asset model CRUD endpoints.
type ModelsHandler struct {
	DB *sql.DB
}

type modelRequest struct {
	Name       string `json:"name"`
	BrandID    int64  `json:"brand_id"`
	CategoryID int64  `json:"category_id"`
}

// List handles GET /api/models.
func (h *ModelsHandler) List(w http.ResponseWriter, r *http.Request) {
	var categoryID int64
	if v := r.URL.Query().Get("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid category_id")
			return
		}
		categoryID = id
	}

	models, err := store.ListModels(r.Context(), h.DB, categoryID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list models")
		return
	}
	if models == nil {
		models = []model.AssetModel{}
	}
	jsonResponse(w, http.StatusOK, models)
}

// Create handles POST /api/models.
func (h *ModelsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req modelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" || req.BrandID == 0 || req.CategoryID == 0 {
		jsonError(w, http.StatusBadRequest, "name, brand_id, and category_id required")
		return
	}

	m, err := store.CreateModel(r.Context(), h.DB, req.Name, req.BrandID, req.CategoryID)
	if err != nil {
		jsonError(w, http.StatusConflict, "failed to create model (duplicate name for brand?)")
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

// Get handles GET /api/models/{id}.
func (h *ModelsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	m, err := store.GetModel(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get model")
		return
	}
	if m == nil {
		jsonError(w, http.StatusNotFound, "model not found")
		return
	}
	jsonResponse(w, http.StatusOK, m)
}

// Update handles PUT /api/models/{id}.
func (h *ModelsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	var req modelRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.BrandID == 0 || req.CategoryID == 0 {
		jsonError(w, http.StatusBadRequest, "name, brand_id, and category_id required")
		return
	}

	if err := store.UpdateModel(r.Context(), h.DB, id, req.Name, req.BrandID, req.CategoryID); err != nil {
		jsonError(w, http.StatusNotFound, "model not found")
		return
	}

	m, _ := store.GetModel(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, m)
}

// Delete handles DELETE /api/models/{id}.
func (h *ModelsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid model id")
		return
	}

	if err := store.DeleteModel(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusConflict, "failed to delete model (assets still reference it?)")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "model deleted"})
}
