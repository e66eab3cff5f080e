package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// AssetsHandler handles asset CRUD and per-asset history endpoints.
type AssetsHandler struct {
	DB *sql.DB
}

type createAssetRequest struct {
	Serial      string   `json:"serial"`
	ModelID     int64    `json:"model_id"`
	StatusID    int64    `json:"status_id"`
	ConditionID int64    `json:"condition_id"`
	SectorID    int64    `json:"sector_id"`
	EmployeeID  *int64   `json:"employee_id"`
	Value       *float64 `json:"value"`
}

type updateAssetRequest struct {
	ModelID     int64    `json:"model_id"`
	ConditionID *int64   `json:"condition_id"`
	Value       *float64 `json:"value"`
}

func queryID(r *http.Request, key string) (int64, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.ParseInt(v, 10, 64)
}

// List handles GET /api/assets with optional category_id and status_id filters.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	categoryID, err := queryID(r, "category_id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category_id")
		return
	}
	statusID, err := queryID(r, "status_id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid status_id")
		return
	}

	assets, err := store.ListAssets(r.Context(), h.DB, categoryID, statusID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list assets")
		return
	}
	if assets == nil {
		assets = []model.AssetDetail{}
	}
	jsonResponse(w, http.StatusOK, assets)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Serial == "" {
		jsonError(w, http.StatusBadRequest, "serial required")
		return
	}
	if req.ModelID == 0 || req.StatusID == 0 || req.ConditionID == 0 || req.SectorID == 0 {
		jsonError(w, http.StatusBadRequest, "model_id, status_id, condition_id, and sector_id required")
		return
	}

	existing, err := store.GetAssetBySerial(r.Context(), h.DB, req.Serial)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if existing != nil {
		jsonError(w, http.StatusConflict, "serial already registered")
		return
	}

	asset, err := store.CreateAsset(r.Context(), h.DB, req.Serial, req.ModelID,
		req.StatusID, req.ConditionID, req.SectorID, req.EmployeeID, req.Value, nil)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to create asset")
		return
	}
	jsonResponse(w, http.StatusCreated, asset)
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	detail, err := store.GetAssetDetail(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if detail == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}
	jsonResponse(w, http.StatusOK, detail)
}

// Update handles PUT /api/assets/{id}. Assignment fields (employee, sector,
// status) are rejected here; those change through movements.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	var req updateAssetRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModelID == 0 {
		jsonError(w, http.StatusBadRequest, "model_id required")
		return
	}

	if err := store.UpdateAsset(r.Context(), h.DB, id, req.ModelID, req.ConditionID, req.Value); err != nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}

	detail, _ := store.GetAssetDetail(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, detail)
}

// Delete handles DELETE /api/assets/{id}.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	if err := store.DeleteAsset(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusConflict, "failed to delete asset (movement history is kept)")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"message": "asset deleted"})
}

// GetMovements handles GET /api/assets/{id}/movements.
func (h *AssetsHandler) GetMovements(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset id")
		return
	}

	asset, err := store.GetAsset(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get asset")
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}

	movements, err := store.ListMovements(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list movements")
		return
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}
