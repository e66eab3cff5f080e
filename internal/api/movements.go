package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// MovementsHandler handles asset movement endpoints: single moves, batch
// moves, and the global movement log.
type MovementsHandler struct {
	DB *sql.DB
}

type moveRequest struct {
	AssetID    int64  `json:"asset_id"`
	EmployeeID *int64 `json:"employee_id"`
	SectorID   int64  `json:"sector_id"`
	StatusID   int64  `json:"status_id"`
	Note       string `json:"note"`
}

type batchMoveRequest struct {
	AssetIDs []int64 `json:"asset_ids"`

	EmployeeID   *int64 `json:"employee_id"`
	KeepEmployee bool   `json:"keep_employee"`
	SectorID     *int64 `json:"sector_id"`
	KeepSector   bool   `json:"keep_sector"`
	StatusID     *int64 `json:"status_id"`
	KeepStatus   bool   `json:"keep_status"`

	Note string `json:"note"`
}

// Create handles POST /api/movements.
func (h *MovementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req moveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AssetID == 0 {
		jsonError(w, http.StatusBadRequest, "asset_id required")
		return
	}
	if req.SectorID == 0 || req.StatusID == 0 {
		jsonError(w, http.StatusBadRequest, "sector_id and status_id required")
		return
	}

	var movedBy *int64
	if claims := GetClaims(r.Context()); claims != nil {
		movedBy = &claims.UserID
	}

	asset, err := store.MoveAsset(r.Context(), h.DB, req.AssetID, req.EmployeeID,
		req.SectorID, req.StatusID, req.Note, movedBy)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("asset moved", "asset", req.AssetID, "sector", req.SectorID, "status", req.StatusID)
	jsonResponse(w, http.StatusCreated, asset)
}

// CreateBatch handles POST /api/movements/batch. Assets move independently:
// per-asset failures are reported in the response without stopping the rest.
func (h *MovementsHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	var req batchMoveRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dest := store.MoveDest{
		EmployeeID:   req.EmployeeID,
		KeepEmployee: req.KeepEmployee,
		SectorID:     req.SectorID,
		KeepSector:   req.KeepSector,
		StatusID:     req.StatusID,
		KeepStatus:   req.KeepStatus,
	}

	var movedBy *int64
	if claims := GetClaims(r.Context()); claims != nil {
		movedBy = &claims.UserID
	}

	result, err := store.MoveAssetBatch(r.Context(), h.DB, req.AssetIDs, dest, req.Note, movedBy)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("batch move", "requested", len(req.AssetIDs), "moved", result.Moved, "failed", len(result.Errors))
	jsonResponse(w, http.StatusOK, result)
}

// List handles GET /api/movements with an optional asset_id filter.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	assetID, err := queryID(r, "asset_id")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid asset_id")
		return
	}

	movements, err := store.ListMovements(r.Context(), h.DB, assetID)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list movements")
		return
	}
	if movements == nil {
		movements = []model.Movement{}
	}
	jsonResponse(w, http.StatusOK, movements)
}
