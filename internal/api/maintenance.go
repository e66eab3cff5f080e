package api

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// MaintenanceHandler handles repair ticket endpoints.
type MaintenanceHandler struct {
	DB *sql.DB
}

type openMaintenanceRequest struct {
	AssetID        int64  `json:"asset_id"`
	Vendor         string `json:"vendor"`
	Defect         string `json:"defect"`
	OpenedAt       string `json:"opened_at"`
	RepairStatusID *int64 `json:"repair_status_id"`
}

type closeMaintenanceRequest struct {
	ClosedAt      string  `json:"closed_at"`
	Cost          float64 `json:"cost"`
	StockStatusID *int64  `json:"stock_status_id"`
}

// parseDate accepts a YYYY-MM-DD date, defaulting to today when empty.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", s)
}

// Open handles POST /api/maintenances.
func (h *MaintenanceHandler) Open(w http.ResponseWriter, r *http.Request) {
	var req openMaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.AssetID == 0 {
		jsonError(w, http.StatusBadRequest, "asset_id required")
		return
	}

	openedAt, err := parseDate(req.OpenedAt)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid opened_at date")
		return
	}

	ticket, err := store.OpenMaintenance(r.Context(), h.DB, req.AssetID, req.Vendor, req.Defect, openedAt, req.RepairStatusID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusCreated, ticket)
}

// Close handles PUT /api/maintenances/{id}/close.
func (h *MaintenanceHandler) Close(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid maintenance id")
		return
	}

	var req closeMaintenanceRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	closedAt, err := parseDate(req.ClosedAt)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid closed_at date")
		return
	}

	ticket, err := store.CloseMaintenance(r.Context(), h.DB, id, closedAt, req.Cost, req.StockStatusID)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonResponse(w, http.StatusOK, ticket)
}

// Get handles GET /api/maintenances/{id}.
func (h *MaintenanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid maintenance id")
		return
	}

	ticket, err := store.GetMaintenance(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get maintenance ticket")
		return
	}
	if ticket == nil {
		jsonError(w, http.StatusNotFound, "maintenance ticket not found")
		return
	}
	jsonResponse(w, http.StatusOK, ticket)
}

// List handles GET /api/maintenances with an optional open=true filter.
func (h *MaintenanceHandler) List(w http.ResponseWriter, r *http.Request) {
	openOnly := r.URL.Query().Get("open") == "true"

	tickets, err := store.ListMaintenances(r.Context(), h.DB, openOnly)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list maintenance tickets")
		return
	}
	if tickets == nil {
		tickets = []model.Maintenance{}
	}
	jsonResponse(w, http.StatusOK, tickets)
}
