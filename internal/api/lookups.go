package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// LookupsHandler serves the generic CRUD over the reference tables (brands,
// categories, sectors, statuses, conditions, employees, suppliers). Reads go
// through a shared cache; every write invalidates the table it touched.
type LookupsHandler struct {
	DB    *sql.DB
	Cache *store.LookupCache
}

type lookupRequest struct {
	Name string `json:"name"`
}

// List handles GET /api/lookups/{table}.
func (h *LookupsHandler) List(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !store.IsLookupTable(table) {
		jsonError(w, http.StatusNotFound, "unknown lookup table")
		return
	}

	rows, err := h.Cache.Get(r.Context(), h.DB, table)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list "+table)
		return
	}
	if rows == nil {
		rows = []model.Lookup{}
	}
	jsonResponse(w, http.StatusOK, rows)
}

// Create handles POST /api/lookups/{table}.
func (h *LookupsHandler) Create(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !store.IsLookupTable(table) {
		jsonError(w, http.StatusNotFound, "unknown lookup table")
		return
	}

	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	entry, err := store.CreateLookup(r.Context(), h.DB, table, req.Name)
	if err != nil {
		jsonError(w, http.StatusConflict, "failed to create entry (duplicate name?)")
		return
	}

	h.Cache.Invalidate(table)
	jsonResponse(w, http.StatusCreated, entry)
}

// Update handles PUT /api/lookups/{table}/{id}.
func (h *LookupsHandler) Update(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !store.IsLookupTable(table) {
		jsonError(w, http.StatusNotFound, "unknown lookup table")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req lookupRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateLookup(r.Context(), h.DB, table, id, req.Name); err != nil {
		jsonError(w, http.StatusNotFound, "entry not found")
		return
	}

	h.Cache.Invalidate(table)
	entry, _ := store.GetLookup(r.Context(), h.DB, table, id)
	jsonResponse(w, http.StatusOK, entry)
}

// Delete handles DELETE /api/lookups/{table}/{id}.
func (h *LookupsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !store.IsLookupTable(table) {
		jsonError(w, http.StatusNotFound, "unknown lookup table")
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := store.DeleteLookup(r.Context(), h.DB, table, id); err != nil {
		jsonError(w, http.StatusConflict, "failed to delete entry (still referenced?)")
		return
	}

	h.Cache.Invalidate(table)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "entry deleted"})
}
