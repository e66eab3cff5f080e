package api

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"net/http"

	"github.com/officeflow/officeflow/internal/backup"
)

// TablesHandler handles per-table CSV export and import, the spreadsheet
// round-trip counterpart to the full backup.
type TablesHandler struct {
	DB *sql.DB
}

// Export handles GET /api/tables/{table}/export.
func (h *TablesHandler) Export(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !backup.IsBackupTable(table) {
		jsonError(w, http.StatusNotFound, "unknown table")
		return
	}

	// Render the whole table before touching the response so a failed query
	// surfaces as an error status instead of a truncated download.
	var buf bytes.Buffer
	if _, err := backup.ExportTable(r.Context(), h.DB, table, &buf); err != nil {
		slog.Error("table export failed", "table", table, "error", err)
		jsonError(w, http.StatusInternalServerError, "export failed")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+table+`.csv"`)
	w.Write(buf.Bytes())
}

// Import handles POST /api/tables/{table}/import (multipart/form-data with a
// "file" field). Rows are inserted, never updated.
func (h *TablesHandler) Import(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if !backup.IsBackupTable(table) {
		jsonError(w, http.StatusNotFound, "unknown table")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxArchiveSize)
	if err := r.ParseMultipartForm(maxArchiveSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "csv file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read csv file")
		return
	}

	n, err := backup.ImportTable(r.Context(), h.DB, table, data)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "import failed: "+err.Error())
		return
	}

	slog.Info("table imported", "table", table, "rows", n)
	jsonResponse(w, http.StatusOK, map[string]any{
		"table": table,
		"rows":  n,
	})
}
