package api

import (
	"archive/zip"
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"net/http"

	"github.com/officeflow/officeflow/internal/backup"
)

// maxArchiveSize caps uploaded backup archives (100 MB).
const maxArchiveSize = 100 << 20

// BackupHandler handles whole-database snapshot endpoints.
type BackupHandler struct {
	DB *sql.DB
}

// Export handles GET /api/backup, streaming the snapshot archive. The export
// is buffered first so a mid-export failure never produces a truncated
// download.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	total, err := backup.Export(r.Context(), h.DB, &buf)
	if err != nil {
		slog.Error("backup export failed", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to export backup")
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("backup exported", "rows", total, "user", claims.Username)

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+backup.ArchiveName+`"`)
	w.Write(buf.Bytes())
}

// Restore handles POST /api/restore (multipart/form-data with a "backup"
// file). The reset field wipes all operational tables before loading.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxArchiveSize)
	if err := r.ParseMultipartForm(maxArchiveSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("backup")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "backup file required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "failed to read backup file")
		return
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		jsonError(w, http.StatusBadRequest, "not a valid zip archive")
		return
	}

	reset := r.FormValue("reset") == "true"

	counts, err := backup.Restore(r.Context(), h.DB, zr, reset)
	if err != nil {
		slog.Error("backup restore failed", "error", err)
		jsonError(w, http.StatusBadRequest, "restore failed: "+err.Error())
		return
	}

	claims := GetClaims(r.Context())
	slog.Info("backup restored", "tables", len(counts), "reset", reset, "user", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]any{
		"reset":  reset,
		"tables": counts,
	})
}
