package api

import (
	"io"
	"net/http"

	"github.com/officeflow/officeflow/internal/blob"
)

// FilesHandler serves stored attachments through signed download tokens. The
// token itself authorizes the request, so this route sits outside the auth
// middleware and links can be opened directly from a browser.
type FilesHandler struct {
	Blobs *blob.Store
}

// Download handles GET /api/files/{token}.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	key, err := h.Blobs.Verify(r.PathValue("token"))
	if err != nil {
		jsonError(w, http.StatusForbidden, "invalid or expired download link")
		return
	}

	f, contentType, err := h.Blobs.Open(key)
	if err != nil {
		jsonError(w, http.StatusNotFound, "file not found")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, f)
}
