package api

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/officeflow/officeflow/internal/blob"
	"github.com/officeflow/officeflow/internal/imaging"
	"github.com/officeflow/officeflow/internal/model"
	"github.com/officeflow/officeflow/internal/store"
)

// maxUploadSize caps purchase attachment uploads (10 MB).
const maxUploadSize = 10 << 20

// PurchasesHandler handles purchase registration and listing. A purchase is
// submitted as a multipart form so the invoice scan can ride along.
type PurchasesHandler struct {
	DB    *sql.DB
	Blobs *blob.Store
}

// Create handles POST /api/purchases (multipart/form-data).
func (h *PurchasesHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	in, err := h.parsePurchaseForm(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	key, err := h.saveAttachment(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}
	if key != "" {
		in.AttachmentKey = &key
	}

	purchase, err := store.RegisterPurchase(r.Context(), h.DB, *in)
	if err != nil {
		if key != "" {
			h.Blobs.Delete(key)
		}
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	slog.Info("purchase registered",
		"invoice", purchase.InvoiceNumber, "assets", len(in.Serials))
	jsonResponse(w, http.StatusCreated, purchase)
}

func (h *PurchasesHandler) parsePurchaseForm(r *http.Request) (*store.PurchaseInput, error) {
	purchasedAt, err := parseDate(r.FormValue("purchased_at"))
	if err != nil {
		return nil, errInvalidField("purchased_at")
	}

	supplierID, err := strconv.ParseInt(r.FormValue("supplier_id"), 10, 64)
	if err != nil {
		return nil, errInvalidField("supplier_id")
	}
	modelID, err := strconv.ParseInt(r.FormValue("model_id"), 10, 64)
	if err != nil {
		return nil, errInvalidField("model_id")
	}
	statusID, err := strconv.ParseInt(r.FormValue("status_id"), 10, 64)
	if err != nil {
		return nil, errInvalidField("status_id")
	}
	conditionID, err := strconv.ParseInt(r.FormValue("condition_id"), 10, 64)
	if err != nil {
		return nil, errInvalidField("condition_id")
	}
	sectorID, err := strconv.ParseInt(r.FormValue("sector_id"), 10, 64)
	if err != nil {
		return nil, errInvalidField("sector_id")
	}

	in := &store.PurchaseInput{
		PurchasedAt:   purchasedAt,
		InvoiceNumber: r.FormValue("invoice_number"),
		SupplierID:    supplierID,
		Buyer:         r.FormValue("buyer"),
		ModelID:       modelID,
		Serials:       splitSerials(r.FormValue("serials")),
		StatusID:      statusID,
		ConditionID:   conditionID,
		SectorID:      sectorID,
	}

	if v := r.FormValue("total_value"); v != "" {
		total, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errInvalidField("total_value")
		}
		in.TotalValue = &total
	}
	if v := r.FormValue("unit_value"); v != "" {
		unit, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, errInvalidField("unit_value")
		}
		in.UnitValue = &unit
	}
	return in, nil
}

// saveAttachment stores the optional invoice file. PDFs pass through as-is;
// images are normalized first. Returns an empty key when no file was sent.
func (h *PurchasesHandler) saveAttachment(r *http.Request) (string, error) {
	file, _, err := r.FormFile("attachment")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", errInvalidField("attachment")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", errInvalidField("attachment")
	}

	if isPDF(data) {
		return h.Blobs.Save("invoices", ".pdf", data)
	}

	photo, err := imaging.Normalize(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	return h.Blobs.Save("invoices", ".jpg", photo.Data)
}

func isPDF(data []byte) bool {
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}

// splitSerials accepts one serial per line, also tolerating comma-separated
// input. Blank entries are dropped here; duplicate detection happens in the
// store.
func splitSerials(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})
	var serials []string
	for _, f := range fields {
		if s := strings.TrimSpace(f); s != "" {
			serials = append(serials, s)
		}
	}
	return serials
}

type fieldError string

func (e fieldError) Error() string { return "invalid or missing " + string(e) }

func errInvalidField(name string) error { return fieldError(name) }

// Get handles GET /api/purchases/{id}, including the created assets.
func (h *PurchasesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid purchase id")
		return
	}

	purchase, err := store.GetPurchase(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get purchase")
		return
	}
	if purchase == nil {
		jsonError(w, http.StatusNotFound, "purchase not found")
		return
	}
	h.signAttachment(purchase)

	assets, err := store.ListAssetsByPurchase(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list purchase assets")
		return
	}
	if assets == nil {
		assets = []model.Asset{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"purchase": purchase,
		"assets":   assets,
	})
}

// List handles GET /api/purchases with an optional limit.
func (h *PurchasesHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			jsonError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	purchases, err := store.ListPurchases(r.Context(), h.DB, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}
	for i := range purchases {
		h.signAttachment(&purchases[i])
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	jsonResponse(w, http.StatusOK, purchases)
}

// signAttachment fills AttachmentURL with a time-limited download link.
func (h *PurchasesHandler) signAttachment(p *model.Purchase) {
	if p.AttachmentKey == nil {
		return
	}
	url, err := h.Blobs.SignURL(*p.AttachmentKey, time.Hour)
	if err != nil {
		slog.Warn("signing attachment url", "purchase", p.ID, "error", err)
		return
	}
	p.AttachmentURL = url
}
