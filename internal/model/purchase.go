package model

import (
	"fmt"
	"time"
)

// Purchase records one invoice. Registering a purchase fans out into N new
// assets sharing the purchased model, status, condition and unit value.
type Purchase struct {
	ID            int64     `json:"id"`
	PurchasedAt   time.Time `json:"purchased_at"`
	InvoiceNumber string    `json:"invoice_number"`
	SupplierID    *int64    `json:"supplier_id"`
	Buyer         string    `json:"buyer,omitempty"`
	ModelID       *int64    `json:"model_id"`
	TotalValue    *float64  `json:"total_value,omitempty"`
	AttachmentKey *string   `json:"attachment_key,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// Joined fields (not always populated).
	SupplierName  string `json:"supplier_name,omitempty"`
	ModelName     string `json:"model_name,omitempty"`
	AttachmentURL string `json:"attachment_url,omitempty"`
}

// invoiceDigits is the canonical invoice number length before grouping.
const invoiceDigits = 9

// FormatInvoiceNumber canonicalizes an invoice number: digits only,
// left-zero-padded to 9 digits, rendered as DDD.DDD.DDD. Already-canonical
// input is returned unchanged.
func FormatInvoiceNumber(raw string) (string, error) {
	var digits []byte
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case c >= '0' && c <= '9':
			digits = append(digits, c)
		case c == '.' || c == ' ' || c == '-':
			// Grouping characters are ignored.
		default:
			return "", fmt.Errorf("invalid character %q in invoice number", c)
		}
	}

	if len(digits) == 0 {
		return "", fmt.Errorf("invoice number has no digits")
	}
	if len(digits) > invoiceDigits {
		return "", fmt.Errorf("invoice number has more than %d digits", invoiceDigits)
	}

	padded := make([]byte, invoiceDigits)
	for i := range padded {
		padded[i] = '0'
	}
	copy(padded[invoiceDigits-len(digits):], digits)

	return fmt.Sprintf("%s.%s.%s", padded[0:3], padded[3:6], padded[6:9]), nil
}
