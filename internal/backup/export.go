package backup

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// CSV conventions shared by export, restore and the per-table import/export
// endpoints: semicolon field separator, decimal comma, header row, and a
// UTF-8 byte-order marker for spreadsheet compatibility.
const (
	fieldSeparator  = ';'
	fallbackSep     = ','
	utf8BOM         = "\xef\xbb\xbf"
	timestampLayout = "2006-01-02 15:04:05"
)

// Export serializes every table in Tables, in order, to one <table>.csv
// entry inside a single ZIP archive written to w. Empty tables are skipped.
// Returns the total row count across all tables; any per-table failure
// aborts the whole export.
func Export(ctx context.Context, db *sql.DB, w io.Writer) (int, error) {
	zw := zip.NewWriter(w)

	total := 0
	var buf bytes.Buffer
	for _, table := range Tables {
		buf.Reset()
		n, err := ExportTable(ctx, db, table, &buf)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			continue
		}

		entry, err := zw.Create(table + ".csv")
		if err != nil {
			return 0, fmt.Errorf("creating zip entry for %s: %w", table, err)
		}
		if _, err := entry.Write(buf.Bytes()); err != nil {
			return 0, fmt.Errorf("writing zip entry for %s: %w", table, err)
		}
		total += n
	}

	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("finalizing zip archive: %w", err)
	}
	return total, nil
}

// ExportTable writes one table as CSV to w and returns its row count.
func ExportTable(ctx context.Context, db *sql.DB, table string, w io.Writer) (int, error) {
	if !IsBackupTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	rows, err := db.QueryContext(ctx, `SELECT * FROM `+table+` ORDER BY id`)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("getting %s columns: %w", table, err)
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return 0, fmt.Errorf("writing BOM: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = fieldSeparator

	if err := cw.Write(cols); err != nil {
		return 0, fmt.Errorf("writing %s header: %w", table, err)
	}

	values := make([]any, len(cols))
	scanTargets := make([]any, len(cols))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	count := 0
	record := make([]string, len(cols))
	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return 0, fmt.Errorf("scanning %s row: %w", table, err)
		}
		for i, v := range values {
			record[i] = formatValue(v)
		}
		if err := cw.Write(record); err != nil {
			return 0, fmt.Errorf("writing %s row: %w", table, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterating %s: %w", table, err)
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing %s csv: %w", table, err)
	}
	return count, nil
}

// formatValue renders a database value as a CSV cell. NULL becomes the empty
// cell; floats use a decimal comma, matching the archive convention.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strings.Replace(strconv.FormatFloat(val, 'f', -1, 64), ".", ",", 1)
	case []byte:
		return string(val)
	case string:
		return val
	case time.Time:
		return val.UTC().Format(timestampLayout)
	case bool:
		if val {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(val)
	}
}
