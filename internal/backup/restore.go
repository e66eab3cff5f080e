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
)

// Restore loads a snapshot archive into the database. Tables are processed in
// dependency order so restored rows always satisfy foreign keys; entries
// missing from the archive are skipped. With reset, every backup table is
// wiped first, in reverse order. The whole restore runs in one transaction,
// so a failure in any table leaves the database untouched.
func Restore(ctx context.Context, db *sql.DB, zr *zip.Reader, reset bool) ([]TableCount, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if reset {
		for i := len(Tables) - 1; i >= 0; i-- {
			if _, err := tx.ExecContext(ctx, `DELETE FROM `+Tables[i]); err != nil {
				return nil, fmt.Errorf("wiping %s: %w", Tables[i], err)
			}
		}
	}

	var counts []TableCount
	for _, table := range Tables {
		entry := findEntry(zr, table+".csv")
		if entry == nil {
			continue
		}

		data, err := readEntry(entry)
		if err != nil {
			return nil, fmt.Errorf("reading %s.csv: %w", table, err)
		}

		cols, rows, err := decodeCSV(data)
		if err != nil {
			return nil, fmt.Errorf("parsing %s.csv: %w", table, err)
		}

		n, err := loadRows(ctx, tx, table, cols, rows, true)
		if err != nil {
			return nil, err
		}
		counts = append(counts, TableCount{Table: table, Rows: n})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing restore: %w", err)
	}
	return counts, nil
}

// ImportTable inserts the rows of one CSV file into a single table. Unlike
// Restore it never updates existing rows, so an id collision fails the whole
// import.
func ImportTable(ctx context.Context, db *sql.DB, table string, data []byte) (int, error) {
	if !IsBackupTable(table) {
		return 0, fmt.Errorf("unknown table %q", table)
	}

	cols, rows, err := decodeCSV(data)
	if err != nil {
		return 0, fmt.Errorf("parsing csv: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	n, err := loadRows(ctx, tx, table, cols, rows, false)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	return n, nil
}

func findEntry(zr *zip.Reader, name string) *zip.File {
	for _, f := range zr.File {
		if f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// loadRows writes decoded rows into table. With upsert, rows carrying an id
// column overwrite existing rows with the same id.
func loadRows(ctx context.Context, tx *sql.Tx, table string, cols []string, rows [][]any, upsert bool) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	stmt, err := tx.PrepareContext(ctx, buildInsert(table, cols, upsert))
	if err != nil {
		return 0, fmt.Errorf("preparing %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i, row := range rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return 0, fmt.Errorf("inserting %s row %d: %w", table, i+1, err)
		}
	}
	return len(rows), nil
}

// buildInsert assembles the INSERT statement for a table. With upsert and an
// id column present, conflicts on id update every other column in place.
func buildInsert(table string, cols []string, upsert bool) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders)

	if !upsert {
		return query
	}

	hasID := false
	var updates []string
	for _, c := range cols {
		if c == "id" {
			hasID = true
			continue
		}
		updates = append(updates, c+" = excluded."+c)
	}
	if !hasID {
		return query
	}
	if len(updates) == 0 {
		return query + " ON CONFLICT(id) DO NOTHING"
	}
	return query + " ON CONFLICT(id) DO UPDATE SET " + strings.Join(updates, ", ")
}

// decodeCSV parses a CSV file into typed rows. The primary dialect is the one
// Export writes (semicolon separator, decimal comma); files using a plain
// comma separator with period decimals are accepted as a fallback. Each
// column is narrowed to the tightest type that fits every value in it:
// integers stay integers, whole-number float columns are narrowed back to
// integers, and anything non-numeric stays text. Empty and NaN cells become
// NULL.
func decodeCSV(data []byte) ([]string, [][]any, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))

	records, sep, err := parseRecords(data)
	if err != nil {
		return nil, nil, err
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("missing header row")
	}

	cols := records[0]
	cells := records[1:]

	rows := make([][]any, len(cells))
	for i := range rows {
		rows[i] = make([]any, len(cols))
	}
	for col := range cols {
		coerceColumn(cells, rows, col, sep == fieldSeparator)
	}
	return cols, rows, nil
}

// parseRecords tries the semicolon dialect first and falls back to commas. A
// parse that leaves every value in a single semicolon-free column is treated
// as a comma-separated file.
func parseRecords(data []byte) ([][]string, rune, error) {
	records, err := readAll(data, fieldSeparator)
	if err == nil && !singleColumnWithCommas(records) {
		return records, fieldSeparator, nil
	}

	fallback, ferr := readAll(data, fallbackSep)
	if ferr != nil {
		if err != nil {
			return nil, 0, err
		}
		return records, fieldSeparator, nil
	}
	return fallback, fallbackSep, nil
}

func readAll(data []byte, sep rune) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sep
	return r.ReadAll()
}

func singleColumnWithCommas(records [][]string) bool {
	if len(records) == 0 || len(records[0]) != 1 {
		return false
	}
	return strings.Contains(records[0][0], string(fallbackSep))
}

// coerceColumn types one column across all rows, writing the result into rows.
func coerceColumn(cells [][]string, rows [][]any, col int, decimalComma bool) {
	allInt := true
	allFloat := true
	allWhole := true

	for _, record := range cells {
		cell := cellAt(record, col)
		if isNull(cell) {
			continue
		}
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			allInt = false
		}
		f, err := strconv.ParseFloat(normalizeDecimal(cell, decimalComma), 64)
		if err != nil {
			allFloat = false
			allWhole = false
			continue
		}
		if f != float64(int64(f)) {
			allWhole = false
		}
	}

	for i, record := range cells {
		cell := cellAt(record, col)
		if isNull(cell) {
			rows[i][col] = nil
			continue
		}
		switch {
		case allInt:
			n, _ := strconv.ParseInt(cell, 10, 64)
			rows[i][col] = n
		case allFloat && allWhole:
			f, _ := strconv.ParseFloat(normalizeDecimal(cell, decimalComma), 64)
			rows[i][col] = int64(f)
		case allFloat:
			f, _ := strconv.ParseFloat(normalizeDecimal(cell, decimalComma), 64)
			rows[i][col] = f
		default:
			rows[i][col] = cell
		}
	}
}

func cellAt(record []string, col int) string {
	if col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func isNull(cell string) bool {
	return cell == "" || strings.EqualFold(cell, "nan")
}

func normalizeDecimal(cell string, decimalComma bool) string {
	if decimalComma {
		return strings.Replace(cell, ",", ".", 1)
	}
	return cell
}
