package sync

import (
	"bytes"
	"encoding/csv"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// SkipReason classifies why a row contributed no update intent. Row-level
// failures never abort the run.
type SkipReason string

const (
	// SkipColumnShortage marks rows with fewer fields than the addressed
	// columns require.
	SkipColumnShortage SkipReason = "column_shortage"
	// SkipInvalidPrice marks rows whose price cell is empty or not numeric.
	SkipInvalidPrice SkipReason = "invalid_price"
	// SkipNonNumericStock marks rows whose stock cell is empty or not an
	// integer.
	SkipNonNumericStock SkipReason = "non_numeric_stock"
	// SkipNoMatch marks rows that resolved to no catalog variant.
	SkipNoMatch SkipReason = "no_match"
	// SkipMissingInventoryLink marks rows whose variant has no inventory
	// item; the price update still proceeds, the stock update does not.
	SkipMissingInventoryLink SkipReason = "missing_inventory_link"
)

// RowRecord is the parse result for one spreadsheet line. Skip is empty
// when the row parsed cleanly.
type RowRecord struct {
	Line   int
	SKU    string
	Name   string
	Price  string
	Stock  int
	Skip   SkipReason
	Detail string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeText converts raw file bytes to a string, trying UTF-8 with byte
// order mark, plain UTF-8 and two legacy 8-bit encodings in order, falling
// back to lossy UTF-8. It never fails on encoding alone. The second return
// value names the encoding used.
func decodeText(raw []byte) (string, string) {
	if bytes.HasPrefix(raw, utf8BOM) {
		rest := bytes.TrimPrefix(raw, utf8BOM)
		if utf8.Valid(rest) {
			return string(rest), "utf-8-sig"
		}
		raw = rest
	}
	if utf8.Valid(raw) {
		return string(raw), "utf-8"
	}
	if text, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil && !bytes.ContainsRune(text, utf8.RuneError) {
		return string(text), "windows-1252"
	}
	if text, err := charmap.ISO8859_1.NewDecoder().Bytes(raw); err == nil {
		return string(text), "iso-8859-1"
	}
	return strings.ToValidUTF8(string(raw), string(utf8.RuneError)), "utf-8-lossy"
}

// ReadRows reads and decodes the export file into raw records, header
// included. Rows may have varying field counts; length checks happen per
// row during parsing.
func ReadRows(path string, delimiter rune) ([][]string, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	text, encoding := decodeText(raw)

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, encoding, err
	}
	return records, encoding, nil
}

// parseRow turns one raw record into a RowRecord, classifying failures as
// skip reasons instead of errors.
func parseRow(line int, record []string, cols columnIndexes) RowRecord {
	row := RowRecord{Line: line}

	if len(record) < cols.need() {
		row.Skip = SkipColumnShortage
		row.Detail = strconv.Itoa(len(record)) + " of " + strconv.Itoa(cols.need()) + " columns"
		return row
	}

	row.SKU = strings.TrimSpace(record[cols.sku])
	row.Name = strings.TrimSpace(record[cols.name])

	rawPrice := strings.TrimSpace(record[cols.price])
	if rawPrice == "" {
		row.Skip = SkipInvalidPrice
		row.Detail = "price cell empty"
		return row
	}
	price, err := NormalizeMoney(rawPrice)
	if err != nil {
		row.Skip = SkipInvalidPrice
		row.Detail = err.Error()
		return row
	}
	row.Price = price

	rawStock := strings.TrimSpace(record[cols.stock])
	if rawStock == "" {
		row.Skip = SkipNonNumericStock
		row.Detail = "stock cell empty"
		return row
	}
	stock, err := strconv.Atoi(rawStock)
	if err != nil {
		row.Skip = SkipNonNumericStock
		row.Detail = "stock " + strconv.Quote(rawStock)
		return row
	}
	row.Stock = stock

	return row
}
