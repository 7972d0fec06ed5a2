package sync

import "fmt"

// ColumnIndex converts a spreadsheet letter reference into a zero-based
// column index by base-26 decoding with 'A'=1, so "A" is 0, "Z" is 25 and
// "AB" is 27. Lower-case letters are accepted.
func ColumnIndex(letter string) (int, error) {
	if letter == "" {
		return 0, fmt.Errorf("empty column reference")
	}

	index := 0
	for _, ch := range letter {
		switch {
		case ch >= 'A' && ch <= 'Z':
			index = index*26 + int(ch-'A') + 1
		case ch >= 'a' && ch <= 'z':
			index = index*26 + int(ch-'a') + 1
		default:
			return 0, fmt.Errorf("invalid column reference %q", letter)
		}
	}
	return index - 1, nil
}

// columnIndexes holds the resolved zero-based positions of the four
// addressed columns.
type columnIndexes struct {
	sku   int
	name  int
	price int
	stock int
}

// resolveColumns decodes the configured letter references.
func resolveColumns(cfg Config) (columnIndexes, error) {
	var (
		cols columnIndexes
		err  error
	)
	if cols.sku, err = ColumnIndex(cfg.SKUColumn); err != nil {
		return cols, fmt.Errorf("sku column: %w", err)
	}
	if cols.name, err = ColumnIndex(cfg.NameColumn); err != nil {
		return cols, fmt.Errorf("name column: %w", err)
	}
	if cols.price, err = ColumnIndex(cfg.PriceColumn); err != nil {
		return cols, fmt.Errorf("price column: %w", err)
	}
	if cols.stock, err = ColumnIndex(cfg.StockColumn); err != nil {
		return cols, fmt.Errorf("stock column: %w", err)
	}
	return cols, nil
}

// need returns the minimum field count a row must have to address all four
// columns.
func (c columnIndexes) need() int {
	max := c.sku
	for _, idx := range []int{c.name, c.price, c.stock} {
		if idx > max {
			max = idx
		}
	}
	return max + 1
}
