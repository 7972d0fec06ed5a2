package catalog

import (
	"regexp"
	"strings"
)

// nameSplitPattern cuts a row name at the first "Product - Variant"
// separator or opening parenthesis.
var nameSplitPattern = regexp.MustCompile(`\s*-\s*|\s*\(`)

// Resolver matches loosely identified spreadsheet rows against variant ids
// using the catalog index.
type Resolver struct {
	index *Index
}

// NewResolver creates a resolver over a built index.
func NewResolver(index *Index) *Resolver {
	return &Resolver{index: index}
}

// Resolve returns at most one variant id for a row's raw SKU and name.
// Strategies are tried in strict order, first hit wins:
//
//  1. Exact SKU match.
//  2. Exact normalized product title match (first variant in encounter
//     order; multi-variant products are under-disambiguated by name alone).
//  3. Title match after truncating the name at " - " or "(".
//  4. Prefix containment in either direction, only when exactly one title
//     key qualifies; ambiguity is never guessed.
//  5. Composite "product variant" key or barcode pasted into the name.
//
// A miss on all strategies returns ("", false); the row is skipped, never
// retried.
func (r *Resolver) Resolve(rawSku, rawName string) (string, bool) {
	// 1) SKU
	if sku := strings.TrimSpace(rawSku); sku != "" {
		if id, ok := r.index.VariantBySKU(sku); ok {
			return id, true
		}
	}

	// 2) exact name
	name := Normalize(rawName)
	if variants := r.index.VariantsByTitle(name); len(variants) > 0 {
		return variants[0], true
	}

	// 3) truncated name
	base := nameSplitPattern.Split(rawName, 2)[0]
	if variants := r.index.VariantsByTitle(Normalize(base)); len(variants) > 0 {
		return variants[0], true
	}

	// 4) cautious prefix containment
	var candidates []string
	r.index.titleKeys(func(key string) {
		if strings.HasPrefix(name, key) || strings.HasPrefix(key, name) {
			candidates = append(candidates, key)
		}
	})
	if len(candidates) == 1 {
		if variants := r.index.VariantsByTitle(candidates[0]); len(variants) > 0 {
			return variants[0], true
		}
	}

	// 5) composite key or barcode
	if id, ok := r.index.VariantByComposite(name); ok {
		return id, true
	}

	return "", false
}
