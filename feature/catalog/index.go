package catalog

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

var whitespacePattern = regexp.MustCompile(`\s+`)

// Normalize canonicalizes a title for matching: NFKC composition,
// lower-casing, trimming, and collapsing internal whitespace to single
// spaces. The function is stable and idempotent.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespacePattern.ReplaceAllString(s, " ")
}

// Index holds the lookup structures built from a fetched catalog. It is
// built once per run and read-only thereafter.
type Index struct {
	// skuToVariant maps trimmed SKU to variant id, last seen wins.
	skuToVariant map[string]string
	// titleToVariants maps normalized product title to all variant ids
	// under that product, in encounter order.
	titleToVariants map[string][]string
	// compositeToVariant maps normalized "product title variant title"
	// keys and raw trimmed barcodes to a single variant id.
	compositeToVariant map[string]string
	// variantToProduct maps variant id back to its owning product id.
	variantToProduct map[string]string
	// variantByID maps variant id to its full record so later stages can
	// read the inventory item id without rescanning the catalog.
	variantByID map[string]Variant
}

// BuildIndex builds all lookup structures in a single pass over the
// catalog. SKU and composite key collisions are resolved last-write-wins;
// duplicate SKUs are logged as warnings.
func BuildIndex(products []Product, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}

	idx := &Index{
		skuToVariant:       make(map[string]string),
		titleToVariants:    make(map[string][]string),
		compositeToVariant: make(map[string]string),
		variantToProduct:   make(map[string]string),
		variantByID:        make(map[string]Variant),
	}

	for _, p := range products {
		titleKey := Normalize(p.Title)
		if _, ok := idx.titleToVariants[titleKey]; !ok {
			idx.titleToVariants[titleKey] = []string{}
		}

		for _, v := range p.Variants {
			v.ProductID = p.ID
			idx.variantToProduct[v.ID] = p.ID
			idx.variantByID[v.ID] = v

			sku := strings.TrimSpace(v.SKU)
			if sku != "" {
				if existing, ok := idx.skuToVariant[sku]; ok && existing != v.ID {
					logger.Warn("duplicate SKU, overwriting mapping", zap.String("sku", sku))
				}
				idx.skuToVariant[sku] = v.ID
			}

			idx.titleToVariants[titleKey] = append(idx.titleToVariants[titleKey], v.ID)

			idx.compositeToVariant[Normalize(p.Title+" "+v.Title)] = v.ID

			barcode := strings.TrimSpace(v.Barcode)
			if barcode != "" {
				idx.compositeToVariant[barcode] = v.ID
			}
		}
	}

	return idx
}

// VariantBySKU looks up a variant id by exact trimmed SKU.
func (idx *Index) VariantBySKU(sku string) (string, bool) {
	id, ok := idx.skuToVariant[sku]
	return id, ok
}

// VariantsByTitle returns all variant ids under a normalized product title,
// in encounter order.
func (idx *Index) VariantsByTitle(normalizedTitle string) []string {
	return idx.titleToVariants[normalizedTitle]
}

// VariantByComposite looks up a variant id by normalized composite key or
// raw barcode.
func (idx *Index) VariantByComposite(key string) (string, bool) {
	id, ok := idx.compositeToVariant[key]
	return id, ok
}

// ProductOf returns the owning product id for a variant.
func (idx *Index) ProductOf(variantID string) (string, bool) {
	id, ok := idx.variantToProduct[variantID]
	return id, ok
}

// Variant returns the full variant record for an id.
func (idx *Index) Variant(variantID string) (Variant, bool) {
	v, ok := idx.variantByID[variantID]
	return v, ok
}

// titleKeys iterates all normalized title keys that have at least one
// variant, calling fn for each. Used by the resolver's prefix strategy.
func (idx *Index) titleKeys(fn func(key string)) {
	for key, variants := range idx.titleToVariants {
		if len(variants) == 0 {
			continue
		}
		fn(key)
	}
}
