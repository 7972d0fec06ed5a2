package catalog

// Product is an immutable snapshot of a remote catalog entry, fetched once
// per run together with its variants.
type Product struct {
	ID       string
	Title    string
	Variants []Variant
}

// Variant is a purchasable SKU-level unit belonging to a parent product.
// SKU and barcode are unique by shop convention only; the remote system
// does not enforce either. InventoryItemID is required to update stock and
// may be empty.
type Variant struct {
	ID              string
	ProductID       string
	SKU             string
	Barcode         string
	Title           string
	Price           string
	InventoryItemID string
}

// Location is a stock-keeping location, resolved once by name per run.
type Location struct {
	ID   string
	Name string
}

// PriceUpdate is a single variant price write, grouped by owning product
// because prices commit per-product in bulk.
type PriceUpdate struct {
	VariantID string
	Price     string
}

// InventoryUpdate sets an absolute quantity for one inventory item at the
// run's location.
type InventoryUpdate struct {
	InventoryItemID string
	Quantity        int
}
