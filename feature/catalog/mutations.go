package catalog

import (
	"context"
	"fmt"

	"github.com/Bebin29/shpysync/core/shopify"
)

const variantsBulkUpdateMutation = `
mutation UpdateVariantPrices($productId: ID!, $variants: [ProductVariantsBulkInput!]!) {
	productVariantsBulkUpdate(productId: $productId, variants: $variants, allowPartialUpdates: true) {
		productVariants { id }
		userErrors { field message }
	}
}`

const inventorySetMutation = `
mutation SetInventory($input: InventorySetQuantitiesInput!) {
	inventorySetQuantities(input: $input) {
		inventoryAdjustmentGroup {
			createdAt
			reason
			changes { name delta quantityAfterChange }
		}
		userErrors { code field message }
	}
}`

type variantsBulkUpdateData struct {
	ProductVariantsBulkUpdate struct {
		ProductVariants []struct {
			ID string `json:"id"`
		} `json:"productVariants"`
		UserErrors []shopify.UserError `json:"userErrors"`
	} `json:"productVariantsBulkUpdate"`
}

type inventorySetData struct {
	InventorySetQuantities struct {
		InventoryAdjustmentGroup *struct {
			CreatedAt string `json:"createdAt"`
			Reason    string `json:"reason"`
		} `json:"inventoryAdjustmentGroup"`
		UserErrors []shopify.UserError `json:"userErrors"`
	} `json:"inventorySetQuantities"`
}

// UpdateVariantPrices writes new prices for variants of a single product in
// one bulk call. A non-empty user error list fails the whole batch.
func (c *Client) UpdateVariantPrices(ctx context.Context, productID string, updates []PriceUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	variants := make([]map[string]any, 0, len(updates))
	for _, u := range updates {
		variants = append(variants, map[string]any{
			"id":    u.VariantID,
			"price": u.Price,
		})
	}

	var data variantsBulkUpdateData
	err := c.api.Execute(ctx, variantsBulkUpdateMutation, map[string]any{
		"productId": productID,
		"variants":  variants,
	}, &data)
	if err != nil {
		return err
	}
	if errs := data.ProductVariantsBulkUpdate.UserErrors; len(errs) > 0 {
		return fmt.Errorf("productVariantsBulkUpdate failed: %s", shopify.FormatUserErrors(errs))
	}
	return nil
}

// SetInventoryQuantities sets absolute available quantities for a batch of
// inventory items at one location. Compare-quantity checking is disabled so
// the write is last-write-wins on the remote side as well.
func (c *Client) SetInventoryQuantities(ctx context.Context, locationID string, updates []InventoryUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	quantities := make([]map[string]any, 0, len(updates))
	for _, u := range updates {
		quantities = append(quantities, map[string]any{
			"inventoryItemId": u.InventoryItemID,
			"locationId":      locationID,
			"quantity":        u.Quantity,
		})
	}

	input := map[string]any{
		"name":                  "available",
		"reason":                "correction",
		"ignoreCompareQuantity": true,
		"quantities":            quantities,
	}

	var data inventorySetData
	err := c.api.Execute(ctx, inventorySetMutation, map[string]any{"input": input}, &data)
	if err != nil {
		return err
	}
	if errs := data.InventorySetQuantities.UserErrors; len(errs) > 0 {
		return fmt.Errorf("inventorySetQuantities failed: %s", shopify.FormatUserErrors(errs))
	}
	return nil
}
