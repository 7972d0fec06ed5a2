package sync

import "github.com/Bebin29/shpysync/feature/catalog"

// CoalesceInventory reduces duplicate inventory update intents to one per
// inventory item. The value of the last occurrence wins; output order is
// first-seen order. The second return value counts how many distinct items
// appeared more than once; it has no effect on the output values.
func CoalesceInventory(updates []catalog.InventoryUpdate) ([]catalog.InventoryUpdate, int) {
	last := make(map[string]int, len(updates))
	counts := make(map[string]int, len(updates))
	order := make([]string, 0, len(updates))

	for _, u := range updates {
		if _, seen := counts[u.InventoryItemID]; !seen {
			order = append(order, u.InventoryItemID)
		}
		counts[u.InventoryItemID]++
		last[u.InventoryItemID] = u.Quantity
	}

	duplicates := 0
	for _, c := range counts {
		if c > 1 {
			duplicates++
		}
	}

	out := make([]catalog.InventoryUpdate, 0, len(order))
	for _, id := range order {
		out = append(out, catalog.InventoryUpdate{InventoryItemID: id, Quantity: last[id]})
	}
	return out, duplicates
}
