// Package catalog reads the remote product catalog and resolves spreadsheet
// rows against it.
//
// It covers three concerns:
//
//  1. Client: cursor-paginated catalog and location reads plus the two bulk
//     write mutations (variant prices per product, absolute inventory
//     quantities per batch), all through the core/shopify transport.
//
//  2. Index: four lookup structures built in a single pass over the fetched
//     catalog (SKU, normalized title, composite title/barcode, and the
//     variant-to-product back-mapping), plus full variant records keyed by
//     id so the sync driver never rescans the catalog for inventory item
//     ids.
//
//  3. Resolver: the multi-strategy matching algorithm with fixed precedence
//     (SKU, exact title, truncated title, unique prefix, composite key).
//
// The index is built once per run and read-only thereafter; nothing in this
// package mutates shared state after construction.
package catalog
