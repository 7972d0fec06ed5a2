// Package sync reconciles a spreadsheet export of prices and stock levels
// against the shop catalog.
//
// A run is a fixed sequence of phases: load the catalog, build the lookup
// index, resolve the stock location by name, parse and resolve every row,
// coalesce duplicate intents, gate on a single confirmation, then apply
// price batches (one bulk call per product) followed by inventory batches
// (absolute quantities, 250 per call). Row-level problems are skips with a
// logged reason; a batch that fails after the transport's retries is
// counted as failed and the run proceeds to the next batch. There is no
// rollback: each batch commits independently on the remote side.
//
// The reconciliation policy is fixed: last write wins on duplicates, price
// and stock only, one location per run.
package sync
