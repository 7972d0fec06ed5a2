// Package audit persists a trail of reconciliation runs.
//
// Each run gets one Run row recording the input file, target location,
// terminal phase and the final success/attempted counters. Every remote
// write call (a per-product price batch or an inventory quantity batch)
// gets a BatchResult row with its target, size and outcome, so a failed
// batch can be located and replayed from the source data.
//
// Storage defaults to a local sqlite file; mysql is supported for shared
// setups. Recording is optional: when disabled in configuration the sync
// driver simply runs without a trail.
package audit
