// Package store keeps a long-lived SQLite catalog of stations across runs.
//
// Output files are replaced on every ingest; the store accumulates them.
// Sync merges each written record into the radio_stations table, tracks
// consecutive failures and leaves rows marked verified alone. The schema is
// embedded and versioned; a mismatch asks the operator to delete the file.
package store
