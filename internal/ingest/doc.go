// Package ingest turns heterogeneous provider JSON into canonical station
// records.
//
// Raw records are converted to typed Observations by Extract as soon as they
// are read. Observations are then folded into a Library keyed by stream URL
// using Merge, which is pure and order-independent for every field except
// Website and Description (first non-empty wins, so file order matters).
//
// Two discovery modes exist:
//   - DiscoverCatalog walks a scraper tree of <Country Folder>/<provider>.json
//   - DiscoverProvider reads providers/<name>/data/<ISO>.json
//
// DuplicateIndex records every occurrence of every URL for the duplicates
// report.
package ingest
