// Package station defines the canonical station record shared by ingestion,
// validation and persistence.
//
// Record is keyed by its trimmed stream URL. Countries, genres and languages
// are Sets with union semantics during accumulation; they are only sorted when
// serialized so repeated runs produce identical output.
package station
