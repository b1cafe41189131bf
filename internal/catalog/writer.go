package catalog

import (
	"bytes"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"radiocat/internal/fileutil"
	"radiocat/internal/ingest"
	"radiocat/internal/station"
)

// Encode renders records as an indented JSON array without HTML escaping.
// Sets are sorted by their marshaler; record order is preserved.
func Encode(records []station.Record, mode Mode, provider string) ([]byte, error) {
	entries := make([]Entry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, NewEntry(rec, mode, provider))
	}
	return encodeIndented(entries)
}

// Write encodes records and replaces path atomically.
func Write(path string, records []station.Record, mode Mode, provider string) error {
	data, err := Encode(records, mode, provider)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write catalog %s: %w", path, err)
	}
	return nil
}

// WriteDuplicates writes the duplicates report keyed by stream URL.
func WriteDuplicates(path string, report map[string][]ingest.Occurrence) error {
	if report == nil {
		report = map[string][]ingest.Occurrence{}
	}
	data, err := encodeIndented(report)
	if err != nil {
		return fmt.Errorf("encode duplicates: %w", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf("write duplicates %s: %w", path, err)
	}
	return nil
}

// Read loads a previously written catalog or provider output.
func Read(path string) ([]station.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	records := make([]station.Record, 0, len(entries))
	for _, e := range entries {
		rec := e.Record()
		if rec.StreamURL == "" {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func encodeIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
