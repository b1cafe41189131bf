package ingest

import (
	"fmt"
	"os"

	"github.com/goccy/go-json"
)

// Resolver maps human country labels (folder names, record fields) onto ISO
// codes using an injected table.
type Resolver struct {
	table map[string]string
}

// NewResolver wraps a name -> code table.
func NewResolver(table map[string]string) Resolver {
	return Resolver{table: table}
}

// LoadResolver reads a JSON object of country name -> ISO code. The returned
// resolver is always usable; on error it is empty and labels pass through.
func LoadResolver(path string) (Resolver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Resolver{}, fmt.Errorf("read iso table: %w", err)
	}
	var table map[string]string
	if err := json.Unmarshal(data, &table); err != nil {
		return Resolver{}, fmt.Errorf("parse iso table %s: %w", path, err)
	}
	return NewResolver(table), nil
}

// Resolve returns the table value for label, blank values included, or label
// unchanged on a miss.
func (r Resolver) Resolve(label string) string {
	if code, ok := r.table[label]; ok {
		return code
	}
	return label
}

// Len returns the number of table entries.
func (r Resolver) Len() int { return len(r.table) }
