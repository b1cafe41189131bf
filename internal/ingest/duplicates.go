package ingest

import (
	"path/filepath"
)

// Occurrence records where a stream URL was seen.
type Occurrence struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	Source  string `json:"source"`
	File    string `json:"file"`
}

// DuplicateIndex collects every occurrence of every stream URL.
type DuplicateIndex struct {
	seen map[string][]Occurrence
}

// NewDuplicateIndex returns an empty index.
func NewDuplicateIndex() *DuplicateIndex {
	return &DuplicateIndex{seen: make(map[string][]Occurrence)}
}

// Add records one observation.
func (d *DuplicateIndex) Add(obs Observation) {
	if obs.StreamURL == "" {
		return
	}
	name := obs.Name
	if name == "" {
		name = "Unknown"
	}
	d.seen[obs.StreamURL] = append(d.seen[obs.StreamURL], Occurrence{
		Name:    name,
		Country: obs.CountryLabel,
		Source:  filepath.Base(obs.Source),
		File:    obs.Source,
	})
}

// Report returns only the URLs observed more than once.
func (d *DuplicateIndex) Report() map[string][]Occurrence {
	out := make(map[string][]Occurrence)
	for url, occurrences := range d.seen {
		if len(occurrences) > 1 {
			out[url] = occurrences
		}
	}
	return out
}

// DuplicateStats summarizes redundancy across raw entries.
type DuplicateStats struct {
	Entries        int
	UniqueURLs     int
	DuplicateURLs  int
	RedundancyRate float64
}

// Stats computes redundancy against entries, the raw entry count including
// records without a URL.
func (d *DuplicateIndex) Stats(entries int) DuplicateStats {
	stats := DuplicateStats{Entries: entries, UniqueURLs: len(d.seen)}
	for _, occurrences := range d.seen {
		if len(occurrences) > 1 {
			stats.DuplicateURLs++
		}
	}
	if entries > 0 && stats.UniqueURLs > 0 {
		stats.RedundancyRate = float64(entries-stats.UniqueURLs) / float64(entries) * 100
	}
	return stats
}
