package probecache

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"radiocat/internal/ingest"
	"radiocat/internal/logging"
	"radiocat/internal/station"
)

// Entry is the validation outcome remembered for one stream URL.
type Entry struct {
	Status       station.Status
	Codec        string
	Bitrate      int64
	SampleRate   int
	LastTestedAt *time.Time
	Website      string
}

// Policy decides when a cached outcome suppresses a new probe.
type Policy struct {
	ForceRetest bool
	// RetryBroken re-probes URLs whose cached outcome is broken.
	RetryBroken bool
}

// Cache is a read-only view of a previous run's output keyed by stream URL.
type Cache struct {
	source  string
	entries map[string]Entry
}

// Empty returns a cache with no entries.
func Empty() *Cache {
	return &Cache{entries: make(map[string]Entry)}
}

// Load reads the first of paths that exists and parses. A missing or corrupt
// file never fails the run: the next candidate is tried and the cache may
// end up empty.
func Load(logger *slog.Logger, paths ...string) *Cache {
	logger = logging.NewComponentLogger(logger, "probecache")
	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			continue
		}
		entries, err := read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			logging.WarnWithContext(logger, "ignoring unreadable validation cache", "probecache_load_failed",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "delete or regenerate the previous output file"),
				logging.String(logging.FieldImpact, "cached outcomes from this file are ignored"),
			)
			continue
		}
		logger.Info("validation cache loaded",
			logging.String(logging.FieldPath, path),
			logging.Int("entry_count", len(entries)),
		)
		return &Cache{source: path, entries: entries}
	}
	return Empty()
}

func read(path string) (map[string]Entry, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	records, err := ingest.ReadRecords(path)
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	entries := make(map[string]Entry, len(records))
	for _, raw := range records {
		obs, ok := ingest.Extract(raw)
		if !ok {
			continue
		}
		entries[obs.StreamURL] = Entry{
			Status:       obs.Status,
			Codec:        obs.Codec,
			Bitrate:      obs.Bitrate,
			SampleRate:   obs.SampleRate,
			LastTestedAt: obs.LastTestedAt,
			Website:      obs.Website,
		}
	}
	return entries, nil
}

// Source returns the file the cache was loaded from, or "".
func (c *Cache) Source() string {
	if c == nil {
		return ""
	}
	return c.source
}

// Len returns the number of cached URLs.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Lookup returns the cached entry for url.
func (c *Cache) Lookup(url string) (Entry, bool) {
	if c == nil {
		return Entry{}, false
	}
	entry, ok := c.entries[url]
	return entry, ok
}

// Apply merges the cached outcome for rec into a copy of rec and reports
// whether the stream still has to be probed.
func (c *Cache) Apply(rec station.Record, policy Policy) (station.Record, bool) {
	if policy.ForceRetest {
		return rec, true
	}
	entry, ok := c.Lookup(rec.StreamURL)
	if ok && entry.Status == station.StatusWorking {
		rec = rec.WithValidation(station.Validation{
			Status:       station.StatusWorking,
			Codec:        entry.Codec,
			Bitrate:      entry.Bitrate,
			SampleRate:   entry.SampleRate,
			LastTestedAt: entry.LastTestedAt,
		})
		if rec.Website == "" {
			rec.Website = entry.Website
		}
		return rec, false
	}
	if rec.Status == station.StatusWorking {
		return rec, false
	}
	if ok && entry.Status == station.StatusBroken && !policy.RetryBroken {
		rec = rec.WithValidation(station.Validation{
			Status:       station.StatusBroken,
			LastTestedAt: entry.LastTestedAt,
		})
		return rec, false
	}
	return rec, true
}

// Hit reports whether Apply would take rec's outcome from the cache.
func (c *Cache) Hit(url string, policy Policy) bool {
	if policy.ForceRetest {
		return false
	}
	entry, ok := c.Lookup(url)
	if !ok {
		return false
	}
	return entry.Status == station.StatusWorking || (entry.Status == station.StatusBroken && !policy.RetryBroken)
}
