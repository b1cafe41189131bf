package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"radiocat/internal/logging"
	"radiocat/internal/services"
)

// SourceFile is one raw provider file scheduled for loading.
type SourceFile struct {
	Path string
	// Provider is the fallback provider name. When Pinned is set it overrides
	// the provider field of every record in the file.
	Provider string
	Pinned   bool
	// Label is the raw country label (folder name or file stem) and Country
	// its resolved code. An empty Country defers to each record's own field.
	Label   string
	Country string
}

// DiscoverCatalog walks root for files named <provider>.json whose base name
// is one of providers. The parent folder name is the country label.
func DiscoverCatalog(root string, providers []string, resolver Resolver) ([]SourceFile, error) {
	accepted := make(map[string]struct{}, len(providers))
	for _, p := range providers {
		accepted[strings.TrimSuffix(strings.TrimSpace(p), ".json")] = struct{}{}
	}

	var files []SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".json") {
			return nil
		}
		name := strings.TrimSuffix(d.Name(), filepath.Ext(d.Name()))
		if _, ok := accepted[name]; !ok {
			return nil
		}
		label := filepath.Base(filepath.Dir(path))
		files = append(files, SourceFile{
			Path:     path,
			Provider: name,
			Label:    label,
			Country:  resolver.Resolve(label),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "ingest", "discover", fmt.Sprintf("source directory %s does not exist", root), err)
		}
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "discover", "walk source directory", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// DiscoverProvider lists dataDir/<ISO>.json for a single provider. country
// may be a country name or an ISO code and narrows discovery to one file.
func DiscoverProvider(dataDir, provider, country string, resolver Resolver) ([]SourceFile, error) {
	var paths []string
	if country = strings.TrimSpace(country); country != "" {
		candidate := filepath.Join(dataDir, strings.ToUpper(resolver.Resolve(country))+".json")
		if _, err := os.Stat(candidate); err == nil {
			paths = append(paths, candidate)
		}
	} else {
		matches, err := filepath.Glob(filepath.Join(dataDir, "*.json"))
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "ingest", "discover", "glob provider data", err)
		}
		paths = matches
	}
	sort.Strings(paths)

	files := make([]SourceFile, 0, len(paths))
	for _, path := range paths {
		iso := strings.ToUpper(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		files = append(files, SourceFile{
			Path:     path,
			Provider: provider,
			Pinned:   true,
			Label:    iso,
			Country:  iso,
		})
	}
	return files, nil
}

// ReadRecords decodes a JSON array of raw station objects. Non-object
// members are dropped.
func ReadRecords(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []any
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	records := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if m, ok := item.(map[string]any); ok {
			records = append(records, m)
		}
	}
	return records, nil
}

// LoadStats counts what happened while loading source files.
type LoadStats struct {
	Files        int
	FailedFiles  int
	RawEntries   int
	SkippedNoURL int
}

// Load reads every file and hands each extracted observation to sink in
// file order. Unreadable files are logged and skipped.
func Load(ctx context.Context, logger *slog.Logger, files []SourceFile, resolver Resolver, sink func(Observation)) (LoadStats, error) {
	logger = logging.NewComponentLogger(logger, "ingest")
	var stats LoadStats
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Files++
		records, err := ReadRecords(file.Path)
		if err != nil {
			stats.FailedFiles++
			logging.WarnWithContext(logger, "skipping unreadable source file", "source_parse_failed",
				logging.String(logging.FieldPath, file.Path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the scraper output for truncated or invalid JSON"),
				logging.String(logging.FieldImpact, "stations from this file are missing from the catalog"),
			)
			continue
		}
		for _, raw := range records {
			stats.RawEntries++
			obs, ok := Extract(raw)
			if !ok {
				stats.SkippedNoURL++
				continue
			}
			file.apply(&obs, resolver)
			sink(obs)
		}
		logger.Debug("source file loaded",
			logging.String(logging.FieldPath, file.Path),
			logging.Int("records", len(records)),
		)
	}
	return stats, nil
}

func (f SourceFile) apply(obs *Observation, resolver Resolver) {
	obs.Source = f.Path
	obs.CountryLabel = f.Label
	if f.Pinned || obs.Provider == "" {
		obs.Provider = f.Provider
	}
	if f.Country != "" {
		obs.Country = f.Country
	} else if obs.Country != "" {
		obs.Country = resolver.Resolve(obs.Country)
	}
}
