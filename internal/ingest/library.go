package ingest

import (
	"sort"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"radiocat/internal/station"
)

// UnknownProvider labels observations whose provider cannot be determined.
const UnknownProvider = "unknown"

// Merge folds obs into existing. When present is false obs seeds a new
// record. Merge never mutates existing; the result shares no sets with it.
func Merge(existing station.Record, present bool, obs Observation) station.Record {
	provider := obs.Provider
	if provider == "" {
		provider = UnknownProvider
	}

	if !present {
		rec := station.Record{
			Name:        obs.Name,
			Image:       obs.Image,
			StreamURL:   obs.StreamURL,
			Countries:   station.NewSet(obs.Country),
			Genres:      station.NewSet(obs.Genres...),
			Languages:   station.NewSet(obs.Languages...),
			Providers:   map[string]string{provider: obs.ProviderID},
			Website:     obs.Website,
			Description: obs.Description,
			Status:      station.StatusUntested,
		}
		if obs.Status != "" {
			rec.Status = obs.Status
		}
		if rec.Status == station.StatusWorking {
			rec = rec.WithValidation(observedValidation(obs))
		}
		return rec
	}

	rec := existing.Clone()
	rec.Name = preferName(rec.Name, obs.Name)
	rec.Image = preferImage(rec.Image, obs.Image)
	rec.Countries.Add(obs.Country)
	rec.Genres.Add(obs.Genres...)
	rec.Languages.Add(obs.Languages...)
	rec.Providers[provider] = obs.ProviderID
	if rec.Website == "" {
		rec.Website = obs.Website
	}
	if rec.Description == "" {
		rec.Description = obs.Description
	}
	if obs.Status == station.StatusWorking && (rec.Status != station.StatusWorking || rec.Codec == "") {
		rec = rec.WithValidation(observedValidation(obs))
	}
	return rec
}

func observedValidation(obs Observation) station.Validation {
	return station.Validation{
		Status:       station.StatusWorking,
		Codec:        obs.Codec,
		Bitrate:      obs.Bitrate,
		SampleRate:   obs.SampleRate,
		LastTestedAt: obs.LastTestedAt,
	}
}

// preferName keeps the longer name; equal lengths resolve to the
// lexicographically smaller one so fold order does not matter.
func preferName(current, candidate string) string {
	cl, nl := utf8.RuneCountInString(current), utf8.RuneCountInString(candidate)
	switch {
	case nl > cl:
		return candidate
	case nl < cl:
		return current
	default:
		return min(current, candidate)
	}
}

// preferImage favors https over anything else, then the lexicographically
// smaller candidate.
func preferImage(current, candidate string) string {
	if candidate == "" {
		return current
	}
	if current == "" {
		return candidate
	}
	curSecure, candSecure := station.IsHTTPS(current), station.IsHTTPS(candidate)
	switch {
	case candSecure && !curSecure:
		return candidate
	case curSecure && !candSecure:
		return current
	default:
		return min(current, candidate)
	}
}

// LibraryOptions control how observations are normalized before merging.
type LibraryOptions struct {
	// FoldGenreCase unions genres under Unicode case folding.
	FoldGenreCase bool
}

// Library is the URL-keyed accumulator of canonical records. It is not safe
// for concurrent use.
type Library struct {
	records map[string]station.Record
	fold    *cases.Caser
}

// NewLibrary creates an empty library.
func NewLibrary(opts LibraryOptions) *Library {
	lib := &Library{records: make(map[string]station.Record)}
	if opts.FoldGenreCase {
		caser := cases.Fold()
		lib.fold = &caser
	}
	return lib
}

// Add folds one observation into the library.
func (l *Library) Add(obs Observation) {
	if obs.StreamURL == "" {
		return
	}
	if l.fold != nil && len(obs.Genres) > 0 {
		folded := make([]string, len(obs.Genres))
		for i, g := range obs.Genres {
			folded[i] = l.fold.String(g)
		}
		obs.Genres = folded
	}
	existing, present := l.records[obs.StreamURL]
	l.records[obs.StreamURL] = Merge(existing, present, obs)
}

// Get returns the record for url.
func (l *Library) Get(url string) (station.Record, bool) {
	rec, ok := l.records[url]
	return rec, ok
}

// Len returns the number of unique stream URLs.
func (l *Library) Len() int { return len(l.records) }


// Records returns all records ordered by stream URL.
func (l *Library) Records() []station.Record {
	out := make([]station.Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StreamURL < out[j].StreamURL })
	return out
}
