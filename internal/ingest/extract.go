package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"radiocat/internal/station"
)

// Observation is one provider's typed view of a station, produced at the
// boundary from an untrusted raw record.
type Observation struct {
	StreamURL   string
	Name        string
	Image       string
	Website     string
	Description string
	ProviderID  string
	Provider    string
	Country     string
	Genres      []string
	Languages   []string

	Status       station.Status
	Codec        string
	Bitrate      int64
	SampleRate   int
	LastTestedAt *time.Time

	// Source is the file the observation was read from and CountryLabel the
	// unresolved country label of that file (folder name or ISO stem).
	Source       string
	CountryLabel string
}

// URL field priority: the first non-empty value after trimming wins.
var urlFields = []string{"stream_url", "verified_url"}

// Extract converts a raw provider record into an Observation. It reports
// false when no stream URL can be found.
func Extract(raw map[string]any) (Observation, bool) {
	url := ExtractURL(raw)
	if url == "" {
		return Observation{}, false
	}
	obs := Observation{
		StreamURL:    url,
		Name:         stringField(raw, "name"),
		Image:        station.NormalizeImage(firstString(raw, "image", "image_url")),
		Website:      stringField(raw, "website"),
		Description:  stringField(raw, "description"),
		ProviderID:   idField(raw["id"]),
		Provider:     stringField(raw, "provider"),
		Country:      stringField(raw, "country"),
		Genres:       listField(raw, "genres", "genre"),
		Languages:    listField(raw, "languages", "language"),
		Status:       station.ParseStatus(stringField(raw, "status")),
		Codec:        stringField(raw, "codec"),
		Bitrate:      intField(raw["bitrate"]),
		SampleRate:   int(intField(raw["sample_rate"])),
		LastTestedAt: timeField(raw["last_tested_at"]),
	}
	if obs.Codec == "unknown" {
		obs.Codec = ""
	}
	return obs, true
}

// ExtractURL applies the stream URL priority: stream_url, verified_url, then
// the url of the first entry in streams.
func ExtractURL(raw map[string]any) string {
	for _, key := range urlFields {
		if v := stringField(raw, key); v != "" {
			return v
		}
	}
	streams, ok := raw["streams"].([]any)
	if !ok || len(streams) == 0 {
		return ""
	}
	first, ok := streams[0].(map[string]any)
	if !ok {
		return ""
	}
	return stringField(first, "url")
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return strings.TrimSpace(s)
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if v := stringField(raw, key); v != "" {
			return v
		}
	}
	return ""
}

// listField reads the first present key as a scalar string or a list of
// strings. Non-string members are ignored.
func listField(raw map[string]any, keys ...string) []string {
	for _, key := range keys {
		value, ok := raw[key]
		if !ok || value == nil {
			continue
		}
		switch v := value.(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return []string{s}
			}
		case []any:
			out := make([]string, 0, len(v))
			for _, item := range v {
				s, ok := item.(string)
				if !ok {
					continue
				}
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
			if len(out) > 0 {
				return out
			}
		}
	}
	return nil
}

func idField(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return ""
	}
}

// intField accepts JSON numbers and numeric strings such as "128000" or
// "44100.0". Anything else is zero.
func intField(value any) int64 {
	switch v := value.(type) {
	case float64:
		if math.IsNaN(v) || v < 0 {
			return 0
		}
		return int64(v)
	case int:
		return int64(max(v, 0))
	case int64:
		return max(v, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || f < 0 {
			return 0
		}
		return int64(f)
	default:
		return 0
	}
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func timeField(value any) *time.Time {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			ts = ts.UTC()
			return &ts
		}
	}
	return nil
}
