package catalog

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"radiocat/internal/station"
)

// UnknownName replaces blank station names in written output.
const UnknownName = "Unknown"

// Mode selects the output record shape.
type Mode int

const (
	// ModeCatalog writes merged records with a providers map.
	ModeCatalog Mode = iota
	// ModeProvider writes single-provider records with provider and provider_id.
	ModeProvider
)

func (m Mode) String() string {
	if m == ModeProvider {
		return "provider"
	}
	return "catalog"
}

// Entry is the on-disk shape of a record. Catalog and provider outputs share
// it; fields that do not apply to a mode are omitted.
type Entry struct {
	Name         string            `json:"name"`
	Image        string            `json:"image"`
	StreamURL    string            `json:"stream_url"`
	Countries    station.Set       `json:"countries"`
	Genres       station.Set       `json:"genres"`
	Languages    station.Set       `json:"languages"`
	Providers    map[string]string `json:"providers,omitempty"`
	Provider     string            `json:"provider,omitempty"`
	ProviderID   string            `json:"provider_id,omitempty"`
	Website      string            `json:"website"`
	Description  string            `json:"description,omitempty"`
	Status       station.Status    `json:"status"`
	Codec        string            `json:"codec,omitempty"`
	Bitrate      flexInt           `json:"bitrate,omitempty"`
	SampleRate   flexInt           `json:"sample_rate,omitempty"`
	LastTestedAt *time.Time        `json:"last_tested_at,omitempty"`
}

// NewEntry converts a record into its output shape.
func NewEntry(rec station.Record, mode Mode, provider string) Entry {
	e := Entry{
		Name:         rec.Name,
		Image:        rec.Image,
		StreamURL:    rec.StreamURL,
		Countries:    orEmpty(rec.Countries),
		Genres:       orEmpty(rec.Genres),
		Languages:    orEmpty(rec.Languages),
		Website:      rec.Website,
		Status:       rec.Status,
		LastTestedAt: rec.LastTestedAt,
	}
	if e.Name == "" {
		e.Name = UnknownName
	}
	if e.Status == "" {
		e.Status = station.StatusUntested
	}
	if e.Status == station.StatusWorking {
		e.Codec = rec.Codec
		e.Bitrate = flexInt(rec.Bitrate)
		e.SampleRate = flexInt(rec.SampleRate)
	}
	switch mode {
	case ModeProvider:
		e.Provider = provider
		e.ProviderID = rec.Providers[provider]
		e.Description = rec.Description
	default:
		e.Providers = make(map[string]string, len(rec.Providers))
		for k, v := range rec.Providers {
			e.Providers[k] = v
		}
	}
	return e
}

// Record converts an entry back into a canonical record.
func (e Entry) Record() station.Record {
	rec := station.Record{
		Name:         e.Name,
		Image:        e.Image,
		StreamURL:    strings.TrimSpace(e.StreamURL),
		Countries:    orEmpty(e.Countries).Clone(),
		Genres:       orEmpty(e.Genres).Clone(),
		Languages:    orEmpty(e.Languages).Clone(),
		Providers:    make(map[string]string, len(e.Providers)+1),
		Website:      e.Website,
		Description:  e.Description,
		Status:       station.ParseStatus(string(e.Status)),
		LastTestedAt: e.LastTestedAt,
	}
	for k, v := range e.Providers {
		rec.Providers[k] = v
	}
	if e.Provider != "" {
		rec.Providers[e.Provider] = e.ProviderID
	}
	if rec.Status == station.StatusWorking {
		rec.Codec = e.Codec
		rec.Bitrate = int64(e.Bitrate)
		rec.SampleRate = int(e.SampleRate)
	}
	return rec
}

func orEmpty(s station.Set) station.Set {
	if s == nil {
		return station.NewSet()
	}
	return s
}

// flexInt decodes numbers, numeric strings and null. Earlier outputs stored
// bitrate and sample rate as strings.
type flexInt int64

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || v < 0 {
			*f = 0
			return nil
		}
		*f = flexInt(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v < 0 {
		v = 0
	}
	*f = flexInt(v)
	return nil
}
