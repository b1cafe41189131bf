package station

import (
	"strings"
	"time"
)

// Status is the validation outcome of a stream.
type Status string

const (
	StatusUntested Status = "untested"
	StatusWorking  Status = "working"
	StatusBroken   Status = "broken"
)

// ParseStatus maps a raw status label onto a Status. Unknown labels are
// untested.
func ParseStatus(value string) Status {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusWorking:
		return StatusWorking
	case StatusBroken:
		return StatusBroken
	default:
		return StatusUntested
	}
}

// Record is the canonical, merged representation of a station keyed by its
// stream URL.
type Record struct {
	Name        string
	Image       string
	StreamURL   string
	Countries   Set
	Genres      Set
	Languages   Set
	Providers   map[string]string
	Website     string
	Description string

	Status       Status
	Codec        string
	Bitrate      int64
	SampleRate   int
	LastTestedAt *time.Time
}

// Validation holds the probe-derived portion of a record.
type Validation struct {
	Status       Status
	Codec        string
	Bitrate      int64
	SampleRate   int
	LastTestedAt *time.Time
}

// Validation returns the probe-derived fields.
func (r Record) Validation() Validation {
	return Validation{
		Status:       r.Status,
		Codec:        r.Codec,
		Bitrate:      r.Bitrate,
		SampleRate:   r.SampleRate,
		LastTestedAt: r.LastTestedAt,
	}
}

// WithValidation returns a copy of r carrying v. Technical metadata is only
// kept for working streams.
func (r Record) WithValidation(v Validation) Record {
	r.Status = v.Status
	r.LastTestedAt = v.LastTestedAt
	if v.Status == StatusWorking {
		r.Codec = v.Codec
		r.Bitrate = v.Bitrate
		r.SampleRate = v.SampleRate
	} else {
		r.Codec = ""
		r.Bitrate = 0
		r.SampleRate = 0
	}
	return r
}

// Clone returns a deep copy so folds never alias the sets of a previous value.
func (r Record) Clone() Record {
	out := r
	out.Countries = r.Countries.Clone()
	out.Genres = r.Genres.Clone()
	out.Languages = r.Languages.Clone()
	out.Providers = make(map[string]string, len(r.Providers))
	for k, v := range r.Providers {
		out.Providers[k] = v
	}
	if r.LastTestedAt != nil {
		ts := *r.LastTestedAt
		out.LastTestedAt = &ts
	}
	return out
}

// NormalizeImage upgrades protocol-relative image URLs to https.
func NormalizeImage(value string) string {
	value = strings.TrimSpace(value)
	if strings.HasPrefix(value, "//") {
		return "https:" + value
	}
	return value
}

// IsHTTPS reports whether value uses the https scheme.
func IsHTTPS(value string) bool {
	return len(value) >= len("https://") && strings.EqualFold(value[:len("https://")], "https://")
}
