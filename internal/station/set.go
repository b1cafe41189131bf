package station

import (
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

// Set is an unordered collection of non-empty strings. Members are only
// sorted when serialized.
type Set map[string]struct{}

// NewSet builds a set from values, skipping blanks.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	s.Add(values...)
	return s
}

// Add inserts trimmed, non-empty values.
func (s Set) Add(values ...string) {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		s[v] = struct{}{}
	}
}

// Has reports membership.
func (s Set) Has(value string) bool {
	_, ok := s[value]
	return ok
}

// Len returns the member count.
func (s Set) Len() int { return len(s) }

// Union returns a new set containing the members of s and other.
func (s Set) Union(other Set) Set {
	out := make(Set, len(s)+len(other))
	for v := range s {
		out[v] = struct{}{}
	}
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	return s.Union(nil)
}

// Sorted returns the members in ascending byte order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON renders the set as a sorted array; an empty set is [].
func (s Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON accepts an array of strings.
func (s *Set) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewSet(values...)
	return nil
}
