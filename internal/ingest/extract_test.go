package ingest

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"

	"radiocat/internal/station"
)

func decode(t *testing.T, payload string) map[string]any {
	t.Helper()
	var raw map[string]any
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("decode fixture: %v", err)
	}
	return raw
}

func TestExtractURLPriority(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{"stream_url wins", `{"stream_url":" http://a ","verified_url":"http://b"}`, "http://a"},
		{"blank stream_url falls through", `{"stream_url":"  ","verified_url":"http://b"}`, "http://b"},
		{"streams fallback", `{"streams":[{"url":"http://c"},{"url":"http://d"}]}`, "http://c"},
		{"empty streams", `{"streams":[]}`, ""},
		{"non-string url", `{"stream_url":42}`, ""},
		{"nothing", `{"name":"x"}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractURL(decode(t, tt.payload)); got != tt.want {
				t.Fatalf("ExtractURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractSkipsBlankURL(t *testing.T) {
	if _, ok := Extract(decode(t, `{"name":"Radio","stream_url":"   "}`)); ok {
		t.Fatal("expected blank url to be rejected")
	}
}

func TestExtractNormalizesFields(t *testing.T) {
	obs, ok := Extract(decode(t, `{
		"stream_url": "http://radio.example/live",
		"name": "Radio One",
		"image_url": "//cdn.example/logo.png",
		"id": 12345,
		"genre": "Jazz",
		"language": ["English", null, 3, " "],
		"status": "WORKING",
		"codec": "mp3",
		"bitrate": "128000",
		"sample_rate": 44100,
		"last_tested_at": "2024-05-01T10:00:00Z"
	}`))
	if !ok {
		t.Fatal("expected observation")
	}
	if obs.Image != "https://cdn.example/logo.png" {
		t.Fatalf("unexpected image %q", obs.Image)
	}
	if obs.ProviderID != "12345" {
		t.Fatalf("unexpected id %q", obs.ProviderID)
	}
	if !reflect.DeepEqual(obs.Genres, []string{"Jazz"}) {
		t.Fatalf("unexpected genres %v", obs.Genres)
	}
	if !reflect.DeepEqual(obs.Languages, []string{"English"}) {
		t.Fatalf("unexpected languages %v", obs.Languages)
	}
	if obs.Status != station.StatusWorking || obs.Codec != "mp3" || obs.Bitrate != 128000 || obs.SampleRate != 44100 {
		t.Fatalf("unexpected validation fields %+v", obs)
	}
	if obs.LastTestedAt == nil || obs.LastTestedAt.Year() != 2024 {
		t.Fatalf("unexpected last tested %v", obs.LastTestedAt)
	}
}

func TestExtractPrefersPluralKeys(t *testing.T) {
	obs, _ := Extract(decode(t, `{"stream_url":"u","genres":["Rock","Pop"],"genre":"Ignored"}`))
	if !reflect.DeepEqual(obs.Genres, []string{"Rock", "Pop"}) {
		t.Fatalf("unexpected genres %v", obs.Genres)
	}
}

func TestExtractUnknownCodecIsBlank(t *testing.T) {
	obs, _ := Extract(decode(t, `{"stream_url":"u","codec":"unknown","status":"maybe"}`))
	if obs.Codec != "" {
		t.Fatalf("expected blank codec, got %q", obs.Codec)
	}
	if obs.Status != station.StatusUntested {
		t.Fatalf("expected untested, got %q", obs.Status)
	}
}

func TestResolverFallsBackToLabel(t *testing.T) {
	r := NewResolver(map[string]string{"Germany": "DE"})
	if got := r.Resolve("Germany"); got != "DE" {
		t.Fatalf("Resolve(Germany) = %q", got)
	}
	if got := r.Resolve("Atlantis"); got != "Atlantis" {
		t.Fatalf("Resolve(Atlantis) = %q", got)
	}
	var empty Resolver
	if got := empty.Resolve("France"); got != "France" {
		t.Fatalf("empty resolver changed label: %q", got)
	}
}

func TestResolverKeepsBlankTableValue(t *testing.T) {
	r := NewResolver(map[string]string{"Kosovo": ""})
	if got := r.Resolve("Kosovo"); got != "" {
		t.Fatalf("Resolve(Kosovo) = %q, want blank table value", got)
	}
}
