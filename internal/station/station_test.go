package station

import (
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSetMarshalsSorted(t *testing.T) {
	s := NewSet("b", " a ", "", "c", "a")
	data, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `["a","b","c"]` {
		t.Fatalf("unexpected json %s", data)
	}
	empty, _ := json.Marshal(NewSet())
	if string(empty) != `[]` {
		t.Fatalf("expected empty array, got %s", empty)
	}
}

func TestSetUnionDoesNotAlias(t *testing.T) {
	a := NewSet("x")
	b := NewSet("y")
	u := a.Union(b)
	u.Add("z")
	if a.Has("z") || b.Has("z") || a.Len() != 1 {
		t.Fatal("union aliased its inputs")
	}
	var nilSet Set
	if nilSet.Clone().Len() != 0 {
		t.Fatal("expected empty clone of nil set")
	}
}

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"working": StatusWorking,
		" Broken": StatusBroken,
		"unknown": StatusUntested,
		"":        StatusUntested,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestWithValidationClearsMetadataWhenNotWorking(t *testing.T) {
	now := time.Now()
	rec := Record{Status: StatusWorking, Codec: "mp3", Bitrate: 128000, SampleRate: 44100}
	rec = rec.WithValidation(Validation{Status: StatusBroken, Codec: "aac", LastTestedAt: &now})
	if rec.Codec != "" || rec.Bitrate != 0 || rec.SampleRate != 0 {
		t.Fatalf("expected cleared metadata, got %+v", rec)
	}
	if rec.LastTestedAt == nil {
		t.Fatal("expected last tested timestamp")
	}
}

func TestCloneIsDeep(t *testing.T) {
	now := time.Now()
	rec := Record{Countries: NewSet("DE"), Providers: map[string]string{"a": "1"}, LastTestedAt: &now}
	c := rec.Clone()
	c.Countries.Add("FR")
	c.Providers["b"] = "2"
	if rec.Countries.Has("FR") || len(rec.Providers) != 1 {
		t.Fatal("clone shares state with original")
	}
	if c.LastTestedAt == rec.LastTestedAt {
		t.Fatal("clone shares timestamp pointer")
	}
}

func TestNormalizeImage(t *testing.T) {
	if got := NormalizeImage("//cdn/x.png"); got != "https://cdn/x.png" {
		t.Fatalf("unexpected %q", got)
	}
	if !IsHTTPS("HTTPS://cdn") || IsHTTPS("http://cdn") || IsHTTPS("") {
		t.Fatal("unexpected IsHTTPS result")
	}
}
