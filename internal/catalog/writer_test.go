package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"radiocat/internal/ingest"
	"radiocat/internal/station"
)

func sampleRecord() station.Record {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return station.Record{
		Name:         "Radio & Friends",
		Image:        "https://img/x.png",
		StreamURL:    "http://radio.example/live?a=1&b=2",
		Countries:    station.NewSet("FR", "DE"),
		Genres:       station.NewSet("Pop", "Jazz"),
		Providers:    map[string]string{"mytuner": "42", "onlineradiobox": "de.radio"},
		Description:  "desc",
		Status:       station.StatusWorking,
		Codec:        "mp3",
		Bitrate:      128000,
		SampleRate:   44100,
		LastTestedAt: &ts,
	}
}

func TestEncodeCatalogShape(t *testing.T) {
	data, err := Encode([]station.Record{sampleRecord()}, ModeCatalog, "")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	text := string(data)
	for _, fragment := range []string{
		`"stream_url": "http://radio.example/live?a=1&b=2"`,
		`"name": "Radio & Friends"`,
		"\"countries\": [\n      \"DE\",\n      \"FR\"\n    ]",
		`"languages": []`,
		`"providers": {`,
		`"bitrate": 128000`,
	} {
		if !strings.Contains(text, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, text)
		}
	}
	for _, absent := range []string{`"provider_id"`, `"description"`, `\u0026`} {
		if strings.Contains(text, absent) {
			t.Fatalf("unexpected %q in catalog output:\n%s", absent, text)
		}
	}
}

func TestEncodeProviderShape(t *testing.T) {
	rec := sampleRecord()
	rec.Name = ""
	rec.Status = station.StatusBroken
	data, err := Encode([]station.Record{rec}, ModeProvider, "mytuner")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := decoded[0]
	if got["provider"] != "mytuner" || got["provider_id"] != "42" || got["description"] != "desc" {
		t.Fatalf("unexpected provider fields %v", got)
	}
	if got["name"] != UnknownName {
		t.Fatalf("expected placeholder name, got %v", got["name"])
	}
	if _, ok := got["codec"]; ok {
		t.Fatal("broken records must not carry codec")
	}
	if _, ok := got["providers"]; ok {
		t.Fatal("provider output must not carry providers map")
	}
}

func TestWriteAndReadRoundTripsRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master_stations.json")
	if err := Write(path, []station.Record{sampleRecord()}, ModeCatalog, ""); err != nil {
		t.Fatalf("Write: %v", err)
	}
	records, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Codec != "mp3" || got.Bitrate != 128000 || len(got.Providers) != 2 || !got.Countries.Has("DE") {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestReadAcceptsStringNumbers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.json")
	legacy := `[{"stream_url":"http://a","status":"working","codec":"aac","bitrate":"96000","sample_rate":"","provider":"orb","provider_id":"x"},{"stream_url":" "}]`
	if err := os.WriteFile(path, []byte(legacy), 0o644); err != nil {
		t.Fatal(err)
	}
	records, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(records) != 1 || records[0].Bitrate != 96000 || records[0].SampleRate != 0 {
		t.Fatalf("unexpected records %+v", records)
	}
	if records[0].Providers["orb"] != "x" {
		t.Fatalf("expected provider id from provider output, got %v", records[0].Providers)
	}
}

func TestWriteDuplicates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "duplicates.json")
	report := map[string][]ingest.Occurrence{
		"http://a": {{Name: "A", Country: "Germany", Source: "mytuner.json", File: "/x/mytuner.json"}, {Name: "A2"}},
	}
	if err := WriteDuplicates(path, report); err != nil {
		t.Fatalf("WriteDuplicates: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string][]ingest.Occurrence
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded["http://a"]) != 2 {
		t.Fatalf("unexpected report %v", decoded)
	}

	empty := filepath.Join(t.TempDir(), "empty.json")
	if err := WriteDuplicates(empty, nil); err != nil {
		t.Fatalf("WriteDuplicates nil: %v", err)
	}
	if data, _ := os.ReadFile(empty); strings.TrimSpace(string(data)) != "{}" {
		t.Fatalf("expected empty object, got %q", data)
	}
}
