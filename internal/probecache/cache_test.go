package probecache

import (
	"os"
	"path/filepath"
	"testing"

	"radiocat/internal/logging"
	"radiocat/internal/station"
)

const priorOutput = `[
  {"stream_url":"http://ok","status":"working","codec":"mp3","bitrate":"128000","sample_rate":44100,"last_tested_at":"2024-01-02T03:04:05Z","website":"https://ok.example"},
  {"stream_url":"http://down","status":"broken","last_tested_at":"2024-01-02T03:04:05Z"},
  {"stream_url":"","status":"working"}
]`

func writeCache(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "validated_mytuner.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	return path
}

func TestLoadFallbackChain(t *testing.T) {
	good := writeCache(t, priorOutput)
	corrupt := writeCache(t, `{"nope"`)
	missing := filepath.Join(t.TempDir(), "missing.json")

	cache := Load(logging.NewNop(), missing, corrupt, good)
	if cache.Source() != good {
		t.Fatalf("expected cache from %s, got %q", good, cache.Source())
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	cache := Load(nil, filepath.Join(t.TempDir(), "missing.json"), "")
	if cache.Len() != 0 || cache.Source() != "" {
		t.Fatalf("expected empty cache, got %d from %q", cache.Len(), cache.Source())
	}
}

func TestApplyWorkingEntrySkipsProbe(t *testing.T) {
	cache := Load(nil, writeCache(t, priorOutput))
	rec, needs := cache.Apply(station.Record{StreamURL: "http://ok", Status: station.StatusUntested}, Policy{RetryBroken: true})
	if needs {
		t.Fatal("expected cached working URL to skip probe")
	}
	if rec.Status != station.StatusWorking || rec.Codec != "mp3" || rec.Bitrate != 128000 || rec.SampleRate != 44100 {
		t.Fatalf("unexpected record %+v", rec)
	}
	if rec.Website != "https://ok.example" || rec.LastTestedAt == nil {
		t.Fatalf("expected website and timestamp from cache, got %+v", rec)
	}

	own, _ := cache.Apply(station.Record{StreamURL: "http://ok", Website: "https://own"}, Policy{})
	if own.Website != "https://own" {
		t.Fatalf("cache must not replace an existing website, got %q", own.Website)
	}
}

func TestApplyForceRetest(t *testing.T) {
	cache := Load(nil, writeCache(t, priorOutput))
	rec := station.Record{StreamURL: "http://ok", Status: station.StatusWorking}
	got, needs := cache.Apply(rec, Policy{ForceRetest: true})
	if !needs || got.Codec != "" {
		t.Fatalf("expected forced probe without cache data, got %v %+v", needs, got)
	}
	if cache.Hit("http://ok", Policy{ForceRetest: true}) {
		t.Fatal("forced runs never hit the cache")
	}
}

func TestApplyBrokenPolicy(t *testing.T) {
	cache := Load(nil, writeCache(t, priorOutput))
	rec := station.Record{StreamURL: "http://down", Status: station.StatusUntested}

	if _, needs := cache.Apply(rec, Policy{RetryBroken: true}); !needs {
		t.Fatal("broken entries are re-probed by default")
	}
	got, needs := cache.Apply(rec, Policy{RetryBroken: false})
	if needs || got.Status != station.StatusBroken || got.LastTestedAt == nil {
		t.Fatalf("expected sticky broken outcome, got %v %+v", needs, got)
	}
	if !cache.Hit("http://down", Policy{}) || cache.Hit("http://down", Policy{RetryBroken: true}) {
		t.Fatal("unexpected Hit result for broken entry")
	}
}

func TestApplyContributorWorkingSkipsProbe(t *testing.T) {
	rec := station.Record{StreamURL: "http://new", Status: station.StatusWorking}
	if _, needs := Empty().Apply(rec, Policy{RetryBroken: true}); needs {
		t.Fatal("expected working contributor status to skip probe")
	}
	if _, needs := Empty().Apply(station.Record{StreamURL: "http://new"}, Policy{}); !needs {
		t.Fatal("expected unknown URL to need a probe")
	}
}
