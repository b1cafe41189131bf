package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"radiocat/internal/logging"
	"radiocat/internal/services"
	"radiocat/internal/station"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "state", "catalog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func record(url string, mutate func(*station.Record)) station.Record {
	rec := station.Record{
		StreamURL: url,
		Countries: station.NewSet(),
		Genres:    station.NewSet(),
		Languages: station.NewSet(),
		Providers: map[string]string{},
		Status:    station.StatusUntested,
	}
	if mutate != nil {
		mutate(&rec)
	}
	return rec
}

func TestSyncInsertsAndMerges(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := record("http://a", func(r *station.Record) {
		r.Name = "Radio"
		r.Image = "http://img/a.png"
		r.Countries.Add("DE")
		r.Providers["mytuner"] = "1"
		r.Status = station.StatusBroken
	})
	stats, err := s.Sync(ctx, logging.NewNop(), []station.Record{first})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Inserted != 1 || stats.Updated != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	second := record("http://a", func(r *station.Record) {
		r.Name = "Radio Deluxe"
		r.Image = "https://img/b.png"
		r.Countries.Add("AT")
		r.Genres.Add("Jazz")
		r.Providers["onlineradiobox"] = "x"
		r.Status = station.StatusWorking
		r.Codec = "aac"
		r.Bitrate = 64000
		r.LastTestedAt = &ts
	})
	stats, err = s.Sync(ctx, nil, []station.Record{second})
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if stats.Updated != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}

	row, err := s.Get(ctx, "http://a")
	if err != nil || row == nil {
		t.Fatalf("Get: %v %v", row, err)
	}
	if row.Name != "Radio Deluxe" || row.Image != "https://img/b.png" {
		t.Fatalf("unexpected name/image %q %q", row.Name, row.Image)
	}
	if !row.Countries.Has("DE") || !row.Countries.Has("AT") || !row.Genres.Has("Jazz") {
		t.Fatalf("expected unioned sets, got %v %v", row.Countries.Sorted(), row.Genres.Sorted())
	}
	if len(row.Providers) != 2 {
		t.Fatalf("expected merged providers, got %v", row.Providers)
	}
	if row.Status != station.StatusWorking || row.Codec != "aac" || row.FailureCount != 0 {
		t.Fatalf("unexpected validation state %+v", row)
	}
	if row.LastTestedAt == nil || !row.LastTestedAt.Equal(ts) {
		t.Fatalf("unexpected last tested %v", row.LastTestedAt)
	}
}

func TestSyncCountsFailuresAndRespectsVerified(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	working := record("http://v", func(r *station.Record) {
		r.Status = station.StatusWorking
		r.Codec = "mp3"
	})
	broken := record("http://v", func(r *station.Record) { r.Status = station.StatusBroken })

	if _, err := s.Sync(ctx, nil, []station.Record{working}); err != nil {
		t.Fatal(err)
	}
	if err := s.SetVerified(ctx, "http://v", true); err != nil {
		t.Fatalf("SetVerified: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.Sync(ctx, nil, []station.Record{broken}); err != nil {
			t.Fatal(err)
		}
	}
	row, _ := s.Get(ctx, "http://v")
	if row.FailureCount != 2 {
		t.Fatalf("expected 2 failures, got %d", row.FailureCount)
	}
	if !row.Verified || row.Status != station.StatusWorking || row.Codec != "mp3" {
		t.Fatalf("verified row must keep status and codec, got %+v", row)
	}

	if err := s.SetVerified(ctx, "http://missing", true); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for unknown station, got %v", err)
	}
}

func TestStatusCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	recs := []station.Record{
		record("http://1", func(r *station.Record) { r.Status = station.StatusWorking }),
		record("http://2", func(r *station.Record) { r.Status = station.StatusWorking }),
		record("http://3", func(r *station.Record) { r.Status = station.StatusBroken }),
		record("http://4", nil),
	}
	if _, err := s.Sync(ctx, nil, recs); err != nil {
		t.Fatal(err)
	}
	counts, err := s.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts: %v", err)
	}
	if counts[station.StatusWorking] != 2 || counts[station.StatusBroken] != 1 || counts[station.StatusUntested] != 1 {
		t.Fatalf("unexpected counts %v", counts)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Sync(ctx, nil, []station.Record{record("http://keep", nil)}); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	row, err := s.Get(ctx, "http://keep")
	if err != nil || row == nil {
		t.Fatalf("expected persisted row, got %v %v", row, err)
	}
	if missing, err := s.Get(ctx, "http://nope"); err != nil || missing != nil {
		t.Fatalf("expected nil for unknown url, got %v %v", missing, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()
	s, err := Open(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.ExecContext(ctx, "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	if _, err := Open(ctx, path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestMergeRowKeepsHTTPSImage(t *testing.T) {
	existing := Row{Record: record("u", func(r *station.Record) { r.Image = "https://a" })}
	got := MergeRow(existing, record("u", func(r *station.Record) { r.Image = "http://b" }), time.Now())
	if got.Image != "https://a" {
		t.Fatalf("expected https image to stay, got %q", got.Image)
	}
	untested := MergeRow(Row{Record: record("u", nil), FailureCount: 3}, record("u", nil), time.Now())
	if untested.FailureCount != 3 {
		t.Fatalf("untested sync must not change failure count, got %d", untested.FailureCount)
	}
}
