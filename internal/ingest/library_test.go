package ingest

import (
	"reflect"
	"testing"

	"radiocat/internal/station"
)

func obs(url, provider, country string, mutate func(*Observation)) Observation {
	o := Observation{StreamURL: url, Provider: provider, Country: country, Status: station.StatusUntested}
	if mutate != nil {
		mutate(&o)
	}
	return o
}

func TestMergeSeedsRecord(t *testing.T) {
	rec := Merge(station.Record{}, false, obs("u", "", "DE", func(o *Observation) {
		o.Name = "Radio"
		o.ProviderID = "7"
		o.Genres = []string{"Pop"}
	}))
	if rec.StreamURL != "u" || rec.Name != "Radio" {
		t.Fatalf("unexpected seed %+v", rec)
	}
	if !reflect.DeepEqual(rec.Providers, map[string]string{UnknownProvider: "7"}) {
		t.Fatalf("unexpected providers %v", rec.Providers)
	}
	if !reflect.DeepEqual(rec.Countries.Sorted(), []string{"DE"}) {
		t.Fatalf("unexpected countries %v", rec.Countries.Sorted())
	}
	if rec.Status != station.StatusUntested {
		t.Fatalf("unexpected status %q", rec.Status)
	}
}

func TestMergeUnionIsOrderIndependent(t *testing.T) {
	a := obs("u", "orb", "DE", func(o *Observation) {
		o.Name = "Radio"
		o.Genres = []string{"Rock"}
		o.Image = "http://img/a.png"
	})
	b := obs("u", "mytuner", "AT", func(o *Observation) {
		o.Name = "Radio Max"
		o.Genres = []string{"Pop", "Rock"}
		o.Image = "https://img/b.png"
		o.Languages = []string{"German"}
	})
	ab := Merge(Merge(station.Record{}, false, a), true, b)
	ba := Merge(Merge(station.Record{}, false, b), true, a)

	if !reflect.DeepEqual(ab.Countries.Sorted(), ba.Countries.Sorted()) ||
		!reflect.DeepEqual(ab.Genres.Sorted(), ba.Genres.Sorted()) ||
		!reflect.DeepEqual(ab.Languages.Sorted(), ba.Languages.Sorted()) {
		t.Fatalf("set union depends on order: %+v vs %+v", ab, ba)
	}
	if ab.Name != "Radio Max" || ba.Name != "Radio Max" {
		t.Fatalf("expected longest name, got %q / %q", ab.Name, ba.Name)
	}
	if ab.Image != "https://img/b.png" || ba.Image != "https://img/b.png" {
		t.Fatalf("expected https image, got %q / %q", ab.Image, ba.Image)
	}
	if len(ab.Providers) != 2 {
		t.Fatalf("expected two providers, got %v", ab.Providers)
	}
}

func TestMergeNameTieIsLexicographic(t *testing.T) {
	first := Merge(station.Record{}, false, obs("u", "p", "", func(o *Observation) { o.Name = "Beta" }))
	got := Merge(first, true, obs("u", "p", "", func(o *Observation) { o.Name = "Alfa" }))
	if got.Name != "Alfa" {
		t.Fatalf("expected lexicographically smaller name, got %q", got.Name)
	}
}

func TestMergeWebsiteFirstNonEmpty(t *testing.T) {
	lib := NewLibrary(LibraryOptions{})
	for _, site := range []string{"", "A", "B"} {
		site := site
		lib.Add(obs("u", "p", "DE", func(o *Observation) { o.Website = site }))
	}
	rec, ok := lib.Get("u")
	if !ok {
		t.Fatal("expected record")
	}
	if rec.Website != "A" {
		t.Fatalf("expected website A, got %q", rec.Website)
	}
}

func TestMergeWorkingWins(t *testing.T) {
	lib := NewLibrary(LibraryOptions{})
	lib.Add(obs("u", "a", "DE", func(o *Observation) { o.Status = station.StatusBroken }))
	lib.Add(obs("u", "b", "DE", func(o *Observation) {
		o.Status = station.StatusWorking
		o.Codec = "aac"
	}))
	lib.Add(obs("u", "c", "DE", func(o *Observation) { o.Status = station.StatusBroken }))
	rec, _ := lib.Get("u")
	if rec.Status != station.StatusWorking || rec.Codec != "aac" {
		t.Fatalf("expected working/aac, got %q/%q", rec.Status, rec.Codec)
	}
}

func TestMergeDoesNotMutateExisting(t *testing.T) {
	seed := Merge(station.Record{}, false, obs("u", "a", "DE", nil))
	_ = Merge(seed, true, obs("u", "b", "FR", nil))
	if seed.Countries.Has("FR") || len(seed.Providers) != 1 {
		t.Fatalf("merge mutated its input: %+v", seed)
	}
}

func TestLibraryFoldsGenreCase(t *testing.T) {
	lib := NewLibrary(LibraryOptions{FoldGenreCase: true})
	lib.Add(obs("u", "a", "", func(o *Observation) { o.Genres = []string{"Rock"} }))
	lib.Add(obs("u", "b", "", func(o *Observation) { o.Genres = []string{"ROCK", "rock"} }))
	rec, _ := lib.Get("u")
	if rec.Genres.Len() != 1 || !rec.Genres.Has("rock") {
		t.Fatalf("expected single folded genre, got %v", rec.Genres.Sorted())
	}

	sensitive := NewLibrary(LibraryOptions{})
	sensitive.Add(obs("u", "a", "", func(o *Observation) { o.Genres = []string{"Rock", "rock"} }))
	rec, _ = sensitive.Get("u")
	if rec.Genres.Len() != 2 {
		t.Fatalf("expected case-sensitive genres, got %v", rec.Genres.Sorted())
	}
}

func TestLibraryRecordsSortedByURL(t *testing.T) {
	lib := NewLibrary(LibraryOptions{})
	for _, url := range []string{"http://c", "http://a", "http://b", "http://a"} {
		lib.Add(obs(url, "p", "", nil))
	}
	lib.Add(Observation{})
	var urls []string
	for _, rec := range lib.Records() {
		urls = append(urls, rec.StreamURL)
	}
	if !reflect.DeepEqual(urls, []string{"http://a", "http://b", "http://c"}) {
		t.Fatalf("unexpected order %v", urls)
	}
	if lib.Len() != 3 {
		t.Fatalf("expected 3 unique urls, got %d", lib.Len())
	}
}
