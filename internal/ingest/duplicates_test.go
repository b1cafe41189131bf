package ingest

import "testing"

func TestDuplicateReportOnlyRepeatedURLs(t *testing.T) {
	idx := NewDuplicateIndex()
	idx.Add(Observation{StreamURL: "http://a", Name: "A", Source: "/data/Germany/mytuner.json", CountryLabel: "Germany"})
	idx.Add(Observation{StreamURL: "http://a", Source: "/data/France/onlineradiobox.json", CountryLabel: "France"})
	idx.Add(Observation{StreamURL: "http://b", Name: "B"})
	idx.Add(Observation{})

	report := idx.Report()
	if len(report) != 1 {
		t.Fatalf("expected one duplicate URL, got %v", report)
	}
	occ := report["http://a"]
	if len(occ) != 2 {
		t.Fatalf("expected two occurrences, got %v", occ)
	}
	if occ[0].Source != "mytuner.json" || occ[0].Country != "Germany" {
		t.Fatalf("unexpected occurrence %+v", occ[0])
	}
	if occ[1].Name != "Unknown" {
		t.Fatalf("expected placeholder name, got %q", occ[1].Name)
	}

	stats := idx.Stats(4)
	if stats.UniqueURLs != 2 || stats.DuplicateURLs != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.RedundancyRate != 50 {
		t.Fatalf("expected 50%% redundancy, got %v", stats.RedundancyRate)
	}
}

func TestDuplicateStatsEmpty(t *testing.T) {
	if stats := NewDuplicateIndex().Stats(0); stats.RedundancyRate != 0 {
		t.Fatalf("unexpected rate %v", stats.RedundancyRate)
	}
}

func TestDuplicateReportThreeSharedTwoSingles(t *testing.T) {
	idx := NewDuplicateIndex()
	for _, country := range []string{"Germany", "France", "Spain"} {
		idx.Add(Observation{StreamURL: "http://shared", Name: "Shared", Source: "/data/" + country + "/mytuner.json", CountryLabel: country})
	}
	idx.Add(Observation{StreamURL: "http://one", Name: "One"})
	idx.Add(Observation{StreamURL: "http://two", Name: "Two"})

	report := idx.Report()
	if len(report) != 1 {
		t.Fatalf("expected exactly one duplicate URL, got %v", report)
	}
	occ, ok := report["http://shared"]
	if !ok || len(occ) != 3 {
		t.Fatalf("expected three occurrences of http://shared, got %v", report)
	}
	if occ[0].Country != "Germany" || occ[2].Country != "Spain" {
		t.Fatalf("occurrences out of load order: %+v", occ)
	}

	stats := idx.Stats(5)
	if stats.UniqueURLs != 3 || stats.DuplicateURLs != 1 || stats.RedundancyRate != 40 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
