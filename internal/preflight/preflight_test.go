package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"radiocat/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryReadable("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckISOTable(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "iso.json")
	if err := os.WriteFile(good, []byte(`{"Germany":"DE","France":"FR"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckISOTable(good); !result.Passed || !strings.Contains(result.Detail, "2 countries") {
		t.Fatalf("expected pass with count, got %+v", result)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`[1,2]`), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckISOTable(bad); result.Passed {
		t.Fatal("expected failure for non-object table")
	}

	if result := CheckISOTable(filepath.Join(dir, "missing.json")); result.Passed || !strings.Contains(result.Detail, "missing") {
		t.Fatalf("expected missing table detail, got %+v", result)
	}
}

func TestRunAllReportsOutputDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.SourceDir = t.TempDir()
	cfg.Paths.ProvidersDir = ""
	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "missing")
	cfg.Paths.ISOTable = ""

	results := RunAll(&cfg)
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d: %+v", len(results), results)
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Output directory" {
		t.Fatalf("expected output directory failure, got %+v", failed)
	}
}

func TestCheckSystemDepsHonorsSkipValidation(t *testing.T) {
	cfg := config.Default()
	cfg.Probe.Binary = "clearly-not-present-ffprobe"
	cfg.Policy.SkipValidation = true
	statuses := CheckSystemDeps(&cfg)
	if len(statuses) != 1 {
		t.Fatalf("expected one status, got %d", len(statuses))
	}
	if statuses[0].Available || !statuses[0].Optional {
		t.Fatalf("expected optional missing ffprobe, got %+v", statuses[0])
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
