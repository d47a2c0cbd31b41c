package report_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/crimescope-cli/internal/report"
)

func TestManifestRecordsAndPersists(t *testing.T) {
	dir := t.TempDir()
	m, err := report.Open(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(m.Artifacts) != 0 {
		t.Fatalf("expected empty manifest, got %d", len(m.Artifacts))
	}

	run := m.NewRun("priority")
	a := run.Record("chart", "priority matrix", run.Path("oxford_priority.png"), "png", 0)
	run.Record("table", "priority matrix", run.Path("priority.csv"), "csv", 12)
	if a.RunID != run.ID || a.ID == "" || a.ID == run.ID {
		t.Fatalf("unexpected ids: %+v", a)
	}
	if a.Path != "oxford_priority.png" {
		t.Fatalf("path should be relative to the output dir, got %q", a.Path)
	}
	if err := m.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "manifest.json")); err != nil {
		t.Fatalf("manifest not written: %v", err)
	}

	again, err := report.Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := len(again.ByRun(run.ID)); got != 2 {
		t.Fatalf("expected 2 artifacts for run, got %d", got)
	}

	// Rewriting the same file replaces its entry.
	run2 := again.NewRun("priority")
	run2.Record("chart", "priority matrix", run2.Path("oxford_priority.png"), "png", 0)
	if len(again.Artifacts) != 2 {
		t.Fatalf("expected replacement, got %d artifacts", len(again.Artifacts))
	}
	if len(again.ByRun(run.ID)) != 1 || len(again.ByRun(run2.ID)) != 1 {
		t.Fatalf("unexpected run split")
	}
}

func TestOpenRejectsCorruptManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := report.Open(dir); err == nil {
		t.Fatalf("expected parse error")
	}
}
