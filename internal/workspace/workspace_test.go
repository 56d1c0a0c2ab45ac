package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestAcquireCreatesExclusiveDirectories(t *testing.T) {
	root := t.TempDir()

	first, err := Acquire(root, "2103.13630", false, nil)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	defer first.Release()
	second, err := Acquire(root, "2103.13630", false, nil)
	if err != nil {
		t.Fatalf("second Acquire returned error: %v", err)
	}
	defer second.Release()

	if first.Dir() == second.Dir() {
		t.Fatal("two runs received the same workspace directory")
	}
	for _, w := range []*Workspace{first, second} {
		info, err := os.Stat(w.Dir())
		if err != nil || !info.IsDir() {
			t.Fatalf("workspace dir missing: %v", err)
		}
		if !strings.HasPrefix(filepath.Base(w.Dir()), "arxiv2epub-2103.13630-") {
			t.Errorf("unexpected workspace name %q", filepath.Base(w.Dir()))
		}
	}
}

func TestReleaseRemovesEverything(t *testing.T) {
	root := t.TempDir()
	w, err := Acquire(root, "2103.13630", false, nil)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	if err := os.MkdirAll(w.SourceDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(w.ArchivePath(), []byte("bytes"), 0o644); err != nil {
		t.Fatal(err)
	}

	w.Release()

	entries, err := os.ReadDir(root)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty temp root after release, found %d entries", len(entries))
	}
}

func TestReleaseKeepsRetainedWorkspace(t *testing.T) {
	root := t.TempDir()
	w, err := Acquire(root, "2103.13630", true, nil)
	if err != nil {
		t.Fatalf("Acquire returned error: %v", err)
	}
	dir := w.Dir()
	w.Release()

	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("expected retained workspace to survive release: %v", err)
	}
}

func TestAcquireRequiresTempRoot(t *testing.T) {
	if _, err := Acquire("  ", "x", false, nil); err == nil {
		t.Fatal("expected error for empty temp root")
	}
}
