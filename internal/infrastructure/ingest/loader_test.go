package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeSource(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoadChunksMarkdownByHeading(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "manual.md",
		"# Communications\nRadio communications require encrypted channels for secure transmission.\n"+
			"## Couriers\nCourier delivery remains the fallback when radio silence is ordered in the field.\n")

	chunks, err := New(dir, 0).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	for _, c := range chunks {
		if c.Source != "manual.md" {
			t.Fatalf("chunk source = %q, want manual.md", c.Source)
		}
	}
}

func TestLoadSkipsShortFragments(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "short.md", "# Title\ntoo short\n")

	chunks, err := New(dir, 0).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestLoadMissingDirectoryIsEmptyCorpus(t *testing.T) {
	loader := New(filepath.Join(t.TempDir(), "does-not-exist"), 0)
	chunks, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected empty corpus, got %d chunks", len(chunks))
	}
}

func TestLoadChunksPlaintextByParagraph(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "notes.txt",
		"First paragraph long enough to clear the minimum chunk threshold easily.\n\n"+
			"Second paragraph also long enough to clear the minimum chunk threshold.\n")

	chunks, err := New(dir, 0).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
}

func TestFingerprintChangesWithContent(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "a.md", "# A\ncontent that is definitely long enough to matter here\n")
	loader := New(dir, 0)

	before, err := loader.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}

	// Ensure a different mtime even on coarse-grained filesystems.
	time.Sleep(10 * time.Millisecond)
	writeSource(t, dir, "a.md", "# A\nnew content that is also long enough to matter for chunking\n")

	after, err := loader.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint() error = %v", err)
	}
	if before == after {
		t.Fatalf("fingerprint should change when sources change")
	}
}

func TestLoadSplitsOversizedSections(t *testing.T) {
	dir := t.TempDir()
	body := ""
	for i := 0; i < 300; i++ {
		body += "the encrypted radio protocol rotates frequencies every interval "
	}
	writeSource(t, dir, "big.md", "# Protocol\n"+body+"\n")

	chunks, err := New(dir, 0).Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected oversized section to split, got %d chunks", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c.Text)) > maxChunkChars {
			t.Fatalf("chunk %d exceeds size cap: %d runes", i, len([]rune(c.Text)))
		}
	}
}
