package manifest

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

const sampleManifest = `aaf78ae8547e9e9c5489ea34e3cae469a1e57c07  main.dol
0123456789abcdef0123456789abcdef01234567 *town.rel
`

func TestParse(t *testing.T) {
	m, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Len() != 2 {
		t.Fatalf("entries = %d, want 2", m.Len())
	}

	sum, ok := m.Lookup("main.dol")
	if !ok || sum != "aaf78ae8547e9e9c5489ea34e3cae469a1e57c07" {
		t.Errorf("Lookup(main.dol) = %q, %v", sum, ok)
	}

	// Binary-mode marker is stripped from the path.
	if _, ok := m.Lookup("town.rel"); !ok {
		t.Error("Lookup(town.rel) missed; '*' marker not stripped")
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	tests := []string{
		"nothex  main.dol",
		"aaf78ae8547e9e9c5489ea34e3cae469a1e57c0  short.dol", // 39 hex chars
		"aaf78ae8547e9e9c5489ea34e3cae469a1e57c07  ",
	}
	for _, line := range tests {
		if _, err := Parse([]byte(line + "\n")); err == nil {
			t.Errorf("Parse(%q): expected error", line)
		}
	}
}

func TestSaveRoundTrip(t *testing.T) {
	m := New()
	m.Set("main.dol", "AAF78AE8547E9E9C5489EA34E3CAE469A1E57C07")
	m.Set("town.rel", "0123456789abcdef0123456789abcdef01234567")

	path := filepath.Join(t.TempDir(), "build.sha1")
	if err := Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := loaded.Paths(); len(got) != 2 || got[0] != "main.dol" || got[1] != "town.rel" {
		t.Errorf("paths = %v, want [main.dol town.rel]", got)
	}

	// Checksums are normalized to lowercase.
	sum, _ := loaded.Lookup("main.dol")
	if sum != "aaf78ae8547e9e9c5489ea34e3cae469a1e57c07" {
		t.Errorf("sum = %q, want lowercase", sum)
	}
}

func TestFileSHA1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.dol")
	content := []byte("not a real dol")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	want := sha1.Sum(content)
	got, err := FileSHA1(path)
	if err != nil {
		t.Fatalf("FileSHA1: %v", err)
	}
	if got != hex.EncodeToString(want[:]) {
		t.Errorf("FileSHA1 = %s, want %s", got, hex.EncodeToString(want[:]))
	}
}

func TestFileSHA1Missing(t *testing.T) {
	if _, err := FileSHA1("/nonexistent/main.dol"); err == nil {
		t.Error("expected error for missing file")
	}
}
