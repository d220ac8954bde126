// Package manifest reads and writes sha1sum-format checksum manifests.
// The reference manifest records the expected checksum of every build
// artifact; the progress calculator compares produced artifacts against
// it by path.
package manifest

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
)

// Manifest maps artifact paths to lowercase hex SHA-1 checksums.
// Entry order is preserved so Save round-trips byte-identically.
type Manifest struct {
	sums  map[string]string
	paths []string
}

// New returns an empty manifest.
func New() *Manifest {
	return &Manifest{sums: make(map[string]string)}
}

// Load reads a sha1sum-format manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes sha1sum output: one "<hex>  <path>" entry per line.
// The binary-mode marker ("*") and blank lines are tolerated.
func Parse(data []byte) (*Manifest, error) {
	m := New()
	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		sum, rest, ok := strings.Cut(line, " ")
		if !ok || len(sum) != 40 {
			return nil, fmt.Errorf("line %d: not a sha1sum entry", i+1)
		}
		if _, err := hex.DecodeString(sum); err != nil {
			return nil, fmt.Errorf("line %d: invalid checksum: %w", i+1, err)
		}

		path := strings.TrimPrefix(strings.TrimPrefix(rest, " "), "*")
		if path == "" {
			return nil, fmt.Errorf("line %d: missing path", i+1)
		}

		m.Set(path, strings.ToLower(sum))
	}
	return m, nil
}

// Set records (or replaces) the checksum for a path.
func (m *Manifest) Set(path, sum string) {
	if _, ok := m.sums[path]; !ok {
		m.paths = append(m.paths, path)
	}
	m.sums[path] = strings.ToLower(sum)
}

// Lookup returns the recorded checksum for a path.
func (m *Manifest) Lookup(path string) (string, bool) {
	sum, ok := m.sums[path]
	return sum, ok
}

// Paths returns the manifest's paths in recorded order.
func (m *Manifest) Paths() []string {
	return append([]string(nil), m.paths...)
}

// Len returns the number of entries.
func (m *Manifest) Len() int {
	return len(m.paths)
}

// Save writes the manifest atomically using a temp file and rename.
func Save(path string, m *Manifest) error {
	var b strings.Builder
	for _, p := range m.paths {
		fmt.Fprintf(&b, "%s  %s\n", m.sums[p], p)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing temp manifest %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("renaming temp manifest to %s: %w", path, err)
	}
	return nil
}

// FileSHA1 computes the lowercase hex SHA-1 of a file's contents.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
