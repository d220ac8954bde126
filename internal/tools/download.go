package tools

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/avelhorn/linkplan/internal/cache"
)

// HTTPClient abstracts http.Client for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Downloader fetches pinned tool archives, serving them from the
// content-addressed cache when possible.
type Downloader struct {
	Client HTTPClient
	Cache  *cache.Cache
}

// Fetch returns the archive at url, verified against its expected SHA256
// checksum. A cache hit skips the network entirely; a successful fetch
// populates the cache.
func (d *Downloader) Fetch(ctx context.Context, url, sha256hex string) ([]byte, error) {
	if sha256hex == "" {
		return nil, fmt.Errorf("fetching %s: checksum is required", url)
	}

	if d.Cache != nil {
		content, ok, err := d.Cache.Get(sha256hex)
		if err != nil {
			return nil, err
		}
		if ok {
			return content, nil
		}
	}

	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", url, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response from %s: %w", url, err)
	}

	if actual := cache.ComputeHash(content); actual != sha256hex {
		return nil, fmt.Errorf("checksum mismatch for %s: expected %s, got %s", url, sha256hex, actual)
	}

	if d.Cache != nil {
		if err := d.Cache.Put(sha256hex, content); err != nil {
			return nil, err
		}
	}

	return content, nil
}
