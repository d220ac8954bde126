package tools

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// A Tool is one pinned download. An archive is unpacked into the tool's
// directory under the provisioning root; a plain binary is written as a
// single executable file named after the release file.
type Tool struct {
	Name    string
	Tag     string
	URL     string
	SHA256  string
	Archive bool
}

// hostSuffix names the host platform the way the tool releases do.
func hostSuffix() string {
	goos := runtime.GOOS
	if goos == "darwin" {
		goos = "macos"
	}
	arch := runtime.GOARCH
	if arch == "amd64" {
		arch = "x86_64"
	}
	return goos + "-" + arch
}

// pinnedChecksums records the SHA256 of every release file the pinned
// tags resolve to. A host platform without an entry fails at provision
// time instead of fetching unverified content.
var pinnedChecksums = map[string]string{
	"https://files.decomp.dev/compilers_20240706.zip":                                        "fb536037db845379194f4f349943f7f374835afc2877f12c9040a3fa3448deff",
	"https://github.com/encounter/gc-wii-binutils/releases/download/2.42-1/linux-x86_64.zip": "29ea7c6246a7c279cc8b6d7bc6306bf6bd877952c1dc2a22c6181f91455b6fb5",
	"https://github.com/encounter/decomp-toolkit/releases/download/v1.3.0/dtk-linux-x86_64":  "77dd3fc8e7b0ef0cb084d2eba592985d5f70072e47554e781018c37164d78fdc",
	"https://github.com/encounter/objdiff/releases/download/v2.4.0/objdiff-cli-linux-x86_64": "bbbaa8acbd138b3b8e18d7ccc28bff675b8664f21844a65112b76d7f633cd0d1",
	"https://github.com/encounter/sjiswrap/releases/download/v1.2.0/sjiswrap.exe":            "5ce9c77c0f83e33ba0ff838cb0e913128ec916d26eada04a156ea2d71177a44e",
	"https://github.com/decompals/wibo/releases/download/0.6.11/wibo":                        "1a7736560ffb5bafce8b066159f2e670a39b21a13fc73a41cc04b7259c50990d",
}

// PinnedTools returns the download set for these tags. The wibo wrapper
// is linux-only; Windows hosts run the compiler binaries natively and
// other hosts supply a wrapper explicitly.
func (t Tags) PinnedTools() []Tool {
	host := hostSuffix()
	list := []Tool{
		{
			Name:    "compilers",
			Tag:     t.Compilers,
			URL:     fmt.Sprintf("https://files.decomp.dev/compilers_%s.zip", t.Compilers),
			Archive: true,
		},
		{
			Name:    "binutils",
			Tag:     t.Binutils,
			URL:     fmt.Sprintf("https://github.com/encounter/gc-wii-binutils/releases/download/%s/%s.zip", t.Binutils, host),
			Archive: true,
		},
		{
			Name: "dtk",
			Tag:  t.Dtk,
			URL:  fmt.Sprintf("https://github.com/encounter/decomp-toolkit/releases/download/%s/dtk-%s", t.Dtk, host),
		},
		{
			Name: "objdiff",
			Tag:  t.Objdiff,
			URL:  fmt.Sprintf("https://github.com/encounter/objdiff/releases/download/%s/objdiff-cli-%s", t.Objdiff, host),
		},
		{
			Name: "sjiswrap",
			Tag:  t.Sjiswrap,
			URL:  fmt.Sprintf("https://github.com/encounter/sjiswrap/releases/download/%s/sjiswrap.exe", t.Sjiswrap),
		},
	}
	if runtime.GOOS == "linux" {
		list = append(list, Tool{
			Name: "wibo",
			Tag:  t.Wibo,
			URL:  fmt.Sprintf("https://github.com/decompals/wibo/releases/download/%s/wibo", t.Wibo),
		})
	}
	for i := range list {
		list[i].SHA256 = pinnedChecksums[list[i].URL]
	}
	return list
}

// Provision materializes the tools for tags under dir, fetching whatever
// the cache does not already hold. A tool whose tag stamp is present is
// left untouched, so repeat runs stay offline. The returned Toolset
// points into dir.
func Provision(ctx context.Context, d *Downloader, dir string, tags Tags) (*Toolset, error) {
	for _, tool := range tags.PinnedTools() {
		if err := install(ctx, d, dir, tool); err != nil {
			return nil, fmt.Errorf("provisioning %s %s: %w", tool.Name, tool.Tag, err)
		}
	}

	ts := &Toolset{
		CompilersDir: filepath.Join(dir, "compilers"),
		Tags:         tags,
	}
	if runtime.GOOS == "linux" {
		ts.WrapperPath = filepath.Join(dir, "wibo", "wibo")
	}
	return ts, nil
}

func install(ctx context.Context, d *Downloader, dir string, tool Tool) error {
	if tool.SHA256 == "" {
		return fmt.Errorf("no pinned checksum for %s", tool.URL)
	}

	toolDir := filepath.Join(dir, tool.Name)
	stamp := filepath.Join(toolDir, ".tag-"+tool.Tag)
	if _, err := os.Stat(stamp); err == nil {
		return nil
	}

	content, err := d.Fetch(ctx, tool.URL, tool.SHA256)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(toolDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", toolDir, err)
	}
	if tool.Archive {
		if err := extractZip(content, toolDir); err != nil {
			return err
		}
	} else {
		bin := filepath.Join(toolDir, filepath.Base(tool.URL))
		if err := os.WriteFile(bin, content, 0755); err != nil {
			return fmt.Errorf("writing %s: %w", bin, err)
		}
	}
	return os.WriteFile(stamp, nil, 0644)
}

// extractZip unpacks an archive into dir, rejecting entries that would
// land outside it.
func extractZip(content []byte, dir string) error {
	r, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}

	root := filepath.Clean(dir) + string(os.PathSeparator)
	for _, f := range r.File {
		dest := filepath.Join(dir, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(dest, root) {
			return fmt.Errorf("archive entry %q escapes the extraction directory", f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}

		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("reading archive entry %s: %w", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return fmt.Errorf("reading archive entry %s: %w", f.Name, err)
		}

		mode := f.Mode().Perm()
		if mode == 0 {
			mode = 0644
		}
		if err := os.WriteFile(dest, data, mode); err != nil {
			return err
		}
	}
	return nil
}
