package resource

import (
	"archive/zip"
	"compress/gzip"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// writeZip creates a zip archive at path with the given members.
func writeZip(t *testing.T, path string, members map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, content := range members {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry %s: %v", name, err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatalf("write entry %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

// writeGzip creates a gzip-compressed file at path.
func writeGzip(t *testing.T, path, content string) {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create gzip: %v", err)
	}
	defer f.Close()

	w := gzip.NewWriter(f)
	if _, err := w.Write([]byte(content)); err != nil {
		t.Fatalf("write gzip: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close gzip: %v", err)
	}
}

func readAll(t *testing.T, p Pointer) string {
	t.Helper()

	stream, err := p.Open()
	if err != nil {
		t.Fatalf("open %s: %v", p, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		t.Fatalf("read %s: %v", p, err)
	}
	return string(data)
}

func TestFilePointer(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "sample.txt")
	if err := os.WriteFile(path, []byte("hello corpus"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFilePointer(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readAll(t, p); got != "hello corpus" {
		t.Errorf("content = %q, want %q", got, "hello corpus")
	}
	size, err := p.Size()
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if size != int64(len("hello corpus")) {
		t.Errorf("size = %d, want %d", size, len("hello corpus"))
	}
}

func TestFilePointer_Missing(t *testing.T) {
	t.Parallel()

	_, err := NewFilePointer(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestFilePointer_Join(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "sub", "a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := NewFilePointer(dir)
	if err != nil {
		t.Fatal(err)
	}
	child, err := p.Join("sub/a.txt")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := readAll(t, child); got != "x" {
		t.Errorf("content = %q, want %q", got, "x")
	}
}

func TestGzipFilePointer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "data.txt.gz")
	writeGzip(t, path, "compressed words")

	p, err := NewGzipFilePointer(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, p); got != "compressed words" {
		t.Errorf("content = %q, want %q", got, "compressed words")
	}
}

func TestZipFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "brown.zip")
	writeZip(t, path, map[string]string{
		"brown/ca01":    "The Fulton County Grand Jury",
		"brown/ca02":    "Austin, Texas",
		"brown/README":  "corpus readme",
		"brown/sub.gz/": "",
	})

	zf, err := OpenZip(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(zf.Entries()) != 4 {
		t.Errorf("entries = %d, want 4", len(zf.Entries()))
	}
	if !zf.Has("brown/ca01") {
		t.Error("Has(brown/ca01) = false, want true")
	}
	if !zf.Has("brown/") {
		t.Error("Has(brown/) = false, want true for implicit directory")
	}
	if zf.Has("brown/missing") {
		t.Error("Has(brown/missing) = true, want false")
	}

	data, err := zf.ReadEntry("brown/ca02")
	if err != nil {
		t.Fatalf("read entry: %v", err)
	}
	if string(data) != "Austin, Texas" {
		t.Errorf("content = %q", data)
	}
}

func TestZipEntryPointer(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "brown.zip")
	writeZip(t, path, map[string]string{
		"brown/ca01": "one",
		"brown/ca02": "two",
	})
	zf, err := OpenZip(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewZipEntryPointer(zf, "brown/ca01")
	if err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, p); got != "one" {
		t.Errorf("content = %q, want %q", got, "one")
	}
	size, err := p.Size()
	if err != nil {
		t.Fatal(err)
	}
	if size != 3 {
		t.Errorf("size = %d, want 3", size)
	}

	if _, err := NewZipEntryPointer(zf, "brown/nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestZipEntryPointer_Join(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "brown.zip")
	writeZip(t, path, map[string]string{"brown/ca01": "joined"})
	zf, err := OpenZip(path)
	if err != nil {
		t.Fatal(err)
	}

	root, err := NewZipEntryPointer(zf, "brown/")
	if err != nil {
		t.Fatal(err)
	}
	child, err := root.Join("ca01")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if got := readAll(t, child); got != "joined" {
		t.Errorf("content = %q, want %q", got, "joined")
	}
}

func TestZipEntryPointer_GzipEntry(t *testing.T) {
	t.Parallel()

	var compressed []byte
	{
		tmp := filepath.Join(t.TempDir(), "x.gz")
		writeGzip(t, tmp, "inner text")
		var err error
		if compressed, err = os.ReadFile(tmp); err != nil {
			t.Fatal(err)
		}
	}

	path := filepath.Join(t.TempDir(), "pkg.zip")
	writeZip(t, path, map[string]string{"pkg/model.gz": string(compressed)})
	zf, err := OpenZip(path)
	if err != nil {
		t.Fatal(err)
	}

	p, err := NewZipEntryPointer(zf, "pkg/model.gz")
	if err != nil {
		t.Fatal(err)
	}
	if got := readAll(t, p); got != "inner text" {
		t.Errorf("content = %q, want %q", got, "inner text")
	}
}
