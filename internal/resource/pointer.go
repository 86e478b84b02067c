package resource

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Pointer identifies a concrete, readable location of a resource. The
// two main implementations are FilePointer, for files accessed directly
// on the filesystem, and ZipEntryPointer, for files stored inside a zip
// archive.
type Pointer interface {
	// Open returns a seekable read-only stream over the contents of the
	// pointed-to file.
	Open() (io.ReadSeekCloser, error)

	// Size returns the size of the pointed-to file in bytes.
	Size() (int64, error)

	// Join returns a new pointer for the path formed by appending the
	// slash-separated fileid to this pointer's path.
	Join(fileid string) (Pointer, error)

	// String returns a human-readable location.
	String() string
}

// FilePointer identifies a file that can be accessed directly via a
// given absolute path.
type FilePointer struct {
	path string
}

// NewFilePointer creates a pointer for the given path. It fails with
// ErrNotFound if the path does not exist.
func NewFilePointer(path string) (*FilePointer, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, abs)
	}
	return &FilePointer{path: abs}, nil
}

// Path returns the absolute path identified by this pointer.
func (p *FilePointer) Path() string { return p.path }

// Open returns the underlying file, which is seekable.
func (p *FilePointer) Open() (io.ReadSeekCloser, error) {
	return os.Open(p.path)
}

// Size returns the file size in bytes.
func (p *FilePointer) Size() (int64, error) {
	info, err := os.Stat(p.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// Join appends a slash-separated fileid to this pointer's path.
func (p *FilePointer) Join(fileid string) (Pointer, error) {
	return NewFilePointer(filepath.Join(p.path, filepath.FromSlash(fileid)))
}

func (p *FilePointer) String() string { return p.path }

// GzipFilePointer identifies a gzip-compressed file. Open decompresses
// the whole file into memory so the returned stream stays seekable.
type GzipFilePointer struct {
	FilePointer
}

// NewGzipFilePointer creates a pointer for a gzip-compressed file at the
// given path.
func NewGzipFilePointer(path string) (*GzipFilePointer, error) {
	fp, err := NewFilePointer(path)
	if err != nil {
		return nil, err
	}
	return &GzipFilePointer{FilePointer: *fp}, nil
}

// Open decompresses the file and returns a seekable in-memory stream.
func (p *GzipFilePointer) Open() (io.ReadSeekCloser, error) {
	f, err := os.Open(p.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", p.path, err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", p.path, err)
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	return newByteStream(data), nil
}

// byteStream adapts an in-memory byte slice to io.ReadSeekCloser.
type byteStream struct {
	*bytes.Reader
}

func newByteStream(data []byte) *byteStream {
	return &byteStream{Reader: bytes.NewReader(data)}
}

// Close is a no-op; the data lives in memory.
func (b *byteStream) Close() error { return nil }

// gunzipBytes decompresses gzip data held in memory.
func gunzipBytes(name string, data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", name, err)
	}
	out, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("gunzip %s: %w", name, err)
	}
	if err := zr.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

// isGzipName reports whether a file or entry name refers to gzip data.
func isGzipName(name string) bool {
	return strings.HasSuffix(name, ".gz")
}
