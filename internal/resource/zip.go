package resource

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
)

// ZipFile is a read-only handle on a zip archive that keeps the member
// directory in memory but reopens the archive file for every read.
// Programs referencing many archives at once (one per data package) would
// otherwise exhaust file descriptors. Safe for concurrent use.
type ZipFile struct {
	mu    sync.Mutex
	path  string
	sizes map[string]int64
}

// OpenZip reads the member directory of the archive at path and returns
// a reopenable handle.
func OpenZip(path string) (*ZipFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", path, err)
	}
	r, err := zip.OpenReader(abs)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", abs, err)
	}
	defer r.Close()

	sizes := make(map[string]int64, len(r.File))
	for _, f := range r.File {
		sizes[f.Name] = int64(f.UncompressedSize64)
	}
	return &ZipFile{path: abs, sizes: sizes}, nil
}

// Path returns the archive's absolute path.
func (z *ZipFile) Path() string { return z.path }

// Entries returns the member names of the archive.
func (z *ZipFile) Entries() []string {
	names := make([]string, 0, len(z.sizes))
	for name := range z.sizes {
		names = append(names, name)
	}
	return names
}

// EntrySize returns the uncompressed size of a member.
func (z *ZipFile) EntrySize(name string) (int64, bool) {
	size, ok := z.sizes[name]
	return size, ok
}

// Has reports whether the archive contains the named member. Directory
// names that are not listed explicitly count as present when any member
// lives under them.
func (z *ZipFile) Has(name string) bool {
	if _, ok := z.sizes[name]; ok {
		return true
	}
	if strings.HasSuffix(name, "/") {
		for member := range z.sizes {
			if strings.HasPrefix(member, name) {
				return true
			}
		}
	}
	return false
}

// ReadEntry reopens the archive, reads one member fully, and closes the
// archive again.
func (z *ZipFile) ReadEntry(name string) ([]byte, error) {
	z.mu.Lock()
	defer z.mu.Unlock()

	r, err := zip.OpenReader(z.path)
	if err != nil {
		return nil, fmt.Errorf("open zip %s: %w", z.path, err)
	}
	defer r.Close()

	f, err := r.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open entry %s in %s: %w", name, z.path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read entry %s in %s: %w", name, z.path, err)
	}
	return data, nil
}

// ZipEntryPointer identifies a file contained within a zip archive,
// accessed by reading that archive.
type ZipEntryPointer struct {
	zf    *ZipFile
	entry string
}

// NewZipEntryPointer creates a pointer to the given entry within the
// archive. The entry is a relative, slash-separated path; an empty entry
// points at the archive root. It fails with ErrNotFound when the archive
// lacks the entry.
func NewZipEntryPointer(zf *ZipFile, entry string) (*ZipEntryPointer, error) {
	if entry != "" {
		entry = strings.TrimPrefix(NormalizeResourceName(entry, true, "/"), "/")
		if !zf.Has(entry) {
			return nil, fmt.Errorf("%w: zip %s does not contain %q", ErrNotFound, zf.Path(), entry)
		}
	}
	return &ZipEntryPointer{zf: zf, entry: entry}, nil
}

// Zip returns the archive handle backing this pointer.
func (p *ZipEntryPointer) Zip() *ZipFile { return p.zf }

// Entry returns the member name within the archive.
func (p *ZipEntryPointer) Entry() string { return p.entry }

// Open reads the entry into memory and returns a seekable stream.
// Entries named *.gz are decompressed transparently.
func (p *ZipEntryPointer) Open() (io.ReadSeekCloser, error) {
	data, err := p.zf.ReadEntry(p.entry)
	if err != nil {
		return nil, err
	}
	if isGzipName(p.entry) {
		if data, err = gunzipBytes(p.entry, data); err != nil {
			return nil, err
		}
	}
	return newByteStream(data), nil
}

// Size returns the uncompressed size of the entry.
func (p *ZipEntryPointer) Size() (int64, error) {
	size, ok := p.zf.EntrySize(p.entry)
	if !ok {
		return 0, fmt.Errorf("%w: zip %s does not contain %q", ErrNotFound, p.zf.Path(), p.entry)
	}
	return size, nil
}

// Join appends a slash-separated fileid to the entry path.
func (p *ZipEntryPointer) Join(fileid string) (Pointer, error) {
	return NewZipEntryPointer(p.zf, p.entry+"/"+fileid)
}

func (p *ZipEntryPointer) String() string {
	return filepath.Join(p.zf.Path(), filepath.FromSlash(p.entry))
}
