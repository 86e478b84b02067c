package resource

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// DefaultPaths returns the directories searched for corpora data, in
// priority order. The CORPORA_DATA environment variable (a list in
// os.PathListSeparator form) comes first, then the per-user directory,
// then the shared system directories. Only entries that do not repeat
// earlier ones are included; entries need not exist.
func DefaultPaths() []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		paths = append(paths, p)
	}

	if env := os.Getenv("CORPORA_DATA"); env != "" {
		for _, p := range filepath.SplitList(env) {
			add(p)
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		add(filepath.Join(home, "corpora_data"))
	}
	for _, base := range []string{"/usr/share", "/usr/local/share", "/usr/lib", "/usr/local/lib"} {
		add(filepath.Join(base, "corpora_data"))
	}
	return paths
}

// Finder locates resources by name on a list of data directories. Zip
// archives encountered during lookups are cached so that their member
// directories are read only once. Safe for concurrent use.
type Finder struct {
	mu    sync.Mutex
	paths []string
	zips  map[string]*ZipFile
}

// NewFinder creates a finder over the given directories. A nil or empty
// list means DefaultPaths.
func NewFinder(paths []string) *Finder {
	if len(paths) == 0 {
		paths = DefaultPaths()
	}
	return &Finder{paths: paths, zips: make(map[string]*ZipFile)}
}

// Paths returns the search directories in priority order.
func (f *Finder) Paths() []string {
	out := make([]string, len(f.paths))
	copy(out, f.paths)
	return out
}

// Find locates a resource on the search path. The name is a
// slash-separated path such as "corpora/brown/ca01"; names may address
// zip members directly ("corpora/brown.zip/brown/ca01"). When a plain
// name is not found, each path component is also tried as a zip archive
// containing a same-named directory, so installed-but-zipped packages
// resolve transparently.
func (f *Finder) Find(name string) (Pointer, error) {
	return f.FindIn(name, f.paths)
}

// FindIn is Find over an explicit directory list. An empty string entry
// means the current working directory and also permits absolute names.
func (f *Finder) FindIn(name string, paths []string) (Pointer, error) {
	if p, err := f.findExact(name, paths); err == nil {
		return p, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	// "corpora/brown/ca01" may live in "corpora/brown.zip/brown/ca01":
	// retry with each component expanded into an archive of itself.
	if zipPath, _ := splitZipName(name); zipPath == "" {
		pieces := strings.Split(name, "/")
		for i, piece := range pieces {
			rewritten := make([]string, 0, len(pieces)+1)
			rewritten = append(rewritten, pieces[:i]...)
			rewritten = append(rewritten, piece+".zip")
			rewritten = append(rewritten, pieces[i:]...)
			p, err := f.findExact(strings.Join(rewritten, "/"), paths)
			if err == nil {
				return p, nil
			}
			if !errors.Is(err, ErrNotFound) {
				return nil, err
			}
		}
	}
	return nil, &NotFoundError{Name: name, Paths: paths}
}

// findExact tries the name literally against each path entry, without
// the zip rewrite.
func (f *Finder) findExact(name string, paths []string) (Pointer, error) {
	zipName, entry := splitZipName(name)

	for _, dir := range paths {
		// A path entry may itself be a zip archive.
		if dir != "" && strings.HasSuffix(dir, ".zip") && isRegularFile(dir) {
			zf, err := f.openZip(dir)
			if err != nil {
				continue
			}
			if p, err := NewZipEntryPointer(zf, name); err == nil {
				return p, nil
			}
			continue
		}
		if dir != "" && !isDirectory(dir) {
			continue
		}

		if zipName == "" {
			p := filepath.Join(dir, filepath.FromSlash(name))
			if dir == "" {
				p = filepath.FromSlash(name)
			}
			if _, err := os.Stat(p); err != nil {
				continue
			}
			if isGzipName(p) {
				return NewGzipFilePointer(p)
			}
			return NewFilePointer(p)
		}

		p := filepath.Join(dir, filepath.FromSlash(zipName))
		if dir == "" {
			p = filepath.FromSlash(zipName)
		}
		if !isRegularFile(p) {
			continue
		}
		zf, err := f.openZip(p)
		if err != nil {
			continue
		}
		if ptr, err := NewZipEntryPointer(zf, entry); err == nil {
			return ptr, nil
		}
	}
	return nil, &NotFoundError{Name: name, Paths: paths}
}

// openZip returns a cached archive handle, opening it on first use.
func (f *Finder) openZip(path string) (*ZipFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if zf, ok := f.zips[abs]; ok {
		return zf, nil
	}
	zf, err := OpenZip(abs)
	if err != nil {
		return nil, err
	}
	f.zips[abs] = zf
	return zf, nil
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
