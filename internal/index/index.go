// Package index models the remote package index: the catalog of
// downloadable data packages (corpora, grammars, taggers, models) and
// the named collections that group them.
package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for index operations.
var (
	// ErrUnknownID indicates an identifier that is neither a package nor a collection.
	ErrUnknownID = errors.New("index: unknown package or collection id")

	// ErrDuplicateID indicates an index entry whose id is already taken.
	ErrDuplicateID = errors.New("index: duplicate id")

	// ErrMissingField indicates an index entry missing a required field.
	ErrMissingField = errors.New("index: missing required field")
)

// Package describes one downloadable data package.
type Package struct {
	// ID is the unique identifier, e.g. "brown".
	ID string `json:"id"`
	// Name is the human-readable title.
	Name string `json:"name"`
	// Category is the data subdirectory the package installs into,
	// e.g. "corpora" or "taggers".
	Category string `json:"category"`
	// Filename is the archive filename; empty means "<id>.zip".
	Filename string `json:"filename,omitempty"`
	// Unzip reports whether the archive is extracted after download.
	// Packages readable directly from zip stay packed to save space.
	Unzip bool `json:"unzip"`
	// Size is the archive size in bytes.
	Size int64 `json:"size"`
	// UnzippedSize is the extracted size in bytes; zero when Unzip is false.
	UnzippedSize int64 `json:"unzipped_size,omitempty"`
	// Checksum is the SHA-256 of the archive, hex-encoded.
	Checksum string `json:"checksum"`
	// Contents lists files expected after extraction, relative to the
	// extracted directory. Used to detect partially installed packages.
	Contents []string `json:"contents,omitempty"`
	// Languages lists ISO 639 codes of the contained material.
	Languages []string `json:"languages,omitempty"`
	// URL is the download location, absolute or relative to the index.
	URL string `json:"url,omitempty"`
}

// ArchiveName returns the archive filename, applying the "<id>.zip"
// default.
func (p *Package) ArchiveName() string {
	if p.Filename != "" {
		return p.Filename
	}
	return p.ID + ".zip"
}

// Collection groups packages (and other collections) under one id, so
// "corpora download book" can install a curated set.
type Collection struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Children []string `json:"children"`
}

// Index is a parsed package index.
type Index struct {
	packages    map[string]*Package
	collections map[string]*Collection
}

type indexDocument struct {
	Packages    []*Package    `json:"packages"`
	Collections []*Collection `json:"collections"`
}

// Parse reads an index document from JSON and validates it: every entry
// needs an id, packages need a category and checksum, and ids must be
// unique across packages and collections.
func Parse(data []byte) (*Index, error) {
	var doc indexDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("index: parse: %w", err)
	}

	ix := &Index{
		packages:    make(map[string]*Package, len(doc.Packages)),
		collections: make(map[string]*Collection, len(doc.Collections)),
	}
	for _, p := range doc.Packages {
		switch {
		case p.ID == "":
			return nil, fmt.Errorf("%w: package id", ErrMissingField)
		case p.Category == "":
			return nil, fmt.Errorf("%w: category of package %q", ErrMissingField, p.ID)
		case p.Checksum == "":
			return nil, fmt.Errorf("%w: checksum of package %q", ErrMissingField, p.ID)
		}
		if _, ok := ix.packages[p.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, p.ID)
		}
		ix.packages[p.ID] = p
	}
	for _, c := range doc.Collections {
		if c.ID == "" {
			return nil, fmt.Errorf("%w: collection id", ErrMissingField)
		}
		if _, taken := ix.packages[c.ID]; taken {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
		}
		if _, taken := ix.collections[c.ID]; taken {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
		}
		ix.collections[c.ID] = c
	}
	return ix, nil
}

// Package returns the package with the given id, or nil.
func (ix *Index) Package(id string) *Package { return ix.packages[id] }

// Collection returns the collection with the given id, or nil.
func (ix *Index) Collection(id string) *Collection { return ix.collections[id] }

// Packages returns all packages sorted by id.
func (ix *Index) Packages() []*Package {
	out := make([]*Package, 0, len(ix.packages))
	for _, p := range ix.packages {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Collections returns all collections sorted by id.
func (ix *Index) Collections() []*Collection {
	out := make([]*Collection, 0, len(ix.collections))
	for _, c := range ix.collections {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Resolve expands the given ids into the packages they denote.
// Collection ids expand recursively; each package appears once, in
// first-mentioned order. Collections referencing themselves, directly
// or through other collections, do not recurse forever.
func (ix *Index) Resolve(ids ...string) ([]*Package, error) {
	var out []*Package
	seen := make(map[string]bool)
	visiting := make(map[string]bool)

	var walk func(id string) error
	walk = func(id string) error {
		if seen[id] || visiting[id] {
			return nil
		}
		if p := ix.packages[id]; p != nil {
			seen[id] = true
			out = append(out, p)
			return nil
		}
		c := ix.collections[id]
		if c == nil {
			return fmt.Errorf("%w: %q", ErrUnknownID, id)
		}
		visiting[id] = true
		defer delete(visiting, id)
		for _, child := range c.Children {
			if err := walk(child); err != nil {
				return err
			}
		}
		seen[id] = true
		return nil
	}

	for _, id := range ids {
		if err := walk(id); err != nil {
			return nil, err
		}
	}
	return out, nil
}
