// Package resource locates and loads data resources from the corpora
// search path. Resources are identified by URLs such as
// "corpora:corpora/abc/rural.txt" or "https://example.com/toy.cfg".
// Supported schemes:
//
//   - "file:<path>": a filesystem path, relative or absolute.
//   - "http://" / "https://": a resource on a web server.
//   - "corpora:<path>": a path relative to the corpora data directories,
//     searched in order. This is the default when no scheme is given.
package resource

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for resource operations.
var (
	// ErrNotFound indicates the resource could not be located on the search path.
	ErrNotFound = errors.New("resource: not found")

	// ErrExists indicates the retrieve destination already exists.
	ErrExists = errors.New("resource: destination file already exists")

	// ErrBadURL indicates a malformed resource URL.
	ErrBadURL = errors.New("resource: malformed URL")

	// ErrUnknownFormat indicates the load format could not be determined.
	ErrUnknownFormat = errors.New("resource: unknown format")

	// ErrRelativeSeek indicates an unsupported relative seek on a Reader.
	ErrRelativeSeek = errors.New("resource: relative seek not supported, use CharSeekForward")

	// ErrUnknownEncoding indicates an encoding name that could not be resolved.
	ErrUnknownEncoding = errors.New("resource: unknown encoding")
)

// NotFoundError reports a resource that was not found anywhere on the
// search path. It satisfies errors.Is(err, ErrNotFound).
type NotFoundError struct {
	Name  string
	Paths []string
}

// Error implements the error interface. The message names the package a
// user would download to obtain the resource.
func (e *NotFoundError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "resource %q not found", e.Name)
	if pkg := e.packageHint(); pkg != "" {
		fmt.Fprintf(&b, "; obtain it with: corpora download %s", pkg)
	}
	if len(e.Paths) > 0 {
		b.WriteString("; searched in:")
		for _, p := range e.Paths {
			fmt.Fprintf(&b, " %q", p)
		}
	}
	return b.String()
}

// Is supports errors.Is against ErrNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// packageHint guesses the downloadable package id from the resource name.
// Resource names look like "corpora/brown/ca01" or "taggers/averaged.zip/...",
// where the second segment (minus any .zip suffix) is the package id.
func (e *NotFoundError) packageHint() string {
	parts := strings.Split(e.Name, "/")
	if len(parts) < 2 {
		return ""
	}
	pkg := parts[1]
	return strings.TrimSuffix(pkg, ".zip")
}
