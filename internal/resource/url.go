package resource

import (
	"fmt"
	gopath "path"
	"path/filepath"
	"strings"
)

// SchemeCorpora is the default scheme for resources on the search path.
const SchemeCorpora = "corpora"

// SplitResourceURL splits a resource URL into "<scheme>:<path>" form.
//
//	SplitResourceURL("corpora:home/data")  -> ("corpora", "home/data")
//	SplitResourceURL("file:///home/data")  -> ("file", "/home/data")
//	SplitResourceURL("http://host/x")      -> ("http", "host/x")
func SplitResourceURL(resourceURL string) (scheme, path string, err error) {
	scheme, path, ok := strings.Cut(resourceURL, ":")
	if !ok {
		return "", "", fmt.Errorf("%w: missing scheme in %q", ErrBadURL, resourceURL)
	}
	switch scheme {
	case SchemeCorpora:
	case "file":
		// file:/p, file://p and file:///p all mean the absolute path /p.
		if strings.HasPrefix(path, "/") {
			path = "/" + strings.TrimLeft(path, "/")
		}
	default:
		// Strip the authority marker; net/http gets the full URL anyway.
		path = strings.TrimPrefix(path, "//")
	}
	return scheme, path, nil
}

// NormalizeResourceURL brings a resource URL into canonical form. Bare
// paths get the "corpora:" scheme; absolute corpora paths and file paths
// become "file://" URLs; other schemes pass through untouched.
//
//	NormalizeResourceURL("dir/file")        -> "corpora:dir/file"
//	NormalizeResourceURL("corpora:/a/b")    -> "file:///a/b"
//	NormalizeResourceURL("file:grammar.cfg") -> "file:///<cwd>/grammar.cfg"
func NormalizeResourceURL(resourceURL string) string {
	scheme, name, err := SplitResourceURL(resourceURL)
	if err != nil {
		// No scheme: default to corpora.
		scheme, name = SchemeCorpora, resourceURL
	}
	switch {
	case scheme == SchemeCorpora && gopath.IsAbs(name):
		return "file://" + NormalizeResourceName(name, false, "")
	case scheme == "file":
		return "file://" + NormalizeResourceName(name, false, "")
	case scheme == SchemeCorpora:
		return "corpora:" + NormalizeResourceName(name, true, "")
	default:
		return scheme + "://" + name
	}
}

// NormalizeResourceName cleans a resource name. Resource names are
// posix-style paths such as "corpora/brown". A trailing slash (the
// directory marker) is preserved. When allowRelative is false the name is
// made absolute against relativeTo (the working directory if empty).
func NormalizeResourceName(name string, allowRelative bool, relativeTo string) string {
	isDir := strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".") || name == ""

	// Collapse repeated leading slashes.
	if strings.HasPrefix(name, "//") {
		name = "/" + strings.TrimLeft(name, "/")
	}

	switch {
	case allowRelative:
		name = gopath.Clean(name)
	case gopath.IsAbs(name):
		name = gopath.Clean(name)
	default:
		if relativeTo == "" {
			relativeTo = "."
		}
		abs, err := filepath.Abs(filepath.Join(relativeTo, filepath.FromSlash(name)))
		if err == nil {
			name = filepath.ToSlash(abs)
		}
	}

	if isDir && !strings.HasSuffix(name, "/") {
		name += "/"
	}
	return name
}

// splitZipName splits a resource name containing a ".zip/" component into
// the zip path and the entry inside it. Names without a zip component
// return ("", "").
//
//	splitZipName("corpora/brown.zip/brown/ca01") -> ("corpora/brown.zip", "brown/ca01")
//	splitZipName("corpora/brown.zip")            -> ("corpora/brown.zip", "")
func splitZipName(name string) (zipPath, entry string) {
	idx := strings.Index(name, ".zip/")
	if idx >= 0 {
		return name[:idx+4], name[idx+5:]
	}
	if strings.HasSuffix(name, ".zip") {
		return name, ""
	}
	return "", ""
}
