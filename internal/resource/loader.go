package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	gopath "path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/renameio/v2"
	"golang.org/x/text/encoding/charmap"
	"gopkg.in/yaml.v3"

	"github.com/corpora-dev/corpora/internal/resilience"
)

// Format selects how Load interprets a resource's bytes.
type Format string

const (
	// FormatAuto picks the format from the resource's file extension.
	FormatAuto Format = "auto"
	// FormatJSON decodes a JSON document into generic Go values.
	FormatJSON Format = "json"
	// FormatYAML decodes a YAML document into generic Go values.
	FormatYAML Format = "yaml"
	// FormatText decodes the resource into a string.
	FormatText Format = "text"
	// FormatRaw returns the undecoded bytes.
	FormatRaw Format = "raw"
	// FormatCFG returns grammar text with "##" comment lines and blank
	// lines removed.
	FormatCFG Format = "cfg"
)

// autoFormats maps file extensions to formats for FormatAuto.
var autoFormats = map[string]Format{
	".json": FormatJSON,
	".yaml": FormatYAML,
	".yml":  FormatYAML,
	".txt":  FormatText,
	".text": FormatText,
	".cfg":  FormatCFG,
	".fcfg": FormatCFG,
	".pcfg": FormatCFG,
}

// LoadOptions controls a single Load call. The zero value means
// automatic format detection, default text decoding, and caching on.
type LoadOptions struct {
	Format   Format
	Encoding string
	NoCache  bool
}

type cacheKey struct {
	url      string
	format   Format
	encoding string
}

// Loader opens and parses resources addressed by URL. Parsed values are
// cached per (URL, format, encoding); a cached value is shared between
// callers and must be treated as read-only. Safe for concurrent use.
type Loader struct {
	finder *Finder
	client *http.Client
	log    *slog.Logger

	mu    sync.Mutex
	cache map[cacheKey]any
}

// NewLoader creates a loader that resolves corpora URLs through finder
// and fetches http URLs through client. A nil client means
// http.DefaultClient.
func NewLoader(finder *Finder, client *http.Client, log *slog.Logger) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		finder: finder,
		client: client,
		log:    log,
		cache:  make(map[cacheKey]any),
	}
}

// Open returns a seekable stream over the resource the URL addresses.
// Remote resources are fetched fully into memory so the stream can seek.
func (l *Loader) Open(ctx context.Context, resourceURL string) (io.ReadSeekCloser, error) {
	resourceURL = NormalizeResourceURL(resourceURL)
	scheme, name, err := SplitResourceURL(resourceURL)
	if err != nil {
		return nil, err
	}
	switch scheme {
	case SchemeCorpora:
		// The working directory participates as a last resort.
		ptr, err := l.finder.FindIn(name, append(l.finder.Paths(), ""))
		if err != nil {
			return nil, err
		}
		return ptr.Open()
	case "file":
		ptr, err := l.finder.FindIn(name, []string{""})
		if err != nil {
			return nil, err
		}
		return ptr.Open()
	case "http", "https":
		return l.fetch(ctx, resourceURL)
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrBadURL, scheme)
	}
}

func (l *Loader) fetch(ctx context.Context, url string) (io.ReadSeekCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &resilience.StatusError{Code: resp.StatusCode, URL: url}
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	return newByteStream(data), nil
}

// Load opens, decodes, and caches the resource the URL addresses. The
// returned value depends on the format: generic values for JSON and
// YAML, string for text and grammar formats, []byte for raw.
func (l *Loader) Load(ctx context.Context, resourceURL string, opts LoadOptions) (any, error) {
	resourceURL = NormalizeResourceURL(resourceURL)
	format := opts.Format
	if format == "" {
		format = FormatAuto
	}
	if format == FormatAuto {
		var err error
		if format, err = detectFormat(resourceURL); err != nil {
			return nil, err
		}
	}

	key := cacheKey{url: resourceURL, format: format, encoding: opts.Encoding}
	if !opts.NoCache {
		l.mu.Lock()
		v, ok := l.cache[key]
		l.mu.Unlock()
		if ok {
			return v, nil
		}
	}

	stream, err := l.Open(ctx, resourceURL)
	if err != nil {
		return nil, err
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", resourceURL, err)
	}

	value, err := decode(resourceURL, format, opts.Encoding, data)
	if err != nil {
		return nil, err
	}

	if !opts.NoCache {
		l.mu.Lock()
		l.cache[key] = value
		l.mu.Unlock()
	}
	l.log.Debug("resource loaded", "url", resourceURL, "format", string(format))
	return value, nil
}

// ClearCache drops every cached resource value.
func (l *Loader) ClearCache() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
}

// Retrieve copies the resource the URL addresses to a local file,
// writing atomically. An empty dest means the URL's base filename in
// the working directory. It refuses to overwrite existing files.
func (l *Loader) Retrieve(ctx context.Context, resourceURL, dest string) (string, error) {
	resourceURL = NormalizeResourceURL(resourceURL)
	if dest == "" {
		_, name, err := SplitResourceURL(resourceURL)
		if err != nil {
			return "", err
		}
		dest = gopath.Base(strings.TrimSuffix(name, "/"))
	}
	if isRegularFile(dest) || isDirectory(dest) {
		return "", fmt.Errorf("%w: %s", ErrExists, dest)
	}

	stream, err := l.Open(ctx, resourceURL)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	t, err := renameio.TempFile("", dest)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", dest, err)
	}
	defer t.Cleanup()

	if _, err := io.Copy(t, stream); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	if err := t.CloseAtomicallyReplace(); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	l.log.Info("resource retrieved", "url", resourceURL, "dest", dest)
	return dest, nil
}

// detectFormat picks a format from the URL's file extension. A ".gz"
// suffix is transparent; the extension underneath decides.
func detectFormat(resourceURL string) (Format, error) {
	name := strings.TrimSuffix(resourceURL, ".gz")
	if format, ok := autoFormats[gopath.Ext(name)]; ok {
		return format, nil
	}
	exts := make([]string, 0, len(autoFormats))
	for ext := range autoFormats {
		exts = append(exts, ext)
	}
	return "", fmt.Errorf("%w: cannot detect format of %q (known extensions: %s); pass an explicit format",
		ErrUnknownFormat, resourceURL, strings.Join(exts, " "))
}

// decode interprets raw resource bytes according to the format.
func decode(resourceURL string, format Format, encName string, data []byte) (any, error) {
	switch format {
	case FormatRaw:
		return data, nil
	case FormatJSON:
		var v any
		if err := json.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse %s as json: %w", resourceURL, err)
		}
		return v, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("parse %s as yaml: %w", resourceURL, err)
		}
		return v, nil
	case FormatText:
		return decodeText(data, encName)
	case FormatCFG:
		text, err := decodeText(data, encName)
		if err != nil {
			return nil, err
		}
		return stripGrammar(text), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// decodeText decodes bytes into a string. Without an explicit encoding
// it accepts valid UTF-8 (dropping a leading BOM) and falls back to
// Latin-1, which accepts any byte sequence.
func decodeText(data []byte, encName string) (string, error) {
	if encName != "" {
		r, err := NewReader(newByteStream(data), encName)
		if err != nil {
			return "", err
		}
		s, err := r.ReadString(-1)
		if err != nil && err != io.EOF {
			return "", err
		}
		return s, nil
	}
	if utf8.Valid(data) {
		return strings.TrimPrefix(string(data), "\uFEFF"), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode latin-1: %w", err)
	}
	return string(decoded), nil
}

// stripGrammar removes "##" comment lines and blank lines from grammar
// text. Single "#" lines are grammar content (the CFG comment syntax)
// and stay.
func stripGrammar(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "##") {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
