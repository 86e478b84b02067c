// Package corpus provides stream-backed views over corpus files. A
// view behaves like a lazy sequence of tokens while reading only the
// blocks an access touches, so a gigabyte corpus can be sliced without
// loading it.
package corpus

import (
	"io"
	"iter"
	"sort"
	"strings"
	"sync"

	"github.com/corpora-dev/corpora/internal/resource"
	"github.com/corpora-dev/corpora/pkg/lazy"
)

// BlockReader reads the next block of tokens from a decoding reader.
// It reports io.EOF once the stream is exhausted; a final partial block
// may be returned together with io.EOF.
type BlockReader func(r *resource.Reader) ([]string, error)

// ReadLineBlock reads one line as a single token, without the
// terminator.
func ReadLineBlock(r *resource.Reader) ([]string, error) {
	line, err := r.ReadLine()
	line = strings.TrimRight(line, "\r\n")
	if line == "" && err != nil {
		return nil, err
	}
	return []string{line}, err
}

// ReadWhitespaceBlock reads one line and splits it into
// whitespace-separated tokens.
func ReadWhitespaceBlock(r *resource.Reader) ([]string, error) {
	line, err := r.ReadLine()
	tokens := strings.Fields(line)
	if len(tokens) == 0 && err != nil {
		return nil, err
	}
	return tokens, err
}

// View is a lazy token sequence backed by a corpus file. It remembers
// the byte offset where each block starts, so random access seeks to
// the nearest known block instead of re-reading from the top. Safe for
// concurrent use; each iteration opens its own stream.
type View struct {
	ptr      resource.Pointer
	encoding string
	read     BlockReader

	mu        sync.Mutex
	blockToks []int   // token index at the start of each discovered block
	blockOffs []int64 // byte offset of each discovered block
	frontier  int     // tokens covered by discovered blocks
	complete  bool
	totalLen  int
	err       error
}

var _ lazy.Sequence[string] = (*View)(nil)

// NewView creates a view over the pointed-to file. The encoding is
// passed to the decoding reader; empty means UTF-8 with BOM detection.
func NewView(ptr resource.Pointer, encoding string, read BlockReader) *View {
	return &View{ptr: ptr, encoding: encoding, read: read}
}

// Err returns the first I/O or decoding error hit during iteration.
// Iteration ends early on error; callers that need to distinguish a
// short read from end of data check Err afterwards.
func (v *View) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Len returns the total number of tokens, reading any not-yet-visited
// tail of the file to count it.
func (v *View) Len() int {
	v.mu.Lock()
	if v.complete {
		n := v.totalLen
		v.mu.Unlock()
		return n
	}
	frontier := v.frontier
	v.mu.Unlock()

	for range v.IterateFrom(frontier) {
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	return v.totalLen
}

// IterateFrom yields tokens starting at index start, seeking to the
// nearest known block first.
func (v *View) IterateFrom(start int) iter.Seq[string] {
	return func(yield func(string) bool) {
		if start < 0 {
			start = 0
		}
		r, err := v.open()
		if err != nil {
			v.setErr(err)
			return
		}
		defer r.Close()

		tok, off := v.nearestBlock(start)
		if _, err := r.Seek(off, io.SeekStart); err != nil {
			v.setErr(err)
			return
		}

		for {
			blockStart := r.Tell()
			tokens, err := v.read(r)
			if len(tokens) > 0 {
				v.record(tok, blockStart, len(tokens))
				for _, t := range tokens {
					if tok >= start && !yield(t) {
						return
					}
					tok++
				}
			}
			if err != nil {
				if err == io.EOF {
					v.markComplete(tok)
				} else {
					v.setErr(err)
				}
				return
			}
		}
	}
}

func (v *View) open() (*resource.Reader, error) {
	stream, err := v.ptr.Open()
	if err != nil {
		return nil, err
	}
	r, err := resource.NewReader(stream, v.encoding)
	if err != nil {
		stream.Close()
		return nil, err
	}
	return r, nil
}

// nearestBlock returns the token index and byte offset of the closest
// discovered block at or before start.
func (v *View) nearestBlock(start int) (int, int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	i := sort.SearchInts(v.blockToks, start+1) - 1
	if i < 0 {
		return 0, 0
	}
	return v.blockToks[i], v.blockOffs[i]
}

// record stores a block's position when it extends the discovered
// frontier.
func (v *View) record(tok int, off int64, n int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if tok == v.frontier {
		v.blockToks = append(v.blockToks, tok)
		v.blockOffs = append(v.blockOffs, off)
		v.frontier = tok + n
	}
}

func (v *View) markComplete(total int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.complete {
		v.complete = true
		v.totalLen = total
		v.frontier = total
	}
}

func (v *View) setErr(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.err == nil {
		v.err = err
	}
}
