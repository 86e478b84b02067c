// Package lazy provides read-only sequences whose elements are
// computed on demand. Corpus files hold millions of tokens; wrapping
// them in lazy sequences lets callers slice, map, and concatenate them
// without materializing the data.
package lazy

import (
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrIndex indicates an index outside the sequence bounds.
var ErrIndex = errors.New("lazy: index out of range")

// minCopySize is the largest subsequence worth copying eagerly; the
// copy costs less than the per-access indirection it avoids.
const minCopySize = 100

// Sequence is a read-only sequence with lazy iteration. Implementations
// must be safe for repeated iteration.
type Sequence[T any] interface {
	// Len returns the number of elements. It may need to consume an
	// underlying source to find out.
	Len() int

	// IterateFrom yields the elements starting at index start. A start
	// at or past Len yields nothing.
	IterateFrom(start int) iter.Seq[T]
}

// Iterate yields every element.
func Iterate[T any](s Sequence[T]) iter.Seq[T] {
	return s.IterateFrom(0)
}

// Get returns the element at index i. Negative indexes count from the
// end, so -1 is the last element.
func Get[T any](s Sequence[T], i int) (T, error) {
	var zero T
	if i < 0 {
		i += s.Len()
	}
	if i < 0 {
		return zero, ErrIndex
	}
	for v := range s.IterateFrom(i) {
		return v, nil
	}
	return zero, ErrIndex
}

// Index returns the position of the first element equal to v, or -1.
func Index[T comparable](s Sequence[T], v T) int {
	i := 0
	for e := range Iterate(s) {
		if e == v {
			return i
		}
		i++
	}
	return -1
}

// Contains reports whether v occurs in the sequence.
func Contains[T comparable](s Sequence[T], v T) bool {
	return Index(s, v) >= 0
}

// Count returns how many elements equal v.
func Count[T comparable](s Sequence[T], v T) int {
	n := 0
	for e := range Iterate(s) {
		if e == v {
			n++
		}
	}
	return n
}

// Collect copies the whole sequence into a slice.
func Collect[T any](s Sequence[T]) []T {
	out := make([]T, 0, s.Len())
	for v := range Iterate(s) {
		out = append(out, v)
	}
	return out
}

// String renders a sequence the way corpus readers print them: comma
// separated inside brackets, truncated with an ellipsis near 60
// characters.
func String[T any](s Sequence[T]) string {
	var b strings.Builder
	b.WriteByte('[')
	for v := range Iterate(s) {
		piece := fmt.Sprint(v)
		if b.Len()+len(piece)+2 > 60 {
			b.WriteString("...")
			break
		}
		if b.Len() > 1 {
			b.WriteString(", ")
		}
		b.WriteString(piece)
	}
	b.WriteByte(']')
	return b.String()
}

// Slice wraps an in-memory slice as a Sequence.
type Slice[T any] []T

// Len returns the slice length.
func (s Slice[T]) Len() int { return len(s) }

// IterateFrom yields the elements starting at start.
func (s Slice[T]) IterateFrom(start int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := max(start, 0); i < len(s); i++ {
			if !yield(s[i]) {
				return
			}
		}
	}
}

// Map returns a view of src with f applied to each element. f runs on
// every access; it should be cheap or idempotent.
func Map[A, B any](f func(A) B, src Sequence[A]) Sequence[B] {
	return &mapped[A, B]{f: f, src: src}
}

type mapped[A, B any] struct {
	f   func(A) B
	src Sequence[A]
}

func (m *mapped[A, B]) Len() int { return m.src.Len() }

func (m *mapped[A, B]) IterateFrom(start int) iter.Seq[B] {
	return func(yield func(B) bool) {
		for v := range m.src.IterateFrom(start) {
			if !yield(m.f(v)) {
				return
			}
		}
	}
}

// Pair holds one element from each of two zipped sequences.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip pairs two sequences element by element, stopping at the shorter.
func Zip[A, B any](a Sequence[A], b Sequence[B]) Sequence[Pair[A, B]] {
	return &zipped[A, B]{a: a, b: b}
}

type zipped[A, B any] struct {
	a Sequence[A]
	b Sequence[B]
}

func (z *zipped[A, B]) Len() int { return min(z.a.Len(), z.b.Len()) }

func (z *zipped[A, B]) IterateFrom(start int) iter.Seq[Pair[A, B]] {
	return func(yield func(Pair[A, B]) bool) {
		next, stop := iter.Pull(z.b.IterateFrom(start))
		defer stop()
		for av := range z.a.IterateFrom(start) {
			bv, ok := next()
			if !ok {
				return
			}
			if !yield(Pair[A, B]{First: av, Second: bv}) {
				return
			}
		}
	}
}

// Indexed is an element together with its position.
type Indexed[T any] struct {
	Index int
	Value T
}

// Enumerate numbers the elements of a sequence.
func Enumerate[T any](s Sequence[T]) Sequence[Indexed[T]] {
	return &enumerated[T]{src: s}
}

type enumerated[T any] struct {
	src Sequence[T]
}

func (e *enumerated[T]) Len() int { return e.src.Len() }

func (e *enumerated[T]) IterateFrom(start int) iter.Seq[Indexed[T]] {
	return func(yield func(Indexed[T]) bool) {
		i := start
		for v := range e.src.IterateFrom(start) {
			if !yield(Indexed[T]{Index: i, Value: v}) {
				return
			}
			i++
		}
	}
}

// Concat chains sequences end to end.
func Concat[T any](seqs ...Sequence[T]) Sequence[T] {
	return &concatenated[T]{seqs: seqs}
}

type concatenated[T any] struct {
	seqs []Sequence[T]
}

func (c *concatenated[T]) Len() int {
	total := 0
	for _, s := range c.seqs {
		total += s.Len()
	}
	return total
}

func (c *concatenated[T]) IterateFrom(start int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, s := range c.seqs {
			n := s.Len()
			if start >= n {
				start -= n
				continue
			}
			for v := range s.IterateFrom(start) {
				if !yield(v) {
					return
				}
			}
			start = 0
		}
	}
}

// Sub returns the subsequence [start, stop) of src. Both bounds may be
// negative to count from the end. Small subsequences are copied rather
// than kept as views.
func Sub[T any](src Sequence[T], start, stop int) Sequence[T] {
	n := src.Len()
	if start < 0 {
		start = max(0, start+n)
	}
	if stop < 0 {
		stop += n
	}
	stop = min(stop, n)
	start = min(start, n)
	if stop < start {
		stop = start
	}

	if stop-start < minCopySize {
		out := make(Slice[T], 0, stop-start)
		for v := range src.IterateFrom(start) {
			if len(out) == stop-start {
				break
			}
			out = append(out, v)
		}
		return out
	}
	return &subsequence[T]{src: src, start: start, length: stop - start}
}

type subsequence[T any] struct {
	src    Sequence[T]
	start  int
	length int
}

func (s *subsequence[T]) Len() int { return s.length }

func (s *subsequence[T]) IterateFrom(start int) iter.Seq[T] {
	return func(yield func(T) bool) {
		remaining := s.length - start
		if remaining <= 0 {
			return
		}
		for v := range s.src.IterateFrom(s.start + start) {
			if !yield(v) {
				return
			}
			if remaining--; remaining == 0 {
				return
			}
		}
	}
}

// FromIterator wraps a one-shot iterator as a Sequence, caching
// elements as they are first consumed so the sequence can be iterated
// repeatedly.
func FromIterator[T any](src iter.Seq[T]) Sequence[T] {
	it := &iteratorList[T]{}
	it.next, it.stop = iter.Pull(src)
	return it
}

type iteratorList[T any] struct {
	cache []T
	next  func() (T, bool)
	stop  func()
	done  bool
}

// consumeTo extends the cache through index i, or to the end when i is
// negative.
func (l *iteratorList[T]) consumeTo(i int) {
	for !l.done && (i < 0 || len(l.cache) <= i) {
		v, ok := l.next()
		if !ok {
			l.done = true
			l.stop()
			return
		}
		l.cache = append(l.cache, v)
	}
}

func (l *iteratorList[T]) Len() int {
	l.consumeTo(-1)
	return len(l.cache)
}

func (l *iteratorList[T]) IterateFrom(start int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := max(start, 0); ; i++ {
			l.consumeTo(i)
			if i >= len(l.cache) {
				return
			}
			if !yield(l.cache[i]) {
				return
			}
		}
	}
}
