package resource

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Reader decodes a seekable byte stream into characters while keeping
// the mapping between characters and the underlying byte offsets. Tell
// reports the byte offset of the next character, so a position can be
// stored and restored with Seek even for variable-width encodings.
//
// The empty encoding name selects UTF-8 with byte-order-mark detection
// (a UTF-16 or UTF-8 BOM switches the decoder accordingly). Other names
// are resolved through the IANA character set registry. Undecodable
// input is replaced with U+FFFD.
type Reader struct {
	src     io.ReadSeeker
	encName string
	dec     *encoding.Decoder

	// pending holds bytes read from src but not yet decoded. nextOff is
	// the offset in src of pending[0].
	pending []byte
	nextOff int64
	eof     bool

	// decoded holds runes not yet returned; offs[i] is the byte offset
	// in src where decoded[i] begins.
	decoded []rune
	offs    []int64
	pos     int

	readBuf []byte
}

// NewReader wraps a seekable stream with a decoder for the named
// encoding. It fails with ErrUnknownEncoding when the name cannot be
// resolved.
func NewReader(src io.ReadSeeker, encName string) (*Reader, error) {
	dec, err := newDecoder(encName)
	if err != nil {
		return nil, err
	}
	return &Reader{
		src:     src,
		encName: encName,
		dec:     dec,
		readBuf: make([]byte, 4096),
	}, nil
}

func newDecoder(encName string) (*encoding.Decoder, error) {
	if encName == "" {
		return &encoding.Decoder{
			Transformer: unicode.BOMOverride(unicode.UTF8.NewDecoder()),
		}, nil
	}
	enc, err := ianaindex.IANA.Encoding(encName)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, encName)
	}
	return enc.NewDecoder(), nil
}

// Encoding returns the encoding name the reader was created with.
func (r *Reader) Encoding() string { return r.encName }

// ReadRune returns the next character.
func (r *Reader) ReadRune() (rune, error) {
	if err := r.fill(); err != nil {
		return 0, err
	}
	c := r.decoded[r.pos]
	r.pos++
	r.compact()
	return c, nil
}

// ReadString reads up to n characters, or the remainder of the stream
// when n is negative. At end of stream it returns what was read along
// with io.EOF; a non-empty result with io.EOF means the stream ended
// mid-request.
func (r *Reader) ReadString(n int) (string, error) {
	var b strings.Builder
	for n != 0 {
		c, err := r.ReadRune()
		if err == io.EOF {
			if b.Len() == 0 {
				return "", io.EOF
			}
			return b.String(), io.EOF
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteRune(c)
		if n > 0 {
			n--
		}
	}
	return b.String(), nil
}

// ReadLine reads up to and including the next newline. At end of stream
// it returns the final unterminated line with io.EOF, or "" and io.EOF
// when nothing remains.
func (r *Reader) ReadLine() (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadRune()
		if err == io.EOF {
			if b.Len() == 0 {
				return "", io.EOF
			}
			return b.String(), io.EOF
		}
		if err != nil {
			return b.String(), err
		}
		b.WriteRune(c)
		if c == '\n' {
			return b.String(), nil
		}
	}
}

// Tell returns the byte offset in the underlying stream of the next
// character to be returned.
func (r *Reader) Tell() int64 {
	if r.pos < len(r.decoded) {
		return r.offs[r.pos]
	}
	return r.nextOff
}

// Seek moves to an absolute byte offset. Only io.SeekStart and
// io.SeekEnd are supported; for relative moves use CharSeekForward,
// since a byte delta does not line up with character boundaries.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	if whence == io.SeekCurrent {
		return 0, ErrRelativeSeek
	}
	abs, err := r.src.Seek(offset, whence)
	if err != nil {
		return 0, err
	}
	dec, err := newDecoder(r.encName)
	if err != nil {
		return 0, err
	}
	r.dec = dec
	r.pending = r.pending[:0]
	r.decoded = r.decoded[:0]
	r.offs = r.offs[:0]
	r.pos = 0
	r.nextOff = abs
	r.eof = false
	return abs, nil
}

// CharSeekForward advances the stream by n characters. It fails with
// io.ErrUnexpectedEOF when the stream ends first.
func (r *Reader) CharSeekForward(n int) error {
	for range n {
		if _, err := r.ReadRune(); err != nil {
			if err == io.EOF {
				return io.ErrUnexpectedEOF
			}
			return err
		}
	}
	return nil
}

// Close closes the underlying stream when it is closable.
func (r *Reader) Close() error {
	if c, ok := r.src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// compact drops fully-consumed runes once the buffer drains.
func (r *Reader) compact() {
	if r.pos == len(r.decoded) {
		r.decoded = r.decoded[:0]
		r.offs = r.offs[:0]
		r.pos = 0
	}
}

// fill ensures at least one undelivered rune is buffered.
func (r *Reader) fill() error {
	for r.pos == len(r.decoded) {
		if len(r.pending) == 0 {
			if r.eof {
				return io.EOF
			}
			if err := r.readMore(); err != nil {
				return err
			}
			continue
		}
		if err := r.decodeStep(); err != nil {
			if err == errNeedMoreInput {
				if err := r.readMore(); err != nil {
					return err
				}
				continue
			}
			return err
		}
	}
	return nil
}

var errNeedMoreInput = fmt.Errorf("resource: need more input")

// decodeStep feeds the decoder the smallest prefix of pending bytes
// that makes progress, recording the byte offset each produced rune
// starts at. A step that consumes bytes without producing runes (a
// byte-order mark) just advances the offset.
func (r *Reader) decodeStep() error {
	var dst [64]byte
	for k := 1; k <= len(r.pending); k++ {
		atEOF := r.eof && k == len(r.pending)
		nDst, nSrc, err := r.dec.Transform(dst[:], r.pending[:k], atEOF)
		if nDst == 0 && nSrc == 0 {
			if err == transform.ErrShortSrc {
				continue
			}
			if err != nil {
				return fmt.Errorf("decode %q: %w", r.encName, err)
			}
			continue
		}
		start := r.nextOff
		r.nextOff += int64(nSrc)
		r.pending = r.pending[nSrc:]
		for i := 0; i < nDst; {
			c, size := utf8.DecodeRune(dst[i:nDst])
			r.decoded = append(r.decoded, c)
			if i == 0 {
				r.offs = append(r.offs, start)
			} else {
				// Extra runes from one source sequence carry no width.
				r.offs = append(r.offs, r.nextOff)
			}
			i += size
		}
		return nil
	}
	if r.eof {
		// Trailing bytes the decoder refuses even at stream end.
		r.nextOff += int64(len(r.pending))
		r.pending = r.pending[:0]
		r.decoded = append(r.decoded, utf8.RuneError)
		r.offs = append(r.offs, r.nextOff)
		return nil
	}
	return errNeedMoreInput
}

// readMore pulls the next chunk from the source.
func (r *Reader) readMore() error {
	n, err := r.src.Read(r.readBuf)
	if n > 0 {
		r.pending = append(r.pending, r.readBuf[:n]...)
	}
	if err == io.EOF {
		r.eof = true
		if n == 0 && len(r.pending) == 0 {
			return io.EOF
		}
		return nil
	}
	return err
}
