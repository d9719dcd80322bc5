package avm1

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// UTF8Version is the first SWF version whose strings are UTF-8. Older movies
// store strings in the author's locale encoding.
const UTF8Version = 6

// DefaultLegacyEncoding decodes strings of movies older than UTF8Version when
// no other encoding is configured.
var DefaultLegacyEncoding encoding.Encoding = charmap.Windows1252

// ---------------------------------------------------------------------------
// Reader: forward-only cursor over action bytes
// ---------------------------------------------------------------------------

// Reader reads the primitive fields of the action format from a byte slice.
// A failed read leaves the cursor where it was.
type Reader struct {
	data   []byte
	offset int

	version uint8
	legacy  encoding.Encoding
}

// NewReader creates a Reader over data for a movie of the given SWF version.
func NewReader(data []byte, version uint8) *Reader {
	return &Reader{data: data, version: version, legacy: DefaultLegacyEncoding}
}

// WithLegacyEncoding sets the encoding used for strings when the version is
// below UTF8Version. A nil encoding restores the default.
func (r *Reader) WithLegacyEncoding(enc encoding.Encoding) *Reader {
	if enc == nil {
		enc = DefaultLegacyEncoding
	}
	r.legacy = enc
	return r
}

// Version returns the SWF version strings are decoded for.
func (r *Reader) Version() uint8 {
	return r.version
}

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) need(n int, what string) error {
	if n < 0 || r.offset+n > len(r.data) {
		return fmt.Errorf("%w: %s needs %d bytes at offset %d, have %d",
			ErrUnexpectedEOF, what, n, r.offset, r.Remaining())
	}
	return nil
}

// ReadU8 reads one byte.
func (r *Reader) ReadU8() (uint8, error) {
	if err := r.need(1, "u8"); err != nil {
		return 0, err
	}
	v := r.data[r.offset]
	r.offset++
	return v, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if err := r.need(2, "u16"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(r.data[r.offset:])
	r.offset += 2
	return v, nil
}

// ReadI16 reads a little-endian int16.
func (r *Reader) ReadI16() (int16, error) {
	v, err := r.ReadU16()
	return int16(v), err
}

// ReadU32 reads a little-endian uint32.
func (r *Reader) ReadU32() (uint32, error) {
	if err := r.need(4, "u32"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(r.data[r.offset:])
	r.offset += 4
	return v, nil
}

// ReadI32 reads a little-endian int32.
func (r *Reader) ReadI32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadF32 reads a little-endian IEEE754 single.
func (r *Reader) ReadF32() (float32, error) {
	v, err := r.ReadU32()
	return math.Float32frombits(v), err
}

// ReadF64 reads a little-endian IEEE754 double.
func (r *Reader) ReadF64() (float64, error) {
	if err := r.need(8, "f64"); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(r.data[r.offset:])
	r.offset += 8
	return math.Float64frombits(v), nil
}

// ReadBytes returns the next n bytes. The result aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if err := r.need(n, fmt.Sprintf("bytes(%d)", n)); err != nil {
		return nil, err
	}
	b := r.data[r.offset : r.offset+n : r.offset+n]
	r.offset += n
	return b, nil
}

// ReadString reads a NUL-terminated string. Movies from SWF 6 on store UTF-8;
// older movies are decoded with the legacy encoding.
func (r *Reader) ReadString() (string, error) {
	end := bytes.IndexByte(r.data[r.offset:], 0)
	if end < 0 {
		return "", fmt.Errorf("%w: unterminated string at offset %d", ErrUnexpectedEOF, r.offset)
	}
	raw := r.data[r.offset : r.offset+end]
	if r.version < UTF8Version {
		decoded, err := r.legacy.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: string at offset %d: %v", ErrMalformed, r.offset, err)
		}
		raw = decoded
	}
	r.offset += end + 1
	return string(raw), nil
}

// Sub returns a Reader limited to exactly the next n bytes and advances r
// past them. Reads through the returned Reader never see beyond that bound.
func (r *Reader) Sub(n int) (*Reader, error) {
	b, err := r.ReadBytes(n)
	if err != nil {
		return nil, err
	}
	return &Reader{data: b, version: r.version, legacy: r.legacy}, nil
}
