package avm1

import (
	"bytes"
	"encoding/binary"
	"math"
)

// ---------------------------------------------------------------------------
// Test Helpers: building action streams
// ---------------------------------------------------------------------------

// actionBuilder assembles raw action bytes for tests.
type actionBuilder struct {
	buf bytes.Buffer
}

func newActionBuilder() *actionBuilder {
	return &actionBuilder{}
}

// op writes an action without a length field.
func (b *actionBuilder) op(op Opcode) *actionBuilder {
	b.buf.WriteByte(byte(op))
	return b
}

// record writes a length-prefixed action with the given payload.
func (b *actionBuilder) record(op Opcode, payload ...[]byte) *actionBuilder {
	p := cat(payload...)
	b.buf.WriteByte(byte(op))
	b.buf.Write(u16(uint16(len(p))))
	b.buf.Write(p)
	return b
}

// raw writes bytes verbatim, e.g. a body that follows a record.
func (b *actionBuilder) raw(data ...[]byte) *actionBuilder {
	b.buf.Write(cat(data...))
	return b
}

func (b *actionBuilder) end() *actionBuilder {
	return b.op(OpEnd)
}

func (b *actionBuilder) bytes() []byte {
	return bytes.Clone(b.buf.Bytes())
}

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func u8(v uint8) []byte { return []byte{v} }

func u16(v uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, v)
}

func i16(v int16) []byte { return u16(uint16(v)) }

func u32(v uint32) []byte {
	return binary.LittleEndian.AppendUint32(nil, v)
}

func f32(v float32) []byte { return u32(math.Float32bits(v)) }

func f64(v float64) []byte {
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(v))
}

// cstr encodes a NUL-terminated string.
func cstr(s string) []byte {
	return append([]byte(s), 0)
}

// decode decodes data as a SWF 10 action stream.
func decode(data []byte) ([]Action, error) {
	return Decode(data, 10)
}
