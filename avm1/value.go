package avm1

import (
	"fmt"
	"iter"
	"strconv"
)

// Push operand type tags.
const (
	tagString        byte = 0
	tagFloat         byte = 1
	tagNull          byte = 2
	tagUndefined     byte = 3
	tagRegister      byte = 4
	tagBool          byte = 5
	tagDouble        byte = 6
	tagInt           byte = 7
	tagConstantPool8 byte = 8
	tagConstantPool  byte = 9
)

// Value is one operand of a Push action.
type Value interface {
	fmt.Stringer
	isValue()
}

type (
	// String is a literal string.
	String string
	// Float is a 32-bit float.
	Float float32
	// Null is the null value.
	Null struct{}
	// Undefined is the undefined value.
	Undefined struct{}
	// Register pushes the contents of a register.
	Register uint8
	// Bool is a boolean.
	Bool bool
	// Double is a 64-bit float.
	Double float64
	// Int is a 32-bit integer.
	Int int32
	// ConstantIndex refers to an entry of the most recent ConstantPool. The
	// 8-bit and 16-bit encodings both decode to it.
	ConstantIndex uint16
)

func (String) isValue() {}
func (Float) isValue() {}
func (Null) isValue() {}
func (Undefined) isValue() {}
func (Register) isValue() {}
func (Bool) isValue() {}
func (Double) isValue() {}
func (Int) isValue() {}
func (ConstantIndex) isValue() {}

func (v String) String() string { return strconv.Quote(string(v)) }
func (v Float) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 32) + "f" }
func (Null) String() string { return "null" }
func (Undefined) String() string { return "undefined" }
func (v Register) String() string { return fmt.Sprintf("r%d", uint8(v)) }
func (v Bool) String() string { return strconv.FormatBool(bool(v)) }
func (v Double) String() string { return strconv.FormatFloat(float64(v), 'g', -1, 64) }
func (v Int) String() string { return strconv.FormatInt(int64(v), 10) }
func (v ConstantIndex) String() string { return fmt.Sprintf("c%d", uint16(v)) }

// readValue reads one tagged push operand.
func readValue(r *Reader) (Value, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case tagString:
		s, err := r.ReadString()
		return String(s), err
	case tagFloat:
		f, err := r.ReadF32()
		return Float(f), err
	case tagNull:
		return Null{}, nil
	case tagUndefined:
		return Undefined{}, nil
	case tagRegister:
		reg, err := r.ReadU8()
		return Register(reg), err
	case tagBool:
		b, err := r.ReadU8()
		return Bool(b != 0), err
	case tagDouble:
		d, err := r.ReadF64()
		return Double(d), err
	case tagInt:
		i, err := r.ReadI32()
		return Int(i), err
	case tagConstantPool8:
		idx, err := r.ReadU8()
		return ConstantIndex(idx), err
	case tagConstantPool:
		idx, err := r.ReadU16()
		return ConstantIndex(idx), err
	default:
		return nil, fmt.Errorf("%w: push value type %d", ErrMalformed, tag)
	}
}

// PushValues iterates over the operands of a Push payload. Iteration ends
// cleanly when the payload is exhausted; a truncated or mistyped operand is
// yielded as an error and ends the sequence.
func PushValues(r *Reader) iter.Seq2[Value, error] {
	return func(yield func(Value, error) bool) {
		for r.Remaining() > 0 {
			v, err := readValue(r)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(v, nil) {
				return
			}
		}
	}
}
