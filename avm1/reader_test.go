package avm1

import (
	"errors"
	"testing"

	"golang.org/x/text/encoding/japanese"
)

func TestReaderFixedWidth(t *testing.T) {
	data := cat(u8(0x7F), u16(0xBEEF), i16(-2), u32(0xDEADBEEF), f32(1.5), f64(-0.25))
	r := NewReader(data, 10)

	if v, err := r.ReadU8(); err != nil || v != 0x7F {
		t.Errorf("ReadU8 = %#x, %v", v, err)
	}
	if v, err := r.ReadU16(); err != nil || v != 0xBEEF {
		t.Errorf("ReadU16 = %#x, %v", v, err)
	}
	if v, err := r.ReadI16(); err != nil || v != -2 {
		t.Errorf("ReadI16 = %d, %v", v, err)
	}
	if v, err := r.ReadU32(); err != nil || v != 0xDEADBEEF {
		t.Errorf("ReadU32 = %#x, %v", v, err)
	}
	if v, err := r.ReadF32(); err != nil || v != 1.5 {
		t.Errorf("ReadF32 = %v, %v", v, err)
	}
	if v, err := r.ReadF64(); err != nil || v != -0.25 {
		t.Errorf("ReadF64 = %v, %v", v, err)
	}
	if r.Remaining() != 0 {
		t.Errorf("Remaining = %d, want 0", r.Remaining())
	}
	if r.Offset() != len(data) {
		t.Errorf("Offset = %d, want %d", r.Offset(), len(data))
	}
}

func TestReaderShortReadDoesNotAdvance(t *testing.T) {
	r := NewReader([]byte{1, 2, 3}, 10)

	if _, err := r.ReadU32(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("ReadU32 error = %v, want ErrUnexpectedEOF", err)
	}
	if r.Offset() != 0 {
		t.Errorf("Offset after failed read = %d, want 0", r.Offset())
	}
	if v, err := r.ReadU16(); err != nil || v != 0x0201 {
		t.Errorf("ReadU16 after failed read = %#x, %v", v, err)
	}
}

func TestReaderString(t *testing.T) {
	r := NewReader(cat(cstr("hello"), cstr(""), []byte("x")), 10)

	if s, err := r.ReadString(); err != nil || s != "hello" {
		t.Errorf("first string = %q, %v", s, err)
	}
	if s, err := r.ReadString(); err != nil || s != "" {
		t.Errorf("empty string = %q, %v", s, err)
	}
	if _, err := r.ReadString(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("unterminated string error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestReaderStringVersions(t *testing.T) {
	tests := []struct {
		name    string
		version uint8
		data    []byte
		want    string
	}{
		{"swf5 windows-1252", 5, []byte{'c', 'a', 'f', 0xE9, 0}, "café"},
		{"swf6 utf-8", 6, []byte{'c', 'a', 'f', 0xC3, 0xA9, 0}, "café"},
		{"swf10 utf-8", 10, cstr("日本"), "日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewReader(tt.data, tt.version).ReadString()
			if err != nil {
				t.Fatalf("ReadString: %v", err)
			}
			if s != tt.want {
				t.Errorf("ReadString = %q, want %q", s, tt.want)
			}
		})
	}
}

func TestReaderLegacyEncoding(t *testing.T) {
	// "ア" in Shift_JIS.
	r := NewReader([]byte{0x83, 0x41, 0}, 5).WithLegacyEncoding(japanese.ShiftJIS)
	s, err := r.ReadString()
	if err != nil {
		t.Fatalf("ReadString: %v", err)
	}
	if s != "ア" {
		t.Errorf("ReadString = %q, want %q", s, "ア")
	}
}

func TestReaderSub(t *testing.T) {
	r := NewReader([]byte{1, 2, 3, 4, 5}, 10)

	sub, err := r.Sub(3)
	if err != nil {
		t.Fatalf("Sub: %v", err)
	}
	if r.Offset() != 3 {
		t.Errorf("parent Offset = %d, want 3", r.Offset())
	}
	if sub.Remaining() != 3 {
		t.Errorf("sub Remaining = %d, want 3", sub.Remaining())
	}
	if _, err := sub.ReadU32(); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("read past sub bound error = %v, want ErrUnexpectedEOF", err)
	}
	if sub.Version() != r.Version() {
		t.Errorf("sub Version = %d, want %d", sub.Version(), r.Version())
	}

	if _, err := r.Sub(3); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("Sub beyond input error = %v, want ErrUnexpectedEOF", err)
	}
}
