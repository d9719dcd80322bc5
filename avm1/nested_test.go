package avm1

import (
	"errors"
	"reflect"
	"testing"
)

func TestDecodeDefineFunction(t *testing.T) {
	body := newActionBuilder().record(OpPush, u8(tagRegister), u8(1)).op(OpReturn).bytes()
	data := newActionBuilder().
		record(OpDefineFunction, cstr("add"), u16(2), cstr("a"), cstr("b"), u16(uint16(len(body)))).
		raw(body).
		op(OpStop).
		bytes()

	d := NewDecoder(Options{Version: 10})
	actions, positions, err := d.ReadActionsWithPositions(d.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []Action{
		DefineFunction{Function: Function{
			Name:   "add",
			Params: []Param{{Name: "a"}, {Name: "b"}},
			Body: []Action{
				Push{Values: []Value{Register(1)}},
				Simple{Op: OpReturn},
			},
		}},
		Simple{Op: OpStop},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("actions = %#v, want %#v", actions, want)
	}
	if positions[1] != len(data)-1 {
		t.Errorf("DefineFunction size = %d, want %d", positions[1], len(data)-1)
	}
}

func TestDecodeDefineFunction2(t *testing.T) {
	data := newActionBuilder().
		record(OpDefineFunction2,
			cstr("f"), u16(2), u8(4), u16(0x0100),
			u8(1), cstr("x"),
			u8(0), cstr("y"),
			u16(1)).
		op(OpPlay).
		bytes()

	actions, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(actions) != 1 {
		t.Fatalf("got %d actions, want 1", len(actions))
	}
	fn := actions[0].(DefineFunction2).Function

	want := Function{
		Name:          "f",
		Params:        []Param{{Name: "x", Register: 1}, {Name: "y"}},
		RegisterCount: 4,
		PreloadGlobal: true,
		Body:          []Action{Simple{Op: OpPlay}},
	}
	if !reflect.DeepEqual(fn, want) {
		t.Errorf("function = %#v, want %#v", fn, want)
	}
	if fn.Flags() != 0x0100 {
		t.Errorf("Flags() = %#04x, want 0x0100", fn.Flags())
	}
}

func TestFunctionFlags(t *testing.T) {
	for bit := 0; bit < 9; bit++ {
		var fn Function
		fn.SetFlags(1 << bit)
		if got := fn.Flags(); got != 1<<bit {
			t.Errorf("bit %d: Flags() = %#04x", bit, got)
		}
		if n := len(flagNames(&fn)); n != 1 {
			t.Errorf("bit %d: %d flags named, want 1", bit, n)
		}
	}

	var fn Function
	fn.SetFlags(0xFE00)
	if fn.Flags() != 0 {
		t.Errorf("reserved bits leaked into Flags() = %#04x", fn.Flags())
	}
}

func TestDecodeFunctionEmptyBody(t *testing.T) {
	actions, err := decode(newActionBuilder().record(OpDefineFunction, cstr(""), u16(0), u16(0)).bytes())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	fn := actions[0].(DefineFunction).Function
	if fn.Body == nil || len(fn.Body) != 0 {
		t.Errorf("Body = %#v, want empty non-nil list", fn.Body)
	}
	if fn.Name != "" {
		t.Errorf("Name = %q, want anonymous", fn.Name)
	}
}

func TestDecodeFunctionBodyPastInput(t *testing.T) {
	data := newActionBuilder().
		record(OpDefineFunction2, cstr("f"), u16(0), u8(0), u16(0), u16(100)).
		op(OpPlay).
		bytes()

	if _, err := decode(data); !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("error = %v, want ErrUnexpectedEOF", err)
	}
}

// ---------------------------------------------------------------------------
// Try
// ---------------------------------------------------------------------------

func TestDecodeTryInPayload(t *testing.T) {
	tryBody := newActionBuilder().op(OpPlay).bytes()
	catchBody := newActionBuilder().op(OpStop).op(OpPop).bytes()
	finallyBody := newActionBuilder().op(OpNextFrame).bytes()

	data := newActionBuilder().
		record(OpTry,
			u8(0b111),
			u16(uint16(len(tryBody))), u16(uint16(len(catchBody))), u16(uint16(len(finallyBody))),
			cstr("e"),
			tryBody, catchBody, finallyBody).
		op(OpStop).
		bytes()

	actions, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := []Action{
		Try{TryBlock: TryBlock{
			Body: []Action{Simple{Op: OpPlay}},
			Catch: &Catch{
				Var:  NamedVariable("e"),
				Body: []Action{Simple{Op: OpStop}, Simple{Op: OpPop}},
			},
			Finally: &Finally{Body: []Action{Simple{Op: OpNextFrame}}},
		}},
		Simple{Op: OpStop},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("actions = %#v, want %#v", actions, want)
	}
}

func TestDecodeTryAfterPayload(t *testing.T) {
	tryBody := newActionBuilder().op(OpPlay).record(OpJump, i16(-6)).bytes()
	catchBody := newActionBuilder().op(OpStop).bytes()

	data := newActionBuilder().
		record(OpTry,
			u8(0b001),
			u16(uint16(len(tryBody))), u16(uint16(len(catchBody))), u16(0),
			u8(2)).
		raw(tryBody, catchBody).
		op(OpStop).
		bytes()

	d := NewDecoder(Options{Version: 10})
	actions, positions, err := d.ReadActionsWithPositions(d.NewReader(data))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(actions) != 2 {
		t.Fatalf("got %d actions, want 2", len(actions))
	}

	try := actions[0].(Try)
	if try.Finally != nil {
		t.Errorf("Finally = %#v, want nil", try.Finally)
	}
	if try.Catch == nil || try.Catch.Var != RegisterVariable(2) {
		t.Fatalf("Catch = %#v, want register 2", try.Catch)
	}
	if !reflect.DeepEqual(try.Catch.Body, []Action{Simple{Op: OpStop}}) {
		t.Errorf("catch body = %v", try.Catch.Body)
	}
	if got := try.Body[1].(Jump).Target; got != 0 {
		t.Errorf("try body Jump target = %d, want 0", got)
	}

	// 3 header bytes, 8 payload bytes, then both blocks.
	if want := 3 + 8 + len(tryBody) + len(catchBody); positions[1] != want {
		t.Errorf("Try size = %d, want %d", positions[1], want)
	}
}

func TestDecodeTryFlagsClear(t *testing.T) {
	data := newActionBuilder().record(OpTry, u8(0), u16(0), u16(0), u16(0), u8(0)).bytes()

	actions, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	try := actions[0].(Try)
	if try.Catch != nil || try.Finally != nil {
		t.Errorf("Try = %#v, want no catch or finally", try)
	}
	if try.Body == nil || len(try.Body) != 0 {
		t.Errorf("Body = %#v, want empty non-nil list", try.Body)
	}
}

func TestCatchVarString(t *testing.T) {
	if s := NamedVariable("err").String(); s != "err" {
		t.Errorf("named = %q", s)
	}
	if s := RegisterVariable(3).String(); s != "r3" {
		t.Errorf("register = %q", s)
	}
}

// ---------------------------------------------------------------------------
// With
// ---------------------------------------------------------------------------

func TestDecodeWith(t *testing.T) {
	body := newActionBuilder().op(OpPlay).op(OpStop).bytes()
	want := []Action{
		With{Body: []Action{Simple{Op: OpPlay}, Simple{Op: OpStop}}},
		Simple{Op: OpPop},
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"after payload", newActionBuilder().
			record(OpWith, u16(uint16(len(body)))).
			raw(body).
			op(OpPop).
			bytes()},
		{"in payload", newActionBuilder().
			record(OpWith, u16(uint16(len(body))), body).
			op(OpPop).
			bytes()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(Options{Version: 10})
			actions, positions, err := d.ReadActionsWithPositions(d.NewReader(tt.data))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !reflect.DeepEqual(actions, want) {
				t.Errorf("actions = %v, want %v", actions, want)
			}
			if positions[1] != 3+2+len(body) {
				t.Errorf("With size = %d, want %d", positions[1], 3+2+len(body))
			}
		})
	}
}

func TestDecodeWithShortBody(t *testing.T) {
	// The declared body ends after Play; Stop belongs to the outer list.
	data := newActionBuilder().
		record(OpWith, u16(1)).
		op(OpPlay).
		op(OpStop).
		bytes()

	actions, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []Action{
		With{Body: []Action{Simple{Op: OpPlay}}},
		Simple{Op: OpStop},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("actions = %v, want %v", actions, want)
	}
}

func TestDecodeNestedBodyEndsAtEnd(t *testing.T) {
	// An End inside a body stops that body only.
	body := newActionBuilder().op(OpPlay).end().op(OpStop).bytes()
	data := newActionBuilder().
		record(OpWith, u16(uint16(len(body)))).
		raw(body).
		op(OpPop).
		bytes()

	actions, err := decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []Action{
		With{Body: []Action{Simple{Op: OpPlay}}},
		Simple{Op: OpPop},
	}
	if !reflect.DeepEqual(actions, want) {
		t.Errorf("actions = %v, want %v", actions, want)
	}
}
