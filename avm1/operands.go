package avm1

import "fmt"

// payload is the bounded view of one action's declared payload. Decode
// routines read operands through the embedded Reader; bodies stored after
// the payload are read from parent.
type payload struct {
	*Reader

	op     Opcode
	parent *Reader
	dec    *Decoder
	depth  int

	// trailing counts bytes taken from parent after the payload.
	trailing int
}

func decodeGotoFrame(p *payload) (Action, error) {
	frame, err := p.ReadU16()
	if err != nil {
		return nil, err
	}
	return GotoFrame{Frame: frame}, nil
}

func decodeGotoFrame2(p *payload) (Action, error) {
	flags, err := p.ReadU8()
	if err != nil {
		return nil, err
	}
	a := GotoFrame2{SetPlaying: flags&0b01 != 0}
	if flags&0b10 != 0 {
		if a.SceneBias, err = p.ReadU16(); err != nil {
			return nil, fmt.Errorf("scene bias: %w", err)
		}
	}
	return a, nil
}

func decodeGotoLabel(p *payload) (Action, error) {
	label, err := p.ReadString()
	if err != nil {
		return nil, err
	}
	return GotoLabel{Label: label}, nil
}

func decodeWaitForFrame(p *payload) (Action, error) {
	frame, err := p.ReadU16()
	if err != nil {
		return nil, err
	}
	skip, err := p.ReadU8()
	if err != nil {
		return nil, err
	}
	return WaitForFrame{Frame: frame, SkipCount: skip}, nil
}

func decodeWaitForFrame2(p *payload) (Action, error) {
	skip, err := p.ReadU8()
	if err != nil {
		return nil, err
	}
	return WaitForFrame2{SkipCount: skip}, nil
}

func decodeSetTarget(p *payload) (Action, error) {
	target, err := p.ReadString()
	if err != nil {
		return nil, err
	}
	return SetTarget{Target: target}, nil
}

func decodeGetURL(p *payload) (Action, error) {
	url, err := p.ReadString()
	if err != nil {
		return nil, fmt.Errorf("url: %w", err)
	}
	target, err := p.ReadString()
	if err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}
	return GetURL{URL: url, Target: target}, nil
}

func decodeGetURL2(p *payload) (Action, error) {
	flags, err := p.ReadU8()
	if err != nil {
		return nil, err
	}
	method := SendVarsMethod(flags >> 6)
	if method > SendVarsPost {
		return nil, fmt.Errorf("%w: send vars method %d", ErrMalformed, method)
	}
	return GetURL2{
		Method:        method,
		LoadTarget:    flags&0b10 != 0,
		LoadVariables: flags&0b01 != 0,
	}, nil
}

func decodeStoreRegister(p *payload) (Action, error) {
	reg, err := p.ReadU8()
	if err != nil {
		return nil, err
	}
	return StoreRegister{Register: reg}, nil
}

func decodeIf(p *payload) (Action, error) {
	offset, err := p.ReadI16()
	if err != nil {
		return nil, err
	}
	return If{Offset: offset}, nil
}

func decodeJump(p *payload) (Action, error) {
	offset, err := p.ReadI16()
	if err != nil {
		return nil, err
	}
	return Jump{Offset: offset}, nil
}

// ---------------------------------------------------------------------------
// Constant pool and push
// ---------------------------------------------------------------------------

func decodeConstantPool(p *payload) (Action, error) {
	count, err := p.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("count: %w", err)
	}
	// Every entry takes at least its terminator.
	if int(count) > p.Remaining() {
		return nil, fmt.Errorf("%w: %d constants in %d bytes", ErrUnexpectedEOF, count, p.Remaining())
	}
	strs := make([]string, count)
	for i := range strs {
		if strs[i], err = p.ReadString(); err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
	}
	return ConstantPool{Strings: strs}, nil
}

func decodePush(p *payload) (Action, error) {
	values := make([]Value, 0, 1)
	for v, err := range PushValues(p.Reader) {
		if err != nil {
			return nil, fmt.Errorf("value %d: %w", len(values), err)
		}
		values = append(values, v)
	}
	return Push{Values: values}, nil
}

// ---------------------------------------------------------------------------
// Function definitions
// ---------------------------------------------------------------------------

func decodeDefineFunction(p *payload) (Action, error) {
	name, err := p.ReadString()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	count, err := p.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("param count: %w", err)
	}
	fn := Function{Name: name, Params: make([]Param, 0, min(int(count), p.Remaining()))}
	for i := 0; i < int(count); i++ {
		param, err := p.ReadString()
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		fn.Params = append(fn.Params, Param{Name: param})
	}
	if fn.Body, err = p.functionBody(); err != nil {
		return nil, err
	}
	return DefineFunction{Function: fn}, nil
}

func decodeDefineFunction2(p *payload) (Action, error) {
	name, err := p.ReadString()
	if err != nil {
		return nil, fmt.Errorf("name: %w", err)
	}
	count, err := p.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("param count: %w", err)
	}
	registers, err := p.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("register count: %w", err)
	}
	flags, err := p.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}

	fn := Function{
		Name:          name,
		RegisterCount: registers,
		Params:        make([]Param, 0, min(int(count), p.Remaining())),
	}
	fn.SetFlags(flags)
	for i := 0; i < int(count); i++ {
		reg, err := p.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("param %d register: %w", i, err)
		}
		param, err := p.ReadString()
		if err != nil {
			return nil, fmt.Errorf("param %d: %w", i, err)
		}
		fn.Params = append(fn.Params, Param{Name: param, Register: reg})
	}
	if fn.Body, err = p.functionBody(); err != nil {
		return nil, err
	}
	return DefineFunction2{Function: fn}, nil
}
