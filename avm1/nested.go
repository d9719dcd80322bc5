package avm1

import "fmt"

// ---------------------------------------------------------------------------
// Nested bodies
// ---------------------------------------------------------------------------

// trailingBody takes the next n bytes of the enclosing stream, right after
// the payload, and counts them toward the action's size.
func (p *payload) trailingBody(n int) (*Reader, error) {
	r, err := p.parent.Sub(n)
	if err != nil {
		return nil, err
	}
	p.trailing += n
	return r, nil
}

// bodies returns a reader over n bytes of nested bodies. Authoring tools
// write Try and With bodies after the payload; some encoders append them to
// the payload instead, which is accepted when the rest of the payload holds
// all n bytes.
func (p *payload) bodies(n int) (*Reader, error) {
	if p.Remaining() >= n {
		return p.Sub(n)
	}
	return p.trailingBody(n)
}

// nested decodes a complete action list from r one level deeper. Its
// branches resolve within r only.
func (p *payload) nested(r *Reader) ([]Action, error) {
	actions, _, err := p.dec.readList(r, p.depth+1)
	return actions, err
}

// functionBody reads the body length that ends a function definition's
// payload and decodes the body that follows the payload.
func (p *payload) functionBody() ([]Action, error) {
	n, err := p.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("body length: %w", err)
	}
	r, err := p.trailingBody(int(n))
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	body, err := p.nested(r)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return body, nil
}

func decodeTry(p *payload) (Action, error) {
	flags, err := p.ReadU8()
	if err != nil {
		return nil, fmt.Errorf("flags: %w", err)
	}
	var sizes [3]uint16
	for i := range sizes {
		if sizes[i], err = p.ReadU16(); err != nil {
			return nil, fmt.Errorf("block sizes: %w", err)
		}
	}

	var catchVar CatchVar
	if flags&tryCatchInName != 0 {
		name, err := p.ReadString()
		if err != nil {
			return nil, fmt.Errorf("catch name: %w", err)
		}
		catchVar = NamedVariable(name)
	} else {
		reg, err := p.ReadU8()
		if err != nil {
			return nil, fmt.Errorf("catch register: %w", err)
		}
		catchVar = RegisterVariable(reg)
	}

	src, err := p.bodies(int(sizes[0]) + int(sizes[1]) + int(sizes[2]))
	if err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	var lists [3][]Action
	for i, what := range [3]string{"try", "catch", "finally"} {
		r, err := src.Sub(int(sizes[i]))
		if err != nil {
			return nil, fmt.Errorf("%s block: %w", what, err)
		}
		if lists[i], err = p.nested(r); err != nil {
			return nil, fmt.Errorf("%s block: %w", what, err)
		}
	}

	block := TryBlock{Body: lists[0]}
	if flags&tryHasCatch != 0 {
		block.Catch = &Catch{Var: catchVar, Body: lists[1]}
	}
	if flags&tryHasFinally != 0 {
		block.Finally = &Finally{Body: lists[2]}
	}
	return Try{TryBlock: block}, nil
}

func decodeWith(p *payload) (Action, error) {
	n, err := p.ReadU16()
	if err != nil {
		return nil, fmt.Errorf("body length: %w", err)
	}
	r, err := p.bodies(int(n))
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	body, err := p.nested(r)
	if err != nil {
		return nil, fmt.Errorf("body: %w", err)
	}
	return With{Body: body}, nil
}
