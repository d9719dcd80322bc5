package avm1

import (
	"bytes"
	"fmt"

	"github.com/tliron/commonlog"
	"golang.org/x/text/encoding"
)

// DefaultMaxDepth bounds how deeply function, try and with bodies may nest.
const DefaultMaxDepth = 64

// Options configures a Decoder.
type Options struct {
	// Version is the SWF version of the movie the actions come from. It
	// selects how strings are decoded.
	Version uint8

	// MaxDepth limits nesting of action bodies. Zero means DefaultMaxDepth.
	MaxDepth int

	// LegacyEncoding decodes strings when Version is below UTF8Version. Nil
	// means DefaultLegacyEncoding.
	LegacyEncoding encoding.Encoding
}

// ---------------------------------------------------------------------------
// Decoder: action lists with branch resolution
// ---------------------------------------------------------------------------

// Decoder turns action bytes into Actions. A Decoder holds no per-call state
// and may be used from several goroutines.
type Decoder struct {
	opts Options
	log  commonlog.Logger
}

// NewDecoder creates a Decoder with the given options.
func NewDecoder(opts Options) *Decoder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.LegacyEncoding == nil {
		opts.LegacyEncoding = DefaultLegacyEncoding
	}
	return &Decoder{opts: opts, log: commonlog.GetLogger("avm1")}
}

// Decode decodes the action stream in data for a movie of the given version.
func Decode(data []byte, version uint8) ([]Action, error) {
	return NewDecoder(Options{Version: version}).Decode(data)
}

// Options returns the options the decoder was created with, defaults
// applied.
func (d *Decoder) Options() Options {
	return d.opts
}

// NewReader creates a Reader over data using the decoder's version and
// legacy encoding.
func (d *Decoder) NewReader(data []byte) *Reader {
	return NewReader(data, d.opts.Version).WithLegacyEncoding(d.opts.LegacyEncoding)
}

// Decode decodes one action stream.
func (d *Decoder) Decode(data []byte) ([]Action, error) {
	return d.ReadActions(d.NewReader(data))
}

// ReadActions decodes actions from r until an End action or the end of r,
// then resolves the branch targets of the list.
func (d *Decoder) ReadActions(r *Reader) ([]Action, error) {
	actions, _, err := d.readList(r, 0)
	return actions, err
}

// ReadActionsWithPositions is ReadActions that also returns the byte
// position of every action relative to the start of the list.
// positions[i] is where action i starts and positions[len(actions)] is the
// byte length of the list, excluding the End action if there was one.
func (d *Decoder) ReadActionsWithPositions(r *Reader) ([]Action, []int, error) {
	return d.readList(r, 0)
}

// ReadAction decodes a single action and returns it with the number of bytes
// it occupies. It returns a nil Action at the end of the list. Branch
// targets of the returned action are not resolved.
//
// The size is 1 for opcodes below 0x80 and 3 plus the payload length
// otherwise. DefineFunction and DefineFunction2 bodies, and Try and With
// bodies that follow the record instead of sitting in its payload, are
// added on top, so sizes always sum to the bytes consumed. An encoder that
// writes these actions back must emit the bodies after the record.
func (d *Decoder) ReadAction(r *Reader) (Action, int, error) {
	return d.readAction(r, 0)
}

func (d *Decoder) readList(r *Reader, depth int) ([]Action, []int, error) {
	if depth > d.opts.MaxDepth {
		return nil, nil, fmt.Errorf("%w: depth %d exceeds %d", ErrNestingTooDeep, depth, d.opts.MaxDepth)
	}

	actions := make([]Action, 0)
	positions := []int{0}
	for {
		pos := positions[len(positions)-1]
		action, size, err := d.readAction(r, depth)
		if err != nil {
			return nil, nil, fmt.Errorf("action %d at byte %d: %w", len(actions), pos, err)
		}
		if action == nil {
			break
		}
		actions = append(actions, action)
		positions = append(positions, pos+size)
	}

	debug := d.log.AllowLevel(commonlog.Debug)
	if debug {
		d.log.Debugf("depth %d: %d actions, positions %v", depth, len(actions), positions)
	}

	if err := d.resolveBranches(actions, positions, debug); err != nil {
		return nil, nil, err
	}
	return actions, positions, nil
}

// readAction decodes the action at the cursor. The size it returns covers
// the opcode, the length field, the payload and any body stored after the
// payload.
func (d *Decoder) readAction(r *Reader, depth int) (Action, int, error) {
	if r.Remaining() == 0 {
		return nil, 0, nil
	}
	b, err := r.ReadU8()
	if err != nil {
		return nil, 0, err
	}
	op := Opcode(b)
	if op == OpEnd {
		return nil, 1, nil
	}

	length := 0
	if op.HasLength() {
		n, err := r.ReadU16()
		if err != nil {
			return nil, 0, fmt.Errorf("%v length: %w", op, err)
		}
		length = int(n)
	}
	body, err := r.Sub(length)
	if err != nil {
		return nil, 0, fmt.Errorf("%v payload: %w", op, err)
	}

	p := &payload{Reader: body, op: op, parent: r, dec: d, depth: depth}
	var action Action
	switch decode := operandDecoders[op]; {
	case decode != nil:
		action, err = decode(p)
		if err != nil {
			return nil, 0, fmt.Errorf("%v: %w", op, err)
		}
	case op.Known():
		action = Simple{Op: op}
	default:
		var data []byte
		if length > 0 {
			data = bytes.Clone(body.data)
		}
		action = Unknown{Op: op, Data: data}
	}

	size := 1
	if op.HasLength() {
		size = 3 + length
	}
	return action, size + p.trailing, nil
}

// resolveBranches sets the Target of every If and Jump in actions from its
// Offset. positions holds the start of each action plus the end of the list.
func (d *Decoder) resolveBranches(actions []Action, positions []int, debug bool) error {
	index := make(map[int]int, len(positions))
	for i, pos := range positions {
		index[pos] = i
	}

	for i, action := range actions {
		var offset int16
		switch a := action.(type) {
		case If:
			offset = a.Offset
		case Jump:
			offset = a.Offset
		default:
			continue
		}

		pos := positions[i+1] + int(offset)
		target, ok := index[pos]
		if !ok {
			return &BranchError{Index: i, Offset: offset, Position: pos}
		}
		if debug {
			d.log.Debugf("action %d: offset %d -> byte %d -> action %d", i, offset, pos, target)
		}

		switch a := action.(type) {
		case If:
			a.Target = target
			actions[i] = a
		case Jump:
			a.Target = target
			actions[i] = a
		}
	}
	return nil
}
