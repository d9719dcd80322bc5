// Package listing converts decoded action lists to and from a flat,
// serializable form. A listing is encoded as canonical CBOR so that equal
// action lists always produce equal bytes and equal content hashes.
package listing

import (
	"errors"
	"fmt"
	"math"

	"github.com/chazu/swfaction/avm1"
)

// ErrInvalidNode is returned when a node cannot be turned back into an
// action.
var ErrInvalidNode = errors.New("listing: invalid node")

// Node is the serializable form of one action. Which fields are set depends
// on Op; nested bodies are stored in Bodies in the order the action defines
// them.
type Node struct {
	Op avm1.Opcode `cbor:"1,keyasint"`

	Frame    uint16   `cbor:"2,keyasint,omitempty"`  // frame number, scene bias
	Skip     uint8    `cbor:"3,keyasint,omitempty"`  // WaitForFrame skip count
	Flags    uint16   `cbor:"4,keyasint,omitempty"`  // raw flag bits
	Register uint8    `cbor:"5,keyasint,omitempty"`  // register, register count
	Offset   int16    `cbor:"6,keyasint,omitempty"`  // branch offset
	Target   int      `cbor:"7,keyasint,omitempty"`  // resolved branch target
	Strings  []string `cbor:"8,keyasint,omitempty"`  // names, labels, URLs, pool
	Values   []Value  `cbor:"9,keyasint,omitempty"`  // push operands
	Params   []Param  `cbor:"10,keyasint,omitempty"` // function parameters
	Data     []byte   `cbor:"11,keyasint,omitempty"` // unknown payload
	Bodies   [][]Node `cbor:"12,keyasint,omitempty"`
}

// Param is a function parameter.
type Param struct {
	Name     string `cbor:"1,keyasint"`
	Register uint8  `cbor:"2,keyasint,omitempty"`
}

// ValueType identifies the kind of a push operand.
type ValueType uint8

const (
	ValueString ValueType = iota
	ValueFloat
	ValueNull
	ValueUndefined
	ValueRegister
	ValueBool
	ValueDouble
	ValueInt
	ValueConstant
)

// Value is a push operand. Num holds integers directly and floating-point
// numbers as their IEEE 754 bits, so every value survives encoding exactly.
type Value struct {
	Type ValueType `cbor:"1,keyasint"`
	Str  string    `cbor:"2,keyasint,omitempty"`
	Num  uint64    `cbor:"3,keyasint,omitempty"`
}

// GotoFrame2, GetURL2 and Try flag bits as stored in Node.Flags.
const (
	gotoPlaying  uint16 = 1 << 0
	getURLVars   uint16 = 1 << 0
	getURLTarget uint16 = 1 << 1

	tryCatch   uint16 = 1 << 0
	tryFinally uint16 = 1 << 1
	tryInName  uint16 = 1 << 2
)

// getURLMethodShift is the position of the send vars method in GetURL2
// flags.
const getURLMethodShift = 6

// ---------------------------------------------------------------------------
// Actions to nodes
// ---------------------------------------------------------------------------

// FromActions converts an action list to nodes.
func FromActions(actions []avm1.Action) []Node {
	nodes := make([]Node, len(actions))
	for i, a := range actions {
		nodes[i] = fromAction(a)
	}
	return nodes
}

func fromAction(action avm1.Action) Node {
	n := Node{Op: action.Opcode()}
	switch a := action.(type) {
	case avm1.GotoFrame:
		n.Frame = a.Frame
	case avm1.GotoFrame2:
		n.Frame = a.SceneBias
		if a.SetPlaying {
			n.Flags = gotoPlaying
		}
	case avm1.GotoLabel:
		n.Strings = []string{a.Label}
	case avm1.WaitForFrame:
		n.Frame, n.Skip = a.Frame, a.SkipCount
	case avm1.WaitForFrame2:
		n.Skip = a.SkipCount
	case avm1.SetTarget:
		n.Strings = []string{a.Target}
	case avm1.GetURL:
		n.Strings = []string{a.URL, a.Target}
	case avm1.GetURL2:
		n.Flags = uint16(a.Method) << getURLMethodShift
		if a.LoadTarget {
			n.Flags |= getURLTarget
		}
		if a.LoadVariables {
			n.Flags |= getURLVars
		}
	case avm1.If:
		n.Offset, n.Target = a.Offset, a.Target
	case avm1.Jump:
		n.Offset, n.Target = a.Offset, a.Target
	case avm1.StoreRegister:
		n.Register = a.Register
	case avm1.ConstantPool:
		n.Strings = a.Strings
	case avm1.Push:
		n.Values = make([]Value, len(a.Values))
		for i, v := range a.Values {
			n.Values[i] = fromValue(v)
		}
	case avm1.DefineFunction:
		fromFunction(&n, &a.Function)
	case avm1.DefineFunction2:
		fromFunction(&n, &a.Function)
		n.Flags = a.Flags()
		n.Register = a.RegisterCount
	case avm1.Try:
		var catchBody, finallyBody []avm1.Action
		if a.Catch != nil {
			n.Flags |= tryCatch
			catchBody = a.Catch.Body
			if a.Catch.Var.InRegister {
				n.Register = a.Catch.Var.Register
			} else {
				n.Flags |= tryInName
				n.Strings = []string{a.Catch.Var.Name}
			}
		}
		if a.Finally != nil {
			n.Flags |= tryFinally
			finallyBody = a.Finally.Body
		}
		n.Bodies = [][]Node{FromActions(a.Body), FromActions(catchBody), FromActions(finallyBody)}
	case avm1.With:
		n.Bodies = [][]Node{FromActions(a.Body)}
	case avm1.Unknown:
		n.Data = a.Data
	}
	return n
}

func fromFunction(n *Node, f *avm1.Function) {
	n.Strings = []string{f.Name}
	n.Params = make([]Param, len(f.Params))
	for i, p := range f.Params {
		n.Params[i] = Param{Name: p.Name, Register: p.Register}
	}
	n.Bodies = [][]Node{FromActions(f.Body)}
}

func fromValue(v avm1.Value) Value {
	switch v := v.(type) {
	case avm1.String:
		return Value{Type: ValueString, Str: string(v)}
	case avm1.Float:
		return Value{Type: ValueFloat, Num: uint64(math.Float32bits(float32(v)))}
	case avm1.Null:
		return Value{Type: ValueNull}
	case avm1.Undefined:
		return Value{Type: ValueUndefined}
	case avm1.Register:
		return Value{Type: ValueRegister, Num: uint64(v)}
	case avm1.Bool:
		if v {
			return Value{Type: ValueBool, Num: 1}
		}
		return Value{Type: ValueBool}
	case avm1.Double:
		return Value{Type: ValueDouble, Num: math.Float64bits(float64(v))}
	case avm1.Int:
		return Value{Type: ValueInt, Num: uint64(uint32(v))}
	case avm1.ConstantIndex:
		return Value{Type: ValueConstant, Num: uint64(v)}
	}
	panic(fmt.Sprintf("listing: unhandled value %T", v))
}

// ---------------------------------------------------------------------------
// Nodes to actions
// ---------------------------------------------------------------------------

// ToActions converts nodes back to an action list. For any list produced by
// the decoder, ToActions(FromActions(actions)) equals actions.
func ToActions(nodes []Node) ([]avm1.Action, error) {
	actions := make([]avm1.Action, 0, len(nodes))
	for i := range nodes {
		a, err := toAction(&nodes[i])
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func toAction(n *Node) (avm1.Action, error) {
	switch n.Op {
	case avm1.OpEnd:
		return nil, fmt.Errorf("%w: End is not an action", ErrInvalidNode)
	case avm1.OpGotoFrame:
		return avm1.GotoFrame{Frame: n.Frame}, nil
	case avm1.OpGotoFrame2:
		return avm1.GotoFrame2{SetPlaying: n.Flags&gotoPlaying != 0, SceneBias: n.Frame}, nil
	case avm1.OpGotoLabel:
		s, err := n.str(0)
		return avm1.GotoLabel{Label: s}, err
	case avm1.OpWaitForFrame:
		return avm1.WaitForFrame{Frame: n.Frame, SkipCount: n.Skip}, nil
	case avm1.OpWaitForFrame2:
		return avm1.WaitForFrame2{SkipCount: n.Skip}, nil
	case avm1.OpSetTarget:
		s, err := n.str(0)
		return avm1.SetTarget{Target: s}, err
	case avm1.OpGetURL:
		if len(n.Strings) != 2 {
			return nil, fmt.Errorf("%w: GetURL needs 2 strings, has %d", ErrInvalidNode, len(n.Strings))
		}
		return avm1.GetURL{URL: n.Strings[0], Target: n.Strings[1]}, nil
	case avm1.OpGetURL2:
		method := avm1.SendVarsMethod(n.Flags >> getURLMethodShift)
		if method > avm1.SendVarsPost {
			return nil, fmt.Errorf("%w: send vars method %d", ErrInvalidNode, method)
		}
		return avm1.GetURL2{
			Method:        method,
			LoadTarget:    n.Flags&getURLTarget != 0,
			LoadVariables: n.Flags&getURLVars != 0,
		}, nil
	case avm1.OpIf:
		return avm1.If{Offset: n.Offset, Target: n.Target}, nil
	case avm1.OpJump:
		return avm1.Jump{Offset: n.Offset, Target: n.Target}, nil
	case avm1.OpStoreRegister:
		return avm1.StoreRegister{Register: n.Register}, nil
	case avm1.OpConstantPool:
		strs := make([]string, len(n.Strings))
		copy(strs, n.Strings)
		return avm1.ConstantPool{Strings: strs}, nil
	case avm1.OpPush:
		values := make([]avm1.Value, len(n.Values))
		for i, v := range n.Values {
			var err error
			if values[i], err = v.toValue(); err != nil {
				return nil, fmt.Errorf("value %d: %w", i, err)
			}
		}
		return avm1.Push{Values: values}, nil
	case avm1.OpDefineFunction:
		f, err := n.function()
		return avm1.DefineFunction{Function: f}, err
	case avm1.OpDefineFunction2:
		f, err := n.function()
		if err != nil {
			return nil, err
		}
		f.RegisterCount = n.Register
		return avm1.DefineFunction2{Function: f}, nil
	case avm1.OpTry:
		return n.try()
	case avm1.OpWith:
		bodies, err := n.bodies(1)
		if err != nil {
			return nil, err
		}
		return avm1.With{Body: bodies[0]}, nil
	}

	if !n.Op.Known() {
		var data []byte
		if len(n.Data) > 0 {
			data = append([]byte(nil), n.Data...)
		}
		return avm1.Unknown{Op: n.Op, Data: data}, nil
	}
	return avm1.Simple{Op: n.Op}, nil
}

func (n *Node) str(i int) (string, error) {
	if i >= len(n.Strings) {
		return "", fmt.Errorf("%w: %v has no string %d", ErrInvalidNode, n.Op, i)
	}
	return n.Strings[i], nil
}

func (n *Node) bodies(want int) ([][]avm1.Action, error) {
	if len(n.Bodies) != want {
		return nil, fmt.Errorf("%w: %v needs %d bodies, has %d", ErrInvalidNode, n.Op, want, len(n.Bodies))
	}
	out := make([][]avm1.Action, want)
	for i, body := range n.Bodies {
		actions, err := ToActions(body)
		if err != nil {
			return nil, fmt.Errorf("%v body %d: %w", n.Op, i, err)
		}
		out[i] = actions
	}
	return out, nil
}

func (n *Node) function() (avm1.Function, error) {
	name, err := n.str(0)
	if err != nil {
		return avm1.Function{}, err
	}
	bodies, err := n.bodies(1)
	if err != nil {
		return avm1.Function{}, err
	}
	f := avm1.Function{
		Name:   name,
		Params: make([]avm1.Param, len(n.Params)),
		Body:   bodies[0],
	}
	for i, p := range n.Params {
		f.Params[i] = avm1.Param{Name: p.Name, Register: p.Register}
	}
	if n.Op == avm1.OpDefineFunction2 {
		f.SetFlags(n.Flags)
	}
	return f, nil
}

func (n *Node) try() (avm1.Action, error) {
	bodies, err := n.bodies(3)
	if err != nil {
		return nil, err
	}
	block := avm1.TryBlock{Body: bodies[0]}
	if n.Flags&tryCatch != 0 {
		v := avm1.RegisterVariable(n.Register)
		if n.Flags&tryInName != 0 {
			name, err := n.str(0)
			if err != nil {
				return nil, err
			}
			v = avm1.NamedVariable(name)
		}
		block.Catch = &avm1.Catch{Var: v, Body: bodies[1]}
	}
	if n.Flags&tryFinally != 0 {
		block.Finally = &avm1.Finally{Body: bodies[2]}
	}
	return avm1.Try{TryBlock: block}, nil
}

func (v Value) toValue() (avm1.Value, error) {
	switch v.Type {
	case ValueString:
		return avm1.String(v.Str), nil
	case ValueFloat:
		return avm1.Float(math.Float32frombits(uint32(v.Num))), nil
	case ValueNull:
		return avm1.Null{}, nil
	case ValueUndefined:
		return avm1.Undefined{}, nil
	case ValueRegister:
		return avm1.Register(v.Num), nil
	case ValueBool:
		return avm1.Bool(v.Num != 0), nil
	case ValueDouble:
		return avm1.Double(math.Float64frombits(v.Num)), nil
	case ValueInt:
		return avm1.Int(int32(uint32(v.Num))), nil
	case ValueConstant:
		return avm1.ConstantIndex(v.Num), nil
	}
	return nil, fmt.Errorf("%w: value type %d", ErrInvalidNode, v.Type)
}
