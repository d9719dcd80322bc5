package avm1

// Action is one decoded AVM1 action.
type Action interface {
	Opcode() Opcode
}

// Simple is any action without operands: stack, arithmetic, comparison,
// string and movie clip primitives.
type Simple struct {
	Op Opcode
}

// ---------------------------------------------------------------------------
// Timeline and navigation
// ---------------------------------------------------------------------------

type GotoFrame struct {
	Frame uint16
}

// GotoFrame2 jumps to the frame on the stack, offset by SceneBias.
type GotoFrame2 struct {
	SetPlaying bool
	SceneBias  uint16
}

type GotoLabel struct {
	Label string
}

// WaitForFrame skips SkipCount actions unless Frame has loaded.
type WaitForFrame struct {
	Frame     uint16
	SkipCount uint8
}

// WaitForFrame2 is WaitForFrame with the frame taken from the stack.
type WaitForFrame2 struct {
	SkipCount uint8
}

type SetTarget struct {
	Target string
}

// ---------------------------------------------------------------------------
// Network
// ---------------------------------------------------------------------------

// SendVarsMethod selects how GetURL2 sends the timeline's variables.
type SendVarsMethod uint8

const (
	SendVarsNone SendVarsMethod = iota
	SendVarsGet
	SendVarsPost
)

func (m SendVarsMethod) String() string {
	switch m {
	case SendVarsNone:
		return "none"
	case SendVarsGet:
		return "GET"
	case SendVarsPost:
		return "POST"
	}
	return "invalid"
}

type GetURL struct {
	URL    string
	Target string
}

// GetURL2 loads the URL and target found on the stack.
type GetURL2 struct {
	Method        SendVarsMethod
	LoadTarget    bool // target names a sprite rather than a window
	LoadVariables bool // load variables instead of a movie or page
}

// ---------------------------------------------------------------------------
// Branches
// ---------------------------------------------------------------------------

// If pops a condition and branches when it is true. Offset is relative to
// the byte after the action; Target is the index of the action it lands on
// within the same list, or the list length when it falls past the end.
type If struct {
	Offset int16
	Target int
}

// Jump branches unconditionally. See If for the meaning of the fields.
type Jump struct {
	Offset int16
	Target int
}

// ---------------------------------------------------------------------------
// Data
// ---------------------------------------------------------------------------

type StoreRegister struct {
	Register uint8
}

// ConstantPool replaces the string table that ConstantIndex values refer to.
type ConstantPool struct {
	Strings []string
}

type Push struct {
	Values []Value
}

// Unknown preserves an action the decoder does not recognize.
type Unknown struct {
	Op   Opcode
	Data []byte
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// DefineFunction is the SWF 5 function definition. Parameters never bind
// registers and all flags are false.
type DefineFunction struct {
	Function
}

// DefineFunction2 is the SWF 7 function definition with register
// allocation and preload flags.
type DefineFunction2 struct {
	Function
}

type Try struct {
	TryBlock
}

// With runs Body with the object on the stack pushed onto the scope chain.
type With struct {
	Body []Action
}

func (a Simple) Opcode() Opcode { return a.Op }
func (GotoFrame) Opcode() Opcode { return OpGotoFrame }
func (GotoFrame2) Opcode() Opcode { return OpGotoFrame2 }
func (GotoLabel) Opcode() Opcode { return OpGotoLabel }
func (WaitForFrame) Opcode() Opcode { return OpWaitForFrame }
func (WaitForFrame2) Opcode() Opcode { return OpWaitForFrame2 }
func (SetTarget) Opcode() Opcode { return OpSetTarget }
func (GetURL) Opcode() Opcode { return OpGetURL }
func (GetURL2) Opcode() Opcode { return OpGetURL2 }
func (If) Opcode() Opcode { return OpIf }
func (Jump) Opcode() Opcode { return OpJump }
func (StoreRegister) Opcode() Opcode { return OpStoreRegister }
func (ConstantPool) Opcode() Opcode { return OpConstantPool }
func (Push) Opcode() Opcode { return OpPush }
func (a Unknown) Opcode() Opcode { return a.Op }
func (DefineFunction) Opcode() Opcode { return OpDefineFunction }
func (DefineFunction2) Opcode() Opcode { return OpDefineFunction2 }
func (Try) Opcode() Opcode { return OpTry }
func (With) Opcode() Opcode { return OpWith }
