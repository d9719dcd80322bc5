package avm1

import "fmt"

// Opcode identifies an action. Opcodes at or above LengthThreshold are
// followed by a u16 payload length.
type Opcode byte

// LengthThreshold is the first opcode that carries a payload length field.
const LengthThreshold Opcode = 0x80

const (
	// ========================================================================
	// SWF 3: timeline control (0x00-0x09)
	// ========================================================================

	OpEnd           Opcode = 0x00
	OpNextFrame     Opcode = 0x04
	OpPreviousFrame Opcode = 0x05
	OpPlay          Opcode = 0x06
	OpStop          Opcode = 0x07
	OpToggleQuality Opcode = 0x08
	OpStopSounds    Opcode = 0x09

	// ========================================================================
	// SWF 4: arithmetic, logic and strings (0x0A-0x37)
	// ========================================================================

	OpAdd             Opcode = 0x0A
	OpSubtract        Opcode = 0x0B
	OpMultiply        Opcode = 0x0C
	OpDivide          Opcode = 0x0D
	OpEquals          Opcode = 0x0E
	OpLess            Opcode = 0x0F
	OpAnd             Opcode = 0x10
	OpOr              Opcode = 0x11
	OpNot             Opcode = 0x12
	OpStringEquals    Opcode = 0x13
	OpStringLength    Opcode = 0x14
	OpStringExtract   Opcode = 0x15
	OpPop             Opcode = 0x17
	OpToInteger       Opcode = 0x18
	OpGetVariable     Opcode = 0x1C
	OpSetVariable     Opcode = 0x1D
	OpSetTarget2      Opcode = 0x20
	OpStringAdd       Opcode = 0x21
	OpGetProperty     Opcode = 0x22
	OpSetProperty     Opcode = 0x23
	OpCloneSprite     Opcode = 0x24
	OpRemoveSprite    Opcode = 0x25
	OpTrace           Opcode = 0x26
	OpStartDrag       Opcode = 0x27
	OpEndDrag         Opcode = 0x28
	OpStringLess      Opcode = 0x29
	OpThrow           Opcode = 0x2A
	OpCastOp          Opcode = 0x2B
	OpImplementsOp    Opcode = 0x2C
	OpRandomNumber    Opcode = 0x30
	OpMBStringLength  Opcode = 0x31
	OpCharToAscii     Opcode = 0x32
	OpAsciiToChar     Opcode = 0x33
	OpGetTime         Opcode = 0x34
	OpMBStringExtract Opcode = 0x35
	OpMBCharToAscii   Opcode = 0x36
	OpMBAsciiToChar   Opcode = 0x37

	// ========================================================================
	// SWF 5+: objects, functions and bitwise ops (0x3A-0x69)
	// ========================================================================

	OpDelete        Opcode = 0x3A
	OpDelete2       Opcode = 0x3B
	OpDefineLocal   Opcode = 0x3C
	OpCallFunction  Opcode = 0x3D
	OpReturn        Opcode = 0x3E
	OpModulo        Opcode = 0x3F
	OpNewObject     Opcode = 0x40
	OpDefineLocal2  Opcode = 0x41
	OpInitArray     Opcode = 0x42
	OpInitObject    Opcode = 0x43
	OpTypeOf        Opcode = 0x44
	OpTargetPath    Opcode = 0x45
	OpEnumerate     Opcode = 0x46
	OpAdd2          Opcode = 0x47
	OpLess2         Opcode = 0x48
	OpEquals2       Opcode = 0x49
	OpToNumber      Opcode = 0x4A
	OpToString      Opcode = 0x4B
	OpPushDuplicate Opcode = 0x4C
	OpStackSwap     Opcode = 0x4D
	OpGetMember     Opcode = 0x4E
	OpSetMember     Opcode = 0x4F
	OpIncrement     Opcode = 0x50
	OpDecrement     Opcode = 0x51
	OpCallMethod    Opcode = 0x52
	OpNewMethod     Opcode = 0x53
	OpInstanceOf    Opcode = 0x54
	OpEnumerate2    Opcode = 0x55
	OpBitAnd        Opcode = 0x60
	OpBitOr         Opcode = 0x61
	OpBitXor        Opcode = 0x62
	OpBitLShift     Opcode = 0x63
	OpBitRShift     Opcode = 0x64
	OpBitURShift    Opcode = 0x65
	OpStrictEquals  Opcode = 0x66
	OpGreater       Opcode = 0x67
	OpStringGreater Opcode = 0x68
	OpExtends       Opcode = 0x69

	// ========================================================================
	// Length-prefixed actions (0x80-0xFF)
	// ========================================================================

	OpGotoFrame       Opcode = 0x81 // frame:u16
	OpGetURL          Opcode = 0x83 // url:str target:str
	OpStoreRegister   Opcode = 0x87 // register:u8
	OpConstantPool    Opcode = 0x88 // count:u16 str*
	OpWaitForFrame    Opcode = 0x8A // frame:u16 skip:u8
	OpSetTarget       Opcode = 0x8B // target:str
	OpGotoLabel       Opcode = 0x8C // label:str
	OpWaitForFrame2   Opcode = 0x8D // skip:u8
	OpDefineFunction2 Opcode = 0x8E // name params registers flags body
	OpTry             Opcode = 0x8F // flags sizes catch-binding bodies
	OpWith            Opcode = 0x94 // size:u16 body
	OpPush            Opcode = 0x96 // (tag value)*
	OpJump            Opcode = 0x99 // offset:i16
	OpGetURL2         Opcode = 0x9A // flags:u8
	OpDefineFunction  Opcode = 0x9B // name params body
	OpIf              Opcode = 0x9D // offset:i16
	OpCall            Opcode = 0x9E // no operands despite the length field
	OpGotoFrame2      Opcode = 0x9F // flags:u8 [scene-bias:u16]
)

// opcodeNames holds the name of every opcode the decoder recognizes. An empty
// entry marks an unknown opcode.
var opcodeNames = [256]string{
	OpEnd:           "End",
	OpNextFrame:     "NextFrame",
	OpPreviousFrame: "PreviousFrame",
	OpPlay:          "Play",
	OpStop:          "Stop",
	OpToggleQuality: "ToggleQuality",
	OpStopSounds:    "StopSounds",

	OpAdd:             "Add",
	OpSubtract:        "Subtract",
	OpMultiply:        "Multiply",
	OpDivide:          "Divide",
	OpEquals:          "Equals",
	OpLess:            "Less",
	OpAnd:             "And",
	OpOr:              "Or",
	OpNot:             "Not",
	OpStringEquals:    "StringEquals",
	OpStringLength:    "StringLength",
	OpStringExtract:   "StringExtract",
	OpPop:             "Pop",
	OpToInteger:       "ToInteger",
	OpGetVariable:     "GetVariable",
	OpSetVariable:     "SetVariable",
	OpSetTarget2:      "SetTarget2",
	OpStringAdd:       "StringAdd",
	OpGetProperty:     "GetProperty",
	OpSetProperty:     "SetProperty",
	OpCloneSprite:     "CloneSprite",
	OpRemoveSprite:    "RemoveSprite",
	OpTrace:           "Trace",
	OpStartDrag:       "StartDrag",
	OpEndDrag:         "EndDrag",
	OpStringLess:      "StringLess",
	OpThrow:           "Throw",
	OpCastOp:          "CastOp",
	OpImplementsOp:    "ImplementsOp",
	OpRandomNumber:    "RandomNumber",
	OpMBStringLength:  "MBStringLength",
	OpCharToAscii:     "CharToAscii",
	OpAsciiToChar:     "AsciiToChar",
	OpGetTime:         "GetTime",
	OpMBStringExtract: "MBStringExtract",
	OpMBCharToAscii:   "MBCharToAscii",
	OpMBAsciiToChar:   "MBAsciiToChar",

	OpDelete:        "Delete",
	OpDelete2:       "Delete2",
	OpDefineLocal:   "DefineLocal",
	OpCallFunction:  "CallFunction",
	OpReturn:        "Return",
	OpModulo:        "Modulo",
	OpNewObject:     "NewObject",
	OpDefineLocal2:  "DefineLocal2",
	OpInitArray:     "InitArray",
	OpInitObject:    "InitObject",
	OpTypeOf:        "TypeOf",
	OpTargetPath:    "TargetPath",
	OpEnumerate:     "Enumerate",
	OpAdd2:          "Add2",
	OpLess2:         "Less2",
	OpEquals2:       "Equals2",
	OpToNumber:      "ToNumber",
	OpToString:      "ToString",
	OpPushDuplicate: "PushDuplicate",
	OpStackSwap:     "StackSwap",
	OpGetMember:     "GetMember",
	OpSetMember:     "SetMember",
	OpIncrement:     "Increment",
	OpDecrement:     "Decrement",
	OpCallMethod:    "CallMethod",
	OpNewMethod:     "NewMethod",
	OpInstanceOf:    "InstanceOf",
	OpEnumerate2:    "Enumerate2",
	OpBitAnd:        "BitAnd",
	OpBitOr:         "BitOr",
	OpBitXor:        "BitXor",
	OpBitLShift:     "BitLShift",
	OpBitRShift:     "BitRShift",
	OpBitURShift:    "BitURShift",
	OpStrictEquals:  "StrictEquals",
	OpGreater:       "Greater",
	OpStringGreater: "StringGreater",
	OpExtends:       "Extends",

	OpGotoFrame:       "GotoFrame",
	OpGetURL:          "GetURL",
	OpStoreRegister:   "StoreRegister",
	OpConstantPool:    "ConstantPool",
	OpWaitForFrame:    "WaitForFrame",
	OpSetTarget:       "SetTarget",
	OpGotoLabel:       "GotoLabel",
	OpWaitForFrame2:   "WaitForFrame2",
	OpDefineFunction2: "DefineFunction2",
	OpTry:             "Try",
	OpWith:            "With",
	OpPush:            "Push",
	OpJump:            "Jump",
	OpGetURL2:         "GetURL2",
	OpDefineFunction:  "DefineFunction",
	OpIf:              "If",
	OpCall:            "Call",
	OpGotoFrame2:      "GotoFrame2",
}

// decodeFunc decodes the operands of one action from its payload.
type decodeFunc func(p *payload) (Action, error)

// operandDecoders maps operand-carrying opcodes to their decode routine.
// Known opcodes without an entry decode to Simple.
var operandDecoders [256]decodeFunc

func init() {
	operandDecoders = [256]decodeFunc{
		OpGotoFrame:       decodeGotoFrame,
		OpGetURL:          decodeGetURL,
		OpStoreRegister:   decodeStoreRegister,
		OpConstantPool:    decodeConstantPool,
		OpWaitForFrame:    decodeWaitForFrame,
		OpSetTarget:       decodeSetTarget,
		OpGotoLabel:       decodeGotoLabel,
		OpWaitForFrame2:   decodeWaitForFrame2,
		OpDefineFunction2: decodeDefineFunction2,
		OpTry:             decodeTry,
		OpWith:            decodeWith,
		OpPush:            decodePush,
		OpJump:            decodeJump,
		OpGetURL2:         decodeGetURL2,
		OpDefineFunction:  decodeDefineFunction,
		OpIf:              decodeIf,
		OpGotoFrame2:      decodeGotoFrame2,
	}
}

// String returns the name of the opcode.
func (op Opcode) String() string {
	if name := opcodeNames[op]; name != "" {
		return name
	}
	return fmt.Sprintf("Unknown(0x%02X)", byte(op))
}

// Known reports whether the decoder recognizes op.
func (op Opcode) Known() bool {
	return opcodeNames[op] != ""
}

// HasLength reports whether op is followed by a payload length field.
func (op Opcode) HasLength() bool {
	return op >= LengthThreshold
}

// HasOperands reports whether op decodes operands from its payload.
func (op Opcode) HasOperands() bool {
	return operandDecoders[op] != nil
}

// IsBranch reports whether op carries a relative branch offset.
func (op Opcode) IsBranch() bool {
	return op == OpIf || op == OpJump
}

// AllOpcodes returns every recognized opcode in ascending order, including
// OpEnd.
func AllOpcodes() []Opcode {
	ops := make([]Opcode, 0, 128)
	for i, name := range opcodeNames {
		if name != "" {
			ops = append(ops, Opcode(i))
		}
	}
	return ops
}
