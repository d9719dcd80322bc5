package avm1

// DefineFunction2 flag bits.
const (
	flagPreloadThis       uint16 = 1 << 0
	flagSuppressThis      uint16 = 1 << 1
	flagPreloadArguments  uint16 = 1 << 2
	flagSuppressArguments uint16 = 1 << 3
	flagPreloadSuper      uint16 = 1 << 4
	flagSuppressSuper     uint16 = 1 << 5
	flagPreloadRoot       uint16 = 1 << 6
	flagPreloadParent     uint16 = 1 << 7
	flagPreloadGlobal     uint16 = 1 << 8
)

// Function describes a function defined by DefineFunction or
// DefineFunction2.
type Function struct {
	Name          string
	Params        []Param
	RegisterCount uint8

	// Preload flags copy an implicit binding into the next free register
	// when the function is called; suppress flags skip creating it.
	PreloadThis       bool
	SuppressThis      bool
	PreloadArguments  bool
	SuppressArguments bool
	PreloadSuper      bool
	SuppressSuper     bool
	PreloadRoot       bool
	PreloadParent     bool
	PreloadGlobal     bool

	Body []Action
}

// Param is a function parameter. Register is the register the argument is
// stored in, or 0 when it is bound by name only.
type Param struct {
	Name     string
	Register uint8
}

// Flags returns the DefineFunction2 flag word for f.
func (f *Function) Flags() uint16 {
	var flags uint16
	set := func(on bool, bit uint16) {
		if on {
			flags |= bit
		}
	}
	set(f.PreloadThis, flagPreloadThis)
	set(f.SuppressThis, flagSuppressThis)
	set(f.PreloadArguments, flagPreloadArguments)
	set(f.SuppressArguments, flagSuppressArguments)
	set(f.PreloadSuper, flagPreloadSuper)
	set(f.SuppressSuper, flagSuppressSuper)
	set(f.PreloadRoot, flagPreloadRoot)
	set(f.PreloadParent, flagPreloadParent)
	set(f.PreloadGlobal, flagPreloadGlobal)
	return flags
}

// SetFlags sets the preload and suppress fields from a DefineFunction2 flag
// word. Reserved bits are ignored.
func (f *Function) SetFlags(flags uint16) {
	f.PreloadThis = flags&flagPreloadThis != 0
	f.SuppressThis = flags&flagSuppressThis != 0
	f.PreloadArguments = flags&flagPreloadArguments != 0
	f.SuppressArguments = flags&flagSuppressArguments != 0
	f.PreloadSuper = flags&flagPreloadSuper != 0
	f.SuppressSuper = flags&flagSuppressSuper != 0
	f.PreloadRoot = flags&flagPreloadRoot != 0
	f.PreloadParent = flags&flagPreloadParent != 0
	f.PreloadGlobal = flags&flagPreloadGlobal != 0
}

// ---------------------------------------------------------------------------
// Exception handling
// ---------------------------------------------------------------------------

// Try flag bits.
const (
	tryHasCatch    uint8 = 1 << 0
	tryHasFinally  uint8 = 1 << 1
	tryCatchInName uint8 = 1 << 2
)

// TryBlock is the body of a Try action. Catch and Finally are nil when the
// corresponding flag is clear.
type TryBlock struct {
	Body    []Action
	Catch   *Catch
	Finally *Finally
}

type Catch struct {
	Var  CatchVar
	Body []Action
}

type Finally struct {
	Body []Action
}

// CatchVar is where a caught exception is stored: a named variable, or a
// register when InRegister is set.
type CatchVar struct {
	Name       string
	Register   uint8
	InRegister bool
}

// NamedVariable returns a CatchVar binding the exception to name.
func NamedVariable(name string) CatchVar {
	return CatchVar{Name: name}
}

// RegisterVariable returns a CatchVar storing the exception in reg.
func RegisterVariable(reg uint8) CatchVar {
	return CatchVar{Register: reg, InRegister: true}
}

func (v CatchVar) String() string {
	if v.InRegister {
		return Register(v.Register).String()
	}
	return v.Name
}
