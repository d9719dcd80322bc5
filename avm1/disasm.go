package avm1

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Disassemble returns a human-readable listing of actions.
func Disassemble(actions []Action) string {
	return DisassembleWithName("", actions)
}

// DisassembleWithName returns a human-readable listing with a name header.
// Each line starts with the action's index in its list; nested bodies are
// indented below the action that owns them.
func DisassembleWithName(name string, actions []Action) string {
	var sb strings.Builder
	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; %d actions\n", len(actions)))

	d := &disassembler{sb: &sb}
	d.list(actions, 0)
	return sb.String()
}

type disassembler struct {
	sb *strings.Builder

	// pool is the most recent constant pool, used to annotate ConstantIndex
	// operands.
	pool []string
}

func (d *disassembler) list(actions []Action, indent int) {
	pad := strings.Repeat("    ", indent)
	for i, action := range actions {
		line, comment := d.action(action)
		if comment != "" {
			d.sb.WriteString(fmt.Sprintf("%s%04d  %-40s ; %s\n", pad, i, line, comment))
		} else {
			d.sb.WriteString(fmt.Sprintf("%s%04d  %s\n", pad, i, line))
		}
		d.children(action, indent+1)
	}
	if len(actions) == 0 {
		d.sb.WriteString(pad + "      <empty>\n")
	}
}

func (d *disassembler) children(action Action, indent int) {
	pad := strings.Repeat("    ", indent)
	switch a := action.(type) {
	case DefineFunction:
		d.list(a.Body, indent)
	case DefineFunction2:
		d.list(a.Body, indent)
	case With:
		d.list(a.Body, indent)
	case Try:
		d.sb.WriteString(pad + "try:\n")
		d.list(a.Body, indent+1)
		if a.Catch != nil {
			d.sb.WriteString(fmt.Sprintf("%scatch %s:\n", pad, a.Catch.Var))
			d.list(a.Catch.Body, indent+1)
		}
		if a.Finally != nil {
			d.sb.WriteString(pad + "finally:\n")
			d.list(a.Finally.Body, indent+1)
		}
	}
}

// action formats one action and an optional trailing comment.
func (d *disassembler) action(action Action) (string, string) {
	op := action.Opcode()
	switch a := action.(type) {
	case Simple:
		return op.String(), ""

	case GotoFrame:
		return fmt.Sprintf("%v %d", op, a.Frame), ""
	case GotoFrame2:
		return fmt.Sprintf("%v playing=%t bias=%d", op, a.SetPlaying, a.SceneBias), ""
	case GotoLabel:
		return fmt.Sprintf("%v %q", op, a.Label), ""
	case WaitForFrame:
		return fmt.Sprintf("%v %d skip=%d", op, a.Frame, a.SkipCount), ""
	case WaitForFrame2:
		return fmt.Sprintf("%v skip=%d", op, a.SkipCount), ""
	case SetTarget:
		return fmt.Sprintf("%v %q", op, a.Target), ""

	case GetURL:
		return fmt.Sprintf("%v %q %q", op, a.URL, a.Target), ""
	case GetURL2:
		return fmt.Sprintf("%v method=%v target=%t vars=%t", op, a.Method, a.LoadTarget, a.LoadVariables), ""

	case If:
		return fmt.Sprintf("%v %+d (-> %04d)", op, a.Offset, a.Target), ""
	case Jump:
		return fmt.Sprintf("%v %+d (-> %04d)", op, a.Offset, a.Target), ""

	case StoreRegister:
		return fmt.Sprintf("%v r%d", op, a.Register), ""
	case ConstantPool:
		d.pool = a.Strings
		return fmt.Sprintf("%v [%d]", op, len(a.Strings)), quoteAll(a.Strings)
	case Push:
		return d.push(a)

	case DefineFunction:
		return fmt.Sprintf("%v %s", op, signature(&a.Function)), ""
	case DefineFunction2:
		line := fmt.Sprintf("%v %s registers=%d", op, signature(&a.Function), a.RegisterCount)
		return line, strings.Join(flagNames(&a.Function), " ")
	case Try:
		return op.String(), ""
	case With:
		return op.String(), ""

	case Unknown:
		return fmt.Sprintf("%v % X", op, a.Data), ""
	}
	return op.String(), ""
}

func (d *disassembler) push(a Push) (string, string) {
	parts := make([]string, len(a.Values))
	var notes []string
	for i, v := range a.Values {
		parts[i] = v.String()
		if idx, ok := v.(ConstantIndex); ok && int(idx) < len(d.pool) {
			notes = append(notes, fmt.Sprintf("%v=%q", idx, d.pool[idx]))
		}
	}
	return fmt.Sprintf("%v %s", OpPush, strings.Join(parts, ", ")), strings.Join(notes, " ")
}

func signature(f *Function) string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		if p.Register != 0 {
			params[i] = fmt.Sprintf("r%d:%s", p.Register, p.Name)
		} else {
			params[i] = p.Name
		}
	}
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s(%s)", name, strings.Join(params, ", "))
}

func flagNames(f *Function) []string {
	var names []string
	for _, flag := range []struct {
		on   bool
		name string
	}{
		{f.PreloadThis, "preload-this"},
		{f.SuppressThis, "suppress-this"},
		{f.PreloadArguments, "preload-arguments"},
		{f.SuppressArguments, "suppress-arguments"},
		{f.PreloadSuper, "preload-super"},
		{f.SuppressSuper, "suppress-super"},
		{f.PreloadRoot, "preload-root"},
		{f.PreloadParent, "preload-parent"},
		{f.PreloadGlobal, "preload-global"},
	} {
		if flag.on {
			names = append(names, flag.name)
		}
	}
	return names
}

func quoteAll(strs []string) string {
	quoted := make([]string, len(strs))
	for i, s := range strs {
		if len(s) > 40 {
			n := 37
			for n > 0 && !utf8.RuneStart(s[n]) {
				n--
			}
			s = s[:n] + "..."
		}
		quoted[i] = fmt.Sprintf("%q", s)
	}
	return strings.Join(quoted, " ")
}
