package ir

import (
	"fmt"
	"strings"
)

// ============================================================================
// IR 打印器
// ============================================================================

// String 返回整个模块的文本形式
func (m *Module) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("; module %s\n", m.Name))

	for _, g := range m.Globals {
		sb.WriteString(fmt.Sprintf("global @%s : %s\n", g.Sym, g.Elem))
	}
	for _, e := range m.Externs {
		attr := ""
		if e.NoReturn {
			attr = " noreturn"
		}
		sb.WriteString(fmt.Sprintf("declare @%s : %s%s\n", e.Sym, e.Sig, attr))
	}
	for _, f := range m.Funcs {
		sb.WriteString("\n")
		sb.WriteString(f.String())
	}
	return sb.String()
}

// String 返回函数的文本形式
func (f *Func) String() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("func @%s(", f.Name))
	for i, p := range f.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s %s", p.Ty, p.Name()))
	}
	sb.WriteString(fmt.Sprintf(") -> %s {\n", f.Sig.Return))

	for _, b := range f.Blocks {
		sb.WriteString(b.Label)
		sb.WriteString(":\n")
		for _, inst := range b.Instrs {
			sb.WriteString("  ")
			sb.WriteString(inst.String())
			sb.WriteString("\n")
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// String 返回指令的文本形式
func (inst *Instr) String() string {
	var sb strings.Builder

	if inst.id >= 0 {
		sb.WriteString(inst.Name())
		sb.WriteString(" = ")
	}

	switch inst.Op {
	case OpICmp:
		sb.WriteString(fmt.Sprintf("icmp %s %s, %s", inst.Pred, arg(inst, 0), arg(inst, 1)))
	case OpAlloca:
		sb.WriteString(fmt.Sprintf("alloca %s", inst.Elem))
	case OpLoad:
		sb.WriteString(fmt.Sprintf("load %s, %s", inst.Ty, arg(inst, 0)))
	case OpStore:
		sb.WriteString(fmt.Sprintf("store %s, %s", arg(inst, 0), arg(inst, 1)))
	case OpSlotAddr:
		sb.WriteString(fmt.Sprintf("slotaddr %s, slot=%d", arg(inst, 0), inst.Slot))
	case OpBitcast:
		sb.WriteString(fmt.Sprintf("bitcast %s to %s", arg(inst, 0), inst.Ty))
	case OpCall:
		sb.WriteString(fmt.Sprintf("call %s(", inst.Callee.Name()))
		for i, a := range inst.Args {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Name())
		}
		sb.WriteString(")")
		if inst.Unwind != nil {
			sb.WriteString(" unwind " + inst.Unwind.Label)
		}
	case OpLandingPad:
		sb.WriteString("landingpad")
	case OpBr:
		sb.WriteString("br " + inst.Targets[0].Label)
	case OpCondBr:
		sb.WriteString(fmt.Sprintf("condbr %s, %s, %s",
			arg(inst, 0), inst.Targets[0].Label, inst.Targets[1].Label))
	case OpRet:
		if len(inst.Args) == 0 {
			sb.WriteString("ret void")
		} else {
			sb.WriteString("ret " + arg(inst, 0))
		}
	case OpUnreachable:
		sb.WriteString("unreachable")
	default:
		sb.WriteString(inst.Op.String())
		for i := range inst.Args {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(" " + arg(inst, i))
		}
	}

	return sb.String()
}

func arg(inst *Instr, i int) string {
	if i >= len(inst.Args) || inst.Args[i] == nil {
		return "<nil>"
	}
	return inst.Args[i].Name()
}
