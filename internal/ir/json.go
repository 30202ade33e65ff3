package ir

import (
	"github.com/segmentio/encoding/json"
)

// ============================================================================
// IR 的 JSON 导出
// ============================================================================
//
// `lumen -emit json` 用的机器可读格式。结构刻意扁平：
// 值按名字引用，块按标签引用，方便外部工具做图分析。
//
// ============================================================================

type moduleJSON struct {
	Name    string       `json:"name"`
	Globals []globalJSON `json:"globals,omitempty"`
	Externs []externJSON `json:"externs,omitempty"`
	Funcs   []funcJSON   `json:"funcs"`
}

type globalJSON struct {
	Sym  string `json:"sym"`
	Type string `json:"type"`
}

type externJSON struct {
	Sym      string `json:"sym"`
	Sig      string `json:"sig"`
	NoReturn bool   `json:"noreturn,omitempty"`
}

type funcJSON struct {
	Name   string      `json:"name"`
	Params []paramJSON `json:"params,omitempty"`
	Return string      `json:"return"`
	Blocks []blockJSON `json:"blocks"`
}

type paramJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type blockJSON struct {
	Label  string      `json:"label"`
	Instrs []instrJSON `json:"instrs"`
	Succs  []string    `json:"succs,omitempty"`
}

type instrJSON struct {
	Result  string   `json:"result,omitempty"`
	Op      string   `json:"op"`
	Type    string   `json:"type,omitempty"`
	Args    []string `json:"args,omitempty"`
	Callee  string   `json:"callee,omitempty"`
	Unwind  string   `json:"unwind,omitempty"`
	Targets []string `json:"targets,omitempty"`
	Pred    string   `json:"pred,omitempty"`
	Slot    int      `json:"slot,omitempty"`
}

// MarshalJSON 序列化整个模块
func (m *Module) MarshalJSON() ([]byte, error) {
	out := moduleJSON{Name: m.Name}

	for _, g := range m.Globals {
		out.Globals = append(out.Globals, globalJSON{Sym: g.Sym, Type: g.Elem.String()})
	}
	for _, e := range m.Externs {
		out.Externs = append(out.Externs, externJSON{Sym: e.Sym, Sig: e.Sig.String(), NoReturn: e.NoReturn})
	}
	for _, f := range m.Funcs {
		out.Funcs = append(out.Funcs, funcToJSON(f))
	}

	return json.Marshal(out)
}

func funcToJSON(f *Func) funcJSON {
	out := funcJSON{Name: f.Name, Return: f.Sig.Return.String()}
	for _, p := range f.Params {
		out.Params = append(out.Params, paramJSON{Name: p.Ident, Type: p.Ty.String()})
	}
	for _, b := range f.Blocks {
		bj := blockJSON{Label: b.Label}
		for _, inst := range b.Instrs {
			bj.Instrs = append(bj.Instrs, instrToJSON(inst))
		}
		for _, s := range b.Succs() {
			bj.Succs = append(bj.Succs, s.Label)
		}
		out.Blocks = append(out.Blocks, bj)
	}
	return out
}

func instrToJSON(inst *Instr) instrJSON {
	out := instrJSON{Op: inst.Op.String()}
	if inst.id >= 0 {
		out.Result = inst.Name()
		out.Type = inst.Ty.String()
	}
	for _, a := range inst.Args {
		out.Args = append(out.Args, a.Name())
	}
	if inst.Callee != nil {
		out.Callee = inst.Callee.Name()
	}
	if inst.Unwind != nil {
		out.Unwind = inst.Unwind.Label
	}
	for _, t := range inst.Targets {
		out.Targets = append(out.Targets, t.Label)
	}
	if inst.Op == OpICmp {
		out.Pred = inst.Pred.String()
	}
	if inst.Op == OpSlotAddr {
		out.Slot = inst.Slot
	}
	return out
}
