package ir

import (
	"strings"
	"testing"
)

func newTestFunc() *Func {
	m := NewModule("test")
	return m.NewFunc("test.fn", FuncType(I32, I32), []string{"x"})
}

func TestBlockLabelsUnique(t *testing.T) {
	f := newTestFunc()

	labels := []string{
		f.NewBlock("while.cond").Label,
		f.NewBlock("while.cond").Label,
		f.NewBlock("while.cond").Label,
		f.NewBlock("entry").Label,
	}

	want := []string{"while.cond", "while.cond.1", "while.cond.2", "entry"}
	for i, label := range labels {
		if label != want[i] {
			t.Errorf("label[%d] = %q, want %q", i, label, want[i])
		}
	}

	seen := make(map[string]bool)
	for _, b := range f.Blocks {
		if seen[b.Label] {
			t.Errorf("duplicate label %q", b.Label)
		}
		seen[b.Label] = true
	}
}

func TestEmitIntoTerminatedBlockPanics(t *testing.T) {
	f := newTestFunc()
	b := f.NewBlock("entry")
	f.SetInsertPoint(b)
	f.EmitRet(ConstInt(I32, 0))

	defer func() {
		if recover() == nil {
			t.Error("emit into terminated block did not panic")
		}
	}()
	f.EmitRet(ConstInt(I32, 1))
}

func TestBranchUnlessTerminated(t *testing.T) {
	f := newTestFunc()
	entry := f.NewBlock("entry")
	target := f.NewBlock("next")

	f.SetInsertPoint(entry)
	f.EmitRet(ConstInt(I32, 0))

	// 已终结的块不补边
	f.BranchUnlessTerminated(target)
	if n := len(entry.Instrs); n != 1 {
		t.Errorf("terminated block got %d instrs, want 1", n)
	}

	// 未终结的块补一条 br
	open := f.NewBlock("open")
	f.SetInsertPoint(open)
	f.BranchUnlessTerminated(target)
	term := open.Terminator()
	if term == nil || term.Op != OpBr || term.Targets[0] != target {
		t.Error("open block did not get a branch to target")
	}
}

func TestCallUnwindEdgeInSuccs(t *testing.T) {
	m := NewModule("test")
	f := m.NewFunc("test.fn", FuncType(Void), nil)
	callee := m.Extern("callee", FuncType(Void))

	entry := f.NewBlock("entry")
	lpad := f.NewBlock("lpad")
	end := f.NewBlock("end")

	f.SetInsertPoint(entry)
	f.EmitCall(callee, nil, lpad)
	f.EmitBr(end)

	succs := entry.Succs()
	found := map[*Block]bool{}
	for _, s := range succs {
		found[s] = true
	}
	if !found[lpad] || !found[end] {
		t.Errorf("entry successors missing unwind or branch edge: %v", succs)
	}

	// 带 unwind 边的调用不是终结指令
	callInstr := entry.Instrs[0]
	if callInstr.IsTerminator() {
		t.Error("call with unwind edge must not be a terminator")
	}
}

func TestExternMemoized(t *testing.T) {
	m := NewModule("test")
	a := m.Extern("__monitorEnter", FuncType(Void, BytePtr()))
	b := m.Extern("__monitorEnter", FuncType(Void, BytePtr()))
	if a != b {
		t.Error("same extern symbol produced two declarations")
	}
	if len(m.Externs) != 1 {
		t.Errorf("extern list has %d entries, want 1", len(m.Externs))
	}
}

func TestFuncRefNotInExterns(t *testing.T) {
	m := NewModule("test")
	m.FuncRef("Base.fin", FuncType(I32, BytePtr(), I32))
	if len(m.Externs) != 0 {
		t.Error("symbol reference leaked into the extern list")
	}
}

func TestVoidCallHasNoRegister(t *testing.T) {
	m := NewModule("test")
	f := m.NewFunc("test.fn", FuncType(Void), nil)
	callee := m.Extern("callee", FuncType(Void))

	entry := f.NewBlock("entry")
	f.SetInsertPoint(entry)
	call := f.EmitCall(callee, nil, nil)
	if !strings.Contains(call.Name(), "void") {
		t.Errorf("void call result name = %q, want void placeholder", call.Name())
	}

	// 后续指令编号不受 void 调用影响
	v := f.EmitAlloca(I32)
	if v.Name() != "%t0" {
		t.Errorf("first register = %s, want %%t0", v.Name())
	}
}

func TestPrintSmoke(t *testing.T) {
	m := NewModule("demo")
	f := m.NewFunc("Counter.count", FuncType(I32, BytePtr(), I32), []string{"this", "n"})

	entry := f.NewBlock("entry")
	end := f.NewBlock("end")
	f.SetInsertPoint(entry)
	cmp := f.EmitICmp(PredLT, f.Params[1], ConstInt(I32, 10))
	f.EmitCondBr(cmp, end, end)
	f.SetInsertPoint(end)
	f.EmitRet(f.Params[1])

	out := m.String()
	for _, want := range []string{"func @Counter.count", "entry:", "end:", "icmp lt", "condbr", "ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("printed module missing %q:\n%s", want, out)
		}
	}
}

func TestModuleJSON(t *testing.T) {
	m := NewModule("demo")
	f := m.NewFunc("Main.run", FuncType(Void), nil)
	entry := f.NewBlock("entry")
	f.SetInsertPoint(entry)
	f.EmitRet(nil)

	data, err := m.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	for _, want := range []string{`"demo"`, `"Main.run"`, `"entry"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON output missing %s", want)
		}
	}
}
