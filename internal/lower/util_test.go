package lower_test

import (
	"testing"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/ir"
	"github.com/tangzhangming/lumen/internal/layout"
	"github.com/tangzhangming/lumen/internal/lower"
	"github.com/tangzhangming/lumen/internal/sema"
	"github.com/tangzhangming/lumen/internal/syntax"
)

// compileProgram 解析并检查源代码，返回绑定好的程序和 Lowerer
func compileProgram(t *testing.T, src string) (*sema.Program, *lower.Lowerer, *ast.Arena) {
	t.Helper()

	p := syntax.New(src, "test.lum")
	file := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errors.Format(errs[0]))
	}

	reporter := errors.NewReporter()
	prog := sema.NewChecker(reporter).Check([]*ast.File{file})
	if reporter.HasErrors() {
		t.Fatalf("check errors:\n%s", reporter.FormatAll())
	}

	table := layout.Build(prog.Classes)
	lw := lower.New(ir.NewModule("test"), table, nil)
	return prog, lw, file.Sites
}

// lowerMethod 编译源代码并 lowering 指定方法
func lowerMethod(t *testing.T, src, class, method string, arity int) (*ir.Func, *lower.MethodLowering) {
	t.Helper()

	prog, lw, sites := compileProgram(t, src)
	cls := prog.Named[class]
	if cls == nil {
		t.Fatalf("class %s not found", class)
	}
	m := cls.FindDeclared(method, arity)
	if m == nil {
		t.Fatalf("method %s.%s/%d not found", class, method, arity)
	}

	ml := lw.NewMethodLowering(cls, m, prog.Decl(m), sites)
	fn, err := ml.Lower()
	if err != nil {
		t.Fatalf("lower %s.%s: %v", class, method, err)
	}
	return fn, ml
}

// callsTo 返回函数中所有指向符号 sym 的调用指令
func callsTo(fn *ir.Func, sym string) []*ir.Instr {
	var calls []*ir.Instr
	for _, b := range fn.Blocks {
		for _, inst := range b.Instrs {
			if inst.Op == ir.OpCall && inst.Callee.Name() == "@"+sym {
				calls = append(calls, inst)
			}
		}
	}
	return calls
}

// allCalls 返回函数中的全部调用指令
func allCalls(fn *ir.Func) []*ir.Instr {
	var calls []*ir.Instr
	for _, b := range fn.Blocks {
		for _, inst := range b.Instrs {
			if inst.Op == ir.OpCall {
				calls = append(calls, inst)
			}
		}
	}
	return calls
}

// mustBlock 按标签取块，不存在则失败
func mustBlock(t *testing.T, fn *ir.Func, label string) *ir.Block {
	t.Helper()
	b := fn.BlockByLabel(label)
	if b == nil {
		t.Fatalf("block %q not found in %s", label, fn.Name)
	}
	return b
}

// mustTerminator 取块的终结指令，未终结则失败
func mustTerminator(t *testing.T, b *ir.Block) *ir.Instr {
	t.Helper()
	term := b.Terminator()
	if term == nil {
		t.Fatalf("block %q has no terminator", b.Label)
	}
	return term
}
