package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/tangzhangming/lumen/internal/errors"
)

const mainSrc = `
class Counter {
    public int count(int n) {
        int i = 0;
        while (i < n) {
            i = i + 1;
        }
        return i;
    }
}
`

func TestCompileSource(t *testing.T) {
	d := New(Options{ModuleName: "demo"})
	module, err := d.CompileSource("counter.lum", mainSrc)
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}

	if module.Name != "demo" {
		t.Errorf("module name = %q, want demo", module.Name)
	}
	if len(module.Funcs) != 1 || module.Funcs[0].Name != "Counter.count" {
		t.Fatalf("unexpected functions in module: %v", module.Funcs)
	}

	stats := d.Stats()
	if stats.FilesParsed.Load() != 1 {
		t.Errorf("FilesParsed = %d, want 1", stats.FilesParsed.Load())
	}
	if stats.MethodsLowered.Load() != 1 {
		t.Errorf("MethodsLowered = %d, want 1", stats.MethodsLowered.Load())
	}
}

// 跨文件绑定：类声明与调用方在不同文件
func TestCompileMultipleSources(t *testing.T) {
	sources := []Source{
		{Filename: "base.lum", Text: `
class Base {
    public int touch(int n) { return n; }
}
`},
		{Filename: "caller.lum", Text: `
class Caller {
    public int run(Base b) { return b.touch(1); }
}
`},
	}

	d := New(Options{Jobs: 4})
	module, err := d.Compile(sources)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	names := make(map[string]bool)
	for _, f := range module.Funcs {
		names[f.Name] = true
	}
	if !names["Base.touch"] || !names["Caller.run"] {
		t.Errorf("module functions = %v", names)
	}
}

func TestAbstractMethodsSkipped(t *testing.T) {
	src := `
interface Shape {
    int area();
}
class Circle implements Shape {
    public int area() { return 3; }
}
`
	d := New(Options{})
	module, err := d.CompileSource("shape.lum", src)
	if err != nil {
		t.Fatalf("CompileSource: %v", err)
	}
	for _, f := range module.Funcs {
		if strings.HasPrefix(f.Name, "Shape.") {
			t.Errorf("interface method %s was lowered", f.Name)
		}
	}
}

func TestSyntaxErrorsAggregated(t *testing.T) {
	d := New(Options{Jobs: 2})
	_, err := d.Compile([]Source{
		{Filename: "a.lum", Text: `class A { public void f() { return } }`},
		{Filename: "b.lum", Text: `class B { public void g() { @ } }`},
	})
	if err == nil {
		t.Fatal("expected aggregated parse errors")
	}

	// 两个文件的诊断都在聚合错误里
	files := make(map[string]bool)
	for _, e := range multierr.Errors(err) {
		if ce, ok := e.(*errors.CompileError); ok {
			files[ce.Pos.Filename] = true
		}
	}
	if !files["a.lum"] || !files["b.lum"] {
		t.Errorf("diagnostics cover files %v, want both a.lum and b.lum", files)
	}
}

func TestCheckErrorStopsLowering(t *testing.T) {
	d := New(Options{})
	_, err := d.CompileSource("bad.lum", `class A { public int f() { return x; } }`)
	if err == nil {
		t.Fatal("expected binding error")
	}
	if d.Stats().MethodsLowered.Load() != 0 {
		t.Error("methods were lowered despite check errors")
	}
}

func TestCompileFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "counter.lum")
	if err := os.WriteFile(path, []byte(mainSrc), 0644); err != nil {
		t.Fatal(err)
	}

	d := New(Options{})
	module, err := d.CompileFiles([]string{path})
	if err != nil {
		t.Fatalf("CompileFiles: %v", err)
	}
	if len(module.Funcs) != 1 {
		t.Errorf("got %d functions, want 1", len(module.Funcs))
	}
}
