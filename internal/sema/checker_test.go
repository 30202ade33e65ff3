package sema

import (
	"testing"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/syntax"
)

func checkSource(t *testing.T, src string) (*Program, *errors.Reporter, *ast.File) {
	t.Helper()
	p := syntax.New(src, "test.lum")
	file := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parse error: %s", errs[0].Message)
	}
	reporter := errors.NewReporter()
	prog := NewChecker(reporter).Check([]*ast.File{file})
	return prog, reporter, file
}

func mustCheck(t *testing.T, src string) (*Program, *ast.File) {
	t.Helper()
	prog, reporter, file := checkSource(t, src)
	if reporter.HasErrors() {
		t.Fatalf("unexpected check errors:\n%s", reporter.FormatAll())
	}
	return prog, file
}

func hasError(r *errors.Reporter, code string) bool {
	for _, e := range r.Errors() {
		if e.Code == code {
			return true
		}
	}
	return false
}

// ============================================================================
// 调用点绑定
// ============================================================================

func TestCallSiteBinding(t *testing.T) {
	_, file := mustCheck(t, `
class Base {
    public int touch(int n) { return n; }
    public static int make(int n) { return n; }
}

class Caller extends Base {
    public int helper(int n) { return n; }
    public int run(Base b) {
        helper(1);
        b.touch(2);
        super.touch(3);
        Base.make(4);
        return 0;
    }
}
`)

	wantKinds := []ast.CallKind{
		ast.CallUnqualified,
		ast.CallInstance,
		ast.CallSuper,
		ast.CallStatic,
	}
	if file.Sites.Len() != len(wantKinds) {
		t.Fatalf("arena has %d sites, want %d", file.Sites.Len(), len(wantKinds))
	}

	for i, want := range wantKinds {
		site := file.Sites.Site(ast.SiteID(i))
		if site.Method == nil {
			t.Fatalf("site %d unbound", i)
		}
		if site.Kind != want {
			t.Errorf("site %d kind = %s, want %s", i, site.Kind, want)
		}
		// 检查结束即完成分类
		if !site.Classified {
			t.Errorf("site %d not classified after checking", i)
		}
	}

	// super 和 static 在绑定时即为直接调用
	if !file.Sites.Site(2).Direct {
		t.Error("super call site not direct")
	}
	if !file.Sites.Site(3).Direct {
		t.Error("static call site not direct")
	}
}

func TestInstanceCallBindsInheritedMethod(t *testing.T) {
	prog, file := mustCheck(t, `
class Base {
    public int touch(int n) { return n; }
}
class Derived extends Base {
    public int run(Derived d) { return d.touch(1); }
}
`)
	site := file.Sites.Site(0)
	base := prog.Named["Base"]
	if site.Method == nil || site.Method.Owner != base {
		t.Errorf("inherited call bound to %v, want method of Base", site.Method)
	}
}

// ============================================================================
// 诊断
// ============================================================================

func TestCheckErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code string
	}{
		{
			"duplicate class",
			`class A { } class A { }`,
			errors.L0101,
		},
		{
			"undefined variable",
			`class A { public int f() { return x; } }`,
			errors.L0103,
		},
		{
			"this in static method",
			`class A {
                public int g() { return 1; }
                public static int f(A a) { return this.g(); }
            }`,
			errors.L0109,
		},
		{
			"instance method via class name",
			`class A {
                public int g() { return 1; }
                public int f() { return A.g(); }
            }`,
			errors.L0102,
		},
		{
			"extends final class",
			`final class A { } class B extends A { }`,
			errors.L0106,
		},
		{
			"implements a class",
			`class A { } class B implements A { }`,
			errors.L0107,
		},
		{
			"condition not boolean",
			`class A { public void f(int n) { while (n) { return; } } }`,
			errors.L0201,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, reporter, _ := checkSource(t, tt.src)
			if !hasError(reporter, tt.code) {
				t.Errorf("expected error %s, got:\n%s", tt.code, reporter.FormatAll())
			}
		})
	}
}

func TestInterfaceReceiverCall(t *testing.T) {
	prog, file := mustCheck(t, `
interface Shape {
    int area();
}
class Meter {
    public int measure(Shape s) { return s.area(); }
}
`)
	site := file.Sites.Site(0)
	if site.Kind != ast.CallInstance {
		t.Errorf("kind = %s, want instance call", site.Kind)
	}
	if site.Direct {
		t.Error("interface call classified direct")
	}
	shape := prog.Named["Shape"]
	if site.Method == nil || site.Method.Owner != shape {
		t.Error("call not bound to the interface declaration")
	}
}
