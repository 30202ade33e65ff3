package syntax

import (
	"testing"

	"github.com/tangzhangming/lumen/internal/ast"
)

func parseFile(t *testing.T, src string) *ast.File {
	t.Helper()
	p := New(src, "test.lum")
	file := p.Parse()
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("unexpected parse error: %s", errs[0].Message)
	}
	return file
}

func TestParseClass(t *testing.T) {
	file := parseFile(t, `
final class Account {
    private int check(int n) { return n; }
    public static void reset() { return; }
    public synchronized int balance() { return 0; }
}
`)

	if len(file.Declarations) != 1 {
		t.Fatalf("got %d declarations, want 1", len(file.Declarations))
	}
	cls, ok := file.Declarations[0].(*ast.ClassDecl)
	if !ok {
		t.Fatalf("declaration is %T, want *ast.ClassDecl", file.Declarations[0])
	}
	if !cls.Final {
		t.Error("final modifier lost")
	}
	if len(cls.Methods) != 3 {
		t.Fatalf("got %d methods, want 3", len(cls.Methods))
	}

	check := cls.Methods[0]
	if check.Visibility != ast.VisibilityPrivate {
		t.Error("private visibility lost")
	}
	reset := cls.Methods[1]
	if !reset.Static {
		t.Error("static modifier lost")
	}
	balance := cls.Methods[2]
	if !balance.Synchronized {
		t.Error("synchronized modifier lost")
	}
}

func TestParseInterface(t *testing.T) {
	file := parseFile(t, `
interface Shape {
    int area();
    int perimeter();
}
`)

	decl, ok := file.Declarations[0].(*ast.InterfaceDecl)
	if !ok {
		t.Fatalf("declaration is %T, want *ast.InterfaceDecl", file.Declarations[0])
	}
	if len(decl.Methods) != 2 {
		t.Fatalf("got %d methods, want 2", len(decl.Methods))
	}
	if decl.Methods[0].Body != nil {
		t.Error("interface method has a body")
	}
}

func TestParseExtendsImplements(t *testing.T) {
	file := parseFile(t, `
class Circle extends Figure implements Shape, Solid {
    public int area() { return 0; }
}
`)
	cls := file.Declarations[0].(*ast.ClassDecl)
	if cls.Extends == nil || cls.Extends.Name != "Figure" {
		t.Error("extends clause lost")
	}
	if len(cls.Implements) != 2 {
		t.Fatalf("got %d implemented interfaces, want 2", len(cls.Implements))
	}
}

// 调用点记录在语法分析阶段分配，四种调用形式各占一条
func TestCallSiteAllocation(t *testing.T) {
	file := parseFile(t, `
class Caller extends Base {
    public int run(Base b) {
        helper(1);
        b.touch(2);
        super.touch(3);
        Base.make(4);
        return 0;
    }
}
`)
	if got := file.Sites.Len(); got != 4 {
		t.Errorf("arena has %d call sites, want 4", got)
	}

	cls := file.Declarations[0].(*ast.ClassDecl)
	body := cls.Methods[0].Body

	// 每个调用表达式持有有效的记录索引
	for i, stmt := range body.Statements[:4] {
		es, ok := stmt.(*ast.ExprStmt)
		if !ok {
			t.Fatalf("statement %d is %T, want *ast.ExprStmt", i, stmt)
		}
		call, ok := es.E.(*ast.CallExpr)
		if !ok {
			t.Fatalf("statement %d is not a call", i)
		}
		if call.Site == ast.InvalidSite {
			t.Errorf("call %d has no site record", i)
		}
	}
}

func TestParseStatements(t *testing.T) {
	file := parseFile(t, `
class Flow {
    public int run(int n) {
        int x = 0;
        while (x < n) {
            if (x == 3 || n > 10) {
                break;
            } else {
                x = x + 1;
            }
            continue;
        }
        return x;
    }
}
`)
	cls := file.Declarations[0].(*ast.ClassDecl)
	stmts := cls.Methods[0].Body.Statements
	if len(stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(stmts))
	}
	if _, ok := stmts[0].(*ast.VarDeclStmt); !ok {
		t.Errorf("statement 0 is %T, want var decl", stmts[0])
	}
	loop, ok := stmts[1].(*ast.WhileStmt)
	if !ok {
		t.Fatalf("statement 1 is %T, want while", stmts[1])
	}
	ifStmt, ok := loop.Body.Statements[0].(*ast.IfStmt)
	if !ok {
		t.Fatalf("loop body starts with %T, want if", loop.Body.Statements[0])
	}
	if ifStmt.Else == nil {
		t.Error("else branch lost")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing semicolon", `class A { public void f() { return } }`},
		{"missing paren", `class A { public void f( { return; } }`},
		{"stray token", `class A { public void f() { @ } }`},
		{"unclosed class", `class A { public void f() { return; }`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.src, "test.lum")
			p.Parse()
			if len(p.Errors()) == 0 {
				t.Error("expected at least one parse error")
			}
		})
	}
}

func TestLexerPositions(t *testing.T) {
	l := NewLexer("class A {\n  int x\n}", "test.lum")
	tokens := l.ScanTokens()

	if tokens[0].Pos.Line != 1 {
		t.Errorf("first token line = %d, want 1", tokens[0].Pos.Line)
	}
	// 第二行的 int
	for _, tok := range tokens {
		if tok.Literal == "int" && tok.Pos.Line != 2 {
			t.Errorf("int token line = %d, want 2", tok.Pos.Line)
		}
	}
}
