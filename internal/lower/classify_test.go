package lower

import (
	"testing"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/types"
)

func makeSite(kind ast.CallKind, flags types.Flags, ownerFlags types.Flags, ownerIface bool) *ast.CallSite {
	owner := &types.Class{Name: "C", Flags: ownerFlags, IsInterface: ownerIface}
	m := &types.Method{Name: "m", Flags: flags, Return: types.Void}
	owner.AddMethod(m)
	return &ast.CallSite{Kind: kind, Method: m, Recv: types.Ref(owner)}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		kind       ast.CallKind
		flags      types.Flags
		ownerFlags types.Flags
		ownerIface bool
		wantDirect bool
	}{
		{"static method", ast.CallStatic, types.FlagStatic, 0, false, true},
		{"private method", ast.CallUnqualified, types.FlagPrivate, 0, false, true},
		{"final method", ast.CallInstance, types.FlagFinal, 0, false, true},
		{"super call", ast.CallSuper, 0, 0, false, true},
		{"final container", ast.CallInstance, 0, types.FlagFinal, false, true},
		{"plain virtual", ast.CallInstance, 0, 0, false, false},
		{"interface method", ast.CallInstance, 0, 0, true, false},
		{"final synchronized", ast.CallInstance, types.FlagFinal | types.FlagSynchronized, 0, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			site := makeSite(tt.kind, tt.flags, tt.ownerFlags, tt.ownerIface)
			Classify(site)
			if !site.Classified {
				t.Error("site not marked classified")
			}
			if site.Direct != tt.wantDirect {
				t.Errorf("Direct = %v, want %v", site.Direct, tt.wantDirect)
			}
		})
	}
}

// 分类结果单调：置为直接调用后重复分类不得改写
func TestClassifyMonotone(t *testing.T) {
	site := makeSite(ast.CallInstance, types.FlagFinal, 0, false)
	Classify(site)
	if !site.Direct {
		t.Fatal("final method should classify direct")
	}

	// 即使绑定信息事后看起来是虚调用，已有结果保持不变
	site.Method.Flags = 0
	Classify(site)
	if !site.Direct {
		t.Error("re-classification cleared the direct flag")
	}
}

func TestClassifyIdempotent(t *testing.T) {
	site := makeSite(ast.CallInstance, 0, 0, false)
	Classify(site)
	first := site.Direct
	Classify(site)
	if site.Direct != first {
		t.Errorf("second classification changed result: %v -> %v", first, site.Direct)
	}
}

func TestClassifyNilSafe(t *testing.T) {
	Classify(nil)
	Classify(&ast.CallSite{}) // 未绑定的调用点
}
