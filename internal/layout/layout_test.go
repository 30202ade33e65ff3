package layout

import (
	"testing"

	"github.com/tangzhangming/lumen/internal/types"
)

func newMethod(name string, flags types.Flags) *types.Method {
	return &types.Method{Name: name, Flags: flags, Return: types.Void}
}

func TestVectorLayout(t *testing.T) {
	base := &types.Class{Name: "Base"}
	base.AddMethod(newMethod("a", 0))
	base.AddMethod(newMethod("b", 0))
	base.AddMethod(newMethod("helper", types.FlagPrivate))
	base.AddMethod(newMethod("util", types.FlagStatic))

	derived := &types.Class{Name: "Derived", Parent: base}
	derived.AddMethod(newMethod("b", 0)) // 覆盖
	derived.AddMethod(newMethod("c", 0)) // 新增

	table := Build([]*types.Class{base, derived})

	// 基类向量：虚方法按声明顺序，私有和静态方法不占槽位
	baseVec := table.Vector(base)
	if len(baseVec) != 2 {
		t.Fatalf("base vector has %d slots, want 2", len(baseVec))
	}
	if baseVec[0].Name != "a" || baseVec[1].Name != "b" {
		t.Errorf("base vector order wrong: %v, %v", baseVec[0].Name, baseVec[1].Name)
	}

	// 子类向量：先继承后新增
	derivedVec := table.Vector(derived)
	if len(derivedVec) != 3 {
		t.Fatalf("derived vector has %d slots, want 3", len(derivedVec))
	}
	if derivedVec[2].Name != "c" {
		t.Errorf("new virtual method not appended, got %s", derivedVec[2].Name)
	}

	// 覆盖复用基类槽位
	baseB, _ := table.Slot(base.FindDeclared("b", 0))
	derivedB, _ := table.Slot(derived.FindDeclared("b", 0))
	if baseB != derivedB {
		t.Errorf("override slot mismatch: base=%d derived=%d", baseB, derivedB)
	}
	if derivedVec[derivedB].Owner != derived {
		t.Error("derived vector slot does not point at the override")
	}

	// 私有和静态方法没有槽位
	if _, ok := table.Slot(base.FindDeclared("helper", 0)); ok {
		t.Error("private method has a vector slot")
	}
	if _, ok := table.Slot(base.FindDeclared("util", 0)); ok {
		t.Error("static method has a vector slot")
	}
}

func TestInterfaceTable(t *testing.T) {
	parent := &types.Class{Name: "Readable", IsInterface: true}
	parent.AddMethod(newMethod("read", 0))

	child := &types.Class{Name: "Stream", IsInterface: true, Interfaces: []*types.Class{parent}}
	child.AddMethod(newMethod("write", 0))
	child.AddMethod(newMethod("read", 0)) // 重新声明，不重复占位

	table := Build([]*types.Class{parent, child})

	methods := table.InterfaceMethods(child)
	if len(methods) != 2 {
		t.Fatalf("interface table has %d entries, want 2", len(methods))
	}
	// 先继承后声明
	if methods[0].Name != "read" || methods[1].Name != "write" {
		t.Errorf("interface table order: %s, %s", methods[0].Name, methods[1].Name)
	}

	if idx, ok := table.MethodIndexIn(child, child.FindDeclared("write", 0)); !ok || idx != 1 {
		t.Errorf("MethodIndexIn(write) = %d, %v; want 1, true", idx, ok)
	}
	// 继承方法按名字匹配到同一槽位
	if idx, ok := table.MethodIndexIn(child, parent.FindDeclared("read", 0)); !ok || idx != 0 {
		t.Errorf("MethodIndexIn(inherited read) = %d, %v; want 0, true", idx, ok)
	}
}

func TestInterfaceHashDeterministic(t *testing.T) {
	a := &types.Class{Name: "Shape", IsInterface: true}
	b := &types.Class{Name: "Shape", IsInterface: true}
	if Hash(a) != Hash(b) {
		t.Error("hash differs for identical interface names")
	}

	c := &types.Class{Name: "Solid", IsInterface: true}
	if Hash(a) == Hash(c) {
		t.Error("distinct interface names collide (possible but suspicious for these inputs)")
	}
}

func TestSymbols(t *testing.T) {
	iface := &types.Class{Name: "Shape", IsInterface: true}
	if got := IdentitySymbol(iface); got != "intf.id.Shape" {
		t.Errorf("IdentitySymbol = %q", got)
	}
	cls := &types.Class{Name: "Base"}
	if got := ClassObjectSymbol(cls); got != "class.obj.Base" {
		t.Errorf("ClassObjectSymbol = %q", got)
	}
}
