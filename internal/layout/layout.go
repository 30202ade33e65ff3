// Package layout 负责派发元数据的分配：类的派发向量槽位、
// 接口的方法索引与身份哈希。
//
// 调用点 lowering 只读取这里的结果；表本身在 lowering 之前
// 一次性构建，此后不再变化，保证同一 (接口, 方法) 在整个
// 编译单元内得到同一个索引。
package layout

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/tangzhangming/lumen/internal/types"
)

// ============================================================================
// 派发表
// ============================================================================

// Table 一个编译单元的派发元数据
type Table struct {
	vectors map[*types.Class][]*types.Method // 类 -> 派发向量（按槽位排序）
	slots   map[*types.Method]int            // 虚方法 -> 向量槽位

	ifaceMethods map[*types.Class][]*types.Method // 接口 -> 方法（含继承，按索引排序）
	ifaceIndex   map[*types.Method]int            // 接口方法 -> 方法索引
}

// Build 为全部类和接口构建派发元数据
//
// 槽位分配是确定性的：父类向量先于子类、声明顺序决定新槽位
// 顺序、覆盖方法复用被覆盖方法的槽位。static/private 方法
// 不进入向量。
func Build(classes []*types.Class) *Table {
	t := &Table{
		vectors:      make(map[*types.Class][]*types.Method),
		slots:        make(map[*types.Method]int),
		ifaceMethods: make(map[*types.Class][]*types.Method),
		ifaceIndex:   make(map[*types.Method]int),
	}

	for _, c := range classes {
		if c.IsInterface {
			t.buildInterface(c)
		} else {
			t.buildVector(c)
		}
	}

	return t
}

// buildVector 构建一个类的派发向量（递归保证父类先构建）
func (t *Table) buildVector(c *types.Class) []*types.Method {
	if v, ok := t.vectors[c]; ok {
		return v
	}

	var vector []*types.Method
	if c.Parent != nil {
		parent := t.buildVector(c.Parent)
		vector = append(vector, parent...)
	}

	for _, m := range c.Methods {
		if !m.IsVirtual() {
			continue
		}
		if overridden := m.OverriddenIn(c); overridden != nil {
			// 覆盖：复用被覆盖方法的槽位
			// （接口里的声明没有类向量槽位，走下面的追加分支）
			if slot, ok := t.slots[overridden]; ok {
				vector[slot] = m
				t.slots[m] = slot
				continue
			}
		}
		// 新的虚方法：追加槽位
		t.slots[m] = len(vector)
		vector = append(vector, m)
	}

	t.vectors[c] = vector
	return vector
}

// buildInterface 构建一个接口的方法索引（含继承的接口，先继承后声明）
func (t *Table) buildInterface(iface *types.Class) []*types.Method {
	if ms, ok := t.ifaceMethods[iface]; ok {
		return ms
	}

	var methods []*types.Method
	seen := make(map[string]bool)

	for _, parent := range iface.Interfaces {
		for _, m := range t.buildInterface(parent) {
			if !seen[m.Name] {
				methods = append(methods, m)
				seen[m.Name] = true
			}
		}
	}
	for _, m := range iface.Methods {
		if !seen[m.Name] {
			methods = append(methods, m)
			seen[m.Name] = true
		}
	}

	t.ifaceMethods[iface] = methods
	for i, m := range methods {
		if _, ok := t.ifaceIndex[m]; !ok {
			t.ifaceIndex[m] = i
		}
	}
	return methods
}

// Slot 返回虚方法在其类派发向量中的槽位
func (t *Table) Slot(m *types.Method) (int, bool) {
	slot, ok := t.slots[m]
	return slot, ok
}

// Vector 返回类的派发向量
func (t *Table) Vector(c *types.Class) []*types.Method {
	return t.vectors[c]
}

// MethodIndex 返回方法在接口方法表中的索引
//
// 同一 (接口, 方法) 在整个编译单元内索引不变。
func (t *Table) MethodIndex(m *types.Method) (int, bool) {
	idx, ok := t.ifaceIndex[m]
	return idx, ok
}

// InterfaceMethods 返回接口的完整方法表
func (t *Table) InterfaceMethods(iface *types.Class) []*types.Method {
	return t.ifaceMethods[iface]
}

// MethodIndexIn 返回方法在指定接口方法表中的索引
//
// 运行时查表以接收者的静态接口类型为身份，索引必须相对
// 同一张表计算；继承来的方法按名字匹配。
func (t *Table) MethodIndexIn(iface *types.Class, m *types.Method) (int, bool) {
	for i, im := range t.ifaceMethods[iface] {
		if im.Name == m.Name {
			return i, true
		}
	}
	return 0, false
}

// ============================================================================
// 接口身份
// ============================================================================

// Hash 返回接口的身份哈希
//
// 由擦除后的接口名内容导出，同一输入在任何进程中得到同一
// 哈希。哈希只是运行时查找的快速路径过滤器：正确性由身份
// 指针保证（见 lower 包的 __getInterfaceMethod 契约）。
func Hash(iface *types.Class) int32 {
	return int32(xxhash.Sum64String(iface.Name))
}

// IdentitySymbol 返回接口身份全局的符号名
func IdentitySymbol(iface *types.Class) string {
	return fmt.Sprintf("intf.id.%s", iface.Name)
}

// ClassObjectSymbol 返回类对象全局的符号名
//
// 静态 synchronized 方法以类对象作为锁值。
func ClassObjectSymbol(c *types.Class) string {
	return fmt.Sprintf("class.obj.%s", c.Name)
}
