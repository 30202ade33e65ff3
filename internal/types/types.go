// Package types 定义 Lumen 的语义模型：类、接口、方法与修饰符。
//
// 后端假设输入已经通过类型检查（见 sema 包），这里的模型是
// lowering 阶段消费的只读事实：方法绑定、修饰符、继承关系。
package types

import "fmt"

// ============================================================================
// 修饰符
// ============================================================================

// Flags 声明修饰符位集
type Flags uint16

const (
	FlagPublic Flags = 1 << iota
	FlagProtected
	FlagPrivate
	FlagStatic
	FlagFinal
	FlagSynchronized
	FlagAbstract
)

func (f Flags) IsPublic() bool       { return f&FlagPublic != 0 }
func (f Flags) IsProtected() bool    { return f&FlagProtected != 0 }
func (f Flags) IsPrivate() bool      { return f&FlagPrivate != 0 }
func (f Flags) IsStatic() bool       { return f&FlagStatic != 0 }
func (f Flags) IsFinal() bool        { return f&FlagFinal != 0 }
func (f Flags) IsSynchronized() bool { return f&FlagSynchronized != 0 }
func (f Flags) IsAbstract() bool     { return f&FlagAbstract != 0 }

// ============================================================================
// 类型
// ============================================================================

// Type 语义类型
type Type interface {
	String() string
	typeNode()
}

// PrimKind 原始类型种类
type PrimKind int

const (
	PrimInt PrimKind = iota
	PrimBool
	PrimVoid
)

// Primitive 原始类型
type Primitive struct {
	Kind PrimKind
}

func (p *Primitive) typeNode() {}

func (p *Primitive) String() string {
	switch p.Kind {
	case PrimInt:
		return "int"
	case PrimBool:
		return "boolean"
	case PrimVoid:
		return "void"
	default:
		return "unknown"
	}
}

// 原始类型单例
var (
	Int  = &Primitive{Kind: PrimInt}
	Bool = &Primitive{Kind: PrimBool}
	Void = &Primitive{Kind: PrimVoid}
)

// Reference 引用类型（类或接口实例）
type Reference struct {
	Class *Class
}

func (r *Reference) typeNode()      {}
func (r *Reference) String() string { return r.Class.Name }

// Ref 创建指向 c 的引用类型
func Ref(c *Class) *Reference { return &Reference{Class: c} }

// Same 判断两个类型是否相同
func Same(a, b Type) bool {
	switch at := a.(type) {
	case *Primitive:
		bt, ok := b.(*Primitive)
		return ok && at.Kind == bt.Kind
	case *Reference:
		bt, ok := b.(*Reference)
		return ok && at.Class == bt.Class
	}
	return false
}

// AssignableTo 判断 from 是否可赋值给 to
//
// 引用类型允许向上转型（子类→父类、实现类→接口）。
func AssignableTo(from, to Type) bool {
	if Same(from, to) {
		return true
	}
	fr, ok1 := from.(*Reference)
	tr, ok2 := to.(*Reference)
	if !ok1 || !ok2 {
		return false
	}
	if tr.Class.IsInterface {
		return fr.Class.Implements(tr.Class)
	}
	return fr.Class.IsSubclassOf(tr.Class)
}

// ============================================================================
// 类与接口
// ============================================================================

// Class 类或接口
type Class struct {
	Name        string    // 类名
	Flags       Flags     // 类级修饰符（final、abstract）
	IsInterface bool      // 是否为接口
	Parent      *Class    // 父类（接口和根类为 nil）
	Interfaces  []*Class  // 实现的接口 / 接口继承的接口
	Methods     []*Method // 按声明顺序
}

func (c *Class) String() string { return c.Name }

// AddMethod 追加一个方法
func (c *Class) AddMethod(m *Method) {
	m.Owner = c
	c.Methods = append(c.Methods, m)
}

// FindDeclared 查找本类声明的方法（不含继承）
func (c *Class) FindDeclared(name string, arity int) *Method {
	for _, m := range c.Methods {
		if m.Name == name && len(m.Params) == arity {
			return m
		}
	}
	return nil
}

// LookupMethod 在类及其父类中查找方法
//
// 返回最派生的声明（子类覆盖优先）。对接口，还会查找继承的接口。
func (c *Class) LookupMethod(name string, arity int) *Method {
	for cur := c; cur != nil; cur = cur.Parent {
		if m := cur.FindDeclared(name, arity); m != nil {
			return m
		}
		for _, iface := range cur.Interfaces {
			if m := iface.LookupMethod(name, arity); m != nil {
				return m
			}
		}
	}
	return nil
}

// IsSubclassOf 判断 c 是否为 other 或其子类
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// Implements 判断 c（或其祖先）是否实现了接口 iface
func (c *Class) Implements(iface *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		for _, i := range cur.Interfaces {
			if i == iface || i.Implements(iface) {
				return true
			}
		}
		if cur == iface {
			return true
		}
	}
	return false
}

// ============================================================================
// 方法
// ============================================================================

// Method 方法实例
//
// 一个 Method 代表某个类/接口中的一条具体声明；
// 覆盖方法与被覆盖方法是不同的 Method 值，由 Overrides 关联。
type Method struct {
	Name   string // 方法名
	Owner  *Class // 声明所在的类/接口
	Flags  Flags  // 修饰符
	Params []Type // 参数类型（不含接收者）
	Return Type   // 返回类型
}

// Arity 参数数量
func (m *Method) Arity() int { return len(m.Params) }

// Symbol 返回方法的链接符号名
func (m *Method) Symbol() string {
	return fmt.Sprintf("%s.%s", m.Owner.Name, m.Name)
}

// IsVirtual 是否参与虚派发
//
// static/private 方法不进入派发向量；接口方法总是虚方法。
func (m *Method) IsVirtual() bool {
	if m.Owner.IsInterface {
		return true
	}
	return !m.Flags.IsStatic() && !m.Flags.IsPrivate()
}

// OverriddenIn 查找 m 在 class 的祖先中覆盖的声明
//
// 返回最近的被覆盖方法，没有则返回 nil。
func (m *Method) OverriddenIn(class *Class) *Method {
	if class == nil || class.Parent == nil {
		return nil
	}
	return class.Parent.LookupMethod(m.Name, m.Arity())
}

func (m *Method) String() string {
	return fmt.Sprintf("%s.%s/%d", m.Owner.Name, m.Name, m.Arity())
}
