// Package ir 定义 Lumen 后端的 SSA 中间表示。
//
// IR 由显式基本块、带类型的虚拟寄存器和显式控制边组成。
// 调用指令可以携带一条 unwind 边（异常后继，指向 landing pad 块），
// 这是 call 的 invoke 形式：正常完成落到块内下一条指令，
// 异常传播转入 pad。除此之外块内指令顺序执行，
// 控制转移只发生在终结指令（br/condbr/ret/unreachable）。
package ir

import (
	"fmt"
	"strconv"
)

// ============================================================================
// 类型
// ============================================================================

// Kind IR 类型种类
type Kind int

const (
	KVoid Kind = iota
	KUnit      // void 调用的单位占位类型
	KI1
	KI8
	KI32
	KPtr
	KFunc
)

// Type IR 类型
type Type struct {
	Kind   Kind
	Elem   *Type   // KPtr
	Params []*Type // KFunc
	Return *Type   // KFunc
}

// 基础类型单例
var (
	Void = &Type{Kind: KVoid}
	Unit = &Type{Kind: KUnit}
	I1   = &Type{Kind: KI1}
	I8   = &Type{Kind: KI8}
	I32  = &Type{Kind: KI32}
)

// PointerTo 创建指向 elem 的指针类型
func PointerTo(elem *Type) *Type {
	return &Type{Kind: KPtr, Elem: elem}
}

// BytePtr i8* 类型（不透明对象指针的统一表示）
func BytePtr() *Type {
	return PointerTo(I8)
}

// FuncType 创建函数类型
func FuncType(ret *Type, params ...*Type) *Type {
	return &Type{Kind: KFunc, Params: params, Return: ret}
}

// String 返回类型的字符串表示
func (t *Type) String() string {
	switch t.Kind {
	case KVoid:
		return "void"
	case KUnit:
		return "unit"
	case KI1:
		return "i1"
	case KI8:
		return "i8"
	case KI32:
		return "i32"
	case KPtr:
		return t.Elem.String() + "*"
	case KFunc:
		s := t.Return.String() + " ("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		return s + ")"
	default:
		return fmt.Sprintf("badtype(%d)", int(t.Kind))
	}
}

// Equal 判断两个类型是否结构相等
func Equal(a, b *Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KPtr:
		return Equal(a.Elem, b.Elem)
	case KFunc:
		if !Equal(a.Return, b.Return) || len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !Equal(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// ============================================================================
// 值
// ============================================================================

// Value IR 值：常量、全局、参数或指令结果
type Value interface {
	Type() *Type
	Name() string
}

// Const 常量
type Const struct {
	Ty     *Type
	Val    int64
	IsNull bool // 空指针常量
}

// ConstInt 创建整数常量
func ConstInt(ty *Type, v int64) *Const {
	return &Const{Ty: ty, Val: v}
}

// ConstBool 创建布尔常量
func ConstBool(v bool) *Const {
	if v {
		return &Const{Ty: I1, Val: 1}
	}
	return &Const{Ty: I1, Val: 0}
}

// Null 创建空指针常量
func Null(ty *Type) *Const {
	return &Const{Ty: ty, IsNull: true}
}

// UnitValue void 调用的占位翻译结果
//
// 所有表达式都必须有翻译结果，void 调用使用此单位值。
var UnitValue Value = &Const{Ty: Unit}

func (c *Const) Type() *Type { return c.Ty }

func (c *Const) Name() string {
	if c.Ty.Kind == KUnit {
		return "unit"
	}
	if c.IsNull {
		return "null"
	}
	return strconv.FormatInt(c.Val, 10)
}

// Global 模块级全局（接口身份、类对象等），值本身是指针
type Global struct {
	Sym  string
	Elem *Type
}

func (g *Global) Type() *Type  { return PointerTo(g.Elem) }
func (g *Global) Name() string { return "@" + g.Sym }

// FuncSym 函数符号引用
//
// 既表示模块内定义的函数，也表示外部运行时函数的声明。
// 值的类型是指向函数类型的指针。
type FuncSym struct {
	Sym      string
	Sig      *Type // KFunc
	NoReturn bool  // 运行时 throw/rethrow 类函数
}

func (f *FuncSym) Type() *Type  { return PointerTo(f.Sig) }
func (f *FuncSym) Name() string { return "@" + f.Sym }

// Param 函数参数（入口处的虚拟寄存器）
type Param struct {
	Ident string
	Ty    *Type
}

func (p *Param) Type() *Type  { return p.Ty }
func (p *Param) Name() string { return "%" + p.Ident }

// ============================================================================
// 指令
// ============================================================================

// Op 指令操作码
type Op int

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpRem
	OpNeg
	OpNot
	OpICmp
	OpAlloca
	OpLoad
	OpStore
	OpSlotAddr
	OpBitcast
	OpCall
	OpLandingPad
	OpBr
	OpCondBr
	OpRet
	OpUnreachable
)

// String 返回操作码助记符
func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpRem:
		return "rem"
	case OpNeg:
		return "neg"
	case OpNot:
		return "not"
	case OpICmp:
		return "icmp"
	case OpAlloca:
		return "alloca"
	case OpLoad:
		return "load"
	case OpStore:
		return "store"
	case OpSlotAddr:
		return "slotaddr"
	case OpBitcast:
		return "bitcast"
	case OpCall:
		return "call"
	case OpLandingPad:
		return "landingpad"
	case OpBr:
		return "br"
	case OpCondBr:
		return "condbr"
	case OpRet:
		return "ret"
	case OpUnreachable:
		return "unreachable"
	default:
		return fmt.Sprintf("badop(%d)", int(op))
	}
}

// Pred icmp 谓词
type Pred int

const (
	PredEQ Pred = iota
	PredNE
	PredLT
	PredLE
	PredGT
	PredGE
)

func (p Pred) String() string {
	switch p {
	case PredEQ:
		return "eq"
	case PredNE:
		return "ne"
	case PredLT:
		return "lt"
	case PredLE:
		return "le"
	case PredGT:
		return "gt"
	case PredGE:
		return "ge"
	default:
		return fmt.Sprintf("badpred(%d)", int(p))
	}
}

// Instr IR 指令
//
// 一条指令至多产生一个值（id >= 0 时）。
type Instr struct {
	Op      Op
	Ty      *Type    // 结果类型；无结果时为 Void
	Args    []Value  // 操作数
	Pred    Pred     // OpICmp
	Slot    int      // OpSlotAddr 的槽位下标
	Elem    *Type    // OpAlloca 的元素类型
	Callee  Value    // OpCall
	Unwind  *Block   // OpCall 的异常边（nil 表示该调用不会展开到本函数的 pad）
	Targets []*Block // 终结指令的后继（OpBr:1, OpCondBr:2）

	id  int // 虚拟寄存器编号；-1 表示无结果
	blk *Block
}

func (i *Instr) Type() *Type { return i.Ty }

func (i *Instr) Name() string {
	if i.id < 0 {
		return "%<void>"
	}
	return "%t" + strconv.Itoa(i.id)
}

// Block 返回指令所在的基本块
func (i *Instr) Block() *Block { return i.blk }

// IsTerminator 是否为终结指令
func (i *Instr) IsTerminator() bool {
	switch i.Op {
	case OpBr, OpCondBr, OpRet, OpUnreachable:
		return true
	default:
		return false
	}
}
