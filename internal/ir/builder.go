package ir

import "fmt"

// ============================================================================
// 模块
// ============================================================================

// Module 一个编译单元的 IR
type Module struct {
	Name    string
	Funcs   []*Func
	Globals []*Global
	Externs []*FuncSym

	globalIndex map[string]*Global
	externIndex map[string]*FuncSym
	symIndex    map[string]*FuncSym
}

// NewModule 创建模块
func NewModule(name string) *Module {
	return &Module{
		Name:        name,
		globalIndex: make(map[string]*Global),
		externIndex: make(map[string]*FuncSym),
		symIndex:    make(map[string]*FuncSym),
	}
}

// NewFunc 在模块中创建函数
func (m *Module) NewFunc(name string, sig *Type, paramNames []string) *Func {
	f := &Func{
		Name:     name,
		Sig:      sig,
		labelSeq: make(map[string]int),
	}
	for i, ty := range sig.Params {
		f.Params = append(f.Params, &Param{Ident: paramNames[i], Ty: ty})
	}
	m.Funcs = append(m.Funcs, f)
	return f
}

// Global 声明（或返回已有的）模块全局
func (m *Module) Global(sym string, elem *Type) *Global {
	if g, ok := m.globalIndex[sym]; ok {
		return g
	}
	g := &Global{Sym: sym, Elem: elem}
	m.globalIndex[sym] = g
	m.Globals = append(m.Globals, g)
	return g
}

// Extern 声明（或返回已有的）外部函数
func (m *Module) Extern(sym string, sig *Type) *FuncSym {
	if f, ok := m.externIndex[sym]; ok {
		return f
	}
	f := &FuncSym{Sym: sym, Sig: sig}
	m.externIndex[sym] = f
	m.Externs = append(m.Externs, f)
	return f
}

// FuncRef 返回对函数符号的直接引用
//
// 与 Extern 不同，符号引用不进入外部声明列表：被引用的
// 函数可能就定义在本模块，由链接阶段归一。
func (m *Module) FuncRef(sym string, sig *Type) *FuncSym {
	if f, ok := m.symIndex[sym]; ok {
		return f
	}
	f := &FuncSym{Sym: sym, Sig: sig}
	m.symIndex[sym] = f
	return f
}

// ExternNoReturn 声明一个不返回的外部函数（throw/rethrow 类）
func (m *Module) ExternNoReturn(sym string, sig *Type) *FuncSym {
	f := m.Extern(sym, sig)
	f.NoReturn = true
	return f
}

// ============================================================================
// 基本块
// ============================================================================

// Block 基本块：单入口的顺序指令序列
type Block struct {
	Label  string
	Instrs []*Instr

	fn *Func
}

// Terminated 块是否已有终结指令
func (b *Block) Terminated() bool {
	n := len(b.Instrs)
	return n > 0 && b.Instrs[n-1].IsTerminator()
}

// Terminator 返回终结指令，未终结时为 nil
func (b *Block) Terminator() *Instr {
	if !b.Terminated() {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Succs 返回块的全部后继
//
// 包含终结指令的目标块和块内调用指令的 unwind 边。
func (b *Block) Succs() []*Block {
	var succs []*Block
	for _, inst := range b.Instrs {
		if inst.Op == OpCall && inst.Unwind != nil {
			succs = append(succs, inst.Unwind)
		}
		if inst.IsTerminator() {
			succs = append(succs, inst.Targets...)
		}
	}
	return succs
}

// ============================================================================
// 函数与构建器
// ============================================================================

// Func IR 函数，同时承担构建器角色
//
// 构建器维护一个"当前插入点"（当前基本块）；所有 Emit 方法把
// 指令追加到插入点末尾。向已终结的块追加指令是调用方的编程
// 错误，构建器直接 panic——lowering 阶段对这类缺陷不做恢复。
type Func struct {
	Name   string
	Sig    *Type
	Params []*Param
	Blocks []*Block

	cur      *Block
	nextID   int
	labelSeq map[string]int
}

// NewBlock 在函数中分配一个新基本块
//
// hint 是标签前缀；同名提示会得到 hint、hint.1、hint.2 …
// 形式的唯一标签。块只创建不删除。
func (f *Func) NewBlock(hint string) *Block {
	label := hint
	if n, ok := f.labelSeq[hint]; ok {
		label = fmt.Sprintf("%s.%d", hint, n)
	}
	f.labelSeq[hint]++

	b := &Block{Label: label, fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// SetInsertPoint 把插入点移动到块 b 的末尾
func (f *Func) SetInsertPoint(b *Block) {
	f.cur = b
}

// InsertPoint 返回当前插入点
func (f *Func) InsertPoint() *Block {
	return f.cur
}

// Entry 返回入口块（第一个创建的块）
func (f *Func) Entry() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	return f.Blocks[0]
}

// BlockByLabel 按标签查找块（测试用）
func (f *Func) BlockByLabel(label string) *Block {
	for _, b := range f.Blocks {
		if b.Label == label {
			return b
		}
	}
	return nil
}

// emit 把指令追加到当前插入点
func (f *Func) emit(inst *Instr) *Instr {
	if f.cur == nil {
		panic("ir: emit with no insertion point in " + f.Name)
	}
	if f.cur.Terminated() {
		panic("ir: emit into terminated block " + f.cur.Label + " in " + f.Name)
	}
	inst.blk = f.cur
	f.cur.Instrs = append(f.cur.Instrs, inst)
	return inst
}

// value 给产生结果的指令分配寄存器编号
func (f *Func) value(inst *Instr) *Instr {
	inst.id = f.nextID
	f.nextID++
	return f.emit(inst)
}

// void 发射无结果指令
func (f *Func) void(inst *Instr) *Instr {
	inst.id = -1
	inst.Ty = Void
	return f.emit(inst)
}

// ----------------------------------------------------------------------------
// 指令发射
// ----------------------------------------------------------------------------

// EmitBinary 发射二元算术指令
func (f *Func) EmitBinary(op Op, l, r Value) *Instr {
	return f.value(&Instr{Op: op, Ty: l.Type(), Args: []Value{l, r}})
}

// EmitNeg 发射取负
func (f *Func) EmitNeg(v Value) *Instr {
	return f.value(&Instr{Op: OpNeg, Ty: v.Type(), Args: []Value{v}})
}

// EmitNot 发射逻辑非
func (f *Func) EmitNot(v Value) *Instr {
	return f.value(&Instr{Op: OpNot, Ty: I1, Args: []Value{v}})
}

// EmitICmp 发射整数比较
func (f *Func) EmitICmp(pred Pred, l, r Value) *Instr {
	return f.value(&Instr{Op: OpICmp, Ty: I1, Pred: pred, Args: []Value{l, r}})
}

// EmitAlloca 发射栈槽分配
func (f *Func) EmitAlloca(elem *Type) *Instr {
	return f.value(&Instr{Op: OpAlloca, Ty: PointerTo(elem), Elem: elem})
}

// EmitLoad 发射加载
func (f *Func) EmitLoad(addr Value) *Instr {
	return f.value(&Instr{Op: OpLoad, Ty: addr.Type().Elem, Args: []Value{addr}})
}

// EmitStore 发射存储
func (f *Func) EmitStore(val, addr Value) *Instr {
	return f.void(&Instr{Op: OpStore, Args: []Value{val, addr}})
}

// EmitSlotAddr 发射槽位地址计算
//
// base 必须是指针；结果是 base 所指对象第 slot 个槽位的地址。
// 对象头中的派发向量指针占据 0 号槽位。
func (f *Func) EmitSlotAddr(base Value, slot int, elem *Type) *Instr {
	return f.value(&Instr{Op: OpSlotAddr, Ty: PointerTo(elem), Slot: slot, Args: []Value{base}})
}

// EmitBitcast 发射位转换
func (f *Func) EmitBitcast(v Value, ty *Type) *Instr {
	return f.value(&Instr{Op: OpBitcast, Ty: ty, Args: []Value{v}})
}

// EmitCall 发射调用
//
// callee 的类型必须是函数指针。unwind 非 nil 时为 invoke 形式：
// 被调方抛出的异常转入 unwind 指向的 landing pad。
func (f *Func) EmitCall(callee Value, args []Value, unwind *Block) *Instr {
	sig := callee.Type().Elem
	ret := sig.Return
	inst := &Instr{Op: OpCall, Ty: ret, Callee: callee, Args: args, Unwind: unwind}
	if ret.Kind == KVoid {
		inst.id = -1
		return f.emit(inst)
	}
	return f.value(inst)
}

// EmitLandingPad 发射 landing pad
//
// 必须是 pad 块的第一条指令；结果是传播中的异常负载(i8*)。
func (f *Func) EmitLandingPad() *Instr {
	return f.value(&Instr{Op: OpLandingPad, Ty: BytePtr()})
}

// EmitBr 发射无条件跳转
func (f *Func) EmitBr(target *Block) *Instr {
	return f.void(&Instr{Op: OpBr, Targets: []*Block{target}})
}

// EmitCondBr 发射条件跳转
func (f *Func) EmitCondBr(cond Value, ifTrue, ifFalse *Block) *Instr {
	return f.void(&Instr{Op: OpCondBr, Args: []Value{cond}, Targets: []*Block{ifTrue, ifFalse}})
}

// EmitRet 发射返回；v 为 nil 时返回 void
func (f *Func) EmitRet(v Value) *Instr {
	inst := &Instr{Op: OpRet}
	if v != nil {
		inst.Args = []Value{v}
	}
	return f.void(inst)
}

// EmitUnreachable 发射 unreachable（标记控制不会到达此处）
func (f *Func) EmitUnreachable() *Instr {
	return f.void(&Instr{Op: OpUnreachable})
}

// BranchUnlessTerminated 当前块未终结时补一条到 target 的跳转
//
// 循环体、if 分支等在自然落空时回边/汇合用；
// 已经以 return/break/continue/throw 结束的块不再补边。
func (f *Func) BranchUnlessTerminated(target *Block) {
	if f.cur != nil && !f.cur.Terminated() {
		f.EmitBr(target)
	}
}
