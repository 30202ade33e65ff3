// Package lower 实现后端 lowering 的核心：方法调用 lowering 与
// 派发解析、synchronized 调用展开、结构化循环 lowering。
//
// 输入是 sema 绑定完成的树，输出是 ir 包的 SSA 模块。lowering
// 本身是单线程的深度优先树遍历：一个共享的插入点游标加两个
// 栈（循环上下文、异常帧）贯穿整个方法体，压栈/弹栈严格围绕
// 每个构造的 lowering 配对。
package lower

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/ir"
	"github.com/tangzhangming/lumen/internal/layout"
	"github.com/tangzhangming/lumen/internal/types"
)

// ============================================================================
// Lowerer
// ============================================================================

// Lowerer 一个编译单元的 lowering 阶段
type Lowerer struct {
	module *ir.Module
	layout *layout.Table
	log    *zap.Logger
}

// New 创建 Lowerer
//
// log 可为 nil（不输出调试日志）。
func New(module *ir.Module, table *layout.Table, log *zap.Logger) *Lowerer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Lowerer{
		module: module,
		layout: table,
		log:    log,
	}
}

// Module 返回正在构建的 IR 模块
func (l *Lowerer) Module() *ir.Module {
	return l.module
}

// LowerMethod lowering 一个方法体
func (l *Lowerer) LowerMethod(class *types.Class, m *types.Method, decl *ast.MethodDecl, sites *ast.Arena) (*ir.Func, error) {
	ml := l.NewMethodLowering(class, m, decl, sites)
	return ml.Lower()
}

// ============================================================================
// 单个方法的 lowering 上下文
// ============================================================================

// loopCtx 一层循环的 lowering 状态
//
// continue 跳向条件块，break 跳向结束块；栈顶即最内层循环。
type loopCtx struct {
	cont *ir.Block // continue 目标
	brk  *ir.Block // break 目标
}

// MethodLowering 一个方法体的 lowering 上下文
//
// 循环上下文栈和异常帧栈都显式挂在这里，而不是包级
// 可变状态；压栈/弹栈纪律因此可以被测试直接检验。
type MethodLowering struct {
	l      *Lowerer
	class  *types.Class
	method *types.Method
	decl   *ast.MethodDecl
	sites  *ast.Arena

	fn     *ir.Func
	scopes []map[string]*ir.Instr // 局部变量名 -> 栈槽
	loops  []loopCtx
	frame  *ExceptionFrame

	maxLoopDepth  int
	maxFrameDepth int
}

// NewMethodLowering 创建方法 lowering 上下文
func (l *Lowerer) NewMethodLowering(class *types.Class, m *types.Method, decl *ast.MethodDecl, sites *ast.Arena) *MethodLowering {
	return &MethodLowering{
		l:      l,
		class:  class,
		method: m,
		decl:   decl,
		sites:  sites,
	}
}

// Lower 执行 lowering，返回构建完成的 IR 函数
func (ml *MethodLowering) Lower() (*ir.Func, error) {
	m := ml.method
	ml.l.log.Debug("lowering method", zap.String("method", m.String()))

	sig, paramNames := ml.l.methodSignature(m, ml.decl)
	ml.fn = ml.l.module.NewFunc(m.Symbol(), sig, paramNames)

	entry := ml.fn.NewBlock("entry")
	ml.fn.SetInsertPoint(entry)

	// 参数拷入栈槽，方法体内按可变局部变量处理。
	// 接收者（this）保持为入口寄存器，不可赋值。
	ml.pushScope()
	firstParam := 0
	if !m.Flags.IsStatic() {
		firstParam = 1
	}
	for i, p := range ml.decl.Parameters {
		param := ml.fn.Params[firstParam+i]
		slot := ml.fn.EmitAlloca(param.Ty)
		ml.fn.EmitStore(param, slot)
		ml.declareLocal(p.Name.Name, slot)
	}

	if err := ml.lowerStmt(ml.decl.Body); err != nil {
		return nil, err
	}
	ml.popScope()

	// 自然落空的控制流补默认返回
	if !ml.fn.InsertPoint().Terminated() {
		ml.emitDefaultReturn()
	}

	// 两个栈在方法 lowering 结束时必须归零
	if len(ml.loops) != 0 || ml.frame != nil {
		return nil, errors.Internal(errors.L0900, ml.decl.Pos(),
			"unbalanced lowering stacks in %s (loops=%d)", m, len(ml.loops))
	}

	return ml.fn, nil
}

// emitDefaultReturn 发射返回类型的零值返回
func (ml *MethodLowering) emitDefaultReturn() {
	ret := ml.fn.Sig.Return
	switch ret.Kind {
	case ir.KVoid:
		ml.fn.EmitRet(nil)
	case ir.KI1:
		ml.fn.EmitRet(ir.ConstBool(false))
	case ir.KPtr:
		ml.fn.EmitRet(ir.Null(ret))
	default:
		ml.fn.EmitRet(ir.ConstInt(ret, 0))
	}
}

// ----------------------------------------------------------------------------
// 作用域
// ----------------------------------------------------------------------------

func (ml *MethodLowering) pushScope() {
	ml.scopes = append(ml.scopes, make(map[string]*ir.Instr))
}

func (ml *MethodLowering) popScope() {
	ml.scopes = ml.scopes[:len(ml.scopes)-1]
}

func (ml *MethodLowering) declareLocal(name string, slot *ir.Instr) {
	ml.scopes[len(ml.scopes)-1][name] = slot
}

func (ml *MethodLowering) lookupLocal(name string) *ir.Instr {
	for i := len(ml.scopes) - 1; i >= 0; i-- {
		if slot, ok := ml.scopes[i][name]; ok {
			return slot
		}
	}
	return nil
}

// thisValue 返回接收者寄存器；静态方法返回 nil
func (ml *MethodLowering) thisValue() ir.Value {
	if ml.method.Flags.IsStatic() {
		return nil
	}
	return ml.fn.Params[0]
}

// ----------------------------------------------------------------------------
// 循环上下文栈
// ----------------------------------------------------------------------------

// pushLoop 进入循环时压入一层循环上下文
func (ml *MethodLowering) pushLoop(cont, brk *ir.Block) {
	ml.loops = append(ml.loops, loopCtx{cont: cont, brk: brk})
	if len(ml.loops) > ml.maxLoopDepth {
		ml.maxLoopDepth = len(ml.loops)
	}
}

// popLoop 离开循环时弹出
func (ml *MethodLowering) popLoop() {
	ml.loops = ml.loops[:len(ml.loops)-1]
}

// currentLoop 返回最内层循环上下文，不在循环内时为 nil
func (ml *MethodLowering) currentLoop() *loopCtx {
	if len(ml.loops) == 0 {
		return nil
	}
	return &ml.loops[len(ml.loops)-1]
}

// LoopDepth 当前循环上下文栈深度（测试用）
func (ml *MethodLowering) LoopDepth() int {
	return len(ml.loops)
}

// MaxLoopDepth lowering 过程中观测到的最大循环嵌套深度（测试用）
func (ml *MethodLowering) MaxLoopDepth() int {
	return ml.maxLoopDepth
}

// ----------------------------------------------------------------------------
// 类型映射
// ----------------------------------------------------------------------------

// irType 把语义类型映射到 IR 类型
//
// 引用类型统一 lowering 为不透明对象指针(i8*)。
func irType(t types.Type) *ir.Type {
	switch ty := t.(type) {
	case *types.Primitive:
		switch ty.Kind {
		case types.PrimInt:
			return ir.I32
		case types.PrimBool:
			return ir.I1
		default:
			return ir.Void
		}
	case *types.Reference:
		return ir.BytePtr()
	}
	return ir.Void
}

// methodSignature 返回方法的 IR 函数类型与参数名
//
// 实例方法的第 0 个参数是接收者。
func (l *Lowerer) methodSignature(m *types.Method, decl *ast.MethodDecl) (*ir.Type, []string) {
	var params []*ir.Type
	var names []string

	if !m.Flags.IsStatic() {
		params = append(params, ir.BytePtr())
		names = append(names, "this")
	}
	for i, p := range m.Params {
		params = append(params, irType(p))
		names = append(names, decl.Parameters[i].Name.Name)
	}

	return ir.FuncType(irType(m.Return), params...), names
}

// funcIRType 返回按调用方视角的方法函数类型（实例方法含接收者参数）
func (l *Lowerer) funcIRType(m *types.Method) *ir.Type {
	var params []*ir.Type
	if !m.Flags.IsStatic() {
		params = append(params, ir.BytePtr())
	}
	for _, p := range m.Params {
		params = append(params, irType(p))
	}
	return ir.FuncType(irType(m.Return), params...)
}

// classObject 返回类对象全局（静态 synchronized 方法的锁值）
func (l *Lowerer) classObject(c *types.Class) ir.Value {
	return l.module.Global(layout.ClassObjectSymbol(c), ir.I8)
}
