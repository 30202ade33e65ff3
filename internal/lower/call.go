package lower

import (
	"go.uber.org/zap"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/ir"
	"github.com/tangzhangming/lumen/internal/layout"
	"github.com/tangzhangming/lumen/internal/token"
	"github.com/tangzhangming/lumen/internal/types"
)

// ============================================================================
// 调用计划
// ============================================================================

type planKind int

const (
	// planDirect 符号直呼
	planDirect planKind = iota
	// planClassDispatch 经类派发向量的两次依赖加载
	planClassDispatch
	// planInterfaceDispatch 经运行时查表的接口派发
	planInterfaceDispatch
)

// callPlan 一个调用点的派发决议结果
//
// 带标签的封闭变体：kind 决定哪些字段有效。slot 仅在类
// 派发时有效，iface/index 仅在接口派发时有效。
type callPlan struct {
	kind   planKind
	method *types.Method

	slot int // 类派发：派发向量槽位

	iface *types.Class // 接口派发：接收者的静态接口类型
	index int          // 接口派发：方法表索引
}

// planFor 为调用点决议派发方式
func (ml *MethodLowering) planFor(site *ast.CallSite, pos token.Position) (callPlan, error) {
	m := site.Method

	if site.Direct {
		return callPlan{kind: planDirect, method: m}, nil
	}

	ref, ok := site.Recv.(*types.Reference)
	if !ok {
		return callPlan{}, errors.Internal(errors.L0901, pos,
			"dispatched call to %s has no reference receiver type", m)
	}

	if ref.Class.IsInterface {
		index, ok := ml.l.layout.MethodIndexIn(ref.Class, m)
		if !ok {
			return callPlan{}, errors.Internal(errors.L0902, pos,
				"method %s not in interface table of %s", m, ref.Class.Name)
		}
		ml.l.log.Debug("call plan",
			zap.String("method", m.String()),
			zap.String("kind", "interface"),
			zap.String("iface", ref.Class.Name),
			zap.Int("index", index))
		return callPlan{kind: planInterfaceDispatch, method: m, iface: ref.Class, index: index}, nil
	}

	slot, ok := ml.l.layout.Slot(m)
	if !ok {
		return callPlan{}, errors.Internal(errors.L0902, pos,
			"dispatched method %s has no vector slot", m)
	}
	ml.l.log.Debug("call plan",
		zap.String("method", m.String()),
		zap.String("kind", "class"),
		zap.Int("slot", slot))
	return callPlan{kind: planClassDispatch, method: m, slot: slot}, nil
}

// ============================================================================
// 调用 lowering
// ============================================================================

func (ml *MethodLowering) lowerCall(e *ast.CallExpr) (ir.Value, error) {
	site := ml.sites.Site(e.Site)
	if site == nil || site.Method == nil {
		return nil, errors.Internal(errors.L0901, e.Pos(), "call site %q has no binding", e.Method.Name)
	}

	// 接收者先于实参求值
	var recv ir.Value
	var err error
	switch site.Kind {
	case ast.CallStatic:
		// 无接收者
	case ast.CallUnqualified, ast.CallSuper:
		recv = ml.thisValue()
		if recv == nil {
			return nil, errors.Internal(errors.L0901, e.Pos(), "instance call %q in static method", e.Method.Name)
		}
	case ast.CallInstance:
		recv, err = ml.lowerExpr(e.Target)
		if err != nil {
			return nil, err
		}
	}

	args := make([]ir.Value, 0, len(e.Arguments))
	for _, a := range e.Arguments {
		v, err := ml.lowerExpr(a)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}

	if site.Method.Flags.IsSynchronized() {
		return ml.lowerSynchronizedCall(site, e.Pos(), recv, args)
	}
	return ml.emitCall(site, e.Pos(), recv, args)
}

// emitCall 发射调用本体
//
// 决议派发、构造函数指针、带上当前 landing pad 作为
// unwind 边。void 调用的翻译结果是 unit 占位值。
func (ml *MethodLowering) emitCall(site *ast.CallSite, pos token.Position, recv ir.Value, args []ir.Value) (ir.Value, error) {
	plan, err := ml.planFor(site, pos)
	if err != nil {
		return nil, err
	}

	fnPtr, err := ml.buildFuncPtr(plan, recv)
	if err != nil {
		return nil, err
	}

	callArgs := args
	if !plan.method.Flags.IsStatic() {
		callArgs = append([]ir.Value{recv}, args...)
	}

	call := ml.fn.EmitCall(fnPtr, callArgs, ml.currentLandingPad())
	if p, ok := plan.method.Return.(*types.Primitive); ok && p.Kind == types.PrimVoid {
		return ir.UnitValue, nil
	}
	return call, nil
}

// buildFuncPtr 按调用计划构造被调函数指针
func (ml *MethodLowering) buildFuncPtr(plan callPlan, recv ir.Value) (ir.Value, error) {
	m := plan.method
	fnTy := ml.l.funcIRType(m)

	switch plan.kind {
	case planDirect:
		return ml.l.module.FuncRef(m.Symbol(), fnTy), nil

	case planClassDispatch:
		// 两次依赖加载：对象头取派发向量，向量取槽位
		dvAddr := ml.fn.EmitSlotAddr(recv, 0, ir.BytePtr())
		dv := ml.fn.EmitLoad(dvAddr)
		slotAddr := ml.fn.EmitSlotAddr(dv, plan.slot, ir.PointerTo(fnTy))
		return ml.fn.EmitLoad(slotAddr), nil

	case planInterfaceDispatch:
		obj := ml.fn.EmitBitcast(recv, ir.BytePtr())
		hash := ir.ConstInt(ir.I32, int64(layout.Hash(plan.iface)))
		identity := ml.l.module.Global(layout.IdentitySymbol(plan.iface), ir.I8)
		index := ir.ConstInt(ir.I32, int64(plan.index))

		lookup := ml.l.module.Extern(GetInterfaceMethodFunc, getInterfaceMethodSig())
		raw := ml.fn.EmitCall(lookup, []ir.Value{obj, hash, identity, index}, nil)
		return ml.fn.EmitBitcast(raw, ir.PointerTo(fnTy)), nil
	}
	return nil, errors.Internal(errors.L0900, token.Position{}, "unknown call plan kind %d", plan.kind)
}

// ============================================================================
// synchronized 调用展开
// ============================================================================

// lowerSynchronizedCall 展开对 synchronized 方法的调用
//
// 调用点代为执行加锁协议：
//
//	monitorEnter(lock)
//	r = call ... unwind lpad   ; 受保护的调用本体
//	monitorExit(lock)
//	br end
//	lpad:  %exn = landingpad
//	       monitorExit(lock)   ; 异常路径同样释放锁
//	       throw %exn unwind 外层pad
//	       unreachable
//	end:
//
// 锁值：静态方法锁类对象，实例方法锁接收者。每条路径
// 恰好一次 monitorExit，且与 monitorEnter 锁同一个值。
func (ml *MethodLowering) lowerSynchronizedCall(site *ast.CallSite, pos token.Position, recv ir.Value, args []ir.Value) (ir.Value, error) {
	fn := ml.fn
	m := site.Method

	// 锁值在压帧之前求好，两条路径都要用
	var lock ir.Value
	if m.Flags.IsStatic() {
		lock = ml.l.classObject(m.Owner)
	} else {
		lock = recv
	}

	lpad := fn.NewBlock("sync.lpad")
	end := fn.NewBlock("sync.end")

	// 外层 pad 在压帧之前取：重抛要落到外面，不能落回自己
	outer := ml.currentLandingPad()
	ml.pushFrame(&ExceptionFrame{Lpad: lpad})

	// landing pad 要求函数挂 personality 例程
	ml.l.module.Extern(PersonalityFunc, personalitySig())

	monEnter := ml.l.module.Extern(MonitorEnterFunc, monitorSig())
	monExit := ml.l.module.Extern(MonitorExitFunc, monitorSig())

	// monitor 操作本身不抛异常，不带 unwind 边
	fn.EmitCall(monEnter, []ir.Value{lock}, nil)

	ret, err := ml.emitCall(site, pos, recv, args)
	if err != nil {
		ml.popFrame()
		return nil, err
	}

	fn.EmitCall(monExit, []ir.Value{lock}, nil)
	fn.EmitBr(end)

	// 异常路径：先弹帧再重抛，避免重抛又落回本帧
	fn.SetInsertPoint(lpad)
	exn := fn.EmitLandingPad()
	ml.popFrame()
	fn.EmitCall(monExit, []ir.Value{lock}, nil)

	throw := ml.l.module.ExternNoReturn(ThrowExceptionFunc, throwSig())
	fn.EmitCall(throw, []ir.Value{exn}, outer)
	fn.EmitUnreachable()

	fn.SetInsertPoint(end)
	return ret, nil
}
