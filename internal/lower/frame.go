package lower

import "github.com/tangzhangming/lumen/internal/ir"

// ============================================================================
// 异常帧栈
// ============================================================================

// ExceptionFrame 一层异常处理帧
//
// 帧在作用域内决定 unwind 边的落点；链表组织，表头即最
// 内层帧。帧内抛出的异常落到 Lpad，pad 重抛时落到外层帧。
type ExceptionFrame struct {
	Lpad  *ir.Block
	Outer *ExceptionFrame
}

// pushFrame 进入受保护区域时压入异常帧
func (ml *MethodLowering) pushFrame(f *ExceptionFrame) {
	f.Outer = ml.frame
	ml.frame = f

	depth := 0
	for cur := ml.frame; cur != nil; cur = cur.Outer {
		depth++
	}
	if depth > ml.maxFrameDepth {
		ml.maxFrameDepth = depth
	}
}

// popFrame 离开受保护区域时弹出
func (ml *MethodLowering) popFrame() {
	ml.frame = ml.frame.Outer
}

// currentLandingPad 返回当前帧的 landing pad
//
// 不在任何帧内时为 nil，调用不带 unwind 边，异常直接
// 沿调用栈向上传播。
func (ml *MethodLowering) currentLandingPad() *ir.Block {
	if ml.frame == nil {
		return nil
	}
	return ml.frame.Lpad
}

// FrameDepth 当前异常帧栈深度（测试用）
func (ml *MethodLowering) FrameDepth() int {
	depth := 0
	for cur := ml.frame; cur != nil; cur = cur.Outer {
		depth++
	}
	return depth
}

// MaxFrameDepth lowering 过程中观测到的最大异常帧深度（测试用）
func (ml *MethodLowering) MaxFrameDepth() int {
	return ml.maxFrameDepth
}
