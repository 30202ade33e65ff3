package lower

import (
	"testing"

	"github.com/tangzhangming/lumen/internal/ir"
)

// ============================================================================
// 循环上下文栈与异常帧栈
// ============================================================================

func TestLoopStack(t *testing.T) {
	ml := &MethodLowering{}
	cond := &ir.Block{Label: "while.cond"}
	end := &ir.Block{Label: "while.end"}

	if ml.currentLoop() != nil {
		t.Fatal("expected no loop context initially")
	}

	ml.pushLoop(cond, end)
	loop := ml.currentLoop()
	if loop == nil || loop.cont != cond || loop.brk != end {
		t.Fatal("loop context targets wrong")
	}
	if ml.LoopDepth() != 1 {
		t.Errorf("LoopDepth = %d, want 1", ml.LoopDepth())
	}

	cond2 := &ir.Block{Label: "while.cond.1"}
	end2 := &ir.Block{Label: "while.end.1"}
	ml.pushLoop(cond2, end2)
	if got := ml.currentLoop(); got.cont != cond2 {
		t.Error("inner loop not on top of stack")
	}

	ml.popLoop()
	if got := ml.currentLoop(); got.cont != cond {
		t.Error("outer loop not restored after pop")
	}
	ml.popLoop()

	if ml.LoopDepth() != 0 {
		t.Errorf("LoopDepth = %d after balanced push/pop, want 0", ml.LoopDepth())
	}
	if ml.MaxLoopDepth() != 2 {
		t.Errorf("MaxLoopDepth = %d, want 2", ml.MaxLoopDepth())
	}
}

func TestFrameStack(t *testing.T) {
	ml := &MethodLowering{}

	if ml.currentLandingPad() != nil {
		t.Fatal("expected no landing pad outside of any frame")
	}

	outer := &ir.Block{Label: "sync.lpad"}
	inner := &ir.Block{Label: "sync.lpad.1"}

	ml.pushFrame(&ExceptionFrame{Lpad: outer})
	if ml.currentLandingPad() != outer {
		t.Error("outer pad not current")
	}

	ml.pushFrame(&ExceptionFrame{Lpad: inner})
	if ml.currentLandingPad() != inner {
		t.Error("inner pad not current")
	}
	if ml.FrameDepth() != 2 {
		t.Errorf("FrameDepth = %d, want 2", ml.FrameDepth())
	}

	// 弹出内层帧后，unwind 落点回到外层 pad
	ml.popFrame()
	if ml.currentLandingPad() != outer {
		t.Error("pop did not restore outer pad")
	}

	ml.popFrame()
	if ml.FrameDepth() != 0 {
		t.Errorf("FrameDepth = %d after balanced push/pop, want 0", ml.FrameDepth())
	}
	if ml.MaxFrameDepth() != 2 {
		t.Errorf("MaxFrameDepth = %d, want 2", ml.MaxFrameDepth())
	}
}
