package lower

import "github.com/tangzhangming/lumen/internal/ast"

// ============================================================================
// 循环 lowering
// ============================================================================

// lowerWhile 把结构化 while 循环 lowering 为三块 CFG
//
//	       br while.cond
//	while.cond: 条件求值，二路跳转 body / end
//	while.body: 循环体；自然落空时回跳 while.cond
//	while.end:  循环后继续
//
// 循环上下文在循环体 lowering 期间在栈上：continue 跳
// while.cond，break 跳 while.end。三个块先于循环体创建，
// 体内嵌套循环的新块排在其后，标签序号即创建次序。
func (ml *MethodLowering) lowerWhile(s *ast.WhileStmt) error {
	fn := ml.fn

	cond := fn.NewBlock("while.cond")
	body := fn.NewBlock("while.body")
	end := fn.NewBlock("while.end")

	ml.pushLoop(cond, end)
	defer ml.popLoop()

	fn.EmitBr(cond)
	fn.SetInsertPoint(cond)
	if err := ml.lowerCondition(s.Condition, body, end); err != nil {
		return err
	}

	fn.SetInsertPoint(body)
	if err := ml.lowerStmt(s.Body); err != nil {
		return err
	}
	// 循环体可能已经以 break/continue/return 终结，
	// 只有自然落空的路径才补回跳。
	fn.BranchUnlessTerminated(cond)

	fn.SetInsertPoint(end)
	return nil
}
