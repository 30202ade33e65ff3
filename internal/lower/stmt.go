package lower

import (
	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
)

// ============================================================================
// 语句 lowering
// ============================================================================

func (ml *MethodLowering) lowerStmt(s ast.Statement) error {
	switch st := s.(type) {
	case *ast.BlockStmt:
		return ml.lowerBlock(st)
	case *ast.VarDeclStmt:
		return ml.lowerVarDecl(st)
	case *ast.AssignStmt:
		return ml.lowerAssign(st)
	case *ast.IfStmt:
		return ml.lowerIf(st)
	case *ast.WhileStmt:
		return ml.lowerWhile(st)
	case *ast.ReturnStmt:
		return ml.lowerReturn(st)
	case *ast.BreakStmt:
		return ml.lowerBreak(st)
	case *ast.ContinueStmt:
		return ml.lowerContinue(st)
	case *ast.ExprStmt:
		_, err := ml.lowerExpr(st.E)
		return err
	}
	return errors.Internal(errors.L0900, s.Pos(), "unhandled statement %T", s)
}

func (ml *MethodLowering) lowerBlock(b *ast.BlockStmt) error {
	ml.pushScope()
	defer ml.popScope()

	for _, s := range b.Statements {
		// 终结指令之后的语句不可达，直接丢弃
		if ml.fn.InsertPoint().Terminated() {
			break
		}
		if err := ml.lowerStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (ml *MethodLowering) lowerVarDecl(s *ast.VarDeclStmt) error {
	val, err := ml.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	slot := ml.fn.EmitAlloca(val.Type())
	ml.fn.EmitStore(val, slot)
	ml.declareLocal(s.Name.Name, slot)
	return nil
}

func (ml *MethodLowering) lowerAssign(s *ast.AssignStmt) error {
	val, err := ml.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	slot := ml.lookupLocal(s.Name.Name)
	if slot == nil {
		return errors.Internal(errors.L0900, s.Pos(), "assignment to unbound local %q", s.Name.Name)
	}
	ml.fn.EmitStore(val, slot)
	return nil
}

func (ml *MethodLowering) lowerIf(s *ast.IfStmt) error {
	thenBlk := ml.fn.NewBlock("if.then")
	endBlk := ml.fn.NewBlock("if.end")
	elseBlk := endBlk
	if s.Else != nil {
		elseBlk = ml.fn.NewBlock("if.else")
	}

	if err := ml.lowerCondition(s.Condition, thenBlk, elseBlk); err != nil {
		return err
	}

	ml.fn.SetInsertPoint(thenBlk)
	if err := ml.lowerStmt(s.Then); err != nil {
		return err
	}
	ml.fn.BranchUnlessTerminated(endBlk)

	if s.Else != nil {
		ml.fn.SetInsertPoint(elseBlk)
		if err := ml.lowerStmt(s.Else); err != nil {
			return err
		}
		ml.fn.BranchUnlessTerminated(endBlk)
	}

	ml.fn.SetInsertPoint(endBlk)
	return nil
}

func (ml *MethodLowering) lowerReturn(s *ast.ReturnStmt) error {
	if s.Value == nil {
		ml.fn.EmitRet(nil)
		return nil
	}
	val, err := ml.lowerExpr(s.Value)
	if err != nil {
		return err
	}
	ml.fn.EmitRet(val)
	return nil
}

func (ml *MethodLowering) lowerBreak(s *ast.BreakStmt) error {
	loop := ml.currentLoop()
	if loop == nil {
		return errors.New(errors.L0300, s.Pos(), "break outside of loop")
	}
	ml.fn.EmitBr(loop.brk)
	return nil
}

func (ml *MethodLowering) lowerContinue(s *ast.ContinueStmt) error {
	loop := ml.currentLoop()
	if loop == nil {
		return errors.New(errors.L0301, s.Pos(), "continue outside of loop")
	}
	ml.fn.EmitBr(loop.cont)
	return nil
}
