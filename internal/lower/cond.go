package lower

import (
	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/ir"
	"github.com/tangzhangming/lumen/internal/token"
)

// ============================================================================
// 条件 lowering
// ============================================================================

// lowerCondition 把条件表达式 lowering 为二路跳转
//
// && 和 || 按短路语义展开为块级控制流，! 交换两个目标；
// 其余表达式求值为 i1 后发射 condbr。调用后当前块已终结。
func (ml *MethodLowering) lowerCondition(e ast.Expression, ifTrue, ifFalse *ir.Block) error {
	switch ex := e.(type) {
	case *ast.BinaryExpr:
		switch ex.Op.Type {
		case token.AND:
			rhs := ml.fn.NewBlock("and.rhs")
			if err := ml.lowerCondition(ex.Left, rhs, ifFalse); err != nil {
				return err
			}
			ml.fn.SetInsertPoint(rhs)
			return ml.lowerCondition(ex.Right, ifTrue, ifFalse)
		case token.OR:
			rhs := ml.fn.NewBlock("or.rhs")
			if err := ml.lowerCondition(ex.Left, ifTrue, rhs); err != nil {
				return err
			}
			ml.fn.SetInsertPoint(rhs)
			return ml.lowerCondition(ex.Right, ifTrue, ifFalse)
		}
	case *ast.UnaryExpr:
		if ex.Op.Type == token.NOT {
			return ml.lowerCondition(ex.Operand, ifFalse, ifTrue)
		}
	}

	v, err := ml.lowerExpr(e)
	if err != nil {
		return err
	}
	ml.fn.EmitCondBr(v, ifTrue, ifFalse)
	return nil
}
