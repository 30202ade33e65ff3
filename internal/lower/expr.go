package lower

import (
	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/ir"
	"github.com/tangzhangming/lumen/internal/token"
)

// ============================================================================
// 表达式 lowering
// ============================================================================

func (ml *MethodLowering) lowerExpr(e ast.Expression) (ir.Value, error) {
	switch ex := e.(type) {
	case *ast.IntLit:
		return ir.ConstInt(ir.I32, ex.Value), nil

	case *ast.BoolLit:
		return ir.ConstBool(ex.Value), nil

	case *ast.ThisExpr:
		this := ml.thisValue()
		if this == nil {
			return nil, errors.Internal(errors.L0900, ex.Pos(), "this in static method survived checking")
		}
		return this, nil

	case *ast.Identifier:
		slot := ml.lookupLocal(ex.Name)
		if slot == nil {
			return nil, errors.Internal(errors.L0900, ex.Pos(), "unbound local %q survived checking", ex.Name)
		}
		return ml.fn.EmitLoad(slot), nil

	case *ast.UnaryExpr:
		return ml.lowerUnary(ex)

	case *ast.BinaryExpr:
		return ml.lowerBinary(ex)

	case *ast.CallExpr:
		return ml.lowerCall(ex)
	}
	return nil, errors.Internal(errors.L0900, e.Pos(), "unhandled expression %T", e)
}

func (ml *MethodLowering) lowerUnary(e *ast.UnaryExpr) (ir.Value, error) {
	v, err := ml.lowerExpr(e.Operand)
	if err != nil {
		return nil, err
	}
	switch e.Op.Type {
	case token.MINUS:
		return ml.fn.EmitNeg(v), nil
	case token.NOT:
		return ml.fn.EmitNot(v), nil
	}
	return nil, errors.Internal(errors.L0900, e.Pos(), "unhandled unary operator %s", e.Op.Type)
}

func (ml *MethodLowering) lowerBinary(e *ast.BinaryExpr) (ir.Value, error) {
	// 值上下文的短路运算：展开为控制流写回结果槽
	if e.Op.Type == token.AND || e.Op.Type == token.OR {
		return ml.lowerShortCircuit(e)
	}

	l, err := ml.lowerExpr(e.Left)
	if err != nil {
		return nil, err
	}
	r, err := ml.lowerExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Op.Type {
	case token.PLUS:
		return ml.fn.EmitBinary(ir.OpAdd, l, r), nil
	case token.MINUS:
		return ml.fn.EmitBinary(ir.OpSub, l, r), nil
	case token.STAR:
		return ml.fn.EmitBinary(ir.OpMul, l, r), nil
	case token.SLASH:
		return ml.fn.EmitBinary(ir.OpDiv, l, r), nil
	case token.PERCENT:
		return ml.fn.EmitBinary(ir.OpRem, l, r), nil
	case token.EQ:
		return ml.fn.EmitICmp(ir.PredEQ, l, r), nil
	case token.NE:
		return ml.fn.EmitICmp(ir.PredNE, l, r), nil
	case token.LT:
		return ml.fn.EmitICmp(ir.PredLT, l, r), nil
	case token.LE:
		return ml.fn.EmitICmp(ir.PredLE, l, r), nil
	case token.GT:
		return ml.fn.EmitICmp(ir.PredGT, l, r), nil
	case token.GE:
		return ml.fn.EmitICmp(ir.PredGE, l, r), nil
	}
	return nil, errors.Internal(errors.L0900, e.Pos(), "unhandled binary operator %s", e.Op.Type)
}

func (ml *MethodLowering) lowerShortCircuit(e *ast.BinaryExpr) (ir.Value, error) {
	fn := ml.fn

	res := fn.EmitAlloca(ir.I1)
	tBlk := fn.NewBlock("bool.true")
	fBlk := fn.NewBlock("bool.false")
	merge := fn.NewBlock("bool.end")

	if err := ml.lowerCondition(e, tBlk, fBlk); err != nil {
		return nil, err
	}

	fn.SetInsertPoint(tBlk)
	fn.EmitStore(ir.ConstBool(true), res)
	fn.EmitBr(merge)

	fn.SetInsertPoint(fBlk)
	fn.EmitStore(ir.ConstBool(false), res)
	fn.EmitBr(merge)

	fn.SetInsertPoint(merge)
	return fn.EmitLoad(res), nil
}
