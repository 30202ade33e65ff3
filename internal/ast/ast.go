// Package ast 定义 Lumen 源语言子集的抽象语法树。
package ast

import (
	"fmt"

	"github.com/tangzhangming/lumen/internal/token"
)

// ============================================================================
// 节点接口
// ============================================================================

// Node AST 节点
type Node interface {
	Pos() token.Position // 起始位置
	String() string      // 调试用的简短描述
}

// Declaration 声明节点
type Declaration interface {
	Node
	declNode()
}

// Statement 语句节点
type Statement interface {
	Node
	stmtNode()
}

// Expression 表达式节点
type Expression interface {
	Node
	exprNode()
}

// ============================================================================
// 文件
// ============================================================================

// File 一个源文件
type File struct {
	Filename     string
	Declarations []Declaration
	Sites        *Arena // 本文件全部调用点记录
}

// ============================================================================
// 声明
// ============================================================================

// TypeName 源代码中的类型名（原始类型名或类/接口名）
type TypeName struct {
	Token token.Token
	Name  string
}

func (t *TypeName) Pos() token.Position { return t.Token.Pos }
func (t *TypeName) String() string      { return t.Name }

// Identifier 标识符
type Identifier struct {
	Token token.Token
	Name  string
}

func (i *Identifier) Pos() token.Position { return i.Token.Pos }
func (i *Identifier) String() string      { return i.Name }
func (i *Identifier) exprNode()           {}

// ClassDecl 类声明
type ClassDecl struct {
	ClassToken token.Token
	Final      bool
	Abstract   bool
	Name       *Identifier
	Extends    *Identifier   // 可为 nil
	Implements []*Identifier // 可为空
	Methods    []*MethodDecl
}

func (d *ClassDecl) Pos() token.Position { return d.ClassToken.Pos }
func (d *ClassDecl) String() string      { return fmt.Sprintf("class %s", d.Name.Name) }
func (d *ClassDecl) declNode()           {}

// InterfaceDecl 接口声明
type InterfaceDecl struct {
	InterfaceToken token.Token
	Name           *Identifier
	Extends        []*Identifier // 继承的接口
	Methods        []*MethodDecl // 只有签名，Body 为 nil
}

func (d *InterfaceDecl) Pos() token.Position { return d.InterfaceToken.Pos }
func (d *InterfaceDecl) String() string      { return fmt.Sprintf("interface %s", d.Name.Name) }
func (d *InterfaceDecl) declNode()           {}

// Visibility 可见性
type Visibility int

const (
	VisibilityPublic Visibility = iota
	VisibilityProtected
	VisibilityPrivate
)

// Param 方法参数
type Param struct {
	Type *TypeName
	Name *Identifier
}

// MethodDecl 方法声明
type MethodDecl struct {
	Visibility   Visibility
	Static       bool
	Final        bool
	Synchronized bool
	Abstract     bool
	ReturnType   *TypeName
	Name         *Identifier
	Parameters   []*Param
	Body         *BlockStmt // 抽象方法和接口方法为 nil
}

func (d *MethodDecl) Pos() token.Position { return d.Name.Pos() }
func (d *MethodDecl) String() string      { return fmt.Sprintf("method %s", d.Name.Name) }
func (d *MethodDecl) declNode()           {}

// ============================================================================
// 语句
// ============================================================================

// BlockStmt 语句块
type BlockStmt struct {
	LBrace     token.Token
	Statements []Statement
}

func (s *BlockStmt) Pos() token.Position { return s.LBrace.Pos }
func (s *BlockStmt) String() string      { return "{...}" }
func (s *BlockStmt) stmtNode()           {}

// VarDeclStmt 局部变量声明
type VarDeclStmt struct {
	Type  *TypeName
	Name  *Identifier
	Value Expression // 必须有初始值
}

func (s *VarDeclStmt) Pos() token.Position { return s.Type.Pos() }
func (s *VarDeclStmt) String() string      { return fmt.Sprintf("%s %s = ...", s.Type.Name, s.Name.Name) }
func (s *VarDeclStmt) stmtNode()           {}

// AssignStmt 赋值语句
type AssignStmt struct {
	Name  *Identifier
	Value Expression
}

func (s *AssignStmt) Pos() token.Position { return s.Name.Pos() }
func (s *AssignStmt) String() string      { return fmt.Sprintf("%s = ...", s.Name.Name) }
func (s *AssignStmt) stmtNode()           {}

// IfStmt if 语句
type IfStmt struct {
	IfToken   token.Token
	Condition Expression
	Then      *BlockStmt
	Else      Statement // *BlockStmt、*IfStmt 或 nil
}

func (s *IfStmt) Pos() token.Position { return s.IfToken.Pos }
func (s *IfStmt) String() string      { return "if (...) {...}" }
func (s *IfStmt) stmtNode()           {}

// WhileStmt while 语句
type WhileStmt struct {
	WhileToken token.Token
	Condition  Expression
	Body       *BlockStmt
}

func (s *WhileStmt) Pos() token.Position { return s.WhileToken.Pos }
func (s *WhileStmt) String() string      { return "while (...) {...}" }
func (s *WhileStmt) stmtNode()           {}

// ReturnStmt return 语句
type ReturnStmt struct {
	ReturnToken token.Token
	Value       Expression // void 返回时为 nil
}

func (s *ReturnStmt) Pos() token.Position { return s.ReturnToken.Pos }
func (s *ReturnStmt) String() string      { return "return" }
func (s *ReturnStmt) stmtNode()           {}

// BreakStmt break 语句
type BreakStmt struct {
	BreakToken token.Token
}

func (s *BreakStmt) Pos() token.Position { return s.BreakToken.Pos }
func (s *BreakStmt) String() string      { return "break" }
func (s *BreakStmt) stmtNode()           {}

// ContinueStmt continue 语句
type ContinueStmt struct {
	ContinueToken token.Token
}

func (s *ContinueStmt) Pos() token.Position { return s.ContinueToken.Pos }
func (s *ContinueStmt) String() string      { return "continue" }
func (s *ContinueStmt) stmtNode()           {}

// ExprStmt 表达式语句
type ExprStmt struct {
	E Expression
}

func (s *ExprStmt) Pos() token.Position { return s.E.Pos() }
func (s *ExprStmt) String() string      { return s.E.String() }
func (s *ExprStmt) stmtNode()           {}

// ============================================================================
// 表达式
// ============================================================================

// IntLit 整数字面量
type IntLit struct {
	Token token.Token
	Value int64
}

func (e *IntLit) Pos() token.Position { return e.Token.Pos }
func (e *IntLit) String() string      { return e.Token.Literal }
func (e *IntLit) exprNode()           {}

// BoolLit 布尔字面量
type BoolLit struct {
	Token token.Token
	Value bool
}

func (e *BoolLit) Pos() token.Position { return e.Token.Pos }
func (e *BoolLit) String() string      { return e.Token.Literal }
func (e *BoolLit) exprNode()           {}

// ThisExpr this 表达式
type ThisExpr struct {
	Token token.Token
}

func (e *ThisExpr) Pos() token.Position { return e.Token.Pos }
func (e *ThisExpr) String() string      { return "this" }
func (e *ThisExpr) exprNode()           {}

// SuperExpr super 表达式（仅作为调用目标出现）
type SuperExpr struct {
	Token token.Token
}

func (e *SuperExpr) Pos() token.Position { return e.Token.Pos }
func (e *SuperExpr) String() string      { return "super" }
func (e *SuperExpr) exprNode()           {}

// BinaryExpr 二元表达式
type BinaryExpr struct {
	Left  Expression
	Op    token.Token
	Right Expression
}

func (e *BinaryExpr) Pos() token.Position { return e.Left.Pos() }
func (e *BinaryExpr) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left, e.Op.Type, e.Right)
}
func (e *BinaryExpr) exprNode() {}

// UnaryExpr 一元表达式
type UnaryExpr struct {
	Op      token.Token
	Operand Expression
}

func (e *UnaryExpr) Pos() token.Position { return e.Op.Pos }
func (e *UnaryExpr) String() string      { return fmt.Sprintf("(%s%s)", e.Op.Type, e.Operand) }
func (e *UnaryExpr) exprNode()           {}

// CallExpr 调用表达式
//
// 四种形式共用同一个节点：
//
//	m(a)            Target == nil，绑定到当前类
//	e.m(a)          Target 为任意表达式
//	super.m(a)      Target 为 *SuperExpr
//	ClassName.m(a)  Target 为 *Identifier，sema 解析为静态调用
//
// 语义信息（绑定的方法、direct 标志）不在节点上，
// 而是通过 Site 索引存放在文件的调用点 Arena 中。
type CallExpr struct {
	Target    Expression // 可为 nil
	Method    *Identifier
	LParen    token.Token
	Arguments []Expression
	Site      SiteID // 调用点记录索引，由 parser 分配
}

func (e *CallExpr) Pos() token.Position {
	if e.Target != nil {
		return e.Target.Pos()
	}
	return e.Method.Pos()
}
func (e *CallExpr) String() string { return fmt.Sprintf("%s(...)", e.Method.Name) }
func (e *CallExpr) exprNode()      {}
