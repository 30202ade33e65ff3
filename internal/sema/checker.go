// Package sema 实现声明绑定与类型检查。
//
// 后端（lower 包）的前置条件是一棵已完成名字解析和类型检查的
// 树：每个调用点都绑定了方法实例和接收者静态类型。sema 负责
// 建立这个前置条件，并在每个调用表达式检查结束时执行一次
// direct-call 分类（见 lower.Classify）。
package sema

import (
	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/lower"
	"github.com/tangzhangming/lumen/internal/token"
	"github.com/tangzhangming/lumen/internal/types"
)

// ============================================================================
// 程序
// ============================================================================

// Program 绑定完成的编译单元
type Program struct {
	Files   []*ast.File
	Classes []*types.Class // 按声明顺序
	Named   map[string]*types.Class

	decls map[*types.Method]*ast.MethodDecl
}

// Resolve 把源代码类型名解析为语义类型
func (p *Program) Resolve(name string) types.Type {
	switch name {
	case "int":
		return types.Int
	case "boolean":
		return types.Bool
	case "void":
		return types.Void
	}
	if c, ok := p.Named[name]; ok {
		return types.Ref(c)
	}
	return nil
}

// Decl 返回方法对应的 AST 声明（抽象方法和接口方法为 nil Body）
func (p *Program) Decl(m *types.Method) *ast.MethodDecl {
	return p.decls[m]
}

// ============================================================================
// 检查器
// ============================================================================

// Checker 声明绑定与类型检查器
type Checker struct {
	reporter *errors.Reporter
	program  *Program

	// 当前检查位置
	file   *ast.File
	class  *types.Class
	method *types.Method
	scopes []map[string]types.Type
}

// NewChecker 创建检查器
func NewChecker(reporter *errors.Reporter) *Checker {
	return &Checker{reporter: reporter}
}

// Check 绑定并检查一组文件
//
// 即使有错误也返回部分构建的 Program，调用方通过 reporter
// 判断是否继续 lowering。
func (c *Checker) Check(files []*ast.File) *Program {
	c.program = &Program{
		Files: files,
		Named: make(map[string]*types.Class),
		decls: make(map[*types.Method]*ast.MethodDecl),
	}

	// 第一遍：声明全部类和接口
	for _, file := range files {
		for _, decl := range file.Declarations {
			c.declareType(decl)
		}
	}

	// 第二遍：解析继承关系和方法签名
	for _, file := range files {
		for _, decl := range file.Declarations {
			c.bindType(decl)
		}
	}

	// 第三遍：检查方法体
	for _, file := range files {
		c.file = file
		for _, decl := range file.Declarations {
			c.checkBodies(decl)
		}
	}

	return c.program
}

// ----------------------------------------------------------------------------
// 声明
// ----------------------------------------------------------------------------

func (c *Checker) declareType(decl ast.Declaration) {
	var name *ast.Identifier
	cls := &types.Class{}

	switch d := decl.(type) {
	case *ast.ClassDecl:
		name = d.Name
		if d.Final {
			cls.Flags |= types.FlagFinal
		}
		if d.Abstract {
			cls.Flags |= types.FlagAbstract
		}
	case *ast.InterfaceDecl:
		name = d.Name
		cls.IsInterface = true
	default:
		return
	}

	if _, exists := c.program.Named[name.Name]; exists {
		c.reporter.Errorf(errors.L0101, name.Pos(), "type %s already declared", name.Name)
		return
	}
	cls.Name = name.Name
	c.program.Named[name.Name] = cls
	c.program.Classes = append(c.program.Classes, cls)
}

func (c *Checker) bindType(decl ast.Declaration) {
	switch d := decl.(type) {
	case *ast.ClassDecl:
		cls := c.program.Named[d.Name.Name]
		if cls == nil {
			return
		}
		if d.Extends != nil {
			parent := c.lookupClass(d.Extends)
			if parent != nil {
				if parent.IsInterface {
					c.reporter.Errorf(errors.L0105, d.Extends.Pos(),
						"cannot extend interface %s", parent.Name)
				} else if parent.Flags.IsFinal() {
					c.reporter.Errorf(errors.L0106, d.Extends.Pos(),
						"cannot extend final class %s", parent.Name)
				} else {
					cls.Parent = parent
				}
			}
		}
		for _, impl := range d.Implements {
			iface := c.lookupClass(impl)
			if iface == nil {
				continue
			}
			if !iface.IsInterface {
				c.reporter.Errorf(errors.L0107, impl.Pos(),
					"%s is not an interface", iface.Name)
				continue
			}
			cls.Interfaces = append(cls.Interfaces, iface)
		}
		for _, m := range d.Methods {
			c.bindMethod(cls, m)
		}

	case *ast.InterfaceDecl:
		cls := c.program.Named[d.Name.Name]
		if cls == nil {
			return
		}
		for _, ext := range d.Extends {
			iface := c.lookupClass(ext)
			if iface == nil {
				continue
			}
			if !iface.IsInterface {
				c.reporter.Errorf(errors.L0107, ext.Pos(),
					"%s is not an interface", iface.Name)
				continue
			}
			cls.Interfaces = append(cls.Interfaces, iface)
		}
		for _, m := range d.Methods {
			c.bindMethod(cls, m)
		}
	}
}

func (c *Checker) bindMethod(cls *types.Class, decl *ast.MethodDecl) {
	m := &types.Method{
		Name:  decl.Name.Name,
		Flags: methodFlags(decl),
	}

	m.Return = c.resolveType(decl.ReturnType)
	for _, p := range decl.Parameters {
		m.Params = append(m.Params, c.resolveType(p.Type))
	}

	cls.AddMethod(m)
	c.program.decls[m] = decl
}

// methodFlags 把 AST 修饰符转换为语义修饰符
func methodFlags(decl *ast.MethodDecl) types.Flags {
	var f types.Flags
	switch decl.Visibility {
	case ast.VisibilityPublic:
		f |= types.FlagPublic
	case ast.VisibilityProtected:
		f |= types.FlagProtected
	case ast.VisibilityPrivate:
		f |= types.FlagPrivate
	}
	if decl.Static {
		f |= types.FlagStatic
	}
	if decl.Final {
		f |= types.FlagFinal
	}
	if decl.Synchronized {
		f |= types.FlagSynchronized
	}
	if decl.Abstract {
		f |= types.FlagAbstract
	}
	return f
}

func (c *Checker) lookupClass(name *ast.Identifier) *types.Class {
	if cls, ok := c.program.Named[name.Name]; ok {
		return cls
	}
	c.reporter.Errorf(errors.L0100, name.Pos(), "undefined type %s", name.Name)
	return nil
}

func (c *Checker) resolveType(t *ast.TypeName) types.Type {
	if ty := c.program.Resolve(t.Name); ty != nil {
		return ty
	}
	c.reporter.Errorf(errors.L0100, t.Pos(), "undefined type %s", t.Name)
	return types.Int
}

// ----------------------------------------------------------------------------
// 方法体检查
// ----------------------------------------------------------------------------

func (c *Checker) checkBodies(decl ast.Declaration) {
	d, ok := decl.(*ast.ClassDecl)
	if !ok {
		return
	}
	cls := c.program.Named[d.Name.Name]
	if cls == nil {
		return
	}

	c.class = cls
	for _, m := range cls.Methods {
		mDecl := c.program.decls[m]
		if mDecl == nil || mDecl.Body == nil {
			continue
		}
		c.method = m
		c.scopes = nil
		c.pushScope()
		for i, p := range mDecl.Parameters {
			c.declare(p.Name, m.Params[i])
		}
		c.checkStmt(mDecl.Body)
		c.popScope()
	}
	c.class = nil
	c.method = nil
}

func (c *Checker) pushScope() {
	c.scopes = append(c.scopes, make(map[string]types.Type))
}

func (c *Checker) popScope() {
	c.scopes = c.scopes[:len(c.scopes)-1]
}

func (c *Checker) declare(name *ast.Identifier, ty types.Type) {
	top := c.scopes[len(c.scopes)-1]
	if _, exists := top[name.Name]; exists {
		c.reporter.Errorf(errors.L0104, name.Pos(), "variable %s already declared", name.Name)
		return
	}
	top[name.Name] = ty
}

func (c *Checker) lookupVar(name string) (types.Type, bool) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if ty, ok := c.scopes[i][name]; ok {
			return ty, true
		}
	}
	return nil, false
}

func (c *Checker) checkStmt(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		c.pushScope()
		for _, inner := range s.Statements {
			c.checkStmt(inner)
		}
		c.popScope()

	case *ast.VarDeclStmt:
		ty := c.resolveType(s.Type)
		valTy := c.checkExpr(s.Value)
		if valTy != nil && !types.AssignableTo(valTy, ty) {
			c.reporter.Errorf(errors.L0200, s.Value.Pos(),
				"cannot assign %s to %s", valTy, ty)
		}
		c.declare(s.Name, ty)

	case *ast.AssignStmt:
		ty, ok := c.lookupVar(s.Name.Name)
		if !ok {
			c.reporter.Errorf(errors.L0103, s.Name.Pos(), "undefined variable %s", s.Name.Name)
			ty = nil
		}
		valTy := c.checkExpr(s.Value)
		if ty != nil && valTy != nil && !types.AssignableTo(valTy, ty) {
			c.reporter.Errorf(errors.L0200, s.Value.Pos(),
				"cannot assign %s to %s", valTy, ty)
		}

	case *ast.IfStmt:
		c.checkCondition(s.Condition)
		c.checkStmt(s.Then)
		if s.Else != nil {
			c.checkStmt(s.Else)
		}

	case *ast.WhileStmt:
		c.checkCondition(s.Condition)
		c.checkStmt(s.Body)

	case *ast.ReturnStmt:
		want := c.method.Return
		if s.Value == nil {
			if !types.Same(want, types.Void) {
				c.reporter.Errorf(errors.L0202, s.Pos(), "missing return value")
			}
			return
		}
		got := c.checkExpr(s.Value)
		if got != nil && !types.AssignableTo(got, want) {
			c.reporter.Errorf(errors.L0202, s.Value.Pos(),
				"cannot return %s from method returning %s", got, want)
		}

	case *ast.BreakStmt, *ast.ContinueStmt:
		// 循环包围检查由 lower 的循环上下文栈承担，
		// 这里不重复维护循环深度。

	case *ast.ExprStmt:
		c.checkExpr(s.E)
	}
}

func (c *Checker) checkCondition(e ast.Expression) {
	ty := c.checkExpr(e)
	if ty != nil && !types.Same(ty, types.Bool) {
		c.reporter.Errorf(errors.L0201, e.Pos(), "condition must be boolean, got %s", ty)
	}
}

// checkExpr 检查表达式并返回静态类型，错误时返回 nil
func (c *Checker) checkExpr(expr ast.Expression) types.Type {
	switch e := expr.(type) {
	case *ast.IntLit:
		return types.Int

	case *ast.BoolLit:
		return types.Bool

	case *ast.ThisExpr:
		if c.method.Flags.IsStatic() {
			c.reporter.Errorf(errors.L0109, e.Pos(), "this in static method")
			return nil
		}
		return types.Ref(c.class)

	case *ast.SuperExpr:
		// super 只允许作为调用目标，由 checkCall 处理
		c.reporter.Errorf(errors.L0108, e.Pos(), "super is only valid as a call target")
		return nil

	case *ast.Identifier:
		if ty, ok := c.lookupVar(e.Name); ok {
			return ty
		}
		c.reporter.Errorf(errors.L0103, e.Pos(), "undefined variable %s", e.Name)
		return nil

	case *ast.UnaryExpr:
		ty := c.checkExpr(e.Operand)
		if ty == nil {
			return nil
		}
		if e.Op.Type == token.NOT {
			if !types.Same(ty, types.Bool) {
				c.reporter.Errorf(errors.L0200, e.Pos(), "operator ! requires boolean, got %s", ty)
			}
			return types.Bool
		}
		if !types.Same(ty, types.Int) {
			c.reporter.Errorf(errors.L0200, e.Pos(), "operator - requires int, got %s", ty)
		}
		return types.Int

	case *ast.BinaryExpr:
		return c.checkBinary(e)

	case *ast.CallExpr:
		return c.checkCall(e)
	}
	return nil
}

func (c *Checker) checkBinary(e *ast.BinaryExpr) types.Type {
	lt := c.checkExpr(e.Left)
	rt := c.checkExpr(e.Right)
	if lt == nil || rt == nil {
		return nil
	}

	switch e.Op.Type {
	case token.PLUS, token.MINUS, token.STAR, token.SLASH, token.PERCENT:
		if !types.Same(lt, types.Int) || !types.Same(rt, types.Int) {
			c.reporter.Errorf(errors.L0200, e.Pos(),
				"operator %s requires int operands", e.Op.Type)
		}
		return types.Int
	case token.LT, token.LE, token.GT, token.GE:
		if !types.Same(lt, types.Int) || !types.Same(rt, types.Int) {
			c.reporter.Errorf(errors.L0200, e.Pos(),
				"operator %s requires int operands", e.Op.Type)
		}
		return types.Bool
	case token.EQ, token.NE:
		if !types.Same(lt, rt) && !types.AssignableTo(lt, rt) && !types.AssignableTo(rt, lt) {
			c.reporter.Errorf(errors.L0200, e.Pos(), "cannot compare %s and %s", lt, rt)
		}
		return types.Bool
	case token.AND, token.OR:
		if !types.Same(lt, types.Bool) || !types.Same(rt, types.Bool) {
			c.reporter.Errorf(errors.L0200, e.Pos(),
				"operator %s requires boolean operands", e.Op.Type)
		}
		return types.Bool
	}
	return nil
}

// ----------------------------------------------------------------------------
// 调用绑定
// ----------------------------------------------------------------------------

// checkCall 绑定调用点并在结束时执行 direct-call 分类
func (c *Checker) checkCall(e *ast.CallExpr) types.Type {
	site := c.file.Sites.Site(e.Site)
	if site == nil {
		c.reporter.Errorf(errors.L0900, e.Pos(), "call has no site record")
		return nil
	}

	arity := len(e.Arguments)
	var m *types.Method

	switch target := e.Target.(type) {
	case nil:
		// m(a)：当前类中查找，隐式 this
		m = c.class.LookupMethod(e.Method.Name, arity)
		if m != nil && m.Flags.IsStatic() {
			site.Kind = ast.CallStatic
		} else {
			site.Kind = ast.CallUnqualified
			site.Recv = types.Ref(c.class)
			if c.method.Flags.IsStatic() {
				c.reporter.Errorf(errors.L0109, e.Pos(),
					"instance method %s called from static context", e.Method.Name)
			}
		}

	case *ast.SuperExpr:
		if c.method.Flags.IsStatic() {
			c.reporter.Errorf(errors.L0109, target.Pos(), "super in static method")
			return nil
		}
		if c.class.Parent == nil {
			c.reporter.Errorf(errors.L0108, target.Pos(),
				"class %s has no superclass", c.class.Name)
			return nil
		}
		m = c.class.Parent.LookupMethod(e.Method.Name, arity)
		site.Kind = ast.CallSuper
		site.Recv = types.Ref(c.class.Parent)

	case *ast.Identifier:
		// 局部变量优先；否则按类名解析为静态调用
		if recvTy, ok := c.lookupVar(target.Name); ok {
			m = c.bindInstanceCall(e, site, recvTy)
		} else if cls, ok := c.program.Named[target.Name]; ok {
			m = cls.LookupMethod(e.Method.Name, arity)
			if m != nil && !m.Flags.IsStatic() {
				c.reporter.Errorf(errors.L0102, e.Pos(),
					"method %s.%s is not static", cls.Name, e.Method.Name)
			}
			site.Kind = ast.CallStatic
		} else {
			c.reporter.Errorf(errors.L0103, target.Pos(), "undefined name %s", target.Name)
			return nil
		}

	default:
		recvTy := c.checkExpr(target)
		if recvTy == nil {
			return nil
		}
		m = c.bindInstanceCall(e, site, recvTy)
	}

	if m == nil {
		c.reporter.Errorf(errors.L0102, e.Pos(), "undefined method %s/%d", e.Method.Name, arity)
		return nil
	}
	site.Method = m

	// 参数检查
	for i, arg := range e.Arguments {
		got := c.checkExpr(arg)
		if got != nil && i < len(m.Params) && !types.AssignableTo(got, m.Params[i]) {
			c.reporter.Errorf(errors.L0200, arg.Pos(),
				"argument %d: cannot use %s as %s", i+1, got, m.Params[i])
		}
	}

	// 类型检查结束，执行一次 direct-call 分类
	lower.Classify(site)

	return m.Return
}

// bindInstanceCall 绑定实例调用并写入接收者静态类型
func (c *Checker) bindInstanceCall(e *ast.CallExpr, site *ast.CallSite, recvTy types.Type) *types.Method {
	ref, ok := recvTy.(*types.Reference)
	if !ok {
		c.reporter.Errorf(errors.L0200, e.Pos(),
			"cannot call method on %s", recvTy)
		return nil
	}
	site.Kind = ast.CallInstance
	site.Recv = recvTy
	return ref.Class.LookupMethod(e.Method.Name, len(e.Arguments))
}
