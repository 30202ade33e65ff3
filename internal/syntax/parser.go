package syntax

import (
	"strconv"

	"github.com/tangzhangming/lumen/internal/ast"
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/token"
)

// maxExprDepth 最大表达式嵌套深度，防止栈溢出
const maxExprDepth = 200

// ============================================================================
// 语法分析器
// ============================================================================

// Parser 语法分析器
type Parser struct {
	tokens    []token.Token
	current   int
	errors    []*errors.CompileError
	filename  string
	panicMode bool // 错误恢复模式标志，用于避免级联报错
	exprDepth int  // 表达式解析深度
	sites     *ast.Arena
}

// New 创建一个新的语法分析器
func New(source, filename string) *Parser {
	l := NewLexer(source, filename)
	tokens := l.ScanTokens()

	return &Parser{
		tokens:   tokens,
		filename: filename,
		errors:   l.Errors(),
		sites:    ast.NewArena(),
	}
}

// Parse 解析源文件
func (p *Parser) Parse() *ast.File {
	file := &ast.File{
		Filename: p.filename,
		Sites:    p.sites,
	}

	for !p.isAtEnd() {
		p.panicMode = false
		decl := p.parseDeclaration()
		if p.panicMode {
			p.synchronize()
		} else if decl != nil {
			file.Declarations = append(file.Declarations, decl)
		}
	}

	return file
}

// Errors 返回语法错误
func (p *Parser) Errors() []*errors.CompileError {
	return p.errors
}

// HasErrors 是否存在语法错误
func (p *Parser) HasErrors() bool {
	return len(p.errors) > 0
}

// ----------------------------------------------------------------------------
// Token 辅助函数
// ----------------------------------------------------------------------------

func (p *Parser) peek() token.Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() token.Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == token.EOF
}

func (p *Parser) advance() token.Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(t token.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(types ...token.TokenType) bool {
	for _, t := range types {
		if p.check(t) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(t token.TokenType, message string) token.Token {
	if p.check(t) {
		return p.advance()
	}
	p.errorAtCurrent(errors.L0004, message)
	return p.peek()
}

func (p *Parser) errorAtCurrent(code, message string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errors = append(p.errors, errors.New(code, p.peek().Pos, "%s, got %s", message, p.peek().Type))
}

// synchronize 错误恢复：跳到下一个可能的声明/语句边界
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.previous().Type == token.SEMICOLON {
			return
		}
		switch p.peek().Type {
		case token.CLASS, token.INTERFACE, token.RBRACE,
			token.IF, token.WHILE, token.RETURN:
			return
		}
		p.advance()
	}
}

// ----------------------------------------------------------------------------
// 声明
// ----------------------------------------------------------------------------

func (p *Parser) parseDeclaration() ast.Declaration {
	final := false
	abstract := false
	for {
		if p.match(token.FINAL) {
			final = true
			continue
		}
		if p.match(token.ABSTRACT) {
			abstract = true
			continue
		}
		break
	}

	switch {
	case p.match(token.CLASS):
		return p.parseClass(final, abstract)
	case p.match(token.INTERFACE):
		return p.parseInterface()
	default:
		p.errorAtCurrent(errors.L0005, "expected class or interface declaration")
		p.advance()
		return nil
	}
}

func (p *Parser) parseClass(final, abstract bool) *ast.ClassDecl {
	classToken := p.previous()
	name := p.parseIdentifier("expected class name")

	decl := &ast.ClassDecl{
		ClassToken: classToken,
		Final:      final,
		Abstract:   abstract,
		Name:       name,
	}

	if p.match(token.EXTENDS) {
		decl.Extends = p.parseIdentifier("expected superclass name")
	}
	if p.match(token.IMPLEMENTS) {
		for {
			decl.Implements = append(decl.Implements, p.parseIdentifier("expected interface name"))
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.consume(token.LBRACE, "expected '{' before class body")
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		m := p.parseMethod(false)
		if m != nil {
			decl.Methods = append(decl.Methods, m)
		}
		if p.panicMode {
			p.synchronize()
			p.panicMode = false
		}
	}
	p.consume(token.RBRACE, "expected '}' after class body")

	return decl
}

func (p *Parser) parseInterface() *ast.InterfaceDecl {
	ifaceToken := p.previous()
	name := p.parseIdentifier("expected interface name")

	decl := &ast.InterfaceDecl{
		InterfaceToken: ifaceToken,
		Name:           name,
	}

	if p.match(token.EXTENDS) {
		for {
			decl.Extends = append(decl.Extends, p.parseIdentifier("expected interface name"))
			if !p.match(token.COMMA) {
				break
			}
		}
	}

	p.consume(token.LBRACE, "expected '{' before interface body")
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		m := p.parseMethod(true)
		if m != nil {
			decl.Methods = append(decl.Methods, m)
		}
		if p.panicMode {
			p.synchronize()
			p.panicMode = false
		}
	}
	p.consume(token.RBRACE, "expected '}' after interface body")

	return decl
}

// parseMethod 解析方法声明
//
// signatureOnly 为 true 时（接口方法）不允许方法体。
func (p *Parser) parseMethod(signatureOnly bool) *ast.MethodDecl {
	decl := &ast.MethodDecl{Visibility: ast.VisibilityPublic}

	// 修饰符，顺序不限
	for modifiers := true; modifiers; {
		switch {
		case p.match(token.PUBLIC):
			decl.Visibility = ast.VisibilityPublic
		case p.match(token.PROTECTED):
			decl.Visibility = ast.VisibilityProtected
		case p.match(token.PRIVATE):
			decl.Visibility = ast.VisibilityPrivate
		case p.match(token.STATIC):
			decl.Static = true
		case p.match(token.FINAL):
			decl.Final = true
		case p.match(token.SYNCHRONIZED):
			decl.Synchronized = true
		case p.match(token.ABSTRACT):
			decl.Abstract = true
		default:
			modifiers = false
		}
	}

	decl.ReturnType = p.parseTypeName("expected return type")
	decl.Name = p.parseIdentifier("expected method name")

	p.consume(token.LPAREN, "expected '(' after method name")
	if !p.check(token.RPAREN) {
		for {
			param := &ast.Param{
				Type: p.parseTypeName("expected parameter type"),
				Name: p.parseIdentifier("expected parameter name"),
			}
			decl.Parameters = append(decl.Parameters, param)
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expected ')' after parameters")

	if signatureOnly || decl.Abstract {
		p.consume(token.SEMICOLON, "expected ';' after method signature")
		return decl
	}

	p.consume(token.LBRACE, "expected '{' before method body")
	decl.Body = p.parseBlockBody(p.previous())
	return decl
}

func (p *Parser) parseIdentifier(message string) *ast.Identifier {
	tok := p.consume(token.IDENT, message)
	return &ast.Identifier{Token: tok, Name: tok.Literal}
}

func (p *Parser) parseTypeName(message string) *ast.TypeName {
	if p.match(token.INT_TYPE, token.BOOL_TYPE, token.VOID, token.IDENT) {
		tok := p.previous()
		return &ast.TypeName{Token: tok, Name: tok.Literal}
	}
	p.errorAtCurrent(errors.L0004, message)
	return &ast.TypeName{Token: p.peek(), Name: p.peek().Literal}
}

// ----------------------------------------------------------------------------
// 语句
// ----------------------------------------------------------------------------

// parseBlockBody 解析语句块，LBRACE 已被消费
func (p *Parser) parseBlockBody(lbrace token.Token) *ast.BlockStmt {
	block := &ast.BlockStmt{LBrace: lbrace}
	for !p.check(token.RBRACE) && !p.isAtEnd() {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.panicMode {
			p.synchronize()
			p.panicMode = false
		}
	}
	p.consume(token.RBRACE, "expected '}' after block")
	return block
}

func (p *Parser) parseStatement() ast.Statement {
	switch {
	case p.match(token.LBRACE):
		return p.parseBlockBody(p.previous())
	case p.match(token.IF):
		return p.parseIf()
	case p.match(token.WHILE):
		return p.parseWhile()
	case p.match(token.RETURN):
		return p.parseReturn()
	case p.match(token.BREAK):
		tok := p.previous()
		p.consume(token.SEMICOLON, "expected ';' after break")
		return &ast.BreakStmt{BreakToken: tok}
	case p.match(token.CONTINUE):
		tok := p.previous()
		p.consume(token.SEMICOLON, "expected ';' after continue")
		return &ast.ContinueStmt{ContinueToken: tok}
	case p.check(token.INT_TYPE) || p.check(token.BOOL_TYPE):
		return p.parseVarDecl()
	}
	return p.parseSimpleStatement()
}

func (p *Parser) parseIf() ast.Statement {
	ifToken := p.previous()
	p.consume(token.LPAREN, "expected '(' after if")
	cond := p.parseExpression()
	p.consume(token.RPAREN, "expected ')' after condition")
	p.consume(token.LBRACE, "expected '{' after if condition")
	then := p.parseBlockBody(p.previous())

	stmt := &ast.IfStmt{IfToken: ifToken, Condition: cond, Then: then}
	if p.match(token.ELSE) {
		if p.match(token.IF) {
			stmt.Else = p.parseIf()
		} else {
			p.consume(token.LBRACE, "expected '{' after else")
			stmt.Else = p.parseBlockBody(p.previous())
		}
	}
	return stmt
}

func (p *Parser) parseWhile() ast.Statement {
	whileToken := p.previous()
	p.consume(token.LPAREN, "expected '(' after while")
	cond := p.parseExpression()
	p.consume(token.RPAREN, "expected ')' after condition")
	p.consume(token.LBRACE, "expected '{' after while condition")
	body := p.parseBlockBody(p.previous())
	return &ast.WhileStmt{WhileToken: whileToken, Condition: cond, Body: body}
}

func (p *Parser) parseReturn() ast.Statement {
	returnToken := p.previous()
	stmt := &ast.ReturnStmt{ReturnToken: returnToken}
	if !p.check(token.SEMICOLON) {
		stmt.Value = p.parseExpression()
	}
	p.consume(token.SEMICOLON, "expected ';' after return")
	return stmt
}

func (p *Parser) parseVarDecl() ast.Statement {
	typ := p.parseTypeName("expected type")
	name := p.parseIdentifier("expected variable name")
	p.consume(token.ASSIGN, "expected '=' in variable declaration")
	value := p.parseExpression()
	p.consume(token.SEMICOLON, "expected ';' after declaration")
	return &ast.VarDeclStmt{Type: typ, Name: name, Value: value}
}

// parseSimpleStatement 赋值或表达式语句
func (p *Parser) parseSimpleStatement() ast.Statement {
	// `x = e;` 需要一个 token 的前瞻来与表达式语句区分
	if p.check(token.IDENT) && p.tokens[p.current+1].Type == token.ASSIGN {
		name := p.parseIdentifier("expected variable name")
		p.advance() // =
		value := p.parseExpression()
		p.consume(token.SEMICOLON, "expected ';' after assignment")
		return &ast.AssignStmt{Name: name, Value: value}
	}

	expr := p.parseExpression()
	p.consume(token.SEMICOLON, "expected ';' after expression")
	if expr == nil {
		return nil
	}
	return &ast.ExprStmt{E: expr}
}

// ----------------------------------------------------------------------------
// 表达式（递归下降，按优先级分层）
// ----------------------------------------------------------------------------

func (p *Parser) parseExpression() ast.Expression {
	p.exprDepth++
	defer func() { p.exprDepth-- }()
	if p.exprDepth > maxExprDepth {
		p.errorAtCurrent(errors.L0001, "expression too deeply nested")
		return nil
	}
	return p.parseOr()
}

func (p *Parser) parseOr() ast.Expression {
	left := p.parseAnd()
	for p.match(token.OR) {
		op := p.previous()
		right := p.parseAnd()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseAnd() ast.Expression {
	left := p.parseEquality()
	for p.match(token.AND) {
		op := p.previous()
		right := p.parseEquality()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseEquality() ast.Expression {
	left := p.parseComparison()
	for p.match(token.EQ, token.NE) {
		op := p.previous()
		right := p.parseComparison()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseComparison() ast.Expression {
	left := p.parseTerm()
	for p.match(token.LT, token.LE, token.GT, token.GE) {
		op := p.previous()
		right := p.parseTerm()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseTerm() ast.Expression {
	left := p.parseFactor()
	for p.match(token.PLUS, token.MINUS) {
		op := p.previous()
		right := p.parseFactor()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseFactor() ast.Expression {
	left := p.parseUnary()
	for p.match(token.STAR, token.SLASH, token.PERCENT) {
		op := p.previous()
		right := p.parseUnary()
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	if p.match(token.NOT, token.MINUS) {
		op := p.previous()
		operand := p.parseUnary()
		return &ast.UnaryExpr{Op: op, Operand: operand}
	}
	return p.parseCallChain()
}

// parseCallChain 解析主表达式及其后缀调用链
func (p *Parser) parseCallChain() ast.Expression {
	expr := p.parsePrimary()

	for p.match(token.DOT) {
		method := p.parseIdentifier("expected method name after '.'")
		expr = p.finishCall(expr, method)
	}
	return expr
}

// finishCall 解析调用的参数表并分配调用点记录
func (p *Parser) finishCall(target ast.Expression, method *ast.Identifier) *ast.CallExpr {
	lparen := p.consume(token.LPAREN, "expected '(' after method name")

	call := &ast.CallExpr{
		Target: target,
		Method: method,
		LParen: lparen,
		Site:   p.sites.NewSite(),
	}
	if !p.check(token.RPAREN) {
		for {
			call.Arguments = append(call.Arguments, p.parseExpression())
			if !p.match(token.COMMA) {
				break
			}
		}
	}
	p.consume(token.RPAREN, "expected ')' after arguments")
	return call
}

func (p *Parser) parsePrimary() ast.Expression {
	switch {
	case p.match(token.INT):
		tok := p.previous()
		value, err := strconv.ParseInt(tok.Literal, 10, 64)
		if err != nil {
			p.errorAtCurrent(errors.L0003, "invalid integer literal")
		}
		return &ast.IntLit{Token: tok, Value: value}

	case p.match(token.TRUE):
		return &ast.BoolLit{Token: p.previous(), Value: true}

	case p.match(token.FALSE):
		return &ast.BoolLit{Token: p.previous(), Value: false}

	case p.match(token.THIS):
		return &ast.ThisExpr{Token: p.previous()}

	case p.match(token.SUPER):
		return &ast.SuperExpr{Token: p.previous()}

	case p.match(token.IDENT):
		tok := p.previous()
		ident := &ast.Identifier{Token: tok, Name: tok.Literal}
		// `m(...)` 形式的无限定调用
		if p.check(token.LPAREN) {
			return p.finishCall(nil, ident)
		}
		return ident

	case p.match(token.LPAREN):
		expr := p.parseExpression()
		p.consume(token.RPAREN, "expected ')' after expression")
		return expr
	}

	p.errorAtCurrent(errors.L0005, "expected expression")
	p.advance()
	return nil
}
