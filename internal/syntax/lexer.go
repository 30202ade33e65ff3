// Package syntax 实现 Lumen 源语言子集的词法与语法分析。
//
// 前端刻意保持最小：它只负责把源文本变成带调用点记录的 AST，
// 真正的工作都在 sema 和 lower 里。
package syntax

import (
	"github.com/tangzhangming/lumen/internal/errors"
	"github.com/tangzhangming/lumen/internal/token"
)

// ============================================================================
// 词法分析器
// ============================================================================

// Lexer 词法分析器
type Lexer struct {
	source   string
	filename string
	start    int // 当前 token 的起始偏移
	current  int // 当前扫描偏移
	line     int
	column   int // 当前 token 起始列
	col      int // 当前扫描列
	errors   []*errors.CompileError
}

// NewLexer 创建词法分析器
func NewLexer(source, filename string) *Lexer {
	return &Lexer{
		source:   source,
		filename: filename,
		line:     1,
		col:      1,
	}
}

// ScanTokens 扫描全部 token
func (l *Lexer) ScanTokens() []token.Token {
	var tokens []token.Token
	for {
		tok := l.next()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}

// Errors 返回词法错误
func (l *Lexer) Errors() []*errors.CompileError {
	return l.errors
}

// HasErrors 是否存在词法错误
func (l *Lexer) HasErrors() bool {
	return len(l.errors) > 0
}

func (l *Lexer) pos() token.Position {
	return token.Position{Filename: l.filename, Line: l.line, Column: l.column}
}

func (l *Lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *Lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *Lexer) advance() byte {
	c := l.source[l.current]
	l.current++
	if c == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return c
}

func (l *Lexer) match(expected byte) bool {
	if l.isAtEnd() || l.source[l.current] != expected {
		return false
	}
	l.advance()
	return true
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		switch l.peek() {
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if l.peekNext() == '/' {
				// 行注释
				for !l.isAtEnd() && l.peek() != '\n' {
					l.advance()
				}
			} else if l.peekNext() == '*' {
				l.skipBlockComment()
			} else {
				return
			}
		default:
			return
		}
	}
}

func (l *Lexer) skipBlockComment() {
	l.advance() // /
	l.advance() // *
	for !l.isAtEnd() {
		if l.peek() == '*' && l.peekNext() == '/' {
			l.advance()
			l.advance()
			return
		}
		l.advance()
	}
}

func (l *Lexer) make(t token.TokenType) token.Token {
	return token.New(t, l.source[l.start:l.current], l.pos())
}

func (l *Lexer) next() token.Token {
	l.skipWhitespace()
	l.start = l.current
	l.column = l.col

	if l.isAtEnd() {
		return token.New(token.EOF, "", l.pos())
	}

	c := l.advance()

	switch {
	case isAlpha(c):
		return l.identifier()
	case isDigit(c):
		return l.number()
	}

	switch c {
	case '(':
		return l.make(token.LPAREN)
	case ')':
		return l.make(token.RPAREN)
	case '{':
		return l.make(token.LBRACE)
	case '}':
		return l.make(token.RBRACE)
	case ',':
		return l.make(token.COMMA)
	case ';':
		return l.make(token.SEMICOLON)
	case '.':
		return l.make(token.DOT)
	case '+':
		return l.make(token.PLUS)
	case '-':
		return l.make(token.MINUS)
	case '*':
		return l.make(token.STAR)
	case '/':
		return l.make(token.SLASH)
	case '%':
		return l.make(token.PERCENT)
	case '=':
		if l.match('=') {
			return l.make(token.EQ)
		}
		return l.make(token.ASSIGN)
	case '!':
		if l.match('=') {
			return l.make(token.NE)
		}
		return l.make(token.NOT)
	case '<':
		if l.match('=') {
			return l.make(token.LE)
		}
		return l.make(token.LT)
	case '>':
		if l.match('=') {
			return l.make(token.GE)
		}
		return l.make(token.GT)
	case '&':
		if l.match('&') {
			return l.make(token.AND)
		}
	case '|':
		if l.match('|') {
			return l.make(token.OR)
		}
	}

	l.errors = append(l.errors,
		errors.New(errors.L0002, l.pos(), "unexpected character %q", string(c)))
	return l.make(token.ILLEGAL)
}

func (l *Lexer) identifier() token.Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}
	text := l.source[l.start:l.current]
	return token.New(token.LookupIdent(text), text, l.pos())
}

func (l *Lexer) number() token.Token {
	for isDigit(l.peek()) {
		l.advance()
	}
	return l.make(token.INT)
}

func isAlpha(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
