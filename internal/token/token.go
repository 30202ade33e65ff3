package token

import "fmt"

// ============================================================================
// Token 类型定义
// ============================================================================
//
// TokenType 使用 iota 自动编号，按类别分组：
// 1. 特殊标记（ILLEGAL, EOF）
// 2. 字面量（标识符、整数）
// 3. 运算符与分隔符
// 4. 关键字（声明、修饰符、控制流、类型）
//
// ============================================================================

// TokenType 表示 Token 的类型
type TokenType int

const (
	// ----------------------------------------------------------
	// 特殊标记
	// ----------------------------------------------------------
	ILLEGAL TokenType = iota // 非法字符
	EOF                      // 文件结束

	// ----------------------------------------------------------
	// 字面量
	// ----------------------------------------------------------
	IDENT // 标识符 (类名、方法名、变量名)
	INT   // 整数字面量

	// ----------------------------------------------------------
	// 算术运算符
	// ----------------------------------------------------------
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	PERCENT // %
	ASSIGN  // =

	// ----------------------------------------------------------
	// 比较运算符
	// ----------------------------------------------------------
	EQ // ==
	NE // !=
	LT // <
	LE // <=
	GT // >
	GE // >=

	// ----------------------------------------------------------
	// 逻辑运算符
	// ----------------------------------------------------------
	AND // &&
	OR  // ||
	NOT // !

	// ----------------------------------------------------------
	// 分隔符
	// ----------------------------------------------------------
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	COMMA     // ,
	SEMICOLON // ;
	DOT       // .

	// ----------------------------------------------------------
	// 声明关键字
	// ----------------------------------------------------------
	CLASS      // class
	INTERFACE  // interface
	EXTENDS    // extends
	IMPLEMENTS // implements

	// ----------------------------------------------------------
	// 修饰符关键字
	// ----------------------------------------------------------
	PUBLIC       // public
	PROTECTED    // protected
	PRIVATE      // private
	STATIC       // static
	FINAL        // final
	SYNCHRONIZED // synchronized
	ABSTRACT     // abstract

	// ----------------------------------------------------------
	// 控制流关键字
	// ----------------------------------------------------------
	IF       // if
	ELSE     // else
	WHILE    // while
	RETURN   // return
	BREAK    // break
	CONTINUE // continue

	// ----------------------------------------------------------
	// 类型与值关键字
	// ----------------------------------------------------------
	INT_TYPE  // int
	BOOL_TYPE // boolean
	VOID      // void
	TRUE      // true
	FALSE     // false
	THIS      // this
	SUPER     // super
)

// tokenNames Token 类型的可读名称（用于调试和报错）
var tokenNames = map[TokenType]string{
	ILLEGAL:      "ILLEGAL",
	EOF:          "EOF",
	IDENT:        "IDENT",
	INT:          "INT",
	PLUS:         "+",
	MINUS:        "-",
	STAR:         "*",
	SLASH:        "/",
	PERCENT:      "%",
	ASSIGN:       "=",
	EQ:           "==",
	NE:           "!=",
	LT:           "<",
	LE:           "<=",
	GT:           ">",
	GE:           ">=",
	AND:          "&&",
	OR:           "||",
	NOT:          "!",
	LPAREN:       "(",
	RPAREN:       ")",
	LBRACE:       "{",
	RBRACE:       "}",
	COMMA:        ",",
	SEMICOLON:    ";",
	DOT:          ".",
	CLASS:        "class",
	INTERFACE:    "interface",
	EXTENDS:      "extends",
	IMPLEMENTS:   "implements",
	PUBLIC:       "public",
	PROTECTED:    "protected",
	PRIVATE:      "private",
	STATIC:       "static",
	FINAL:        "final",
	SYNCHRONIZED: "synchronized",
	ABSTRACT:     "abstract",
	IF:           "if",
	ELSE:         "else",
	WHILE:        "while",
	RETURN:       "return",
	BREAK:        "break",
	CONTINUE:     "continue",
	INT_TYPE:     "int",
	BOOL_TYPE:    "boolean",
	VOID:         "void",
	TRUE:         "true",
	FALSE:        "false",
	THIS:         "this",
	SUPER:        "super",
}

// String 返回 TokenType 的字符串表示
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int(t))
}

// keywords 关键字表
var keywords = map[string]TokenType{
	"class":        CLASS,
	"interface":    INTERFACE,
	"extends":      EXTENDS,
	"implements":   IMPLEMENTS,
	"public":       PUBLIC,
	"protected":    PROTECTED,
	"private":      PRIVATE,
	"static":       STATIC,
	"final":        FINAL,
	"synchronized": SYNCHRONIZED,
	"abstract":     ABSTRACT,
	"if":           IF,
	"else":         ELSE,
	"while":        WHILE,
	"return":       RETURN,
	"break":        BREAK,
	"continue":     CONTINUE,
	"int":          INT_TYPE,
	"boolean":      BOOL_TYPE,
	"void":         VOID,
	"true":         TRUE,
	"false":        FALSE,
	"this":         THIS,
	"super":        SUPER,
}

// LookupIdent 查找标识符是否为关键字
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// ============================================================================
// Position - 源代码位置
// ============================================================================

// Position 表示源代码中的一个位置（1-based 行列号）
type Position struct {
	Filename string // 文件名
	Line     int    // 行号（1-based）
	Column   int    // 列号（1-based）
}

// String 返回位置的字符串表示
func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
}

// IsValid 检查位置是否有效
func (p Position) IsValid() bool {
	return p.Line > 0
}

// ============================================================================
// Token - 词法单元
// ============================================================================

// Token 表示一个词法单元
type Token struct {
	Type    TokenType // Token 类型
	Literal string    // 原始字面量
	Pos     Position  // 位置信息
}

// String 返回 Token 的字符串表示（用于调试）
func (t Token) String() string {
	switch t.Type {
	case IDENT, INT:
		return fmt.Sprintf("%s(%s) at %s", t.Type, t.Literal, t.Pos)
	default:
		return fmt.Sprintf("%s at %s", t.Type, t.Pos)
	}
}

// New 创建一个新的 Token
func New(tokenType TokenType, literal string, pos Position) Token {
	return Token{
		Type:    tokenType,
		Literal: literal,
		Pos:     pos,
	}
}
