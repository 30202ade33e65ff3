package errors

import (
	"fmt"
	"strings"

	"github.com/tangzhangming/lumen/internal/token"
)

// ============================================================================
// 编译错误
// ============================================================================

// CompileError 编译错误
type CompileError struct {
	Code    string         // 错误码 (L0200)
	Level   Level          // 错误级别
	Message string         // 主消息
	Pos     token.Position // 位置
	Notes   []string       // 附加说明
}

// Error 实现 error 接口
func (e *CompileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// New 创建一个编译错误
func New(code string, pos token.Position, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Code:    code,
		Level:   LevelError,
		Message: fmt.Sprintf(format, args...),
		Pos:     pos,
	}
}

// Internal 创建一个后端内部错误（前端契约被破坏时使用）
func Internal(code string, pos token.Position, format string, args ...interface{}) *CompileError {
	e := New(code, pos, format, args...)
	e.Notes = append(e.Notes, "this is a compiler bug, not an error in the source program")
	return e
}

// WithNote 追加附加说明
func (e *CompileError) WithNote(format string, args ...interface{}) *CompileError {
	e.Notes = append(e.Notes, fmt.Sprintf(format, args...))
	return e
}

// ============================================================================
// 错误报告器
// ============================================================================

// Reporter 错误报告器
//
// 收集一次编译过程中的全部诊断，按出现顺序保存。
type Reporter struct {
	errors   []*CompileError
	warnings []*CompileError
}

// NewReporter 创建错误报告器
func NewReporter() *Reporter {
	return &Reporter{}
}

// Report 记录一个诊断
func (r *Reporter) Report(e *CompileError) {
	switch e.Level {
	case LevelWarning:
		r.warnings = append(r.warnings, e)
	default:
		r.errors = append(r.errors, e)
	}
}

// Errorf 记录一个错误
func (r *Reporter) Errorf(code string, pos token.Position, format string, args ...interface{}) {
	r.Report(New(code, pos, format, args...))
}

// HasErrors 是否存在错误
func (r *Reporter) HasErrors() bool {
	return len(r.errors) > 0
}

// Errors 返回全部错误
func (r *Reporter) Errors() []*CompileError {
	return r.errors
}

// Warnings 返回全部警告
func (r *Reporter) Warnings() []*CompileError {
	return r.warnings
}

// Format 格式化一个诊断为多行文本
//
// 输出格式与 rustc 风格的单行诊断类似：
//
//	error[L0200]: type mismatch
//	 --> demo.lum:3:9
//	  note: ...
func Format(e *CompileError) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s[%s]: %s\n", e.Level, e.Code, e.Message))
	if e.Pos.IsValid() {
		sb.WriteString(fmt.Sprintf(" --> %s\n", e.Pos))
	}
	for _, note := range e.Notes {
		sb.WriteString(fmt.Sprintf("  note: %s\n", note))
	}
	return sb.String()
}

// FormatAll 格式化报告器中的全部诊断
func (r *Reporter) FormatAll() string {
	var sb strings.Builder
	for _, e := range r.errors {
		sb.WriteString(Format(e))
	}
	for _, w := range r.warnings {
		sb.WriteString(Format(w))
	}
	if len(r.errors) > 0 {
		sb.WriteString(fmt.Sprintf("compilation failed with %d error(s)\n", len(r.errors)))
	}
	return sb.String()
}
