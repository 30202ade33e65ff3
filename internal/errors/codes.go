// Package errors 提供 Lumen 编译器的错误处理系统
package errors

// ============================================================================
// 错误级别
// ============================================================================

// Level 错误级别
type Level int

const (
	LevelError   Level = iota // 错误
	LevelWarning              // 警告
	LevelNote                 // 提示
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarning:
		return "warning"
	case LevelNote:
		return "note"
	default:
		return "unknown"
	}
}

// ============================================================================
// 编译器错误码 (L 开头)
// ============================================================================

// 编译器错误码常量
const (
	// L0001-L0099: 语法错误
	L0001 = "L0001" // 语法错误
	L0002 = "L0002" // 意外的字符
	L0003 = "L0003" // 无效的数字
	L0004 = "L0004" // 期望的 token
	L0005 = "L0005" // 意外的 token

	// L0100-L0199: 声明与绑定错误
	L0100 = "L0100" // 未定义的类型
	L0101 = "L0101" // 类型重复声明
	L0102 = "L0102" // 未定义的方法
	L0103 = "L0103" // 未定义的变量
	L0104 = "L0104" // 变量重复声明
	L0105 = "L0105" // 继承自接口
	L0106 = "L0106" // 继承自 final 类
	L0107 = "L0107" // implements 了非接口类型
	L0108 = "L0108" // 没有父类却使用 super
	L0109 = "L0109" // 在静态方法中使用 this/super

	// L0200-L0299: 类型错误
	L0200 = "L0200" // 类型不匹配
	L0201 = "L0201" // 条件表达式不是 boolean
	L0202 = "L0202" // 返回类型不匹配
	L0203 = "L0203" // 参数数量不匹配

	// L0300-L0399: 控制流错误
	L0300 = "L0300" // break 不在循环内
	L0301 = "L0301" // continue 不在循环内

	// L0900-L0999: 后端内部错误
	//
	// 这类错误表示前端契约被破坏（比如调用点缺少已绑定的方法）。
	// 按设计它们是致命的：中止当前函数的 lowering，不做恢复。
	L0900 = "L0900" // 内部错误
	L0901 = "L0901" // 调用点缺少绑定信息
	L0902 = "L0902" // 派发方法没有分配槽位
)
