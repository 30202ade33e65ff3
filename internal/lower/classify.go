package lower

import "github.com/tangzhangming/lumen/internal/ast"

// ============================================================================
// direct-call 分类
// ============================================================================

// Classify 对调用点执行 direct-call 分类
//
// 满足任一条件即直接调用：
//   - 目标方法 static、private 或 final
//   - super 调用（目标在编译期唯一确定）
//   - 目标所属类是 final 类（不可能再有覆盖）
//
// 分类结果单调：一旦置为直接调用，重复分类不再改写；
// 结果记录在调用点记录上，后续查询零开销。
func Classify(site *ast.CallSite) {
	if site == nil || site.Method == nil {
		return
	}
	if site.Direct {
		return
	}

	m := site.Method
	direct := m.Flags.IsStatic() ||
		m.Flags.IsPrivate() ||
		m.Flags.IsFinal() ||
		site.Kind == ast.CallSuper

	if !direct {
		owner := m.Owner
		if owner != nil && !owner.IsInterface && owner.Flags.IsFinal() {
			direct = true
		}
	}

	site.Direct = direct
	site.Classified = true
}
