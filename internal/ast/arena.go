package ast

import (
	"github.com/tangzhangming/lumen/internal/types"
)

// ============================================================================
// 调用点 Arena
// ============================================================================
//
// 每个 CallExpr 节点持有一个稳定的 SiteID，指向本文件 Arena 中的
// 一条调用点记录。语义阶段把绑定结果写进记录，direct 分类也在
// 记录上原地完成且只发生一次——节点本身保持不可变，
// 不需要为写入标志而复制节点。
//
// ============================================================================

// SiteID 调用点记录的稳定索引
type SiteID int

// InvalidSite 未分配的调用点索引
const InvalidSite SiteID = -1

// CallKind 调用形式
type CallKind int

const (
	CallUnqualified CallKind = iota // m(a)，隐式 this 或当前类
	CallInstance                    // e.m(a)
	CallSuper                       // super.m(a)
	CallStatic                      // ClassName.m(a)
)

func (k CallKind) String() string {
	switch k {
	case CallUnqualified:
		return "unqualified"
	case CallInstance:
		return "instance"
	case CallSuper:
		return "super"
	case CallStatic:
		return "static"
	default:
		return "unknown"
	}
}

// CallSite 一条调用点记录
//
// Method/Kind/Recv 由 sema 在绑定时写入；Direct 由 direct-call
// 分析在类型检查结束时写入。Direct 一旦为 true 便不再改变。
type CallSite struct {
	Kind   CallKind      // 调用形式
	Method *types.Method // 绑定的方法实例
	Recv   types.Type    // 接收者的静态类型（静态调用为 nil）

	// Direct 标记该调用可以静态绑定，不经过派发表。
	// 分类至多执行一次，结果单调：置位后不会被清除。
	Direct     bool
	Classified bool // 分类是否已经执行过
}

// Arena 调用点记录池
//
// 记录按分配顺序存放在一段连续内存中，SiteID 即下标，
// 在整个编译期间保持稳定。
type Arena struct {
	sites []CallSite
}

// NewArena 创建调用点记录池
func NewArena() *Arena {
	return &Arena{
		sites: make([]CallSite, 0, 16),
	}
}

// NewSite 分配一条新的调用点记录
func (a *Arena) NewSite() SiteID {
	a.sites = append(a.sites, CallSite{Kind: CallUnqualified})
	return SiteID(len(a.sites) - 1)
}

// Site 返回 id 对应的记录
//
// 返回指针，调用者可以原地写入绑定结果。
func (a *Arena) Site(id SiteID) *CallSite {
	if id < 0 || int(id) >= len(a.sites) {
		return nil
	}
	return &a.sites[id]
}

// Len 已分配的记录数
func (a *Arena) Len() int {
	return len(a.sites)
}
