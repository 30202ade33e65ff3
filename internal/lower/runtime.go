package lower

import "github.com/tangzhangming/lumen/internal/ir"

// ============================================================================
// 运行时接口
// ============================================================================

// lowering 依赖的运行时符号。签名必须与运行时库保持一致。
const (
	// MonitorEnterFunc 进入监视器：void __monitorEnter(i8* obj)
	MonitorEnterFunc = "__monitorEnter"

	// MonitorExitFunc 退出监视器：void __monitorExit(i8* obj)
	MonitorExitFunc = "__monitorExit"

	// ThrowExceptionFunc 抛出异常，不返回：void __throwException(i8* exn)
	ThrowExceptionFunc = "__throwException"

	// GetInterfaceMethodFunc 接口方法运行时查表：
	// i8* __getInterfaceMethod(i8* recv, i32 hash, i8* identity, i32 index)
	GetInterfaceMethodFunc = "__getInterfaceMethod"

	// PersonalityFunc unwind personality 例程
	PersonalityFunc = "__personality_v0"
)

func monitorSig() *ir.Type {
	return ir.FuncType(ir.Void, ir.BytePtr())
}

func throwSig() *ir.Type {
	return ir.FuncType(ir.Void, ir.BytePtr())
}

func getInterfaceMethodSig() *ir.Type {
	return ir.FuncType(ir.BytePtr(), ir.BytePtr(), ir.I32, ir.BytePtr(), ir.I32)
}

func personalitySig() *ir.Type {
	return ir.FuncType(ir.I32)
}
