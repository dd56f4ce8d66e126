package llvmout

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func getStructElm(b *ir.Block, t types.Type, v value.Value, idx int64) value.Value {
	return b.NewGetElementPtr(t, v, constant.NewInt(types.I32, 0), constant.NewInt(types.I32, idx))
}

// builtins are host functions the module defines itself instead of leaving
// them to the linker. Keys are owner.name followed by the descriptor.
var builtins = map[string]func(*typeSet, *ir.Func){
	"zen/Globals.print(Lzen/String;)V": definePrint,
}

// definePrint writes the string to stdout with a raw write syscall.
func definePrint(t *typeSet, fn *ir.Func) {
	entry := fn.NewBlock("entry")

	length := getStructElm(entry, t.String, fn.Params[0], 0)
	loadedLength := entry.NewLoad(types.I64, length)
	data := getStructElm(entry, t.String, fn.Params[0], 1)
	loadedData := entry.NewLoad(types.NewPointer(types.I8), data)

	asm := ir.NewInlineAsm(
		types.NewPointer(types.NewFunc(types.Void, types.NewPointer(types.I8), types.I64)),
		`movq $0, %rsi; movq $1, %rdx; movq $$0x1, %rax; movq $$0x1, %rdi; syscall`,
		`r,r`,
	)
	asm.SideEffect = true

	entry.NewCall(asm, loadedData, loadedLength)
	entry.NewRet(nil)
}
