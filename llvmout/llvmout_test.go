package llvmout

import (
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/compiler"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/typesys"
)

func registry(t *testing.T) *typesys.Registry {
	t.Helper()

	r := typesys.NewRegistry()
	printFn := typesys.NewFunctionMethod("", "print", typesys.NewHeader(typesys.Void, typesys.Param{Name: "message", Type: typesys.String}))
	be.Err(t, r.RegisterFunction(printFn), nil)
	be.Err(t, r.RegisterGlobal("world", typesys.String), nil)
	r.Freeze()
	return r
}

func build(t *testing.T, source string) (*Module, error) {
	t.Helper()

	bag := errors.NewBag()
	unit := compiler.NewUnit("scripts/test", registry(t), bag)
	file, err := parser.ParseString("test.zs", source, nil, unit.Logger())
	be.Err(t, err, nil)
	unit.Compile(file)
	be.Equal(t, bag.ErrorCount(), 0)

	mod := NewModule()
	return mod, unit.Emit(mod)
}

func TestSplitDescriptor(t *testing.T) {
	params, ret := SplitDescriptor("(ILzen/String;[[J)V")
	be.Equal(t, params, []string{"I", "Lzen/String;", "[[J"})
	be.Equal(t, ret, "V")

	params, ret = SplitDescriptor("()Lzen/Any;")
	be.Equal(t, len(params), 0)
	be.Equal(t, ret, "Lzen/Any;")
}

func TestMalformedDescriptorFaults(t *testing.T) {
	defer func() {
		_, ok := recover().(errors.Internal)
		be.True(t, ok)
	}()
	SplitDescriptor("(Lzen/String")
}

func TestSymbol(t *testing.T) {
	a := Symbol("zen/Globals", "log", "(I)V")
	b := Symbol("zen/Globals", "log", "(D)V")

	be.True(t, strings.HasPrefix(a, "zen.Globals.log."))
	be.True(t, a != b)
	be.Equal(t, a, Symbol("zen/Globals", "log", "(I)V"))
}

func TestScript(t *testing.T) {
	mod, err := build(t, `
function add(a as int, b as int) as int {
	return a + b;
}

val total = add(1, 2);
if (total > 2 && total < 10) {
	print("small");
}
`)
	be.Err(t, err, nil)

	out := mod.String()
	add := Symbol("scripts/test", "add", "(II)I")
	printSym := Symbol("zen/Globals", "print", "(Lzen/String;)V")

	be.True(t, strings.Contains(out, "define i32 @"+add+"("))
	be.True(t, strings.Contains(out, "add i32"))
	be.True(t, strings.Contains(out, "phi i1"))
	be.True(t, strings.Contains(out, "call void @"+printSym+"("))
	be.True(t, strings.Contains(out, "define void @"+printSym+"("))
	be.True(t, strings.Contains(out, "syscall"))
	be.True(t, strings.Contains(out, "define void @"+EntryName+"()"))
	be.True(t, strings.Contains(out, "@"+TypeInfoSymbol))
	be.True(t, strings.Contains(out, `c"small"`))

	info := mod.Info()
	be.Equal(t, info.Functions["scripts.test.add"], FunctionInfo{Descriptor: "(II)I", Symbol: add})
	_, ok := info.Functions["scripts.test.__init__"]
	be.True(t, !ok)
}

func TestGlobals(t *testing.T) {
	mod, err := build(t, `
global counter as int = 1;
print(world);
`)
	be.Err(t, err, nil)

	out := mod.String()
	be.True(t, strings.Contains(out, "@scripts.test.counter = global i32 0"))
	be.True(t, strings.Contains(out, "@zen.Globals.world = external global"))
}

func TestUnsupportedOperations(t *testing.T) {
	_, err := build(t, "val xs = [1, 2];")
	be.True(t, err != nil)
	be.True(t, strings.Contains(err.Error(), "arrays is not supported"))
}

func TestConditionalMergesOperands(t *testing.T) {
	mod := NewModule()
	out := mod.NewMethod(emit.Signature{Owner: "a", Name: "pick", Static: true, Params: []string{"Z"}, Return: "I"})

	otherwise, end := out.NewLabel(), out.NewLabel()
	out.LoadLocal(0, "Z")
	out.JumpIf(false, otherwise)
	out.Constant(int64(1), "I")
	out.Jump(end)
	out.Mark(otherwise)
	out.Constant(int64(2), "I")
	out.Mark(end)
	out.Return("I")
	be.Err(t, out.Close(), nil)

	fn := out.(*Method).Func()
	for _, b := range fn.Blocks {
		be.True(t, b.Term != nil)
	}
	be.True(t, strings.Contains(mod.String(), "phi i32"))
}

func TestConversions(t *testing.T) {
	mod := NewModule()
	out := mod.NewMethod(emit.Signature{Owner: "a", Name: "f", Static: true, Params: []string{"I"}, Return: "D"})

	out.LoadLocal(0, "I")
	out.Convert("I", "J")
	out.Convert("J", "D")
	out.Return("D")
	be.Err(t, out.Close(), nil)

	s := mod.String()
	be.True(t, strings.Contains(s, "sext i32"))
	be.True(t, strings.Contains(s, "sitofp i64"))
}

func TestCloseAfterUnsupported(t *testing.T) {
	mod := NewModule()
	out := mod.NewMethod(emit.Signature{Owner: "a", Name: "f", Static: true, Return: "V"})

	out.NewMap("Lzen/String;", "I", 0)
	out.Return("V")

	err := out.Close()
	be.True(t, err != nil)
	be.Equal(t, len(out.(*Method).Func().Blocks), 0)
	be.True(t, out.Close() != nil)
}

func TestEmissionAfterCloseFaults(t *testing.T) {
	mod := NewModule()
	out := mod.NewMethod(emit.Signature{Owner: "a", Name: "f", Static: true, Return: "V"})
	out.Return("V")
	be.Err(t, out.Close(), nil)

	defer func() {
		_, ok := recover().(errors.Internal)
		be.True(t, ok)
	}()
	out.Return("V")
}
