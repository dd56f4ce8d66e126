package emit

import (
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/errors"
)

func TestDisassembly(t *testing.T) {
	mod := NewModule()
	out := mod.NewMethod(Signature{Owner: "scripts/main", Name: "max", Static: true, Params: []string{"I", "I"}, Return: "I"})

	otherwise := out.NewLabel()
	out.LoadLocal(0, "I")
	out.LoadLocal(1, "I")
	out.Compare(Lt, "I")
	out.JumpIf(true, otherwise)
	out.LoadLocal(0, "I")
	out.Return("I")
	out.Mark(otherwise)
	out.LoadLocal(1, "I")
	out.Return("I")
	be.Err(t, out.Close(), nil)

	init := mod.NewMethod(Signature{Owner: "scripts/main", Name: "__init__", Static: true, Return: "V"})
	init.Constant("hi", "Lzen/String;")
	init.InvokeStatic("zen/Globals", "print", MethodDescriptor("V", "Lzen/String;"))
	init.Constant(int64(3), "I")
	init.Convert("I", "D")
	init.Pop("D")
	init.NewMap("Lzen/String;", "I", 0)
	init.Pop("Ljava/util/Map;")
	init.Return("V")
	be.Err(t, init.Close(), nil)

	be.Equal(t, mod.String(), `method static scripts/main.max(II)I
    LOAD 0 I
    LOAD 1 I
    COMPARE LT I
    JUMPIF true L1
    LOAD 0 I
    RETURN I
  L1:
    LOAD 1 I
    RETURN I

method static scripts/main.__init__()V
    CONST "hi" Lzen/String;
    INVOKESTATIC zen/Globals.print(Lzen/String;)V
    CONST 3 I
    CONVERT I D
    POP D
    NEWMAP Lzen/String; I 0
    POP Ljava/util/Map;
    RETURN V
`)

	found, ok := mod.Method("scripts/main", "max")
	be.True(t, ok)
	be.Equal(t, len(found.Code), 9)

	_, ok = mod.Method("scripts/main", "min")
	be.True(t, !ok)
}

func TestLabelsAreNumberedPerMethod(t *testing.T) {
	mod := NewModule()
	a := mod.NewMethod(Signature{Owner: "a", Name: "f", Return: "V"})
	b := mod.NewMethod(Signature{Owner: "a", Name: "g", Return: "V"})

	be.Equal(t, a.NewLabel(), Label(1))
	be.Equal(t, a.NewLabel(), Label(2))
	be.Equal(t, b.NewLabel(), Label(1))
}

func TestIteration(t *testing.T) {
	m := NewMethod(Signature{Owner: "a", Name: "f", Static: true, Return: "V"})
	done := m.NewLabel()
	m.IterBegin("[I")
	m.IterNext(done, "I", "I")
	m.Mark(done)

	be.Equal(t, m.Code[1].String(), "ITERNEXT L1 I I")
	be.Equal(t, m.Code[0].String(), "ITERBEGIN [I")
}

func TestEmissionAfterCloseFaults(t *testing.T) {
	m := NewMethod(Signature{Owner: "a", Name: "f", Static: true, Return: "V"})
	be.Err(t, m.Close(), nil)
	be.True(t, m.Closed())
	be.True(t, m.Close() != nil)

	defer func() {
		_, ok := recover().(errors.Internal)
		be.True(t, ok)
	}()
	m.Return("V")
}

func TestMethodDescriptor(t *testing.T) {
	be.Equal(t, MethodDescriptor("V"), "()V")
	be.Equal(t, Signature{Params: []string{"[I", "Lzen/String;"}, Return: "Z"}.Descriptor(), "([ILzen/String;)Z")
}
