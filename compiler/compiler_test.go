package compiler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/internal/scripttest"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func param(name string, t typesys.Type) typesys.Param {
	return typesys.Param{Name: name, Type: t}
}

func testRegistry() *typesys.Registry {
	r := typesys.NewRegistry()

	color := typesys.NewEnum("game.Color", "RED", "GREEN", "BLUE")
	entity := typesys.NewClass("game.Entity", nil)
	entity.AddField("health", typesys.Int, true)
	entity.AddField("name", typesys.String, false)
	entity.AddStaticField("count", typesys.Int, false)
	entity.AddMethod(typesys.NewMethod("damage", false, typesys.NewHeader(typesys.Void, param("amount", typesys.Int))))
	entity.AddMethod(typesys.NewMethod("spawn", true, typesys.NewHeader(entity, param("name", typesys.String))))

	must(r.RegisterType(color))
	must(r.RegisterType(entity))
	must(r.RegisterGlobal("world", typesys.String))
	must(r.RegisterFunction(typesys.NewFunctionMethod("", "print", typesys.NewHeader(typesys.Void, param("message", typesys.String)))))
	must(r.RegisterFunction(typesys.NewFunctionMethod("", "paint", typesys.NewHeader(typesys.Void, param("color", color)))))
	for _, t := range []typesys.Type{typesys.String, typesys.Int, typesys.Double} {
		must(r.RegisterFunction(typesys.NewFunctionMethod("", "log", typesys.NewHeader(typesys.Void, param("value", t)))))
	}

	r.Freeze()
	return r
}

func compileWith(t *testing.T, reg *typesys.Registry, bag *errors.Bag, source string) (*emit.Module, error) {
	t.Helper()

	unit := NewUnit("scripts/test", reg, bag)
	file, err := parser.ParseString("test.zs", source, nil, unit.Logger())
	be.Err(t, err, nil)
	unit.Compile(file)

	mod := emit.NewModule()
	return mod, unit.Emit(mod)
}

func compileSource(t *testing.T, source string) (*emit.Module, *errors.Bag, error) {
	t.Helper()

	bag := errors.NewBag()
	mod, err := compileWith(t, testRegistry(), bag, source)
	return mod, bag, err
}

func code(t *testing.T, mod *emit.Module, name string) []string {
	t.Helper()

	m, ok := mod.Method("scripts/test", name)
	be.True(t, ok)

	var ret []string
	for _, i := range m.Code {
		ret = append(ret, i.String())
	}
	return ret
}

func contains(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

func TestScripts(t *testing.T) {
	files, err := filepath.Glob("testdata/*.md")
	be.Err(t, err, nil)
	be.True(t, len(files) > 0)

	for _, file := range files {
		content, err := os.ReadFile(file)
		be.Err(t, err, nil)

		cases, err := scripttest.Extract(content)
		be.Err(t, err, nil)

		for _, tc := range cases {
			t.Run(tc.Name, func(t *testing.T) {
				mod, bag, _ := compileSource(t, tc.Input)

				var got []string
				for _, d := range bag.Diagnostics() {
					got = append(got, fmt.Sprintf("%d:%d: %s", d.Location.From.Line, d.Location.From.Column, d.Message))
				}
				want := ""
				if a, ok := tc.Assertion(scripttest.Diagnostics); ok {
					want = a.Content
				}
				be.Equal(t, strings.Join(got, "\n"), want)

				if a, ok := tc.Assertion(scripttest.Bytecode); ok {
					be.Equal(t, strings.TrimRight(mod.String(), "\n"), a.Content)
				}
			})
		}
	}
}

func TestShadowing(t *testing.T) {
	bag := errors.NewBag()
	u := NewUnit("scripts/test", testRegistry(), bag)
	s := u.root.enterMethod(typesys.NewFunctionMethod(u.Name, "f", typesys.NewHeader(typesys.Void)))

	outer := s.DeclareLocal(types.Span{}, "x", typesys.Int, false)
	inner := s.Push()
	shadow := inner.DeclareLocal(types.Span{}, "x", typesys.String, false)

	sym, ok := inner.Lookup("x")
	be.True(t, ok)
	be.True(t, sym.(*Local) == shadow)

	sym, ok = s.Lookup("x")
	be.True(t, ok)
	be.True(t, sym.(*Local) == outer)
	be.True(t, shadow.Index != outer.Index)

	inner.DeclareLocal(types.Span{}, "x", typesys.Int, false)
	be.Equal(t, bag.Count(errors.DuplicateDeclaration), 1)
}

func TestShadowingInSource(t *testing.T) {
	_, bag, err := compileSource(t, `
var x = 1;
if (true) {
	var x = "s";
	print(x);
}
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
}

func TestVariableProtocol(t *testing.T) {
	bag := errors.NewBag()
	reg := testRegistry()
	u := NewUnit("scripts/test", reg, bag)
	color, _ := reg.Type("game.Color")
	entity, _ := reg.Type("game.Entity")

	p := u.root.Partial(parser.Variable{Name: "RED"}, color)
	get, ok := p.(*StaticGet)
	be.True(t, ok)
	be.Equal(t, get.Owner, "game/Color")
	be.Equal(t, get.Name, "RED")
	be.True(t, get.Type().Equal(color))
	be.Equal(t, bag.ErrorCount(), 0)

	p = u.root.Partial(parser.Variable{Name: "RED"}, nil)
	_, ok = p.(*Invalid)
	be.True(t, ok)
	be.True(t, p.Type() == typesys.Invalid)
	be.Equal(t, bag.Count(errors.UnresolvedSymbol), 1)

	p = u.root.Partial(parser.Variable{Name: "count"}, entity)
	_, ok = p.(*Invalid)
	be.True(t, ok)
	be.True(t, p.Type().Equal(entity))
	be.Equal(t, bag.Count(errors.UnresolvedSymbol), 2)
}

func TestScopeBindingWinsOverPrediction(t *testing.T) {
	mod, bag, err := compileSource(t, `
val RED = "shadowed";
val s as string = RED;
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.True(t, contains(code(t, mod, InitName), "LOAD 0 Lzen/String;"))
}

func TestPredictionThroughCall(t *testing.T) {
	mod, bag, err := compileSource(t, "paint(GREEN);")
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.Equal(t, code(t, mod, InitName), []string{
		"GETSTATIC game/Color.GREEN Lgame/Color;",
		"INVOKESTATIC zen/Globals.paint(Lgame/Color;)V",
		"RETURN V",
	})
}

func TestInvalidCastIsReportedOnce(t *testing.T) {
	for _, source := range []string{
		"val a = true as int;",
		"val b = [1, 2] as string;",
		`val c = {a: 1} as game.Color;`,
	} {
		mod, bag, err := compileSource(t, source)
		be.Equal(t, bag.Count(errors.InvalidConversion), 1)
		be.Err(t, err, ErrHasErrors)
		be.Equal(t, len(mod.Methods), 0)
	}
}

func TestDuplicateFunction(t *testing.T) {
	_, bag, err := compileSource(t, `
function f() as int { return 1; }
function f() as string { return "a"; }
val x as int = f();
`)
	be.Equal(t, bag.Count(errors.DuplicateDeclaration), 1)
	be.Equal(t, bag.ErrorCount(), 1)
	be.Err(t, err, ErrHasErrors)
}

func TestDuplicateFunctionAcrossFiles(t *testing.T) {
	bag := errors.NewBag()
	u := NewUnit("scripts/test", testRegistry(), bag)
	a, err := parser.ParseString("a.zs", "function f() {}", nil, u.Logger())
	be.Err(t, err, nil)
	b, err := parser.ParseString("b.zs", "function f() {}", nil, u.Logger())
	be.Err(t, err, nil)

	u.Compile(a, b)
	be.Equal(t, bag.Count(errors.DuplicateDeclaration), 1)
	be.Equal(t, len(u.Functions()), 1)
}

func TestDeterminism(t *testing.T) {
	source := `
import game.Color;
function f(c as Color) as string { return c as string; }
val x = f(BLUE);
val y = missing + 1;
log(true);
`
	mod1, bag1, _ := compileSource(t, source)
	mod2, bag2, _ := compileSource(t, source)

	be.Equal(t, bag1.Diagnostics(), bag2.Diagnostics())
	be.Equal(t, mod1.String(), mod2.String())
	be.Equal(t, bag1.ErrorCount(), 2)
}

func TestOverloads(t *testing.T) {
	mod, bag, err := compileSource(t, `log(1); log(1.5); log("a"); log(1L);`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)

	var calls []string
	for _, line := range code(t, mod, InitName) {
		if strings.HasPrefix(line, "INVOKESTATIC") {
			calls = append(calls, line)
		}
	}
	be.Equal(t, calls, []string{
		"INVOKESTATIC zen/Globals.log(I)V",
		"INVOKESTATIC zen/Globals.log(D)V",
		"INVOKESTATIC zen/Globals.log(Lzen/String;)V",
		"INVOKESTATIC zen/Globals.log(D)V",
	})
}

func TestNoMatchingOverload(t *testing.T) {
	_, bag, _ := compileSource(t, "log(true);")
	be.Equal(t, bag.Count(errors.InvalidCall), 1)
	be.Equal(t, bag.Diagnostics()[0].Message, "no overload of log matches (bool)")

	_, bag, _ = compileSource(t, "print();")
	be.Equal(t, bag.Count(errors.InvalidCall), 1)
}

func TestMembers(t *testing.T) {
	mod, bag, err := compileSource(t, `
import game.Entity;
val e = Entity.spawn("zombie");
e.damage(3);
e.health = 10;
val n = e.name;
val c = Entity.count;
val l = n.length;
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)

	init := code(t, mod, InitName)
	for _, want := range []string{
		"INVOKESTATIC game/Entity.spawn(Lzen/String;)Lgame/Entity;",
		"INVOKEVIRTUAL game/Entity.damage(I)V",
		"PUTFIELD game/Entity.health I",
		"GETFIELD game/Entity.name Lzen/String;",
		"GETSTATIC game/Entity.count I",
		"LENGTH Lzen/String;",
	} {
		be.True(t, contains(init, want))
	}
}

func TestReadOnlyField(t *testing.T) {
	_, bag, _ := compileSource(t, `
val e = game.Entity.spawn("zombie");
e.name = "x";
game.Entity.count = 2;
`)
	be.Equal(t, bag.Count(errors.InvalidAssignment), 2)
}

func TestGlobals(t *testing.T) {
	mod, bag, err := compileSource(t, `
global limit as int = 5;
function check(x as int) as bool {
	return x < limit;
}
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.Equal(t, code(t, mod, InitName), []string{
		"CONST 5 I",
		"PUTSTATIC scripts/test.limit I",
		"RETURN V",
	})
	be.Equal(t, code(t, mod, "check"), []string{
		"LOAD 0 I",
		"GETSTATIC scripts/test.limit I",
		"COMPARE LT I",
		"RETURN Z",
	})
}

func TestGlobalRules(t *testing.T) {
	_, bag, _ := compileSource(t, `
global a as int = 1;
global a as int = 2;
global b as int;
function f() { global c = 3; }
a = 4;
`)
	be.Equal(t, bag.Count(errors.DuplicateDeclaration), 1)
	be.Equal(t, bag.Count(errors.Other), 2)
	be.Equal(t, bag.Count(errors.InvalidAssignment), 1)
}

func TestCompoundAssignment(t *testing.T) {
	mod, bag, err := compileSource(t, "var x = 1; x += 2;")
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.Equal(t, code(t, mod, InitName), []string{
		"CONST 1 I",
		"STORE 0 I",
		"LOAD 0 I",
		"CONST 2 I",
		"ARITH ADD I",
		"STORE 0 I",
		"RETURN V",
	})
}

func TestCollections(t *testing.T) {
	mod, bag, err := compileSource(t, `
val m = {a: 1, b: 2};
val v as int = m["a"];
val arr = [1, 2, 3];
for i, x in arr {
	log(x + i);
}
for k, value in m {
	print(k);
}
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)

	init := code(t, mod, InitName)
	for _, want := range []string{
		"NEWMAP Lzen/String; I 2",
		"MAPLOAD I",
		"NEWARRAY I 3",
		"ARRAYSTORE I",
		"ITERNEXT L2 I I",
		"ITERNEXT L4 Lzen/String; I",
	} {
		be.True(t, contains(init, want))
	}
}

func TestIterationErrors(t *testing.T) {
	_, bag, _ := compileSource(t, "for a, b, c in [1] {} for x in 5 {}")
	be.Equal(t, bag.Count(errors.TypeMismatch), 2)
}

func TestFunctionValues(t *testing.T) {
	mod, bag, err := compileSource(t, `
function twice(f as function(int)int, x as int) as int {
	return f(f(x));
}
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.True(t, contains(code(t, mod, "twice"), "INVOKEFUNCTION (I)I"))
}

func TestReturnChecks(t *testing.T) {
	_, bag, _ := compileSource(t, `
function a() as int { return "a"; }
function b() { return 1; }
function c() as int { return; }
function d(x as bool) as int { if (x) { return 1; } else { return 2; } }
`)
	be.Equal(t, bag.Count(errors.InvalidConversion), 1)
	be.Equal(t, bag.Count(errors.TypeMismatch), 2)
	be.Equal(t, bag.ErrorCount(), 3)
}

func TestConditional(t *testing.T) {
	mod, bag, err := compileSource(t, `val x as long = true ? 1 : 2;`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.Equal(t, code(t, mod, InitName), []string{
		"CONST true Z",
		"JUMPIF false L1",
		"CONST 1 J",
		"JUMP L2",
		"L1:",
		"CONST 2 J",
		"L2:",
		"STORE 0 J",
		"RETURN V",
	})
}

func TestUnknownType(t *testing.T) {
	_, bag, _ := compileSource(t, "val x as Missing = 1; val y as game.Nope[] = [];")
	be.Equal(t, bag.Count(errors.UnresolvedSymbol), 2)
	be.Equal(t, bag.ErrorCount(), 2)
}

func TestInvalidEmissionFaults(t *testing.T) {
	defer func() {
		_, ok := recover().(errors.Internal)
		be.True(t, ok)
	}()

	NewInvalid(types.Span{}, nil).Emit(emit.NewMethod(emit.Signature{Name: "f", Return: "V"}))
}

// closedTarget hands out methods that are already closed.
type closedTarget struct{}

func (closedTarget) NewMethod(sig emit.Signature) emit.MethodOutput {
	m := emit.NewMethod(sig)
	m.Close()
	return m
}

func TestEmitRecoversInternalFaults(t *testing.T) {
	bag := errors.NewBag()
	u := NewUnit("scripts/test", testRegistry(), bag)
	file, err := parser.ParseString("test.zs", "print(\"a\");", nil, u.Logger())
	be.Err(t, err, nil)
	u.Compile(file)

	err = u.Emit(closedTarget{})
	be.True(t, err != nil)
	be.True(t, err != ErrHasErrors)
}

func TestGateIsPerUnit(t *testing.T) {
	bag := errors.NewBag()
	reg := testRegistry()

	_, err := compileWith(t, reg, bag, "val x = missing;")
	be.Err(t, err, ErrHasErrors)

	mod, err := compileWith(t, reg, bag, "print(\"ok\");")
	be.Err(t, err, nil)
	be.Equal(t, len(mod.Methods), 1)
	be.Equal(t, bag.ErrorCount(), 1)
}

func TestConcurrentUnits(t *testing.T) {
	bag := errors.NewBag()
	reg := testRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			u := NewUnit(fmt.Sprintf("scripts/s%d", i), reg, bag)
			source := "print(\"ok\");"
			if i%2 == 0 {
				source = "print(nope);"
			}
			file, err := parser.ParseString("test.zs", source, nil, u.Logger())
			if err != nil {
				return
			}
			u.Compile(file)
			u.Emit(emit.NewModule())
		}(i)
	}
	wg.Wait()

	be.Equal(t, bag.Count(errors.UnresolvedSymbol), 4)
}

func TestRecursiveDefault(t *testing.T) {
	for _, source := range []string{
		"function f(a as int = f()) as int { return a; }\nf();",
		"function f(a as int = g()) as int { return a; }\nfunction g(b as int = f()) as int { return b; }\nf(); g();",
	} {
		_, bag, err := compileSource(t, source)
		be.Err(t, err, ErrHasErrors)
		be.Equal(t, bag.Count(errors.InvalidCall), 1)
		be.Equal(t, bag.ErrorCount(), 1)
	}
}

func TestDefaultSeesImports(t *testing.T) {
	mod, bag, err := compileSource(t, `
import game.Color;
function f(c as Color = Color.GREEN) {}
f();
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.Equal(t, code(t, mod, InitName), []string{
		"GETSTATIC game/Color.GREEN Lgame/Color;",
		"INVOKESTATIC scripts/test.f(Lgame/Color;)V",
		"RETURN V",
	})
}

func TestBadDefaultIsReportedOnce(t *testing.T) {
	for _, source := range []string{
		"function f(a as int = missing) {}\nf(); f(); f();",
		"function f(a as int = missing) {}",
	} {
		_, bag, err := compileSource(t, source)
		be.Err(t, err, ErrHasErrors)
		be.Equal(t, bag.Count(errors.UnresolvedSymbol), 1)
		be.Equal(t, bag.Diagnostics()[0].Message, "could not resolve symbol missing")
	}
}

func TestPackageAliasInTypes(t *testing.T) {
	mod, bag, err := compileSource(t, `
import game as g;
val c as g.Color = g.Color.RED;
val e as g.Entity[] = [];
`)
	be.Err(t, err, nil)
	be.Equal(t, bag.ErrorCount(), 0)
	be.Equal(t, code(t, mod, InitName)[:2], []string{
		"GETSTATIC game/Color.RED Lgame/Color;",
		"STORE 0 Lgame/Color;",
	})

	_, bag, _ = compileSource(t, "import game as g;\nval c as g.Nope = 1;")
	be.Equal(t, bag.Count(errors.UnresolvedSymbol), 1)
	be.Equal(t, bag.Diagnostics()[0].Message, "could not resolve symbol g.Nope")
}
