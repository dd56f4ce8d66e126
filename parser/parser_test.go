package parser

import (
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/errors"
)

func parse(t *testing.T, source string, loader Loader) (*File, *errors.Bag) {
	t.Helper()

	log := errors.NewBag()
	file, err := ParseString("main.zs", source, loader, log)
	be.Err(t, err, nil)
	return file, log
}

func TestParseFile(t *testing.T) {
	file, log := parse(t, `
package scripts.main;
import game.Color;
import game.Entity as E;

function add(a as int, b as int = 2) as int {
	return a + b;
}

val x = add(1);
print("hi");
`, nil)

	be.Equal(t, log.ErrorCount(), 0)
	be.Equal(t, file.Package.Name, "scripts.main")
	be.Equal(t, len(file.Imports), 2)
	be.Equal(t, file.Imports[1].Alias, "E")
	be.Equal(t, file.Imports[0].Name, []string{"game", "Color"})
	be.Equal(t, len(file.Statements), 2)
	be.Equal(t, file.FunctionNames(), []string{"add"})

	fn := file.Functions["add"]
	be.Equal(t, fn.String(), "function add(a as int, b as int) as int;")
	be.True(t, fn.Params[1].Default != nil)
	be.Equal(t, TypeString(fn.Returns), "int")
}

func TestDeterminism(t *testing.T) {
	source := `
import a.b;
function f(x) { if (x) { return; } else { while (true) { break; } } }
val m = {a: 1, "b": [1, 2 .. 3]};
var y = m.a ? -1 : !false;
y += 1 ~ "s" instanceof string;
val broken = ;
for k, v in m { continue; }
`
	f1, l1 := parse(t, source, nil)
	f2, l2 := parse(t, source, nil)

	be.True(t, reflect.DeepEqual(f1, f2))
	be.Equal(t, l1.Diagnostics(), l2.Diagnostics())
	be.Equal(t, l1.ErrorCount(), 1)
}

func TestDuplicateFunction(t *testing.T) {
	file, log := parse(t, `
function f() as int { return 1; }
function f() as string { return "a"; }
`, nil)

	be.Equal(t, log.Count(errors.DuplicateDeclaration), 1)
	be.Equal(t, TypeString(file.Functions["f"].Returns), "int")
	be.Equal(t, file.FunctionNames(), []string{"f"})
	be.Equal(t, len(file.Declarations), 2)
}

func TestIncludeSplicesFile(t *testing.T) {
	file, log := parse(t, `
include "lib.zs";
val x = helper();
`, MapLoader{"lib.zs": "function helper() as int { return 1; }\nval fromLib = 1;"})

	be.Equal(t, log.ErrorCount(), 0)
	_, ok := file.Functions["helper"]
	be.True(t, ok)
	be.Equal(t, len(file.Statements), 2)
	be.Equal(t, file.Functions["helper"].Pos.From.Filename, "lib.zs")
}

func TestIncludeMissing(t *testing.T) {
	file, log := parse(t, `
include "missing.zs";
function after() {}
val y = 1;
`, MapLoader{})

	be.Equal(t, log.ErrorCount(), 1)
	d := log.Diagnostics()[0]
	be.Equal(t, d.Kind, errors.CouldNotLoadFile)
	be.Equal(t, d.Location.From.Line, 2)
	be.Equal(t, d.Location.From.Column, 9)

	_, ok := file.Functions["after"]
	be.True(t, ok)
	be.Equal(t, len(file.Statements), 1)
}

func TestIncludeCycle(t *testing.T) {
	loader := MapLoader{
		"a.zs": "include \"b.zs\";\nval a = 1;",
		"b.zs": "include \"a.zs\";\nval b = 2;",
	}
	file, log := parse(t, `include "a.zs"; val c = 3;`, loader)

	be.Equal(t, log.Count(errors.IncludeCycle), 1)
	be.Equal(t, log.ErrorCount(), 1)
	be.Equal(t, len(file.Statements), 3)
}

func TestSelfInclude(t *testing.T) {
	_, log := parse(t, `include "main.zs";`, MapLoader{"main.zs": ""})
	be.Equal(t, log.Count(errors.IncludeCycle), 1)
}

func TestSyntaxRecovery(t *testing.T) {
	file, log := parse(t, `
val a = ;
function broken( { }
val b = 2;
import ;
function ok() {}
`, nil)

	be.True(t, log.Count(errors.SyntaxError) >= 3)
	_, ok := file.Functions["ok"]
	be.True(t, ok)

	var names []string
	for _, st := range file.Statements {
		if decl, ok := st.(VarDeclaration); ok {
			names = append(names, decl.Name)
		}
	}
	be.Equal(t, names, []string{"b"})
}

func TestUnsupportedDeclaration(t *testing.T) {
	log := errors.NewBag()
	file, err := ParseString("main.zs", "val a = 1;\nclass Foo {}\nval b = 2;", nil, log)

	be.True(t, err != nil)
	be.True(t, file != nil)
	be.Equal(t, log.ErrorCount(), 0)

	last := file.Declarations[len(file.Declarations)-1]
	u, ok := last.(Unsupported)
	be.True(t, ok)
	be.Equal(t, u.Keyword, "class")
	be.Equal(t, len(file.Statements), 1)
}

func TestPrecedence(t *testing.T) {
	file, _ := parse(t, "x = a || b && c == d + e * f;", nil)
	assign := file.Statements[0].(ExpressionStatement).Expression.(Assign)

	or := assign.Value.(Binary)
	be.Equal(t, or.Op, "||")
	and := or.Right.(Binary)
	be.Equal(t, and.Op, "&&")
	eq := and.Right.(Binary)
	be.Equal(t, eq.Op, "==")
	add := eq.Right.(Binary)
	be.Equal(t, add.Op, "+")
	mul := add.Right.(Binary)
	be.Equal(t, mul.Op, "*")
}

func TestLeftAssociative(t *testing.T) {
	file, _ := parse(t, "x = 1 - 2 - 3;", nil)
	assign := file.Statements[0].(ExpressionStatement).Expression.(Assign)

	outer := assign.Value.(Binary)
	inner, ok := outer.Left.(Binary)
	be.True(t, ok)
	be.Equal(t, inner.Left.(IntLiteral).Value, int64(1))
	be.Equal(t, outer.Right.(IntLiteral).Value, int64(3))
}

func TestCompoundAssign(t *testing.T) {
	file, _ := parse(t, "x ~= \"a\"; y = z = 1;", nil)

	first := file.Statements[0].(ExpressionStatement).Expression.(Assign)
	be.Equal(t, first.Op, "~")

	second := file.Statements[1].(ExpressionStatement).Expression.(Assign)
	_, ok := second.Value.(Assign)
	be.True(t, ok)
}

func TestLiterals(t *testing.T) {
	file, log := parse(t, "a(0x1F, 3000000000, 5L, 1.5f, 2.0, 'q', true, null);", nil)
	be.Equal(t, log.ErrorCount(), 0)

	args := file.Statements[0].(ExpressionStatement).Expression.(Call).Arguments
	be.Equal(t, args[0].(IntLiteral).Value, int64(31))
	be.True(t, args[1].(IntLiteral).Long)
	be.True(t, args[2].(IntLiteral).Long)
	be.True(t, args[3].(FloatLiteral).Single)
	be.True(t, !args[4].(FloatLiteral).Single)
	be.Equal(t, args[5].(StringLiteral).Value, "q")
	be.Equal(t, args[6].(BoolLiteral).Value, true)
	_, ok := args[7].(NullLiteral)
	be.True(t, ok)
}

func TestDuplicateMapKey(t *testing.T) {
	file, log := parse(t, `val m = {a: 1, "a": 2, b: 3};`, nil)
	be.Equal(t, log.Count(errors.SyntaxError), 1)

	m := file.Statements[0].(VarDeclaration).Value.(MapLiteral)
	be.Equal(t, len(m.Entries), 2)
}

func TestTypes(t *testing.T) {
	for source, want := range map[string]string{
		"int":                      "int",
		"game.Entity[]":            "game.Entity[]",
		"int[string]":              "int[string]",
		"function(int,string)bool": "function(int,string)bool",
		"string[][int]":            "string[][int]",
	} {
		typ, err := ParseTypeString(source)
		be.Err(t, err, nil)
		be.Equal(t, TypeString(typ), want)
	}

	_, err := ParseTypeString("int[")
	be.True(t, err != nil)
	_, err = ParseTypeString("int extra")
	be.True(t, err != nil)
}

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, io.ErrClosedPipe
}

func TestReadErrorIsReportedInFile(t *testing.T) {
	log := errors.NewBag()
	src := io.MultiReader(strings.NewReader("val a = 1;\n"), brokenReader{})
	file, err := ParseFile("main.zs", src, nil, log)
	be.Err(t, err, nil)
	be.Equal(t, len(file.Statements), 1)

	be.Equal(t, log.ErrorCount(), 1)
	d := log.Diagnostics()[0]
	be.Equal(t, d.Kind, errors.CouldNotLoadFile)
	be.Equal(t, d.Location.From.Filename, "main.zs")
	be.True(t, d.Location.From.Line > 0)
}
