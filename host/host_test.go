package host

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pontaoski/zengo/compiler"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/llvmout"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/typesys"
)

const manifest = `
Package: scripts.main
Scripts:
  - main.zs
Natives:
  Enums:
    - Name: game.Color
      Values: [RED, GREEN, BLUE]
  Classes:
    - Name: game.Monster
      Super: game.Entity
    - Name: game.Entity
      Fields:
        - Name: health
          Type: int
          Writable: true
        - Name: count
          Type: int
          Static: true
      Methods:
        - Name: damage
          Params:
            - Name: amount
              Type: int
        - Name: spawn
          Static: true
          Returns: game.Entity
          Params:
            - Name: name
              Type: string
  Functions:
    - Name: paint
      Params:
        - Name: color
          Type: game.Color
        - Name: times
          Type: int
          Optional: true
  Globals:
    - Name: scores
      Type: int[string]
`

func TestParseManifest(t *testing.T) {
	m, err := ParseManifest([]byte(manifest))
	be.Err(t, err, nil)

	be.Equal(t, m.Package, "scripts.main")
	be.Equal(t, m.Scripts, []string{"main.zs"})
	be.Equal(t, len(m.Natives.Classes), 2)
	be.Equal(t, m.Natives.Functions[0].Params[1].Optional, true)
}

func TestManifestErrors(t *testing.T) {
	_, err := ParseManifest([]byte("Scripts: [a.zs]"))
	be.True(t, err != nil)

	_, err = ParseManifest([]byte("Package: a\nUnknown: 1"))
	be.True(t, err != nil)
}

func TestNewRegistry(t *testing.T) {
	m, err := ParseManifest([]byte(manifest))
	be.Err(t, err, nil)

	r, err := NewRegistry(m)
	be.Err(t, err, nil)
	be.True(t, r.Frozen())

	_, ok := r.Type("game.Color")
	be.True(t, ok)
	be.True(t, r.IsPackage("game"))

	scores, ok := r.Global("scores")
	be.True(t, ok)
	be.Equal(t, scores.Type.Name(), "int[string]")

	prints, ok := r.Functions("print")
	be.True(t, ok)
	be.Equal(t, prints[0].Descriptor(), "(Lzen/String;)V")

	paints, _ := r.Functions("paint")
	be.Equal(t, paints[0].Header().Required(), 1)
}

func TestCompileAgainstManifest(t *testing.T) {
	m, err := ParseManifest([]byte(manifest))
	be.Err(t, err, nil)
	r, err := NewRegistry(m)
	be.Err(t, err, nil)

	bag := errors.NewBag()
	unit := compiler.NewUnit("scripts/main", r, bag)
	file, err := parser.ParseString("main.zs", `
import game.Entity;
val e = Entity.spawn("bob");
e.damage(3);
paint(RED);
print("done");
`, nil, unit.Logger())
	be.Err(t, err, nil)
	unit.Compile(file)
	be.Equal(t, bag.ErrorCount(), 0)

	mod := emit.NewModule()
	be.Err(t, unit.Emit(mod), nil)
	be.True(t, strings.Contains(mod.String(), "INVOKESTATIC zen/Globals.paint(Lgame/Color;I)V"))
}

func TestRegistryErrors(t *testing.T) {
	for _, source := range []string{
		"Package: a\nNatives:\n  Globals:\n    - Name: g\n      Type: game.Nope\n",
		"Package: a\nNatives:\n  Classes:\n    - Name: a.B\n      Super: a.C\n",
		"Package: a\nNatives:\n  Functions:\n    - Name: f\n      Returns: int[\n",
		"Package: a\nNatives:\n  Globals:\n    - Name: g\n      Type: int\n    - Name: g\n      Type: int\n",
	} {
		m, err := ParseManifest([]byte(source))
		be.Err(t, err, nil)
		_, err = NewRegistry(m)
		be.True(t, err != nil)
	}
}

func TestLibraries(t *testing.T) {
	lib := llvmout.TypeInfo{Functions: map[string]llvmout.FunctionInfo{
		"scripts.lib.add":   {Descriptor: "(II)I"},
		"scripts.lib.greet": {Descriptor: "(Lzen/String;[I)V"},
	}}

	r, err := NewRegistry(&Manifest{Package: "scripts.main"}, lib)
	be.Err(t, err, nil)

	adds, ok := r.Functions("add")
	be.True(t, ok)
	be.Equal(t, adds[0].Signature().Owner, "scripts/lib")
	be.Equal(t, adds[0].Descriptor(), "(II)I")

	greets, _ := r.Functions("greet")
	be.Equal(t, greets[0].Header().Params[1].Type.Name(), "int[]")

	_, err = NewRegistry(&Manifest{Package: "a"}, llvmout.TypeInfo{Functions: map[string]llvmout.FunctionInfo{
		"broken": {Descriptor: "(I"},
	}})
	be.True(t, err != nil)
}

func TestDescriptorType(t *testing.T) {
	be.Equal(t, descriptorType("I"), typesys.Type(typesys.Int))
	be.Equal(t, descriptorType("Lgame/Entity;"), typesys.Type(typesys.Any))
	be.Equal(t, descriptorType("[D").Name(), "double[]")
}

func TestManifestFiles(t *testing.T) {
	dir, err := ioutil.TempDir("", "zengo")
	be.Err(t, err, nil)
	defer os.RemoveAll(dir)

	be.Err(t, WriteManifest(dir, &Manifest{Package: "scripts.demo"}), nil)
	be.Err(t, ioutil.WriteFile(filepath.Join(dir, "b.zs"), nil, 0644), nil)
	be.Err(t, ioutil.WriteFile(filepath.Join(dir, "a.zs"), nil, 0644), nil)
	be.Err(t, ioutil.WriteFile(filepath.Join(dir, "notes.txt"), nil, 0644), nil)

	m, err := ReadManifest(dir)
	be.Err(t, err, nil)
	be.Equal(t, m.Package, "scripts.demo")

	scripts, err := m.ScriptFiles(dir)
	be.Err(t, err, nil)
	be.Equal(t, scripts, []string{"a.zs", "b.zs"})
}
