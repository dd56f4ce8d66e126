// Command adtgen generates Go sum types from a small declaration language:
//
//	position "import/path" "Span";
//	type Expression = | Variable of "struct { Node; Name string }" | ... ;
//
// Every sum type becomes an interface with an is_<Type> marker method and, when
// a position declaration is present, a Position accessor.
package main

import (
	"fmt"
	"io/ioutil"
	"os"

	"github.com/alecthomas/participle"

	. "github.com/dave/jennifer/jen"
)

type TypeDecls struct {
	Position     *PositionDecl  `@@?`
	Declarations []*Declaration `@@*`
}

type PositionDecl struct {
	Path string `"position" @String`
	Name string `@String ";"`
}

type TCase struct {
	Name string `@Ident "of"`
	Kind string `(@Ident | @String | @RawString)`
}

type Declaration struct {
	Name  string   `"type" @Ident "="`
	Plain *string  `(  (@Ident | @String | @RawString)`
	Many  *[]TCase ` | ("|" (@@))*)`
	I     struct{} `";"`
}

func (t *TypeDecls) IsSumType(name string) bool {
	for _, decls := range t.Declarations {
		if decls.Name == name && decls.Many != nil {
			return true
		}
	}
	return false
}

func (t *TypeDecls) interfaceMethods(name string) []Code {
	methods := []Code{Id("is_" + name).Params()}
	if t.Position != nil {
		methods = append(methods, Id("Position").Params().Qual(t.Position.Path, t.Position.Name))
	}
	return methods
}

func GenerateDecls(pkgname string, t *TypeDecls) string {
	f := NewFile(pkgname)
	f.HeaderComment("Code generated by adtgen. DO NOT EDIT.")

	for _, decl := range t.Declarations {
		if decl.Plain != nil {
			f.Type().Id(decl.Name).Id(*decl.Plain)
		} else if decl.Many != nil {
			f.Type().Id(decl.Name).Interface(t.interfaceMethods(decl.Name)...)

			for _, it := range *decl.Many {
				if t.IsSumType(it.Kind) {
					f.Type().Id(it.Name).Struct(Id(it.Kind))
				} else {
					f.Type().Id(it.Name).Id(it.Kind)
				}

				f.Func().Params(Id("v").Id(it.Name)).Id("is_" + decl.Name).Params().Block()
			}
		}
	}

	return fmt.Sprintf("%#v", f)
}

func main() {
	if len(os.Args) != 4 {
		fmt.Fprintln(os.Stderr, "usage: adtgen <in.adt> <out.go> <package>")
		os.Exit(2)
	}

	parser := participle.MustBuild(&TypeDecls{}, participle.Unquote("String", "RawString"))

	in := os.Args[1]
	out := os.Args[2]
	pkgname := os.Args[3]

	inData, err := ioutil.ReadFile(in)
	if err != nil {
		panic(err)
	}

	decls := TypeDecls{}
	err = parser.ParseBytes(inData, &decls)
	if err != nil {
		panic(err)
	}

	err = ioutil.WriteFile(out, []byte(GenerateDecls(pkgname, &decls)), 0644)
	if err != nil {
		panic(err)
	}
}
