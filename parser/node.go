package parser

//go:generate sh -c "cd ../tool && go run . ../parser/ast.adt ../parser/ast.go parser"

import (
	"fmt"
	"strings"

	"github.com/pontaoski/zengo/types"
)

// Node carries the source span every AST node is created with.
type Node struct {
	Pos types.Span
}

func (n Node) Position() types.Span {
	return n.Pos
}

type MapEntry struct {
	Key   Expression
	Value Expression
}

type Param struct {
	Node
	Name    string
	Type    TypeRef
	Default Expression
}

type Package struct {
	Node
	Name string
}

// File is a parsed source file with its includes spliced in.
type File struct {
	Filename     string
	Package      *Package
	Imports      []Import
	Functions    map[string]Function
	Statements   []Statement
	Declarations []Declaration
}

func newFile(filename string) *File {
	return &File{
		Filename:  filename,
		Functions: map[string]Function{},
	}
}

// FunctionNames returns the declared function names in declaration order.
func (f *File) FunctionNames() (ret []string) {
	for _, decl := range f.Declarations {
		if fn, ok := decl.(Function); ok {
			if f.Functions[fn.Name].Pos == fn.Pos {
				ret = append(ret, fn.Name)
			}
		}
	}
	return
}

// TypeString renders a type reference the way it is written in source.
func TypeString(t TypeRef) string {
	if t == nil {
		return ""
	}

	switch v := t.(type) {
	case NamedType:
		return strings.Join(v.Parts, ".")
	case ArrayType:
		return TypeString(v.Element) + "[]"
	case MapType:
		return fmt.Sprintf("%s[%s]", TypeString(v.Value), TypeString(v.Key))
	case FunctionType:
		var params []string
		for _, param := range v.Params {
			params = append(params, TypeString(param))
		}
		return fmt.Sprintf("function(%s)%s", strings.Join(params, ","), TypeString(v.Returns))
	}

	panic("unhandled")
}

func (f Function) String() string {
	var args []string
	for _, param := range f.Params {
		if param.Type == nil {
			args = append(args, param.Name)
			continue
		}
		args = append(args, param.Name+" as "+TypeString(param.Type))
	}
	ret := ""
	if f.Returns != nil {
		ret = " as " + TypeString(f.Returns)
	}
	return fmt.Sprintf("function %s(%s)%s;", f.Name, strings.Join(args, ", "), ret)
}
