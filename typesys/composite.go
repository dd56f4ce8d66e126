package typesys

import (
	"fmt"
	"strings"
)

type Array struct {
	Element Type
}

func NewArray(elem Type) *Array {
	return &Array{Element: elem}
}

func (a *Array) Name() string       { return a.Element.Name() + "[]" }
func (a *Array) Descriptor() string { return "[" + a.Element.Descriptor() }
func (a *Array) String() string     { return a.Name() }

func (a *Array) Equal(other Type) bool {
	o, ok := other.(*Array)
	return ok && a.Element.Equal(o.Element)
}

func (a *Array) CastingRule(to Type) (Conversion, bool) {
	return CastingRule(a, to)
}

func (a *Array) StaticMember(name string) (Member, bool) {
	return Member{}, false
}

func (a *Array) InstanceMember(name string) (Member, bool) {
	if name == "length" {
		return Member{Kind: LengthMember, Name: name, Owner: a, Type: Int}, true
	}
	return Member{}, false
}

// Map is an associative array, written V[K] in scripts.
type Map struct {
	Key   Type
	Value Type
}

func NewMap(key, value Type) *Map {
	return &Map{Key: key, Value: value}
}

func (m *Map) Name() string       { return fmt.Sprintf("%s[%s]", m.Value.Name(), m.Key.Name()) }
func (m *Map) Descriptor() string { return "Lzen/Map;" }
func (m *Map) String() string     { return m.Name() }

func (m *Map) Equal(other Type) bool {
	o, ok := other.(*Map)
	return ok && m.Key.Equal(o.Key) && m.Value.Equal(o.Value)
}

func (m *Map) CastingRule(to Type) (Conversion, bool) {
	return CastingRule(m, to)
}

func (m *Map) StaticMember(name string) (Member, bool) {
	return Member{}, false
}

func (m *Map) InstanceMember(name string) (Member, bool) {
	switch name {
	case "length":
		return Member{Kind: LengthMember, Name: name, Owner: m, Type: Int}, true
	case "keys":
		return Member{Kind: FieldMember, Name: name, Owner: m, Type: NewArray(m.Key)}, true
	case "values":
		return Member{Kind: FieldMember, Name: name, Owner: m, Type: NewArray(m.Value)}, true
	}
	return Member{}, false
}

// Function is the type of function values and method references.
type Function struct {
	Params []Type
	Return Type
}

func NewFunction(ret Type, params ...Type) *Function {
	return &Function{Params: params, Return: ret}
}

func (f *Function) Name() string {
	var params []string
	for _, p := range f.Params {
		params = append(params, p.Name())
	}
	return fmt.Sprintf("function(%s)%s", strings.Join(params, ","), f.Return.Name())
}

func (f *Function) Descriptor() string { return "Lzen/Function;" }
func (f *Function) String() string     { return f.Name() }

// MethodDescriptor is the descriptor of a call through this type.
func (f *Function) MethodDescriptor() string {
	var b strings.Builder
	b.WriteString("(")
	for _, p := range f.Params {
		b.WriteString(p.Descriptor())
	}
	b.WriteString(")")
	b.WriteString(f.Return.Descriptor())
	return b.String()
}

func (f *Function) Equal(other Type) bool {
	o, ok := other.(*Function)
	if !ok || len(o.Params) != len(f.Params) || !f.Return.Equal(o.Return) {
		return false
	}
	for i := range f.Params {
		if !f.Params[i].Equal(o.Params[i]) {
			return false
		}
	}
	return true
}

func (f *Function) CastingRule(to Type) (Conversion, bool) {
	return CastingRule(f, to)
}

func (f *Function) StaticMember(name string) (Member, bool) {
	return Member{}, false
}

func (f *Function) InstanceMember(name string) (Member, bool) {
	return Member{}, false
}
