package compiler

import (
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
)

// Partial is an expression classified by resolution but not yet committed to
// a final type. Names of types, packages and overload sets stay partial;
// values are Expressions.
type Partial interface {
	Position() types.Span
	Type() typesys.Type
}

// Expression is a fully typed partial that can be emitted.
type Expression interface {
	Partial
	emit.Emitter
}

// Invalid stands in for an expression that failed to resolve. It carries the
// type the context expected so checking can continue.
type Invalid struct {
	pos types.Span
	typ typesys.Type
}

func NewInvalid(at types.Span, t typesys.Type) *Invalid {
	if t == nil {
		t = typesys.Invalid
	}
	return &Invalid{pos: at, typ: t}
}

func (i *Invalid) Position() types.Span { return i.pos }
func (i *Invalid) Type() typesys.Type   { return i.typ }

func (i *Invalid) Emit(out emit.MethodOutput) {
	errors.Fault("emission of invalid expression at %s", i.pos.From)
}

// TypeName is a reference to a type used as a value prefix, as in
// game.Color.RED.
type TypeName struct {
	pos types.Span
	Of  typesys.Type
}

func (t *TypeName) Position() types.Span { return t.pos }
func (t *TypeName) Type() typesys.Type   { return t.Of }

// PackageName is a package prefix of a qualified name.
type PackageName struct {
	pos  types.Span
	Name string
}

func (p *PackageName) Position() types.Span { return p.pos }
func (p *PackageName) Type() typesys.Type   { return typesys.Invalid }

// MethodGroup is an overload set waiting for its arguments. Receiver is nil
// for static methods and free functions.
type MethodGroup struct {
	pos      types.Span
	Name     string
	Receiver Expression
	Methods  []*typesys.Method
}

func (m *MethodGroup) Position() types.Span { return m.pos }
func (m *MethodGroup) Type() typesys.Type {
	if len(m.Methods) == 1 {
		return m.Methods[0].FunctionType()
	}
	return typesys.Invalid
}
