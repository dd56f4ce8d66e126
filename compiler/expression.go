package compiler

import (
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
)

func emitters(exprs []Expression) []emit.Emitter {
	ret := make([]emit.Emitter, len(exprs))
	for i, e := range exprs {
		ret[i] = e
	}
	return ret
}

type Constant struct {
	pos   types.Span
	typ   typesys.Type
	Value interface{}
}

func (c *Constant) Position() types.Span { return c.pos }
func (c *Constant) Type() typesys.Type   { return c.typ }

func (c *Constant) Emit(out emit.MethodOutput) {
	if c.typ == typesys.Null {
		out.Null()
		return
	}
	out.Constant(c.Value, c.typ.Descriptor())
}

// zeroValue is the value a declaration without initializer starts with.
func zeroValue(at types.Span, t typesys.Type) Expression {
	switch t {
	case typesys.Bool:
		return &Constant{pos: at, typ: t, Value: false}
	case typesys.Byte, typesys.Short, typesys.Int, typesys.Long:
		return &Constant{pos: at, typ: t, Value: int64(0)}
	case typesys.Float, typesys.Double:
		return &Constant{pos: at, typ: t, Value: float64(0)}
	}
	return &Conversion{pos: at, Value: &Constant{pos: at, typ: typesys.Null}, Rule: typesys.Conversion{Kind: typesys.Widening, From: typesys.Null, To: t}}
}

type LocalGet struct {
	pos   types.Span
	Local *Local
}

func (l *LocalGet) Position() types.Span { return l.pos }
func (l *LocalGet) Type() typesys.Type   { return l.Local.Type }

func (l *LocalGet) Emit(out emit.MethodOutput) {
	out.LoadLocal(l.Local.Index, l.Local.Type.Descriptor())
}

// Assignments are void typed; they are only used as statements.

type LocalSet struct {
	pos   types.Span
	Local *Local
	Value Expression
}

func (l *LocalSet) Position() types.Span { return l.pos }
func (l *LocalSet) Type() typesys.Type   { return typesys.Void }

func (l *LocalSet) Emit(out emit.MethodOutput) {
	l.Value.Emit(out)
	out.StoreLocal(l.Local.Index, l.Local.Type.Descriptor())
}

type StaticGet struct {
	pos   types.Span
	Owner string
	Name  string
	typ   typesys.Type
}

func (s *StaticGet) Position() types.Span { return s.pos }
func (s *StaticGet) Type() typesys.Type   { return s.typ }

func (s *StaticGet) Emit(out emit.MethodOutput) {
	out.GetStatic(s.Owner, s.Name, s.typ.Descriptor())
}

type StaticSet struct {
	pos   types.Span
	Owner string
	Name  string
	Value Expression
	typ   typesys.Type
}

func (s *StaticSet) Position() types.Span { return s.pos }
func (s *StaticSet) Type() typesys.Type   { return typesys.Void }

func (s *StaticSet) Emit(out emit.MethodOutput) {
	s.Value.Emit(out)
	out.PutStatic(s.Owner, s.Name, s.typ.Descriptor())
}

type FieldGet struct {
	pos      types.Span
	Receiver Expression
	Member   typesys.Member
}

func (f *FieldGet) Position() types.Span { return f.pos }
func (f *FieldGet) Type() typesys.Type   { return f.Member.Type }

func (f *FieldGet) Emit(out emit.MethodOutput) {
	f.Receiver.Emit(out)
	out.GetField(typesys.InternalName(f.Member.Owner), f.Member.Name, f.Member.Type.Descriptor())
}

type FieldSet struct {
	pos      types.Span
	Receiver Expression
	Member   typesys.Member
	Value    Expression
}

func (f *FieldSet) Position() types.Span { return f.pos }
func (f *FieldSet) Type() typesys.Type   { return typesys.Void }

func (f *FieldSet) Emit(out emit.MethodOutput) {
	f.Receiver.Emit(out)
	f.Value.Emit(out)
	out.PutField(typesys.InternalName(f.Member.Owner), f.Member.Name, f.Member.Type.Descriptor())
}

// Conversion applies a casting rule to its operand.
type Conversion struct {
	pos   types.Span
	Value Expression
	Rule  typesys.Conversion
}

func (c *Conversion) Position() types.Span { return c.pos }
func (c *Conversion) Type() typesys.Type   { return c.Rule.To }

func (c *Conversion) Emit(out emit.MethodOutput) {
	c.Value.Emit(out)

	from, to := c.Rule.From, c.Rule.To
	switch {
	case c.Rule.Kind == typesys.Identity, from == typesys.Null:
	case from == typesys.Any && typesys.IsReference(to):
		out.CheckCast(to.Descriptor())
	case c.Rule.Kind == typesys.Narrowing && isClass(from) && isClass(to):
		out.CheckCast(to.Descriptor())
	case c.Rule.Kind == typesys.Widening && typesys.IsReference(from) && typesys.IsReference(to):
	default:
		out.Convert(from.Descriptor(), to.Descriptor())
	}
}

func isClass(t typesys.Type) bool {
	_, ok := t.(*typesys.Class)
	return ok
}

type Arith struct {
	pos   types.Span
	Op    emit.ArithOp
	Left  Expression
	Right Expression
	typ   typesys.Type
}

func (a *Arith) Position() types.Span { return a.pos }
func (a *Arith) Type() typesys.Type   { return a.typ }

func (a *Arith) Emit(out emit.MethodOutput) {
	a.Left.Emit(out)
	if a.Right != nil {
		a.Right.Emit(out)
	}
	out.Arith(a.Op, a.typ.Descriptor())
}

type Compare struct {
	pos   types.Span
	Op    emit.CompareOp
	Left  Expression
	Right Expression
}

func (c *Compare) Position() types.Span { return c.pos }
func (c *Compare) Type() typesys.Type   { return typesys.Bool }

func (c *Compare) Emit(out emit.MethodOutput) {
	c.Left.Emit(out)
	c.Right.Emit(out)
	out.Compare(c.Op, c.Left.Type().Descriptor())
}

type Not struct {
	pos     types.Span
	Operand Expression
}

func (n *Not) Position() types.Span { return n.pos }
func (n *Not) Type() typesys.Type   { return typesys.Bool }

func (n *Not) Emit(out emit.MethodOutput) {
	n.Operand.Emit(out)
	out.Not()
}

// AndOr is a short circuit && or ||.
type AndOr struct {
	pos   types.Span
	And   bool
	Left  Expression
	Right Expression
}

func (a *AndOr) Position() types.Span { return a.pos }
func (a *AndOr) Type() typesys.Type   { return typesys.Bool }

func (a *AndOr) Emit(out emit.MethodOutput) {
	end := out.NewLabel()

	a.Left.Emit(out)
	out.Dup("Z")
	out.JumpIf(!a.And, end)
	out.Pop("Z")
	a.Right.Emit(out)
	out.Mark(end)
}

type Conditional struct {
	pos       types.Span
	Condition Expression
	Then      Expression
	Else      Expression
	typ       typesys.Type
}

func (c *Conditional) Position() types.Span { return c.pos }
func (c *Conditional) Type() typesys.Type   { return c.typ }

func (c *Conditional) Emit(out emit.MethodOutput) {
	otherwise, end := out.NewLabel(), out.NewLabel()

	c.Condition.Emit(out)
	out.JumpIf(false, otherwise)
	c.Then.Emit(out)
	out.Jump(end)
	out.Mark(otherwise)
	c.Else.Emit(out)
	out.Mark(end)
}

// Call invokes a resolved method. Receiver is nil for static calls.
type Call struct {
	pos       types.Span
	Method    *typesys.Method
	Receiver  Expression
	Arguments []Expression
}

func (c *Call) Position() types.Span { return c.pos }
func (c *Call) Type() typesys.Type   { return c.Method.ReturnType() }

func (c *Call) Emit(out emit.MethodOutput) {
	if c.Receiver == nil {
		c.Method.InvokeStatic(out, emitters(c.Arguments))
		return
	}
	c.Method.InvokeVirtual(out, c.Receiver, emitters(c.Arguments))
}

// FunctionCall calls a function value.
type FunctionCall struct {
	pos       types.Span
	Callee    Expression
	Function  *typesys.Function
	Arguments []Expression
}

func (f *FunctionCall) Position() types.Span { return f.pos }
func (f *FunctionCall) Type() typesys.Type   { return f.Function.Return }

func (f *FunctionCall) Emit(out emit.MethodOutput) {
	f.Callee.Emit(out)
	for _, arg := range f.Arguments {
		arg.Emit(out)
	}
	out.InvokeFunction(f.Function.MethodDescriptor())
}

type ArrayLiteral struct {
	pos      types.Span
	typ      *typesys.Array
	Elements []Expression
}

func (a *ArrayLiteral) Position() types.Span { return a.pos }
func (a *ArrayLiteral) Type() typesys.Type   { return a.typ }

func (a *ArrayLiteral) Emit(out emit.MethodOutput) {
	desc := a.typ.Element.Descriptor()

	out.NewArray(desc, len(a.Elements))
	for i, elem := range a.Elements {
		out.Dup(a.typ.Descriptor())
		out.Constant(int64(i), "I")
		elem.Emit(out)
		out.ArrayStore(desc)
	}
}

type MapLiteral struct {
	pos    types.Span
	typ    *typesys.Map
	Keys   []Expression
	Values []Expression
}

func (m *MapLiteral) Position() types.Span { return m.pos }
func (m *MapLiteral) Type() typesys.Type   { return m.typ }

func (m *MapLiteral) Emit(out emit.MethodOutput) {
	out.NewMap(m.typ.Key.Descriptor(), m.typ.Value.Descriptor(), len(m.Keys))
	for i := range m.Keys {
		out.Dup(m.typ.Descriptor())
		m.Keys[i].Emit(out)
		m.Values[i].Emit(out)
		out.MapStore(m.typ.Value.Descriptor())
	}
}

// IndexGet reads an array element or a map value.
type IndexGet struct {
	pos   types.Span
	Value Expression
	Index Expression
	typ   typesys.Type
}

func (i *IndexGet) Position() types.Span { return i.pos }
func (i *IndexGet) Type() typesys.Type   { return i.typ }

func (i *IndexGet) Emit(out emit.MethodOutput) {
	i.Value.Emit(out)
	i.Index.Emit(out)
	if _, ok := i.Value.Type().(*typesys.Map); ok {
		out.MapLoad(i.typ.Descriptor())
		return
	}
	out.ArrayLoad(i.typ.Descriptor())
}

type IndexSet struct {
	pos      types.Span
	Value    Expression
	Index    Expression
	NewValue Expression
}

func (i *IndexSet) Position() types.Span { return i.pos }
func (i *IndexSet) Type() typesys.Type   { return typesys.Void }

func (i *IndexSet) Emit(out emit.MethodOutput) {
	i.Value.Emit(out)
	i.Index.Emit(out)
	i.NewValue.Emit(out)
	if _, ok := i.Value.Type().(*typesys.Map); ok {
		out.MapStore(i.NewValue.Type().Descriptor())
		return
	}
	out.ArrayStore(i.NewValue.Type().Descriptor())
}

type InstanceOf struct {
	pos   types.Span
	Value Expression
	Of    typesys.Type
}

func (i *InstanceOf) Position() types.Span { return i.pos }
func (i *InstanceOf) Type() typesys.Type   { return typesys.Bool }

func (i *InstanceOf) Emit(out emit.MethodOutput) {
	i.Value.Emit(out)
	out.InstanceOf(i.Of.Descriptor())
}

type Range struct {
	pos  types.Span
	From Expression
	To   Expression
}

func (r *Range) Position() types.Span { return r.pos }
func (r *Range) Type() typesys.Type   { return typesys.IntRange }

func (r *Range) Emit(out emit.MethodOutput) {
	r.From.Emit(out)
	r.To.Emit(out)
	out.NewRange()
}

type Length struct {
	pos   types.Span
	Value Expression
}

func (l *Length) Position() types.Span { return l.pos }
func (l *Length) Type() typesys.Type   { return typesys.Int }

func (l *Length) Emit(out emit.MethodOutput) {
	l.Value.Emit(out)
	out.Length(l.Value.Type().Descriptor())
}
