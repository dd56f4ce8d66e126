package compiler

import (
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
)

// iteratorDesc is the descriptor of the hidden local a for loop keeps its
// iterator in.
const iteratorDesc = "Lzen/Iterator;"

type Statement interface {
	Position() types.Span
	emit.Emitter
}

// loop holds the jump targets of the loop being emitted.
type loop struct {
	cont emit.Label
	end  emit.Label
}

type Block struct {
	pos        types.Span
	Statements []Statement
}

func (b *Block) Position() types.Span { return b.pos }

func (b *Block) Emit(out emit.MethodOutput) {
	for _, st := range b.Statements {
		st.Emit(out)
	}
}

type ExpressionStatement struct {
	pos        types.Span
	Expression Expression
}

func (e *ExpressionStatement) Position() types.Span { return e.pos }

func (e *ExpressionStatement) Emit(out emit.MethodOutput) {
	e.Expression.Emit(out)
	if t := e.Expression.Type(); t != typesys.Void {
		out.Pop(t.Descriptor())
	}
}

type VarDeclaration struct {
	pos   types.Span
	Local *Local
	Value Expression
}

func (v *VarDeclaration) Position() types.Span { return v.pos }

func (v *VarDeclaration) Emit(out emit.MethodOutput) {
	v.Value.Emit(out)
	out.StoreLocal(v.Local.Index, v.Local.Type.Descriptor())
}

type GlobalDeclaration struct {
	pos    types.Span
	Global *Global
	Value  Expression
}

func (g *GlobalDeclaration) Position() types.Span { return g.pos }

func (g *GlobalDeclaration) Emit(out emit.MethodOutput) {
	g.Value.Emit(out)
	out.PutStatic(g.Global.Owner, g.Global.Name, g.Global.Type.Descriptor())
}

type Return struct {
	pos   types.Span
	Value Expression
}

func (r *Return) Position() types.Span { return r.pos }

func (r *Return) Emit(out emit.MethodOutput) {
	if r.Value == nil {
		out.Return(typesys.Void.Descriptor())
		return
	}
	r.Value.Emit(out)
	out.Return(r.Value.Type().Descriptor())
}

type If struct {
	pos       types.Span
	Condition Expression
	Then      Statement
	Else      Statement
}

func (i *If) Position() types.Span { return i.pos }

func (i *If) Emit(out emit.MethodOutput) {
	otherwise, end := out.NewLabel(), out.NewLabel()

	i.Condition.Emit(out)
	out.JumpIf(false, otherwise)
	i.Then.Emit(out)
	if i.Else != nil {
		out.Jump(end)
	}
	out.Mark(otherwise)
	if i.Else != nil {
		i.Else.Emit(out)
		out.Mark(end)
	}
}

type While struct {
	pos       types.Span
	Condition Expression
	Body      Statement
	loop      *loop
}

func (w *While) Position() types.Span { return w.pos }

func (w *While) Emit(out emit.MethodOutput) {
	w.loop.cont, w.loop.end = out.NewLabel(), out.NewLabel()

	out.Mark(w.loop.cont)
	w.Condition.Emit(out)
	out.JumpIf(false, w.loop.end)
	w.Body.Emit(out)
	out.Jump(w.loop.cont)
	out.Mark(w.loop.end)
}

// ForIn iterates arrays, maps and ranges. Each iteration stores the values
// the iterator pushes into Locals.
type ForIn struct {
	pos      types.Span
	Iterable Expression
	Iterator int
	Locals   []*Local
	Body     Statement
	loop     *loop
}

func (f *ForIn) Position() types.Span { return f.pos }

func (f *ForIn) Emit(out emit.MethodOutput) {
	f.loop.cont, f.loop.end = out.NewLabel(), out.NewLabel()

	var descs []string
	for _, l := range f.Locals {
		descs = append(descs, l.Type.Descriptor())
	}

	f.Iterable.Emit(out)
	out.IterBegin(f.Iterable.Type().Descriptor())
	out.StoreLocal(f.Iterator, iteratorDesc)

	out.Mark(f.loop.cont)
	out.LoadLocal(f.Iterator, iteratorDesc)
	out.IterNext(f.loop.end, descs...)
	for i := len(f.Locals) - 1; i >= 0; i-- {
		out.StoreLocal(f.Locals[i].Index, descs[i])
	}
	f.Body.Emit(out)
	out.Jump(f.loop.cont)
	out.Mark(f.loop.end)
}

type Break struct {
	pos  types.Span
	loop *loop
}

func (b *Break) Position() types.Span { return b.pos }

func (b *Break) Emit(out emit.MethodOutput) {
	if b.loop == nil {
		errors.Fault("break outside of loop at %s", b.pos.From)
	}
	out.Jump(b.loop.end)
}

type Continue struct {
	pos  types.Span
	loop *loop
}

func (c *Continue) Position() types.Span { return c.pos }

func (c *Continue) Emit(out emit.MethodOutput) {
	if c.loop == nil {
		errors.Fault("continue outside of loop at %s", c.pos.From)
	}
	out.Jump(c.loop.cont)
}

// terminates reports whether control never falls off the end of st.
func terminates(st Statement) bool {
	switch v := st.(type) {
	case *Return:
		return true
	case *Block:
		return terminatesAll(v.Statements)
	case *If:
		return v.Else != nil && terminates(v.Then) && terminates(v.Else)
	}
	return false
}

func terminatesAll(sts []Statement) bool {
	return len(sts) > 0 && terminates(sts[len(sts)-1])
}

// CompileStatement resolves a parsed statement in this scope.
func (s *Scope) CompileStatement(st parser.Statement) Statement {
	switch stmt := st.(type) {
	case parser.Block:
		return &Block{pos: stmt.Pos, Statements: s.Push().compileStatements(stmt.Statements)}
	case parser.ExpressionStatement:
		return &ExpressionStatement{pos: stmt.Pos, Expression: s.Compile(stmt.Expression, nil)}
	case parser.VarDeclaration:
		if stmt.Global {
			return s.globalDeclaration(stmt)
		}
		return s.varDeclaration(stmt)
	case parser.Return:
		return s.returnStatement(stmt)
	case parser.If:
		ret := &If{
			pos:       stmt.Pos,
			Condition: s.CompileAs(stmt.Condition, typesys.Bool),
			Then:      s.Push().CompileStatement(stmt.Then),
		}
		if stmt.Else != nil {
			ret.Else = s.Push().CompileStatement(stmt.Else)
		}
		return ret
	case parser.While:
		l := &loop{}
		return &While{
			pos:       stmt.Pos,
			Condition: s.CompileAs(stmt.Condition, typesys.Bool),
			Body:      s.enterLoop(l).CompileStatement(stmt.Body),
			loop:      l,
		}
	case parser.ForIn:
		return s.forIn(stmt)
	case parser.Break:
		if s.loop == nil {
			s.Logger().Error(stmt.Pos, errors.Other, "break outside of loop")
		}
		return &Break{pos: stmt.Pos, loop: s.loop}
	case parser.Continue:
		if s.loop == nil {
			s.Logger().Error(stmt.Pos, errors.Other, "continue outside of loop")
		}
		return &Continue{pos: stmt.Pos, loop: s.loop}
	case parser.InvalidStatement:
		return &Block{pos: stmt.Pos}
	}

	errors.Fault("unhandled statement %T", st)
	return nil
}

func (s *Scope) compileStatements(sts []parser.Statement) (ret []Statement) {
	for _, st := range sts {
		ret = append(ret, s.CompileStatement(st))
	}
	return
}

// declaredType resolves the type and initial value of a declaration. The
// value is compiled before the name is bound.
func (s *Scope) declaredType(decl parser.VarDeclaration) (typesys.Type, Expression) {
	var t typesys.Type
	if decl.Type != nil {
		t = s.ResolveType(decl.Type)
	}

	var value Expression
	if decl.Value != nil {
		value = s.Compile(decl.Value, t)
		if t == nil {
			t = value.Type()
			if t == typesys.Null {
				t = typesys.Any
			}
		}
		value = s.Cast(value, t, false)
	}
	if t == nil {
		t = typesys.Any
	}
	if t == typesys.Void {
		s.Logger().Error(decl.Pos, errors.TypeMismatch, "%s cannot have type void", decl.Name)
		t = typesys.Invalid
	}
	if value == nil {
		value = zeroValue(decl.Pos, t)
	}
	return t, value
}

func (s *Scope) varDeclaration(decl parser.VarDeclaration) Statement {
	t, value := s.declaredType(decl)
	local := s.DeclareLocal(decl.Pos, decl.Name, t, decl.Final)
	return &VarDeclaration{pos: decl.Pos, Local: local, Value: value}
}

// globalDeclaration binds a unit-level static. Globals live at the top level
// of a file and must be initialized.
func (s *Scope) globalDeclaration(decl parser.VarDeclaration) Statement {
	if s.method == nil || s.method != s.unit.init {
		s.Logger().Error(decl.Pos, errors.Other, "global %s must be declared at the top level", decl.Name)
	}
	if decl.Value == nil {
		s.Logger().Error(decl.Pos, errors.Other, "global %s must be initialized", decl.Name)
	}

	t, value := s.declaredType(decl)
	g := &Global{Owner: s.unit.Name, Name: decl.Name, Type: t, Final: true}
	if !s.unit.declareGlobal(g) {
		s.Logger().DuplicateDeclaration(decl.Pos, "global", decl.Name)
	}
	return &GlobalDeclaration{pos: decl.Pos, Global: g, Value: value}
}

func (s *Scope) returnStatement(r parser.Return) Statement {
	ret := s.Method().ReturnType()

	switch {
	case r.Value == nil:
		if ret != typesys.Void {
			s.Logger().Error(r.Pos, errors.TypeMismatch, "missing return value of type %s", ret.Name())
		}
		return &Return{pos: r.Pos}
	case ret == typesys.Void:
		if v := s.Compile(r.Value, nil); v.Type() != typesys.Invalid {
			s.Logger().Error(r.Pos, errors.TypeMismatch, "%s does not return a value", s.Method().Name)
		}
		return &Return{pos: r.Pos}
	}

	return &Return{pos: r.Pos, Value: s.CompileAs(r.Value, ret)}
}

// iteration returns the types a for loop with n variables binds over t.
func iteration(t typesys.Type, n int) ([]typesys.Type, bool) {
	switch v := t.(type) {
	case *typesys.Array:
		switch n {
		case 1:
			return []typesys.Type{v.Element}, true
		case 2:
			return []typesys.Type{typesys.Int, v.Element}, true
		}
	case *typesys.Map:
		switch n {
		case 1:
			return []typesys.Type{v.Key}, true
		case 2:
			return []typesys.Type{v.Key, v.Value}, true
		}
	case *typesys.Basic:
		if v == typesys.IntRange && n == 1 {
			return []typesys.Type{typesys.Int}, true
		}
	}
	return nil, false
}

func (s *Scope) forIn(f parser.ForIn) Statement {
	iterable := s.Compile(f.Iterable, nil)

	elems, ok := iteration(iterable.Type(), len(f.Names))
	if !ok {
		if iterable.Type() != typesys.Invalid {
			s.Logger().Error(f.Pos, errors.TypeMismatch, "cannot iterate over %s with %d variables", iterable.Type().Name(), len(f.Names))
		}
		elems = make([]typesys.Type, len(f.Names))
		for i := range elems {
			elems[i] = typesys.Invalid
		}
	}

	l := &loop{}
	inner := s.enterLoop(l)
	ret := &ForIn{
		pos:      f.Pos,
		Iterable: iterable,
		Iterator: inner.method.newLocal("", typesys.Any, true).Index,
		loop:     l,
	}
	for i, name := range f.Names {
		ret.Locals = append(ret.Locals, inner.DeclareLocal(f.Pos, name, elems[i], false))
	}
	ret.Body = inner.CompileStatement(f.Body)

	return ret
}
