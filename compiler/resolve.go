package compiler

import (
	"strings"

	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
	"github.com/pontaoski/zengo/parser"
	"github.com/pontaoski/zengo/types"
	"github.com/pontaoski/zengo/typesys"
)

// ResolveType turns a type reference into a type, reporting unknown names.
func (s *Scope) ResolveType(ref parser.TypeRef) typesys.Type {
	switch t := ref.(type) {
	case parser.NamedType:
		name := strings.Join(t.Parts, ".")
		if typ, ok := s.unit.registry.Type(name); ok {
			return typ
		}
		if sym, ok := s.Lookup(t.Parts[0]); ok {
			switch sym := sym.(type) {
			case typeSymbol:
				if len(t.Parts) == 1 {
					return sym.typ
				}
			case packageSymbol:
				// an imported package alias
				qualified := strings.Join(append([]string{sym.name}, t.Parts[1:]...), ".")
				if typ, ok := s.unit.registry.Type(qualified); ok {
					return typ
				}
			}
		}
		s.Logger().CouldNotResolveSymbol(t.Pos, name)
		return typesys.Invalid
	case parser.ArrayType:
		return typesys.NewArray(s.ResolveType(t.Element))
	case parser.MapType:
		return typesys.NewMap(s.ResolveType(t.Key), s.ResolveType(t.Value))
	case parser.FunctionType:
		var params []typesys.Type
		for _, p := range t.Params {
			params = append(params, s.ResolveType(p))
		}
		ret := typesys.Type(typesys.Void)
		if t.Returns != nil {
			ret = s.ResolveType(t.Returns)
		}
		return typesys.NewFunction(ret, params...)
	}

	errors.Fault("unhandled type reference %T", ref)
	return nil
}

// Partial classifies e without committing to a final type. predicted may be
// nil.
func (s *Scope) Partial(e parser.Expression, predicted typesys.Type) Partial {
	switch expr := e.(type) {
	case parser.Variable:
		return s.variable(expr, predicted)
	case parser.Member:
		return s.member(expr, predicted)
	case parser.InvalidExpression:
		return NewInvalid(expr.Pos, predicted)
	}
	return s.final(e, predicted)
}

// Compile resolves e to a final expression.
func (s *Scope) Compile(e parser.Expression, predicted typesys.Type) Expression {
	return s.finalize(s.Partial(e, predicted), predicted)
}

// CompileAs compiles e and implicitly converts it to t.
func (s *Scope) CompileAs(e parser.Expression, t typesys.Type) Expression {
	return s.Cast(s.Compile(e, t), t, false)
}

func (s *Scope) finalize(p Partial, predicted typesys.Type) Expression {
	switch v := p.(type) {
	case Expression:
		return v
	case *MethodGroup:
		s.Logger().Error(v.pos, errors.InvalidCall, "function %s must be called", v.Name)
	case *TypeName:
		s.Logger().Error(v.pos, errors.TypeMismatch, "type %s is not a value", v.Of.Name())
	case *PackageName:
		s.Logger().Error(v.pos, errors.TypeMismatch, "package %s is not a value", v.Name)
	}
	return NewInvalid(p.Position(), predicted)
}

// Cast converts e to t. Implicit casts only accept conversions that cannot
// lose information.
func (s *Scope) Cast(e Expression, t typesys.Type, explicit bool) Expression {
	from := e.Type()
	if t == nil || from.Equal(t) || t == typesys.Invalid {
		return e
	}
	if from == typesys.Invalid {
		return NewInvalid(e.Position(), t)
	}

	rule, ok := from.CastingRule(t)
	if !ok || (!explicit && !rule.Implicit()) {
		s.Logger().InvalidConversion(e.Position(), from.Name(), t.Name())
		return NewInvalid(e.Position(), t)
	}
	return &Conversion{pos: e.Position(), Value: e, Rule: rule}
}

// variable resolves a bare name: scope bindings first, then a static member
// of the predicted type whose type converts to that prediction.
func (s *Scope) variable(v parser.Variable, predicted typesys.Type) Partial {
	if sym, ok := s.Lookup(v.Name); ok {
		return sym.Partial(v.Pos)
	}

	if predicted != nil {
		if member, ok := predicted.StaticMember(v.Name); ok && member.Type != nil {
			if _, ok := member.Type.CastingRule(predicted); ok {
				return staticMember(v.Pos, predicted, member)
			}
		}
	}

	s.Logger().CouldNotResolveSymbol(v.Pos, v.Name)
	return NewInvalid(v.Pos, predicted)
}

func staticMember(at types.Span, owner typesys.Type, member typesys.Member) Partial {
	if member.Kind == typesys.MethodMember {
		return &MethodGroup{pos: at, Name: member.Name, Methods: member.Methods}
	}
	return &StaticGet{pos: at, Owner: typesys.InternalName(owner), Name: member.Name, typ: member.Type}
}

func (s *Scope) member(m parser.Member, predicted typesys.Type) Partial {
	switch target := s.Partial(m.Value, nil).(type) {
	case *Invalid:
		return NewInvalid(m.Pos, predicted)
	case *PackageName:
		name := target.Name + "." + m.Name
		if t, ok := s.unit.registry.Type(name); ok {
			return &TypeName{pos: m.Pos, Of: t}
		}
		if s.unit.registry.IsPackage(name) {
			return &PackageName{pos: m.Pos, Name: name}
		}
		s.Logger().CouldNotResolveSymbol(m.Pos, name)
	case *TypeName:
		if member, ok := target.Of.StaticMember(m.Name); ok {
			return staticMember(m.Pos, target.Of, member)
		}
		s.Logger().CouldNotResolveSymbol(m.Pos, target.Of.Name()+"."+m.Name)
	case Expression:
		member, ok := target.Type().InstanceMember(m.Name)
		if !ok {
			s.Logger().CouldNotResolveSymbol(m.Pos, target.Type().Name()+"."+m.Name)
			break
		}
		switch member.Kind {
		case typesys.LengthMember:
			return &Length{pos: m.Pos, Value: target}
		case typesys.MethodMember:
			return &MethodGroup{pos: m.Pos, Name: member.Name, Receiver: target, Methods: member.Methods}
		}
		return &FieldGet{pos: m.Pos, Receiver: target, Member: member}
	default:
		s.finalize(target, nil)
	}
	return NewInvalid(m.Pos, predicted)
}

func (s *Scope) final(e parser.Expression, predicted typesys.Type) Expression {
	switch expr := e.(type) {
	case parser.IntLiteral:
		return intConstant(expr, predicted)
	case parser.FloatLiteral:
		typ := typesys.Double
		if expr.Single || predicted == typesys.Float {
			typ = typesys.Float
		}
		return &Constant{pos: expr.Pos, typ: typ, Value: expr.Value}
	case parser.StringLiteral:
		return &Constant{pos: expr.Pos, typ: typesys.String, Value: expr.Value}
	case parser.BoolLiteral:
		return &Constant{pos: expr.Pos, typ: typesys.Bool, Value: expr.Value}
	case parser.NullLiteral:
		return &Constant{pos: expr.Pos, typ: typesys.Null}
	case parser.Unary:
		return s.unary(expr, predicted)
	case parser.Binary:
		return s.binary(expr, predicted)
	case parser.Conditional:
		return s.conditional(expr, predicted)
	case parser.Assign:
		return s.assign(expr)
	case parser.Index:
		return s.index(expr, predicted)
	case parser.Call:
		return s.call(expr, predicted)
	case parser.Cast:
		t := s.ResolveType(expr.Type)
		return s.Cast(s.Compile(expr.Value, t), t, true)
	case parser.InstanceOf:
		value := s.Compile(expr.Value, nil)
		t := s.ResolveType(expr.Type)
		if !typesys.IsReference(value.Type()) && value.Type() != typesys.Invalid {
			s.Logger().Error(expr.Pos, errors.TypeMismatch, "instanceof needs a reference, got %s", value.Type().Name())
		}
		return &InstanceOf{pos: expr.Pos, Value: value, Of: t}
	case parser.Range:
		return &Range{pos: expr.Pos, From: s.CompileAs(expr.From, typesys.Int), To: s.CompileAs(expr.To, typesys.Int)}
	case parser.ArrayLiteral:
		return s.arrayLiteral(expr, predicted)
	case parser.MapLiteral:
		return s.mapLiteral(expr, predicted)
	}

	errors.Fault("unhandled expression %T", e)
	return nil
}

// intConstant types an int literal after the integral type the context
// expects when the value fits it.
func intConstant(lit parser.IntLiteral, predicted typesys.Type) Expression {
	typ := typesys.Int
	if lit.Long {
		typ = typesys.Long
	}

	switch predicted {
	case typesys.Byte:
		if lit.Value >= -1<<7 && lit.Value < 1<<7 {
			typ = typesys.Byte
		}
	case typesys.Short:
		if lit.Value >= -1<<15 && lit.Value < 1<<15 {
			typ = typesys.Short
		}
	case typesys.Long:
		typ = typesys.Long
	case typesys.Float, typesys.Double:
		return &Constant{pos: lit.Pos, typ: predicted, Value: float64(lit.Value)}
	}

	return &Constant{pos: lit.Pos, typ: typ, Value: lit.Value}
}

func (s *Scope) unary(u parser.Unary, predicted typesys.Type) Expression {
	if u.Op == "!" {
		return &Not{pos: u.Pos, Operand: s.CompileAs(u.Operand, typesys.Bool)}
	}

	operand := s.Compile(u.Operand, predicted)
	b, ok := operand.Type().(*typesys.Basic)
	if !ok || !b.IsNumeric() {
		if operand.Type() != typesys.Invalid {
			s.Logger().Error(u.Pos, errors.TypeMismatch, "operator - not defined for %s", operand.Type().Name())
		}
		return NewInvalid(u.Pos, predicted)
	}
	return &Arith{pos: u.Pos, Op: emit.Neg, Left: operand, typ: b}
}

var arithOps = map[string]emit.ArithOp{
	"+": emit.Add,
	"-": emit.Sub,
	"*": emit.Mul,
	"/": emit.Div,
	"%": emit.Rem,
	"&": emit.And,
	"|": emit.Or,
	"^": emit.Xor,
}

var compareOps = map[string]emit.CompareOp{
	"==": emit.Eq,
	"!=": emit.Ne,
	"<":  emit.Lt,
	"<=": emit.Le,
	">":  emit.Gt,
	">=": emit.Ge,
}

func numeric(t typesys.Type) (*typesys.Basic, bool) {
	b, ok := t.(*typesys.Basic)
	return b, ok && b.IsNumeric()
}

func (s *Scope) binary(b parser.Binary, predicted typesys.Type) Expression {
	if b.Op == "&&" || b.Op == "||" {
		return &AndOr{
			pos:   b.Pos,
			And:   b.Op == "&&",
			Left:  s.CompileAs(b.Left, typesys.Bool),
			Right: s.CompileAs(b.Right, typesys.Bool),
		}
	}

	left := s.Compile(b.Left, nil)
	right := s.Compile(b.Right, left.Type())

	cmp, isCompare := compareOps[b.Op]
	if left.Type() == typesys.Invalid || right.Type() == typesys.Invalid {
		if isCompare {
			return NewInvalid(b.Pos, typesys.Bool)
		}
		return NewInvalid(b.Pos, predicted)
	}

	mismatch := func() Expression {
		s.Logger().Error(b.Pos, errors.TypeMismatch, "operator %s not defined for %s and %s", b.Op, left.Type().Name(), right.Type().Name())
		if isCompare {
			return NewInvalid(b.Pos, typesys.Bool)
		}
		return NewInvalid(b.Pos, predicted)
	}

	lb, lnum := numeric(left.Type())
	rb, rnum := numeric(right.Type())

	if isCompare {
		switch {
		case lnum && rnum:
			w := typesys.Wider(lb, rb)
			return &Compare{pos: b.Pos, Op: cmp, Left: s.Cast(left, w, false), Right: s.Cast(right, w, false)}
		case left.Type() == typesys.String && right.Type() == typesys.String:
			return &Compare{pos: b.Pos, Op: cmp, Left: left, Right: right}
		case cmp != emit.Eq && cmp != emit.Ne:
			return mismatch()
		}
		if rule, ok := right.Type().CastingRule(left.Type()); ok && rule.Implicit() {
			return &Compare{pos: b.Pos, Op: cmp, Left: left, Right: s.Cast(right, left.Type(), false)}
		}
		if rule, ok := left.Type().CastingRule(right.Type()); ok && rule.Implicit() {
			return &Compare{pos: b.Pos, Op: cmp, Left: s.Cast(left, right.Type(), false), Right: right}
		}
		return mismatch()
	}

	if b.Op == "~" || (b.Op == "+" && (left.Type() == typesys.String || right.Type() == typesys.String)) {
		return &Arith{
			pos:   b.Pos,
			Op:    emit.Concat,
			Left:  s.Cast(left, typesys.String, true),
			Right: s.Cast(right, typesys.String, true),
			typ:   typesys.String,
		}
	}

	op, ok := arithOps[b.Op]
	if !ok {
		return mismatch()
	}

	switch b.Op {
	case "&", "|", "^":
		if left.Type() == typesys.Bool && right.Type() == typesys.Bool {
			return &Arith{pos: b.Pos, Op: op, Left: left, Right: right, typ: typesys.Bool}
		}
		if !lnum || !rnum || !lb.IsIntegral() || !rb.IsIntegral() {
			return mismatch()
		}
	default:
		if !lnum || !rnum {
			return mismatch()
		}
	}

	w := typesys.Wider(lb, rb)
	return &Arith{pos: b.Pos, Op: op, Left: s.Cast(left, w, false), Right: s.Cast(right, w, false), typ: w}
}

func (s *Scope) conditional(c parser.Conditional, predicted typesys.Type) Expression {
	cond := s.CompileAs(c.Condition, typesys.Bool)
	then := s.Compile(c.Then, predicted)

	typ := predicted
	if typ == nil && then.Type() != typesys.Null {
		typ = then.Type()
	}
	otherwise := s.Compile(c.Else, typ)
	if typ == nil {
		typ = otherwise.Type()
	}

	return &Conditional{
		pos:       c.Pos,
		Condition: cond,
		Then:      s.Cast(then, typ, false),
		Else:      s.Cast(otherwise, typ, false),
		typ:       typ,
	}
}

// assign resolves plain and compound assignments. A compound assignment reads
// its target again, so the target's subexpressions are evaluated twice.
func (s *Scope) assign(a parser.Assign) Expression {
	value := a.Value
	if a.Op != "" {
		value = parser.Binary{Node: a.Node, Op: a.Op, Left: a.Target, Right: a.Value}
	}

	switch target := a.Target.(type) {
	case parser.Variable:
		sym, ok := s.Lookup(target.Name)
		if !ok {
			s.Logger().CouldNotResolveSymbol(target.Pos, target.Name)
			s.Compile(a.Value, nil)
			return NewInvalid(a.Pos, typesys.Void)
		}
		switch v := sym.(type) {
		case *Local:
			if v.Final {
				break
			}
			return &LocalSet{pos: a.Pos, Local: v, Value: s.CompileAs(value, v.Type)}
		case *Global:
			if v.Final {
				break
			}
			return &StaticSet{pos: a.Pos, Owner: v.Owner, Name: v.Name, Value: s.CompileAs(value, v.Type), typ: v.Type}
		}
		s.Logger().Error(a.Pos, errors.InvalidAssignment, "cannot assign to %s", target.Name)
	case parser.Member:
		return s.assignMember(a, target, value)
	case parser.Index:
		container := s.Compile(target.Value, nil)
		switch t := container.Type().(type) {
		case *typesys.Array:
			return &IndexSet{pos: a.Pos, Value: container, Index: s.CompileAs(target.Index, typesys.Int), NewValue: s.CompileAs(value, t.Element)}
		case *typesys.Map:
			return &IndexSet{pos: a.Pos, Value: container, Index: s.CompileAs(target.Index, t.Key), NewValue: s.CompileAs(value, t.Value)}
		}
		if container.Type() != typesys.Invalid {
			s.Logger().Error(a.Pos, errors.InvalidAssignment, "cannot index %s", container.Type().Name())
		}
	default:
		s.Logger().Error(a.Pos, errors.InvalidAssignment, "invalid assignment target")
	}
	return NewInvalid(a.Pos, typesys.Void)
}

func (s *Scope) assignMember(a parser.Assign, target parser.Member, value parser.Expression) Expression {
	switch owner := s.Partial(target.Value, nil).(type) {
	case *Invalid:
		return NewInvalid(a.Pos, typesys.Void)
	case *TypeName:
		member, ok := owner.Of.StaticMember(target.Name)
		if ok && member.Kind == typesys.FieldMember && member.Writable {
			return &StaticSet{
				pos:   a.Pos,
				Owner: typesys.InternalName(owner.Of),
				Name:  member.Name,
				Value: s.CompileAs(value, member.Type),
				typ:   member.Type,
			}
		}
	case Expression:
		member, ok := owner.Type().InstanceMember(target.Name)
		if ok && member.Kind == typesys.FieldMember && member.Writable {
			return &FieldSet{pos: a.Pos, Receiver: owner, Member: member, Value: s.CompileAs(value, member.Type)}
		}
	}
	s.Logger().Error(a.Pos, errors.InvalidAssignment, "cannot assign to %s", target.Name)
	return NewInvalid(a.Pos, typesys.Void)
}

func (s *Scope) index(i parser.Index, predicted typesys.Type) Expression {
	value := s.Compile(i.Value, nil)

	switch t := value.Type().(type) {
	case *typesys.Array:
		return &IndexGet{pos: i.Pos, Value: value, Index: s.CompileAs(i.Index, typesys.Int), typ: t.Element}
	case *typesys.Map:
		return &IndexGet{pos: i.Pos, Value: value, Index: s.CompileAs(i.Index, t.Key), typ: t.Value}
	}

	if value.Type() != typesys.Invalid {
		s.Logger().Error(i.Pos, errors.TypeMismatch, "cannot index %s", value.Type().Name())
	}
	return NewInvalid(i.Pos, predicted)
}

func (s *Scope) arrayLiteral(a parser.ArrayLiteral, predicted typesys.Type) Expression {
	var elem typesys.Type
	if arr, ok := predicted.(*typesys.Array); ok {
		elem = arr.Element
	}

	var elems []Expression
	for _, e := range a.Elements {
		v := s.Compile(e, elem)
		if elem == nil && v.Type() != typesys.Null {
			elem = v.Type()
		}
		elems = append(elems, v)
	}
	if elem == nil {
		elem = typesys.Any
	}
	for i := range elems {
		elems[i] = s.Cast(elems[i], elem, false)
	}

	return &ArrayLiteral{pos: a.Pos, typ: typesys.NewArray(elem), Elements: elems}
}

// mapKey compiles a map literal key. Bare identifiers are string keys.
func (s *Scope) mapKey(e parser.Expression, predicted typesys.Type) Expression {
	if v, ok := e.(parser.Variable); ok {
		return &Constant{pos: v.Pos, typ: typesys.String, Value: v.Name}
	}
	return s.Compile(e, predicted)
}

func (s *Scope) mapLiteral(m parser.MapLiteral, predicted typesys.Type) Expression {
	var key, value typesys.Type
	if mt, ok := predicted.(*typesys.Map); ok {
		key, value = mt.Key, mt.Value
	}

	lit := &MapLiteral{pos: m.Pos}
	for _, entry := range m.Entries {
		k := s.mapKey(entry.Key, key)
		if key == nil {
			key = k.Type()
		}
		v := s.Compile(entry.Value, value)
		if value == nil && v.Type() != typesys.Null {
			value = v.Type()
		}
		lit.Keys = append(lit.Keys, k)
		lit.Values = append(lit.Values, v)
	}
	if key == nil {
		key = typesys.String
	}
	if value == nil {
		value = typesys.Any
	}
	for i := range lit.Keys {
		lit.Keys[i] = s.Cast(lit.Keys[i], key, false)
		lit.Values[i] = s.Cast(lit.Values[i], value, false)
	}

	lit.typ = typesys.NewMap(key, value)
	return lit
}

func (s *Scope) call(c parser.Call, predicted typesys.Type) Expression {
	switch callee := s.Partial(c.Callee, nil).(type) {
	case *Invalid:
		s.compileArguments(c.Arguments)
		return NewInvalid(c.Pos, predicted)
	case *MethodGroup:
		return s.callMethod(c, callee, predicted)
	case *TypeName:
		s.Logger().Error(c.Pos, errors.InvalidCall, "type %s is not callable", callee.Of.Name())
	case Expression:
		fn, ok := callee.Type().(*typesys.Function)
		if !ok {
			s.Logger().Error(c.Pos, errors.InvalidCall, "%s is not callable", callee.Type().Name())
			break
		}
		if len(c.Arguments) != len(fn.Params) {
			s.Logger().Error(c.Pos, errors.InvalidCall, "%s takes %d arguments, got %d", fn.Name(), len(fn.Params), len(c.Arguments))
			break
		}
		call := &FunctionCall{pos: c.Pos, Callee: callee, Function: fn}
		for i, arg := range c.Arguments {
			call.Arguments = append(call.Arguments, s.CompileAs(arg, fn.Params[i]))
		}
		return call
	default:
		s.finalize(callee, nil)
	}

	s.compileArguments(c.Arguments)
	return NewInvalid(c.Pos, predicted)
}

func (s *Scope) compileArguments(args []parser.Expression) (ret []Expression) {
	for _, arg := range args {
		ret = append(ret, s.Compile(arg, nil))
	}
	return
}

func typeNames(exprs []Expression) string {
	var names []string
	for _, e := range exprs {
		names = append(names, e.Type().Name())
	}
	return strings.Join(names, ", ")
}

// callMethod picks an overload. A single candidate predicts its parameter
// types into the arguments; otherwise arguments are compiled on their own and
// the candidate with the most exact matches among those accepting every
// argument implicitly wins.
func (s *Scope) callMethod(c parser.Call, group *MethodGroup, predicted typesys.Type) Expression {
	var candidates []*typesys.Method
	for _, m := range group.Methods {
		if m.Header().Accepts(len(c.Arguments)) {
			candidates = append(candidates, m)
		}
	}

	if len(candidates) == 0 {
		s.Logger().Error(c.Pos, errors.InvalidCall, "no overload of %s takes %d arguments", group.Name, len(c.Arguments))
		s.compileArguments(c.Arguments)
		return NewInvalid(c.Pos, predicted)
	}

	if len(candidates) == 1 {
		m := candidates[0]
		var args []Expression
		for i, arg := range c.Arguments {
			args = append(args, s.CompileAs(arg, m.Header().Params[i].Type))
		}
		return s.invoke(c.Pos, group, m, args)
	}

	args := s.compileArguments(c.Arguments)
	var best *typesys.Method
	bestScore := -1

next:
	for _, m := range candidates {
		score := 0
		for i, arg := range args {
			rule, ok := arg.Type().CastingRule(m.Header().Params[i].Type)
			if !ok || !rule.Implicit() {
				continue next
			}
			if rule.Kind == typesys.Identity {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = m, score
		}
	}

	if best == nil {
		s.Logger().Error(c.Pos, errors.InvalidCall, "no overload of %s matches (%s)", group.Name, typeNames(args))
		return NewInvalid(c.Pos, predicted)
	}
	for i := range args {
		args[i] = s.Cast(args[i], best.Header().Params[i].Type, false)
	}
	return s.invoke(c.Pos, group, best, args)
}

// invoke completes args with defaults and builds the call.
func (s *Scope) invoke(at types.Span, group *MethodGroup, m *typesys.Method, args []Expression) Expression {
	params := m.Header().Params
	for i := len(args); i < len(params); i++ {
		args = append(args, s.unit.defaultArgument(m, i, at))
	}

	if !m.IsStatic() && group.Receiver == nil {
		s.Logger().Error(at, errors.InvalidCall, "%s needs a receiver", group.Name)
		return NewInvalid(at, m.ReturnType())
	}
	return &Call{pos: at, Method: m, Receiver: group.Receiver, Arguments: args}
}
