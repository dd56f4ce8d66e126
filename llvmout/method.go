package llvmout

import (
	"fmt"
	"math"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pontaoski/zengo/emit"
	"github.com/pontaoski/zengo/errors"
)

type incoming struct {
	from  *ir.Block
	stack []value.Value
}

// label is a block entered by jumps. Operands left on the stack across a
// jump are merged with phis when the label is marked.
type label struct {
	block  *ir.Block
	marked bool
	incs   []incoming
	phis   []*ir.InstPhi
}

// Method lowers one stack VM method into an LLVM function. Locals live in
// allocas in the entry block.
type Method struct {
	mod *Module
	sig emit.Signature
	fn  *ir.Func

	entry  *ir.Block
	cur    *ir.Block
	stack  []value.Value
	locals map[int]*ir.InstAlloca
	labels map[emit.Label]*label
	next   emit.Label

	err    error
	closed bool
}

func newMethod(mod *Module, sig emit.Signature, fn *ir.Func) *Method {
	m := &Method{
		mod:    mod,
		sig:    sig,
		fn:     fn,
		locals: map[int]*ir.InstAlloca{},
		labels: map[emit.Label]*label{},
	}

	m.entry = fn.NewBlock("entry")
	m.cur = m.entry
	for i, param := range fn.Params {
		slot := m.entry.NewAlloca(param.Type())
		m.entry.NewStore(param, slot)
		m.locals[i] = slot
	}

	return m
}

func (m *Method) Signature() emit.Signature { return m.sig }
func (m *Method) Static() bool              { return m.sig.Static }

// Func is the function being built.
func (m *Method) Func() *ir.Func { return m.fn }

// failed faults on emission after Close and reports whether an unsupported
// operation already broke this method.
func (m *Method) failed() bool {
	if m.closed {
		errors.Fault("emission into closed method %s.%s", m.sig.Owner, m.sig.Name)
	}
	return m.err != nil
}

func (m *Method) unsupported(what string) {
	if m.failed() {
		return
	}
	m.err = fmt.Errorf("%s.%s: %s is not supported by the LLVM target", m.sig.Owner, m.sig.Name, what)
}

func (m *Method) block() *ir.Block {
	if m.cur == nil {
		m.cur = m.fn.NewBlock("")
	}
	return m.cur
}

func (m *Method) push(v value.Value) {
	m.stack = append(m.stack, v)
}

func (m *Method) pop() value.Value {
	if len(m.stack) == 0 {
		errors.Fault("operand stack underflow in %s.%s", m.sig.Owner, m.sig.Name)
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v
}

func coerceIn(b *ir.Block, v value.Value, t types.Type) value.Value {
	if v.Type().Equal(t) || !isPointer(v.Type()) {
		return v
	}
	ptr, ok := t.(*types.PointerType)
	if !ok {
		return v
	}

	switch c := v.(type) {
	case *constant.Null:
		return constant.NewNull(ptr)
	case constant.Constant:
		return constant.NewBitCast(c, ptr)
	}
	return b.NewBitCast(v, ptr)
}

func (m *Method) coerce(v value.Value, t types.Type) value.Value {
	return coerceIn(m.block(), v, t)
}

func (m *Method) Constant(v interface{}, desc string) {
	if m.failed() {
		return
	}

	t := m.mod.types.Of(desc)
	switch v := v.(type) {
	case bool:
		m.push(constant.NewBool(v))
		return
	case int64:
		switch t := t.(type) {
		case *types.IntType:
			m.push(constant.NewInt(t, v))
			return
		case *types.FloatType:
			m.push(constant.NewFloat(t, float64(v)))
			return
		}
	case float64:
		if t, ok := t.(*types.FloatType); ok {
			m.push(constant.NewFloat(t, v))
			return
		}
	case string:
		m.push(m.stringValue(v))
		return
	}

	m.unsupported(fmt.Sprintf("constant %v of type %s", v, desc))
}

func (m *Method) stringValue(s string) value.Value {
	b := m.block()
	str := m.mod.types.String

	val := m.entry.NewAlloca(str)
	length := getStructElm(b, str, val, 0)
	data := getStructElm(b, str, val, 1)

	b.NewStore(constant.NewInt(types.I64, int64(len(s))), length)
	b.NewStore(b.NewBitCast(m.mod.stringData(s), types.NewPointer(types.I8)), data)

	return val
}

func (m *Method) Null() {
	if m.failed() {
		return
	}
	m.push(constant.NewNull(m.mod.types.Reference))
}

func (m *Method) Pop(desc string) {
	if m.failed() {
		return
	}
	m.pop()
}

func (m *Method) Dup(desc string) {
	if m.failed() {
		return
	}
	v := m.pop()
	m.push(v)
	m.push(v)
}

func (m *Method) local(index int, desc string) *ir.InstAlloca {
	slot, ok := m.locals[index]
	if !ok {
		slot = m.entry.NewAlloca(m.mod.types.Of(desc))
		m.locals[index] = slot
	}
	return slot
}

func (m *Method) LoadLocal(index int, desc string) {
	if m.failed() {
		return
	}
	slot := m.local(index, desc)
	m.push(m.block().NewLoad(slot.ElemType, slot))
}

func (m *Method) StoreLocal(index int, desc string) {
	if m.failed() {
		return
	}
	slot := m.local(index, desc)
	v := m.coerce(m.pop(), slot.ElemType)
	m.block().NewStore(v, slot)
}

func (m *Method) GetStatic(owner, name, desc string) {
	if m.failed() {
		return
	}
	g := m.mod.global(owner, name, desc)
	m.push(m.block().NewLoad(g.ContentType, g))
}

func (m *Method) PutStatic(owner, name, desc string) {
	if m.failed() {
		return
	}
	g := m.mod.global(owner, name, desc)
	m.block().NewStore(m.coerce(m.pop(), g.ContentType), g)
}

func (m *Method) GetField(owner, name, desc string) { m.unsupported("field access") }
func (m *Method) PutField(owner, name, desc string) { m.unsupported("field access") }

func (m *Method) call(callee value.Value, sig *types.FuncType) {
	args := make([]value.Value, len(sig.Params))
	for i := len(sig.Params) - 1; i >= 0; i-- {
		args[i] = m.coerce(m.pop(), sig.Params[i])
	}

	result := m.block().NewCall(callee, args...)
	if !types.IsVoid(sig.RetType) {
		m.push(result)
	}
}

func (m *Method) InvokeVirtual(owner, name, desc string) {
	if m.failed() {
		return
	}
	fn := m.mod.function(owner, name, desc, false)
	m.call(fn, fn.Sig)
}

func (m *Method) InvokeStatic(owner, name, desc string) {
	if m.failed() {
		return
	}
	fn := m.mod.function(owner, name, desc, true)
	m.call(fn, fn.Sig)
}

func (m *Method) InvokeSpecial(owner, name, desc string) {
	m.InvokeVirtual(owner, name, desc)
}

// InvokeFunction calls a function value pushed before its arguments.
func (m *Method) InvokeFunction(desc string) {
	if m.failed() {
		return
	}

	params, ret := SplitDescriptor(desc)
	var paramTypes []types.Type
	for _, p := range params {
		paramTypes = append(paramTypes, m.mod.types.Of(p))
	}
	sig := types.NewFunc(m.mod.types.Of(ret), paramTypes...)

	args := make([]value.Value, len(paramTypes))
	for i := len(paramTypes) - 1; i >= 0; i-- {
		args[i] = m.coerce(m.pop(), paramTypes[i])
	}
	callee := m.coerce(m.pop(), types.NewPointer(sig))

	for _, arg := range args {
		m.push(arg)
	}
	m.call(callee, sig)
}

func (m *Method) Convert(from, to string) {
	if m.failed() {
		return
	}

	v := m.pop()
	ft, tt := m.mod.types.Of(from), m.mod.types.Of(to)
	b := m.block()

	switch {
	case from == to:
		m.push(v)
	case isInt(ft) && isInt(tt):
		fbits, tbits := ft.(*types.IntType).BitSize, tt.(*types.IntType).BitSize
		switch {
		case fbits == tbits:
			m.push(v)
		case fbits == 1:
			m.push(b.NewZExt(v, tt))
		case fbits < tbits:
			m.push(b.NewSExt(v, tt))
		default:
			m.push(b.NewTrunc(v, tt))
		}
	case isInt(ft) && isFloat(tt):
		m.push(b.NewSIToFP(v, tt))
	case isFloat(ft) && isInt(tt):
		m.push(b.NewFPToSI(v, tt))
	case isFloat(ft) && isFloat(tt):
		frank, trank := floatRank(ft.(*types.FloatType)), floatRank(tt.(*types.FloatType))
		switch {
		case frank < trank:
			m.push(b.NewFPExt(v, tt))
		case frank > trank:
			m.push(b.NewFPTrunc(v, tt))
		default:
			m.push(v)
		}
	case isPointer(ft) && isPointer(tt):
		m.push(m.coerce(v, tt))
	default:
		fn := m.mod.runtimeFunction("convert."+from+"."+to, tt, ft)
		m.push(b.NewCall(fn, v))
	}
}

func (m *Method) CheckCast(desc string) {
	if m.failed() {
		return
	}
	m.push(m.coerce(m.pop(), m.mod.types.Of(desc)))
}

func (m *Method) InstanceOf(desc string) { m.unsupported("instanceof") }

func (m *Method) Arith(op emit.ArithOp, desc string) {
	if m.failed() {
		return
	}

	t := m.mod.types.Of(desc)
	b := m.block()

	if op == emit.Neg {
		x := m.pop()
		if ft, ok := t.(*types.FloatType); ok {
			m.push(b.NewFSub(constant.NewFloat(ft, math.Copysign(0, -1)), x))
			return
		}
		m.push(b.NewSub(constant.NewInt(t.(*types.IntType), 0), x))
		return
	}

	y, x := m.pop(), m.pop()

	if op == emit.Concat {
		str := m.mod.types.StringPointer
		fn := m.mod.runtimeFunction("concat", str, str, str)
		m.push(b.NewCall(fn, m.coerce(x, str), m.coerce(y, str)))
		return
	}

	if isFloat(t) {
		switch op {
		case emit.Add:
			m.push(b.NewFAdd(x, y))
		case emit.Sub:
			m.push(b.NewFSub(x, y))
		case emit.Mul:
			m.push(b.NewFMul(x, y))
		case emit.Div:
			m.push(b.NewFDiv(x, y))
		case emit.Rem:
			m.push(b.NewFRem(x, y))
		default:
			m.unsupported(fmt.Sprintf("%s on %s", op, desc))
		}
		return
	}

	switch op {
	case emit.Add:
		m.push(b.NewAdd(x, y))
	case emit.Sub:
		m.push(b.NewSub(x, y))
	case emit.Mul:
		m.push(b.NewMul(x, y))
	case emit.Div:
		m.push(b.NewSDiv(x, y))
	case emit.Rem:
		m.push(b.NewSRem(x, y))
	case emit.And:
		m.push(b.NewAnd(x, y))
	case emit.Or:
		m.push(b.NewOr(x, y))
	case emit.Xor:
		m.push(b.NewXor(x, y))
	}
}

var (
	intPredicates = [...]enum.IPred{
		emit.Eq: enum.IPredEQ,
		emit.Ne: enum.IPredNE,
		emit.Lt: enum.IPredSLT,
		emit.Le: enum.IPredSLE,
		emit.Gt: enum.IPredSGT,
		emit.Ge: enum.IPredSGE,
	}
	floatPredicates = [...]enum.FPred{
		emit.Eq: enum.FPredOEQ,
		emit.Ne: enum.FPredONE,
		emit.Lt: enum.FPredOLT,
		emit.Le: enum.FPredOLE,
		emit.Gt: enum.FPredOGT,
		emit.Ge: enum.FPredOGE,
	}
)

func (m *Method) Compare(op emit.CompareOp, desc string) {
	if m.failed() {
		return
	}

	t := m.mod.types.Of(desc)
	b := m.block()
	y, x := m.pop(), m.pop()

	switch {
	case desc == stringDesc:
		str := m.mod.types.StringPointer
		fn := m.mod.runtimeFunction("compare", types.I32, str, str)
		result := b.NewCall(fn, m.coerce(x, str), m.coerce(y, str))
		m.push(b.NewICmp(intPredicates[op], result, constant.NewInt(types.I32, 0)))
	case isFloat(t):
		m.push(b.NewFCmp(floatPredicates[op], x, y))
	case isInt(t):
		m.push(b.NewICmp(intPredicates[op], x, y))
	case op == emit.Eq || op == emit.Ne:
		ref := m.mod.types.Reference
		m.push(b.NewICmp(intPredicates[op], m.coerce(x, ref), m.coerce(y, ref)))
	default:
		m.unsupported(fmt.Sprintf("%s on %s", op, desc))
	}
}

func (m *Method) Not() {
	if m.failed() {
		return
	}
	m.push(m.block().NewXor(m.pop(), constant.True))
}

func (m *Method) NewLabel() emit.Label {
	m.next++
	return m.next
}

func (m *Method) label(l emit.Label) *label {
	lb, ok := m.labels[l]
	if !ok {
		lb = &label{block: m.fn.NewBlock(fmt.Sprintf("L%d", l))}
		m.labels[l] = lb
	}
	return lb
}

// branch records an edge into lb carrying the given operands.
func (m *Method) branch(lb *label, from *ir.Block, stack []value.Value) {
	stack = append([]value.Value(nil), stack...)
	if !lb.marked {
		lb.incs = append(lb.incs, incoming{from: from, stack: stack})
		return
	}

	if len(stack) != len(lb.phis) {
		m.err = fmt.Errorf("%s.%s: stack height mismatch at a backward jump", m.sig.Owner, m.sig.Name)
		return
	}
	for i, phi := range lb.phis {
		phi.Incs = append(phi.Incs, ir.NewIncoming(coerceIn(from, stack[i], phi.Type()), from))
	}
}

func (m *Method) Mark(l emit.Label) {
	if m.failed() {
		return
	}

	lb := m.label(l)
	if lb.marked {
		errors.Fault("label L%d marked twice in %s.%s", l, m.sig.Owner, m.sig.Name)
	}
	if m.cur != nil {
		m.cur.NewBr(lb.block)
		m.branch(lb, m.cur, m.stack)
	}

	lb.marked = true
	m.cur = lb.block
	m.stack = nil
	if len(lb.incs) == 0 {
		return
	}

	depth := len(lb.incs[0].stack)
	for _, inc := range lb.incs {
		if len(inc.stack) != depth {
			m.err = fmt.Errorf("%s.%s: stack height mismatch at L%d", m.sig.Owner, m.sig.Name, l)
			return
		}
	}

	for i := 0; i < depth; i++ {
		t := lb.incs[0].stack[i].Type()
		var incs []*ir.Incoming
		for _, inc := range lb.incs {
			incs = append(incs, ir.NewIncoming(coerceIn(inc.from, inc.stack[i], t), inc.from))
		}
		phi := lb.block.NewPhi(incs...)
		lb.phis = append(lb.phis, phi)
		m.push(phi)
	}
}

func (m *Method) Jump(l emit.Label) {
	if m.failed() {
		return
	}

	lb := m.label(l)
	from := m.block()
	from.NewBr(lb.block)
	m.branch(lb, from, m.stack)

	m.cur = nil
	m.stack = nil
}

func (m *Method) JumpIf(cond bool, l emit.Label) {
	if m.failed() {
		return
	}

	v := m.pop()
	lb := m.label(l)
	from := m.block()
	next := m.fn.NewBlock("")

	if cond {
		from.NewCondBr(v, lb.block, next)
	} else {
		from.NewCondBr(v, next, lb.block)
	}
	m.branch(lb, from, m.stack)

	m.cur = next
}

func (m *Method) NewArray(desc string, size int)             { m.unsupported("arrays") }
func (m *Method) ArrayLoad(desc string)                      { m.unsupported("arrays") }
func (m *Method) ArrayStore(desc string)                     { m.unsupported("arrays") }
func (m *Method) NewMap(keyDesc, valueDesc string, size int) { m.unsupported("maps") }
func (m *Method) MapLoad(desc string)                        { m.unsupported("maps") }
func (m *Method) MapStore(desc string)                       { m.unsupported("maps") }
func (m *Method) Length(desc string)                         { m.unsupported("length") }
func (m *Method) NewRange()                                  { m.unsupported("ranges") }
func (m *Method) IterBegin(desc string)                      { m.unsupported("iteration") }
func (m *Method) IterNext(done emit.Label, descs ...string)  { m.unsupported("iteration") }

func (m *Method) Return(desc string) {
	if m.failed() {
		return
	}

	b := m.block()
	if desc == "V" {
		b.NewRet(nil)
	} else {
		b.NewRet(m.coerce(m.pop(), m.fn.Sig.RetType))
	}

	m.cur = nil
	m.stack = nil
}

// Close terminates dangling blocks. A method that used an unsupported
// operation is left as a declaration and its error returned.
func (m *Method) Close() error {
	if m.closed {
		return fmt.Errorf("method %s.%s closed twice", m.sig.Owner, m.sig.Name)
	}
	m.closed = true

	if m.err != nil {
		m.fn.Blocks = nil
		return m.err
	}

	for _, b := range m.fn.Blocks {
		if b.Term == nil {
			b.NewUnreachable()
		}
	}
	return nil
}
