package emit

import (
	"fmt"
	"strings"

	"github.com/pontaoski/zengo/errors"
)

type Opcode int

const (
	CONST Opcode = iota
	NULL
	POP
	DUP
	LOAD
	STORE
	GETSTATIC
	PUTSTATIC
	GETFIELD
	PUTFIELD
	INVOKEVIRTUAL
	INVOKESTATIC
	INVOKESPECIAL
	INVOKEFUNCTION
	CONVERT
	CHECKCAST
	INSTANCEOF
	ARITH
	COMPARE
	NOT
	LABEL
	JUMP
	JUMPIF
	NEWARRAY
	ARRAYLOAD
	ARRAYSTORE
	NEWMAP
	MAPLOAD
	MAPSTORE
	LENGTH
	NEWRANGE
	ITERBEGIN
	ITERNEXT
	RETURN
)

var opcodeNames = [...]string{
	"CONST", "NULL", "POP", "DUP", "LOAD", "STORE", "GETSTATIC", "PUTSTATIC",
	"GETFIELD", "PUTFIELD", "INVOKEVIRTUAL", "INVOKESTATIC", "INVOKESPECIAL",
	"INVOKEFUNCTION", "CONVERT", "CHECKCAST", "INSTANCEOF", "ARITH", "COMPARE",
	"NOT", "LABEL", "JUMP", "JUMPIF", "NEWARRAY", "ARRAYLOAD", "ARRAYSTORE",
	"NEWMAP", "MAPLOAD", "MAPSTORE", "LENGTH", "NEWRANGE", "ITERBEGIN",
	"ITERNEXT", "RETURN",
}

func (o Opcode) String() string {
	return opcodeNames[o]
}

type Instruction struct {
	Op    Opcode
	Owner string
	Name  string
	Desc  string
	Descs []string
	Value interface{}
	Index int
	Label Label
}

func (i Instruction) String() string {
	switch i.Op {
	case CONST:
		if s, ok := i.Value.(string); ok {
			return fmt.Sprintf("CONST %q %s", s, i.Desc)
		}
		return fmt.Sprintf("CONST %v %s", i.Value, i.Desc)
	case NULL, NOT, NEWRANGE:
		return i.Op.String()
	case LOAD, STORE:
		return fmt.Sprintf("%s %d %s", i.Op, i.Index, i.Desc)
	case GETSTATIC, PUTSTATIC, GETFIELD, PUTFIELD:
		return fmt.Sprintf("%s %s.%s %s", i.Op, i.Owner, i.Name, i.Desc)
	case INVOKEVIRTUAL, INVOKESTATIC, INVOKESPECIAL:
		return fmt.Sprintf("%s %s.%s%s", i.Op, i.Owner, i.Name, i.Desc)
	case CONVERT:
		return fmt.Sprintf("CONVERT %s %s", i.Owner, i.Desc)
	case ARITH, COMPARE:
		return fmt.Sprintf("%s %s %s", i.Op, i.Name, i.Desc)
	case LABEL:
		return fmt.Sprintf("L%d:", i.Label)
	case JUMP:
		return fmt.Sprintf("JUMP L%d", i.Label)
	case JUMPIF:
		return fmt.Sprintf("JUMPIF %v L%d", i.Value, i.Label)
	case NEWARRAY:
		return fmt.Sprintf("NEWARRAY %s %d", i.Desc, i.Index)
	case NEWMAP:
		return fmt.Sprintf("NEWMAP %s %s %d", i.Owner, i.Desc, i.Index)
	case ITERNEXT:
		return fmt.Sprintf("ITERNEXT L%d %s", i.Label, strings.Join(i.Descs, " "))
	}
	return fmt.Sprintf("%s %s", i.Op, i.Desc)
}

// Method is a stack VM method body.
type Method struct {
	sig    Signature
	Code   []Instruction
	labels int
	closed bool
}

func NewMethod(sig Signature) *Method {
	return &Method{sig: sig}
}

func (m *Method) append(i Instruction) {
	if m.closed {
		errors.Fault("emission into closed method %s.%s", m.sig.Owner, m.sig.Name)
	}
	m.Code = append(m.Code, i)
}

func (m *Method) Signature() Signature { return m.sig }
func (m *Method) Static() bool         { return m.sig.Static }
func (m *Method) Closed() bool         { return m.closed }

func (m *Method) Constant(value interface{}, desc string) {
	m.append(Instruction{Op: CONST, Value: value, Desc: desc})
}

func (m *Method) Null()           { m.append(Instruction{Op: NULL}) }
func (m *Method) Pop(desc string) { m.append(Instruction{Op: POP, Desc: desc}) }
func (m *Method) Dup(desc string) { m.append(Instruction{Op: DUP, Desc: desc}) }
func (m *Method) Not()            { m.append(Instruction{Op: NOT}) }
func (m *Method) NewRange()       { m.append(Instruction{Op: NEWRANGE}) }
func (m *Method) Return(d string) { m.append(Instruction{Op: RETURN, Desc: d}) }
func (m *Method) Length(d string) { m.append(Instruction{Op: LENGTH, Desc: d}) }
func (m *Method) CheckCast(d string) {
	m.append(Instruction{Op: CHECKCAST, Desc: d})
}
func (m *Method) InstanceOf(d string) {
	m.append(Instruction{Op: INSTANCEOF, Desc: d})
}
func (m *Method) InvokeFunction(d string) {
	m.append(Instruction{Op: INVOKEFUNCTION, Desc: d})
}

func (m *Method) LoadLocal(index int, desc string) {
	m.append(Instruction{Op: LOAD, Index: index, Desc: desc})
}

func (m *Method) StoreLocal(index int, desc string) {
	m.append(Instruction{Op: STORE, Index: index, Desc: desc})
}

func (m *Method) GetStatic(owner, name, desc string) {
	m.append(Instruction{Op: GETSTATIC, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) PutStatic(owner, name, desc string) {
	m.append(Instruction{Op: PUTSTATIC, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) GetField(owner, name, desc string) {
	m.append(Instruction{Op: GETFIELD, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) PutField(owner, name, desc string) {
	m.append(Instruction{Op: PUTFIELD, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) InvokeVirtual(owner, name, desc string) {
	m.append(Instruction{Op: INVOKEVIRTUAL, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) InvokeStatic(owner, name, desc string) {
	m.append(Instruction{Op: INVOKESTATIC, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) InvokeSpecial(owner, name, desc string) {
	m.append(Instruction{Op: INVOKESPECIAL, Owner: owner, Name: name, Desc: desc})
}

func (m *Method) Convert(from, to string) {
	m.append(Instruction{Op: CONVERT, Owner: from, Desc: to})
}

func (m *Method) Arith(op ArithOp, desc string) {
	m.append(Instruction{Op: ARITH, Name: op.String(), Value: op, Desc: desc})
}

func (m *Method) Compare(op CompareOp, desc string) {
	m.append(Instruction{Op: COMPARE, Name: op.String(), Value: op, Desc: desc})
}

func (m *Method) NewLabel() Label {
	m.labels++
	return Label(m.labels)
}

func (m *Method) Mark(l Label) {
	m.append(Instruction{Op: LABEL, Label: l})
}

func (m *Method) Jump(l Label) {
	m.append(Instruction{Op: JUMP, Label: l})
}

func (m *Method) JumpIf(cond bool, l Label) {
	m.append(Instruction{Op: JUMPIF, Value: cond, Label: l})
}

func (m *Method) NewArray(desc string, size int) {
	m.append(Instruction{Op: NEWARRAY, Desc: desc, Index: size})
}

func (m *Method) ArrayLoad(desc string) {
	m.append(Instruction{Op: ARRAYLOAD, Desc: desc})
}

func (m *Method) ArrayStore(desc string) {
	m.append(Instruction{Op: ARRAYSTORE, Desc: desc})
}

func (m *Method) NewMap(keyDesc, valueDesc string, size int) {
	m.append(Instruction{Op: NEWMAP, Owner: keyDesc, Desc: valueDesc, Index: size})
}

func (m *Method) MapLoad(desc string) {
	m.append(Instruction{Op: MAPLOAD, Desc: desc})
}

func (m *Method) MapStore(desc string) {
	m.append(Instruction{Op: MAPSTORE, Desc: desc})
}

func (m *Method) IterBegin(desc string) {
	m.append(Instruction{Op: ITERBEGIN, Desc: desc})
}

func (m *Method) IterNext(done Label, descs ...string) {
	m.append(Instruction{Op: ITERNEXT, Label: done, Descs: descs})
}

func (m *Method) Close() error {
	if m.closed {
		return fmt.Errorf("method %s.%s closed twice", m.sig.Owner, m.sig.Name)
	}
	m.closed = true
	return nil
}

func (m *Method) String() string {
	var b strings.Builder

	kind := "method"
	if m.sig.Static {
		kind = "method static"
	}
	fmt.Fprintf(&b, "%s %s.%s%s\n", kind, m.sig.Owner, m.sig.Name, m.sig.Descriptor())
	for _, i := range m.Code {
		if i.Op == LABEL {
			fmt.Fprintf(&b, "  %s\n", i)
			continue
		}
		fmt.Fprintf(&b, "    %s\n", i)
	}
	return b.String()
}

// Module is the stack VM Target: a list of methods in emission order.
type Module struct {
	Methods []*Method
}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) NewMethod(sig Signature) MethodOutput {
	method := NewMethod(sig)
	m.Methods = append(m.Methods, method)
	return method
}

// Method finds a method by owner and name.
func (m *Module) Method(owner, name string) (*Method, bool) {
	for _, method := range m.Methods {
		if method.sig.Owner == owner && method.sig.Name == name {
			return method, true
		}
	}
	return nil, false
}

func (m *Module) String() string {
	var parts []string
	for _, method := range m.Methods {
		parts = append(parts, method.String())
	}
	return strings.Join(parts, "\n")
}
