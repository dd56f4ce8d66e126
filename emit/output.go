// Package emit defines the contract between the resolver and a code
// generation target, and provides the stack VM bytecode target.
//
// Descriptors follow the JVM shape: Z B S I J F D for primitives, V for void,
// Lpath/Name; for references, [T for arrays and (params)return for methods.
package emit

import "strings"

type Label int

type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Rem
	And
	Or
	Xor
	Neg
	Concat
)

var arithNames = [...]string{"ADD", "SUB", "MUL", "DIV", "REM", "AND", "OR", "XOR", "NEG", "CONCAT"}

func (a ArithOp) String() string {
	return arithNames[a]
}

type CompareOp int

const (
	Eq CompareOp = iota
	Ne
	Lt
	Le
	Gt
	Ge
)

var compareNames = [...]string{"EQ", "NE", "LT", "LE", "GT", "GE"}

func (c CompareOp) String() string {
	return compareNames[c]
}

// Signature is the per-method metadata a target needs before any code is
// emitted.
type Signature struct {
	Owner  string
	Name   string
	Static bool
	Params []string
	Return string
}

func (s Signature) Descriptor() string {
	return MethodDescriptor(s.Return, s.Params...)
}

func MethodDescriptor(ret string, params ...string) string {
	return "(" + strings.Join(params, "") + ")" + ret
}

// MethodOutput receives the instructions of one method. Emission is append
// only; nothing may be emitted after Close.
type MethodOutput interface {
	Signature() Signature
	Static() bool

	Constant(value interface{}, desc string)
	Null()
	Pop(desc string)
	Dup(desc string)

	LoadLocal(index int, desc string)
	StoreLocal(index int, desc string)
	GetStatic(owner, name, desc string)
	PutStatic(owner, name, desc string)
	GetField(owner, name, desc string)
	PutField(owner, name, desc string)

	InvokeVirtual(owner, name, desc string)
	InvokeStatic(owner, name, desc string)
	InvokeSpecial(owner, name, desc string)
	InvokeFunction(desc string)

	Convert(from, to string)
	CheckCast(desc string)
	InstanceOf(desc string)

	Arith(op ArithOp, desc string)
	Compare(op CompareOp, desc string)
	Not()

	NewLabel() Label
	Mark(l Label)
	Jump(l Label)
	JumpIf(cond bool, l Label)

	NewArray(desc string, size int)
	ArrayLoad(desc string)
	ArrayStore(desc string)
	NewMap(keyDesc, valueDesc string, size int)
	MapLoad(desc string)
	MapStore(desc string)
	Length(desc string)
	NewRange()

	// IterBegin replaces the iterable on the stack by an iterator.
	IterBegin(desc string)
	// IterNext pops an iterator and either jumps to done or pushes one
	// value per descriptor.
	IterNext(done Label, descs ...string)

	Return(desc string)
	Close() error
}

// Emitter is anything that can write itself to a method.
type Emitter interface {
	Emit(out MethodOutput)
}

// Target creates method outputs.
type Target interface {
	NewMethod(sig Signature) MethodOutput
}
