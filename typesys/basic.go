package typesys

type Basic struct {
	name string
	desc string
	// rank orders the numeric types for widening; zero means not numeric.
	rank int
}

var (
	Bool   = &Basic{name: "bool", desc: "Z"}
	Byte   = &Basic{name: "byte", desc: "B", rank: 1}
	Short  = &Basic{name: "short", desc: "S", rank: 2}
	Int    = &Basic{name: "int", desc: "I", rank: 3}
	Long   = &Basic{name: "long", desc: "J", rank: 4}
	Float  = &Basic{name: "float", desc: "F", rank: 5}
	Double = &Basic{name: "double", desc: "D", rank: 6}

	String   = &Basic{name: "string", desc: "Lzen/String;"}
	Any      = &Basic{name: "any", desc: "Lzen/Any;"}
	Void     = &Basic{name: "void", desc: "V"}
	Null     = &Basic{name: "null", desc: "Lzen/Null;"}
	IntRange = &Basic{name: "IntRange", desc: "Lzen/IntRange;"}

	// Invalid is the type of expressions that failed to resolve. It converts
	// to and from everything so one error does not cascade.
	Invalid = &Basic{name: "<invalid>", desc: "Lzen/Invalid;"}
)

// Basics lists the types scripts can name directly.
var Basics = []*Basic{Bool, Byte, Short, Int, Long, Float, Double, String, Any, Void}

func (b *Basic) Name() string       { return b.name }
func (b *Basic) Descriptor() string { return b.desc }
func (b *Basic) String() string     { return b.name }

func (b *Basic) Equal(other Type) bool {
	o, ok := other.(*Basic)
	return ok && o == b
}

func (b *Basic) IsNumeric() bool {
	return b.rank > 0
}

func (b *Basic) IsIntegral() bool {
	return b.rank > 0 && b.rank <= Long.rank
}

func (b *Basic) CastingRule(to Type) (Conversion, bool) {
	return CastingRule(b, to)
}

func (b *Basic) StaticMember(name string) (Member, bool) {
	return Member{}, false
}

func (b *Basic) InstanceMember(name string) (Member, bool) {
	if name == "length" && (b == String || b == IntRange) {
		return Member{Kind: LengthMember, Name: name, Owner: b, Type: Int}, true
	}
	return Member{}, false
}

// Wider returns the numeric type both operands promote to, at least int.
func Wider(a, b *Basic) *Basic {
	w := a
	if b.rank > a.rank {
		w = b
	}
	if w.rank < Int.rank {
		return Int
	}
	return w
}
