// Package typesys holds the static types scripts are checked against, the
// casting rules between them, and the methods the host exposes.
package typesys

type ConversionKind int

const (
	Identity ConversionKind = iota
	Widening
	Narrowing
	Boxing
)

var conversionNames = [...]string{"identity", "widening", "narrowing", "boxing"}

func (c ConversionKind) String() string {
	return conversionNames[c]
}

// Conversion describes how a value of From becomes a value of To.
type Conversion struct {
	Kind ConversionKind
	From Type
	To   Type
}

// Implicit reports whether the conversion may be applied without an
// explicit cast.
func (c Conversion) Implicit() bool {
	return c.Kind != Narrowing
}

type Type interface {
	Name() string
	Descriptor() string
	Equal(other Type) bool
	// CastingRule reports how this type converts to another, if at all.
	CastingRule(to Type) (Conversion, bool)
	// StaticMember looks up a member on the type itself, such as an enum
	// constant.
	StaticMember(name string) (Member, bool)
	// InstanceMember looks up a member on values of the type.
	InstanceMember(name string) (Member, bool)
}

// CastingRule is the casting relation shared by every type. It depends only on
// its two arguments.
func CastingRule(from, to Type) (Conversion, bool) {
	conv := func(kind ConversionKind) (Conversion, bool) {
		return Conversion{Kind: kind, From: from, To: to}, true
	}

	if from.Equal(to) || from == Invalid || to == Invalid {
		return conv(Identity)
	}
	if to == Void || from == Void {
		return Conversion{}, false
	}

	switch f := from.(type) {
	case *Basic:
		switch {
		case f == Null:
			if IsReference(to) {
				return conv(Widening)
			}
		case f == Any:
			return conv(Narrowing)
		case f.IsNumeric():
			if t, ok := to.(*Basic); ok && t.IsNumeric() {
				if f.rank < t.rank {
					return conv(Widening)
				}
				return conv(Narrowing)
			}
			if to == String {
				return conv(Narrowing)
			}
			if to == Any {
				return conv(Boxing)
			}
		case f == Bool:
			if to == String {
				return conv(Narrowing)
			}
			if to == Any {
				return conv(Boxing)
			}
		case f == String:
			if t, ok := to.(*Basic); ok && (t.IsNumeric() || t == Bool) {
				return conv(Narrowing)
			}
			if to == Any {
				return conv(Widening)
			}
		case f == IntRange:
			if to == Any {
				return conv(Widening)
			}
			if arr, ok := to.(*Array); ok && arr.Element == Int {
				return conv(Narrowing)
			}
		}
	case *Enum:
		if to == String {
			return conv(Narrowing)
		}
		if to == Any {
			return conv(Widening)
		}
	case *Class:
		if t, ok := to.(*Class); ok {
			if f.IsSubclassOf(t) {
				return conv(Widening)
			}
			if t.IsSubclassOf(f) {
				return conv(Narrowing)
			}
		}
		if to == String {
			return conv(Narrowing)
		}
		if to == Any {
			return conv(Widening)
		}
	case *Array, *Map, *Function:
		if to == Any {
			return conv(Widening)
		}
	}

	return Conversion{}, false
}

// IsReference reports whether null is a valid value of t.
func IsReference(t Type) bool {
	switch v := t.(type) {
	case *Basic:
		return v == String || v == Any || v == Null || v == IntRange
	case *Enum, *Class, *Array, *Map, *Function:
		return true
	}
	return false
}
