package typesys

type MemberKind int

const (
	// FieldMember is a static or instance field. Enum constants are static
	// fields of their enum.
	FieldMember MemberKind = iota
	MethodMember
	// LengthMember is the built-in length of strings, arrays, maps and ranges.
	LengthMember
)

type Member struct {
	Kind     MemberKind
	Name     string
	Owner    Type
	Type     Type
	Static   bool
	Writable bool
	Methods  []*Method
}
