package typesys

import "strings"

// Enum is a host enum type. Its constants are its only static members.
type Enum struct {
	name      string
	constants []string
}

func NewEnum(name string, constants ...string) *Enum {
	return &Enum{name: name, constants: constants}
}

func (e *Enum) Name() string       { return e.name }
func (e *Enum) Descriptor() string { return "L" + internalName(e.name) + ";" }
func (e *Enum) String() string     { return e.name }
func (e *Enum) Constants() []string {
	return e.constants
}

func (e *Enum) Equal(other Type) bool {
	o, ok := other.(*Enum)
	return ok && o.name == e.name
}

func (e *Enum) CastingRule(to Type) (Conversion, bool) {
	return CastingRule(e, to)
}

func (e *Enum) StaticMember(name string) (Member, bool) {
	for _, c := range e.constants {
		if c == name {
			return Member{Kind: FieldMember, Name: name, Owner: e, Type: e, Static: true}, true
		}
	}
	return Member{}, false
}

func (e *Enum) InstanceMember(name string) (Member, bool) {
	return Member{}, false
}

// internalName turns a dotted type name into a slash separated owner.
func internalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}

// InternalName returns the owner name used in instructions for t.
func InternalName(t Type) string {
	desc := t.Descriptor()
	if strings.HasPrefix(desc, "L") && strings.HasSuffix(desc, ";") {
		return desc[1 : len(desc)-1]
	}
	return desc
}
