package typesys

import "sort"

// Class is a native type supplied by the host.
type Class struct {
	name    string
	Super   *Class
	statics map[string]Member
	members map[string]Member
}

func NewClass(name string, super *Class) *Class {
	return &Class{
		name:    name,
		Super:   super,
		statics: map[string]Member{},
		members: map[string]Member{},
	}
}

func (c *Class) Name() string       { return c.name }
func (c *Class) Descriptor() string { return "L" + internalName(c.name) + ";" }
func (c *Class) String() string     { return c.name }

func (c *Class) Equal(other Type) bool {
	o, ok := other.(*Class)
	return ok && o.name == c.name
}

func (c *Class) IsSubclassOf(other *Class) bool {
	for s := c.Super; s != nil; s = s.Super {
		if s.Equal(other) {
			return true
		}
	}
	return false
}

func (c *Class) CastingRule(to Type) (Conversion, bool) {
	return CastingRule(c, to)
}

func (c *Class) AddStaticField(name string, t Type, writable bool) {
	c.statics[name] = Member{Kind: FieldMember, Name: name, Owner: c, Type: t, Static: true, Writable: writable}
}

func (c *Class) AddField(name string, t Type, writable bool) {
	c.members[name] = Member{Kind: FieldMember, Name: name, Owner: c, Type: t, Writable: writable}
}

// AddMethod adds an overload. The method's owner is set to c.
func (c *Class) AddMethod(m *Method) {
	m.Owner = c
	table := c.members
	if m.Static {
		table = c.statics
	}

	member, ok := table[m.Name]
	if !ok {
		member = Member{Kind: MethodMember, Name: m.Name, Owner: c, Static: m.Static}
	}
	member.Methods = append(member.Methods, m)
	table[m.Name] = member
}

func (c *Class) StaticMember(name string) (Member, bool) {
	m, ok := c.statics[name]
	return m, ok
}

// InstanceMember searches c, then its supertypes.
func (c *Class) InstanceMember(name string) (Member, bool) {
	for k := c; k != nil; k = k.Super {
		if m, ok := k.members[name]; ok {
			return m, true
		}
	}
	return Member{}, false
}

// MemberNames lists instance member names, sorted.
func (c *Class) MemberNames() (ret []string) {
	for name := range c.members {
		ret = append(ret, name)
	}
	sort.Strings(ret)
	return
}
