package model

import "encoding/json"

// Mark is a piece of information that can be attached to a node, such as it
// being emphasized, in code font, or a link. It has a type and optionally a
// set of attributes that provide further information (such as the target of
// the link). Marks are created through a Schema, which controls which types
// exist and which attributes they have.
type Mark struct {
	Type  *MarkType
	Attrs map[string]interface{}
}

// NewMark is the constructor for Mark.
func NewMark(typ *MarkType, attrs map[string]interface{}) *Mark {
	return &Mark{Type: typ, Attrs: attrs}
}

// AddToSet creates a new set which contains this one as well, in the right
// position. If this mark is already in the set, the set itself is returned.
// If any marks that are set to be exclusive with this mark are present,
// those are replaced by this one.
func (m *Mark) AddToSet(set []*Mark) []*Mark {
	var placed bool
	cpy := make([]*Mark, 0, len(set)+1)
	for _, other := range set {
		if m.Eq(other) {
			return set
		}
		if m.Type.Excludes(other.Type) {
			continue
		}
		if other.Type.Excludes(m.Type) {
			return set
		}
		if !placed && other.Type.Rank > m.Type.Rank {
			cpy = append(cpy, m)
			placed = true
		}
		cpy = append(cpy, other)
	}
	if !placed {
		cpy = append(cpy, m)
	}
	return cpy
}

// RemoveFromSet removes this mark from the given set, returning a new set.
// If this mark is not in the set, the set itself is returned.
func (m *Mark) RemoveFromSet(set []*Mark) []*Mark {
	for i, other := range set {
		if m.Eq(other) {
			cpy := make([]*Mark, 0, len(set)-1)
			cpy = append(cpy, set[:i]...)
			cpy = append(cpy, set[i+1:]...)
			return cpy
		}
	}
	return set
}

// IsInSet tests whether this mark is in the given set of marks.
func (m *Mark) IsInSet(set []*Mark) bool {
	for _, other := range set {
		if m.Eq(other) {
			return true
		}
	}
	return false
}

// Eq tests whether this mark has the same type and attributes as another
// mark.
func (m *Mark) Eq(other *Mark) bool {
	if m == other {
		return true
	}
	if other == nil || m.Type != other.Type {
		return false
	}
	return attrsEqual(m.Attrs, other.Attrs)
}

func attrsEqual(a, b map[string]interface{}) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		bv, ok := b[k]
		if !ok || !valueEqual(v, bv) {
			return false
		}
	}
	return true
}

func valueEqual(a, b interface{}) bool {
	switch av := a.(type) {
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		return ok && attrsEqual(av, bv)
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !valueEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

// ToJSON serializes this mark to its JSON representation (spec §6).
func (m *Mark) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"type": m.Type.Name}
	if len(m.Attrs) > 0 {
		obj["attrs"] = m.Attrs
	}
	return obj
}

// MarkFromJSON deserializes a mark from its JSON representation.
func MarkFromJSON(schema *Schema, raw map[string]interface{}) (*Mark, error) {
	name, ok := raw["type"].(string)
	if !ok {
		return nil, newRangeError("invalid mark type: %v", raw["type"])
	}
	typ, err := schema.MarkType(name)
	if err != nil {
		return nil, err
	}
	attrs, _ := raw["attrs"].(map[string]interface{})
	return typ.Create(attrs), nil
}

// MarshalJSON implements json.Marshaler.
func (m *Mark) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToJSON())
}

// SameMarkSet tests whether two sets of marks are identical.
func SameMarkSet(a, b []*Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// MarkSetFrom creates a properly sorted mark set from a possibly empty,
// unsorted slice of marks.
func MarkSetFrom(marks []*Mark) []*Mark {
	if len(marks) == 0 {
		return NoMarks
	}
	set := marks[0].AddToSet(nil)
	for _, m := range marks[1:] {
		set = m.AddToSet(set)
	}
	return set
}

// NoMarks is the empty set of marks.
var NoMarks = []*Mark{}
