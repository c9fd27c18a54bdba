package model

import "encoding/json"

// Fragment represents a node's collection of child nodes.
//
// Like nodes, fragments are persistent data structures, and you should not
// mutate them or their content. Rather, you create new instances whenever
// needed. The API tries to make this easy.
type Fragment struct {
	Content []*Node
	Size    int
}

// NewFragment constructs a fragment from a slice of nodes, merging adjacent
// text nodes that share markup. Use FragmentFrom for the general-purpose
// constructor that also accepts a single node or nil.
func NewFragment(content []*Node) *Fragment {
	size := 0
	merged := make([]*Node, 0, len(content))
	for _, n := range content {
		size += n.NodeSize()
		if l := len(merged); l > 0 {
			last := merged[l-1]
			if last.IsText() && n.IsText() && last.SameMarkup(n) {
				merged[l-1] = last.withText(last.Text() + n.Text())
				continue
			}
		}
		merged = append(merged, n)
	}
	return &Fragment{Content: merged, Size: size}
}

// EmptyFragment is the shared singleton empty fragment.
var EmptyFragment = &Fragment{Content: []*Node{}, Size: 0}

// FragmentFrom builds a fragment from a *Fragment, a single *Node, a
// []*Node, or nil.
func FragmentFrom(content interface{}) (*Fragment, error) {
	switch c := content.(type) {
	case nil:
		return EmptyFragment, nil
	case *Fragment:
		return c, nil
	case *Node:
		if c == nil {
			return EmptyFragment, nil
		}
		return NewFragment([]*Node{c}), nil
	case []*Node:
		return NewFragment(c), nil
	default:
		return nil, newRangeError("can't convert %T to a Fragment", content)
	}
}

// ChildCount returns the number of child nodes in this fragment.
func (f *Fragment) ChildCount() int {
	return len(f.Content)
}

// Child returns the child node at the given index, or an error when the
// index is out of range.
func (f *Fragment) Child(index int) (*Node, error) {
	if index < 0 || index >= len(f.Content) {
		return nil, newRangeError("index %d out of range for fragment of size %d", index, len(f.Content))
	}
	return f.Content[index], nil
}

// MaybeChild returns the child node at the given index, or nil when the
// index is out of range.
func (f *Fragment) MaybeChild(index int) *Node {
	if index < 0 || index >= len(f.Content) {
		return nil
	}
	return f.Content[index]
}

// ForEach invokes fn for every child, along with the child's starting
// offset and index within this fragment.
func (f *Fragment) ForEach(fn func(child *Node, offset, index int)) {
	pos := 0
	for i, child := range f.Content {
		fn(child, pos, i)
		pos += child.NodeSize()
	}
}

// FindDiffStart finds the first position at which this fragment and another
// fragment differ, or nil if they are the same. pos defaults to 0.
func (f *Fragment) FindDiffStart(other *Fragment, pos ...int) *int {
	p := 0
	if len(pos) > 0 {
		p = pos[0]
	}
	return findDiffStart(f, other, p)
}

// FindDiffEnd finds the last position, searching from the end, at which this
// fragment and the given fragment differ, or nil if they are the same. posA
// and posB default to the end of each fragment.
func (f *Fragment) FindDiffEnd(other *Fragment, pos ...int) *DiffEnd {
	posA, posB := f.Size, other.Size
	if len(pos) > 0 {
		posA = pos[0]
	}
	if len(pos) > 1 {
		posB = pos[1]
	}
	return findDiffEnd(f, other, posA, posB)
}

// FindIndex returns (index, offset) such that the index-th child starts at
// offset. A position that falls exactly on the boundary between two children
// resolves to the later index. When round > 0, a position inside a child also
// resolves to the index after that child.
func (f *Fragment) FindIndex(pos int, round ...int) (int, int, error) {
	if pos == 0 {
		return 0, 0, nil
	}
	if pos == f.Size {
		return len(f.Content), pos, nil
	}
	if pos > f.Size || pos < 0 {
		return 0, 0, newRangeError("position %d out of range in %v", pos, f)
	}
	r := 0
	if len(round) > 0 {
		r = round[0]
	}
	curPos := 0
	for i, child := range f.Content {
		end := curPos + child.NodeSize()
		if end >= pos {
			if end == pos || r > 0 {
				return i + 1, end, nil
			}
			return i, curPos, nil
		}
		curPos = end
	}
	return len(f.Content), curPos, nil
}

// Cut returns a fragment containing exactly the content in [from, to) of
// this fragment's offset space. When to is omitted it defaults to the
// fragment's size.
func (f *Fragment) Cut(from int, to ...int) (*Fragment, error) {
	t := f.Size
	if len(to) > 0 {
		t = to[0]
	}
	if from == 0 && t == f.Size {
		return f, nil
	}
	if from >= t {
		return EmptyFragment, nil
	}
	var result []*Node
	pos := 0
	for _, child := range f.Content {
		if pos >= t {
			break
		}
		end := pos + child.NodeSize()
		if end > from {
			if pos < from || end > t {
				if child.IsText() {
					text := []rune(child.Text())
					start := max(from-pos, 0)
					stop := min(t-pos, len(text))
					child = child.withText(string(text[start:stop]))
				} else {
					inner, err := child.Cut(max(from-pos-1, 0), min(t-pos-1, child.Content.Size))
					if err != nil {
						return nil, err
					}
					child = inner
				}
			}
			result = append(result, child)
		}
		pos = end
	}
	return NewFragment(result), nil
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Append concatenates this fragment with another, merging a matching pair of
// text nodes at the boundary.
func (f *Fragment) Append(other *Fragment) *Fragment {
	if other.Size == 0 {
		return f
	}
	if f.Size == 0 {
		return other
	}
	last := f.Content[len(f.Content)-1]
	first := other.Content[0]
	content := make([]*Node, 0, len(f.Content)+len(other.Content))
	content = append(content, f.Content...)
	start := 0
	if last.IsText() && last.SameMarkup(first) {
		content[len(content)-1] = last.withText(last.Text() + first.Text())
		start = 1
	}
	content = append(content, other.Content[start:]...)
	return &Fragment{Content: content, Size: f.Size + other.Size}
}

// ReplaceChild returns a fragment with child index replaced by node.
func (f *Fragment) ReplaceChild(index int, node *Node) (*Fragment, error) {
	cur, err := f.Child(index)
	if err != nil {
		return nil, err
	}
	if cur == node {
		return f, nil
	}
	content := make([]*Node, len(f.Content))
	copy(content, f.Content)
	content[index] = node
	return &Fragment{Content: content, Size: f.Size - cur.NodeSize() + node.NodeSize()}, nil
}

// AddToStart returns a fragment with node prepended.
func (f *Fragment) AddToStart(node *Node) *Fragment {
	content := make([]*Node, 0, len(f.Content)+1)
	content = append(content, node)
	content = append(content, f.Content...)
	return NewFragment(content)
}

// AddToEnd returns a fragment with node appended.
func (f *Fragment) AddToEnd(node *Node) *Fragment {
	content := make([]*Node, 0, len(f.Content)+1)
	content = append(content, f.Content...)
	content = append(content, node)
	return NewFragment(content)
}

// NodesBetween performs a depth-first walk invoking fn(child, pos, parent,
// index) for every node whose span overlaps [from, to). If fn returns false
// for a node, that node's children are skipped.
func (f *Fragment) NodesBetween(from, to int, fn func(child *Node, pos int, parent *Node, index int) bool, nodeStart int, parent *Node) error {
	pos := 0
	for i, child := range f.Content {
		end := pos + child.NodeSize()
		if end > from && pos < to {
			descend := true
			if fn != nil {
				descend = fn(child, nodeStart+pos, parent, i)
			}
			if descend && !child.IsText() && child.Content.Size > 0 {
				start := pos + 1
				if err := child.Content.NodesBetween(
					max(0, from-start), min(child.Content.Size, to-start),
					fn, nodeStart+start, child); err != nil {
					return err
				}
			}
		}
		pos = end
	}
	return nil
}

// Eq reports whether two fragments have elementwise-equal content.
func (f *Fragment) Eq(other *Fragment) bool {
	if f == other {
		return true
	}
	if other == nil || len(f.Content) != len(other.Content) {
		return false
	}
	for i := range f.Content {
		if !f.Content[i].Eq(other.Content[i]) {
			return false
		}
	}
	return true
}

// FirstChild returns the first child, or nil if this fragment is empty.
func (f *Fragment) FirstChild() *Node {
	if len(f.Content) == 0 {
		return nil
	}
	return f.Content[0]
}

// LastChild returns the last child, or nil if this fragment is empty.
func (f *Fragment) LastChild() *Node {
	if len(f.Content) == 0 {
		return nil
	}
	return f.Content[len(f.Content)-1]
}

// String returns a debug representation of this fragment's children joined
// with ", ".
func (f *Fragment) String() string {
	s := ""
	for i, child := range f.Content {
		if i > 0 {
			s += ", "
		}
		s += child.String()
	}
	return s
}

// ToJSON serializes this fragment to its JSON representation: nil when
// empty, otherwise an array of child node JSON (spec §6).
func (f *Fragment) ToJSON() interface{} {
	if len(f.Content) == 0 {
		return nil
	}
	out := make([]interface{}, len(f.Content))
	for i, child := range f.Content {
		out[i] = child.ToJSON()
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (f *Fragment) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.ToJSON())
}

// FragmentFromJSON deserializes a fragment from its JSON representation.
func FragmentFromJSON(schema *Schema, raw interface{}) (*Fragment, error) {
	if raw == nil {
		return EmptyFragment, nil
	}
	arr, ok := raw.([]interface{})
	if !ok {
		return nil, newRangeError("invalid input for Fragment.fromJSON")
	}
	nodes := make([]*Node, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, newRangeError("invalid input for Fragment.fromJSON")
		}
		n, err := NodeFromJSON(schema, obj)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}
	return NewFragment(nodes), nil
}
