package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Node represents a node in the tree that makes up a document. A document is
// itself an instance of Node, with children that are also instances of Node.
//
// Nodes are persistent data structures. Instead of changing them, you create
// new ones with the content you want. Old ones keep pointing at the old
// document shape. This is made cheaper by sharing structure between the old
// and new data as much as possible, which a tree shape like this (without
// back pointers) makes easy.
//
// Do not directly mutate the properties of a Node object.
type Node struct {
	Type    *NodeType
	Attrs   map[string]interface{}
	Content *Fragment
	Marks   []*Mark
	text    string
}

// NewNode is the constructor for non-text nodes.
func NewNode(typ *NodeType, attrs map[string]interface{}, content *Fragment, marks []*Mark) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, Content: content, Marks: marks}
}

// NewTextNode is the constructor for text nodes.
func NewTextNode(typ *NodeType, attrs map[string]interface{}, text string, marks []*Mark) *Node {
	if marks == nil {
		marks = NoMarks
	}
	return &Node{Type: typ, Attrs: attrs, text: text, Marks: marks}
}

// IsText reports whether this is a text node.
func (n *Node) IsText() bool { return n.Content == nil }

// Text returns the text content of a text node, or the empty string for any
// other node.
func (n *Node) Text() string { return n.text }

// withText returns a copy of this text node with different text.
func (n *Node) withText(s string) *Node {
	return NewTextNode(n.Type, n.Attrs, s, n.Marks)
}

// NodeSize is the size of this node, as defined by the integer-based indexing
// scheme. For text nodes, this is the amount of characters. For other leaf
// nodes, it is one. For non-leaf nodes, it is the size of the content plus
// two (the start and end token).
func (n *Node) NodeSize() int {
	if n.IsText() {
		return len([]rune(n.text))
	}
	if n.Type.IsLeaf() {
		return 1
	}
	return n.Content.Size + 2
}

// ChildCount returns the number of children that the node has.
func (n *Node) ChildCount() int { return n.Content.ChildCount() }

// Child gets the child node at the given index.
func (n *Node) Child(index int) (*Node, error) { return n.Content.Child(index) }

// MaybeChild gets the child node at the given index, or nil when it does not
// exist.
func (n *Node) MaybeChild(index int) *Node { return n.Content.MaybeChild(index) }

// ForEach calls fn for every child node, passing the node, its offset into
// this parent node, and its index.
func (n *Node) ForEach(fn func(child *Node, offset, index int)) { n.Content.ForEach(fn) }

// FirstChild returns this node's first child, or nil if there are no
// children.
func (n *Node) FirstChild() *Node { return n.Content.FirstChild() }

// LastChild returns this node's last child, or nil if there are no children.
func (n *Node) LastChild() *Node { return n.Content.LastChild() }

// Eq tests whether two nodes represent the same piece of document.
func (n *Node) Eq(other *Node) bool {
	if n == other {
		return true
	}
	if other == nil || !n.SameMarkup(other) {
		return false
	}
	if n.IsText() {
		return n.text == other.text
	}
	return n.Content.Eq(other.Content)
}

// SameMarkup compares the markup (type, attributes, and marks) of this node
// to those of another.
func (n *Node) SameMarkup(other *Node) bool {
	return n.HasMarkup(other.Type, other.Attrs, other.Marks)
}

// HasMarkup checks whether this node's markup correspond to the given type,
// attributes, and marks.
func (n *Node) HasMarkup(typ *NodeType, attrs map[string]interface{}, marks []*Mark) bool {
	return n.Type == typ && attrsEqual(n.Attrs, attrs) && SameMarkSet(n.Marks, marks)
}

// Copy creates a copy of this node with the given content, or returns self
// when the content is unchanged.
func (n *Node) Copy(content *Fragment) *Node {
	if content == nil {
		content = EmptyFragment
	}
	if content == n.Content {
		return n
	}
	return NewNode(n.Type, n.Attrs, content, n.Marks)
}

// Mark creates a copy of this node, with the given set of marks instead of
// the node's own marks.
func (n *Node) Mark(marks []*Mark) *Node {
	if SameMarkSet(n.Marks, marks) {
		return n
	}
	if n.IsText() {
		return NewTextNode(n.Type, n.Attrs, n.text, marks)
	}
	return NewNode(n.Type, n.Attrs, n.Content, marks)
}

// Cut creates a copy of this node with only the content between the given
// positions. If to is omitted, it defaults to the end of the node.
func (n *Node) Cut(from int, to ...int) *Node {
	if n.IsText() {
		runes := []rune(n.text)
		t := len(runes)
		if len(to) > 0 {
			t = to[0]
		}
		if from == 0 && t == len(runes) {
			return n
		}
		return n.withText(string(runes[from:t]))
	}
	t := n.Content.Size
	if len(to) > 0 {
		t = to[0]
	}
	if from == 0 && t == n.Content.Size {
		return n
	}
	cut, err := n.Content.Cut(from, t)
	if err != nil {
		panic(err)
	}
	return n.Copy(cut)
}

// Slice cuts out the part of the document between the given positions, and
// returns it as a Slice object.
func (n *Node) Slice(from int, rest ...int) *Slice {
	to := n.Content.Size
	if len(rest) > 0 {
		to = rest[0]
	}
	includeParents := false
	return n.sliceDeep(from, to, includeParents)
}

func (n *Node) sliceDeep(from, to int, includeParents bool) *Slice {
	if from == to {
		return EmptySlice
	}
	fromPos, err := n.Resolve(from)
	if err != nil {
		panic(err)
	}
	toPos, err := n.Resolve(to)
	if err != nil {
		panic(err)
	}
	depth := 0
	if !includeParents {
		depth = fromPos.SharedDepth(to)
	}
	start := fromPos.Start(depth)
	node := fromPos.Node(depth)
	content, err := node.Content.Cut(fromPos.Pos-start, toPos.Pos-start)
	if err != nil {
		panic(err)
	}
	return NewSlice(content, fromPos.Depth-depth, toPos.Depth-depth)
}

// Replace replaces the part of the document between the given positions with
// the given slice. The slice must 'fit', meaning its open sides must be able
// to connect to the surrounding content, and its content must be valid
// children for the node it is placed into.
func (n *Node) Replace(from, to int, slice *Slice) (*Node, error) {
	fromPos, err := n.Resolve(from)
	if err != nil {
		return nil, err
	}
	toPos, err := n.Resolve(to)
	if err != nil {
		return nil, err
	}
	return replace(fromPos, toPos, slice)
}

// NodeAt finds the node directly after the given position.
func (n *Node) NodeAt(pos int) (*Node, error) {
	node := n
	for {
		index, offset, err := node.Content.FindIndex(pos)
		if err != nil {
			return nil, err
		}
		child := node.Content.MaybeChild(index)
		if child == nil {
			return nil, nil
		}
		if offset == pos || child.IsText() {
			return child, nil
		}
		pos -= offset + 1
		node = child
	}
}

// ContentMatchAt gets the content match in this node at the given index.
func (n *Node) ContentMatchAt(index int) (*ContentMatch, error) {
	match := n.Type.ContentMatch.MatchFragment(n.Content, 0, index)
	if match == nil {
		return nil, newRangeError("called ContentMatchAt on a node with invalid content")
	}
	return match, nil
}

// CanReplace tests whether replacing the range between from and to (by index)
// with the children of replacement from index start to end is valid. A nil
// replacement is treated as an empty fragment.
func (n *Node) CanReplace(from, to int, replacement *Fragment, start, end int) bool {
	if replacement == nil {
		replacement = EmptyFragment
	}
	one, err := n.ContentMatchAt(from)
	if err != nil {
		return false
	}
	m1 := one.MatchFragment(replacement, start, end)
	if m1 == nil {
		return false
	}
	m2 := m1.MatchFragment(n.Content, to)
	if m2 == nil || !m2.ValidEnd {
		return false
	}
	for i := start; i < end; i++ {
		child, err := replacement.Child(i)
		if err != nil {
			return false
		}
		if !n.Type.AllowsMarks(child.Marks) {
			return false
		}
	}
	return true
}

// NodesBetween invokes fn for all descendant nodes recursively between the
// given two positions that are relative to this node's content.
func (n *Node) NodesBetween(from, to int, fn func(child *Node, pos int, parent *Node, index int) bool, startPos ...int) error {
	sp := 0
	if len(startPos) > 0 {
		sp = startPos[0]
	}
	return n.Content.NodesBetween(from, to, fn, sp, n)
}

// RangeHasMark tests whether a mark of the given type or exactly the given
// mark occurs in this node between the given positions.
func (n *Node) RangeHasMark(from, to int, markOrType interface{}) bool {
	found := false
	if to > from {
		_ = n.NodesBetween(from, to, func(child *Node, pos int, parent *Node, index int) bool {
			if found {
				return false
			}
			switch mt := markOrType.(type) {
			case *Mark:
				if mt.IsInSet(child.Marks) {
					found = true
				}
			case *MarkType:
				if mt.IsInSet(child.Marks) != nil {
					found = true
				}
			}
			return !found
		})
	}
	return found
}

// Check validates the content of this node against the schema, returning an
// error if it is invalid, recursing into its children.
func (n *Node) Check() error {
	if !n.Type.ValidContent(n.Content) {
		s := n.Content.String()
		if len(s) > 50 {
			s = s[:50]
		}
		return newRangeError("invalid content for node %s: %s", n.Type.Name, s)
	}
	var err error
	n.Content.ForEach(func(child *Node, offset, index int) {
		if err == nil && !child.IsText() {
			err = child.Check()
		}
	})
	return err
}

// TextContent concatenates all the text nodes found in this fragment and its
// children.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.text
	}
	var sb strings.Builder
	n.Content.ForEach(func(child *Node, offset, index int) {
		sb.WriteString(child.TextContent())
	})
	return sb.String()
}

// Resolve resolves the given position in this node's document, producing a
// ResolvedPos object.
func (n *Node) Resolve(pos int) (*ResolvedPos, error) { return resolvePosCached(n, pos) }

// IsBlock reports whether this is a block-level node.
func (n *Node) IsBlock() bool { return n.Type.IsBlock() }

// IsInline reports whether this is an inline node.
func (n *Node) IsInline() bool { return n.Type.IsInline() }

// IsLeaf reports whether this is a leaf node.
func (n *Node) IsLeaf() bool { return n.Type.IsLeaf() }

// IsAtom reports whether this is an atom node.
func (n *Node) IsAtom() bool { return n.Type.IsAtom() }

// IsTextblock reports whether this is a textblock node, a block that
// contains inline content.
func (n *Node) IsTextblock() bool { return n.Type.IsBlock() && n.Type.InlineContent }

// String returns a debug string for this node.
func (n *Node) String() string {
	if n.IsText() {
		return wrapMarks(n.Marks, strconv.Quote(n.text))
	}
	base := n.Type.Name
	if n.Content.Size > 0 {
		base = n.Type.Name + "(" + n.Content.String() + ")"
	}
	return wrapMarks(n.Marks, base)
}

func wrapMarks(marks []*Mark, str string) string {
	for i := len(marks) - 1; i >= 0; i-- {
		str = marks[i].Type.Name + "(" + str + ")"
	}
	return str
}

// ToJSON serializes this node to its JSON representation (spec §6).
func (n *Node) ToJSON() map[string]interface{} {
	obj := map[string]interface{}{"type": n.Type.Name}
	if len(n.Attrs) > 0 {
		obj["attrs"] = n.Attrs
	}
	if !n.IsText() {
		if content := n.Content.ToJSON(); content != nil {
			obj["content"] = content
		}
	}
	if len(n.Marks) > 0 {
		marks := make([]interface{}, len(n.Marks))
		for i, m := range n.Marks {
			marks[i] = m.ToJSON()
		}
		obj["marks"] = marks
	}
	if n.IsText() {
		obj["text"] = n.text
	}
	return obj
}

// MarshalJSON implements json.Marshaler.
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.ToJSON())
}

// NodeFromJSON deserializes a node from its JSON representation.
func NodeFromJSON(schema *Schema, obj map[string]interface{}) (*Node, error) {
	if obj == nil {
		return nil, newRangeError("invalid input for Node.fromJSON")
	}
	var marks []*Mark
	if rawMarks, ok := obj["marks"]; ok && rawMarks != nil {
		arr, ok := rawMarks.([]interface{})
		if !ok {
			return nil, newRangeError("invalid mark data for Node.fromJSON")
		}
		marks = make([]*Mark, len(arr))
		for i, rm := range arr {
			mo, ok := rm.(map[string]interface{})
			if !ok {
				return nil, newRangeError("invalid mark data for Node.fromJSON")
			}
			mk, err := MarkFromJSON(schema, mo)
			if err != nil {
				return nil, err
			}
			marks[i] = mk
		}
	}
	typeName, _ := obj["type"].(string)
	if typeName == "text" {
		text, ok := obj["text"].(string)
		if !ok || text == "" {
			return nil, newRangeError("invalid text node in JSON")
		}
		return schema.Text(text, marks), nil
	}
	content, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	typ, err := schema.NodeType(typeName)
	if err != nil {
		return nil, err
	}
	attrs, _ := obj["attrs"].(map[string]interface{})
	return typ.Create(attrs, content, marks)
}
