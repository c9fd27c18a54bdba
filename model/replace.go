package model

import "fmt"

// SliceMaxOpen builds a slice from the given fragment by opening it as far
// as possible on both sides, stopping at leaf nodes, or, unless
// openIsolating is true, at nodes marked isolating.
func SliceMaxOpen(fragment *Fragment, openIsolating ...bool) *Slice {
	isolating := true
	if len(openIsolating) > 0 {
		isolating = openIsolating[0]
	}
	openStart, openEnd := 0, 0
	for n := fragment.FirstChild(); n != nil && !n.IsLeaf() && (isolating || !n.Type.Spec.Isolating); n = n.FirstChild() {
		openStart++
	}
	for n := fragment.LastChild(); n != nil && !n.IsLeaf() && (isolating || !n.Type.Spec.Isolating); n = n.LastChild() {
		openEnd++
	}
	return NewSlice(fragment, openStart, openEnd)
}

// A slice represents a piece cut out of a larger document. It stores not only
// a fragment, but also the depth up to which nodes on both side are ‘open’
// (cut through).
type Slice struct {
	// Fragment The slice's content.
	Content *Fragment
	// The open depth at the start.
	OpenStart int
	// number The open depth at the end.
	OpenEnd int
}

// Create a slice. When specifying a non-zero open depth, you must make sure
// that there are nodes of at least that depth at the appropriate side of the
// fragment—i.e. if the fragment is an empty paragraph node, openStart and
// openEnd can't be greater than 1.
//
// It is not necessary for the content of open nodes to conform to the schema's
// content constraints, though it should be a valid start/end/middle for such a
// node, depending on which sides are open.
func NewSlice(content *Fragment, openStart, openEnd int) *Slice {
	return &Slice{
		Content:   content,
		OpenStart: openStart,
		OpenEnd:   openEnd,
	}
}

// The size this slice would add when inserted into a document.
func (s *Slice) Size() int {
	return s.Content.Size - s.OpenStart - s.OpenEnd
}

// Tests whether this slice is equal to another slice.
func (s *Slice) Eq(other *Slice) bool {
	return s.Content.Eq(other.Content) && s.OpenStart == other.OpenStart && s.OpenEnd == other.OpenEnd
}

func (s *Slice) String() string {
	return fmt.Sprintf("%s(%d,%d)", s.Content.String(), s.OpenStart, s.OpenEnd)
}

var EmptySlice = NewSlice(EmptyFragment, 0, 0)

// InsertAt tries to insert fragment at the given position, returning nil if
// that position is not a valid place for the fragment (taking this slice's
// open depth into account).
func (s *Slice) InsertAt(pos int, fragment *Fragment) *Slice {
	content, err := insertInto(s.Content, pos+s.OpenStart, fragment, nil)
	if err != nil || content == nil {
		return nil
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd)
}

func insertInto(content *Fragment, dist int, insert *Fragment, parent *Node) (*Fragment, error) {
	index, offset, err := content.FindIndex(dist)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	if offset == dist || (child != nil && child.IsText()) {
		if parent != nil && !parent.CanReplace(index, index, insert, 0, insert.ChildCount()) {
			return nil, nil
		}
		head, err := content.Cut(0, dist)
		if err != nil {
			return nil, err
		}
		tail, err := content.Cut(dist)
		if err != nil {
			return nil, err
		}
		return head.Append(insert).Append(tail), nil
	}
	if child == nil {
		return nil, newRangeError("position %d out of range", dist)
	}
	inner, err := insertInto(child.Content, dist-offset-1, insert, child)
	if err != nil || inner == nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner))
}

// RemoveBetween removes the content between the given positions from this
// slice.
func (s *Slice) RemoveBetween(from, to int) (*Slice, error) {
	content, err := removeRange(s.Content, from+s.OpenStart, to+s.OpenStart)
	if err != nil {
		return nil, err
	}
	return NewSlice(content, s.OpenStart, s.OpenEnd), nil
}

func removeRange(content *Fragment, from, to int) (*Fragment, error) {
	index, offset, err := content.FindIndex(from)
	if err != nil {
		return nil, err
	}
	child := content.MaybeChild(index)
	indexTo, offsetTo, err := content.FindIndex(to)
	if err != nil {
		return nil, err
	}
	if offset == from || (child != nil && child.IsText()) {
		childTo := content.MaybeChild(indexTo)
		if offsetTo != to && (childTo == nil || !childTo.IsText()) {
			return nil, newRangeError("removing non-flat range")
		}
		head, err := content.Cut(0, from)
		if err != nil {
			return nil, err
		}
		tail, err := content.Cut(to)
		if err != nil {
			return nil, err
		}
		return head.Append(tail), nil
	}
	if index != indexTo {
		return nil, newRangeError("removing non-flat range")
	}
	inner, err := removeRange(child.Content, from-offset-1, to-offset-1)
	if err != nil {
		return nil, err
	}
	return content.ReplaceChild(index, child.Copy(inner))
}

// ToJSON serializes this slice to its JSON representation: nil for the
// empty slice (spec §6).
func (s *Slice) ToJSON() interface{} {
	if s.Content.Size == 0 {
		return nil
	}
	obj := map[string]interface{}{"content": s.Content.ToJSON()}
	if s.OpenStart > 0 {
		obj["openStart"] = s.OpenStart
	}
	if s.OpenEnd > 0 {
		obj["openEnd"] = s.OpenEnd
	}
	return obj
}

// SliceFromJSON deserializes a slice from its JSON representation.
func SliceFromJSON(schema *Schema, raw interface{}) (*Slice, error) {
	if raw == nil {
		return EmptySlice, nil
	}
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return nil, newRangeError("invalid input for Slice.fromJSON")
	}
	openStart, err := jsonInt(obj["openStart"])
	if err != nil {
		return nil, newRangeError("invalid input for Slice.fromJSON")
	}
	openEnd, err := jsonInt(obj["openEnd"])
	if err != nil {
		return nil, newRangeError("invalid input for Slice.fromJSON")
	}
	content, err := FragmentFromJSON(schema, obj["content"])
	if err != nil {
		return nil, err
	}
	return NewSlice(content, openStart, openEnd), nil
}

func jsonInt(raw interface{}) (int, error) {
	switch v := raw.(type) {
	case nil:
		return 0, nil
	case float64:
		return int(v), nil
	case int:
		return v, nil
	default:
		return 0, newRangeError("not a number: %v", raw)
	}
}

// replace performs the three-way structural replace of the content between
// from and to with slice, returning the new root node.
func replace(from, to *ResolvedPos, slice *Slice) (*Node, error) {
	if slice.OpenStart > from.Depth {
		return nil, newReplaceError("inserted content deeper than insertion position")
	}
	if from.Depth-slice.OpenStart != to.Depth-slice.OpenEnd {
		return nil, newReplaceError("Inconsistent open depths")
	}
	return replaceOuter(from, to, slice, 0)
}

func replaceOuter(from, to *ResolvedPos, slice *Slice, depth int) (*Node, error) {
	index := from.Index(depth)
	node := from.Node(depth)
	if index == to.Index(depth) && depth < from.Depth-slice.OpenStart {
		inner, err := replaceOuter(from, to, slice, depth+1)
		if err != nil {
			return nil, err
		}
		content, err := node.Content.ReplaceChild(index, inner)
		if err != nil {
			return nil, err
		}
		return node.Copy(content), nil
	} else if slice.Content.Size > 0 {
		if slice.OpenStart == 0 && slice.OpenEnd == 0 && from.Depth == depth && to.Depth == depth {
			parent := from.Parent()
			content := parent.Content
			head, err := content.Cut(0, from.ParentOffset)
			if err != nil {
				return nil, err
			}
			tail, err := content.Cut(to.ParentOffset)
			if err != nil {
				return nil, err
			}
			return close(parent, head.Append(slice.Content).Append(tail))
		}
		start, end, err := prepareSliceForReplace(slice, from)
		if err != nil {
			return nil, err
		}
		merged, err := replaceThreeWay(from, start, end, to, depth)
		if err != nil {
			return nil, err
		}
		return close(node, merged)
	} else {
		merged, err := replaceTwoWay(from, to, depth)
		if err != nil {
			return nil, err
		}
		return close(node, merged)
	}
}

func checkJoin(main, sub *NodeType) error {
	if !sub.compatibleContent(main) {
		return newReplaceError("Cannot join %s onto %s", sub.Name, main.Name)
	}
	return nil
}

func joinable(before, after *ResolvedPos, depth int) (*NodeType, error) {
	node := before.Node(depth)
	if err := checkJoin(node.Type, after.Node(depth).Type); err != nil {
		return nil, err
	}
	return node.Type, nil
}

func addNode(child *Node, target []*Node) []*Node {
	last := len(target) - 1
	if last >= 0 && child.IsText() && child.SameMarkup(target[last]) {
		target[last] = target[last].withText(target[last].Text() + child.Text())
		return target
	}
	return append(target, child)
}

func addRange(start, end *ResolvedPos, depth int, target []*Node) ([]*Node, error) {
	var node *Node
	if end != nil {
		node = end.Node(depth)
	} else {
		node = start.Node(depth)
	}
	startIndex := 0
	endIndex := node.ChildCount()
	if end != nil {
		endIndex = end.Index(depth)
	}
	if start != nil {
		startIndex = start.Index(depth)
		if start.Depth > depth {
			startIndex++
		} else if start.TextOffset() > 0 {
			after, err := start.NodeAfter()
			if err != nil {
				return nil, err
			}
			target = addNode(after, target)
			startIndex++
		}
	}
	for i := startIndex; i < endIndex; i++ {
		child, err := node.Child(i)
		if err != nil {
			return nil, err
		}
		target = addNode(child, target)
	}
	if end != nil && end.Depth == depth && end.TextOffset() > 0 {
		before, err := end.NodeBefore()
		if err != nil {
			return nil, err
		}
		target = addNode(before, target)
	}
	return target, nil
}

func close(node *Node, content *Fragment) (*Node, error) {
	if !node.Type.ValidContent(content) {
		return nil, newReplaceError("Invalid content for node %s", node.Type.Name)
	}
	return node.Copy(content), nil
}

func replaceThreeWay(from, start, end, to *ResolvedPos, depth int) (*Fragment, error) {
	var openStart, openEnd *NodeType
	var err error
	if from.Depth > depth {
		if openStart, err = joinable(from, start, depth+1); err != nil {
			return nil, err
		}
	}
	if to.Depth > depth {
		if openEnd, err = joinable(end, to, depth+1); err != nil {
			return nil, err
		}
	}

	var content []*Node
	content, err = addRange(nil, from, depth, content)
	if err != nil {
		return nil, err
	}
	if openStart != nil && openEnd != nil && start.Index(depth) == end.Index(depth) {
		if err := checkJoin(openStart, openEnd); err != nil {
			return nil, err
		}
		inner, err := replaceThreeWay(from, start, end, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := close(from.Node(depth+1), inner)
		if err != nil {
			return nil, err
		}
		content = addNode(closed, content)
	} else {
		if openStart != nil {
			inner, err := replaceTwoWay(from, start, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := close(from.Node(depth+1), inner)
			if err != nil {
				return nil, err
			}
			content = addNode(closed, content)
		}
		content, err = addRange(start, end, depth, content)
		if err != nil {
			return nil, err
		}
		if openEnd != nil {
			inner, err := replaceTwoWay(end, to, depth+1)
			if err != nil {
				return nil, err
			}
			closed, err := close(to.Node(depth+1), inner)
			if err != nil {
				return nil, err
			}
			content = addNode(closed, content)
		}
	}
	content, err = addRange(to, nil, depth, content)
	if err != nil {
		return nil, err
	}
	return NewFragment(content), nil
}

func replaceTwoWay(from, to *ResolvedPos, depth int) (*Fragment, error) {
	var content []*Node
	content, err := addRange(nil, from, depth, content)
	if err != nil {
		return nil, err
	}
	if from.Depth > depth {
		if _, err := joinable(from, to, depth+1); err != nil {
			return nil, err
		}
		inner, err := replaceTwoWay(from, to, depth+1)
		if err != nil {
			return nil, err
		}
		closed, err := close(from.Node(depth+1), inner)
		if err != nil {
			return nil, err
		}
		content = addNode(closed, content)
	}
	content, err = addRange(to, nil, depth, content)
	if err != nil {
		return nil, err
	}
	return NewFragment(content), nil
}

func prepareSliceForReplace(slice *Slice, along *ResolvedPos) (*ResolvedPos, *ResolvedPos, error) {
	extra := along.Depth - slice.OpenStart
	parent := along.Node(extra)
	node := parent.Copy(slice.Content)
	for i := extra - 1; i >= 0; i-- {
		wrapped, err := FragmentFrom(node)
		if err != nil {
			return nil, nil, err
		}
		node = along.Node(i).Copy(wrapped)
	}
	start, err := resolvePos(node, slice.OpenStart+extra)
	if err != nil {
		return nil, nil, err
	}
	end, err := resolvePos(node, node.Content.Size-slice.OpenEnd-extra)
	if err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
