package model

// findDiffStart returns the first position where the two fragments have not
// the same content.
func findDiffStart(a, b *Fragment, pos int) *int {
	for i := 0; ; i++ {
		if i == a.ChildCount() || i == b.ChildCount() {
			if a.ChildCount() == b.ChildCount() {
				return nil
			}
			return &pos
		}

		childA, err := a.Child(i)
		if err != nil {
			return &pos
		}
		childB, err := b.Child(i)
		if err != nil {
			return &pos
		}
		if childA == childB {
			pos += childA.NodeSize()
			continue
		}

		if !childA.SameMarkup(childB) {
			return &pos
		}

		if childA.IsText() && childA.Text() != childB.Text() {
			ta, tb := []rune(childA.Text()), []rune(childB.Text())
			j := 0
			for j < len(ta) && j < len(tb) && ta[j] == tb[j] {
				j++
				pos++
			}
			return &pos
		}
		if !childA.IsText() && (childA.Content.Size > 0 || childB.Content.Size > 0) {
			inner := findDiffStart(childA.Content, childB.Content, pos+1)
			if inner != nil {
				return inner
			}
		}
		pos += childA.NodeSize()
	}
}

// DiffEnd is the result of findDiffEnd: the positions at which two fragments
// stop matching, scanning from the end, one for each fragment.
type DiffEnd struct {
	A int
	B int
}

// findDiffEnd returns the last position where the two fragments have not
// the same content.
func findDiffEnd(a, b *Fragment, posA, posB int) *DiffEnd {
	ia := a.ChildCount()
	ib := b.ChildCount()
	for {
		if ia == 0 || ib == 0 {
			if ia == ib {
				return nil
			}
			return &DiffEnd{A: posA, B: posB}
		}

		ia--
		ib--
		childA, err := a.Child(ia)
		if err != nil {
			return &DiffEnd{A: posA, B: posB}
		}
		childB, err := b.Child(ib)
		if err != nil {
			return &DiffEnd{A: posA, B: posB}
		}
		size := childA.NodeSize()
		if childA == childB {
			posA -= size
			posB -= size
			continue
		}

		if !childA.SameMarkup(childB) {
			return &DiffEnd{A: posA, B: posB}
		}

		if childA.IsText() && childA.Text() != childB.Text() {
			ta, tb := []rune(childA.Text()), []rune(childB.Text())
			same := 0
			minSize := len(ta)
			if len(tb) < minSize {
				minSize = len(tb)
			}
			for same < minSize && ta[len(ta)-same-1] == tb[len(tb)-same-1] {
				same++
				posA--
				posB--
			}
			return &DiffEnd{A: posA, B: posB}
		}
		if !childA.IsText() && (childA.Content.Size > 0 || childB.Content.Size > 0) {
			inner := findDiffEnd(childA.Content, childB.Content, posA-1, posB-1)
			if inner != nil {
				return inner
			}
		}
		posA -= size
		posB -= size
	}
}
