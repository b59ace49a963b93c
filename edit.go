package canopy

// InputEdit describes one replacement of a byte range in the source text.
// Chars and extents accompany the byte offsets because tree positions are
// tracked in every dimension.
type InputEdit struct {
	StartByte    uint32
	BytesRemoved uint32
	BytesAdded   uint32

	StartChar    uint32
	CharsRemoved uint32
	CharsAdded   uint32

	StartPoint    Point
	ExtentRemoved Point
	ExtentAdded   Point
}

func (e InputEdit) removedEnd() uint32 { return e.StartByte + e.BytesRemoved }

// Edit returns a tree describing the same parse adjusted for the edit:
// every node overlapping the edited range is copied with HasChanges set,
// and the node containing the edit position absorbs the length delta (in
// its padding when the edit falls before the node's own text). Unchanged
// subtrees are shared with the receiver, which is left untouched.
func (t *Tree) Edit(edit InputEdit) *Tree {
	if t == nil {
		return nil
	}
	edited := editTree(t, 0, edit, true)
	// The copied spine's children keep parent pointers into the old
	// spine; rewire them so the reuse cursor walks the edited tree.
	AssignParents(edited)
	return edited
}

func editTouches(start, end uint32, edit InputEdit) bool {
	if edit.StartByte < end && start < edit.removedEnd() {
		return true
	}
	return start <= edit.StartByte && edit.StartByte < end
}

// editTree copies and marks every node overlapping the edit. The length
// delta is absorbed exactly once per level, by the node containing the
// edit position (absorb), so sibling sums stay aligned for the nodes to
// the right of the edit.
func editTree(t *Tree, start uint32, edit InputEdit, absorb bool) *Tree {
	end := start + t.TotalBytes()
	if !editTouches(start, end, edit) {
		return t
	}

	n := t.MakeCopy()
	n.HasChanges = true

	if len(n.Children) == 0 {
		if absorb {
			if edit.StartByte < start+t.Padding.Bytes {
				n.Padding = applyEditDelta(n.Padding, edit)
			} else {
				n.Size = applyEditDelta(n.Size, edit)
			}
		}
		return n
	}

	children := make([]*Tree, len(n.Children))
	copy(children, n.Children)
	pos := start
	absorbed := false
	for i, child := range children {
		childEnd := pos + child.TotalBytes()
		if editTouches(pos, childEnd, edit) {
			absorbChild := absorb && !absorbed &&
				pos <= edit.StartByte && edit.StartByte < childEnd
			if absorbChild {
				absorbed = true
			}
			children[i] = editTree(child, pos, edit, absorbChild)
			child.Release()
		}
		pos = childEnd
	}
	n.SetChildren(children)
	return n
}

// applyEditDelta grows or shrinks a length by the edit's net change,
// saturating at zero. Row/column adjustments follow the extents the
// caller supplied.
func applyEditDelta(l Length, edit InputEdit) Length {
	l.Bytes = addDelta(l.Bytes, edit.BytesAdded, edit.BytesRemoved)
	l.Chars = addDelta(l.Chars, edit.CharsAdded, edit.CharsRemoved)
	l.Extent.Row = addDelta(l.Extent.Row, edit.ExtentAdded.Row, edit.ExtentRemoved.Row)
	if edit.ExtentAdded.Row == 0 && edit.ExtentRemoved.Row == 0 {
		l.Extent.Column = addDelta(l.Extent.Column, edit.ExtentAdded.Column, edit.ExtentRemoved.Column)
	}
	return l
}

func addDelta(value, added, removed uint32) uint32 {
	next := int64(value) + int64(added) - int64(removed)
	if next < 0 {
		return 0
	}
	return uint32(next)
}
