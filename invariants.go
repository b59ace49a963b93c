package canopy

import "fmt"

// CheckInvariants verifies the structural invariants of a finished tree:
// every internal node's padding is its first child's padding, its size is
// the first child's size plus the total sizes of the remaining children,
// and parent back-references round-trip. It exists for tests and debugging; the parser does not
// depend on it.
func (t *Tree) CheckInvariants() error {
	if t == nil {
		return nil
	}

	if len(t.Children) > 0 {
		sum := t.Children[0].Size
		for _, child := range t.Children[1:] {
			sum = sum.Add(child.TotalSize())
		}
		if !sum.Eq(t.Size) {
			return fmt.Errorf("node sym%d: size %+v, children sum %+v",
				t.Symbol, t.Size, sum)
		}
		if !t.Children[0].Padding.Eq(t.Padding) {
			return fmt.Errorf("node sym%d: padding differs from first child", t.Symbol)
		}
	}

	for i, child := range t.Children {
		if child.parent != t {
			return fmt.Errorf("node sym%d: child %d has wrong parent", t.Symbol, i)
		}
		if child.childIndex != uint32(i) {
			return fmt.Errorf("node sym%d: child %d has index %d",
				t.Symbol, i, child.childIndex)
		}
		if err := child.CheckInvariants(); err != nil {
			return err
		}
	}
	return nil
}
